package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"gofalre.io/storefront/models"
)

var (
	ErrNotFound          = errors.New("catalog: not found")
	ErrUnexpectedStatus  = errors.New("catalog: unexpected status")
	ErrMalformedResponse = errors.New("catalog: malformed response")
)

// maxBodySize 限制單一回應的大小
const maxBodySize = 1 << 20

var _ Repository = (*repository)(nil)

// Repository 是唯讀的商品與庫存查詢服務
type Repository interface {
	GetProduct(ctx context.Context, productID int) (*models.Product, error)
	GetStock(ctx context.Context, productID int) (*models.Stock, error)
}

type Options struct {
	BaseURL string
	// Timeout 為零時不設定逾時，請求會一直等到服務回應或失敗
	Timeout time.Duration
	// HTTPClient 可選，未設定時使用 Timeout 建立新的 client
	HTTPClient *http.Client
}

type repository struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	group      singleflight.Group
	logger     *zap.Logger
}

func NewRepository(opts Options, logger *zap.Logger) Repository {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	r := &repository{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
	r.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return r
}

func (r *repository) GetProduct(ctx context.Context, productID int) (*models.Product, error) {
	data, err := r.fetch(ctx, fmt.Sprintf("/products/%d", productID))
	if err != nil {
		r.logger.Error("failed to get product", zap.Int("product_id", productID), zap.Error(err))
		return nil, fmt.Errorf("failed to get product %d: %w", productID, err)
	}

	product, err := decodeProduct(data, productID)
	if err != nil {
		r.logger.Error("failed to decode product", zap.Int("product_id", productID), zap.Error(err))
		return nil, err
	}

	return product, nil
}

func (r *repository) GetStock(ctx context.Context, productID int) (*models.Stock, error) {
	data, err := r.fetch(ctx, fmt.Sprintf("/stock/%d", productID))
	if err != nil {
		r.logger.Error("failed to get stock", zap.Int("product_id", productID), zap.Error(err))
		return nil, fmt.Errorf("failed to get stock %d: %w", productID, err)
	}

	stock, err := decodeStock(data, productID)
	if err != nil {
		r.logger.Error("failed to decode stock", zap.Int("product_id", productID), zap.Error(err))
		return nil, err
	}

	return stock, nil
}

// fetch 合併同一路徑的並行請求，並透過斷路器送出。
// 共用的請求不受任何單一呼叫者取消的影響，每個呼叫者只等待自己的 ctx。
func (r *repository) fetch(ctx context.Context, path string) ([]byte, error) {
	shared := context.WithoutCancel(ctx)
	ch := r.group.DoChan(path, func() (any, error) {
		return r.breaker.Execute(func() ([]byte, error) {
			return r.get(shared, path)
		})
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

func (r *repository) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, path, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
