package shop

import (
	"context"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gofalre.io/storefront/cart"
	"gofalre.io/storefront/catalog"
	"gofalre.io/storefront/event"
	"gofalre.io/storefront/models"
	"gofalre.io/storefront/models/enum"
	"gofalre.io/storefront/notify"
)

// commandWorkers 為 1 以保持指令的到達順序
const commandWorkers = 1

type Service interface {
	// Cart returns a snapshot of the cart lines in insertion order.
	Cart() []models.Product
	Summary() *models.CartSummary

	AddProduct(ctx context.Context, productID int) error
	RemoveProduct(ctx context.Context, productID int) error
	UpdateProductAmount(ctx context.Context, productID, amount int) error

	ProcessCommand(ctx context.Context, command *models.CartCommand) error
	Close()
}

type service struct {
	catalog  catalog.Repository
	cart     cart.Repository
	commands event.Repository
	notifier notify.Notifier
	currency stripe.Currency

	// opMu 讓每個操作的 讀取-修改-發佈 完整執行，stateMu 只保護 products
	opMu     sync.Mutex
	stateMu  sync.RWMutex
	products []models.Product

	eventManager *EventManager
	workerPool   *WorkerPool

	now    func() time.Time
	logger *zap.Logger
}

// NewService loads the stored cart and, when natsConn is not nil, starts consuming cart commands from
// CommandSubject.
func NewService(
	ctx context.Context,
	catalog catalog.Repository, cart cart.Repository, commands event.Repository, notifier notify.Notifier,
	natsConn *nats.Conn,
	currency stripe.Currency,
	logger *zap.Logger) Service {
	s := &service{
		catalog:  catalog,
		cart:     cart,
		commands: commands,
		notifier: notifier,
		currency: currency,
		now:      time.Now,
		logger:   logger,
	}
	s.products = cart.Load(ctx)
	s.eventManager = NewEventManager(natsConn, logger)
	s.registerCommandHandlers()

	if natsConn != nil {
		s.workerPool = NewWorkerPool(commandWorkers, s, logger)
		// 訂閱指令
		if err := s.eventManager.SubscribeToCommands(CommandSubject, s.workerPool); err != nil {
			logger.Error("Failed to subscribe to cart commands", zap.Error(err))
		}
	}

	logger.Info("Cart loaded", zap.Int("lines", len(s.products)))
	return s
}

func (s *service) Cart() []models.Product {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	return models.CloneProducts(s.products)
}

func (s *service) Summary() *models.CartSummary {
	return models.NewCartSummary(s.Cart(), s.currency)
}

func (s *service) AddProduct(ctx context.Context, productID int) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	// 1. 查找購物車中的商品
	products := s.Cart()
	index := models.FindProduct(products, productID)

	// 2. 同時查詢商品資料與庫存
	var product *models.Product
	var stock *models.Stock
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		product, err = s.catalog.GetProduct(gctx, productID)
		return err
	})
	g.Go(func() error {
		var err error
		stock, err = s.catalog.GetStock(gctx, productID)
		return err
	})
	if err := g.Wait(); err != nil {
		return s.fail(ctx, enum.FailureKindAddFailed, productID, err)
	}

	if index >= 0 {
		// 3. 商品已存在，數量加一
		newAmount := products[index].Amount + 1
		if !stock.Covers(newAmount) {
			return s.fail(ctx, enum.FailureKindOutOfStock, productID, nil)
		}
		products[index].Amount = newAmount
	} else {
		// 4. 商品不存在，以數量一加入
		line := *product
		line.Amount = 1
		if !stock.Covers(line.Amount) {
			return s.fail(ctx, enum.FailureKindOutOfStock, productID, nil)
		}
		products = append(products, line)
	}

	if err := s.publish(ctx, products); err != nil {
		return s.fail(ctx, enum.FailureKindAddFailed, productID, err)
	}

	s.logger.Info("Product added to cart", zap.Int("product_id", productID))
	return nil
}

func (s *service) RemoveProduct(ctx context.Context, productID int) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	products := s.Cart()
	if models.FindProduct(products, productID) < 0 {
		return s.fail(ctx, enum.FailureKindRemoveFailed, productID, nil)
	}

	remaining := make([]models.Product, 0, len(products)-1)
	for _, product := range products {
		if product.ID != productID {
			remaining = append(remaining, product)
		}
	}

	if err := s.publish(ctx, remaining); err != nil {
		return s.fail(ctx, enum.FailureKindRemoveFailed, productID, err)
	}

	s.logger.Info("Product removed from cart", zap.Int("product_id", productID))
	return nil
}

func (s *service) UpdateProductAmount(ctx context.Context, productID, amount int) error {
	if amount <= 0 {
		return nil
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	// 1. 查詢庫存
	stock, err := s.catalog.GetStock(ctx, productID)
	if err != nil {
		return s.fail(ctx, enum.FailureKindUpdateFailed, productID, err)
	}

	// 2. 檢查庫存是否足夠
	if !stock.Covers(amount) {
		return s.fail(ctx, enum.FailureKindOutOfStock, productID, nil)
	}

	// 3. 更新數量，不在購物車中的商品不會被加入
	products := s.Cart()
	if index := models.FindProduct(products, productID); index >= 0 {
		products[index].Amount = amount
	}

	if err = s.publish(ctx, products); err != nil {
		return s.fail(ctx, enum.FailureKindUpdateFailed, productID, err)
	}

	s.logger.Info("Product amount updated", zap.Int("product_id", productID), zap.Int("amount", amount))
	return nil
}

func (s *service) Close() {
	if err := s.eventManager.Unsubscribe(); err != nil {
		s.logger.Warn("Failed to unsubscribe from cart commands", zap.Error(err))
	}
	if s.workerPool != nil {
		s.workerPool.Shutdown()
	}
}

// publish writes the cart to the store first and only then replaces the in-memory copy.
func (s *service) publish(ctx context.Context, products []models.Product) error {
	if err := s.cart.Save(ctx, products); err != nil {
		return err
	}

	s.stateMu.Lock()
	s.products = products
	s.stateMu.Unlock()

	return nil
}

func (s *service) fail(ctx context.Context, kind enum.FailureKind, productID int, cause error) error {
	cartErr := &CartError{Kind: kind, ProductID: productID, Err: cause}
	s.logger.Warn("Cart operation failed",
		zap.String("kind", string(kind)),
		zap.Int("product_id", productID),
		zap.Error(cause))

	notification := &models.Notification{
		Kind:      kind,
		ProductID: productID,
		Message:   kind.Message(),
		CreatedAt: s.now(),
	}
	if err := s.notifier.Notify(ctx, notification); err != nil {
		s.logger.Error("Failed to deliver notification", zap.String("kind", string(kind)), zap.Error(err))
	}

	return cartErr
}
