// Package notify delivers shopper-facing failure messages to one or more sinks.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"gofalre.io/storefront/models"
)

// DefaultSubject 是 NATS 通知的預設主題
const DefaultSubject = "storefront.cart.notification"

type Notifier interface {
	Notify(ctx context.Context, notification *models.Notification) error
}

var (
	_ Notifier = (*LogNotifier)(nil)
	_ Notifier = (*NATSNotifier)(nil)
	_ Notifier = (Fanout)(nil)
)

// LogNotifier 將通知寫入日誌
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, notification *models.Notification) error {
	n.logger.Warn(notification.Message,
		zap.String("kind", string(notification.Kind)),
		zap.Int("product_id", notification.ProductID),
		zap.Time("created_at", notification.CreatedAt))
	return nil
}

// NATSNotifier 將通知以 JSON 發佈到 NATS 主題
type NATSNotifier struct {
	conn    *nats.Conn
	subject string
}

func NewNATSNotifier(conn *nats.Conn, subject string) *NATSNotifier {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSNotifier{
		conn:    conn,
		subject: subject,
	}
}

func (n *NATSNotifier) Notify(_ context.Context, notification *models.Notification) error {
	data, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if err = n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

// Fanout delivers to every notifier and joins their errors.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, notification *models.Notification) error {
	var errs []error
	for _, n := range f {
		if err := n.Notify(ctx, notification); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
