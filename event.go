package shop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"gofalre.io/storefront/models"
	"gofalre.io/storefront/models/enum"
)

// CommandSubject 是購物車指令的 NATS 主題
const CommandSubject = "storefront.cart.command.>"

type CommandHandler func(context.Context, *models.CartCommand) error

type EventManager struct {
	natsConn *nats.Conn
	handlers map[enum.CommandType]CommandHandler
	logger   *zap.Logger

	mu           sync.Mutex
	subscription *nats.Subscription
}

func NewEventManager(natsConn *nats.Conn, logger *zap.Logger) *EventManager {
	return &EventManager{
		natsConn: natsConn,
		handlers: make(map[enum.CommandType]CommandHandler),
		logger:   logger,
	}
}

func (em *EventManager) RegisterHandler(commandType enum.CommandType, handler CommandHandler) {
	em.handlers[commandType] = handler
}

func (em *EventManager) GetHandler(commandType enum.CommandType) (CommandHandler, bool) {
	handler, exists := em.handlers[commandType]
	return handler, exists
}

func (em *EventManager) SubscribeToCommands(subject string, wp *WorkerPool) error {
	if em.natsConn == nil {
		return fmt.Errorf("no NATS connection")
	}

	sub, err := em.natsConn.Subscribe(subject, func(msg *nats.Msg) {
		var command models.CartCommand
		if err := json.Unmarshal(msg.Data, &command); err != nil {
			em.logger.Error("Failed to unmarshal command", zap.String("subject", msg.Subject), zap.Error(err))
			return
		}

		wp.Submit(context.Background(), &command)
	})
	if err != nil {
		return err
	}

	em.mu.Lock()
	em.subscription = sub
	em.mu.Unlock()

	return nil
}

func (em *EventManager) Unsubscribe() error {
	em.mu.Lock()
	defer em.mu.Unlock()

	if em.subscription == nil {
		return nil
	}
	err := em.subscription.Unsubscribe()
	em.subscription = nil
	return err
}

func (s *service) registerCommandHandlers() {
	commandHandlers := map[enum.CommandType]CommandHandler{
		enum.CommandTypeAddProduct:          s.handleAddProduct,
		enum.CommandTypeRemoveProduct:       s.handleRemoveProduct,
		enum.CommandTypeUpdateProductAmount: s.handleUpdateProductAmount,
	}

	for commandType, handler := range commandHandlers {
		s.eventManager.RegisterHandler(commandType, handler)
	}
}

func (s *service) handleAddProduct(ctx context.Context, command *models.CartCommand) error {
	return s.AddProduct(ctx, command.ProductID)
}

func (s *service) handleRemoveProduct(ctx context.Context, command *models.CartCommand) error {
	return s.RemoveProduct(ctx, command.ProductID)
}

func (s *service) handleUpdateProductAmount(ctx context.Context, command *models.CartCommand) error {
	return s.UpdateProductAmount(ctx, command.ProductID, command.Amount)
}

func (s *service) ProcessCommand(ctx context.Context, command *models.CartCommand) error {
	handler, exists := s.eventManager.GetHandler(command.Type)
	if !exists {
		return fmt.Errorf("no handler registered for command type: %s", command.Type)
	}

	if command.ID != "" {
		claimed, err := s.commands.Claim(ctx, command.ID)
		if err != nil {
			return err
		}
		if !claimed {
			s.logger.Info("Command already processed", zap.String("command_id", command.ID))
			return nil
		}
	}

	if err := handler(ctx, command); err != nil {
		s.logger.Error("Failed to handle command",
			zap.String("command_id", command.ID),
			zap.String("command_type", string(command.Type)),
			zap.Error(err),
		)
		s.releaseCommand(ctx, command, err)
		return err
	}

	s.logger.Info("Cart command processed",
		zap.String("command_id", command.ID),
		zap.String("command_type", string(command.Type)))

	return nil
}

// releaseCommand 讓失敗的指令在重新送達時可以再執行一次；
// 庫存不足是確定的結果，重試也不會成功，所以保留紀錄
func (s *service) releaseCommand(ctx context.Context, command *models.CartCommand, cause error) {
	if command.ID == "" || errors.Is(cause, ErrOutOfStock) {
		return
	}
	if err := s.commands.Release(ctx, command.ID); err != nil {
		s.logger.Warn("Failed to release command claim", zap.String("command_id", command.ID), zap.Error(err))
	}
}
