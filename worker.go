package shop

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"gofalre.io/storefront/models"
)

type CommandProcessor interface {
	ProcessCommand(ctx context.Context, command *models.CartCommand) error
}

type WorkerPool struct {
	tasks     chan func()
	logger    *zap.Logger
	processor CommandProcessor

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewWorkerPool(size int, processor CommandProcessor, logger *zap.Logger) *WorkerPool {
	if size < 1 {
		size = 1
	}
	wp := &WorkerPool{
		tasks:     make(chan func(), 1000),
		logger:    logger,
		processor: processor,
	}

	wp.wg.Add(size)
	for i := 0; i < size; i++ {
		go wp.worker()
	}

	return wp
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for task := range wp.tasks {
		task()
	}
}

// Submit queues command for processing. Commands submitted after Shutdown are dropped.
func (wp *WorkerPool) Submit(ctx context.Context, command *models.CartCommand) {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		wp.logger.Warn("Worker pool closed, dropping command", zap.String("command_id", command.ID))
		return
	}

	wp.tasks <- func() {
		if err := wp.processor.ProcessCommand(ctx, command); err != nil {
			wp.logger.Error("Failed to process command",
				zap.Error(err),
				zap.String("command_type", string(command.Type)),
				zap.String("command_id", command.ID))
		}
	}
}

// Shutdown stops accepting commands and waits for queued ones to finish.
func (wp *WorkerPool) Shutdown() {
	wp.mu.Lock()
	if wp.closed {
		wp.mu.Unlock()
		return
	}
	wp.closed = true
	close(wp.tasks)
	wp.mu.Unlock()

	wp.wg.Wait()
}
