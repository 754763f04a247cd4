package shop

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"gofalre.io/storefront/models"
)

type orderedProcessor struct {
	mu  sync.Mutex
	ids []string
}

func (p *orderedProcessor) ProcessCommand(_ context.Context, command *models.CartCommand) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = append(p.ids, command.ID)
	if command.ID == "bad" {
		return errors.New("rejected")
	}
	return nil
}

func TestWorkerPool_PreservesOrderWithSingleWorker(t *testing.T) {
	processor := &orderedProcessor{}
	wp := NewWorkerPool(1, processor, zap.NewNop())

	for _, id := range []string{"a", "bad", "b", "c"} {
		wp.Submit(context.Background(), &models.CartCommand{ID: id})
	}
	wp.Shutdown()

	assert.Equal(t, []string{"a", "bad", "b", "c"}, processor.ids)
}

func TestWorkerPool_SubmitAfterShutdown(t *testing.T) {
	processor := &orderedProcessor{}
	wp := NewWorkerPool(2, processor, zap.NewNop())
	wp.Shutdown()
	wp.Shutdown()

	assert.NotPanics(t, func() {
		wp.Submit(context.Background(), &models.CartCommand{ID: "late"})
	})
	assert.Empty(t, processor.ids)
}
