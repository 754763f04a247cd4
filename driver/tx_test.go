package driver

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTx struct {
	pgx.Tx
	commitErr  error
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) Commit(context.Context) error {
	tx.committed = true
	return tx.commitErr
}

func (tx *fakeTx) Rollback(context.Context) error {
	tx.rolledBack = true
	return nil
}

type fakePool struct {
	PostgresPool
	tx       *fakeTx
	beginErr error
	opts     pgx.TxOptions
}

func (p *fakePool) BeginTx(_ context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	p.opts = opts
	if p.beginErr != nil {
		return nil, p.beginErr
	}
	return p.tx, nil
}

func TestExecuteTransaction_Commits(t *testing.T) {
	pool := &fakePool{tx: &fakeTx{}}
	tm := NewTransactionManager(pool, zap.NewNop())

	err := tm.ExecuteTransaction(context.Background(), func(tx pgx.Tx) error { return nil })

	require.NoError(t, err)
	assert.True(t, pool.tx.committed)
	assert.False(t, pool.tx.rolledBack)
	assert.Equal(t, pgx.ReadCommitted, pool.opts.IsoLevel)
}

func TestExecuteTransaction_RollsBackOnError(t *testing.T) {
	pool := &fakePool{tx: &fakeTx{}}
	tm := NewTransactionManager(pool, zap.NewNop())
	fnErr := errors.New("upsert failed")

	err := tm.ExecuteTransaction(context.Background(), func(tx pgx.Tx) error { return fnErr })

	assert.ErrorIs(t, err, fnErr)
	assert.True(t, pool.tx.rolledBack)
	assert.False(t, pool.tx.committed)
}

func TestExecuteTransaction_CommitError(t *testing.T) {
	commitErr := errors.New("serialization failure")
	pool := &fakePool{tx: &fakeTx{commitErr: commitErr}}
	tm := NewTransactionManager(pool, zap.NewNop())

	err := tm.ExecuteTransaction(context.Background(), func(tx pgx.Tx) error { return nil })

	assert.ErrorIs(t, err, commitErr)
}

func TestExecuteTransaction_BeginError(t *testing.T) {
	pool := &fakePool{beginErr: errors.New("pool closed")}
	tm := NewTransactionManager(pool, zap.NewNop())

	called := false
	err := tm.ExecuteTransaction(context.Background(), func(tx pgx.Tx) error {
		called = true
		return nil
	})

	assert.ErrorContains(t, err, "begin transaction failed")
	assert.False(t, called)
}

func TestExecuteTransaction_RollsBackOnPanic(t *testing.T) {
	pool := &fakePool{tx: &fakeTx{}}
	tm := NewTransactionManager(pool, zap.NewNop())

	assert.Panics(t, func() {
		_ = tm.ExecuteTransaction(context.Background(), func(tx pgx.Tx) error { panic("boom") })
	})
	assert.True(t, pool.tx.rolledBack)
}
