package shop

import (
	"errors"
	"fmt"

	"gofalre.io/storefront/models/enum"
)

var (
	ErrOutOfStock   = errors.New("requested amount exceeds available stock")
	ErrAddFailed    = errors.New("failed to add product")
	ErrRemoveFailed = errors.New("failed to remove product")
	ErrUpdateFailed = errors.New("failed to update product amount")
)

// CartError 描述一次失敗的購物車操作，購物車狀態不會被改變
type CartError struct {
	Kind      enum.FailureKind
	ProductID int
	Err       error
}

func (e *CartError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: product %d", kindError(e.Kind), e.ProductID)
	}
	return fmt.Sprintf("%s: product %d: %v", kindError(e.Kind), e.ProductID, e.Err)
}

func (e *CartError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind, so errors.Is(err, ErrOutOfStock) works.
func (e *CartError) Is(target error) bool {
	return target == kindError(e.Kind)
}

func kindError(kind enum.FailureKind) error {
	switch kind {
	case enum.FailureKindOutOfStock:
		return ErrOutOfStock
	case enum.FailureKindAddFailed:
		return ErrAddFailed
	case enum.FailureKindRemoveFailed:
		return ErrRemoveFailed
	case enum.FailureKindUpdateFailed:
		return ErrUpdateFailed
	default:
		return errors.New(string(kind))
	}
}
