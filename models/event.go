package models

import (
	"time"

	"gofalre.io/storefront/models/enum"
)

// CartCommand 是透過訊息佇列送達的購物車操作
type CartCommand struct {
	ID        string           `json:"id"`
	Type      enum.CommandType `json:"type"`
	ProductID int              `json:"product_id"`
	Amount    int              `json:"amount,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
