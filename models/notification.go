package models

import (
	"time"

	"gofalre.io/storefront/models/enum"
)

// Notification 是推送給使用者的一則操作失敗訊息
type Notification struct {
	Kind      enum.FailureKind `json:"kind"`
	ProductID int              `json:"product_id"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"created_at"`
}
