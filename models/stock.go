package models

// Stock 是商品目前可售的數量，只在檢查時查詢，不會寫入購物車儲存
type Stock struct {
	ID     int `json:"id"`
	Amount int `json:"amount"`
}

// Covers reports whether the stock can satisfy the requested amount.
func (s *Stock) Covers(amount int) bool {
	return amount <= s.Amount
}
