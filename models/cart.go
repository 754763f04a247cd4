package models

import (
	"math"

	"github.com/stripe/stripe-go/v79"
)

// CartSummary 是購物車頁面顯示的總計
type CartSummary struct {
	Currency stripe.Currency `json:"currency"`
	Lines    int             `json:"lines"`
	Items    int             `json:"items"`
	// Total 以最小貨幣單位表示（例如分），與 Stripe 金額一致
	Total int64 `json:"total"`
}

func NewCartSummary(products []Product, currency stripe.Currency) *CartSummary {
	summary := &CartSummary{
		Currency: currency,
		Lines:    len(products),
	}

	var total float64
	for _, product := range products {
		summary.Items += product.Amount
		total += product.Price * float64(product.Amount)
	}
	summary.Total = int64(math.Round(total * 100))

	return summary
}
