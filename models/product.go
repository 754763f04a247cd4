package models

// Product 代表購物車中的一個商品項目
// 欄位順序即為序列化後的順序：id, title, price, image, amount
type Product struct {
	ID     int     `json:"id"`
	Title  string  `json:"title"`
	Price  float64 `json:"price"`
	Image  string  `json:"image"`
	Amount int     `json:"amount"`
}

// FindProduct returns the index of the line for productID, or -1.
func FindProduct(products []Product, productID int) int {
	for i := range products {
		if products[i].ID == productID {
			return i
		}
	}
	return -1
}

// CloneProducts returns a copy that shares nothing with products.
func CloneProducts(products []Product) []Product {
	cloned := make([]Product, len(products))
	copy(cloned, products)
	return cloned
}
