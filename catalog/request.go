package catalog

import (
	"encoding/json"
	"fmt"

	"gofalre.io/storefront/models"
)

type productResponse struct {
	ID    *int    `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

type stockResponse struct {
	ID     *int `json:"id"`
	Amount *int `json:"amount"`
}

func decodeProduct(data []byte, productID int) (*models.Product, error) {
	var resp productResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode product %d: %v", ErrMalformedResponse, productID, err)
	}
	if resp.ID == nil || *resp.ID != productID {
		return nil, fmt.Errorf("%w: product id does not match %d", ErrMalformedResponse, productID)
	}

	return &models.Product{
		ID:    *resp.ID,
		Title: resp.Title,
		Price: resp.Price,
		Image: resp.Image,
	}, nil
}

func decodeStock(data []byte, productID int) (*models.Stock, error) {
	var resp stockResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode stock %d: %v", ErrMalformedResponse, productID, err)
	}
	if resp.ID == nil || *resp.ID != productID {
		return nil, fmt.Errorf("%w: stock id does not match %d", ErrMalformedResponse, productID)
	}
	if resp.Amount == nil || *resp.Amount < 0 {
		return nil, fmt.Errorf("%w: invalid stock amount for %d", ErrMalformedResponse, productID)
	}

	return &models.Stock{
		ID:     *resp.ID,
		Amount: *resp.Amount,
	}, nil
}
