package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"
)

// GetPrice fetches the current USD price of a CoinGecko asset id.
func (c *Client) GetPrice(ctx context.Context, priceURL, id string) (*PriceData, error) {
	u, err := url.Parse(priceURL)
	if err != nil {
		return nil, fmt.Errorf("invalid price url: %w", err)
	}
	q := u.Query()
	q.Set("ids", id)
	q.Set("vs_currencies", "usd")
	u.RawQuery = q.Encode()

	var result map[string]map[string]decimal.Decimal
	if err := c.GetJSON(ctx, u.String(), &result); err != nil {
		return nil, fmt.Errorf("failed to fetch price: %w", err)
	}

	if priceData, exists := result[id]; exists {
		if usdPrice, exists := priceData["usd"]; exists {
			return &PriceData{
				Symbol: id,
				Price:  usdPrice,
				USD:    usdPrice,
			}, nil
		}
	}

	return nil, fmt.Errorf("price not found for symbol: %s", id)
}
