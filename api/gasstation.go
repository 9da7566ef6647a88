package api

import (
	"context"
	"fmt"
	"net/url"
)

// GasStation fetches gas price levels for chain from an HTTP gas station.
// The station answers GET {stationURL}?chain=<chain> with gwei levels.
func (c *Client) GasStation(ctx context.Context, stationURL, chain string) (*GasLevels, error) {
	if stationURL == "" {
		return nil, fmt.Errorf("gas station not configured")
	}

	u, err := url.Parse(stationURL)
	if err != nil {
		return nil, fmt.Errorf("invalid gas station url: %w", err)
	}
	q := u.Query()
	q.Set("chain", chain)
	u.RawQuery = q.Encode()

	var levels GasLevels
	if err := c.GetJSON(ctx, u.String(), &levels); err != nil {
		return nil, fmt.Errorf("failed to fetch gas station: %w", err)
	}
	if !levels.Standard.IsPositive() {
		return nil, fmt.Errorf("gas station returned no standard price for %s", chain)
	}
	return &levels, nil
}
