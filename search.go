package envie

import (
	"context"
	"fmt"

	"github.com/envie-local/envie/internal/domain/search/request"
)

// SearchOptions narrows an intent search.
type SearchOptions struct {
	// City is geocoded when no coordinates are given. "Autour de moi" is ignored.
	City string
	// RadiusKm defaults to 5 and is capped at 100.
	RadiusKm float64
	// Near takes precedence over City.
	Near *Coordinates
}

// Search ranks establishments against a free-text intent such as
// "envie de faire du karting ce soir".
func (c *Client) Search(ctx context.Context, envie string, opts *SearchOptions) (SearchResponse, error) {
	if opts == nil {
		opts = &SearchOptions{}
	}

	var lat, lng *float64
	if opts.Near != nil {
		lat, lng = &opts.Near.Lat, &opts.Near.Lng
	}

	req, err := request.New(envie, opts.City, opts.RadiusKm, lat, lng)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search: %w", err)
	}

	page, err := c.searchSvc.SearchEnvie(ctx, &req)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search: %w", err)
	}
	return fromPage(&page), nil
}
