package chi

import "github.com/envie-local/envie/internal/domain/establishment"

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type envieResponse struct {
	Success bool          `json:"success"`
	Results []envieResult `json:"results"`
	Total   int           `json:"total"`
	Query   queryEcho     `json:"query"`
}

type envieResult struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Slug         string              `json:"slug"`
	Description  string              `json:"description"`
	Address      string              `json:"address"`
	City         string              `json:"city"`
	Latitude     *float64            `json:"latitude"`
	Longitude    *float64            `json:"longitude"`
	Activities   []string            `json:"activities"`
	Tags         []establishment.Tag `json:"tags"`
	Score        float64             `json:"score"`
	Distance     *float64            `json:"distance"`
	IsOpen       bool                `json:"isOpen"`
	MatchedTags  []string            `json:"matchedTags"`
	PrimaryImage *string             `json:"primaryImage"`
}

type queryEcho struct {
	Envie        string          `json:"envie"`
	Keywords     keywordsEcho    `json:"keywords"`
	Ville        string          `json:"ville,omitempty"`
	Rayon        float64         `json:"rayon"`
	Origin       coordinatesEcho `json:"origin"`
	OriginSource string          `json:"originSource"`
	Counts       countsEcho      `json:"counts"`
}

type keywordsEcho struct {
	Primary []string `json:"primary"`
	Context []string `json:"context"`
	All     []string `json:"all"`
}

type coordinatesEcho struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type countsEcho struct {
	Candidates   int `json:"candidates"`
	WithinRadius int `json:"withinRadius"`
	Relevant     int `json:"relevant"`
	Returned     int `json:"returned"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
