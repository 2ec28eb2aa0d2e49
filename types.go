package envie

import (
	"github.com/envie-local/envie/internal/domain/establishment"
	"github.com/envie-local/envie/internal/domain/geo"
	"github.com/envie-local/envie/internal/domain/search/result"
)

// Coordinates is a WGS84 position in degrees.
type Coordinates struct {
	Lat float64
	Lng float64
}

// Tag is a weighted label. Weight is clamped to 3 for generic "envie de ..." tags.
type Tag struct {
	Tag    string
	Weight float64
}

// Slot is an opening window in "HH:MM" form. Close before Open crosses midnight.
type Slot struct {
	Open  string
	Close string
}

// Day is the schedule of one weekday.
type Day struct {
	IsOpen bool
	Slots  []Slot
}

// Establishment statuses. Only active and approved establishments are searchable.
const (
	StatusActive   = "active"
	StatusApproved = "approved"
	StatusPending  = "pending"
	StatusRejected = "rejected"
)

// Establishment is a listed business.
type Establishment struct {
	ID          string
	Name        string
	Slug        string
	Description string
	Activities  []string
	Tags        []Tag
	// Coordinates is nil for establishments that are not geocoded.
	Coordinates  *Coordinates
	Status       string
	City         string
	Address      string
	PrimaryImage string
	// OpeningHours is keyed by French weekday name (lundi..dimanche).
	OpeningHours map[string]Day
}

// Result is one ranked establishment.
type Result struct {
	Establishment Establishment
	Score         float64
	// DistanceKm is nil when either side has no coordinates.
	DistanceKm  *float64
	IsOpen      bool
	MatchedTags []string
}

// Keywords is the decomposition of the intent text.
type Keywords struct {
	Primary []string
	Context []string
	All     []string
}

// SearchResponse holds the ranked results and how they were obtained.
type SearchResponse struct {
	Results      []Result
	Keywords     Keywords
	Origin       Coordinates
	OriginSource string // "coordinates", "city" or "default"
	Candidates   int
	WithinRadius int
	Relevant     int
}

func toInternalEstablishment(e *Establishment) establishment.Establishment {
	out := establishment.Establishment{
		ID:           e.ID,
		Name:         e.Name,
		Slug:         e.Slug,
		Description:  e.Description,
		Activities:   e.Activities,
		Status:       establishment.Status(e.Status),
		City:         e.City,
		Address:      e.Address,
		PrimaryImage: e.PrimaryImage,
	}
	if out.Status == "" {
		out.Status = establishment.StatusActive
	}
	for _, t := range e.Tags {
		out.Tags = append(out.Tags, establishment.Tag{Tag: t.Tag, Poids: t.Weight})
	}
	if e.Coordinates != nil {
		out.Coordinates = &geo.Coordinates{Lat: e.Coordinates.Lat, Lng: e.Coordinates.Lng}
	}
	if len(e.OpeningHours) > 0 {
		out.OpeningHours = make(establishment.Hours, len(e.OpeningHours))
		for name, d := range e.OpeningHours {
			day := establishment.Day{IsOpen: d.IsOpen}
			for _, s := range d.Slots {
				day.Slots = append(day.Slots, establishment.Slot{Open: s.Open, Close: s.Close})
			}
			out.OpeningHours[name] = day
		}
	}
	return out
}

func fromInternalEstablishment(e *establishment.Establishment) Establishment {
	out := Establishment{
		ID:           e.ID,
		Name:         e.Name,
		Slug:         e.Slug,
		Description:  e.Description,
		Activities:   e.Activities,
		Status:       string(e.Status),
		City:         e.City,
		Address:      e.Address,
		PrimaryImage: e.PrimaryImage,
	}
	for _, t := range e.Tags {
		out.Tags = append(out.Tags, Tag{Tag: t.Tag, Weight: t.Poids})
	}
	if e.Coordinates != nil {
		out.Coordinates = &Coordinates{Lat: e.Coordinates.Lat, Lng: e.Coordinates.Lng}
	}
	if len(e.OpeningHours) > 0 {
		out.OpeningHours = make(map[string]Day, len(e.OpeningHours))
		for name, d := range e.OpeningHours {
			day := Day{IsOpen: d.IsOpen}
			for _, s := range d.Slots {
				day.Slots = append(day.Slots, Slot{Open: s.Open, Close: s.Close})
			}
			out.OpeningHours[name] = day
		}
	}
	return out
}

func fromPage(p *result.Page) SearchResponse {
	d := p.Diagnostics
	resp := SearchResponse{
		Results: make([]Result, 0, len(p.Results)),
		Keywords: Keywords{
			Primary: d.Keywords.Primary,
			Context: d.Keywords.Context,
			All:     d.Keywords.All,
		},
		Origin:       Coordinates{Lat: d.Origin.Lat, Lng: d.Origin.Lng},
		OriginSource: string(d.OriginSource),
		Candidates:   d.Candidates,
		WithinRadius: d.WithinRadius,
		Relevant:     d.Relevant,
	}
	for i := range p.Results {
		sr := &p.Results[i]
		r := Result{
			Establishment: fromInternalEstablishment(sr.Establishment()),
			Score:         sr.FinalScore(),
			IsOpen:        sr.IsOpen(),
			MatchedTags:   sr.MatchedTags(),
		}
		if sr.HasDistance() {
			dist := sr.DistanceKm()
			r.DistanceKm = &dist
		}
		resp.Results = append(resp.Results, r)
	}
	return resp
}
