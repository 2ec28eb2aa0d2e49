package establishment

import (
	"database/sql"
	"encoding/json"
	"fmt"

	domest "github.com/envie-local/envie/internal/domain/establishment"
	"github.com/envie-local/envie/internal/domain/geo"
)

// row mirrors the establishments table.
type row struct {
	ID           string
	Name         string
	Slug         string
	Description  string
	Activities   string
	OpeningHours sql.NullString
	Latitude     sql.NullFloat64
	Longitude    sql.NullFloat64
	Status       string
	City         string
	Address      string
}

func (r *row) dest() []any {
	return []any{
		&r.ID, &r.Name, &r.Slug, &r.Description, &r.Activities, &r.OpeningHours,
		&r.Latitude, &r.Longitude, &r.Status, &r.City, &r.Address,
	}
}

// toDomain converts a row. Malformed JSON columns are reported through warn
// and left empty.
func (r *row) toDomain(warn func(id, column string, err error)) domest.Establishment {
	e := domest.Establishment{
		ID:          r.ID,
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		Status:      domest.Status(r.Status),
		City:        r.City,
		Address:     r.Address,
	}

	if r.Activities != "" {
		if err := json.Unmarshal([]byte(r.Activities), &e.Activities); err != nil {
			warn(r.ID, "activities", err)
			e.Activities = nil
		}
	}
	if r.OpeningHours.Valid && r.OpeningHours.String != "" {
		if err := json.Unmarshal([]byte(r.OpeningHours.String), &e.OpeningHours); err != nil {
			warn(r.ID, "opening_hours", err)
			e.OpeningHours = nil
		}
	}
	if r.Latitude.Valid && r.Longitude.Valid {
		e.Coordinates = &geo.Coordinates{Lat: r.Latitude.Float64, Lng: r.Longitude.Float64}
	}
	return e
}

// fromDomain converts an establishment to column values.
func fromDomain(e *domest.Establishment) (row, error) {
	activities := e.Activities
	if activities == nil {
		activities = []string{}
	}
	act, err := json.Marshal(activities)
	if err != nil {
		return row{}, fmt.Errorf("marshal activities: %w", err)
	}

	r := row{
		ID:          e.ID,
		Name:        e.Name,
		Slug:        e.Slug,
		Description: e.Description,
		Activities:  string(act),
		Status:      string(e.Status),
		City:        e.City,
		Address:     e.Address,
	}
	if len(e.OpeningHours) > 0 {
		hours, err := json.Marshal(e.OpeningHours)
		if err != nil {
			return row{}, fmt.Errorf("marshal opening hours: %w", err)
		}
		r.OpeningHours = sql.NullString{String: string(hours), Valid: true}
	}
	if e.Coordinates != nil {
		r.Latitude = sql.NullFloat64{Float64: e.Coordinates.Lat, Valid: true}
		r.Longitude = sql.NullFloat64{Float64: e.Coordinates.Lng, Valid: true}
	}
	return r, nil
}
