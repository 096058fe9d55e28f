package repository

import (
	"context"
	"sort"
	"strings"

	"cityMover/internal/geo"
	"cityMover/models"
)

// NearFilter restricts results to properties within RadiusKm of Center.
type NearFilter struct {
	Center   geo.Point
	RadiusKm float64
}

// SearchParams represents the optional filters for Search. Unset filters are ignored.
type SearchParams struct {
	CityID  *int64
	Area    string // case-insensitive substring match
	MaxRent *int64 // inclusive upper bound
	Near    *NearFilter
}

// Search returns properties matching all given filters, newest first.
// When Near is set, rows without coordinates are dropped and the rest are
// ordered nearest first.
func (r *PropertyRepository) Search(ctx context.Context, p SearchParams) ([]models.Property, error) {
	var where []string
	var args []any

	if p.CityID != nil {
		where = append(where, "p.city_id = ?")
		args = append(args, *p.CityID)
	}
	if area := strings.TrimSpace(p.Area); area != "" {
		// LIKE is case-insensitive for ASCII letters.
		where = append(where, `p.area LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(area)+"%")
	}
	if p.MaxRent != nil {
		where = append(where, "p.rent <= ?")
		args = append(args, *p.MaxRent)
	}

	query := propertySelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += newestFirst

	out, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if p.Near == nil {
		return out, nil
	}
	return filterNear(out, *p.Near), nil
}

func filterNear(in []models.Property, f NearFilter) []models.Property {
	type hit struct {
		p    models.Property
		dist float64
	}
	var hits []hit
	for _, p := range in {
		if !p.HasLocation() {
			continue
		}
		at := geo.Point{Lat: *p.Lat, Lon: *p.Lon}
		if geo.IsWithinRadius(f.Center, at, f.RadiusKm) {
			hits = append(hits, hit{p: p, dist: geo.HaversineKm(f.Center, at)})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })
	out := make([]models.Property, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.p)
	}
	return out
}

// escapeLike escapes LIKE wildcards so the pattern matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
