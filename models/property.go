package models

import "time"

// Property is a rental listing owned by a single user.
// Nullable numeric columns use pointers to distinguish null vs zero.
type Property struct {
	ID          int64     `db:"id" json:"id"`
	OwnerID     int64     `db:"owner_id" json:"owner_id"`
	CityID      int64     `db:"city_id" json:"city_id"`
	Area        string    `db:"area" json:"area"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Rent        *int64    `db:"rent" json:"rent,omitempty"`
	Lat         *float64  `db:"lat" json:"lat,omitempty"`
	Lon         *float64  `db:"lon" json:"lon,omitempty"`
	Services    string    `db:"services" json:"services"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`

	// Joined columns.
	OwnerUsername string `db:"owner_username" json:"owner_username,omitempty"`
	CityName      string `db:"city_name" json:"city_name,omitempty"`
}

// HasLocation reports whether both coordinates are set.
func (p *Property) HasLocation() bool {
	return p.Lat != nil && p.Lon != nil
}

// NewProperty holds the values for a property insert.
type NewProperty struct {
	OwnerID     int64
	CityID      int64
	Area        string
	Title       string
	Description string
	Rent        *int64
	Lat         *float64
	Lon         *float64
	Services    string
}

// PropertyUpdate is a partial update. Only non-nil fields are written.
// ClearRent and ClearLocation set the nullable columns back to NULL.
type PropertyUpdate struct {
	Title         *string
	Area          *string
	Description   *string
	Rent          *int64
	Lat           *float64
	Lon           *float64
	Services      *string
	ClearRent     bool
	ClearLocation bool
}
