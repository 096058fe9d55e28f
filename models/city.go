package models

// City is one of the seeded cities. Cities are read-only after first start.
type City struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
