package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"cityMover/models"
)

// PropertyRepository is the core repository for Property entities.
// Reads are joined with users and cities so every row carries the owner's
// username and the city name.
type PropertyRepository struct {
	db *sql.DB
}

// NewPropertyRepository creates a new PropertyRepository.
func NewPropertyRepository(db *sql.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

const propertySelect = `
SELECT p.id, p.owner_id, p.city_id, p.area, p.title, p.description, p.rent, p.lat, p.lon, p.services, p.created_at,
       u.username, c.name
FROM properties p
JOIN users u ON u.id = p.owner_id
JOIN cities c ON c.id = p.city_id`

const newestFirst = ` ORDER BY p.created_at DESC, p.id DESC`

// Add inserts a property and returns its ID. Field ranges are not validated here;
// owner and city must exist or the foreign keys reject the row.
func (r *PropertyRepository) Add(ctx context.Context, p models.NewProperty) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `INSERT INTO properties (owner_id, city_id, area, title, description, rent, lat, lon, services) VALUES (?,?,?,?,?,?,?,?,?)`,
		p.OwnerID, p.CityID, p.Area, p.Title, p.Description, p.Rent, p.Lat, p.Lon, p.Services)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Update applies the non-nil fields of u to the property and reports whether a
// row changed. The clear flags write NULL. It does not check ownership; callers that act for an owner must
// verify it first. An empty update touches nothing and returns false.
func (r *PropertyRepository) Update(ctx context.Context, id int64, u models.PropertyUpdate) (bool, error) {
	var sets []string
	var args []any
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if u.Title != nil {
		add("title", *u.Title)
	}
	if u.Area != nil {
		add("area", *u.Area)
	}
	if u.Description != nil {
		add("description", *u.Description)
	}
	if u.Rent != nil {
		add("rent", *u.Rent)
	} else if u.ClearRent {
		add("rent", nil)
	}
	if u.Lat != nil {
		add("lat", *u.Lat)
	}
	if u.Lon != nil {
		add("lon", *u.Lon)
	}
	if u.Lat == nil && u.Lon == nil && u.ClearLocation {
		add("lat", nil)
		add("lon", nil)
	}
	if u.Services != nil {
		add("services", *u.Services)
	}
	if len(sets) == 0 {
		return false, nil
	}
	args = append(args, id)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE properties SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes the property only if it belongs to ownerID.
// It reports whether a row was removed.
func (r *PropertyRepository) Delete(ctx context.Context, id, ownerID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM properties WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetByID fetches a property by its ID.
func (r *PropertyRepository) GetByID(ctx context.Context, id int64) (*models.Property, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	p, err := scanProperty(r.db.QueryRowContext(ctx, propertySelect+` WHERE p.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// ListByCity returns every property in a city, newest first.
func (r *PropertyRepository) ListByCity(ctx context.Context, cityID int64) ([]models.Property, error) {
	return r.query(ctx, propertySelect+` WHERE p.city_id = ?`+newestFirst, cityID)
}

// ListByOwner returns the properties listed by ownerID, newest first.
func (r *PropertyRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.Property, error) {
	return r.query(ctx, propertySelect+` WHERE p.owner_id = ?`+newestFirst, ownerID)
}

// ListByCityAndArea returns properties whose city and area both match exactly, newest first.
func (r *PropertyRepository) ListByCityAndArea(ctx context.Context, cityID int64, area string) ([]models.Property, error) {
	return r.query(ctx, propertySelect+` WHERE p.city_id = ? AND p.area = ?`+newestFirst, cityID, area)
}

// ListAreas returns the distinct non-empty areas listed in a city, alphabetically.
func (r *PropertyRepository) ListAreas(ctx context.Context, cityID int64) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
SELECT DISTINCT area FROM properties
WHERE city_id = ? AND area IS NOT NULL AND area != ''
ORDER BY area`, cityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PropertyRepository) query(ctx context.Context, q string, args ...any) ([]models.Property, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPropertyRows(rows)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProperty(s rowScanner) (*models.Property, error) {
	var p models.Property
	var area, description, services sql.NullString
	var rent sql.NullInt64
	var lat, lon sql.NullFloat64
	var created sql.NullTime
	if err := s.Scan(&p.ID, &p.OwnerID, &p.CityID, &area, &p.Title, &description, &rent, &lat, &lon, &services, &created,
		&p.OwnerUsername, &p.CityName); err != nil {
		return nil, err
	}
	p.Area = area.String
	p.Description = description.String
	p.Services = services.String
	if rent.Valid {
		v := rent.Int64
		p.Rent = &v
	}
	if lat.Valid {
		v := lat.Float64
		p.Lat = &v
	}
	if lon.Valid {
		v := lon.Float64
		p.Lon = &v
	}
	if created.Valid {
		p.CreatedAt = created.Time
	}
	return &p, nil
}

// scanPropertyRows is a helper to scan rows into Property objects.
func scanPropertyRows(rows *sql.Rows) ([]models.Property, error) {
	var out []models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
