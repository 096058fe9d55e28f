package listing

import (
	"strconv"
	"strings"

	"cityMover/internal/geo"
	"cityMover/models"
)

// PropertyForm is the owner's "add property" form as submitted. Numeric fields
// arrive as text; empty means unset.
type PropertyForm struct {
	CityID      string `json:"city_id" form:"city_id"`
	AreaChoice  string `json:"area_choice" form:"area_choice"` // picked from the area list
	AreaText    string `json:"area" form:"area"`               // typed by hand
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Rent        string `json:"rent" form:"rent"`
	Lat         string `json:"lat" form:"lat"`
	Lon         string `json:"lon" form:"lon"`
	Services    string `json:"services" form:"services"`
}

// Area returns the picked area, falling back to the typed one.
func (f PropertyForm) Area() string {
	if a := strings.TrimSpace(f.AreaChoice); a != "" {
		return a
	}
	return strings.TrimSpace(f.AreaText)
}

// Parse validates the form and converts it into an insert for ownerID.
// Checks run in the order the form presents them: city, area, title, rent,
// then coordinates.
func (f PropertyForm) Parse(ownerID int64) (models.NewProperty, error) {
	cityID, err := strconv.ParseInt(strings.TrimSpace(f.CityID), 10, 64)
	if err != nil || cityID <= 0 {
		return models.NewProperty{}, invalid("city_id", "city_required")
	}
	area := f.Area()
	if area == "" {
		return models.NewProperty{}, invalid("area", "area_required")
	}
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return models.NewProperty{}, invalid("title", "title_required")
	}
	rent, err := parseRent(f.Rent)
	if err != nil {
		return models.NewProperty{}, err
	}
	lat, lon, err := parseCoords(f.Lat, f.Lon)
	if err != nil {
		return models.NewProperty{}, err
	}
	return models.NewProperty{
		OwnerID:     ownerID,
		CityID:      cityID,
		Area:        area,
		Title:       title,
		Description: strings.TrimSpace(f.Description),
		Rent:        rent,
		Lat:         lat,
		Lon:         lon,
		Services:    strings.TrimSpace(f.Services),
	}, nil
}

// EditForm is the owner's edit dialog. Nil fields are left untouched.
type EditForm struct {
	Title       *string `json:"title"`
	Area        *string `json:"area"`
	Description *string `json:"description"`
	Rent        *string `json:"rent"`
	Lat         *string `json:"lat"`
	Lon         *string `json:"lon"`
	Services    *string `json:"services"`
}

// Parse converts the provided fields into a partial update. A provided but
// empty title or area is rejected since both are required on a listing; an
// empty rent or coordinate pair clears the stored value.
func (f EditForm) Parse() (models.PropertyUpdate, error) {
	var u models.PropertyUpdate
	if f.Title != nil {
		t := strings.TrimSpace(*f.Title)
		if t == "" {
			return u, invalid("title", "title_required")
		}
		u.Title = &t
	}
	if f.Area != nil {
		a := strings.TrimSpace(*f.Area)
		if a == "" {
			return u, invalid("area", "area_required")
		}
		u.Area = &a
	}
	if f.Description != nil {
		d := strings.TrimSpace(*f.Description)
		u.Description = &d
	}
	if f.Services != nil {
		s := strings.TrimSpace(*f.Services)
		u.Services = &s
	}
	if f.Rent != nil {
		rent, err := parseRent(*f.Rent)
		if err != nil {
			return u, err
		}
		u.Rent = rent
		u.ClearRent = rent == nil
	}
	if f.Lat != nil || f.Lon != nil {
		lat, lon, err := parseCoords(deref(f.Lat), deref(f.Lon))
		if err != nil {
			return u, err
		}
		u.Lat, u.Lon = lat, lon
		u.ClearLocation = lat == nil
	}
	return u, nil
}

func parseRent(s string) (*int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, invalid("rent", "rent_not_number")
	}
	return &v, nil
}

// parseCoords parses an optional coordinate pair. Both must be given together
// and lie within WGS84 ranges.
func parseCoords(latS, lonS string) (*float64, *float64, error) {
	latS, lonS = strings.TrimSpace(latS), strings.TrimSpace(lonS)
	if latS == "" && lonS == "" {
		return nil, nil, nil
	}
	if latS == "" || lonS == "" {
		return nil, nil, invalid("coordinates", "invalid_coordinates")
	}
	lat, err1 := strconv.ParseFloat(latS, 64)
	lon, err2 := strconv.ParseFloat(lonS, 64)
	if err1 != nil || err2 != nil || !(geo.Point{Lat: lat, Lon: lon}).Valid() {
		return nil, nil, invalid("coordinates", "invalid_coordinates")
	}
	return &lat, &lon, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
