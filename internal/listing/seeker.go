package listing

import (
	"context"
	"fmt"
	"strings"

	"cityMover/internal/geo"
	"cityMover/models"
	"cityMover/repository"
)

// TipIDs are the message ids of the relocation tips, in display order.
var TipIDs = []string{"tip_budget", "tip_transport", "tip_services", "tip_visit", "tip_quality", "tip_locals"}

// AreaOption is one entry in a city's area list.
type AreaOption struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// AreaList describes the areas a seeker can pick in a city.
type AreaList struct {
	City       models.City  `json:"city"`
	Restricted bool         `json:"restricted"`
	Areas      []AreaOption `json:"areas"`
	Active     []string     `json:"active_areas,omitempty"`
}

// SeekerService serves the read side used by people looking for a home.
type SeekerService struct {
	cities repository.CityRepositoryI
	props  repository.PropertyRepositoryI
	policy *Policy
}

// NewSeekerService creates a SeekerService. A nil policy means DefaultPolicy.
func NewSeekerService(cities repository.CityRepositoryI, props repository.PropertyRepositoryI, policy *Policy) *SeekerService {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &SeekerService{cities: cities, props: props, policy: policy}
}

// Cities lists every city.
func (s *SeekerService) Cities(ctx context.Context) ([]models.City, error) {
	out, err := s.cities.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	return out, nil
}

// City returns a city or ErrCityNotFound.
func (s *SeekerService) City(ctx context.Context, id int64) (*models.City, error) {
	c, err := s.cities.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get city: %w", err)
	}
	if c == nil {
		return nil, ErrCityNotFound
	}
	return c, nil
}

// Areas lists the pickable areas of a city. A restricted city offers its whole
// catalogue with active flags; others offer the areas that have listings.
func (s *SeekerService) Areas(ctx context.Context, cityID int64) (*AreaList, error) {
	c, err := s.City(ctx, cityID)
	if err != nil {
		return nil, err
	}
	out := &AreaList{City: *c}
	if s.policy.Restricted(c.Name) {
		out.Restricted = true
		out.Active = s.policy.ActiveAreas(c.Name)
		for _, a := range s.policy.KnownAreas(c.Name) {
			out.Areas = append(out.Areas, AreaOption{Name: a, Active: s.policy.Allows(c.Name, a)})
		}
		return out, nil
	}
	listed, err := s.props.ListAreas(ctx, cityID)
	if err != nil {
		return nil, fmt.Errorf("list areas: %w", err)
	}
	for _, a := range listed {
		out.Areas = append(out.Areas, AreaOption{Name: a, Active: true})
	}
	return out, nil
}

// Browse returns the listings in one area of a city, newest first. Inactive
// areas of a restricted city yield ErrAreaInactive.
func (s *SeekerService) Browse(ctx context.Context, cityID int64, area string) ([]models.Property, error) {
	area = strings.TrimSpace(area)
	if area == "" {
		return nil, invalid("area", "area_required")
	}
	c, err := s.City(ctx, cityID)
	if err != nil {
		return nil, err
	}
	if !s.policy.Allows(c.Name, area) {
		return nil, ErrAreaInactive
	}
	out, err := s.props.ListByCityAndArea(ctx, cityID, area)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	return out, nil
}

// Search runs a filtered search. A proximity filter needs a valid center and a
// radius in (0, geo.MaxRadiusKm].
func (s *SeekerService) Search(ctx context.Context, p repository.SearchParams) ([]models.Property, error) {
	if n := p.Near; n != nil {
		if !n.Center.Valid() || !(n.RadiusKm > 0 && n.RadiusKm <= geo.MaxRadiusKm) {
			return nil, invalid("near", "invalid_coordinates")
		}
	}
	out, err := s.props.Search(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("search properties: %w", err)
	}
	return out, nil
}

// Property returns one listing or ErrNotFound.
func (s *SeekerService) Property(ctx context.Context, id int64) (*models.Property, error) {
	p, err := s.props.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get property: %w", err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}
