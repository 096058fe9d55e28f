package listing

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"cityMover/models"
	"cityMover/repository"
)

// OwnerService manages an owner's listings.
type OwnerService struct {
	cities repository.CityRepositoryI
	props  repository.PropertyRepositoryI
	policy *Policy
	log    *zap.Logger
}

// NewOwnerService creates an OwnerService. A nil policy means DefaultPolicy.
func NewOwnerService(cities repository.CityRepositoryI, props repository.PropertyRepositoryI, policy *Policy, log *zap.Logger) *OwnerService {
	if policy == nil {
		policy = DefaultPolicy()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &OwnerService{cities: cities, props: props, policy: policy, log: log.Named("owner")}
}

// Publish validates the form, applies the neighborhood policy and stores the
// listing. Nothing is written when any check fails.
func (s *OwnerService) Publish(ctx context.Context, ownerID int64, form PropertyForm) (*models.Property, error) {
	cityID, err := strconv.ParseInt(strings.TrimSpace(form.CityID), 10, 64)
	if err != nil || cityID <= 0 {
		return nil, invalid("city_id", "city_required")
	}
	city, err := s.cities.GetByID(ctx, cityID)
	if err != nil {
		return nil, fmt.Errorf("get city: %w", err)
	}
	if city == nil {
		return nil, invalid("city_id", "city_required")
	}
	area := form.Area()
	if area == "" {
		return nil, invalid("area", "area_required")
	}
	if err := s.checkArea(city, area); err != nil {
		return nil, err
	}
	np, err := form.Parse(ownerID)
	if err != nil {
		return nil, err
	}
	id, err := s.props.Add(ctx, np)
	if err != nil {
		return nil, fmt.Errorf("add property: %w", err)
	}
	s.log.Info("property published",
		zap.Int64("property_id", id), zap.Int64("owner_id", ownerID), zap.String("city", city.Name), zap.String("area", area))
	return s.get(ctx, id)
}

// ListMine returns the owner's listings, newest first.
func (s *OwnerService) ListMine(ctx context.Context, ownerID int64) ([]models.Property, error) {
	out, err := s.props.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list owner properties: %w", err)
	}
	return out, nil
}

// Edit applies the provided fields to a listing the owner holds.
func (s *OwnerService) Edit(ctx context.Context, ownerID, propertyID int64, form EditForm) (*models.Property, error) {
	u, err := form.Parse()
	if err != nil {
		return nil, err
	}
	p, err := s.owned(ctx, ownerID, propertyID)
	if err != nil {
		return nil, err
	}
	if u.Area != nil && *u.Area != p.Area {
		if err := s.checkArea(&models.City{ID: p.CityID, Name: p.CityName}, *u.Area); err != nil {
			return nil, err
		}
	}
	if _, err := s.props.Update(ctx, propertyID, u); err != nil {
		return nil, fmt.Errorf("update property: %w", err)
	}
	s.log.Info("property updated", zap.Int64("property_id", propertyID), zap.Int64("owner_id", ownerID))
	return s.get(ctx, propertyID)
}

// Remove deletes a listing the owner holds.
func (s *OwnerService) Remove(ctx context.Context, ownerID, propertyID int64) error {
	ok, err := s.props.Delete(ctx, propertyID, ownerID)
	if err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	if !ok {
		// Tell a missing listing apart from someone else's.
		if _, err := s.owned(ctx, ownerID, propertyID); err != nil {
			return err
		}
		return ErrNotFound
	}
	s.log.Info("property removed", zap.Int64("property_id", propertyID), zap.Int64("owner_id", ownerID))
	return nil
}

func (s *OwnerService) checkArea(city *models.City, area string) error {
	if s.policy.Allows(city.Name, area) {
		return nil
	}
	return &ValidationError{
		Field:     "area",
		MessageID: "area_not_active",
		Data: map[string]any{
			"City":  city.Name,
			"Areas": strings.Join(s.policy.ActiveAreas(city.Name), "، "),
		},
	}
}

// owned fetches the property and verifies ownership.
func (s *OwnerService) owned(ctx context.Context, ownerID, propertyID int64) (*models.Property, error) {
	p, err := s.props.GetByID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("get property: %w", err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	if p.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return p, nil
}

func (s *OwnerService) get(ctx context.Context, id int64) (*models.Property, error) {
	p, err := s.props.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get property: %w", err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}
