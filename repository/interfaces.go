package repository

import (
	"context"

	"cityMover/models"
)

// UserRepositoryI defines operations on User entities.
type UserRepositoryI interface {
	Create(ctx context.Context, username, password string, role models.Role) (int64, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// CityRepositoryI defines read operations on City entities.
type CityRepositoryI interface {
	List(ctx context.Context) ([]models.City, error)
	GetByID(ctx context.Context, id int64) (*models.City, error)
}

// PropertyRepositoryI defines operations on Property entities.
type PropertyRepositoryI interface {
	Add(ctx context.Context, p models.NewProperty) (int64, error)
	Update(ctx context.Context, id int64, u models.PropertyUpdate) (bool, error)
	Delete(ctx context.Context, id, ownerID int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*models.Property, error)
	ListByCity(ctx context.Context, cityID int64) ([]models.Property, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]models.Property, error)
	ListByCityAndArea(ctx context.Context, cityID int64, area string) ([]models.Property, error)
	ListAreas(ctx context.Context, cityID int64) ([]string, error)
	Search(ctx context.Context, p SearchParams) ([]models.Property, error)
}

var (
	_ UserRepositoryI     = (*UserRepository)(nil)
	_ CityRepositoryI     = (*CityRepository)(nil)
	_ PropertyRepositoryI = (*PropertyRepository)(nil)
)
