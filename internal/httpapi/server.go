// Package httpapi exposes the login, seeker and owner screens as a JSON API.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cityMover/internal/auth"
	"cityMover/internal/db"
	"cityMover/internal/i18n"
	"cityMover/internal/listing"
	"cityMover/internal/metrics"
	"cityMover/repository"
)

// Deps bundles what the handlers need.
type Deps struct {
	Users      repository.UserRepositoryI
	Owner      *listing.OwnerService
	Seeker     *listing.SeekerService
	Auth       *auth.Authenticator
	Translator *i18n.Translator
	Metrics    *metrics.Metrics
	Status     func(ctx context.Context) db.Status
	Logger     *zap.Logger
}

type server struct {
	Deps
	log *zap.Logger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	s := &server{Deps: d, log: d.Logger.Named("http")}

	r := gin.New()
	r.Use(s.recoveryMiddleware(), s.loggerMiddleware())
	if s.Metrics != nil {
		r.Use(s.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(s.Metrics.Handler()))
	}
	r.Use(s.languageMiddleware())

	r.GET("/status", s.status)
	r.POST("/register", s.register)
	r.POST("/login", s.login)

	r.GET("/cities", s.listCities)
	r.GET("/cities/:id", s.getCity)
	r.GET("/cities/:id/areas", s.listAreas)
	r.GET("/cities/:id/tips", s.tips)
	r.GET("/cities/:id/areas/:area/properties", s.browse)
	r.GET("/properties", s.search)
	r.GET("/properties/:id", s.getProperty)

	authed := r.Group("/", s.authMiddleware())
	authed.POST("/logout", s.logout)
	authed.GET("/me", s.me)

	owner := authed.Group("/owner", s.ownerMiddleware())
	owner.POST("/properties", s.publish)
	owner.GET("/properties", s.myProperties)
	owner.PATCH("/properties/:id", s.editProperty)
	owner.DELETE("/properties/:id", s.removeProperty)

	return r
}

// Start serves the router on addr and returns a shutdown function.
func Start(addr string, handler http.Handler) (func(context.Context) error, error) {
	if addr == "" {
		addr = ":8080"
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Error("http server stopped", zap.Error(err))
		}
	}()
	return srv.Shutdown, nil
}
