package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cityMover/internal/auth"
	"cityMover/internal/geo"
	"cityMover/internal/listing"
	"cityMover/models"
	"cityMover/repository"
)

func (s *server) lang(c *gin.Context) string {
	if v, ok := c.Get(langKey); ok {
		if l, ok := v.(string); ok {
			return l
		}
	}
	return s.Translator.DefaultLang()
}

func (s *server) t(c *gin.Context, id string, data map[string]any) string {
	return s.Translator.Translate(s.lang(c), id, data)
}

// fail aborts with {"error": id, "message": localized text}.
func (s *server) fail(c *gin.Context, status int, id string, data map[string]any) {
	c.AbortWithStatusJSON(status, gin.H{"error": id, "message": s.t(c, id, data)})
}

// handleError maps service errors to HTTP responses. Anything unrecognized is a 500
// carrying the error text, as the app's "an error occurred" message does.
func (s *server) handleError(c *gin.Context, err error) {
	var ve *listing.ValidationError
	switch {
	case errors.As(err, &ve):
		if s.Metrics != nil {
			s.Metrics.Rejected(ve.MessageID)
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   ve.MessageID,
			"field":   ve.Field,
			"message": s.t(c, ve.MessageID, ve.Data),
		})
	case errors.Is(err, repository.ErrDuplicateUsername):
		s.fail(c, http.StatusConflict, "username_taken", nil)
	case errors.Is(err, listing.ErrNotFound):
		s.fail(c, http.StatusNotFound, "property_not_found", nil)
	case errors.Is(err, listing.ErrCityNotFound):
		s.fail(c, http.StatusNotFound, "city_not_found", nil)
	case errors.Is(err, listing.ErrForbidden), errors.Is(err, auth.ErrForbidden):
		s.fail(c, http.StatusForbidden, "forbidden", nil)
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrRevoked):
		s.fail(c, http.StatusUnauthorized, "unauthorized", nil)
	default:
		s.log.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		s.fail(c, http.StatusInternalServerError, "internal_error", map[string]any{"Detail": err.Error()})
	}
}

// propertyView is a listing as returned to clients.
type propertyView struct {
	models.Property
	MapsURL string `json:"maps_url,omitempty"`
}

func viewOf(p *models.Property) propertyView {
	v := propertyView{Property: *p}
	if p.HasLocation() {
		v.MapsURL = geo.MapsURL(*p.Lat, *p.Lon)
	}
	return v
}

func viewsOf(ps []models.Property) []propertyView {
	out := make([]propertyView, 0, len(ps))
	for i := range ps {
		out = append(out, viewOf(&ps[i]))
	}
	return out
}

func joinAreas(areas []string) string { return strings.Join(areas, "، ") }

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}
