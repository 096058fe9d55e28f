package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cityMover/internal/geo"
	"cityMover/internal/listing"
)

func (s *server) listCities(c *gin.Context) {
	cities, err := s.Seeker.Cities(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cities": cities})
}

func (s *server) getCity(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		s.fail(c, http.StatusBadRequest, "invalid_request", nil)
		return
	}
	city, err := s.Seeker.City(c.Request.Context(), id)
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"city": city, "map_url": geo.CitySearchURL(city.Name)})
}

func (s *server) listAreas(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		s.fail(c, http.StatusBadRequest, "invalid_request", nil)
		return
	}
	areas, err := s.Seeker.Areas(c.Request.Context(), id)
	if err != nil {
		s.handleError(c, err)
		return
	}
	msg := s.t(c, "areas_loaded", map[string]any{"Count": len(areas.Areas)})
	if areas.Restricted {
		msg = s.t(c, "active_areas", map[string]any{"Areas": joinAreas(areas.Active)})
	}
	c.JSON(http.StatusOK, gin.H{
		"city":         areas.City,
		"restricted":   areas.Restricted,
		"areas":        areas.Areas,
		"active_areas": areas.Active,
		"message":      msg,
	})
}

func (s *server) tips(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		s.fail(c, http.StatusBadRequest, "invalid_request", nil)
		return
	}
	city, err := s.Seeker.City(c.Request.Context(), id)
	if err != nil {
		s.handleError(c, err)
		return
	}
	data := map[string]any{"City": city.Name}
	tips := make([]string, 0, len(listing.TipIDs))
	for _, tid := range listing.TipIDs {
		tips = append(tips, s.t(c, tid, data))
	}
	c.JSON(http.StatusOK, gin.H{
		"city":    city,
		"title":   s.t(c, "tips_header", nil),
		"tips":    tips,
		"map_url": geo.CitySearchURL(city.Name),
	})
}
