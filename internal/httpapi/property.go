package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"cityMover/internal/auth"
	"cityMover/internal/geo"
	"cityMover/internal/listing"
	"cityMover/repository"
)

// defaultRadiusKm applies when near_lat/near_lon are given without radius_km.
const defaultRadiusKm = 10.0

// browse is the seeker's city + area view.
func (s *server) browse(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		s.fail(c, http.StatusBadRequest, "invalid_request", nil)
		return
	}
	props, err := s.Seeker.Browse(c.Request.Context(), id, c.Param("area"))
	if errors.Is(err, listing.ErrAreaInactive) {
		c.JSON(http.StatusOK, gin.H{"active": false, "properties": []propertyView{}, "message": s.t(c, "area_inactive", nil)})
		return
	}
	if err != nil {
		s.handleError(c, err)
		return
	}
	resp := gin.H{"active": true, "properties": viewsOf(props)}
	if len(props) == 0 {
		resp["message"] = s.t(c, "no_properties", nil)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *server) search(c *gin.Context) {
	params, err := searchParams(c)
	if err != nil {
		s.handleError(c, err)
		return
	}
	props, err := s.Seeker.Search(c.Request.Context(), params)
	if err != nil {
		s.handleError(c, err)
		return
	}
	if s.Metrics != nil {
		s.Metrics.Searched()
	}
	resp := gin.H{"properties": viewsOf(props)}
	if len(props) == 0 {
		resp["message"] = s.t(c, "no_properties", nil)
	}
	c.JSON(http.StatusOK, resp)
}

// searchParams reads the optional filters from the query string.
func searchParams(c *gin.Context) (repository.SearchParams, error) {
	var p repository.SearchParams
	if v := strings.TrimSpace(c.Query("city_id")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return p, &listing.ValidationError{Field: "city_id", MessageID: "invalid_request"}
		}
		p.CityID = &id
	}
	p.Area = c.Query("area")
	if v := strings.TrimSpace(c.Query("max_rent")); v != "" {
		r, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return p, &listing.ValidationError{Field: "max_rent", MessageID: "rent_not_number"}
		}
		p.MaxRent = &r
	}
	lat, lon := strings.TrimSpace(c.Query("near_lat")), strings.TrimSpace(c.Query("near_lon"))
	if lat == "" && lon == "" {
		return p, nil
	}
	badNear := &listing.ValidationError{Field: "near", MessageID: "invalid_coordinates"}
	la, err1 := strconv.ParseFloat(lat, 64)
	lo, err2 := strconv.ParseFloat(lon, 64)
	if err1 != nil || err2 != nil {
		return p, badNear
	}
	radius := defaultRadiusKm
	if v := strings.TrimSpace(c.Query("radius_km")); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return p, badNear
		}
		radius = r
	}
	p.Near = &repository.NearFilter{Center: geo.Point{Lat: la, Lon: lo}, RadiusKm: radius}
	return p, nil
}

func (s *server) getProperty(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		s.fail(c, http.StatusBadRequest, "invalid_request", nil)
		return
	}
	p, err := s.Seeker.Property(c.Request.Context(), id)
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"property": viewOf(p)})
}

func (s *server) publish(c *gin.Context) {
	p, _ := auth.FromContext(c.Request.Context())
	var form listing.PropertyForm
	if err := c.ShouldBind(&form); err != nil {
		s.fail(c, http.StatusBadRequest, "invalid_request", nil)
		return
	}
	prop, err := s.Owner.Publish(c.Request.Context(), p.UserID, form)
	if err != nil {
		s.handleError(c, err)
		return
	}
	if s.Metrics != nil {
		s.Metrics.Published(prop.CityName)
	}
	c.JSON(http.StatusCreated, gin.H{"property": viewOf(prop), "message": s.t(c, "property_saved", nil)})
}

func (s *server) myProperties(c *gin.Context) {
	p, _ := auth.FromContext(c.Request.Context())
	props, err := s.Owner.ListMine(c.Request.Context(), p.UserID)
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"properties": viewsOf(props)})
}

func (s *server) editProperty(c *gin.Context) {
	p, _ := auth.FromContext(c.Request.Context())
	id, ok := pathID(c)
	if !ok {
		s.fail(c, http.StatusBadRequest, "invalid_request", nil)
		return
	}
	var form listing.EditForm
	if err := c.ShouldBindJSON(&form); err != nil {
		s.fail(c, http.StatusBadRequest, "invalid_request", nil)
		return
	}
	prop, err := s.Owner.Edit(c.Request.Context(), p.UserID, id, form)
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"property": viewOf(prop), "message": s.t(c, "property_updated", nil)})
}

func (s *server) removeProperty(c *gin.Context) {
	p, _ := auth.FromContext(c.Request.Context())
	id, ok := pathID(c)
	if !ok {
		s.fail(c, http.StatusBadRequest, "invalid_request", nil)
		return
	}
	if err := s.Owner.Remove(c.Request.Context(), p.UserID, id); err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": s.t(c, "property_deleted", nil)})
}
