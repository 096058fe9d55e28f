package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"cityMover/internal/auth"
	"cityMover/internal/config"
	"cityMover/internal/db"
	"cityMover/internal/i18n"
	"cityMover/internal/listing"
	"cityMover/internal/metrics"
	"cityMover/internal/testutil"
	"cityMover/repository"
)

type testAPI struct {
	router   *gin.Engine
	db       *sql.DB
	damascus int64
	aleppo   int64
}

func newTestAPI(t *testing.T, name string) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	d := testutil.OpenInMemoryDB(t, name)
	cities := repository.NewCityRepository(d)
	props := repository.NewPropertyRepository(d)
	tr, err := i18n.New("ar")
	require.NoError(t, err)

	r := NewRouter(Deps{
		Users:      repository.NewUserRepository(d),
		Owner:      listing.NewOwnerService(cities, props, nil, nil),
		Seeker:     listing.NewSeekerService(cities, props, nil),
		Auth:       auth.NewAuthenticator(auth.NewIssuer("test-secret", time.Hour), auth.NewMemoryStore()),
		Translator: tr,
		Metrics:    metrics.New(config.MetricsConfig{Namespace: "citymover_test"}),
		Status:     func(ctx context.Context) db.Status { return db.CheckStatus(ctx, d, name) },
	})
	return &testAPI{
		router:   r,
		db:       d,
		damascus: testutil.CityID(t, d, listing.Damascus),
		aleppo:   testutil.CityID(t, d, "حلب"),
	}
}

func (a *testAPI) do(method, path string, body any, token string, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) login(t *testing.T, username, password string) string {
	t.Helper()
	w := a.do(http.MethodPost, "/login", gin.H{"username": username, "password": password}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	tok := gjson.Get(w.Body.String(), "token").String()
	require.NotEmpty(t, tok)
	return tok
}

func id(n int64) string { return strconv.FormatInt(n, 10) }

func TestAccountFlow(t *testing.T) {
	a := newTestAPI(t, "apiaccounts")

	w := a.do(http.MethodPost, "/register", gin.H{"username": "newbie", "password": "pw", "role": "owner"}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := w.Body.String()
	assert.Equal(t, "newbie", gjson.Get(body, "user.username").String())
	assert.Equal(t, "owner", gjson.Get(body, "user.role").String())
	assert.Equal(t, "تم إنشاء الحساب بنجاح!", gjson.Get(body, "message").String())
	tok := gjson.Get(body, "token").String()
	require.NotEmpty(t, tok, "registration logs the user in")

	w = a.do(http.MethodPost, "/register", gin.H{"username": "newbie", "password": "other"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "username_taken", gjson.Get(w.Body.String(), "error").String())

	w = a.do(http.MethodPost, "/register", gin.H{"username": " ", "password": "pw"}, "")
	assert.Equal(t, "missing_credentials", gjson.Get(w.Body.String(), "error").String())
	w = a.do(http.MethodPost, "/register", gin.H{"username": "boss", "password": "pw", "role": "admin"}, "")
	assert.Equal(t, "invalid_role", gjson.Get(w.Body.String(), "error").String())

	w = a.do(http.MethodPost, "/login", gin.H{"username": "newbie", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "بيانات الدخول غير صحيحة", gjson.Get(w.Body.String(), "message").String())

	w = a.do(http.MethodGet, "/me", nil, tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "newbie", gjson.Get(w.Body.String(), "user.username").String())

	w = a.do(http.MethodPost, "/logout", nil, tok)
	require.Equal(t, http.StatusOK, w.Code)
	w = a.do(http.MethodGet, "/me", nil, tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "revoked token must be refused")

	w = a.do(http.MethodGet, "/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOwnerAndSeekerFlow(t *testing.T) {
	a := newTestAPI(t, "apilistings")
	owner := a.login(t, "owner1", "123456")
	seeker := a.login(t, "user1", "123456")

	w := a.do(http.MethodPost, "/owner/properties", gin.H{
		"city_id": id(a.damascus), "area_choice": "المزة", "title": "شقة", "rent": "250", "lat": "33.5", "lon": "36.25",
	}, owner)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := w.Body.String()
	propID := gjson.Get(body, "property.id").Int()
	assert.Equal(t, "تم حفظ العقار بنجاح ✅", gjson.Get(body, "message").String())
	assert.Equal(t, "https://maps.google.com?q=33.5,36.25", gjson.Get(body, "property.maps_url").String())
	assert.Equal(t, "owner1", gjson.Get(body, "property.owner_username").String())

	w = a.do(http.MethodPost, "/owner/properties", gin.H{"city_id": id(a.damascus), "area": "القدم", "title": "بيت"}, owner)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "area_not_active", gjson.Get(w.Body.String(), "error").String())
	assert.Contains(t, gjson.Get(w.Body.String(), "message").String(), "كفرسوسة")

	w = a.do(http.MethodPost, "/owner/properties?lang=en", gin.H{"city_id": id(a.aleppo), "area": "x", "title": "t", "rent": "lots"}, owner)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Rent must be a number", gjson.Get(w.Body.String(), "message").String())

	// Seekers cannot reach owner routes.
	w = a.do(http.MethodPost, "/owner/properties", gin.H{"city_id": id(a.aleppo), "area": "x", "title": "t"}, seeker)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodGet, "/cities/"+id(a.damascus)+"/areas/"+url.PathEscape("المزة")+"/properties", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gjson.Get(w.Body.String(), "active").Bool())
	assert.Equal(t, propID, gjson.Get(w.Body.String(), "properties.0.id").Int())

	w = a.do(http.MethodGet, "/cities/"+id(a.damascus)+"/areas/"+url.PathEscape("القدم")+"/properties", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, gjson.Get(w.Body.String(), "active").Bool())
	assert.Equal(t, "لا توجد منازل متاحة في هذه المنطقة", gjson.Get(w.Body.String(), "message").String())

	w = a.do(http.MethodGet, "/cities/"+id(a.aleppo)+"/areas/"+url.PathEscape("القدم")+"/properties", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gjson.Get(w.Body.String(), "active").Bool())
	assert.Equal(t, "لا يوجد منازل متاحة حالياً", gjson.Get(w.Body.String(), "message").String())

	// A second owner cannot edit or delete the listing.
	w = a.do(http.MethodPost, "/register", gin.H{"username": "owner2", "password": "pw", "role": "owner"}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	other := gjson.Get(w.Body.String(), "token").String()
	path := "/owner/properties/" + id(propID)
	w = a.do(http.MethodPatch, path, gin.H{"title": "mine now"}, other)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = a.do(http.MethodDelete, path, nil, other)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodPatch, path, gin.H{"title": "شقة واسعة", "rent": "300"}, owner)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "شقة واسعة", gjson.Get(w.Body.String(), "property.title").String())
	assert.Equal(t, int64(300), gjson.Get(w.Body.String(), "property.rent").Int())

	w = a.do(http.MethodGet, "/owner/properties", nil, owner)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), gjson.Get(w.Body.String(), "properties.#").Int())

	w = a.do(http.MethodDelete, path, nil, owner)
	require.Equal(t, http.StatusOK, w.Code)
	w = a.do(http.MethodGet, "/properties/"+id(propID), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "property_not_found", gjson.Get(w.Body.String(), "error").String())
}

func TestSearch(t *testing.T) {
	a := newTestAPI(t, "apisearch")
	owner := a.login(t, "owner1", "123456")
	for _, f := range []gin.H{
		{"city_id": id(a.damascus), "area_choice": "المزة", "title": "near", "rent": "100", "lat": "33.5140", "lon": "36.2770"},
		{"city_id": id(a.damascus), "area_choice": "الميدان", "title": "far", "rent": "400", "lat": "33.60", "lon": "36.30"},
		{"city_id": id(a.aleppo), "area": "Aziziyeh", "title": "aleppo", "rent": "50"},
	} {
		w := a.do(http.MethodPost, "/owner/properties", f, owner)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := a.do(http.MethodGet, "/properties", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(3), gjson.Get(w.Body.String(), "properties.#").Int())

	w = a.do(http.MethodGet, "/properties?max_rent=100", nil, "")
	assert.Equal(t, int64(2), gjson.Get(w.Body.String(), "properties.#").Int())

	w = a.do(http.MethodGet, "/properties?area=aziz", nil, "")
	assert.Equal(t, "aleppo", gjson.Get(w.Body.String(), "properties.0.title").String())

	w = a.do(http.MethodGet, "/properties?city_id="+id(a.damascus)+"&near_lat=33.5138&near_lon=36.2765&radius_km=1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), gjson.Get(w.Body.String(), "properties.#").Int())
	assert.Equal(t, "near", gjson.Get(w.Body.String(), "properties.0.title").String())

	w = a.do(http.MethodGet, "/properties?max_rent=cheap", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "rent_not_number", gjson.Get(w.Body.String(), "error").String())

	w = a.do(http.MethodGet, "/properties?near_lat=33.5", nil, "")
	assert.Equal(t, "invalid_coordinates", gjson.Get(w.Body.String(), "error").String())

	w = a.do(http.MethodGet, "/properties?area=nothing-here", nil, "", "Accept-Language", "en-US,en;q=0.8")
	assert.Equal(t, "No homes are available right now", gjson.Get(w.Body.String(), "message").String())
}

func TestCitiesAreasTips(t *testing.T) {
	a := newTestAPI(t, "apicities")

	w := a.do(http.MethodGet, "/cities", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(14), gjson.Get(w.Body.String(), "cities.#").Int())

	w = a.do(http.MethodGet, "/cities/"+id(a.damascus), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, listing.Damascus, gjson.Get(w.Body.String(), "city.name").String())
	assert.NotEmpty(t, gjson.Get(w.Body.String(), "map_url").String())

	w = a.do(http.MethodGet, "/cities/999999", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = a.do(http.MethodGet, "/cities/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, "/cities/"+id(a.damascus)+"/areas", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, gjson.Get(body, "restricted").Bool())
	assert.Equal(t, int64(3), gjson.Get(body, "active_areas.#").Int())
	assert.Equal(t, int64(3), gjson.Get(body, `areas.#(active==true)#`).Get("#").Int())
	assert.Contains(t, gjson.Get(body, "message").String(), "المناطق المفعلة")

	w = a.do(http.MethodGet, "/cities/"+id(a.aleppo)+"/areas?lang=en", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, gjson.Get(w.Body.String(), "restricted").Bool())
	assert.Equal(t, "Loaded 0 areas", gjson.Get(w.Body.String(), "message").String())

	w = a.do(http.MethodGet, "/cities/"+id(a.aleppo)+"/tips?lang=en", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body = w.Body.String()
	assert.Equal(t, "Quick tips", gjson.Get(body, "title").String())
	assert.Equal(t, int64(len(listing.TipIDs)), gjson.Get(body, "tips.#").Int())
	assert.Equal(t, "Get to know public transport in حلب", gjson.Get(body, "tips.1").String())
}

func TestStatusAndMetrics(t *testing.T) {
	a := newTestAPI(t, "apistatus")

	w := a.do(http.MethodGet, "/status", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Equal(t, "healthy", gjson.Get(body, "status").String())
	assert.Equal(t, int64(2), gjson.Get(body, "user_count").Int())

	require.NoError(t, a.db.Close())
	w = a.do(http.MethodGet, "/status", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = a.do(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "citymover_test_http_requests_total")
}
