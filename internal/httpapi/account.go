package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cityMover/internal/auth"
	"cityMover/models"
)

var errUserVanished = errors.New("user not found after insert")

type credentials struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Role     string `json:"role" form:"role"`
}

type sessionResponse struct {
	User    *models.User `json:"user"`
	Token   string       `json:"token"`
	Expires int64        `json:"expires_at"`
	Message string       `json:"message,omitempty"`
}

func (s *server) status(c *gin.Context) {
	st := s.Status(c.Request.Context())
	code := http.StatusOK
	if !st.Healthy() {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, st)
}

// register creates an account and logs it in straight away.
func (s *server) register(c *gin.Context) {
	var in credentials
	if err := c.ShouldBind(&in); err != nil {
		s.fail(c, http.StatusBadRequest, "invalid_request", nil)
		return
	}
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" {
		s.fail(c, http.StatusBadRequest, "missing_credentials", nil)
		return
	}
	role := models.Role(strings.TrimSpace(in.Role))
	if role == "" {
		role = models.RoleSeeker
	}
	if role != models.RoleSeeker && role != models.RoleOwner {
		s.fail(c, http.StatusBadRequest, "invalid_role", nil)
		return
	}

	ctx := c.Request.Context()
	id, err := s.Users.Create(ctx, in.Username, in.Password, role)
	if err != nil {
		s.handleError(c, err)
		return
	}
	u, err := s.Users.GetByID(ctx, id)
	if err != nil || u == nil {
		if err == nil {
			err = errUserVanished
		}
		s.handleError(c, err)
		return
	}
	s.log.Info("account created", zap.Int64("user_id", id), zap.String("role", string(role)))
	s.startSession(c, http.StatusCreated, u, "account_created")
}

func (s *server) login(c *gin.Context) {
	var in credentials
	if err := c.ShouldBind(&in); err != nil {
		s.fail(c, http.StatusBadRequest, "invalid_request", nil)
		return
	}
	if strings.TrimSpace(in.Username) == "" || in.Password == "" {
		s.fail(c, http.StatusBadRequest, "missing_credentials", nil)
		return
	}
	u, err := s.Users.Authenticate(c.Request.Context(), strings.TrimSpace(in.Username), in.Password)
	if err != nil {
		s.countLogin("error")
		s.handleError(c, err)
		return
	}
	if u == nil {
		s.countLogin("denied")
		s.fail(c, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	s.countLogin("ok")
	s.startSession(c, http.StatusOK, u, "")
}

func (s *server) startSession(c *gin.Context, status int, u *models.User, messageID string) {
	tok, p, err := s.Auth.Login(u)
	if err != nil {
		s.handleError(c, err)
		return
	}
	resp := sessionResponse{User: u, Token: tok, Expires: p.ExpiresAt.Unix()}
	if messageID != "" {
		resp.Message = s.t(c, messageID, nil)
	}
	c.JSON(status, resp)
}

func (s *server) logout(c *gin.Context) {
	p, err := auth.RequirePrincipal(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}
	if err := s.Auth.Logout(c.Request.Context(), p); err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": s.t(c, "logged_out", nil)})
}

func (s *server) me(c *gin.Context) {
	p, err := auth.RequirePrincipal(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}
	u, err := s.Users.GetByID(c.Request.Context(), p.UserID)
	if err != nil {
		s.handleError(c, err)
		return
	}
	if u == nil {
		s.fail(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (s *server) countLogin(result string) {
	if s.Metrics != nil {
		s.Metrics.Login(result)
	}
}
