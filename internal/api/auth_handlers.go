package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"timeclock/internal/auth"
	"timeclock/internal/metrics"
	"timeclock/internal/queue"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a user account and signs it in.
func (h *Handlers) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, 40001, "name, email and password are required")
		return
	}

	u, err := h.auth.SignUp(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNameRequired):
			fail(c, http.StatusUnprocessableEntity, 42201, "Name is required.")
		case errors.Is(err, auth.ErrInvalidEmail):
			fail(c, http.StatusUnprocessableEntity, 42202, "Invalid email address.")
		case errors.Is(err, auth.ErrWeakPassword):
			fail(c, http.StatusUnprocessableEntity, 42203, "Password must be at least 6 characters long.")
		case errors.Is(err, auth.ErrEmailInUse):
			fail(c, http.StatusConflict, 40901, "An account with this email already exists.")
		default:
			h.log.Error("register failed", zap.Error(err))
			fail(c, http.StatusInternalServerError, 50001, "Registration failed. Please try again.")
		}
		return
	}

	token, expires, err := auth.Issue(u.ID.String(), u.Role, h.cfg.JWTIssuer, h.cfg.JWTSigningKey, h.cfg.AccessTTL)
	if err != nil {
		fail(c, http.StatusInternalServerError, 50002, "Registration succeeded but sign-in failed. Please log in.")
		return
	}

	success(c, http.StatusCreated, "Account created successfully.", gin.H{
		"token":     token,
		"expiresAt": expires.Unix(),
		"user":      u,
	})
}

// Login verifies credentials, returns a session token, and queues a
// missed-schedule scan for the user.
func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, 40002, "email and password are required")
		return
	}

	u, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			metrics.SignInFailures.WithLabelValues("user_not_found").Inc()
			fail(c, http.StatusUnauthorized, 40101, "No account found with this email address.")
		case errors.Is(err, auth.ErrWrongPassword):
			metrics.SignInFailures.WithLabelValues("wrong_password").Inc()
			fail(c, http.StatusUnauthorized, 40102, "Incorrect password.")
		case errors.Is(err, auth.ErrInvalidEmail):
			metrics.SignInFailures.WithLabelValues("invalid_email").Inc()
			fail(c, http.StatusUnprocessableEntity, 42204, "Invalid email address.")
		case errors.Is(err, auth.ErrTooManyRequests):
			metrics.SignInFailures.WithLabelValues("throttled").Inc()
			fail(c, http.StatusTooManyRequests, 42901, "Too many failed attempts. Please try again later.")
		default:
			h.log.Error("login failed", zap.Error(err))
			fail(c, http.StatusInternalServerError, 50003, "Login failed. Please try again.")
		}
		return
	}

	token, expires, err := auth.Issue(u.ID.String(), u.Role, h.cfg.JWTIssuer, h.cfg.JWTSigningKey, h.cfg.AccessTTL)
	if err != nil {
		fail(c, http.StatusInternalServerError, 50004, "Login failed. Please try again.")
		return
	}

	if err := h.queue.Publish(c.Request.Context(), queue.Message{
		Type: queue.TypeBackfill,
		Body: []byte(u.ID.String()),
	}); err != nil {
		h.log.Warn("backfill enqueue failed", zap.Error(err))
	}

	success(c, http.StatusOK, "Logged in successfully.", gin.H{
		"token":     token,
		"expiresAt": expires.Unix(),
		"user":      u,
	})
}
