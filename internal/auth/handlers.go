package auth

import (
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/TJselevani/LibraryMGMT-sub000/internal/config"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/entities"
)

// setupMutex serializes first-admin setup so concurrent requests cannot both
// pass the HasUsers check.
var setupMutex sync.Mutex

// LoginRecorder persists the most recent operator login on the station
// identity, so a restarted desk client can show who was signed in last.
type LoginRecorder interface {
	RecordLogin(username string) error
}

// Controller exposes the authentication endpoints.
type Controller struct {
	service        *Service
	sessionManager *SessionManager
	rateLimiter    *RateLimiter
	loginRecorder  LoginRecorder
}

// NewController creates the authentication controller. recorder may be nil
// when no station identity store is configured.
func NewController(service *Service, sessionManager *SessionManager, cfg config.Auth, recorder LoginRecorder) *Controller {
	return &Controller{
		service:        service,
		sessionManager: sessionManager,
		loginRecorder:  recorder,
		rateLimiter: NewRateLimiter(RateLimitConfig{
			MaxAttempts:     cfg.MaxLoginAttempts,
			LockoutDuration: cfg.LockoutDuration,
		}),
	}
}

// recordOperatorLogin notes the operator on the station identity. Failures
// only log; the login itself has already succeeded.
func (ac *Controller) recordOperatorLogin(username string) {
	if ac.loginRecorder == nil {
		return
	}
	if err := ac.loginRecorder.RecordLogin(username); err != nil {
		log.Printf("Failed to record operator login for %s: %v", username, err)
	}
}

// RegisterRoutes registers the authentication endpoints.
func (ac *Controller) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/auth/login", ac.Login)
	router.POST("/api/auth/logout", ac.Logout)
	router.GET("/api/auth/me", ac.Me)
	router.GET("/api/auth/status", ac.Status)
	router.POST("/api/auth/setup", ac.Setup)
	router.POST("/api/auth/change-password", ac.ChangePassword)
}

// Stop releases the rate limiter's background goroutine.
func (ac *Controller) Stop() {
	if ac.rateLimiter != nil {
		ac.rateLimiter.Stop()
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and starts a session.
func (ac *Controller) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	clientIP := c.ClientIP()
	if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, req.Username); !allowed {
		c.Header("Retry-After", retryAfter.String())
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "too many login attempts",
			"retry_after": retryAfter.String(),
		})
		return
	}

	user, err := ac.service.Authenticate(req.Username, req.Password)
	if err != nil {
		ac.rateLimiter.RecordFailure(clientIP, req.Username)

		switch {
		case errors.Is(err, ErrAccountLocked):
			c.JSON(http.StatusForbidden, gin.H{"error": "account is locked, try again later"})
		case errors.Is(err, ErrUserInactive):
			c.JSON(http.StatusForbidden, gin.H{"error": "account is deactivated"})
		default:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		}
		return
	}

	ac.rateLimiter.RecordSuccess(clientIP, req.Username)

	if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	ac.recordOperatorLogin(user.Username)

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout destroys the current session.
func (ac *Controller) Logout(c *gin.Context) {
	_ = ac.sessionManager.DestroySession(c.Request)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the authenticated staff user.
func (ac *Controller) Me(c *gin.Context) {
	staffID := GetStaffID(c)
	if staffID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	user, err := ac.service.GetStaffUserByID(staffID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "staff user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Status reports whether initial setup is still needed.
func (ac *Controller) Status(c *gin.Context) {
	hasUsers, err := ac.service.HasUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"setup_required": !hasUsers,
		"authenticated":  ac.sessionManager.IsAuthenticated(c.Request),
	})
}

type setupRequest struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	FullName        string `json:"full_name"`
}

// Setup creates the first admin account. Refused once any staff user exists.
func (ac *Controller) Setup(c *gin.Context) {
	setupMutex.Lock()
	defer setupMutex.Unlock()

	hasUsers, err := ac.service.HasUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	if hasUsers {
		c.JSON(http.StatusConflict, gin.H{"error": "setup already completed"})
		return
	}

	var req setupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username, email and password are required"})
		return
	}
	if req.Password != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "passwords do not match"})
		return
	}

	user, err := ac.service.CreateStaffUser(CreateStaffInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     entities.StaffRoleAdmin,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_ = ac.sessionManager.CreateSession(c.Request, user)
	ac.recordOperatorLogin(user.Username)
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePassword updates the authenticated user's password.
func (ac *Controller) ChangePassword(c *gin.Context) {
	staffID := GetStaffID(c)
	if staffID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "old and new passwords are required"})
		return
	}

	err := ac.service.ChangePassword(staffID, req.OldPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidPassword):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "old password is incorrect"})
		case errors.Is(err, ErrPasswordTooShort), errors.Is(err, ErrPasswordTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to change password"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password changed"})
}
