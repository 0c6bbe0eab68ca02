package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/TJselevani/LibraryMGMT-sub000/internal/entities"
)

// Context keys for the authenticated staff user
const (
	ContextKeyStaffID  = "auth_staff_id"
	ContextKeyUsername = "auth_username"
	ContextKeyRole     = "auth_role"
)

// Middleware authenticates API requests against the session store.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
	publicPaths    map[string]bool
}

// NewMiddleware creates the session authentication middleware.
func NewMiddleware(service *Service, sessionManager *SessionManager) *Middleware {
	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
		publicPaths: map[string]bool{
			"/health":          true,
			"/ping":            true,
			"/api/auth/login":  true,
			"/api/auth/setup":  true,
			"/api/auth/status": true,
		},
	}
}

// Handler returns a Gin middleware that rejects unauthenticated requests
// with 401. Public paths pass through.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.isPublicPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		user := m.sessionUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		c.Set(ContextKeyStaffID, user.ID)
		c.Set(ContextKeyUsername, user.Username)
		c.Set(ContextKeyRole, user.Role)
		c.Next()
	}
}

func (m *Middleware) sessionUser(c *gin.Context) *entities.StaffUser {
	if m.sessionManager == nil {
		return nil
	}
	staffID := m.sessionManager.GetStaffID(c.Request)
	if staffID == 0 {
		return nil
	}
	user, err := m.service.GetStaffUserByID(staffID)
	if err != nil || !user.IsActive {
		return nil
	}
	return user
}

func (m *Middleware) isPublicPath(path string) bool {
	if m.publicPaths[path] {
		return true
	}
	return strings.HasPrefix(path, "/static/")
}

// RequireRole returns a middleware enforcing a minimum staff role.
func (m *Middleware) RequireRole(minimum entities.StaffRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := entities.StaffUser{Role: GetStaffRole(c)}
		if !user.HasPermission(minimum) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "insufficient permissions",
			})
			return
		}
		c.Next()
	}
}

// GetStaffID retrieves the authenticated staff user's ID from the context,
// 0 when unauthenticated.
func GetStaffID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyStaffID); exists {
		if staffID, ok := id.(uint); ok {
			return staffID
		}
	}
	return 0
}

// GetUsername retrieves the authenticated staff user's username.
func GetUsername(c *gin.Context) string {
	if name, exists := c.Get(ContextKeyUsername); exists {
		if username, ok := name.(string); ok {
			return username
		}
	}
	return ""
}

// GetStaffRole retrieves the authenticated staff user's role.
func GetStaffRole(c *gin.Context) entities.StaffRole {
	if r, exists := c.Get(ContextKeyRole); exists {
		if role, ok := r.(entities.StaffRole); ok {
			return role
		}
	}
	return ""
}
