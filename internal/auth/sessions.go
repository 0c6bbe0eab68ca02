package auth

import (
	"database/sql"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/TJselevani/LibraryMGMT-sub000/internal/config"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/entities"
)

// Session data keys
const (
	SessionKeyStaffID  = "staff_id"
	SessionKeyUsername = "username"
	SessionKeyRole     = "role"
	SessionKeyLoginAt  = "login_at"
)

func init() {
	gob.Register(entities.StaffRole(""))
	gob.Register(time.Time{})
}

// SessionManager wraps scs.SessionManager with staff-session helpers.
type SessionManager struct {
	*scs.SessionManager
	db *sql.DB
}

// NewSessionManager creates a session manager persisting sessions in the
// application database. The store's own cleanup goroutine is disabled; the
// scheduled session-cleanup task removes expired rows instead.
func NewSessionManager(sqlDB *sql.DB, cfg config.Auth) (*SessionManager, error) {
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, err
	}

	sm := scs.New()
	sm.Store = sqlite3store.NewWithCleanupInterval(sqlDB, 0)
	sm.Lifetime = cfg.SessionLifetime
	sm.IdleTimeout = cfg.SessionLifetime / 2

	sm.Cookie.Name = "session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteStrictMode
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm, db: sqlDB}, nil
}

// CreateSession starts a fresh session for a staff user after successful
// authentication. The token is renewed to prevent session fixation.
func (sm *SessionManager) CreateSession(r *http.Request, user *entities.StaffUser) error {
	if err := sm.RenewToken(r.Context()); err != nil {
		return err
	}

	// Stored as int to match GetInt retrieval
	sm.Put(r.Context(), SessionKeyStaffID, int(user.ID))
	sm.Put(r.Context(), SessionKeyUsername, user.Username)
	sm.Put(r.Context(), SessionKeyRole, user.Role)
	sm.Put(r.Context(), SessionKeyLoginAt, time.Now())
	return nil
}

// DestroySession removes all session data and invalidates the session.
func (sm *SessionManager) DestroySession(r *http.Request) error {
	return sm.Destroy(r.Context())
}

// GetStaffID retrieves the staff user ID from the session, 0 when absent.
func (sm *SessionManager) GetStaffID(r *http.Request) uint {
	return uint(sm.GetInt(r.Context(), SessionKeyStaffID))
}

// GetUsername retrieves the username from the session.
func (sm *SessionManager) GetUsername(r *http.Request) string {
	return sm.GetString(r.Context(), SessionKeyUsername)
}

// GetStaffRole retrieves the staff role from the session.
func (sm *SessionManager) GetStaffRole(r *http.Request) entities.StaffRole {
	role, ok := sm.Get(r.Context(), SessionKeyRole).(entities.StaffRole)
	if !ok {
		return ""
	}
	return role
}

// IsAuthenticated reports whether the request carries a valid staff session.
func (sm *SessionManager) IsAuthenticated(r *http.Request) bool {
	return sm.GetStaffID(r) != 0
}

// DeleteExpiredSessions removes session rows past their expiry. Called by the
// scheduled maintenance task.
func (sm *SessionManager) DeleteExpiredSessions() (int64, error) {
	result, err := sm.db.Exec(`DELETE FROM sessions WHERE expiry < julianday('now')`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
