// Package auth implements staff authentication: bcrypt password storage,
// account lockout after repeated failures, SQLite-backed sessions, and the
// Gin middleware that guards the HTTP API.
//
// Sessions are managed with alexedwards/scs and persisted in the application
// database, so a restart does not log staff out. Login endpoints are
// additionally throttled per client IP and username.
package auth
