package http

import (
	"github.com/TJselevani/LibraryMGMT-sub000/internal/audit"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/auth"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/config"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/covers"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/database"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/ledger"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/metadata"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/tasks"
)

// RouterConfig carries every dependency the router needs, replacing a long
// parameter list in NewRouter.
type RouterConfig struct {
	// Data access
	Database        *database.Database
	PatronStore     PatronStore
	BookStore       BookStore
	CategoryStore   CategoryStore
	AttendanceStore AttendanceStore

	// Domain ledgers
	BorrowLedger  *ledger.BorrowLedger
	PaymentLedger *ledger.PaymentLedger

	// Authentication
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	AuthConfig     config.Auth
	LoginRecorder  auth.LoginRecorder

	// Task queue client (optional)
	TaskClient *tasks.Client

	// Catalog enrichment (optional)
	MetadataClient *metadata.OpenLibraryClient
	CoverCache     *covers.Cache

	// Audit trail for staff write operations (optional)
	Auditor *audit.Auditor

	// Application info
	Version   string
	StationID string
}
