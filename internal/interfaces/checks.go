// Package interfaces holds compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile
// time, catching missing methods before runtime.
package interfaces

import (
	"github.com/TJselevani/LibraryMGMT-sub000/internal/auth"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/database"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/database/attendance"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/database/books"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/database/categories"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/database/patrons"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/http"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/ledger"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/tasks"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/tokenstore"
)

// Data access layer

var _ http.PatronStore = (*patrons.Repository)(nil)
var _ http.BookStore = (*books.Repository)(nil)
var _ http.CategoryStore = (*categories.Repository)(nil)
var _ http.AttendanceStore = (*attendance.Repository)(nil)
var _ http.PaymentItemStore = (*database.Database)(nil)

// Background tasks

var _ tasks.OverdueNoticeWriter = (*ledger.BorrowLedger)(nil)
var _ tasks.SessionCleaner = (*auth.SessionManager)(nil)

// Login audit trail
var _ auth.LoginRecorder = (*tokenstore.Store)(nil)
