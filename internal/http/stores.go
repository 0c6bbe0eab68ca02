package http

import (
	"time"

	"github.com/TJselevani/LibraryMGMT-sub000/internal/database/categories"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/entities"
)

// Each controller depends on a narrow store interface; this file collects
// them so the full data-access surface of the HTTP layer is visible in one
// place. The repositories under internal/database satisfy them.

// PatronStore provides patron registry access for the patrons controller.
type PatronStore interface {
	CreatePatron(patron *entities.Patron) (*entities.Patron, error)
	GetPatronByID(id uint) (*entities.Patron, error)
	GetPatronByPatronID(patronID string) (*entities.Patron, error)
	GetAllPatrons() ([]entities.Patron, error)
	GetPatronsByInstitution(institution string) ([]entities.Patron, error)
	GetPatronsByStatus(status entities.MembershipStatus) ([]entities.Patron, error)
	SearchPatrons(term string) ([]entities.Patron, error)
	UpdatePatron(id uint, updates map[string]any) (*entities.Patron, error)
	SetMembershipStatus(id uint, status entities.MembershipStatus) error
	DeletePatron(id uint) error
	GetPatronStats() (total, active, inactive int64, err error)
}

// BookStore provides catalog access for the books controller.
type BookStore interface {
	CreateBook(book *entities.Book) (*entities.Book, error)
	GetBookByID(id uint) (*entities.Book, error)
	GetBookByAccessionNo(accessionNo string) (*entities.Book, error)
	GetAllBooks() ([]entities.Book, error)
	GetAvailableBooks() ([]entities.Book, error)
	SearchBooks(query string) ([]entities.Book, error)
	UpdateBook(id uint, updates map[string]any) (*entities.Book, error)
	DeleteBook(id uint) error
	GetCatalogStats() (total, available int64, err error)
}

// CategoryStore provides the shelf list for the categories controller.
type CategoryStore interface {
	CreateCategory(category *entities.BookCategory) (*entities.BookCategory, error)
	GetCategoryByID(id uint) (*entities.BookCategory, error)
	GetAllCategories() ([]entities.BookCategory, error)
	GetCategoriesByAudience(audience entities.Audience) ([]entities.BookCategory, error)
	UpdateCategory(id uint, updates map[string]any) (*entities.BookCategory, error)
	DeleteCategory(id uint) error
	GetColorStats() (*categories.ColorStats, error)
}

// AttendanceStore provides visit tracking for the attendance controller.
type AttendanceStore interface {
	MarkAttendance(patronRef uint, date time.Time) (*entities.Attendance, error)
	RemoveAttendanceForPatron(patronRef uint, date time.Time) error
	GetAttendanceByDate(date time.Time) ([]entities.Attendance, error)
	GetAttendanceForPatron(patronRef uint) ([]entities.Attendance, error)
	CountAttendanceByDate(date time.Time) (int64, error)
}

// PaymentItemStore exposes the configured payment items.
type PaymentItemStore interface {
	GetActivePaymentItems() ([]entities.PaymentItem, error)
}
