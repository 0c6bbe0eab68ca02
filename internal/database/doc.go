// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, payment item seeding
//	├── patrons/         # Patron CRUD, search and membership operations
//	├── books/           # Catalog CRUD and availability tracking
//	└── attendance/      # Daily visit records
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	// Initialize database connection
//	db, err := database.NewDatabase("./library.db")
//
//	// Create domain-specific repositories
//	patronsRepo := patrons.NewRepository(db.DB)
//	booksRepo := books.NewRepository(db.DB)
//
//	// Use repositories
//	patron, err := patronsRepo.GetPatronByPatronID("AB1F3")
//	book, err := booksRepo.GetBookByAccessionNo("ACC-0042")
//
// The borrow and payment ledgers in internal/ledger run their own
// transactions directly against *gorm.DB; repositories cover the
// non-transactional CRUD surface.
package database
