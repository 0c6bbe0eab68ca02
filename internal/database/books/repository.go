// Package books provides database operations for the catalog.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetBookByAccessionNo("ACC-0042")
package books

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/TJselevani/LibraryMGMT-sub000/internal/entities"
)

var (
	// ErrMissingFields is returned when a required catalog field is empty.
	ErrMissingFields = errors.New("title, author and accession number are required")

	// ErrHasBorrowHistory is returned when deleting a book that has borrow records.
	ErrHasBorrowHistory = errors.New("book has existing borrow records")

	// ErrDuplicateAccession is returned when the accession number is already catalogued.
	ErrDuplicateAccession = errors.New("accession number already catalogued")
)

// Repository handles all catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateBook inserts a new catalog entry. Accession numbers are unique.
func (r *Repository) CreateBook(book *entities.Book) (*entities.Book, error) {
	if book.Title == "" || book.Author == "" || book.AccessionNo == "" {
		return nil, ErrMissingFields
	}
	book.IsAvailable = true
	if err := r.db.Create(book).Error; err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrDuplicateAccession
		}
		return nil, err
	}
	return book, nil
}

// GetBookByID retrieves a book by primary key.
func (r *Repository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetBookByAccessionNo retrieves a book by its accession number.
func (r *Repository) GetBookByAccessionNo(accessionNo string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Where("accession_no = ?", accessionNo).First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetAllBooks returns the full catalog.
func (r *Repository) GetAllBooks() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Order("title ASC").Find(&books).Error
	return books, err
}

// GetAvailableBooks returns books without an open borrow.
func (r *Repository) GetAvailableBooks() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Where("is_available = ?", true).Order("title ASC").Find(&books).Error
	return books, err
}

// SearchBooks matches against title, author or accession number.
func (r *Repository) SearchBooks(query string) ([]entities.Book, error) {
	var books []entities.Book
	pattern := "%" + query + "%"
	err := r.db.Where(
		"LOWER(title) LIKE LOWER(?) OR LOWER(author) LIKE LOWER(?) OR accession_no LIKE ?",
		pattern, pattern, pattern,
	).Find(&books).Error
	return books, err
}

// UpdateBook applies the given field updates to a book.
func (r *Repository) UpdateBook(id uint, updates map[string]any) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.First(&book, id).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&book).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// SetAvailability flips the availability flag.
func (r *Repository) SetAvailability(id uint, available bool) error {
	return r.db.Model(&entities.Book{}).
		Where("id = ?", id).
		Update("is_available", available).Error
}

// DeleteBook removes a catalog entry unless any borrow record references it.
func (r *Repository) DeleteBook(id uint) error {
	var book entities.Book
	if err := r.db.First(&book, id).Error; err != nil {
		return err
	}

	var borrowCount int64
	err := r.db.Model(&entities.BorrowRecord{}).Where("book_id = ?", id).Count(&borrowCount).Error
	if err != nil {
		return err
	}
	if borrowCount > 0 {
		return ErrHasBorrowHistory
	}

	return r.db.Delete(&book).Error
}

// GetCatalogStats returns catalog totals.
func (r *Repository) GetCatalogStats() (total, available int64, err error) {
	err = r.db.Model(&entities.Book{}).Count(&total).Error
	if err != nil {
		return
	}
	err = r.db.Model(&entities.Book{}).Where("is_available = ?", true).Count(&available).Error
	return
}
