// Package patrons provides database operations for patron management.
//
// # Usage
//
//	repo := patrons.NewRepository(db)
//	patron, err := repo.GetPatronByPatronID("AB1F3")
package patrons

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"gorm.io/gorm"

	"github.com/TJselevani/LibraryMGMT-sub000/internal/entities"
)

var (
	// ErrHasOpenBorrows is returned when deleting a patron who still holds books.
	ErrHasOpenBorrows = errors.New("patron has unreturned books")

	// ErrInvalidCategory is returned for categories outside pupil/student/adult.
	ErrInvalidCategory = errors.New("category must be one of pupil, student, adult")
)

// Repository handles all patron database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new patrons repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreatePatron inserts a new patron, generating a unique patron ID when absent.
func (r *Repository) CreatePatron(patron *entities.Patron) (*entities.Patron, error) {
	if !entities.ValidCategories[patron.Category] {
		return nil, ErrInvalidCategory
	}
	if patron.PatronID == "" {
		pid, err := r.GenerateUniquePatronID()
		if err != nil {
			return nil, err
		}
		patron.PatronID = pid
	}
	if patron.MembershipStatus == "" {
		patron.MembershipStatus = entities.MembershipInactive
	}
	if err := r.db.Create(patron).Error; err != nil {
		return nil, err
	}
	return patron, nil
}

// GetPatronByID retrieves a patron by primary key.
func (r *Repository) GetPatronByID(id uint) (*entities.Patron, error) {
	var patron entities.Patron
	err := r.db.First(&patron, id).Error
	if err != nil {
		return nil, err
	}
	return &patron, nil
}

// GetPatronByPatronID retrieves a patron by the 5-character public ID.
func (r *Repository) GetPatronByPatronID(patronID string) (*entities.Patron, error) {
	var patron entities.Patron
	err := r.db.Where("patron_id = ?", patronID).First(&patron).Error
	if err != nil {
		return nil, err
	}
	return &patron, nil
}

// GetAllPatrons returns every patron.
func (r *Repository) GetAllPatrons() ([]entities.Patron, error) {
	var patrons []entities.Patron
	err := r.db.Order("last_name ASC, first_name ASC").Find(&patrons).Error
	return patrons, err
}

// GetPatronsByInstitution returns all patrons from one institution.
func (r *Repository) GetPatronsByInstitution(institution string) ([]entities.Patron, error) {
	var patrons []entities.Patron
	err := r.db.Where("institution = ?", institution).Find(&patrons).Error
	return patrons, err
}

// GetPatronsByGrade returns all patrons in one grade level.
func (r *Repository) GetPatronsByGrade(gradeLevel string) ([]entities.Patron, error) {
	var patrons []entities.Patron
	err := r.db.Where("grade_level = ?", gradeLevel).Find(&patrons).Error
	return patrons, err
}

// GetPatronsByStatus returns all patrons with one membership status.
func (r *Repository) GetPatronsByStatus(status entities.MembershipStatus) ([]entities.Patron, error) {
	var patrons []entities.Patron
	err := r.db.Where("membership_status = ?", status).Find(&patrons).Error
	return patrons, err
}

// SearchPatrons matches against name, patron ID or phone number.
func (r *Repository) SearchPatrons(term string) ([]entities.Patron, error) {
	var patrons []entities.Patron
	pattern := "%" + term + "%"
	err := r.db.Where(
		"first_name LIKE ? OR last_name LIKE ? OR patron_id LIKE ? OR phone_number LIKE ?",
		pattern, pattern, pattern, pattern,
	).Find(&patrons).Error
	return patrons, err
}

// UpdatePatron applies the given field updates to a patron.
func (r *Repository) UpdatePatron(id uint, updates map[string]any) (*entities.Patron, error) {
	var patron entities.Patron
	if err := r.db.First(&patron, id).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&patron).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &patron, nil
}

// SetMembershipStatus flips a patron's membership status.
func (r *Repository) SetMembershipStatus(id uint, status entities.MembershipStatus) error {
	return r.db.Model(&entities.Patron{}).
		Where("id = ?", id).
		Update("membership_status", status).Error
}

// DeletePatron removes a patron unless they hold unreturned books.
func (r *Repository) DeletePatron(id uint) error {
	var patron entities.Patron
	if err := r.db.First(&patron, id).Error; err != nil {
		return err
	}

	var openBorrows int64
	err := r.db.Model(&entities.BorrowRecord{}).
		Where("patron_ref = ? AND returned = ?", id, false).
		Count(&openBorrows).Error
	if err != nil {
		return err
	}
	if openBorrows > 0 {
		return fmt.Errorf("%w: %d open", ErrHasOpenBorrows, openBorrows)
	}

	return r.db.Delete(&patron).Error
}

// GetPatronStats returns membership totals.
func (r *Repository) GetPatronStats() (total, active, inactive int64, err error) {
	err = r.db.Model(&entities.Patron{}).Count(&total).Error
	if err != nil {
		return
	}
	err = r.db.Model(&entities.Patron{}).
		Where("membership_status = ?", entities.MembershipActive).Count(&active).Error
	if err != nil {
		return
	}
	err = r.db.Model(&entities.Patron{}).
		Where("membership_status = ?", entities.MembershipInactive).Count(&inactive).Error
	return
}

const patronIDHexDigits = "0123456789ABCDEF"

// GeneratePatronID builds a 5-character patron ID: 2 uppercase letters + 3 hex digits.
func GeneratePatronID() (string, error) {
	id := make([]byte, 5)
	for i := 0; i < 2; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(26))
		if err != nil {
			return "", err
		}
		id[i] = byte('A' + n.Int64())
	}
	for i := 2; i < 5; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(patronIDHexDigits))))
		if err != nil {
			return "", err
		}
		id[i] = patronIDHexDigits[n.Int64()]
	}
	return string(id), nil
}

// GenerateUniquePatronID retries generation until the ID is unused.
func (r *Repository) GenerateUniquePatronID() (string, error) {
	for {
		pid, err := GeneratePatronID()
		if err != nil {
			return "", err
		}
		var existing entities.Patron
		err = r.db.Where("patron_id = ?", pid).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pid, nil
		}
		if err != nil {
			return "", err
		}
	}
}
