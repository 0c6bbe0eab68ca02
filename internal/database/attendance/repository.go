// Package attendance provides database operations for daily visit records.
package attendance

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/TJselevani/LibraryMGMT-sub000/internal/entities"
)

// Repository handles attendance database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new attendance repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// MarkAttendance records a visit for a patron on the given date.
// Marking the same patron twice on one date returns the existing record.
func (r *Repository) MarkAttendance(patronRef uint, date time.Time) (*entities.Attendance, error) {
	day := truncateToDay(date)

	var patron entities.Patron
	if err := r.db.First(&patron, patronRef).Error; err != nil {
		return nil, err
	}

	var existing entities.Attendance
	err := r.db.Where("patron_ref = ? AND attendance_date = ?", patronRef, day).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	record := &entities.Attendance{
		PatronRef:      patronRef,
		AttendanceDate: day,
	}
	if err := r.db.Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// RemoveAttendance deletes a record by ID.
func (r *Repository) RemoveAttendance(id uint) error {
	result := r.db.Delete(&entities.Attendance{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RemoveAttendanceForPatron deletes a patron's record for one date.
func (r *Repository) RemoveAttendanceForPatron(patronRef uint, date time.Time) error {
	result := r.db.Where("patron_ref = ? AND attendance_date = ?", patronRef, truncateToDay(date)).
		Delete(&entities.Attendance{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetAttendanceByDate lists all visits on one date.
func (r *Repository) GetAttendanceByDate(date time.Time) ([]entities.Attendance, error) {
	var records []entities.Attendance
	err := r.db.Preload("Patron").
		Where("attendance_date = ?", truncateToDay(date)).
		Find(&records).Error
	return records, err
}

// GetAttendanceForPatron lists a patron's visit history, newest first.
func (r *Repository) GetAttendanceForPatron(patronRef uint) ([]entities.Attendance, error) {
	var records []entities.Attendance
	err := r.db.Where("patron_ref = ?", patronRef).
		Order("attendance_date DESC").
		Find(&records).Error
	return records, err
}

// CountAttendanceByDate returns the number of visitors on one date.
func (r *Repository) CountAttendanceByDate(date time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Attendance{}).
		Where("attendance_date = ?", truncateToDay(date)).
		Count(&count).Error
	return count, err
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
