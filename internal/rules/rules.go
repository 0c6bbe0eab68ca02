// Package rules holds the pure validation policies shared by the borrow and
// payment ledgers. Nothing here touches the database; every function takes
// values in and returns a verdict, so the ledgers stay the only place where
// policy meets storage.
package rules

import (
	"fmt"
	"math"
	"time"

	"github.com/TJselevani/LibraryMGMT-sub000/internal/config"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/entities"
)

// LendingPolicy carries the configured borrowing thresholds.
type LendingPolicy struct {
	MinLoanDays     int
	MaxLoanDays     int
	DefaultLoanDays int
	FinePerDay      float64
	CategoryLimits  map[entities.Category]int
}

// NewLendingPolicy builds a policy from configuration.
func NewLendingPolicy(cfg config.Borrowing) LendingPolicy {
	return LendingPolicy{
		MinLoanDays:     cfg.MinLoanDays,
		MaxLoanDays:     cfg.MaxLoanDays,
		DefaultLoanDays: cfg.DefaultLoanDays,
		FinePerDay:      cfg.FinePerDay,
		CategoryLimits: map[entities.Category]int{
			entities.CategoryPupil:   cfg.PupilLimit,
			entities.CategoryStudent: cfg.StudentLimit,
			entities.CategoryAdult:   cfg.AdultLimit,
		},
	}
}

// BorrowLimit returns the concurrent-borrow cap for a category.
func (p LendingPolicy) BorrowLimit(category entities.Category) int {
	if limit, ok := p.CategoryLimits[category]; ok {
		return limit
	}
	// Unknown categories get the tightest cap rather than none.
	return p.CategoryLimits[entities.CategoryPupil]
}

// ValidateBorrowDates checks the date-range rule for a new borrow:
// borrow date not in the future, due date strictly after borrow date,
// and a span within [MinLoanDays, MaxLoanDays].
func (p LendingPolicy) ValidateBorrowDates(borrowDate, dueDate, today time.Time) error {
	borrowDay := Day(borrowDate)
	dueDay := Day(dueDate)
	todayDay := Day(today)

	if borrowDay.After(todayDay) {
		return fmt.Errorf("borrow date %s is in the future", borrowDay.Format("2006-01-02"))
	}
	if !dueDay.After(borrowDay) {
		return fmt.Errorf("due date must be after borrow date")
	}
	span := DaysBetween(borrowDay, dueDay)
	if span < p.MinLoanDays {
		return fmt.Errorf("borrowing span must be at least %d day(s)", p.MinLoanDays)
	}
	if span > p.MaxLoanDays {
		return fmt.Errorf("borrowing span cannot exceed %d days", p.MaxLoanDays)
	}
	return nil
}

// ValidateExtension checks that a new due date strictly extends the current one
// without pushing the total span past the maximum.
func (p LendingPolicy) ValidateExtension(borrowDate, currentDue, newDue time.Time) error {
	if !Day(newDue).After(Day(currentDue)) {
		return fmt.Errorf("new due date must be after the current due date")
	}
	if DaysBetween(Day(borrowDate), Day(newDue)) > p.MaxLoanDays {
		return fmt.Errorf("extension cannot exceed %d days from the borrow date", p.MaxLoanDays)
	}
	return nil
}

// Fine computes the late-return fine: FinePerDay per full day past due,
// never negative.
func (p LendingPolicy) Fine(dueDate, returnDate time.Time) float64 {
	daysLate := DaysBetween(Day(dueDate), Day(returnDate))
	if daysLate <= 0 {
		return 0
	}
	return float64(daysLate) * p.FinePerDay
}

// ValidateAmount enforces the positive-amount rule.
func ValidateAmount(amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be greater than 0")
	}
	return nil
}

// AmountsMatch compares two currency amounts within the rounding tolerance.
func AmountsMatch(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

// Day truncates a timestamp to midnight, keeping its location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysBetween counts whole days from a to b. Negative when b precedes a.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}
