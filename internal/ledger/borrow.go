package ledger

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/TJselevani/LibraryMGMT-sub000/internal/entities"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/rules"
)

// BorrowLedger creates, closes and extends borrow records. Each mutating
// operation opens one transaction and either commits fully or rolls back.
type BorrowLedger struct {
	db     *gorm.DB
	policy rules.LendingPolicy
	now    func() time.Time
}

// NewBorrowLedger creates a borrow ledger with the given lending policy.
func NewBorrowLedger(db *gorm.DB, policy rules.LendingPolicy) *BorrowLedger {
	return &BorrowLedger{db: db, policy: policy, now: time.Now}
}

// SetClock overrides the ledger's notion of "today". Used by tests.
func (l *BorrowLedger) SetClock(now func() time.Time) { l.now = now }

// BorrowStatistics aggregates ledger counts for dashboards.
type BorrowStatistics struct {
	TotalBorrows  int64 `json:"total_borrows"`
	ActiveBorrows int64 `json:"active_borrows"`
	Overdue       int64 `json:"overdue"`
	Returned      int64 `json:"returned"`
}

// CreateBorrow lends a book to a patron. A zero borrowDate means today and a
// zero dueDate applies the default loan span.
func (l *BorrowLedger) CreateBorrow(patronRef, bookID uint, borrowDate, dueDate time.Time) Result {
	today := rules.Day(l.now())
	if borrowDate.IsZero() {
		borrowDate = today
	}
	if dueDate.IsZero() {
		dueDate = rules.Day(borrowDate).AddDate(0, 0, l.policy.DefaultLoanDays)
	}

	tx := l.db.Begin()
	if tx.Error != nil {
		return fail(CodeInternal, "could not open transaction")
	}
	defer tx.Rollback()

	var patron entities.Patron
	if err := tx.First(&patron, patronRef).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(CodeNotFound, "patron not found")
		}
		return fail(CodeInternal, "error looking up patron")
	}

	if patron.MembershipStatus != entities.MembershipActive {
		return fail(CodeMembershipInactive, "patron membership is not active")
	}

	var book entities.Book
	if err := tx.First(&book, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(CodeNotFound, "book not found")
		}
		return fail(CodeInternal, "error looking up book")
	}

	// Same patron holding the same book unreturned is a duplicate; anyone
	// else holding it makes the book unavailable.
	var openBorrow entities.BorrowRecord
	err := tx.Where("book_id = ? AND returned = ?", bookID, false).First(&openBorrow).Error
	if err == nil {
		if openBorrow.PatronRef == patronRef {
			return fail(CodeDuplicateBorrow, "patron already holds this book")
		}
		return fail(CodeUnavailable, fmt.Sprintf("book '%s' is already borrowed", book.Title))
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(CodeInternal, "error checking book availability")
	}

	if err := l.policy.ValidateBorrowDates(borrowDate, dueDate, today); err != nil {
		return fail(CodeValidation, err.Error())
	}

	if verdict := l.validatePatronCanBorrow(tx, &patron, today); !verdict.Success {
		return verdict
	}

	record := entities.BorrowRecord{
		PatronRef:  patronRef,
		BookID:     bookID,
		BorrowDate: rules.Day(borrowDate),
		DueDate:    rules.Day(dueDate),
		Returned:   false,
	}
	if err := tx.Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return fail(CodeIntegrityViolation, "conflicting borrow record already exists")
		}
		return fail(CodeInternal, "error creating borrow record")
	}

	if err := tx.Model(&book).Update("is_available", false).Error; err != nil {
		return fail(CodeInternal, "error updating book availability")
	}

	if err := tx.Commit().Error; err != nil {
		return fail(CodeInternal, "error committing borrow")
	}

	return ok(fmt.Sprintf("Book '%s' borrowed successfully", book.Title), &record)
}

// ReturnBook closes a borrow record, computes the fine and frees the book.
// A zero returnDate means today.
func (l *BorrowLedger) ReturnBook(borrowID uint, returnDate time.Time) Result {
	if returnDate.IsZero() {
		returnDate = rules.Day(l.now())
	}

	tx := l.db.Begin()
	if tx.Error != nil {
		return fail(CodeInternal, "could not open transaction")
	}
	defer tx.Rollback()

	var record entities.BorrowRecord
	if err := tx.First(&record, borrowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(CodeNotFound, "borrow record not found")
		}
		return fail(CodeInternal, "error looking up borrow record")
	}

	if record.Returned {
		return fail(CodeAlreadyReturned, "book has already been returned")
	}

	day := rules.Day(returnDate)
	fine := l.policy.Fine(record.DueDate, day)

	updates := map[string]any{
		"returned":    true,
		"return_date": day,
		"fine_amount": fine,
	}
	if err := tx.Model(&record).Updates(updates).Error; err != nil {
		return fail(CodeInternal, "error closing borrow record")
	}

	if err := tx.Model(&entities.Book{}).
		Where("id = ?", record.BookID).
		Update("is_available", true).Error; err != nil {
		return fail(CodeInternal, "error updating book availability")
	}

	if err := tx.Commit().Error; err != nil {
		return fail(CodeInternal, "error committing return")
	}

	record.Returned = true
	record.ReturnDate = &day
	record.FineAmount = fine

	msg := "Book returned successfully"
	if fine > 0 {
		msg = fmt.Sprintf("Book returned %d day(s) late, fine %.2f", rules.DaysBetween(record.DueDate, day), fine)
	}
	return ok(msg, &record)
}

// ExtendDueDate pushes an open borrow's due date forward, bounded by the
// maximum loan span from the original borrow date.
func (l *BorrowLedger) ExtendDueDate(borrowID uint, newDueDate time.Time) Result {
	tx := l.db.Begin()
	if tx.Error != nil {
		return fail(CodeInternal, "could not open transaction")
	}
	defer tx.Rollback()

	var record entities.BorrowRecord
	if err := tx.First(&record, borrowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(CodeNotFound, "borrow record not found")
		}
		return fail(CodeInternal, "error looking up borrow record")
	}

	if record.Returned {
		return fail(CodeAlreadyReturned, "cannot extend an already returned borrow")
	}

	if err := l.policy.ValidateExtension(record.BorrowDate, record.DueDate, newDueDate); err != nil {
		return fail(CodeValidation, err.Error())
	}

	day := rules.Day(newDueDate)
	if err := tx.Model(&record).Update("due_date", day).Error; err != nil {
		return fail(CodeInternal, "error extending due date")
	}

	if err := tx.Commit().Error; err != nil {
		return fail(CodeInternal, "error committing extension")
	}

	record.DueDate = day
	return ok(fmt.Sprintf("Due date extended to %s", day.Format("2006-01-02")), &record)
}

// ValidatePatronCanBorrow applies the borrowing-limit policy without writing
// anything: it fails closed when the patron holds any overdue book or has
// reached the category's concurrent-borrow cap.
func (l *BorrowLedger) ValidatePatronCanBorrow(patronRef uint) Result {
	var patron entities.Patron
	if err := l.db.First(&patron, patronRef).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(CodeNotFound, "patron not found")
		}
		return fail(CodeInternal, "error looking up patron")
	}
	return l.validatePatronCanBorrow(l.db, &patron, rules.Day(l.now()))
}

func (l *BorrowLedger) validatePatronCanBorrow(tx *gorm.DB, patron *entities.Patron, today time.Time) Result {
	var overdue int64
	err := tx.Model(&entities.BorrowRecord{}).
		Where("patron_ref = ? AND returned = ? AND due_date < ?", patron.ID, false, today).
		Count(&overdue).Error
	if err != nil {
		return fail(CodeInternal, "error checking overdue borrows")
	}
	if overdue > 0 {
		return fail(CodeLimitExceeded, fmt.Sprintf("patron holds %d overdue book(s)", overdue))
	}

	var active int64
	err = tx.Model(&entities.BorrowRecord{}).
		Where("patron_ref = ? AND returned = ?", patron.ID, false).
		Count(&active).Error
	if err != nil {
		return fail(CodeInternal, "error counting active borrows")
	}

	limit := l.policy.BorrowLimit(patron.Category)
	if active >= int64(limit) {
		return fail(CodeLimitExceeded,
			fmt.Sprintf("borrowing limit reached: %d active of %d allowed for %s", active, limit, patron.Category))
	}

	return ok("patron can borrow", nil)
}

// ---------- read-only projections ----------

// GetActiveBorrows lists all open borrow records.
func (l *BorrowLedger) GetActiveBorrows() ([]entities.BorrowRecord, error) {
	var records []entities.BorrowRecord
	err := l.db.Preload("Book").Preload("Patron").
		Where("returned = ?", false).
		Order("due_date ASC").
		Find(&records).Error
	return records, err
}

// GetOverdueBorrows lists open records whose due date has passed.
func (l *BorrowLedger) GetOverdueBorrows() ([]entities.BorrowRecord, error) {
	var records []entities.BorrowRecord
	err := l.db.Preload("Book").Preload("Patron").
		Where("returned = ? AND due_date < ?", false, rules.Day(l.now())).
		Order("due_date ASC").
		Find(&records).Error
	return records, err
}

// GetDueSoon lists open records due within the next N days (today inclusive).
func (l *BorrowLedger) GetDueSoon(withinDays int) ([]entities.BorrowRecord, error) {
	today := rules.Day(l.now())
	horizon := today.AddDate(0, 0, withinDays)
	var records []entities.BorrowRecord
	err := l.db.Preload("Book").Preload("Patron").
		Where("returned = ? AND due_date >= ? AND due_date <= ?", false, today, horizon).
		Order("due_date ASC").
		Find(&records).Error
	return records, err
}

// GetPatronHistory lists all borrows of one patron, newest first.
func (l *BorrowLedger) GetPatronHistory(patronRef uint) ([]entities.BorrowRecord, error) {
	var records []entities.BorrowRecord
	err := l.db.Preload("Book").
		Where("patron_ref = ?", patronRef).
		Order("borrow_date DESC").
		Find(&records).Error
	return records, err
}

// GetBookHistory lists all borrows of one book, newest first.
func (l *BorrowLedger) GetBookHistory(bookID uint) ([]entities.BorrowRecord, error) {
	var records []entities.BorrowRecord
	err := l.db.Preload("Patron").
		Where("book_id = ?", bookID).
		Order("borrow_date DESC").
		Find(&records).Error
	return records, err
}

// RecordOverdueNotices writes one notice per overdue open borrow for the
// given day. Borrows already noticed that day are skipped, so the scan can
// run repeatedly.
func (l *BorrowLedger) RecordOverdueNotices(asOf time.Time) (int, error) {
	day := rules.Day(asOf)

	var records []entities.BorrowRecord
	err := l.db.Where("returned = ? AND due_date < ?", false, day).Find(&records).Error
	if err != nil {
		return 0, err
	}

	created := 0
	for _, record := range records {
		daysLate := rules.DaysBetween(record.DueDate, day)
		notice := entities.OverdueNotice{
			BorrowID:   record.ID,
			NoticeDate: day,
			DaysLate:   daysLate,
			FineSoFar:  l.policy.Fine(record.DueDate, day),
		}
		if err := l.db.Create(&notice).Error; err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return created, err
		}
		created++
	}
	return created, nil
}

// GetStatistics aggregates ledger counts.
func (l *BorrowLedger) GetStatistics() (*BorrowStatistics, error) {
	var stats BorrowStatistics

	if err := l.db.Model(&entities.BorrowRecord{}).Count(&stats.TotalBorrows).Error; err != nil {
		return nil, err
	}
	if err := l.db.Model(&entities.BorrowRecord{}).
		Where("returned = ?", false).Count(&stats.ActiveBorrows).Error; err != nil {
		return nil, err
	}
	if err := l.db.Model(&entities.BorrowRecord{}).
		Where("returned = ? AND due_date < ?", false, rules.Day(l.now())).
		Count(&stats.Overdue).Error; err != nil {
		return nil, err
	}
	if err := l.db.Model(&entities.BorrowRecord{}).
		Where("returned = ?", true).Count(&stats.Returned).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}
