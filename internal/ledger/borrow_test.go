package ledger

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/TJselevani/LibraryMGMT-sub000/internal/config"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/entities"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/rules"
)

var testToday = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func setupBorrowLedger(t *testing.T) (*gorm.DB, *BorrowLedger, func()) {
	dbPath := "./test_borrow_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.Patron{},
		&entities.Book{},
		&entities.BorrowRecord{},
		&entities.OverdueNotice{},
	)
	require.NoError(t, err)

	policy := rules.NewLendingPolicy(config.Borrowing{
		MinLoanDays:     1,
		MaxLoanDays:     30,
		DefaultLoanDays: 14,
		FinePerDay:      5,
		PupilLimit:      3,
		StudentLimit:    5,
		AdultLimit:      7,
	})

	l := NewBorrowLedger(db, policy)
	l.SetClock(func() time.Time { return testToday })

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return db, l, cleanup
}

var patronSeq int

func createTestPatron(t *testing.T, db *gorm.DB, category entities.Category, status entities.MembershipStatus) *entities.Patron {
	patronSeq++
	p := &entities.Patron{
		PatronID:         fmt.Sprintf("AB%03X", patronSeq),
		FirstName:        "Test",
		LastName:         "Patron",
		Category:         category,
		MembershipStatus: status,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func createTestBook(t *testing.T, db *gorm.DB, title, accessionNo string) *entities.Book {
	b := &entities.Book{
		Title:       title,
		Author:      "Author",
		AccessionNo: accessionNo,
		IsAvailable: true,
	}
	require.NoError(t, db.Create(b).Error)
	return b
}

func TestCreateBorrow_Defaults(t *testing.T) {
	db, l, cleanup := setupBorrowLedger(t)
	defer cleanup()

	patron := createTestPatron(t, db, entities.CategoryAdult, entities.MembershipActive)
	book := createTestBook(t, db, "Meditations", "ACC-0001")

	result := l.CreateBorrow(patron.ID, book.ID, time.Time{}, time.Time{})

	require.True(t, result.Success, result.Message)
	record := result.Data.(*entities.BorrowRecord)
	assert.Equal(t, testToday, record.BorrowDate)
	assert.Equal(t, testToday.AddDate(0, 0, 14), record.DueDate)
	assert.False(t, record.Returned)

	var updated entities.Book
	require.NoError(t, db.First(&updated, book.ID).Error)
	assert.False(t, updated.IsAvailable)
}

func TestCreateBorrow_PatronNotFound(t *testing.T) {
	db, l, cleanup := setupBorrowLedger(t)
	defer cleanup()

	book := createTestBook(t, db, "Meditations", "ACC-0001")

	result := l.CreateBorrow(999, book.ID, time.Time{}, time.Time{})

	assert.False(t, result.Success)
	assert.Equal(t, CodeNotFound, result.Code)
}

func TestCreateBorrow_InactiveMembership(t *testing.T) {
	db, l, cleanup := setupBorrowLedger(t)
	defer cleanup()

	patron := createTestPatron(t, db, entities.CategoryAdult, entities.MembershipInactive)
	book := createTestBook(t, db, "Meditations", "ACC-0001")

	result := l.CreateBorrow(patron.ID, book.ID, time.Time{}, time.Time{})

	assert.False(t, result.Success)
	assert.Equal(t, CodeMembershipInactive, result.Code)
}

func TestCreateBorrow_DuplicateAndUnavailable(t *testing.T) {
	db, l, cleanup := setupBorrowLedger(t)
	defer cleanup()

	patron := createTestPatron(t, db, entities.CategoryAdult, entities.MembershipActive)
	other := createTestPatron(t, db, entities.CategoryAdult, entities.MembershipActive)
	book := createTestBook(t, db, "Meditations", "ACC-0001")

	require.True(t, l.CreateBorrow(patron.ID, book.ID, time.Time{}, time.Time{}).Success)

	t.Run("same patron same book", func(t *testing.T) {
		result := l.CreateBorrow(patron.ID, book.ID, time.Time{}, time.Time{})
		assert.False(t, result.Success)
		assert.Equal(t, CodeDuplicateBorrow, result.Code)
	})

	t.Run("another patron same book", func(t *testing.T) {
		result := l.CreateBorrow(other.ID, book.ID, time.Time{}, time.Time{})
		assert.False(t, result.Success)
		assert.Equal(t, CodeUnavailable, result.Code)
	})
}

func TestCreateBorrow_DateValidation(t *testing.T) {
	db, l, cleanup := setupBorrowLedger(t)
	defer cleanup()

	patron := createTestPatron(t, db, entities.CategoryAdult, entities.MembershipActive)
	book := createTestBook(t, db, "Meditations", "ACC-0001")

	t.Run("span beyond maximum", func(t *testing.T) {
		result := l.CreateBorrow(patron.ID, book.ID, testToday, testToday.AddDate(0, 0, 31))
		assert.False(t, result.Success)
		assert.Equal(t, CodeValidation, result.Code)
	})

	t.Run("borrow date in the future", func(t *testing.T) {
		future := testToday.AddDate(0, 0, 1)
		result := l.CreateBorrow(patron.ID, book.ID, future, future.AddDate(0, 0, 14))
		assert.False(t, result.Success)
		assert.Equal(t, CodeValidation, result.Code)
	})

	// failed attempts must not flip availability
	var updated entities.Book
	require.NoError(t, db.First(&updated, book.ID).Error)
	assert.True(t, updated.IsAvailable)
}

func TestCreateBorrow_CategoryLimit(t *testing.T) {
	db, l, cleanup := setupBorrowLedger(t)
	defer cleanup()

	patron := createTestPatron(t, db, entities.CategoryPupil, entities.MembershipActive)

	for i := 0; i < 3; i++ {
		book := createTestBook(t, db, "Book", fmt.Sprintf("ACC-%04d", i+1))
		require.True(t, l.CreateBorrow(patron.ID, book.ID, time.Time{}, time.Time{}).Success)
	}

	fourth := createTestBook(t, db, "One Too Many", "ACC-0009")
	result := l.CreateBorrow(patron.ID, fourth.ID, time.Time{}, time.Time{})

	assert.False(t, result.Success)
	assert.Equal(t, CodeLimitExceeded, result.Code)
}

func TestCreateBorrow_BlockedByOverdue(t *testing.T) {
	db, l, cleanup := setupBorrowLedger(t)
	defer cleanup()

	patron := createTestPatron(t, db, entities.CategoryAdult, entities.MembershipActive)
	overdueBook := createTestBook(t, db, "Late Book", "ACC-0001")
	nextBook := createTestBook(t, db, "Next Book", "ACC-0002")

	start := testToday.AddDate(0, 0, -21)
	require.True(t, l.CreateBorrow(patron.ID, overdueBook.ID, start, start.AddDate(0, 0, 14)).Success)

	result := l.CreateBorrow(patron.ID, nextBook.ID, time.Time{}, time.Time{})

	assert.False(t, result.Success)
	assert.Equal(t, CodeLimitExceeded, result.Code)
	assert.Contains(t, result.Message, "overdue")
}

func TestReturnBook(t *testing.T) {
	db, l, cleanup := setupBorrowLedger(t)
	defer cleanup()

	patron := createTestPatron(t, db, entities.CategoryAdult, entities.MembershipActive)
	book := createTestBook(t, db, "Meditations", "ACC-0001")

	created := l.CreateBorrow(patron.ID, book.ID, time.Time{}, time.Time{})
	require.True(t, created.Success)
	borrowID := created.Data.(*entities.BorrowRecord).ID

	t.Run("on time has no fine", func(t *testing.T) {
		result := l.ReturnBook(borrowID, testToday.AddDate(0, 0, 10))
		require.True(t, result.Success, result.Message)
		record := result.Data.(*entities.BorrowRecord)
		assert.Equal(t, 0.0, record.FineAmount)
		assert.True(t, record.Returned)

		var updated entities.Book
		require.NoError(t, db.First(&updated, book.ID).Error)
		assert.True(t, updated.IsAvailable)
	})

	t.Run("second return is refused", func(t *testing.T) {
		result := l.ReturnBook(borrowID, time.Time{})
		assert.False(t, result.Success)
		assert.Equal(t, CodeAlreadyReturned, result.Code)
	})

	t.Run("unknown record", func(t *testing.T) {
		result := l.ReturnBook(999, time.Time{})
		assert.Equal(t, CodeNotFound, result.Code)
	})
}

func TestReturnBook_LateFine(t *testing.T) {
	db, l, cleanup := setupBorrowLedger(t)
	defer cleanup()

	patron := createTestPatron(t, db, entities.CategoryAdult, entities.MembershipActive)
	book := createTestBook(t, db, "Meditations", "ACC-0001")

	created := l.CreateBorrow(patron.ID, book.ID, time.Time{}, time.Time{})
	require.True(t, created.Success)
	record := created.Data.(*entities.BorrowRecord)

	// seven days past due at 5 per day
	result := l.ReturnBook(record.ID, record.DueDate.AddDate(0, 0, 7))

	require.True(t, result.Success)
	returned := result.Data.(*entities.BorrowRecord)
	assert.Equal(t, 35.0, returned.FineAmount)
	assert.Contains(t, result.Message, "7 day(s) late")
}

func TestExtendDueDate(t *testing.T) {
	db, l, cleanup := setupBorrowLedger(t)
	defer cleanup()

	patron := createTestPatron(t, db, entities.CategoryAdult, entities.MembershipActive)
	book := createTestBook(t, db, "Meditations", "ACC-0001")

	created := l.CreateBorrow(patron.ID, book.ID, time.Time{}, time.Time{})
	require.True(t, created.Success)
	record := created.Data.(*entities.BorrowRecord)

	t.Run("valid extension", func(t *testing.T) {
		newDue := record.DueDate.AddDate(0, 0, 7)
		result := l.ExtendDueDate(record.ID, newDue)
		require.True(t, result.Success, result.Message)
		assert.Equal(t, newDue, result.Data.(*entities.BorrowRecord).DueDate)
	})

	t.Run("cannot shrink the due date", func(t *testing.T) {
		result := l.ExtendDueDate(record.ID, record.DueDate)
		assert.False(t, result.Success)
		assert.Equal(t, CodeValidation, result.Code)
	})

	t.Run("cannot exceed maximum span", func(t *testing.T) {
		result := l.ExtendDueDate(record.ID, record.BorrowDate.AddDate(0, 0, 31))
		assert.False(t, result.Success)
		assert.Equal(t, CodeValidation, result.Code)
	})

	t.Run("returned borrow cannot be extended", func(t *testing.T) {
		require.True(t, l.ReturnBook(record.ID, time.Time{}).Success)
		result := l.ExtendDueDate(record.ID, testToday.AddDate(0, 0, 20))
		assert.Equal(t, CodeAlreadyReturned, result.Code)
	})
}

func TestValidatePatronCanBorrow(t *testing.T) {
	db, l, cleanup := setupBorrowLedger(t)
	defer cleanup()

	patron := createTestPatron(t, db, entities.CategoryAdult, entities.MembershipActive)

	result := l.ValidatePatronCanBorrow(patron.ID)
	assert.True(t, result.Success)

	result = l.ValidatePatronCanBorrow(999)
	assert.Equal(t, CodeNotFound, result.Code)
}

func TestRecordOverdueNotices(t *testing.T) {
	db, l, cleanup := setupBorrowLedger(t)
	defer cleanup()

	patron := createTestPatron(t, db, entities.CategoryAdult, entities.MembershipActive)
	late := createTestBook(t, db, "Late Book", "ACC-0001")
	onTime := createTestBook(t, db, "On Time", "ACC-0002")

	start := testToday.AddDate(0, 0, -21)
	require.True(t, l.CreateBorrow(patron.ID, late.ID, start, start.AddDate(0, 0, 14)).Success)
	require.True(t, l.CreateBorrow(patron.ID, onTime.ID, testToday, testToday.AddDate(0, 0, 14)).Success)

	created, err := l.RecordOverdueNotices(testToday)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	var notice entities.OverdueNotice
	require.NoError(t, db.First(&notice).Error)
	assert.Equal(t, 7, notice.DaysLate)
	assert.Equal(t, 35.0, notice.FineSoFar)

	// second scan for the same day writes nothing
	created, err = l.RecordOverdueNotices(testToday)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	// the next day produces a fresh notice
	created, err = l.RecordOverdueNotices(testToday.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, created)
}

func TestBorrowProjections(t *testing.T) {
	db, l, cleanup := setupBorrowLedger(t)
	defer cleanup()

	patron := createTestPatron(t, db, entities.CategoryAdult, entities.MembershipActive)
	late := createTestBook(t, db, "Late", "ACC-0001")
	soon := createTestBook(t, db, "Soon", "ACC-0002")
	returned := createTestBook(t, db, "Done", "ACC-0003")

	start := testToday.AddDate(0, 0, -21)
	require.True(t, l.CreateBorrow(patron.ID, late.ID, start, start.AddDate(0, 0, 14)).Success)
	require.True(t, l.CreateBorrow(patron.ID, soon.ID, testToday.AddDate(0, 0, -12), testToday.AddDate(0, 0, 2)).Success)

	r := l.CreateBorrow(patron.ID, returned.ID, testToday.AddDate(0, 0, -5), testToday.AddDate(0, 0, 9))
	require.True(t, r.Success)
	require.True(t, l.ReturnBook(r.Data.(*entities.BorrowRecord).ID, time.Time{}).Success)

	active, err := l.GetActiveBorrows()
	require.NoError(t, err)
	assert.Len(t, active, 2)

	overdue, err := l.GetOverdueBorrows()
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, late.ID, overdue[0].BookID)

	dueSoon, err := l.GetDueSoon(3)
	require.NoError(t, err)
	require.Len(t, dueSoon, 1)
	assert.Equal(t, soon.ID, dueSoon[0].BookID)

	history, err := l.GetPatronHistory(patron.ID)
	require.NoError(t, err)
	assert.Len(t, history, 3)

	bookHistory, err := l.GetBookHistory(returned.ID)
	require.NoError(t, err)
	assert.Len(t, bookHistory, 1)

	stats, err := l.GetStatistics()
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalBorrows)
	assert.Equal(t, int64(2), stats.ActiveBorrows)
	assert.Equal(t, int64(1), stats.Overdue)
	assert.Equal(t, int64(1), stats.Returned)
}
