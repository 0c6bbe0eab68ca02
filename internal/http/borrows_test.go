package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/TJselevani/LibraryMGMT-sub000/internal/config"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/entities"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/ledger"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/rules"
)

var apiToday = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func setupBorrowsAPI(t *testing.T) (*gin.Engine, *gorm.DB, func()) {
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_" + t.Name() + ".db"
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
	borrowLedger := ledger.NewBorrowLedger(db, policy)
	borrowLedger.SetClock(func() time.Time { return apiToday })

	controller := NewBorrowsController(borrowLedger)

	router := gin.New()
	group := router.Group("/api/borrows")
	{
		group.POST("", controller.CreateBorrow)
		group.GET("/active", controller.ListActiveBorrows)
		group.GET("/overdue", controller.ListOverdueBorrows)
		group.GET("/due-soon", controller.ListDueSoon)
		group.GET("/stats", controller.GetStatistics)
		group.GET("/validate", controller.ValidateBorrower)
		group.POST("/:id/return", controller.ReturnBook)
		group.POST("/:id/extend", controller.ExtendDueDate)
	}

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return router, db, cleanup
}

func seedBorrower(t *testing.T, db *gorm.DB, seq int) (*entities.Patron, *entities.Book) {
	patron := &entities.Patron{
		PatronID:         fmt.Sprintf("BC%03X", seq),
		FirstName:        "Active",
		LastName:         "Member",
		Category:         entities.CategoryAdult,
		MembershipStatus: entities.MembershipActive,
	}
	require.NoError(t, db.Create(patron).Error)

	book := &entities.Book{
		Title:       "Weep Not, Child",
		Author:      "Ngugi wa Thiong'o",
		AccessionNo: fmt.Sprintf("ACC-%04d", seq),
		IsAvailable: true,
	}
	require.NoError(t, db.Create(book).Error)
	return patron, book
}

func TestCreateBorrowEndpoint(t *testing.T) {
	router, db, cleanup := setupBorrowsAPI(t)
	defer cleanup()

	patron, book := seedBorrower(t, db, 1)

	t.Run("checks the book out", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/borrows", gin.H{
			"patron_ref": patron.ID,
			"book_id":    book.ID,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var updated entities.Book
		require.NoError(t, db.First(&updated, book.ID).Error)
		assert.False(t, updated.IsAvailable)
	})

	t.Run("duplicate borrow conflicts", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/borrows", gin.H{
			"patron_ref": patron.ID,
			"book_id":    book.ID,
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("inactive membership is unprocessable", func(t *testing.T) {
		inactive := &entities.Patron{
			PatronID:  "BC0FF",
			FirstName: "Lapsed",
			LastName:  "Member",
			Category:  entities.CategoryPupil,
		}
		require.NoError(t, db.Create(inactive).Error)
		_, other := seedBorrower(t, db, 2)

		w := doJSON(t, router, http.MethodPost, "/api/borrows", gin.H{
			"patron_ref": inactive.ID,
			"book_id":    other.ID,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("span past the ceiling is a bad request", func(t *testing.T) {
		_, other := seedBorrower(t, db, 3)
		w := doJSON(t, router, http.MethodPost, "/api/borrows", gin.H{
			"patron_ref":  patron.ID,
			"book_id":     other.ID,
			"borrow_date": "2026-03-10",
			"due_date":    "2026-05-01",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing body fields", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/borrows", gin.H{"patron_ref": patron.ID})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown patron", func(t *testing.T) {
		_, other := seedBorrower(t, db, 4)
		w := doJSON(t, router, http.MethodPost, "/api/borrows", gin.H{
			"patron_ref": 999,
			"book_id":    other.ID,
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestReturnBookEndpoint(t *testing.T) {
	router, db, cleanup := setupBorrowsAPI(t)
	defer cleanup()

	patron, book := seedBorrower(t, db, 1)

	w := doJSON(t, router, http.MethodPost, "/api/borrows", gin.H{
		"patron_ref": patron.ID,
		"book_id":    book.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var borrow entities.BorrowRecord
	require.NoError(t, db.Where("book_id = ?", book.ID).First(&borrow).Error)

	t.Run("late return carries the fine", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost,
			fmt.Sprintf("/api/borrows/%d/return", borrow.ID), gin.H{
				"return_date": borrow.DueDate.AddDate(0, 0, 2).Format("2006-01-02"),
			})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var closed entities.BorrowRecord
		require.NoError(t, db.First(&closed, borrow.ID).Error)
		assert.True(t, closed.Returned)
		assert.Equal(t, 10.0, closed.FineAmount)
	})

	t.Run("second return conflicts", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost,
			fmt.Sprintf("/api/borrows/%d/return", borrow.ID), nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown borrow", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/borrows/999/return", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestExtendDueDateEndpoint(t *testing.T) {
	router, db, cleanup := setupBorrowsAPI(t)
	defer cleanup()

	patron, book := seedBorrower(t, db, 1)

	w := doJSON(t, router, http.MethodPost, "/api/borrows", gin.H{
		"patron_ref": patron.ID,
		"book_id":    book.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var borrow entities.BorrowRecord
	require.NoError(t, db.Where("book_id = ?", book.ID).First(&borrow).Error)

	t.Run("extends within the ceiling", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost,
			fmt.Sprintf("/api/borrows/%d/extend", borrow.ID), gin.H{
				"due_date": borrow.DueDate.AddDate(0, 0, 7).Format("2006-01-02"),
			})
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("past the ceiling is a bad request", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost,
			fmt.Sprintf("/api/borrows/%d/extend", borrow.ID), gin.H{
				"due_date": borrow.BorrowDate.AddDate(0, 0, 45).Format("2006-01-02"),
			})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing due date", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost,
			fmt.Sprintf("/api/borrows/%d/extend", borrow.ID), gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBorrowListingEndpoints(t *testing.T) {
	router, db, cleanup := setupBorrowsAPI(t)
	defer cleanup()

	patron, book := seedBorrower(t, db, 1)
	_, second := seedBorrower(t, db, 2)

	for _, id := range []uint{book.ID, second.ID} {
		w := doJSON(t, router, http.MethodPost, "/api/borrows", gin.H{
			"patron_ref": patron.ID,
			"book_id":    id,
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	// age one borrow past its due date
	require.NoError(t, db.Model(&entities.BorrowRecord{}).
		Where("book_id = ?", book.ID).
		Updates(map[string]any{
			"borrow_date": apiToday.AddDate(0, 0, -21),
			"due_date":    apiToday.AddDate(0, 0, -7),
		}).Error)

	listCount := func(path string) int {
		w := doJSON(t, router, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var body struct {
			Count int `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return body.Count
	}

	assert.Equal(t, 2, listCount("/api/borrows/active"))
	assert.Equal(t, 1, listCount("/api/borrows/overdue"))
	assert.Equal(t, 0, listCount("/api/borrows/due-soon"))
	assert.Equal(t, 1, listCount("/api/borrows/due-soon?within_days=14"))

	t.Run("bad within_days", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/borrows/due-soon?within_days=-1", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("validate endpoint", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet,
			fmt.Sprintf("/api/borrows/validate?patron_ref=%d", patron.ID), nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "blocked by the overdue borrow")

		w = doJSON(t, router, http.MethodGet, "/api/borrows/validate", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
