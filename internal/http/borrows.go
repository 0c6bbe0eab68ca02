package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TJselevani/LibraryMGMT-sub000/internal/ledger"
)

// BorrowsController exposes the lending operations of the borrow ledger.
type BorrowsController struct {
	ledger *ledger.BorrowLedger
}

func NewBorrowsController(l *ledger.BorrowLedger) *BorrowsController {
	return &BorrowsController{ledger: l}
}

type createBorrowRequest struct {
	PatronRef  uint   `json:"patron_ref" binding:"required"`
	BookID     uint   `json:"book_id" binding:"required"`
	BorrowDate string `json:"borrow_date"`
	DueDate    string `json:"due_date"`
}

// CreateBorrow checks a book out to a patron. Dates default to today and
// today plus the configured loan period.
func (controller *BorrowsController) CreateBorrow(c *gin.Context) {
	var req createBorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "patron_ref and book_id are required")
		return
	}

	var borrowDate, dueDate time.Time
	var err error
	if req.BorrowDate != "" {
		if borrowDate, err = time.Parse(dateLayout, req.BorrowDate); err != nil {
			respondBadRequest(c, "borrow_date must be formatted as YYYY-MM-DD")
			return
		}
	}
	if req.DueDate != "" {
		if dueDate, err = time.Parse(dateLayout, req.DueDate); err != nil {
			respondBadRequest(c, "due_date must be formatted as YYYY-MM-DD")
			return
		}
	}

	result := controller.ledger.CreateBorrow(req.PatronRef, req.BookID, borrowDate, dueDate)
	respondResult(c, result, http.StatusCreated)
}

type returnBookRequest struct {
	ReturnDate string `json:"return_date"`
}

// ReturnBook closes a borrow, recording the return date and any fine.
func (controller *BorrowsController) ReturnBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req returnBookRequest
	_ = c.ShouldBindJSON(&req)

	var returnDate time.Time
	if req.ReturnDate != "" {
		var err error
		if returnDate, err = time.Parse(dateLayout, req.ReturnDate); err != nil {
			respondBadRequest(c, "return_date must be formatted as YYYY-MM-DD")
			return
		}
	}

	respondResult(c, controller.ledger.ReturnBook(id, returnDate), http.StatusOK)
}

type extendDueDateRequest struct {
	DueDate string `json:"due_date" binding:"required"`
}

// ExtendDueDate pushes a borrow's due date later, within the loan ceiling.
func (controller *BorrowsController) ExtendDueDate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req extendDueDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "due_date is required")
		return
	}
	dueDate, err := time.Parse(dateLayout, req.DueDate)
	if err != nil {
		respondBadRequest(c, "due_date must be formatted as YYYY-MM-DD")
		return
	}

	respondResult(c, controller.ledger.ExtendDueDate(id, dueDate), http.StatusOK)
}

// ValidateBorrower runs the eligibility checks without creating a borrow.
func (controller *BorrowsController) ValidateBorrower(c *gin.Context) {
	patronRef, ok := parseQueryID(c, "patron_ref")
	if !ok {
		return
	}
	respondResult(c, controller.ledger.ValidatePatronCanBorrow(patronRef), http.StatusOK)
}

// ListActiveBorrows returns all open borrows.
func (controller *BorrowsController) ListActiveBorrows(c *gin.Context) {
	records, err := controller.ledger.GetActiveBorrows()
	if err != nil {
		respondInternalError(c, err, "list active borrows")
		return
	}
	c.JSON(http.StatusOK, gin.H{"borrows": records, "count": len(records)})
}

// ListOverdueBorrows returns open borrows past their due date.
func (controller *BorrowsController) ListOverdueBorrows(c *gin.Context) {
	records, err := controller.ledger.GetOverdueBorrows()
	if err != nil {
		respondInternalError(c, err, "list overdue borrows")
		return
	}
	c.JSON(http.StatusOK, gin.H{"borrows": records, "count": len(records)})
}

// ListDueSoon returns open borrows due within the given number of days
// (default 3).
func (controller *BorrowsController) ListDueSoon(c *gin.Context) {
	withinDays := 3
	if raw := c.Query("within_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondBadRequest(c, "within_days must be a non-negative integer")
			return
		}
		withinDays = parsed
	}

	records, err := controller.ledger.GetDueSoon(withinDays)
	if err != nil {
		respondInternalError(c, err, "list due soon")
		return
	}
	c.JSON(http.StatusOK, gin.H{"borrows": records, "count": len(records)})
}

// GetPatronHistory returns a patron's full borrow history.
func (controller *BorrowsController) GetPatronHistory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	records, err := controller.ledger.GetPatronHistory(id)
	if err != nil {
		respondInternalError(c, err, "patron borrow history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"borrows": records, "count": len(records)})
}

// GetBookHistory returns a book's full borrow history.
func (controller *BorrowsController) GetBookHistory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	records, err := controller.ledger.GetBookHistory(id)
	if err != nil {
		respondInternalError(c, err, "book borrow history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"borrows": records, "count": len(records)})
}

// GetStatistics returns lending totals.
func (controller *BorrowsController) GetStatistics(c *gin.Context) {
	stats, err := controller.ledger.GetStatistics()
	if err != nil {
		respondInternalError(c, err, "borrow statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}
