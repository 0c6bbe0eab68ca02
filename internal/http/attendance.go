package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AttendanceController handles daily visit tracking.
type AttendanceController struct {
	store AttendanceStore
}

func NewAttendanceController(store AttendanceStore) *AttendanceController {
	return &AttendanceController{store: store}
}

type markAttendanceRequest struct {
	PatronRef uint   `json:"patron_ref" binding:"required"`
	Date      string `json:"date"`
}

// MarkAttendance records a patron visit for a day. Marking the same patron
// twice on one day returns the existing record.
func (controller *AttendanceController) MarkAttendance(c *gin.Context) {
	var req markAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "patron_ref is required")
		return
	}

	date := time.Now()
	if req.Date != "" {
		var err error
		if date, err = time.Parse(dateLayout, req.Date); err != nil {
			respondBadRequest(c, "date must be formatted as YYYY-MM-DD")
			return
		}
	}

	record, err := controller.store.MarkAttendance(req.PatronRef, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "patron")
			return
		}
		respondInternalError(c, err, "mark attendance")
		return
	}
	respondCreated(c, record)
}

type removeAttendanceRequest struct {
	PatronRef uint   `json:"patron_ref" binding:"required"`
	Date      string `json:"date"`
}

// RemoveAttendance deletes a patron's visit record for a day.
func (controller *AttendanceController) RemoveAttendance(c *gin.Context) {
	var req removeAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "patron_ref is required")
		return
	}

	date := time.Now()
	if req.Date != "" {
		var err error
		if date, err = time.Parse(dateLayout, req.Date); err != nil {
			respondBadRequest(c, "date must be formatted as YYYY-MM-DD")
			return
		}
	}

	if err := controller.store.RemoveAttendanceForPatron(req.PatronRef, date); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "attendance record")
			return
		}
		respondInternalError(c, err, "remove attendance")
		return
	}
	respondSuccess(c, "attendance removed")
}

// ListAttendanceByDate returns all visits for a day (default today).
func (controller *AttendanceController) ListAttendanceByDate(c *gin.Context) {
	date, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}

	records, err := controller.store.GetAttendanceByDate(date)
	if err != nil {
		respondInternalError(c, err, "list attendance")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date":       date.Format(dateLayout),
		"attendance": records,
		"count":      len(records),
	})
}

// GetPatronAttendance returns a patron's visit history, newest first.
func (controller *AttendanceController) GetPatronAttendance(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	records, err := controller.store.GetAttendanceForPatron(id)
	if err != nil {
		respondInternalError(c, err, "patron attendance")
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendance": records, "count": len(records)})
}

// CountAttendance returns the visit count for a day (default today).
func (controller *AttendanceController) CountAttendance(c *gin.Context) {
	date, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}
	count, err := controller.store.CountAttendanceByDate(date)
	if err != nil {
		respondInternalError(c, err, "count attendance")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date":  date.Format(dateLayout),
		"count": count,
	})
}
