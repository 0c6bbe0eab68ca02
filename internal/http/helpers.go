package http

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TJselevani/LibraryMGMT-sub000/internal/ledger"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// --- Error Response Helpers ---

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the error; the client only sees a generic message.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// --- Success Response Helpers ---

func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// --- Ledger Result Mapping ---

// resultStatus maps a ledger error code to its HTTP status.
func resultStatus(code ledger.ErrCode) int {
	switch code {
	case ledger.CodeNotFound:
		return http.StatusNotFound
	case ledger.CodeValidation:
		return http.StatusBadRequest
	case ledger.CodeDuplicateBorrow,
		ledger.CodeAlreadyReturned,
		ledger.CodeAlreadyPaid,
		ledger.CodeConflict,
		ledger.CodeUnavailable,
		ledger.CodeIntegrityViolation:
		return http.StatusConflict
	case ledger.CodeLimitExceeded, ledger.CodeMembershipInactive:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondResult writes a ledger result, using successStatus when it succeeded.
func respondResult(c *gin.Context, result ledger.Result, successStatus int) {
	if result.Success {
		c.JSON(successStatus, SuccessResponse{Message: result.Message, Data: result.Data})
		return
	}
	c.JSON(resultStatus(result.Code), ErrorResponse{
		Error: result.Message,
		Code:  string(result.Code),
	})
}

// dateLayout is the wire format for all date fields.
const dateLayout = "2006-01-02"

// parseDateQuery reads an optional date query parameter, defaulting to today.
func parseDateQuery(c *gin.Context, paramName string) (time.Time, bool) {
	value := c.Query(paramName)
	if value == "" {
		return time.Now(), true
	}
	date, err := time.Parse(dateLayout, value)
	if err != nil {
		respondBadRequest(c, paramName+" must be formatted as YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}

// --- Parameter Parsing ---

// parseIDParam extracts an unsigned integer ID from URL parameters,
// responding with 400 and returning false on failure.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// parseQueryID extracts an unsigned integer ID from query parameters.
func parseQueryID(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Query(paramName)
	if idStr == "" {
		respondBadRequest(c, paramName+" is required")
		return 0, false
	}
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}
