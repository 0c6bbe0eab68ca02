package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/TJselevani/LibraryMGMT-sub000/internal/database/patrons"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/entities"
)

// PatronsController handles the patron registry endpoints.
type PatronsController struct {
	store PatronStore
}

func NewPatronsController(store PatronStore) *PatronsController {
	return &PatronsController{store: store}
}

type createPatronRequest struct {
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Institution string `json:"institution"`
	GradeLevel  string `json:"grade_level"`
	Age         int    `json:"age"`
	Gender      string `json:"gender"`
	Residence   string `json:"residence"`
	PhoneNumber string `json:"phone_number"`
	DateOfBirth string `json:"date_of_birth"`
}

// CreatePatron registers a new patron. The library ID is generated
// server-side and membership starts inactive until paid for.
func (controller *PatronsController) CreatePatron(c *gin.Context) {
	var req createPatronRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "first_name, last_name and category are required")
		return
	}

	patron := &entities.Patron{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Category:    entities.Category(req.Category),
		Institution: req.Institution,
		GradeLevel:  req.GradeLevel,
		Age:         req.Age,
		Gender:      req.Gender,
		Residence:   req.Residence,
		PhoneNumber: req.PhoneNumber,
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse(dateLayout, req.DateOfBirth)
		if err != nil {
			respondBadRequest(c, "date_of_birth must be formatted as YYYY-MM-DD")
			return
		}
		patron.DateOfBirth = &dob
	}

	created, err := controller.store.CreatePatron(patron)
	if err != nil {
		if errors.Is(err, patrons.ErrInvalidCategory) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, err, "create patron")
		return
	}
	respondCreated(c, created)
}

// GetPatron fetches one patron by numeric ID or by library ID.
func (controller *PatronsController) GetPatron(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	patron, err := controller.store.GetPatronByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "patron")
			return
		}
		respondInternalError(c, err, "get patron")
		return
	}
	c.JSON(http.StatusOK, patron)
}

// GetPatronByLibraryID looks a patron up by their card ID (e.g. "AB1F3").
func (controller *PatronsController) GetPatronByLibraryID(c *gin.Context) {
	patronID := c.Param("patron_id")
	patron, err := controller.store.GetPatronByPatronID(patronID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "patron")
			return
		}
		respondInternalError(c, err, "get patron by library id")
		return
	}
	c.JSON(http.StatusOK, patron)
}

// ListPatrons returns patrons, optionally filtered by search term,
// institution or membership status.
func (controller *PatronsController) ListPatrons(c *gin.Context) {
	var (
		result []entities.Patron
		err    error
	)
	switch {
	case c.Query("search") != "":
		result, err = controller.store.SearchPatrons(c.Query("search"))
	case c.Query("institution") != "":
		result, err = controller.store.GetPatronsByInstitution(c.Query("institution"))
	case c.Query("status") != "":
		result, err = controller.store.GetPatronsByStatus(entities.MembershipStatus(c.Query("status")))
	default:
		result, err = controller.store.GetAllPatrons()
	}
	if err != nil {
		respondInternalError(c, err, "list patrons")
		return
	}
	c.JSON(http.StatusOK, gin.H{"patrons": result, "count": len(result)})
}

type updatePatronRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Institution *string `json:"institution"`
	GradeLevel  *string `json:"grade_level"`
	Age         *int    `json:"age"`
	Gender      *string `json:"gender"`
	Residence   *string `json:"residence"`
	PhoneNumber *string `json:"phone_number"`
}

// UpdatePatron applies a partial update. Category and the generated library
// ID are immutable after registration.
func (controller *PatronsController) UpdatePatron(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updatePatronRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	updates := map[string]any{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Institution != nil {
		updates["institution"] = *req.Institution
	}
	if req.GradeLevel != nil {
		updates["grade_level"] = *req.GradeLevel
	}
	if req.Age != nil {
		updates["age"] = *req.Age
	}
	if req.Gender != nil {
		updates["gender"] = *req.Gender
	}
	if req.Residence != nil {
		updates["residence"] = *req.Residence
	}
	if req.PhoneNumber != nil {
		updates["phone_number"] = *req.PhoneNumber
	}
	if len(updates) == 0 {
		respondBadRequest(c, "no updatable fields provided")
		return
	}

	patron, err := controller.store.UpdatePatron(id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "patron")
			return
		}
		respondInternalError(c, err, "update patron")
		return
	}
	c.JSON(http.StatusOK, patron)
}

// DeletePatron removes a patron. Refused while open borrows exist.
func (controller *PatronsController) DeletePatron(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := controller.store.DeletePatron(id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			respondNotFound(c, "patron")
		case errors.Is(err, patrons.ErrHasOpenBorrows):
			respondError(c, http.StatusConflict, err.Error())
		default:
			respondInternalError(c, err, "delete patron")
		}
		return
	}
	respondSuccess(c, "patron deleted")
}

// GetPatronStats returns registry totals by membership status.
func (controller *PatronsController) GetPatronStats(c *gin.Context) {
	total, active, inactive, err := controller.store.GetPatronStats()
	if err != nil {
		respondInternalError(c, err, "patron stats")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":    total,
		"active":   active,
		"inactive": inactive,
	})
}
