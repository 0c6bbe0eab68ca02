package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TJselevani/LibraryMGMT-sub000/internal/auth"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/entities"
)

// StaffController manages staff accounts. All endpoints require admin role.
type StaffController struct {
	service *auth.Service
}

func NewStaffController(service *auth.Service) *StaffController {
	return &StaffController{service: service}
}

// ListStaff returns all staff accounts.
func (controller *StaffController) ListStaff(c *gin.Context) {
	users, err := controller.service.ListStaffUsers()
	if err != nil {
		respondInternalError(c, err, "list staff")
		return
	}
	c.JSON(http.StatusOK, gin.H{"staff": users, "count": len(users)})
}

type createStaffRequest struct {
	Username    string `json:"username" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	Role        string `json:"role" binding:"required"`
}

// CreateStaff registers a new staff account.
func (controller *StaffController) CreateStaff(c *gin.Context) {
	var req createStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "username, email, password and role are required")
		return
	}

	user, err := controller.service.CreateStaffUser(auth.CreateStaffInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Role:        entities.StaffRole(req.Role),
	})
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			respondError(c, http.StatusConflict, err.Error())
			return
		}
		respondBadRequest(c, err.Error())
		return
	}
	respondCreated(c, user)
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetActive enables or disables a staff account.
func (controller *StaffController) SetActive(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "active is required")
		return
	}

	if err := controller.service.SetActive(id, *req.Active); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			respondNotFound(c, "staff user")
			return
		}
		respondInternalError(c, err, "set staff active")
		return
	}
	respondSuccess(c, "staff account updated")
}

// Unlock clears a lockout so the account can log in again.
func (controller *StaffController) Unlock(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := controller.service.Unlock(id); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			respondNotFound(c, "staff user")
			return
		}
		respondInternalError(c, err, "unlock staff")
		return
	}
	respondSuccess(c, "staff account unlocked")
}
