package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/TJselevani/LibraryMGMT-sub000/internal/database/categories"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/entities"
)

// CategoriesController handles the shelving category endpoints.
type CategoriesController struct {
	store CategoryStore
}

func NewCategoriesController(store CategoryStore) *CategoriesController {
	return &CategoriesController{store: store}
}

type createCategoryRequest struct {
	Name      string `json:"name" binding:"required"`
	Audience  string `json:"audience" binding:"required"`
	ColorCode string `json:"color_code"`
}

// CreateCategory adds a shelving category. Names are unique and color
// codes are normalized to the canonical "COLOR / COLOR" form.
func (controller *CategoriesController) CreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name and audience are required")
		return
	}

	created, err := controller.store.CreateCategory(&entities.BookCategory{
		Name:      req.Name,
		Audience:  entities.Audience(req.Audience),
		ColorCode: req.ColorCode,
	})
	if err != nil {
		switch {
		case errors.Is(err, categories.ErrMissingFields),
			errors.Is(err, categories.ErrInvalidAudience),
			errors.Is(err, categories.ErrInvalidColor):
			respondBadRequest(c, err.Error())
		case errors.Is(err, categories.ErrDuplicateName):
			respondError(c, http.StatusConflict, err.Error())
		default:
			respondInternalError(c, err, "create category")
		}
		return
	}
	respondCreated(c, created)
}

// GetCategory fetches a shelving category by its numeric ID.
func (controller *CategoriesController) GetCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	category, err := controller.store.GetCategoryByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "category")
			return
		}
		respondInternalError(c, err, "get category")
		return
	}
	c.JSON(http.StatusOK, category)
}

// ListCategories returns the shelf list, optionally filtered to one audience.
func (controller *CategoriesController) ListCategories(c *gin.Context) {
	var (
		result []entities.BookCategory
		err    error
	)
	if audience := c.Query("audience"); audience != "" {
		result, err = controller.store.GetCategoriesByAudience(entities.Audience(audience))
		if errors.Is(err, categories.ErrInvalidAudience) {
			respondBadRequest(c, err.Error())
			return
		}
	} else {
		result, err = controller.store.GetAllCategories()
	}
	if err != nil {
		respondInternalError(c, err, "list categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": result, "count": len(result)})
}

type updateCategoryRequest struct {
	Name      *string `json:"name"`
	Audience  *string `json:"audience"`
	ColorCode *string `json:"color_code"`
}

// UpdateCategory applies a partial update to a shelving category.
func (controller *CategoriesController) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Audience != nil {
		updates["audience"] = entities.Audience(*req.Audience)
	}
	if req.ColorCode != nil {
		updates["color_code"] = *req.ColorCode
	}
	if len(updates) == 0 {
		respondBadRequest(c, "no updatable fields provided")
		return
	}

	category, err := controller.store.UpdateCategory(id, updates)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			respondNotFound(c, "category")
		case errors.Is(err, categories.ErrInvalidAudience),
			errors.Is(err, categories.ErrInvalidColor):
			respondBadRequest(c, err.Error())
		case errors.Is(err, categories.ErrDuplicateName):
			respondError(c, http.StatusConflict, err.Error())
		default:
			respondInternalError(c, err, "update category")
		}
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteCategory removes a shelving category. Books keep their free-text
// class name, so no catalog rows are touched.
func (controller *CategoriesController) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := controller.store.DeleteCategory(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "category")
			return
		}
		respondInternalError(c, err, "delete category")
		return
	}
	respondSuccess(c, "category deleted")
}

// GetCategoryColorStats summarises spine-label color usage.
func (controller *CategoriesController) GetCategoryColorStats(c *gin.Context) {
	stats, err := controller.store.GetColorStats()
	if err != nil {
		respondInternalError(c, err, "category color stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}
