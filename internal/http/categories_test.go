package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/TJselevani/LibraryMGMT-sub000/internal/database/categories"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/entities"
)

func setupCategoriesAPI(t *testing.T) (*gin.Engine, func()) {
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_" + t.Name() + ".db"
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.BookCategory{})
	require.NoError(t, err)

	controller := NewCategoriesController(categories.NewRepository(db))

	router := gin.New()
	group := router.Group("/api/categories")
	{
		group.POST("", controller.CreateCategory)
		group.GET("", controller.ListCategories)
		group.GET("/colors", controller.GetCategoryColorStats)
		group.GET("/:id", controller.GetCategory)
		group.PATCH("/:id", controller.UpdateCategory)
		group.DELETE("/:id", controller.DeleteCategory)
	}

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return router, cleanup
}

func TestCategoryEndpoints(t *testing.T) {
	router, cleanup := setupCategoriesAPI(t)
	defer cleanup()

	var createdID uint

	t.Run("create normalizes colors", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/categories", gin.H{
			"name":       "Dinosaurs",
			"audience":   "children",
			"color_code": "orange,blue",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var created entities.BookCategory
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.Equal(t, "ORANGE / BLUE", created.ColorCode)
		createdID = created.ID
	})

	t.Run("create validation", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/categories", gin.H{
			"name": "No Audience",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doJSON(t, router, http.MethodPost, "/api/categories", gin.H{
			"name":     "Toddlers",
			"audience": "toddler",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doJSON(t, router, http.MethodPost, "/api/categories", gin.H{
			"name":     "Dinosaurs",
			"audience": "children",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("get and list", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/categories/%d", createdID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, http.MethodPost, "/api/categories", gin.H{
			"name":     "Romance",
			"audience": "young_adult",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		w = doJSON(t, router, http.MethodGet, "/api/categories", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var listing struct {
			Count int `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
		assert.Equal(t, 2, listing.Count)

		w = doJSON(t, router, http.MethodGet, "/api/categories?audience=children", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
		assert.Equal(t, 1, listing.Count)

		w = doJSON(t, router, http.MethodGet, "/api/categories?audience=toddler", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doJSON(t, router, http.MethodGet, "/api/categories/999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("update", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/categories/%d", createdID), gin.H{
			"color_code": "green",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/categories/%d", createdID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		var fresh entities.BookCategory
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fresh))
		assert.Equal(t, "GREEN", fresh.ColorCode)

		w = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/categories/%d", createdID), gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/categories/%d", createdID), gin.H{
			"name": "Romance",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("color stats", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/categories/colors", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var stats categories.ColorStats
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
		assert.Equal(t, 2, stats.TotalCategories)
		assert.Equal(t, 1, stats.ColorCounts["GREEN"])
	})

	t.Run("delete", func(t *testing.T) {
		w := doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/categories/%d", createdID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/categories/%d", createdID), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
