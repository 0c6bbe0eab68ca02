package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/TJselevani/LibraryMGMT-sub000/internal/database/patrons"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/entities"
)

func setupPatronsAPI(t *testing.T) (*gin.Engine, *gorm.DB, func()) {
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_" + t.Name() + ".db"
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Patron{}, &entities.Book{}, &entities.BorrowRecord{})
	require.NoError(t, err)

	controller := NewPatronsController(patrons.NewRepository(db))

	router := gin.New()
	group := router.Group("/api/patrons")
	{
		group.POST("", controller.CreatePatron)
		group.GET("", controller.ListPatrons)
		group.GET("/stats", controller.GetPatronStats)
		group.GET("/by-card/:patron_id", controller.GetPatronByLibraryID)
		group.GET("/:id", controller.GetPatron)
		group.PATCH("/:id", controller.UpdatePatron)
		group.DELETE("/:id", controller.DeletePatron)
	}

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return router, db, cleanup
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreatePatronEndpoint(t *testing.T) {
	router, _, cleanup := setupPatronsAPI(t)
	defer cleanup()

	t.Run("creates with generated card ID", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/patrons", gin.H{
			"first_name": "Amina",
			"last_name":  "Odhiambo",
			"category":   "pupil",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var created entities.Patron
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.Len(t, created.PatronID, 5)
		assert.Equal(t, entities.MembershipInactive, created.MembershipStatus)
	})

	t.Run("missing required fields", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/patrons", gin.H{"first_name": "Solo"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown category", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/patrons", gin.H{
			"first_name": "Brian",
			"last_name":  "Mutua",
			"category":   "senior",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed date of birth", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/patrons", gin.H{
			"first_name":    "Brian",
			"last_name":     "Mutua",
			"category":      "student",
			"date_of_birth": "10/03/2008",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetPatronEndpoints(t *testing.T) {
	router, db, cleanup := setupPatronsAPI(t)
	defer cleanup()

	seed := entities.Patron{
		PatronID:  "AB123",
		FirstName: "Carol",
		LastName:  "Wanjiru",
		Category:  entities.CategoryAdult,
	}
	require.NoError(t, db.Create(&seed).Error)

	t.Run("by numeric ID", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/patrons/1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var got entities.Patron
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "Carol", got.FirstName)
	})

	t.Run("by card ID", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/patrons/by-card/AB123", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/patrons/999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = doJSON(t, router, http.MethodGet, "/api/patrons/by-card/ZZFFF", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid ID", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/patrons/abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListPatronsEndpoint(t *testing.T) {
	router, db, cleanup := setupPatronsAPI(t)
	defer cleanup()

	for _, p := range []entities.Patron{
		{PatronID: "AA001", FirstName: "Amina", LastName: "Odhiambo", Category: entities.CategoryPupil,
			MembershipStatus: entities.MembershipActive, Institution: "Hilltop Primary"},
		{PatronID: "AA002", FirstName: "Brian", LastName: "Mutua", Category: entities.CategoryStudent,
			MembershipStatus: entities.MembershipInactive},
	} {
		row := p
		require.NoError(t, db.Create(&row).Error)
	}

	listCount := func(path string) int {
		w := doJSON(t, router, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var body struct {
			Count int `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return body.Count
	}

	assert.Equal(t, 2, listCount("/api/patrons"))
	assert.Equal(t, 1, listCount("/api/patrons?search=mutua"))
	assert.Equal(t, 1, listCount("/api/patrons?institution=Hilltop+Primary"))
	assert.Equal(t, 1, listCount("/api/patrons?status=active"))
	assert.Equal(t, 0, listCount("/api/patrons?search=nomatch"))
}

func TestUpdateAndDeletePatronEndpoints(t *testing.T) {
	router, db, cleanup := setupPatronsAPI(t)
	defer cleanup()

	seed := entities.Patron{
		PatronID:  "AB200",
		FirstName: "David",
		LastName:  "Kiprop",
		Category:  entities.CategoryAdult,
	}
	require.NoError(t, db.Create(&seed).Error)

	t.Run("partial update", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPatch, "/api/patrons/1", gin.H{
			"phone_number": "0722000009",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var got entities.Patron
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "0722000009", got.PhoneNumber)
		assert.Equal(t, "David", got.FirstName, "untouched fields survive")
	})

	t.Run("empty update rejected", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPatch, "/api/patrons/1", gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete refused with open borrows", func(t *testing.T) {
		book := entities.Book{Title: "Matigari", Author: "Ngugi wa Thiong'o", AccessionNo: "ACC-0001"}
		require.NoError(t, db.Create(&book).Error)
		require.NoError(t, db.Create(&entities.BorrowRecord{PatronRef: seed.ID, BookID: book.ID}).Error)

		w := doJSON(t, router, http.MethodDelete, "/api/patrons/1", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("delete succeeds after returns", func(t *testing.T) {
		require.NoError(t, db.Model(&entities.BorrowRecord{}).
			Where("patron_ref = ?", seed.ID).
			Update("returned", true).Error)

		w := doJSON(t, router, http.MethodDelete, "/api/patrons/1", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, http.MethodDelete, "/api/patrons/1", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPatronStatsEndpoint(t *testing.T) {
	router, db, cleanup := setupPatronsAPI(t)
	defer cleanup()

	for i, status := range []entities.MembershipStatus{
		entities.MembershipActive, entities.MembershipInactive, entities.MembershipActive,
	} {
		require.NoError(t, db.Create(&entities.Patron{
			PatronID:         "AC00" + string(rune('1'+i)),
			FirstName:        "Stat",
			LastName:         "Patron",
			Category:         entities.CategoryAdult,
			MembershipStatus: status,
		}).Error)
	}

	w := doJSON(t, router, http.MethodGet, "/api/patrons/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats struct {
		Total    int64 `json:"total"`
		Active   int64 `json:"active"`
		Inactive int64 `json:"inactive"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.Active)
	assert.Equal(t, int64(1), stats.Inactive)
}
