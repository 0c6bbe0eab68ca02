package audit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord(t *testing.T) {
	auditor := NewAuditor(filepath.Join(t.TempDir(), "audit"))

	entry := Entry{
		Time:       time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC),
		StaffName:  "librarian1",
		Method:     "POST",
		Path:       "/api/borrows",
		StatusCode: 201,
		ClientIP:   "10.0.0.5",
	}

	filename, err := auditor.Record(entry)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(filename, ".json"))

	data, err := os.ReadFile(filepath.Join(auditor.AuditDir, filename))
	require.NoError(t, err)

	var stored Entry
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Equal(t, "librarian1", stored.StaffName)
	assert.Equal(t, "/api/borrows", stored.Path)
	assert.Equal(t, 201, stored.StatusCode)
}

func TestRecordFilenamesNeverCollide(t *testing.T) {
	auditor := NewAuditor(filepath.Join(t.TempDir(), "audit"))

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		filename, err := auditor.Record(Entry{Method: "POST", Path: "/api/patrons"})
		require.NoError(t, err)
		assert.False(t, seen[filename])
		seen[filename] = true
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	auditor := NewAuditor(filepath.Join(t.TempDir(), "audit"))

	router := gin.New()
	router.Use(Middleware(auditor))
	router.GET("/api/patrons", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/api/patrons", func(c *gin.Context) { c.Status(http.StatusCreated) })
	router.DELETE("/api/patrons/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	countEntries := func() int {
		entries, err := os.ReadDir(auditor.AuditDir)
		if os.IsNotExist(err) {
			return 0
		}
		require.NoError(t, err)
		return len(entries)
	}

	t.Run("reads are not audited", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/patrons", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0, countEntries())
	})

	t.Run("writes produce one entry each", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/patrons", nil))
		assert.Equal(t, http.StatusCreated, w.Code)

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/patrons/3", nil))
		assert.Equal(t, http.StatusOK, w.Code)

		require.Equal(t, 2, countEntries())
	})

	t.Run("entry captures the response status", func(t *testing.T) {
		entries, err := os.ReadDir(auditor.AuditDir)
		require.NoError(t, err)

		statuses := make(map[int]bool)
		for _, info := range entries {
			data, err := os.ReadFile(filepath.Join(auditor.AuditDir, info.Name()))
			require.NoError(t, err)
			var entry Entry
			require.NoError(t, json.Unmarshal(data, &entry))
			statuses[entry.StatusCode] = true
		}
		assert.True(t, statuses[http.StatusCreated])
	})
}
