package audit

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TJselevani/LibraryMGMT-sub000/internal/auth"
)

// Middleware records every mutating request after it completes. Read
// requests are not audited.
func Middleware(auditor *Auditor) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case "POST", "PUT", "PATCH", "DELETE":
		default:
			c.Next()
			return
		}

		c.Next()

		entry := Entry{
			Time:       time.Now(),
			StaffName:  auth.GetUsername(c),
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			StatusCode: c.Writer.Status(),
			ClientIP:   c.ClientIP(),
		}

		if _, err := auditor.Record(entry); err != nil {
			log.Printf("audit: failed to record %s %s: %v", entry.Method, entry.Path, err)
		}
	}
}
