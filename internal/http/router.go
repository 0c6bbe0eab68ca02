package http

import (
	"github.com/gin-gonic/gin"

	"github.com/TJselevani/LibraryMGMT-sub000/internal/audit"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/auth"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/entities"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Session must load before auth so the middleware can read it
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}
	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	}
	if cfg.Auditor != nil {
		router.Use(audit.Middleware(cfg.Auditor))
	}

	// Authentication endpoints
	if cfg.AuthService != nil && cfg.SessionManager != nil {
		authController := auth.NewController(cfg.AuthService, cfg.SessionManager, cfg.AuthConfig, cfg.LoginRecorder)
		authController.RegisterRoutes(router)
	}

	health := NewHealthController(cfg.Database, cfg.Version, cfg.StationID)
	patronsController := NewPatronsController(cfg.PatronStore)
	booksController := NewBooksController(cfg.BookStore, cfg.MetadataClient, cfg.CoverCache)
	categoriesController := NewCategoriesController(cfg.CategoryStore)
	borrowsController := NewBorrowsController(cfg.BorrowLedger)
	paymentsController := NewPaymentsController(cfg.PaymentLedger, cfg.Database)
	attendanceController := NewAttendanceController(cfg.AttendanceStore)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Patron registry
	router.POST("/api/patrons", patronsController.CreatePatron)
	router.GET("/api/patrons", patronsController.ListPatrons)
	router.GET("/api/patrons/stats", patronsController.GetPatronStats)
	router.GET("/api/patrons/:id", patronsController.GetPatron)
	router.GET("/api/patrons/by-card/:patron_id", patronsController.GetPatronByLibraryID)
	router.PATCH("/api/patrons/:id", patronsController.UpdatePatron)
	router.DELETE("/api/patrons/:id", patronsController.DeletePatron)
	router.GET("/api/patrons/:id/borrows", borrowsController.GetPatronHistory)
	router.GET("/api/patrons/:id/payments", paymentsController.ListPatronPayments)
	router.GET("/api/patrons/:id/payments/summary", paymentsController.GetPatronSummary)
	router.GET("/api/patrons/:id/attendance", attendanceController.GetPatronAttendance)

	// Catalog
	router.POST("/api/books", booksController.CreateBook)
	router.GET("/api/books", booksController.ListBooks)
	router.GET("/api/books/stats", booksController.GetCatalogStats)
	router.GET("/api/books/lookup", booksController.LookupISBN)
	router.GET("/api/books/:id", booksController.GetBook)
	router.GET("/api/books/by-accession/:accession_no", booksController.GetBookByAccessionNo)
	router.PATCH("/api/books/:id", booksController.UpdateBook)
	router.DELETE("/api/books/:id", booksController.DeleteBook)
	router.GET("/api/books/:id/borrows", borrowsController.GetBookHistory)
	router.GET("/api/books/:id/cover", booksController.GetBookCover)

	// Shelving categories
	router.POST("/api/categories", categoriesController.CreateCategory)
	router.GET("/api/categories", categoriesController.ListCategories)
	router.GET("/api/categories/colors", categoriesController.GetCategoryColorStats)
	router.GET("/api/categories/:id", categoriesController.GetCategory)
	router.PATCH("/api/categories/:id", categoriesController.UpdateCategory)
	router.DELETE("/api/categories/:id", categoriesController.DeleteCategory)

	// Lending
	router.POST("/api/borrows", borrowsController.CreateBorrow)
	router.GET("/api/borrows/active", borrowsController.ListActiveBorrows)
	router.GET("/api/borrows/overdue", borrowsController.ListOverdueBorrows)
	router.GET("/api/borrows/due-soon", borrowsController.ListDueSoon)
	router.GET("/api/borrows/stats", borrowsController.GetStatistics)
	router.GET("/api/borrows/validate", borrowsController.ValidateBorrower)
	router.POST("/api/borrows/:id/return", borrowsController.ReturnBook)
	router.POST("/api/borrows/:id/extend", borrowsController.ExtendDueDate)

	// Payments
	router.POST("/api/payments", paymentsController.CreatePayment)
	router.GET("/api/payments/validate", paymentsController.ValidatePayer)
	router.GET("/api/payments/items", paymentsController.ListPaymentItems)
	router.GET("/api/payments/items/:name", paymentsController.ListItemPayments)
	router.GET("/api/payments/installments/due", paymentsController.ListDueInstallments)
	router.POST("/api/payments/installments/:id/pay", paymentsController.MarkInstallmentPaid)
	router.DELETE("/api/payments/:id", paymentsController.DeletePayment)

	// Attendance
	router.POST("/api/attendance", attendanceController.MarkAttendance)
	router.DELETE("/api/attendance", attendanceController.RemoveAttendance)
	router.GET("/api/attendance", attendanceController.ListAttendanceByDate)
	router.GET("/api/attendance/count", attendanceController.CountAttendance)

	// Staff administration (admin only)
	if cfg.AuthService != nil && cfg.AuthMiddleware != nil {
		staffController := NewStaffController(cfg.AuthService)
		admin := router.Group("/api/staff", cfg.AuthMiddleware.RequireRole(entities.StaffRoleAdmin))
		admin.GET("", staffController.ListStaff)
		admin.POST("", staffController.CreateStaff)
		admin.PATCH("/:id/active", staffController.SetActive)
		admin.POST("/:id/unlock", staffController.Unlock)
	}

	// Maintenance tasks
	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient)
		router.GET("/api/tasks/types", tasksController.ListTaskTypes)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
		router.POST("/api/tasks/:type/run", tasksController.RunTask)
	}

	return router
}
