package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TJselevani/LibraryMGMT-sub000/internal/audit"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/auth"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/config"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/covers"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/database"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/database/attendance"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/database/books"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/database/categories"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/database/patrons"
	http_controllers "github.com/TJselevani/LibraryMGMT-sub000/internal/http"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/ledger"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/metadata"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/rules"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/scheduler"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/tasks"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/tokenstore"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until an interrupt or termination signal
// arrives, then drains it within the configured shutdown timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting up to %v\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before refusing new connections
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires every component together and serves until shutdown.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting library server v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	patronRepo := patrons.NewRepository(db.DB)
	bookRepo := books.NewRepository(db.DB)
	categoryRepo := categories.NewRepository(db.DB)
	attendanceRepo := attendance.NewRepository(db.DB)

	policy := rules.NewLendingPolicy(cfg.Borrowing)
	borrowLedger := ledger.NewBorrowLedger(db.DB, policy)
	paymentLedger := ledger.NewPaymentLedger(db.DB, cfg.Payments.AmountTolerance)

	// Catalog enrichment: ISBN lookup plus a local cover cache
	metadataClient := metadata.NewOpenLibraryClient()
	coverCacheDir := filepath.Join(filepath.Dir(cfg.Database.Path), "covers")
	coverCache, err := covers.NewCache(coverCacheDir)
	if err != nil {
		log.Printf("WARNING: Failed to initialize cover cache: %v", err)
		coverCache = nil
	}

	var auditor *audit.Auditor
	if cfg.Audit.Enabled {
		auditor = audit.NewAuditor(cfg.Audit.Dir)
	}

	// Station identity lives in an encrypted file next to the database
	identityStore, err := tokenstore.New(tokenstore.Config{Path: cfg.Auth.TokenFilePath})
	if err != nil {
		log.Fatalf("Failed to open station identity store: %v", err)
	}
	identity, err := identityStore.LoadOrCreate()
	if err != nil {
		log.Fatalf("Failed to load station identity: %v", err)
	}
	log.Printf("Station ID: %s", identity.StationID)

	authService := auth.NewService(db.DB, cfg.Auth)

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}

	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	authMiddleware := auth.NewMiddleware(authService, sessionManager)

	hasUsers, _ := authService.HasUsers()
	if !hasUsers {
		log.Printf("No staff accounts found. POST /api/auth/setup to create an administrator.")
	}

	// Task queue for overdue scans and session cleanup
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var maintenance *scheduler.MaintenanceScheduler
	if cfg.Tasks.Enabled {
		taskCfg := tasks.DefaultConfig()
		taskCfg.Workers = cfg.Tasks.Workers
		taskCfg.ReleaseAfter = cfg.Tasks.ReleaseAfter
		taskCfg.CleanupInterval = cfg.Tasks.CleanupInterval
		taskCfg.RetentionDuration = cfg.Tasks.RetentionDuration

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewOverdueScanQueue(borrowLedger),
			tasks.NewCleanupSessionsQueue(sessionManager),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		maintenance = scheduler.NewMaintenanceScheduler(taskClient, cfg.Scheduler)
		if err := maintenance.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start maintenance scheduler: %v", err)
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Database:        db,
		PatronStore:     patronRepo,
		BookStore:       bookRepo,
		CategoryStore:   categoryRepo,
		AttendanceStore: attendanceRepo,
		BorrowLedger:    borrowLedger,
		PaymentLedger:   paymentLedger,
		AuthService:     authService,
		AuthMiddleware:  authMiddleware,
		SessionManager:  sessionManager,
		AuthConfig:      cfg.Auth,
		LoginRecorder:   identityStore,
		TaskClient:      taskClient,
		MetadataClient:  metadataClient,
		CoverCache:      coverCache,
		Auditor:         auditor,
		Version:         version,
		StationID:       identity.StationID,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if maintenance != nil {
			maintenance.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
