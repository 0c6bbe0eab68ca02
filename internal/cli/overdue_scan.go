package cli

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/TJselevani/LibraryMGMT-sub000/internal/config"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/database"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/ledger"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/rules"
)

// OverdueScanCommand records overdue notices for every open borrow past
// its due date, without going through the task queue.
type OverdueScanCommand struct {
	AsOf         string
	DatabasePath string
}

// NewOverdueScanCommand creates a new OverdueScanCommand
func NewOverdueScanCommand() *OverdueScanCommand {
	return &OverdueScanCommand{}
}

// ParseFlags parses command line flags
func (cmd *OverdueScanCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("overdue-scan", flag.ExitOnError)

	fs.StringVar(&cmd.AsOf, "as-of", "", "Scan date in YYYY-MM-DD format (defaults to today)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s overdue-scan [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Record overdue notices for open borrows past their due date.\n")
		fmt.Fprintf(os.Stderr, "Running the scan twice for the same date is a no-op.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the scan
func (cmd *OverdueScanCommand) Run() error {
	asOf := time.Now()
	if cmd.AsOf != "" {
		parsed, err := time.Parse("2006-01-02", cmd.AsOf)
		if err != nil {
			return fmt.Errorf("invalid -as-of date %q: %w", cmd.AsOf, err)
		}
		asOf = parsed
	}

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	cfg := config.NewConfig()
	borrowLedger := ledger.NewBorrowLedger(db.DB, rules.NewLendingPolicy(cfg.Borrowing))

	created, err := borrowLedger.RecordOverdueNotices(asOf)
	if err != nil {
		return fmt.Errorf("overdue scan failed: %w", err)
	}

	fmt.Printf("Recorded %d overdue notice(s) for %s\n", created, asOf.Format("2006-01-02"))
	return nil
}
