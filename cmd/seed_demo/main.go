// Command seed_demo creates a demo database with sample patrons, books,
// borrows and payments.
// Usage: go run cmd/seed_demo/main.go [-db path/to/demo.db]
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/TJselevani/LibraryMGMT-sub000/internal/config"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/database"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/database/attendance"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/database/books"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/database/patrons"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/entities"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/ledger"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/rules"
)

const defaultDemoDatabasePath = "./demo/demo.db"

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	flag.Parse()

	log.Printf("Generating demo database at %s...", *dbPath)

	// Delete existing demo database to start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	cfg := config.NewConfig()
	patronRepo := patrons.NewRepository(db.DB)
	bookRepo := books.NewRepository(db.DB)
	attendanceRepo := attendance.NewRepository(db.DB)
	borrowLedger := ledger.NewBorrowLedger(db.DB, rules.NewLendingPolicy(cfg.Borrowing))
	paymentLedger := ledger.NewPaymentLedger(db.DB, cfg.Payments.AmountTolerance)

	seededPatrons := seedPatrons(patronRepo)
	seededBooks := seedBooks(bookRepo)
	seedPayments(paymentLedger, seededPatrons)
	seedBorrows(borrowLedger, seededPatrons, seededBooks)
	seedAttendance(attendanceRepo, seededPatrons)

	log.Println("Demo database generated successfully!")
}

func seedPatrons(repo *patrons.Repository) []*entities.Patron {
	samples := []entities.Patron{
		{
			FirstName:   "Amina",
			LastName:    "Odhiambo",
			Category:    entities.CategoryPupil,
			Age:         11,
			Gender:      "female",
			Institution: "Hilltop Primary",
			GradeLevel:  "Grade 6",
			Residence:   "Eastfield",
			PhoneNumber: "0700000001",
		},
		{
			FirstName:   "Brian",
			LastName:    "Mutua",
			Category:    entities.CategoryStudent,
			Age:         19,
			Gender:      "male",
			Institution: "Lakeside University",
			Residence:   "Westgate",
			PhoneNumber: "0700000002",
		},
		{
			FirstName:   "Carol",
			LastName:    "Wanjiru",
			Category:    entities.CategoryAdult,
			Age:         34,
			Gender:      "female",
			Residence:   "Hillview",
			PhoneNumber: "0700000003",
		},
		{
			FirstName:   "David",
			LastName:    "Kiprop",
			Category:    entities.CategoryAdult,
			Age:         42,
			Gender:      "male",
			Residence:   "Southlands",
			PhoneNumber: "0700000004",
		},
	}

	var created []*entities.Patron
	for i := range samples {
		patron, err := repo.CreatePatron(&samples[i])
		if err != nil {
			log.Printf("Failed to create patron %s %s: %v", samples[i].FirstName, samples[i].LastName, err)
			continue
		}
		log.Printf("Created patron %s (%s, %s)", patron.PatronID, patron.FirstName, patron.Category)
		created = append(created, patron)
	}
	return created
}

func seedBooks(repo *books.Repository) []*entities.Book {
	samples := []entities.Book{
		{Title: "Meditations", Author: "Marcus Aurelius", AccessionNo: "ACC-0001", ClassName: "Philosophy", ISBN: "9780140449334"},
		{Title: "Pride and Prejudice", Author: "Jane Austen", AccessionNo: "ACC-0002", ClassName: "Fiction", ISBN: "9780141439518"},
		{Title: "The Time Machine", Author: "H. G. Wells", AccessionNo: "ACC-0003", ClassName: "Fiction", ISBN: "9780141439976"},
		{Title: "On the Origin of Species", Author: "Charles Darwin", AccessionNo: "ACC-0004", ClassName: "Science", ISBN: "9780140436310"},
		{Title: "Treasure Island", Author: "Robert Louis Stevenson", AccessionNo: "ACC-0005", ClassName: "Children"},
	}

	var created []*entities.Book
	for i := range samples {
		book, err := repo.CreateBook(&samples[i])
		if err != nil {
			log.Printf("Failed to create book %s: %v", samples[i].Title, err)
			continue
		}
		log.Printf("Catalogued %s by %s (%s)", book.Title, book.Author, book.AccessionNo)
		created = append(created, book)
	}
	return created
}

// seedPayments pays memberships for all but the last patron, who gets a
// partially paid installment plan instead.
func seedPayments(paymentLedger *ledger.PaymentLedger, seeded []*entities.Patron) {
	prices := map[entities.Category]float64{
		entities.CategoryPupil:   200,
		entities.CategoryStudent: 450,
		entities.CategoryAdult:   600,
	}

	for i, patron := range seeded {
		amount := prices[patron.Category]

		if i == len(seeded)-1 {
			half := amount / 2
			result := paymentLedger.CreatePayment(ledger.CreatePaymentInput{
				PatronRef:   patron.ID,
				ItemName:    "membership",
				Amount:      amount,
				PaymentDate: time.Now(),
				Installments: []ledger.InstallmentInput{
					{Number: 1, Amount: half, DueDate: time.Now().AddDate(0, 0, 7)},
					{Number: 2, Amount: amount - half, DueDate: time.Now().AddDate(0, 1, 0)},
				},
			})
			if !result.Success {
				log.Printf("Failed to create installment plan for %s: %s", patron.PatronID, result.Message)
			} else {
				log.Printf("Created installment plan for %s", patron.PatronID)
			}
			continue
		}

		result := paymentLedger.CreatePayment(ledger.CreatePaymentInput{
			PatronRef:   patron.ID,
			ItemName:    "membership",
			Amount:      amount,
			PaymentDate: time.Now(),
		})
		if !result.Success {
			log.Printf("Failed to pay membership for %s: %s", patron.PatronID, result.Message)
		} else {
			log.Printf("Membership paid for %s", patron.PatronID)
		}
	}
}

// seedBorrows lends a few books; the first borrow is backdated so the
// overdue scan has something to find.
func seedBorrows(borrowLedger *ledger.BorrowLedger, seededPatrons []*entities.Patron, seededBooks []*entities.Book) {
	if len(seededPatrons) < 3 || len(seededBooks) < 3 {
		log.Printf("Not enough seed data for borrows, skipping")
		return
	}

	overdueStart := time.Now().AddDate(0, 0, -21)
	result := borrowLedger.CreateBorrow(seededPatrons[0].ID, seededBooks[0].ID, overdueStart, overdueStart.AddDate(0, 0, 14))
	logBorrowResult(result, seededPatrons[0], seededBooks[0])

	result = borrowLedger.CreateBorrow(seededPatrons[1].ID, seededBooks[1].ID, time.Time{}, time.Time{})
	logBorrowResult(result, seededPatrons[1], seededBooks[1])

	result = borrowLedger.CreateBorrow(seededPatrons[2].ID, seededBooks[2].ID, time.Time{}, time.Time{})
	logBorrowResult(result, seededPatrons[2], seededBooks[2])
}

func logBorrowResult(result ledger.Result, patron *entities.Patron, book *entities.Book) {
	if !result.Success {
		log.Printf("Failed to lend %s to %s: %s", book.Title, patron.PatronID, result.Message)
		return
	}
	log.Printf("Lent %s to %s", book.Title, patron.PatronID)
}

func seedAttendance(repo *attendance.Repository, seeded []*entities.Patron) {
	today := time.Now()
	for _, patron := range seeded {
		if _, err := repo.MarkAttendance(patron.ID, today); err != nil {
			log.Printf("Failed to mark attendance for %s: %v", patron.PatronID, err)
		}
	}
	log.Printf("Marked attendance for %d patrons", len(seeded))
}
