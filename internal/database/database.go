package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/TJselevani/LibraryMGMT-sub000/internal/entities"
)

// defaultPaymentItems is seeded on first start so the payment ledger has
// something to charge against. Membership is the only category-based item.
var defaultPaymentItems = []entities.PaymentItem{
	{
		Name:        "access",
		DisplayName: "Daily Access Fee",
		Description: "Fee for daily library access",
		BaseAmount:  20.0,
	},
	{
		Name:        "study_room",
		DisplayName: "Study Room Access",
		Description: "Fee for study room booking",
		BaseAmount:  150.0,
	},
	{
		Name:                 "membership",
		DisplayName:          "Annual Membership",
		Description:          "Annual library membership with full access",
		SupportsInstallments: true,
		MaxInstallments:      3,
		IsCategoryBased:      true,
		CategoryPrices: []entities.PaymentItemPrice{
			{Category: entities.CategoryPupil, Amount: 200.0},
			{Category: entities.CategoryStudent, Amount: 450.0},
			{Category: entities.CategoryAdult, Amount: 600.0},
		},
	},
	{
		Name:                 "book_replacement",
		DisplayName:          "Book Replacement Fee",
		Description:          "Fee for replacing lost or damaged books",
		BaseAmount:           500.0,
		SupportsInstallments: true,
		MaxInstallments:      2,
	},
	{
		Name:        "late_return_fine",
		DisplayName: "Late Return Fine",
		Description: "Fine for returning books after due date",
		BaseAmount:  5.0,
	},
}

// defaultBookCategories is seeded on first start so the shelving screens
// have a working shelf list with the standard spine-label colors.
var defaultBookCategories = []entities.BookCategory{
	{Name: "ABC / 123 / Basic Concept", Audience: entities.AudienceChildren, ColorCode: "GREEN / LAVENDER"},
	{Name: "Adventure", Audience: entities.AudienceChildren, ColorCode: "RED"},
	{Name: "Animals", Audience: entities.AudienceChildren, ColorCode: "BLUE"},
	{Name: "Arts / Music / Dance", Audience: entities.AudienceChildren, ColorCode: "GREEN / ORANGE"},
	{Name: "Cars / Trucks", Audience: entities.AudienceChildren, ColorCode: "ORANGE / RED"},
	{Name: "Dinosaurs", Audience: entities.AudienceChildren, ColorCode: "ORANGE / BLUE"},
	{Name: "Fiction", Audience: entities.AudienceAdult},
	{Name: "Non-Fiction", Audience: entities.AudienceAdult},
	{Name: "Biography", Audience: entities.AudienceAdult, ColorCode: "PURPLE"},
	{Name: "Science Fiction", Audience: entities.AudienceYoungAdult, ColorCode: "SILVER / BLUE"},
	{Name: "Romance", Audience: entities.AudienceYoungAdult, ColorCode: "PINK"},
	{Name: "Mystery / Thriller", Audience: entities.AudienceAdult, ColorCode: "BLACK / RED"},
}

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate all entities
	err = db.AutoMigrate(
		&entities.StaffUser{},
		&entities.Patron{},
		&entities.Book{},
		&entities.BookCategory{},
		&entities.BorrowRecord{},
		&entities.PaymentItem{},
		&entities.PaymentItemPrice{},
		&entities.Payment{},
		&entities.Installment{},
		&entities.Attendance{},
		&entities.OverdueNotice{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db}

	if err := database.seedPaymentItems(); err != nil {
		return nil, fmt.Errorf("failed to seed payment items: %w", err)
	}

	if err := database.seedBookCategories(); err != nil {
		return nil, fmt.Errorf("failed to seed book categories: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return database, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) seedPaymentItems() error {
	for _, item := range defaultPaymentItems {
		var existing entities.PaymentItem
		result := d.DB.Where("name = ?", item.Name).First(&existing)
		if result.Error == gorm.ErrRecordNotFound {
			if err := d.DB.Create(&item).Error; err != nil {
				return fmt.Errorf("failed to create payment item %s: %w", item.Name, err)
			}
			log.Printf("Created payment item: %s", item.DisplayName)
		}
	}
	return nil
}

func (d *Database) seedBookCategories() error {
	for _, category := range defaultBookCategories {
		var existing entities.BookCategory
		result := d.DB.Where("name = ?", category.Name).First(&existing)
		if result.Error == gorm.ErrRecordNotFound {
			if err := d.DB.Create(&category).Error; err != nil {
				return fmt.Errorf("failed to create book category %s: %w", category.Name, err)
			}
		}
	}
	return nil
}

// GetPaymentItemByName looks up an active payment item.
func (d *Database) GetPaymentItemByName(name string) (*entities.PaymentItem, error) {
	var item entities.PaymentItem
	err := d.DB.Preload("CategoryPrices").
		Where("name = ? AND is_active = ?", name, true).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetActivePaymentItems returns all active payment items with their prices.
func (d *Database) GetActivePaymentItems() ([]entities.PaymentItem, error) {
	var items []entities.PaymentItem
	err := d.DB.Preload("CategoryPrices").Where("is_active = ?", true).Find(&items).Error
	return items, err
}
