package entities

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type Category string

const (
	CategoryPupil   Category = "pupil"
	CategoryStudent Category = "student"
	CategoryAdult   Category = "adult"
)

// ValidCategories maps every accepted patron category.
var ValidCategories = map[Category]bool{
	CategoryPupil:   true,
	CategoryStudent: true,
	CategoryAdult:   true,
}

type MembershipStatus string

const (
	MembershipActive   MembershipStatus = "active"
	MembershipInactive MembershipStatus = "inactive"
	MembershipPending  MembershipStatus = "pending"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPartial   PaymentStatus = "partial"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// Patron is a registered library member.
type Patron struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	PatronID         string           `gorm:"uniqueIndex;size:5" json:"patron_id"` // 2 letters + 3 hex digits
	FirstName        string           `gorm:"size:100" json:"first_name"`
	LastName         string           `gorm:"size:100" json:"last_name"`
	Institution      string           `gorm:"size:200" json:"institution,omitempty"`
	GradeLevel       string           `gorm:"size:50" json:"grade_level,omitempty"`
	Category         Category         `gorm:"size:20;index" json:"category"`
	Age              int              `json:"age,omitempty"`
	Gender           string           `gorm:"size:10" json:"gender,omitempty"`
	DateOfBirth      *time.Time       `json:"date_of_birth,omitempty"`
	Residence        string           `gorm:"size:200" json:"residence,omitempty"`
	PhoneNumber      string           `gorm:"size:20;index" json:"phone_number,omitempty"`
	MembershipStatus MembershipStatus `gorm:"size:20;default:'inactive';index" json:"membership_status"`
	MembershipStart  *time.Time       `json:"membership_start,omitempty"`
	MembershipExpiry *time.Time       `json:"membership_expiry,omitempty"`

	Payments      []Payment      `gorm:"foreignKey:PatronRef" json:"payments,omitempty"`
	BorrowRecords []BorrowRecord `gorm:"foreignKey:PatronRef" json:"borrow_records,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// FullName joins first and last name for display.
func (p Patron) FullName() string {
	return p.FirstName + " " + p.LastName
}

type Audience string

const (
	AudienceChildren   Audience = "children"
	AudienceYoungAdult Audience = "young_adult"
	AudienceAdult      Audience = "adult"
)

// ValidAudiences maps every accepted shelving audience.
var ValidAudiences = map[Audience]bool{
	AudienceChildren:   true,
	AudienceYoungAdult: true,
	AudienceAdult:      true,
}

// BookCategory is a shelving category with its spine-label colors.
// ColorCode holds zero or more colors joined by " / " (e.g. "GREEN / LAVENDER").
type BookCategory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:100" json:"name"`
	Audience  Audience  `gorm:"size:20;index" json:"audience"`
	ColorCode string    `gorm:"size:100" json:"color_code,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Colors splits ColorCode into its individual colors.
func (c BookCategory) Colors() []string {
	if c.ColorCode == "" {
		return nil
	}
	var colors []string
	for _, part := range strings.Split(c.ColorCode, "/") {
		if color := strings.TrimSpace(part); color != "" {
			colors = append(colors, color)
		}
	}
	return colors
}

// Book is a catalogued item. IsAvailable is false while an open borrow exists.
type Book struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:200;index" json:"title"`
	Author      string    `gorm:"size:200;index" json:"author"`
	ClassName   string    `gorm:"size:100" json:"class_name,omitempty"`
	AccessionNo string    `gorm:"uniqueIndex;size:20" json:"accession_no"`
	ISBN        string    `gorm:"size:20" json:"isbn,omitempty"`
	IsAvailable bool      `gorm:"default:true" json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	BorrowRecords []BorrowRecord `gorm:"foreignKey:BookID" json:"borrow_records,omitempty"`
}

// BorrowRecord links a patron and a book. At most one open (Returned=false)
// record may exist per (patron, book) pair at any time.
type BorrowRecord struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	PatronRef  uint       `gorm:"index;column:patron_ref" json:"patron_ref"`
	BookID     uint       `gorm:"index" json:"book_id"`
	BorrowDate time.Time  `json:"borrow_date"`
	DueDate    time.Time  `gorm:"index" json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Returned   bool       `gorm:"default:false;index" json:"returned"`
	FineAmount float64    `gorm:"default:0" json:"fine_amount"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	Patron Patron `gorm:"foreignKey:PatronRef" json:"patron,omitempty"`
	Book   Book   `gorm:"foreignKey:BookID" json:"book,omitempty"`
}

// IsOverdue reports whether the record is open and past due as of now.
func (b BorrowRecord) IsOverdue(now time.Time) bool {
	return !b.Returned && b.DueDate.Before(truncateToDay(now))
}

// PaymentItem is a configurable payment category (membership, access fee, ...).
// Category-based items price per patron category via PaymentItemPrice rows;
// the rest carry a fixed BaseAmount.
type PaymentItem struct {
	ID                   uint    `gorm:"primaryKey" json:"id"`
	Name                 string  `gorm:"uniqueIndex;size:100" json:"name"`
	DisplayName          string  `gorm:"size:200" json:"display_name"`
	Description          string  `gorm:"type:text" json:"description,omitempty"`
	BaseAmount           float64 `json:"base_amount,omitempty"`
	IsActive             bool    `gorm:"default:true" json:"is_active"`
	SupportsInstallments bool    `gorm:"default:false" json:"supports_installments"`
	MaxInstallments      int     `gorm:"default:1" json:"max_installments"`
	IsCategoryBased      bool    `gorm:"default:false" json:"is_category_based"`

	CategoryPrices []PaymentItemPrice `gorm:"foreignKey:PaymentItemID;constraint:OnDelete:CASCADE" json:"category_prices,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AmountForCategory resolves the charge for a patron category.
// Returns false when no price is configured.
func (i PaymentItem) AmountForCategory(category Category) (float64, bool) {
	if !i.IsCategoryBased {
		if i.BaseAmount <= 0 {
			return 0, false
		}
		return i.BaseAmount, true
	}
	for _, price := range i.CategoryPrices {
		if price.Category == category {
			return price.Amount, true
		}
	}
	return 0, false
}

// PaymentItemPrice is the per-category price of a category-based payment item.
type PaymentItemPrice struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	PaymentItemID uint      `gorm:"index:idx_item_category,unique" json:"payment_item_id"`
	Category      Category  `gorm:"size:20;index:idx_item_category,unique" json:"category"`
	Amount        float64   `json:"amount"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Payment records money received from a patron for one payment item.
type Payment struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	PatronRef     uint          `gorm:"index;column:patron_ref" json:"patron_ref"`
	PaymentItemID uint          `gorm:"index" json:"payment_item_id"`
	Amount        float64       `json:"amount"`
	PaymentDate   time.Time     `json:"payment_date"`
	Status        PaymentStatus `gorm:"size:20;default:'completed';index" json:"status"`
	Notes         string        `gorm:"type:text" json:"notes,omitempty"`

	Patron       Patron        `gorm:"foreignKey:PatronRef" json:"patron,omitempty"`
	PaymentItem  PaymentItem   `gorm:"foreignKey:PaymentItemID" json:"payment_item,omitempty"`
	Installments []Installment `gorm:"foreignKey:PaymentID;constraint:OnDelete:CASCADE" json:"installments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompletionPercent reports how much of the payment is settled, based on
// installments. A payment without installments is complete iff its status says so.
func (p Payment) CompletionPercent() float64 {
	if len(p.Installments) == 0 {
		if p.Status == PaymentStatusCompleted {
			return 100
		}
		return 0
	}
	var total, paid float64
	for _, inst := range p.Installments {
		total += inst.Amount
		if inst.IsPaid {
			paid += inst.Amount
		}
	}
	if total <= 0 {
		return 0
	}
	return paid / total * 100
}

// DeriveStatus recomputes Status from installment completion.
// Payments without installments keep their current status.
func (p *Payment) DeriveStatus() {
	if len(p.Installments) == 0 {
		return
	}
	switch completion := p.CompletionPercent(); {
	case completion == 0:
		p.Status = PaymentStatusPending
	case completion >= 100:
		p.Status = PaymentStatusCompleted
	default:
		p.Status = PaymentStatusPartial
	}
}

// Installment is one scheduled part of a payment.
type Installment struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	PaymentID         uint       `gorm:"index:idx_payment_number,unique" json:"payment_id"`
	InstallmentNumber int        `gorm:"index:idx_payment_number,unique" json:"installment_number"`
	Amount            float64    `json:"amount"`
	DueDate           time.Time  `gorm:"index" json:"due_date"`
	PaidDate          *time.Time `json:"paid_date,omitempty"`
	IsPaid            bool       `gorm:"default:false;index" json:"is_paid"`
	Notes             string     `gorm:"type:text" json:"notes,omitempty"`

	Payment Payment `gorm:"foreignKey:PaymentID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Attendance marks a patron visit. One row per (patron, date).
type Attendance struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	PatronRef      uint      `gorm:"index:idx_patron_date,unique;column:patron_ref" json:"patron_ref"`
	AttendanceDate time.Time `gorm:"index:idx_patron_date,unique" json:"attendance_date"`
	CreatedAt      time.Time `json:"created_at"`

	Patron Patron `gorm:"foreignKey:PatronRef" json:"patron,omitempty"`
}

// OverdueNotice is written by the maintenance scan, one per overdue borrow per day.
type OverdueNotice struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BorrowID   uint      `gorm:"index:idx_borrow_day,unique" json:"borrow_id"`
	NoticeDate time.Time `gorm:"index:idx_borrow_day,unique" json:"notice_date"`
	DaysLate   int       `json:"days_late"`
	FineSoFar  float64   `json:"fine_so_far"`
	CreatedAt  time.Time `json:"created_at"`

	Borrow BorrowRecord `gorm:"foreignKey:BorrowID" json:"borrow,omitempty"`
}

func (Patron) TableName() string           { return "patrons" }
func (Book) TableName() string             { return "books" }
func (BookCategory) TableName() string     { return "book_categories" }
func (BorrowRecord) TableName() string     { return "borrow_records" }
func (Payment) TableName() string          { return "payments" }
func (Installment) TableName() string      { return "installments" }
func (PaymentItem) TableName() string      { return "payment_items" }
func (PaymentItemPrice) TableName() string { return "payment_item_prices" }
func (Attendance) TableName() string       { return "attendance" }
func (OverdueNotice) TableName() string    { return "overdue_notices" }

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
