package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/TJselevani/LibraryMGMT-sub000/internal/entities"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/rules"
)

// membershipItemName is the payment item whose completion activates a patron.
const membershipItemName = "membership"

// PaymentLedger creates payments and installments and reconciles them against
// membership activation. Mutations are transactional end to end.
type PaymentLedger struct {
	db        *gorm.DB
	tolerance float64
	now       func() time.Time
}

// NewPaymentLedger creates a payment ledger. tolerance is the currency
// rounding slack used when matching installment sums.
func NewPaymentLedger(db *gorm.DB, tolerance float64) *PaymentLedger {
	return &PaymentLedger{db: db, tolerance: tolerance, now: time.Now}
}

// SetClock overrides the ledger's notion of "today". Used by tests.
func (l *PaymentLedger) SetClock(now func() time.Time) { l.now = now }

// InstallmentInput is one scheduled part of a new payment.
type InstallmentInput struct {
	Number  int       `json:"number"`
	Amount  float64   `json:"amount"`
	DueDate time.Time `json:"due_date"`
	Notes   string    `json:"notes,omitempty"`
}

// CreatePaymentInput carries everything needed to record a payment.
type CreatePaymentInput struct {
	PatronRef    uint               `json:"patron_ref"`
	ItemName     string             `json:"item_name"`
	Amount       float64            `json:"amount"`
	PaymentDate  time.Time          `json:"payment_date"`
	Notes        string             `json:"notes,omitempty"`
	Installments []InstallmentInput `json:"installments,omitempty"`
}

// PaymentSummary aggregates a patron's payment position.
type PaymentSummary struct {
	PatronRef                uint                     `json:"patron_ref"`
	TotalPaid                float64                  `json:"total_paid"`
	TotalOutstanding         float64                  `json:"total_outstanding"`
	PaymentCount             int                      `json:"payment_count"`
	PendingInstallmentsCount int                      `json:"pending_installments_count"`
	Breakdown                map[string]ItemBreakdown `json:"breakdown"`
}

// ItemBreakdown is the per-payment-item slice of a summary.
type ItemBreakdown struct {
	DisplayName  string  `json:"display_name"`
	TotalPaid    float64 `json:"total_paid"`
	PaymentCount int     `json:"payment_count"`
}

// CreatePayment records a payment against a payment item. Field violations
// are collected and reported together. When installments are supplied they
// must be supported by the item, respect its maximum, and sum to the expected
// amount; everything is inserted in one transaction. Completed membership
// payments activate the patron.
func (l *PaymentLedger) CreatePayment(input CreatePaymentInput) Result {
	tx := l.db.Begin()
	if tx.Error != nil {
		return fail(CodeInternal, "could not open transaction")
	}
	defer tx.Rollback()

	var patron entities.Patron
	if err := tx.First(&patron, input.PatronRef).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(CodeNotFound, "patron not found")
		}
		return fail(CodeInternal, "error looking up patron")
	}

	var item entities.PaymentItem
	err := tx.Preload("CategoryPrices").
		Where("name = ? AND is_active = ?", input.ItemName, true).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(CodeNotFound, fmt.Sprintf("payment item '%s' not found or inactive", input.ItemName))
		}
		return fail(CodeInternal, "error looking up payment item")
	}

	expected, priced := item.AmountForCategory(patron.Category)
	if !priced {
		return fail(CodeValidation,
			fmt.Sprintf("no price configured for %s and category %s", item.Name, patron.Category))
	}

	if violations := l.validatePaymentInput(input, item, expected); len(violations) > 0 {
		return fail(CodeValidation, "validation errors: "+strings.Join(violations, "; "))
	}

	totalAmount := expected
	status := entities.PaymentStatusCompleted
	if len(input.Installments) > 0 {
		totalAmount = 0
		for _, inst := range input.Installments {
			totalAmount += inst.Amount
		}
		status = entities.PaymentStatusPending
	}

	payment := entities.Payment{
		PatronRef:     input.PatronRef,
		PaymentItemID: item.ID,
		Amount:        totalAmount,
		PaymentDate:   rules.Day(input.PaymentDate),
		Status:        status,
		Notes:         input.Notes,
	}
	if err := tx.Create(&payment).Error; err != nil {
		return fail(CodeInternal, "error creating payment")
	}

	for _, inst := range input.Installments {
		row := entities.Installment{
			PaymentID:         payment.ID,
			InstallmentNumber: inst.Number,
			Amount:            inst.Amount,
			DueDate:           rules.Day(inst.DueDate),
			Notes:             inst.Notes,
		}
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return fail(CodeIntegrityViolation,
					fmt.Sprintf("duplicate installment number %d", inst.Number))
			}
			return fail(CodeInternal, "error creating installment")
		}
	}

	// A fully paid membership activates the patron immediately.
	if item.Name == membershipItemName && payment.Status == entities.PaymentStatusCompleted {
		if err := tx.Model(&patron).
			Update("membership_status", entities.MembershipActive).Error; err != nil {
			return fail(CodeInternal, "error activating membership")
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fail(CodeInternal, "error committing payment")
	}

	return ok(fmt.Sprintf("Payment of %.2f for %s recorded", payment.Amount, item.DisplayName), &payment)
}

func (l *PaymentLedger) validatePaymentInput(input CreatePaymentInput, item entities.PaymentItem, expected float64) []string {
	var violations []string

	if input.PaymentDate.IsZero() {
		violations = append(violations, "payment date is required")
	}

	if len(input.Installments) > 0 {
		if !item.SupportsInstallments {
			return append(violations, fmt.Sprintf("%s does not support installments", item.DisplayName))
		}
		if len(input.Installments) > item.MaxInstallments {
			violations = append(violations,
				fmt.Sprintf("maximum %d installments allowed for %s", item.MaxInstallments, item.DisplayName))
		}
		var sum float64
		for _, inst := range input.Installments {
			if err := rules.ValidateAmount(inst.Amount); err != nil {
				violations = append(violations, fmt.Sprintf("installment %d: %v", inst.Number, err))
			}
			if inst.Number <= 0 {
				violations = append(violations, "installment numbers must be positive")
			}
			if inst.DueDate.IsZero() {
				violations = append(violations, fmt.Sprintf("installment %d: due date is required", inst.Number))
			}
			sum += inst.Amount
		}
		if !rules.AmountsMatch(sum, expected, l.tolerance) {
			violations = append(violations,
				fmt.Sprintf("installments must total %.2f, got %.2f", expected, sum))
		}
		return violations
	}

	if err := rules.ValidateAmount(input.Amount); err != nil {
		violations = append(violations, err.Error())
	} else if !rules.AmountsMatch(input.Amount, expected, l.tolerance) {
		violations = append(violations,
			fmt.Sprintf("invalid amount for %s: expected %.2f, got %.2f", item.DisplayName, expected, input.Amount))
	}
	return violations
}

// MarkInstallmentPaid settles one installment and recomputes the parent
// payment's status. Completing the last installment of a membership payment
// activates the patron.
func (l *PaymentLedger) MarkInstallmentPaid(installmentID uint) Result {
	tx := l.db.Begin()
	if tx.Error != nil {
		return fail(CodeInternal, "could not open transaction")
	}
	defer tx.Rollback()

	var installment entities.Installment
	if err := tx.First(&installment, installmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(CodeNotFound, "installment not found")
		}
		return fail(CodeInternal, "error looking up installment")
	}

	if installment.IsPaid {
		return fail(CodeAlreadyPaid, "installment already paid")
	}

	today := rules.Day(l.now())
	if err := tx.Model(&installment).Updates(map[string]any{
		"is_paid":   true,
		"paid_date": today,
	}).Error; err != nil {
		return fail(CodeInternal, "error updating installment")
	}

	var payment entities.Payment
	err := tx.Preload("Installments").Preload("PaymentItem").
		First(&payment, installment.PaymentID).Error
	if err != nil {
		return fail(CodeInternal, "error loading parent payment")
	}

	payment.DeriveStatus()
	if err := tx.Model(&entities.Payment{}).
		Where("id = ?", payment.ID).
		Update("status", payment.Status).Error; err != nil {
		return fail(CodeInternal, "error updating payment status")
	}

	if payment.PaymentItem.Name == membershipItemName && payment.Status == entities.PaymentStatusCompleted {
		if err := tx.Model(&entities.Patron{}).
			Where("id = ?", payment.PatronRef).
			Update("membership_status", entities.MembershipActive).Error; err != nil {
			return fail(CodeInternal, "error activating membership")
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fail(CodeInternal, "error committing installment")
	}

	return Result{
		Success: true,
		Message: "Installment marked as paid",
		Data:    map[string]any{"payment_status": payment.Status},
	}
}

// ValidatePatronCanPay checks whether a patron may start a payment for an
// item: no duplicate active membership, no pending installments for the item.
func (l *PaymentLedger) ValidatePatronCanPay(patronRef uint, itemName string) Result {
	var patron entities.Patron
	if err := l.db.First(&patron, patronRef).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(CodeNotFound, "patron not found")
		}
		return fail(CodeInternal, "error looking up patron")
	}

	var item entities.PaymentItem
	err := l.db.Preload("CategoryPrices").
		Where("name = ? AND is_active = ?", itemName, true).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(CodeNotFound, fmt.Sprintf("payment item '%s' not found or inactive", itemName))
		}
		return fail(CodeInternal, "error looking up payment item")
	}

	if item.Name == membershipItemName && patron.MembershipStatus == entities.MembershipActive {
		var existing int64
		err := l.db.Model(&entities.Payment{}).
			Joins("JOIN payment_items ON payment_items.id = payments.payment_item_id").
			Where("payments.patron_ref = ? AND payment_items.name = ? AND payments.status IN ?",
				patronRef, membershipItemName,
				[]entities.PaymentStatus{entities.PaymentStatusCompleted, entities.PaymentStatusPartial}).
			Count(&existing).Error
		if err != nil {
			return fail(CodeInternal, "error checking existing membership")
		}
		if existing > 0 {
			return fail(CodeConflict, "patron already has an active membership")
		}
	}

	var pending int64
	err = l.db.Model(&entities.Installment{}).
		Joins("JOIN payments ON payments.id = installments.payment_id").
		Joins("JOIN payment_items ON payment_items.id = payments.payment_item_id").
		Where("payments.patron_ref = ? AND payment_items.name = ? AND installments.is_paid = ?",
			patronRef, itemName, false).
		Count(&pending).Error
	if err != nil {
		return fail(CodeInternal, "error checking pending installments")
	}
	if pending > 0 {
		return fail(CodeConflict,
			fmt.Sprintf("patron has %d pending installment(s) for %s", pending, item.DisplayName))
	}

	amount, _ := item.AmountForCategory(patron.Category)
	return ok("patron can pay", map[string]any{"amount": amount})
}

// DeletePayment removes a payment and its installments, refusing when any
// installment has been paid.
func (l *PaymentLedger) DeletePayment(paymentID uint) Result {
	tx := l.db.Begin()
	if tx.Error != nil {
		return fail(CodeInternal, "could not open transaction")
	}
	defer tx.Rollback()

	var payment entities.Payment
	if err := tx.Preload("Installments").First(&payment, paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(CodeNotFound, "payment not found")
		}
		return fail(CodeInternal, "error looking up payment")
	}

	paid := 0
	for _, inst := range payment.Installments {
		if inst.IsPaid {
			paid++
		}
	}
	if paid > 0 {
		return fail(CodeConflict, fmt.Sprintf("cannot delete payment with %d paid installment(s)", paid))
	}

	if err := tx.Where("payment_id = ?", paymentID).Delete(&entities.Installment{}).Error; err != nil {
		return fail(CodeInternal, "error deleting installments")
	}
	if err := tx.Delete(&payment).Error; err != nil {
		return fail(CodeInternal, "error deleting payment")
	}

	if err := tx.Commit().Error; err != nil {
		return fail(CodeInternal, "error committing delete")
	}

	return ok("Payment deleted successfully", nil)
}

// ---------- read-only projections ----------

// GetPaymentsByPatron lists a patron's payments, newest first.
func (l *PaymentLedger) GetPaymentsByPatron(patronRef uint) ([]entities.Payment, error) {
	var payments []entities.Payment
	err := l.db.Preload("PaymentItem").Preload("Installments").
		Where("patron_ref = ?", patronRef).
		Order("payment_date DESC").
		Find(&payments).Error
	return payments, err
}

// GetPaymentsByItem lists all payments for one payment item, newest first.
func (l *PaymentLedger) GetPaymentsByItem(itemName string) ([]entities.Payment, error) {
	var payments []entities.Payment
	err := l.db.Preload("Patron").Preload("PaymentItem").Preload("Installments").
		Joins("JOIN payment_items ON payment_items.id = payments.payment_item_id").
		Where("payment_items.name = ?", itemName).
		Order("payment_date DESC").
		Find(&payments).Error
	return payments, err
}

// GetDueInstallments lists unpaid installments due today or earlier,
// optionally scoped to one patron (patronRef 0 means everyone).
func (l *PaymentLedger) GetDueInstallments(patronRef uint) ([]entities.Installment, error) {
	query := l.db.Preload("Payment.PaymentItem").Preload("Payment.Patron").
		Joins("JOIN payments ON payments.id = installments.payment_id").
		Where("installments.is_paid = ? AND installments.due_date <= ?", false, rules.Day(l.now()))
	if patronRef > 0 {
		query = query.Where("payments.patron_ref = ?", patronRef)
	}

	var installments []entities.Installment
	err := query.Order("installments.due_date ASC").Find(&installments).Error
	return installments, err
}

// GetPaymentSummary aggregates a patron's payment position.
func (l *PaymentLedger) GetPaymentSummary(patronRef uint) (*PaymentSummary, error) {
	payments, err := l.GetPaymentsByPatron(patronRef)
	if err != nil {
		return nil, err
	}

	summary := &PaymentSummary{
		PatronRef: patronRef,
		Breakdown: make(map[string]ItemBreakdown),
	}

	for _, payment := range payments {
		summary.PaymentCount++

		// Installment plans count only what has actually been settled;
		// the unpaid remainder is outstanding, not paid.
		paid := payment.Amount
		if len(payment.Installments) > 0 {
			paid = 0
			for _, inst := range payment.Installments {
				if inst.IsPaid {
					paid += inst.Amount
				} else {
					summary.TotalOutstanding += inst.Amount
					summary.PendingInstallmentsCount++
				}
			}
		}
		summary.TotalPaid += paid

		entry := summary.Breakdown[payment.PaymentItem.Name]
		entry.DisplayName = payment.PaymentItem.DisplayName
		entry.TotalPaid += paid
		entry.PaymentCount++
		summary.Breakdown[payment.PaymentItem.Name] = entry
	}

	return summary, nil
}
