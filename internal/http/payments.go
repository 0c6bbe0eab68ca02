package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TJselevani/LibraryMGMT-sub000/internal/ledger"
)

// PaymentsController exposes the payment ledger and the configured items.
type PaymentsController struct {
	ledger *ledger.PaymentLedger
	items  PaymentItemStore
}

func NewPaymentsController(l *ledger.PaymentLedger, items PaymentItemStore) *PaymentsController {
	return &PaymentsController{ledger: l, items: items}
}

type installmentPayload struct {
	Number  int     `json:"number" binding:"required"`
	Amount  float64 `json:"amount" binding:"required"`
	DueDate string  `json:"due_date" binding:"required"`
	Notes   string  `json:"notes"`
}

type createPaymentRequest struct {
	PatronRef    uint                 `json:"patron_ref" binding:"required"`
	ItemName     string               `json:"item_name" binding:"required"`
	Amount       float64              `json:"amount"`
	PaymentDate  string               `json:"payment_date"`
	Notes        string               `json:"notes"`
	Installments []installmentPayload `json:"installments"`
}

// CreatePayment records a payment, optionally split into installments.
func (controller *PaymentsController) CreatePayment(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "patron_ref and item_name are required")
		return
	}

	paymentDate := time.Now()
	if req.PaymentDate != "" {
		var err error
		if paymentDate, err = time.Parse(dateLayout, req.PaymentDate); err != nil {
			respondBadRequest(c, "payment_date must be formatted as YYYY-MM-DD")
			return
		}
	}

	input := ledger.CreatePaymentInput{
		PatronRef:   req.PatronRef,
		ItemName:    req.ItemName,
		Amount:      req.Amount,
		PaymentDate: paymentDate,
		Notes:       req.Notes,
	}
	for _, inst := range req.Installments {
		dueDate, err := time.Parse(dateLayout, inst.DueDate)
		if err != nil {
			respondBadRequest(c, "installment due_date must be formatted as YYYY-MM-DD")
			return
		}
		input.Installments = append(input.Installments, ledger.InstallmentInput{
			Number:  inst.Number,
			Amount:  inst.Amount,
			DueDate: dueDate,
			Notes:   inst.Notes,
		})
	}

	respondResult(c, controller.ledger.CreatePayment(input), http.StatusCreated)
}

// MarkInstallmentPaid settles one installment.
func (controller *PaymentsController) MarkInstallmentPaid(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	respondResult(c, controller.ledger.MarkInstallmentPaid(id), http.StatusOK)
}

// ValidatePayer checks whether a patron may start a payment for an item.
func (controller *PaymentsController) ValidatePayer(c *gin.Context) {
	patronRef, ok := parseQueryID(c, "patron_ref")
	if !ok {
		return
	}
	itemName := c.Query("item_name")
	if itemName == "" {
		respondBadRequest(c, "item_name is required")
		return
	}
	respondResult(c, controller.ledger.ValidatePatronCanPay(patronRef, itemName), http.StatusOK)
}

// DeletePayment removes a payment without paid installments.
func (controller *PaymentsController) DeletePayment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	respondResult(c, controller.ledger.DeletePayment(id), http.StatusOK)
}

// ListPatronPayments returns a patron's payments, newest first.
func (controller *PaymentsController) ListPatronPayments(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	payments, err := controller.ledger.GetPaymentsByPatron(id)
	if err != nil {
		respondInternalError(c, err, "list patron payments")
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments, "count": len(payments)})
}

// ListItemPayments returns all payments recorded for one payment item.
func (controller *PaymentsController) ListItemPayments(c *gin.Context) {
	itemName := c.Param("name")
	payments, err := controller.ledger.GetPaymentsByItem(itemName)
	if err != nil {
		respondInternalError(c, err, "list item payments")
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments, "count": len(payments)})
}

// ListDueInstallments returns unpaid installments due today or earlier,
// optionally scoped by patron_ref.
func (controller *PaymentsController) ListDueInstallments(c *gin.Context) {
	var patronRef uint
	if c.Query("patron_ref") != "" {
		parsed, ok := parseQueryID(c, "patron_ref")
		if !ok {
			return
		}
		patronRef = parsed
	}

	installments, err := controller.ledger.GetDueInstallments(patronRef)
	if err != nil {
		respondInternalError(c, err, "list due installments")
		return
	}
	c.JSON(http.StatusOK, gin.H{"installments": installments, "count": len(installments)})
}

// GetPatronSummary aggregates a patron's payment position.
func (controller *PaymentsController) GetPatronSummary(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	summary, err := controller.ledger.GetPaymentSummary(id)
	if err != nil {
		respondInternalError(c, err, "payment summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ListPaymentItems returns the active payment items with their prices.
func (controller *PaymentsController) ListPaymentItems(c *gin.Context) {
	items, err := controller.items.GetActivePaymentItems()
	if err != nil {
		respondInternalError(c, err, "list payment items")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}
