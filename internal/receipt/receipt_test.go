package receipt

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"pos-system/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleOrder() *models.Order {
	return &models.Order{
		ID:            1,
		Number:        "ORD_20260901_007",
		TotalAmount:   d("250.00"),
		PaymentMethod: models.PaymentCash,
		PaymentStatus: models.PaymentPaid,
		CashTendered:  d("300.00"),
		Change:        d("50.00"),
		Status:        models.StatusCompleted,
		CreatedAt:     time.Date(2026, 9, 1, 12, 30, 0, 0, time.UTC),
		Items: []models.OrderLineItem{
			{ProductID: 1, Name: "Burger", Quantity: 2, UnitPrice: d("100.00"), Subtotal: d("200.00")},
			{ProductID: 2, Name: "Fries", Quantity: 1, UnitPrice: d("50.00"), Subtotal: d("50.00")},
		},
	}
}

func TestRenderReceipt(t *testing.T) {
	renderer := NewRenderer("Migoy's Burger", "Bunsuran 1st", "PHP")
	text := renderer.RenderReceipt(sampleOrder())

	assert.Contains(t, text, "Migoy's Burger")
	assert.Contains(t, text, "Bunsuran 1st")
	assert.Contains(t, text, "Order 0901-007")
	assert.Contains(t, text, "2x Burger")
	assert.Contains(t, text, "1x Fries")
	assert.Contains(t, text, "PHP 250.00")
	assert.Contains(t, text, "PHP 300.00")
	assert.Contains(t, text, "PHP 50.00")
	assert.Contains(t, text, "Thank you!")

	// Unit price line only for multi-quantity items
	assert.Contains(t, text, "@ PHP 100.00")
	assert.NotContains(t, text, "@ PHP 50.00")
}

func TestRenderReceipt_FitsPrinterWidth(t *testing.T) {
	renderer := NewRenderer("Migoy's Burger", "Bunsuran 1st", "PHP")
	text := renderer.RenderReceipt(sampleOrder())

	for _, line := range strings.Split(text, "\n") {
		if len(line) > lineWidth {
			t.Fatalf("line exceeds %d columns: %q", lineWidth, line)
		}
	}
}

func TestRenderReceipt_NoBranch(t *testing.T) {
	renderer := NewRenderer("Migoy's Burger", "", "PHP")
	text := renderer.RenderReceipt(sampleOrder())

	assert.NotContains(t, text, "Bunsuran")
	assert.Contains(t, text, "Migoy's Burger")
}

func TestRenderQueueTicket(t *testing.T) {
	renderer := NewRenderer("Migoy's Burger", "Bunsuran 1st", "PHP")
	createdAt := time.Date(2026, 9, 1, 12, 30, 0, 0, time.UTC)

	text := renderer.RenderQueueTicket("ORD_20260901_007", createdAt)

	assert.Contains(t, text, "0901-007")
	assert.Contains(t, text, "Migoy's Burger")
	assert.Contains(t, text, "Sep 1, 2026")
	assert.Contains(t, text, "Please wait for your number")
}

func TestLeftRight_OverlongWraps(t *testing.T) {
	line := leftRight(strings.Repeat("x", 30), "PHP 1.00")
	parts := strings.Split(line, "\n")
	assert.Len(t, parts, 2)
	assert.True(t, strings.HasSuffix(parts[1], "PHP 1.00"))
}
