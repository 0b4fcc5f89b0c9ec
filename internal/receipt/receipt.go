// Package receipt renders orders into printable 32-column documents for
// thermal receipt printers. Rendering is pure; nothing here feeds back into
// the order flow.
package receipt

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pos-system/internal/models"
)

const lineWidth = 32

// Renderer formats receipts and queue tickets with the storefront details
type Renderer struct {
	storeName string
	branch    string
	currency  string
}

// NewRenderer creates a renderer for the given storefront
func NewRenderer(storeName, branch, currency string) *Renderer {
	return &Renderer{
		storeName: storeName,
		branch:    branch,
		currency:  currency,
	}
}

// RenderReceipt renders a completed order as printable receipt text
func (r *Renderer) RenderReceipt(order *models.Order) string {
	var b strings.Builder

	b.WriteString(center(r.storeName) + "\n")
	if r.branch != "" {
		b.WriteString(center(r.branch) + "\n")
	}
	b.WriteString(divider() + "\n")

	b.WriteString(leftRight(
		fmt.Sprintf("Order %s", models.QueueNumberFromOrder(order.Number)),
		order.CreatedAt.Format("Jan 2 3:04 PM"),
	) + "\n")
	b.WriteString(divider() + "\n")

	for _, item := range order.Items {
		b.WriteString(leftRight(
			fmt.Sprintf("%dx %s", item.Quantity, item.Name),
			r.money(item.Subtotal),
		) + "\n")
		if item.Quantity > 1 {
			b.WriteString(fmt.Sprintf("   @ %s\n", r.money(item.UnitPrice)))
		}
	}

	b.WriteString(divider() + "\n")
	b.WriteString(leftRight("Total", r.money(order.TotalAmount)) + "\n")
	b.WriteString(leftRight("Cash", r.money(order.CashTendered)) + "\n")
	b.WriteString(leftRight("Change", r.money(order.Change)) + "\n")
	b.WriteString(divider() + "\n")
	b.WriteString(center("Thank you!") + "\n")

	return b.String()
}

// RenderQueueTicket renders the queue ticket handed to the customer while
// the order is prepared
func (r *Renderer) RenderQueueTicket(orderNumber string, createdAt time.Time) string {
	var b strings.Builder

	b.WriteString(divider() + "\n")
	b.WriteString(center(r.storeName) + "\n")
	b.WriteString("\n")
	b.WriteString(center(models.QueueNumberFromOrder(orderNumber)) + "\n")
	b.WriteString("\n")
	b.WriteString(center(createdAt.Format("Jan 2, 2006 3:04 PM")) + "\n")
	b.WriteString(divider() + "\n")
	b.WriteString(center("Please wait for your number") + "\n")

	return b.String()
}

func (r *Renderer) money(amount decimal.Decimal) string {
	return fmt.Sprintf("%s %s", r.currency, amount.StringFixed(2))
}

func divider() string {
	return strings.Repeat("-", lineWidth)
}

func center(s string) string {
	if len(s) >= lineWidth {
		return s
	}
	pad := (lineWidth - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

// leftRight puts one string on the left margin and one on the right, padding
// between them. Overlong lines wrap the right part to the next line.
func leftRight(left, right string) string {
	gap := lineWidth - len(left) - len(right)
	if gap < 1 {
		return left + "\n" + strings.Repeat(" ", lineWidth-len(right)) + right
	}
	return left + strings.Repeat(" ", gap) + right
}
