package billing

import (
	"testing"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSentInvoice(t *testing.T, total float64) *Invoice {
	t.Helper()
	inv, err := NewInvoice(uuid.New(), uuid.New(), "INV-2026-0001")
	require.NoError(t, err)
	require.NoError(t, inv.AddItem("Consulting", decimal.NewFromInt(1), decimal.NewFromFloat(total)))
	require.NoError(t, inv.MarkSent(time.Now(), time.Now().AddDate(0, 0, 30)))
	return inv
}

func TestNewInvoice(t *testing.T) {
	t.Run("creates draft invoice with zero totals", func(t *testing.T) {
		inv, err := NewInvoice(uuid.New(), uuid.New(), "inv-001")
		require.NoError(t, err)
		assert.Equal(t, InvoiceStatusDraft, inv.Status)
		assert.Equal(t, "INV-001", inv.InvoiceNumber)
		assert.True(t, inv.Total.IsZero())
	})

	t.Run("rejects empty invoice number", func(t *testing.T) {
		_, err := NewInvoice(uuid.New(), uuid.New(), "   ")
		assert.Error(t, err)
	})

	t.Run("rejects nil customer", func(t *testing.T) {
		_, err := NewInvoice(uuid.New(), uuid.Nil, "INV-001")
		assert.Error(t, err)
	})
}

func TestInvoice_AddItem(t *testing.T) {
	t.Run("recalculates subtotal and total", func(t *testing.T) {
		inv, err := NewInvoice(uuid.New(), uuid.New(), "INV-001")
		require.NoError(t, err)

		require.NoError(t, inv.AddItem("Licenses", decimal.NewFromInt(3), decimal.NewFromFloat(99.99)))
		require.NoError(t, inv.AddItem("Support", decimal.NewFromInt(1), decimal.NewFromFloat(150)))

		assert.True(t, inv.Subtotal.Equal(decimal.NewFromFloat(449.97)), "subtotal was %s", inv.Subtotal)
		assert.True(t, inv.Total.Equal(decimal.NewFromFloat(449.97)))
	})

	t.Run("tax is added to the total", func(t *testing.T) {
		inv, err := NewInvoice(uuid.New(), uuid.New(), "INV-001")
		require.NoError(t, err)
		require.NoError(t, inv.AddItem("Hardware", decimal.NewFromInt(1), decimal.NewFromInt(100)))
		require.NoError(t, inv.SetTax(decimal.NewFromFloat(19.00)))
		assert.True(t, inv.Total.Equal(decimal.NewFromInt(119)))
	})

	t.Run("rejects items on sent invoices", func(t *testing.T) {
		inv := newSentInvoice(t, 100)
		err := inv.AddItem("Extra", decimal.NewFromInt(1), decimal.NewFromInt(10))
		assert.Error(t, err)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		inv, err := NewInvoice(uuid.New(), uuid.New(), "INV-001")
		require.NoError(t, err)
		assert.Error(t, inv.AddItem("Bad", decimal.Zero, decimal.NewFromInt(10)))
	})
}

func TestInvoice_CheckPayment(t *testing.T) {
	t.Run("accepts payment up to the remaining balance", func(t *testing.T) {
		inv := newSentInvoice(t, 100)
		err := inv.CheckPayment(decimal.NewFromInt(40), decimal.NewFromInt(60))
		assert.NoError(t, err)
	})

	t.Run("accepts overshoot within the rounding tolerance", func(t *testing.T) {
		inv := newSentInvoice(t, 100)
		err := inv.CheckPayment(decimal.NewFromInt(40), decimal.NewFromFloat(60.01))
		assert.NoError(t, err)
	})

	t.Run("rejects overshoot beyond the tolerance", func(t *testing.T) {
		inv := newSentInvoice(t, 100)
		err := inv.CheckPayment(decimal.NewFromInt(40), decimal.NewFromFloat(60.02))
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrPaymentExceeded)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		inv := newSentInvoice(t, 100)
		assert.Error(t, inv.CheckPayment(decimal.Zero, decimal.Zero))
		assert.Error(t, inv.CheckPayment(decimal.Zero, decimal.NewFromInt(-5)))
	})

	t.Run("rejects payments on cancelled invoices", func(t *testing.T) {
		inv, err := NewInvoice(uuid.New(), uuid.New(), "INV-001")
		require.NoError(t, err)
		require.NoError(t, inv.Cancel())
		assert.Error(t, inv.CheckPayment(decimal.Zero, decimal.NewFromInt(10)))
	})
}

func TestInvoice_IsSettledBy(t *testing.T) {
	inv := newSentInvoice(t, 100)

	t.Run("settled at the full total", func(t *testing.T) {
		assert.True(t, inv.IsSettledBy(decimal.NewFromInt(100)))
	})

	t.Run("settled at total minus tolerance", func(t *testing.T) {
		assert.True(t, inv.IsSettledBy(decimal.NewFromFloat(99.99)))
	})

	t.Run("not settled below the tolerance boundary", func(t *testing.T) {
		assert.False(t, inv.IsSettledBy(decimal.NewFromFloat(99.98)))
	})
}

func TestInvoice_Lifecycle(t *testing.T) {
	t.Run("MarkSent stamps issue and due dates", func(t *testing.T) {
		inv, err := NewInvoice(uuid.New(), uuid.New(), "INV-001")
		require.NoError(t, err)
		issue := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		due := issue.AddDate(0, 1, 0)
		require.NoError(t, inv.MarkSent(issue, due))
		assert.Equal(t, InvoiceStatusSent, inv.Status)
		require.NotNil(t, inv.IssueDate)
		assert.Equal(t, issue, *inv.IssueDate)
	})

	t.Run("MarkSent rejects non-draft invoices", func(t *testing.T) {
		inv := newSentInvoice(t, 100)
		assert.Error(t, inv.MarkSent(time.Now(), time.Now()))
	})

	t.Run("MarkPaid is idempotent", func(t *testing.T) {
		inv := newSentInvoice(t, 100)
		first := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
		inv.MarkPaid(first)
		inv.MarkPaid(first.AddDate(0, 0, 7))
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
		require.NotNil(t, inv.PaidDate)
		assert.Equal(t, first, *inv.PaidDate)
	})

	t.Run("paid invoices cannot be cancelled", func(t *testing.T) {
		inv := newSentInvoice(t, 100)
		inv.MarkPaid(time.Now())
		assert.Error(t, inv.Cancel())
	})
}
