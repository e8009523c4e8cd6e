package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/crm"
)

// InvoiceDocument is the view model rendered into the invoice PDF
type InvoiceDocument struct {
	TenantName    string
	InvoiceNumber string
	Status        string
	IssueDate     string
	DueDate       string
	CustomerName  string
	CustomerEmail string
	Lines         []InvoiceLine
	Subtotal      string
	Tax           string
	Total         string
	AmountPaid    string
	Balance       string
	GeneratedAt   string
}

type InvoiceLine struct {
	Description string
	Quantity    string
	UnitPrice   string
	Amount      string
}

// BuildInvoiceDocument assembles the view model from domain records.
// paid is the sum of payments applied to the invoice so far.
func BuildInvoiceDocument(tenantName string, invoice *billing.Invoice, customer *crm.Customer, paid decimal.Decimal) InvoiceDocument {
	doc := InvoiceDocument{
		TenantName:    tenantName,
		InvoiceNumber: invoice.InvoiceNumber,
		Status:        string(invoice.Status),
		Subtotal:      invoice.Subtotal.StringFixed(2),
		Tax:           invoice.Tax.StringFixed(2),
		Total:         invoice.Total.StringFixed(2),
		AmountPaid:    paid.StringFixed(2),
		Balance:       invoice.Total.Sub(paid).StringFixed(2),
		GeneratedAt:   time.Now().UTC().Format("2006-01-02 15:04 UTC"),
	}
	if invoice.IssueDate != nil {
		doc.IssueDate = invoice.IssueDate.Format("2006-01-02")
	}
	if invoice.DueDate != nil {
		doc.DueDate = invoice.DueDate.Format("2006-01-02")
	}
	if customer != nil {
		doc.CustomerName = customer.Name
		doc.CustomerEmail = customer.Email
	}
	for _, item := range invoice.Items {
		doc.Lines = append(doc.Lines, InvoiceLine{
			Description: item.Description,
			Quantity:    item.Quantity.String(),
			UnitPrice:   item.UnitPrice.StringFixed(2),
			Amount:      item.Amount.StringFixed(2),
		})
	}
	return doc
}

// RenderInvoiceHTML produces the HTML document for an invoice
func RenderInvoiceHTML(doc InvoiceDocument) (string, error) {
	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("render invoice template: %w", err)
	}
	return buf.String(), nil
}

var invoiceTemplate = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: "Helvetica Neue", Arial, sans-serif; color: #1a1a1a; font-size: 13px; margin: 0; }
  .header { display: flex; justify-content: space-between; border-bottom: 2px solid #1a1a1a; padding-bottom: 16px; }
  .header h1 { margin: 0; font-size: 26px; letter-spacing: 1px; }
  .meta { text-align: right; }
  .meta .number { font-size: 16px; font-weight: bold; }
  .status { display: inline-block; padding: 2px 10px; border: 1px solid #1a1a1a; border-radius: 3px;
            text-transform: uppercase; font-size: 11px; margin-top: 4px; }
  .parties { margin: 24px 0; }
  .parties .label { font-size: 11px; text-transform: uppercase; color: #888; margin-bottom: 4px; }
  table.lines { width: 100%; border-collapse: collapse; margin-top: 8px; }
  table.lines th { text-align: left; font-size: 11px; text-transform: uppercase; color: #888;
                   border-bottom: 1px solid #ccc; padding: 6px 8px; }
  table.lines td { padding: 8px; border-bottom: 1px solid #eee; }
  table.lines th.num, table.lines td.num { text-align: right; }
  .totals { width: 280px; margin-left: auto; margin-top: 16px; }
  .totals .row { display: flex; justify-content: space-between; padding: 4px 8px; }
  .totals .grand { border-top: 2px solid #1a1a1a; font-weight: bold; font-size: 15px; padding-top: 8px; }
  .footer { margin-top: 48px; font-size: 10px; color: #aaa; text-align: center; }
</style>
</head>
<body>
  <div class="header">
    <div>
      <h1>INVOICE</h1>
      <div>{{.TenantName}}</div>
    </div>
    <div class="meta">
      <div class="number">{{.InvoiceNumber}}</div>
      {{if .IssueDate}}<div>Issued: {{.IssueDate}}</div>{{end}}
      {{if .DueDate}}<div>Due: {{.DueDate}}</div>{{end}}
      <div class="status">{{.Status}}</div>
    </div>
  </div>
  <div class="parties">
    <div class="label">Bill To</div>
    <div><strong>{{.CustomerName}}</strong></div>
    {{if .CustomerEmail}}<div>{{.CustomerEmail}}</div>{{end}}
  </div>
  <table class="lines">
    <thead>
      <tr><th>Description</th><th class="num">Qty</th><th class="num">Unit Price</th><th class="num">Amount</th></tr>
    </thead>
    <tbody>
      {{range .Lines}}
      <tr>
        <td>{{.Description}}</td>
        <td class="num">{{.Quantity}}</td>
        <td class="num">{{.UnitPrice}}</td>
        <td class="num">{{.Amount}}</td>
      </tr>
      {{end}}
    </tbody>
  </table>
  <div class="totals">
    <div class="row"><span>Subtotal</span><span>{{.Subtotal}}</span></div>
    <div class="row"><span>Tax</span><span>{{.Tax}}</span></div>
    <div class="row grand"><span>Total</span><span>{{.Total}}</span></div>
    <div class="row"><span>Paid</span><span>{{.AmountPaid}}</span></div>
    <div class="row"><span>Balance Due</span><span>{{.Balance}}</span></div>
  </div>
  <div class="footer">Generated {{.GeneratedAt}}</div>
</body>
</html>`))
