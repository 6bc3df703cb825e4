// internal/pkg/pdf/service.go

// Package pdf renders order invoices as PDFs via wkhtmltopdf.
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"

	"github.com/sweetcrumbs/bakery-backend/internal/config"
	"github.com/sweetcrumbs/bakery-backend/internal/domain/order"
)

// Service handles PDF generation
type Service struct {
	config *config.Config
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{config: cfg}
}

// invoiceData is the view model for the invoice template. Money fields are
// pre-formatted rupee strings.
type invoiceData struct {
	InvoiceNumber string
	InvoiceDate   string
	Order         *order.Order
	StoreName     string
	FromEmail     string
	Lines         []invoiceLine
	Subtotal      string
	DeliveryFee   string
	Tax           string
	CODSurcharge  string
	Total         string
}

type invoiceLine struct {
	Name      string
	Quantity  int
	UnitPrice string
	Total     string
}

// GenerateInvoice renders a PDF invoice for an order.
func (s *Service) GenerateInvoice(o *order.Order) (*bytes.Buffer, error) {
	data := invoiceData{
		InvoiceNumber: fmt.Sprintf("INV-%s", o.OrderNumber),
		InvoiceDate:   time.Now().Format("January 2, 2006"),
		Order:         o,
		StoreName:     s.config.External.Email.FromName,
		FromEmail:     s.config.External.Email.FromEmail,
		Subtotal:      rupees(o.SubtotalAmount),
		DeliveryFee:   rupees(o.DeliveryFee),
		Tax:           rupees(o.TaxAmount),
		Total:         rupees(o.TotalAmount),
	}
	if o.CODSurcharge > 0 {
		data.CODSurcharge = rupees(o.CODSurcharge)
	}
	for _, item := range o.Items {
		data.Lines = append(data.Lines, invoiceLine{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: rupees(item.Price),
			Total:     rupees(item.TotalPrice),
		})
	}

	var html bytes.Buffer
	if err := invoiceTmpl.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("failed to render invoice template: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html.Bytes()))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}
	return bytes.NewBuffer(pdfg.Bytes()), nil
}

func rupees(paise int64) string {
	return fmt.Sprintf("%d.%02d", paise/100, paise%100)
}

var invoiceTmpl = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Georgia, serif; color: #333; margin: 40px; }
  h1 { color: #8b5a2b; }
  .meta { margin-bottom: 30px; }
  table { width: 100%; border-collapse: collapse; margin-top: 20px; }
  th, td { padding: 8px 12px; border-bottom: 1px solid #ddd; text-align: left; }
  th { background: #f5efe6; }
  .amount { text-align: right; }
  .totals td { border: none; }
  .grand { font-weight: bold; border-top: 2px solid #8b5a2b; }
</style>
</head>
<body>
  <h1>{{.StoreName}}</h1>
  <div class="meta">
    <p><strong>Invoice:</strong> {{.InvoiceNumber}}<br>
       <strong>Date:</strong> {{.InvoiceDate}}<br>
       <strong>Order:</strong> {{.Order.OrderNumber}}<br>
       <strong>Payment:</strong> {{.Order.PaymentMethod}}</p>
    <p><strong>Deliver to:</strong><br>{{.Order.ShippingAddress}}</p>
  </div>
  <table>
    <tr><th>Item</th><th>Qty</th><th class="amount">Unit Price</th><th class="amount">Total</th></tr>
    {{range .Lines}}
    <tr><td>{{.Name}}</td><td>{{.Quantity}}</td><td class="amount">₹{{.UnitPrice}}</td><td class="amount">₹{{.Total}}</td></tr>
    {{end}}
  </table>
  <table class="totals">
    <tr><td></td><td class="amount">Subtotal</td><td class="amount">₹{{.Subtotal}}</td></tr>
    <tr><td></td><td class="amount">Delivery</td><td class="amount">₹{{.DeliveryFee}}</td></tr>
    <tr><td></td><td class="amount">Tax (GST)</td><td class="amount">₹{{.Tax}}</td></tr>
    {{if .CODSurcharge}}<tr><td></td><td class="amount">COD charge</td><td class="amount">₹{{.CODSurcharge}}</td></tr>{{end}}
    <tr class="grand"><td></td><td class="amount">Total</td><td class="amount">₹{{.Total}}</td></tr>
  </table>
  <p>Questions? Write to {{.FromEmail}}.</p>
</body>
</html>`))
