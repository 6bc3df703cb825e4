// internal/pkg/email/service.go

// Package email sends transactional mail over SMTP.
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sweetcrumbs/bakery-backend/internal/config"
	"github.com/sweetcrumbs/bakery-backend/internal/domain/order"
)

// Service handles transactional email. When SMTP is unconfigured, sends are
// skipped with a log line so local development works without a mail server.
type Service struct {
	config *config.Config
	logger *logrus.Logger
}

// NewService creates a new email service
func NewService(cfg *config.Config, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{config: cfg, logger: logger}
}

var orderConfirmationTmpl = template.Must(template.New("order_confirmation").Parse(`<html>
<body style="font-family: Georgia, serif; color: #4a3728;">
  <h2>Thank you for your order!</h2>
  <p>Your order <strong>{{.OrderNumber}}</strong> has been received.</p>
  <table cellpadding="6" style="border-collapse: collapse;">
    {{range .Items}}
    <tr>
      <td>{{.Name}}</td>
      <td>x{{.Quantity}}</td>
      <td align="right">₹{{.Total}}</td>
    </tr>
    {{end}}
    <tr><td colspan="2">Subtotal</td><td align="right">₹{{.Subtotal}}</td></tr>
    <tr><td colspan="2">Delivery</td><td align="right">₹{{.DeliveryFee}}</td></tr>
    <tr><td colspan="2">Tax</td><td align="right">₹{{.Tax}}</td></tr>
    {{if .CODSurcharge}}<tr><td colspan="2">COD charge</td><td align="right">₹{{.CODSurcharge}}</td></tr>{{end}}
    <tr><td colspan="2"><strong>Total</strong></td><td align="right"><strong>₹{{.Total}}</strong></td></tr>
  </table>
  <p>Delivering to: {{.ShippingAddress}}</p>
  <p>We'll let you know when your treats are on their way.</p>
  <p>From all of us at {{.FromName}}</p>
</body>
</html>`))

type confirmationItem struct {
	Name     string
	Quantity int
	Total    string
}

type confirmationData struct {
	OrderNumber     string
	Items           []confirmationItem
	Subtotal        string
	DeliveryFee     string
	Tax             string
	CODSurcharge    string
	Total           string
	ShippingAddress string
	FromName        string
}

// SendOrderConfirmation emails the customer an order summary. It satisfies
// the checkout notifier interface.
func (s *Service) SendOrderConfirmation(ctx context.Context, recipient string, o *order.Order) error {
	data := confirmationData{
		OrderNumber:     o.OrderNumber,
		Subtotal:        rupees(o.SubtotalAmount),
		DeliveryFee:     rupees(o.DeliveryFee),
		Tax:             rupees(o.TaxAmount),
		Total:           rupees(o.TotalAmount),
		ShippingAddress: o.ShippingAddress,
		FromName:        s.config.External.Email.FromName,
	}
	if o.CODSurcharge > 0 {
		data.CODSurcharge = rupees(o.CODSurcharge)
	}
	for _, item := range o.Items {
		data.Items = append(data.Items, confirmationItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Total:    rupees(item.TotalPrice),
		})
	}

	var body bytes.Buffer
	if err := orderConfirmationTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render order confirmation: %w", err)
	}

	subject := fmt.Sprintf("Order Confirmation - %s", o.OrderNumber)
	return s.send(ctx, recipient, subject, body.String())
}

func (s *Service) send(ctx context.Context, recipient, subject, htmlBody string) error {
	emailCfg := s.config.External.Email
	if emailCfg.SMTPHost == "" {
		s.logger.WithFields(logrus.Fields{
			"to":      recipient,
			"subject": subject,
		}).Info("SMTP not configured, skipping email")
		return nil
	}

	from := emailCfg.FromEmail
	if emailCfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", emailCfg.FromName, emailCfg.FromEmail)
	}

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", recipient))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	var auth smtp.Auth
	if emailCfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", emailCfg.SMTPUsername, emailCfg.SMTPPassword, emailCfg.SMTPHost)
	}

	addr := fmt.Sprintf("%s:%d", emailCfg.SMTPHost, emailCfg.SMTPPort)

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, emailCfg.FromEmail, []string{recipient}, []byte(msg.String()))
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// rupees renders a paise amount as a rupee string, e.g. 123900 -> "1239.00".
func rupees(paise int64) string {
	return fmt.Sprintf("%d.%02d", paise/100, paise%100)
}
