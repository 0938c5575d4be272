package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"gold-lifestyle-backend/internal/logger"
	"gold-lifestyle-backend/internal/models"
	"gold-lifestyle-backend/internal/money"
)

const senderName = "Gold lifestyle"

var orderTemplate = template.Must(template.New("order").Funcs(template.FuncMap{
	"price":    money.Format,
	"subtotal": func(item models.LineItem) string { return money.Format(item.SubtotalCents()) },
}).Parse(`<h2>New order: {{.OrderID}}</h2>
<p>Status: {{.Status}}</p>
<p>Total: ${{price .TotalCents}}</p>
<p>Tx Ref: {{.PaymentReference}}</p>
<h3>Customer</h3>
<p>{{.Shipping.FullName}} · {{.Shipping.Email}} · {{.Shipping.Phone}}</p>
<p>{{.Shipping.Address}}, {{.Shipping.City}}, {{.Shipping.State}}, {{.Shipping.Country}} {{.Shipping.PostalCode}}</p>
<h3>Items</h3>
<ul>
{{- range .Items}}
<li>{{.Name}}{{if .Size}} · {{.Size}}{{end}}{{if .ColorName}} · {{.ColorName}}{{end}} × {{.Quantity}} = ${{subtotal .}}</li>
{{- end}}
</ul>
`))

type sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridNotifier mails the store owner when an order is paid.
type SendGridNotifier struct {
	client sender
	from   string
	to     string
	logger *logger.Logger
}

func NewSendGridNotifier(apiKey, from, to string, log *logger.Logger) *SendGridNotifier {
	return &SendGridNotifier{
		client: sendgrid.NewSendClient(apiKey),
		from:   from,
		to:     to,
		logger: log,
	}
}

func (n *SendGridNotifier) NotifyOrderCompleted(ctx context.Context, order models.OrderNotification) error {
	if n.from == "" {
		return fmt.Errorf("from address is empty")
	}
	if n.to == "" {
		return fmt.Errorf("to address is empty")
	}

	html, err := RenderOrderHTML(order)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("New order %s", order.OrderID)

	message := mail.NewSingleEmail(
		mail.NewEmail(senderName, n.from),
		subject,
		mail.NewEmail("", n.to),
		RenderOrderText(order),
		html,
	)

	response, err := n.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d, body=%s", response.StatusCode, response.Body)
	}

	n.logger.Info("order mail sent: status=%d order=%s", response.StatusCode, order.OrderID)
	return nil
}

// RenderOrderHTML renders the owner email. Customer-supplied fields are
// escaped.
func RenderOrderHTML(order models.OrderNotification) (string, error) {
	var buf bytes.Buffer
	if err := orderTemplate.Execute(&buf, order); err != nil {
		return "", fmt.Errorf("failed to render order email: %w", err)
	}
	return buf.String(), nil
}

func RenderOrderText(order models.OrderNotification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New order: %s\n", order.OrderID)
	fmt.Fprintf(&b, "Status: %s\n", order.Status)
	fmt.Fprintf(&b, "Total: $%s\n", money.Format(order.TotalCents))
	fmt.Fprintf(&b, "Tx Ref: %s\n\n", order.PaymentReference)
	s := order.Shipping
	fmt.Fprintf(&b, "%s, %s, %s\n", s.FullName, s.Email, s.Phone)
	fmt.Fprintf(&b, "%s, %s, %s, %s %s\n\n", s.Address, s.City, s.State, s.Country, s.PostalCode)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "- %s x %d = $%s\n", item.Name, item.Quantity, money.Format(item.SubtotalCents()))
	}
	return b.String()
}
