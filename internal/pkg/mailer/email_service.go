package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

// OrderNotice is what the business receives when a chat order completes.
type OrderNotice struct {
	BusinessName string
	OrderID      string
	CustomerName string
	Phone        string
	Product      string
	Quantity     int
	Channel      string
}

type IEmailService interface {
	SendOrderNotification(toEmail string, notice OrderNotice) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

// NewEmailService sends from the SMTP username, shown as senderName.
func NewEmailService(host string, port int, username, password, senderName string) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: username,
		senderName:  senderName,
	}
}

var orderTemplate = template.Must(template.New("order").Parse(`
	<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
		<h2>Nuevo pedido en {{.BusinessName}}</h2>
		<table cellpadding="4">
			<tr><td><b>Cliente</b></td><td>{{.CustomerName}}</td></tr>
			<tr><td><b>Teléfono</b></td><td>{{.Phone}}</td></tr>
			<tr><td><b>Producto</b></td><td>{{.Product}}</td></tr>
			<tr><td><b>Cantidad</b></td><td>{{.Quantity}}</td></tr>
			<tr><td><b>Canal</b></td><td>{{.Channel}}</td></tr>
		</table>
		<p style="color: #888;">Pedido {{.OrderID}}</p>
	</div>
`))

// RenderOrderNotice builds the HTML body. Customer input is escaped.
func RenderOrderNotice(notice OrderNotice) (string, error) {
	var buf bytes.Buffer
	if err := orderTemplate.Execute(&buf, notice); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *emailService) SendOrderNotification(toEmail string, notice OrderNotice) error {
	body, err := RenderOrderNotice(notice)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.senderEmail, s.senderName))
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Nuevo pedido: %d x %s", notice.Quantity, notice.Product))
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send order %s to %s: %v\n", notice.OrderID, toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Order %s sent to %s\n", notice.OrderID, toEmail)
	return nil
}
