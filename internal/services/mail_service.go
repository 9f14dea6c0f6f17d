package services

import (
	"context"
	"fmt"
	"html"

	"gopkg.in/gomail.v2"

	"github.com/example/shopops/internal/models"
)

// MailSender delivers one message. *gomail.Dialer satisfies it.
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// MailService emails customers when their order is confirmed, cancelled or delivered.
type MailService struct {
	from   string
	sender MailSender
}

// NewMailService builds a MailService on an SMTP dialer.
func NewMailService(host string, port int, username, password, from string) *MailService {
	return &MailService{
		from:   from,
		sender: gomail.NewDialer(host, port, username, password),
	}
}

// NewMailServiceWithSender swaps the SMTP transport.
func NewMailServiceWithSender(from string, sender MailSender) *MailService {
	return &MailService{from: from, sender: sender}
}

func (s *MailService) NotifyOrderEvent(ctx context.Context, event OrderEvent) error {
	o := event.Order
	if o == nil || o.CustomerEmail == "" {
		return nil
	}

	var subject, body string
	switch {
	case event.Action == ActionConfirmed:
		subject = fmt.Sprintf("Đơn hàng %s đã được xác nhận", o.OrderNumber)
		body = fmt.Sprintf("Đơn hàng <b>%s</b> trị giá %s đã được xác nhận. Trạng thái thanh toán: %s.",
			html.EscapeString(o.OrderNumber), FormatPrice(o.TotalAmount, ""), o.PaymentStatus.Label())
	case event.Action == ActionCancelled:
		subject = fmt.Sprintf("Đơn hàng %s đã bị hủy", o.OrderNumber)
		body = fmt.Sprintf("Đơn hàng <b>%s</b> đã bị hủy. Vui lòng liên hệ cửa hàng nếu cần hỗ trợ.",
			html.EscapeString(o.OrderNumber))
	case event.Action == ActionDelivery && event.To == string(models.DeliveryDelivered):
		subject = fmt.Sprintf("Đơn hàng %s đã giao thành công", o.OrderNumber)
		body = fmt.Sprintf("Đơn hàng <b>%s</b> đã được giao tới %s. Cảm ơn bạn đã mua sắm!",
			html.EscapeString(o.OrderNumber), html.EscapeString(o.ShippingAddress))
	default:
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", o.CustomerEmail)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", fmt.Sprintf("<p>Xin chào %s,</p><p>%s</p>", html.EscapeString(o.CustomerName), body))

	if err := s.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", o.CustomerEmail, err)
	}
	return nil
}
