package services

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/example/shopops/internal/models"
)

type fakeSender struct {
	sent []*gomail.Message
	err  error
}

func (s *fakeSender) DialAndSend(m ...*gomail.Message) error {
	s.sent = append(s.sent, m...)
	return s.err
}

func sampleOrder() *models.Order {
	return &models.Order{
		OrderNumber:     "ORD-1001",
		CustomerName:    "Nguyen Van A",
		CustomerEmail:   "a@example.vn",
		ShippingAddress: "Ha Noi",
		TotalAmount:     1500000,
		Status:          models.StatusCompleted,
		PaymentStatus:   models.PaymentPaid,
		PaymentMethod:   models.PaymentBankTransfer,
	}
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "1.500.000 ₫", FormatPrice(1500000, ""))
	assert.Equal(t, "999 VND", FormatPrice(999, "VND"))
	assert.Equal(t, "-12.000 ₫", FormatPrice(-12000, ""))
}

func TestTelegramNotifyOrderEvent(t *testing.T) {
	var got telegramMessage
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tg := NewTelegramService("token123", "-100")
	tg.apiBase = srv.URL

	err := tg.NotifyOrderEvent(context.Background(), OrderEvent{
		Action: ActionConfirmed,
		Order:  sampleOrder(),
		From:   "pending",
		To:     "completed",
	})
	require.NoError(t, err)
	assert.Equal(t, "/bottoken123/sendMessage", path)
	assert.Equal(t, "-100", got.ChatID)
	assert.Equal(t, "HTML", got.ParseMode)
	assert.Contains(t, got.Text, "ĐƠN HÀNG ĐÃ XÁC NHẬN")
	assert.Contains(t, got.Text, "ORD-1001")
	assert.Contains(t, got.Text, "Chuyển khoản")
}

func TestTelegramEscapesOrderText(t *testing.T) {
	o := sampleOrder()
	o.CustomerName = "A <Shop> & Co"
	o.Items = []models.OrderItem{{ProductName: "Ao <b>thun</b>", Quantity: 1, LineTotal: 100000}}

	text := formatTelegramEvent(OrderEvent{Action: ActionCreated, Order: o})
	assert.Contains(t, text, "A &lt;Shop&gt; &amp; Co")
	assert.Contains(t, text, "Ao &lt;b&gt;thun&lt;/b&gt;")
	assert.NotContains(t, text, "<Shop>")
	assert.NotContains(t, text, "<b>thun</b>")
	assert.Contains(t, text, "<b>Khách hàng:</b>")
}

func TestTelegramErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	tg := NewTelegramService("token", "chat")
	tg.apiBase = srv.URL
	assert.Error(t, tg.NotifyOrderEvent(context.Background(), OrderEvent{Action: ActionCreated, Order: sampleOrder()}))

	unconfigured := NewTelegramService("", "chat")
	assert.NoError(t, unconfigured.NotifyOrderEvent(context.Background(), OrderEvent{Action: ActionCreated}))
}

func TestMailOnlyForCustomerFacingEvents(t *testing.T) {
	sender := &fakeSender{}
	mail := NewMailServiceWithSender("shop@example.vn", sender)
	ctx := context.Background()

	require.NoError(t, mail.NotifyOrderEvent(ctx, OrderEvent{Action: ActionEdited, Order: sampleOrder()}))
	assert.Empty(t, sender.sent)

	require.NoError(t, mail.NotifyOrderEvent(ctx, OrderEvent{Action: ActionConfirmed, Order: sampleOrder()}))
	require.NoError(t, mail.NotifyOrderEvent(ctx, OrderEvent{Action: ActionDelivery, Order: sampleOrder(), To: "delivered"}))
	require.NoError(t, mail.NotifyOrderEvent(ctx, OrderEvent{Action: ActionDelivery, Order: sampleOrder(), To: "picked_up"}))
	require.Len(t, sender.sent, 2)
	assert.Equal(t, []string{"a@example.vn"}, sender.sent[0].GetHeader("To"))
	subject := sender.sent[1].GetHeader("Subject")
	require.Len(t, subject, 1)
	decoded, err := new(mime.WordDecoder).DecodeHeader(subject[0])
	require.NoError(t, err)
	assert.Equal(t, "Đơn hàng ORD-1001 đã giao thành công", decoded)

	noEmail := sampleOrder()
	noEmail.CustomerEmail = ""
	require.NoError(t, mail.NotifyOrderEvent(ctx, OrderEvent{Action: ActionCancelled, Order: noEmail}))
	assert.Len(t, sender.sent, 2)
}

func TestMultiNotifierJoinsErrors(t *testing.T) {
	ok := &recordingNotifier{}
	failing := &recordingNotifier{err: errors.New("down")}
	multi := MultiNotifier{ok, nil, failing}

	err := multi.NotifyOrderEvent(context.Background(), OrderEvent{Action: ActionCreated})
	assert.ErrorContains(t, err, "down")
	assert.Equal(t, []string{ActionCreated}, ok.actions())
	assert.Equal(t, []string{ActionCreated}, failing.actions())
}
