package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/example/shopops/internal/logger"
)

const telegramAPI = "https://api.telegram.org"

// TelegramService posts order events to the admin Telegram chat.
type TelegramService struct {
	botToken    string
	adminChatID string
	apiBase     string
	client      *http.Client
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
		apiBase:     telegramAPI,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends an HTML message to chatID.
func (s *TelegramService) SendMessage(ctx context.Context, chatID, text string) error {
	if s.botToken == "" {
		logger.App().Debug("[Telegram] Bot token not configured")
		return nil
	}

	body, err := json.Marshal(telegramMessage{ChatID: chatID, Text: text, ParseMode: "HTML"})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.apiBase, s.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}
	return nil
}

// NotifyOrderEvent sends the event to the admin chat.
func (s *TelegramService) NotifyOrderEvent(ctx context.Context, event OrderEvent) error {
	if s.adminChatID == "" {
		return nil
	}
	return s.SendMessage(ctx, s.adminChatID, formatTelegramEvent(event))
}

func formatTelegramEvent(event OrderEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n", eventTitle(event.Action))

	if o := event.Order; o != nil {
		fmt.Fprintf(&b, "<b>Mã đơn:</b> %s\n", html.EscapeString(o.OrderNumber))
		fmt.Fprintf(&b, "<b>Khách hàng:</b> %s\n", html.EscapeString(o.CustomerName))
		if o.CustomerPhone != "" {
			fmt.Fprintf(&b, "<b>Điện thoại:</b> %s\n", html.EscapeString(o.CustomerPhone))
		}
		for i, item := range o.Items {
			fmt.Fprintf(&b, "%d. %s x%d = %s\n", i+1, html.EscapeString(item.ProductName), item.Quantity, FormatPrice(item.LineTotal, ""))
		}
		fmt.Fprintf(&b, "<b>Tổng tiền:</b> %s\n", FormatPrice(o.TotalAmount, ""))
		fmt.Fprintf(&b, "<b>Thanh toán:</b> %s (%s)\n", o.PaymentMethod.Label(), o.PaymentStatus.Label())
		fmt.Fprintf(&b, "<b>Trạng thái:</b> %s\n", o.Status.Label())
		if o.ShipperID != nil {
			fmt.Fprintf(&b, "<b>Giao hàng:</b> %s\n", o.DeliveryStatus.Label())
		}
	}
	if event.From != "" || event.To != "" {
		fmt.Fprintf(&b, "<i>%s → %s</i>\n", html.EscapeString(event.From), html.EscapeString(event.To))
	}
	b.WriteString("━━━━━━━━━━━━━━━━━━")
	return strings.TrimSpace(b.String())
}
