package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const defaultAPIBase = "https://api.telegram.org"

// Notifier posts messages to one Telegram chat.
type Notifier struct {
	token      string
	chatID     string
	apiBase    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewNotifier returns nil when credentials are missing, so callers can treat
// notifications as switched off.
func NewNotifier(token, chatID string, log zerolog.Logger) *Notifier {
	if token == "" || chatID == "" {
		log.Info().Msg("Telegram credentials missing, operator notifications disabled")
		return nil
	}
	return &Notifier{
		token:      token,
		chatID:     chatID,
		apiBase:    defaultAPIBase,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log.With().Str("component", "telegram").Logger(),
	}
}

// Notify sends a message to the configured Telegram chat.
// A nil Notifier drops the message.
func (n *Notifier) Notify(ctx context.Context, text string) error {
	if n == nil {
		return nil
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.token)

	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    text,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	n.log.Debug().Str("text", text).Msg("Telegram notify")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API error: status %s", resp.Status)
	}
	return nil
}
