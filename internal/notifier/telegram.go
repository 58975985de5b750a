package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"internwatch/internal/model"
)

// Ensure TelegramNotifier implements model.Notifier.
var _ model.Notifier = (*TelegramNotifier)(nil)

const telegramAPIBase = "https://api.telegram.org"

// TelegramNotifier sends the digest via the Telegram Bot API sendMessage
// call. Link previews are suppressed so a multi-posting digest stays compact.
type TelegramNotifier struct {
	apiBase    string
	token      string
	chatID     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewTelegramNotifier reads the bot token and chat id from the environment
// variables named tokenEnv and chatIDEnv. A missing credential is a startup
// error; nothing should be fetched when the run cannot notify.
func NewTelegramNotifier(tokenEnv, chatIDEnv string, httpClient *http.Client, logger *slog.Logger) (*TelegramNotifier, error) {
	token := os.Getenv(tokenEnv)
	if token == "" {
		return nil, fmt.Errorf("environment variable %s is not set", tokenEnv)
	}
	chatID := os.Getenv(chatIDEnv)
	if chatID == "" {
		return nil, fmt.Errorf("environment variable %s is not set", chatIDEnv)
	}
	return &TelegramNotifier{
		apiBase:    telegramAPIBase,
		token:      token,
		chatID:     chatID,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// Notify posts the message. A non-200 response is an error and must
// propagate: the caller skips the state commit so the unsent postings stay
// new for the next run.
func (n *TelegramNotifier) Notify(ctx context.Context, text string) error {
	payload := sendMessageRequest{
		ChatID:                n.chatID,
		Text:                  text,
		DisableWebPagePreview: true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post to telegram: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &model.HTTPError{StatusCode: resp.StatusCode, URL: n.apiBase + "/sendMessage"}
	}

	n.logger.Info("telegram message sent", "chars", len(text))
	return nil
}
