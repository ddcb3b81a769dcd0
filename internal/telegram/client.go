package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	tgbot "github.com/go-telegram/bot"
)

const defaultAPIURL = "https://api.telegram.org"

// fetchGrace is added on top of the long-poll timeout so the HTTP deadline
// fires only after the server side has had its chance to respond.
const fetchGrace = 5 * time.Second

// Client talks to the Telegram Bot API. Methods with ready-made library
// support delegate to go-telegram/bot; getUpdates is issued directly because
// the library keeps its polling loop and offset bookkeeping private and the
// monitor needs explicit control of both.
type Client struct {
	token  string
	apiURL string
	api    *tgbot.Bot
	http   *http.Client
	logger *slog.Logger
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithAPIURL overrides the Bot API base URL. Used by tests to point the
// client at a local server.
func WithAPIURL(apiURL string) ClientOption {
	return func(c *Client) { c.apiURL = apiURL }
}

// NewClient creates a Bot API client for the given token. No network request
// is made at construction; use GetMe to validate the token.
func NewClient(token string, logger *slog.Logger, opts ...ClientOption) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		token:  token,
		apiURL: defaultAPIURL,
		http:   &http.Client{},
		logger: logger.With("component", "telegram_client"),
	}
	for _, opt := range opts {
		opt(c)
	}

	api, err := tgbot.New(token, tgbot.WithSkipGetMe(), tgbot.WithServerURL(c.apiURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot api: %w", err)
	}
	c.api = api
	return c, nil
}

// GetMe validates the bot token and returns the bot's own identity.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	me, err := c.api.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("getMe request failed: %w", err)
	}
	return &User{
		ID:        me.ID,
		IsBot:     me.IsBot,
		FirstName: me.FirstName,
		LastName:  me.LastName,
		Username:  me.Username,
	}, nil
}

// SendMessage sends a text message to a chat, optionally into a forum topic
// when threadID is non-zero.
func (c *Client) SendMessage(ctx context.Context, chatID int64, threadID int64, text string) (*Message, error) {
	params := &tgbot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if threadID != 0 {
		params.MessageThreadID = int(threadID)
	}

	sent, err := c.api.SendMessage(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("sendMessage to chat %d failed: %w", chatID, err)
	}

	msg := &Message{
		ID:       int64(sent.ID),
		Date:     int64(sent.Date),
		Text:     sent.Text,
		ThreadID: int64(sent.MessageThreadID),
	}
	c.logger.DebugContext(ctx, "Sent message", "chat_id", chatID, "message_id", msg.ID)
	return msg, nil
}

// DeleteWebhook removes any configured webhook so getUpdates polling is
// accepted by the API. Telegram rejects polling while a webhook is active.
func (c *Client) DeleteWebhook(ctx context.Context, dropPending bool) error {
	ok, err := c.api.DeleteWebhook(ctx, &tgbot.DeleteWebhookParams{DropPendingUpdates: dropPending})
	if err != nil {
		return fmt.Errorf("deleteWebhook request failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("deleteWebhook was not confirmed by the api")
	}
	return nil
}

// getUpdatesResponse is the Bot API envelope for getUpdates.
type getUpdatesResponse struct {
	OK          bool     `json:"ok"`
	Result      []Update `json:"result"`
	Description string   `json:"description,omitempty"`
}

// FetchUpdates fetches updates with IDs >= offset using a long poll of
// timeoutSeconds. A nil slice with a nil error means the poll elapsed with
// no new updates.
func (c *Client) FetchUpdates(ctx context.Context, offset int64, timeoutSeconds int) ([]Update, error) {
	reqCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSeconds)*time.Second+fetchGrace)
	defer cancel()

	query := url.Values{}
	query.Set("offset", strconv.FormatInt(offset, 10))
	query.Set("timeout", strconv.Itoa(timeoutSeconds))
	endpoint := fmt.Sprintf("%s/bot%s/getUpdates?%s", c.apiURL, c.token, query.Encode())

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build getUpdates request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("getUpdates request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read getUpdates response: %w", err)
	}

	var envelope getUpdatesResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse getUpdates response: %w", err)
	}
	if !envelope.OK {
		return nil, fmt.Errorf("getUpdates rejected by api: %s", envelope.Description)
	}
	return envelope.Result, nil
}
