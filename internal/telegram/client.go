package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vytor/notebot/internal/logger"
)

const DefaultAPIURL = "https://api.telegram.org"

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	log        *logger.Logger
}

type Option func(*Client)

// WithBaseURL points the client at another Bot API server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

func New(token string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    DefaultAPIURL,
		token:      token,
		log:        logger.Default().WithPrefix("telegram"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
	ErrorCode   int             `json:"error_code"`
}

// APIError is a Bot API call the server answered with ok=false.
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s failed: %d %s", e.Method, e.Code, e.Description)
}

type replyParameters struct {
	MessageID int64 `json:"message_id"`
}

type sendMessageRequest struct {
	ChatID          int64            `json:"chat_id"`
	Text            string           `json:"text"`
	ReplyParameters *replyParameters `json:"reply_parameters,omitempty"`
}

type setReactionRequest struct {
	ChatID    int64          `json:"chat_id"`
	MessageID int64          `json:"message_id"`
	Reaction  []ReactionType `json:"reaction"`
}

func (c *Client) SendText(ctx context.Context, chatID int64, text string) (int64, error) {
	return c.sendMessage(ctx, sendMessageRequest{ChatID: chatID, Text: text})
}

func (c *Client) ReplyText(ctx context.Context, chatID, replyTo int64, text string) (int64, error) {
	req := sendMessageRequest{ChatID: chatID, Text: text}
	if replyTo != 0 {
		req.ReplyParameters = &replyParameters{MessageID: replyTo}
	}
	return c.sendMessage(ctx, req)
}

func (c *Client) sendMessage(ctx context.Context, req sendMessageRequest) (int64, error) {
	var msg Message
	if err := c.call(ctx, "sendMessage", req, &msg); err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

func (c *Client) SetReaction(ctx context.Context, chatID, messageID int64, emoji string) error {
	return c.call(ctx, "setMessageReaction", setReactionRequest{
		ChatID:    chatID,
		MessageID: messageID,
		Reaction:  []ReactionType{{Type: "emoji", Emoji: emoji}},
	}, nil)
}

func (c *Client) call(ctx context.Context, method string, payload any, out any) error {
	log := logger.FromContext(ctx).WithPrefix("telegram").WithField("method", method)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", method, err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		log.Error("failed to create request for %s", method)
		return fmt.Errorf("create %s request: invalid base url", method)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The token is part of the URL, so drop it from the error.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		log.Error("request failed after %v: %v", time.Since(start), err)
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	log.Debug("response received in %v, status=%d", time.Since(start), resp.StatusCode)

	var apiResp apiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&apiResp); err != nil {
		log.Error("failed to decode response: status=%d: %v", resp.StatusCode, err)
		return fmt.Errorf("decode %s response (status %d): %w", method, resp.StatusCode, err)
	}
	if !apiResp.OK {
		log.Warn("api error: code=%d, description=%s", apiResp.ErrorCode, apiResp.Description)
		return &APIError{Method: method, Code: apiResp.ErrorCode, Description: apiResp.Description}
	}
	if out != nil {
		if err := json.Unmarshal(apiResp.Result, out); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}
