package line

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const defaultEndpoint = "https://api.line.me"

// MaxMessagesPerCall is the platform limit on messages per reply or push.
const MaxMessagesPerCall = 5

// Client sends messages through the LINE Messaging API.
type Client struct {
	AccessToken string
	Endpoint    string // defaults to the production API host
	HTTPClient  *http.Client
}

// NewClient creates a Messaging API client authenticated with the channel
// access token.
func NewClient(accessToken string) *Client {
	return &Client{
		AccessToken: accessToken,
		Endpoint:    defaultEndpoint,
		HTTPClient:  http.DefaultClient,
	}
}

// APIError is a non-2xx response from the Messaging API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("line API error (status %d): %s", e.StatusCode, e.Body)
}

type replyRequest struct {
	ReplyToken string        `json:"replyToken"`
	Messages   []SendMessage `json:"messages"`
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []SendMessage `json:"messages"`
}

// Reply sends up to five messages bound to a single-use reply token. The
// token comes from the event being answered and expires quickly; the
// platform rejects stale or reused tokens and that rejection surfaces as an
// *APIError.
func (c *Client) Reply(ctx context.Context, replyToken string, messages ...SendMessage) error {
	if err := checkMessages(messages); err != nil {
		return fmt.Errorf("reply: %w", err)
	}
	if err := c.Post(ctx, "/v2/bot/message/reply", replyRequest{ReplyToken: replyToken, Messages: messages}, nil); err != nil {
		return fmt.Errorf("reply: %w", err)
	}
	return nil
}

// Push sends up to five messages to a user, group, or room ID without a
// reply token.
func (c *Client) Push(ctx context.Context, to string, messages ...SendMessage) error {
	if err := checkMessages(messages); err != nil {
		return fmt.Errorf("push: %w", err)
	}
	if err := c.Post(ctx, "/v2/bot/message/push", pushRequest{To: to, Messages: messages}, nil); err != nil {
		return fmt.Errorf("push: %w", err)
	}
	return nil
}

func checkMessages(messages []SendMessage) error {
	if len(messages) == 0 {
		return errors.New("no messages")
	}
	if len(messages) > MaxMessagesPerCall {
		return fmt.Errorf("too many messages (%d, max %d)", len(messages), MaxMessagesPerCall)
	}
	return nil
}

// Post issues an authenticated POST to the Messaging API and decodes the
// response into out when out is non-nil. It is the escape hatch for API
// calls the typed methods do not cover.
func (c *Client) Post(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint()+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

func (c *Client) endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return defaultEndpoint
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}
