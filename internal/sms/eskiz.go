// Package sms delivers OTP codes through an Eskiz-style SMS gateway: a
// form-POST login yields a short-lived bearer token, then messages go out
// through the send endpoint.
package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

// Config holds the gateway credentials and sender id.
type Config struct {
	BaseURL  string
	Email    string
	Password string
	From     string
}

// Client talks to the SMS gateway. Safe for concurrent use.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a gateway client.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

type loginResponse struct {
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

// Send delivers one message. The send is retried with exponential backoff on
// transient failures; the caller decides how much it cares about the error.
func (c *Client) Send(ctx context.Context, phone, message string) error {
	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		token, err := c.login(ctx)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("gateway login: %w", err))
		}
		if err := c.send(ctx, token, phone, message); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

func (c *Client) login(ctx context.Context) (string, error) {
	form := url.Values{
		"email":    {c.cfg.Email},
		"password": {c.cfg.Password},
	}
	body, err := c.postForm(ctx, c.cfg.BaseURL+"/auth/login", form, "")
	if err != nil {
		return "", err
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if resp.Data.Token == "" {
		return "", fmt.Errorf("login response carried no token")
	}
	return resp.Data.Token, nil
}

func (c *Client) send(ctx context.Context, token, phone, message string) error {
	form := url.Values{
		"mobile_phone": {phone},
		"message":      {message},
		"from":         {c.cfg.From},
	}
	_, err := c.postForm(ctx, c.cfg.BaseURL+"/message/sms/send", form, token)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	return nil
}

func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values, bearer string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway returned %d", resp.StatusCode)
	}
	return body, nil
}
