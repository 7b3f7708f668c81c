// Package client is a small HTTP client for the receipts API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Skotchmaster/receipts/internal/transport"
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("receipts api: status %d: %s", e.Status, e.Message)
}

// WithToken returns a copy of c that sends token as a bearer credential.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) SignUp(ctx context.Context, in transport.SignUpRequest) (*transport.UserResponse, error) {
	var out transport.UserResponse
	if err := c.doJSON(ctx, http.MethodPost, "/users/signup", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SignIn(ctx context.Context, username, password string) (*transport.TokenResponse, error) {
	var out transport.TokenResponse
	in := transport.SignInRequest{Username: username, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/users/signin", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateReceipt(ctx context.Context, in transport.CreateReceiptRequest) (*transport.ReceiptResponse, error) {
	var out transport.ReceiptResponse
	if err := c.doJSON(ctx, http.MethodPost, "/receipts", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetReceipt(ctx context.Context, id string) (*transport.ReceiptResponse, error) {
	var out transport.ReceiptResponse
	if err := c.doJSON(ctx, http.MethodGet, "/receipts/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PublicSlip fetches the plain-text slip for a short code. No token is sent.
func (c *Client) PublicSlip(ctx context.Context, code string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/public/"+code, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp.StatusCode, body)
	}
	return string(body), nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		return statusError(resp.StatusCode, b)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func statusError(status int, body []byte) *StatusError {
	var msg struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &msg) == nil && msg.Message != "" {
		return &StatusError{Status: status, Message: msg.Message}
	}
	return &StatusError{Status: status, Message: strings.TrimSpace(string(body))}
}
