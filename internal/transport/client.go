package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/sercheck/ser/internal/nsimport"
)

type Client struct {
	socketPath string
	http       *http.Client
}

func NewClient(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
					return net.Dial("unix", socketPath)
				},
			},
		},
	}
}

// Check submits one .ser source program to a running daemon.
func (c *Client) Check(ctx context.Context, source string) (*checkResponse, error) {
	return c.check(ctx, checkRequest{Source: source})
}

// CheckSystem submits an already-decoded network-system document.
func (c *Client) CheckSystem(ctx context.Context, sys *nsimport.Document) (*checkResponse, error) {
	return c.check(ctx, checkRequest{System: sys})
}

func (c *Client) check(ctx context.Context, req checkRequest) (*checkResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	resp, err := c.post(ctx, "/check", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, http.StatusOK); err != nil {
		return nil, err
	}
	var out checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

// CheckBatch submits many programs in one round trip; the daemon runs them
// concurrently and returns results in request order.
func (c *Client) CheckBatch(ctx context.Context, sources []string) ([]checkResponse, error) {
	reqs := make([]checkRequest, len(sources))
	for i, src := range sources {
		reqs[i] = checkRequest{Source: src}
	}
	body, err := json.Marshal(batchCheckRequest{Requests: reqs})
	if err != nil {
		return nil, err
	}
	resp, err := c.post(ctx, "/check/batch", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, http.StatusOK); err != nil {
		return nil, err
	}
	var out batchCheckResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out.Results, nil
}

func (c *Client) Health(ctx context.Context) (*healthResponse, error) {
	resp, err := c.get(ctx, "/health")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var out healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &out, fmt.Errorf("unhealthy: oracle=%s smt=%s", out.Oracle, out.SMT)
	}
	return &out, nil
}

// HTTP helpers

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://ser"+path, nil)
	if err != nil {
		return nil, err
	}
	return c.http.Do(req)
}

func (c *Client) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://ser"+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.http.Do(req)
}

func checkStatus(resp *http.Response, expected int) error {
	if resp.StatusCode == expected {
		return nil
	}
	body, _ := io.ReadAll(resp.Body)
	var errResp struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, errResp.Error)
	}
	return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
}
