package vault

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"gigledger/internal/model"
	"gigledger/pkg/circuitbreaker"
	"gigledger/pkg/metrics"
)

// Client talks to an external yield-vault service over HTTP. Calls run
// behind a circuit breaker: the ledger holds its mutation lock across vault
// calls, so a flapping vault must fail fast rather than queue up.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second, // a stalled vault fails the ledger op, it must not hang it
		},
		breaker: circuitbreaker.New(circuitbreaker.DefaultConfig()),
	}
}

type moveRequest struct {
	Amount uint64        `json:"amount"`
	Asset  model.Address `json:"asset"`
	Owner  model.Address `json:"owner"`
}

func (c *Client) Deposit(ctx context.Context, amount uint64, asset, owner model.Address) error {
	return c.breaker.Execute(func() error {
		return c.move(ctx, "/deposit", moveRequest{Amount: amount, Asset: asset, Owner: owner})
	})
}

func (c *Client) Withdraw(ctx context.Context, amount uint64, asset, owner model.Address) error {
	return c.breaker.Execute(func() error {
		return c.move(ctx, "/withdraw", moveRequest{Amount: amount, Asset: asset, Owner: owner})
	})
}

func (c *Client) BalanceOf(ctx context.Context, owner model.Address) (uint64, error) {
	var balance uint64
	err := c.breaker.Execute(func() error {
		var innerErr error
		balance, innerErr = c.balanceOf(ctx, owner)
		return innerErr
	})
	return balance, err
}

func (c *Client) balanceOf(ctx context.Context, owner model.Address) (uint64, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/balance?owner="+string(owner), nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordVaultCall("balance", "error", time.Since(start))
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordVaultCall("balance", "error", time.Since(start))
		return 0, fmt.Errorf("vault service error: %d", resp.StatusCode)
	}

	var body struct {
		Balance uint64 `json:"balance"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, err
	}

	metrics.RecordVaultCall("balance", "ok", time.Since(start))
	return body.Balance, nil
}

func (c *Client) move(ctx context.Context, path string, payload moveRequest) error {
	start := time.Now()

	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordVaultCall(path, "error", time.Since(start))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordVaultCall(path, "error", time.Since(start))
		return fmt.Errorf("vault service error on %s: %d", path, resp.StatusCode)
	}

	metrics.RecordVaultCall(path, "ok", time.Since(start))
	return nil
}
