// Package chain provides the Solana JSON-RPC client used for transaction
// preparation and submission.
package chain

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
)

// ErrAccountNotFound is returned when the queried account does not exist.
var ErrAccountNotFound = fmt.Errorf("account not found")

// Client provides Solana RPC client functionality.
type Client struct {
	rpcURL     string
	commitment string
	httpClient *http.Client
}

// Config holds client configuration.
type Config struct {
	RPCURL     string
	Commitment string // processed, confirmed or finalized
	Timeout    time.Duration
}

// NewClient creates a new Solana RPC client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("RPC URL required")
	}

	commitment := cfg.Commitment
	if commitment == "" {
		commitment = "confirmed"
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		rpcURL:     cfg.RPCURL,
		commitment: commitment,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// =============================================================================
// Core RPC Methods
// =============================================================================

// Call makes an RPC call to the Solana node.
func (c *Client) Call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	req := RPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var rpcResp RPCResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}

	return rpcResp.Result, nil
}

// GetLatestBlockhash returns the most recent blockhash at the configured
// commitment level.
func (c *Client) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	params := []interface{}{map[string]string{"commitment": c.commitment}}
	result, err := c.Call(ctx, "getLatestBlockhash", params)
	if err != nil {
		return solana.Hash{}, err
	}

	var resp struct {
		Value struct {
			Blockhash            string `json:"blockhash"`
			LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
		} `json:"value"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return solana.Hash{}, fmt.Errorf("unmarshal blockhash: %w", err)
	}

	hash, err := solana.HashFromBase58(resp.Value.Blockhash)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("parse blockhash: %w", err)
	}
	return hash, nil
}

// GetAccountInfo returns the raw data of an account, or ErrAccountNotFound
// when the account does not exist.
func (c *Client) GetAccountInfo(ctx context.Context, address solana.PublicKey) ([]byte, error) {
	params := []interface{}{
		address.String(),
		map[string]string{"encoding": "base64", "commitment": c.commitment},
	}
	result, err := c.Call(ctx, "getAccountInfo", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Value *struct {
			Data []string `json:"data"`
		} `json:"value"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal account info: %w", err)
	}
	if resp.Value == nil {
		return nil, ErrAccountNotFound
	}
	if len(resp.Value.Data) == 0 {
		return nil, fmt.Errorf("account data missing")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Value.Data[0])
	if err != nil {
		return nil, fmt.Errorf("decode account data: %w", err)
	}
	return data, nil
}

// SendTransaction submits a signed, base64-encoded transaction and returns
// the confirmation signature.
func (c *Client) SendTransaction(ctx context.Context, serializedTx string) (string, error) {
	params := []interface{}{
		serializedTx,
		map[string]string{"encoding": "base64", "preflightCommitment": c.commitment},
	}
	result, err := c.Call(ctx, "sendTransaction", params)
	if err != nil {
		return "", err
	}

	var signature string
	if err := json.Unmarshal(result, &signature); err != nil {
		return "", fmt.Errorf("unmarshal signature: %w", err)
	}
	return signature, nil
}

// GetHealth reports whether the RPC node considers itself healthy.
func (c *Client) GetHealth(ctx context.Context) error {
	result, err := c.Call(ctx, "getHealth", nil)
	if err != nil {
		return err
	}

	var status string
	if err := json.Unmarshal(result, &status); err != nil {
		return fmt.Errorf("unmarshal health: %w", err)
	}
	if status != "ok" {
		return fmt.Errorf("node unhealthy: %s", status)
	}
	return nil
}
