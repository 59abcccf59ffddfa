// Package blockchain abstracts the chain RPC endpoint used for transaction
// receipts, EDU minting and balance queries.
package blockchain

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrChainUnreachable marks network failures and RPC-level errors. Transient:
// the affected transaction stays pending and is retried on the next pass.
var ErrChainUnreachable = errors.New("chain unreachable")

// Receipt is the confirmed execution outcome of an on-chain transaction.
// Status is nil when the node reports no execution outcome, in which case the
// confirmation count is the fallback signal.
type Receipt struct {
	TxHash        string
	BlockNumber   uint64
	Status        *bool
	Confirmations uint64
}

// MintResult reports the on-chain mint transaction
type MintResult struct {
	TransactionHash string `json:"transactionHash"`
	BlockNumber     uint64 `json:"blockNumber"`
}

// Client is the chain access interface injected into the reconciler and
// crediting engine. A nil receipt with a nil error means the transaction is
// not yet mined.
type Client interface {
	GetTransactionReceipt(ctx context.Context, txHash string) (*Receipt, error)
	Mint(ctx context.Context, toAddress string, amount float64) (*MintResult, error)
	DepositPoints(ctx context.Context, toAddress string, amount float64) (string, error)
	GetBalance(ctx context.Context, address string) (float64, error)
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int    `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type receiptResponse struct {
	Result *struct {
		TransactionHash string `json:"transactionHash"`
		BlockNumber     string `json:"blockNumber"`
		Status          string `json:"status"`
		Confirmations   string `json:"confirmations"`
	} `json:"result"`
	Error *rpcError `json:"error"`
}

type balanceResponse struct {
	Result string    `json:"result"`
	Error  *rpcError `json:"error"`
}

type mintResponse struct {
	Success bool       `json:"success"`
	Data    MintResult `json:"data"`
	Message string     `json:"message"`
}

// RPCClient talks JSON-RPC to the chain node for reads and to the minter
// service for EDU mints.
type RPCClient struct {
	rpcURL    string
	minterURL string
	http      *resty.Client
}

// NewRPCClient builds a chain client with a bounded per-request timeout
func NewRPCClient(rpcURL, minterURL string, timeout time.Duration) *RPCClient {
	return &RPCClient{
		rpcURL:    rpcURL,
		minterURL: minterURL,
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
	}
}

// GetTransactionReceipt returns nil, nil when the transaction is not yet mined
func (c *RPCClient) GetTransactionReceipt(ctx context.Context, txHash string) (*Receipt, error) {
	var parsed receiptResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(rpcRequest{JSONRPC: "2.0", Method: "eth_getTransactionReceipt", Params: []any{txHash}, ID: 1}).
		SetResult(&parsed).
		Post(c.rpcURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChainUnreachable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d", ErrChainUnreachable, resp.StatusCode())
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("%w: rpc error %d: %s", ErrChainUnreachable, parsed.Error.Code, parsed.Error.Message)
	}
	if parsed.Result == nil {
		return nil, nil // not mined yet
	}

	receipt := &Receipt{TxHash: parsed.Result.TransactionHash}
	if n, err := parseHexOrDec(parsed.Result.BlockNumber); err == nil {
		receipt.BlockNumber = n
	}
	if parsed.Result.Status != "" {
		ok := parsed.Result.Status == "0x1" || parsed.Result.Status == "1"
		receipt.Status = &ok
	}
	if n, err := parseHexOrDec(parsed.Result.Confirmations); err == nil {
		receipt.Confirmations = n
	}
	return receipt, nil
}

// Mint requests the minter service to mint EDU to an address
func (c *RPCClient) Mint(ctx context.Context, toAddress string, amount float64) (*MintResult, error) {
	var parsed mintResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"to": toAddress, "amount": amount}).
		SetResult(&parsed).
		Post(c.minterURL + "/mint")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChainUnreachable, err)
	}
	if resp.IsError() || !parsed.Success {
		return nil, fmt.Errorf("%w: mint rejected: status %d %s", ErrChainUnreachable, resp.StatusCode(), parsed.Message)
	}
	return &parsed.Data, nil
}

// DepositPoints asks the minter service to submit a PZO points deposit on
// chain. Returns the transaction hash; confirmation is the reconciler's job.
func (c *RPCClient) DepositPoints(ctx context.Context, toAddress string, amount float64) (string, error) {
	var parsed mintResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"to": toAddress, "amount": amount}).
		SetResult(&parsed).
		Post(c.minterURL + "/deposit")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrChainUnreachable, err)
	}
	if resp.IsError() || !parsed.Success {
		return "", fmt.Errorf("%w: deposit rejected: status %d %s", ErrChainUnreachable, resp.StatusCode(), parsed.Message)
	}
	return parsed.Data.TransactionHash, nil
}

// GetBalance returns the EDU balance of an address
func (c *RPCClient) GetBalance(ctx context.Context, address string) (float64, error) {
	var parsed balanceResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(rpcRequest{JSONRPC: "2.0", Method: "eth_getBalance", Params: []any{address, "latest"}, ID: 1}).
		SetResult(&parsed).
		Post(c.rpcURL)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrChainUnreachable, err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("%w: status %d", ErrChainUnreachable, resp.StatusCode())
	}
	if parsed.Error != nil {
		return 0, fmt.Errorf("%w: rpc error %d: %s", ErrChainUnreachable, parsed.Error.Code, parsed.Error.Message)
	}
	wei, err := parseHexOrDec(parsed.Result)
	if err != nil {
		return 0, fmt.Errorf("%w: bad balance %q", ErrChainUnreachable, parsed.Result)
	}
	return float64(wei) / 1e18, nil
}

// parseHexOrDec accepts 0x-prefixed hex (standard JSON-RPC) or plain decimal
func parseHexOrDec(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strconv.ParseUint(s[2:], 16, 64)
	}
	return strconv.ParseUint(s, 10, 64)
}
