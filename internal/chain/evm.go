// Package chain reads governance state from a deployed token contract over
// JSON-RPC. It never sends transactions.
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrReverted is returned when eth_call reverts.
var ErrReverted = errors.New("execution reverted")

// RPCError is a JSON-RPC error object returned by the node.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// Unwrap maps revert messages onto ErrReverted.
func (e *RPCError) Unwrap() error {
	if strings.Contains(strings.ToLower(e.Message), "revert") {
		return ErrReverted
	}
	return nil
}

// EVMClient is a minimal JSON-RPC client for EVM chains.
type EVMClient struct {
	url    string
	client *http.Client
}

// NewEVMClient creates a new EVM JSON-RPC client pointed at url.
func NewEVMClient(url string, timeout time.Duration) *EVMClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &EVMClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// URL returns the endpoint.
func (c *EVMClient) URL() string { return c.url }

// ChainID returns the chain's ID.
func (c *EVMClient) ChainID(ctx context.Context) (*big.Int, error) {
	var hexStr string
	if err := c.callCtx(ctx, &hexStr, "eth_chainId"); err != nil {
		return nil, err
	}
	return parseQuantity(hexStr)
}

// BlockNumber returns the latest block number.
func (c *EVMClient) BlockNumber(ctx context.Context) (uint64, error) {
	var hexStr string
	if err := c.callCtx(ctx, &hexStr, "eth_blockNumber"); err != nil {
		return 0, err
	}
	n, err := parseQuantity(hexStr)
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// Ping tests the RPC endpoint and returns latency + block number.
func (c *EVMClient) Ping(ctx context.Context) (latency time.Duration, blockNum uint64, err error) {
	start := time.Now()
	blockNum, err = c.BlockNumber(ctx)
	return time.Since(start), blockNum, err
}

// CallContract executes a read-only call against the latest block.
func (c *EVMClient) CallContract(ctx context.Context, to common.Address, calldata []byte) ([]byte, error) {
	var out string
	err := c.callCtx(ctx, &out, "eth_call", map[string]string{
		"to":   to.Hex(),
		"data": hexutil.Encode(calldata),
	}, "latest")
	if err != nil {
		return nil, err
	}
	raw, err := hexutil.Decode(out)
	if err != nil {
		return nil, fmt.Errorf("decoding call result: %w", err)
	}
	return raw, nil
}

// CodeAt reports whether address holds contract code.
func (c *EVMClient) CodeAt(ctx context.Context, address common.Address) ([]byte, error) {
	var out string
	if err := c.callCtx(ctx, &out, "eth_getCode", address.Hex(), "latest"); err != nil {
		return nil, err
	}
	return hexutil.Decode(out)
}

// --- internal JSON-RPC plumbing ---

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int    `json:"id"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

func (c *EVMClient) callCtx(ctx context.Context, out any, method string, params ...any) error {
	if params == nil {
		params = []any{}
	}
	reqBody, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("RPC request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return fmt.Errorf("parsing result: %w", err)
	}
	return nil
}

func parseQuantity(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(strings.TrimPrefix(s, "0x"), 16)
	if !ok {
		return nil, fmt.Errorf("could not parse quantity %q", s)
	}
	return n, nil
}
