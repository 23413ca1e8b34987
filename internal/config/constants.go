package config

import "time"

// Environment variables.
const (
	// DirEnv overrides the config directory.
	DirEnv = "GOVTOKEN_CONFIG_DIR"
	// RPCEnv overrides rpc_url.
	RPCEnv = "GOVTOKEN_RPC_URL"
)

// Default token parameters used by `deploy` when flags are omitted.
// They match the Mobit governance token: 500M cap, 18 decimals.
const (
	DefaultTokenName     = "Mobit Token"
	DefaultTokenSymbol   = "MTK"
	DefaultTokenDecimals = uint8(18)
	DefaultTokenCap      = "500000000"
)

// Timeouts for remote reads.
const (
	RPCCallTimeout = 15 * time.Second
	PingTimeout    = 5 * time.Second
)
