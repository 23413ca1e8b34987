package config

// Config holds all govtoken configuration.
type Config struct {
	DefaultToken  string            `json:"default_token"`
	DefaultWallet string            `json:"default_wallet"`
	RPCURL        string            `json:"rpc_url"`      // one URL or a comma-separated list
	RPCStrategy   string            `json:"rpc_strategy"` // "fastest" | "failover"
	LogLevel      string            `json:"log_level"`    // "debug" | "info" | "warn" | "error"
	Remotes       map[string]string `json:"remotes"`      // alias -> deployed contract address

	// internal: config dir path used for Save()
	configDir string
}
