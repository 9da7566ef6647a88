package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// network type constants
const (
	NetworkMainnet = "mainnet"
	NetworkTestnet = "testnet"
)

// Config contains all configuration parameters of the wallet.
type Config struct {
	// Network is mainnet or testnet. When unset it is read from
	// ~/.omniwallet/network.txt.
	Network string `envconfig:"NETWORK"`

	// RPC overrides endpoints per chain, e.g. "ether=https://...,solana-ws=wss://...".
	RPC Endpoints `envconfig:"RPC"`

	InfuraKey     string `envconfig:"INFURA_KEY"`
	GasStationURL string `envconfig:"GAS_STATION_URL"`
	PriceURL      string `envconfig:"PRICE_URL" default:"https://api.coingecko.com/api/v3/simple/price"`

	ConfirmTimeout   time.Duration `envconfig:"CONFIRM_TIMEOUT" default:"15s"`
	PollInterval     time.Duration `envconfig:"POLL_INTERVAL" default:"300ms"`
	EVMConfirmations uint64        `envconfig:"EVM_CONFIRMATIONS" default:"12"`
	HTTPTimeout      time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`

	// KeepChainID signs legacy EVM chains with EIP-155 outside of testnet.
	KeepChainID bool `envconfig:"KEEP_CHAIN_ID" default:"false"`
	// SolanaAssertOwner guards ATA creation with an owner assertion
	// instruction. Ignored on testnet where the program is not deployed.
	SolanaAssertOwner bool `envconfig:"SOLANA_ASSERT_OWNER" default:"true"`
	// SolanaSollet derives Solana keys at m/44'/501'/0'/0' instead of the
	// legacy seed prefix.
	SolanaSollet bool `envconfig:"SOLANA_SOLLET" default:"false"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"warn"`
	LogJSON  bool   `envconfig:"LOG_JSON" default:"false"`
	LogFile  string `envconfig:"LOG_FILE"`

	// Home is the wallet directory for the CLI vault and network file.
	Home string `envconfig:"HOME_DIR"`
}

// Endpoints maps chain identifiers to RPC URLs.
type Endpoints map[string]string

// Decode implements envconfig.Decoder. Entries are comma separated
// chain=url pairs; URLs keep their colons.
func (e *Endpoints) Decode(value string) error {
	out := Endpoints{}
	for _, pair := range strings.Split(value, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" || v == "" {
			return fmt.Errorf("invalid endpoint item %q: want chain=url", pair)
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	*e = out
	return nil
}

// Load reads the configuration from OMNI_* environment variables and fills
// in the network from the network file when not set.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("omni", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.Home == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.Home = filepath.Join(homeDir, ".omniwallet")
	}

	if cfg.Network == "" {
		cfg.Network = ReadNetwork(cfg.Home)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns a mainnet configuration with the envconfig defaults
// applied and no environment lookup.
func Default() Config {
	return Config{
		Network:           NetworkMainnet,
		PriceURL:          "https://api.coingecko.com/api/v3/simple/price",
		ConfirmTimeout:    15 * time.Second,
		PollInterval:      300 * time.Millisecond,
		EVMConfirmations:  12,
		HTTPTimeout:       30 * time.Second,
		SolanaAssertOwner: true,
		LogLevel:          "warn",
	}
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if c.Network != NetworkMainnet && c.Network != NetworkTestnet {
		return fmt.Errorf("invalid network %q: want %s or %s", c.Network, NetworkMainnet, NetworkTestnet)
	}
	if c.ConfirmTimeout <= 0 {
		return fmt.Errorf("confirm timeout must be positive")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	return nil
}

// IsTestnet reports whether the wallet targets test networks. Testnet is
// the dev mode of the chain-id and owner-assertion quirks.
func (c Config) IsTestnet() bool {
	return c.Network == NetworkTestnet
}

// NetworkPath returns the network file path under home.
func NetworkPath(home string) string {
	return filepath.Join(home, "network.txt")
}

// ReadNetwork returns the network stored under home, defaulting to mainnet.
func ReadNetwork(home string) string {
	data, err := os.ReadFile(NetworkPath(home))
	if err != nil {
		return NetworkMainnet
	}
	network := strings.TrimSpace(string(data))
	if network != NetworkMainnet && network != NetworkTestnet {
		return NetworkMainnet
	}
	return network
}

// WriteNetwork persists the network selection under home.
func WriteNetwork(home, network string) error {
	if network != NetworkMainnet && network != NetworkTestnet {
		return fmt.Errorf("invalid network %q", network)
	}
	if err := os.MkdirAll(home, 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(NetworkPath(home), []byte(network), 0600); err != nil {
		return fmt.Errorf("failed to write network file: %w", err)
	}
	return nil
}
