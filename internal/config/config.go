package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/crown/internal/clarity"
	"github.com/five82/crown/internal/wallet"
)

// Config holds everything crown needs to reach the node, the contract and
// the signer bridge. File values are overridden by CROWN_* variables.
type Config struct {
	APIURL          string `toml:"api_url"          env:"CROWN_API_URL"`
	ContractAddress string `toml:"contract_address" env:"CROWN_CONTRACT_ADDRESS"`
	ContractName    string `toml:"contract_name"    env:"CROWN_CONTRACT_NAME"`
	WalletURL       string `toml:"wallet_url"       env:"CROWN_WALLET_URL"`
	Network         string `toml:"network"          env:"CROWN_NETWORK"`
	LogDir          string `toml:"log_dir"          env:"CROWN_LOG_DIR"`
	JournalPath     string `toml:"journal_path"     env:"CROWN_JOURNAL_PATH"`
	PostConditions  string `toml:"post_conditions"  env:"CROWN_POST_CONDITIONS"`
	OTelEndpoint    string `toml:"otel_endpoint"    env:"CROWN_OTEL_ENDPOINT"`
}

const (
	defaultConfigPath      = "~/.config/crown/config.toml"
	defaultAPIURL          = "https://api.mainnet.hiro.so"
	defaultContractAddress = "SP2QNSNKR3NRDWNTX0Q7R4T8WGBJ8RE8RA516AKZP"
	defaultContractName    = "centrifuge-king"
	defaultWalletURL       = "http://127.0.0.1:7777"
	defaultNetwork         = "mainnet"
	defaultLogDir          = "~/.local/share/crown"
	defaultPostConditions  = string(wallet.PostConditionDeny)
)

// Default returns the built-in configuration with paths unexpanded.
func Default() Config {
	return Config{
		APIURL:          defaultAPIURL,
		ContractAddress: defaultContractAddress,
		ContractName:    defaultContractName,
		WalletURL:       defaultWalletURL,
		Network:         defaultNetwork,
		LogDir:          defaultLogDir,
		PostConditions:  defaultPostConditions,
	}
}

// Load reads the config file (a missing file is fine), applies environment
// overrides, fills defaults for blank fields and validates the result.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := readFile(resolved, &cfg); err != nil {
		return Config{}, err
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(bytes, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func (c *Config) normalize() {
	defaults := Default()
	trimOr := func(v *string, fallback string) {
		*v = strings.TrimSpace(*v)
		if *v == "" {
			*v = fallback
		}
	}
	trimOr(&c.APIURL, defaults.APIURL)
	trimOr(&c.ContractAddress, defaults.ContractAddress)
	trimOr(&c.ContractName, defaults.ContractName)
	trimOr(&c.WalletURL, defaults.WalletURL)
	trimOr(&c.Network, defaults.Network)
	trimOr(&c.LogDir, defaults.LogDir)
	trimOr(&c.PostConditions, defaults.PostConditions)
	c.Network = strings.ToLower(c.Network)
	c.PostConditions = strings.ToLower(c.PostConditions)
	c.OTelEndpoint = strings.TrimSpace(c.OTelEndpoint)

	c.LogDir = mustExpand(c.LogDir)
	c.JournalPath = strings.TrimSpace(c.JournalPath)
	if c.JournalPath == "" {
		c.JournalPath = filepath.Join(c.LogDir, "journal.db")
	} else {
		c.JournalPath = mustExpand(c.JournalPath)
	}
}

// Validate checks the contract identifier and the enumerated fields.
func (c Config) Validate() error {
	p, err := c.Contract()
	if err != nil {
		return err
	}
	switch c.Network {
	case "mainnet":
		if !p.Mainnet() {
			return fmt.Errorf("contract_address %s is not a mainnet address", c.ContractAddress)
		}
	case "testnet":
		if p.Mainnet() {
			return fmt.Errorf("contract_address %s is not a testnet address", c.ContractAddress)
		}
	default:
		return fmt.Errorf("network must be mainnet or testnet, got %q", c.Network)
	}
	switch wallet.PostConditionMode(c.PostConditions) {
	case wallet.PostConditionDeny, wallet.PostConditionAllow:
	default:
		return fmt.Errorf("post_conditions must be deny or allow, got %q", c.PostConditions)
	}
	return nil
}

// Contract returns the configured contract as a principal.
func (c Config) Contract() (clarity.Principal, error) {
	p, err := clarity.ParseAddress(c.ContractAddress)
	if err != nil {
		return clarity.Principal{}, fmt.Errorf("contract_address: %w", err)
	}
	if p.Contract != "" {
		return clarity.Principal{}, fmt.Errorf("contract_address must not include a contract name")
	}
	p.Contract = c.ContractName
	return p, nil
}

// LogPath returns the path of crown's own log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/crown.log")
	}
	return filepath.Join(c.LogDir, "crown.log")
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
