package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/pokerhall/pokerhall/internal/game"
)

// Config is the complete server configuration.
type Config struct {
	Server ServerSettings  `hcl:"server,block"`
	Bank   *BankSettings   `hcl:"bank,block"`
	Tables []TableSettings `hcl:"table,block"`
}

// ServerSettings contains server-level configuration.
type ServerSettings struct {
	Address     string `hcl:"address,optional"`
	Port        int    `hcl:"port,optional"`
	LogLevel    string `hcl:"log_level,optional"`
	LogFile     string `hcl:"log_file,optional"`
	AuthSecret  string `hcl:"auth_secret,optional"`
	ChannelSize int    `hcl:"channel_size,optional"`
	TurnTimeout string `hcl:"turn_timeout,optional"`
}

// BankSettings selects the chip source backing buy-in checks.
type BankSettings struct {
	Driver       string `hcl:"driver,optional"`
	Path         string `hcl:"path,optional"`
	DefaultChips int    `hcl:"default_chips,optional"`
}

// TableSettings defines one poker table.
type TableSettings struct {
	ID         string `hcl:"id,label"`
	Name       string `hcl:"name"`
	MinPlayers int    `hcl:"min_players,optional"`
	MaxPlayers int    `hcl:"max_players,optional"`
	SmallBlind int    `hcl:"small_blind"`
	BigBlind   int    `hcl:"big_blind"`
}

// GameConfig converts the table settings to the engine's configuration.
func (t TableSettings) GameConfig() game.TableConfig {
	return game.TableConfig{
		ID:         t.ID,
		Name:       t.Name,
		MinPlayers: t.MinPlayers,
		MaxPlayers: t.MaxPlayers,
		SmallBlind: t.SmallBlind,
		BigBlind:   t.BigBlind,
	}
}

// DefaultConfig returns the configuration used when no file is present:
// guest access, an in-memory bank, and a single seeded table.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:     "localhost",
			Port:        8080,
			LogLevel:    "info",
			ChannelSize: 8,
			TurnTimeout: "30s",
		},
		Bank: &BankSettings{
			Driver:       "memory",
			DefaultChips: 100,
		},
		Tables: []TableSettings{
			{
				ID:         "69420",
				Name:       "Pocket Rocket Dreams",
				MinPlayers: 2,
				MaxPlayers: 9,
				SmallBlind: 1,
				BigBlind:   2,
			},
		},
	}
}

// LoadConfig loads configuration from an HCL file, falling back to
// DefaultConfig when the file does not exist.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Server.Address == "" {
		c.Server.Address = def.Server.Address
	}
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = def.Server.LogLevel
	}
	if c.Server.ChannelSize == 0 {
		c.Server.ChannelSize = def.Server.ChannelSize
	}
	if c.Server.TurnTimeout == "" {
		c.Server.TurnTimeout = def.Server.TurnTimeout
	}
	if c.Bank == nil {
		c.Bank = def.Bank
	}
	if c.Bank.Driver == "" {
		c.Bank.Driver = "memory"
	}
	if c.Bank.DefaultChips == 0 {
		c.Bank.DefaultChips = 100
	}
	if len(c.Tables) == 0 {
		c.Tables = def.Tables
	}
	for i := range c.Tables {
		if c.Tables[i].MinPlayers == 0 {
			c.Tables[i].MinPlayers = 2
		}
		if c.Tables[i].MaxPlayers == 0 {
			c.Tables[i].MaxPlayers = 9
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := time.ParseDuration(c.Server.TurnTimeout); err != nil {
		return fmt.Errorf("invalid turn_timeout: %w", err)
	}
	if c.Server.ChannelSize < 1 {
		return fmt.Errorf("channel_size must be positive")
	}

	switch c.Bank.Driver {
	case "memory":
	case "sqlite":
		if c.Bank.Path == "" {
			return fmt.Errorf("bank driver sqlite requires a path")
		}
	default:
		return fmt.Errorf("unknown bank driver %q", c.Bank.Driver)
	}
	if c.Bank.DefaultChips <= 0 {
		return fmt.Errorf("bank default_chips must be positive")
	}

	if len(c.Tables) == 0 {
		return fmt.Errorf("at least one table must be configured")
	}
	seen := make(map[string]bool, len(c.Tables))
	for _, table := range c.Tables {
		if table.ID == "" {
			return fmt.Errorf("table id must not be empty")
		}
		if seen[table.ID] {
			return fmt.Errorf("table %s: duplicate id", table.ID)
		}
		seen[table.ID] = true
		if table.Name == "" {
			return fmt.Errorf("table %s: name must not be empty", table.ID)
		}
		if table.SmallBlind <= 0 {
			return fmt.Errorf("table %s: small blind must be positive", table.ID)
		}
		if table.BigBlind < table.SmallBlind {
			return fmt.Errorf("table %s: big blind must not be less than small blind", table.ID)
		}
		if table.MinPlayers < 2 {
			return fmt.Errorf("table %s: min players must be at least 2", table.ID)
		}
		if table.MaxPlayers < table.MinPlayers || table.MaxPlayers > 10 {
			return fmt.Errorf("table %s: max players must be between min players and 10", table.ID)
		}
		if c.Bank.DefaultChips <= table.BigBlind {
			return fmt.Errorf("table %s: default_chips must exceed the big blind", table.ID)
		}
	}
	return nil
}

// ListenAddress returns the address the server binds to.
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// TurnTimeoutDuration returns the parsed turn timeout. Call Validate first;
// an unparsable value falls back to 30 seconds.
func (c *Config) TurnTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Server.TurnTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}
