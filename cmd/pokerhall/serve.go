package main

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/pokerhall/pokerhall/cmd/pokerhall/shared"
	"github.com/pokerhall/pokerhall/internal/server"
)

// ServeCmd runs the poker hall server.
type ServeCmd struct {
	Config   string `short:"c" default:"pokerhall.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Listen address (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
}

func (c *ServeCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if c.Addr != "" {
		host, port, err := net.SplitHostPort(c.Addr)
		if err != nil {
			return fmt.Errorf("invalid --addr: %w", err)
		}
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid --addr port: %w", err)
		}
		cfg.Server.Address = host
		cfg.Server.Port = p
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	// The session secret never belongs in a config file.
	if secret := os.Getenv("POKERHALL_SESSION_SECRET"); secret != "" {
		cfg.Server.AuthSecret = secret
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, closeLog, err := shared.SetupLogger(cfg.Server.LogLevel, cfg.Server.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	srv, err := server.New(cfg, server.WithLogger(logger))
	if err != nil {
		return err
	}

	logger.Info("starting pokerhall",
		"addr", cfg.ListenAddress(),
		"tables", len(cfg.Tables),
		"bank", cfg.Bank.Driver,
		"turnTimeout", cfg.Server.TurnTimeout)

	ctx := shared.SetupSignalHandler(logger)
	return srv.Run(ctx)
}
