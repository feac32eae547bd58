package main

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pokerhall/pokerhall/cmd/pokerhall/shared"
	"github.com/pokerhall/pokerhall/internal/tui"
)

// ClientCmd connects to a server as an interactive terminal client.
type ClientCmd struct {
	Server  string `short:"s" default:"http://localhost:8080" help:"Server URL"`
	Player  string `short:"p" help:"Username for guest access"`
	Token   string `help:"Signed session token (instead of --player)"`
	Debug   bool   `help:"Enable debug logging"`
	LogFile string `default:"pokerhall-client.log" help:"Log file (the TUI owns the terminal)"`
}

func (c *ClientCmd) Run() error {
	if c.Player == "" && c.Token == "" {
		return errors.New("either --player or --token is required")
	}

	level := "info"
	if c.Debug {
		level = "debug"
	}
	logger, closeLog, err := shared.SetupLogger(level, c.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := shared.SetupSignalHandler(logger)
	client := tui.NewClient(c.Server, c.Player, c.Token, logger)
	if err := client.Connect(ctx); err != nil {
		return err
	}
	defer client.Close()

	username := c.Player
	if username == "" {
		username = "player"
	}
	model := tui.NewModel(client, username, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}
