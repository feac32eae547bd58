package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/pokerhall/pokerhall/internal/auth"
	"github.com/pokerhall/pokerhall/internal/game"
)

// TokenCmd mints a session token a server configured with the same secret
// will accept.
type TokenCmd struct {
	Secret   string `help:"Signing secret (defaults to POKERHALL_SESSION_SECRET)"`
	Username string `arg:"" help:"Player username"`
	ID       string `help:"Player id (defaults to a freshly minted one)"`
}

func (c *TokenCmd) Run() error {
	if c.Secret == "" {
		c.Secret = os.Getenv("POKERHALL_SESSION_SECRET")
	}
	if c.Secret == "" {
		return errors.New("--secret or POKERHALL_SESSION_SECRET is required")
	}
	id := c.ID
	if id == "" {
		id = auth.NewID()
	}
	verifier := auth.NewTokenVerifier(c.Secret)
	fmt.Println(verifier.Mint(game.Player{ID: id, Username: c.Username}))
	return nil
}
