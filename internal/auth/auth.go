// Package auth establishes which player a websocket connection belongs to.
// Verification happens once, at the HTTP upgrade; everything past that
// point trusts the resolved identity.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/pokerhall/pokerhall/internal/game"
)

var (
	// ErrUnauthenticated indicates the request carried no credentials.
	ErrUnauthenticated = errors.New("auth: missing credentials")

	// ErrInvalidToken indicates the credentials are definitively invalid.
	ErrInvalidToken = errors.New("auth: invalid token")
)

// SessionCookie is the cookie a browser client presents its token in.
// Non-browser clients may pass the same token as the "token" query
// parameter instead.
const SessionCookie = "poker-session"

// Verifier resolves an upgrade request to a player identity.
type Verifier interface {
	Verify(r *http.Request) (game.Player, error)
}

// TokenVerifier accepts HMAC-signed session tokens minted by this server.
// A token is "<base64(id)>.<base64(username)>.<base64(signature)>" with the
// signature covering id and username.
type TokenVerifier struct {
	secret []byte
}

// NewTokenVerifier creates a verifier keyed with secret.
func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// Mint issues a token for the player. It exists for operators and tests;
// the server itself only verifies.
func (v *TokenVerifier) Mint(player game.Player) string {
	enc := base64.RawURLEncoding
	return fmt.Sprintf("%s.%s.%s",
		enc.EncodeToString([]byte(player.ID)),
		enc.EncodeToString([]byte(player.Username)),
		enc.EncodeToString(v.sign(player.ID, player.Username)))
}

// Verify implements Verifier.
func (v *TokenVerifier) Verify(r *http.Request) (game.Player, error) {
	token := tokenFrom(r)
	if token == "" {
		return game.Player{}, ErrUnauthenticated
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return game.Player{}, ErrInvalidToken
	}
	enc := base64.RawURLEncoding
	id, err := enc.DecodeString(parts[0])
	if err != nil {
		return game.Player{}, ErrInvalidToken
	}
	username, err := enc.DecodeString(parts[1])
	if err != nil {
		return game.Player{}, ErrInvalidToken
	}
	sig, err := enc.DecodeString(parts[2])
	if err != nil {
		return game.Player{}, ErrInvalidToken
	}
	if len(id) == 0 || len(username) == 0 {
		return game.Player{}, ErrInvalidToken
	}
	if !hmac.Equal(sig, v.sign(string(id), string(username))) {
		return game.Player{}, ErrInvalidToken
	}
	return game.Player{ID: string(id), Username: string(username)}, nil
}

func (v *TokenVerifier) sign(id, username string) []byte {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(id))
	mac.Write([]byte{'.'})
	mac.Write([]byte(username))
	return mac.Sum(nil)
}

func tokenFrom(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return r.URL.Query().Get("token")
}

// GuestVerifier admits anyone who names themselves with the "player" query
// parameter. Each connection gets a fresh id, so reconnecting as the same
// username is a new player. Meant for local play and development.
type GuestVerifier struct{}

// Verify implements Verifier.
func (GuestVerifier) Verify(r *http.Request) (game.Player, error) {
	username := r.URL.Query().Get("player")
	if username == "" {
		return game.Player{}, ErrUnauthenticated
	}
	return game.Player{ID: NewID(), Username: username}, nil
}
