package bank

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"
)

// DB is a ChipSource backed by a SQLite ledger. Every balance change is
// recorded as a transaction row alongside the running balance.
type DB struct {
	db     *sql.DB
	logger *log.Logger
	signup int
}

// DBOption configures Open.
type DBOption func(*DB)

// WithDBLogger sets the bank's logger.
func WithDBLogger(logger *log.Logger) DBOption {
	return func(d *DB) { d.logger = logger }
}

// WithSignupChips sets the balance granted when a player is first enrolled.
func WithSignupChips(chips int) DBOption {
	return func(d *DB) { d.signup = chips }
}

// Open opens (creating if needed) the ledger at path.
func Open(path string, opts ...DBOption) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open bank: %w", err)
	}
	d := &DB{db: db, logger: log.Default(), signup: 0}
	for _, opt := range opts {
		opt(d)
	}
	if err := d.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create bank tables: %w", err)
	}
	return d, nil
}

func (d *DB) createTables() error {
	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS players (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			balance INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			player_id TEXT NOT NULL,
			amount INTEGER NOT NULL,
			reason TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (player_id) REFERENCES players(id)
		)
	`)
	return err
}

// Balance implements ChipSource.
func (d *DB) Balance(ctx context.Context, playerID string) (int, error) {
	var balance int
	err := d.db.QueryRowContext(ctx,
		"SELECT balance FROM players WHERE id = ?", playerID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUnknownPlayer
	}
	if err != nil {
		return 0, fmt.Errorf("query balance: %w", err)
	}
	return balance, nil
}

// EnsurePlayer enrols the player if the ledger has never seen them,
// crediting the signup balance. Existing players are left untouched.
func (d *DB) EnsurePlayer(ctx context.Context, playerID, username string) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO players (id, username, balance)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, playerID, username, d.signup)
	if err != nil {
		return fmt.Errorf("enrol player: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if inserted > 0 && d.signup != 0 {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO transactions (player_id, amount, reason)
			VALUES (?, ?, ?)
		`, playerID, d.signup, "signup")
		if err != nil {
			return fmt.Errorf("record signup: %w", err)
		}
		d.logger.Info("enrolled player", "player", username, "chips", d.signup)
	}
	return tx.Commit()
}

// Deposit adjusts a player's balance and records the transaction. Negative
// amounts withdraw; the balance may not go below zero.
func (d *DB) Deposit(ctx context.Context, playerID string, amount int, reason string) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE players SET balance = balance + ?
		WHERE id = ? AND balance + ? >= 0
	`, amount, playerID, amount)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	changed, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if changed == 0 {
		var n int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM players WHERE id = ?", playerID).Scan(&n); err != nil {
			return err
		}
		if n == 0 {
			return ErrUnknownPlayer
		}
		return fmt.Errorf("deposit of %d would overdraw player %s", amount, playerID)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (player_id, amount, reason)
		VALUES (?, ?, ?)
	`, playerID, amount, reason)
	if err != nil {
		return fmt.Errorf("record transaction: %w", err)
	}
	return tx.Commit()
}

// Close closes the ledger.
func (d *DB) Close() error {
	return d.db.Close()
}
