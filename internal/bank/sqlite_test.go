package bank

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "bank.db"),
		WithDBLogger(log.NewWithOptions(io.Discard, log.Options{})),
		WithSignupChips(500))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestEnsurePlayerCreditsSignupOnce(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.EnsurePlayer(ctx, "u1", "Alice"))
	balance, err := db.Balance(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 500, balance)

	// Enrolling again must not credit again.
	require.NoError(t, db.EnsurePlayer(ctx, "u1", "Alice"))
	balance, err = db.Balance(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 500, balance)
}

func TestBalanceUnknownPlayer(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)

	_, err := db.Balance(context.Background(), "nobody")
	require.ErrorIs(t, err, ErrUnknownPlayer)
}

func TestDeposit(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.EnsurePlayer(ctx, "u1", "Alice"))

	require.NoError(t, db.Deposit(ctx, "u1", 100, "won pot"))
	balance, err := db.Balance(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 600, balance)

	require.NoError(t, db.Deposit(ctx, "u1", -600, "bought in"))
	balance, err = db.Balance(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 0, balance)
}

func TestDepositRejectsOverdraw(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.EnsurePlayer(ctx, "u1", "Alice"))

	err := db.Deposit(ctx, "u1", -501, "bought in")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrUnknownPlayer)

	// The failed withdrawal must not change the balance.
	balance, err := db.Balance(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 500, balance)
}

func TestDepositUnknownPlayer(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)

	err := db.Deposit(context.Background(), "nobody", 100, "won pot")
	require.ErrorIs(t, err, ErrUnknownPlayer)
}

func TestFixedSource(t *testing.T) {
	t.Parallel()
	balance, err := Fixed(100).Balance(context.Background(), "anyone")
	require.NoError(t, err)
	require.Equal(t, 100, balance)
}
