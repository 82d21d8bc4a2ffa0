package accounts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fastprodman/stardust/internal/infra/pgtestutil"
	"github.com/fastprodman/stardust/internal/repos/accounts"
)

func TestAccounts_LockAndGetBalance_NotFound(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	tx, err := db.BeginTx(t.Context(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = repo.LockAndGetBalance(tx, 999)
	if !errors.Is(err, accounts.ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound, got %v", err)
	}
}

func TestAccounts_LockMany(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	pgtestutil.SeedAccount(t, db, 7, 70, 0, 0)
	pgtestutil.SeedAccount(t, db, 3, 30, 0, 0)

	repo := New(db)

	tx, err := db.BeginTx(t.Context(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	got, err := repo.LockMany(tx, 7, 3, 7)
	if err != nil {
		t.Fatalf("lock many: %v", err)
	}
	if len(got) != 2 || got[3] != 30 || got[7] != 70 {
		t.Fatalf("unexpected balances: %v", got)
	}

	_, err = repo.LockMany(tx, 3, 404)
	if !errors.Is(err, accounts.ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound, got %v", err)
	}

	var missing *accounts.MissingAccountError
	if !errors.As(err, &missing) || missing.UserID != 404 {
		t.Fatalf("want missing account 404, got %v", err)
	}
}

// A second FOR UPDATE on the same row blocks until the first tx commits.
func TestAccounts_LockAndGetBalance_LocksRow(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	pgtestutil.SeedAccount(t, db, 42, 200, 0, 0)

	repo := New(db)

	ctx1, cancel1 := context.WithTimeout(t.Context(), 10*time.Second)
	defer cancel1()

	tx1, err := db.BeginTx(ctx1, nil)
	if err != nil {
		t.Fatalf("begin tx1: %v", err)
	}
	defer func() { _ = tx1.Rollback() }()

	_, err = repo.LockAndGetBalance(tx1, 42)
	if err != nil {
		t.Fatalf("tx1 lock/get: %v", err)
	}

	_, err = repo.Debit(tx1, 42, 50)
	if err != nil {
		t.Fatalf("tx1 debit: %v", err)
	}

	started := make(chan struct{})
	result := make(chan int64, 1)
	errCh := make(chan error, 1)

	go func() {
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()

		tx2, e := db.BeginTx(ctx2, nil)
		if e != nil {
			errCh <- e
			return
		}
		defer func() { _ = tx2.Rollback() }()

		close(started)

		bal, e := repo.LockAndGetBalance(tx2, 42)
		if e != nil {
			errCh <- e
			return
		}

		result <- bal
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for tx2 to start")
	}

	select {
	case bal := <-result:
		t.Fatalf("tx2 read %d before tx1 committed", bal)
	case <-time.After(200 * time.Millisecond):
	}

	err = tx1.Commit()
	if err != nil {
		t.Fatalf("commit tx1: %v", err)
	}

	select {
	case e := <-errCh:
		t.Fatalf("tx2 error: %v", e)
	case bal := <-result:
		if bal != 150 {
			t.Fatalf("tx2 should see committed balance 150, got %d", bal)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for tx2 to complete after tx1 commit")
	}
}
