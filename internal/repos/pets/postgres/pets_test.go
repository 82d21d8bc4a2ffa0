package pets

import (
	"errors"
	"testing"

	"github.com/fastprodman/stardust/internal/infra/pgtestutil"
	"github.com/fastprodman/stardust/internal/repos/pets"
)

func TestPets_GetAndUpdate(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	pgtestutil.SeedAccount(t, db, 5, 100, 2, 50)

	repo := New(db)

	p, err := repo.Get(t.Context(), 5)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Stage != 2 || p.Hunger != 50 || p.UserID != 5 {
		t.Fatalf("unexpected pet: %+v", p)
	}

	tx, err := db.BeginTx(t.Context(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	locked, err := repo.GetForUpdate(tx, 5)
	if err != nil {
		t.Fatalf("get for update: %v", err)
	}
	if locked.ID != p.ID {
		t.Fatalf("locked a different pet: %+v vs %+v", locked, p)
	}

	hunger := 40
	updated, err := repo.Update(tx, p.ID, pets.Update{Hunger: &hunger})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Hunger != 40 || updated.Stage != 2 {
		t.Fatalf("stage must be untouched and hunger set: %+v", updated)
	}

	err = tx.Commit()
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestPets_NotFound(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	pgtestutil.SeedAccount(t, db, 6, 100, 0, 0)

	repo := New(db)

	_, err := repo.Get(t.Context(), 6)
	if !errors.Is(err, pets.ErrPetNotFound) {
		t.Fatalf("get: want ErrPetNotFound, got %v", err)
	}

	tx, err := db.BeginTx(t.Context(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = repo.GetForUpdate(tx, 6)
	if !errors.Is(err, pets.ErrPetNotFound) {
		t.Fatalf("get for update: want ErrPetNotFound, got %v", err)
	}

	stage := 3
	_, err = repo.Update(tx, 12345, pets.Update{Stage: &stage})
	if !errors.Is(err, pets.ErrPetNotFound) {
		t.Fatalf("update: want ErrPetNotFound, got %v", err)
	}
}
