package test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gosimple/slug"
	"github.com/irsalhamdi/course-market/core/course"
	"github.com/irsalhamdi/course-market/database"
	"github.com/irsalhamdi/course-market/validate"
	"github.com/jmoiron/sqlx"
)

func TestTransactionCanceled(t *testing.T) {
	if testDB == nil {
		t.Skip("no docker daemon available")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := database.Transaction(ctx, testDB, func(tx sqlx.ExtContext) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if called {
		t.Fatal("a canceled context must not start the transaction")
	}
}

func TestTransactionCanceledMidway(t *testing.T) {
	if testDB == nil {
		t.Skip("no docker daemon available")
	}

	name := "Canceled " + digits(t, 8)
	cat := course.Category{
		ID:        validate.GenerateID(),
		Name:      name,
		Slug:      slug.Make(name),
		CreatedAt: time.Now().UTC(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	err := database.Transaction(ctx, testDB, func(tx sqlx.ExtContext) error {
		if err := course.CreateCategory(ctx, tx, cat); err != nil {
			return err
		}
		cancel()
		return nil
	})
	if err == nil {
		t.Fatal("expected the commit to fail once the context is canceled")
	}

	cs, err := course.FetchCategories(context.Background(), testDB)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range cs {
		if c.ID == cat.ID {
			t.Fatal("category of a canceled transaction must not be stored")
		}
	}
}
