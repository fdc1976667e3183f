package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/irsalhamdi/course-market/api/weberr"
	"github.com/irsalhamdi/course-market/core/course"
	"github.com/irsalhamdi/course-market/core/enrollment"
	"github.com/irsalhamdi/course-market/database"
	"github.com/irsalhamdi/course-market/validate"
	"github.com/jmoiron/sqlx"
)

var (
	ErrInCart      = errors.New("course already in cart")
	ErrItemMissing = errors.New("item not found in cart")
	ErrFreeCourse  = errors.New("free courses are enrolled directly, not bought")
)

// GetOrCreate returns the user's cart with its items, creating the cart
// on first access.
func GetOrCreate(ctx context.Context, db sqlx.ExtContext, userID string) (Cart, error) {
	now := time.Now().UTC()
	c := Cart{
		ID:        validate.GenerateID(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := CreateIfAbsent(ctx, db, c); err != nil {
		return Cart{}, err
	}

	c, err := FetchByUser(ctx, db, userID)
	if err != nil {
		return Cart{}, err
	}

	if c.Items, err = FetchItems(ctx, db, c.ID); err != nil {
		return Cart{}, err
	}
	c.Total = Total(c.Items)

	return c, nil
}

// AddItem puts the course in the user's cart at its current effective
// price. Enrolled courses and courses already in the cart are conflicts;
// free courses are invalid.
func AddItem(ctx context.Context, db *sqlx.DB, userID string, courseID string) (Item, error) {
	var it Item

	err := database.Transaction(ctx, db, func(tx sqlx.ExtContext) error {
		crs, err := course.Fetch(ctx, tx, courseID)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching course[%s]: %w", courseID, err)
		}

		if crs.Free() {
			return weberr.Invalid(ErrFreeCourse)
		}

		_, err = enrollment.Fetch(ctx, tx, userID, courseID)
		switch {
		case err == nil:
			return weberr.Conflict(enrollment.ErrAlreadyEnrolled)
		case !errors.Is(err, database.ErrDBNotFound):
			return err
		}

		c, err := GetOrCreate(ctx, tx, userID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		it = Item{
			ID:        validate.GenerateID(),
			CartID:    c.ID,
			CourseID:  crs.ID,
			Title:     crs.Title,
			Price:     crs.EffectivePrice(),
			CreatedAt: now,
		}

		if err := CreateItem(ctx, tx, it); err != nil {
			if errors.Is(err, database.ErrDBDuplicatedEntry) {
				return weberr.Conflict(ErrInCart)
			}
			return err
		}

		c.UpdatedAt = now
		return Touch(ctx, tx, c)
	})

	if err != nil {
		return Item{}, fmt.Errorf("adding course[%s] to cart of user[%s]: %w", courseID, userID, err)
	}
	return it, nil
}

// RemoveItem deletes itemID from the user's cart. Items of other carts are
// reported as missing.
func RemoveItem(ctx context.Context, db sqlx.ExtContext, userID string, itemID string) error {
	c, err := FetchByUser(ctx, db, userID)
	if err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return weberr.NotFound(ErrItemMissing)
		}
		return err
	}

	if err := DeleteItem(ctx, db, c.ID, itemID); err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return weberr.NotFound(ErrItemMissing)
		}
		return err
	}
	return nil
}

// Clear empties the user's cart.
func Clear(ctx context.Context, db sqlx.ExtContext, userID string) error {
	c, err := FetchByUser(ctx, db, userID)
	if err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return nil
		}
		return err
	}
	return DeleteItems(ctx, db, c.ID)
}
