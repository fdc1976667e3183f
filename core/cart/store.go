package cart

import (
	"context"
	"fmt"

	"github.com/irsalhamdi/course-market/database"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// CreateIfAbsent makes sure the user has a cart. Concurrent first accesses
// settle on the unique user_id.
func CreateIfAbsent(ctx context.Context, db sqlx.ExtContext, c Cart) error {
	const q = `
	INSERT INTO carts (cart_id, user_id, created_at, updated_at)
	VALUES (:cart_id, :user_id, :created_at, :updated_at)
	ON CONFLICT (user_id) DO NOTHING`

	if err := database.NamedExecContext(ctx, db, q, c); err != nil {
		return fmt.Errorf("inserting cart: %w", err)
	}
	return nil
}

func FetchByUser(ctx context.Context, db sqlx.ExtContext, userID string) (Cart, error) {
	const q = `
	SELECT cart_id, user_id, created_at, updated_at
	FROM carts
	WHERE user_id = :user_id`

	in := struct {
		UserID string `db:"user_id"`
	}{userID}

	var c Cart
	if err := database.NamedQueryStruct(ctx, db, q, in, &c); err != nil {
		return Cart{}, fmt.Errorf("selecting cart of user[%s]: %w", userID, err)
	}
	return c, nil
}

func Touch(ctx context.Context, db sqlx.ExtContext, c Cart) error {
	const q = `UPDATE carts SET updated_at = :updated_at WHERE cart_id = :cart_id`

	if err := database.NamedExecContext(ctx, db, q, c); err != nil {
		return fmt.Errorf("touching cart[%s]: %w", c.ID, err)
	}
	return nil
}

func CreateItem(ctx context.Context, db sqlx.ExtContext, it Item) error {
	const q = `
	INSERT INTO cart_items (item_id, cart_id, course_id, price, created_at)
	VALUES (:item_id, :cart_id, :course_id, :price, :created_at)`

	if err := database.NamedExecContext(ctx, db, q, it); err != nil {
		return fmt.Errorf("inserting cart item: %w", err)
	}
	return nil
}

func FetchItems(ctx context.Context, db sqlx.ExtContext, cartID string) ([]Item, error) {
	const q = `
	SELECT i.item_id, i.cart_id, i.course_id, c.title, i.price, i.created_at
	FROM cart_items i
	JOIN courses c ON c.course_id = i.course_id
	WHERE i.cart_id = :cart_id
	ORDER BY i.created_at, i.item_id`

	in := struct {
		CartID string `db:"cart_id"`
	}{cartID}

	var items []Item
	if err := database.NamedQuerySlice(ctx, db, q, in, &items); err != nil {
		return nil, fmt.Errorf("selecting items of cart[%s]: %w", cartID, err)
	}
	return items, nil
}

// DeleteItem removes the item only if it belongs to cartID.
func DeleteItem(ctx context.Context, db sqlx.ExtContext, cartID string, itemID string) error {
	const q = `DELETE FROM cart_items WHERE item_id = :item_id AND cart_id = :cart_id`

	in := struct {
		ItemID string `db:"item_id"`
		CartID string `db:"cart_id"`
	}{itemID, cartID}

	if err := database.NamedExecAffected(ctx, db, q, in); err != nil {
		return fmt.Errorf("deleting item[%s] of cart[%s]: %w", itemID, cartID, err)
	}
	return nil
}

func DeleteItems(ctx context.Context, db sqlx.ExtContext, cartID string) error {
	const q = `DELETE FROM cart_items WHERE cart_id = :cart_id`

	in := struct {
		CartID string `db:"cart_id"`
	}{cartID}

	if err := database.NamedExecContext(ctx, db, q, in); err != nil {
		return fmt.Errorf("flushing cart[%s]: %w", cartID, err)
	}
	return nil
}

// DeleteCourses drops the given courses from the user's cart, if any.
func DeleteCourses(ctx context.Context, db sqlx.ExtContext, userID string, courseIDs []string) error {
	const q = `
	DELETE FROM cart_items
	WHERE course_id = ANY(CAST(:course_ids AS uuid[]))
		AND cart_id IN (SELECT cart_id FROM carts WHERE user_id = :user_id)`

	in := struct {
		UserID    string         `db:"user_id"`
		CourseIDs pq.StringArray `db:"course_ids"`
	}{userID, courseIDs}

	if err := database.NamedExecContext(ctx, db, q, in); err != nil {
		return fmt.Errorf("removing courses from cart of user[%s]: %w", userID, err)
	}
	return nil
}
