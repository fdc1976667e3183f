package user

import (
	"context"
	"fmt"

	"github.com/irsalhamdi/course-market/database"
	"github.com/jmoiron/sqlx"
)

const selectUsers = `
	SELECT user_id, name, email, bio, image_url, role, password_hash, created_at, updated_at
	FROM users`

func Create(ctx context.Context, db sqlx.ExtContext, u User) error {
	const q = `
	INSERT INTO users (user_id, name, email, bio, image_url, role, password_hash, created_at, updated_at)
	VALUES (:user_id, :name, :email, :bio, :image_url, :role, :password_hash, :created_at, :updated_at)`

	if err := database.NamedExecContext(ctx, db, q, u); err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (User, error) {
	q := selectUsers + ` WHERE user_id = :user_id`

	in := struct {
		ID string `db:"user_id"`
	}{id}

	var u User
	if err := database.NamedQueryStruct(ctx, db, q, in, &u); err != nil {
		return User{}, fmt.Errorf("selecting user[%s]: %w", id, err)
	}
	return u, nil
}

func FetchByEmail(ctx context.Context, db sqlx.ExtContext, email string) (User, error) {
	q := selectUsers + ` WHERE email = :email`

	in := struct {
		Email string `db:"email"`
	}{email}

	var u User
	if err := database.NamedQueryStruct(ctx, db, q, in, &u); err != nil {
		return User{}, fmt.Errorf("selecting user by email: %w", err)
	}
	return u, nil
}

func FetchAll(ctx context.Context, db sqlx.ExtContext) ([]User, error) {
	q := selectUsers + ` ORDER BY created_at DESC`

	var us []User
	if err := database.NamedQuerySlice(ctx, db, q, struct{}{}, &us); err != nil {
		return nil, fmt.Errorf("selecting users: %w", err)
	}
	return us, nil
}

func UpdateRole(ctx context.Context, db sqlx.ExtContext, u User) error {
	const q = `
	UPDATE users SET
		role = :role,
		updated_at = :updated_at
	WHERE user_id = :user_id`

	if err := database.NamedExecAffected(ctx, db, q, u); err != nil {
		return fmt.Errorf("updating role of user[%s]: %w", u.ID, err)
	}
	return nil
}

func UpdateProfile(ctx context.Context, db sqlx.ExtContext, u User) error {
	const q = `
	UPDATE users SET
		name = :name,
		bio = :bio,
		image_url = :image_url,
		updated_at = :updated_at
	WHERE user_id = :user_id`

	if err := database.NamedExecAffected(ctx, db, q, u); err != nil {
		return fmt.Errorf("updating profile of user[%s]: %w", u.ID, err)
	}
	return nil
}

func UpdatePassword(ctx context.Context, db sqlx.ExtContext, u User) error {
	const q = `
	UPDATE users SET
		password_hash = :password_hash,
		updated_at = :updated_at
	WHERE user_id = :user_id`

	if err := database.NamedExecAffected(ctx, db, q, u); err != nil {
		return fmt.Errorf("updating password of user[%s]: %w", u.ID, err)
	}
	return nil
}
