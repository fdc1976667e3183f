package review

import (
	"context"
	"fmt"

	"github.com/irsalhamdi/course-market/database"
	"github.com/jmoiron/sqlx"
)

// Create inserts r. A second review of the same course by the same user is
// rejected by the store with database.ErrDBDuplicatedEntry.
func Create(ctx context.Context, db sqlx.ExtContext, r Review) error {
	const q = `
	INSERT INTO reviews (review_id, user_id, course_id, rating, comment, created_at)
	VALUES (:review_id, :user_id, :course_id, :rating, :comment, :created_at)`

	if err := database.NamedExecContext(ctx, db, q, r); err != nil {
		return fmt.Errorf("inserting review: %w", err)
	}
	return nil
}

func FetchByCourse(ctx context.Context, db sqlx.ExtContext, courseID string) ([]Review, error) {
	const q = `
	SELECT r.review_id, r.user_id, u.name AS user_name, r.course_id, r.rating, r.comment, r.created_at
	FROM reviews r
	JOIN users u ON u.user_id = r.user_id
	WHERE r.course_id = :course_id
	ORDER BY r.created_at DESC`

	in := struct {
		CourseID string `db:"course_id"`
	}{courseID}

	var rs []Review
	if err := database.NamedQuerySlice(ctx, db, q, in, &rs); err != nil {
		return nil, fmt.Errorf("selecting reviews of course[%s]: %w", courseID, err)
	}
	return rs, nil
}
