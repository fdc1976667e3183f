package review

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
	ErrRating       = fmt.Errorf("rating must be between %d and %d", MinRating, MaxRating)
	ErrAlreadyRated = errors.New("user already reviewed this course")
	ErrNotEnrolled  = errors.New("only enrolled users can review a course")
)

// Add stores the user's review of courseID. Only enrolled users may
// review, once per course.
func Add(ctx context.Context, db sqlx.ExtContext, userID string, courseID string, rn ReviewNew) (Review, error) {
	if !ValidRating(rn.Rating) {
		return Review{}, weberr.Invalid(ErrRating)
	}

	if _, err := course.Fetch(ctx, db, courseID); err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return Review{}, weberr.NotFound(err)
		}
		return Review{}, fmt.Errorf("fetching course[%s]: %w", courseID, err)
	}

	if _, err := enrollment.Fetch(ctx, db, userID, courseID); err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return Review{}, weberr.Forbidden(ErrNotEnrolled)
		}
		return Review{}, err
	}

	r := Review{
		ID:        validate.GenerateID(),
		UserID:    userID,
		CourseID:  courseID,
		Rating:    rn.Rating,
		Comment:   rn.Comment,
		CreatedAt: time.Now().UTC(),
	}

	if err := Create(ctx, db, r); err != nil {
		if errors.Is(err, database.ErrDBDuplicatedEntry) {
			return Review{}, weberr.Conflict(ErrAlreadyRated)
		}
		return Review{}, err
	}

	return r, nil
}

// List returns the reviews of a course with their authors' names.
func List(ctx context.Context, db sqlx.ExtContext, courseID string) ([]Review, error) {
	if _, err := course.Fetch(ctx, db, courseID); err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return nil, weberr.NotFound(err)
		}
		return nil, fmt.Errorf("fetching course[%s]: %w", courseID, err)
	}

	return FetchByCourse(ctx, db, courseID)
}
