package enrollment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/irsalhamdi/course-market/api/weberr"
	"github.com/irsalhamdi/course-market/core/course"
	"github.com/irsalhamdi/course-market/database"
	"github.com/irsalhamdi/course-market/validate"
	"github.com/jmoiron/sqlx"
)

var (
	ErrAlreadyEnrolled = errors.New("user already enrolled in this course")
	ErrNotEnrolled     = errors.New("user is not enrolled in this course")
)

// Enroll creates the enrollment of userID in courseID. A second call for
// the same pair fails with a conflict, enforced by the store.
func Enroll(ctx context.Context, db sqlx.ExtContext, userID string, courseID string) (Enrollment, error) {
	if _, err := course.Fetch(ctx, db, courseID); err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return Enrollment{}, weberr.NotFound(err)
		}
		return Enrollment{}, fmt.Errorf("fetching course[%s]: %w", courseID, err)
	}

	now := time.Now().UTC()
	e := Enrollment{
		ID:        validate.GenerateID(),
		UserID:    userID,
		CourseID:  courseID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := Create(ctx, db, e); err != nil {
		if errors.Is(err, database.ErrDBDuplicatedEntry) {
			return Enrollment{}, weberr.Conflict(ErrAlreadyEnrolled)
		}
		if errors.Is(err, database.ErrDBReferenced) {
			return Enrollment{}, weberr.NotFound(err)
		}
		return Enrollment{}, fmt.Errorf("enrolling user[%s] in course[%s]: %w", userID, courseID, err)
	}

	return e, nil
}

// Lookup returns the enrollment of userID in courseID, failing with
// not found when there is none.
func Lookup(ctx context.Context, db sqlx.ExtContext, userID string, courseID string) (Enrollment, error) {
	e, err := Fetch(ctx, db, userID, courseID)
	if err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return Enrollment{}, weberr.NotFound(ErrNotEnrolled)
		}
		return Enrollment{}, err
	}
	return e, nil
}

// RecordProgress stores the completion flag of lessonID for the caller's
// enrollment in the lesson's course, then recomputes the enrollment's
// completion from all its progress rows. The enrollment row is locked for
// the whole transaction.
func RecordProgress(ctx context.Context, db *sqlx.DB, userID string, lessonID string, completed bool) (Progress, Enrollment, error) {
	var (
		p Progress
		e Enrollment
	)

	err := database.Transaction(ctx, db, func(tx sqlx.ExtContext) error {
		l, err := course.FetchLesson(ctx, tx, lessonID)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching lesson[%s]: %w", lessonID, err)
		}

		e, err = FetchForUpdate(ctx, tx, userID, l.CourseID)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.Forbidden(ErrNotEnrolled)
			}
			return err
		}

		p, err = Record(ctx, tx, &e, l.ID, completed, time.Now().UTC())
		return err
	})

	if err != nil {
		return Progress{}, Enrollment{}, err
	}
	return p, e, nil
}

// Record upserts the progress row and rolls completion up into e. The
// caller must hold the lock on e. last_watched is refreshed on every call.
func Record(ctx context.Context, tx sqlx.ExtContext, e *Enrollment, lessonID string, completed bool, now time.Time) (Progress, error) {
	p, err := UpsertProgress(ctx, tx, Progress{
		ID:           validate.GenerateID(),
		EnrollmentID: e.ID,
		LessonID:     lessonID,
		Completed:    completed,
		LastWatched:  now,
	})
	if err != nil {
		return Progress{}, err
	}

	if e.Completed {
		return p, nil
	}

	states, err := FetchLessonStates(ctx, tx, *e)
	if err != nil {
		return Progress{}, err
	}

	if Summarize(states).Done() {
		e.Completed = true
		e.UpdatedAt = now
		if err := MarkCompleted(ctx, tx, *e); err != nil {
			return Progress{}, err
		}
	}

	return p, nil
}

// UserCourses lists the courses the user is enrolled in with a progress
// summary for each.
func UserCourses(ctx context.Context, db sqlx.ExtContext, userID string) ([]UserCourse, error) {
	es, err := FetchByUser(ctx, db, userID)
	if err != nil {
		return nil, err
	}

	ucs := make([]UserCourse, 0, len(es))
	for _, e := range es {
		c, err := course.Fetch(ctx, db, e.CourseID)
		if err != nil {
			return nil, fmt.Errorf("fetching course[%s]: %w", e.CourseID, err)
		}

		states, err := FetchLessonStates(ctx, db, e)
		if err != nil {
			return nil, err
		}

		ucs = append(ucs, UserCourse{
			Course:     c,
			Enrollment: e,
			Progress:   Summarize(states),
		})
	}

	return ucs, nil
}
