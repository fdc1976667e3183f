package enrollment

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/irsalhamdi/course-market/api/web"
	"github.com/irsalhamdi/course-market/api/weberr"
	"github.com/irsalhamdi/course-market/core/claims"
	"github.com/irsalhamdi/course-market/core/course"
	"github.com/irsalhamdi/course-market/database"
	"github.com/irsalhamdi/course-market/validate"
	"github.com/jmoiron/sqlx"
)

// HandleEnroll is the direct enrollment path. Only free courses can be
// joined this way; paid ones are enrolled when their payment completes.
func HandleEnroll(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		courseID := web.Param(r, "id")
		if err := validate.CheckID(courseID); err != nil {
			return weberr.BadRequest(fmt.Errorf("passed id is not valid: %w", err))
		}

		c, err := course.Fetch(ctx, db, courseID)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching course[%s]: %w", courseID, err)
		}

		if !c.Free() {
			return weberr.Forbidden(errors.New("this course must be purchased before enrolling"))
		}

		e, err := Enroll(ctx, db, clm.UserID, courseID)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, e, http.StatusCreated)
	}
}

// HandleAdminEnroll enrolls any user in any course.
func HandleAdminEnroll(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var en EnrollmentNew
		if err := web.Decode(w, r, &en); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(en); err != nil {
			return weberr.BadRequest(fmt.Errorf("validating data: %w", err))
		}

		e, err := Enroll(ctx, db, en.UserID, en.CourseID)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, e, http.StatusCreated)
	}
}

func HandleRecordProgress(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		lessonID := web.Param(r, "id")
		if err := validate.CheckID(lessonID); err != nil {
			return weberr.BadRequest(fmt.Errorf("passed id is not valid: %w", err))
		}

		var pu ProgressUp
		if err := web.Decode(w, r, &pu); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		p, e, err := RecordProgress(ctx, db, clm.UserID, lessonID, pu.Completed)
		if err != nil {
			return fmt.Errorf("recording progress of lesson[%s] for user[%s]: %w", lessonID, clm.UserID, err)
		}

		resp := struct {
			Progress   Progress   `json:"progress"`
			Enrollment Enrollment `json:"enrollment"`
		}{p, e}

		return web.Respond(ctx, w, resp, http.StatusOK)
	}
}

func HandleListMine(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		ucs, err := UserCourses(ctx, db, clm.UserID)
		if err != nil {
			return fmt.Errorf("listing courses of user[%s]: %w", clm.UserID, err)
		}

		return web.Respond(ctx, w, ucs, http.StatusOK)
	}
}

func HandleListProgress(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		courseID := web.Param(r, "id")
		if err := validate.CheckID(courseID); err != nil {
			return weberr.BadRequest(fmt.Errorf("passed id is not valid: %w", err))
		}

		e, err := Lookup(ctx, db, clm.UserID, courseID)
		if err != nil {
			return err
		}

		ps, err := FetchProgress(ctx, db, e.ID)
		if err != nil {
			return fmt.Errorf("fetching progress: %w", err)
		}

		return web.Respond(ctx, w, ps, http.StatusOK)
	}
}

// HandleListMaterials serves lesson materials to enrolled users and to the
// staff owning the course.
func HandleListMaterials(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		lessonID := web.Param(r, "id")
		if err := validate.CheckID(lessonID); err != nil {
			return weberr.BadRequest(fmt.Errorf("passed id is not valid: %w", err))
		}

		l, err := course.FetchLesson(ctx, db, lessonID)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching lesson[%s]: %w", lessonID, err)
		}

		if err := canAccess(ctx, db, clm, l.CourseID); err != nil {
			return err
		}

		ms, err := course.FetchMaterials(ctx, db, l.ID)
		if err != nil {
			return fmt.Errorf("fetching materials: %w", err)
		}

		return web.Respond(ctx, w, ms, http.StatusOK)
	}
}

func canAccess(ctx context.Context, db *sqlx.DB, clm claims.Claims, courseID string) error {
	if clm.IsAdmin() {
		return nil
	}

	if clm.CanTeach() {
		c, err := course.Fetch(ctx, db, courseID)
		if err != nil {
			return fmt.Errorf("fetching course[%s]: %w", courseID, err)
		}
		if c.InstructorID == clm.UserID {
			return nil
		}
	}

	if _, err := Lookup(ctx, db, clm.UserID, courseID); err != nil {
		if weberr.IsKind(err, weberr.KindNotFound) {
			return weberr.Forbidden(ErrNotEnrolled)
		}
		return err
	}
	return nil
}
