package course

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gosimple/slug"
	"github.com/irsalhamdi/course-market/api/web"
	"github.com/irsalhamdi/course-market/api/weberr"
	"github.com/irsalhamdi/course-market/core/claims"
	"github.com/irsalhamdi/course-market/database"
	"github.com/irsalhamdi/course-market/validate"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := web.Param(r, "id")

		if err := validate.CheckID(courseID); err != nil {
			return weberr.BadRequest(fmt.Errorf("passed id is not valid: %w", err))
		}

		c, err := Fetch(ctx, db, courseID)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching course[%s]: %w", courseID, err)
		}

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}

func HandleShowBySlug(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		s := web.Param(r, "slug")

		c, err := FetchBySlug(ctx, db, s)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching course by slug[%s]: %w", s, err)
		}

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		f, err := parseFilter(r)
		if err != nil {
			return weberr.BadRequest(err)
		}

		cs, err := FetchAll(ctx, db, f)
		if err != nil {
			return fmt.Errorf("fetching courses: %w", err)
		}

		return web.Respond(ctx, w, cs, http.StatusOK)
	}
}

func parseFilter(r *http.Request) (Filter, error) {
	qs := r.URL.Query()

	f := Filter{
		CategoryID: qs.Get("category_id"),
		Level:      Level(qs.Get("level")),
	}

	if f.CategoryID != "" {
		if err := validate.CheckID(f.CategoryID); err != nil {
			return Filter{}, fmt.Errorf("category_id: %w", err)
		}
	}

	for key, dst := range map[string]**decimal.Decimal{"min_price": &f.MinPrice, "max_price": &f.MaxPrice} {
		v := qs.Get(key)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return Filter{}, fmt.Errorf("%s is not a number", key)
		}
		*dst = &d
	}

	if v := qs.Get("min_rating"); v != "" {
		mr, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Filter{}, errors.New("min_rating is not a number")
		}
		f.MinRating = &mr
	}

	return f, nil
}

func HandleListCategories(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		cs, err := FetchCategories(ctx, db)
		if err != nil {
			return fmt.Errorf("fetching categories: %w", err)
		}

		return web.Respond(ctx, w, cs, http.StatusOK)
	}
}

func HandleListModules(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := web.Param(r, "id")

		if err := validate.CheckID(courseID); err != nil {
			return weberr.BadRequest(fmt.Errorf("passed id is not valid: %w", err))
		}

		if _, err := Fetch(ctx, db, courseID); err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching course[%s]: %w", courseID, err)
		}

		ms, err := FetchModules(ctx, db, courseID)
		if err != nil {
			return fmt.Errorf("fetching modules: %w", err)
		}

		return web.Respond(ctx, w, ms, http.StatusOK)
	}
}

func HandleListLessons(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		moduleID := web.Param(r, "id")

		if err := validate.CheckID(moduleID); err != nil {
			return weberr.BadRequest(fmt.Errorf("passed id is not valid: %w", err))
		}

		if _, err := FetchModule(ctx, db, moduleID); err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching module[%s]: %w", moduleID, err)
		}

		ls, err := FetchLessons(ctx, db, moduleID)
		if err != nil {
			return fmt.Errorf("fetching lessons: %w", err)
		}

		return web.Respond(ctx, w, ls, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var cn CourseNew
		if err := web.Decode(w, r, &cn); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(cn); err != nil {
			return weberr.BadRequest(fmt.Errorf("validating data: %w", err))
		}

		instructorID := clm.UserID
		if clm.IsAdmin() && cn.InstructorID != "" {
			instructorID = cn.InstructorID
		}

		now := time.Now().UTC()
		c := Course{
			ID:           validate.GenerateID(),
			CategoryID:   cn.CategoryID,
			InstructorID: instructorID,
			Title:        cn.Title,
			Slug:         slug.Make(cn.Title),
			Subtitle:     cn.Subtitle,
			Description:  cn.Description,
			ImageURL:     cn.ImageURL,
			Level:        cn.Level,
			Duration:     cn.Duration,
			Price:        cn.Price.Round(2),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if cn.DiscountPrice != nil {
			c.DiscountPrice = decimal.NewNullDecimal(cn.DiscountPrice.Round(2))
		}

		if err := Create(ctx, db, c); err != nil {
			return storeError(err, "creating course")
		}

		return web.Respond(ctx, w, c, http.StatusCreated)
	}
}

func HandleUpdate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := web.Param(r, "id")

		c, err := owned(ctx, db, courseID)
		if err != nil {
			return err
		}

		var cu CourseUp
		if err := web.Decode(w, r, &cu); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(cu); err != nil {
			return weberr.BadRequest(fmt.Errorf("validating data: %w", err))
		}

		cu.Apply(&c)
		c.Slug = slug.Make(c.Title)
		c.Price = c.Price.Round(2)
		if c.DiscountPrice.Valid {
			c.DiscountPrice.Decimal = c.DiscountPrice.Decimal.Round(2)
		}
		c.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, c); err != nil {
			return storeError(err, "updating course")
		}

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}

func HandleDelete(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := web.Param(r, "id")

		if _, err := owned(ctx, db, courseID); err != nil {
			return err
		}

		if err := Delete(ctx, db, courseID); err != nil {
			if errors.Is(err, database.ErrDBReferenced) {
				return weberr.Conflict(errors.New("course has payment records and cannot be deleted"))
			}
			return storeError(err, "deleting course")
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleCreateCategory(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var cn CategoryNew
		if err := web.Decode(w, r, &cn); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(cn); err != nil {
			return weberr.BadRequest(fmt.Errorf("validating data: %w", err))
		}

		c := Category{
			ID:          validate.GenerateID(),
			Name:        cn.Name,
			Slug:        slug.Make(cn.Name),
			Description: cn.Description,
			CreatedAt:   time.Now().UTC(),
		}

		if err := CreateCategory(ctx, db, c); err != nil {
			return storeError(err, "creating category")
		}

		return web.Respond(ctx, w, c, http.StatusCreated)
	}
}

func HandleCreateModule(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var mn ModuleNew
		if err := web.Decode(w, r, &mn); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(mn); err != nil {
			return weberr.BadRequest(fmt.Errorf("validating data: %w", err))
		}

		if _, err := owned(ctx, db, mn.CourseID); err != nil {
			return err
		}

		m := Module{
			ID:          validate.GenerateID(),
			CourseID:    mn.CourseID,
			Title:       mn.Title,
			Description: mn.Description,
			Order:       mn.Order,
			Lessons:     []Lesson{},
		}

		if err := CreateModule(ctx, db, m); err != nil {
			return storeError(err, "creating module")
		}

		return web.Respond(ctx, w, m, http.StatusCreated)
	}
}

func HandleCreateLesson(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var ln LessonNew
		if err := web.Decode(w, r, &ln); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(ln); err != nil {
			return weberr.BadRequest(fmt.Errorf("validating data: %w", err))
		}

		m, err := FetchModule(ctx, db, ln.ModuleID)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching module[%s]: %w", ln.ModuleID, err)
		}

		if _, err := owned(ctx, db, m.CourseID); err != nil {
			return err
		}

		l := Lesson{
			ID:       validate.GenerateID(),
			ModuleID: m.ID,
			CourseID: m.CourseID,
			Title:    ln.Title,
			Content:  ln.Content,
			VideoURL: ln.VideoURL,
			Duration: ln.Duration,
			Order:    ln.Order,
		}

		if err := CreateLesson(ctx, db, l); err != nil {
			return storeError(err, "creating lesson")
		}

		return web.Respond(ctx, w, l, http.StatusCreated)
	}
}

func HandleCreateMaterial(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var mn MaterialNew
		if err := web.Decode(w, r, &mn); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(mn); err != nil {
			return weberr.BadRequest(fmt.Errorf("validating data: %w", err))
		}

		l, err := FetchLesson(ctx, db, mn.LessonID)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching lesson[%s]: %w", mn.LessonID, err)
		}

		if _, err := owned(ctx, db, l.CourseID); err != nil {
			return err
		}

		m := Material{
			ID:       validate.GenerateID(),
			LessonID: l.ID,
			Title:    mn.Title,
			Type:     mn.Type,
			URL:      mn.URL,
		}
		if m.Type == "" {
			m.Type = MaterialTypeOf(mn.URL)
		}

		if err := CreateMaterial(ctx, db, m); err != nil {
			return storeError(err, "creating material")
		}

		return web.Respond(ctx, w, m, http.StatusCreated)
	}
}

// owned fetches the course and checks that the caller may edit it: admins
// edit everything, instructors only their own courses.
func owned(ctx context.Context, db *sqlx.DB, courseID string) (Course, error) {
	clm, err := claims.Get(ctx)
	if err != nil {
		return Course{}, weberr.NotAuthorized(errors.New("user not authenticated"))
	}

	if err := validate.CheckID(courseID); err != nil {
		return Course{}, weberr.BadRequest(fmt.Errorf("passed id is not valid: %w", err))
	}

	c, err := Fetch(ctx, db, courseID)
	if err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return Course{}, weberr.NotFound(err)
		}
		return Course{}, fmt.Errorf("fetching course[%s]: %w", courseID, err)
	}

	if !clm.IsAdmin() && c.InstructorID != clm.UserID {
		return Course{}, weberr.Forbidden(errors.New("only the course instructor can change this course"))
	}

	return c, nil
}

func storeError(err error, action string) error {
	switch {
	case errors.Is(err, database.ErrDBDuplicatedEntry):
		return weberr.Conflict(errors.New("an entry with the same title already exists"))
	case errors.Is(err, database.ErrDBReferenced):
		return weberr.Invalid(errors.New("a referenced entity does not exist"))
	case errors.Is(err, database.ErrDBNotFound):
		return weberr.NotFound(err)
	}
	return fmt.Errorf("%s: %w", action, err)
}
