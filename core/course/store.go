package course

import (
	"context"
	"fmt"
	"strings"

	"github.com/irsalhamdi/course-market/database"
	"github.com/jmoiron/sqlx"
)

// selectCourses reads the derived fields from reviews and enrollments on
// every query so they never go stale.
const selectCourses = `
	SELECT
		c.course_id, c.category_id, c.instructor_id, c.title, c.slug, c.subtitle,
		c.description, c.image_url, c.level, c.duration, c.price, c.discount_price,
		c.created_at, c.updated_at,
		CAST(COALESCE((SELECT AVG(r.rating) FROM reviews r WHERE r.course_id = c.course_id), 0) AS float8) AS average_rating,
		(SELECT COUNT(*) FROM enrollments e WHERE e.course_id = c.course_id) AS student_count
	FROM courses c`

func Create(ctx context.Context, db sqlx.ExtContext, c Course) error {
	const q = `
	INSERT INTO courses
		(course_id, category_id, instructor_id, title, slug, subtitle, description,
		 image_url, level, duration, price, discount_price, created_at, updated_at)
	VALUES
		(:course_id, :category_id, :instructor_id, :title, :slug, :subtitle, :description,
		 :image_url, :level, :duration, :price, :discount_price, :created_at, :updated_at)`

	if err := database.NamedExecContext(ctx, db, q, c); err != nil {
		return fmt.Errorf("inserting course: %w", err)
	}
	return nil
}

func Update(ctx context.Context, db sqlx.ExtContext, c Course) error {
	const q = `
	UPDATE courses SET
		category_id = :category_id,
		title = :title,
		slug = :slug,
		subtitle = :subtitle,
		description = :description,
		image_url = :image_url,
		level = :level,
		duration = :duration,
		price = :price,
		discount_price = :discount_price,
		updated_at = :updated_at
	WHERE course_id = :course_id`

	if err := database.NamedExecAffected(ctx, db, q, c); err != nil {
		return fmt.Errorf("updating course[%s]: %w", c.ID, err)
	}
	return nil
}

// Delete removes the course. Modules, lessons and materials go with it
// through ON DELETE CASCADE.
func Delete(ctx context.Context, db sqlx.ExtContext, id string) error {
	const q = `DELETE FROM courses WHERE course_id = :course_id`

	in := struct {
		ID string `db:"course_id"`
	}{id}

	if err := database.NamedExecAffected(ctx, db, q, in); err != nil {
		return fmt.Errorf("deleting course[%s]: %w", id, err)
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Course, error) {
	q := selectCourses + ` WHERE c.course_id = :course_id`

	in := struct {
		ID string `db:"course_id"`
	}{id}

	var c Course
	if err := database.NamedQueryStruct(ctx, db, q, in, &c); err != nil {
		return Course{}, fmt.Errorf("selecting course[%s]: %w", id, err)
	}
	return c, nil
}

func FetchBySlug(ctx context.Context, db sqlx.ExtContext, slug string) (Course, error) {
	q := selectCourses + ` WHERE c.slug = :slug`

	in := struct {
		Slug string `db:"slug"`
	}{slug}

	var c Course
	if err := database.NamedQueryStruct(ctx, db, q, in, &c); err != nil {
		return Course{}, fmt.Errorf("selecting course by slug[%s]: %w", slug, err)
	}
	return c, nil
}

func FetchAll(ctx context.Context, db sqlx.ExtContext, f Filter) ([]Course, error) {
	var (
		where []string
		in    = map[string]interface{}{}
	)

	if f.CategoryID != "" {
		where = append(where, "c.category_id = :category_id")
		in["category_id"] = f.CategoryID
	}
	if f.Level != "" {
		where = append(where, "c.level = :level")
		in["level"] = f.Level
	}
	if f.MinPrice != nil {
		where = append(where, "COALESCE(c.discount_price, c.price) >= :min_price")
		in["min_price"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		where = append(where, "COALESCE(c.discount_price, c.price) <= :max_price")
		in["max_price"] = *f.MaxPrice
	}

	q := `SELECT * FROM (` + selectCourses + `) AS c`
	if f.MinRating != nil {
		where = append(where, "c.average_rating >= :min_rating")
		in["min_rating"] = *f.MinRating
	}
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY c.created_at DESC"

	var cs []Course
	if err := database.NamedQuerySlice(ctx, db, q, in, &cs); err != nil {
		return nil, fmt.Errorf("selecting courses: %w", err)
	}
	return cs, nil
}

func CreateCategory(ctx context.Context, db sqlx.ExtContext, c Category) error {
	const q = `
	INSERT INTO categories (category_id, name, slug, description, created_at)
	VALUES (:category_id, :name, :slug, :description, :created_at)`

	if err := database.NamedExecContext(ctx, db, q, c); err != nil {
		return fmt.Errorf("inserting category: %w", err)
	}
	return nil
}

func FetchCategories(ctx context.Context, db sqlx.ExtContext) ([]Category, error) {
	const q = `
	SELECT category_id, name, slug, description, created_at
	FROM categories
	ORDER BY name`

	var cs []Category
	if err := database.NamedQuerySlice(ctx, db, q, struct{}{}, &cs); err != nil {
		return nil, fmt.Errorf("selecting categories: %w", err)
	}
	return cs, nil
}

func CreateModule(ctx context.Context, db sqlx.ExtContext, m Module) error {
	const q = `
	INSERT INTO modules (module_id, course_id, title, description, sort_order)
	VALUES (:module_id, :course_id, :title, :description, :sort_order)`

	if err := database.NamedExecContext(ctx, db, q, m); err != nil {
		return fmt.Errorf("inserting module: %w", err)
	}
	return nil
}

func FetchModule(ctx context.Context, db sqlx.ExtContext, id string) (Module, error) {
	const q = `
	SELECT module_id, course_id, title, description, sort_order
	FROM modules
	WHERE module_id = :module_id`

	in := struct {
		ID string `db:"module_id"`
	}{id}

	var m Module
	if err := database.NamedQueryStruct(ctx, db, q, in, &m); err != nil {
		return Module{}, fmt.Errorf("selecting module[%s]: %w", id, err)
	}
	return m, nil
}

// FetchModules returns the modules of a course by their explicit order,
// each with its ordered lessons.
func FetchModules(ctx context.Context, db sqlx.ExtContext, courseID string) ([]Module, error) {
	const q = `
	SELECT module_id, course_id, title, description, sort_order
	FROM modules
	WHERE course_id = :course_id
	ORDER BY sort_order, module_id`

	in := struct {
		CourseID string `db:"course_id"`
	}{courseID}

	var ms []Module
	if err := database.NamedQuerySlice(ctx, db, q, in, &ms); err != nil {
		return nil, fmt.Errorf("selecting modules of course[%s]: %w", courseID, err)
	}

	ls, err := FetchCourseLessons(ctx, db, courseID)
	if err != nil {
		return nil, err
	}

	byModule := make(map[string][]Lesson, len(ms))
	for _, l := range ls {
		byModule[l.ModuleID] = append(byModule[l.ModuleID], l)
	}
	for i := range ms {
		ms[i].Lessons = byModule[ms[i].ID]
		if ms[i].Lessons == nil {
			ms[i].Lessons = []Lesson{}
		}
	}
	return ms, nil
}

const selectLessons = `
	SELECT
		l.lesson_id, l.module_id, m.course_id, l.title, l.content,
		l.video_url, l.duration, l.sort_order
	FROM lessons l
	JOIN modules m ON m.module_id = l.module_id`

func CreateLesson(ctx context.Context, db sqlx.ExtContext, l Lesson) error {
	const q = `
	INSERT INTO lessons (lesson_id, module_id, title, content, video_url, duration, sort_order)
	VALUES (:lesson_id, :module_id, :title, :content, :video_url, :duration, :sort_order)`

	if err := database.NamedExecContext(ctx, db, q, l); err != nil {
		return fmt.Errorf("inserting lesson: %w", err)
	}
	return nil
}

func FetchLesson(ctx context.Context, db sqlx.ExtContext, id string) (Lesson, error) {
	q := selectLessons + ` WHERE l.lesson_id = :lesson_id`

	in := struct {
		ID string `db:"lesson_id"`
	}{id}

	var l Lesson
	if err := database.NamedQueryStruct(ctx, db, q, in, &l); err != nil {
		return Lesson{}, fmt.Errorf("selecting lesson[%s]: %w", id, err)
	}
	return l, nil
}

func FetchLessons(ctx context.Context, db sqlx.ExtContext, moduleID string) ([]Lesson, error) {
	q := selectLessons + ` WHERE l.module_id = :module_id ORDER BY l.sort_order, l.lesson_id`

	in := struct {
		ModuleID string `db:"module_id"`
	}{moduleID}

	var ls []Lesson
	if err := database.NamedQuerySlice(ctx, db, q, in, &ls); err != nil {
		return nil, fmt.Errorf("selecting lessons of module[%s]: %w", moduleID, err)
	}
	return ls, nil
}

// FetchCourseLessons returns every lesson of every module of the course,
// ordered by module then lesson.
func FetchCourseLessons(ctx context.Context, db sqlx.ExtContext, courseID string) ([]Lesson, error) {
	q := selectLessons + ` WHERE m.course_id = :course_id ORDER BY m.sort_order, m.module_id, l.sort_order, l.lesson_id`

	in := struct {
		CourseID string `db:"course_id"`
	}{courseID}

	var ls []Lesson
	if err := database.NamedQuerySlice(ctx, db, q, in, &ls); err != nil {
		return nil, fmt.Errorf("selecting lessons of course[%s]: %w", courseID, err)
	}
	return ls, nil
}

func CreateMaterial(ctx context.Context, db sqlx.ExtContext, m Material) error {
	const q = `
	INSERT INTO materials (material_id, lesson_id, title, type, url)
	VALUES (:material_id, :lesson_id, :title, :type, :url)`

	if err := database.NamedExecContext(ctx, db, q, m); err != nil {
		return fmt.Errorf("inserting material: %w", err)
	}
	return nil
}

func FetchMaterials(ctx context.Context, db sqlx.ExtContext, lessonID string) ([]Material, error) {
	const q = `
	SELECT material_id, lesson_id, title, type, url
	FROM materials
	WHERE lesson_id = :lesson_id
	ORDER BY title`

	in := struct {
		LessonID string `db:"lesson_id"`
	}{lessonID}

	var ms []Material
	if err := database.NamedQuerySlice(ctx, db, q, in, &ms); err != nil {
		return nil, fmt.Errorf("selecting materials of lesson[%s]: %w", lessonID, err)
	}
	return ms, nil
}
