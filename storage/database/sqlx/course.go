package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/asistente/core"
	"github.com/trezcool/asistente/core/activity"
	"github.com/trezcool/asistente/core/course"
	"github.com/trezcool/asistente/core/schedule"
)

var courseOrderColumns = map[string]string{
	"name":             "name",
	"code":             "code",
	"credits":          "credits",
	"semester":         "semester",
	"globalPercentage": "global_percentage",
	"createdAt":        "created_at",
	"updatedAt":        "updated_at",
}

type (
	courseRow struct {
		ID               string  `db:"id"`
		UserID           string  `db:"user_id"`
		Name             string  `db:"name"`
		Code             string  `db:"code"`
		Professor        string  `db:"professor"`
		Location         string  `db:"location"`
		Color            int32   `db:"color"`
		Credits          int     `db:"credits"`
		Semester         string  `db:"semester"`
		GlobalPercentage float64 `db:"global_percentage"`
		CreatedAt        int64   `db:"created_at"`
		UpdatedAt        int64   `db:"updated_at"`
	}

	scheduleRow struct {
		ID         string `db:"id"`
		UserID     string `db:"user_id"`
		CourseID   string `db:"course_id"`
		CourseName string `db:"course_name"`
		DayOfWeek  int    `db:"day_of_week"`
		StartTime  string `db:"start_time"`
		EndTime    string `db:"end_time"`
		Room       string `db:"room"`
		Professor  string `db:"professor"`
		Color      int32  `db:"color"`
		CreatedAt  int64  `db:"created_at"`
		UpdatedAt  int64  `db:"updated_at"`
	}

	subjectRow struct {
		ID               string  `db:"id"`
		UserID           string  `db:"user_id"`
		Name             string  `db:"name"`
		GlobalPercentage float64 `db:"global_percentage"`
		CreatedAt        int64   `db:"created_at"`
		UpdatedAt        int64   `db:"updated_at"`
	}
)

const (
	courseColumns   = `id, user_id, name, code, professor, location, color, credits, semester, global_percentage, created_at, updated_at`
	scheduleColumns = `id, user_id, course_id, course_name, day_of_week, start_time, end_time, room, professor, color, created_at, updated_at`
	subjectColumns  = `id, user_id, name, global_percentage, created_at, updated_at`
)

type courseRepository struct {
	db *sqlx.DB
}

var (
	_ course.Repository   = (*courseRepository)(nil) // interface compliance check
	_ activity.Containers = (*courseRepository)(nil)
)

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo courseRepository) boil(crs course.Course) courseRow {
	return courseRow{
		ID:               crs.ID,
		UserID:           crs.UserID,
		Name:             crs.Name,
		Code:             crs.Code,
		Professor:        crs.Professor,
		Location:         crs.Location,
		Color:            crs.Color,
		Credits:          crs.Credits,
		Semester:         crs.Semester,
		GlobalPercentage: crs.GlobalPercentage,
		CreatedAt:        crs.CreatedAt,
		UpdatedAt:        crs.UpdatedAt,
	}
}

func (repo courseRepository) unboil(row courseRow, schedules []schedule.Schedule) course.Course {
	crs := course.Course{
		ID:               row.ID,
		UserID:           row.UserID,
		Name:             row.Name,
		Code:             row.Code,
		Professor:        row.Professor,
		Location:         row.Location,
		Color:            row.Color,
		Credits:          row.Credits,
		Semester:         row.Semester,
		GlobalPercentage: row.GlobalPercentage,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
	crs.SetSchedules(schedules)
	return crs
}

// trapNoRowsErr maps psql "no rows" err to notFound
func (repo courseRepository) trapNoRowsErr(err error, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	crs.ID = uuid.New().String()
	q := `INSERT INTO course (` + courseColumns + `)
		VALUES (:id, :user_id, :name, :code, :professor, :location, :color, :credits, :semester, :global_percentage, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, repo.boil(crs)); err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	crs.SetSchedules(nil)
	return crs, nil
}

func (repo courseRepository) GetCourseByID(ctx context.Context, userID, id string) (course.Course, error) {
	if !validID(id) {
		return course.Course{}, course.ErrNotFound
	}
	var row courseRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+courseColumns+` FROM course WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return course.Course{}, repo.trapNoRowsErr(err, course.ErrNotFound, "getting course")
	}

	var schRows []scheduleRow
	err = repo.db.SelectContext(ctx, &schRows,
		`SELECT `+scheduleColumns+` FROM schedule WHERE course_id = $1 ORDER BY day_of_week, start_time`, id)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "selecting course schedules")
	}
	return repo.unboil(row, unboilSchedules(schRows)), nil
}

func orderByClause(orderings []core.DBOrdering) string {
	clauses := make([]string, 0, len(orderings)+1)
	for _, o := range orderings {
		if col, ok := courseOrderColumns[o.Field]; ok {
			clauses = append(clauses, core.DBOrdering{Field: col, Ascending: o.Ascending}.String())
		}
	}
	clauses = append(clauses, "created_at ASC")
	return " ORDER BY " + strings.Join(clauses, ", ")
}

func (repo courseRepository) QueryCourses(ctx context.Context, userID string, orderings []core.DBOrdering) ([]course.Course, error) {
	var rows []courseRow
	q := `SELECT ` + courseColumns + ` FROM course WHERE user_id = $1` + orderByClause(orderings)
	if err := repo.db.SelectContext(ctx, &rows, q, userID); err != nil {
		return nil, errors.Wrap(err, "selecting courses")
	}

	schedules, err := repo.QuerySchedules(ctx, userID)
	if err != nil {
		return nil, err
	}
	byCourse := make(map[string][]schedule.Schedule)
	for _, s := range schedules {
		byCourse[s.CourseID] = append(byCourse[s.CourseID], s)
	}

	courses := make([]course.Course, 0, len(rows))
	for _, r := range rows {
		courses = append(courses, repo.unboil(r, byCourse[r.ID]))
	}
	return courses, nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	q := `UPDATE course SET name = :name, code = :code, professor = :professor, location = :location, color = :color,
		credits = :credits, semester = :semester, updated_at = :updated_at
		WHERE id = :id AND user_id = :user_id`
	res, err := repo.db.NamedExecContext(ctx, q, repo.boil(crs))
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if err := checkAffected(res, course.ErrNotFound); err != nil {
		return course.Course{}, err
	}
	return crs, nil
}

// DeleteCourse relies on ON DELETE CASCADE for schedules and activities.
func (repo courseRepository) DeleteCourse(ctx context.Context, userID, id string) error {
	if !validID(id) {
		return course.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM course WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return checkAffected(res, course.ErrNotFound)
}

func (repo courseRepository) SaveCourseSchedule(ctx context.Context, sch schedule.Schedule) (schedule.Schedule, error) {
	if sch.ID == "" {
		sch.ID = uuid.New().String()
	}
	row := scheduleRow(sch)

	err := core.WithTx(ctx, repo.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM schedule WHERE course_id = $1 AND user_id = $2`, sch.CourseID, sch.UserID); err != nil {
			return errors.Wrap(err, "clearing course schedules")
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO schedule (`+scheduleColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			row.ID, row.UserID, row.CourseID, row.CourseName, row.DayOfWeek, row.StartTime, row.EndTime,
			row.Room, row.Professor, row.Color, row.CreatedAt, row.UpdatedAt,
		)
		return errors.Wrap(err, "inserting schedule")
	})
	if err != nil {
		return schedule.Schedule{}, err
	}
	return sch, nil
}

func (repo courseRepository) DeleteCourseSchedules(ctx context.Context, userID, courseID string) error {
	if !validID(courseID) {
		return nil
	}
	_, err := repo.db.ExecContext(ctx, `DELETE FROM schedule WHERE course_id = $1 AND user_id = $2`, courseID, userID)
	return errors.Wrap(err, "deleting course schedules")
}

func (repo courseRepository) QuerySchedules(ctx context.Context, userID string) ([]schedule.Schedule, error) {
	var rows []scheduleRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT `+scheduleColumns+` FROM schedule WHERE user_id = $1 ORDER BY day_of_week, start_time`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting schedules")
	}
	return unboilSchedules(rows), nil
}

func unboilSchedules(rows []scheduleRow) []schedule.Schedule {
	schedules := make([]schedule.Schedule, 0, len(rows))
	for _, r := range rows {
		schedules = append(schedules, schedule.Schedule(r))
	}
	return schedules
}

func (repo courseRepository) CreateSubject(ctx context.Context, sub course.Subject) (course.Subject, error) {
	sub.ID = uuid.New().String()
	q := `INSERT INTO subject (` + subjectColumns + `)
		VALUES (:id, :user_id, :name, :global_percentage, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, subjectRow(sub)); err != nil {
		return course.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return sub, nil
}

func (repo courseRepository) GetSubjectByID(ctx context.Context, userID, id string) (course.Subject, error) {
	if !validID(id) {
		return course.Subject{}, course.ErrSubjectNotFound
	}
	var row subjectRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+subjectColumns+` FROM subject WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return course.Subject{}, repo.trapNoRowsErr(err, course.ErrSubjectNotFound, "getting subject")
	}
	return course.Subject(row), nil
}

func (repo courseRepository) QuerySubjects(ctx context.Context, userID string) ([]course.Subject, error) {
	var rows []subjectRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT `+subjectColumns+` FROM subject WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting subjects")
	}
	subjects := make([]course.Subject, 0, len(rows))
	for _, r := range rows {
		subjects = append(subjects, course.Subject(r))
	}
	return subjects, nil
}

// DeleteSubject relies on ON DELETE CASCADE for activities.
func (repo courseRepository) DeleteSubject(ctx context.Context, userID, id string) error {
	if !validID(id) {
		return course.ErrSubjectNotFound
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM subject WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return checkAffected(res, course.ErrSubjectNotFound)
}

func containerTable(c activity.Container) string {
	if c.Kind == activity.KindSubject {
		return "subject"
	}
	return "course"
}

func (repo courseRepository) ContainerExists(ctx context.Context, userID string, c activity.Container) (bool, error) {
	if !validID(c.ID) {
		return false, nil
	}
	var exists bool
	q := `SELECT EXISTS(SELECT 1 FROM ` + containerTable(c) + ` WHERE id = $1 AND user_id = $2)`
	err := repo.db.GetContext(ctx, &exists, q, c.ID, userID)
	return exists, errors.Wrap(err, "checking container")
}

func (repo courseRepository) SetGlobalPercentage(ctx context.Context, userID string, c activity.Container, pct float64) error {
	notFound := course.ErrNotFound
	if c.Kind == activity.KindSubject {
		notFound = course.ErrSubjectNotFound
	}
	if !validID(c.ID) {
		return notFound
	}
	q := `UPDATE ` + containerTable(c) + ` SET global_percentage = $1, updated_at = $2 WHERE id = $3 AND user_id = $4`
	res, err := repo.db.ExecContext(ctx, q, pct, core.NowMillis(), c.ID, userID)
	if err != nil {
		return errors.Wrap(err, "updating global percentage")
	}
	return checkAffected(res, notFound)
}
