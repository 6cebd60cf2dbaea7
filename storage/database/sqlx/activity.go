package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/asistente/core/activity"
)

type activityRow struct {
	ID            string       `db:"id"`
	UserID        string       `db:"user_id"`
	CourseID      null.String  `db:"course_id"`
	SubjectID     null.String  `db:"subject_id"`
	Title         string       `db:"title"`
	Description   string       `db:"description"`
	Type          string       `db:"type"`
	Priority      string       `db:"priority"`
	Status        string       `db:"status"`
	DueDateMillis int64        `db:"due_date_millis"`
	WeightPercent float64      `db:"weight_percent"`
	ScoreObtained null.Float64 `db:"score_obtained"`
	CreatedAt     int64        `db:"created_at"`
	UpdatedAt     int64        `db:"updated_at"`
}

const activityColumns = `id, user_id, course_id, subject_id, title, description, type, priority, status,
	due_date_millis, weight_percent, score_obtained, created_at, updated_at`

type activityRepository struct {
	db *sqlx.DB
}

var _ activity.Repository = (*activityRepository)(nil) // interface compliance check

func NewActivityRepository(db *sqlx.DB) *activityRepository {
	return &activityRepository{db: db}
}

func (repo activityRepository) boil(act activity.Activity) activityRow {
	return activityRow{
		ID:            act.ID,
		UserID:        act.UserID,
		CourseID:      null.NewString(act.CourseID, act.CourseID != ""),
		SubjectID:     null.NewString(act.SubjectID, act.SubjectID != ""),
		Title:         act.Title,
		Description:   act.Description,
		Type:          string(act.Type),
		Priority:      string(act.Priority),
		Status:        string(act.Status),
		DueDateMillis: act.DueDateMillis,
		WeightPercent: act.WeightPercent,
		ScoreObtained: act.ScoreObtained,
		CreatedAt:     act.CreatedAt,
		UpdatedAt:     act.UpdatedAt,
	}
}

func (repo activityRepository) unboil(row activityRow) activity.Activity {
	return activity.Activity{
		ID:            row.ID,
		UserID:        row.UserID,
		CourseID:      row.CourseID.String,
		SubjectID:     row.SubjectID.String,
		Title:         row.Title,
		Description:   row.Description,
		Type:          activity.Type(row.Type),
		Priority:      activity.Priority(row.Priority),
		Status:        activity.Status(row.Status),
		DueDateMillis: row.DueDateMillis,
		WeightPercent: row.WeightPercent,
		ScoreObtained: row.ScoreObtained,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

// trapNoRowsErr maps psql "no rows" err to activity.ErrNotFound
func (repo activityRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return activity.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo activityRepository) CreateActivity(ctx context.Context, act activity.Activity) (activity.Activity, error) {
	act.ID = uuid.New().String()
	q := `INSERT INTO activity (` + activityColumns + `)
		VALUES (:id, :user_id, :course_id, :subject_id, :title, :description, :type, :priority, :status,
			:due_date_millis, :weight_percent, :score_obtained, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, repo.boil(act)); err != nil {
		return activity.Activity{}, errors.Wrap(err, "inserting activity")
	}
	return act, nil
}

func (repo activityRepository) GetActivityByID(ctx context.Context, userID, id string) (activity.Activity, error) {
	if !validID(id) {
		return activity.Activity{}, activity.ErrNotFound
	}
	var row activityRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+activityColumns+` FROM activity WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return activity.Activity{}, repo.trapNoRowsErr(err, "getting activity")
	}
	return repo.unboil(row), nil
}

// QueryActivities returns activities in insertion order; sorting is left to activity.Apply.
func (repo activityRepository) QueryActivities(ctx context.Context, userID string, filter activity.QueryFilter) ([]activity.Activity, error) {
	where := []string{"user_id = $1"}
	args := []interface{}{userID}
	addCond := func(col string, val interface{}) {
		args = append(args, val)
		where = append(where, col+" = $"+strconv.Itoa(len(args)))
	}

	if filter.CourseID != "" {
		if !validID(filter.CourseID) {
			return []activity.Activity{}, nil
		}
		addCond("course_id", filter.CourseID)
	}
	if filter.SubjectID != "" {
		if !validID(filter.SubjectID) {
			return []activity.Activity{}, nil
		}
		addCond("subject_id", filter.SubjectID)
	}
	if filter.Status != "" {
		addCond("status", string(filter.Status))
	}

	var rows []activityRow
	q := `SELECT ` + activityColumns + ` FROM activity WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_at, id`
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting activities")
	}
	acts := make([]activity.Activity, 0, len(rows))
	for _, r := range rows {
		acts = append(acts, repo.unboil(r))
	}
	return acts, nil
}

func (repo activityRepository) UpdateActivity(ctx context.Context, act activity.Activity) (activity.Activity, error) {
	q := `UPDATE activity SET course_id = :course_id, subject_id = :subject_id, title = :title, description = :description,
		type = :type, priority = :priority, status = :status, due_date_millis = :due_date_millis,
		weight_percent = :weight_percent, score_obtained = :score_obtained, updated_at = :updated_at
		WHERE id = :id AND user_id = :user_id`
	res, err := repo.db.NamedExecContext(ctx, q, repo.boil(act))
	if err != nil {
		return activity.Activity{}, errors.Wrap(err, "updating activity")
	}
	if err := checkAffected(res, activity.ErrNotFound); err != nil {
		return activity.Activity{}, err
	}
	return act, nil
}

func (repo activityRepository) DeleteActivity(ctx context.Context, userID, id string) error {
	if !validID(id) {
		return activity.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM activity WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return errors.Wrap(err, "deleting activity")
	}
	return checkAffected(res, activity.ErrNotFound)
}
