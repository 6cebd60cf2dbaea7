package activity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/asistente/core"
	"github.com/trezcool/asistente/core/activity"
	inmemdb "github.com/trezcool/asistente/storage/database/inmem"
	"github.com/trezcool/asistente/tests"
)

type env struct {
	svc    activity.Service
	db     *inmemdb.DB
	userID string
}

func newEnv(t *testing.T) env {
	db := inmemdb.NewDB()
	usr := testutil.CreateUser(t, inmemdb.NewUserRepository(db), "Ana", "ana@test.test", "", true)
	validate, _ := testutil.NewValidator()
	return env{
		svc:    activity.NewService(inmemdb.NewActivityRepository(db), inmemdb.NewCourseRepository(db), validate, testutil.NewLogger()),
		db:     db,
		userID: usr.ID,
	}
}

func (e env) globalPercentage(t *testing.T, courseID string) float64 {
	crs, err := inmemdb.NewCourseRepository(e.db).GetCourseByID(context.Background(), e.userID, courseID)
	require.NoError(t, err)
	return crs.GlobalPercentage
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	crs := testutil.CreateCourse(t, inmemdb.NewCourseRepository(e.db), e.userID, "Algebra")

	tests := []struct {
		name      string
		in        activity.Input
		wantField string
		wantPct   float64
	}{
		{name: "no container", in: activity.Input{Title: "x"}, wantField: "courseId"},
		{name: "both containers", in: activity.Input{Title: "x", CourseID: crs.ID, SubjectID: "s"}, wantField: "courseId"},
		{name: "unknown course", in: activity.Input{Title: "x", CourseID: "nope"}, wantField: "courseId"},
		{name: "unknown subject", in: activity.Input{Title: "x", SubjectID: "nope"}, wantField: "subjectId"},
		{name: "missing title", in: activity.Input{CourseID: crs.ID}, wantField: "title"},
		{name: "bad status", in: activity.Input{Title: "x", CourseID: crs.ID, Status: "done"}, wantField: "status"},
		{
			name:    "pending does not contribute",
			in:      activity.Input{Title: "Quiz", CourseID: crs.ID, WeightPercent: 20, ScoreObtained: null.Float64From(10)},
			wantPct: 0,
		},
		{
			name:    "completed contributes",
			in:      activity.Input{Title: "Exam", CourseID: crs.ID, Status: activity.StatusCompleted, WeightPercent: 30, ScoreObtained: null.Float64From(8)},
			wantPct: 24,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			act, err := e.svc.Create(ctx, e.userID, tt.in)
			if tt.wantField != "" {
				require.Error(t, err)
				verr, ok := err.(*core.ValidationError)
				if ok {
					require.NotEmpty(t, verr.Fields)
					assert.Equal(t, tt.wantField, verr.Fields[0].Field)
				} else {
					// validator errors carry the JSON field name
					assert.Contains(t, err.Error(), tt.wantField)
				}
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, act.ID)
			assert.NotZero(t, act.DueDateMillis)
			assert.InDelta(t, tt.wantPct, e.globalPercentage(t, crs.ID), 1e-9)
		})
	}
}

func TestService_UpdateMovesContribution(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	repo := inmemdb.NewCourseRepository(e.db)
	a := testutil.CreateCourse(t, repo, e.userID, "A")
	b := testutil.CreateCourse(t, repo, e.userID, "B")

	in := activity.Input{Title: "Lab", CourseID: a.ID, Status: activity.StatusCompleted, WeightPercent: 50, ScoreObtained: null.Float64From(10)}
	act, err := e.svc.Create(ctx, e.userID, in)
	require.NoError(t, err)
	assert.InDelta(t, 50, e.globalPercentage(t, a.ID), 1e-9)

	in.CourseID = b.ID
	_, err = e.svc.Update(ctx, e.userID, act.ID, in)
	require.NoError(t, err)
	assert.InDelta(t, 0, e.globalPercentage(t, a.ID), 1e-9)
	assert.InDelta(t, 50, e.globalPercentage(t, b.ID), 1e-9)

	require.NoError(t, e.svc.Delete(ctx, e.userID, act.ID))
	assert.InDelta(t, 0, e.globalPercentage(t, b.ID), 1e-9)

	_, err = e.svc.Get(ctx, e.userID, act.ID)
	assert.True(t, core.IsNotFound(err))
}

func TestService_Query(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	crs := testutil.CreateCourse(t, inmemdb.NewCourseRepository(e.db), e.userID, "A")

	for _, in := range []activity.Input{
		{Title: "low", CourseID: crs.ID, Priority: activity.PriorityLow, DueDateMillis: 100},
		{Title: "high", CourseID: crs.ID, Priority: activity.PriorityHigh, DueDateMillis: 300},
		{Title: "done", CourseID: crs.ID, Status: activity.StatusCompleted, DueDateMillis: 200},
	} {
		_, err := e.svc.Create(ctx, e.userID, in)
		require.NoError(t, err)
	}

	titles := func(acts []activity.Activity) []string {
		out := make([]string, 0, len(acts))
		for _, a := range acts {
			out = append(out, a.Title)
		}
		return out
	}

	tests := []struct {
		name     string
		filter   activity.QueryFilter
		criteria activity.SortCriteria
		want     []string
	}{
		{name: "stored order", want: []string{"low", "high", "done"}},
		{name: "by priority", criteria: activity.SortCriteria{ByPriority: true}, want: []string{"high", "done", "low"}},
		{name: "by due date", criteria: activity.SortCriteria{ByDueDate: true}, want: []string{"low", "done", "high"}},
		{name: "pending only", filter: activity.QueryFilter{Status: activity.StatusPending}, want: []string{"low", "high"}},
		{name: "other course", filter: activity.QueryFilter{CourseID: "other"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.svc.Query(ctx, e.userID, tt.filter, tt.criteria)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestService_RecalculateMissingContainer(t *testing.T) {
	e := newEnv(t)
	pct, err := e.svc.Recalculate(context.Background(), e.userID, activity.CourseContainer("gone"))
	assert.NoError(t, err)
	assert.Zero(t, pct)
}

// flakyContainers fails to save percentages while down is set.
type flakyContainers struct {
	activity.Containers
	down bool
}

func (c *flakyContainers) SetGlobalPercentage(ctx context.Context, userID string, ct activity.Container, pct float64) error {
	if c.down {
		return errors.New("db down")
	}
	return c.Containers.SetGlobalPercentage(ctx, userID, ct, pct)
}

func TestService_WriteSurvivesRecalculateFailure(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.NewDB()
	usr := testutil.CreateUser(t, inmemdb.NewUserRepository(db), "Ana", "ana@test.test", "", true)
	validate, _ := testutil.NewValidator()
	containers := &flakyContainers{Containers: inmemdb.NewCourseRepository(db), down: true}
	svc := activity.NewService(inmemdb.NewActivityRepository(db), containers, validate, testutil.NewLogger())
	e := env{svc: svc, db: db, userID: usr.ID}
	crs := testutil.CreateCourse(t, inmemdb.NewCourseRepository(db), usr.ID, "Algebra")

	act, err := svc.Create(ctx, usr.ID, activity.Input{
		Title: "Examen", CourseID: crs.ID, Status: activity.StatusCompleted,
		WeightPercent: 40, ScoreObtained: null.Float64From(5),
	})
	require.NoError(t, err)
	require.NotEmpty(t, act.ID)

	stored, err := svc.Get(ctx, usr.ID, act.ID)
	require.NoError(t, err)
	assert.Equal(t, act, stored)
	assert.Zero(t, e.globalPercentage(t, crs.ID), "percentage is stale while the store is down")

	// recalculation is idempotent, so a later explicit run repairs the aggregate
	containers.down = false
	pct, err := svc.Recalculate(ctx, usr.ID, activity.CourseContainer(crs.ID))
	require.NoError(t, err)
	assert.InDelta(t, 20, pct, 1e-9)
	assert.InDelta(t, 20, e.globalPercentage(t, crs.ID), 1e-9)

	containers.down = true
	require.NoError(t, svc.Delete(ctx, usr.ID, act.ID))
	_, err = svc.Get(ctx, usr.ID, act.ID)
	assert.True(t, core.IsNotFound(err))
}
