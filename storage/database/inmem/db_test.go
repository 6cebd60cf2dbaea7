package inmemdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/asistente/core"
	"github.com/trezcool/asistente/core/activity"
	"github.com/trezcool/asistente/core/course"
	"github.com/trezcool/asistente/core/note"
	"github.com/trezcool/asistente/core/schedule"
	"github.com/trezcool/asistente/core/user"
)

func TestCascades(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	usrRepo := NewUserRepository(db)
	crsRepo := NewCourseRepository(db)
	actRepo := NewActivityRepository(db)
	noteRepo := NewNoteRepository(db)

	usr, err := usrRepo.CreateUser(ctx, user.User{Name: "Ana", Email: "ana@test.test"})
	require.NoError(t, err)
	crs, err := crsRepo.CreateCourse(ctx, course.Course{UserID: usr.ID, Name: "Algebra"})
	require.NoError(t, err)
	sub, err := crsRepo.CreateSubject(ctx, course.Subject{UserID: usr.ID, Name: "History"})
	require.NoError(t, err)
	_, err = crsRepo.SaveCourseSchedule(ctx, schedule.Schedule{UserID: usr.ID, CourseID: crs.ID, DayOfWeek: 1, StartTime: "08:00", EndTime: "10:00"})
	require.NoError(t, err)
	_, err = actRepo.CreateActivity(ctx, activity.Activity{UserID: usr.ID, CourseID: crs.ID, Title: "a"})
	require.NoError(t, err)
	_, err = actRepo.CreateActivity(ctx, activity.Activity{UserID: usr.ID, SubjectID: sub.ID, Title: "b"})
	require.NoError(t, err)
	_, err = noteRepo.CreateNote(ctx, note.Note{UserID: usr.ID, CourseID: crs.ID, Name: "n.pdf"})
	require.NoError(t, err)

	t.Run("delete course", func(t *testing.T) {
		require.NoError(t, crsRepo.DeleteCourse(ctx, usr.ID, crs.ID))

		acts, _ := actRepo.QueryActivities(ctx, usr.ID, activity.QueryFilter{})
		assert.Len(t, acts, 1)
		assert.Equal(t, sub.ID, acts[0].SubjectID)
		schs, _ := crsRepo.QuerySchedules(ctx, usr.ID)
		assert.Empty(t, schs)
		assert.Equal(t, course.ErrNotFound, crsRepo.DeleteCourse(ctx, usr.ID, crs.ID))
	})

	t.Run("delete user", func(t *testing.T) {
		require.NoError(t, usrRepo.DeleteUser(ctx, usr.ID))

		assert.Empty(t, db.subjects)
		assert.Empty(t, db.activities)
		assert.Empty(t, db.notes)
		assert.Empty(t, db.order)
		_, err := usrRepo.GetUser(ctx, user.GetFilter{ID: usr.ID})
		assert.True(t, core.IsNotFound(err))
	})
}

func TestCourseRepository_QueryCourses(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	repo := NewCourseRepository(db)

	for _, c := range []course.Course{
		{UserID: "u1", Name: "B", Credits: 3},
		{UserID: "u1", Name: "A", Credits: 3},
		{UserID: "u1", Name: "C", Credits: 5},
		{UserID: "u2", Name: "D", Credits: 1},
	} {
		_, err := repo.CreateCourse(ctx, c)
		require.NoError(t, err)
	}

	names := func(courses []course.Course) []string {
		out := make([]string, 0, len(courses))
		for _, c := range courses {
			out = append(out, c.Name)
		}
		return out
	}

	tests := []struct {
		name      string
		orderings []core.DBOrdering
		want      []string
	}{
		{name: "insertion order", want: []string{"B", "A", "C"}},
		{name: "name asc", orderings: []core.DBOrdering{{Field: "name", Ascending: true}}, want: []string{"A", "B", "C"}},
		{
			name:      "credits desc then name",
			orderings: []core.DBOrdering{{Field: "credits"}, {Field: "name", Ascending: true}},
			want:      []string{"C", "A", "B"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.QueryCourses(ctx, "u1", tt.orderings)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestCourseRepository_SaveCourseSchedule(t *testing.T) {
	ctx := context.Background()
	repo := NewCourseRepository(NewDB())

	crs, _ := repo.CreateCourse(ctx, course.Course{UserID: "u1", Name: "A"})
	first, err := repo.SaveCourseSchedule(ctx, schedule.Schedule{UserID: "u1", CourseID: crs.ID, DayOfWeek: 1, StartTime: "08:00", EndTime: "09:00"})
	require.NoError(t, err)
	_, err = repo.SaveCourseSchedule(ctx, schedule.Schedule{UserID: "u1", CourseID: crs.ID, DayOfWeek: 3, StartTime: "10:00", EndTime: "11:00"})
	require.NoError(t, err)

	got, err := repo.GetCourseByID(ctx, "u1", crs.ID)
	require.NoError(t, err)
	require.Len(t, got.Schedules, 1)
	assert.NotEqual(t, first.ID, got.Schedules[0].ID)
	assert.Equal(t, []int{3}, got.ClassDays)
}

func TestCourseRepository_SetGlobalPercentage(t *testing.T) {
	ctx := context.Background()
	repo := NewCourseRepository(NewDB())

	crs, _ := repo.CreateCourse(ctx, course.Course{UserID: "u1", Name: "A"})
	require.NoError(t, repo.SetGlobalPercentage(ctx, "u1", activity.CourseContainer(crs.ID), 42.5))

	got, _ := repo.GetCourseByID(ctx, "u1", crs.ID)
	assert.Equal(t, 42.5, got.GlobalPercentage)

	assert.Equal(t, course.ErrNotFound, repo.SetGlobalPercentage(ctx, "u2", activity.CourseContainer(crs.ID), 1))
	assert.Equal(t, course.ErrSubjectNotFound, repo.SetGlobalPercentage(ctx, "u1", activity.SubjectContainer("nope"), 1))
}
