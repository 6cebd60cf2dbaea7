package dashboard

import (
	"context"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/asistente/core/activity"
	"github.com/trezcool/asistente/core/course"
	"github.com/trezcool/asistente/core/schedule"
)

const listLimit = 5

// Summary is the home screen of a student.
type Summary struct {
	Weekday        int                 `json:"weekday"`
	TodayClasses   []schedule.Schedule `json:"todayClasses"`
	Pending        []activity.Activity `json:"pending"`
	RecentlyGraded []activity.Activity `json:"recentlyGraded"`
	Courses        []course.Course     `json:"courses"`
}

type (
	Service interface {
		Summary(ctx context.Context, userID string, now time.Time) (Summary, error)
	}

	service struct {
		courses    course.Service
		activities activity.Service
	}
)

var _ Service = (*service)(nil)

func NewService(courses course.Service, activities activity.Service) Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(courses, "courses"),
		vala.IsNotNil(activities, "activities"),
	).CheckAndPanic()

	return &service{courses: courses, activities: activities}
}

func (svc *service) Summary(ctx context.Context, userID string, now time.Time) (Summary, error) {
	schedules, err := svc.courses.Schedules(ctx, userID)
	if err != nil {
		return Summary{}, errors.Wrap(err, "querying schedules")
	}
	acts, err := svc.activities.Query(ctx, userID, activity.QueryFilter{}, activity.SortCriteria{})
	if err != nil {
		return Summary{}, errors.Wrap(err, "querying activities")
	}
	courses, err := svc.courses.Query(ctx, userID, nil)
	if err != nil {
		return Summary{}, errors.Wrap(err, "querying courses")
	}

	day := schedule.Weekday(now.Weekday())
	return Summary{
		Weekday:        day,
		TodayClasses:   schedule.ForDay(schedules, day),
		Pending:        activity.Pending(acts, listLimit),
		RecentlyGraded: activity.RecentlyGraded(acts, listLimit),
		Courses:        courses,
	}, nil
}
