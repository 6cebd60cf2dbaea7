package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/asistente/core"
	"github.com/trezcool/asistente/core/activity"
	"github.com/trezcool/asistente/core/course"
	"github.com/trezcool/asistente/core/schedule"
)

type courseRepository struct {
	db *DB
}

var (
	_ course.Repository   = (*courseRepository)(nil) // interface compliance check
	_ activity.Containers = (*courseRepository)(nil)
)

func NewCourseRepository(db *DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) schedulesOf(userID, courseID string) []schedule.Schedule {
	out := make([]schedule.Schedule, 0)
	for _, s := range repo.querySchedules(userID) {
		if s.CourseID == courseID {
			out = append(out, s)
		}
	}
	return out
}

func (repo *courseRepository) querySchedules(userID string) []schedule.Schedule {
	ids := make([]string, 0)
	for id, s := range repo.db.schedules {
		if s.UserID == userID {
			ids = append(ids, id)
		}
	}
	out := make([]schedule.Schedule, 0, len(ids))
	for _, id := range repo.db.sortedIDs(ids) {
		out = append(out, repo.db.schedules[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

func (repo *courseRepository) CreateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	crs.ID = repo.db.newID()
	crs.SetSchedules(nil)
	repo.db.courses[crs.ID] = crs
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(_ context.Context, userID, id string) (course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	crs, ok := repo.db.courses[id]
	if !ok || crs.UserID != userID {
		return course.Course{}, course.ErrNotFound
	}
	crs.SetSchedules(repo.schedulesOf(userID, id))
	return crs, nil
}

// compareCourses returns -1, 0 or 1 comparing a and b on the given JSON field.
func compareCourses(a, b course.Course, field string) int {
	cmpStr := func(x, y string) int { return strings.Compare(x, y) }
	cmpNum := func(x, y float64) int {
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	switch field {
	case "name":
		return cmpStr(a.Name, b.Name)
	case "code":
		return cmpStr(a.Code, b.Code)
	case "semester":
		return cmpStr(a.Semester, b.Semester)
	case "credits":
		return cmpNum(float64(a.Credits), float64(b.Credits))
	case "globalPercentage":
		return cmpNum(a.GlobalPercentage, b.GlobalPercentage)
	case "createdAt":
		return cmpNum(float64(a.CreatedAt), float64(b.CreatedAt))
	case "updatedAt":
		return cmpNum(float64(a.UpdatedAt), float64(b.UpdatedAt))
	}
	return 0
}

func (repo *courseRepository) QueryCourses(_ context.Context, userID string, orderings []core.DBOrdering) ([]course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	ids := make([]string, 0)
	for id, crs := range repo.db.courses {
		if crs.UserID == userID {
			ids = append(ids, id)
		}
	}
	courses := make([]course.Course, 0, len(ids))
	for _, id := range repo.db.sortedIDs(ids) {
		crs := repo.db.courses[id]
		crs.SetSchedules(repo.schedulesOf(userID, id))
		courses = append(courses, crs)
	}

	sort.SliceStable(courses, func(i, j int) bool {
		for _, o := range orderings {
			c := compareCourses(courses[i], courses[j], o.Field)
			if c == 0 {
				continue
			}
			if o.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.courses[crs.ID]
	if !ok || orig.UserID != crs.UserID {
		return course.Course{}, course.ErrNotFound
	}
	// the percentage is only written by SetGlobalPercentage
	crs.GlobalPercentage = orig.GlobalPercentage
	crs.Schedules, crs.ClassDays = nil, nil
	repo.db.courses[crs.ID] = crs
	return crs, nil
}

func (repo *courseRepository) DeleteCourse(_ context.Context, userID, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	crs, ok := repo.db.courses[id]
	if !ok || crs.UserID != userID {
		return course.ErrNotFound
	}
	repo.db.cascadeCourse(id)
	repo.db.deleteRow(repo.db.courses, id)
	return nil
}

func (repo *courseRepository) SaveCourseSchedule(_ context.Context, sch schedule.Schedule) (schedule.Schedule, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for id, s := range repo.db.schedules {
		if s.CourseID == sch.CourseID && s.UserID == sch.UserID && id != sch.ID {
			repo.db.deleteRow(repo.db.schedules, id)
		}
	}
	if sch.ID == "" {
		sch.ID = repo.db.newID()
	}
	repo.db.schedules[sch.ID] = sch
	return sch, nil
}

func (repo *courseRepository) DeleteCourseSchedules(_ context.Context, userID, courseID string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for id, s := range repo.db.schedules {
		if s.CourseID == courseID && s.UserID == userID {
			repo.db.deleteRow(repo.db.schedules, id)
		}
	}
	return nil
}

func (repo *courseRepository) QuerySchedules(_ context.Context, userID string) ([]schedule.Schedule, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.querySchedules(userID), nil
}

func (repo *courseRepository) CreateSubject(_ context.Context, sub course.Subject) (course.Subject, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sub.ID = repo.db.newID()
	repo.db.subjects[sub.ID] = sub
	return sub, nil
}

func (repo *courseRepository) GetSubjectByID(_ context.Context, userID, id string) (course.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	sub, ok := repo.db.subjects[id]
	if !ok || sub.UserID != userID {
		return course.Subject{}, course.ErrSubjectNotFound
	}
	return sub, nil
}

func (repo *courseRepository) QuerySubjects(_ context.Context, userID string) ([]course.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	subjects := make([]course.Subject, 0)
	for _, sub := range repo.db.subjects {
		if sub.UserID == userID {
			subjects = append(subjects, sub)
		}
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects, nil
}

func (repo *courseRepository) DeleteSubject(_ context.Context, userID, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sub, ok := repo.db.subjects[id]
	if !ok || sub.UserID != userID {
		return course.ErrSubjectNotFound
	}
	repo.db.cascadeActivities(activity.SubjectContainer(id))
	repo.db.deleteRow(repo.db.subjects, id)
	return nil
}

func (repo *courseRepository) ContainerExists(_ context.Context, userID string, c activity.Container) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if c.Kind == activity.KindSubject {
		sub, ok := repo.db.subjects[c.ID]
		return ok && sub.UserID == userID, nil
	}
	crs, ok := repo.db.courses[c.ID]
	return ok && crs.UserID == userID, nil
}

func (repo *courseRepository) SetGlobalPercentage(_ context.Context, userID string, c activity.Container, pct float64) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	now := core.NowMillis()
	if c.Kind == activity.KindSubject {
		sub, ok := repo.db.subjects[c.ID]
		if !ok || sub.UserID != userID {
			return course.ErrSubjectNotFound
		}
		sub.GlobalPercentage, sub.UpdatedAt = pct, now
		repo.db.subjects[c.ID] = sub
		return nil
	}

	crs, ok := repo.db.courses[c.ID]
	if !ok || crs.UserID != userID {
		return course.ErrNotFound
	}
	crs.GlobalPercentage, crs.UpdatedAt = pct, now
	repo.db.courses[c.ID] = crs
	return nil
}
