package course

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/asistente/core"
	"github.com/trezcool/asistente/core/activity"
	"github.com/trezcool/asistente/core/schedule"
)

var (
	// errors
	ErrNotFound        = core.NewNotFoundError("course")
	ErrSubjectNotFound = core.NewNotFoundError("subject")
)

type (
	Repository interface {
		activity.Containers

		CreateCourse(ctx context.Context, crs Course) (Course, error)
		// GetCourseByID returns the course along with its schedules.
		GetCourseByID(ctx context.Context, userID, id string) (Course, error)
		QueryCourses(ctx context.Context, userID string, orderings []core.DBOrdering) ([]Course, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		// DeleteCourse deletes the course, its schedules and its activities at once.
		DeleteCourse(ctx context.Context, userID, id string) error

		// SaveCourseSchedule replaces the schedules of sch.CourseID with sch.
		SaveCourseSchedule(ctx context.Context, sch schedule.Schedule) (schedule.Schedule, error)
		DeleteCourseSchedules(ctx context.Context, userID, courseID string) error
		QuerySchedules(ctx context.Context, userID string) ([]schedule.Schedule, error)

		CreateSubject(ctx context.Context, sub Subject) (Subject, error)
		GetSubjectByID(ctx context.Context, userID, id string) (Subject, error)
		QuerySubjects(ctx context.Context, userID string) ([]Subject, error)
		// DeleteSubject deletes the subject and its activities at once.
		DeleteSubject(ctx context.Context, userID, id string) error
	}

	// NoteRemover deletes the notes attached to a course.
	NoteRemover interface {
		DeleteForCourse(ctx context.Context, userID, courseID string) error
	}

	Service interface {
		Create(ctx context.Context, userID string, in Input) (Course, error)
		Get(ctx context.Context, userID, id string) (Course, error)
		Query(ctx context.Context, userID string, orderings []core.DBOrdering) ([]Course, error)
		Update(ctx context.Context, userID, id string, in Input) (Course, error)
		Delete(ctx context.Context, userID, id string) error
		Schedules(ctx context.Context, userID string) ([]schedule.Schedule, error)

		CreateSubject(ctx context.Context, userID string, in SubjectInput) (Subject, error)
		GetSubject(ctx context.Context, userID, id string) (Subject, error)
		QuerySubjects(ctx context.Context, userID string) ([]Subject, error)
		DeleteSubject(ctx context.Context, userID, id string) error
	}

	service struct {
		repo     Repository
		notes    NoteRemover
		validate *validator.Validate
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, notes NoteRemover, validate *validator.Validate) Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(notes, "notes"),
		vala.IsNotNil(validate, "validate"),
	).CheckAndPanic()

	return &service{repo: repo, notes: notes, validate: validate}
}

func (svc *service) Create(ctx context.Context, userID string, in Input) (Course, error) {
	if err := in.Validate(svc.validate); err != nil {
		return Course{}, err
	}

	now := core.NowMillis()
	crs := Course{
		UserID:    userID,
		Name:      in.Name,
		Code:      in.Code,
		Professor: in.Professor,
		Location:  in.Location,
		Color:     schedule.ColorFor(in.Name),
		Credits:   in.Credits,
		Semester:  in.Semester,
		CreatedAt: now,
		UpdatedAt: now,
	}
	crs, err := svc.repo.CreateCourse(ctx, crs)
	if err != nil {
		return Course{}, errors.Wrap(err, "creating course")
	}

	if err := svc.syncSchedule(ctx, crs, in); err != nil {
		return Course{}, err
	}
	return svc.repo.GetCourseByID(ctx, userID, crs.ID)
}

// syncSchedule upserts the course session described by in, or removes it when in has no times.
func (svc *service) syncSchedule(ctx context.Context, crs Course, in Input) error {
	if !in.HasSchedule() {
		return errors.Wrap(svc.repo.DeleteCourseSchedules(ctx, crs.UserID, crs.ID), "deleting course schedules")
	}

	now := core.NowMillis()
	sch := schedule.Schedule{
		UserID:     crs.UserID,
		CourseID:   crs.ID,
		CourseName: crs.Name,
		DayOfWeek:  in.Day,
		StartTime:  in.StartTime,
		EndTime:    in.EndTime,
		Room:       crs.Location,
		Professor:  crs.Professor,
		Color:      crs.Color,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if len(crs.Schedules) > 0 {
		sch.ID = crs.Schedules[0].ID
		sch.CreatedAt = crs.Schedules[0].CreatedAt
	}
	_, err := svc.repo.SaveCourseSchedule(ctx, sch)
	return errors.Wrap(err, "saving course schedule")
}

func (svc *service) Get(ctx context.Context, userID, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, userID, id)
}

func (svc *service) Query(ctx context.Context, userID string, orderings []core.DBOrdering) ([]Course, error) {
	return svc.repo.QueryCourses(ctx, userID, CleanOrderings(orderings))
}

func (svc *service) Update(ctx context.Context, userID, id string, in Input) (Course, error) {
	crs, err := svc.repo.GetCourseByID(ctx, userID, id)
	if err != nil {
		return Course{}, err
	}
	if err := in.Validate(svc.validate); err != nil {
		return Course{}, err
	}

	crs.Name = in.Name
	crs.Code = in.Code
	crs.Professor = in.Professor
	crs.Location = in.Location
	crs.Color = schedule.ColorFor(in.Name)
	crs.Credits = in.Credits
	crs.Semester = in.Semester
	crs.UpdatedAt = core.NowMillis()

	updated, err := svc.repo.UpdateCourse(ctx, crs)
	if err != nil {
		return Course{}, errors.Wrap(err, "updating course")
	}
	updated.Schedules = crs.Schedules

	if err := svc.syncSchedule(ctx, updated, in); err != nil {
		return Course{}, err
	}
	return svc.repo.GetCourseByID(ctx, userID, id)
}

func (svc *service) Delete(ctx context.Context, userID, id string) error {
	if _, err := svc.repo.GetCourseByID(ctx, userID, id); err != nil {
		return err
	}
	if err := svc.notes.DeleteForCourse(ctx, userID, id); err != nil {
		return errors.Wrap(err, "deleting course notes")
	}
	return errors.Wrap(svc.repo.DeleteCourse(ctx, userID, id), "deleting course")
}

func (svc *service) Schedules(ctx context.Context, userID string) ([]schedule.Schedule, error) {
	return svc.repo.QuerySchedules(ctx, userID)
}

func (svc *service) CreateSubject(ctx context.Context, userID string, in SubjectInput) (Subject, error) {
	if err := in.Validate(svc.validate); err != nil {
		return Subject{}, err
	}
	now := core.NowMillis()
	sub, err := svc.repo.CreateSubject(ctx, Subject{
		UserID:    userID,
		Name:      in.Name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return sub, errors.Wrap(err, "creating subject")
}

func (svc *service) GetSubject(ctx context.Context, userID, id string) (Subject, error) {
	return svc.repo.GetSubjectByID(ctx, userID, id)
}

func (svc *service) QuerySubjects(ctx context.Context, userID string) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx, userID)
}

func (svc *service) DeleteSubject(ctx context.Context, userID, id string) error {
	if _, err := svc.repo.GetSubjectByID(ctx, userID, id); err != nil {
		return err
	}
	return errors.Wrap(svc.repo.DeleteSubject(ctx, userID, id), "deleting subject")
}
