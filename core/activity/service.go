package activity

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/asistente/core"
)

var (
	// errors
	ErrNotFound          = core.NewNotFoundError("activity")
	ErrContainerNotFound = errors.New("course or subject not found")
)

type (
	Repository interface {
		CreateActivity(ctx context.Context, act Activity) (Activity, error)
		GetActivityByID(ctx context.Context, userID, id string) (Activity, error)
		// QueryActivities applies AND operation on available QueryFilter fields.
		QueryActivities(ctx context.Context, userID string, filter QueryFilter) ([]Activity, error)
		UpdateActivity(ctx context.Context, act Activity) (Activity, error)
		DeleteActivity(ctx context.Context, userID, id string) error
	}

	// Containers reads and writes the grading containers (courses and legacy subjects).
	Containers interface {
		ContainerExists(ctx context.Context, userID string, c Container) (bool, error)
		SetGlobalPercentage(ctx context.Context, userID string, c Container, pct float64) error
	}

	Service interface {
		Create(ctx context.Context, userID string, in Input) (Activity, error)
		Get(ctx context.Context, userID, id string) (Activity, error)
		Query(ctx context.Context, userID string, filter QueryFilter, criteria SortCriteria) ([]Activity, error)
		Update(ctx context.Context, userID, id string, in Input) (Activity, error)
		Delete(ctx context.Context, userID, id string) error
		// Recalculate recomputes the globalPercentage of c from the stored snapshot and writes it back.
		Recalculate(ctx context.Context, userID string, c Container) (float64, error)
	}

	service struct {
		repo       Repository
		containers Containers
		validate   *validator.Validate
		logger     core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, containers Containers, validate *validator.Validate, logger core.Logger) Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(containers, "containers"),
		vala.IsNotNil(validate, "validate"),
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()

	return &service{
		repo:       repo,
		containers: containers,
		validate:   validate,
		logger:     logger,
	}
}

func (svc *service) checkContainer(ctx context.Context, userID string, c Container) error {
	ok, err := svc.containers.ContainerExists(ctx, userID, c)
	if err != nil {
		return pkgerrors.Wrap(err, "checking container")
	}
	if !ok {
		field := "courseId"
		if c.Kind == KindSubject {
			field = "subjectId"
		}
		return core.NewValidationError(ErrContainerNotFound, core.FieldError{Field: field, Error: ErrContainerNotFound.Error()})
	}
	return nil
}

func (svc *service) Create(ctx context.Context, userID string, in Input) (Activity, error) {
	if err := in.Validate(svc.validate); err != nil {
		return Activity{}, err
	}
	if err := svc.checkContainer(ctx, userID, in.Container()); err != nil {
		return Activity{}, err
	}

	now := core.NowMillis()
	act := Activity{
		UserID:        userID,
		CourseID:      in.CourseID,
		SubjectID:     in.SubjectID,
		Title:         in.Title,
		Description:   in.Description,
		Type:          in.Type,
		Priority:      in.Priority,
		Status:        in.Status,
		DueDateMillis: in.DueDateMillis,
		WeightPercent: in.WeightPercent,
		ScoreObtained: in.ScoreObtained,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if act.DueDateMillis == 0 {
		act.DueDateMillis = now
	}

	act, err := svc.repo.CreateActivity(ctx, act)
	if err != nil {
		return Activity{}, pkgerrors.Wrap(err, "creating activity")
	}
	svc.refreshAggregates(ctx, userID, act.Container())
	return act, nil
}

func (svc *service) Get(ctx context.Context, userID, id string) (Activity, error) {
	return svc.repo.GetActivityByID(ctx, userID, id)
}

func (svc *service) Query(ctx context.Context, userID string, filter QueryFilter, criteria SortCriteria) ([]Activity, error) {
	acts, err := svc.repo.QueryActivities(ctx, userID, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying activities")
	}
	return Apply(acts, criteria), nil
}

func (svc *service) Update(ctx context.Context, userID, id string, in Input) (Activity, error) {
	orig, err := svc.repo.GetActivityByID(ctx, userID, id)
	if err != nil {
		return Activity{}, err
	}
	if err := in.Validate(svc.validate); err != nil {
		return Activity{}, err
	}
	if in.Container() != orig.Container() {
		if err := svc.checkContainer(ctx, userID, in.Container()); err != nil {
			return Activity{}, err
		}
	}

	act := orig
	act.CourseID = in.CourseID
	act.SubjectID = in.SubjectID
	act.Title = in.Title
	act.Description = in.Description
	act.Type = in.Type
	act.Priority = in.Priority
	act.Status = in.Status
	act.DueDateMillis = in.DueDateMillis
	act.WeightPercent = in.WeightPercent
	act.ScoreObtained = in.ScoreObtained
	act.UpdatedAt = core.NowMillis()

	act, err = svc.repo.UpdateActivity(ctx, act)
	if err != nil {
		return Activity{}, pkgerrors.Wrap(err, "updating activity")
	}

	// an activity moved to another container changes both aggregates
	if orig.Container() != act.Container() {
		svc.refreshAggregates(ctx, userID, orig.Container(), act.Container())
	} else {
		svc.refreshAggregates(ctx, userID, act.Container())
	}
	return act, nil
}

func (svc *service) Delete(ctx context.Context, userID, id string) error {
	act, err := svc.repo.GetActivityByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := svc.repo.DeleteActivity(ctx, userID, id); err != nil {
		return pkgerrors.Wrap(err, "deleting activity")
	}
	svc.refreshAggregates(ctx, userID, act.Container())
	return nil
}

// refreshAggregates recalculates each container after a committed write.
// A failure leaves the stored percentage stale but does not undo the write: it is logged,
// and the next write or an explicit Recalculate of the container repairs it.
func (svc *service) refreshAggregates(ctx context.Context, userID string, containers ...Container) {
	for _, c := range containers {
		if _, err := svc.Recalculate(ctx, userID, c); err != nil {
			svc.logger.Error(fmt.Sprintf("recalculating %s %s: %v", c.Kind, c.ID, err), err)
		}
	}
}

func (svc *service) Recalculate(ctx context.Context, userID string, c Container) (float64, error) {
	if c.IsZero() {
		return 0, nil
	}
	acts, err := svc.repo.QueryActivities(ctx, userID, ForContainer(c))
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "loading %s %s activities", c.Kind, c.ID)
	}
	pct := Recalculate(c, acts)
	if err := svc.containers.SetGlobalPercentage(ctx, userID, c, pct); err != nil {
		if core.IsNotFound(err) {
			// container deleted concurrently; nothing left to update
			svc.logger.Warn(fmt.Sprintf("recalculating %s %s: container is gone", c.Kind, c.ID))
			return pct, nil
		}
		return 0, pkgerrors.Wrapf(err, "saving %s %s percentage", c.Kind, c.ID)
	}
	return pct, nil
}
