package note

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/asistente/core"
	"github.com/trezcool/asistente/core/activity"
)

var (
	// errors
	ErrNotFound       = core.NewNotFoundError("note")
	errCourseNotFound = "course not found"
)

// Note is a file attached to a course.
type Note struct {
	ID         string `json:"id"`
	UserID     string `json:"-"`
	CourseID   string `json:"courseId"`
	Name       string `json:"name"`
	MimeType   string `json:"mimeType"`
	SizeBytes  int64  `json:"sizeBytes"`
	StorageKey string `json:"-"`
	URL        string `json:"url"`
	CreatedAt  int64  `json:"createdAt"`
}

type UploadInput struct {
	CourseID  string `json:"courseId" validate:"required"`
	Name      string `json:"name" validate:"required"`
	MimeType  string `json:"mimeType"`
	SizeBytes int64  `json:"sizeBytes" validate:"gte=0"`
}

func (in *UploadInput) Validate(validate *validator.Validate) error {
	in.CourseID = core.CleanString(in.CourseID)
	in.Name = path.Base(core.CleanString(in.Name))
	if in.Name == "." || in.Name == "/" {
		in.Name = ""
	}
	in.MimeType = core.CleanString(in.MimeType, true /* lower */)
	if in.MimeType == "" {
		in.MimeType = "application/octet-stream"
	}
	return validate.Struct(in)
}

type (
	Repository interface {
		CreateNote(ctx context.Context, n Note) (Note, error)
		GetNoteByID(ctx context.Context, userID, id string) (Note, error)
		// QueryNotes lists the notes of a user, restricted to courseID when not empty.
		QueryNotes(ctx context.Context, userID, courseID string) ([]Note, error)
		DeleteNote(ctx context.Context, userID, id string) error
	}

	Service interface {
		Upload(ctx context.Context, userID string, in UploadInput, content io.Reader) (Note, error)
		Get(ctx context.Context, userID, id string) (Note, error)
		Query(ctx context.Context, userID, courseID string) ([]Note, error)
		// Open returns the note along with its content; the caller closes the content.
		Open(ctx context.Context, userID, id string) (Note, io.ReadCloser, error)
		Delete(ctx context.Context, userID, id string) error
		DeleteForCourse(ctx context.Context, userID, courseID string) error
		// DeleteForUser deletes every note of the user, across courses.
		DeleteForUser(ctx context.Context, userID string) error
	}

	service struct {
		repo       Repository
		blobs      core.BlobStorage
		containers activity.Containers
		validate   *validator.Validate
		logger     core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(
	repo Repository,
	blobs core.BlobStorage,
	containers activity.Containers,
	validate *validator.Validate,
	logger core.Logger,
) Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(blobs, "blobs"),
		vala.IsNotNil(containers, "containers"),
		vala.IsNotNil(validate, "validate"),
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()

	return &service{
		repo:       repo,
		blobs:      blobs,
		containers: containers,
		validate:   validate,
		logger:     logger,
	}
}

func storageKey(userID, courseID, name string) string {
	return strings.Join([]string{"users", userID, "courses", courseID, "notes", uuid.New().String() + path.Ext(name)}, "/")
}

// Upload stores the content first, then its metadata. The stored content is removed again when the metadata cannot be saved.
func (svc *service) Upload(ctx context.Context, userID string, in UploadInput, content io.Reader) (Note, error) {
	if err := in.Validate(svc.validate); err != nil {
		return Note{}, err
	}
	ok, err := svc.containers.ContainerExists(ctx, userID, activity.CourseContainer(in.CourseID))
	if err != nil {
		return Note{}, errors.Wrap(err, "checking course")
	}
	if !ok {
		return Note{}, core.NewValidationError(nil, core.FieldError{Field: "courseId", Error: errCourseNotFound})
	}

	key := storageKey(userID, in.CourseID, in.Name)
	url, err := svc.blobs.Put(ctx, key, content, in.MimeType)
	if err != nil {
		return Note{}, errors.Wrap(err, "storing note content")
	}

	n, err := svc.repo.CreateNote(ctx, Note{
		UserID:     userID,
		CourseID:   in.CourseID,
		Name:       in.Name,
		MimeType:   in.MimeType,
		SizeBytes:  in.SizeBytes,
		StorageKey: key,
		URL:        url,
		CreatedAt:  core.NowMillis(),
	})
	if err != nil {
		if dErr := svc.blobs.Delete(ctx, key); dErr != nil {
			svc.logger.Error(fmt.Sprintf("removing orphan note content %s: %v", key, dErr), dErr)
		}
		return Note{}, errors.Wrap(err, "creating note")
	}
	return n, nil
}

func (svc *service) Get(ctx context.Context, userID, id string) (Note, error) {
	return svc.repo.GetNoteByID(ctx, userID, id)
}

func (svc *service) Query(ctx context.Context, userID, courseID string) ([]Note, error) {
	return svc.repo.QueryNotes(ctx, userID, core.CleanString(courseID))
}

func (svc *service) Open(ctx context.Context, userID, id string) (Note, io.ReadCloser, error) {
	n, err := svc.repo.GetNoteByID(ctx, userID, id)
	if err != nil {
		return Note{}, nil, err
	}
	rc, err := svc.blobs.Get(ctx, n.StorageKey)
	if err != nil {
		return Note{}, nil, errors.Wrap(err, "opening note content")
	}
	return n, rc, nil
}

func (svc *service) Delete(ctx context.Context, userID, id string) error {
	n, err := svc.repo.GetNoteByID(ctx, userID, id)
	if err != nil {
		return err
	}
	return svc.delete(ctx, n)
}

func (svc *service) delete(ctx context.Context, n Note) error {
	if err := svc.blobs.Delete(ctx, n.StorageKey); err != nil {
		return errors.Wrap(err, "deleting note content")
	}
	return errors.Wrap(svc.repo.DeleteNote(ctx, n.UserID, n.ID), "deleting note")
}

func (svc *service) DeleteForCourse(ctx context.Context, userID, courseID string) error {
	if courseID == "" {
		return nil
	}
	return svc.deleteAll(ctx, userID, courseID)
}

func (svc *service) DeleteForUser(ctx context.Context, userID string) error {
	return svc.deleteAll(ctx, userID, "")
}

func (svc *service) deleteAll(ctx context.Context, userID, courseID string) error {
	notes, err := svc.repo.QueryNotes(ctx, userID, courseID)
	if err != nil {
		return errors.Wrap(err, "querying notes")
	}
	for _, n := range notes {
		if err := svc.delete(ctx, n); err != nil {
			return err
		}
	}
	return nil
}
