package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/asistente/core/note"
)

type noteRow struct {
	ID         string `db:"id"`
	UserID     string `db:"user_id"`
	CourseID   string `db:"course_id"`
	Name       string `db:"name"`
	MimeType   string `db:"mime_type"`
	SizeBytes  int64  `db:"size_bytes"`
	StorageKey string `db:"storage_key"`
	URL        string `db:"url"`
	CreatedAt  int64  `db:"created_at"`
}

const noteColumns = `id, user_id, course_id, name, mime_type, size_bytes, storage_key, url, created_at`

type noteRepository struct {
	db *sqlx.DB
}

var _ note.Repository = (*noteRepository)(nil) // interface compliance check

func NewNoteRepository(db *sqlx.DB) *noteRepository {
	return &noteRepository{db: db}
}

func (repo noteRepository) CreateNote(ctx context.Context, n note.Note) (note.Note, error) {
	n.ID = uuid.New().String()
	q := `INSERT INTO note (` + noteColumns + `)
		VALUES (:id, :user_id, :course_id, :name, :mime_type, :size_bytes, :storage_key, :url, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, noteRow(n)); err != nil {
		return note.Note{}, errors.Wrap(err, "inserting note")
	}
	return n, nil
}

func (repo noteRepository) GetNoteByID(ctx context.Context, userID, id string) (note.Note, error) {
	if !validID(id) {
		return note.Note{}, note.ErrNotFound
	}
	var row noteRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+noteColumns+` FROM note WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return note.Note{}, note.ErrNotFound
		}
		return note.Note{}, errors.Wrap(err, "getting note")
	}
	return note.Note(row), nil
}

func (repo noteRepository) QueryNotes(ctx context.Context, userID, courseID string) ([]note.Note, error) {
	var (
		rows []noteRow
		err  error
	)
	switch {
	case courseID == "":
		err = repo.db.SelectContext(ctx, &rows,
			`SELECT `+noteColumns+` FROM note WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	case validID(courseID):
		err = repo.db.SelectContext(ctx, &rows,
			`SELECT `+noteColumns+` FROM note WHERE user_id = $1 AND course_id = $2 ORDER BY created_at DESC`, userID, courseID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "selecting notes")
	}
	notes := make([]note.Note, 0, len(rows))
	for _, r := range rows {
		notes = append(notes, note.Note(r))
	}
	return notes, nil
}

func (repo noteRepository) DeleteNote(ctx context.Context, userID, id string) error {
	if !validID(id) {
		return note.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM note WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return errors.Wrap(err, "deleting note")
	}
	return checkAffected(res, note.ErrNotFound)
}
