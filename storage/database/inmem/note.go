package inmemdb

import (
	"context"

	"github.com/trezcool/asistente/core/note"
)

type noteRepository struct {
	db *DB
}

var _ note.Repository = (*noteRepository)(nil) // interface compliance check

func NewNoteRepository(db *DB) *noteRepository {
	return &noteRepository{db: db}
}

func (repo *noteRepository) CreateNote(_ context.Context, n note.Note) (note.Note, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	n.ID = repo.db.newID()
	repo.db.notes[n.ID] = n
	return n, nil
}

func (repo *noteRepository) GetNoteByID(_ context.Context, userID, id string) (note.Note, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	n, ok := repo.db.notes[id]
	if !ok || n.UserID != userID {
		return note.Note{}, note.ErrNotFound
	}
	return n, nil
}

// QueryNotes returns the most recent notes first.
func (repo *noteRepository) QueryNotes(_ context.Context, userID, courseID string) ([]note.Note, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	ids := make([]string, 0)
	for id, n := range repo.db.notes {
		if n.UserID == userID && (courseID == "" || n.CourseID == courseID) {
			ids = append(ids, id)
		}
	}
	ids = repo.db.sortedIDs(ids)
	notes := make([]note.Note, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		notes = append(notes, repo.db.notes[ids[i]])
	}
	return notes, nil
}

func (repo *noteRepository) DeleteNote(_ context.Context, userID, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	n, ok := repo.db.notes[id]
	if !ok || n.UserID != userID {
		return note.ErrNotFound
	}
	repo.db.deleteRow(repo.db.notes, id)
	return nil
}
