package inmemdb

import (
	"context"

	"github.com/trezcool/asistente/core/activity"
	"github.com/trezcool/asistente/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) query() []user.User {
	ids := make([]string, 0, len(repo.db.users))
	for id := range repo.db.users {
		ids = append(ids, id)
	}
	users := make([]user.User, 0, len(ids))
	for _, id := range repo.db.sortedIDs(ids) {
		users = append(users, repo.db.users[id])
	}
	return users
}

func (repo *userRepository) EmailExists(_ context.Context, email string, excludedIDs ...string) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	excluded := make(map[string]bool, len(excludedIDs))
	for _, id := range excludedIDs {
		excluded[id] = true
	}
	for _, usr := range repo.db.users {
		if usr.Email == email && !excluded[usr.ID] {
			return true, nil
		}
	}
	return false, nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr.ID = repo.db.newID()
	repo.db.users[usr.ID] = usr
	return usr, nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	switch {
	case filter.ID != "":
		if usr, ok := repo.db.users[filter.ID]; ok {
			return usr, nil
		}
	case filter.Email != "":
		for _, usr := range repo.db.users {
			if usr.Email == filter.Email {
				return usr, nil
			}
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) QueryAllUsers(_ context.Context) ([]user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.users[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	repo.db.users[usr.ID] = usr
	return usr, nil
}

func (repo *userRepository) DeleteUser(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.users[id]; !ok {
		return user.ErrNotFound
	}
	for cid, crs := range repo.db.courses {
		if crs.UserID == id {
			repo.db.cascadeCourse(cid)
			repo.db.deleteRow(repo.db.courses, cid)
		}
	}
	for sid, sub := range repo.db.subjects {
		if sub.UserID == id {
			repo.db.cascadeActivities(activity.SubjectContainer(sid))
			repo.db.deleteRow(repo.db.subjects, sid)
		}
	}
	for nid, n := range repo.db.notes {
		if n.UserID == id {
			repo.db.deleteRow(repo.db.notes, nid)
		}
	}
	repo.db.deleteRow(repo.db.users, id)
	return nil
}
