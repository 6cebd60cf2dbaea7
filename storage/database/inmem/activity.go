package inmemdb

import (
	"context"

	"github.com/trezcool/asistente/core/activity"
)

type activityRepository struct {
	db *DB
}

var _ activity.Repository = (*activityRepository)(nil) // interface compliance check

func NewActivityRepository(db *DB) *activityRepository {
	return &activityRepository{db: db}
}

func (repo *activityRepository) CreateActivity(_ context.Context, act activity.Activity) (activity.Activity, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	act.ID = repo.db.newID()
	repo.db.activities[act.ID] = act
	return act, nil
}

func (repo *activityRepository) GetActivityByID(_ context.Context, userID, id string) (activity.Activity, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	act, ok := repo.db.activities[id]
	if !ok || act.UserID != userID {
		return activity.Activity{}, activity.ErrNotFound
	}
	return act, nil
}

func (repo *activityRepository) QueryActivities(_ context.Context, userID string, filter activity.QueryFilter) ([]activity.Activity, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	ids := make([]string, 0)
	for id, act := range repo.db.activities {
		if act.UserID == userID && filter.Matches(act) {
			ids = append(ids, id)
		}
	}
	acts := make([]activity.Activity, 0, len(ids))
	for _, id := range repo.db.sortedIDs(ids) {
		acts = append(acts, repo.db.activities[id])
	}
	return acts, nil
}

func (repo *activityRepository) UpdateActivity(_ context.Context, act activity.Activity) (activity.Activity, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.activities[act.ID]
	if !ok || orig.UserID != act.UserID {
		return activity.Activity{}, activity.ErrNotFound
	}
	repo.db.activities[act.ID] = act
	return act, nil
}

func (repo *activityRepository) DeleteActivity(_ context.Context, userID, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	act, ok := repo.db.activities[id]
	if !ok || act.UserID != userID {
		return activity.ErrNotFound
	}
	repo.db.deleteRow(repo.db.activities, id)
	return nil
}
