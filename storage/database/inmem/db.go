package inmemdb

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/asistente/core/activity"
	"github.com/trezcool/asistente/core/course"
	"github.com/trezcool/asistente/core/note"
	"github.com/trezcool/asistente/core/schedule"
	"github.com/trezcool/asistente/core/user"
)

// DB is an in-memory database. A single lock guards every table so cascades are atomic.
type DB struct {
	mutex sync.RWMutex
	seq   int64
	order map[string]int64 // insertion order of every row, by ID

	users      map[string]user.User
	courses    map[string]course.Course
	subjects   map[string]course.Subject
	schedules  map[string]schedule.Schedule
	activities map[string]activity.Activity
	notes      map[string]note.Note
}

func NewDB() *DB {
	return &DB{
		order:      make(map[string]int64),
		users:      make(map[string]user.User),
		courses:    make(map[string]course.Course),
		subjects:   make(map[string]course.Subject),
		schedules:  make(map[string]schedule.Schedule),
		activities: make(map[string]activity.Activity),
		notes:      make(map[string]note.Note),
	}
}

// newID must be called with the write lock held.
func (db *DB) newID() string {
	id := uuid.New().String()
	db.seq++
	db.order[id] = db.seq
	return id
}

// sortedIDs returns the given IDs in insertion order.
func (db *DB) sortedIDs(ids []string) []string {
	sort.Slice(ids, func(i, j int) bool { return db.order[ids[i]] < db.order[ids[j]] })
	return ids
}

func (db *DB) deleteRow(table interface{}, id string) {
	switch t := table.(type) {
	case map[string]user.User:
		delete(t, id)
	case map[string]course.Course:
		delete(t, id)
	case map[string]course.Subject:
		delete(t, id)
	case map[string]schedule.Schedule:
		delete(t, id)
	case map[string]activity.Activity:
		delete(t, id)
	case map[string]note.Note:
		delete(t, id)
	}
	delete(db.order, id)
}

// cascadeActivities deletes the activities in c. The write lock must be held.
func (db *DB) cascadeActivities(c activity.Container) {
	for id, act := range db.activities {
		if act.Container() == c {
			db.deleteRow(db.activities, id)
		}
	}
}

// cascadeCourse deletes the schedules and activities of a course. The write lock must be held.
func (db *DB) cascadeCourse(courseID string) {
	for id, sch := range db.schedules {
		if sch.CourseID == courseID {
			db.deleteRow(db.schedules, id)
		}
	}
	db.cascadeActivities(activity.CourseContainer(courseID))
}
