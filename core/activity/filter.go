package activity

import "sort"

// SortCriteria are the user-selected sort toggles of an activity list.
type SortCriteria struct {
	ByStatus   bool `query:"by_status"`
	ByPriority bool `query:"by_priority"`
	ByDueDate  bool `query:"by_due_date"`
}

func (sc SortCriteria) IsEmpty() bool {
	return !(sc.ByStatus || sc.ByPriority || sc.ByDueDate)
}

// Apply runs the enabled criteria as a chain of stable sorts, each stage sorting the output of the previous one:
// status label ascending (lexical: completed < in_progress < pending), then priority rank descending,
// then due date ascending (unset sorts first). The last enabled stage is the dominant key.
// records is never mutated.
func Apply(records []Activity, criteria SortCriteria) []Activity {
	out := make([]Activity, len(records))
	copy(out, records)

	if criteria.ByStatus {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	}
	if criteria.ByPriority {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Priority.Rank() > out[j].Priority.Rank() })
	}
	if criteria.ByDueDate {
		sort.SliceStable(out, func(i, j int) bool { return dueDate(out[i]) < dueDate(out[j]) })
	}
	return out
}

func dueDate(a Activity) int64 {
	if a.DueDateMillis < 0 {
		return 0
	}
	return a.DueDateMillis
}

// Pending returns at most limit non-completed activities, soonest due first.
func Pending(records []Activity, limit int) []Activity {
	pending := make([]Activity, 0, len(records))
	for _, r := range records {
		if !r.IsCompleted() {
			pending = append(pending, r)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].DueDateMillis < pending[j].DueDateMillis })
	return truncate(pending, limit)
}

// RecentlyGraded returns at most limit completed activities having a score, most recently updated first.
func RecentlyGraded(records []Activity, limit int) []Activity {
	graded := make([]Activity, 0, len(records))
	for _, r := range records {
		if r.IsCompleted() && r.ScoreObtained.Valid {
			graded = append(graded, r)
		}
	}
	sort.SliceStable(graded, func(i, j int) bool { return graded[i].UpdatedAt > graded[j].UpdatedAt })
	return truncate(graded, limit)
}

func truncate(records []Activity, limit int) []Activity {
	if limit >= 0 && len(records) > limit {
		return records[:limit]
	}
	return records
}
