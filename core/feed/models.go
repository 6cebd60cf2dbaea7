package feed

import "sort"

type News struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Content     string  `json:"content"`
	Author      string  `json:"author"`
	PublishedAt string  `json:"publishedAt"`
	ImageURL    *string `json:"imageUrl"`
	Category    string  `json:"category"`
	Link        *string `json:"link"`
}

type CalendarEvent struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	StartDate   string  `json:"startDate"`
	EndDate     *string `json:"endDate"`
	Location    *string `json:"location"`
	Type        string  `json:"type"` // academico, evento, feriado, ...
	IsImportant bool    `json:"isImportant"`
}

// SortEvents returns the events with the important ones first, then by start date ascending.
func SortEvents(events []CalendarEvent) []CalendarEvent {
	out := make([]CalendarEvent, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsImportant != out[j].IsImportant {
			return out[i].IsImportant
		}
		return out[i].StartDate < out[j].StartDate
	})
	return out
}
