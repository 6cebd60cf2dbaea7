package schedule

import (
	"fmt"
	"sort"
	"time"
)

// Cell is one (day, hour slot) position of the weekly grid.
type Cell struct {
	Day  int    `json:"day"`
	Hour string `json:"hour"` // HH:00
}

// Grid maps each cell to every schedule occupying it, in input order.
type Grid map[Cell][]Schedule

// DefaultDays returns Monday..Sunday.
func DefaultDays() []int {
	return []int{1, 2, 3, 4, 5, 6, 7}
}

// DefaultHourSlots returns the hourly display slots 07:00..21:00.
func DefaultHourSlots() []string {
	slots := make([]string, 0, 15)
	for h := 7; h <= 21; h++ {
		slots = append(slots, fmt.Sprintf("%02d:00", h))
	}
	return slots
}

type span struct {
	sch        Schedule
	start, end time.Time
}

// BuildGrid places every schedule in each cell of its day whose hour slot lies within [start, end], both inclusive.
// Overlapping schedules share a cell. Schedules or slots with malformed times never match.
func BuildGrid(schedules []Schedule, days []int, hourSlots []string) Grid {
	spans := make([]span, 0, len(schedules))
	for _, s := range schedules {
		start, err := time.Parse(timeLayout, s.StartTime)
		if err != nil {
			continue
		}
		end, err := time.Parse(timeLayout, s.EndTime)
		if err != nil {
			continue
		}
		spans = append(spans, span{sch: s, start: start, end: end})
	}

	grid := make(Grid)
	for _, day := range days {
		for _, slot := range hourSlots {
			at, err := time.Parse(timeLayout, slot)
			if err != nil {
				continue
			}
			for _, sp := range spans {
				if sp.sch.DayOfWeek == day && !at.Before(sp.start) && !at.After(sp.end) {
					c := Cell{Day: day, Hour: slot}
					grid[c] = append(grid[c], sp.sch)
				}
			}
		}
	}
	return grid
}

// Cells returns the occupied cells ordered by day then hour.
func (g Grid) Cells() []Cell {
	cells := make([]Cell, 0, len(g))
	for c := range g {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Day != cells[j].Day {
			return cells[i].Day < cells[j].Day
		}
		return cells[i].Hour < cells[j].Hour
	})
	return cells
}

// Conflicts returns the cells occupied by more than one schedule, ordered by day then hour.
func (g Grid) Conflicts() []Cell {
	conflicts := make([]Cell, 0)
	for _, c := range g.Cells() {
		if len(g[c]) > 1 {
			conflicts = append(conflicts, c)
		}
	}
	return conflicts
}

func sortByStart(schedules []Schedule) {
	sort.SliceStable(schedules, func(i, j int) bool { return schedules[i].StartTime < schedules[j].StartTime })
}
