package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultHourSlots(t *testing.T) {
	slots := DefaultHourSlots()
	if len(slots) != 15 || slots[0] != "07:00" || slots[14] != "21:00" {
		t.Errorf("DefaultHourSlots() = %v, want 07:00..21:00", slots)
	}
}

func TestBuildGrid_InclusiveBounds(t *testing.T) {
	math := Schedule{ID: "s1", DayOfWeek: 1, StartTime: "09:00", EndTime: "11:00"}
	grid := BuildGrid([]Schedule{math}, DefaultDays(), DefaultHourSlots())

	want := []Cell{{Day: 1, Hour: "09:00"}, {Day: 1, Hour: "10:00"}, {Day: 1, Hour: "11:00"}}
	assert.Equal(t, want, grid.Cells())
	for _, c := range want {
		assert.Equal(t, []Schedule{math}, grid[c])
	}
}

func TestBuildGrid(t *testing.T) {
	tests := []struct {
		name      string
		schedules []Schedule
		want      map[Cell][]string
	}{
		{name: "empty", want: map[Cell][]string{}},
		{
			name:      "half hour bounds",
			schedules: []Schedule{{ID: "s1", DayOfWeek: 2, StartTime: "08:30", EndTime: "10:15"}},
			want: map[Cell][]string{
				{Day: 2, Hour: "09:00"}: {"s1"},
				{Day: 2, Hour: "10:00"}: {"s1"},
			},
		},
		{
			name: "overlap shares cells",
			schedules: []Schedule{
				{ID: "s1", DayOfWeek: 3, StartTime: "07:00", EndTime: "08:00"},
				{ID: "s2", DayOfWeek: 3, StartTime: "08:00", EndTime: "09:00"},
			},
			want: map[Cell][]string{
				{Day: 3, Hour: "07:00"}: {"s1"},
				{Day: 3, Hour: "08:00"}: {"s1", "s2"},
				{Day: 3, Hour: "09:00"}: {"s2"},
			},
		},
		{
			name: "malformed times excluded",
			schedules: []Schedule{
				{ID: "bad-start", DayOfWeek: 1, StartTime: "nine", EndTime: "10:00"},
				{ID: "bad-end", DayOfWeek: 1, StartTime: "09:00", EndTime: "25:99"},
				{ID: "empty", DayOfWeek: 1},
				{ID: "ok", DayOfWeek: 1, StartTime: "20:00", EndTime: "21:30"},
			},
			want: map[Cell][]string{
				{Day: 1, Hour: "20:00"}: {"ok"},
				{Day: 1, Hour: "21:00"}: {"ok"},
			},
		},
		{
			name:      "day outside of grid",
			schedules: []Schedule{{ID: "s1", DayOfWeek: 8, StartTime: "09:00", EndTime: "10:00"}},
			want:      map[Cell][]string{},
		},
		{
			name:      "session outside of slots",
			schedules: []Schedule{{ID: "s1", DayOfWeek: 5, StartTime: "22:00", EndTime: "23:00"}},
			want:      map[Cell][]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid := BuildGrid(tt.schedules, DefaultDays(), DefaultHourSlots())

			got := make(map[Cell][]string, len(grid))
			for c, ss := range grid {
				for _, s := range ss {
					got[c] = append(got[c], s.ID)
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildGrid_MalformedSlot(t *testing.T) {
	s := Schedule{ID: "s1", DayOfWeek: 1, StartTime: "09:00", EndTime: "11:00"}
	grid := BuildGrid([]Schedule{s}, []int{1}, []string{"nope", "10:00"})
	assert.Equal(t, []Cell{{Day: 1, Hour: "10:00"}}, grid.Cells())
}

func TestGrid_Conflicts(t *testing.T) {
	schedules := []Schedule{
		{ID: "s1", DayOfWeek: 4, StartTime: "10:00", EndTime: "12:00"},
		{ID: "s2", DayOfWeek: 4, StartTime: "11:00", EndTime: "13:00"},
		{ID: "s3", DayOfWeek: 1, StartTime: "10:00", EndTime: "10:00"},
		{ID: "s4", DayOfWeek: 1, StartTime: "10:00", EndTime: "11:00"},
	}
	grid := BuildGrid(schedules, DefaultDays(), DefaultHourSlots())

	want := []Cell{{Day: 1, Hour: "10:00"}, {Day: 4, Hour: "11:00"}, {Day: 4, Hour: "12:00"}}
	assert.Equal(t, want, grid.Conflicts())
}
