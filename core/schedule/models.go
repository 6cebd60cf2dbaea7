package schedule

import (
	"errors"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/trezcool/asistente/core"
)

const timeLayout = "15:04"

var (
	// errors
	ErrTimeFormat   = errors.New("invalid time format, use HH:mm (e.g. 09:30)")
	ErrTimesPaired  = errors.New("both start and end times are required")
	ErrEndNotAfter  = errors.New("end time must be after start time")
	ErrDayOutOfWeek = errors.New("day must be between 1 (Monday) and 7 (Sunday)")

	dayNames = map[int]string{
		1: "Lunes",
		2: "Martes",
		3: "Miércoles",
		4: "Jueves",
		5: "Viernes",
		6: "Sábado",
		7: "Domingo",
	}
)

// Schedule is a weekly class session of a course.
type Schedule struct {
	ID         string `json:"id"`
	UserID     string `json:"-"`
	CourseID   string `json:"courseId"`
	CourseName string `json:"courseName"`
	DayOfWeek  int    `json:"dayOfWeek"` // 1=Monday..7=Sunday
	StartTime  string `json:"startTime"` // HH:mm
	EndTime    string `json:"endTime"`   // HH:mm
	Room       string `json:"room"`
	Professor  string `json:"professor"`
	Color      int32  `json:"color"` // ARGB
	CreatedAt  int64  `json:"createdAt"`
	UpdatedAt  int64  `json:"updatedAt"`
}

func (s Schedule) DayName() string {
	return DayName(s.DayOfWeek)
}

func DayName(day int) string {
	if name, ok := dayNames[day]; ok {
		return name
	}
	return "Desconocido"
}

// Weekday converts a time.Weekday to the 1=Monday..7=Sunday numbering.
func Weekday(wd time.Weekday) int {
	if wd == time.Sunday {
		return 7
	}
	return int(wd)
}

// NormalizeTime strips spaces and zero-pads the hour: "9:30" -> "09:30".
// Values not shaped like H:mm or HH:mm are returned without spaces, unchanged otherwise.
func NormalizeTime(t string) string {
	t = strings.ReplaceAll(t, " ", "")
	parts := strings.Split(t, ":")
	if len(parts) != 2 || len(parts[0]) < 1 || len(parts[0]) > 2 || len(parts[1]) != 2 || !isDigits(parts[0]+parts[1]) {
		return t
	}
	if len(parts[0]) == 1 {
		parts[0] = "0" + parts[0]
	}
	return parts[0] + ":" + parts[1]
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidateTimes checks an optional start/end pair once normalized:
// both empty, or both valid HH:mm with start before end.
func ValidateTimes(start, end string) error {
	if start == "" && end == "" {
		return nil
	}
	if start == "" || end == "" {
		return ErrTimesPaired
	}
	if !core.IsValidTime(start) || !core.IsValidTime(end) {
		return ErrTimeFormat
	}
	if start >= end {
		return ErrEndNotAfter
	}
	return nil
}

// ColorFor derives a stable opaque ARGB color from a course name.
func ColorFor(name string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(name)) {
		h = 31*h + int32(c)
	}
	return h&0xFFFFFF | -0x1000000 // 0xFF000000
}

// ForDay returns the schedules of the given day sorted by start time.
func ForDay(schedules []Schedule, day int) []Schedule {
	out := make([]Schedule, 0, len(schedules))
	for _, s := range schedules {
		if s.DayOfWeek == day {
			out = append(out, s)
		}
	}
	sortByStart(out)
	return out
}
