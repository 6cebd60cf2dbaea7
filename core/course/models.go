package course

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/asistente/core"
	"github.com/trezcool/asistente/core/schedule"
)

// OrderingFields are the fields courses may be ordered by.
var OrderingFields = map[string]bool{
	"name":             true,
	"code":             true,
	"credits":          true,
	"semester":         true,
	"globalPercentage": true,
	"createdAt":        true,
	"updatedAt":        true,
}

// Course is a grading container owning activities and at most one weekly schedule.
type Course struct {
	ID               string              `json:"id"`
	UserID           string              `json:"-"`
	Name             string              `json:"name"`
	Code             string              `json:"code"`
	Professor        string              `json:"professor"`
	Location         string              `json:"location"`
	Color            int32               `json:"color"`
	Credits          int                 `json:"credits"`
	Semester         string              `json:"semester"`
	Schedules        []schedule.Schedule `json:"schedules"`
	ClassDays        []int               `json:"classDays"`
	GlobalPercentage float64             `json:"globalPercentage"`
	CreatedAt        int64               `json:"createdAt"`
	UpdatedAt        int64               `json:"updatedAt"`
}

// SetSchedules attaches the course sessions and derives ClassDays from them.
func (c *Course) SetSchedules(schedules []schedule.Schedule) {
	c.Schedules = make([]schedule.Schedule, 0, len(schedules))
	c.ClassDays = make([]int, 0, len(schedules))
	seen := make(map[int]bool, len(schedules))
	for _, s := range schedules {
		c.Schedules = append(c.Schedules, s)
		if !seen[s.DayOfWeek] {
			seen[s.DayOfWeek] = true
			c.ClassDays = append(c.ClassDays, s.DayOfWeek)
		}
	}
}

// Subject is the legacy grading container.
type Subject struct {
	ID               string  `json:"id"`
	UserID           string  `json:"-"`
	Name             string  `json:"name"`
	GlobalPercentage float64 `json:"globalPercentage"`
	CreatedAt        int64   `json:"createdAt"`
	UpdatedAt        int64   `json:"updatedAt"`
}

// Input contains what may be provided to create or update a Course, with its optional weekly session.
type Input struct {
	Name      string `json:"name" validate:"required"`
	Code      string `json:"code" validate:"required"`
	Professor string `json:"professor" validate:"required"`
	Location  string `json:"location" validate:"required"`
	Credits   int    `json:"credits" validate:"gte=0"`
	Semester  string `json:"semester"`
	Day       int    `json:"day" validate:"omitempty,weekday"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

func (in *Input) Validate(validate *validator.Validate) error {
	in.Name = core.CleanString(in.Name)
	in.Code = core.CleanString(in.Code)
	in.Professor = core.CleanString(in.Professor)
	in.Location = core.CleanString(in.Location)
	in.Semester = core.CleanString(in.Semester)
	in.StartTime = schedule.NormalizeTime(in.StartTime)
	in.EndTime = schedule.NormalizeTime(in.EndTime)

	if err := validate.Struct(in); err != nil {
		return err
	}
	if err := schedule.ValidateTimes(in.StartTime, in.EndTime); err != nil {
		field := "startTime"
		if err == schedule.ErrEndNotAfter || (in.StartTime != "" && core.IsValidTime(in.StartTime)) {
			field = "endTime"
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	if in.HasSchedule() && in.Day == 0 {
		return core.NewValidationError(schedule.ErrDayOutOfWeek, core.FieldError{Field: "day", Error: schedule.ErrDayOutOfWeek.Error()})
	}
	return nil
}

func (in Input) HasSchedule() bool {
	return in.StartTime != "" && in.EndTime != ""
}

type SubjectInput struct {
	Name string `json:"name" validate:"required"`
}

func (in *SubjectInput) Validate(validate *validator.Validate) error {
	in.Name = core.CleanString(in.Name)
	return validate.Struct(in)
}

// CleanOrderings drops orderings on unknown fields.
func CleanOrderings(orderings []core.DBOrdering) []core.DBOrdering {
	clean := make([]core.DBOrdering, 0, len(orderings))
	for _, o := range orderings {
		if OrderingFields[o.Field] {
			clean = append(clean, o)
		}
	}
	return clean
}
