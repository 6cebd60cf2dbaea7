package activity

import (
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/asistente/core"
)

type Type string

const (
	TypeTask       Type = "task"
	TypeExam       Type = "exam"
	TypeEvaluation Type = "evaluation"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var priorityRanks = map[Priority]int{
	PriorityLow:    1,
	PriorityMedium: 2,
	PriorityHigh:   3,
}

// Rank orders priorities low < medium < high. Unknown values rank below low.
func (p Priority) Rank() int {
	return priorityRanks[p]
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// ContainerKind identifies the kind of grading container an activity belongs to.
type ContainerKind string

const (
	KindCourse  ContainerKind = "course"
	KindSubject ContainerKind = "subject" // legacy
)

// Container is a Course (or legacy Subject) owning a set of activities.
type Container struct {
	Kind ContainerKind
	ID   string
}

func CourseContainer(id string) Container  { return Container{Kind: KindCourse, ID: id} }
func SubjectContainer(id string) Container { return Container{Kind: KindSubject, ID: id} }

func (c Container) IsZero() bool { return c.ID == "" }

// Activity is one gradable task of a course.
type Activity struct {
	ID            string       `json:"id"`
	UserID        string       `json:"-"`
	CourseID      string       `json:"courseId"`
	SubjectID     string       `json:"subjectId"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Type          Type         `json:"type"`
	Priority      Priority     `json:"priority"`
	Status        Status       `json:"status"`
	DueDateMillis int64        `json:"dueDateMillis"` // 0 = unset
	WeightPercent float64      `json:"weightPercent"`
	ScoreObtained null.Float64 `json:"scoreObtained"`
	CreatedAt     int64        `json:"createdAt"`
	UpdatedAt     int64        `json:"updatedAt"`
}

// Contribution returns the share of its container's globalPercentage this activity adds.
// Only completed activities with a score contribute; the score saturates to [0, 10],
// the weight is used as is.
func (a Activity) Contribution() float64 {
	if a.Status != StatusCompleted || !a.ScoreObtained.Valid {
		return 0
	}
	score := a.ScoreObtained.Float64
	if score < 0 {
		score = 0
	} else if score > 10 {
		score = 10
	}
	return score / 10 * a.WeightPercent
}

// Container returns the grading container of the activity; the course wins over the legacy subject.
func (a Activity) Container() Container {
	if a.CourseID != "" {
		return CourseContainer(a.CourseID)
	}
	return SubjectContainer(a.SubjectID)
}

func (a Activity) IsCompleted() bool { return a.Status == StatusCompleted }

// Input contains what may be provided to create or update an Activity.
type Input struct {
	CourseID      string       `json:"courseId"`
	SubjectID     string       `json:"subjectId"`
	Title         string       `json:"title" validate:"required"`
	Description   string       `json:"description"`
	Type          Type         `json:"type" validate:"oneof=task exam evaluation"`
	Priority      Priority     `json:"priority" validate:"oneof=low medium high"`
	Status        Status       `json:"status" validate:"oneof=pending in_progress completed"`
	DueDateMillis int64        `json:"dueDateMillis" validate:"gte=0"`
	WeightPercent float64      `json:"weightPercent"`
	ScoreObtained null.Float64 `json:"scoreObtained"`
}

var errOneContainer = "exactly one of courseId or subjectId is required"

func (in *Input) Validate(validate *validator.Validate) error {
	in.CourseID = core.CleanString(in.CourseID)
	in.SubjectID = core.CleanString(in.SubjectID)
	in.Title = core.CleanString(in.Title)
	in.Description = core.CleanString(in.Description)
	if in.Type == "" {
		in.Type = TypeTask
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if in.Status == "" {
		in.Status = StatusPending
	}

	if err := validate.Struct(in); err != nil {
		return err
	}
	if (in.CourseID == "") == (in.SubjectID == "") {
		return core.NewValidationError(nil, core.FieldError{Field: "courseId", Error: errOneContainer})
	}
	return nil
}

func (in Input) Container() Container {
	if in.CourseID != "" {
		return CourseContainer(in.CourseID)
	}
	return SubjectContainer(in.SubjectID)
}

type QueryFilter struct {
	CourseID  string `query:"course_id"`
	SubjectID string `query:"subject_id"`
	Status    Status `query:"status"`
}

func (qf *QueryFilter) Clean() {
	qf.CourseID = core.CleanString(qf.CourseID)
	qf.SubjectID = core.CleanString(qf.SubjectID)
	qf.Status = Status(core.CleanString(string(qf.Status), true /* lower */))
}

// ForContainer returns the filter matching every activity of c.
func ForContainer(c Container) QueryFilter {
	if c.Kind == KindCourse {
		return QueryFilter{CourseID: c.ID}
	}
	return QueryFilter{SubjectID: c.ID}
}

// Matches reports whether a satisfies every non-empty field of the filter.
func (qf QueryFilter) Matches(a Activity) bool {
	if qf.CourseID != "" && a.CourseID != qf.CourseID {
		return false
	}
	if qf.SubjectID != "" && a.SubjectID != qf.SubjectID {
		return false
	}
	if qf.Status != "" && a.Status != qf.Status {
		return false
	}
	return true
}
