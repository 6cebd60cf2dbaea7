package activity

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/asistente/core"
)

func TestActivity_Contribution(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		score  null.Float64
		weight float64
		want   float64
	}{
		{name: "pending", status: StatusPending, score: null.Float64From(10), weight: 20, want: 0},
		{name: "in progress", status: StatusInProgress, score: null.Float64From(8), weight: 20, want: 0},
		{name: "completed without score", status: StatusCompleted, weight: 20, want: 0},
		{name: "completed", status: StatusCompleted, score: null.Float64From(8), weight: 20, want: 16},
		{name: "perfect score", status: StatusCompleted, score: null.Float64From(10), weight: 35, want: 35},
		{name: "zero score", status: StatusCompleted, score: null.Float64From(0), weight: 35, want: 0},
		{name: "score above 10 saturates", status: StatusCompleted, score: null.Float64From(15), weight: 20, want: 20},
		{name: "negative score saturates", status: StatusCompleted, score: null.Float64From(-3), weight: 20, want: 0},
		{name: "weight above 100 passes through", status: StatusCompleted, score: null.Float64From(5), weight: 300, want: 150},
		{name: "negative weight passes through", status: StatusCompleted, score: null.Float64From(5), weight: -10, want: -5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			act := Activity{Status: tt.status, ScoreObtained: tt.score, WeightPercent: tt.weight}
			if got := act.Contribution(); got != tt.want {
				t.Errorf("Contribution() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestActivity_ContributionIsMonotonic(t *testing.T) {
	prev := -1.0
	for score := 0.0; score <= 10; score += 0.5 {
		act := Activity{Status: StatusCompleted, ScoreObtained: null.Float64From(score), WeightPercent: 25}
		got := act.Contribution()
		if got < prev {
			t.Fatalf("Contribution() with score %v = %v, lower than %v", score, got, prev)
		}
		prev = got
	}
}

func TestActivity_Container(t *testing.T) {
	tests := []struct {
		name string
		act  Activity
		want Container
	}{
		{name: "course", act: Activity{CourseID: "c1"}, want: CourseContainer("c1")},
		{name: "legacy subject", act: Activity{SubjectID: "s1"}, want: SubjectContainer("s1")},
		{name: "course wins", act: Activity{CourseID: "c1", SubjectID: "s1"}, want: CourseContainer("c1")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.act.Container(); got != tt.want {
				t.Errorf("Container() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPriority_Rank(t *testing.T) {
	if !(PriorityLow.Rank() < PriorityMedium.Rank() && PriorityMedium.Rank() < PriorityHigh.Rank()) {
		t.Errorf("Rank() should order low < medium < high")
	}
	if Priority("urgent").Rank() >= PriorityLow.Rank() {
		t.Errorf("Rank() of unknown priority should be below low")
	}
}

func TestInput_Validate(t *testing.T) {
	validate := validator.New()

	tests := []struct {
		name    string
		in      Input
		wantErr bool
	}{
		{name: "defaults", in: Input{CourseID: "c1", Title: "Essay"}},
		{name: "legacy subject", in: Input{SubjectID: "s1", Title: "Essay", Type: TypeExam, Priority: PriorityHigh, Status: StatusCompleted}},
		{name: "missing title", in: Input{CourseID: "c1", Title: "  "}, wantErr: true},
		{name: "no container", in: Input{Title: "Essay"}, wantErr: true},
		{name: "two containers", in: Input{CourseID: "c1", SubjectID: "s1", Title: "Essay"}, wantErr: true},
		{name: "invalid type", in: Input{CourseID: "c1", Title: "Essay", Type: "quiz"}, wantErr: true},
		{name: "invalid priority", in: Input{CourseID: "c1", Title: "Essay", Priority: "urgent"}, wantErr: true},
		{name: "invalid status", in: Input{CourseID: "c1", Title: "Essay", Status: "done"}, wantErr: true},
		{name: "negative due date", in: Input{CourseID: "c1", Title: "Essay", DueDateMillis: -1}, wantErr: true},
		{name: "unbounded weight and score", in: Input{CourseID: "c1", Title: "Essay", WeightPercent: 250, ScoreObtained: null.Float64From(42)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			if err := in.Validate(validate); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	t.Run("fills defaults", func(t *testing.T) {
		in := Input{CourseID: " c1 ", Title: " Essay "}
		if err := in.Validate(validate); err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		want := Input{CourseID: "c1", Title: "Essay", Type: TypeTask, Priority: PriorityMedium, Status: StatusPending}
		if in != want {
			t.Errorf("Validate() input = %+v, want %+v", in, want)
		}
	})

	t.Run("container error is a ValidationError", func(t *testing.T) {
		in := Input{Title: "Essay"}
		err := in.Validate(validate)
		if _, ok := err.(*core.ValidationError); !ok {
			t.Errorf("Validate() error = %T, want *core.ValidationError", err)
		}
	})
}

func TestQueryFilter_Matches(t *testing.T) {
	act := Activity{CourseID: "c1", Status: StatusPending}
	tests := []struct {
		name   string
		filter QueryFilter
		want   bool
	}{
		{name: "empty", filter: QueryFilter{}, want: true},
		{name: "course", filter: QueryFilter{CourseID: "c1"}, want: true},
		{name: "other course", filter: QueryFilter{CourseID: "c2"}, want: false},
		{name: "subject", filter: QueryFilter{SubjectID: "s1"}, want: false},
		{name: "course and status", filter: QueryFilter{CourseID: "c1", Status: StatusPending}, want: true},
		{name: "course and other status", filter: QueryFilter{CourseID: "c1", Status: StatusCompleted}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(act); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}
