package testutil

import (
	"context"
	"io/ioutil"
	"log"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/asistente/core"
	"github.com/trezcool/asistente/core/activity"
	"github.com/trezcool/asistente/core/course"
	"github.com/trezcool/asistente/core/user"
	logsvc "github.com/trezcool/asistente/services/logger"
)

// NewLogger returns a silent logger that never reports to rollbar.
func NewLogger() *logsvc.RollbarLogger {
	logger := logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), core.NewTestConfig())
	logger.Enable(false)
	return logger
}

func NewTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// NewValidator returns a validator with every custom validation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

func CreateUser(t *testing.T, repo user.Repository, name, email, pwd string, isActive bool) user.User {
	t.Helper()

	now := core.NowMillis()
	usr := user.User{
		Name:       name,
		Email:      email,
		University: "Universidad Nacional",
		Career:     "Ingeniería",
		IsActive:   isActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func CreateCourse(t *testing.T, repo course.Repository, userID, name string) course.Course {
	t.Helper()

	now := core.NowMillis()
	crs, err := repo.CreateCourse(context.Background(), course.Course{
		UserID:    userID,
		Name:      name,
		Code:      "C-" + name,
		Professor: "Prof",
		Location:  "Aula 1",
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("createCourse() failed: %v", err)
	}
	return crs
}

// CreateActivity saves act as is; it does not recalculate its container.
func CreateActivity(t *testing.T, repo activity.Repository, act activity.Activity) activity.Activity {
	t.Helper()

	now := core.NowMillis()
	if act.CreatedAt == 0 {
		act.CreatedAt, act.UpdatedAt = now, now
	}
	act, err := repo.CreateActivity(context.Background(), act)
	if err != nil {
		t.Fatalf("createActivity() failed: %v", err)
	}
	return act
}
