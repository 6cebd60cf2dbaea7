package user

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/asistente/core"
)

type serviceMock struct {
	service
}

func NewServiceMock(conf *core.Config, repo Repository, mailSvc core.EmailService, validate *validator.Validate) Service {
	return &serviceMock{
		service: service{
			repo:     repo,
			mailSvc:  mailSvc,
			tokenGen: newTokenGenerator(conf),
			validate: validate,
			appName:  conf.AppName,
		},
	}
}

func (svc *serviceMock) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !usr.IsActive {
		return ErrNotFound
	}
	// run synchronously
	svc.sendPasswordResetMail(usr)
	return nil
}

// MakeToken exposes the password reset token of usr to tests.
func (svc *serviceMock) MakeToken(usr User) string {
	return svc.tokenGen.makeToken(usr)
}
