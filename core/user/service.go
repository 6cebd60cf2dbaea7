package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/asistente/core"
)

var (
	// errors
	ErrNotFound         = core.NewNotFoundError("user")
	ErrEmailExists      = errors.New("a user with this email already exists")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrInvalidResetLink = errors.New("the password reset link is invalid or has expired")
)

type (
	Repository interface {
		EmailExists(ctx context.Context, email string, excludedIDs ...string) (bool, error)
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		QueryAllUsers(ctx context.Context) ([]User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		// DeleteUser deletes the user along with all of their data.
		DeleteUser(ctx context.Context, id string) error
	}

	Service interface {
		CheckEmailUniqueness(email string, excludedUsers ...User) error
		Register(ctx context.Context, nu NewUser) (User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		QueryAll(ctx context.Context) ([]User, error)
		SetLastLogin(ctx context.Context, usr User) (User, error)
		UpdateProfile(ctx context.Context, usr User, up UpdateProfile) (User, error)
		ChangePassword(ctx context.Context, usr User, cp ChangePassword) (User, error)
		SetPassword(ctx context.Context, usr User, pwd string) (User, error)
		RequestPasswordReset(ctx context.Context, email string) error
		ResetPassword(ctx context.Context, rp ResetUserPassword) error
		Delete(ctx context.Context, id string) error
	}

	service struct {
		repo     Repository
		mailSvc  core.EmailService
		tokenGen tokenGenerator
		validate *validator.Validate
		appName  string
	}
)

var _ Service = (*service)(nil)

func NewService(conf *core.Config, repo Repository, mailSvc core.EmailService, validate *validator.Validate) Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(conf, "conf"),
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(mailSvc, "mailSvc"),
		vala.IsNotNil(validate, "validate"),
	).CheckAndPanic()

	return &service{
		repo:     repo,
		mailSvc:  mailSvc,
		tokenGen: newTokenGenerator(conf),
		validate: validate,
		appName:  conf.AppName,
	}
}

func (svc *service) CheckEmailUniqueness(email string, excludedUsers ...User) error {
	excl := make([]string, 0, len(excludedUsers))
	for _, u := range excludedUsers {
		excl = append(excl, u.ID)
	}
	exists, err := svc.repo.EmailExists(context.Background(), email, excl...)
	if err != nil {
		return pkgerrors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	}
	return nil
}

func (svc *service) Register(ctx context.Context, nu NewUser) (User, error) {
	now := core.NowMillis()
	usr := User{
		Name:       nu.Name,
		Email:      nu.Email,
		University: nu.University,
		Career:     nu.Career,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = core.NowMillis()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *service) UpdateProfile(ctx context.Context, usr User, up UpdateProfile) (User, error) {
	if err := up.Validate(svc.validate, usr); err != nil {
		return User{}, err
	}
	usr.Name = up.Name
	usr.University = up.University
	usr.Career = up.Career
	usr.UpdatedAt = core.NowMillis()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *service) ChangePassword(ctx context.Context, usr User, cp ChangePassword) (User, error) {
	if err := cp.Validate(svc.validate, usr); err != nil {
		return User{}, err
	}
	if err := usr.CheckPassword(cp.CurrentPassword); err != nil {
		return User{}, core.NewValidationError(ErrInvalidPassword, core.FieldError{Field: "currentPassword", Error: ErrInvalidPassword.Error()})
	}
	return svc.SetPassword(ctx, usr, cp.Password)
}

func (svc *service) SetPassword(ctx context.Context, usr User, pwd string) (User, error) {
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, err
	}
	usr.UpdatedAt = core.NowMillis()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !usr.IsActive {
		return ErrNotFound
	}
	go svc.sendPasswordResetMail(usr)
	return nil
}

func (svc *service) sendPasswordResetMail(usr User) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Password Reset",
		TemplateName: "password_reset",
		TemplateData: map[string]interface{}{
			"Name":    usr.Name,
			"AppName": svc.appName,
			"UID":     EncodeUID(usr),
			"Token":   svc.tokenGen.makeToken(usr),
		},
	})
}

func (svc *service) ResetPassword(ctx context.Context, rp ResetUserPassword) error {
	invalidErr := core.NewValidationError(ErrInvalidResetLink)

	id, err := decodeUID(rp.UID)
	if err != nil {
		return invalidErr
	}
	usr, err := svc.GetByID(ctx, id)
	if err != nil {
		if core.IsNotFound(err) {
			return invalidErr
		}
		return pkgerrors.Wrap(err, "finding user by ID")
	}
	if err := svc.tokenGen.verifyToken(usr, rp.Token); err != nil {
		return invalidErr
	}
	_, err = svc.SetPassword(ctx, usr, rp.Password)
	return err
}

func (svc *service) Delete(ctx context.Context, id string) error {
	if err := svc.repo.DeleteUser(ctx, id); err != nil {
		return pkgerrors.Wrap(err, fmt.Sprintf("deleting user %s", id))
	}
	return nil
}
