package user

import (
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/asistente/core"
)

type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	University   string `json:"university"`
	Career       string `json:"career"`
	IsActive     bool   `json:"isActive"`
	PasswordHash []byte `json:"-"`
	CreatedAt    int64  `json:"createdAt"` // epoch ms
	UpdatedAt    int64  `json:"updatedAt"` // epoch ms
	LastLogin    int64  `json:"lastLogin"` // epoch ms, 0 = never
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// GetFilter selects a single User; the first non-empty field wins.
type GetFilter struct {
	ID    string
	Email string
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Name            string `json:"name" validate:"required,min=3,alphaspace"`
	Email           string `json:"email" validate:"required,email"`
	University      string `json:"university" validate:"required,min=3"`
	Career          string `json:"career" validate:"required,min=3"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.University = core.CleanString(nu.University)
	nu.Career = core.CleanString(nu.Career)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(nu.Email)
}

// UpdateProfile defines what information may be provided to modify the profile of a User.
// Empty fields are kept unchanged.
type UpdateProfile struct {
	Name       string `json:"name" validate:"omitempty,min=3,alphaspace"`
	University string `json:"university" validate:"omitempty,min=3"`
	Career     string `json:"career" validate:"omitempty,min=3"`
}

func (up *UpdateProfile) Validate(validate *validator.Validate, origUsr User) error {
	if name := core.CleanString(up.Name); name != "" {
		up.Name = name
	} else {
		up.Name = origUsr.Name
	}
	if uni := core.CleanString(up.University); uni != "" {
		up.University = uni
	} else {
		up.University = origUsr.University
	}
	if career := core.CleanString(up.Career); career != "" {
		up.Career = career
	} else {
		up.Career = origUsr.Career
	}
	return validate.Struct(up)
}

type ChangePassword struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	Password        string `json:"password" validate:"required,nefield=CurrentPassword"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`

	usr User // for the password policy
}

func (cp *ChangePassword) Validate(validate *validator.Validate, usr User) error {
	cp.usr = usr
	return validate.Struct(cp)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate(validate *validator.Validate) error { return validate.Struct(rp) }
