package user_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/asistente/core"
	"github.com/trezcool/asistente/core/user"
	inmemdb "github.com/trezcool/asistente/storage/database/inmem"
	"github.com/trezcool/asistente/tests"
)

type mailMock struct {
	mu   sync.Mutex
	sent []*core.EmailMessage
}

func (m *mailMock) SendMessages(messages ...*core.EmailMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, messages...)
}

type tokenMaker interface {
	MakeToken(usr user.User) string
}

type fixture struct {
	svc  user.Service
	repo user.Repository
	mail *mailMock
}

func newFixture() fixture {
	repo := inmemdb.NewUserRepository(inmemdb.NewDB())
	validate, _ := testutil.NewValidator()
	mail := new(mailMock)
	return fixture{
		svc:  user.NewServiceMock(core.NewTestConfig(), repo, mail, validate),
		repo: repo,
		mail: mail,
	}
}

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	if verr, ok := err.(*core.ValidationError); ok && len(verr.Fields) > 0 {
		return verr.Fields[0].Field
	}
	return err.Error()
}

func TestNewUser_Validate(t *testing.T) {
	f := newFixture()
	validate, _ := testutil.NewValidator()
	testutil.CreateUser(t, f.repo, "Ana", "ana@test.test", "", true)

	valid := func() user.NewUser {
		return user.NewUser{
			Name:            "Luis Pérez",
			Email:           " Luis@Test.test ",
			University:      "Universidad Nacional",
			Career:          "Medicina",
			Password:        "Secret123",
			PasswordConfirm: "Secret123",
		}
	}

	tests := []struct {
		name    string
		mutate  func(nu *user.NewUser)
		wantErr string
	}{
		{name: "valid", mutate: func(*user.NewUser) {}},
		{name: "short name", mutate: func(nu *user.NewUser) { nu.Name = "Lu" }, wantErr: "name"},
		{name: "name with digits", mutate: func(nu *user.NewUser) { nu.Name = "Luis 2" }, wantErr: "alphaspace"},
		{name: "bad email", mutate: func(nu *user.NewUser) { nu.Email = "luis" }, wantErr: "email"},
		{name: "taken email", mutate: func(nu *user.NewUser) { nu.Email = "ANA@test.test" }, wantErr: "email"},
		{name: "short password", mutate: func(nu *user.NewUser) { nu.Password, nu.PasswordConfirm = "Ab1", "Ab1" }, wantErr: "pwdminlen"},
		{name: "simple password", mutate: func(nu *user.NewUser) { nu.Password, nu.PasswordConfirm = "secret123", "secret123" }, wantErr: "pwdcplx"},
		{name: "password like name", mutate: func(nu *user.NewUser) { nu.Password, nu.PasswordConfirm = "LuisPerez1", "LuisPerez1" }, wantErr: "pwdtoosim"},
		{name: "confirm mismatch", mutate: func(nu *user.NewUser) { nu.PasswordConfirm = "Secret124" }, wantErr: "passwordConfirm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := valid()
			tt.mutate(&nu)
			err := nu.Validate(validate, f.svc)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "luis@test.test", nu.Email)
				return
			}
			require.Error(t, err)
			assert.Contains(t, fieldOf(t, err), tt.wantErr)
		})
	}
}

func TestService_RegisterAndChangePassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	usr, err := f.svc.Register(ctx, user.NewUser{Name: "Ana", Email: "ana@test.test", Password: "Secret123"})
	require.NoError(t, err)
	assert.True(t, usr.IsActive)
	assert.NoError(t, usr.CheckPassword("Secret123"))

	got, err := f.svc.GetByEmail(ctx, " ANA@test.test")
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)

	_, err = f.svc.ChangePassword(ctx, usr, user.ChangePassword{CurrentPassword: "Wrong123", Password: "Other456x", PasswordConfirm: "Other456x"})
	require.Error(t, err)
	assert.Equal(t, "currentPassword", fieldOf(t, err))

	usr, err = f.svc.ChangePassword(ctx, usr, user.ChangePassword{CurrentPassword: "Secret123", Password: "Other456x", PasswordConfirm: "Other456x"})
	require.NoError(t, err)
	assert.NoError(t, usr.CheckPassword("Other456x"))
}

func TestService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	usr := testutil.CreateUser(t, f.repo, "Ana", "ana@test.test", "", true)

	updated, err := f.svc.UpdateProfile(ctx, usr, user.UpdateProfile{Career: " Derecho "})
	require.NoError(t, err)
	assert.Equal(t, "Ana", updated.Name)
	assert.Equal(t, usr.University, updated.University)
	assert.Equal(t, "Derecho", updated.Career)

	_, err = f.svc.UpdateProfile(ctx, usr, user.UpdateProfile{Name: "A1"})
	assert.Error(t, err)
}

func TestService_PasswordReset(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	usr := testutil.CreateUser(t, f.repo, "Ana", "ana@test.test", "Secret123", true)
	inactive := testutil.CreateUser(t, f.repo, "Eva", "eva@test.test", "Secret123", false)

	assert.True(t, core.IsNotFound(f.svc.RequestPasswordReset(ctx, "nobody@test.test")))
	assert.True(t, core.IsNotFound(f.svc.RequestPasswordReset(ctx, inactive.Email)))
	assert.Empty(t, f.mail.sent)

	require.NoError(t, f.svc.RequestPasswordReset(ctx, usr.Email))
	require.Len(t, f.mail.sent, 1)
	msg := f.mail.sent[0]
	assert.Equal(t, "password_reset", msg.TemplateName)
	assert.Equal(t, usr.Email, msg.To[0].Address)
	data := msg.TemplateData.(map[string]interface{})
	uid, token := data["UID"].(string), data["Token"].(string)
	assert.Equal(t, f.svc.(tokenMaker).MakeToken(usr), token)

	tests := []struct {
		name    string
		rp      user.ResetUserPassword
		wantErr bool
	}{
		{name: "bad uid", rp: user.ResetUserPassword{UID: "%%%", Token: token, Password: "Newpass1"}, wantErr: true},
		{name: "unknown uid", rp: user.ResetUserPassword{UID: user.EncodeUID(inactive) + "x", Token: token, Password: "Newpass1"}, wantErr: true},
		{name: "bad token", rp: user.ResetUserPassword{UID: uid, Token: "NRXWY-abc", Password: "Newpass1"}, wantErr: true},
		{name: "valid", rp: user.ResetUserPassword{UID: uid, Token: token, Password: "Newpass1"}},
		{name: "token used", rp: user.ResetUserPassword{UID: uid, Token: token, Password: "Newpass2"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.ResetPassword(ctx, tt.rp)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, user.ErrInvalidResetLink.Error(), err.Error())
				return
			}
			require.NoError(t, err)
			got, _ := f.svc.GetByID(ctx, usr.ID)
			assert.NoError(t, got.CheckPassword("Newpass1"))
		})
	}
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	usr := testutil.CreateUser(t, f.repo, "Ana", "ana@test.test", "", true)

	require.NoError(t, f.svc.Delete(ctx, usr.ID))
	_, err := f.svc.GetByID(ctx, usr.ID)
	assert.True(t, core.IsNotFound(err))
	assert.True(t, core.IsNotFound(f.svc.Delete(ctx, usr.ID)))
}
