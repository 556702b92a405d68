package service

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Alturino/marketplace/internal"
	"github.com/Alturino/marketplace/internal/config"
	inErrors "github.com/Alturino/marketplace/internal/errors"
	"github.com/Alturino/marketplace/internal/repository/repositorytest"
	"github.com/Alturino/marketplace/user/pkg/request"
)

const secretKey = "test-secret"

type sentMail struct {
	to   string
	link string
}

type recordingMailer struct {
	sent []sentMail
	err  error
}

func (m *recordingMailer) SendPasswordResetEmail(c context.Context, to string, resetLink string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, link: resetLink})
	return nil
}

type fixture struct {
	store   *repositorytest.Store
	mailer  *recordingMailer
	service *UserService
	now     time.Time
}

func setup(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:  repositorytest.NewStore(),
		mailer: &recordingMailer{},
		now:    time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC),
	}
	f.service = NewUserService(
		f.store,
		f.mailer,
		config.Application{SecretKey: secretKey, TokenTTL: 30 * time.Minute},
		config.PasswordReset{LinkBaseURL: "http://localhost:3000/reset-password", TTL: time.Hour},
	)
	f.service.cost = bcrypt.MinCost
	f.service.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) register(t *testing.T, param request.Register) uuid.UUID {
	t.Helper()
	user, err := f.service.Register(context.Background(), param)
	require.NoError(t, err)
	return user.ID
}

var alice = request.Register{
	Username: "alice",
	Email:    "alice@example.com",
	Password: "secret",
	Phone:    "+6281234567890",
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name        string
		param       request.Register
		expectedErr error
	}{
		{
			name:  "given new user should register",
			param: request.Register{Username: "bob", Email: "bob@example.com", Password: "secret", IsSeller: true},
		},
		{
			name:        "given duplicate username should conflict",
			param:       request.Register{Username: "alice", Email: "other@example.com", Password: "secret"},
			expectedErr: inErrors.ErrConflict,
		},
		{
			name:        "given duplicate email should conflict",
			param:       request.Register{Username: "other", Email: "alice@example.com", Password: "secret"},
			expectedErr: inErrors.ErrConflict,
		},
		{
			name:        "given duplicate phone should conflict",
			param:       request.Register{Username: "other", Email: "other@example.com", Password: "secret", Phone: alice.Phone},
			expectedErr: inErrors.ErrConflict,
		},
		{
			name:        "given empty password should return invalid input",
			param:       request.Register{Username: "other", Email: "other@example.com"},
			expectedErr: inErrors.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			f.register(t, alice)

			actual, err := f.service.Register(context.Background(), tt.param)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, actual.ID)
			assert.Equal(t, tt.param.Username, actual.Username)
			assert.Equal(t, tt.param.IsSeller, actual.IsSeller)

			stored, err := f.store.FindUserById(context.Background(), actual.ID)
			require.NoError(t, err)
			assert.NotEqual(t, tt.param.Password, stored.Password)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte(tt.param.Password)))
		})
	}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name        string
		param       request.Login
		expectedErr error
	}{
		{
			name:  "given valid credentials should return token",
			param: request.Login{Username: "alice", Password: "secret"},
		},
		{
			name:        "given wrong password should return not found",
			param:       request.Login{Username: "alice", Password: "wrong"},
			expectedErr: inErrors.ErrNotFound,
		},
		{
			name:        "given unknown username should return not found",
			param:       request.Login{Username: "carol", Password: "secret"},
			expectedErr: inErrors.ErrNotFound,
		},
		{
			name:        "given empty credentials should return invalid input",
			param:       request.Login{},
			expectedErr: inErrors.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			f.now = time.Now()
			userId := f.register(t, alice)

			actual, err := f.service.Login(context.Background(), tt.param)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Empty(t, actual.Token)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, userId, actual.User.ID)

			token, err := internal.VerifyToken(context.Background(), secretKey, actual.Token)
			require.NoError(t, err)
			subject, err := token.Claims.GetSubject()
			require.NoError(t, err)
			assert.Equal(t, userId.String(), subject)
		})
	}
}

func TestFindUserById(t *testing.T) {
	f := setup(t)
	userId := f.register(t, alice)

	actual, err := f.service.FindUserById(context.Background(), userId)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", actual.Email)
	assert.NotNil(t, actual.CreatedAt)

	_, err = f.service.FindUserById(context.Background(), uuid.New())
	assert.ErrorIs(t, err, inErrors.ErrNotFound)
}

func TestRequestPasswordReset(t *testing.T) {
	f := setup(t)
	f.register(t, alice)
	c := context.Background()

	token, err := f.service.RequestPasswordReset(c, "alice@example.com")
	require.NoError(t, err)
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "alice@example.com", f.mailer.sent[0].to)

	link, err := url.Parse(f.mailer.sent[0].link)
	require.NoError(t, err)
	assert.Equal(t, "/reset-password", link.Path)
	assert.Equal(t, token.String(), link.Query().Get("token"))

	stored, err := f.store.FindPasswordResetToken(c, token)
	require.NoError(t, err)
	assert.Equal(t, f.now.Add(time.Hour), stored.ExpiresAt)

	_, err = f.service.RequestPasswordReset(c, "nobody@example.com")
	assert.ErrorIs(t, err, inErrors.ErrNotFound)
	assert.Len(t, f.mailer.sent, 1)
}

func TestRequestPasswordResetReportsMailFailure(t *testing.T) {
	f := setup(t)
	f.register(t, alice)
	f.mailer.err = errors.New("smtp unavailable")

	_, err := f.service.RequestPasswordReset(context.Background(), "alice@example.com")

	assert.ErrorIs(t, err, inErrors.ErrUnexpected)
}

func TestValidatePasswordResetToken(t *testing.T) {
	f := setup(t)
	f.register(t, alice)
	c := context.Background()

	token, err := f.service.RequestPasswordReset(c, "alice@example.com")
	require.NoError(t, err)

	valid, err := f.service.ValidatePasswordResetToken(c, token)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = f.service.ValidatePasswordResetToken(c, uuid.New())
	require.NoError(t, err)
	assert.False(t, valid)

	f.now = f.now.Add(time.Hour + time.Second)
	valid, err = f.service.ValidatePasswordResetToken(c, token)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestResetPassword(t *testing.T) {
	f := setup(t)
	f.register(t, alice)
	c := context.Background()

	token, err := f.service.RequestPasswordReset(c, "alice@example.com")
	require.NoError(t, err)

	_, err = f.service.ResetPassword(c, token, "")
	assert.ErrorIs(t, err, inErrors.ErrInvalidInput)

	actual, err := f.service.ResetPassword(c, token, "new-secret")
	require.NoError(t, err)
	assert.True(t, actual.Success)

	_, err = f.store.FindPasswordResetToken(c, token)
	assert.ErrorIs(t, err, inErrors.ErrNotFound)

	_, err = f.service.Login(c, request.Login{Username: "alice", Password: "new-secret"})
	assert.NoError(t, err)
	_, err = f.service.Login(c, request.Login{Username: "alice", Password: "secret"})
	assert.ErrorIs(t, err, inErrors.ErrNotFound)

	actual, err = f.service.ResetPassword(c, token, "again")
	assert.ErrorIs(t, err, inErrors.ErrNotFound)
	assert.False(t, actual.Success)
}

func TestResetPasswordRejectsExpiredToken(t *testing.T) {
	f := setup(t)
	f.register(t, alice)
	c := context.Background()

	token, err := f.service.RequestPasswordReset(c, "alice@example.com")
	require.NoError(t, err)

	f.now = f.now.Add(2 * time.Hour)
	_, err = f.service.ResetPassword(c, token, "new-secret")
	assert.ErrorIs(t, err, inErrors.ErrExpired)

	_, err = f.store.FindPasswordResetToken(c, token)
	assert.NoError(t, err)
}
