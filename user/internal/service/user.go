package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Alturino/marketplace/internal"
	"github.com/Alturino/marketplace/internal/config"
	inErrors "github.com/Alturino/marketplace/internal/errors"
	"github.com/Alturino/marketplace/internal/log"
	inOtel "github.com/Alturino/marketplace/internal/otel"
	"github.com/Alturino/marketplace/internal/repository"
	"github.com/Alturino/marketplace/user/internal/otel"
	"github.com/Alturino/marketplace/user/pkg/request"
	"github.com/Alturino/marketplace/user/pkg/response"
)

// Mailer delivers the password reset link to the user.
type Mailer interface {
	SendPasswordResetEmail(c context.Context, to string, resetLink string) error
}

type UserService struct {
	store  repository.Store
	mailer Mailer
	app    config.Application
	reset  config.PasswordReset
	cost   int
	now    func() time.Time
}

func NewUserService(
	store repository.Store,
	mailer Mailer,
	app config.Application,
	reset config.PasswordReset,
) *UserService {
	if app.TokenTTL <= 0 {
		app.TokenTTL = 30 * time.Minute
	}
	if reset.TTL <= 0 {
		reset.TTL = time.Hour
	}
	return &UserService{
		store:  store,
		mailer: mailer,
		app:    app,
		reset:  reset,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
}

func (u *UserService) Register(c context.Context, param request.Register) (response.User, error) {
	c, span := otel.Tracer.Start(c, "UserService Register")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService Register").
		Object(log.KeyRequestBody, param).
		Logger()

	failed := func(err error) (response.User, error) {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "validating user").Logger()
	logger.Info().Msg("validating user")
	param.Username = strings.TrimSpace(param.Username)
	param.Email = strings.TrimSpace(param.Email)
	if param.Username == "" || param.Email == "" || param.Password == "" {
		return failed(fmt.Errorf(
			"username, email and password are required with error=%w",
			inErrors.ErrInvalidInput,
		))
	}
	logger.Info().Msg("validated user")

	logger = logger.With().Str(log.KeyProcess, "hashing password").Logger()
	logger.Info().Msg("hashing password")
	hashed, err := bcrypt.GenerateFromPassword([]byte(param.Password), u.cost)
	if err != nil {
		return failed(fmt.Errorf(
			"failed hashing password with error=%w",
			errors.Join(inErrors.ErrFailedHashToken, err),
		))
	}
	logger.Info().Msg("hashed password")

	logger = logger.With().Str(log.KeyProcess, "inserting user to database").Logger()
	logger.Info().Msg("inserting user to database")
	var user repository.User
	err = u.store.ExecTx(c, func(q repository.Querier) error {
		conflicts, err := q.FindUserConflicts(c, param.Username, param.Email, param.Phone)
		if err != nil {
			return fmt.Errorf("failed finding user conflicts with error=%w", err)
		}
		switch {
		case conflicts.Username:
			return fmt.Errorf("username=%s already exist with error=%w", param.Username, inErrors.ErrConflict)
		case conflicts.Email:
			return fmt.Errorf("email=%s already exist with error=%w", param.Email, inErrors.ErrConflict)
		case conflicts.Phone:
			return fmt.Errorf("phone=%s already exist with error=%w", param.Phone, inErrors.ErrConflict)
		}

		user, err = q.InsertUser(c, repository.InsertUserParams{
			ID:        uuid.New(),
			Username:  param.Username,
			Email:     param.Email,
			Password:  string(hashed),
			FirstName: param.FirstName,
			LastName:  param.LastName,
			Phone:     param.Phone,
			IsSeller:  param.IsSeller,
			CreatedAt: u.now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("failed inserting user with error=%w", err)
		}
		return nil
	})
	if err != nil {
		return failed(fmt.Errorf("failed inserting user to database with error=%w", err))
	}
	logger.Info().Str(log.KeyUserID, user.ID.String()).Msg("inserted user to database")

	return response.FromUser(user), nil
}

// Login verifies the credentials and returns a signed token for the user.
// An unknown username and a wrong password are reported the same way.
func (u *UserService) Login(c context.Context, param request.Login) (response.Login, error) {
	c, span := otel.Tracer.Start(c, "UserService Login")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService Login").
		Str(log.KeyUsername, param.Username).
		Logger()

	failed := func(err error) (response.Login, error) {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Login{}, err
	}

	if strings.TrimSpace(param.Username) == "" || param.Password == "" {
		return failed(fmt.Errorf("username and password are required with error=%w", inErrors.ErrInvalidInput))
	}

	logger = logger.With().Str(log.KeyProcess, "finding user").Logger()
	logger.Info().Msg("finding user by username")
	user, err := u.store.FindUserByUsername(c, strings.TrimSpace(param.Username))
	if errors.Is(err, inErrors.ErrNotFound) {
		return failed(fmt.Errorf("%s with error=%w", response.MessageInvalidCredentials, inErrors.ErrNotFound))
	}
	if err != nil {
		return failed(fmt.Errorf("failed finding user by username with error=%w", err))
	}
	logger = logger.With().Str(log.KeyUserID, user.ID.String()).Logger()
	logger.Info().Msg("found user by username")

	logger = logger.With().Str(log.KeyProcess, "verifying password").Logger()
	logger.Info().Msg("verifying hashed password with password")
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(param.Password)); err != nil {
		return failed(fmt.Errorf("%s with error=%w", response.MessageInvalidCredentials, inErrors.ErrNotFound))
	}
	logger.Info().Msg("verified hashed password with password")

	logger = logger.With().Str(log.KeyProcess, "signing token").Logger()
	logger.Info().Msg("signing token")
	token, err := internal.NewToken(user.ID, u.app.SecretKey, u.app.TokenTTL, u.now())
	if err != nil {
		return failed(fmt.Errorf("failed signing token with error=%w", errors.Join(inErrors.ErrUnexpected, err)))
	}
	logger.Info().Msg("signed token")

	return response.Login{Token: token, User: response.FromUser(user)}, nil
}

func (u *UserService) FindUserById(c context.Context, id uuid.UUID) (response.User, error) {
	c, span := otel.Tracer.Start(c, "UserService FindUserById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService FindUserById").
		Str(log.KeyUserID, id.String()).
		Str(log.KeyProcess, "finding user by id").
		Logger()

	logger.Info().Msg("finding user by id")
	user, err := u.store.FindUserById(c, id)
	if err != nil {
		err = fmt.Errorf("failed finding user by id with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Info().Msg("found user by id")

	return response.FromUser(user), nil
}

func (u *UserService) resetLink(token uuid.UUID) string {
	link, err := url.Parse(u.reset.LinkBaseURL)
	if err != nil {
		return u.reset.LinkBaseURL + "?token=" + token.String()
	}
	query := link.Query()
	query.Set("token", token.String())
	link.RawQuery = query.Encode()
	return link.String()
}

// RequestPasswordReset stores a new reset token for the user owning email
// and mails the reset link. The token is kept when the mail fails.
func (u *UserService) RequestPasswordReset(c context.Context, email string) (uuid.UUID, error) {
	c, span := otel.Tracer.Start(c, "UserService RequestPasswordReset")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService RequestPasswordReset").
		Str(log.KeyEmail, email).
		Logger()

	failed := func(err error) (uuid.UUID, error) {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return uuid.Nil, err
	}

	logger = logger.With().Str(log.KeyProcess, "finding user by email").Logger()
	logger.Info().Msg("finding user by email")
	user, err := u.store.FindUserByEmail(c, strings.TrimSpace(email))
	if err != nil {
		return failed(fmt.Errorf("failed finding user by email with error=%w", err))
	}
	logger = logger.With().Str(log.KeyUserID, user.ID.String()).Logger()
	logger.Info().Msg("found user by email")

	logger = logger.With().Str(log.KeyProcess, "inserting password reset token").Logger()
	logger.Info().Msg("inserting password reset token")
	token, err := u.store.InsertPasswordResetToken(c, repository.PasswordResetToken{
		Token:     uuid.New(),
		UserID:    user.ID,
		ExpiresAt: u.now().Add(u.reset.TTL).UTC(),
	})
	if err != nil {
		return failed(fmt.Errorf("failed inserting password reset token with error=%w", err))
	}
	logger.Info().Msg("inserted password reset token")

	logger = logger.With().Str(log.KeyProcess, "sending password reset email").Logger()
	logger.Info().Msg("sending password reset email")
	if err := u.mailer.SendPasswordResetEmail(c, user.Email, u.resetLink(token.Token)); err != nil {
		return failed(fmt.Errorf(
			"failed sending password reset email with error=%w",
			errors.Join(inErrors.ErrUnexpected, err),
		))
	}
	logger.Info().Msg("sent password reset email")

	return token.Token, nil
}

// ValidatePasswordResetToken reports whether token exists and has not expired.
func (u *UserService) ValidatePasswordResetToken(c context.Context, token uuid.UUID) (bool, error) {
	c, span := otel.Tracer.Start(c, "UserService ValidatePasswordResetToken")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService ValidatePasswordResetToken").
		Str(log.KeyProcess, "finding password reset token").
		Logger()

	logger.Info().Msg("finding password reset token")
	found, err := u.store.FindPasswordResetToken(c, token)
	if errors.Is(err, inErrors.ErrNotFound) {
		logger.Info().Msg("password reset token not found")
		return false, nil
	}
	if err != nil {
		err = fmt.Errorf("failed finding password reset token with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return false, err
	}
	valid := !u.now().After(found.ExpiresAt)
	logger.Info().Bool("valid", valid).Msg("found password reset token")

	return valid, nil
}

// ResetPassword replaces the password of the token's owner and consumes the token.
func (u *UserService) ResetPassword(
	c context.Context,
	token uuid.UUID,
	password string,
) (response.ResetPassword, error) {
	c, span := otel.Tracer.Start(c, "UserService ResetPassword")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService ResetPassword").
		Logger()

	failed := func(err error) (response.ResetPassword, error) {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ResetPassword{Success: false, Message: response.MessageResetTokenInvalid}, err
	}

	if password == "" {
		return failed(fmt.Errorf("password is required with error=%w", inErrors.ErrInvalidInput))
	}

	logger = logger.With().Str(log.KeyProcess, "hashing password").Logger()
	logger.Info().Msg("hashing password")
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), u.cost)
	if err != nil {
		return failed(fmt.Errorf(
			"failed hashing password with error=%w",
			errors.Join(inErrors.ErrFailedHashToken, err),
		))
	}
	logger.Info().Msg("hashed password")

	logger = logger.With().Str(log.KeyProcess, "resetting password").Logger()
	logger.Info().Msg("resetting password")
	err = u.store.ExecTx(c, func(q repository.Querier) error {
		found, err := q.FindPasswordResetToken(c, token)
		if err != nil {
			return fmt.Errorf("failed finding password reset token with error=%w", err)
		}
		if u.now().After(found.ExpiresAt) {
			return fmt.Errorf("password reset token expired at=%s with error=%w", found.ExpiresAt, inErrors.ErrExpired)
		}

		if _, err := q.UpdateUserPassword(c, found.UserID, string(hashed)); err != nil {
			return fmt.Errorf("failed updating password of userId=%s with error=%w", found.UserID, err)
		}
		if _, err := q.DeletePasswordResetToken(c, token); err != nil {
			return fmt.Errorf("failed deleting password reset token with error=%w", err)
		}
		return nil
	})
	if err != nil {
		return failed(fmt.Errorf("failed resetting password with error=%w", err))
	}
	logger.Info().Msg("reset password")

	return response.ResetPassword{Success: true, Message: response.MessagePasswordReset}, nil
}
