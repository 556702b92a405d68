package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	inErrors "github.com/Alturino/marketplace/internal/errors"
	inHttp "github.com/Alturino/marketplace/internal/http"
	"github.com/Alturino/marketplace/internal/log"
	inOtel "github.com/Alturino/marketplace/internal/otel"
	"github.com/Alturino/marketplace/internal/validate"
	"github.com/Alturino/marketplace/user/internal/otel"
	"github.com/Alturino/marketplace/user/internal/service"
	"github.com/Alturino/marketplace/user/pkg/request"
	"github.com/Alturino/marketplace/user/pkg/response"
)

type UserController struct {
	service  *service.UserService
	validate *validator.Validate
}

func AttachUserController(public *mux.Router, protected *mux.Router, service *service.UserService) {
	controller := UserController{
		service:  service,
		validate: validate.New(),
	}

	router := public.PathPrefix("/users").Subrouter()
	router.HandleFunc("/login", controller.Login).Methods(http.MethodPost)
	router.HandleFunc("/register", controller.Register).Methods(http.MethodPost)
	router.HandleFunc("/password-reset", controller.RequestPasswordReset).Methods(http.MethodPost)
	router.HandleFunc("/password-reset/{token}", controller.ValidatePasswordResetToken).Methods(http.MethodGet)
	router.HandleFunc("/password-reset/{token}", controller.ResetPassword).Methods(http.MethodPost)

	protected.HandleFunc("/users/{userId}", controller.FindUserById).Methods(http.MethodGet)
}

func decode[T any](c context.Context, validate *validator.Validate, r *http.Request) (T, error) {
	var reqBody T
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		return reqBody, fmt.Errorf("failed decoding request body with error=%w", inErrors.InvalidInput(err))
	}
	if err := validate.StructCtx(c, reqBody); err != nil {
		return reqBody, fmt.Errorf("failed validating request body with error=%w", inErrors.InvalidInput(err))
	}
	return reqBody, nil
}

func pathToken(r *http.Request) (uuid.UUID, error) {
	value := mux.Vars(r)["token"]
	token, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed parsing token=%s with error=%w", value, inErrors.InvalidInput(err))
	}
	return token, nil
}

func (u UserController) Login(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController Login")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserController Login").
		Str(log.KeyProcess, "validating requestbody").
		Logger()

	logger.Info().Msg("decoding request body")
	reqBody, err := decode[request.Login](c, u.validate, r)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Object(log.KeyRequestBody, reqBody).Logger()
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "login").Logger()
	logger.Info().Msg("login")
	c = logger.WithContext(c)
	login, err := u.service.Login(c, reqBody)
	if err != nil {
		err = fmt.Errorf("failed login with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": inHttp.StatusCode(err),
			"message":    response.MessageInvalidCredentials,
		})
		return
	}
	logger.Info().Msg("login success")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    response.MessageLoginSuccessful,
		"data":       login,
	})
}

func (u UserController) Register(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController Register")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserController Register").
		Str(log.KeyProcess, "validating requestbody").
		Logger()

	logger.Info().Msg("decoding request body")
	reqBody, err := decode[request.Register](c, u.validate, r)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Object(log.KeyRequestBody, reqBody).Logger()
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "registering user").Logger()
	logger.Info().Msg("registering user")
	c = logger.WithContext(c)
	user, err := u.service.Register(c, reqBody)
	if err != nil {
		err = fmt.Errorf("failed registering user with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("registered user")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message": fmt.Sprintf(
			"user with username=%s and email=%s is registered",
			user.Username,
			user.Email,
		),
		"data": user,
	})
}

func (u UserController) FindUserById(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController FindUserById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserController FindUserById").
		Str(log.KeyProcess, "validating userId").
		Logger()

	logger.Info().Msg("validating userId")
	userId, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		err = fmt.Errorf("failed validating userId with error=%w", inErrors.InvalidInput(err))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProcess, "finding user by id").
		Logger()

	logger.Info().Msg("finding user by id")
	c = logger.WithContext(c)
	user, err := u.service.FindUserById(c, userId)
	if err != nil {
		err = fmt.Errorf("failed finding user by id with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("found user by id")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("user with id=%s found", userId),
		"data":       user,
	})
}

func (u UserController) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController RequestPasswordReset")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserController RequestPasswordReset").
		Str(log.KeyProcess, "validating requestbody").
		Logger()

	logger.Info().Msg("decoding request body")
	reqBody, err := decode[request.RequestPasswordReset](c, u.validate, r)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Str(log.KeyEmail, reqBody.Email).Logger()
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "requesting password reset").Logger()
	logger.Info().Msg("requesting password reset")
	c = logger.WithContext(c)
	if _, err := u.service.RequestPasswordReset(c, reqBody.Email); err != nil {
		err = fmt.Errorf("failed requesting password reset with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("requested password reset")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    response.MessageResetEmailSent,
	})
}

func (u UserController) ValidatePasswordResetToken(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController ValidatePasswordResetToken")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserController ValidatePasswordResetToken").
		Str(log.KeyProcess, "validating token").
		Logger()

	logger.Info().Msg("validating token")
	c = logger.WithContext(c)
	token, err := pathToken(r)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	valid, err := u.service.ValidatePasswordResetToken(c, token)
	if err != nil {
		err = fmt.Errorf("failed validating token with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Bool("valid", valid).Msg("validated token")

	message := response.MessageResetTokenValid
	if !valid {
		message = response.MessageResetTokenInvalid
	}
	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    message,
		"data": map[string]bool{
			"valid": valid,
		},
	})
}

func (u UserController) ResetPassword(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController ResetPassword")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserController ResetPassword").
		Str(log.KeyProcess, "validating request").
		Logger()

	logger.Info().Msg("validating request")
	token, err := pathToken(r)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	reqBody, err := decode[request.ResetPassword](c, u.validate, r)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("validated request")

	logger = logger.With().Str(log.KeyProcess, "resetting password").Logger()
	logger.Info().Msg("resetting password")
	c = logger.WithContext(c)
	result, err := u.service.ResetPassword(c, token, reqBody.Password)
	if err != nil {
		err = fmt.Errorf("failed resetting password with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": inHttp.StatusCode(err),
			"message":    result.Message,
			"data":       result,
		})
		return
	}
	logger.Info().Msg("reset password")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    result.Message,
		"data":       result,
	})
}
