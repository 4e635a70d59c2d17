package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/threadlinehq/threadline-backend/api/responses"
	"github.com/threadlinehq/threadline-backend/api/validators"
	"github.com/threadlinehq/threadline-backend/internal/auth"
	"github.com/threadlinehq/threadline-backend/pkg/config"
	"github.com/threadlinehq/threadline-backend/pkg/db/models"
	"github.com/threadlinehq/threadline-backend/pkg/logger"
)

type AuthService interface {
	Register(ctx context.Context, input auth.RegisterInput) (*auth.Session, error)
	Login(ctx context.Context, input auth.LoginInput) (*auth.Session, error)
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=1,max=120"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type accountResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func toAccountResponse(customer *models.Customer) accountResponse {
	return accountResponse{
		ID:    customer.ID.String(),
		Email: customer.Email,
		Name:  customer.Name,
		Role:  customer.Role.String(),
	}
}

func Register(svc AuthService, jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Register(r.Context(), auth.RegisterInput{
			Email:    req.Email,
			Name:     req.Name,
			Password: req.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookie(w, jwtCfg, session)
		responses.WriteSuccessStatus(w, http.StatusCreated, toAccountResponse(session.Customer))
	}
}

func Login(svc AuthService, jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Login(r.Context(), auth.LoginInput{
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookie(w, jwtCfg, session)
		responses.WriteSuccess(w, toAccountResponse(session.Customer))
	}
}

func Logout(jwtCfg config.JWTConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     jwtCfg.CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   jwtCfg.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
		responses.WriteSuccess(w, nil)
	}
}

func setSessionCookie(w http.ResponseWriter, jwtCfg config.JWTConfig, session *auth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     jwtCfg.CookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  time.Now().Add(session.TTL),
		HttpOnly: true,
		Secure:   jwtCfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
