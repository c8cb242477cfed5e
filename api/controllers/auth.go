package controllers

import (
	"net/http"

	"github.com/digikraal/ledgerview/api/middleware"
	"github.com/digikraal/ledgerview/api/responses"
	"github.com/digikraal/ledgerview/api/validators"
	"github.com/digikraal/ledgerview/internal/auth"
	pkgerrors "github.com/digikraal/ledgerview/pkg/errors"
	"github.com/digikraal/ledgerview/pkg/logger"
)

// tokenHeader mirrors the access token of every successful sign-in.
const tokenHeader = "X-Ledgerview-Token"

func unavailable(what string) error {
	return pkgerrors.New(pkgerrors.CodeInternal, what+" unavailable")
}

func writeTokens(w http.ResponseWriter, status int, accessToken string, payload any) {
	w.Header().Set(tokenHeader, accessToken)
	responses.WriteSuccessStatus(w, status, payload)
}

func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable("auth service"))
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		result, err := svc.Login(ctx, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeTokens(w, http.StatusOK, result.AccessToken, result)
	}
}

// AuthRegister creates a self-service account and signs it in.
func AuthRegister(reg auth.RegisterService, svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if reg == nil || svc == nil {
			responses.WriteError(ctx, logg, w, unavailable("auth service"))
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if _, err := reg.Register(ctx, body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		result, err := svc.Login(ctx, auth.LoginRequest{Email: body.Email, Password: body.Password})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeTokens(w, http.StatusCreated, result.AccessToken, result)
	}
}

// AuthLogout revokes the session behind the presented access token, expired
// or not.
func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable("auth service"))
			return
		}

		token, err := middleware.BearerToken(r)
		if err == nil {
			err = svc.Logout(ctx, token)
		}
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

// AuthRefresh rotates the refresh token. The expired access token travels in
// the Authorization header and the refresh token in the body.
func AuthRefresh(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable("auth service"))
			return
		}

		var body auth.RefreshRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		token, err := middleware.BearerToken(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		body.AccessToken = token

		pair, err := svc.Refresh(ctx, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeTokens(w, http.StatusOK, pair.AccessToken, pair)
	}
}
