package controller

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/watchparty/server/internal/service/auth"
	"github.com/watchparty/server/pkg/rest"
)

const oauthStateCookie = "oauth_state"

type SignUpInput struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=1,max=120"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func (c controller) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var input SignUpInput
	if err := rest.ReadJSON(r, &input); err != nil {
		rest.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.writeValidationError(w, validationErrors)
		return
	}

	resp, err := c.authService.SignUp(r.Context(), &auth.SignUpParams{
		Email:    input.Email,
		Name:     input.Name,
		Password: input.Password,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteSuccess(w, http.StatusCreated, map[string]any{
		"user":  resp.User,
		"token": resp.Token,
	})
}

type LogInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c controller) handleLogIn(w http.ResponseWriter, r *http.Request) {
	var input LogInInput
	if err := rest.ReadJSON(r, &input); err != nil {
		rest.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.writeValidationError(w, validationErrors)
		return
	}

	resp, err := c.authService.LogIn(r.Context(), &auth.LogInParams{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteSuccess(w, http.StatusOK, map[string]any{
		"user":  resp.User,
		"token": resp.Token,
	})
}

// handleLogOut exists for client symmetry. Bearer tokens are stateless, the
// client discards its copy.
func (c controller) handleLogOut(w http.ResponseWriter, r *http.Request) {
	rest.WriteSuccess(w, http.StatusOK, nil)
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

func (c controller) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var input ChangePasswordInput
	if err := rest.ReadJSON(r, &input); err != nil {
		rest.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.writeValidationError(w, validationErrors)
		return
	}

	if err := c.authService.ChangePassword(r.Context(), &auth.ChangePasswordParams{
		UserId:          c.getUserIdFromCtx(r.Context()),
		CurrentPassword: input.CurrentPassword,
		NewPassword:     input.NewPassword,
	}); err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteSuccess(w, http.StatusOK, nil)
}

func (c controller) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := c.authService.GetProfile(r.Context(), c.getUserIdFromCtx(r.Context()))
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteSuccess(w, http.StatusOK, map[string]any{"user": user})
}

func (c controller) handleOAuthRedirect(w http.ResponseWriter, r *http.Request) {
	state, err := c.stateGen.GenerateSecureToken(32)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	redirectURL, err := c.authService.AuthCodeURL(chi.URLParam(r, "provider"), state)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/auth",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
}

// handleOAuthCallback finishes the provider flow and hands the bearer token
// to the frontend as a query parameter on the callback redirect.
func (c controller) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || state == "" || cookie.Value != state {
		rest.WriteError(w, http.StatusBadRequest, "invalid oauth state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		rest.WriteError(w, http.StatusBadRequest, "missing code")
		return
	}

	resp, err := c.authService.ExchangeCode(r.Context(), &auth.ExchangeCodeParams{
		Provider: chi.URLParam(r, "provider"),
		Code:     code,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:   oauthStateCookie,
		Path:   "/auth",
		MaxAge: -1,
	})

	callback := c.frontendURL + "/auth/callback?token=" + url.QueryEscape(resp.Token)
	http.Redirect(w, r, callback, http.StatusTemporaryRedirect)
}
