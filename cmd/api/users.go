// cmd/api/users.go
// Handlers for registration, login, and the current-user lookup.
package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/mirahayu/bookstore-api/internal/data"
	"github.com/mirahayu/bookstore-api/internal/token"
	"github.com/mirahayu/bookstore-api/internal/validator"
)

// accessTokenTTL is how long an issued access token stays valid.
const accessTokenTTL = 24 * time.Hour

// registerUserHandler handles POST /auth/register.
// Email and password are required; username is optional. The password is
// bcrypt-hashed before it is stored and never appears in any response.
func (app *applicationDependencies) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string  `json:"email"`
		Password string  `json:"password"`
		Username *string `json:"username"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(input.Email != "", "email", "must be provided")
	v.Check(validator.Matches(input.Email, validator.EmailRX), "email", "must be a valid email address")
	v.Check(input.Password != "", "password", "must be provided")
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	user := &data.User{
		Email:    input.Email,
		Username: input.Username,
	}
	err = user.Password.Set(input.Password)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.models.Users.Insert(user)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrDuplicateEmail):
			app.errorResponse(w, r, http.StatusBadRequest, "Email already exists")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	response := envelope{
		"success": true,
		"message": "User registered successfully",
		"data": envelope{
			"id":         user.ID,
			"email":      user.Email,
			"created_at": user.CreatedAt,
		},
	}
	err = app.writeJSON(w, http.StatusCreated, response, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// loginUserHandler handles POST /auth/login.
// A valid email/password pair is exchanged for a signed access token. Unknown
// email and wrong password produce the same 401 so the response does not leak
// which one was wrong.
func (app *applicationDependencies) loginUserHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(input.Email != "", "email", "must be provided")
	v.Check(input.Password != "", "password", "must be provided")
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	user, err := app.models.Users.GetByEmail(input.Email)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.invalidCredentialsResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	match, err := user.Password.Matches(input.Password)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	if !match {
		app.invalidCredentialsResponse(w, r)
		return
	}

	accessToken, err := token.GenerateAccessToken(user.ID, accessTokenTTL, []byte(app.config.jwt.secret))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	response := envelope{
		"success": true,
		"message": "Login successfully",
		"data": envelope{
			"access_token": accessToken,
		},
	}
	err = app.writeJSON(w, http.StatusOK, response, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showCurrentUserHandler handles GET /auth/me.
// It returns the profile of the authenticated caller, never the password hash.
func (app *applicationDependencies) showCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	user, err := app.models.Users.Get(app.contextGetUserID(r))
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.errorResponse(w, r, http.StatusNotFound, "User not found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	response := envelope{
		"success": true,
		"message": "Get me successfully",
		"data": envelope{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	}
	err = app.writeJSON(w, http.StatusOK, response, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
