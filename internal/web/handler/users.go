package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/fxdesk/internal/model"
	"github.com/mcoot/fxdesk/internal/services/users"
	"github.com/mcoot/fxdesk/internal/web/middleware"
	"github.com/mcoot/fxdesk/internal/web/templates/layout"
	"github.com/mcoot/fxdesk/internal/web/templates/pages"
)

// UsersHandler serves the user management pages
type UsersHandler struct {
	users  *users.Service
	logger *slog.Logger
}

// NewUsersHandler creates a new UsersHandler
func NewUsersHandler(usersService *users.Service, logger *slog.Logger) *UsersHandler {
	return &UsersHandler{
		users:  usersService,
		logger: logger,
	}
}

// List renders every user
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	data := pages.UsersData{
		PageData: pageData(r, layout.TabUsers, layout.TabUsers),
	}

	list, err := h.users.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list users", slog.String("error", err.Error()))
		data.Notices = append(data.Notices, pages.Notice{Type: "warning", Message: "Could not load users. Please try again later."})
	}
	data.Users = list

	render(w, r, h.logger, http.StatusOK, pages.Users(data))
}

// RegisterPage renders the new user form
func (h *UsersHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.renderRegister(w, r, http.StatusOK, "", "", nil)
}

// Register handles the new user form
func (h *UsersHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderRegister(w, r, http.StatusBadRequest, "Invalid form data", "", nil)
		return
	}

	reg := users.Registration{
		Username:                 strings.TrimSpace(r.PostFormValue("username")),
		Password:                 r.PostFormValue("password"),
		ConfirmPassword:          r.PostFormValue("confirm_password"),
		SecondaryPassword:        r.PostFormValue("secondary_password"),
		ConfirmSecondaryPassword: r.PostFormValue("confirm_secondary_password"),
	}

	fieldErrors := make(map[string]string)
	if reg.Username == "" {
		fieldErrors["username"] = "Username is required"
	}
	if reg.Password == "" {
		fieldErrors["password"] = "Password is required"
	}
	if reg.SecondaryPassword == "" {
		fieldErrors["secondary_password"] = "Secondary password is required"
	}
	if len(fieldErrors) > 0 {
		h.renderRegister(w, r, http.StatusBadRequest, "", reg.Username, fieldErrors)
		return
	}

	_, err := h.users.Register(r.Context(), reg)
	switch {
	case err == nil:
		redirectWithFlash(w, r, "/users", "success", "User "+reg.Username+" registered")
	case errors.Is(err, users.ErrPasswordMismatch):
		fieldErrors["confirm_password"] = "Passwords do not match"
	case errors.Is(err, users.ErrSecondaryPasswordMismatch):
		fieldErrors["confirm_secondary_password"] = "Secondary passwords do not match"
	case errors.Is(err, model.ErrUsernameExists):
		fieldErrors["username"] = "Username already taken"
	default:
		h.logger.Error("failed to register user", slog.String("username", reg.Username), slog.String("error", err.Error()))
		h.renderRegister(w, r, http.StatusInternalServerError, "Registration failed. Please try again later.", reg.Username, nil)
		return
	}

	if len(fieldErrors) > 0 {
		h.renderRegister(w, r, http.StatusBadRequest, "", reg.Username, fieldErrors)
	}
}

// EditPage renders the edit form for one user
func (h *UsersHandler) EditPage(w http.ResponseWriter, r *http.Request) {
	user, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.renderEdit(w, r, http.StatusOK, *user, "", nil)
}

// Edit handles the edit form
func (h *UsersHandler) Edit(w http.ResponseWriter, r *http.Request) {
	user, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderEdit(w, r, http.StatusBadRequest, *user, "Invalid form data", nil)
		return
	}

	edit := users.Edit{
		DisplayName:     r.PostFormValue("display_name"),
		Email:           r.PostFormValue("email"),
		Active:          r.PostFormValue("active") == "yes",
		ChangePassword:  r.PostFormValue("change_password") == "yes",
		NewPassword:     r.PostFormValue("new_password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
	}

	updated, err := h.users.Update(r.Context(), user.Username, edit)
	switch {
	case err == nil:
		redirectWithFlash(w, r, "/users", "success", "User "+updated.Username+" updated")
	case errors.Is(err, users.ErrPasswordMismatch):
		h.renderEdit(w, r, http.StatusBadRequest, *user, "", map[string]string{"confirm_password": "Passwords do not match"})
	default:
		h.logger.Error("failed to update user", slog.String("username", user.Username), slog.String("error", err.Error()))
		h.renderEdit(w, r, http.StatusInternalServerError, *user, "Update failed. Please try again later.", nil)
	}
}

// DeletePage renders the delete confirmation for one user
func (h *UsersHandler) DeletePage(w http.ResponseWriter, r *http.Request) {
	user, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.renderDelete(w, r, http.StatusOK, *user, "")
}

// Delete removes a user once the admin has confirmed with their secondary
// password
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if r.PostFormValue("confirm") != "yes" {
		h.renderDelete(w, r, http.StatusBadRequest, *user, "Please confirm the deletion")
		return
	}

	actor := middleware.GetSession(r.Context()).Username
	err := h.users.Delete(r.Context(), actor, user.Username, r.PostFormValue("secondary_password"))
	switch {
	case err == nil:
		redirectWithFlash(w, r, "/users", "success", "User "+user.Username+" deleted")
	case errors.Is(err, users.ErrSelfDelete):
		h.renderDelete(w, r, http.StatusBadRequest, *user, "You cannot delete the account you are logged in with")
	case errors.Is(err, users.ErrSecondaryRejected):
		h.renderDelete(w, r, http.StatusForbidden, *user, "Invalid secondary password")
	default:
		h.logger.Error("failed to delete user", slog.String("username", user.Username), slog.String("error", err.Error()))
		h.renderDelete(w, r, http.StatusInternalServerError, *user, "Delete failed. Please try again later.")
	}
}

// lookup loads the user named in the path, answering the request itself when
// that fails
func (h *UsersHandler) lookup(w http.ResponseWriter, r *http.Request) (*users.Summary, bool) {
	username := mux.Vars(r)["username"]
	user, err := h.users.Get(r.Context(), username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			redirectWithFlash(w, r, "/users", "error", "User "+username+" not found")
		} else {
			h.logger.Error("failed to load user", slog.String("username", username), slog.String("error", err.Error()))
			redirectWithFlash(w, r, "/users", "error", "Could not load user. Please try again later.")
		}
		return nil, false
	}
	return user, true
}

func (h *UsersHandler) renderRegister(w http.ResponseWriter, r *http.Request, status int, errorMsg, username string, fieldErrors map[string]string) {
	data := pages.RegisterData{
		PageData:    pageData(r, "Register User", layout.TabUsers),
		Username:    username,
		Error:       errorMsg,
		FieldErrors: fieldErrors,
	}
	render(w, r, h.logger, status, pages.Register(data))
}

func (h *UsersHandler) renderEdit(w http.ResponseWriter, r *http.Request, status int, user users.Summary, errorMsg string, fieldErrors map[string]string) {
	data := pages.EditUserData{
		PageData:    pageData(r, "Edit User", layout.TabUsers),
		User:        user,
		Error:       errorMsg,
		FieldErrors: fieldErrors,
	}
	render(w, r, h.logger, status, pages.EditUser(data))
}

func (h *UsersHandler) renderDelete(w http.ResponseWriter, r *http.Request, status int, user users.Summary, errorMsg string) {
	data := pages.DeleteUserData{
		PageData: pageData(r, "Delete User", layout.TabUsers),
		User:     user,
		Error:    errorMsg,
	}
	render(w, r, h.logger, status, pages.DeleteUser(data))
}
