package pages

import (
	"context"

	"github.com/a-h/templ"

	"github.com/mcoot/fxdesk/internal/services/users"
	"github.com/mcoot/fxdesk/internal/web/templates/layout"
)

// UsersData holds data for the user list
type UsersData struct {
	layout.PageData
	Users   []users.Summary
	Notices []Notice
}

// RegisterData holds data for the new user form
type RegisterData struct {
	layout.PageData
	Username    string
	Error       string
	FieldErrors map[string]string
}

// EditUserData holds data for the edit user form
type EditUserData struct {
	layout.PageData
	User        users.Summary
	Error       string
	FieldErrors map[string]string
}

// DeleteUserData holds data for the delete confirmation
type DeleteUserData struct {
	layout.PageData
	User  users.Summary
	Error string
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func fieldError(hw *layout.Writer, errs map[string]string, field string) {
	if msg, ok := errs[field]; ok {
		hw.Printf("<span class=\"field-error\" data-field=\"%s\">%s</span>\n", field, msg)
	}
}

// Users renders the user list
func Users(data UsersData) templ.Component {
	return layout.Base(data.PageData, render(func(ctx context.Context, hw *layout.Writer) {
		notices(hw, data.Notices)
		hw.Raw("<p><a class=\"button\" href=\"/users/register\">Register new user</a></p>\n")
		hw.Raw("<table class=\"users\">\n<thead><tr><th>Username</th><th>Display name</th><th>Email</th>")
		hw.Raw("<th>Role</th><th>Active</th><th>Created</th><th></th></tr></thead>\n<tbody>\n")
		for _, u := range data.Users {
			hw.Printf("<tr data-username=\"%s\"><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td>",
				u.Username, u.Username, u.DisplayName, u.Email, string(u.Role), yesNo(u.Active), u.CreatedAt)
			hw.Printf("<td><a href=\"/users/%s/edit\">Edit</a> <a href=\"/users/%s/delete\">Delete</a></td></tr>\n",
				u.Username, u.Username)
		}
		hw.Raw("</tbody>\n</table>\n")
	}))
}

// Register renders the new user form
func Register(data RegisterData) templ.Component {
	return layout.Base(data.PageData, render(func(ctx context.Context, hw *layout.Writer) {
		if data.Error != "" {
			hw.Printf("<div class=\"alert alert-error\">%s</div>\n", data.Error)
		}
		hw.Raw("<form class=\"register-form\" method=\"post\" action=\"/users/register\">\n")
		hw.Printf("<label>Username <input name=\"username\" value=\"%s\" required></label>\n", data.Username)
		fieldError(hw, data.FieldErrors, "username")
		hw.Raw("<label>Password <input type=\"password\" name=\"password\" required></label>\n")
		fieldError(hw, data.FieldErrors, "password")
		hw.Raw("<label>Confirm password <input type=\"password\" name=\"confirm_password\" required></label>\n")
		fieldError(hw, data.FieldErrors, "confirm_password")
		hw.Raw("<label>Secondary password <input type=\"password\" name=\"secondary_password\" required></label>\n")
		fieldError(hw, data.FieldErrors, "secondary_password")
		hw.Raw("<label>Confirm secondary password <input type=\"password\" name=\"confirm_secondary_password\" required></label>\n")
		fieldError(hw, data.FieldErrors, "confirm_secondary_password")
		hw.Raw("<button type=\"submit\">Register</button>\n</form>\n")
	}))
}

// EditUser renders the edit user form. The role is shown but cannot be changed.
func EditUser(data EditUserData) templ.Component {
	return layout.Base(data.PageData, render(func(ctx context.Context, hw *layout.Writer) {
		u := data.User
		if data.Error != "" {
			hw.Printf("<div class=\"alert alert-error\">%s</div>\n", data.Error)
		}
		hw.Printf("<form class=\"edit-form\" method=\"post\" action=\"/users/%s/edit\">\n", u.Username)
		hw.Printf("<p>Username: <strong>%s</strong> Role: <strong>%s</strong></p>\n", u.Username, string(u.Role))
		hw.Printf("<label>Display name <input name=\"display_name\" value=\"%s\"></label>\n", u.DisplayName)
		hw.Printf("<label>Email <input type=\"email\" name=\"email\" value=\"%s\"></label>\n", u.Email)
		hw.Printf("<label><input type=\"checkbox\" name=\"active\" value=\"yes\"%s> Active</label>\n", layout.Attr("checked", u.Active))
		hw.Raw("<fieldset><legend>Password</legend>\n")
		hw.Raw("<label><input type=\"checkbox\" name=\"change_password\" value=\"yes\"> Change password</label>\n")
		hw.Raw("<label>New password <input type=\"password\" name=\"new_password\"></label>\n")
		hw.Raw("<label>Confirm new password <input type=\"password\" name=\"confirm_password\"></label>\n")
		fieldError(hw, data.FieldErrors, "confirm_password")
		hw.Raw("</fieldset>\n")
		hw.Raw("<button type=\"submit\">Save</button>\n</form>\n")
	}))
}

// DeleteUser renders the delete confirmation
func DeleteUser(data DeleteUserData) templ.Component {
	return layout.Base(data.PageData, render(func(ctx context.Context, hw *layout.Writer) {
		u := data.User
		if data.Error != "" {
			hw.Printf("<div class=\"alert alert-error\">%s</div>\n", data.Error)
		}
		hw.Printf("<form class=\"delete-user-form\" method=\"post\" action=\"/users/%s/delete\">\n", u.Username)
		hw.Printf("<p>Delete user <strong>%s</strong>? This cannot be undone.</p>\n", u.Username)
		hw.Raw("<label><input type=\"checkbox\" name=\"confirm\" value=\"yes\"> Confirm deletion</label>\n")
		hw.Raw("<label>Your secondary password <input type=\"password\" name=\"secondary_password\" required></label>\n")
		hw.Raw("<button type=\"submit\" class=\"danger\">Delete</button>\n")
		hw.Raw("<a href=\"/users\">Cancel</a>\n</form>\n")
	}))
}
