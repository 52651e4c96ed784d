package web_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/fxdesk/internal/factory"
	"github.com/mcoot/fxdesk/internal/services/users"
)

// usersRegistration builds a valid registration whose secondary password is
// the password with a "2" appended
func usersRegistration(username, password string) users.Registration {
	return users.Registration{
		Username:                 username,
		Password:                 password,
		ConfirmPassword:          password,
		SecondaryPassword:        password + "2",
		ConfirmSecondaryPassword: password + "2",
	}
}

func registrationForm(reg users.Registration) url.Values {
	return url.Values{
		"username":                   {reg.Username},
		"password":                   {reg.Password},
		"confirm_password":           {reg.ConfirmPassword},
		"secondary_password":         {reg.SecondaryPassword},
		"confirm_secondary_password": {reg.ConfirmSecondaryPassword},
	}
}

func TestUsersList(t *testing.T) {
	ts := newWebTestServer(t)
	ts.registerUser("alice", "alicepw")
	ts.loginAdmin()

	rr := ts.get("/users")
	require.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)

	assertContainsElement(t, doc, "table.users tr[data-username='root']")
	assertContainsElement(t, doc, "table.users tr[data-username='alice']")
	assertContainsText(t, doc, "tr[data-username='root']", "admin")
	assertContainsElement(t, doc, "a[href='/users/alice/edit']")
	assertContainsText(t, doc, "nav.tabs a.tab.active", "User Management")
}

func TestUsersRegister(t *testing.T) {
	ts := newWebTestServer(t)
	ts.loginAdmin()

	doc := parseHTML(ts.get("/users/register").Body)
	assertContainsElement(t, doc, "form.register-form input[name='confirm_secondary_password']")

	rr := ts.post("/users/register", registrationForm(usersRegistration("bob", "bobpw")))
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/users", rr.Header().Get("Location"))

	doc = parseHTML(ts.followRedirect(rr).Body)
	assertContainsText(t, doc, ".flash-success", "User bob registered")
	assertContainsElement(t, doc, "tr[data-username='bob']")

	// The new account can log in
	ts.get("/logout")
	ts.login("bob", "bobpw")
}

func TestUsersRegisterValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*users.Registration)
		field   string
		message string
	}{
		{
			name:    "missing username",
			mutate:  func(r *users.Registration) { r.Username = "" },
			field:   "username",
			message: "Username is required",
		},
		{
			name:    "password mismatch",
			mutate:  func(r *users.Registration) { r.ConfirmPassword = "other" },
			field:   "confirm_password",
			message: "Passwords do not match",
		},
		{
			name:    "secondary mismatch",
			mutate:  func(r *users.Registration) { r.ConfirmSecondaryPassword = "other" },
			field:   "confirm_secondary_password",
			message: "Secondary passwords do not match",
		},
		{
			name:    "taken username",
			mutate:  func(r *users.Registration) { r.Username = factory.TestAdminUsername },
			field:   "username",
			message: "Username already taken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newWebTestServer(t)
			ts.loginAdmin()

			reg := usersRegistration("carol", "carolpw")
			tt.mutate(&reg)
			rr := ts.post("/users/register", registrationForm(reg))

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assertContainsText(t, parseHTML(rr.Body), "span.field-error[data-field='"+tt.field+"']", tt.message)
		})
	}
}

func TestUsersEdit(t *testing.T) {
	ts := newWebTestServer(t)
	ts.registerUser("alice", "alicepw")
	ts.loginAdmin()

	doc := parseHTML(ts.get("/users/alice/edit").Body)
	assertContainsElement(t, doc, "form.edit-form[action='/users/alice/edit']")
	assertContainsElement(t, doc, "input[name='active'][checked]")

	rr := ts.post("/users/alice/edit", url.Values{
		"display_name": {"Alice A"},
		"email":        {"alice@example.com"},
		"active":       {"yes"},
	})
	require.Equal(t, http.StatusSeeOther, rr.Code)

	doc = parseHTML(ts.followRedirect(rr).Body)
	assertContainsText(t, doc, ".flash-success", "User alice updated")
	assertContainsText(t, doc, "tr[data-username='alice']", "Alice A")
	assertContainsText(t, doc, "tr[data-username='alice']", "alice@example.com")
}

func TestUsersEditPassword(t *testing.T) {
	ts := newWebTestServer(t)
	ts.registerUser("alice", "alicepw")
	ts.loginAdmin()

	rr := ts.post("/users/alice/edit", url.Values{
		"active":           {"yes"},
		"change_password":  {"yes"},
		"new_password":     {"fresh"},
		"confirm_password": {"stale"},
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assertContainsText(t, parseHTML(rr.Body), "span.field-error[data-field='confirm_password']", "Passwords do not match")

	rr = ts.post("/users/alice/edit", url.Values{
		"active":           {"yes"},
		"change_password":  {"yes"},
		"new_password":     {"fresh"},
		"confirm_password": {"fresh"},
	})
	require.Equal(t, http.StatusSeeOther, rr.Code)

	ts.get("/logout")
	ts.login("alice", "fresh")
}

func TestUsersDeactivateBlocksLogin(t *testing.T) {
	ts := newWebTestServer(t)
	ts.registerUser("alice", "alicepw")
	ts.loginAdmin()

	// Unchecked box means inactive
	rr := ts.post("/users/alice/edit", url.Values{"display_name": {"Alice"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)

	ts.get("/logout")
	rr = ts.post("/login", url.Values{"username": {"alice"}, "password": {"alicepw"}})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUsersUnknownUser(t *testing.T) {
	ts := newWebTestServer(t)
	ts.loginAdmin()

	rr := ts.get("/users/nobody/edit")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assertContainsText(t, parseHTML(ts.followRedirect(rr).Body), ".flash-error", "User nobody not found")
}

func TestUsersDelete(t *testing.T) {
	ts := newWebTestServer(t)
	ts.registerUser("alice", "alicepw")
	ts.loginAdmin()

	doc := parseHTML(ts.get("/users/alice/delete").Body)
	assertContainsElement(t, doc, "form.delete-user-form input[name='secondary_password']")

	// Confirmation is required
	rr := ts.post("/users/alice/delete", url.Values{"secondary_password": {factory.TestAdminSecondary}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// The acting admin's secondary password, not the target's
	rr = ts.post("/users/alice/delete", url.Values{"confirm": {"yes"}, "secondary_password": {"alicepw2"}})
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assertContainsText(t, parseHTML(rr.Body), ".alert-error", "Invalid secondary password")

	rr = ts.post("/users/alice/delete", url.Values{"confirm": {"yes"}, "secondary_password": {factory.TestAdminSecondary}})
	require.Equal(t, http.StatusSeeOther, rr.Code)

	doc = parseHTML(ts.followRedirect(rr).Body)
	assertContainsText(t, doc, ".flash-success", "User alice deleted")
	assertNotContainsElement(t, doc, "tr[data-username='alice']")
}

func TestUsersCannotDeleteSelf(t *testing.T) {
	ts := newWebTestServer(t)
	ts.loginAdmin()

	rr := ts.post("/users/root/delete", url.Values{"confirm": {"yes"}, "secondary_password": {factory.TestAdminSecondary}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assertContainsText(t, parseHTML(rr.Body), ".alert-error", "You cannot delete the account you are logged in with")
}
