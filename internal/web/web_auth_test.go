package web_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/fxdesk/internal/factory"
	"github.com/mcoot/fxdesk/internal/middleware"
)

func TestAnonymousNavigation(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/")
	require.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(rr.Body)
	assert.Equal(t, []string{"Exchange Approach Comparison", "Login"}, navLabels(doc))
	assertContainsElement(t, doc, "nav.tabs a.tab.active[href='/']")
}

func TestLoginPage(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/login?next=/transactions")
	require.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(rr.Body)
	assertContainsElement(t, doc, "form[action='/login'] input[name='username']")
	assertContainsElement(t, doc, "form[action='/login'] input[name='password'][type='password']")
	assertContainsElement(t, doc, "input[name='next'][value='/transactions']")
}

func TestLoginAsAdmin(t *testing.T) {
	ts := newWebTestServer(t)

	// Visiting any page hands out a session
	ts.get("/")
	before := ts.cookies.sessionID()
	require.NotEmpty(t, before)

	form := url.Values{"username": {factory.TestAdminUsername}, "password": {factory.TestAdminPassword}}
	rr := ts.post("/login", form)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	// Session id changes on login
	assert.NotEqual(t, before, ts.cookies.sessionID())

	rr = ts.followRedirect(rr)
	doc := parseHTML(rr.Body)
	assert.Equal(t, []string{
		"Exchange Approach Comparison",
		"Transaction History",
		"Database Management",
		"User Management",
		"Logout",
	}, navLabels(doc))
	assertContainsText(t, doc, ".flash", "Welcome Administrator!")
}

func TestLoginAsUser(t *testing.T) {
	ts := newWebTestServer(t)
	ts.registerUser("alice", "alicepw")

	ts.login("alice", "alicepw")

	doc := parseHTML(ts.get("/").Body)
	assert.Equal(t, []string{"Exchange Approach Comparison", "Transaction History", "Logout"}, navLabels(doc))
}

func TestLoginRedirectsToNext(t *testing.T) {
	ts := newWebTestServer(t)

	form := url.Values{
		"username": {factory.TestAdminUsername},
		"password": {factory.TestAdminPassword},
		"next":     {"/transactions"},
	}
	rr := ts.post("/login", form)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/transactions", rr.Header().Get("Location"))
}

func TestLoginIgnoresOffsiteNext(t *testing.T) {
	ts := newWebTestServer(t)

	form := url.Values{
		"username": {factory.TestAdminUsername},
		"password": {factory.TestAdminPassword},
		"next":     {"//evil.example.com/"},
	}
	rr := ts.post("/login", form)
	assert.Equal(t, "/", rr.Header().Get("Location"))
}

func TestLoginWrongPassword(t *testing.T) {
	ts := newWebTestServer(t)

	form := url.Values{"username": {factory.TestAdminUsername}, "password": {"nope"}}
	rr := ts.post("/login", form)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".alert-error", "Invalid username or password")
	assertContainsElement(t, doc, "input[name='username'][value='root']")

	// Still logged out
	doc = parseHTML(ts.get("/").Body)
	assert.Contains(t, navLabels(doc), "Login")
}

func TestLoginUnknownUserSameMessage(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.post("/login", url.Values{"username": {"ghost"}, "password": {"boo"}})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assertContainsText(t, parseHTML(rr.Body), ".alert-error", "Invalid username or password")
}

func TestLoginMissingFields(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.post("/login", url.Values{"username": {"root"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assertContainsText(t, parseHTML(rr.Body), ".alert-error", "required")
}

func TestLoginThrottled(t *testing.T) {
	ts := newWebTestServerWithConfig(t, factory.Config{
		RateLimit: middleware.RateLimitConfig{PerMinute: 1, Burst: 2},
	})

	bad := url.Values{"username": {"root"}, "password": {"wrong"}}
	assert.Equal(t, http.StatusUnauthorized, ts.post("/login", bad).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.post("/login", bad).Code)

	rr := ts.post("/login", bad)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assertContainsText(t, parseHTML(rr.Body), ".alert-error", "Too many login attempts")
}

func TestLoggedInUserSkipsLoginPage(t *testing.T) {
	ts := newWebTestServer(t)
	ts.loginAdmin()

	rr := ts.get("/login")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
}

func TestLogout(t *testing.T) {
	ts := newWebTestServer(t)
	ts.loginAdmin()
	before := ts.cookies.sessionID()

	rr := ts.get("/logout")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.NotEqual(t, before, ts.cookies.sessionID())

	rr = ts.followRedirect(rr)
	doc := parseHTML(rr.Body)
	assert.Equal(t, []string{"Exchange Approach Comparison", "Login"}, navLabels(doc))
	assertContainsText(t, doc, ".flash", "logged out")

	// Protected pages are closed again
	rr = ts.get("/transactions")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
}

func TestOldSessionIDRejectedAfterLogin(t *testing.T) {
	ts := newWebTestServer(t)
	ts.get("/")
	stale := ts.cookies.sessionID()
	ts.loginAdmin()

	// Replaying the pre-login id gets a fresh anonymous session
	ts.cookies.cookies["session"].Value = stale
	doc := parseHTML(ts.get("/").Body)
	assert.Contains(t, navLabels(doc), "Login")
}
