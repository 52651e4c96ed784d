package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/fxdesk/internal/testutil"
	"github.com/mcoot/fxdesk/internal/web/middleware"
)

func TestRecoveryRendersErrorPage(t *testing.T) {
	logger, logs := testutil.CaptureLogger()
	h := middleware.Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/db", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	doc, err := goquery.NewDocumentFromReader(rr.Body)
	require.NoError(t, err)
	assert.Equal(t, "Something went wrong", doc.Find("h1").Text())
	assert.Contains(t, doc.Find(".alert-error").Text(), "could not be shown")
	assert.Contains(t, doc.Find("nav").Text(), "Login")
	assert.Contains(t, logs.String(), "panic recovered")
}

func TestLoggingTagsSurface(t *testing.T) {
	logger, logs := testutil.CaptureLogger()
	h := middleware.Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Contains(t, logs.String(), `"surface":"web"`)
}
