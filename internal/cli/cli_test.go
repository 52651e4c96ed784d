package cli_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/fxdesk/internal/api"
	"github.com/mcoot/fxdesk/internal/cli"
	"github.com/mcoot/fxdesk/internal/config"
	"github.com/mcoot/fxdesk/internal/factory"
	"github.com/mcoot/fxdesk/internal/model"
	"github.com/mcoot/fxdesk/internal/services/auth"
	"github.com/mcoot/fxdesk/internal/testutil"
)

type cliHarness struct {
	t         *testing.T
	app       *factory.TestApp
	serverURL string
	tokenFile string
}

func newHarness(t *testing.T) *cliHarness {
	t.Helper()
	t.Setenv("FXCTL_TOKEN", "")

	app := factory.NewTestApp()
	_, err := app.CreateTestAdmin(t.Context())
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:         testutil.NopLogger(),
		Store:          app.Storage,
		AuthService:    app.AuthService,
		TokenService:   app.TokenService,
		BrowserService: app.BrowserService,
		Executor:       app.Executor,
		Coercion:       app.Coercion,
		LoginLimiter:   app.LoginLimiter,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &cliHarness{
		t:         t,
		app:       app,
		serverURL: srv.URL,
		tokenFile: filepath.Join(t.TempDir(), "token"),
	}
}

// run executes fxctl with stdin as the answers to any prompts
func (h *cliHarness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()

	full := append([]string{"--server", h.serverURL, "--token-file", h.tokenFile}, args...)
	cmd := cli.NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetArgs(full)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	err := cmd.Execute()
	return out.String(), err
}

func (h *cliHarness) loginAdmin() {
	h.t.Helper()
	out, err := h.run(factory.TestAdminPassword+"\n", "login", "--user", factory.TestAdminUsername)
	require.NoError(h.t, err, out)
}

func (h *cliHarness) seedOrders() {
	h.t.Helper()
	target := model.Target{Database: "shop", Collection: "orders"}
	require.NoError(h.t, h.app.BrowserService.CreateCollection(h.t.Context(), target))
	for _, doc := range []model.Document{
		{"_id": "order-1", "item": "pen", "qty": int64(3)},
		{"_id": "order-2", "item": "ink", "qty": int64(1)},
	} {
		require.NoError(h.t, h.app.Executor.InsertOne(h.t.Context(), &target, doc))
	}
}

func TestHealth(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("", "health")
	require.NoError(t, err)
	assert.Contains(t, out, "Status: ok")

	out, err = h.run("", "-o", "json", "health")
	require.NoError(t, err)
	var health cli.HealthResult
	require.NoError(t, json.Unmarshal([]byte(out), &health))
	assert.Equal(t, "ok", health.Status)
}

func TestLoginSavesToken(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("root\n"+factory.TestAdminPassword+"\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as root (admin)")

	saved, err := os.ReadFile(h.tokenFile)
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(string(saved)))

	// The saved token is picked up by later commands
	_, err = h.run("", "db", "list")
	require.NoError(t, err)
}

func TestLoginRejected(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("wrong\n", "login", "--user", "root")
	require.Error(t, err)

	var apiErr *cli.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "INVALID_CREDENTIALS", apiErr.Code)
	assert.NoFileExists(t, h.tokenFile)
}

func TestLoginNeedsPassword(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("\n", "login", "--user", "root")
	assert.ErrorContains(t, err, "username and password are required")
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	h.loginAdmin()

	out, err := h.run("", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")
	assert.NoFileExists(t, h.tokenFile)

	_, err = h.run("", "db", "list")
	var apiErr *cli.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "UNAUTHORIZED", apiErr.Code)
}

func TestCompareDefaults(t *testing.T) {
	h := newHarness(t)
	h.loginAdmin()

	out, err := h.run("", "compare", "hkd-aud")
	require.NoError(t, err)
	assert.Contains(t, out, "Approach 2 gives more AUD.")
	assert.Contains(t, out, "40260.8456")

	out, err = h.run("", "-o", "json", "compare", "hkd-aud")
	require.NoError(t, err)
	var cmp cli.Comparison
	require.NoError(t, json.Unmarshal([]byte(out), &cmp))
	assert.Equal(t, 2, cmp.Best)
	require.Len(t, cmp.Offers, 2)
	assert.Equal(t, "40245.4975", cmp.Offers[0].Converted)
}

func TestCompareCustomQuotes(t *testing.T) {
	h := newHarness(t)
	h.loginAdmin()

	out, err := h.run("", "-o", "json", "compare", "aud-hkd",
		"--amount", "1000", "--days", "0",
		"--price1", "5", "--rate1", "0",
		"--price2", "4", "--rate2", "0")
	require.NoError(t, err)

	var cmp cli.Comparison
	require.NoError(t, json.Unmarshal([]byte(out), &cmp))
	assert.Equal(t, "AUD", cmp.From)
	assert.Equal(t, "HKD", cmp.To)
	assert.Equal(t, 0, cmp.Days)
	assert.Equal(t, 1, cmp.Best)
}

func TestCompareValidation(t *testing.T) {
	h := newHarness(t)
	h.loginAdmin()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"partial quotes", []string{"compare", "hkd-aud", "--price1", "5"}, "must be given together"},
		{"bad amount", []string{"compare", "hkd-aud", "--amount", "lots"}, `invalid --amount "lots"`},
		{"no direction", []string{"compare"}, "accepts 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.run("", tt.args...)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestDBCommands(t *testing.T) {
	h := newHarness(t)
	h.loginAdmin()
	h.seedOrders()

	out, err := h.run("", "db", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "shop")

	out, err = h.run("", "db", "collections", "shop")
	require.NoError(t, err)
	assert.Contains(t, out, "orders")

	out, err = h.run("", "db", "fetch", "shop", "orders")
	require.NoError(t, err)
	assert.Contains(t, out, "pen")
	assert.Contains(t, out, "2 document(s)")
	assert.NotContains(t, out, "order-1")

	out, err = h.run("", "db", "fetch", "--all", "shop", "orders")
	require.NoError(t, err)
	assert.Contains(t, out, "order-1")

	out, err = h.run("", "db", "create", "shop", "refunds")
	require.NoError(t, err)
	assert.Contains(t, out, "Collection shop.refunds created")

	_, err = h.run("", "db", "create", "shop", "refunds")
	var apiErr *cli.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "COLLECTION_EXISTS", apiErr.Code)

	_, err = h.run("", "db", "fetch", "shop", "refunds")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "NO_DOCUMENTS", apiErr.Code)
}

func TestDBDelete(t *testing.T) {
	h := newHarness(t)
	h.loginAdmin()
	h.seedOrders()

	out, err := h.run("n\n", "db", "delete", "shop", "orders", "order-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing deleted")

	_, err = h.run("wrong\n", "db", "delete", "--yes", "shop", "orders", "order-1")
	var apiErr *cli.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "SECONDARY_REJECTED", apiErr.Code)

	out, err = h.run("y\n"+factory.TestAdminSecondary+"\n", "db", "delete", "shop", "orders", "order-1", "order-2")
	require.NoError(t, err)
	assert.Contains(t, out, "Succeeded: 2")

	docs, err := h.app.Storage.Find(t.Context(), model.Target{Database: "shop", Collection: "orders"})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDBRequiresAdmin(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("", "db", "list")
	var apiErr *cli.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
}

func TestSecretsSetPassword(t *testing.T) {
	h := newHarness(t)
	file := filepath.Join(t.TempDir(), "secrets.toml")

	out, err := h.run("pw\npw\n", "secrets", "--file", file, "set-password", "--user", "fallback")
	require.NoError(t, err)
	assert.Contains(t, out, "Password saved")

	secrets, err := config.LoadSecrets(file)
	require.NoError(t, err)
	assert.Equal(t, "fallback", secrets.App.Username)
	assert.Equal(t, auth.LegacyDigest("pw"), secrets.App.Password)
	assert.Empty(t, secrets.App.SecondaryPassword)

	// Declining leaves the stored digest alone
	out, err = h.run("n\n", "secrets", "--file", file, "set-password")
	require.NoError(t, err)
	assert.Contains(t, out, "Left unchanged")

	out, err = h.run("y\nnew\nnew\n", "secrets", "--file", file, "set-password")
	require.NoError(t, err)
	assert.Contains(t, out, "Password saved")

	secrets, err = config.LoadSecrets(file)
	require.NoError(t, err)
	assert.Equal(t, auth.LegacyDigest("new"), secrets.App.Password)
	assert.Equal(t, "fallback", secrets.App.Username)
}

func TestSecretsSetSecondary(t *testing.T) {
	h := newHarness(t)
	file := filepath.Join(t.TempDir(), "secrets.toml")

	_, err := h.run("one\ntwo\n", "secrets", "--file", file, "set-secondary")
	assert.ErrorContains(t, err, "secondary passwords do not match")
	assert.NoFileExists(t, file)

	_, err = h.run("s3\ns3\n", "secrets", "--file", file, "set-secondary")
	require.NoError(t, err)

	secrets, err := config.LoadSecrets(file)
	require.NoError(t, err)
	assert.Equal(t, auth.LegacyDigest("s3"), secrets.App.SecondaryPassword)
}

func TestAdminCreate(t *testing.T) {
	h := newHarness(t)
	t.Setenv("STORAGE_TYPE", config.StorageTypeMemory)
	t.Setenv("SESSION_STORE", config.SessionStoreMemory)
	t.Setenv("SECRETS_FILE", filepath.Join(t.TempDir(), "missing.toml"))

	out, err := h.run("alice\npw\npw\nsec\nsec\n", "admin", "create", "--database", "shop")
	require.NoError(t, err)
	assert.Contains(t, out, "Admin user alice created in database shop")

	_, err = h.run("alice\npw\nother\n", "admin", "create", "--database", "shop")
	assert.ErrorContains(t, err, "passwords do not match")
}
