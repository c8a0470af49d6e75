package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/diamond_shop/internal/fakeapi"
	"github.com/Skotchmaster/diamond_shop/internal/logging"
	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/remote"
	"github.com/Skotchmaster/diamond_shop/internal/upload"
)

type cli struct {
	t    *testing.T
	fake *fakeapi.Server
	dir  string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	fake := fakeapi.New()
	srv := fake.Start()
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	t.Setenv("API_BASE_URL", srv.URL)
	t.Setenv("SESSION_DSN", filepath.Join(dir, "sessions.db"))
	t.Setenv("SESSION_PROFILE", "ops")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("DIAMOND_PASSWORD", "")
	return &cli{t: t, fake: fake, dir: dir}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	a := &app{}
	root := newRootCmd(a)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(logging.IntoContext(context.Background(), logging.Discard()))
	a.close()
	return out.String(), err
}

func (c *cli) must(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, "diamondctl %v", args)
	return out
}

func (c *cli) login(role models.Role, approval models.ApprovalStatus) models.User {
	c.t.Helper()
	email := string(role) + "@example.com"
	u := c.fake.AddUser(string(role), email, "pw", role, approval)
	c.must("login", "--email", email, "--password", "pw")
	return u
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestCLI_SessionPersistsAcrossInvocations(t *testing.T) {
	c := newCLI(t)
	c.login(models.RoleBuyer, "")

	who := decode[whoami](t, c.must("whoami"))
	assert.True(t, who.LoggedIn)
	assert.Equal(t, "ops", who.Profile)
	require.NotNil(t, who.User)
	assert.Equal(t, "Buyer@example.com", who.User.Email)
	assert.Empty(t, who.User.Token)

	other := decode[whoami](t, c.must("whoami", "--profile", "other"))
	assert.False(t, other.LoggedIn)

	c.must("logout")
	who = decode[whoami](t, c.must("whoami"))
	assert.False(t, who.LoggedIn)
	assert.Nil(t, who.User)
}

func TestCLI_UnauthenticatedCallsStayLocal(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("cart", "list")
	require.Error(t, err)
	assert.Equal(t, "unauthorized: please log in to continue", err.Error())
	assert.Zero(t, c.fake.TotalHits())
}

func TestCLI_DiamondsAndCart(t *testing.T) {
	c := newCLI(t)
	d := c.fake.AddDiamond(models.Diamond{StockID: "S-1", Shape: "Round", Carat: 1.01, Price: 5400})
	c.fake.AddDiamond(models.Diamond{StockID: "S-2", Shape: "Oval", Carat: 0.7, Price: 2100})

	list := decode[remote.View[models.Diamond]](t, c.must("diamonds", "list", "--shape", "Round"))
	assert.Equal(t, remote.StatusSucceeded, list.Status)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "S-1", list.Items[0].StockID)

	got := decode[models.Diamond](t, c.must("diamonds", "get", "S-2"))
	assert.Equal(t, "Oval", got.Shape)

	c.login(models.RoleBuyer, "")
	entry := decode[models.CartEntry](t, c.must("cart", "add", d.ID))
	assert.Equal(t, d.ID, entry.DiamondID)

	before := c.fake.Hits("POST /cart")
	_, err := c.run("cart", "add", d.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already in the cart")
	assert.Equal(t, before, c.fake.Hits("POST /cart"))

	cart := decode[remote.View[models.CartEntry]](t, c.must("cart", "list"))
	require.Len(t, cart.Items, 1)

	c.must("cart", "remove", d.ID)
	cart = decode[remote.View[models.CartEntry]](t, c.must("cart", "list"))
	assert.True(t, cart.Empty)
}

func TestCLI_NotificationsReadAll(t *testing.T) {
	c := newCLI(t)
	u := c.login(models.RoleBuyer, "")
	c.fake.AddNotification(u.ID, models.Notification{Title: "Shipped", Message: "Order shipped"})
	c.fake.AddNotification(u.ID, models.Notification{Title: "Paid", Message: "Payment received"})

	v := decode[notificationsView](t, c.must("notifications", "list"))
	assert.Len(t, v.Items, 2)
	assert.Equal(t, 2, v.Unread)

	v = decode[notificationsView](t, c.must("notifications", "read-all"))
	assert.Zero(t, v.Unread)
}

func TestCLI_InventoryAddRequiresApproval(t *testing.T) {
	c := newCLI(t)
	c.login(models.RoleSupplier, models.ApprovalPending)

	_, err := c.run("inventory", "add", "--set", "stockId=S-9", "--set", "carat=1.2")
	require.Error(t, err)
	assert.Zero(t, c.fake.Hits("POST /inventory"))
}

func TestCLI_InventoryAddCoercesNumbers(t *testing.T) {
	c := newCLI(t)
	c.login(models.RoleSupplier, models.ApprovalApproved)

	d := decode[models.Diamond](t, c.must("inventory", "add", "--set", "stockId=S-9", "--set", "carat=1.2", "--set", "price=7300"))
	assert.Equal(t, "S-9", d.StockID)
	assert.InDelta(t, 1.2, d.Carat, 1e-9)
	assert.InDelta(t, 7300, d.Price, 1e-9)

	inv := decode[remote.View[models.Diamond]](t, c.must("inventory", "list"))
	require.Len(t, inv.Items, 1)

	c.must("inventory", "delete", "S-9")
	inv = decode[remote.View[models.Diamond]](t, c.must("inventory", "list"))
	assert.Empty(t, inv.Items)
}

func TestCLI_UploadPresetRoundTrip(t *testing.T) {
	c := newCLI(t)
	c.login(models.RoleSupplier, models.ApprovalApproved)

	csvPath := filepath.Join(c.dir, "stock.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Stock #,Carat,Price,Shape\nA-1,1.1,5000,Round\nA-2,0.9,3900,Pear\n"), 0o600))
	presetPath := filepath.Join(c.dir, "presets", "stock.yaml")

	proposed := decode[upload.View](t, c.must("upload", "automap", "--csv", csvPath, "--save-mapping", presetPath))
	assert.Equal(t, "Stock #", proposed.Mapping["stockId"])
	assert.Equal(t, "Carat", proposed.Mapping["carat"])
	assert.Empty(t, proposed.Missing)

	preset, err := upload.LoadPreset(presetPath)
	require.NoError(t, err)
	assert.Equal(t, upload.KindCSV, preset.Kind)
	assert.Equal(t, "Price", preset.Mapping["price"])

	done := decode[upload.View](t, c.must("upload", "submit", "--mapping", presetPath))
	require.NotNil(t, done.Summary)
	assert.Equal(t, 2, done.Summary.Total)
	assert.Equal(t, 2, done.Summary.Succeeded)
	assert.Equal(t, 1, c.fake.Hits("POST /inventory/upload/csv"))
}

func TestCLI_UploadMissingRequiredStaysLocal(t *testing.T) {
	c := newCLI(t)
	c.login(models.RoleSupplier, models.ApprovalApproved)

	csvPath := filepath.Join(c.dir, "bad.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Ref,Weight\nA-1,1.1\n"), 0o600))

	_, err := c.run("upload", "submit", "--csv", csvPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stockId")
	assert.Zero(t, c.fake.Hits("POST /inventory/upload/csv"))
}

func TestCLI_UploadNeedsSource(t *testing.T) {
	c := newCLI(t)
	c.login(models.RoleSupplier, models.ApprovalApproved)

	_, err := c.run("upload", "preview")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a source is required")
}
