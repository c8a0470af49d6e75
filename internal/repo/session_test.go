package repo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Skotchmaster/diamond_shop/internal/db"
	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()
	ctx := context.Background()
	gdb, err := db.Open(ctx, filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	r := &GormRepo{DB: gdb}
	require.NoError(t, r.Migrate(ctx))
	return r
}

func TestGormRepo_SaveLoadDelete(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	_, err := r.Load(ctx, "default")
	require.ErrorIs(t, err, ErrNotFound)

	s := &models.Session{UserID: "u-1", Name: "Ada", Email: "ada@example.com", Role: models.RoleSupplier, Approval: models.ApprovalPending, Token: "tok-1"}
	require.NoError(t, r.Save(ctx, "default", s))

	got, err := r.Load(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.UserID)
	assert.Equal(t, models.RoleSupplier, got.Role)
	assert.Equal(t, models.ApprovalPending, got.Approval)
	assert.Equal(t, "tok-1", got.Token)

	s.Token = "tok-2"
	s.Approval = models.ApprovalApproved
	require.NoError(t, r.Save(ctx, "default", s))
	got, err = r.Load(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, "tok-2", got.Token)
	assert.Equal(t, models.ApprovalApproved, got.Approval)

	require.NoError(t, r.Delete(ctx, "default"))
	_, err = r.Load(ctx, "default")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGormRepo_ProfilesAreIsolated(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, "alice", &models.Session{UserID: "a", Email: "a@x.io", Role: models.RoleBuyer, Token: "ta"}))
	require.NoError(t, r.Save(ctx, "bob", &models.Session{UserID: "b", Email: "b@x.io", Role: models.RoleAdmin, Token: "tb"}))
	require.NoError(t, r.Delete(ctx, "alice"))

	got, err := r.Load(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "tb", got.Token)
}
