package service

import (
	"context"
	"sync"
	"testing"

	"github.com/Skotchmaster/diamond_shop/internal/apiclient"
	"github.com/Skotchmaster/diamond_shop/internal/events"
	"github.com/Skotchmaster/diamond_shop/internal/fakeapi"
	"github.com/Skotchmaster/diamond_shop/internal/logging"
	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/repo"
	"github.com/Skotchmaster/diamond_shop/internal/session"
	"github.com/Skotchmaster/diamond_shop/internal/transport"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]models.Session
}

func (m *memStore) Load(_ context.Context, profile string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.data[profile]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &s, nil
}

func (m *memStore) Save(_ context.Context, profile string, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[profile] = *s
	return nil
}

func (m *memStore) Delete(_ context.Context, profile string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, profile)
	return nil
}

type harness struct {
	t       *testing.T
	ctx     context.Context
	fake    *fakeapi.Server
	api     *apiclient.Client
	session *session.Provider
	events  *events.Recorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fake := fakeapi.New()
	srv := fake.Start()
	t.Cleanup(srv.Close)

	p := session.NewProvider(&memStore{data: map[string]models.Session{}}, "test")
	api := apiclient.NewClient(srv.URL, p, apiclient.Options{Logger: logging.Discard()})
	p.Bind(api)

	return &harness{
		t:       t,
		ctx:     logging.IntoContext(context.Background(), logging.Discard()),
		fake:    fake,
		api:     api,
		session: p,
		events:  &events.Recorder{},
	}
}

// loginAs seeds an account and logs the session into it.
func (h *harness) loginAs(role models.Role, approval models.ApprovalStatus) models.User {
	h.t.Helper()
	email := string(role) + "-" + string(approval) + "@example.com"
	u := h.fake.AddUser(string(role)+" user", email, "pw", role, approval)
	_, err := h.session.Login(h.ctx, transport.LoginRequest{Email: email, Password: "pw"})
	require.NoError(h.t, err)
	return u
}
