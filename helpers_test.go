package adauth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func testConfig() Config {
	cfg := defaultConfig()
	cfg.Token.Secret = []byte("0123456789abcdef0123456789abcdef")
	cfg.Metrics.EnableLatencyHistograms = true
	// Cheap parameters keep hashing fast in tests.
	cfg.Password.Memory = 16 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	return cfg
}

func newTestEngine(t *testing.T, rdb *redis.Client, store UserStore, mailer Mailer) *Engine {
	t.Helper()

	engine, err := New().
		WithConfig(testConfig()).
		WithRedis(rdb).
		WithUserStore(store).
		WithMailer(mailer).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	return engine
}

type sentMail struct {
	To   string
	Code string
}

type mockMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	sendErr error
}

func (m *mockMailer) Send(_ context.Context, to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sendErr != nil {
		return m.sendErr
	}

	m.sent = append(m.sent, sentMail{To: to, Code: code})
	return nil
}

func (m *mockMailer) lastCode(t *testing.T) string {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sent) == 0 {
		t.Fatal("expected a sent mail")
	}
	return m.sent[len(m.sent)-1].Code
}

func (m *mockMailer) lastTo(t *testing.T) string {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sent) == 0 {
		t.Fatal("expected a sent mail")
	}
	return m.sent[len(m.sent)-1].To
}

func (m *mockMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type mockUserStore struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]UserRecord
	byEmail map[string]int64

	findErr   error
	createErr error
	updateErr error

	createCalls      int
	updateEmailCalls int
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{
		nextID:  1,
		byID:    make(map[int64]UserRecord),
		byEmail: make(map[string]int64),
	}
}

func (m *mockUserStore) seed(u UserRecord) UserRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u.ID == 0 {
		u.ID = m.nextID
		m.nextID++
	}
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u.ID
	return u
}

func (m *mockUserStore) FindByEmail(_ context.Context, email string) (*UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findErr != nil {
		return nil, m.findErr
	}

	id, ok := m.byEmail[email]
	if !ok {
		return nil, nil
	}
	u := m.byID[id]
	return &u, nil
}

func (m *mockUserStore) FindByID(_ context.Context, id int64) (*UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findErr != nil {
		return nil, m.findErr
	}

	u, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *mockUserStore) Create(_ context.Context, input CreateUserInput) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.createCalls++
	if m.createErr != nil {
		return UserRecord{}, m.createErr
	}

	if _, exists := m.byEmail[input.Email]; exists {
		return UserRecord{}, errors.New("duplicate email")
	}

	u := UserRecord{
		ID:           m.nextID,
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: input.PasswordHash,
	}
	m.nextID++
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u.ID
	return u, nil
}

func (m *mockUserStore) UpdateEmail(_ context.Context, id int64, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.updateEmailCalls++
	if m.updateErr != nil {
		return m.updateErr
	}

	u, ok := m.byID[id]
	if !ok {
		return errors.New("not found")
	}
	delete(m.byEmail, u.Email)
	u.Email = email
	m.byID[id] = u
	m.byEmail[email] = id
	return nil
}

func (m *mockUserStore) EmailExists(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findErr != nil {
		return false, m.findErr
	}

	_, ok := m.byEmail[email]
	return ok, nil
}

func (m *mockUserStore) get(id int64) (UserRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[id]
	return u, ok
}
