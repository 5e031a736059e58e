package tenauth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"strconv"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/tenauth/tenauth/keys"
)

var (
	testKeyOnce sync.Once
	testKey     *rsa.PrivateKey
)

// One RSA key for the whole package; generation dominates test runtime
// otherwise.
func testRSAKey(t testing.TB) *rsa.PrivateKey {
	t.Helper()
	testKeyOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		testKey = key
	})
	return testKey
}

func newTestRedis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start failed: %v", err)
	}
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func newTestKeys(t testing.TB) *keys.StaticProvider {
	t.Helper()

	provider, err := keys.NewStaticProvider(testRSAKey(t), []byte("refresh-secret-for-tests"))
	if err != nil {
		t.Fatalf("static provider failed: %v", err)
	}
	return provider
}

func testConfig() Config {
	cfg := DefaultConfig()
	// Cheap hashing keeps account tests fast without touching the PHC shape.
	cfg.Password = PasswordConfig{
		Memory:      8192,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
	return cfg
}

func newTestEngine(t testing.TB, mutate ...func(*Builder)) (*Engine, *mockUserProvider, func()) {
	t.Helper()

	mr, rdb := newTestRedis(t)
	up := newMockUserProvider()

	builder := New().
		WithConfig(testConfig()).
		WithRedis(rdb).
		WithKeys(newTestKeys(t)).
		WithUserProvider(up)
	for _, fn := range mutate {
		fn(builder)
	}

	engine, err := builder.Build()
	if err != nil {
		mr.Close()
		t.Fatalf("Build failed: %v", err)
	}

	return engine, up, func() {
		engine.Close()
		_ = rdb.Close()
		mr.Close()
	}
}

func seedUser(t testing.TB, engine *Engine, up *mockUserProvider, email, password string) UserRecord {
	t.Helper()

	hash, err := engine.passwordHash.Hash(password)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	user, err := up.CreateUser(context.Background(), CreateUserInput{
		Email:        email,
		FirstName:    "Alice",
		LastName:     "Doe",
		PasswordHash: hash,
		Role:         RoleCustomer,
		TenantID:     "1",
	})
	if err != nil {
		t.Fatalf("seed user failed: %v", err)
	}
	return user
}

type mockUserProvider struct {
	mu      sync.Mutex
	nextID  int
	users   map[string]UserRecord
	byEmail map[string]string

	getByEmailCalls int
	getByIDCalls    int
	createCalls     int

	createErr error
	lookupErr error
}

func newMockUserProvider() *mockUserProvider {
	return &mockUserProvider{
		users:   make(map[string]UserRecord),
		byEmail: make(map[string]string),
	}
}

func (p *mockUserProvider) GetUserByEmail(_ context.Context, email string) (UserRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.getByEmailCalls++
	if p.lookupErr != nil {
		return UserRecord{}, p.lookupErr
	}
	id, ok := p.byEmail[email]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return p.users[id], nil
}

func (p *mockUserProvider) GetUserByID(_ context.Context, userID string) (UserRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.getByIDCalls++
	user, ok := p.users[userID]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return user, nil
}

func (p *mockUserProvider) CreateUser(_ context.Context, input CreateUserInput) (UserRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.createCalls++
	if p.createErr != nil {
		return UserRecord{}, p.createErr
	}

	p.nextID++
	user := UserRecord{
		UserID:       strconv.Itoa(p.nextID),
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: input.PasswordHash,
		Role:         input.Role,
		TenantID:     input.TenantID,
	}
	p.users[user.UserID] = user
	p.byEmail[user.Email] = user.UserID
	return user, nil
}
