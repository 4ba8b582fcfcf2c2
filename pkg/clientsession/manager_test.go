package clientsession_test

import (
	"encoding/json"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/clientsession/pkg/clientsession"
	"github.com/dmitrymomot/clientsession/pkg/envelope"
	"github.com/dmitrymomot/clientsession/pkg/keyring"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

// clock is a manually advanced time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.UnixMilli(1_700_000_000_000)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func loadedKeyring(t *testing.T) *keyring.Keyring {
	t.Helper()
	keys := keyring.New()
	require.NoError(t, keys.Load(testKey))
	return keys
}

func TestManager_RoundTrip(t *testing.T) {
	t.Parallel()

	clk := newClock()
	m := clientsession.New(keyring.New(), clientsession.WithClock(clk.Now))

	s := m.NewSession()
	assert.True(t, s.IsNew())
	assert.Len(t, s.ID(), 32)
	s.Set("role", "admin")
	s.Set("count", 42)

	token, err := m.Save(s)
	require.NoError(t, err)
	require.NotNil(t, token)

	clk.Advance(10 * time.Second)
	restored, err := m.Load(token.Value)
	require.NoError(t, err)

	assert.False(t, restored.IsNew())
	assert.Equal(t, s.ID(), restored.ID())
	assert.True(t, s.CreatedAt().Equal(restored.CreatedAt()))
	assert.True(t, restored.LastAccessedAt().Equal(clk.Now()))
	assert.Equal(t, time.Hour, restored.MaxInactiveInterval())

	role, ok, err := restored.Attributes().String("role")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "admin", role)

	count, ok, err := restored.Attributes().Int64("count")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(42), count)
}

func TestManager_LoadEmptyToken(t *testing.T) {
	t.Parallel()

	m := clientsession.New(loadedKeyring(t))
	s, err := m.Load("")
	require.NoError(t, err)
	assert.True(t, s.IsNew())
	assert.Equal(t, 0, s.Attributes().Len())
}

func TestManager_LoadWithoutKey(t *testing.T) {
	t.Parallel()

	issuer := clientsession.New(keyring.New())
	token, err := issuer.Save(issuer.NewSession())
	require.NoError(t, err)

	// A restarted process without a persisted key cannot read old tokens
	keys := keyring.New()
	m := clientsession.New(keys)
	s, err := m.Load(token.Value)
	require.NoError(t, err)
	assert.True(t, s.IsNew())

	_, ok := keys.Key()
	assert.False(t, ok, "loading must not generate a key")
}

func TestManager_Expiry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		interval    time.Duration
		idle        time.Duration
		wantExpired bool
	}{
		{"idle beyond interval", time.Second, 2 * time.Second, true},
		{"idle within interval", time.Second, 500 * time.Millisecond, false},
		{"idle exactly interval", time.Second, time.Second, false},
		{"idle one millisecond over", time.Second, time.Second + time.Millisecond, true},
		{"zero never expires", 0, 1000 * time.Hour, false},
		{"negative never expires", -time.Second, 1000 * time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			clk := newClock()
			m := clientsession.New(loadedKeyring(t),
				clientsession.WithClock(clk.Now),
				clientsession.WithMaxInactiveInterval(tt.interval),
			)

			s := m.NewSession()
			token, err := m.Save(s)
			require.NoError(t, err)

			clk.Advance(tt.idle)
			assert.Equal(t, tt.wantExpired, s.IsExpired(clk.Now()))

			restored, err := m.Load(token.Value)
			require.NoError(t, err)
			if tt.wantExpired {
				assert.True(t, restored.IsNew())
				assert.NotEqual(t, s.ID(), restored.ID())
			} else {
				assert.False(t, restored.IsNew())
				assert.Equal(t, s.ID(), restored.ID())
			}
		})
	}
}

func TestManager_NullSurvivesRoundTrip(t *testing.T) {
	t.Parallel()

	m := clientsession.New(loadedKeyring(t))
	s := m.NewSession()
	s.Set("cleared", nil)
	s.Set("removed", "x")
	s.Remove("removed")

	token, err := m.Save(s)
	require.NoError(t, err)
	restored, err := m.Load(token.Value)
	require.NoError(t, err)

	v, ok := restored.Get("cleared")
	assert.True(t, ok)
	assert.Nil(t, v)

	_, ok = restored.Get("removed")
	assert.False(t, ok)
}

func TestManager_ConcurrentFirstSave(t *testing.T) {
	t.Parallel()

	keys := keyring.New()
	m := clientsession.New(keys)

	const workers = 32
	tokens := make([]string, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := m.NewSession()
			s.Set("worker", i)
			token, err := m.Save(s)
			assert.NoError(t, err)
			if token != nil {
				tokens[i] = token.Value
			}
		}()
	}
	wg.Wait()

	// Every token must open under the single key that was generated
	exported, ok := keys.Export()
	require.True(t, ok)
	reader := clientsession.New(loadedFrom(t, exported))
	for i, token := range tokens {
		s, err := reader.Load(token)
		require.NoError(t, err)
		n, ok, err := s.Attributes().Int64("worker")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(i), n)
	}
}

func loadedFrom(t *testing.T, hexKey string) *keyring.Keyring {
	t.Helper()
	keys := keyring.New()
	require.NoError(t, keys.Load(hexKey))
	return keys
}

func TestManager_LoadRejectsForeignAndTamperedTokens(t *testing.T) {
	t.Parallel()

	m := clientsession.New(loadedKeyring(t))
	token, err := m.Save(m.NewSession())
	require.NoError(t, err)

	other := keyring.New()
	_, err = other.Current()
	require.NoError(t, err)
	_, err = clientsession.New(other).Load(token.Value)
	assert.ErrorIs(t, err, clientsession.ErrDecodeFailed)
	assert.ErrorIs(t, err, envelope.ErrAuthentication)

	fields := strings.Split(token.Value, "|")
	last := fields[3]
	flipped := "0"
	if last[len(last)-1] == '0' {
		flipped = "1"
	}
	fields[3] = last[:len(last)-1] + flipped
	_, err = m.Load(strings.Join(fields, "|"))
	assert.ErrorIs(t, err, clientsession.ErrDecodeFailed)
	assert.ErrorIs(t, err, envelope.ErrAuthentication)

	_, err = m.Load("not-a-token")
	assert.ErrorIs(t, err, clientsession.ErrDecodeFailed)
	assert.ErrorIs(t, err, envelope.ErrTokenFormat)
}

func TestManager_LoadSchemaErrors(t *testing.T) {
	t.Parallel()

	keys := loadedKeyring(t)
	key, ok := keys.Key()
	require.True(t, ok)
	m := clientsession.New(keys)

	tests := []struct {
		name      string
		plaintext string
	}{
		{"not json", "hello"},
		{"array", "[]"},
		{"null", "null"},
		{"missing id", `{"creationTime":1,"lastAccessedTime":1,"maxInactiveInterval":0,"attributes":{}}`},
		{"empty id", `{"id":"","creationTime":1,"lastAccessedTime":1,"maxInactiveInterval":0,"attributes":{}}`},
		{"missing creationTime", `{"id":"x","lastAccessedTime":1,"maxInactiveInterval":0,"attributes":{}}`},
		{"missing interval", `{"id":"x","creationTime":1,"lastAccessedTime":1,"attributes":{}}`},
		{"accessed before created", `{"id":"x","creationTime":2,"lastAccessedTime":1,"maxInactiveInterval":0,"attributes":{}}`},
		{"attributes array", `{"id":"x","creationTime":1,"lastAccessedTime":1,"maxInactiveInterval":0,"attributes":[]}`},
		{"attributes missing", `{"id":"x","creationTime":1,"lastAccessedTime":1,"maxInactiveInterval":0}`},
		{"wrong id type", `{"id":7,"creationTime":1,"lastAccessedTime":1,"maxInactiveInterval":0,"attributes":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			token, err := envelope.Encrypt(envelope.SingleKey(key), []byte(tt.plaintext))
			require.NoError(t, err)

			_, err = m.Load(token)
			assert.ErrorIs(t, err, clientsession.ErrDecodeFailed)
			assert.ErrorIs(t, err, clientsession.ErrSchema)
		})
	}
}

func TestManager_AcceptsForeignIssuedPayload(t *testing.T) {
	t.Parallel()

	keys := loadedKeyring(t)
	key, _ := keys.Key()
	m := clientsession.New(keys)

	plaintext := `{"id":"abc","creationTime":1000,"lastAccessedTime":2000,"maxInactiveInterval":0,"attributes":{"role":"admin","n":null}}`
	token, err := envelope.Encrypt(envelope.SingleKey(key), []byte(plaintext))
	require.NoError(t, err)

	s, err := m.Load(token)
	require.NoError(t, err)
	assert.Equal(t, "abc", s.ID())
	assert.Equal(t, int64(1000), s.CreatedAt().UnixMilli())
	assert.Equal(t, time.Duration(0), s.MaxInactiveInterval())
	assert.True(t, s.Attributes().Has("n"))
}

func TestManager_PayloadWireFormat(t *testing.T) {
	t.Parallel()

	clk := newClock()
	keys := loadedKeyring(t)
	key, _ := keys.Key()
	m := clientsession.New(keys, clientsession.WithClock(clk.Now))

	s := m.NewSession()
	s.SetMaxInactiveInterval(90*time.Second + 500*time.Millisecond)
	s.Set("role", "admin")
	clk.Advance(3 * time.Second)

	token, err := m.Save(s)
	require.NoError(t, err)
	assert.Equal(t, 90, token.MaxAge)

	plaintext, err := envelope.Decrypt(envelope.SingleKey(key), token.Value)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(plaintext, &wire))
	assert.Equal(t, s.ID(), wire["id"])
	assert.InDelta(t, 1_700_000_000_000, wire["creationTime"], 0)
	assert.InDelta(t, 1_700_000_003_000, wire["lastAccessedTime"], 0)
	assert.InDelta(t, 90, wire["maxInactiveInterval"], 0)
	assert.Equal(t, map[string]any{"role": "admin"}, wire["attributes"])
}

func TestManager_DerivedKeys(t *testing.T) {
	t.Parallel()

	keys := loadedKeyring(t)
	derived := clientsession.New(keys, clientsession.WithDerivedKeys(true))
	plain := clientsession.New(keys)

	s := derived.NewSession()
	s.Set("k", "v")
	token, err := derived.Save(s)
	require.NoError(t, err)

	restored, err := derived.Load(token.Value)
	require.NoError(t, err)
	assert.Equal(t, s.ID(), restored.ID())

	_, err = plain.Load(token.Value)
	assert.ErrorIs(t, err, envelope.ErrAuthentication)
}

func TestManager_SaveNil(t *testing.T) {
	t.Parallel()

	keys := keyring.New()
	m := clientsession.New(keys)
	token, err := m.Save(nil)
	assert.NoError(t, err)
	assert.Nil(t, token)

	_, ok := keys.Key()
	assert.False(t, ok)
}

func TestManager_TokenAttributes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		opts       []clientsession.Option
		wantName   string
		wantMaxAge int
		wantSecure bool
	}{
		{"defaults", nil, clientsession.DefaultCookieName, 3600, true},
		{"custom", []clientsession.Option{
			clientsession.WithCookieName("app"),
			clientsession.WithMaxInactiveInterval(90 * time.Second),
			clientsession.WithSecureCookies(false),
		}, "app", 90, false},
		{"never expires", []clientsession.Option{clientsession.WithMaxInactiveInterval(0)}, clientsession.DefaultCookieName, 0, true},
		{"negative interval", []clientsession.Option{clientsession.WithMaxInactiveInterval(-time.Minute)}, clientsession.DefaultCookieName, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := clientsession.New(loadedKeyring(t), tt.opts...)
			token, err := m.Save(m.NewSession())
			require.NoError(t, err)

			assert.Equal(t, tt.wantName, token.Name)
			assert.Equal(t, tt.wantName, m.CookieName())
			assert.Equal(t, tt.wantMaxAge, token.MaxAge)
			assert.Equal(t, tt.wantSecure, token.Secure)
			assert.True(t, token.HTTPOnly)
			assert.Len(t, strings.Split(token.Value, "|"), 4)
		})
	}
}

func TestManager_NewFromConfig(t *testing.T) {
	t.Parallel()

	cfg := clientsession.DefaultConfig()
	cfg.CookieName = "cfg-session"
	cfg.MaxInactiveInterval = 5 * time.Minute

	m := clientsession.NewFromConfig(cfg, loadedKeyring(t))
	assert.Equal(t, "cfg-session", m.CookieName())
	assert.Equal(t, 5*time.Minute, m.NewSession().MaxInactiveInterval())

	assert.Panics(t, func() { clientsession.New(nil) })
}

func TestSession_Invalidate(t *testing.T) {
	t.Parallel()

	m := clientsession.New(loadedKeyring(t), clientsession.WithMaxInactiveInterval(time.Minute))
	token, err := m.Save(m.NewSession())
	require.NoError(t, err)

	s, err := m.Load(token.Value)
	require.NoError(t, err)
	oldID := s.ID()
	s.Set("role", "admin")
	s.SetMaxInactiveInterval(time.Hour)

	s.Invalidate()
	assert.NotEqual(t, oldID, s.ID())
	assert.True(t, s.IsNew())
	assert.Equal(t, 0, s.Attributes().Len())
	assert.Equal(t, time.Minute, s.MaxInactiveInterval())
}

func TestSession_IDsAreUnique(t *testing.T) {
	t.Parallel()

	m := clientsession.New(keyring.New())
	seen := make(map[string]struct{}, 1000)
	for range 1000 {
		id := m.NewSession().ID()
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}

func TestManager_SubSecondIntervalStillExpires(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		set  time.Duration
	}{
		{name: "option", set: 0},
		{name: "per session", set: 300 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			clk := newClock()
			opts := []clientsession.Option{clientsession.WithClock(clk.Now)}
			if tt.set == 0 {
				opts = append(opts, clientsession.WithMaxInactiveInterval(500*time.Millisecond))
			}
			m := clientsession.New(loadedKeyring(t), opts...)

			s := m.NewSession()
			if tt.set != 0 {
				s.SetMaxInactiveInterval(tt.set)
			}
			assert.Equal(t, time.Second, s.MaxInactiveInterval())

			token, err := m.Save(s)
			require.NoError(t, err)
			assert.Equal(t, 1, token.MaxAge)

			clk.Advance(1000 * time.Hour)
			assert.True(t, s.IsExpired(clk.Now()))

			restored, err := m.Load(token.Value)
			require.NoError(t, err)
			assert.True(t, restored.IsNew())
			assert.NotEqual(t, s.ID(), restored.ID())
		})
	}
}

func TestManager_NewFromConfigRoundsSubSecondInterval(t *testing.T) {
	t.Parallel()

	cfg := clientsession.DefaultConfig()
	cfg.MaxInactiveInterval = 1500 * time.Millisecond
	m := clientsession.NewFromConfig(cfg, loadedKeyring(t))
	assert.Equal(t, time.Second, m.NewSession().MaxInactiveInterval())

	cfg.MaxInactiveInterval = time.Nanosecond
	m = clientsession.NewFromConfig(cfg, loadedKeyring(t))
	assert.Equal(t, time.Second, m.NewSession().MaxInactiveInterval())
}

func TestManager_SaveUnencodableAttribute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
	}{
		{"nan", math.NaN()},
		{"infinity", math.Inf(1)},
		{"channel", make(chan int)},
		{"func", func() {}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			keys := keyring.New()
			m := clientsession.New(keys)
			s := m.NewSession()
			s.Set("bad", tt.value)

			token, err := m.Save(s)
			assert.ErrorIs(t, err, clientsession.ErrEncodeFailed)
			assert.Nil(t, token)

			_, ok := keys.Key()
			assert.False(t, ok, "no key is generated for a payload that cannot be encoded")
		})
	}
}
