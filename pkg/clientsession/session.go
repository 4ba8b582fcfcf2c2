package clientsession

import (
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Session is a client-held session. All of its state travels in the cookie.
//
// A Session is request-scoped and not safe for concurrent use.
type Session struct {
	id             string
	createdAt      time.Time
	lastAccessedAt time.Time
	maxInactive    time.Duration
	isNew          bool
	attrs          Attributes

	// reset parameters used by Invalidate
	now            func() time.Time
	defaultTimeout time.Duration
}

func newSession(now func() time.Time, timeout time.Duration) *Session {
	s := &Session{now: now, defaultTimeout: timeout}
	s.reset()
	return s
}

func restoreSession(p payload, now func() time.Time, defaultTimeout time.Duration, accessedAt time.Time) *Session {
	createdAt := time.UnixMilli(p.CreationTime)
	if accessedAt.Before(createdAt) {
		accessedAt = createdAt
	}
	return &Session{
		id:             p.ID,
		createdAt:      createdAt,
		lastAccessedAt: accessedAt,
		maxInactive:    time.Duration(p.MaxInactiveInterval) * time.Second,
		isNew:          false,
		attrs:          p.Attributes,
		now:            now,
		defaultTimeout: defaultTimeout,
	}
}

func (s *Session) reset() {
	ts := truncate(s.now())
	s.id = newID()
	s.createdAt = ts
	s.lastAccessedAt = ts
	s.maxInactive = s.defaultTimeout
	s.isNew = true
	s.attrs = Attributes{}
}

// ID returns the session identifier. It is not a secret.
func (s *Session) ID() string {
	return s.id
}

// CreatedAt returns the creation time, preserved across restores.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// LastAccessedAt returns the time of the last successful load or save.
func (s *Session) LastAccessedAt() time.Time {
	return s.lastAccessedAt
}

// MaxInactiveInterval returns the inactivity timeout.
// Zero or negative means the session never expires.
func (s *Session) MaxInactiveInterval() time.Duration {
	return s.maxInactive
}

// SetMaxInactiveInterval overrides the inactivity timeout for this session.
// The value is stored with second precision; a positive value under a second
// becomes one second.
func (s *Session) SetMaxInactiveInterval(d time.Duration) {
	s.maxInactive = normalizeInterval(d)
}

// IsNew reports whether the session was created in this request rather than
// restored from a token.
func (s *Session) IsNew() bool {
	return s.isNew
}

// IsExpired reports whether the session has been idle longer than its
// inactivity timeout at the given time.
func (s *Session) IsExpired(now time.Time) bool {
	return expired(s.lastAccessedAt.UnixMilli(), intervalSeconds(s.maxInactive), now)
}

// Attributes returns the attribute bag. Changes are saved with the session.
func (s *Session) Attributes() Attributes {
	return s.attrs
}

// Get is a shortcut for Attributes().Get.
func (s *Session) Get(name string) (any, bool) {
	return s.attrs.Get(name)
}

// Set is a shortcut for Attributes().Set.
func (s *Session) Set(name string, value any) {
	s.attrs.Set(name, value)
}

// Remove is a shortcut for Attributes().Remove.
func (s *Session) Remove(name string) {
	s.attrs.Remove(name)
}

// Invalidate discards all state and turns s into a fresh session with a new
// id, new timestamps, the default timeout and no attributes.
func (s *Session) Invalidate() {
	s.reset()
}

// touch marks the session as accessed at now.
func (s *Session) touch(now time.Time) {
	now = truncate(now)
	if now.Before(s.createdAt) {
		now = s.createdAt
	}
	s.lastAccessedAt = now
}

// normalizeInterval truncates d to whole seconds. Positive values never
// round down to zero, which would mean "never expires".
func normalizeInterval(d time.Duration) time.Duration {
	if d > 0 && d < time.Second {
		return time.Second
	}
	return d.Truncate(time.Second)
}

func expired(lastAccessedMillis int64, maxInactiveSeconds int, now time.Time) bool {
	if maxInactiveSeconds <= 0 {
		return false
	}
	return now.UnixMilli()-lastAccessedMillis > int64(maxInactiveSeconds)*1000
}

// newID returns 32 lowercase hex characters from a random UUID.
func newID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// truncate drops precision below a millisecond, matching the wire format.
func truncate(t time.Time) time.Time {
	return time.UnixMilli(t.UnixMilli())
}
