// Package clientsession keeps HTTP session state on the client.
//
// The whole session (id, timestamps, inactivity timeout and attributes) is
// serialized to JSON, sealed with pkg/envelope and stored in a cookie. The
// server keeps nothing but the key held by a keyring.Keyring.
//
// # Lifecycle
//
//	keys := keyring.New()
//	m := clientsession.New(keys, clientsession.WithMaxInactiveInterval(30*time.Minute))
//
//	s, err := m.Load(cookieValue) // fresh session for "", no key, or expiry
//	s.Set("role", "admin")
//	token, err := m.Save(s)       // generates the key on first use
//
// Load is strict: a token that fails format, authentication, decryption or
// schema checks returns an error wrapping ErrDecodeFailed and the specific
// cause. The HTTP helpers (Read, Middleware) degrade to a fresh session and
// log a warning instead.
//
// # Attributes
//
// Attributes hold JSON values. A key set to nil is an explicit null and
// survives a round trip; a removed key reads as missing. Numbers come back as
// json.Number, so use the typed accessors (Int64, Float64, Number) rather
// than type assertions.
//
// # HTTP
//
//	r := chi.NewRouter()
//	r.Use(m.Middleware)
//	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
//		s := clientsession.MustFromContext(r.Context())
//		...
//	})
//
// The middleware writes the cookie right before the first byte of the
// response, so handlers must finish changing the session before writing.
package clientsession
