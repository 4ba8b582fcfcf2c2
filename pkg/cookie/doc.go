// Package cookie writes and reads plain HTTP cookies with consistent default
// attributes.
//
// It is the transport for client-held sessions: the session token is already
// encrypted and authenticated by package envelope, so cookies here are stored
// as-is.
//
// # Usage
//
//	man := cookie.New(cookie.WithSecure(true))
//
//	_ = man.Set(w, "client-session", token, cookie.WithMaxAge(3600))
//	value, err := man.Get(r, "client-session")
//	man.Delete(w, "client-session")
//
// # Configuration
//
// Config can be populated from the environment (COOKIE_PATH, COOKIE_DOMAIN,
// COOKIE_SECURE, COOKIE_HTTP_ONLY, COOKIE_SAME_SITE) and passed to
// NewFromConfig.
//
// # Error Handling
//
//   - ErrCookieNotFound   – request has no cookie with that name
//   - ErrInvalidName      – name is empty or not an RFC 6265 token
//   - ErrValueTooLarge    – name plus value exceed MaxSize bytes
//   - ErrInsecureSameSite – SameSite=None without Secure
package cookie
