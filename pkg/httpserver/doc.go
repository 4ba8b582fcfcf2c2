// Package httpserver runs an http.Server with graceful shutdown and
// health-check handlers.
//
// Run binds the listener first, so a bad address fails immediately with
// ErrStart and start hooks see the resolved address (useful with ":0").
// It then serves until the context is cancelled, SIGINT or SIGTERM arrives,
// or Shutdown is called, and drains in-flight requests within the shutdown
// timeout.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// HealthCheckHandler answers "ALIVE" with no checks and "READY" or
// "NOT_READY" when named checks are supplied.
package httpserver
