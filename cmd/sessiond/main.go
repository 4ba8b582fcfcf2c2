// Command sessiond serves a client-held session over HTTP.
//
// Configuration comes from the environment (or a .env file):
//
//	CLIENT_SESSION_SECRET_KEY   64 hex chars; generated on first use when empty
//	CLIENT_SESSION_COOKIE_NAME  cookie name (default "client-session")
//	CLIENT_SESSION_MAX_INACTIVE_INTERVAL  e.g. "30m"; "0" disables expiry
//	HTTP_ADDR                   listen address (default ":8080")
//
// Run with -keygen to print a fresh key and exit.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/clientsession/pkg/clientsession"
	"github.com/dmitrymomot/clientsession/pkg/config"
	"github.com/dmitrymomot/clientsession/pkg/cookie"
	"github.com/dmitrymomot/clientsession/pkg/httpserver"
	"github.com/dmitrymomot/clientsession/pkg/keyring"
	"github.com/dmitrymomot/clientsession/pkg/logger"
)

func main() {
	keygen := flag.Bool("keygen", false, "print a new secret key and exit")
	envFile := flag.String("env-file", "", "load variables from this .env file")
	flag.Parse()

	if *keygen {
		key, err := keyring.GenerateKey()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to generate key: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%x\n", key)
		return
	}

	if *envFile != "" {
		if err := config.LoadEnv(*envFile); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}

	if err := run(); err != nil {
		slog.Error("sessiond stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	var (
		logCfg     logger.Config
		keyCfg     keyring.Config
		sessionCfg clientsession.Config
		cookieCfg  cookie.Config
		httpCfg    httpserver.Config
	)
	config.MustLoad(&logCfg)
	config.MustLoad(&keyCfg)
	config.MustLoad(&sessionCfg)
	config.MustLoad(&cookieCfg)
	config.MustLoad(&httpCfg)

	log := logger.NewFromConfig(logCfg,
		logger.WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
			if id := middleware.GetReqID(ctx); id != "" {
				return logger.RequestID(id), true
			}
			return slog.Attr{}, false
		}),
	)
	logger.SetAsDefault(log)

	keys, err := keyring.NewFromConfig(keyCfg, keyring.WithLogger(log))
	if err != nil {
		return err
	}
	if fp := keys.Fingerprint(); fp != "" {
		log.Info("client session key loaded", logger.KeyFingerprint(fp))
	} else {
		log.Warn("no client session key configured; one will be generated and sessions will not survive a restart")
	}

	sessions := clientsession.NewFromConfig(sessionCfg, keys,
		clientsession.WithLogger(log),
		clientsession.WithCookieManager(cookie.NewFromConfig(cookieCfg)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	return srv.Run(ctx, newRouter(sessions, log))
}
