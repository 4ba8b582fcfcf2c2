// Package logger builds *slog.Logger instances with functional options,
// per-environment defaults and attributes injected from context.Context.
//
// New picks a text or JSON handler, applies static attributes and wraps the
// handler with LogHandlerDecorator, which runs every registered
// ContextExtractor when a record is handled. Attribute helpers in attr.go keep
// key names consistent across packages.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment("production", "sessiond"),
//	    logger.WithContextValue("request_id", middleware.RequestIDKey),
//	)
//	logger.SetAsDefault(log)
//
//	log.WarnContext(ctx, "discarding undecodable client session",
//	    logger.Component("clientsession"),
//	    logger.Error(err),
//	)
//
// # Configuration
//
// Config reads APP_ENV, APP_NAME and LOG_LEVEL; pass it to NewFromConfig.
//
// Helpers such as Error and SessionID return an empty slog.Attr for empty
// input, which handlers skip, so callers need no nil checks.
package logger
