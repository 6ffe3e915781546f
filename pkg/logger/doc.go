// Package logger builds configured *slog.Logger instances for dirkit
// components. Components take a logger through their options and fall back
// to slog.Default(), so wiring this package is optional.
//
//	log := logger.New(
//	    logger.WithDevelopment("directory-client"),
//	    logger.WithAttr(slog.String("version", version)),
//	)
package logger
