// Package logger provides slog-based logger construction and typed attribute
// helpers used across the chatkit packages.
//
// Construction uses functional options:
//
//	log := logger.New(logger.WithDevelopment("coomb-api"))
//	log.Info("session resolved", logger.SessionID(id), logger.Component("session"))
//
// Attribute helpers follow the empty Attr pattern: nil or empty inputs yield
// an empty attribute that slog drops silently, so call sites never need nil
// checks:
//
//	log.Error("transfer failed", logger.Error(err), logger.ChatID(chatID))
package logger
