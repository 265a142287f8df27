// Package database holds the pieces shared by the backend connectors under it.
package database

import (
	"fmt"

	"github.com/redbco/redb-connect/pkg/dbcapabilities"
	"github.com/redbco/redb-connect/pkg/logger"
)

// LogContext provides structured context for connector logging
type LogContext struct {
	DatabaseType dbcapabilities.DatabaseID
	SessionID    string
	Host         string
	Port         int
	Operation    string
}

// DatabaseLogger provides unified logging for all connector operations
type DatabaseLogger struct {
	logger *logger.Logger
}

// NewDatabaseLogger creates a connector logger named after the connector type
func NewDatabaseLogger(base *logger.Logger, dbType dbcapabilities.DatabaseID) *DatabaseLogger {
	if base == nil {
		base = logger.Nop()
	}
	return &DatabaseLogger{logger: base.Named(string(dbType))}
}

// Logger returns the underlying logger
func (dl *DatabaseLogger) Logger() *logger.Logger {
	return dl.logger
}

// LogConnectionAttempt logs when a session open is starting
func (dl *DatabaseLogger) LogConnectionAttempt(ctx LogContext) {
	dl.logger.Debug("%s", formatConnectionMessage("Attempting connection", ctx))
}

// LogConnectionSuccess logs successful session opens
func (dl *DatabaseLogger) LogConnectionSuccess(ctx LogContext) {
	dl.logger.Info("%s", formatConnectionMessage("Connection established", ctx))
}

// LogConnectionFailure logs session open failures
func (dl *DatabaseLogger) LogConnectionFailure(ctx LogContext, err error) {
	dl.logger.Warn("%s: %v", formatConnectionMessage("Connection failed", ctx), err)
}

// LogValidationFailure logs a configuration that could not be validated
func (dl *DatabaseLogger) LogValidationFailure(dbType dbcapabilities.DatabaseID, message string) {
	dl.logger.Warn("[%s] Validation failed: %s", dbType, message)
}

// LogAdvisory logs the advisory notes of a valid configuration
func (dl *DatabaseLogger) LogAdvisory(dbType dbcapabilities.DatabaseID, message string) {
	if message == "" {
		return
	}
	dl.logger.Debug("[%s] %s", dbType, message)
}

// LogOperationFailure logs operation failures
func (dl *DatabaseLogger) LogOperationFailure(ctx LogContext, err error) {
	dl.logger.Warn("%s: %v", formatOperationMessage("Operation failed", ctx), err)
}

// LogOperationSuccess logs completed operations
func (dl *DatabaseLogger) LogOperationSuccess(ctx LogContext) {
	dl.logger.Debug("%s", formatOperationMessage("Operation completed", ctx))
}

func formatConnectionMessage(action string, ctx LogContext) string {
	base := fmt.Sprintf("[%s] %s", ctx.DatabaseType, action)

	if ctx.SessionID != "" {
		base = fmt.Sprintf("%s session_id=%s", base, ctx.SessionID)
	}
	if ctx.Host != "" {
		if ctx.Port > 0 {
			base = fmt.Sprintf("%s host=%s:%d", base, ctx.Host, ctx.Port)
		} else {
			base = fmt.Sprintf("%s host=%s", base, ctx.Host)
		}
	}

	return base
}

func formatOperationMessage(action string, ctx LogContext) string {
	base := fmt.Sprintf("[%s] %s", ctx.DatabaseType, action)

	if ctx.Operation != "" {
		base = fmt.Sprintf("%s operation=%s", base, ctx.Operation)
	}
	if ctx.SessionID != "" {
		base = fmt.Sprintf("%s session_id=%s", base, ctx.SessionID)
	}

	return base
}
