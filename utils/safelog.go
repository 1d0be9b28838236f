// utils/safelog.go
// Structured logging with masking of identifiers and amounts in production.

package utils

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Log is the global logger. It is a no-op until InitLogger runs.
	Log = zap.NewNop()

	// IsProduction switches masking on.
	IsProduction bool

	uuidRegex = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
)

// InitLogger builds the global logger: JSON in production, console otherwise.
func InitLogger(environment, level string) error {
	IsProduction = environment == "production"

	lvl := zapcore.InfoLevel
	switch strings.ToLower(level) {
	case "debug":
		lvl = zapcore.DebugLevel
	case "warn", "warning":
		lvl = zapcore.WarnLevel
	case "error":
		lvl = zapcore.ErrorLevel
	}

	var cfg zap.Config
	if IsProduction {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.MessageKey = "message"
		cfg.InitialFields = map[string]interface{}{
			"service": "anggaran-api",
		}
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = IsProduction

	logger, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = logger
	return nil
}

// MaskID keeps the first 8 characters of an identifier in production.
func MaskID(id string) string {
	if !IsProduction {
		return id
	}
	if len(id) <= 8 {
		return "***"
	}
	return id[:8] + "..."
}

// MaskAmount hides a monetary amount in production.
func MaskAmount(amount int64) string {
	if IsProduction {
		return "***"
	}
	return strconv.FormatInt(amount, 10)
}

// MaskPath shortens the UUIDs of a request path in production.
func MaskPath(path string) string {
	if !IsProduction {
		return path
	}
	return uuidRegex.ReplaceAllStringFunc(path, MaskID)
}

// LogBudgetAction logs an action on a budget.
func LogBudgetAction(action, budgetID string, fields ...zap.Field) {
	Log.Info(action, append([]zap.Field{
		zap.String("component", "budget"),
		zap.String("budget_id", MaskID(budgetID)),
	}, fields...)...)
}

// LogImprestAction logs an action on an imprest fund.
func LogImprestAction(action, fundID, status string, total int64) {
	Log.Info(action,
		zap.String("component", "imprest"),
		zap.String("imprest_fund_id", MaskID(fundID)),
		zap.String("status", status),
		zap.String("total_amount", MaskAmount(total)),
	)
}

// LogWebSocket logs a websocket lifecycle event.
func LogWebSocket(action, channel, key string) {
	Log.Debug(action,
		zap.String("component", "ws"),
		zap.String("channel", channel),
		zap.String("key", MaskID(key)),
	)
}
