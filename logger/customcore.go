package logger

import (
	"github.com/deploymenttheory/go-api-session-client/headers/redact"
	"go.uber.org/zap/zapcore"
)

// redactingCore replaces the value of string fields whose key names a credential.
type redactingCore struct {
	zapcore.Core
}

func (c *redactingCore) With(fields []zapcore.Field) zapcore.Core {
	return &redactingCore{c.Core.With(redactFields(fields))}
}

func (c *redactingCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	return c.Core.Write(entry, redactFields(fields))
}

// Check must register this core, not the wrapped one, or Write is bypassed.
func (c *redactingCore) Check(entry zapcore.Entry, checkedEntry *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checkedEntry.AddCore(entry, c)
	}
	return checkedEntry
}

func redactFields(fields []zapcore.Field) []zapcore.Field {
	out := make([]zapcore.Field, len(fields))
	for i, field := range fields {
		if field.Type == zapcore.StringType && redact.IsSensitiveKey(field.Key) {
			field.String = redact.RedactedValue
		}
		out[i] = field
	}
	return out
}
