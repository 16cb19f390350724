package auth

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultPIIFields are the log fields considered personally identifiable
// and scrubbed by default.
var DefaultPIIFields = []string{"name", "email", "phone", "ssn", "password"}

const piiRedaction = "***"

// RedactingLogger wraps another Logger and scrubs `field=value` pairs for
// a configured set of fields before forwarding the message. Values are
// matched up to the next `;` separator.
type RedactingLogger struct {
	inner     Logger
	pattern   *regexp.Regexp
	redaction string
}

// NewRedactingLogger builds a redacting decorator around inner. With no
// fields given it scrubs DefaultPIIFields.
func NewRedactingLogger(inner Logger, fields ...string) *RedactingLogger {
	if inner == nil {
		inner = defLogger{}
	}
	if len(fields) == 0 {
		fields = DefaultPIIFields
	}

	quoted := make([]string, len(fields))
	for i, field := range fields {
		quoted[i] = regexp.QuoteMeta(field)
	}

	return &RedactingLogger{
		inner:     inner,
		pattern:   regexp.MustCompile(`(` + strings.Join(quoted, "|") + `)=[^;]*`),
		redaction: piiRedaction,
	}
}

// Redact returns msg with every configured field value replaced.
func (l *RedactingLogger) Redact(msg string) string {
	return l.pattern.ReplaceAllString(msg, "${1}="+l.redaction)
}

func (l *RedactingLogger) Debug(format string, args ...any) {
	l.inner.Debug("%s", l.Redact(fmt.Sprintf(format, args...)))
}

func (l *RedactingLogger) Info(format string, args ...any) {
	l.inner.Info("%s", l.Redact(fmt.Sprintf(format, args...)))
}

func (l *RedactingLogger) Warn(format string, args ...any) {
	l.inner.Warn("%s", l.Redact(fmt.Sprintf(format, args...)))
}

func (l *RedactingLogger) Error(format string, args ...any) {
	l.inner.Error("%s", l.Redact(fmt.Sprintf(format, args...)))
}

var _ Logger = (*RedactingLogger)(nil)
