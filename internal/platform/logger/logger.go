package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls redaction of structured fields. The zero value disables redaction.
type Options struct {
	Redact   bool
	HashSalt string
}

type Logger struct {
	SugaredLogger *zap.SugaredLogger
	opts          Options
}

func New(mode string) (*Logger, error) {
	return NewWithOptions(mode, Options{Redact: true})
}

func NewWithOptions(mode string, opts Options) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "test":
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: zapLogger.Sugar(), opts: opts}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// NewWithCore wraps an arbitrary zap core; tests use it with zaptest/observer.
func NewWithCore(core zapcore.Core, opts Options) *Logger {
	return &Logger{SugaredLogger: zap.New(core).Sugar(), opts: opts}
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Debugw(msg, l.sanitizeKVs(keysAndValues)...)
}
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Infow(msg, l.sanitizeKVs(keysAndValues)...)
}
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Warnw(msg, l.sanitizeKVs(keysAndValues)...)
}
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Errorw(msg, l.sanitizeKVs(keysAndValues)...)
}
func (l *Logger) Fatal(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Fatalw(msg, l.sanitizeKVs(keysAndValues)...)
}
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	newSugared := l.SugaredLogger.With(l.sanitizeKVs(keysAndValues)...)
	return &Logger{SugaredLogger: newSugared, opts: l.opts}
}

func (l *Logger) sanitizeKVs(kv []interface{}) []interface{} {
	if len(kv) == 0 || !l.opts.Redact {
		return kv
	}
	out := make([]interface{}, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key := strings.TrimSpace(strings.ToLower(toString(kv[i])))
		out = append(out, toString(kv[i]), l.sanitizeValue(key, kv[i+1]))
	}
	return out
}

func (l *Logger) sanitizeValue(key string, val interface{}) interface{} {
	if key == "" {
		return val
	}
	if isRedactKey(key) {
		return "[REDACTED]"
	}
	if isHashKey(key) {
		return hashValue(l.opts.HashSalt, val)
	}
	switch v := val.(type) {
	case map[string]interface{}:
		return l.sanitizeMap(v)
	case []interface{}:
		return l.sanitizeSlice(v)
	default:
		if s, ok := val.(string); ok && looksLikeJWT(s) {
			return "[REDACTED]"
		}
		return val
	}
}

func (l *Logger) sanitizeMap(input map[string]interface{}) map[string]interface{} {
	if input == nil {
		return nil
	}
	out := make(map[string]interface{}, len(input))
	for k, v := range input {
		key := strings.TrimSpace(strings.ToLower(k))
		out[k] = l.sanitizeValue(key, v)
	}
	return out
}

func (l *Logger) sanitizeSlice(input []interface{}) []interface{} {
	if input == nil {
		return nil
	}
	out := make([]interface{}, 0, len(input))
	for _, v := range input {
		out = append(out, l.sanitizeValue("", v))
	}
	return out
}

func isRedactKey(key string) bool {
	switch {
	case strings.Contains(key, "token"),
		strings.Contains(key, "authorization"),
		strings.Contains(key, "password"),
		strings.Contains(key, "secret"),
		strings.Contains(key, "cookie"),
		strings.Contains(key, "api_key"),
		strings.Contains(key, "apikey"):
		return true
	default:
		return false
	}
}

func isHashKey(key string) bool {
	return strings.Contains(key, "user_id") || strings.Contains(key, "session_id") || key == "nonce"
}

func hashValue(salt string, val interface{}) string {
	raw := toString(val)
	if raw == "" {
		return ""
	}
	h := sha256.New()
	if salt != "" {
		_, _ = h.Write([]byte(salt))
	}
	_, _ = h.Write([]byte(raw))
	sum := hex.EncodeToString(h.Sum(nil))
	if len(sum) > 12 {
		sum = sum[:12]
	}
	return "hash:" + sum
}

func looksLikeJWT(s string) bool {
	if s == "" {
		return false
	}
	parts := strings.Split(s, ".")
	return len(parts) == 3 && len(parts[0]) > 10 && len(parts[1]) > 10
}

func toString(v interface{}) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
