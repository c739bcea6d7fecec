package log

import "time"

// Logger is the leveled, structured logger every walletshell component
// writes through. The zerolog adapter backs it in the binary; tests use
// NoopLogger.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field is one key/value pair attached to a log line.
type Field struct {
	Key   string
	Value any
}

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Strings creates a string slice field.
func Strings(key string, value []string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an int field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a bool field.
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field with key "error".
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}

// Component tags log lines with the component that emitted them.
func Component(name string) Field {
	return Field{Key: "component", Value: name}
}

// With returns a Logger that adds fields to every line logged through it.
func With(l Logger, fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	if w, ok := l.(*withFields); ok {
		return &withFields{next: w.next, fields: append(append([]Field(nil), w.fields...), fields...)}
	}
	return &withFields{next: l, fields: fields}
}

type withFields struct {
	next   Logger
	fields []Field
}

func (w *withFields) merge(fields []Field) []Field {
	return append(append(make([]Field, 0, len(w.fields)+len(fields)), w.fields...), fields...)
}

func (w *withFields) Debug(msg string, fields ...Field) { w.next.Debug(msg, w.merge(fields)...) }
func (w *withFields) Info(msg string, fields ...Field)  { w.next.Info(msg, w.merge(fields)...) }
func (w *withFields) Warn(msg string, fields ...Field)  { w.next.Warn(msg, w.merge(fields)...) }
func (w *withFields) Error(msg string, fields ...Field) { w.next.Error(msg, w.merge(fields)...) }
