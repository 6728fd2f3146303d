// Package telemetry provides the narrow logging surface package
// submitq depends on, backed by github.com/rs/zerolog. It exists so
// that the core has no forced global logging configuration: the
// embedding application decides whether and how to log by supplying a
// Logger, mirroring the collaborator-agnostic stance of the driver
// package this module is built against.
package telemetry

import "github.com/rs/zerolog"

// Logger is the logging surface the core calls into. Every non-success
// driver.Result is reported through it (spec §7).
type Logger interface {
	Error(msg string, kv ...any)
}

// zlog adapts a zerolog.Logger to Logger.
type zlog struct {
	l zerolog.Logger
}

// New wraps l for use as a submitq Logger.
func New(l zerolog.Logger) Logger {
	return zlog{l: l}
}

func (z zlog) Error(msg string, kv ...any) {
	e := z.l.Error()
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		e = e.Interface(key, kv[i+1])
	}
	e.Msg(msg)
}

type nop struct{}

func (nop) Error(string, ...any) {}

// Nop returns a Logger that discards every call. It is the default
// used when no logger is supplied.
func Nop() Logger { return nop{} }
