// Package factory is the name-keyed space/index registry and the
// key=value parameter manager of §6's "Parameter surface", grounded on
// original_source/include/factory/init_methods.h and init_spaces.h —
// replaced here, per §9's "Global state" note, with an explicit struct
// rather than a process-wide registry, the same way the teacher's
// pkg/config.Default()/LoadFromEnv() pairing avoids package-level
// mutable state.
package factory

import (
	"strconv"
	"strings"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/simerrors"
)

// Params is a parsed set of "key=value" strings. Every method-specific
// config builder in this package consumes from a Params and rejects any
// key it doesn't recognize, so an unknown key always surfaces as a
// ConfigError rather than being silently ignored.
type Params struct {
	values map[string]string
	seen   map[string]bool
}

// ParseParams splits each "key=value" string in kv. A malformed entry
// (no '=', or an empty key) is a ConfigError.
func ParseParams(kv []string) (Params, error) {
	p := Params{values: make(map[string]string, len(kv)), seen: make(map[string]bool, len(kv))}
	for _, entry := range kv {
		i := strings.IndexByte(entry, '=')
		if i <= 0 {
			return Params{}, &simerrors.ConfigError{Key: entry, Reason: "expected key=value"}
		}
		key, val := entry[:i], entry[i+1:]
		p.values[key] = val
	}
	return p, nil
}

// consume marks key as recognized and returns its raw value, if present.
func (p Params) consume(key string) (string, bool) {
	if p.seen != nil {
		p.seen[key] = true
	}
	v, ok := p.values[key]
	return v, ok
}

// intValue reads an optional integer parameter, falling back to def.
func (p Params) intValue(key string, def int) (int, error) {
	raw, ok := p.consume(key)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &simerrors.ConfigError{Key: key, Reason: "not an integer: " + raw}
	}
	return n, nil
}

// floatValue reads an optional float parameter, falling back to def.
func (p Params) floatValue(key string, def float64) (float64, error) {
	raw, ok := p.consume(key)
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &simerrors.ConfigError{Key: key, Reason: "not a float: " + raw}
	}
	return f, nil
}

// boolValue reads an optional 0/1 parameter, falling back to def.
func (p Params) boolValue(key string, def bool) (bool, error) {
	raw, ok := p.consume(key)
	if !ok {
		return def, nil
	}
	switch raw {
	case "0":
		return false, nil
	case "1":
		return true, nil
	default:
		return false, &simerrors.ConfigError{Key: key, Reason: "expected 0 or 1, got " + raw}
	}
}

// stringValue reads an optional string parameter, falling back to def.
func (p Params) stringValue(key, def string) string {
	if raw, ok := p.consume(key); ok {
		return raw
	}
	return def
}

// checkUnknown fails if any key in the original kv list was never
// consumed by the caller's field-by-field reads above.
func (p Params) checkUnknown() error {
	for key := range p.values {
		if !p.seen[key] {
			return &simerrors.ConfigError{Key: key, Reason: "unrecognized parameter"}
		}
	}
	return nil
}
