package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskmap/pkg/utils/logging"
)

// ErrUnknownValue is returned by strict validation of enumeration values
var ErrUnknownValue = goerr.New("unknown enumeration value")

// normalizeKey folds case and drops separators so that "In Progress",
// "in_progress" and "InProgress" resolve to the same key.
func normalizeKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch r {
		case ' ', '_', '-', '\t':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func lookupKeys[T ~string](values []T, aliases map[string]T) map[string]T {
	m := make(map[string]T, len(values)+len(aliases))
	for _, v := range values {
		m[normalizeKey(string(v))] = v
	}
	for k, v := range aliases {
		m[normalizeKey(k)] = v
	}
	return m
}

// decode is total: any input maps to a known value. Unrecognized non-empty
// input is logged and mapped to fallback; empty input maps to fallback silently.
func decode[T ~string](field, raw string, keys map[string]T, fallback T) T {
	if v, ok := keys[normalizeKey(raw)]; ok {
		return v
	}
	if strings.TrimSpace(raw) != "" {
		logging.Default().Warn("unrecognized enumeration value, using fallback",
			"field", field,
			"value", raw,
			"fallback", string(fallback),
		)
	}
	return fallback
}

// isKnown reports whether raw resolves to a known value without logging
func isKnown[T ~string](raw string, keys map[string]T) bool {
	_, ok := keys[normalizeKey(raw)]
	return ok
}

func validateKnown[T ~string](field string, v T, keys map[string]T) error {
	if !isKnown(string(v), keys) {
		return goerr.Wrap(ErrUnknownValue, "invalid "+field, goerr.V("field", field), goerr.V("value", string(v)))
	}
	return nil
}
