package scene

import (
	"fmt"
	"sort"
	"strings"
)

// Options is the declared option bag for one component. Everything in it
// participates in the recreate identity; structural fields (name, callbacks,
// children, deps) never do.
type Options map[string]any

// Get returns the raw option value.
func (o Options) Get(key string) (any, bool) {
	v, ok := o[key]
	return v, ok
}

// String returns the string option for key, or fallback when absent or not a
// string.
func (o Options) String(key, fallback string) string {
	if v, ok := o[key].(string); ok {
		return v
	}
	return fallback
}

// Int returns the int option for key, accepting the numeric types YAML and
// literal declarations produce.
func (o Options) Int(key string, fallback int) int {
	switch v := o[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return fallback
}

// Float returns the float option for key.
func (o Options) Float(key string, fallback float64) float64 {
	switch v := o[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return fallback
}

// Bool returns the bool option for key.
func (o Options) Bool(key string, fallback bool) bool {
	if v, ok := o[key].(bool); ok {
		return v
	}
	return fallback
}

// Identity renders the options into the recreate-identity string: each
// key=value fragment in sorted key order. Two option bags with equal
// identities are treated as the same creation generation; any difference
// discards the old resource and starts a fresh creation.
func (o Options) Identity() string {
	if len(o) == 0 {
		return ""
	}

	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		fmt.Fprintf(&b, "%v", o[k])
		b.WriteByte(';')
	}
	return b.String()
}
