// Package naming allocates collision-free, length-bounded output table names.
package naming

import (
	"strconv"

	"phenosplit/domain/core"
	"phenosplit/internal/errors"
)

const (
	// MaxNameLength is the worksheet name limit, in characters
	MaxNameLength = 31

	firstSuffix = 2
	lastSuffix  = 998
)

// Registry remembers every allocated name for the duration of a run
type Registry struct {
	used map[string]struct{}
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{used: make(map[string]struct{})}
}

// Allocate truncates base to MaxNameLength and reserves it, or the first free
// variant base_2, base_3, ... whose base part is shortened to keep within the
// limit. Returns a NAME_EXHAUSTED error after suffix 998.
func (r *Registry) Allocate(base string) (string, error) {
	name := truncate(base, MaxNameLength)
	if r.reserve(name) {
		return name, nil
	}
	for i := firstSuffix; i <= lastSuffix; i++ {
		suffix := "_" + strconv.Itoa(i)
		candidate := truncate(name, MaxNameLength-len(suffix)) + suffix
		if r.reserve(candidate) {
			return candidate, nil
		}
	}
	return "", errors.Codef(errors.CodeNameExhausted, core.ErrNameExhausted,
		"no free name for %q after %d attempts", name, lastSuffix-firstSuffix+1)
}

func (r *Registry) reserve(name string) bool {
	if _, ok := r.used[name]; ok {
		return false
	}
	r.used[name] = struct{}{}
	return true
}

// truncate cuts s to at most n characters
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
