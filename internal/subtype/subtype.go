// Package subtype maps exact sample names to tumour subtype labels.
package subtype

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"phenosplit/internal/errors"
)

// Map is an immutable sample-name to subtype lookup
type Map struct {
	m map[string]string
}

// New copies pairs into a Map
func New(pairs map[string]string) Map {
	m := make(map[string]string, len(pairs))
	for k, v := range pairs {
		m[k] = v
	}
	return Map{m: m}
}

// Default is the sample assignment of the consolidated mIF dataset
func Default() Map {
	return New(map[string]string{
		"8F_morph": "morpheaform",
		"10A_meta": "meta",
		"2D_inf":   "infiltrative",
		"5F_micro": "micronodular",
		"8D_mix":   "mixed (NI)",
		"9A_nod":   "nodular",
		"4B_super": "superficial",
	})
}

// Lookup returns the subtype for an exact sample name
func (s Map) Lookup(sample string) (string, bool) {
	v, ok := s.m[sample]
	return v, ok
}

// Len returns the number of samples
func (s Map) Len() int {
	return len(s.m)
}

// Parse decodes a YAML mapping of sample name to subtype
func Parse(data []byte) (Map, error) {
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Map{}, errors.Codef(errors.CodeInvalidInput, err, "subtype map is not a string mapping")
	}
	for k, v := range raw {
		if strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
			return Map{}, errors.InvalidInput(fmt.Sprintf("subtype map entry %q: %q has an empty side", k, v))
		}
	}
	return New(raw), nil
}

// Load reads a YAML subtype map file
func Load(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Map{}, errors.Wrapf(err, "failed to read subtype map %s", path)
	}
	return Parse(data)
}
