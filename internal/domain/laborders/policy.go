package laborders

import (
	"fmt"
	"strings"
)

// CompletionPolicy decide si una orden queda COMPLETED al registrar un resultado.
type CompletionPolicy string

const (
	// FirstResult: cualquier resultado completa la orden.
	FirstResult CompletionPolicy = "first_result"

	// AllTests: completa cuando cada test esperado tiene al menos un resultado.
	// Una orden sin tests se comporta como FirstResult.
	AllTests CompletionPolicy = "all_tests"
)

func ParsePolicy(s string) (CompletionPolicy, error) {
	switch p := CompletionPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return FirstResult, nil
	case FirstResult, AllTests:
		return p, nil
	default:
		return "", fmt.Errorf("unknown lab completion policy %q", s)
	}
}

// Completes evalúa la política. results ya incluye el resultado nuevo.
func (p CompletionPolicy) Completes(o LabOrder, results []Result) bool {
	if len(results) == 0 {
		return false
	}
	if p != AllTests || len(o.Tests) == 0 {
		return true
	}

	seen := make(map[string]struct{}, len(results))
	for _, r := range results {
		seen[normalizeTest(r.Parameter)] = struct{}{}
	}
	for _, t := range o.Tests {
		if _, ok := seen[normalizeTest(t)]; !ok {
			return false
		}
	}
	return true
}
