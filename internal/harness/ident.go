package harness

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var separatorMap = strings.NewReplacer(".", "_", "-", "_")

// The identifier is embedded as Test_<ident>, so a leading digit is
// fine; anything outside this set would not survive as a Go identifier.
var identPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// DeriveIdent maps a fixture filename to its test identifier: every dot
// and hyphen becomes an underscore, all other characters are unchanged.
// The result is deterministic for a given input.
func DeriveIdent(fixture string) (string, error) {
	id := separatorMap.Replace(fixture)
	if !identPattern.MatchString(id) {
		return "", fmt.Errorf("fixture %q maps to invalid identifier %q", fixture, id)
	}
	return id, nil
}

// BuildCases derives one GeneratedCase per fixture name, in lexicographic
// order so that regeneration over an unchanged directory is byte-stable.
// Two distinct fixtures mapping to the same identifier (e.g. "a.b" and
// "a-b") is a fatal generation error, never a silent merge.
func BuildCases(fixtures []string) ([]GeneratedCase, error) {
	sorted := append([]string(nil), fixtures...)
	sort.Strings(sorted)

	seen := make(map[string]string, len(sorted))
	cases := make([]GeneratedCase, 0, len(sorted))
	for _, name := range sorted {
		id, err := DeriveIdent(name)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[id]; ok {
			return nil, fmt.Errorf("identifier collision: fixtures %q and %q both map to %q", prev, name, id)
		}
		seen[id] = name
		cases = append(cases, GeneratedCase{Ident: id, Fixture: name})
	}
	return cases, nil
}
