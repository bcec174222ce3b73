// Copyright (C) 2021  Lukas Dietrich <lukas@lukasdietrich.com>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package addressbook

// Set is a set of normalized identifiers.
type Set struct {
	entries map[string]bool
}

// NewSet creates a set of strings, each passed through the mapping first.
func NewSet(s []string, mapping func(string) (string, error)) (*Set, error) {
	entries := make(map[string]bool)

	for _, e := range s {
		n, err := mapping(e)
		if err != nil {
			return nil, err
		}

		entries[n] = true
	}

	return &Set{entries}, nil
}

// Contains checks if e is part of the set. A nil set contains nothing.
func (s *Set) Contains(e string) bool {
	return s != nil && s.entries[e]
}

// Len returns the number of entries.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}

	return len(s.entries)
}

// Identifiers normalizes key identifiers for set lookups.
func Identifiers(ids []string) *Set {
	set, _ := NewSet(ids, func(id string) (string, error) {
		return normalizeIdentifier(id), nil
	})

	return set
}
