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

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/lukasdietrich/mailgate/internal/mails"
)

func init() {
	viper.SetDefault("gate.keymap_only", false)
}

// Options configure the recipient classification.
type Options struct {
	// Keymap maps recipient addresses to comma separated key identifiers.
	Keymap map[string]string
	// KeymapOnly disables the lookup of recipients in the key store, so that only recipients of
	// the keymap are encrypted with OpenPGP.
	KeymapOnly bool
}

// OptionsFromViper creates Options using the configuration from viper.
//
// `keymap` is a table of address to key identifiers.
// `gate.keymap_only` restricts OpenPGP to keymap entries.
func OptionsFromViper() Options {
	return Options{
		Keymap:     viper.GetStringMapString("keymap"),
		KeymapOnly: viper.GetBool("gate.keymap_only"),
	}
}

// parseKeymap validates the keymap and splits its values into single identifiers.
func parseKeymap(raw map[string]string) (map[string][]string, error) {
	keymap := make(map[string][]string, len(raw))

	for key, value := range raw {
		addr, err := mails.Parse(mails.Lower(strings.TrimSpace(key)))
		if err != nil {
			return nil, fmt.Errorf("invalid keymap address %q: %w", key, err)
		}

		targets := splitTargets(value)
		if len(targets) == 0 {
			return nil, fmt.Errorf("keymap entry %q has no key identifiers", key)
		}

		keymap[addr.String()] = targets
	}

	return keymap, nil
}

func splitTargets(value string) []string {
	var targets []string

	for _, target := range strings.Split(value, ",") {
		if target = strings.TrimSpace(target); target != "" {
			targets = append(targets, target)
		}
	}

	return targets
}

func normalizeIdentifier(id string) string {
	return mails.Lower(strings.TrimSpace(id))
}
