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

package pgp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/lukasdietrich/mailgate/internal/log"
)

func init() {
	viper.SetDefault("pgp.backend", BackendKeyring)
	viper.SetDefault("pgp.keyring", "")
	viper.SetDefault("pgp.keyhome", "")
	viper.SetDefault("pgp.gpg", "gpg")
}

const (
	// BackendKeyring encrypts in-process using a public keyring file.
	BackendKeyring = "keyring"
	// BackendGPG runs the gpg binary.
	BackendGPG = "gpg"
)

var (
	// ErrUnknownTarget is returned if a key identifier does not match any public key.
	ErrUnknownTarget = errors.New("pgp: no public key for target")
	// ErrUnknownBackend is returned for unsupported values of `pgp.backend`.
	ErrUnknownBackend = errors.New("pgp: unknown backend")
	// ErrNoTargets is returned when encrypting without any key identifier.
	ErrNoTargets = errors.New("pgp: no targets")
)

// Engine is the OpenPGP capability used by the gate.
type Engine interface {
	// KnownIdentifiers lists the e-mail addresses, key ids and fingerprints of all public keys.
	KnownIdentifiers(ctx context.Context) ([]string, error)
	// Encrypt encrypts data for all targets and returns the ascii armored ciphertext. The charset
	// describes data and is passed on, if the backend supports it.
	Encrypt(ctx context.Context, data []byte, charset string, targets []string) ([]byte, error)
}

// Options configure the OpenPGP engine.
type Options struct {
	Backend string
	Keyring string
	Keyhome string
	GPG     string
}

// OptionsFromViper creates Options using the configuration from viper.
//
// `pgp.backend` is either "keyring" or "gpg".
// `pgp.keyring` is the public keyring file of the keyring backend.
// `pgp.keyhome` is the gpg home directory of the gpg backend.
// `pgp.gpg` is the gpg binary.
func OptionsFromViper() Options {
	return Options{
		Backend: viper.GetString("pgp.backend"),
		Keyring: viper.GetString("pgp.keyring"),
		Keyhome: viper.GetString("pgp.keyhome"),
		GPG:     viper.GetString("pgp.gpg"),
	}
}

// NewEngine creates the engine selected by the options.
func NewEngine(fs afero.Fs, opts Options, logger *log.Logger) (Engine, error) {
	switch strings.ToLower(opts.Backend) {
	case BackendKeyring, "":
		return newKeyringEngine(fs, opts.Keyring, logger)
	case BackendGPG:
		return newGPGEngine(opts.GPG, opts.Keyhome, logger), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
}

// normalizeTarget maps key ids and fingerprints with or without "0x" and addresses to one form.
func normalizeTarget(target string) string {
	target = strings.ToLower(strings.TrimSpace(target))
	return strings.TrimPrefix(target, "0x")
}
