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
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/spf13/afero"

	"github.com/lukasdietrich/mailgate/internal/log"
)

type keyringEngine struct {
	entities openpgp.EntityList
	logger   *log.Logger
}

// newKeyringEngine reads an armored or binary public keyring. An empty filename yields an engine
// without any keys.
func newKeyringEngine(fs afero.Fs, filename string, logger *log.Logger) (*keyringEngine, error) {
	engine := keyringEngine{logger: logger}

	if filename == "" {
		return &engine, nil
	}

	data, err := afero.ReadFile(fs, filename)
	if err != nil {
		return nil, fmt.Errorf("could not read keyring %q: %w", filename, err)
	}

	entities, err := readKeyring(data)
	if err != nil {
		return nil, fmt.Errorf("could not parse keyring %q: %w", filename, err)
	}

	engine.entities = entities
	return &engine, nil
}

func readKeyring(data []byte) (openpgp.EntityList, error) {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("-----BEGIN")) {
		return openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	}

	return openpgp.ReadKeyRing(bytes.NewReader(data))
}

func (k *keyringEngine) KnownIdentifiers(ctx context.Context) ([]string, error) {
	var ids []string

	for _, entity := range k.entities {
		ids = append(ids, entityIdentifiers(entity)...)
	}

	k.logger.DebugContext(ctx).
		Int("keys", len(k.entities)).
		Int("identifiers", len(ids)).
		Msg("listed public keys")

	return ids, nil
}

func entityIdentifiers(entity *openpgp.Entity) []string {
	var ids []string

	for _, identity := range entity.Identities {
		if identity.UserId != nil && identity.UserId.Email != "" {
			ids = append(ids, strings.ToLower(identity.UserId.Email))
		}
	}

	key := entity.PrimaryKey
	ids = append(ids,
		strings.ToLower(key.KeyIdString()),
		strings.ToLower(key.KeyIdShortString()),
		hex.EncodeToString(key.Fingerprint))

	for _, subkey := range entity.Subkeys {
		ids = append(ids, strings.ToLower(subkey.PublicKey.KeyIdString()))
	}

	return ids
}

func (k *keyringEngine) findEntity(target string) *openpgp.Entity {
	for _, entity := range k.entities {
		for _, id := range entityIdentifiers(entity) {
			if id == target {
				return entity
			}
		}
	}

	return nil
}

func (k *keyringEngine) Encrypt(ctx context.Context, data []byte, charset string, targets []string) ([]byte, error) {
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}

	var recipients []*openpgp.Entity
	seen := make(map[uint64]bool)

	for _, target := range targets {
		entity := k.findEntity(normalizeTarget(target))
		if entity == nil {
			return nil, fmt.Errorf("%w %q", ErrUnknownTarget, target)
		}

		if !seen[entity.PrimaryKey.KeyId] {
			seen[entity.PrimaryKey.KeyId] = true
			recipients = append(recipients, entity)
		}
	}

	var headers map[string]string
	if charset != "" {
		headers = map[string]string{"Charset": charset}
	}

	var buffer bytes.Buffer

	armored, err := armor.Encode(&buffer, "PGP MESSAGE", headers)
	if err != nil {
		return nil, err
	}

	plaintext, err := openpgp.Encrypt(armored, recipients, nil, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("could not encrypt: %w", err)
	}

	if _, err := plaintext.Write(data); err != nil {
		return nil, err
	}

	if err := plaintext.Close(); err != nil {
		return nil, err
	}

	if err := armored.Close(); err != nil {
		return nil, err
	}

	k.logger.DebugContext(ctx).
		Int("recipients", len(recipients)).
		Int("size", buffer.Len()).
		Msg("payload encrypted")

	return buffer.Bytes(), nil
}
