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
	"fmt"
	"strings"

	"github.com/emersion/go-message"

	"github.com/lukasdietrich/mailgate/internal/log"
	"github.com/lukasdietrich/mailgate/internal/mails"
)

var (
	armorBegin = []byte("-----BEGIN PGP MESSAGE-----")
	armorEnd   = []byte("-----END PGP MESSAGE-----")
)

// Encryptor encrypts every leaf of a message tree in place.
type Encryptor struct {
	engine Engine
	logger *log.Logger
}

// NewEncryptor creates a new Encryptor.
func NewEncryptor(engine Engine, logger *log.Logger) *Encryptor {
	return &Encryptor{
		engine: engine,
		logger: logger,
	}
}

// EncryptTree replaces the body of every leaf with its ascii armored ciphertext. The structure of
// the tree is not changed. Leafs that already contain an armored message are left untouched.
func (e *Encryptor) EncryptTree(ctx context.Context, tree *mails.Node, targets []string) error {
	var index int

	return tree.Walk(func(leaf *mails.Node) error {
		index++

		if err := e.encryptLeaf(ctx, leaf, targets); err != nil {
			return fmt.Errorf("could not encrypt part %d: %w", index, err)
		}

		return nil
	})
}

func (e *Encryptor) encryptLeaf(ctx context.Context, leaf *mails.Node, targets []string) error {
	body, err := leaf.Decoded()
	if err != nil {
		return err
	}

	if bytes.Contains(body, armorBegin) && bytes.Contains(body, armorEnd) {
		e.logger.DebugContext(ctx).Msg("part is already encrypted")
		return nil
	}

	charset, err := contentCharset(leaf.Header)
	if err != nil {
		return err
	}

	ciphertext, err := e.engine.Encrypt(ctx, body, charset, targets)
	if err != nil {
		return err
	}

	if err := renameAttachment(&leaf.Header); err != nil {
		return err
	}

	if leaf.Header.Has("Content-Transfer-Encoding") {
		leaf.Header.Set("Content-Transfer-Encoding", "7bit")
	}

	leaf.Body = ciphertext
	return nil
}

func contentCharset(header message.Header) (string, error) {
	if header.Get("Content-Type") == "" {
		return "", nil
	}

	_, params, err := header.ContentType()
	if err != nil {
		return "", fmt.Errorf("could not parse content type: %w", err)
	}

	return params["charset"], nil
}

// renameAttachment appends ".pgp" to the filename of attachments. The new filename is written to
// the Content-Disposition and, if the original carried a name parameter, to the Content-Type.
func renameAttachment(header *message.Header) error {
	if header.Get("Content-Disposition") == "" {
		return nil
	}

	disposition, dispositionParams, err := header.ContentDisposition()
	if err != nil {
		return fmt.Errorf("could not parse content disposition: %w", err)
	}

	if !strings.EqualFold(disposition, "attachment") {
		return nil
	}

	var (
		mediaType  string
		typeParams map[string]string
	)

	if header.Get("Content-Type") != "" {
		if mediaType, typeParams, err = header.ContentType(); err != nil {
			return fmt.Errorf("could not parse content type: %w", err)
		}
	}

	filename := dispositionParams["filename"]
	if filename == "" {
		filename = typeParams["name"]
	}

	if filename == "" {
		return nil
	}

	filename += ".pgp"

	dispositionParams["filename"] = filename
	header.SetContentDisposition(disposition, dispositionParams)

	if _, ok := typeParams["name"]; ok {
		typeParams["name"] = filename
		header.SetContentType(mediaType, typeParams)
	}

	return nil
}
