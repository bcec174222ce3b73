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

package smime

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"

	"github.com/lukasdietrich/mailgate/internal/certs"
	"github.com/lukasdietrich/mailgate/internal/log"
	"github.com/lukasdietrich/mailgate/internal/mails"
)

// Resolver looks up certificates by address.
type Resolver interface {
	Resolve(context.Context, mails.Address) (*certs.Entry, error)
}

// Wrapper builds the outbound message of a branch, enveloped for every recipient with a
// certificate.
type Wrapper struct {
	engine   Engine
	resolver Resolver
	marker   mails.Marker
	logger   *log.Logger
}

// NewWrapper creates a new Wrapper.
func NewWrapper(engine Engine, resolver Resolver, marker mails.Marker, logger *log.Logger) *Wrapper {
	return &Wrapper{
		engine:   engine,
		resolver: resolver,
		marker:   marker,
		logger:   logger,
	}
}

// Wrap serializes the tree and envelopes it for all recipients with a certificate. Without any
// certificate the serialized tree is passed through unchanged. The outbound is always addressed
// to all recipients.
func (w *Wrapper) Wrap(ctx context.Context, branch string, tree *mails.Node, sender string, recipients []string) (*mails.Outbound, error) {
	data, err := tree.Bytes()
	if err != nil {
		return nil, fmt.Errorf("could not serialize message: %w", err)
	}

	outbound := mails.Outbound{
		Branch: branch,
		From:   sender,
		To:     recipients,
		Data:   data,
	}

	certificates, to, err := w.resolveAll(ctx, recipients)
	if err != nil {
		return nil, err
	}

	if len(certificates) == 0 {
		w.logger.InfoContext(ctx).
			Strs("recipients", recipients).
			Msg("no valid s/mime recipient")

		return &outbound, nil
	}

	envelope, err := w.engine.Envelope(ctx, data, certificates)
	if err != nil {
		return nil, fmt.Errorf("could not envelope message: %w", err)
	}

	enveloped, err := w.build(tree.Header, to, envelope)
	if err != nil {
		return nil, err
	}

	outbound.Enveloped = true
	outbound.Data = enveloped

	return &outbound, nil
}

func (w *Wrapper) resolveAll(ctx context.Context, recipients []string) ([]string, []*mail.Address, error) {
	var (
		certificates []string
		to           []*mail.Address
	)

	for _, recipient := range recipients {
		name, addr, err := mails.ParseNormalized(recipient)
		if err != nil {
			w.logger.DebugContext(ctx).
				Str("recipient", recipient).
				Err(err).
				Msg("skipping invalid recipient")

			continue
		}

		entry, err := w.resolver.Resolve(ctx, addr)
		if err != nil {
			return nil, nil, err
		}

		if entry == nil {
			continue
		}

		w.logger.InfoContext(ctx).
			Str("recipient", recipient).
			Str("certificate", entry.Path).
			Str("address", entry.Address.String()).
			Msg("found certificate")

		certificates = append(certificates, entry.Path)
		to = append(to, &mail.Address{Name: name, Address: entry.Address.String()})
	}

	return certificates, to, nil
}

// build creates the enveloped message. Only From and Subject are carried over from the original
// header, byte for byte.
func (w *Wrapper) build(original message.Header, to []*mail.Address, envelope []byte) ([]byte, error) {
	var b mails.HeaderBuilder

	if from, _ := original.Raw("From"); from != nil {
		b.AddRaw(from)
	}

	if err := b.Add("To", formatAddressList(to)); err != nil {
		return nil, err
	}

	if subject, _ := original.Raw("Subject"); subject != nil {
		b.AddRaw(subject)
	}

	if err := w.marker.AddTo(&b, mails.MarkEncrypted); err != nil {
		return nil, err
	}

	var entity message.Header
	entity.SetContentType("application/x-pkcs7-mime", map[string]string{
		"smime-type": "enveloped-data",
		"name":       "smime.p7m",
	})
	entity.SetContentDisposition("attachment", map[string]string{
		"filename": "smime.p7m",
	})

	for _, field := range [][2]string{
		{"MIME-Version", "1.0"},
		{"Content-Type", entity.Get("Content-Type")},
		{"Content-Disposition", entity.Get("Content-Disposition")},
		{"Content-Transfer-Encoding", "base64"},
	} {
		if err := b.Add(field[0], field[1]); err != nil {
			return nil, err
		}
	}

	header := b.Header()

	var buffer bytes.Buffer

	body, err := message.CreateWriter(&buffer, header)
	if err != nil {
		return nil, err
	}

	if _, err := body.Write(envelope); err != nil {
		return nil, err
	}

	if err := body.Close(); err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

// formatAddressList writes addresses without a display name bare, the others as
// `"name" <address>`.
func formatAddressList(addresses []*mail.Address) string {
	formatted := make([]string, len(addresses))

	for i, address := range addresses {
		if address.Name == "" {
			formatted[i] = address.Address
		} else {
			formatted[i] = address.String()
		}
	}

	return strings.Join(formatted, ", ")
}
