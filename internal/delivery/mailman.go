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

package delivery

import (
	"context"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"

	"github.com/lukasdietrich/mailgate/internal/addressbook"
	"github.com/lukasdietrich/mailgate/internal/log"
	"github.com/lukasdietrich/mailgate/internal/mails"
	"github.com/lukasdietrich/mailgate/internal/pgp"
	"github.com/lukasdietrich/mailgate/internal/smime"
)

const (
	// BranchPlaintext delivers to recipients without OpenPGP keys, enveloped with S/MIME where
	// possible.
	BranchPlaintext = "plaintext"
	// BranchOpenPGP delivers the encrypted tree to recipients with OpenPGP keys.
	BranchOpenPGP = "openpgp"
)

// Mailman classifies the recipients of a message, encrypts it for each branch and hands the
// results to the transport.
type Mailman struct {
	book      *addressbook.Book
	keys      pgp.Engine
	encryptor *pgp.Encryptor
	wrapper   *smime.Wrapper
	transport Transport
	marker    mails.Marker
	logger    *log.Logger
}

// NewMailman creates a new mailman for delivery.
func NewMailman(
	book *addressbook.Book,
	keys pgp.Engine,
	encryptor *pgp.Encryptor,
	wrapper *smime.Wrapper,
	transport Transport,
	marker mails.Marker,
	logger *log.Logger,
) (*Mailman, error) {
	if err := marker.Validate(); err != nil {
		return nil, err
	}

	return &Mailman{
		book:      book,
		keys:      keys,
		encryptor: encryptor,
		wrapper:   wrapper,
		transport: transport,
		marker:    marker,
		logger:    logger,
	}, nil
}

// Deliver reads a message and delivers one outbound message per branch. All outbound messages
// are built before the first one is sent, so that any error while encrypting prevents delivery
// entirely. Errors of single deliveries do not stop the other branch and are returned together.
func (m *Mailman) Deliver(ctx context.Context, envelope mails.Envelope, content io.Reader) error {
	tree, err := mails.ParseMessage(content)
	if err != nil {
		return fmt.Errorf("could not parse message: %w", err)
	}

	ctx = log.WithMessageID(ctx, tree.Header.Get("Message-Id"))
	sender := m.sender(ctx, envelope, tree)

	known, err := m.knownIdentifiers(ctx)
	if err != nil {
		return err
	}

	result, err := m.book.Classify(ctx, envelope.To, known)
	if err != nil {
		return err
	}

	outbounds, err := m.build(ctx, tree, sender, envelope.To, result)
	if err != nil {
		return err
	}

	return m.dispatch(ctx, outbounds)
}

// sender returns the envelope sender, falling back to the address of the From header.
func (m *Mailman) sender(ctx context.Context, envelope mails.Envelope, tree *mails.Node) string {
	if envelope.From != "" {
		return envelope.From
	}

	from := tree.Header.Get("From")
	if from == "" {
		return ""
	}

	_, addr, err := mails.ParseNormalized(from)
	if err != nil {
		m.logger.WarnContext(ctx).
			Str("from", from).
			Err(err).
			Msg("could not determine sender, using null reverse-path")

		return ""
	}

	return addr.String()
}

func (m *Mailman) knownIdentifiers(ctx context.Context) (*addressbook.Set, error) {
	if m.book.KeymapOnly() {
		return nil, nil
	}

	ids, err := m.keys.KnownIdentifiers(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list public keys: %w", err)
	}

	return addressbook.Identifiers(ids), nil
}

func (m *Mailman) build(ctx context.Context, tree *mails.Node, sender string, recipients []string, result *addressbook.Result) ([]*mails.Outbound, error) {
	if len(result.OpenPGP) == 0 {
		m.logger.InfoContext(ctx).Msg("no openpgp recipients")
		m.marker.Mark(&tree.Header, mails.MarkNotEncrypted)

		outbound, err := m.wrap(ctx, BranchPlaintext, tree, sender, recipients)
		if err != nil {
			return nil, err
		}

		return []*mails.Outbound{outbound}, nil
	}

	var outbounds []*mails.Outbound

	if len(result.Plain) > 0 {
		outbound, err := m.wrap(ctx, BranchPlaintext, tree, sender, result.PlainRecipients())
		if err != nil {
			return nil, err
		}

		outbounds = append(outbounds, outbound)
	}

	m.logger.InfoContext(ctx).
		Strs("recipients", result.OpenPGPRecipients()).
		Msg("encrypting mail")

	m.marker.Mark(&tree.Header, mails.MarkEncrypted)

	if err := m.encryptor.EncryptTree(log.WithBranch(ctx, BranchOpenPGP), tree, result.Targets()); err != nil {
		return nil, err
	}

	outbound, err := m.wrap(ctx, BranchOpenPGP, tree, sender, result.OpenPGPRecipients())
	if err != nil {
		return nil, err
	}

	return append(outbounds, outbound), nil
}

func (m *Mailman) wrap(ctx context.Context, branch string, tree *mails.Node, sender string, recipients []string) (*mails.Outbound, error) {
	outbound, err := m.wrapper.Wrap(log.WithBranch(ctx, branch), branch, tree, sender, recipients)
	if err != nil {
		return nil, fmt.Errorf("%s branch: %w", branch, err)
	}

	return outbound, nil
}

// dispatch sends every outbound message, even if the delivery of a previous one failed.
func (m *Mailman) dispatch(ctx context.Context, outbounds []*mails.Outbound) error {
	var result *multierror.Error

	for _, outbound := range outbounds {
		ctx := log.WithBranch(ctx, outbound.Branch)

		m.logger.InfoContext(ctx).
			Bool("enveloped", outbound.Enveloped).
			Strs("recipients", outbound.To).
			Msg("dispatching branch")

		if err := m.transport.Send(ctx, outbound.From, outbound.To, outbound.Data); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s branch: %w", outbound.Branch, err))
		}
	}

	return result.ErrorOrNil()
}
