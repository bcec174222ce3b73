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
	"context"
	"fmt"
	"strings"

	"github.com/lukasdietrich/mailgate/internal/certs"
	"github.com/lukasdietrich/mailgate/internal/log"
	"github.com/lukasdietrich/mailgate/internal/mails"
)

// Kind is the protection applied for a recipient.
type Kind int

const (
	// None means the recipient receives the message unmodified.
	None Kind = iota
	// SMime means a certificate is available for the recipient.
	SMime
	// OpenPGP means the recipient has at least one key identifier.
	OpenPGP
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case SMime:
		return "smime"
	case OpenPGP:
		return "openpgp"
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

// Entry is the classification of one envelope recipient.
type Entry struct {
	Kind Kind

	// Recipient is the envelope recipient exactly as given.
	Recipient string
	// Targets are the key identifiers for OpenPGP entries.
	Targets []string
	// CertificatePath is the certificate for SMime entries.
	CertificatePath string
}

func (e *Entry) String() string {
	switch e.Kind {
	case OpenPGP:
		return fmt.Sprintf("openpgp(targets=%s)", strings.Join(e.Targets, ","))
	case SMime:
		return fmt.Sprintf("smime(certificate=%s)", e.CertificatePath)
	}

	return "none"
}

// Result partitions the envelope recipients. Every recipient is part of exactly one group, in
// the order they were given.
type Result struct {
	OpenPGP []Entry
	Plain   []Entry
}

// OpenPGPRecipients returns the envelope recipients of the OpenPGP group.
func (r *Result) OpenPGPRecipients() []string {
	return recipients(r.OpenPGP)
}

// PlainRecipients returns the envelope recipients of the plain group.
func (r *Result) PlainRecipients() []string {
	return recipients(r.Plain)
}

// Targets returns the concatenated key identifiers of the OpenPGP group.
func (r *Result) Targets() []string {
	var targets []string

	for _, entry := range r.OpenPGP {
		targets = append(targets, entry.Targets...)
	}

	return targets
}

func recipients(entries []Entry) []string {
	recipients := make([]string, len(entries))

	for i, entry := range entries {
		recipients[i] = entry.Recipient
	}

	return recipients
}

// Resolver looks up certificates by address.
type Resolver interface {
	Resolve(context.Context, mails.Address) (*certs.Entry, error)
}

// Book classifies recipients using the key store, the keymap and the certificate store.
type Book struct {
	keymap     map[string][]string
	keymapOnly bool
	resolver   Resolver
	logger     *log.Logger
}

// NewBook creates a new Book. The keymap is validated.
func NewBook(opts Options, resolver Resolver, logger *log.Logger) (*Book, error) {
	keymap, err := parseKeymap(opts.Keymap)
	if err != nil {
		return nil, err
	}

	return &Book{
		keymap:     keymap,
		keymapOnly: opts.KeymapOnly,
		resolver:   resolver,
		logger:     logger,
	}, nil
}

// KeymapOnly reports whether known keys are ignored.
func (b *Book) KeymapOnly() bool {
	return b.keymapOnly
}

// Classify partitions the recipients into the OpenPGP and the plain group. known contains the
// identifiers available in the key store and is ignored if only the keymap should be used.
func (b *Book) Classify(ctx context.Context, recipients []string, known *Set) (*Result, error) {
	var result Result

	for _, recipient := range recipients {
		entry, err := b.classify(ctx, recipient, known)
		if err != nil {
			return nil, err
		}

		b.logger.DebugContext(ctx).
			Str("recipient", recipient).
			Stringer("entry", entry).
			Msg("recipient classified")

		if entry.Kind == OpenPGP {
			result.OpenPGP = append(result.OpenPGP, *entry)
		} else {
			result.Plain = append(result.Plain, *entry)
		}
	}

	return &result, nil
}

func (b *Book) classify(ctx context.Context, recipient string, known *Set) (*Entry, error) {
	key := mails.Lower(strings.TrimSpace(recipient))

	if !b.keymapOnly && known.Contains(key) {
		return &Entry{Kind: OpenPGP, Recipient: recipient, Targets: []string{key}}, nil
	}

	if targets, ok := b.keymap[key]; ok {
		return &Entry{Kind: OpenPGP, Recipient: recipient, Targets: targets}, nil
	}

	return b.classifyPlain(ctx, recipient)
}

func (b *Book) classifyPlain(ctx context.Context, recipient string) (*Entry, error) {
	entry := Entry{Kind: None, Recipient: recipient}

	_, addr, err := mails.ParseNormalized(recipient)
	if err != nil {
		b.logger.DebugContext(ctx).
			Str("recipient", recipient).
			Err(err).
			Msg("recipient is not a valid address")

		return &entry, nil
	}

	cert, err := b.resolver.Resolve(ctx, addr)
	if err != nil {
		return nil, err
	}

	if cert != nil {
		entry.Kind = SMime
		entry.CertificatePath = cert.Path
	}

	return &entry, nil
}
