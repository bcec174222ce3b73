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

package mails

import (
	"errors"
	"strings"

	"github.com/emersion/go-message/mail"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// ErrInvalidAddressFormat is used for addresses of zero length or without
	// an "@" sign.
	ErrInvalidAddressFormat = errors.New("address: invalid format")

	// ErrPathTooLong is used for addresses, that are too long or contain a path
	// that is too long according to RFC#5321.
	ErrPathTooLong = errors.New("address: path too long")

	// ZeroAddress is an invalid, zero value Address.
	ZeroAddress Address
)

// Address is a string of the form "local-part@domain".
type Address struct {
	raw string
	at  int
}

// ParseNormalized extracts the mailbox of an address value like `"Alice" <Alice@Example.com>`,
// lower-cases it and calls Parse. The display name is returned alongside. Values that are not
// valid RFC#5322 addresses are treated as a bare mailbox.
func ParseNormalized(value string) (string, Address, error) {
	name, mailbox := splitDisplayName(value)

	addr, err := Parse(Lower(mailbox))
	return name, addr, err
}

// Parse splits an address at the last "@" sign and checks for size limits.
func Parse(raw string) (Address, error) {
	if len(raw) == 0 {
		return ZeroAddress, ErrInvalidAddressFormat
	}

	at := strings.LastIndex(raw, "@")
	if at < 0 {
		return ZeroAddress, ErrInvalidAddressFormat
	}

	// see RFC#5321 4.5.3.1
	if at > 64 || len(raw)-at > 256 || len(raw) > 256 {
		return ZeroAddress, ErrPathTooLong
	}

	return Address{raw, at}, nil
}

// Lower applies the unicode lower case mapping to s.
func Lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

func splitDisplayName(value string) (string, string) {
	parsed, err := mail.ParseAddress(value)
	if err != nil {
		return "", strings.TrimSpace(value)
	}

	return parsed.Name, parsed.Address
}

// String returns the raw address provided to Parse.
func (a Address) String() string {
	return a.raw
}

// LocalPart returns the part left of the "@" sign (exclusive).
func (a Address) LocalPart() string {
	return a.raw[:a.at]
}

// Domain return the part right of the "@" sign (exclusive).
func (a Address) Domain() string {
	return a.raw[a.at+1:]
}

// WithoutTag returns a copy of a with the sub-address tag removed, so that "user+tag@domain"
// becomes "user@domain". The tag starts at the first "+" of the local-part. Both the user and the
// tag have to be non-empty, otherwise a is returned unchanged and ok is false.
func (a Address) WithoutTag() (stripped Address, ok bool) {
	localPart := a.LocalPart()

	plus := strings.IndexByte(localPart, '+')
	if plus <= 0 || plus == len(localPart)-1 {
		return a, false
	}

	return Address{
		raw: localPart[:plus] + "@" + a.Domain(),
		at:  plus,
	}, true
}
