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
	"bytes"
	"strings"
	"testing"

	"github.com/emersion/go-message/textproto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeHeader(t *testing.T, header textproto.Header) string {
	var buffer bytes.Buffer
	require.NoError(t, textproto.WriteHeader(&buffer, header))

	return buffer.String()
}

func TestHeaderBuilderKeepsOrderAndCase(t *testing.T) {
	var b HeaderBuilder
	b.AddRaw([]byte("from: alice@example.com\r\n"))
	require.NoError(t, b.Add("To", "bob@example.com"))
	require.NoError(t, b.Add("X-GPG-Mailgate", MarkEncrypted))
	require.NoError(t, b.Add("MIME-Version", "1.0"))

	header := b.Header()

	assert.Equal(t, "from: alice@example.com\r\n"+
		"To: bob@example.com\r\n"+
		"X-GPG-Mailgate: Encrypted by GPG Mailgate\r\n"+
		"MIME-Version: 1.0\r\n"+
		"\r\n", writeHeader(t, header.Header))

	assert.Equal(t, "alice@example.com", header.Get("From"))
	assert.Equal(t, "1.0", header.Get("Mime-Version"))
}

func TestHeaderBuilderFoldsLongValues(t *testing.T) {
	recipients := make([]string, 10)
	for i := range recipients {
		recipients[i] = "recipient" + strings.Repeat("x", i) + "@example.com"
	}

	var b HeaderBuilder
	require.NoError(t, b.Add("To", strings.Join(recipients, ", ")))

	header := b.Header()
	written := writeHeader(t, header.Header)

	for _, line := range strings.Split(strings.TrimSuffix(written, "\r\n\r\n"), "\r\n") {
		assert.LessOrEqual(t, len(line), 78)
	}

	assert.Equal(t, strings.Join(recipients, ", "), header.Get("To"))
}

func TestHeaderBuilderRejectsLineBreaks(t *testing.T) {
	var b HeaderBuilder
	assert.Error(t, b.Add("Subject", "injected\r\nBcc: mallory@example.com"))
}
