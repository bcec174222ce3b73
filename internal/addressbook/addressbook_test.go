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
	"errors"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/lukasdietrich/mailgate/internal/certs"
	"github.com/lukasdietrich/mailgate/internal/log"
	"github.com/lukasdietrich/mailgate/internal/mails"
)

func TestBookTestSuite(t *testing.T) {
	suite.Run(t, new(BookTestSuite))
}

type BookTestSuite struct {
	suite.Suite

	resolver *MockResolver
	known    *Set
}

func (s *BookTestSuite) SetupTest() {
	s.resolver = new(MockResolver)
	s.known = Identifiers([]string{"Alice@Example.com", "0xDEADBEEF"})
}

func (s *BookTestSuite) TearDownTest() {
	mock.AssertExpectationsForObjects(s.T(), s.resolver)
}

func (s *BookTestSuite) book(opts Options) *Book {
	book, err := NewBook(opts, s.resolver, log.Nop())
	s.Require().NoError(err)

	return book
}

func (s *BookTestSuite) expectCertificate(addr, path string) {
	s.resolver.
		On("Resolve",
			mock.Anything,
			mock.MatchedBy(func(a mails.Address) bool {
				return a.String() == addr
			}),
		).
		Return(&certs.Entry{Path: path}, nil)
}

func (s *BookTestSuite) expectNoCertificate() {
	s.resolver.On("Resolve", mock.Anything, mock.Anything).Return(nil, nil)
}

func (s *BookTestSuite) TestKnownKey() {
	result, err := s.book(Options{}).Classify(context.TODO(), []string{"alice@example.com"}, s.known)
	s.Require().NoError(err)

	s.Assert().Empty(result.Plain)
	s.Require().Len(result.OpenPGP, 1)
	s.Assert().Equal(OpenPGP, result.OpenPGP[0].Kind)
	s.Assert().Equal([]string{"alice@example.com"}, result.OpenPGP[0].Targets)
}

func (s *BookTestSuite) TestKnownKeyIsCaseInsensitive() {
	result, err := s.book(Options{}).Classify(context.TODO(), []string{"ALICE@example.COM"}, s.known)
	s.Require().NoError(err)

	s.Require().Len(result.OpenPGP, 1)
	s.Assert().Equal("ALICE@example.COM", result.OpenPGP[0].Recipient)
	s.Assert().Equal([]string{"alice@example.com"}, result.OpenPGP[0].Targets)
}

func (s *BookTestSuite) TestKeymap() {
	book := s.book(Options{
		Keymap: map[string]string{
			"Bob@example.com": "0x1234, ,bob-work@example.com,",
		},
	})

	result, err := book.Classify(context.TODO(), []string{"bob@example.com"}, s.known)
	s.Require().NoError(err)

	s.Require().Len(result.OpenPGP, 1)
	s.Assert().Equal([]string{"0x1234", "bob-work@example.com"}, result.OpenPGP[0].Targets)
}

func (s *BookTestSuite) TestKnownKeyTakesPrecedenceOverKeymap() {
	book := s.book(Options{
		Keymap: map[string]string{"alice@example.com": "0xCAFE"},
	})

	result, err := book.Classify(context.TODO(), []string{"alice@example.com"}, s.known)
	s.Require().NoError(err)

	s.Require().Len(result.OpenPGP, 1)
	s.Assert().Equal([]string{"alice@example.com"}, result.OpenPGP[0].Targets)
}

func (s *BookTestSuite) TestKeymapOnly() {
	s.expectNoCertificate()

	book := s.book(Options{
		Keymap:     map[string]string{"bob@example.com": "0x1234"},
		KeymapOnly: true,
	})

	s.Assert().True(book.KeymapOnly())

	result, err := book.Classify(context.TODO(), []string{"alice@example.com", "bob@example.com"}, s.known)
	s.Require().NoError(err)

	s.Assert().Equal([]string{"bob@example.com"}, result.OpenPGPRecipients())
	s.Assert().Equal([]string{"alice@example.com"}, result.PlainRecipients())
}

func (s *BookTestSuite) TestPlainTagging() {
	s.expectCertificate("carol@example.com", "/certs/carol@example.com")
	s.expectNoCertificate()

	result, err := s.book(Options{}).Classify(context.TODO(),
		[]string{"carol@example.com", "dave@example.com", "not an address"}, s.known)
	s.Require().NoError(err)

	s.Assert().Empty(result.OpenPGP)
	s.Require().Len(result.Plain, 3)

	s.Assert().Equal(SMime, result.Plain[0].Kind)
	s.Assert().Equal("/certs/carol@example.com", result.Plain[0].CertificatePath)
	s.Assert().Equal(None, result.Plain[1].Kind)
	s.Assert().Equal(None, result.Plain[2].Kind)
}

func (s *BookTestSuite) TestPartition() {
	s.expectNoCertificate()

	book := s.book(Options{
		Keymap: map[string]string{"bob@example.com": "0x1234"},
	})

	recipients := []string{
		"dave@example.com",
		"alice@example.com",
		"erin@example.com",
		"bob@example.com",
	}

	result, err := book.Classify(context.TODO(), recipients, s.known)
	s.Require().NoError(err)

	s.Assert().Equal([]string{"alice@example.com", "bob@example.com"}, result.OpenPGPRecipients())
	s.Assert().Equal([]string{"dave@example.com", "erin@example.com"}, result.PlainRecipients())
	s.Assert().Equal([]string{"alice@example.com", "0x1234"}, result.Targets())
}

func (s *BookTestSuite) TestResolverError() {
	expected := errors.New("permission denied")
	s.resolver.On("Resolve", mock.Anything, mock.Anything).Return(nil, expected)

	_, err := s.book(Options{}).Classify(context.TODO(), []string{"carol@example.com"}, s.known)
	s.Assert().ErrorIs(err, expected)
}

func TestNewBookInvalidKeymap(t *testing.T) {
	for name, keymap := range map[string]map[string]string{
		"invalid address": {"no-at-sign": "0x1234"},
		"no identifiers":  {"bob@example.com": " , ,"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewBook(Options{Keymap: keymap}, new(MockResolver), log.Nop())
			assert.Error(t, err)
		})
	}
}

func TestSetNil(t *testing.T) {
	var set *Set

	assert.False(t, set.Contains("alice@example.com"))
	assert.Equal(t, 0, set.Len())
}

func TestIdentifiers(t *testing.T) {
	set := Identifiers([]string{" Alice@Example.com ", "DEADBEEF", "deadbeef"})

	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Contains("alice@example.com"))
	assert.True(t, set.Contains("deadbeef"))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "none", None.String())
	assert.Equal(t, "smime", SMime.String())
	assert.Equal(t, "openpgp", OpenPGP.String())
	assert.Equal(t, "Kind(7)", Kind(7).String())
}

func TestOptionsFromViper(t *testing.T) {
	defer viper.Reset()

	viper.Set("gate.keymap_only", true)
	viper.Set("keymap", map[string]interface{}{
		"bob@example.com": "0x1234,0x5678",
	})

	opts := OptionsFromViper()
	require.True(t, opts.KeymapOnly)
	assert.Equal(t, map[string]string{"bob@example.com": "0x1234,0x5678"}, opts.Keymap)
}
