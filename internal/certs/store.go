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

package certs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/lukasdietrich/mailgate/internal/log"
	"github.com/lukasdietrich/mailgate/internal/mails"
)

func init() {
	viper.SetDefault("smime.cert_path", "")
}

// StoreOptions configure the certificate store.
type StoreOptions struct {
	// CertPath is the directory containing one PEM certificate per address, named after the
	// lower-cased address. An empty CertPath disables S/MIME.
	CertPath string
}

// StoreOptionsFromViper creates StoreOptions using the configuration from viper.
//
// `smime.cert_path` is the certificate directory.
func StoreOptionsFromViper() StoreOptions {
	return StoreOptions{
		CertPath: viper.GetString("smime.cert_path"),
	}
}

// NewFilesystem returns the filesystem certificates and keyrings are read from.
func NewFilesystem() afero.Fs {
	return afero.NewOsFs()
}

// Entry associates an address with the certificate file found for it.
type Entry struct {
	// Path is the filename of the certificate.
	Path string
	// Address is the address the certificate was found for. It differs from the looked up address
	// when a sub-address tag was removed.
	Address mails.Address
}

// Store looks up S/MIME certificates by address. Nothing is cached, every lookup checks the
// filesystem.
type Store struct {
	fs     afero.Fs
	root   string
	logger *log.Logger
}

// NewStore creates a new certificate store. The certificate directory has to exist, unless S/MIME
// is disabled.
func NewStore(fs afero.Fs, opts StoreOptions, logger *log.Logger) (*Store, error) {
	if opts.CertPath != "" {
		ok, err := afero.DirExists(fs, opts.CertPath)
		if err != nil {
			return nil, fmt.Errorf("could not read certificate path %q: %w", opts.CertPath, err)
		}

		if !ok {
			return nil, fmt.Errorf("certificate path %q is not a directory", opts.CertPath)
		}
	}

	return &Store{
		fs:     fs,
		root:   opts.CertPath,
		logger: logger,
	}, nil
}

// Enabled reports whether a certificate directory is configured.
func (s *Store) Enabled() bool {
	return s.root != ""
}

// Resolve looks up the certificate of an address. If there is none for "user+tag@domain", the
// lookup is repeated once for "user@domain". A nil entry without an error means there is no
// certificate.
func (s *Store) Resolve(ctx context.Context, addr mails.Address) (*Entry, error) {
	if !s.Enabled() {
		return nil, nil
	}

	addr, err := mails.Parse(mails.Lower(addr.String()))
	if err != nil {
		return nil, nil
	}

	entry, err := s.lookup(addr)
	if entry != nil || err != nil {
		return entry, err
	}

	if stripped, ok := addr.WithoutTag(); ok {
		s.logger.InfoContext(ctx).
			Str("address", addr.String()).
			Str("converted", stripped.String()).
			Msg("sub-address converted for certificate lookup")

		return s.lookup(stripped)
	}

	return nil, nil
}

func (s *Store) lookup(addr mails.Address) (*Entry, error) {
	name := addr.String()
	if !isPlainFilename(name) {
		return nil, nil
	}

	path := filepath.Join(s.root, name)

	info, err := s.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("could not check certificate %q: %w", path, err)
	}

	if info.IsDir() {
		return nil, nil
	}

	return &Entry{Path: path, Address: addr}, nil
}

// isPlainFilename rejects names, that could point outside of the certificate directory.
func isPlainFilename(name string) bool {
	return name != "" &&
		!strings.HasPrefix(name, ".") &&
		!strings.ContainsAny(name, "/\\\x00")
}
