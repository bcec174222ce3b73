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
	"crypto/tls"
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

func init() {
	viper.SetDefault("relay.tls.crt", "")
	viper.SetDefault("relay.tls.key", "")
	viper.SetDefault("relay.tls.skip_verify", false)
}

// TLSOptions configure the tls client used towards the relay.
type TLSOptions struct {
	ServerName  string
	CrtFilename string
	KeyFilename string
	SkipVerify  bool
}

// TLSOptionsFromViper creates TLSOptions using the configuration from viper.
//
// `relay.host` is the expected server name.
// `relay.tls.crt` and `relay.tls.key` are an optional client certificate.
// `relay.tls.skip_verify` disables verification of the relay certificate.
func TLSOptionsFromViper() TLSOptions {
	return TLSOptions{
		ServerName:  viper.GetString("relay.host"),
		CrtFilename: viper.GetString("relay.tls.crt"),
		KeyFilename: viper.GetString("relay.tls.key"),
		SkipVerify:  viper.GetBool("relay.tls.skip_verify"),
	}
}

// NewTLSConfig creates the tls config used for STARTTLS with the relay.
func NewTLSConfig(opts TLSOptions) (*tls.Config, error) {
	config := tls.Config{
		ServerName:         opts.ServerName,
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: opts.SkipVerify,
	}

	if opts.CrtFilename == "" && opts.KeyFilename == "" {
		return &config, nil
	}

	if opts.CrtFilename == "" || opts.KeyFilename == "" {
		return nil, errors.New("relay client certificate needs both crt and key")
	}

	certificate, err := tls.LoadX509KeyPair(opts.CrtFilename, opts.KeyFilename)
	if err != nil {
		return nil, fmt.Errorf("could not load relay client certificate: %w", err)
	}

	config.Certificates = []tls.Certificate{certificate}
	return &config, nil
}
