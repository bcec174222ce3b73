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
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/lukasdietrich/mailgate/internal/log"
)

func init() {
	viper.SetDefault("smime.openssl", "openssl")
	viper.SetDefault("smime.cipher", "aes-192-cbc")
}

var (
	// ErrNoCertificates is returned when enveloping without any certificate.
	ErrNoCertificates = errors.New("smime: no certificates")
	// ErrInvalidCipher is returned for cipher names openssl cannot accept as an option.
	ErrInvalidCipher = errors.New("smime: invalid cipher")

	cipherPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
)

// Engine creates enveloped data.
type Engine interface {
	// Envelope encrypts data for every certificate file and returns the DER encoded PKCS#7
	// enveloped data.
	Envelope(ctx context.Context, data []byte, certificates []string) ([]byte, error)
}

// Options configure the openssl engine.
type Options struct {
	OpenSSL string
	Cipher  string
}

// OptionsFromViper creates Options using the configuration from viper.
//
// `smime.openssl` is the openssl binary.
// `smime.cipher` is the symmetric cipher of the envelope.
func OptionsFromViper() Options {
	return Options{
		OpenSSL: viper.GetString("smime.openssl"),
		Cipher:  viper.GetString("smime.cipher"),
	}
}

type opensslEngine struct {
	binary string
	cipher string
	logger *log.Logger
}

// NewEngine creates an engine running `openssl smime`.
func NewEngine(opts Options, logger *log.Logger) (Engine, error) {
	cipher := strings.ToLower(strings.TrimSpace(opts.Cipher))
	if !cipherPattern.MatchString(cipher) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCipher, opts.Cipher)
	}

	binary := opts.OpenSSL
	if binary == "" {
		binary = "openssl"
	}

	return &opensslEngine{
		binary: binary,
		cipher: cipher,
		logger: logger,
	}, nil
}

func (o *opensslEngine) args(certificates []string) []string {
	args := []string{"smime", "-encrypt", "-binary", "-outform", "DER", "-" + o.cipher}
	return append(args, certificates...)
}

func (o *opensslEngine) Envelope(ctx context.Context, data []byte, certificates []string) ([]byte, error) {
	if len(certificates) == 0 {
		return nil, ErrNoCertificates
	}

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, o.binary, o.args(certificates)...)
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	o.logger.TraceContext(ctx).
		Strs("args", cmd.Args).
		Msg("running openssl")

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%v: %w: %s", cmd.Args, err, strings.TrimSpace(stderr.String()))
	}

	return stdout.Bytes(), nil
}
