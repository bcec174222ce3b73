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
	"os/exec"
	"strings"

	"github.com/lukasdietrich/mailgate/internal/log"
)

type gpgEngine struct {
	binary  string
	keyhome string
	logger  *log.Logger
}

func newGPGEngine(binary, keyhome string, logger *log.Logger) *gpgEngine {
	if binary == "" {
		binary = "gpg"
	}

	return &gpgEngine{
		binary:  binary,
		keyhome: keyhome,
		logger:  logger,
	}
}

func (g *gpgEngine) args(args ...string) []string {
	if g.keyhome == "" {
		return args
	}

	return append([]string{"--homedir", g.keyhome}, args...)
}

func (g *gpgEngine) listArgs() []string {
	return g.args("--list-keys", "--with-colons")
}

func (g *gpgEngine) encryptArgs(charset string, targets []string) []string {
	args := []string{"--encrypt", "--armor", "--batch", "--trust-model", "always"}

	if charset != "" {
		args = append(args, "--charset", charset)
	}

	for _, target := range targets {
		args = append(args, "-r", target)
	}

	return g.args(args...)
}

func (g *gpgEngine) run(ctx context.Context, stdin []byte, args []string) ([]byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, g.binary, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	g.logger.TraceContext(ctx).
		Str("binary", g.binary).
		Strs("args", args).
		Msg("running gpg")

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %w: %s", g.binary, err, strings.TrimSpace(stderr.String()))
	}

	return stdout.Bytes(), nil
}

func (g *gpgEngine) KnownIdentifiers(ctx context.Context) ([]string, error) {
	output, err := g.run(ctx, nil, g.listArgs())
	if err != nil {
		return nil, err
	}

	return parseColonListing(output), nil
}

func (g *gpgEngine) Encrypt(ctx context.Context, data []byte, charset string, targets []string) ([]byte, error) {
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}

	return g.run(ctx, data, g.encryptArgs(charset, targets))
}

// parseColonListing extracts identifiers from the output of `gpg --with-colons --list-keys`.
// Key ids are taken from "pub" and "sub" records, fingerprints from "fpr" records and addresses
// from the user id of "uid" records.
func parseColonListing(output []byte) []string {
	var ids []string

	for _, line := range strings.Split(string(output), "\n") {
		fields := strings.Split(strings.TrimRight(line, "\r"), ":")
		if len(fields) < 10 {
			continue
		}

		switch fields[0] {
		case "pub", "sub":
			if keyID := strings.ToLower(fields[4]); keyID != "" {
				ids = append(ids, keyID)
			}

		case "fpr":
			if fingerprint := strings.ToLower(fields[9]); fingerprint != "" {
				ids = append(ids, fingerprint)
			}

		case "uid":
			if email := userIDEmail(fields[9]); email != "" {
				ids = append(ids, email)
			}
		}
	}

	return ids
}

// userIDEmail returns the address of a user id like "Name (comment) <address>". User ids without
// angle brackets are considered to be a bare address.
func userIDEmail(userID string) string {
	userID = strings.ReplaceAll(userID, `\x3a`, ":")

	if start := strings.LastIndex(userID, "<"); start >= 0 {
		end := strings.Index(userID[start:], ">")
		if end < 0 {
			return ""
		}

		userID = userID[start+1 : start+end]
	}

	if !strings.Contains(userID, "@") {
		return ""
	}

	return strings.ToLower(strings.TrimSpace(userID))
}
