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

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lukasdietrich/mailgate/internal/log"
)

const usageText = `
Usage:
  mailgate [OPTIONS] COMMAND RECIPIENT...

  Encrypt mails with OpenPGP or S/MIME before relaying them.

Version:
  %s

Commands:
  filter    Read a mail from stdin, encrypt and relay it
  lookup    Show how mails to the recipients would be protected

Options:
%s
`

const (
	// exitUsage is EX_USAGE of sysexits.h.
	exitUsage = 64
	// exitTempFail is EX_TEMPFAIL of sysexits.h. The mta keeps the mail queued and retries later.
	exitTempFail = 75
)

var (
	// Version is set at compile-time.
	Version string
)

// invocation holds the command line arguments passed on to a command.
type invocation struct {
	Sender     string
	Recipients []string
	Input      io.Reader
	Output     io.Writer
}

type command interface {
	run(context.Context, invocation) error
}

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	var configFilename, sender string

	flags := pflag.NewFlagSet("mailgate", pflag.ContinueOnError)
	flags.StringVarP(&configFilename, "config", "c", "", "Path to a configuration file")
	flags.StringVarP(&sender, "sender", "f", "", "Envelope sender, defaults to the From header")
	flags.Usage = printUsage(flags)

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}

		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	commandName := flags.Arg(1)
	if (commandName != "filter" && commandName != "lookup") || flags.NArg() < 3 {
		flags.Usage()
		return exitUsage
	}

	if err := setupConfig(configFilename); err != nil {
		fmt.Fprintf(os.Stderr, "could not load configuration: %v\n", err)
		return exitTempFail
	}

	logger, err := log.NewLogger(log.OptionsFromViper())
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not create logger: %v\n", err)
		return exitTempFail
	}

	ctx := log.WithCommand(context.Background(), commandName)
	printConfig(ctx, logger)

	inv := invocation{
		Sender:     sender,
		Recipients: flags.Args()[2:],
		Input:      os.Stdin,
		Output:     os.Stdout,
	}

	if err := runCommand(ctx, logger, commandName, inv); err != nil {
		logger.ErrorContext(ctx).Err(err).Msg("mail could not be processed")
		return exitTempFail
	}

	return 0
}

func runCommand(ctx context.Context, logger *log.Logger, commandName string, inv invocation) error {
	var (
		cmd command
		err error
	)

	switch commandName {
	case "filter":
		cmd, err = newFilterCommand(logger)
	case "lookup":
		cmd, err = newLookupCommand(logger)
	}

	if err != nil {
		return fmt.Errorf("could not initialize the application: %w", err)
	}

	return cmd.run(ctx, inv)
}

func printUsage(flags *pflag.FlagSet) func() {
	return func() {
		fmt.Fprintf(os.Stderr, usageText,
			Version,
			flags.FlagUsages())
	}
}

func setupConfig(filename string) error {
	viper.SetTypeByDefaultValue(true)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetEnvPrefix("MAILGATE")

	if filename == "" {
		return nil
	}

	viper.SetConfigFile(filename)
	return viper.ReadInConfig()
}

func printConfig(ctx context.Context, logger *log.Logger) {
	keys := viper.AllKeys()
	sort.Strings(keys)

	for _, key := range keys {
		value := viper.Get(key)
		if strings.HasSuffix(key, "password") && value != "" {
			value = "********"
		}

		v, _ := json.Marshal(value)
		logger.DebugContext(ctx).
			Str("key", key).
			RawJSON("value", v).
			Msg("configuration")
	}
}
