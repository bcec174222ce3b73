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
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/spf13/viper"

	"github.com/lukasdietrich/mailgate/internal/log"
)

func init() {
	viper.SetDefault("relay.host", "127.0.0.1")
	viper.SetDefault("relay.port", 10028)
	viper.SetDefault("relay.hostname", "localhost")
	viper.SetDefault("relay.starttls", false)
	viper.SetDefault("relay.username", "")
	viper.SetDefault("relay.password", "")
}

// ErrNoRelay is returned if the relay address is incomplete.
var ErrNoRelay = errors.New("delivery: no relay configured")

// Transport hands a message over for delivery.
type Transport interface {
	Send(ctx context.Context, from string, to []string, data []byte) error
}

// CourierOptions configure the relay.
type CourierOptions struct {
	Host     string
	Port     int
	Hostname string
	StartTLS bool
	Username string
	Password string
}

// CourierOptionsFromViper creates CourierOptions using the configuration from viper.
//
// `relay.host` and `relay.port` are the address of the relay.
// `relay.hostname` is the name used in EHLO.
// `relay.starttls` requires a STARTTLS upgrade.
// `relay.username` and `relay.password` enable AUTH PLAIN.
func CourierOptionsFromViper() CourierOptions {
	return CourierOptions{
		Host:     viper.GetString("relay.host"),
		Port:     viper.GetInt("relay.port"),
		Hostname: viper.GetString("relay.hostname"),
		StartTLS: viper.GetBool("relay.starttls"),
		Username: viper.GetString("relay.username"),
		Password: viper.GetString("relay.password"),
	}
}

// Courier delivers messages to the relay, one smtp session per message.
type Courier struct {
	opts      CourierOptions
	tlsConfig *tls.Config
	logger    *log.Logger
}

// NewCourier creates a new courier for delivery.
func NewCourier(opts CourierOptions, tlsConfig *tls.Config, logger *log.Logger) (*Courier, error) {
	if opts.Host == "" || opts.Port <= 0 || opts.Port > 65535 {
		return nil, fmt.Errorf("%w: %q port %d", ErrNoRelay, opts.Host, opts.Port)
	}

	return &Courier{
		opts:      opts,
		tlsConfig: tlsConfig,
		logger:    logger,
	}, nil
}

// Send delivers data to all non-blank recipients. Without any recipient nothing is sent.
func (c *Courier) Send(ctx context.Context, from string, to []string, data []byte) error {
	recipients := filterBlank(to)
	if len(recipients) == 0 {
		c.logger.InfoContext(ctx).Msg("no recipient found")
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	c.logger.InfoContext(ctx).
		Str("from", from).
		Strs("to", recipients).
		Int("size", len(data)).
		Msg("sending mail to relay")

	if err := c.send(ctx, from, recipients, data); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}

		c.logger.ErrorContext(ctx).
			Bool("permanent", isPermanentErr(err)).
			Bool("transient", isTransientErr(err)).
			Err(err).
			Msg("relay did not accept mail")

		return err
	}

	return nil
}

func (c *Courier) send(ctx context.Context, from string, recipients []string, data []byte) error {
	var dialer net.Dialer

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(c.opts.Host, strconv.Itoa(c.opts.Port)))
	if err != nil {
		return err
	}

	// a hanging relay must not outlive ctx
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	client, err := c.newClient(conn)
	if err != nil {
		conn.Close()
		return err
	}

	defer client.Close()

	if err := c.initClient(client); err != nil {
		return err
	}

	if err := copyEnvelope(client, from, recipients); err != nil {
		return err
	}

	if err := copyData(client, data); err != nil {
		return err
	}

	return client.Quit()
}

// newClient wraps conn and upgrades to tls, if configured.
func (c *Courier) newClient(conn net.Conn) (*smtp.Client, error) {
	if !c.opts.StartTLS {
		return smtp.NewClient(conn), nil
	}

	client, err := smtp.NewClientStartTLS(conn, c.tlsConfig)
	if err != nil {
		return nil, fmt.Errorf("could not start tls: %w", err)
	}

	return client, nil
}

// initClient says hello to the relay and authenticates, if configured. After a tls upgrade this
// is the first hello on the encrypted connection.
func (c *Courier) initClient(client *smtp.Client) error {
	if err := client.Hello(c.opts.Hostname); err != nil {
		return err
	}

	if c.opts.Username != "" {
		auth := sasl.NewPlainClient("", c.opts.Username, c.opts.Password)

		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("could not authenticate: %w", err)
		}
	}

	return nil
}

// copyEnvelope sends the return- and forward-paths.
func copyEnvelope(client *smtp.Client, from string, recipients []string) error {
	if err := client.Mail(from, nil); err != nil {
		return fmt.Errorf("sender %q rejected: %w", from, err)
	}

	for _, recipient := range recipients {
		if err := client.Rcpt(recipient, nil); err != nil {
			return fmt.Errorf("recipient %q rejected: %w", recipient, err)
		}
	}

	return nil
}

// copyData writes the mail content.
func copyData(client *smtp.Client, data []byte) error {
	w, err := client.Data()
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}

	return w.Close()
}

func filterBlank(recipients []string) []string {
	var filtered []string

	for _, recipient := range recipients {
		if strings.TrimSpace(recipient) != "" {
			filtered = append(filtered, recipient)
		}
	}

	return filtered
}

// isPermanentErr tests if an error is an smtp error and if it has a 5xx code.
func isPermanentErr(err error) bool {
	var smtpErr *smtp.SMTPError
	if errors.As(err, &smtpErr) {
		return smtpErr.Code >= 500 && smtpErr.Code < 600
	}

	return false
}

// isTransientErr tests if an error is an smtp error and if it has a 4xx code.
func isTransientErr(err error) bool {
	var smtpErr *smtp.SMTPError
	if errors.As(err, &smtpErr) {
		return smtpErr.Code >= 400 && smtpErr.Code < 500
	}

	return false
}
