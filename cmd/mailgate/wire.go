// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/lukasdietrich/mailgate/internal/addressbook"
	"github.com/lukasdietrich/mailgate/internal/certs"
	"github.com/lukasdietrich/mailgate/internal/delivery"
	"github.com/lukasdietrich/mailgate/internal/log"
	"github.com/lukasdietrich/mailgate/internal/mails"
	"github.com/lukasdietrich/mailgate/internal/pgp"
	"github.com/lukasdietrich/mailgate/internal/smime"
)

var wireSet = wire.NewSet(
	wire.Struct(new(filterCommand), "*"),
	wire.Struct(new(lookupCommand), "*"),

	mails.MarkerFromViper,
	certs.WireSet,
	addressbook.WireSet,
	pgp.WireSet,
	smime.WireSet,
	delivery.WireSet,
)

func newFilterCommand(logger *log.Logger) (*filterCommand, error) {
	panic(wire.Build(wireSet))
}

func newLookupCommand(logger *log.Logger) (*lookupCommand, error) {
	panic(wire.Build(wireSet))
}
