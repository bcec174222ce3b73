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

	"github.com/stretchr/testify/mock"

	"github.com/lukasdietrich/mailgate/internal/certs"
	"github.com/lukasdietrich/mailgate/internal/mails"
)

// MockResolver is a mock type for the Resolver type
type MockResolver struct {
	mock.Mock
}

// Resolve provides a mock function with given fields: _a0, _a1
func (_m *MockResolver) Resolve(_a0 context.Context, _a1 mails.Address) (*certs.Entry, error) {
	ret := _m.Called(_a0, _a1)

	var r0 *certs.Entry
	if rf, ok := ret.Get(0).(func(context.Context, mails.Address) *certs.Entry); ok {
		r0 = rf(_a0, _a1)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*certs.Entry)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, mails.Address) error); ok {
		r1 = rf(_a0, _a1)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}
