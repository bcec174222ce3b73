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
	"context"

	"github.com/stretchr/testify/mock"
)

// MockEngine is a mock type for the Engine type
type MockEngine struct {
	mock.Mock
}

// Encrypt provides a mock function with given fields: ctx, data, charset, targets
func (_m *MockEngine) Encrypt(ctx context.Context, data []byte, charset string, targets []string) ([]byte, error) {
	ret := _m.Called(ctx, data, charset, targets)

	var r0 []byte
	if rf, ok := ret.Get(0).(func(context.Context, []byte, string, []string) []byte); ok {
		r0 = rf(ctx, data, charset, targets)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, []byte, string, []string) error); ok {
		r1 = rf(ctx, data, charset, targets)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// KnownIdentifiers provides a mock function with given fields: ctx
func (_m *MockEngine) KnownIdentifiers(ctx context.Context) ([]string, error) {
	ret := _m.Called(ctx)

	var r0 []string
	if rf, ok := ret.Get(0).(func(context.Context) []string); ok {
		r0 = rf(ctx)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]string)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}
