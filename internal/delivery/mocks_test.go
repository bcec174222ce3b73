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

	"github.com/stretchr/testify/mock"
)

// MockTransport is a mock type for the Transport type
type MockTransport struct {
	mock.Mock
}

// Send provides a mock function with given fields: ctx, from, to, data
func (_m *MockTransport) Send(ctx context.Context, from string, to []string, data []byte) error {
	ret := _m.Called(ctx, from, to, data)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, []string, []byte) error); ok {
		r0 = rf(ctx, from, to, data)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// MockPGPEngine is a mock type for the pgp.Engine type
type MockPGPEngine struct {
	mock.Mock
}

// Encrypt provides a mock function with given fields: ctx, data, charset, targets
func (_m *MockPGPEngine) Encrypt(ctx context.Context, data []byte, charset string, targets []string) ([]byte, error) {
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
func (_m *MockPGPEngine) KnownIdentifiers(ctx context.Context) ([]string, error) {
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

// MockSMimeEngine is a mock type for the smime.Engine type
type MockSMimeEngine struct {
	mock.Mock
}

// Envelope provides a mock function with given fields: ctx, data, certificates
func (_m *MockSMimeEngine) Envelope(ctx context.Context, data []byte, certificates []string) ([]byte, error) {
	ret := _m.Called(ctx, data, certificates)

	var r0 []byte
	if rf, ok := ret.Get(0).(func(context.Context, []byte, []string) []byte); ok {
		r0 = rf(ctx, data, certificates)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, []byte, []string) error); ok {
		r1 = rf(ctx, data, certificates)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}
