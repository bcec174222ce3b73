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

package mails

// Outbound is a finished message ready to be handed to the relay.
type Outbound struct {
	// Branch names the part of the pipeline the message was produced by.
	Branch string
	// Enveloped is true, if Data is an S/MIME envelope.
	Enveloped bool
	// From is the reverse-path.
	From string
	// To is the list of forward-paths.
	To []string
	// Data is the complete message including headers.
	Data []byte
}
