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

// Envelope stores the information about an email the MTA hands to the filter next to the actual
// content. It is basically what a real envelope is to mail.
type Envelope struct {
	// From is the reverse-path used when re-injecting the mail. It may be empty, in which case the
	// address of the From header is used.
	From string
	// To is the list of recipients exactly as given by the MTA.
	To []string
}
