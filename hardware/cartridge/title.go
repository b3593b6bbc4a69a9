// This file is part of gbxfs.
//
// gbxfs is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// gbxfs is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with gbxfs.  If not, see <https://www.gnu.org/licenses/>.

package cartridge

import "strings"

// FilterTitle returns the printable portion of a header title field. Allowed
// characters are digits, letters, space and the punctuation $%&'()-._ and
// the first character that is not allowed ends the title.
//
// The extended argument enables the rules for GB titles, where the asterisk
// is also allowed and a colon is replaced by an underscore.
func FilterTitle(field []byte, extended bool) string {
	var s strings.Builder

	for _, c := range field {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c >= '$' && c <= ')':
		case c == '-' || c == '.' || c == '_' || c == ' ':
		case c == '*' && extended:
		case c == ':' && extended:
			c = '_'
		default:
			return s.String()
		}
		s.WriteByte(c)
	}

	return s.String()
}
