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

//go:build !statsview

package statsview

import "io"

// Address is the address the stats server would listen on.
const Address = ""

// Launch is a stub function when the statsview build tag is not present.
func Launch(_ io.Writer) func() {
	return func() {}
}

// Available returns false when the statsview build tag is not present.
func Available() bool {
	return false
}
