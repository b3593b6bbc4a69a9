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

package modalflag

import (
	"fmt"
	"io"
	"strings"
)

// usageBuffer collects the usage message written by the flag package so that
// it can be printed with the sub-modes of the current mode
type usageBuffer struct {
	strings.Builder
}

func (u *usageBuffer) print(output io.Writer, path string, subModes []string, help string) {
	heading, flags, _ := strings.Cut(u.String(), "\n")

	if flags == "" && len(subModes) == 0 {
		if path == "" {
			fmt.Fprintln(output, "No help available")
		} else {
			fmt.Fprintf(output, "No help available for %s\n", path)
		}
		return
	}

	if path == "" {
		fmt.Fprintln(output, heading)
	} else {
		fmt.Fprintf(output, "%s for %s mode\n", heading, path)
	}

	io.WriteString(output, flags)

	if len(subModes) > 0 {
		if flags != "" {
			fmt.Fprintln(output)
		}
		fmt.Fprintf(output, "  available sub-modes: %s\n", strings.Join(subModes, ", "))
		fmt.Fprintf(output, "    default: %s\n", subModes[0])
	}

	if help != "" {
		fmt.Fprintf(output, "\n%s\n", help)
	}
}
