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

package cartridgeloader

import (
	"path/filepath"
	"strings"
)

// FileExtensions is the list of file extensions that are recognised by the
// cartridgeloader package. Save files are never cached.
var FileExtensions = [...]string{".GB", ".GBC", ".GBA"}

// IsROMFile returns true if the filename has one of the recognised file
// extensions. Case is ignored.
func IsROMFile(filename string) bool {
	ext := strings.ToUpper(filepath.Ext(filename))
	for _, e := range FileExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
