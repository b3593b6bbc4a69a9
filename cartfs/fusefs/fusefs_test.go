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

package fusefs

import (
	"testing"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/jetsetilly/gbxfs/test"
)

// opening a directory is handled by go-fuse. only files are opened by cartfs
func TestOpeners(t *testing.T) {
	var r any = &root{}
	_, ok := r.(fs.NodeOpener)
	test.ExpectFailure(t, ok)

	var f any = &file{}
	_, ok = f.(fs.NodeOpener)
	test.ExpectSuccess(t, ok)
}
