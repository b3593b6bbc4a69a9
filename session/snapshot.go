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

package session

import (
	"sync/atomic"

	"github.com/jetsetilly/gbxfs/hardware/cartridge"
)

// File is one of the two files presented by the filesystem.
type File struct {
	Name string
	Data []byte

	// a placeholder file has a name but no data. the name describes why
	// there is no data
	Placeholder bool

	lease *lease
}

// Size returns the number of bytes in the file.
func (f File) Size() int {
	return len(f.Data)
}

func placeholder(name string) File {
	return File{Name: name, Placeholder: true}
}

// Snapshot is the game and save file pair at the time of publication. The
// fields of a Snapshot never change.
type Snapshot struct {
	Game    File
	Save    File
	Profile cartridge.Profile

	// the insertion the snapshot was published for. writes to the save file
	// are rejected if the cartridge has changed since the snapshot was
	// acquired
	serial uint64

	// one reference is held for as long as the snapshot is published
	refs atomic.Int32
}

// tryRetain adds a reference unless the snapshot has already been released
// by everyone
func (s *Snapshot) tryRetain() bool {
	for {
		n := s.refs.Load()
		if n <= 0 {
			return false
		}
		if s.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Release the Snapshot. The data in the Snapshot must not be used after
// Release() has been called.
func (s *Snapshot) Release() {
	if s.refs.Add(-1) == 0 {
		s.Game.lease.release()
		s.Save.lease.release()
	}
}
