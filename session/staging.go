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
	"sync"

	"github.com/jetsetilly/gbxfs/curated"
)

// Staging collects writes to the save file until they are flushed to the
// cartridge.
type Staging struct {
	crit sync.Mutex

	// the full save image with all writes applied. once a flush has
	// succeeded the image is the same as the data on the cartridge and later
	// writes apply to it rather than to the base given to Write(), which may
	// come from a snapshot published before the flush
	data    []byte
	pending bool
	current bool

	// incremented by every write. a flush only clears the pending flag if no
	// write has happened since the data was taken
	gen uint64

	// the insertion the staged data belongs to
	owner uint64

	// signalled after every write
	wake chan struct{}
}

func newStaging() *Staging {
	return &Staging{
		wake: make(chan struct{}, 1),
	}
}

// Write copies p into the staging buffer at offset off. The base slice is
// the save data the write applies to. It is copied into the staging buffer
// only if the buffer does not already hold the most recent save image.
//
// Nothing is copied if the write would extend beyond the end of base.
func (s *Staging) Write(owner uint64, base []byte, p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(base)) {
		return 0, curated.Errorf(TooLarge, len(p), off, len(base))
	}

	s.crit.Lock()
	defer s.crit.Unlock()

	if owner != s.owner {
		return 0, curated.Errorf(NoSave)
	}

	if !s.pending && (!s.current || len(s.data) != len(base)) {
		s.data = append(s.data[:0], base...)
	}

	n := copy(s.data[off:], p)
	s.pending = true
	s.gen++

	select {
	case s.wake <- struct{}{}:
	default:
	}

	return n, nil
}

// Pending returns true if there is data waiting to be flushed.
func (s *Staging) Pending() bool {
	s.crit.Lock()
	defer s.crit.Unlock()
	return s.pending
}

// take copies the staged data into dst. returns false if nothing is pending
// for the owner or if the staged data is not the same size as dst
func (s *Staging) take(owner uint64, dst []byte) (uint64, bool) {
	s.crit.Lock()
	defer s.crit.Unlock()

	if !s.pending || s.owner != owner || len(s.data) != len(dst) {
		return 0, false
	}

	copy(dst, s.data)
	return s.gen, true
}

// done is called after the data has been written to the cartridge. it
// clears the pending flag if nothing has been written since the data was
// taken
func (s *Staging) done(gen uint64) {
	s.crit.Lock()
	defer s.crit.Unlock()

	s.current = true
	if s.gen == gen {
		s.pending = false
	}
}

// drop discards staged data that can never be written to the cartridge. the
// next write applies to the base given to Write()
func (s *Staging) drop(gen uint64) {
	s.crit.Lock()
	defer s.crit.Unlock()

	if s.gen == gen {
		s.pending = false
		s.current = false
	}
}

// reset discards any pending data and sets the new owner
func (s *Staging) reset(owner uint64) {
	s.crit.Lock()
	defer s.crit.Unlock()

	s.pending = false
	s.current = false
	s.owner = owner
}
