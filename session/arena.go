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
	"sync/atomic"
)

// slot identifies the file a buffer is used for
type slot int

const (
	gameSlot slot = iota
	saveSlot
	numSlots
)

func (s slot) String() string {
	switch s {
	case gameSlot:
		return "game"
	case saveSlot:
		return "save"
	}
	return "unknown"
}

// arena hands out buffers for each slot. the capacity of a new buffer is the
// largest size ever requested for the slot so that a released buffer can be
// reused for the next cartridge
type arena struct {
	crit sync.Mutex

	highWater [numSlots]int
	spare     [numSlots][]byte

	// number of leases not yet returned
	outstanding int
}

// lease is a reference counted buffer. the buffer is returned to the arena
// when the last reference is released
type lease struct {
	a    *arena
	slot slot
	data []byte
	refs atomic.Int32

	// called instead of returning the buffer to the arena. used for buffers
	// that were not allocated by the arena
	closer func()
}

// lease returns a buffer of length n with one reference
func (a *arena) lease(s slot, n int) *lease {
	a.crit.Lock()
	defer a.crit.Unlock()

	a.highWater[s] = max(a.highWater[s], n)

	var b []byte
	if cap(a.spare[s]) >= n {
		b = a.spare[s][:n]
		a.spare[s] = nil
	} else {
		b = make([]byte, n, a.highWater[s])
	}

	a.outstanding++

	l := &lease{a: a, slot: s, data: b}
	l.refs.Store(1)
	return l
}

// adopt returns a lease for data not allocated by the arena. the closer
// function is called when the last reference is released
func (a *arena) adopt(s slot, data []byte, closer func()) *lease {
	a.crit.Lock()
	defer a.crit.Unlock()

	a.outstanding++

	l := &lease{a: a, slot: s, data: data, closer: closer}
	l.refs.Store(1)
	return l
}

func (a *arena) put(l *lease) {
	a.crit.Lock()
	defer a.crit.Unlock()

	a.outstanding--

	if l.closer != nil {
		l.closer()
		return
	}

	if cap(l.data) > cap(a.spare[l.slot]) {
		a.spare[l.slot] = l.data[:0]
	}
}

// leases returns the number of leases that have not been returned
func (a *arena) leases() int {
	a.crit.Lock()
	defer a.crit.Unlock()
	return a.outstanding
}

// retain and release are safe to call on a nil lease
func (l *lease) retain() {
	if l != nil {
		l.refs.Add(1)
	}
}

func (l *lease) release() {
	if l == nil {
		return
	}
	if l.refs.Add(-1) == 0 {
		l.a.put(l)
	}
}
