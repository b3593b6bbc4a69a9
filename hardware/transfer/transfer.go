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

// Package transfer moves data between the host and the cartridge in the
// reader. The Engine type dumps the ROM and save memory of a cartridge and
// writes save data back to the cartridge.
//
// Each operation passes through the same sequence of states, which are
// logged and can be inspected with the State() function. An operation that
// fails part way through leaves the state as Failed.
package transfer

import (
	"github.com/jetsetilly/gbxfs/curated"
	"github.com/jetsetilly/gbxfs/hardware/cartridge/saveinfo"
	"github.com/jetsetilly/gbxfs/hardware/gbxcart"
	"github.com/jetsetilly/gbxfs/logger"
)

// Sentinel error patterns.
const (
	ErrNoSaveMemory = "transfer: cartridge has no save memory"
	ErrNoCartridge  = "transfer: no cartridge"
	SizeMismatch    = "transfer: save data is %d bytes but save memory is %d bytes"
)

// State of the current or most recent operation.
type State int

// List of valid State values.
const (
	Idle State = iota
	BankSetup
	TransferLoop
	Drain
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case BankSetup:
		return "bank setup"
	case TransferLoop:
		return "transfer"
	case Drain:
		return "drain"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// the number of times a stream can be resynchronised before the reader is
// considered unresponsive
const maxResyncs = 16

// the number of empty polls during a fast read before the read is restarted
const stallPolls = 10000

// Engine performs transfers using a gbxcart.Client. It is not safe for
// concurrent use.
type Engine struct {
	c     *gbxcart.Client
	state State

	// if Info is not nil then the save information of a GBA cartridge is
	// recorded before the save memory is written to
	Info *saveinfo.Store

	resyncs int
}

// NewEngine is the preferred method of initialisation for the Engine type.
func NewEngine(c *gbxcart.Client) *Engine {
	return &Engine{c: c}
}

// State returns the state of the current or most recent operation.
func (e *Engine) State() State {
	return e.state
}

func (e *Engine) setState(s State) {
	if e.state != s {
		logger.Logf(logger.Allow, "transfer", "%s -> %s", e.state, s)
	}
	e.state = s
}

// begin and end bracket every operation
func (e *Engine) begin() {
	e.resyncs = 0
	e.state = Idle
	e.setState(BankSetup)
}

func (e *Engine) end(err error) error {
	if err != nil {
		e.setState(Failed)
		logger.Log(logger.Allow, "transfer", err)
		return err
	}
	e.setState(Done)
	return nil
}

// buffer returns a slice of length n, using dst if it has enough capacity
func buffer(dst []byte, n int) []byte {
	if cap(dst) >= n {
		return dst[:n]
	}
	return make([]byte, n)
}

// stream describes a streamed read command
type stream struct {
	mode  byte
	chunk int

	// the address sent to the reader is the byte address divided by div
	div uint32

	// the stream can not be resumed after a short read and must be restarted
	// from the beginning
	rewind bool
}

var (
	romStream    = stream{mode: gbxcart.ReadROMRAM, chunk: gbxcart.ChunkSize, div: 1}
	gbaROMStream = stream{mode: gbxcart.GBAReadROM, chunk: gbxcart.ChunkSize, div: 2}
	sramStream   = stream{mode: gbxcart.GBAReadSRAM, chunk: gbxcart.ChunkSize, div: 1}
	eepromStream = stream{mode: gbxcart.GBAReadEEPROM, chunk: gbxcart.EEPROMChunkSize, div: 1, rewind: true}
)

// read fills dst from the stream starting at addr. the length of dst must be
// a multiple of the chunk size of the stream
func (e *Engine) read(dst []byte, addr uint32, s stream) error {
	err := e.c.SendNumber(gbxcart.SetStartAddress, addr/s.div)
	if err != nil {
		return err
	}
	err = e.c.SendMode(s.mode)
	if err != nil {
		return err
	}

	e.setState(TransferLoop)

	cursor := 0
	for cursor < len(dst) {
		b, err := e.c.ReadBlock(s.chunk)
		if err != nil {
			return err
		}

		if len(b) < s.chunk {
			e.resyncs++
			if e.resyncs > maxResyncs {
				_ = e.c.StopRead()
				return curated.Errorf(gbxcart.DeviceUnresponsive)
			}
			if s.rewind {
				cursor = 0
			}
			err = e.c.Resync((addr+uint32(cursor))/s.div, s.mode)
			if err != nil {
				return err
			}
			continue
		}

		cursor += copy(dst[cursor:], b)
		if cursor < len(dst) {
			err = e.c.ContinueRead()
			if err != nil {
				return err
			}
		}
	}

	e.setState(Drain)

	return e.c.StopRead()
}
