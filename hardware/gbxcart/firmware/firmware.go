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

// Package firmware simulates the firmware of the GBxCart RW cartridge reader
// and the cartridges that can be inserted into it. The Device type satisfies
// the serial.Link interface and so can be used in place of a real serial
// connection.
//
// Writes to the Device are parsed as commands and any response is queued
// immediately. Reads from the Device never block.
package firmware

import (
	"strconv"
	"sync"

	"github.com/jetsetilly/gbxfs/hardware/gbxcart"
)

// parser states
type parseState int

const (
	stateIdle parseState = iota
	stateNumber
	statePayload
)

// Device is a simulated cartridge reader.
type Device struct {
	crit sync.Mutex

	// the output queue. read by the Read() function
	out []byte

	state   parseState
	cmd     byte
	num     []byte
	payload []byte
	need    int

	// the active read stream
	stream byte

	// the start address as set by the SetStartAddress command
	addr uint32

	// the SetBank command alternates between address and value
	bankAddr    uint16
	bankHasAddr bool

	// the flash cart command alternates between address and value
	flashAddr    uint32
	flashHasAddr bool

	eepromSize int
	voltage    byte

	// count of stream chunks emitted. used for fault injection
	chunks int

	// the inserted cartridge. only one of these can be non-nil
	gb  *GB
	gba *GBA

	// the switch on the reader that selects the cartridge slot
	Switch byte

	// the reader can deliver data quickly enough for fast reads
	FastRead bool

	// the version values returned by the ReadPCB and ReadFirmware commands
	PCB      byte
	Firmware byte

	// if Truncate is not zero then the Nth chunk of a streamed or fast read
	// is truncated to half its length. this happens once only
	Truncate int

	// number of bytes written to the device. useful for checking that nothing
	// has been sent
	Written int
}

// NewDevice is the preferred method of initialisation for the Device type.
func NewDevice() *Device {
	return &Device{
		Switch:   gbxcart.ModeGB,
		FastRead: false,
		PCB:      4,
		Firmware: 26,
	}
}

// InsertGB inserts a GB cartridge into the reader.
func (d *Device) InsertGB(c *GB) {
	d.crit.Lock()
	defer d.crit.Unlock()
	d.gb = c
	d.gba = nil
	d.Switch = gbxcart.ModeGB
}

// InsertGBA inserts a GBA cartridge into the reader.
func (d *Device) InsertGBA(c *GBA) {
	d.crit.Lock()
	defer d.crit.Unlock()
	d.gb = nil
	d.gba = c
	d.Switch = gbxcart.ModeGBA
}

// Eject removes any cartridge from the reader.
func (d *Device) Eject() {
	d.crit.Lock()
	defer d.crit.Unlock()
	d.gb = nil
	d.gba = nil
}

// Voltage returns the most recent voltage command.
func (d *Device) Voltage() byte {
	d.crit.Lock()
	defer d.crit.Unlock()
	return d.voltage
}

// Read implements the io.Reader interface.
func (d *Device) Read(p []byte) (int, error) {
	d.crit.Lock()
	defer d.crit.Unlock()
	n := copy(p, d.out)
	d.out = d.out[n:]
	return n, nil
}

// Write implements the io.Writer interface.
func (d *Device) Write(p []byte) (int, error) {
	d.crit.Lock()
	defer d.crit.Unlock()
	for _, b := range p {
		d.parse(b)
	}
	d.Written += len(p)
	return len(p), nil
}

// Flush implements the serial.Link interface.
func (d *Device) Flush() error {
	d.crit.Lock()
	defer d.crit.Unlock()
	d.out = d.out[:0]
	return nil
}

// Close implements the io.Closer interface.
func (d *Device) Close() error {
	return nil
}

func (d *Device) emit(b ...byte) {
	d.out = append(d.out, b...)
}

// emit a chunk of a streamed read, truncating it if required
func (d *Device) emitChunk(b []byte) {
	d.chunks++
	if d.Truncate > 0 && d.chunks == d.Truncate {
		d.Truncate = 0
		b = b[:len(b)/2]
	}
	d.emit(b...)
}

func (d *Device) parse(b byte) {
	switch d.state {
	case stateNumber:
		if b != 0 {
			d.num = append(d.num, b)
			return
		}
		d.state = stateIdle
		d.number(d.cmd, string(d.num))
		d.num = d.num[:0]
		return

	case statePayload:
		d.payload = append(d.payload, b)
		if len(d.payload) < d.need {
			return
		}
		d.state = stateIdle
		d.write(d.cmd, d.payload)
		d.payload = d.payload[:0]
		return
	}

	switch b {
	case gbxcart.SetStartAddress, gbxcart.SetBank, gbxcart.GBASetEEPROMSize,
		gbxcart.GBAFlashSetBank, gbxcart.GBAFlashCart, gbxcart.GBAFlashSectorErase:
		d.cmd = b
		d.state = stateNumber

	case gbxcart.WriteRAM, gbxcart.GBAWriteSRAM, gbxcart.GBAFlashWrite:
		d.cmd = b
		d.need = gbxcart.ChunkSize
		d.state = statePayload

	case gbxcart.GBAWriteEEPROM:
		d.cmd = b
		d.need = gbxcart.EEPROMChunkSize
		d.state = statePayload

	case gbxcart.GBAFlashWriteAtmel:
		d.cmd = b
		d.need = gbxcart.AtmelPageSize
		d.state = statePayload

	case gbxcart.GBAWriteOneByte:
		d.cmd = b
		d.need = 1
		d.state = statePayload

	case gbxcart.ReadROMRAM, gbxcart.GBAReadROM, gbxcart.GBAReadSRAM, gbxcart.GBAReadEEPROM:
		d.stream = b
		d.next()

	case gbxcart.Continue:
		if d.stream != 0 {
			d.next()
		}

	case gbxcart.Stop:
		d.stream = 0

	case gbxcart.GBFastRead:
		d.fastGB()

	case gbxcart.GBAFastRead:
		d.fastGBA()

	case gbxcart.CartMode:
		d.emit(d.Switch)

	case gbxcart.ReadPCB:
		d.emit(d.PCB)

	case gbxcart.ReadFirmware:
		d.emit(d.Firmware)

	case gbxcart.Voltage3V, gbxcart.Voltage5V:
		d.voltage = b

	case gbxcart.FastReadCheck:
		if d.FastRead {
			d.emit(make([]byte, gbxcart.FastReadCheckSize)...)
		}

	case gbxcart.GBAFlashReadID:
		if d.gba != nil && d.gba.Flash != nil {
			d.emit(d.gba.Flash.ID[0], d.gba.Flash.ID[1])
		} else {
			d.emit(0xff, 0xff)
		}
	}
}

func (d *Device) number(cmd byte, s string) {
	// the bank value of the SetBank command is decimal
	base := 16
	if cmd == gbxcart.SetBank && d.bankHasAddr {
		base = 10
	}

	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return
	}

	switch cmd {
	case gbxcart.SetStartAddress:
		d.addr = uint32(v)

	case gbxcart.SetBank:
		if !d.bankHasAddr {
			d.bankAddr = uint16(v)
			d.bankHasAddr = true
			return
		}
		d.bankHasAddr = false
		if d.gb != nil {
			d.gb.writeRegister(d.bankAddr, uint8(v))
		}

	case gbxcart.GBASetEEPROMSize:
		d.eepromSize = int(v)

	case gbxcart.GBAFlashSetBank:
		if d.gba != nil && d.gba.Flash != nil {
			d.gba.Flash.bank = int(v)
		}

	case gbxcart.GBAFlashSectorErase:
		if d.gba != nil && d.gba.Flash != nil {
			d.gba.Flash.erase(int(v))
		}

	case gbxcart.GBAFlashCart:
		if !d.flashHasAddr {
			d.flashAddr = uint32(v)
			d.flashHasAddr = true
			return
		}
		d.flashHasAddr = false
		if d.gba != nil {
			d.gba.flashCartWrite(d.flashAddr*2, uint16(v))
		}
		d.emit(gbxcart.Ack)
	}
}

func (d *Device) write(cmd byte, data []byte) {
	switch cmd {
	case gbxcart.WriteRAM:
		if d.gb != nil {
			for i, v := range data {
				d.gb.write(uint16(d.addr)+uint16(i), v)
			}
		}
		d.addr += uint32(len(data))

	case gbxcart.GBAWriteSRAM, gbxcart.GBAWriteOneByte:
		if d.gba != nil {
			for i, v := range data {
				d.gba.writeSRAM(d.addr+uint32(i), v)
			}
		}
		d.addr += uint32(len(data))

	case gbxcart.GBAFlashWrite, gbxcart.GBAFlashWriteAtmel:
		if d.gba != nil && d.gba.Flash != nil {
			atmel := cmd == gbxcart.GBAFlashWriteAtmel
			for i, v := range data {
				d.gba.Flash.program(d.addr+uint32(i), v, atmel)
			}
		}
		d.addr += uint32(len(data))

	case gbxcart.GBAWriteEEPROM:
		if d.gba != nil {
			for i, v := range data {
				d.gba.writeEEPROM(d.addr+uint32(i), v)
			}
		}
		d.addr += uint32(len(data))
	}

	d.emit(gbxcart.Ack)
}

// next emits the next chunk of the active stream
func (d *Device) next() {
	var b []byte

	switch d.stream {
	case gbxcart.ReadROMRAM:
		b = make([]byte, gbxcart.ChunkSize)
		for i := range b {
			b[i] = d.readGB(uint16(d.addr) + uint16(i))
		}
		d.addr += gbxcart.ChunkSize

	case gbxcart.GBAReadROM:
		// the address for ROM reads is a word address
		b = make([]byte, gbxcart.ChunkSize)
		for i := range b {
			b[i] = d.readGBAROM(d.addr*2 + uint32(i))
		}
		d.addr += gbxcart.ChunkSize / 2

	case gbxcart.GBAReadSRAM:
		b = make([]byte, gbxcart.ChunkSize)
		for i := range b {
			if d.gba == nil {
				b[i] = 0xff
			} else {
				b[i] = d.gba.readSRAM(d.addr + uint32(i))
			}
		}
		d.addr += gbxcart.ChunkSize

	case gbxcart.GBAReadEEPROM:
		b = make([]byte, gbxcart.EEPROMChunkSize)
		for i := range b {
			if d.gba == nil {
				b[i] = 0xff
			} else {
				b[i] = d.gba.readEEPROM(d.addr+uint32(i), d.eepromSize)
			}
		}
		d.addr += gbxcart.EEPROMChunkSize
	}

	d.emitChunk(b)
}

func (d *Device) fastGB() {
	b := make([]byte, gbxcart.GBFastReadSize)
	for i := range b {
		b[i] = d.readGB(uint16(d.addr) + uint16(i))
	}
	d.addr += gbxcart.GBFastReadSize
	d.emitChunk(b)
}

func (d *Device) fastGBA() {
	b := make([]byte, gbxcart.GBAFastReadSize)
	for i := range b {
		b[i] = d.readGBAROM(d.addr*2 + uint32(i))
	}
	d.addr += gbxcart.GBAFastReadSize / 2
	d.emitChunk(b)
}

func (d *Device) readGB(addr uint16) byte {
	if d.gb == nil {
		return 0xff
	}
	return d.gb.read(addr)
}

func (d *Device) readGBAROM(addr uint32) byte {
	if d.gba == nil {
		return 0xff
	}
	return d.gba.readROM(addr)
}
