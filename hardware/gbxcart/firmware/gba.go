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

package firmware

import "github.com/jetsetilly/gbxfs/hardware/gbxcart"

// the ID returned by an Intel flash cart in ID mode
var intelID = []byte{0x8a, 0x00, 0x15, 0x88}

// GBA is a simulated GBA cartridge. At most one of SRAM, Flash and EEPROM
// should be used.
type GBA struct {
	ROM []byte

	// a SRAM larger than 64KB is banked through the flash cart bank
	// register
	SRAM   []byte
	Flash  *Flash
	EEPROM []byte

	// the cartridge is an Intel flash cart
	Intel bool

	sramBank uint32
	idMode   bool
}

// Flash is the flash memory of a simulated GBA cartridge.
type Flash struct {
	ID   [2]byte
	Data []byte

	bank int
}

// NewFlash is the preferred method of initialisation for the Flash type. The
// memory is erased.
func NewFlash(id [2]byte, size int) *Flash {
	f := &Flash{
		ID:   id,
		Data: make([]byte, size),
	}
	for i := range f.Data {
		f.Data[i] = 0xff
	}
	return f
}

// IsAtmel returns true if the manufacturer ID is that of Atmel.
func (f *Flash) IsAtmel() bool {
	return f.ID[0] == 0x1f
}

func (f *Flash) offset(addr uint32) uint32 {
	return (uint32(f.bank)*0x10000 + addr%0x10000) % uint32(len(f.Data))
}

func (f *Flash) read(addr uint32) byte {
	return f.Data[f.offset(addr)]
}

// programming can only clear bits. Atmel chips erase the page as part of
// the write
func (f *Flash) program(addr uint32, v byte, atmel bool) {
	o := f.offset(addr)
	if atmel {
		f.Data[o] = v
	} else {
		f.Data[o] &= v
	}
}

func (f *Flash) erase(sector int) {
	start := f.offset(uint32(sector) * 0x1000)
	for i := start; i < start+0x1000 && i < uint32(len(f.Data)); i++ {
		f.Data[i] = 0xff
	}
}

func (c *GBA) readROM(addr uint32) byte {
	if c.idMode && addr < uint32(len(intelID)) {
		return intelID[addr]
	}
	if addr >= uint32(len(c.ROM)) {
		return 0x00
	}
	return c.ROM[addr]
}

func (c *GBA) readSRAM(addr uint32) byte {
	if c.Flash != nil {
		return c.Flash.read(addr)
	}
	if len(c.SRAM) == 0 {
		return 0xff
	}
	return c.SRAM[(c.sramBank*0x10000+addr%0x10000)%uint32(len(c.SRAM))]
}

// writes to flash memory through the SRAM commands are ignored
func (c *GBA) writeSRAM(addr uint32, v byte) {
	if c.Flash != nil || len(c.SRAM) == 0 {
		return
	}
	c.SRAM[(c.sramBank*0x10000+addr%0x10000)%uint32(len(c.SRAM))] = v
}

func (c *GBA) flashCartWrite(addr uint32, v uint16) {
	if addr == gbxcart.FlashCartBankRegister {
		c.sramBank = uint32(v & 0x01)
		return
	}
	if !c.Intel {
		return
	}
	switch v {
	case 0x90:
		c.idMode = true
	case 0xff:
		c.idMode = false
	}
}

// a 4Kbit EEPROM read in 64Kbit mode repeats the first eight bytes
func (c *GBA) readEEPROM(addr uint32, size int) byte {
	if len(c.EEPROM) == 0 {
		return 0xff
	}
	if len(c.EEPROM) == 0x200 && size == gbxcart.EEPROM64K {
		return c.EEPROM[addr%gbxcart.EEPROMChunkSize]
	}
	return c.EEPROM[addr%uint32(len(c.EEPROM))]
}

func (c *GBA) writeEEPROM(addr uint32, v byte) {
	if len(c.EEPROM) == 0 {
		return
	}
	c.EEPROM[addr%uint32(len(c.EEPROM))] = v
}
