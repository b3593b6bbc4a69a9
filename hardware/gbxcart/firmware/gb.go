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

// mapper families of the simulated GB cartridge
type mbc int

const (
	romOnly mbc = iota
	mbc1
	mbc2
	mbc3
	mbc5
)

// GB is a simulated GB cartridge. The mapper is decided by the cartridge type
// byte in the ROM header.
type GB struct {
	ROM []byte
	RAM []byte

	mbc mbc

	romBank    uint32
	ramBank    uint32
	ramEnabled bool

	// MBC1 registers
	lowBank   uint8
	upperBank uint8
	ramMode   bool
}

// NewGB is the preferred method of initialisation for the GB type. The RAM is
// sized to the ramSize argument.
func NewGB(rom []byte, ramSize int) *GB {
	c := &GB{
		ROM:     rom,
		RAM:     make([]byte, ramSize),
		romBank: 1,
		lowBank: 1,
	}

	var t byte
	if len(rom) > 0x147 {
		t = rom[0x147]
	}

	switch {
	case t == 0x00:
		c.mbc = romOnly
	case t <= 0x03:
		c.mbc = mbc1
	case t == 0x05 || t == 0x06:
		c.mbc = mbc2
	case t >= 0x0f && t <= 0x13:
		c.mbc = mbc3
	default:
		c.mbc = mbc5
	}

	return c
}

func (c *GB) read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		return c.romByte(uint32(addr))
	case addr < 0x8000:
		return c.romByte(c.romBank*0x4000 + uint32(addr-0x4000))
	case addr >= 0xa000 && addr < 0xc000:
		if !c.ramEnabled || len(c.RAM) == 0 {
			return 0xff
		}
		return c.RAM[(c.ramBank*0x2000+uint32(addr-0xa000))%uint32(len(c.RAM))]
	}
	return 0xff
}

func (c *GB) romByte(offset uint32) byte {
	if len(c.ROM) == 0 {
		return 0xff
	}
	return c.ROM[offset%uint32(len(c.ROM))]
}

func (c *GB) write(addr uint16, v byte) {
	if addr < 0xa000 || addr >= 0xc000 {
		return
	}
	if !c.ramEnabled || len(c.RAM) == 0 {
		return
	}
	c.RAM[(c.ramBank*0x2000+uint32(addr-0xa000))%uint32(len(c.RAM))] = v
}

func (c *GB) writeRegister(addr uint16, v uint8) {
	switch c.mbc {
	case mbc1:
		switch {
		case addr < 0x2000:
			c.ramEnabled = v&0x0f == 0x0a
		case addr < 0x4000:
			c.lowBank = v & 0x1f
			if c.lowBank == 0 {
				c.lowBank = 1
			}
		case addr < 0x6000:
			c.upperBank = v & 0x03
		case addr < 0x8000:
			c.ramMode = v&0x01 == 0x01
		}
		c.romBank = uint32(c.lowBank)
		if !c.ramMode {
			c.romBank |= uint32(c.upperBank) << 5
			c.ramBank = 0
		} else {
			c.ramBank = uint32(c.upperBank)
		}

	case mbc2:
		if addr >= 0x4000 {
			return
		}
		if addr&0x100 == 0 {
			c.ramEnabled = v&0x0f == 0x0a
			return
		}
		c.romBank = uint32(v & 0x0f)
		if c.romBank == 0 {
			c.romBank = 1
		}

	case mbc3:
		switch {
		case addr < 0x2000:
			c.ramEnabled = v&0x0f == 0x0a
		case addr < 0x4000:
			c.romBank = uint32(v & 0x7f)
			if c.romBank == 0 {
				c.romBank = 1
			}
		case addr < 0x6000:
			c.ramBank = uint32(v & 0x03)
		}

	case mbc5:
		switch {
		case addr < 0x2000:
			c.ramEnabled = v&0x0f == 0x0a
		case addr < 0x3000:
			c.romBank = c.romBank&0x100 | uint32(v)
		case addr < 0x4000:
			c.romBank = c.romBank&0xff | uint32(v&0x01)<<8
		case addr < 0x6000:
			c.ramBank = uint32(v & 0x0f)
		}

	default:
		if addr < 0x2000 {
			c.ramEnabled = v&0x0f == 0x0a
		}
	}
}
