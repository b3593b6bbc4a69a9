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

// Package banks switches the memory banks of GB cartridges. The method of
// switching depends on the family of the memory bank controller.
package banks

import (
	"strings"

	"github.com/jetsetilly/gbxfs/curated"
)

// Switcher writes a value to a mapper register of a GB cartridge.
// Implemented by gbxcart.Client.
type Switcher interface {
	SetBank(addr uint16, bank uint8) error
}

// Family is the type of memory bank controller of a GB cartridge.
type Family int

// List of valid Family values.
const (
	ROMOnly Family = iota
	MBC1
	MBC1Hudson
	MBC2Plus
)

func (f Family) String() string {
	switch f {
	case MBC1:
		return "MBC1"
	case MBC1Hudson:
		return "MBC1 (Hudson)"
	case MBC2Plus:
		return "MBC2+"
	}
	return "ROM only"
}

// titles of the MBC1 cartridges that are wired with the Hudson variation
var hudson = []string{"MOMOCOL", "BOMCOL"}

// FamilyOf returns the Family for the cartridge type and title.
func FamilyOf(cartType byte, title string) Family {
	switch {
	case cartType >= 0x05:
		return MBC2Plus
	case cartType >= 0x01:
		for _, h := range hudson {
			if strings.HasPrefix(title, h) {
				return MBC1Hudson
			}
		}
		return MBC1
	}
	return ROMOnly
}

// a strategy switches the ROM bank visible at 0x4000 to 0x7fff
type strategy func(s Switcher, bank int) error

var strategies = map[Family]strategy{
	ROMOnly: func(_ Switcher, _ int) error {
		return nil
	},

	MBC1: func(s Switcher, bank int) error {
		return sequence(s,
			write{0x6000, 0},
			write{0x4000, uint8(bank >> 5)},
			write{0x2000, uint8(bank & 0x1f)},
		)
	},

	MBC1Hudson: func(s Switcher, bank int) error {
		lo := uint8(bank & 0x1f)
		if bank >= 10 {
			lo |= 0x10
		}
		return sequence(s,
			write{0x4000, uint8(bank >> 4)},
			write{0x2000, lo},
		)
	},

	MBC2Plus: func(s Switcher, bank int) error {
		var hi uint8
		if bank >= 256 {
			hi = 1
		}
		return sequence(s,
			write{0x3000, hi},
			write{0x2100, uint8(bank & 0xff)},
		)
	},
}

type write struct {
	addr uint16
	v    uint8
}

func sequence(s Switcher, w ...write) error {
	for _, x := range w {
		if err := s.SetBank(x.addr, x.v); err != nil {
			return err
		}
	}
	return nil
}

// SwitchROM makes the ROM bank visible at 0x4000 to 0x7fff. Bank zero is
// always visible at 0x0000 and should never be switched to.
func SwitchROM(s Switcher, f Family, bank int) error {
	st, ok := strategies[f]
	if !ok {
		return curated.Errorf("banks: no strategy for %v", f)
	}
	return st(s, bank)
}

// EnableRAM makes the cartridge RAM visible at 0xa000. For cartridge types
// up to and including MBC1 the RAM banking mode is also selected.
func EnableRAM(s Switcher, cartType byte) error {
	if cartType <= 0x04 {
		if err := s.SetBank(0x6000, 1); err != nil {
			return err
		}
	}
	return s.SetBank(0x0000, 0x0a)
}

// SwitchRAM makes the RAM bank visible at 0xa000.
func SwitchRAM(s Switcher, bank int) error {
	return s.SetBank(0x4000, uint8(bank))
}

// DisableRAM resets the RAM bank and disables the RAM. Resetting the bank
// also stops the motor of rumble cartridges.
func DisableRAM(s Switcher) error {
	return sequence(s,
		write{0x4000, 0},
		write{0x0000, 0},
	)
}
