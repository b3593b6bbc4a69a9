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

package cartridge

import "fmt"

var mapperNames = map[byte]string{
	0x00: "ROM ONLY",
	0x01: "MBC1",
	0x02: "MBC1+RAM",
	0x03: "MBC1+RAM+BATTERY",
	0x05: "MBC2",
	0x06: "MBC2+BATTERY",
	0x08: "ROM+RAM",
	0x09: "ROM+RAM+BATTERY",
	0x0b: "MMM01",
	0x0c: "MMM01+RAM",
	0x0d: "MMM01+RAM+BATTERY",
	0x0f: "MBC3+TIMER+BATTERY",
	0x10: "MBC3+TIMER+RAM+BATTERY",
	0x11: "MBC3",
	0x12: "MBC3+RAM",
	0x13: "MBC3+RAM+BATTERY",
	0x15: "MBC4",
	0x16: "MBC4+RAM",
	0x17: "MBC4+RAM+BATTERY",
	0x19: "MBC5",
	0x1a: "MBC5+RAM",
	0x1b: "MBC5+RAM+BATTERY",
	0x1c: "MBC5+RUMBLE",
	0x1d: "MBC5+RUMBLE+RAM",
	0x1e: "MBC5+RUMBLE+RAM+BATTERY",
	0xfc: "Gameboy Camera",
}

// MapperName returns the name of the GB cartridge type.
func MapperName(cartType byte) string {
	if n, ok := mapperNames[cartType]; ok {
		return n
	}
	return fmt.Sprintf("unknown (%#02x)", cartType)
}
