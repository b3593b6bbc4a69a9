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

import "github.com/jetsetilly/gbxfs/hardware/cartridge"

// GBROM returns a GB ROM image with a valid header. The size of the image
// is decided by the ROM size code. The first byte of every bank after the
// first is the bank number.
func GBROM(title string, cartType byte, romCode byte, ramCode byte) []byte {
	banks := cartridge.GBROMBanks(romCode)
	rom := make([]byte, banks*cartridge.GBBankSize)

	for i := range rom {
		rom[i] = byte(i) ^ byte(i>>8) ^ byte(i>>14)
	}
	for b := 1; b < banks; b++ {
		rom[b*cartridge.GBBankSize] = byte(b)
	}

	h := rom[:cartridge.GBHeaderSize]
	for i := cartridge.GBTitleStart; i <= cartridge.GBTitleEnd; i++ {
		h[i] = 0
	}
	copy(h[cartridge.GBTitleStart:cartridge.GBTitleEnd+1], title)
	h[cartridge.GBCartType] = cartType
	h[cartridge.GBROMSize] = romCode
	h[cartridge.GBRAMSize] = ramCode
	h[cartridge.GBChecksum] = cartridge.GBHeaderChecksum(h)

	return rom
}

// GBAROM returns a GBA ROM image with a valid logo and the title. No 64 byte
// block of the image is entirely zero.
func GBAROM(title string, size int) []byte {
	rom := make([]byte, size)

	for i := range rom {
		rom[i] = byte(i) ^ byte(i>>8) ^ byte(i>>16) | 0x01
	}

	copy(rom[cartridge.GBALogoStart:], cartridge.GBALogo)
	for i := cartridge.GBATitleStart; i <= cartridge.GBATitleEnd; i++ {
		rom[i] = 0
	}
	copy(rom[cartridge.GBATitleStart:cartridge.GBATitleEnd+1], title)

	return rom
}

// Pattern returns n bytes of data suitable for filling simulated save
// memory. No eight byte block repeats within the first 1KB and no byte is
// 0x00 or 0xff. Successive 64KB banks of the data differ.
func Pattern(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		v := byte(i)*7 + byte(i>>8)*13 + byte(i>>16)*29 + byte(i>>3) + seed
		if v == 0x00 || v == 0xff {
			v = 0x5a
		}
		b[i] = v
	}
	return b
}
