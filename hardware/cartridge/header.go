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

import (
	"bytes"

	"github.com/jetsetilly/gbxfs/curated"
)

// Sentinel error patterns.
const (
	HeaderTooShort = "cartridge: header too short (%d bytes)"
	BadLogo        = "cartridge: logo does not match"
	BadROMSize     = "cartridge: ROM size code %#02x is not valid"
)

// GB header layout.
const (
	GBHeaderSize   = 0x180
	GBTitleStart   = 0x134
	GBTitleEnd     = 0x143
	GBCartType     = 0x147
	GBROMSize      = 0x148
	GBRAMSize      = 0x149
	GBChecksumFrom = 0x134
	GBChecksumTo   = 0x14c
	GBChecksum     = 0x14d

	GBBankSize = 0x4000
	GBRAMStart = 0xa000
)

// GBA header layout.
const (
	GBAHeaderSize = 0xc0
	GBALogoStart  = 0x04
	GBALogoEnd    = 0x9f
	GBATitleStart = 0xa0
	GBATitleEnd   = 0xab
)

// GBALogo is the logo data found at GBALogoStart in every GBA ROM.
var GBALogo = []byte{
	0x24, 0xff, 0xae, 0x51, 0x69, 0x9a, 0xa2, 0x21, 0x3d, 0x84, 0x82, 0x0a, 0x84, 0xe4, 0x09, 0xad,
	0x11, 0x24, 0x8b, 0x98, 0xc0, 0x81, 0x7f, 0x21, 0xa3, 0x52, 0xbe, 0x19, 0x93, 0x09, 0xce, 0x20,
	0x10, 0x46, 0x4a, 0x4a, 0xf8, 0x27, 0x31, 0xec, 0x58, 0xc7, 0xe8, 0x33, 0x82, 0xe3, 0xce, 0xbf,
	0x85, 0xf4, 0xdf, 0x94, 0xce, 0x4b, 0x09, 0xc1, 0x94, 0x56, 0x8a, 0xc0, 0x13, 0x72, 0xa7, 0xfc,
	0x9f, 0x84, 0x4d, 0x73, 0xa3, 0xca, 0x9a, 0x61, 0x58, 0x97, 0xa3, 0x27, 0xfc, 0x03, 0x98, 0x76,
	0x23, 0x1d, 0xc7, 0x61, 0x03, 0x04, 0xae, 0x56, 0xbf, 0x38, 0x84, 0x00, 0x40, 0xa7, 0x0e, 0xfd,
	0xff, 0x52, 0xfe, 0x03, 0x6f, 0x95, 0x30, 0xf1, 0x97, 0xfb, 0xc0, 0x85, 0x60, 0xd6, 0x80, 0x25,
	0xa9, 0x63, 0xbe, 0x03, 0x01, 0x4e, 0x38, 0xe2, 0xf9, 0xa2, 0x34, 0xff, 0xbb, 0x3e, 0x03, 0x44,
	0x78, 0x00, 0x90, 0xcb, 0x88, 0x11, 0x3a, 0x94, 0x65, 0xc0, 0x7c, 0x63, 0x87, 0xf0, 0x3c, 0xaf,
	0xd6, 0x25, 0xe4, 0x8b, 0x38, 0x0a, 0xac, 0x72, 0x21, 0xd4, 0xf8, 0x07,
}

// MaxGBROMCode is the largest ROM size code in a GB header. It describes 8MB
// of ROM.
const MaxGBROMCode = 8

// GBROMBanks returns the number of 16KB ROM banks for the ROM size code in a
// GB header. Zero is returned for codes larger than MaxGBROMCode.
func GBROMBanks(code byte) int {
	if code == 0 {
		return 2
	}
	if code > MaxGBROMCode {
		return 0
	}
	return 2 << code
}

// GBRAM returns the number of 8KB RAM banks and the address of the last byte
// of RAM for the cartridge type and RAM size code in a GB header. The MBC2
// has 512 bytes of RAM built in.
func GBRAM(cartType byte, code byte) (banks int, end uint32) {
	if cartType == 0x06 {
		banks = 1
		end = 0xa1ff
	}

	switch code {
	case 1:
		banks = 1
		end = 0xa7ff
	case 2:
		banks = 1
		end = 0xbfff
	case 3:
		banks = 4
		end = 0xbfff
	case 4:
		banks = 16
		end = 0xbfff
	case 5:
		banks = 8
		end = 0xbfff
	}

	return banks, end
}

// GBHeaderChecksum calculates the checksum of a GB header. The result should
// be compared with the value at GBChecksum.
func GBHeaderChecksum(header []byte) byte {
	var x byte
	for _, b := range header[GBChecksumFrom : GBChecksumTo+1] {
		x = x - b - 1
	}
	return x
}

// ParseGBHeader creates a Profile from the first GBHeaderSize bytes of a GB
// ROM. If the ROM size code is not valid then the returned error will be
// BadROMSize, but the Profile will still contain the title.
func ParseGBHeader(header []byte) (Profile, error) {
	if len(header) < GBHeaderSize {
		return Profile{}, curated.Errorf(HeaderTooShort, len(header))
	}

	p := Profile{
		Mode:     GameBoy,
		Title:    FilterTitle(header[GBTitleStart:GBTitleEnd+1], true),
		CartType: header[GBCartType],
		ROMCode:  header[GBROMSize],
		RAMCode:  header[GBRAMSize],
	}

	p.ROMBanks = GBROMBanks(p.ROMCode)
	p.RAMBanks, p.RAMEnd = GBRAM(p.CartType, p.RAMCode)
	p.ChecksumOK = GBHeaderChecksum(header) == header[GBChecksum]

	if p.ROMBanks == 0 {
		return p, curated.Errorf(BadROMSize, p.ROMCode)
	}

	return p, nil
}

// ParseGBAHeader creates a Profile from the first GBAHeaderSize bytes of a
// GBA ROM. If the logo does not match then the returned error will be
// BadLogo, but the Profile will still contain the title.
//
// The Profile describes the ROM and save memory as absent. Those details must
// be decided by probing the cartridge.
func ParseGBAHeader(header []byte) (Profile, error) {
	if len(header) < GBAHeaderSize {
		return Profile{}, curated.Errorf(HeaderTooShort, len(header))
	}

	p := Profile{
		Mode:  GBA,
		Title: FilterTitle(header[GBATitleStart:GBATitleEnd+1], false),
	}

	p.LogoOK = bytes.Equal(header[GBALogoStart:GBALogoEnd+1], GBALogo)
	if !p.LogoOK {
		return p, curated.Errorf(BadLogo)
	}

	return p, nil
}
