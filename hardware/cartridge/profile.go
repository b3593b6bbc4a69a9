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
	"fmt"
	"strings"
)

// SRAMSize is the size class of GBA SRAM or Flash memory. The values are
// those stored in save information files and must not change.
type SRAMSize int

// List of valid SRAMSize values.
const (
	SRAMNone SRAMSize = iota
	SRAM256K
	SRAM512K
	SRAM1M
)

func (s SRAMSize) String() string {
	switch s {
	case SRAM256K:
		return "256Kbit"
	case SRAM512K:
		return "512Kbit"
	case SRAM1M:
		return "1Mbit"
	}
	return "none"
}

// EEPROMSize is the size class of GBA EEPROM memory. The values are the same
// as those used with the gbxcart.GBASetEEPROMSize command.
type EEPROMSize int

// List of valid EEPROMSize values.
const (
	EEPROMNone EEPROMSize = iota
	EEPROM4K
	EEPROM64K
)

func (s EEPROMSize) String() string {
	switch s {
	case EEPROM4K:
		return "4Kbit"
	case EEPROM64K:
		return "64Kbit"
	}
	return "none"
}

// Bytes returns the number of bytes in an EEPROM of the size class.
func (s EEPROMSize) Bytes() int {
	switch s {
	case EEPROM4K:
		return 0x200
	case EEPROM64K:
		return 0x2000
	}
	return 0
}

// FlashClass describes the type of memory used for GBA SRAM/Flash saves. The
// values are those stored in save information files and must not change.
type FlashClass int

// List of valid FlashClass values.
const (
	FlashNotChecked FlashClass = iota
	NoFlash
	Flash
	FlashAtmel
	FlashIntel
)

func (f FlashClass) String() string {
	switch f {
	case NoFlash:
		return "SRAM"
	case Flash:
		return "Flash"
	case FlashAtmel:
		return "Flash (Atmel)"
	case FlashIntel:
		return "Intel flash cart"
	}
	return "not checked"
}

// IsFlash returns true if the class is any type of flash memory.
func (f FlashClass) IsFlash() bool {
	return f >= Flash
}

// SaveKind is the type of save memory in a cartridge. It decides how save
// data is transferred.
type SaveKind int

// List of valid SaveKind values.
const (
	SaveNone SaveKind = iota
	SaveGBRAM
	SaveSRAM
	SaveFlash
	SaveFlashAtmel
	SaveEEPROM
)

func (k SaveKind) String() string {
	switch k {
	case SaveGBRAM:
		return "GB RAM"
	case SaveSRAM:
		return "SRAM"
	case SaveFlash:
		return "Flash"
	case SaveFlashAtmel:
		return "Flash (Atmel)"
	case SaveEEPROM:
		return "EEPROM"
	}
	return "none"
}

// Profile is the detected description of a cartridge.
type Profile struct {
	Mode  Mode
	Title string

	// GB header values
	CartType byte
	ROMCode  byte
	RAMCode  byte

	ROMBanks int
	RAMBanks int

	// for GB cartridges RAMEnd is the address of the last byte of RAM. for
	// GBA cartridges it is the number of bytes in each bank of SRAM/Flash
	RAMEnd uint32

	// number of bytes of ROM in a GBA cartridge
	ROMEnd uint32

	SRAM    SRAMSize
	EEPROM  EEPROMSize
	Flash   FlashClass
	FlashID [2]byte

	ChecksumOK bool
	LogoOK     bool
}

// Present returns true if the Profile describes a cartridge.
func (p *Profile) Present() bool {
	return p.Mode != NoCartridge
}

// GameName returns the filename for the ROM of the cartridge.
func (p *Profile) GameName() string {
	return p.Title + p.Mode.Extension()
}

// SaveName returns the filename for the save data of the cartridge.
func (p *Profile) SaveName() string {
	return p.Title + SaveExtension
}

// ROMSize returns the number of bytes in the cartridge ROM.
func (p *Profile) ROMSize() int {
	switch p.Mode {
	case GameBoy:
		return p.ROMBanks * GBBankSize
	case GBA:
		return int(p.ROMEnd)
	}
	return 0
}

// bytes read from each bank of GB RAM. RAM is read in chunks of 64 bytes
// until the end address is reached
func (p *Profile) gbRAMBankSize() int {
	if p.RAMEnd < GBRAMStart {
		return 0
	}
	return int((p.RAMEnd-GBRAMStart+63)/64) * 64
}

// SaveKind returns the type of save memory in the cartridge.
func (p *Profile) SaveKind() SaveKind {
	switch p.Mode {
	case GameBoy:
		if p.RAMEnd > 0 && p.RAMBanks > 0 && p.ChecksumOK {
			return SaveGBRAM
		}
	case GBA:
		if p.RAMEnd > 0 {
			switch p.Flash {
			case FlashAtmel:
				return SaveFlashAtmel
			case Flash, FlashIntel:
				return SaveFlash
			}
			return SaveSRAM
		}
		if p.EEPROM != EEPROMNone {
			return SaveEEPROM
		}
	}
	return SaveNone
}

// SaveSize returns the number of bytes of save data in the cartridge.
func (p *Profile) SaveSize() int {
	switch p.SaveKind() {
	case SaveGBRAM:
		return p.RAMBanks * p.gbRAMBankSize()
	case SaveSRAM, SaveFlash, SaveFlashAtmel:
		return p.RAMBanks * int(p.RAMEnd)
	case SaveEEPROM:
		return p.EEPROM.Bytes()
	}
	return 0
}

// ApplyGBASaveSize sets the RAMEnd and RAMBanks fields from the SRAM size
// class.
func (p *Profile) ApplyGBASaveSize() {
	switch p.SRAM {
	case SRAM256K:
		p.RAMEnd = 0x8000
		p.RAMBanks = 1
	case SRAM512K:
		p.RAMEnd = 0x10000
		p.RAMBanks = 1
	case SRAM1M:
		p.RAMEnd = 0x10000
		p.RAMBanks = 2
	default:
		p.RAMEnd = 0
		p.RAMBanks = 0
	}
}

func (p *Profile) String() string {
	var s strings.Builder

	switch p.Mode {
	case GameBoy:
		s.WriteString(fmt.Sprintf("%s [GB] %s", p.Title, MapperName(p.CartType)))
		s.WriteString(fmt.Sprintf(", %d ROM banks", p.ROMBanks))
		if p.RAMBanks > 0 {
			s.WriteString(fmt.Sprintf(", %d RAM banks", p.RAMBanks))
		}
		if !p.ChecksumOK {
			s.WriteString(", bad header checksum")
		}
	case GBA:
		s.WriteString(fmt.Sprintf("%s [GBA] %dMB ROM", p.Title, p.ROMEnd/(1024*1024)))
		switch p.SaveKind() {
		case SaveEEPROM:
			s.WriteString(fmt.Sprintf(", %s EEPROM", p.EEPROM))
		case SaveNone:
		default:
			s.WriteString(fmt.Sprintf(", %s %s", p.SRAM, p.Flash))
		}
	default:
		s.WriteString("no cartridge")
	}

	return s.String()
}
