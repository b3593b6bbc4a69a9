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

package transfer

import (
	"github.com/jetsetilly/gbxfs/curated"
	"github.com/jetsetilly/gbxfs/hardware/cartridge"
	"github.com/jetsetilly/gbxfs/hardware/cartridge/banks"
	"github.com/jetsetilly/gbxfs/hardware/gbxcart"
)

// DumpRAM reads the entire save memory of the cartridge. The dst slice is
// used for the data if it is large enough.
//
// The ErrNoSaveMemory error is returned if the cartridge has no save memory.
func (e *Engine) DumpRAM(p *cartridge.Profile, dst []byte) ([]byte, error) {
	e.begin()

	var err error

	switch p.SaveKind() {
	case cartridge.SaveNone:
		err = curated.Errorf(ErrNoSaveMemory)
	case cartridge.SaveGBRAM:
		dst, err = e.dumpGBRAM(p, dst)
	case cartridge.SaveEEPROM:
		dst, err = e.dumpEEPROM(p, dst)
	default:
		dst, err = e.dumpSRAM(p, dst)
	}

	return dst, e.end(err)
}

// reading from the ROM before accessing the RAM is required by some MBC2
// cartridges
func (e *Engine) mbc2Fix() error {
	_, err := e.c.Sample(0, gbxcart.ReadROMRAM, gbxcart.ChunkSize)
	return err
}

func (e *Engine) enableGBRAM(p *cartridge.Profile) error {
	err := e.mbc2Fix()
	if err != nil {
		return err
	}
	return banks.EnableRAM(e.c, p.CartType)
}

func (e *Engine) dumpGBRAM(p *cartridge.Profile, dst []byte) ([]byte, error) {
	dst = buffer(dst, p.SaveSize())
	bankSize := len(dst) / p.RAMBanks

	err := e.enableGBRAM(p)
	if err != nil {
		return nil, err
	}

	for bank := range p.RAMBanks {
		e.setState(BankSetup)

		err = banks.SwitchRAM(e.c, bank)
		if err != nil {
			return nil, err
		}

		err = e.read(dst[bank*bankSize:(bank+1)*bankSize], cartridge.GBRAMStart, romStream)
		if err != nil {
			return nil, err
		}
	}

	return dst, banks.DisableRAM(e.c)
}

// switchSaveBank selects the bank of GBA save memory. Flash chips have their
// own bank command. 1Mbit SRAM is banked through the flash cart register
func (e *Engine) switchSaveBank(p *cartridge.Profile, bank int) error {
	if p.Flash.IsFlash() {
		return e.c.SendNumber(gbxcart.GBAFlashSetBank, uint32(bank))
	}
	return e.c.FlashWriteAddressByte(gbxcart.FlashCartBankRegister, uint16(bank))
}

func (e *Engine) dumpSRAM(p *cartridge.Profile, dst []byte) ([]byte, error) {
	dst = buffer(dst, p.SaveSize())
	bankSize := int(p.RAMEnd)

	for bank := range p.RAMBanks {
		e.setState(BankSetup)

		if bank > 0 {
			err := e.switchSaveBank(p, bank)
			if err != nil {
				return nil, err
			}
		}

		err := e.read(dst[bank*bankSize:(bank+1)*bankSize], 0, sramStream)
		if err != nil {
			return nil, err
		}

		if bank > 0 {
			err = e.switchSaveBank(p, 0)
			if err != nil {
				return nil, err
			}
		}
	}

	return dst, nil
}

func (e *Engine) dumpEEPROM(p *cartridge.Profile, dst []byte) ([]byte, error) {
	dst = buffer(dst, p.SaveSize())

	err := e.c.SendNumber(gbxcart.GBASetEEPROMSize, uint32(p.EEPROM))
	if err != nil {
		return nil, err
	}

	return dst, e.read(dst, 0, eepromStream)
}
