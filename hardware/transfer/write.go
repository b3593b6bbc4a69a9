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
	"github.com/jetsetilly/gbxfs/hardware/cartridge/saveinfo"
	"github.com/jetsetilly/gbxfs/hardware/gbxcart"
	"github.com/jetsetilly/gbxfs/logger"
)

// flash memory is erased in sectors of this size
const flashSectorSize = 0x1000

// the number of times the first byte of an erased sector is checked before
// the erase is considered to have failed
const eraseChecks = 100

// WriteRAM writes data to the save memory of the cartridge. The length of
// data must be the same as the size of the save memory.
//
// Nothing is undone if an error occurs. In that case the save memory will
// have been partially written to.
func (e *Engine) WriteRAM(p *cartridge.Profile, data []byte) error {
	e.begin()

	if p.SaveKind() == cartridge.SaveNone {
		return e.end(curated.Errorf(ErrNoSaveMemory))
	}

	if len(data) != p.SaveSize() {
		return e.end(curated.Errorf(SizeMismatch, len(data), p.SaveSize()))
	}

	// the type and size of GBA save memory can not always be detected
	// after it has been erased
	if p.Mode == cartridge.GBA && e.Info != nil {
		err := e.Info.Write(p.Title, saveinfo.FromProfile(p))
		if err != nil {
			return e.end(err)
		}
	}

	var err error

	switch p.SaveKind() {
	case cartridge.SaveGBRAM:
		err = e.writeGBRAM(p, data)
	case cartridge.SaveSRAM:
		err = e.writeBanked(p, data, e.writeSRAMBank)
	case cartridge.SaveFlash:
		err = e.writeBanked(p, data, e.writeFlashBank)
	case cartridge.SaveFlashAtmel:
		err = e.writeBanked(p, data, e.writeAtmelBank)
	case cartridge.SaveEEPROM:
		err = e.writeEEPROM(p, data)
	}

	if err == nil {
		logger.Logf(logger.Allow, "transfer", "wrote %d bytes of %s to %s", len(data), p.SaveKind(), p.Title)
	}

	return e.end(err)
}

// writeBlocks sends data in blocks of the specified size using the write
// command. each block is acknowledged by the reader
func (e *Engine) writeBlocks(cmd byte, addr uint32, data []byte, size int) error {
	err := e.c.SendNumber(gbxcart.SetStartAddress, addr)
	if err != nil {
		return err
	}

	e.setState(TransferLoop)

	for i := 0; i < len(data); i += size {
		err = e.c.WriteBlock(cmd, data[i:i+size])
		if err != nil {
			return err
		}
		err = e.c.WaitForAck()
		if err != nil {
			return err
		}
	}

	return nil
}

func (e *Engine) writeGBRAM(p *cartridge.Profile, data []byte) error {
	bankSize := len(data) / p.RAMBanks

	err := e.enableGBRAM(p)
	if err != nil {
		return err
	}

	for bank := range p.RAMBanks {
		e.setState(BankSetup)

		err = banks.SwitchRAM(e.c, bank)
		if err != nil {
			return err
		}

		err = e.writeBlocks(gbxcart.WriteRAM, cartridge.GBRAMStart, data[bank*bankSize:(bank+1)*bankSize], gbxcart.ChunkSize)
		if err != nil {
			return err
		}
	}

	e.setState(Drain)

	return banks.DisableRAM(e.c)
}

// writeBanked calls the write function for each bank of GBA save memory. the
// first bank is selected again afterwards
func (e *Engine) writeBanked(p *cartridge.Profile, data []byte, write func([]byte) error) error {
	bankSize := int(p.RAMEnd)

	for bank := range p.RAMBanks {
		e.setState(BankSetup)

		if bank > 0 {
			err := e.switchSaveBank(p, bank)
			if err != nil {
				return err
			}
		}

		err := write(data[bank*bankSize : (bank+1)*bankSize])
		if err != nil {
			return err
		}

		if bank > 0 {
			e.setState(Drain)
			err = e.switchSaveBank(p, 0)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func (e *Engine) writeSRAMBank(data []byte) error {
	return e.writeBlocks(gbxcart.GBAWriteSRAM, 0, data, gbxcart.ChunkSize)
}

// Atmel flash is written in pages. the page is erased by the chip as part
// of the write
func (e *Engine) writeAtmelBank(data []byte) error {
	return e.writeBlocks(gbxcart.GBAFlashWriteAtmel, 0, data, gbxcart.AtmelPageSize)
}

// other flash chips must have each sector erased before it is written
func (e *Engine) writeFlashBank(data []byte) error {
	for sector := 0; sector*flashSectorSize < len(data); sector++ {
		addr := uint32(sector * flashSectorSize)

		e.setState(BankSetup)

		err := e.eraseSector(sector, addr)
		if err != nil {
			return err
		}

		err = e.writeBlocks(gbxcart.GBAFlashWrite, addr, data[addr:addr+flashSectorSize], gbxcart.ChunkSize)
		if err != nil {
			return err
		}
	}

	return nil
}

func (e *Engine) eraseSector(sector int, addr uint32) error {
	err := e.c.SendNumber(gbxcart.GBAFlashSectorErase, uint32(sector))
	if err != nil {
		return err
	}

	for range eraseChecks {
		b, err := e.c.Sample(addr, gbxcart.GBAReadSRAM, gbxcart.ChunkSize)
		if err != nil {
			return err
		}
		if len(b) > 0 && b[0] == 0xff {
			return nil
		}
		e.c.Settle(gbxcart.BankDelay)
	}

	return curated.Errorf(gbxcart.DeviceUnresponsive)
}

func (e *Engine) writeEEPROM(p *cartridge.Profile, data []byte) error {
	err := e.c.SendNumber(gbxcart.GBASetEEPROMSize, uint32(p.EEPROM))
	if err != nil {
		return err
	}

	err = e.writeBlocks(gbxcart.GBAWriteEEPROM, 0, data, gbxcart.EEPROMChunkSize)
	if err != nil {
		return err
	}

	e.setState(Drain)

	return nil
}
