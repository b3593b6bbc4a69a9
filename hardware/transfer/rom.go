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

// the number of times a fast read of a single GB bank is retried
const bankRetries = 3

// DumpROM reads the entire ROM of the cartridge. The dst slice is used for
// the data if it is large enough.
func (e *Engine) DumpROM(p *cartridge.Profile, dst []byte) ([]byte, error) {
	e.begin()

	var err error

	switch p.Mode {
	case cartridge.GameBoy:
		dst, err = e.dumpGBROM(p, dst)
	case cartridge.GBA:
		dst, err = e.dumpGBAROM(p, dst)
	default:
		err = curated.Errorf(ErrNoCartridge)
	}

	return dst, e.end(err)
}

func (e *Engine) dumpGBROM(p *cartridge.Profile, dst []byte) ([]byte, error) {
	dst = buffer(dst, p.ROMSize())
	family := banks.FamilyOf(p.CartType, p.Title)

	// bank 1 is read along with bank 0. subsequent banks are read from the
	// switchable area only
	offset := 0
	for bank := 1; bank < p.ROMBanks; bank++ {
		e.setState(BankSetup)

		err := banks.SwitchROM(e.c, family, bank)
		if err != nil {
			return nil, err
		}

		var start uint32 = cartridge.GBBankSize
		if bank == 1 {
			start = 0
		}
		end := offset + int(2*cartridge.GBBankSize-start)

		if e.c.FastRead {
			err = e.fastGBBank(dst[offset:end], start, bank == 1)
		} else {
			err = e.read(dst[offset:end], start, romStream)
		}
		if err != nil {
			return nil, err
		}

		offset = end
	}

	return dst, nil
}

// fastGBBank reads the bank using the fast read command. the bank is read
// again from the beginning if the reader stalls
func (e *Engine) fastGBBank(dst []byte, start uint32, first bool) error {
	for range bankRetries {
		ok, err := e.fastGBAttempt(dst, start, first)
		if err != nil {
			return err
		}
		if ok {
			e.setState(Drain)
			return e.c.StopRead()
		}

		err = e.c.FlushInput()
		if err != nil {
			return err
		}
	}

	return curated.Errorf(gbxcart.DeviceUnresponsive)
}

func (e *Engine) fastGBAttempt(dst []byte, start uint32, first bool) (bool, error) {
	err := e.c.SendNumber(gbxcart.SetStartAddress, start)
	if err != nil {
		return false, err
	}
	err = e.c.SendMode(gbxcart.GBFastRead)
	if err != nil {
		return false, err
	}

	e.setState(TransferLoop)

	cursor := 0
	empty := 0
	for cursor < len(dst) {
		b, err := e.c.Poll(min(gbxcart.ChunkSize, len(dst)-cursor))
		if err != nil {
			return false, err
		}

		if len(b) == 0 {
			empty++
			if empty >= stallPolls {
				return false, nil
			}
			continue
		}
		empty = 0

		cursor += copy(dst[cursor:], b)

		// the fast read command delivers one bank. when bank 0 and bank 1
		// are read together the command must be sent a second time
		if first && cursor == cartridge.GBBankSize {
			err = e.c.SendMode(gbxcart.GBFastRead)
			if err != nil {
				return false, err
			}
		}
	}

	return true, nil
}

func (e *Engine) dumpGBAROM(p *cartridge.Profile, dst []byte) ([]byte, error) {
	dst = buffer(dst, p.ROMSize())
	if len(dst) == 0 {
		return dst, nil
	}

	if e.c.FastRead {
		return dst, e.fastGBAROM(dst)
	}

	return dst, e.read(dst, 0, gbaROMStream)
}

// fastGBAROM reads the ROM using the fast read command, which delivers
// 64KB for each request. if the reader stalls then the read is restarted from
// the previous 64KB boundary
func (e *Engine) fastGBAROM(dst []byte) error {
	err := e.c.SendNumber(gbxcart.SetStartAddress, 0)
	if err != nil {
		return err
	}

	e.setState(TransferLoop)

	cursor := 0
	requested := -1
	empty := 0
	stalls := 0

	for cursor < len(dst) {
		if cursor%gbxcart.GBAFastReadSize == 0 && cursor != requested {
			err = e.c.SendMode(gbxcart.GBAFastRead)
			if err != nil {
				return err
			}
			requested = cursor
		}

		b, err := e.c.Poll(min(gbxcart.ChunkSize, len(dst)-cursor))
		if err != nil {
			return err
		}

		if len(b) > 0 {
			cursor += copy(dst[cursor:], b)
			empty = 0
			continue
		}

		empty++
		if empty < stallPolls {
			continue
		}

		empty = 0
		stalls++
		if stalls > maxResyncs {
			return curated.Errorf(gbxcart.DeviceUnresponsive)
		}

		err = e.c.FlushInput()
		if err != nil {
			return err
		}

		if cursor >= 2*gbxcart.GBAFastReadSize {
			cursor = (cursor/gbxcart.GBAFastReadSize - 1) * gbxcart.GBAFastReadSize
			err = e.c.SendNumber(gbxcart.SetStartAddress, uint32(cursor/2))
			if err != nil {
				return err
			}
		} else {
			cursor = 0
			err = e.c.SendMode(gbxcart.Stop)
			if err != nil {
				return err
			}
			e.c.Settle(gbxcart.BankDelay)
			err = e.c.SendNumber(gbxcart.SetStartAddress, 0)
			if err != nil {
				return err
			}
			e.c.Settle(gbxcart.BankDelay)
		}
		requested = -1
	}

	e.setState(Drain)

	return e.c.StopRead()
}
