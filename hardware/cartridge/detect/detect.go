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

// Package detect identifies the cartridge inserted in the reader. The header
// is read to decide between a GB and a GBA cartridge. For GBA cartridges the
// size of the ROM and the type and size of the save memory are not recorded
// in the header and so must be discovered by probing the cartridge.
//
// The probes are heuristics. Save information files, managed by the saveinfo
// package, override the result of the save memory probes.
package detect

import (
	"strings"

	"github.com/jetsetilly/gbxfs/curated"
	"github.com/jetsetilly/gbxfs/hardware/cartridge"
	"github.com/jetsetilly/gbxfs/hardware/cartridge/saveinfo"
	"github.com/jetsetilly/gbxfs/hardware/gbxcart"
	"github.com/jetsetilly/gbxfs/logger"
)

// ROM size probe. One block is sampled every romStride bytes starting at
// romStart. Every romWindowSamples samples (4MB) the number of blocks that
// were all zero is compared with romEmptyBlocks.
const (
	romStart         = 0x1ffc0
	romStride        = 0x20000
	romWindowSamples = 32
	romWindows       = 8
	romWindowMB      = 4
	romEmptyBlocks   = 30
)

// SRAM/Flash probe.
const (
	sramSamples        = 32
	sramSampleStride   = 0x400
	sramMirror         = 0x8000
	sramThoroughSize   = 0x8000
	sramBlankLimit     = 2000
	sramDuplicateLimit = 2000
	sramTestByte       = 0x91
	sramTestByteAlt    = 0xa6
)

// EEPROM probe.
const (
	eepromProbeSize  = 0x200
	eepromBlankLimit = 512
	eepromRepeatMin  = 400
	eepromEqualMin   = 512
)

// the number of times a stream is restarted after a short read before
// giving up
const streamRetries = 3

// Intel flash carts are only detected with this version of the firmware or
// later.
const intelFirmware = 10

// games with SRAM that confuse the probe. they are all 512Kbit
var knownSRAM512K = []string{"CHUCHU ROCKE", "CHUCHUROCKET"}

// flash chips with a known size
var knownFlash = map[[2]byte]cartridge.SRAMSize{
	{0xc2, 0x09}: cartridge.SRAM1M,   // Macronix MX29L010
	{0x62, 0x13}: cartridge.SRAM1M,   // SANYO LE26FV10N1TS
	{0xbf, 0xd4}: cartridge.SRAM512K, // SST 39VF512
	{0xc2, 0x1c}: cartridge.SRAM512K, // Macronix MX29L512
	{0x32, 0x1b}: cartridge.SRAM512K, // Panasonic MN63F805MNP
}

// Detector probes the cartridge in the reader.
type Detector struct {
	c    *gbxcart.Client
	info *saveinfo.Store
}

// NewDetector is the preferred method of initialisation for the Detector
// type. The info argument can be nil, in which case save information files
// are never consulted.
func NewDetector(c *gbxcart.Client, info *saveinfo.Store) *Detector {
	return &Detector{c: c, info: info}
}

// Identify reads the header of the inserted cartridge and returns a Profile
// describing it. The GBA header is tried first at 3.3V. If the logo does not
// match then the GB header is read and the voltage raised to 5V if a title is
// found.
//
// A Profile with a mode of cartridge.NoCartridge is returned if nothing
// sensible was found.
func (d *Detector) Identify() (cartridge.Profile, error) {
	err := d.c.SendMode(gbxcart.Voltage3V)
	if err != nil {
		return cartridge.Profile{}, err
	}

	h, err := d.ReadHeader(cartridge.GBA)
	if err != nil {
		return cartridge.Profile{}, err
	}

	p, err := cartridge.ParseGBAHeader(h)
	if err == nil {
		err = d.probeGBA(&p)
		if err != nil {
			return cartridge.Profile{}, err
		}
		logger.Log(logger.Allow, "detect", p.String())
		return p, nil
	}
	if !curated.Is(err, cartridge.BadLogo) {
		return cartridge.Profile{}, err
	}

	h, err = d.ReadHeader(cartridge.GameBoy)
	if err != nil {
		return cartridge.Profile{}, err
	}

	p, err = cartridge.ParseGBHeader(h)
	if err != nil && !curated.Is(err, cartridge.BadROMSize) {
		return cartridge.Profile{}, err
	}

	if len(p.Title) < 2 {
		return cartridge.Profile{}, nil
	}

	// a garbled header is treated as an empty slot. the header is read
	// again on the next poll
	if err != nil {
		logger.Logf(logger.Allow, "detect", "%s: %v", p.Title, err)
		return cartridge.Profile{}, nil
	}

	err = d.c.SendMode(gbxcart.Voltage5V)
	if err != nil {
		return cartridge.Profile{}, err
	}

	logger.Log(logger.Allow, "detect", p.String())

	return p, nil
}

func (d *Detector) probeGBA(p *cartridge.Profile) error {
	var err error

	p.ROMEnd, err = d.DetectROMSize()
	if err != nil {
		return err
	}

	intel := false
	if d.c.Firmware >= intelFirmware {
		intel, err = d.DetectIntel()
		if err != nil {
			return err
		}
	}

	if intel {
		logger.Log(logger.Allow, "detect", "intel flash cart: skipping EEPROM probe")
	} else {
		var confirm bool
		p.EEPROM, confirm, err = d.DetectEEPROM()
		if err != nil {
			return err
		}

		// a repeating EEPROM can also be SRAM or Flash
		if confirm {
			p.SRAM, p.Flash, p.FlashID, err = d.DetectRAMOrFlash(p.Title)
			if err != nil {
				return err
			}
			if p.SRAM != cartridge.SRAMNone {
				p.EEPROM = cartridge.EEPROMNone
			}
		}
	}

	if p.EEPROM == cartridge.EEPROMNone && p.SRAM == cartridge.SRAMNone {
		p.SRAM, p.Flash, p.FlashID, err = d.DetectRAMOrFlash(p.Title)
		if err != nil {
			return err
		}
	}

	if d.info != nil {
		info, ok, err := d.info.Load(p.Title)
		if err != nil {
			return err
		}
		if ok {
			logger.Logf(logger.Allow, "detect", "using save information for %s (%s)", p.Title, info)
			info.Apply(p)
		}
	}

	p.ApplyGBASaveSize()

	return nil
}

// ReadHeader reads the header of the cartridge using the read command for
// the mode.
func (d *Detector) ReadHeader(mode cartridge.Mode) ([]byte, error) {
	switch mode {
	case cartridge.GameBoy:
		return d.stream(0, gbxcart.ReadROMRAM, cartridge.GBHeaderSize, gbxcart.ChunkSize, 1)
	case cartridge.GBA:
		return d.stream(0, gbxcart.GBAReadROM, cartridge.GBAHeaderSize, gbxcart.ChunkSize, 2)
	}
	return nil, nil
}

// stream reads n bytes from addr in chunks of the specified size. the address
// sent to the reader is divided by div. a short read is recovered by
// restarting the stream at the first missing byte
func (d *Detector) stream(addr uint32, mode byte, n int, chunk int, div uint32) ([]byte, error) {
	err := d.c.SendNumber(gbxcart.SetStartAddress, addr/div)
	if err != nil {
		return nil, err
	}
	err = d.c.SendMode(mode)
	if err != nil {
		return nil, err
	}

	b := make([]byte, 0, n)
	retries := 0
	for len(b) < n {
		r, err := d.c.ReadBlock(chunk)
		if err != nil {
			return nil, err
		}

		if len(r) < chunk {
			retries++
			if retries > streamRetries {
				_ = d.c.StopRead()
				return nil, curated.Errorf(gbxcart.DeviceUnresponsive)
			}
			// EEPROM reads can not be resumed part way through
			if mode == gbxcart.GBAReadEEPROM {
				b = b[:0]
			}
			err = d.c.Resync((addr+uint32(len(b)))/div, mode)
			if err != nil {
				return nil, err
			}
			continue
		}

		b = append(b, r...)
		if len(b) < n {
			err = d.c.ContinueRead()
			if err != nil {
				return nil, err
			}
		}
	}

	return b[:n], d.c.StopRead()
}

// DetectROMSize returns the number of bytes in the ROM of a GBA cartridge.
// The reader returns zero for addresses past the end of the ROM.
func (d *Detector) DetectROMSize() (uint32, error) {
	var size uint32
	addr := uint32(romStart)

	for range romWindows {
		empty := 0
		for range romWindowSamples {
			b, err := d.c.Sample(addr/2, gbxcart.GBAReadROM, gbxcart.ChunkSize)
			if err != nil {
				return 0, err
			}
			if countValue(b, 0x00) == gbxcart.ChunkSize {
				empty++
			}
			addr += romStride
		}

		if empty >= romEmptyBlocks {
			break
		}
		size += romWindowMB
	}

	return size * 1024 * 1024, nil
}

// DetectIntel returns true if the cartridge is an Intel flash cart. The
// cartridge is put into ID mode and the first four bytes of the ROM are
// compared with the known IDs.
func (d *Detector) DetectIntel() (bool, error) {
	err := d.c.FlashWriteAddressByte(0, 0xff)
	if err != nil {
		return false, err
	}
	d.c.Settle(gbxcart.BankDelay)

	// first read after the reset is discarded
	_, err = d.c.Sample(0, gbxcart.GBAReadROM, gbxcart.ChunkSize)
	if err != nil {
		return false, err
	}

	err = d.c.FlashWriteAddressByte(0, 0x90)
	if err != nil {
		return false, err
	}
	d.c.Settle(gbxcart.ModeDelay)

	b, err := d.c.Sample(0, gbxcart.GBAReadROM, gbxcart.ChunkSize)
	if err != nil {
		return false, err
	}

	intel := false
	if len(b) >= 4 {
		intel = (b[0] == 0x8a && b[1] == 0x00 && b[2] == 0x15 && b[3] == 0x88) ||
			(b[0] == 0x20 && b[1] == 0x00 && b[2] == 0xc4 && b[3] == 0x88)
	}

	// back to read mode
	err = d.c.FlashWriteAddressByte(0, 0xff)
	if err != nil {
		return false, err
	}
	d.c.Settle(gbxcart.BankDelay)

	return intel, nil
}

// DetectEEPROM returns the size of the EEPROM in a GBA cartridge. A 4Kbit
// EEPROM read as a 64Kbit EEPROM repeats the first eight bytes. Unfortunately
// so can some SRAM and Flash cartridges, in which case the confirm value is
// true and the result should only be accepted if the SRAM/Flash probe finds
// nothing.
func (d *Detector) DetectEEPROM() (size cartridge.EEPROMSize, confirm bool, err error) {
	err = d.c.SendNumber(gbxcart.GBASetEEPROMSize, gbxcart.EEPROM64K)
	if err != nil {
		return cartridge.EEPROMNone, false, err
	}

	b, err := d.stream(0, gbxcart.GBAReadEEPROM, eepromProbeSize, gbxcart.EEPROMChunkSize, 1)
	if err != nil {
		return cartridge.EEPROMNone, false, err
	}

	if countBlank(b) >= eepromBlankLimit {
		return cartridge.EEPROMNone, false, nil
	}

	repeated := 0
	for i := gbxcart.EEPROMChunkSize; i < len(b); i++ {
		if b[i] == b[i%gbxcart.EEPROMChunkSize] {
			repeated++
		}
	}
	if repeated >= eepromRepeatMin {
		return cartridge.EEPROM4K, true, nil
	}

	// some 4Kbit EEPROMs can be read as 64Kbit EEPROMs without repeating the
	// first eight bytes. the second 4Kbit is a copy of the first
	b, err = d.stream(0, gbxcart.GBAReadEEPROM, eepromProbeSize*2, gbxcart.EEPROMChunkSize, 1)
	if err != nil {
		return cartridge.EEPROMNone, false, err
	}

	equal := 0
	for i := range eepromProbeSize {
		if b[i] == b[i+eepromProbeSize] {
			equal++
		}
	}
	if equal >= eepromEqualMin {
		return cartridge.EEPROM4K, false, nil
	}

	return cartridge.EEPROM64K, false, nil
}

// DetectRAMOrFlash returns the size and type of the SRAM or Flash memory in a
// GBA cartridge. The ID of the flash chip is also returned if one was read.
//
// A blank SRAM is tested by writing a single byte. The original value is
// restored if the write succeeded.
func (d *Detector) DetectRAMOrFlash(title string) (cartridge.SRAMSize, cartridge.FlashClass, [2]byte, error) {
	var id [2]byte

	for _, t := range knownSRAM512K {
		if strings.HasPrefix(title, t) {
			return cartridge.SRAM512K, cartridge.FlashNotChecked, id, nil
		}
	}

	// cartridges with an EEPROM can return random data on the first read
	_, err := d.c.Sample(0, gbxcart.GBAReadSRAM, gbxcart.ChunkSize)
	if err != nil {
		return cartridge.SRAMNone, cartridge.FlashNotChecked, id, err
	}

	blank := 0
	for x := range sramSamples {
		b, err := d.c.Sample(uint32(x*sramSampleStride), gbxcart.GBAReadSRAM, gbxcart.ChunkSize)
		if err != nil {
			return cartridge.SRAMNone, cartridge.FlashNotChecked, id, err
		}
		blank += countBlank(b)
	}

	if blank >= sramBlankLimit {
		b, err := d.stream(0, gbxcart.GBAReadSRAM, sramThoroughSize, gbxcart.ChunkSize, 1)
		if err != nil {
			return cartridge.SRAMNone, cartridge.FlashNotChecked, id, err
		}
		blank = countBlank(b)
	}

	if blank == sramThoroughSize {
		ok, err := d.writeTest()
		if err != nil {
			return cartridge.SRAMNone, cartridge.FlashNotChecked, id, err
		}
		if ok {
			return cartridge.SRAM256K, cartridge.FlashNotChecked, id, nil
		}
	} else {
		// a 256Kbit SRAM is mirrored at 0x8000
		dup := 0
		for x := range sramSamples {
			addr := uint32(x * sramSampleStride)
			a, err := d.c.Sample(addr, gbxcart.GBAReadSRAM, gbxcart.ChunkSize)
			if err != nil {
				return cartridge.SRAMNone, cartridge.FlashNotChecked, id, err
			}
			b, err := d.c.Sample(addr+sramMirror, gbxcart.GBAReadSRAM, gbxcart.ChunkSize)
			if err != nil {
				return cartridge.SRAMNone, cartridge.FlashNotChecked, id, err
			}
			dup += countEqual(a, b)
		}
		if dup >= sramDuplicateLimit {
			return cartridge.SRAM256K, cartridge.FlashNotChecked, id, nil
		}
	}

	flash, id, err := d.classify()
	if err != nil {
		return cartridge.SRAMNone, cartridge.FlashNotChecked, id, err
	}

	var size cartridge.SRAMSize

	switch flash {
	case cartridge.NoFlash:
		size, err = d.sramBanked()
	case cartridge.FlashAtmel:
		size = cartridge.SRAM512K
	case cartridge.Flash:
		var ok bool
		if size, ok = knownFlash[id]; !ok {
			size, err = d.flashBanked()
		}
	default:
		logger.Log(logger.Allow, "detect", "no SRAM or Flash")
		return cartridge.SRAMNone, cartridge.FlashNotChecked, id, nil
	}

	if err != nil {
		return cartridge.SRAMNone, cartridge.FlashNotChecked, id, err
	}

	return size, flash, id, nil
}

// writeTest writes a test value to the first byte of SRAM and reads it back.
// the original value is restored if the write succeeded
func (d *Detector) writeTest() (bool, error) {
	b, err := d.c.Sample(0, gbxcart.GBAReadSRAM, gbxcart.ChunkSize)
	if err != nil {
		return false, err
	}
	if len(b) == 0 {
		return false, nil
	}
	orig := b[0]

	v := byte(sramTestByte)
	if orig == v {
		v = sramTestByteAlt
	}

	err = d.writeByte(v)
	if err != nil {
		return false, err
	}

	b, err = d.c.Sample(0, gbxcart.GBAReadSRAM, gbxcart.ChunkSize)
	if err != nil {
		return false, err
	}
	if len(b) == 0 || b[0] != v {
		return false, nil
	}

	return true, d.writeByte(orig)
}

func (d *Detector) writeByte(v byte) error {
	err := d.c.SendNumber(gbxcart.SetStartAddress, 0)
	if err != nil {
		return err
	}
	err = d.c.WriteBlock(gbxcart.GBAWriteOneByte, []byte{v})
	if err != nil {
		return err
	}
	return d.c.WaitForAck()
}

// classify decides whether the save memory is SRAM or Flash. a value of
// cartridge.FlashNotChecked means there is no save memory
func (d *Detector) classify() (cartridge.FlashClass, [2]byte, error) {
	var id [2]byte

	ok, err := d.writeTest()
	if err != nil {
		return cartridge.FlashNotChecked, id, err
	}
	if ok {
		logger.Log(logger.Allow, "detect", "SRAM found")
		return cartridge.NoFlash, id, nil
	}

	id, err = d.c.ReadFlashID()
	if err != nil {
		return cartridge.FlashNotChecked, id, err
	}

	// reading from the start of the memory after the ID has been read leaves
	// ID mode on some chips
	_, err = d.c.Sample(0, gbxcart.GBAReadSRAM, gbxcart.ChunkSize)
	if err != nil {
		return cartridge.FlashNotChecked, id, err
	}

	if id == [2]byte{0xff, 0xff} {
		return cartridge.FlashNotChecked, id, nil
	}

	logger.Logf(logger.Allow, "detect", "flash found (%#02x, %#02x)", id[0], id[1])

	switch id[0] {
	case 0x1f:
		return cartridge.FlashAtmel, id, nil
	case 0xbf, 0xc2, 0x32, 0x62:
		return cartridge.Flash, id, nil
	}

	return cartridge.FlashNotChecked, id, nil
}

// sramBanked decides whether a SRAM is 512Kbit or 1Mbit by comparing the two
// banks selected by the flash cart bank register
func (d *Detector) sramBanked() (cartridge.SRAMSize, error) {
	sample := func(bank uint16, addr uint32) ([]byte, error) {
		err := d.c.FlashWriteAddressByte(gbxcart.FlashCartBankRegister, bank)
		if err != nil {
			return nil, err
		}
		return d.c.Sample(addr, gbxcart.GBAReadSRAM, gbxcart.ChunkSize)
	}

	size, err := d.compareBanks(sample, true)
	if err != nil {
		return cartridge.SRAMNone, err
	}

	return size, d.c.FlashWriteAddressByte(gbxcart.FlashCartBankRegister, 0)
}

// flashBanked decides whether a Flash is 512Kbit or 1Mbit by comparing the
// two banks of the flash chip
func (d *Detector) flashBanked() (cartridge.SRAMSize, error) {
	sample := func(bank uint16, addr uint32) ([]byte, error) {
		err := d.c.SendNumber(gbxcart.GBAFlashSetBank, uint32(bank))
		if err != nil {
			return nil, err
		}
		return d.c.Sample(addr, gbxcart.GBAReadSRAM, gbxcart.ChunkSize)
	}

	size, err := d.compareBanks(sample, false)
	if err != nil {
		return cartridge.SRAMNone, err
	}

	return size, d.c.SendNumber(gbxcart.GBAFlashSetBank, 0)
}

// compareBanks returns SRAM512K if the two banks are mostly the same. if
// quick is true then the first byte of each bank is compared before the
// thorough check
func (d *Detector) compareBanks(sample func(bank uint16, addr uint32) ([]byte, error), quick bool) (cartridge.SRAMSize, error) {
	if quick {
		a, err := sample(0, 0)
		if err != nil {
			return cartridge.SRAMNone, err
		}
		b, err := sample(1, 0)
		if err != nil {
			return cartridge.SRAMNone, err
		}
		if len(a) > 0 && len(b) > 0 && a[0] != b[0] {
			return cartridge.SRAM1M, nil
		}
	}

	dup := 0
	for x := range sramSamples {
		addr := uint32(x * sramSampleStride)
		a, err := sample(0, addr)
		if err != nil {
			return cartridge.SRAMNone, err
		}
		b, err := sample(1, addr)
		if err != nil {
			return cartridge.SRAMNone, err
		}
		dup += countEqual(a, b)
	}

	if dup >= sramDuplicateLimit {
		return cartridge.SRAM512K, nil
	}
	return cartridge.SRAM1M, nil
}
