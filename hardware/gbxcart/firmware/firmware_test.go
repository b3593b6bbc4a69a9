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

package firmware_test

import (
	"fmt"
	"testing"

	"github.com/jetsetilly/gbxfs/hardware/gbxcart"
	"github.com/jetsetilly/gbxfs/hardware/gbxcart/firmware"
	"github.com/jetsetilly/gbxfs/test"
)

// send a string to the device
func send(d *firmware.Device, s string) {
	_, _ = d.Write([]byte(s))
}

// read everything waiting on the device
func drain(d *firmware.Device) []byte {
	b := make([]byte, 0x20000)
	n, _ := d.Read(b)
	return b[:n]
}

func TestEmptySlot(t *testing.T) {
	d := firmware.NewDevice()
	send(d, "A0\x00R")
	b := drain(d)
	test.ExpectEquality(t, len(b), gbxcart.ChunkSize)
	for _, v := range b {
		test.ExpectEquality(t, v, byte(0xff))
	}
}

func TestStream(t *testing.T) {
	rom := firmware.GBROM("TETRIS", 0, 0, 0)
	d := firmware.NewDevice()
	d.InsertGB(firmware.NewGB(rom, 0))

	send(d, "A100\x00R")
	b := drain(d)
	test.ExpectEquality(t, string(b), string(rom[0x100:0x140]))

	send(d, "1")
	b = drain(d)
	test.ExpectEquality(t, string(b), string(rom[0x140:0x180]))

	// nothing is sent after the stream is stopped
	send(d, "01")
	test.ExpectEquality(t, len(drain(d)), 0)
}

func TestMBC(t *testing.T) {
	for _, cartType := range []byte{0x01, 0x06, 0x13, 0x1b} {
		rom := firmware.GBROM("BANKS", cartType, 3, 0)
		d := firmware.NewDevice()
		d.InsertGB(firmware.NewGB(rom, 0))

		for bank := 1; bank < 16; bank++ {
			switch {
			case cartType >= 5:
				send(d, "B3000\x00B0\x00")
				send(d, fmt.Sprintf("B2100\x00B%d\x00", bank))
			default:
				send(d, "B6000\x00B0\x00")
				send(d, fmt.Sprintf("B4000\x00B%d\x00", bank>>5))
				send(d, fmt.Sprintf("B2000\x00B%d\x00", bank&0x1f))
			}
			send(d, "A4000\x00R")
			b := drain(d)
			send(d, "0")
			test.ExpectEquality(t, b[0], byte(bank), cartType)
		}
	}
}

func TestGBRAM(t *testing.T) {
	rom := firmware.GBROM("RAM", 0x1b, 1, 3)
	gb := firmware.NewGB(rom, 0x8000)
	d := firmware.NewDevice()
	d.InsertGB(gb)

	// RAM is not readable until it is enabled
	send(d, "AA000\x00R")
	b := drain(d)
	send(d, "0")
	test.ExpectEquality(t, b[0], byte(0xff))

	send(d, "B0\x00B10\x00")
	send(d, "B4000\x00B2\x00")
	block := firmware.Pattern(gbxcart.ChunkSize, 1)
	send(d, "AA000\x00W"+string(block))
	test.ExpectEquality(t, string(drain(d)), "1")
	test.ExpectEquality(t, string(gb.RAM[0x4000:0x4040]), string(block))
}

func TestEEPROM(t *testing.T) {
	eeprom := firmware.Pattern(0x200, 0)
	d := firmware.NewDevice()
	d.InsertGBA(&firmware.GBA{ROM: firmware.GBAROM("TEST", 0x400000), EEPROM: eeprom})

	// 4Kbit EEPROM read in 64Kbit mode repeats the first eight bytes
	send(d, "S2\x00A0\x00e")
	b := drain(d)
	send(d, "1")
	c := drain(d)
	send(d, "0")
	test.ExpectEquality(t, string(b), string(eeprom[:8]))
	test.ExpectEquality(t, string(c), string(eeprom[:8]))

	send(d, "S1\x00A0\x00e")
	b = drain(d)
	send(d, "1")
	c = drain(d)
	send(d, "0")
	test.ExpectEquality(t, string(b), string(eeprom[:8]))
	test.ExpectEquality(t, string(c), string(eeprom[8:16]))
}

func TestFlash(t *testing.T) {
	flash := firmware.NewFlash([2]byte{0xc2, 0x09}, 0x20000)
	d := firmware.NewDevice()
	d.InsertGBA(&firmware.GBA{ROM: firmware.GBAROM("TEST", 0x400000), Flash: flash})

	// programming can only clear bits
	block := make([]byte, gbxcart.ChunkSize)
	for i := range block {
		block[i] = 0x0f
	}
	send(d, "k1\x00A0\x00b"+string(block))
	test.ExpectEquality(t, string(drain(d)), "1")
	test.ExpectEquality(t, flash.Data[0x10000], byte(0x0f))
	test.ExpectEquality(t, flash.Data[0], byte(0xff))

	for i := range block {
		block[i] = 0xf0
	}
	send(d, "A0\x00b"+string(block))
	drain(d)
	test.ExpectEquality(t, flash.Data[0x10000], byte(0x00))

	// sector erase
	send(d, "s0\x00")
	test.ExpectEquality(t, flash.Data[0x10000], byte(0xff))

	// writes through the SRAM commands are ignored
	send(d, "k0\x00A0\x00o\x12")
	test.ExpectEquality(t, string(drain(d)), "1")
	test.ExpectEquality(t, flash.Data[0], byte(0xff))
}

func TestIntelID(t *testing.T) {
	rom := firmware.GBAROM("TEST", 0x400000)
	d := firmware.NewDevice()
	d.InsertGBA(&firmware.GBA{ROM: rom, Intel: true})

	send(d, "n0\x00n90\x00")
	test.ExpectEquality(t, string(drain(d)), "1")

	send(d, "A0\x00r")
	b := drain(d)
	send(d, "0")
	test.ExpectEquality(t, string(b[:4]), "\x8a\x00\x15\x88")

	send(d, "n0\x00nff\x00")
	drain(d)
	send(d, "A0\x00r")
	b = drain(d)
	send(d, "0")
	test.ExpectEquality(t, string(b), string(rom[:gbxcart.ChunkSize]))
}
