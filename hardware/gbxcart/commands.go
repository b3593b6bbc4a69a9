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

package gbxcart

// List of command bytes understood by the reader firmware.
const (
	// general
	SetStartAddress = 'A'
	SetBank         = 'B'
	ReadROMRAM      = 'R'
	WriteRAM        = 'W'
	CartMode        = 'C'
	GBCartMode      = 'G'
	Voltage3V       = '3'
	Voltage5V       = '5'
	ReadFirmware    = 'V'
	ReadPCB         = 'h'
	FastReadCheck   = '+'

	// read the next 16KB of a GB cartridge without waiting for a Continue
	GBFastRead = 'Q'

	// GBA
	GBAReadROM          = 'r'
	GBAFastRead         = 'Z'
	GBAReadSRAM         = 'm'
	GBAWriteSRAM        = 'w'
	GBAWriteOneByte     = 'o'
	GBASetEEPROMSize    = 'S'
	GBAReadEEPROM       = 'e'
	GBAWriteEEPROM      = 'p'
	GBAFlashReadID      = 'i'
	GBAFlashSetBank     = 'k'
	GBAFlashSectorErase = 's'
	GBAFlashWrite       = 'b'
	GBAFlashWriteAtmel  = 'a'
	GBAFlashCart        = 'n'

	// stream control
	Continue = '1'
	Stop     = '0'
)

// Ack is the byte sent by the reader to acknowledge a write.
const Ack = '1'

// Values returned by the CartMode command.
const (
	ModeGB  = 1
	ModeGBA = 2
)

// Values used with the GBASetEEPROMSize command.
const (
	EEPROMNone = 0
	EEPROM4K   = 1
	EEPROM64K  = 2
)

// Chunk sizes of the streamed read and write commands.
const (
	ChunkSize       = 64
	EEPROMChunkSize = 8
	AtmelPageSize   = 128

	// number of bytes sent by the fast read commands before waiting for
	// another request
	GBFastReadSize  = 0x4000
	GBAFastReadSize = 0x10000

	// number of bytes sent in response to the FastReadCheck command
	FastReadCheckSize = 32768
)

// FlashCartBankRegister is the address of the bank register on the 1Mbit
// SRAM flash carts. It is written with FlashWriteAddressByte().
const FlashCartBankRegister = 0x1000000
