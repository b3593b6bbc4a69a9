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

package banks_test

import (
	"errors"
	"testing"

	"github.com/jetsetilly/gbxfs/hardware/cartridge/banks"
	"github.com/jetsetilly/gbxfs/test"
	"go.uber.org/mock/gomock"
)

func TestFamily(t *testing.T) {
	test.ExpectEquality(t, banks.FamilyOf(0x00, "TETRIS"), banks.ROMOnly)
	test.ExpectEquality(t, banks.FamilyOf(0x03, "ZELDA"), banks.MBC1)
	test.ExpectEquality(t, banks.FamilyOf(0x01, "MOMOCOL"), banks.MBC1Hudson)
	test.ExpectEquality(t, banks.FamilyOf(0x01, "BOMCOL2"), banks.MBC1Hudson)
	test.ExpectEquality(t, banks.FamilyOf(0x06, "MOMOCOL"), banks.MBC2Plus)
	test.ExpectEquality(t, banks.FamilyOf(0x1b, "POKEMON"), banks.MBC2Plus)
}

func TestMBC1(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := NewMockSwitcher(ctrl)

	gomock.InOrder(
		s.EXPECT().SetBank(uint16(0x6000), uint8(0)),
		s.EXPECT().SetBank(uint16(0x4000), uint8(1)),
		s.EXPECT().SetBank(uint16(0x2000), uint8(0x03)),
	)

	test.ExpectSuccess(t, banks.SwitchROM(s, banks.MBC1, 0x23))
}

func TestMBC1Hudson(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := NewMockSwitcher(ctrl)

	gomock.InOrder(
		s.EXPECT().SetBank(uint16(0x4000), uint8(0)),
		s.EXPECT().SetBank(uint16(0x2000), uint8(9)),
		s.EXPECT().SetBank(uint16(0x4000), uint8(0)),
		s.EXPECT().SetBank(uint16(0x2000), uint8(0x1a)),
		s.EXPECT().SetBank(uint16(0x4000), uint8(1)),
		s.EXPECT().SetBank(uint16(0x2000), uint8(0x11)),
	)

	test.ExpectSuccess(t, banks.SwitchROM(s, banks.MBC1Hudson, 9))
	test.ExpectSuccess(t, banks.SwitchROM(s, banks.MBC1Hudson, 10))
	test.ExpectSuccess(t, banks.SwitchROM(s, banks.MBC1Hudson, 17))
}

func TestMBC2Plus(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := NewMockSwitcher(ctrl)

	gomock.InOrder(
		s.EXPECT().SetBank(uint16(0x3000), uint8(0)),
		s.EXPECT().SetBank(uint16(0x2100), uint8(0xff)),
		s.EXPECT().SetBank(uint16(0x3000), uint8(1)),
		s.EXPECT().SetBank(uint16(0x2100), uint8(0x01)),
	)

	test.ExpectSuccess(t, banks.SwitchROM(s, banks.MBC2Plus, 255))
	test.ExpectSuccess(t, banks.SwitchROM(s, banks.MBC2Plus, 257))
}

func TestROMOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := NewMockSwitcher(ctrl)

	// no calls to the switcher are expected
	test.ExpectSuccess(t, banks.SwitchROM(s, banks.ROMOnly, 1))
}

func TestRAM(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := NewMockSwitcher(ctrl)

	gomock.InOrder(
		s.EXPECT().SetBank(uint16(0x6000), uint8(1)),
		s.EXPECT().SetBank(uint16(0x0000), uint8(0x0a)),
		s.EXPECT().SetBank(uint16(0x4000), uint8(3)),
		s.EXPECT().SetBank(uint16(0x4000), uint8(0)),
		s.EXPECT().SetBank(uint16(0x0000), uint8(0)),
		s.EXPECT().SetBank(uint16(0x0000), uint8(0x0a)),
	)

	test.ExpectSuccess(t, banks.EnableRAM(s, 0x03))
	test.ExpectSuccess(t, banks.SwitchRAM(s, 3))
	test.ExpectSuccess(t, banks.DisableRAM(s))

	// the RAM banking mode is only selected for MBC1 cartridges
	test.ExpectSuccess(t, banks.EnableRAM(s, 0x13))
}

func TestSwitchError(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := NewMockSwitcher(ctrl)

	// the sequence stops at the first error
	s.EXPECT().SetBank(uint16(0x6000), uint8(0)).Return(errors.New("link error"))
	test.ExpectFailure(t, banks.SwitchROM(s, banks.MBC1, 2))
}
