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

// Mode is the type of cartridge.
type Mode int

// List of valid Mode values.
const (
	NoCartridge Mode = iota
	GameBoy
	GBA
)

func (m Mode) String() string {
	switch m {
	case GameBoy:
		return "GB"
	case GBA:
		return "GBA"
	}
	return "none"
}

// Extension returns the filename extension used for the ROM of the cartridge
// type.
func (m Mode) Extension() string {
	switch m {
	case GameBoy:
		return ".gb"
	case GBA:
		return ".gba"
	}
	return ""
}

// SaveExtension is the filename extension used for the save file of every
// cartridge type.
const SaveExtension = ".sav"
