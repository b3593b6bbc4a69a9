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

// Package saveinfo stores the save memory details of GBA cartridges.
//
// The save memory of a GBA cartridge is detected by probing, which is not
// possible once the memory has been erased. The details are written to a
// file before erasing and the file takes priority over probing on subsequent
// insertions.
package saveinfo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jetsetilly/gbxfs/curated"
	"github.com/jetsetilly/gbxfs/hardware/cartridge"
	"github.com/jetsetilly/gbxfs/paths"
	"github.com/jetsetilly/gbxfs/prefs"
)

// Sentinel error patterns.
const (
	Corrupt = "saveinfo: %s is corrupt: %v"
)

const (
	subPath   = "saveinfo"
	extension = ".si"
	key       = "saveinfo"
)

// Info is the save memory details of a cartridge.
type Info struct {
	SRAM   cartridge.SRAMSize
	EEPROM cartridge.EEPROMSize
	Flash  cartridge.FlashClass
}

// FromProfile returns the Info for the Profile.
func FromProfile(p *cartridge.Profile) Info {
	return Info{
		SRAM:   p.SRAM,
		EEPROM: p.EEPROM,
		Flash:  p.Flash,
	}
}

// Apply the Info to a Profile.
func (i Info) Apply(p *cartridge.Profile) {
	p.SRAM = i.SRAM
	p.EEPROM = i.EEPROM
	p.Flash = i.Flash
	p.ApplyGBASaveSize()
}

func (i Info) String() string {
	return fmt.Sprintf("%d,%d,%d", i.SRAM, i.EEPROM, i.Flash)
}

func (i *Info) parse(s string) error {
	var r, e, f int
	_, err := fmt.Sscanf(strings.TrimSuffix(s, ","), "%d,%d,%d", &r, &e, &f)
	if err != nil {
		return err
	}
	if r < int(cartridge.SRAMNone) || r > int(cartridge.SRAM1M) {
		return fmt.Errorf("ram size out of range (%d)", r)
	}
	if e < int(cartridge.EEPROMNone) || e > int(cartridge.EEPROM64K) {
		return fmt.Errorf("eeprom size out of range (%d)", e)
	}
	if f < int(cartridge.FlashNotChecked) || f > int(cartridge.FlashIntel) {
		return fmt.Errorf("flash type out of range (%d)", f)
	}
	i.SRAM = cartridge.SRAMSize(r)
	i.EEPROM = cartridge.EEPROMSize(e)
	i.Flash = cartridge.FlashClass(f)
	return nil
}

// Store is a directory of save information files.
type Store struct {
	dir string
}

// NewStore is the preferred method of initialisation for the Store type.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultStore returns the Store in the gbxfs configuration directory.
func DefaultStore() (*Store, error) {
	dir, err := paths.ResourcePath(subPath, "")
	if err != nil {
		return nil, curated.Errorf("saveinfo: %v", err)
	}
	return NewStore(dir), nil
}

// Path returns the filename of the save information file for the title.
func (s *Store) Path(title string) string {
	return filepath.Join(s.dir, title+extension)
}

func (s *Store) disk(title string, info *Info) (*prefs.Disk, error) {
	dsk, err := prefs.NewDisk(s.Path(title))
	if err != nil {
		return nil, err
	}

	err = dsk.Add(key, prefs.NewGeneric(
		func(v string) error {
			return info.parse(v)
		},
		func() string {
			return info.String()
		},
	))
	if err != nil {
		return nil, err
	}

	return dsk, nil
}

// Load the save information for the title. Returns false if there is no
// save information for the title.
func (s *Store) Load(title string) (Info, bool, error) {
	var info Info

	if _, err := os.Stat(s.Path(title)); err != nil {
		return info, false, nil
	}

	dsk, err := s.disk(title, &info)
	if err != nil {
		return info, false, curated.Errorf(Corrupt, s.Path(title), err)
	}

	err = dsk.Load(false)
	if err != nil {
		return info, false, curated.Errorf(Corrupt, s.Path(title), err)
	}

	return info, true, nil
}

// Write the save information for the title. An existing file is never
// overwritten because the memory may already have been erased since it was
// written.
func (s *Store) Write(title string, info Info) error {
	if _, err := os.Stat(s.Path(title)); err == nil {
		return nil
	}

	dsk, err := s.disk(title, &info)
	if err != nil {
		return curated.Errorf("saveinfo: %v", err)
	}

	err = dsk.Save()
	if err != nil {
		return curated.Errorf("saveinfo: %v", err)
	}

	return nil
}
