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

package session

import (
	"github.com/jetsetilly/gbxfs/hardware/cartridge"
	"github.com/jetsetilly/gbxfs/hardware/cartridge/detect"
	"github.com/jetsetilly/gbxfs/hardware/cartridge/saveinfo"
	"github.com/jetsetilly/gbxfs/hardware/gbxcart"
	"github.com/jetsetilly/gbxfs/hardware/transfer"
)

// Cartridge is the interface to the cartridge reader used by the Session.
type Cartridge interface {
	Identify() (cartridge.Profile, error)
	DumpROM(p *cartridge.Profile, dst []byte) ([]byte, error)
	DumpRAM(p *cartridge.Profile, dst []byte) ([]byte, error)
	WriteRAM(p *cartridge.Profile, data []byte) error
}

// Hardware implements the Cartridge interface for a real reader.
type Hardware struct {
	*detect.Detector
	*transfer.Engine
}

// NewHardware is the preferred method of initialisation for the Hardware
// type. The info argument can be nil.
func NewHardware(c *gbxcart.Client, info *saveinfo.Store) *Hardware {
	e := transfer.NewEngine(c)
	e.Info = info
	return &Hardware{
		Detector: detect.NewDetector(c, info),
		Engine:   e,
	}
}
