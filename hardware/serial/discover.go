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

package serial

import (
	"github.com/jetsetilly/gbxfs/curated"
	"github.com/jetsetilly/gbxfs/logger"
)

// Probe returns true if the link is connected to a responding cartridge
// reader.
type Probe func(Link) bool

// the alternative rate to try if the configured rate does not work
func alternateRate(baud int) int {
	if baud == AlternateBaud {
		return DefaultBaud
	}
	return AlternateBaud
}

// Discover finds a responding cartridge reader. The port in the Config is
// tried first at the configured baud rate and then at the alternate rate.
// After that every port number is tried at the default baud rate.
//
// When a reader is found on a different port or rate than the one in the
// Config, the Config is updated and saved.
func Discover(cfg *Config, open Opener, probe Probe) (Link, error) {
	port := cfg.Port.Get().(int)
	baud := cfg.Baud.Get().(int)

	try := func(port int, baud int) Link {
		l, name, err := OpenPort(open, port, baud)
		if err != nil {
			return nil
		}
		if probe(l) {
			logger.Logf(logger.Allow, "serial", "cartridge reader found on %s at %d baud", name, baud)
			return l
		}
		l.Close()
		return nil
	}

	remember := func(p int, b int) {
		if p == port && b == baud {
			return
		}
		_ = cfg.Port.Set(p)
		_ = cfg.Baud.Set(b)
		if err := cfg.Save(); err != nil {
			logger.Log(logger.Allow, "serial", err)
		}
	}

	if l := try(port, baud); l != nil {
		return l, nil
	}

	alt := alternateRate(baud)
	if l := try(port, alt); l != nil {
		remember(port, alt)
		return l, nil
	}

	for p := 0; p <= MaxPort; p++ {
		if l := try(p, DefaultBaud); l != nil {
			remember(p, DefaultBaud)
			return l, nil
		}
	}

	return nil, curated.Errorf(NoDevice)
}
