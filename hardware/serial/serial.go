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
	"fmt"
	"io"

	"github.com/jetsetilly/gbxfs/curated"
	"github.com/jetsetilly/gbxfs/logger"
)

// Sentinel error patterns.
const (
	NoDevice   = "serial: no device found"
	OpenFailed = "serial: cannot open %s: %v"
)

// The baud rates supported by the cartridge reader.
const (
	DefaultBaud   = 1000000
	AlternateBaud = 1700000
)

// MaxPort is the highest port number tried during discovery.
const MaxPort = 57

// Link is a connection to the cartridge reader.
type Link interface {
	io.ReadWriteCloser

	// Flush discards any pending input
	Flush() error
}

// Opener opens a named serial device at the specified baud rate.
type Opener func(name string, baud int) (Link, error)

// the rates that termios can express directly. rates not in this list are
// opened with the jacobsa package.
var standardRates = map[int]bool{
	9600:    true,
	19200:   true,
	38400:   true,
	57600:   true,
	115200:  true,
	230400:  true,
	460800:  true,
	500000:  true,
	576000:  true,
	921600:  true,
	1000000: true,
	1152000: true,
	1500000: true,
	2000000: true,
	2500000: true,
	3000000: true,
	3500000: true,
	4000000: true,
}

// Open the named serial device at the specified baud rate. Implements the
// Opener type.
func Open(name string, baud int) (Link, error) {
	var l Link
	var err error

	if standardRates[baud] {
		l, err = openTerm(name, baud)
	} else {
		l, err = openJacobsa(name, baud)
	}

	if err != nil {
		return nil, curated.Errorf(OpenFailed, name, err)
	}

	logger.Logf(logger.Allow, "serial", "opened %s at %d baud", name, baud)

	return l, nil
}

// PortNames returns the device names that correspond to a port number. In
// order of preference: USB serial adaptors, USB modems and then plain serial
// ports.
func PortNames(port int) []string {
	return []string{
		fmt.Sprintf("/dev/ttyUSB%d", port),
		fmt.Sprintf("/dev/ttyACM%d", port),
		fmt.Sprintf("/dev/ttyS%d", port),
	}
}

// OpenPort opens the first device name for the port number that can be
// opened.
func OpenPort(open Opener, port int, baud int) (Link, string, error) {
	var err error
	for _, n := range PortNames(port) {
		var l Link
		l, err = open(n, baud)
		if err == nil {
			return l, n, nil
		}
	}
	return nil, "", err
}
