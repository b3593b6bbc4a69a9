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
	"errors"
	"io"

	"github.com/jacobsa/go-serial/serial"
)

// the maximum number of reads made by Flush() to empty the input
const maxFlushReads = 1024

// jacobsaLink is a Link implemented with the jacobsa/go-serial package. It is
// used for baud rates that are not supported by pkg/term.
type jacobsaLink struct {
	rwc io.ReadWriteCloser
}

func openJacobsa(name string, baud int) (*jacobsaLink, error) {
	opt := serial.OpenOptions{
		PortName:              name,
		BaudRate:              uint(baud),
		DataBits:              8,
		StopBits:              1,
		ParityMode:            serial.PARITY_NONE,
		MinimumReadSize:       0,
		InterCharacterTimeout: 0,
	}

	rwc, err := serial.Open(opt)
	if err != nil {
		return nil, err
	}

	return &jacobsaLink{rwc: rwc}, nil
}

// Read implements the io.Reader interface. No data is not an error.
func (l *jacobsaLink) Read(p []byte) (int, error) {
	n, err := l.rwc.Read(p)
	if errors.Is(err, io.EOF) {
		return n, nil
	}
	return n, err
}

// Write implements the io.Writer interface.
func (l *jacobsaLink) Write(p []byte) (int, error) {
	return l.rwc.Write(p)
}

// Flush implements the Link interface. The jacobsa package has no flush
// function so input is read and discarded until none remains.
func (l *jacobsaLink) Flush() error {
	b := make([]byte, 256)
	for range maxFlushReads {
		n, err := l.Read(b)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
	}
	return nil
}

// Close implements the io.Closer interface.
func (l *jacobsaLink) Close() error {
	return l.rwc.Close()
}
