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

	"github.com/pkg/term"
)

// termLink is a Link implemented with the pkg/term package.
type termLink struct {
	t *term.Term
}

func openTerm(name string, baud int) (*termLink, error) {
	t, err := term.Open(name, term.Speed(baud), term.RawMode)
	if err != nil {
		return nil, err
	}

	// a read timeout of zero means that reads return immediately
	err = t.SetReadTimeout(0)
	if err != nil {
		t.Close()
		return nil, err
	}

	return &termLink{t: t}, nil
}

// Read implements the io.Reader interface. No data is not an error.
func (l *termLink) Read(p []byte) (int, error) {
	n, err := l.t.Read(p)
	if errors.Is(err, io.EOF) {
		return n, nil
	}
	return n, err
}

// Write implements the io.Writer interface.
func (l *termLink) Write(p []byte) (int, error) {
	return l.t.Write(p)
}

// Flush implements the Link interface.
func (l *termLink) Flush() error {
	return l.t.Flush()
}

// Close implements the io.Closer interface.
func (l *termLink) Close() error {
	return l.t.Close()
}
