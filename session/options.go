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

import "time"

// DefaultPollInterval is the time between each check of the cartridge
// reader.
const DefaultPollInterval = 5 * time.Second

// Options are set once at startup.
type Options struct {
	// save data is never written to the cartridge
	ReadOnly bool

	// the ROM is not dumped. the game file is a placeholder
	RAMOnly bool

	// dump the cartridge again when it is reinserted
	ReRead bool

	// if not empty then the files are given this name instead of the title
	// of the cartridge. the file extensions are unchanged
	Filename string

	// directory where ROM dumps are cached. an empty string disables the
	// cache
	CacheDir string

	PollInterval time.Duration
}

// NewOptions returns the default Options.
func NewOptions() Options {
	return Options{
		PollInterval: DefaultPollInterval,
	}
}
