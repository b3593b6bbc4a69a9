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

// Package cartridgeloader loads ROM dumps from the cache directory.
//
// Dumping the ROM of a large cartridge takes several minutes so a dump is
// written to the cache directory once it has been read. When the same
// cartridge is inserted again the dump is loaded from the cache instead.
//
// Cached dumps are memory mapped rather than read into memory. The Data
// field of a Loader is only valid until Close() is called:
//
//	cache := cartridgeloader.NewCache("/home/user/roms")
//	cl, err := cache.Load("POKEMON RED.gb")
//	if err != nil {
//		if curated.Is(err, cartridgeloader.NotCached) {
//			// dump the ROM
//		}
//	}
//	defer cl.Close()
package cartridgeloader
