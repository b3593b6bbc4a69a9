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

// Package session binds the cartridge reader to the filesystem.
//
// The Session type polls the reader in a background goroutine. When a new
// cartridge is detected the ROM and save memory are dumped and published as
// a Snapshot. Filesystem callbacks read from the most recently published
// Snapshot and never talk to the reader directly.
//
// Writes to the save file are collected in a staging buffer. The background
// goroutine is woken by a write and flushes the staged data to the cartridge
// before publishing it as the new save data.
//
// A Snapshot must be released once it is no longer needed:
//
//	snap := sess.Acquire()
//	defer snap.Release()
//	n := copy(dest, snap.Game.Data[off:])
//
// The data in a Snapshot must not be referenced after it is released.
package session
