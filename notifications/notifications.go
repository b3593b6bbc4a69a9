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

package notifications

// Notice describes events that change the files presented by the filesystem.
type Notice string

// List of defined notifications.
const (
	// the buffer behind the game file has been replaced
	NotifyGameChanged Notice = "NotifyGameChanged"

	// the buffer behind the save file has been replaced
	NotifySaveChanged Notice = "NotifySaveChanged"

	// a new cartridge has been detected
	NotifyCartridgeInserted Notice = "NotifyCartridgeInserted"

	// the cartridge has been removed or can no longer be read
	NotifyCartridgeRemoved Notice = "NotifyCartridgeRemoved"

	// pending save data has been written to the cartridge
	NotifySaveWritten Notice = "NotifySaveWritten"
)

// Notify is used for communication between the session and the filesystem.
// The filesystem uses the NotifyGameChanged and NotifySaveChanged notices to
// invalidate any cached pages and directory entries.
type Notify interface {
	Notify(notice Notice) error
}

// NotifyFunc allows an ordinary function to be used as an implementation of
// the Notify interface.
type NotifyFunc func(notice Notice) error

// Notify implements the Notify interface.
func (f NotifyFunc) Notify(notice Notice) error {
	return f(notice)
}
