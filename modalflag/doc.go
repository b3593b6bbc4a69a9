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

// Package modalflag is a wrapper for the flag package in the Go standard
// library. It handles program modes and allows a different set of flags for
// each mode.
//
// Arguments are given to NewArgs() and are then processed by Parse(). Non-flag
// arguments are retrieved with RemainingArgs() or GetArg():
//
//	md := &modalflag.Modes{Output: os.Stdout}
//	md.NewArgs(os.Args[1:])
//	md.AddSubModes("MOUNT", "INFO", "DUMP")
//	_, _ = md.Parse()
//
// A mode is a command line argument that puts the program into a different
// mode of operation. After Parse() the selected mode is returned by Mode(). If
// no mode is given on the command line then the first sub-mode is selected.
// Mode names are not case sensitive.
//
// Each mode adds its own flags with NewMode() and a second call to Parse():
//
//	switch md.Mode() {
//	case "MOUNT":
//		md.NewMode()
//		readonly := md.AddBool("readonly", false, "never write to the cartridge")
//		md.AddAlias("readonly", "r")
//		p, err := md.Parse()
//		switch p {
//		case modalflag.ParseError:
//			return err
//		case modalflag.ParseHelp:
//			return nil
//		}
//		mount(md.GetArg(0), *readonly)
//	}
//
// Modes can be nested as deeply as required by calling AddSubModes() again
// after NewMode().
package modalflag
