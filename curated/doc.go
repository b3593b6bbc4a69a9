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

// Package curated is a helper package for the plain Go language error type.
// Curated errors implement the error interface and are created with the
// Errorf() function, which takes a formatting pattern and placeholder values
// in the same way as fmt.Errorf().
//
// The pattern identifies the error. Sentinel patterns are stored as const
// strings and tested for with Is() and Has():
//
//	const SizeMismatch = "transfer: save data is %d bytes but save memory is %d bytes"
//
//	err := curated.Errorf(SizeMismatch, 100, 0x8000)
//	curated.Is(err, SizeMismatch) // true
//
//	wrapped := curated.Errorf("session: %v", err)
//	curated.Is(wrapped, SizeMismatch)  // false
//	curated.Has(wrapped, SizeMismatch) // true
//
// Is() only checks the outermost error. Has() searches the whole chain.
// IsAny() returns true if the error was created by Errorf() at all.
//
// The Error() function normalises the chain so that it does not contain
// duplicate adjacent parts. Parts are separated by the sub-string ": ". An
// error wrapped twice with the same prefix:
//
//	curated.Errorf("gbxcart: %v", curated.Errorf("gbxcart: no ack"))
//
// is printed as "gbxcart: no ack" and not "gbxcart: gbxcart: no ack".
package curated
