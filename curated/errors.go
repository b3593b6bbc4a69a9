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

package curated

import (
	"fmt"
	"strings"
)

// curated is an implementation of the go language error interface.
type curated struct {
	pattern string
	values  []any
}

// Errorf creates a new curated error.
//
// Note that unlike the Errorf() function in the fmt package the first argument
// is named "pattern" not "format". This is because we use the pattern string
// in the Is() and Has() functions where 'pattern' seems to be more descriptive
// name.
func Errorf(pattern string, values ...any) error {
	// note that we're not actually formatting the error here, despite the
	// function name. we instead only store the arguments. formatting takes
	// place in the Error() function
	return curated{
		pattern: pattern,
		values:  values,
	}
}

// Error returns the normalised error message. Normalisation being the removal
// of duplicate adjacent error messsage parts in the error message chains. It
// doesn't affect letter-case or white space.
//
// Implements the go language error interface.
func (er curated) Error() string {
	s := fmt.Sprintf(er.pattern, er.values...)

	p := strings.Split(s, ": ")
	n := make([]string, 0, len(p))
	for i := range p {
		if len(n) > 0 && n[len(n)-1] == p[i] {
			continue
		}
		n = append(n, p[i])
	}

	return strings.Join(n, ": ")
}

// Unwrap returns the values of the curated error that are themselves errors.
// This allows the errors.Is() and errors.As() functions in the standard
// library to inspect the chain.
func (er curated) Unwrap() []error {
	var w []error
	for _, v := range er.values {
		if e, ok := v.(error); ok {
			w = append(w, e)
		}
	}
	return w
}

// IsAny checks if the error is a curated error.
func IsAny(err error) bool {
	if err == nil {
		return false
	}

	if _, ok := err.(curated); ok {
		return true
	}

	return false
}

// Is checks if error is a curated error with a specific pattern.
func Is(err error, pattern string) bool {
	if err == nil {
		return false
	}

	if er, ok := err.(curated); ok {
		return er.pattern == pattern
	}

	return false
}

// Has checks if error is a curated error with a specific pattern somewhere in
// the chain.
func Has(err error, pattern string) bool {
	if !IsAny(err) {
		return false
	}

	if Is(err, pattern) {
		return true
	}

	for _, v := range err.(curated).values {
		if e, ok := v.(error); ok {
			if Has(e, pattern) {
				return true
			}
		}
	}

	return false
}
