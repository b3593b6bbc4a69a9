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

package prefs

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
)

// Value represents the actual Go preference value.
type Value any

// types supported by the prefs system must implement the pref interface.
type pref interface {
	fmt.Stringer
	Set(value Value) error
	Get() Value
	Reset() error
}

// Int implements an integer type in the prefs system. The zero value is ready
// to use.
type Int struct {
	value atomic.Int64
}

func (p *Int) String() string {
	return strconv.FormatInt(p.value.Load(), 10)
}

// Set new value to Int type. New value can be an integer type or a decimal
// string.
func (p *Int) Set(v Value) error {
	switch v := v.(type) {
	case int:
		p.value.Store(int64(v))
	case int32:
		p.value.Store(int64(v))
	case int64:
		p.value.Store(v)
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("set: cannot convert %q to prefs.Int: %w", v, err)
		}
		p.value.Store(int64(n))
	default:
		return fmt.Errorf("set: cannot convert %T to prefs.Int", v)
	}
	return nil
}

// Get returns the value as an int.
func (p *Int) Get() Value {
	return int(p.value.Load())
}

// Reset sets the value to zero.
func (p *Int) Reset() error {
	return p.Set(0)
}

// Generic is a preference whose value is held elsewhere. The set and get
// functions given to NewGeneric() convert between that value and its string
// form. Calls to the functions are serialised.
type Generic struct {
	crit sync.Mutex
	set  func(string) error
	get  func() string
}

// NewGeneric must be used to create an instance of Generic.
func NewGeneric(set func(string) error, get func() string) *Generic {
	return &Generic{
		set: set,
		get: get,
	}
}

func (p *Generic) String() string {
	return p.Get().(string)
}

// Set passes the string form of the value to the set function.
func (p *Generic) Set(v Value) error {
	p.crit.Lock()
	defer p.crit.Unlock()
	return p.set(fmt.Sprint(v))
}

// Get returns the string from the get function.
func (p *Generic) Get() Value {
	p.crit.Lock()
	defer p.crit.Unlock()
	return p.get()
}

// Reset sets the generic value to the empty string.
func (p *Generic) Reset() error {
	return p.Set("")
}
