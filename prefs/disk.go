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
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jetsetilly/gbxfs/curated"
)

// WarningBoilerPlate is written as the first line of every prefs file.
const WarningBoilerPlate = "*** do not edit this file by hand. it is maintained by gbxfs ***"

// the separator between the key and value in the prefs file.
const keySep = " :: "

// Disk represents preference values as stored on disk.
type Disk struct {
	path    string
	entries map[string]pref
}

// NewDisk is the preferred method of initialisation for the Disk type.
func NewDisk(path string) (*Disk, error) {
	dsk := &Disk{
		path:    path,
		entries: make(map[string]pref),
	}
	return dsk, nil
}

func (dsk *Disk) String() string {
	s := strings.Builder{}
	for _, k := range dsk.keys() {
		s.WriteString(fmt.Sprintf("%s%s%s\n", k, keySep, dsk.entries[k]))
	}
	return s.String()
}

func (dsk *Disk) keys() []string {
	keys := make([]string, 0, len(dsk.entries))
	for k := range dsk.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Add preference value to list of values to store/load from disk. Keys must
// not contain the key separator or a newline.
func (dsk *Disk) Add(key string, p pref) error {
	if strings.Contains(key, strings.TrimSpace(keySep)) || strings.ContainsAny(key, "\n") {
		return curated.Errorf("prefs: %v", fmt.Sprintf("illegal key (%s)", key))
	}
	dsk.entries[key] = p
	return nil
}

// HasEntry returns true if the key has been added to the Disk instance.
func (dsk *Disk) HasEntry(key string) bool {
	_, ok := dsk.entries[key]
	return ok
}

// Reset all entries to their default values.
func (dsk *Disk) Reset() error {
	for _, v := range dsk.entries {
		if err := v.Reset(); err != nil {
			return curated.Errorf("prefs: %v", err)
		}
	}
	return nil
}

// readFile returns the key/value pairs in the prefs file. A missing file is
// not an error and returns an empty map.
func (dsk *Disk) readFile() (map[string]string, error) {
	data := make(map[string]string)

	f, err := os.Open(dsk.path)
	if err != nil {
		if os.IsNotExist(err) {
			return data, nil
		}
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)

	// check validity of file by checking the first line
	if !scanner.Scan() {
		return data, scanner.Err()
	}
	if scanner.Text() != WarningBoilerPlate {
		return nil, fmt.Errorf("not a valid prefs file (%s)", dsk.path)
	}

	for scanner.Scan() {
		kv := strings.SplitN(scanner.Text(), keySep, 2)
		if len(kv) == 2 {
			data[kv[0]] = kv[1]
		}
	}

	return data, scanner.Err()
}

// Save current preference values to disk. Values in the prefs file that have
// not been added to this Disk instance are preserved.
func (dsk *Disk) Save() error {
	data, err := dsk.readFile()
	if err != nil {
		return curated.Errorf("prefs: %v", err)
	}

	for k, v := range dsk.entries {
		data[k] = v.String()
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := strings.Builder{}
	s.WriteString(WarningBoilerPlate)
	s.WriteString("\n")
	for _, k := range keys {
		s.WriteString(fmt.Sprintf("%s%s%s\n", k, keySep, data[k]))
	}

	err = os.WriteFile(dsk.path, []byte(s.String()), 0o600)
	if err != nil {
		return curated.Errorf("prefs: %v", err)
	}

	return nil
}

// Load preference values from disk. If saveOnFail is true and the prefs file
// does not exist then the current values are saved.
//
// Values found in the current command line group (see PushCommandLineStack())
// take priority over values on disk.
func (dsk *Disk) Load(saveOnFail bool) error {
	if _, err := os.Stat(dsk.path); os.IsNotExist(err) && saveOnFail {
		if err := dsk.Save(); err != nil {
			return err
		}
	}

	data, err := dsk.readFile()
	if err != nil {
		return curated.Errorf("prefs: %v", err)
	}

	for _, k := range dsk.keys() {
		if v, ok := data[k]; ok {
			if err := dsk.entries[k].Set(v); err != nil {
				return curated.Errorf("prefs: %v", err)
			}
		}
		if ok, v := GetCommandLinePref(k); ok {
			if err := dsk.entries[k].Set(v); err != nil {
				return curated.Errorf("prefs: %v", err)
			}
		}
	}

	return nil
}
