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

package prefs_test

import (
	"fmt"
	"io"
	"os"
	"path"
	"testing"

	"github.com/jetsetilly/gbxfs/prefs"
	"github.com/jetsetilly/gbxfs/test"
)

const tempFile = "gbxfs_prefs_test"

func getTmpPrefFile(t *testing.T) string {
	t.Helper()

	// get info about the temp directory
	td := os.TempDir()
	info, err := os.Stat(td)
	if err != nil {
		t.Errorf("error accessing tmp file: %v", err)
	}

	// check read/write permission for user
	p := info.Mode().Perm()
	if p&0o0700 != 0o0700 {
		t.Errorf("error accessing tmp file: %v", err)
	}

	// return temporary file
	fn := path.Join(td, tempFile)
	return fn
}

func delTmpPrefFile(t *testing.T, fn string) {
	t.Helper()

	if err := os.Remove(fn); err != nil {
		// not worrying about path errors; these are returned if
		// file doesn't exist
		if _, ok := err.(*os.PathError); !ok {
			t.Errorf("error removing tmp pref file: %v", err)
		}
	}
}

func cmpTmpFile(t *testing.T, fn string, expected string) {
	t.Helper()

	f, err := os.Open(fn)
	if err != nil {
		t.Errorf("error opening tmp file: %v", err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		t.Errorf("error reading tmp file: %v", err)
		return
	}

	expected = fmt.Sprintf("%s\n%s", prefs.WarningBoilerPlate, expected)

	if expected != string(data) {
		t.Errorf("expected data and data in prefs file do not match")
		fmt.Println("expected:")
		fmt.Println(expected)
		fmt.Println("\nin file:")
		fmt.Println(string(data))
	}
}

func TestInt(t *testing.T) {
	fn := getTmpPrefFile(t)
	defer delTmpPrefFile(t, fn)

	dsk, err := prefs.NewDisk(fn)
	if err != nil {
		t.Errorf("error preparing disk: %v", err)
		return
	}

	var v prefs.Int
	var w prefs.Int
	err = dsk.Add("number", &v)
	test.ExpectSuccess(t, err)
	err = dsk.Add("numberB", &w)
	test.ExpectSuccess(t, err)

	err = v.Set(10)
	test.ExpectSuccess(t, err)

	// test string conversion to int
	err = w.Set("99")
	test.ExpectSuccess(t, err)

	err = dsk.Save()
	if err != nil {
		t.Errorf("error saving disk: %v", err)
	}

	cmpTmpFile(t, fn, "number :: 10\nnumberB :: 99\n")

	// while we have a prefs.Int instance set up we'll test some
	// failure conditions
	err = v.Set("---")
	test.ExpectFailure(t, err)

	err = v.Set(1.0)
	test.ExpectFailure(t, err)
}

func TestGeneric(t *testing.T) {
	fn := getTmpPrefFile(t)
	defer delTmpPrefFile(t, fn)

	dsk, err := prefs.NewDisk(fn)
	if err != nil {
		t.Errorf("error preparing disk: %v", err)
		return
	}

	var w, h int

	v := prefs.NewGeneric(
		func(s string) error {
			_, err := fmt.Sscanf(s, "%d,%d", &w, &h)
			if err != nil {
				return err
			}
			return nil
		},
		func() string {
			return fmt.Sprintf("%d,%d", w, h)
		},
	)

	err = dsk.Add("generic", v)
	test.ExpectSuccess(t, err)

	// change values
	w = 1
	h = 2

	// save to disk
	err = dsk.Save()
	if err != nil {
		t.Errorf("error saving disk: %v", err)
	}

	cmpTmpFile(t, fn, "generic :: 1,2\n")

	// reset values
	w = 0
	h = 0

	// reload them from disk
	err = dsk.Load(false)
	if err != nil {
		t.Errorf("error saving disk: %v", err)
	}

	// check that the values have been restoed
	test.ExpectEquality(t, w, 1)
	test.ExpectEquality(t, h, 2)
}

// write an int and then another int from a different prefs.Disk instance.
// tests that the second writing doesn't clobber the results of the first write.
func TestTwoDisks(t *testing.T) {
	fn := getTmpPrefFile(t)
	defer delTmpPrefFile(t, fn)

	dsk, err := prefs.NewDisk(fn)
	if err != nil {
		t.Errorf("error preparing disk: %v", err)
		return
	}

	var v prefs.Int
	err = dsk.Add("test", &v)
	test.ExpectSuccess(t, err)

	err = v.Set(115200)
	test.ExpectSuccess(t, err)

	err = dsk.Save()
	if err != nil {
		t.Errorf("error saving disk: %v", err)
		return
	}

	// start a new disk instance using the same file. (we haven't deleted it yet)
	dsk, err = prefs.NewDisk(fn)
	if err != nil {
		t.Errorf("error preparing disk: %v", err)
		return
	}

	var s prefs.Int
	err = dsk.Add("foo", &s)
	test.ExpectSuccess(t, err)

	err = s.Set(8)
	test.ExpectSuccess(t, err)

	err = dsk.Save()
	if err != nil {
		t.Errorf("error saving disk: %v", err)
		return
	}

	// compate file. the file should contain contents set by both disk
	// instances
	cmpTmpFile(t, fn, "foo :: 8\ntest :: 115200\n")
}

func TestCommandLineOverride(t *testing.T) {
	fn := getTmpPrefFile(t)
	defer delTmpPrefFile(t, fn)

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var port prefs.Int
	err = dsk.Add("gbxcart.port", &port)
	test.ExpectSuccess(t, err)
	err = port.Set(3)
	test.ExpectSuccess(t, err)
	err = dsk.Save()
	test.DemandSuccess(t, err)

	// command line value takes priority over the value on disk
	prefs.PushCommandLineStack("gbxcart.port::7")
	err = dsk.Load(false)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, port.Get().(int), 7)
	_ = prefs.PopCommandLineStack()

	// without an override the disk value is used
	err = dsk.Load(false)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, port.Get().(int), 3)
}

func TestIllegalKey(t *testing.T) {
	fn := getTmpPrefFile(t)
	defer delTmpPrefFile(t, fn)

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v prefs.Int
	test.ExpectFailure(t, dsk.Add("foo::bar", &v))
	test.ExpectSuccess(t, dsk.Add("foo", &v))
	test.ExpectSuccess(t, dsk.HasEntry("foo"))
	test.ExpectFailure(t, dsk.HasEntry("bar"))
}
