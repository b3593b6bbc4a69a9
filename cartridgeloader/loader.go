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

package cartridgeloader

import (
	"crypto/sha1"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/edsrzf/mmap-go"
	"github.com/jetsetilly/gbxfs/curated"
)

// Loader is a ROM dump that has been loaded from a file.
type Loader struct {
	// filename of the dump
	Filename string

	// expected hash of the dump. empty string indicates that the hash is
	// unknown and need not be validated. after a load operation the value
	// will be the hash of the loaded data
	Hash string

	// the mapped data. not valid after Close()
	Data []byte

	f    *os.File
	mmap mmap.MMap
}

// NewLoader is the preferred method of initialisation for the Loader type.
func NewLoader(filename string) Loader {
	return Loader{
		Filename: filename,
	}
}

// ShortName returns a shortened version of the Loader filename.
func (cl Loader) ShortName() string {
	shortName := filepath.Base(cl.Filename)
	shortName = strings.TrimSuffix(shortName, filepath.Ext(cl.Filename))
	return shortName
}

// HasLoaded returns true if Load() has been successfully called.
func (cl Loader) HasLoaded() bool {
	return len(cl.Data) > 0
}

// Load maps the file into memory. An empty file is not loaded.
func (cl *Loader) Load() error {
	if cl.HasLoaded() {
		return nil
	}

	f, err := os.Open(cl.Filename)
	if err != nil {
		return curated.Errorf("cartridgeloader: %v", err)
	}

	// get file info. mapping an empty file is an error on some platforms
	cfi, err := f.Stat()
	if err != nil {
		f.Close()
		return curated.Errorf("cartridgeloader: %v", err)
	}
	if cfi.Size() == 0 {
		f.Close()
		return curated.Errorf("cartridgeloader: %v", fmt.Sprintf("%s is empty", cl.Filename))
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return curated.Errorf("cartridgeloader: %v", err)
	}

	// generate hash
	hash := fmt.Sprintf("%x", sha1.Sum(m))

	// check for hash consistency
	if cl.Hash != "" && cl.Hash != hash {
		_ = m.Unmap()
		f.Close()
		return curated.Errorf("cartridgeloader: %v", "unexpected hash value")
	}

	cl.Hash = hash
	cl.Data = m
	cl.mmap = m
	cl.f = f

	return nil
}

// Close unmaps the data. The Data field is nil afterwards.
func (cl *Loader) Close() error {
	if cl.mmap == nil {
		return nil
	}

	err := cl.mmap.Unmap()
	cl.f.Close()
	cl.mmap = nil
	cl.f = nil
	cl.Data = nil

	if err != nil {
		return curated.Errorf("cartridgeloader: %v", err)
	}
	return nil
}
