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
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jetsetilly/gbxfs/curated"
	"github.com/jetsetilly/gbxfs/logger"
)

// Sentinel error patterns.
const (
	NotCached     = "cartridgeloader: %s is not cached"
	NotROMFile    = "cartridgeloader: %s is not a ROM file"
	CacheDisabled = "cartridgeloader: no cache directory"
)

// Cache is a directory of ROM dumps. The zero value is a disabled cache.
type Cache struct {
	dir string
}

// NewCache is the preferred method of initialisation for the Cache type. An
// empty dir disables the cache.
func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

// Enabled returns true if the cache has a directory.
func (c *Cache) Enabled() bool {
	return c != nil && c.dir != ""
}

// Path returns the filename used for the named dump.
func (c *Cache) Path(name string) string {
	return filepath.Join(c.dir, filepath.Base(name))
}

// Load the named dump from the cache. The NotCached error is returned if
// there is no dump with that name or the dump is empty.
func (c *Cache) Load(name string) (*Loader, error) {
	if !c.Enabled() {
		return nil, curated.Errorf(CacheDisabled)
	}
	if !IsROMFile(name) {
		return nil, curated.Errorf(NotROMFile, name)
	}

	fi, err := os.Stat(c.Path(name))
	if err != nil || fi.IsDir() || fi.Size() == 0 {
		return nil, curated.Errorf(NotCached, name)
	}

	cl := NewLoader(c.Path(name))
	err = cl.Load()
	if err != nil {
		return nil, err
	}

	logger.Logf(logger.Allow, "cartridgeloader", "loaded %s from cache (%s)", cl.ShortName(), cl.Hash)

	return &cl, nil
}

// Store writes the dump to the cache. The dump is written to a temporary
// file first so that an interrupted write never leaves a partial dump with
// the real name.
func (c *Cache) Store(name string, data []byte) error {
	if !c.Enabled() {
		return curated.Errorf(CacheDisabled)
	}
	if !IsROMFile(name) {
		return curated.Errorf(NotROMFile, name)
	}

	err := os.MkdirAll(c.dir, 0o755)
	if err != nil {
		return curated.Errorf("cartridgeloader: %v", err)
	}

	f, err := os.CreateTemp(c.dir, ".dump-*")
	if err != nil {
		return curated.Errorf("cartridgeloader: %v", err)
	}
	tmp := f.Name()

	_, err = f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp, c.Path(name))
	}
	if err != nil {
		if rerr := os.Remove(tmp); rerr != nil && !errors.Is(rerr, fs.ErrNotExist) {
			logger.Log(logger.Allow, "cartridgeloader", rerr)
		}
		return curated.Errorf("cartridgeloader: %v", err)
	}

	logger.Logf(logger.Allow, "cartridgeloader", "stored %s in cache", name)

	return nil
}
