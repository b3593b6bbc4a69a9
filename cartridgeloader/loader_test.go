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

package cartridgeloader_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/jetsetilly/gbxfs/cartridgeloader"
	"github.com/jetsetilly/gbxfs/curated"
	"github.com/jetsetilly/gbxfs/test"
)

func TestCache(t *testing.T) {
	cache := cartridgeloader.NewCache(t.TempDir())
	test.ExpectSuccess(t, cache.Enabled())

	_, err := cache.Load("TETRIS.gb")
	test.ExpectSuccess(t, curated.Is(err, cartridgeloader.NotCached))

	data := bytes.Repeat([]byte{0x00, 0xc3, 0x50, 0x01}, 0x2000)
	test.DemandSuccess(t, cache.Store("TETRIS.gb", data))

	cl, err := cache.Load("TETRIS.gb")
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, cl.HasLoaded())
	test.ExpectSuccess(t, bytes.Equal(cl.Data, data))
	test.ExpectEquality(t, cl.ShortName(), "TETRIS")
	test.ExpectEquality(t, len(cl.Hash), 40)

	test.ExpectSuccess(t, cl.Close())
	test.ExpectFailure(t, cl.HasLoaded())

	// no temporary files are left behind
	entries, err := os.ReadDir(filepath.Dir(cache.Path("TETRIS.gb")))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(entries), 1)
}

func TestCacheEmptyFile(t *testing.T) {
	dir := t.TempDir()
	cache := cartridgeloader.NewCache(dir)

	test.DemandSuccess(t, os.WriteFile(cache.Path("EMPTY.gba"), []byte{}, 0o644))

	_, err := cache.Load("EMPTY.gba")
	test.ExpectSuccess(t, curated.Is(err, cartridgeloader.NotCached))
}

func TestCacheSaveFiles(t *testing.T) {
	cache := cartridgeloader.NewCache(t.TempDir())

	err := cache.Store("TETRIS.sav", []byte{0x01})
	test.ExpectSuccess(t, curated.Is(err, cartridgeloader.NotROMFile))

	_, err = cache.Load("TETRIS.sav")
	test.ExpectSuccess(t, curated.Is(err, cartridgeloader.NotROMFile))
}

func TestCacheDisabled(t *testing.T) {
	cache := cartridgeloader.NewCache("")
	test.ExpectFailure(t, cache.Enabled())

	_, err := cache.Load("TETRIS.gb")
	test.ExpectSuccess(t, curated.Is(err, cartridgeloader.CacheDisabled))

	var nilCache *cartridgeloader.Cache
	test.ExpectFailure(t, nilCache.Enabled())
}

func TestHash(t *testing.T) {
	dir := t.TempDir()
	fn := filepath.Join(dir, "ZELDA.gb")
	test.DemandSuccess(t, os.WriteFile(fn, []byte("link's awakening"), 0o644))

	cl := cartridgeloader.NewLoader(fn)
	cl.Hash = "0000000000000000000000000000000000000000"
	test.ExpectFailure(t, cl.Load())
	test.ExpectFailure(t, cl.HasLoaded())

	cl = cartridgeloader.NewLoader(fn)
	test.DemandSuccess(t, cl.Load())
	hash := cl.Hash
	test.ExpectSuccess(t, cl.Close())

	cl = cartridgeloader.NewLoader(fn)
	cl.Hash = hash
	test.ExpectSuccess(t, cl.Load())
	test.ExpectSuccess(t, cl.Close())
}

func TestROMExtensions(t *testing.T) {
	test.ExpectSuccess(t, cartridgeloader.IsROMFile("a.gb"))
	test.ExpectSuccess(t, cartridgeloader.IsROMFile("a.GBC"))
	test.ExpectSuccess(t, cartridgeloader.IsROMFile("a.gba"))
	test.ExpectFailure(t, cartridgeloader.IsROMFile("a.sav"))
	test.ExpectFailure(t, cartridgeloader.IsROMFile("gb"))
}
