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

// Package cartfs presents the files published by a session.Session as a
// filesystem with a single directory.
//
// The FS type has no knowledge of FUSE. Each operation is expressed in terms
// of file IDs and returns a syscall.Errno so that the binding in the fusefs
// package does nothing more than translate arguments. Invalidation of kernel
// caches is requested through the Invalidator interface when the session
// publishes new files.
package cartfs

import (
	"sync"
	"syscall"

	"github.com/jetsetilly/gbxfs/curated"
	"github.com/jetsetilly/gbxfs/logger"
	"github.com/jetsetilly/gbxfs/notifications"
	"github.com/jetsetilly/gbxfs/session"
)

// ID identifies a node of the filesystem. The values are used as inode
// numbers.
type ID uint64

// List of valid ID values.
const (
	RootID ID = 1
	GameID ID = 2
	SaveID ID = 3
)

func (id ID) String() string {
	switch id {
	case RootID:
		return "root"
	case GameID:
		return "game"
	case SaveID:
		return "save"
	}
	return "unknown"
}

// Permission bits for each node.
const (
	RootMode     = 0o755
	GameMode     = 0o444
	SaveMode     = 0o644
	ReadOnlyMode = 0o444
)

// Attr is the result of Getattr() and Lookup().
type Attr struct {
	ID    ID
	Dir   bool
	Perm  uint32
	Size  uint64
	Nlink uint32
}

// DirEntry is an entry returned by Readdir().
type DirEntry struct {
	Name string
	ID   ID
	Dir  bool
}

// Invalidator removes stale information from the kernel caches.
type Invalidator interface {
	// the data of the file has changed
	InvalidateContent(id ID) error

	// the named entry in the root directory no longer exists
	InvalidateEntry(name string) error
}

// FS implements the filesystem operations.
type FS struct {
	sess *session.Session

	crit  sync.Mutex
	inval Invalidator

	// the names most recently seen for the game and save files. used to
	// invalidate entries that have been renamed
	gameName string
	saveName string
}

// NewFS is the preferred method of initialisation for the FS type.
func NewFS(sess *session.Session) *FS {
	fs := &FS{sess: sess}

	snap := sess.Acquire()
	fs.gameName = snap.Game.Name
	fs.saveName = snap.Save.Name
	snap.Release()

	return fs
}

// SetInvalidator sets the Invalidator used when files change. It can be nil.
func (fs *FS) SetInvalidator(inval Invalidator) {
	fs.crit.Lock()
	defer fs.crit.Unlock()
	fs.inval = inval
}

func (fs *FS) file(snap *session.Snapshot, id ID) (session.File, bool) {
	switch id {
	case GameID:
		return snap.Game, true
	case SaveID:
		return snap.Save, true
	}
	return session.File{}, false
}

func (fs *FS) attr(snap *session.Snapshot, id ID) (Attr, syscall.Errno) {
	switch id {
	case RootID:
		return Attr{ID: RootID, Dir: true, Perm: RootMode, Nlink: 2}, 0
	case GameID:
		return Attr{ID: GameID, Perm: GameMode, Size: uint64(snap.Game.Size()), Nlink: 1}, 0
	case SaveID:
		perm := uint32(SaveMode)
		if fs.sess.Options().ReadOnly {
			perm = ReadOnlyMode
		}
		return Attr{ID: SaveID, Perm: perm, Size: uint64(snap.Save.Size()), Nlink: 1}, 0
	}
	return Attr{}, syscall.ENOENT
}

// Getattr returns the attributes of the node.
func (fs *FS) Getattr(id ID) (Attr, syscall.Errno) {
	snap := fs.sess.Acquire()
	defer snap.Release()
	return fs.attr(snap, id)
}

// Lookup returns the attributes of the named file in the root directory.
func (fs *FS) Lookup(name string) (Attr, syscall.Errno) {
	snap := fs.sess.Acquire()
	defer snap.Release()

	switch name {
	case snap.Game.Name:
		return fs.attr(snap, GameID)
	case snap.Save.Name:
		return fs.attr(snap, SaveID)
	}

	return Attr{}, syscall.ENOENT
}

// Readdir lists the root directory.
func (fs *FS) Readdir() []DirEntry {
	snap := fs.sess.Acquire()
	defer snap.Release()

	return []DirEntry{
		{Name: ".", ID: RootID, Dir: true},
		{Name: "..", ID: RootID, Dir: true},
		{Name: snap.Game.Name, ID: GameID},
		{Name: snap.Save.Name, ID: SaveID},
	}
}

// Open checks that the node can be opened.
func (fs *FS) Open(id ID) syscall.Errno {
	switch id {
	case RootID:
		return syscall.EISDIR
	case GameID, SaveID:
		return 0
	}
	return syscall.ENOENT
}

// Read copies data from the file into dest, starting at off. Returns the
// number of bytes copied, which is zero if off is beyond the end of the
// file.
func (fs *FS) Read(id ID, dest []byte, off int64) (int, syscall.Errno) {
	if id == RootID {
		return 0, syscall.EISDIR
	}

	snap := fs.sess.Acquire()
	defer snap.Release()

	f, ok := fs.file(snap, id)
	if !ok {
		return 0, syscall.ENOENT
	}

	if off < 0 {
		return 0, syscall.EINVAL
	}
	if off >= int64(f.Size()) {
		return 0, 0
	}

	return copy(dest, f.Data[off:]), 0
}

// Write stages data for writing to the save file. The data is written to
// the cartridge by the session.
func (fs *FS) Write(id ID, data []byte, off int64) (int, syscall.Errno) {
	switch id {
	case RootID:
		return 0, syscall.EISDIR
	case GameID:
		return 0, syscall.EACCES
	case SaveID:
	default:
		return 0, syscall.ENOENT
	}

	n, err := fs.sess.WriteSave(data, off)
	if err != nil {
		logger.Log(logger.Allow, "cartfs", err)
		return 0, errno(err)
	}

	return n, 0
}

// Setattr accepts changes to the attributes of a file but does not act on
// them. Copying a file over the save file truncates it first.
func (fs *FS) Setattr(id ID) (Attr, syscall.Errno) {
	return fs.Getattr(id)
}

// Unlink pretends to remove the save file. Nothing else can be removed. The
// placeholder shown when there is no save file cannot be removed either.
func (fs *FS) Unlink(name string) syscall.Errno {
	snap := fs.sess.Acquire()
	defer snap.Release()

	if name == snap.Save.Name {
		if snap.Save.Placeholder {
			return syscall.ENOENT
		}
		return 0
	}
	return syscall.EACCES
}

// errno returns the error number for an error returned by the session.
func errno(err error) syscall.Errno {
	switch {
	case err == nil:
		return 0
	case curated.Is(err, session.ReadOnly):
		return syscall.EROFS
	case curated.Is(err, session.NoSave):
		return syscall.EAGAIN
	case curated.Is(err, session.TooLarge):
		return syscall.EFBIG
	}
	return syscall.EIO
}

// Notify implements the notifications.Notify interface.
func (fs *FS) Notify(notice notifications.Notice) error {
	switch notice {
	case notifications.NotifyGameChanged:
		return fs.invalidate(GameID)
	case notifications.NotifySaveChanged:
		return fs.invalidate(SaveID)
	default:
		logger.Log(logger.Allow, "cartfs", notice)
	}
	return nil
}

func (fs *FS) invalidate(id ID) error {
	snap := fs.sess.Acquire()
	f, _ := fs.file(snap, id)
	name := f.Name
	snap.Release()

	fs.crit.Lock()
	defer fs.crit.Unlock()

	prev := &fs.gameName
	if id == SaveID {
		prev = &fs.saveName
	}

	renamed := *prev != name
	old := *prev
	*prev = name

	if fs.inval == nil {
		return nil
	}

	if renamed && old != "" {
		if err := fs.inval.InvalidateEntry(old); err != nil {
			return curated.Errorf("cartfs: %v", err)
		}
	}

	if err := fs.inval.InvalidateContent(id); err != nil {
		return curated.Errorf("cartfs: %v", err)
	}

	return nil
}
