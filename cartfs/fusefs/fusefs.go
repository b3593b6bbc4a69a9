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

// Package fusefs mounts a cartfs.FS with go-fuse.
package fusefs

import (
	"context"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/jetsetilly/gbxfs/cartfs"
	"github.com/jetsetilly/gbxfs/curated"
	"github.com/jetsetilly/gbxfs/logger"
)

// Options for Mount().
type Options struct {
	// log every FUSE request
	Debug bool

	// allow users other than the mounting user to access the filesystem
	AllowOther bool
}

type root struct {
	fs.Inode
	cfs *cartfs.FS

	game *fs.Inode
	save *fs.Inode
}

var _ = (fs.NodeOnAdder)((*root)(nil))
var _ = (fs.NodeGetattrer)((*root)(nil))
var _ = (fs.NodeLookuper)((*root)(nil))
var _ = (fs.NodeReaddirer)((*root)(nil))
var _ = (fs.NodeUnlinker)((*root)(nil))
var _ = (cartfs.Invalidator)((*root)(nil))

type file struct {
	fs.Inode
	cfs *cartfs.FS
	id  cartfs.ID
}

var _ = (fs.NodeGetattrer)((*file)(nil))
var _ = (fs.NodeSetattrer)((*file)(nil))
var _ = (fs.NodeOpener)((*file)(nil))
var _ = (fs.NodeReader)((*file)(nil))
var _ = (fs.NodeWriter)((*file)(nil))

// Mount the filesystem at dir. The filesystem is unmounted with the Unmount()
// function of the returned server.
func Mount(dir string, cfs *cartfs.FS, opts Options) (*fuse.Server, error) {
	// the files change without warning so nothing is cached by the kernel
	var timeout time.Duration

	r := &root{cfs: cfs}

	server, err := fs.Mount(dir, r, &fs.Options{
		MountOptions: fuse.MountOptions{
			Debug:      opts.Debug,
			AllowOther: opts.AllowOther,
			FsName:     "gbxfs",
			Name:       "gbxfs",
		},
		EntryTimeout:   &timeout,
		AttrTimeout:    &timeout,
		RootStableAttr: &fs.StableAttr{Ino: uint64(cartfs.RootID), Mode: fuse.S_IFDIR},
	})
	if err != nil {
		return nil, curated.Errorf("fusefs: %v", err)
	}

	cfs.SetInvalidator(r)

	logger.Logf(logger.Allow, "fusefs", "mounted at %s", dir)

	return server, nil
}

func fill(out *fuse.Attr, a cartfs.Attr) {
	out.Ino = uint64(a.ID)
	out.Size = a.Size
	out.Nlink = a.Nlink
	if a.Dir {
		out.Mode = fuse.S_IFDIR | a.Perm
	} else {
		out.Mode = fuse.S_IFREG | a.Perm
	}
}

func (r *root) OnAdd(ctx context.Context) {
	r.game = r.NewPersistentInode(ctx, &file{cfs: r.cfs, id: cartfs.GameID},
		fs.StableAttr{Mode: fuse.S_IFREG, Ino: uint64(cartfs.GameID)})
	r.save = r.NewPersistentInode(ctx, &file{cfs: r.cfs, id: cartfs.SaveID},
		fs.StableAttr{Mode: fuse.S_IFREG, Ino: uint64(cartfs.SaveID)})
}

func (r *root) child(id cartfs.ID) *fs.Inode {
	switch id {
	case cartfs.GameID:
		return r.game
	case cartfs.SaveID:
		return r.save
	}
	return nil
}

func (r *root) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	a, errno := r.cfs.Getattr(cartfs.RootID)
	if errno != 0 {
		return errno
	}
	fill(&out.Attr, a)
	return 0
}

func (r *root) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	a, errno := r.cfs.Lookup(name)
	if errno != 0 {
		return nil, errno
	}
	fill(&out.Attr, a)
	return r.child(a.ID), 0
}

func (r *root) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	var entries []fuse.DirEntry
	for _, e := range r.cfs.Readdir() {
		// go-fuse adds the dot entries itself
		if e.Name == "." || e.Name == ".." {
			continue
		}
		mode := uint32(fuse.S_IFREG)
		if e.Dir {
			mode = fuse.S_IFDIR
		}
		entries = append(entries, fuse.DirEntry{Name: e.Name, Ino: uint64(e.ID), Mode: mode})
	}
	return fs.NewListDirStream(entries), 0
}

func (r *root) Unlink(ctx context.Context, name string) syscall.Errno {
	return r.cfs.Unlink(name)
}

// InvalidateContent implements the cartfs.Invalidator interface.
func (r *root) InvalidateContent(id cartfs.ID) error {
	n := r.child(id)
	if n == nil {
		return nil
	}
	if errno := n.NotifyContent(0, 0); errno != 0 && errno != syscall.ENOENT {
		return errno
	}
	return nil
}

// InvalidateEntry implements the cartfs.Invalidator interface.
func (r *root) InvalidateEntry(name string) error {
	r.RmChild(name)
	if errno := r.NotifyEntry(name); errno != 0 && errno != syscall.ENOENT {
		return errno
	}
	return nil
}

func (f *file) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	a, errno := f.cfs.Getattr(f.id)
	if errno != 0 {
		return errno
	}
	fill(&out.Attr, a)
	return 0
}

func (f *file) Setattr(ctx context.Context, fh fs.FileHandle, in *fuse.SetAttrIn, out *fuse.AttrOut) syscall.Errno {
	a, errno := f.cfs.Setattr(f.id)
	if errno != 0 {
		return errno
	}
	fill(&out.Attr, a)
	return 0
}

func (f *file) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if errno := f.cfs.Open(f.id); errno != 0 {
		return nil, 0, errno
	}
	return nil, fuse.FOPEN_DIRECT_IO, 0
}

func (f *file) Read(ctx context.Context, fh fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	n, errno := f.cfs.Read(f.id, dest, off)
	if errno != 0 {
		return nil, errno
	}
	return fuse.ReadResultData(dest[:n]), 0
}

func (f *file) Write(ctx context.Context, fh fs.FileHandle, data []byte, off int64) (uint32, syscall.Errno) {
	n, errno := f.cfs.Write(f.id, data, off)
	return uint32(n), errno
}
