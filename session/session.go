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

package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jetsetilly/gbxfs/cartridgeloader"
	"github.com/jetsetilly/gbxfs/curated"
	"github.com/jetsetilly/gbxfs/hardware/cartridge"
	"github.com/jetsetilly/gbxfs/hardware/transfer"
	"github.com/jetsetilly/gbxfs/logger"
	"github.com/jetsetilly/gbxfs/notifications"
)

// Sentinel error patterns.
const (
	ReadOnly = "session: save file is read-only"
	NoSave   = "session: no save data"
	TooLarge = "session: write of %d bytes at offset %d is beyond the save size of %d bytes"
	Closed   = "session: closed"
)

// Names of placeholder files.
const (
	NoGameName  = "no game"
	ReadingName = "reading..."
	RAMOnlyName = "only reading ram"
	NoSaveName  = "no save"
)

// Session polls the cartridge reader and publishes the contents of the
// inserted cartridge.
type Session struct {
	cart   Cartridge
	opts   Options
	cache  *cartridgeloader.Cache
	notify notifications.Notify

	current atomic.Pointer[Snapshot]
	arena   arena
	staging *Staging

	// held by Run() and Step() for the duration of an iteration and by
	// Close()
	runCrit sync.Mutex
	closed  bool

	// the remaining fields are only accessed with runCrit held

	// identifies the most recently inserted cartridge. an empty key means
	// the next cartridge detected is treated as new
	key     string
	profile cartridge.Profile
	serial  uint64

	// the cartridge is in the reader and its files are published
	present bool

	// the files for the most recently inserted cartridge. the session holds
	// a reference to each lease so that the files can be republished after
	// the cartridge has been removed and reinserted
	files [numSlots]File
}

// NewSession is the preferred method of initialisation for the Session type.
// The notify argument can be nil.
func NewSession(cart Cartridge, notify notifications.Notify, opts Options) *Session {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	s := &Session{
		cart:    cart,
		opts:    opts,
		cache:   cartridgeloader.NewCache(opts.CacheDir),
		notify:  notify,
		staging: newStaging(),
	}

	s.files[gameSlot] = s.gamePlaceholder()
	s.files[saveSlot] = placeholder(NoSaveName)
	s.publish(s.files[gameSlot], s.files[saveSlot])

	return s
}

// SetNotify changes the recipient of notifications. It must not be called
// while Run() is running.
func (s *Session) SetNotify(notify notifications.Notify) {
	s.runCrit.Lock()
	defer s.runCrit.Unlock()
	s.notify = notify
}

// Options returns the options the Session was created with.
func (s *Session) Options() Options {
	return s.opts
}

// Acquire returns the most recently published Snapshot. The Snapshot must
// be released with Snapshot.Release().
func (s *Session) Acquire() *Snapshot {
	for {
		snap := s.current.Load()
		if snap.tryRetain() {
			return snap
		}
	}
}

// WriteSave stages p for writing to the save memory of the cartridge at
// offset off. The data is written to the cartridge by the background
// goroutine.
func (s *Session) WriteSave(p []byte, off int64) (int, error) {
	if s.opts.ReadOnly {
		return 0, curated.Errorf(ReadOnly)
	}

	snap := s.Acquire()
	defer snap.Release()

	if snap.Save.Placeholder {
		return 0, curated.Errorf(NoSave)
	}

	return s.staging.Write(snap.serial, snap.Save.Data, p, off)
}

// Pending returns true if there is save data waiting to be written to the
// cartridge.
func (s *Session) Pending() bool {
	return s.staging.Pending()
}

// Run polls the cartridge reader until the context is cancelled. The reader
// is polled once every poll interval or immediately after the save file has
// been written to.
//
// Cancellation is only noticed between iterations. An iteration that is
// dumping a large ROM can take several minutes.
func (s *Session) Run(ctx context.Context) error {
	s.runCrit.Lock()
	defer s.runCrit.Unlock()

	if s.closed {
		return curated.Errorf(Closed)
	}

	timer := time.NewTimer(s.opts.PollInterval)
	defer timer.Stop()

	for {
		_ = s.step()

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(s.opts.PollInterval)

		select {
		case <-ctx.Done():
			return nil
		case <-s.staging.wake:
		case <-timer.C:
		}
	}
}

// Step performs a single iteration of the polling loop. Errors from the
// reader are returned but the previously published files remain.
func (s *Session) Step() error {
	s.runCrit.Lock()
	defer s.runCrit.Unlock()

	if s.closed {
		return curated.Errorf(Closed)
	}

	return s.step()
}

// Close releases all buffers. If Run() is running the context must be
// cancelled first. Close() waits for Run() to return.
func (s *Session) Close() {
	s.runCrit.Lock()
	defer s.runCrit.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.present = false

	s.setFile(gameSlot, s.gamePlaceholder())
	s.setFile(saveSlot, placeholder(NoSaveName))
	s.publish(s.files[gameSlot], s.files[saveSlot])
	s.staging.reset(0)

	logger.Log(logger.Allow, "session", "closed")
}

func (s *Session) step() error {
	p, err := s.cart.Identify()
	if err != nil {
		logger.Log(logger.Allow, "session", err)
		return err
	}

	if !p.Present() {
		s.remove()
		return nil
	}

	if key(&p) != s.key {
		err = s.insert(p)
		if err != nil {
			logger.Log(logger.Allow, "session", err)
			return err
		}
	} else if !s.present {
		s.reinsert()
	}

	return s.flush()
}

func key(p *cartridge.Profile) string {
	return p.Mode.String() + ":" + p.Title
}

func (s *Session) gamePlaceholder() File {
	if s.opts.RAMOnly {
		return placeholder(RAMOnlyName)
	}
	return placeholder(NoGameName)
}

func (s *Session) gameName(p *cartridge.Profile) string {
	if s.opts.Filename != "" {
		return s.opts.Filename + p.Mode.Extension()
	}
	return p.GameName()
}

func (s *Session) saveName(p *cartridge.Profile) string {
	if s.opts.Filename != "" {
		return s.opts.Filename + cartridge.SaveExtension
	}
	return p.SaveName()
}

// setFile replaces the retained file for the slot
func (s *Session) setFile(sl slot, f File) {
	s.files[sl].lease.release()
	s.files[sl] = f
}

// forget the most recent cartridge so that it is dumped again when it is
// next detected
func (s *Session) forget() {
	s.key = ""
	s.setFile(gameSlot, s.gamePlaceholder())
	s.setFile(saveSlot, placeholder(NoSaveName))
}

func (s *Session) insert(p cartridge.Profile) error {
	logger.Logf(logger.Allow, "session", "inserted %s", &p)

	s.forget()
	s.profile = p
	s.serial++
	s.staging.reset(s.serial)
	s.present = true
	s.emit(notifications.NotifyCartridgeInserted)

	save := placeholder(NoSaveName)
	l, err := s.dumpRAM(&p)
	if err == nil {
		save = File{Name: s.saveName(&p), Data: l.data, lease: l}
	} else if !curated.Is(err, transfer.ErrNoSaveMemory) {
		s.publish(s.gamePlaceholder(), save)
		return err
	}
	s.setFile(saveSlot, save)

	if s.opts.RAMOnly {
		s.publish(s.files[gameSlot], s.files[saveSlot])
		s.key = key(&p)
		return nil
	}

	s.publish(placeholder(ReadingName), s.files[saveSlot])

	game, err := s.loadROM(&p)
	if err != nil {
		s.forget()
		s.publish(s.files[gameSlot], s.files[saveSlot])
		return err
	}
	s.setFile(gameSlot, game)
	s.publish(s.files[gameSlot], s.files[saveSlot])

	s.key = key(&p)

	return nil
}

func (s *Session) dumpRAM(p *cartridge.Profile) (*lease, error) {
	l := s.arena.lease(saveSlot, p.SaveSize())

	data, err := s.cart.DumpRAM(p, l.data)
	if err != nil {
		l.release()
		return nil, err
	}
	l.data = data

	return l, nil
}

// loadROM returns the game file from the cache if possible. otherwise the
// ROM is dumped and stored in the cache
func (s *Session) loadROM(p *cartridge.Profile) (File, error) {
	name := s.gameName(p)

	if s.cache.Enabled() {
		cl, err := s.cache.Load(p.GameName())
		if err == nil {
			if len(cl.Data) == p.ROMSize() {
				l := s.arena.adopt(gameSlot, cl.Data, func() {
					if err := cl.Close(); err != nil {
						logger.Log(logger.Allow, "session", err)
					}
				})
				return File{Name: name, Data: l.data, lease: l}, nil
			}
			logger.Logf(logger.Allow, "session", "cached %s is %d bytes. expected %d bytes", p.GameName(), len(cl.Data), p.ROMSize())
			_ = cl.Close()
		} else if !curated.Is(err, cartridgeloader.NotCached) {
			logger.Log(logger.Allow, "session", err)
		}
	}

	l := s.arena.lease(gameSlot, p.ROMSize())

	data, err := s.cart.DumpROM(p, l.data)
	if err != nil {
		l.release()
		return File{}, err
	}
	l.data = data

	if s.cache.Enabled() {
		if err := s.cache.Store(p.GameName(), l.data); err != nil {
			logger.Log(logger.Allow, "session", err)
		}
	}

	return File{Name: name, Data: l.data, lease: l}, nil
}

// remove publishes the placeholders after the cartridge has been removed
func (s *Session) remove() {
	if !s.present {
		return
	}
	s.present = false

	logger.Log(logger.Allow, "session", "cartridge removed")

	s.publish(s.gamePlaceholder(), placeholder(NoSaveName))
	s.emit(notifications.NotifyCartridgeRemoved)

	if s.opts.ReRead {
		s.forget()
		s.staging.reset(0)
	}
}

// reinsert publishes the files of a cartridge that was removed and then
// inserted again
func (s *Session) reinsert() {
	logger.Logf(logger.Allow, "session", "reinserted %s", &s.profile)

	s.present = true
	s.emit(notifications.NotifyCartridgeInserted)
	s.publish(s.files[gameSlot], s.files[saveSlot])
}

// flush writes any pending save data to the cartridge
func (s *Session) flush() error {
	if s.opts.ReadOnly || !s.present || s.files[saveSlot].Placeholder {
		return nil
	}

	if !s.staging.Pending() {
		return nil
	}

	l := s.arena.lease(saveSlot, s.profile.SaveSize())

	gen, ok := s.staging.take(s.serial, l.data)
	if !ok {
		l.release()
		return nil
	}

	err := s.cart.WriteRAM(&s.profile, l.data)
	if err != nil {
		l.release()
		logger.Log(logger.Allow, "session", err)

		// the staged data can never be written
		if curated.Is(err, transfer.SizeMismatch) || curated.Is(err, transfer.ErrNoSaveMemory) {
			s.staging.drop(gen)
		}

		return err
	}

	s.setFile(saveSlot, File{Name: s.saveName(&s.profile), Data: l.data, lease: l})
	s.publish(s.files[gameSlot], s.files[saveSlot])
	s.staging.done(gen)
	s.emit(notifications.NotifySaveWritten)

	return nil
}

// publish makes the files visible to the filesystem. the previous snapshot
// is released once everyone has finished with it
func (s *Session) publish(game File, save File) {
	snap := &Snapshot{
		Game:   game,
		Save:   save,
		serial: s.serial,
	}
	if s.present {
		snap.Profile = s.profile
	}
	snap.refs.Store(1)
	game.lease.retain()
	save.lease.retain()

	prev := s.current.Swap(snap)
	if prev == nil {
		return
	}

	if prev.Game.lease != game.lease || prev.Game.Name != game.Name {
		s.emit(notifications.NotifyGameChanged)
	}
	if prev.Save.lease != save.lease || prev.Save.Name != save.Name {
		s.emit(notifications.NotifySaveChanged)
	}

	prev.Release()
}

func (s *Session) emit(notice notifications.Notice) {
	if s.notify == nil {
		return
	}
	if err := s.notify.Notify(notice); err != nil {
		logger.Log(logger.Allow, "session", err)
	}
}
