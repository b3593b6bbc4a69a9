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

package session_test

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jetsetilly/gbxfs/curated"
	"github.com/jetsetilly/gbxfs/hardware/cartridge"
	"github.com/jetsetilly/gbxfs/hardware/gbxcart"
	"github.com/jetsetilly/gbxfs/hardware/gbxcart/firmware"
	"github.com/jetsetilly/gbxfs/hardware/transfer"
	"github.com/jetsetilly/gbxfs/notifications"
	"github.com/jetsetilly/gbxfs/session"
	"github.com/jetsetilly/gbxfs/test"
	"go.uber.org/mock/gomock"
)

func newHardware(t *testing.T, d *firmware.Device) *session.Hardware {
	t.Helper()
	c := gbxcart.NewClient(d)
	c.Delay = func(time.Duration) {}
	c.PollBudget = 100
	test.DemandSuccess(t, c.Connect())
	return session.NewHardware(c, nil)
}

// a GB cartridge with 32KB of ROM and one 8KB bank of RAM
func mockProfile(title string) cartridge.Profile {
	return cartridge.Profile{
		Mode:       cartridge.GameBoy,
		Title:      title,
		CartType:   0x1b,
		ROMBanks:   2,
		RAMBanks:   1,
		RAMEnd:     0xbfff,
		ChecksumOK: true,
	}
}

// fill returns a DoAndReturn function for DumpROM and DumpRAM that fills the
// destination with v
func fill(v byte) func(*cartridge.Profile, []byte) ([]byte, error) {
	return func(_ *cartridge.Profile, dst []byte) ([]byte, error) {
		for i := range dst {
			dst[i] = v
		}
		return dst, nil
	}
}

func TestRoundTrip(t *testing.T) {
	rom := firmware.GBROM("ROUNDTRIP", 0x1b, 2, 3)
	gb := firmware.NewGB(rom, 0x8000)
	copy(gb.RAM, firmware.Pattern(len(gb.RAM), 0x11))

	d := firmware.NewDevice()
	d.InsertGB(gb)

	sess := session.NewSession(newHardware(t, d), nil, session.NewOptions())
	defer sess.Close()

	snap := sess.Acquire()
	test.ExpectEquality(t, snap.Game.Name, session.NoGameName)
	test.ExpectEquality(t, snap.Save.Name, session.NoSaveName)
	test.ExpectEquality(t, snap.Game.Size(), 0)
	snap.Release()

	test.DemandSuccess(t, sess.Step())

	snap = sess.Acquire()
	test.ExpectEquality(t, snap.Game.Name, "ROUNDTRIP.gb")
	test.ExpectEquality(t, snap.Save.Name, "ROUNDTRIP.sav")
	test.ExpectEquality(t, snap.Profile.Title, "ROUNDTRIP")
	test.ExpectSuccess(t, bytes.Equal(snap.Game.Data, rom))
	test.ExpectSuccess(t, bytes.Equal(snap.Save.Data, gb.RAM))
	snap.Release()

	data := bytes.Repeat([]byte{0xc0, 0xde}, 0x80)
	n, err := sess.WriteSave(data, 0x1f00)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, n, len(data))
	test.ExpectSuccess(t, sess.Pending())

	// the cartridge is only written to by the polling loop
	test.ExpectFailure(t, bytes.Equal(gb.RAM[0x1f00:0x2000], data))

	test.DemandSuccess(t, sess.Step())
	test.ExpectFailure(t, sess.Pending())
	test.ExpectSuccess(t, bytes.Equal(gb.RAM[0x1f00:0x2000], data))

	snap = sess.Acquire()
	test.ExpectSuccess(t, bytes.Equal(snap.Save.Data, gb.RAM))
	snap.Release()

	// dump the save memory again to be sure
	ram, err := newHardware(t, d).DumpRAM(&snap.Profile, nil)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, bytes.Equal(ram, gb.RAM))
}

func TestNoSaveMemory(t *testing.T) {
	d := firmware.NewDevice()
	d.InsertGB(firmware.NewGB(firmware.GBROM("TETRIS", 0x00, 0, 0), 0))

	sess := session.NewSession(newHardware(t, d), nil, session.NewOptions())
	defer sess.Close()
	test.DemandSuccess(t, sess.Step())

	snap := sess.Acquire()
	test.ExpectEquality(t, snap.Game.Name, "TETRIS.gb")
	test.ExpectEquality(t, snap.Save.Name, session.NoSaveName)
	test.ExpectSuccess(t, snap.Save.Placeholder)
	snap.Release()

	_, err := sess.WriteSave([]byte{0x01}, 0)
	test.ExpectSuccess(t, curated.Is(err, session.NoSave))
}

func TestNotifications(t *testing.T) {
	ctrl := gomock.NewController(t)
	cart := NewMockCartridge(ctrl)
	notify := NewMockNotify(ctrl)

	p := mockProfile("NOTIFY")
	gomock.InOrder(
		cart.EXPECT().Identify().Return(p, nil),
		cart.EXPECT().Identify().Return(cartridge.Profile{}, nil),
		cart.EXPECT().Identify().Return(cartridge.Profile{}, nil),
		cart.EXPECT().Identify().Return(p, nil),
	)
	cart.EXPECT().DumpRAM(gomock.Any(), gomock.Any()).DoAndReturn(fill(0x01))
	cart.EXPECT().DumpROM(gomock.Any(), gomock.Any()).DoAndReturn(fill(0x02))

	gomock.InOrder(
		// insertion
		notify.EXPECT().Notify(notifications.NotifyCartridgeInserted),
		notify.EXPECT().Notify(notifications.NotifyGameChanged),
		notify.EXPECT().Notify(notifications.NotifySaveChanged),
		notify.EXPECT().Notify(notifications.NotifyGameChanged),

		// removal. the second empty poll changes nothing
		notify.EXPECT().Notify(notifications.NotifyGameChanged),
		notify.EXPECT().Notify(notifications.NotifySaveChanged),
		notify.EXPECT().Notify(notifications.NotifyCartridgeRemoved),

		// reinsertion republishes without dumping
		notify.EXPECT().Notify(notifications.NotifyCartridgeInserted),
		notify.EXPECT().Notify(notifications.NotifyGameChanged),
		notify.EXPECT().Notify(notifications.NotifySaveChanged),
	)

	sess := session.NewSession(cart, notify, session.NewOptions())
	for range 4 {
		test.DemandSuccess(t, sess.Step())
	}

	snap := sess.Acquire()
	test.ExpectEquality(t, snap.Game.Name, "NOTIFY.gb")
	test.ExpectEquality(t, snap.Game.Data[0], byte(0x02))
	test.ExpectEquality(t, snap.Save.Data[0], byte(0x01))
	snap.Release()
}

func TestReRead(t *testing.T) {
	ctrl := gomock.NewController(t)
	cart := NewMockCartridge(ctrl)

	p := mockProfile("REREAD")
	gomock.InOrder(
		cart.EXPECT().Identify().Return(p, nil),
		cart.EXPECT().Identify().Return(cartridge.Profile{}, nil),
		cart.EXPECT().Identify().Return(p, nil),
	)
	cart.EXPECT().DumpRAM(gomock.Any(), gomock.Any()).DoAndReturn(fill(0x01)).Times(2)
	cart.EXPECT().DumpROM(gomock.Any(), gomock.Any()).DoAndReturn(fill(0x02)).Times(2)

	opts := session.NewOptions()
	opts.ReRead = true

	sess := session.NewSession(cart, nil, opts)
	defer sess.Close()

	test.DemandSuccess(t, sess.Step())
	test.DemandSuccess(t, sess.Step())

	snap := sess.Acquire()
	test.ExpectEquality(t, snap.Game.Name, session.NoGameName)
	test.ExpectEquality(t, snap.Profile.Present(), false)
	snap.Release()

	test.DemandSuccess(t, sess.Step())

	snap = sess.Acquire()
	test.ExpectEquality(t, snap.Game.Name, "REREAD.gb")
	snap.Release()
}

func TestRAMOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	cart := NewMockCartridge(ctrl)

	p := mockProfile("RAMONLY")
	gomock.InOrder(
		cart.EXPECT().Identify().Return(p, nil),
		cart.EXPECT().Identify().Return(cartridge.Profile{}, nil),
		cart.EXPECT().Identify().Return(p, nil),
	)
	cart.EXPECT().DumpRAM(gomock.Any(), gomock.Any()).DoAndReturn(fill(0x01))

	opts := session.NewOptions()
	opts.RAMOnly = true
	opts.Filename = "cart"

	sess := session.NewSession(cart, nil, opts)
	defer sess.Close()

	test.DemandSuccess(t, sess.Step())

	snap := sess.Acquire()
	test.ExpectEquality(t, snap.Game.Name, session.RAMOnlyName)
	test.ExpectEquality(t, snap.Save.Name, "cart.sav")
	snap.Release()

	test.DemandSuccess(t, sess.Step())

	snap = sess.Acquire()
	test.ExpectEquality(t, snap.Game.Name, session.RAMOnlyName)
	test.ExpectEquality(t, snap.Save.Name, session.NoSaveName)
	snap.Release()

	// the save file returns after reinsertion
	test.DemandSuccess(t, sess.Step())

	snap = sess.Acquire()
	test.ExpectEquality(t, snap.Save.Name, "cart.sav")
	test.ExpectEquality(t, snap.Save.Size(), 0x2000)
	snap.Release()
}

func TestIdentifyError(t *testing.T) {
	ctrl := gomock.NewController(t)
	cart := NewMockCartridge(ctrl)

	p := mockProfile("UNPLUGGED")
	gomock.InOrder(
		cart.EXPECT().Identify().Return(p, nil),
		cart.EXPECT().Identify().Return(cartridge.Profile{}, curated.Errorf(gbxcart.DeviceUnresponsive)),
	)
	cart.EXPECT().DumpRAM(gomock.Any(), gomock.Any()).DoAndReturn(fill(0x01))
	cart.EXPECT().DumpROM(gomock.Any(), gomock.Any()).DoAndReturn(fill(0x02))

	sess := session.NewSession(cart, nil, session.NewOptions())
	defer sess.Close()

	test.DemandSuccess(t, sess.Step())

	err := sess.Step()
	test.ExpectSuccess(t, curated.Is(err, gbxcart.DeviceUnresponsive))

	// the files are still available
	snap := sess.Acquire()
	test.ExpectEquality(t, snap.Game.Name, "UNPLUGGED.gb")
	test.ExpectEquality(t, snap.Save.Name, "UNPLUGGED.sav")
	snap.Release()
}

func TestDumpROMError(t *testing.T) {
	ctrl := gomock.NewController(t)
	cart := NewMockCartridge(ctrl)

	p := mockProfile("FLAKY")
	cart.EXPECT().Identify().Return(p, nil).Times(2)
	cart.EXPECT().DumpRAM(gomock.Any(), gomock.Any()).DoAndReturn(fill(0x01)).Times(2)
	gomock.InOrder(
		cart.EXPECT().DumpROM(gomock.Any(), gomock.Any()).Return(nil, curated.Errorf(gbxcart.DeviceUnresponsive)),
		cart.EXPECT().DumpROM(gomock.Any(), gomock.Any()).DoAndReturn(fill(0x02)),
	)

	sess := session.NewSession(cart, nil, session.NewOptions())
	defer sess.Close()

	err := sess.Step()
	test.ExpectSuccess(t, curated.Is(err, gbxcart.DeviceUnresponsive))

	snap := sess.Acquire()
	test.ExpectEquality(t, snap.Game.Name, session.NoGameName)
	snap.Release()

	// the cartridge is treated as new on the next poll
	test.DemandSuccess(t, sess.Step())

	snap = sess.Acquire()
	test.ExpectEquality(t, snap.Game.Name, "FLAKY.gb")
	snap.Release()
}

func TestOversizedWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	cart := NewMockCartridge(ctrl)

	cart.EXPECT().Identify().Return(mockProfile("OVERSIZE"), nil).Times(2)
	cart.EXPECT().DumpRAM(gomock.Any(), gomock.Any()).DoAndReturn(fill(0x01))
	cart.EXPECT().DumpROM(gomock.Any(), gomock.Any()).DoAndReturn(fill(0x02))

	sess := session.NewSession(cart, nil, session.NewOptions())
	defer sess.Close()
	test.DemandSuccess(t, sess.Step())

	n, err := sess.WriteSave(make([]byte, 16), 0x2000-8)
	test.ExpectSuccess(t, curated.Is(err, session.TooLarge))
	test.ExpectEquality(t, n, 0)
	test.ExpectFailure(t, sess.Pending())

	_, err = sess.WriteSave(make([]byte, 1), -1)
	test.ExpectSuccess(t, curated.Is(err, session.TooLarge))

	// WriteRAM is never called
	test.DemandSuccess(t, sess.Step())

	snap := sess.Acquire()
	test.ExpectEquality(t, snap.Save.Data[0x1fff], byte(0x01))
	snap.Release()
}

func TestReadOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	cart := NewMockCartridge(ctrl)

	cart.EXPECT().Identify().Return(mockProfile("READONLY"), nil)
	cart.EXPECT().DumpRAM(gomock.Any(), gomock.Any()).DoAndReturn(fill(0x01))
	cart.EXPECT().DumpROM(gomock.Any(), gomock.Any()).DoAndReturn(fill(0x02))

	opts := session.NewOptions()
	opts.ReadOnly = true

	sess := session.NewSession(cart, nil, opts)
	defer sess.Close()
	test.DemandSuccess(t, sess.Step())

	_, err := sess.WriteSave([]byte{0x00}, 0)
	test.ExpectSuccess(t, curated.Is(err, session.ReadOnly))
}

func TestWriteRetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	cart := NewMockCartridge(ctrl)
	notify := NewMockNotify(ctrl)

	notify.EXPECT().Notify(gomock.Not(notifications.NotifySaveWritten)).Return(nil).AnyTimes()
	notify.EXPECT().Notify(notifications.NotifySaveWritten).Return(nil)

	cart.EXPECT().Identify().Return(mockProfile("RETRY"), nil).Times(3)
	cart.EXPECT().DumpRAM(gomock.Any(), gomock.Any()).DoAndReturn(fill(0x01))
	cart.EXPECT().DumpROM(gomock.Any(), gomock.Any()).DoAndReturn(fill(0x02))

	var written []byte
	gomock.InOrder(
		cart.EXPECT().WriteRAM(gomock.Any(), gomock.Any()).Return(curated.Errorf(gbxcart.DeviceUnresponsive)),
		cart.EXPECT().WriteRAM(gomock.Any(), gomock.Any()).DoAndReturn(func(_ *cartridge.Profile, data []byte) error {
			written = append([]byte{}, data...)
			return nil
		}),
	)

	sess := session.NewSession(cart, notify, session.NewOptions())
	defer sess.Close()
	test.DemandSuccess(t, sess.Step())

	_, err := sess.WriteSave([]byte{0xaa, 0xbb}, 0x10)
	test.DemandSuccess(t, err)

	err = sess.Step()
	test.ExpectSuccess(t, curated.Is(err, gbxcart.DeviceUnresponsive))
	test.ExpectSuccess(t, sess.Pending())

	// a second write before the retry is merged with the first
	_, err = sess.WriteSave([]byte{0xcc}, 0x12)
	test.DemandSuccess(t, err)

	test.DemandSuccess(t, sess.Step())
	test.ExpectFailure(t, sess.Pending())

	test.DemandEquality(t, len(written), 0x2000)
	test.ExpectEquality(t, written[0x0f], byte(0x01))
	test.ExpectEquality(t, written[0x10], byte(0xaa))
	test.ExpectEquality(t, written[0x11], byte(0xbb))
	test.ExpectEquality(t, written[0x12], byte(0xcc))
	test.ExpectEquality(t, written[0x13], byte(0x01))
}

func TestWriteDropped(t *testing.T) {
	ctrl := gomock.NewController(t)
	cart := NewMockCartridge(ctrl)

	p := mockProfile("DROPPED")
	cart.EXPECT().Identify().Return(p, nil).Times(3)
	cart.EXPECT().DumpRAM(gomock.Any(), gomock.Any()).DoAndReturn(fill(0x01))
	cart.EXPECT().DumpROM(gomock.Any(), gomock.Any()).DoAndReturn(fill(0x02))
	cart.EXPECT().WriteRAM(gomock.Any(), gomock.Any()).Return(curated.Errorf(transfer.SizeMismatch, 0x2000, 0x1000))

	sess := session.NewSession(cart, nil, session.NewOptions())
	defer sess.Close()
	test.DemandSuccess(t, sess.Step())

	_, err := sess.WriteSave([]byte{0xaa}, 0)
	test.DemandSuccess(t, err)

	err = sess.Step()
	test.ExpectSuccess(t, curated.Is(err, transfer.SizeMismatch))
	test.ExpectFailure(t, sess.Pending())

	// WriteRAM is not called again
	test.DemandSuccess(t, sess.Step())
}

func TestCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	cart := NewMockCartridge(ctrl)

	p := mockProfile("CACHED")
	cart.EXPECT().Identify().Return(p, nil).Times(2)
	cart.EXPECT().DumpRAM(gomock.Any(), gomock.Any()).DoAndReturn(fill(0x01)).Times(2)

	// the ROM is only dumped by the first session
	cart.EXPECT().DumpROM(gomock.Any(), gomock.Any()).DoAndReturn(fill(0x5c))

	opts := session.NewOptions()
	opts.CacheDir = t.TempDir()

	sess := session.NewSession(cart, nil, opts)
	test.DemandSuccess(t, sess.Step())
	sess.Close()

	sess = session.NewSession(cart, nil, opts)
	defer sess.Close()
	test.DemandSuccess(t, sess.Step())

	snap := sess.Acquire()
	defer snap.Release()
	test.ExpectEquality(t, snap.Game.Name, "CACHED.gb")
	test.DemandEquality(t, snap.Game.Size(), 0x8000)
	test.ExpectSuccess(t, bytes.Equal(snap.Game.Data, bytes.Repeat([]byte{0x5c}, 0x8000)))
}

// readers must never see the game file of one cartridge with the save file
// of another
func TestConcurrentPublish(t *testing.T) {
	ctrl := gomock.NewController(t)
	cart := NewMockCartridge(ctrl)

	profiles := []cartridge.Profile{mockProfile("AAAA"), mockProfile("BBBB"), {}}
	profiles[1].ROMBanks = 4

	polls := 0
	cart.EXPECT().Identify().DoAndReturn(func() (cartridge.Profile, error) {
		p := profiles[polls%len(profiles)]
		polls++
		return p, nil
	}).AnyTimes()
	cart.EXPECT().DumpRAM(gomock.Any(), gomock.Any()).DoAndReturn(func(p *cartridge.Profile, dst []byte) ([]byte, error) {
		return fill(p.Title[0])(p, dst)
	}).AnyTimes()
	cart.EXPECT().DumpROM(gomock.Any(), gomock.Any()).DoAndReturn(func(p *cartridge.Profile, dst []byte) ([]byte, error) {
		return fill(p.Title[0])(p, dst)
	}).AnyTimes()

	opts := session.NewOptions()
	opts.ReRead = true

	sess := session.NewSession(cart, nil, opts)
	defer sess.Close()

	var wg sync.WaitGroup
	stop := make(chan struct{})
	errs := make(chan string, 4)

	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}

				snap := sess.Acquire()
				if !snap.Game.Placeholder && !snap.Save.Placeholder {
					if snap.Game.Name[0] != snap.Save.Name[0] {
						errs <- snap.Game.Name + " " + snap.Save.Name
					}
					if snap.Game.Data[0] != snap.Save.Data[len(snap.Save.Data)-1] {
						errs <- "data from different cartridges"
					}
					if snap.Game.Size() != snap.Profile.ROMSize() {
						errs <- "game size does not match profile"
					}
				}
				snap.Release()
			}
		}()
	}

	for range 300 {
		test.DemandSuccess(t, sess.Step())
	}

	close(stop)
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	cart := NewMockCartridge(ctrl)

	cart.EXPECT().Identify().Return(mockProfile("RUNNING"), nil).AnyTimes()
	cart.EXPECT().DumpRAM(gomock.Any(), gomock.Any()).DoAndReturn(fill(0x01))
	cart.EXPECT().DumpROM(gomock.Any(), gomock.Any()).DoAndReturn(fill(0x02))

	flushed := make(chan struct{})
	cart.EXPECT().WriteRAM(gomock.Any(), gomock.Any()).DoAndReturn(func(*cartridge.Profile, []byte) error {
		close(flushed)
		return nil
	})

	opts := session.NewOptions()
	opts.PollInterval = time.Hour

	sess := session.NewSession(cart, nil, opts)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- sess.Run(ctx)
	}()

	// wait for the cartridge to be published
	deadline := time.Now().Add(5 * time.Second)
	for {
		snap := sess.Acquire()
		ok := !snap.Game.Placeholder && !snap.Save.Placeholder
		snap.Release()
		if ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("cartridge was not published")
		}
		time.Sleep(time.Millisecond)
	}

	// the write wakes the polling loop long before the poll interval
	_, err := sess.WriteSave([]byte{0xff}, 0)
	test.DemandSuccess(t, err)

	select {
	case <-flushed:
	case <-time.After(5 * time.Second):
		t.Fatal("save data was not flushed")
	}

	cancel()
	test.ExpectSuccess(t, <-done)

	sess.Close()
	test.ExpectSuccess(t, curated.Is(sess.Step(), session.Closed))
	test.ExpectSuccess(t, curated.Is(sess.Run(context.Background()), session.Closed))
}
