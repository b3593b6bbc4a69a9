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

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/bradleyjkemp/memviz"
	"github.com/jetsetilly/gbxfs/cartfs"
	"github.com/jetsetilly/gbxfs/cartfs/fusefs"
	"github.com/jetsetilly/gbxfs/curated"
	"github.com/jetsetilly/gbxfs/hardware/cartridge"
	"github.com/jetsetilly/gbxfs/hardware/cartridge/saveinfo"
	"github.com/jetsetilly/gbxfs/hardware/gbxcart"
	"github.com/jetsetilly/gbxfs/hardware/serial"
	"github.com/jetsetilly/gbxfs/hardware/transfer"
	"github.com/jetsetilly/gbxfs/logger"
	"github.com/jetsetilly/gbxfs/modalflag"
	"github.com/jetsetilly/gbxfs/paths"
	"github.com/jetsetilly/gbxfs/prefs"
	"github.com/jetsetilly/gbxfs/session"
	"github.com/jetsetilly/gbxfs/statsview"
	"github.com/jetsetilly/gbxfs/version"
	"github.com/tebeka/atexit"
)

// the name of the config file in the resource directory
const configFile = "config"

type stateReq = string

const (
	// main thread should end as soon as possible.
	//
	// takes optional int argument, indicating the status code.
	reqQuit stateReq = "QUIT"

	// reset interrupt signal handling. used when an alternative
	// handler is more appropriate. for example, the mount mode unmounts the
	// filesystem before quitting.
	//
	// takes no arguments.
	reqNoIntSig stateReq = "NOINTSIG"
)

type stateRequest struct {
	req  stateReq
	args interface{}
}

// communication between the main() function and the launch() function.
type mainSync struct {
	state chan stateRequest
}

func main() {
	sync := &mainSync{
		state: make(chan stateRequest),
	}

	// the value to use with atexit.Exit(). can be changed with reqQuit
	// stateRequest
	exitVal := 0

	// #ctrlc default handler. can be turned off with reqNoIntSig request
	intChan := make(chan os.Signal, 1)
	signal.Notify(intChan, os.Interrupt)

	// launch program as a go routine. further communication is  through
	// the mainSync instance
	go launch(sync)

	done := false
	for !done {
		select {
		case <-intChan:
			fmt.Println("\r")
			done = true

		case state := <-sync.state:
			switch state.req {
			case reqQuit:
				done = true

				if state.args != nil {
					if v, ok := state.args.(int); ok {
						exitVal = v
					} else {
						panic(fmt.Sprintf("cannot convert %s arguments into int", reqQuit))
					}
				}

			case reqNoIntSig:
				signal.Reset(os.Interrupt)
				if state.args != nil {
					panic(fmt.Sprintf("%s does not accept any arguments", reqNoIntSig))
				}
			}
		}
	}

	// atexit handlers unmount the filesystem and close the serial link
	atexit.Exit(exitVal)
}

// launch is called from main() as a goroutine. uses mainSync instance to
// indicate when to quit.
func launch(sync *mainSync) {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.NewMode()
	md.AddSubModes("MOUNT", "INFO", "DUMP", "VERSION")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		sync.state <- stateRequest{req: reqQuit}
		return

	case modalflag.ParseError:
		fmt.Printf("* error: %v\n", err)
		sync.state <- stateRequest{req: reqQuit, args: 10}
		return
	}

	switch md.Mode() {
	case "MOUNT":
		err = mount(md, sync)

	case "INFO":
		err = info(md)

	case "DUMP":
		err = dump(md)

	case "VERSION":
		err = showVersion(md)
	}

	if err != nil {
		fmt.Printf("* error in %s mode: %s\n", md.String(), err)
		sync.state <- stateRequest{req: reqQuit, args: 20}
		return
	}

	sync.state <- stateRequest{req: reqQuit}
}

// flags common to every mode that uses the cartridge reader
type readerFlags struct {
	port  *int
	baud  *int
	prefs *string
	log   *bool
}

func addReaderFlags(md *modalflag.Modes) readerFlags {
	return readerFlags{
		port:  md.AddInt("port", 0, "serial port number of the cartridge reader"),
		baud:  md.AddInt("baud", serial.DefaultBaud, "baud rate of the cartridge reader"),
		prefs: md.AddString("prefs", "", "preferences to override for this run"),
		log:   md.AddBool("log", false, "echo debugging log to stdout"),
	}
}

// connect finds the cartridge reader and performs the start up sequence. the
// serial link is closed at exit
func connect(md *modalflag.Modes, rf readerFlags) (*gbxcart.Client, error) {
	if *rf.log {
		logger.SetEcho(os.Stdout, false)
	} else {
		logger.SetEcho(nil, false)
	}

	pth, err := paths.ResourcePath("", configFile)
	if err != nil {
		return nil, err
	}

	// flags on the command line take priority over the config file
	override := strings.Builder{}
	md.Visit(func(flag string) {
		switch flag {
		case "port":
			override.WriteString(fmt.Sprintf("gbxcart.port::%d; ", *rf.port))
		case "baud":
			override.WriteString(fmt.Sprintf("gbxcart.baud::%d; ", *rf.baud))
		}
	})
	override.WriteString(*rf.prefs)

	prefs.PushCommandLineStack(override.String())
	cfg, err := serial.NewConfig(pth)
	if r := prefs.PopCommandLineStack(); r != "" {
		logger.Logf(logger.Allow, "gbxfs", "%s unused", r)
	}
	if err != nil {
		return nil, err
	}

	link, err := serial.Discover(cfg, serial.Open, func(l serial.Link) bool {
		return gbxcart.NewClient(l).Responds()
	})
	if err != nil {
		return nil, err
	}

	c := gbxcart.NewClient(link)
	atexit.Register(func() {
		if err := c.Close(); err != nil {
			logger.Log(logger.Allow, "gbxfs", err)
		}
	})

	err = c.Connect()
	if err != nil {
		return nil, err
	}

	return c, nil
}

const mountHelp = `The mount point contains two files named after the inserted cartridge. The
game file is the ROM of the cartridge and is read-only. The save file is the
save memory of the cartridge. Writes to the save file are written back to the
cartridge at the next poll of the reader.`

func mount(md *modalflag.Modes, sync *mainSync) error {
	md.NewMode()

	rf := addReaderFlags(md)
	ramOnly := md.AddBool("norom", false, "read only the save data")
	reread := md.AddBool("reread", false, "read the cartridge again when it is reinserted")
	readOnly := md.AddBool("readonly", false, "never write to the cartridge")
	filename := md.AddString("filename", "", "name the files with this instead of the cartridge title")
	cache := md.AddString("cache", "", "directory for caching ROM dumps")
	poll := md.AddDuration("poll", session.DefaultPollInterval, "time between checks of the cartridge reader")
	debug := md.AddBool("debug", false, "log FUSE requests")
	allowOther := md.AddBool("allowother", false, "allow other users to access the filesystem")
	stats := md.AddBool("statsview", false, fmt.Sprintf("run stats server (%s)", statsview.Address))
	md.AddAlias("norom", "n")
	md.AddAlias("reread", "e")
	md.AddAlias("readonly", "r")
	md.AdditionalHelp(mountHelp)

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) != 1 {
		return curated.Errorf("mount point required for %s mode", md)
	}
	dir := md.GetArg(0)

	if *stats {
		if statsview.Available() {
			atexit.Register(statsview.Launch(os.Stdout))
		} else {
			fmt.Println("! stats server not available in this build")
		}
	}

	c, err := connect(md, rf)
	if err != nil {
		return err
	}

	store, err := saveinfo.DefaultStore()
	if err != nil {
		return err
	}

	opts := session.NewOptions()
	opts.RAMOnly = *ramOnly
	opts.ReRead = *reread
	opts.ReadOnly = *readOnly
	opts.Filename = *filename
	opts.CacheDir = *cache
	opts.PollInterval = *poll

	sess := session.NewSession(session.NewHardware(c, store), nil, opts)
	cfs := cartfs.NewFS(sess)
	sess.SetNotify(cfs)

	server, err := fusefs.Mount(dir, cfs, fusefs.Options{
		Debug:      *debug,
		AllowOther: *allowOther,
	})
	if err != nil {
		return err
	}
	atexit.Register(func() {
		_ = server.Unmount()
	})

	// turn off fallback ctrl-c handling. the filesystem is unmounted before
	// quitting
	sync.state <- stateRequest{req: reqNoIntSig}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	intChan := make(chan os.Signal, 1)
	signal.Notify(intChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(intChan)

	go func() {
		select {
		case <-intChan:
			fmt.Println("\r")
			for {
				err := server.Unmount()
				if err == nil {
					return
				}
				fmt.Printf("* cannot unmount: %v\n", err)
				<-intChan
			}
		case <-ctx.Done():
		}
	}()

	done := make(chan error, 1)
	go func() {
		done <- sess.Run(ctx)
	}()

	fmt.Printf("%s mounted at %s\n", version.ApplicationName, dir)

	// wait for the filesystem to be unmounted, either by an interrupt or by
	// fusermount
	server.Wait()

	cancel()
	fmt.Println("waiting for cartridge reader")
	err = <-done
	sess.Close()

	return err
}

func info(md *modalflag.Modes) error {
	md.NewMode()

	rf := addReaderFlags(md)
	mv := md.AddString("memviz", "", "write a graphviz rendering of the cartridge profile to file")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) > 0 {
		return curated.Errorf("too many arguments for %s mode", md)
	}

	c, err := connect(md, rf)
	if err != nil {
		return err
	}

	store, err := saveinfo.DefaultStore()
	if err != nil {
		return err
	}

	hw := session.NewHardware(c, store)
	prof, err := hw.Identify()
	if err != nil {
		return err
	}

	fmt.Printf("reader: PCB v%d, firmware R%d, fast read %v\n", c.PCB, c.Firmware, c.FastRead)
	fmt.Println(prof.String())

	if prof.Present() {
		fmt.Printf("game: %s (%d bytes)\n", prof.GameName(), prof.ROMSize())
		if prof.SaveKind() == cartridge.SaveNone {
			fmt.Println("save: none")
		} else {
			fmt.Printf("save: %s (%d bytes of %s)\n", prof.SaveName(), prof.SaveSize(), prof.SaveKind())
		}
		if prof.Flash.IsFlash() {
			fmt.Printf("flash ID: %02x %02x\n", prof.FlashID[0], prof.FlashID[1])
		}
	}

	if *mv != "" {
		f, err := os.Create(*mv)
		if err != nil {
			return curated.Errorf("memviz: %v", err)
		}
		defer f.Close()
		memviz.Map(f, &prof)
	}

	return nil
}

func dump(md *modalflag.Modes) error {
	md.NewMode()

	rf := addReaderFlags(md)
	rom := md.AddBool("rom", true, "dump the ROM")
	save := md.AddBool("save", true, "dump the save data")
	unique := md.AddBool("unique", false, "add the time of the dump to the filenames")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	dir := "."
	switch len(md.RemainingArgs()) {
	case 0:
	case 1:
		dir = md.GetArg(0)
	default:
		return curated.Errorf("too many arguments for %s mode", md)
	}

	c, err := connect(md, rf)
	if err != nil {
		return err
	}

	store, err := saveinfo.DefaultStore()
	if err != nil {
		return err
	}

	hw := session.NewHardware(c, store)
	prof, err := hw.Identify()
	if err != nil {
		return err
	}
	if !prof.Present() {
		return curated.Errorf("no cartridge")
	}
	fmt.Println(prof.String())

	return dumpFiles(hw, &prof, dir, *rom, *save, *unique, os.Stdout)
}

// dumpFiles writes the ROM and save data of the cartridge to files in dir. A
// cartridge without save memory is not an error
func dumpFiles(cart session.Cartridge, prof *cartridge.Profile, dir string, rom bool, save bool, unique bool, output io.Writer) error {
	write := func(name string, data []byte) error {
		if unique {
			name = paths.UniqueFilename("dump", prof.Title) + filepath.Ext(name)
		}
		pth := filepath.Join(dir, name)
		if err := os.WriteFile(pth, data, 0o644); err != nil {
			return curated.Errorf("dump: %v", err)
		}
		fmt.Fprintf(output, "%s (%d bytes)\n", pth, len(data))
		return nil
	}

	if save {
		data, err := cart.DumpRAM(prof, nil)
		if curated.Is(err, transfer.ErrNoSaveMemory) {
			fmt.Fprintln(output, "no save memory")
		} else {
			if err == nil {
				err = write(prof.SaveName(), data)
			}
			if err != nil {
				return err
			}
		}
	}

	if rom {
		data, err := cart.DumpROM(prof, nil)
		if err == nil {
			err = write(prof.GameName(), data)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

func showVersion(md *modalflag.Modes) error {
	md.NewMode()

	revision := md.AddBool("v", false, "display revision information (if available)")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	v, r, _ := version.Version()
	fmt.Println(v)
	if *revision {
		fmt.Println(r)
	}

	return nil
}
