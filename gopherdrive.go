// This file is part of Gopherdrive.
//
// Gopherdrive is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gopherdrive is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gopherdrive.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/bradleyjkemp/memviz"
	"github.com/jetsetilly/gopherdrive/diskimage"
	"github.com/jetsetilly/gopherdrive/hardware/drive/scsi"
	"github.com/jetsetilly/gopherdrive/logger"
	"github.com/jetsetilly/gopherdrive/modalflag"
	"github.com/jetsetilly/gopherdrive/monitor"
	"github.com/jetsetilly/gopherdrive/performance"
	"github.com/jetsetilly/gopherdrive/script"
	"github.com/jetsetilly/gopherdrive/snapshot"
	"github.com/jetsetilly/gopherdrive/statsview"
	"github.com/jetsetilly/gopherdrive/terminal"
	"github.com/jetsetilly/gopherdrive/terminal/plainterm"
	"github.com/jetsetilly/gopherdrive/version"
)

type stateReq = string

const (
	// main thread should end as soon as possible.
	//
	// takes optional int argument, indicating the status code.
	reqQuit stateReq = "QUIT"

	// reset interrupt signal handling. used when an alternative
	// handler is more appropriate. for example, the monitor uses ctrl-c to
	// interrupt a read without quitting.
	//
	// takes no arguments.
	reqNoIntSig stateReq = "NOINTSIG"
)

type stateRequest struct {
	req  stateReq
	args any
}

// communication between the main() function and the launch() function.
type mainSync struct {
	state chan stateRequest
}

func main() {
	sync := &mainSync{
		state: make(chan stateRequest),
	}

	// the value to use with os.Exit(). can be changed with reqQuit
	// stateRequest
	exitVal := 0

	// default ctrl-c handler. can be turned off with reqNoIntSig request
	intChan := make(chan os.Signal, 1)
	signal.Notify(intChan, os.Interrupt)

	// launch program as a go routine. further communication is through
	// the mainSync instance
	go launch(sync, os.Args[1:])

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

	fmt.Print("\r")
	os.Exit(exitVal)
}

// launch is called from main() as a goroutine. uses mainSync instance to
// indicate when the program should end.
func launch(sync *mainSync, args []string) {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(args)
	md.NewMode()
	md.AddSubModes("MONITOR", "SCRIPT", "INFO", "FORMAT", "READ", "SCSI", "SNAPSHOT", "DUMP", "PERFORMANCE", "VERSION")

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
	case "MONITOR":
		err = monitorMode(md, sync)
	case "SCRIPT":
		err = scriptMode(md)
	case "INFO":
		err = info(md)
	case "FORMAT":
		err = format(md)
	case "READ":
		err = read(md)
	case "SCSI":
		err = scsiMode(md)
	case "SNAPSHOT":
		err = snapshotMode(md)
	case "DUMP":
		err = dump(md)
	case "PERFORMANCE":
		err = perform(md)
	case "VERSION":
		err = showVersion(md)
	default:
		err = monitorMode(md, sync)
	}

	if err != nil {
		fmt.Printf("* error in %s mode: %s\n", md.String(), err)
		sync.state <- stateRequest{req: reqQuit, args: 20}
		return
	}

	sync.state <- stateRequest{req: reqQuit}
}

// flags common to every mode that creates a drive system
type systemFlags struct {
	units *string
	prefs *string
	log   *bool
}

func addSystemFlags(md *modalflag.Modes) systemFlags {
	return systemFlags{
		units: md.AddString("units", "8:1581", "comma separated list of units (unit:kind[=image])"),
		prefs: md.AddString("prefs", "", "preferences override (key::value; key::value)"),
		log:   md.AddBool("log", false, "echo log to stdout"),
	}
}

func (f systemFlags) apply() {
	if *f.log {
		logger.SetEcho(os.Stdout, true)
	} else {
		logger.SetEcho(nil, false)
	}
}

func monitorMode(md *modalflag.Modes, sync *mainSync) error {
	md.NewMode()

	sf := addSystemFlags(md)
	watch := md.AddBool("watch", false, "live view of the serial bus rather than the command line")
	realtime := md.AddBool("realtime", false, "limit the RUN command to the speed of the real hardware")
	stats := md.AddBool("statsview", false, fmt.Sprintf("run stats server (%s)", statsview.Address))

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}
	sf.apply()

	if len(md.RemainingArgs()) > 0 {
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	sys, err := prepareSystem(*sf.prefs, *sf.units)
	if err != nil {
		return err
	}

	if *stats {
		if !statsview.Available() {
			return fmt.Errorf("stats server is not available in this build")
		}
		statsview.Launch(os.Stdout)
	}

	// turn off fallback ctrl-c handling. the monitor and the watch handle
	// interrupts themselves
	sync.state <- stateRequest{req: reqNoIntSig}

	if *watch {
		return monitor.Watch(sys, os.Stdin, os.Stdout)
	}

	events := &terminal.ReadEvents{
		IntEvents: make(chan os.Signal, 1),
	}
	signal.Notify(events.IntEvents, os.Interrupt)

	mon := monitor.NewMonitor(sys, plainterm.NewPlainTerminal(os.Stdin, os.Stdout))
	mon.Realtime(*realtime)
	return mon.Loop(events)
}

func scriptMode(md *modalflag.Modes) error {
	md.NewMode()

	sf := addSystemFlags(md)

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}
	sf.apply()

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("lua script required for %s mode", md)
	case 1:
	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	sys, err := prepareSystem(*sf.prefs, *sf.units)
	if err != nil {
		return err
	}

	scr := script.NewScript(sys, md.Output)
	defer scr.Close()
	return scr.RunFile(context.Background(), md.GetArg(0))
}

func info(md *modalflag.Modes) error {
	md.NewMode()

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) == 0 {
		return fmt.Errorf("disk image required for %s mode", md)
	}

	for _, fn := range md.RemainingArgs() {
		dsk, err := diskimage.Open(fn, true)
		if err != nil {
			return err
		}
		writeInfo(md.Output, dsk)
		dsk.Close()
	}

	return nil
}

func format(md *modalflag.Modes) error {
	md.NewMode()

	kind := md.AddString("type", "D81", "image type: D81, D1M, D2M, D4M")
	fill := md.AddHex("fill", 0x00, "filler byte for formatted sectors")
	force := md.AddBool("force", false, "overwrite an existing file")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("filename required for %s mode", md)
	case 1:
	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	t, err := parseImageType(*kind)
	if err != nil {
		return err
	}

	return formatImage(md.Output, md.GetArg(0), t, uint8(*fill), *force)
}

func read(md *modalflag.Modes) error {
	md.NewMode()

	controller := md.AddString("controller", "WD1770", "controller used to read the image: WD1770, PC8477")
	track := md.AddInt("track", 0, "physical track")
	side := md.AddInt("side", 0, "physical side")
	sector := md.AddInt("sector", 1, "physical sector")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("disk image required for %s mode", md)
	case 1:
	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	dsk, err := diskimage.Open(md.GetArg(0), true)
	if err != nil {
		return err
	}
	defer dsk.Close()

	data, err := readPhysical(dsk, *controller, uint8(*track), uint8(*side), uint8(*sector))
	if err != nil {
		return err
	}
	hexdump(md.Output, 0, data)

	return nil
}

func scsiMode(md *modalflag.Modes) error {
	md.NewMode()

	id := md.AddInt("id", 0, "SCSI target ID")
	lun := md.AddInt("lun", 0, "logical unit number")
	lba := md.AddUint("lba", 0, "first block to read")
	count := md.AddUint("count", 1, "number of blocks to read")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("hard disk image required for %s mode", md)
	case 1:
	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	bf, _, err := diskimage.OpenFile(md.GetArg(0))
	if err != nil {
		return err
	}
	defer bf.Close()

	tgt := scsi.NewTarget(logger.Allow, "SCSI")
	tgt.MaxImageSize = 0
	if err := tgt.Attach(scsi.Unit(*id, *lun), bf); err != nil {
		return err
	}

	return queryTarget(md.Output, scsi.NewInitiator(tgt), *id, *lun, uint32(*lba), uint16(*count))
}

func snapshotMode(md *modalflag.Modes) error {
	md.NewMode()

	sf := addSystemFlags(md)
	create := md.AddString("create", "", "create a snapshot of a new system rather than inspect")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}
	sf.apply()

	if *create != "" {
		if len(md.RemainingArgs()) > 0 {
			return fmt.Errorf("too many arguments for %s mode", md)
		}
		sys, err := prepareSystem(*sf.prefs, *sf.units)
		if err != nil {
			return err
		}
		return sys.Snapshot().SaveFile(*create)
	}

	if len(md.RemainingArgs()) == 0 {
		return fmt.Errorf("snapshot file required for %s mode", md)
	}

	for _, fn := range md.RemainingArgs() {
		s, err := snapshot.LoadFile(fn)
		if err != nil {
			return err
		}
		writeSnapshot(md.Output, s)
	}

	return nil
}

func dump(md *modalflag.Modes) error {
	md.NewMode()

	sf := addSystemFlags(md)
	unit := md.AddInt("unit", 8, "unit to dump")
	out := md.AddString("out", "", "output file (default is unit number with .dot extension)")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}
	sf.apply()

	if len(md.RemainingArgs()) > 0 {
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	sys, err := prepareSystem(*sf.prefs, *sf.units)
	if err != nil {
		return err
	}

	u, err := sys.Unit(*unit)
	if err != nil {
		return err
	}

	fn := *out
	if fn == "" {
		fn = fmt.Sprintf("unit%d.dot", *unit)
	}

	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	defer f.Close()

	memviz.Map(f, u)
	fmt.Fprintf(md.Output, "%s written to %s\n", u.Kind(), fn)

	return nil
}

func perform(md *modalflag.Modes) error {
	md.NewMode()

	sf := addSystemFlags(md)
	duration := md.AddString("duration", "5s", "run duration")
	uncapped := md.AddBool("uncapped", true, "run the emulation as quickly as possible")
	profile := md.AddString("profile", "NONE", "run performance check with profiling: CPU, MEM, TRACE, ALL (comma sep)")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}
	sf.apply()

	if len(md.RemainingArgs()) > 0 {
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	prf, err := performance.ParseProfileString(*profile)
	if err != nil {
		return err
	}

	sys, err := prepareSystem(*sf.prefs, *sf.units)
	if err != nil {
		return err
	}

	return performance.Check(md.Output, prf, sys, !*uncapped, *duration)
}

func showVersion(md *modalflag.Modes) error {
	md.NewMode()

	revision := md.AddBool("revision", false, "display revision information from version control")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	v, r, _ := version.Version()
	if *revision {
		fmt.Fprintf(md.Output, "%s (%s)\n", v, strings.TrimSpace(r))
	} else {
		fmt.Fprintln(md.Output, v)
	}

	return nil
}
