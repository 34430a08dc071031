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

package monitor

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/hardware"
	"github.com/jetsetilly/gopherdrive/hardware/drive"
	"github.com/jetsetilly/gopherdrive/hardware/govern"
	"github.com/jetsetilly/gopherdrive/logger"
	"github.com/jetsetilly/gopherdrive/paths"
	"github.com/jetsetilly/gopherdrive/performance/limiter"
	"github.com/jetsetilly/gopherdrive/script"
	"github.com/jetsetilly/gopherdrive/snapshot"
	"github.com/jetsetilly/gopherdrive/terminal"
)

// RewindInterval is the number of cycles between the automatic snapshots
// used by the REWIND command.
const RewindInterval = 100000

// Monitor is the interactive command line for a drive emulation.
type Monitor struct {
	sys    *hardware.System
	term   terminal.Terminal
	rewind *hardware.Rewind

	// limits the RUN command to the speed of the real hardware. nil if the
	// emulation is uncapped
	lim *limiter.Limiter

	// the QUIT command has been issued
	quit bool
}

// NewMonitor is the preferred method of initialisation for the Monitor
// type.
func NewMonitor(sys *hardware.System, term terminal.Terminal) *Monitor {
	return &Monitor{
		sys:    sys,
		term:   term,
		rewind: hardware.NewRewind(sys, RewindInterval),
	}
}

func (mon *Monitor) printLine(sty terminal.Style, s string, a ...any) {
	s = strings.TrimRight(fmt.Sprintf(s, a...), "\n")
	if len(s) == 0 {
		return
	}
	mon.term.TermPrintLine(sty, s)
}

func (mon *Monitor) prompt() terminal.Prompt {
	return terminal.Prompt{Content: fmt.Sprintf("%d", mon.sys.Clock.Now())}
}

// Loop reads and executes commands until the QUIT command or the end of the
// input. Errors from commands are printed to the terminal and do not end the
// loop.
func (mon *Monitor) Loop(events *terminal.ReadEvents) error {
	if err := mon.term.Initialise(); err != nil {
		return err
	}
	defer mon.term.CleanUp()

	for !mon.quit {
		input, err := mon.term.TermRead(mon.prompt(), events)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			if curated.Is(err, terminal.UserInterrupt) {
				mon.printLine(terminal.StyleFeedback, "interrupted")
				continue
			}
			return err
		}

		mon.printLine(terminal.StyleEcho, input)
		if err := mon.Execute(input); err != nil {
			mon.printLine(terminal.StyleError, "%v", err)
		}
	}

	return nil
}

// Realtime limits the RUN command to the speed of the real hardware.
func (mon *Monitor) Realtime(on bool) {
	if on {
		mon.lim = limiter.NewLimiter(mon.sys.Clock.MHz(), hardware.Slice)
	} else {
		mon.lim = nil
	}
}

// Quit returns true if the QUIT command has been issued.
func (mon *Monitor) Quit() bool {
	return mon.quit
}

// Execute a single command.
func (mon *Monitor) Execute(input string) error {
	tk := tokenise(input)

	cmd, ok := tk.get()
	if !ok {
		return nil
	}
	cmd = strings.ToUpper(cmd)

	var err error

	switch cmd {
	case KeywordHelp:
		err = mon.help(tk)
	case KeywordQuit:
		mon.quit = true
	case KeywordReset:
		err = mon.reset(tk)
	case KeywordAdd:
		err = mon.add(tk)
	case KeywordRemove:
		var u uint64
		u, err = tk.number("unit", 8)
		if err == nil {
			mon.sys.RemoveUnit(int(u))
			mon.rewind.Reset()
		}
	case KeywordUnits:
		mon.units()
	case KeywordAttach:
		err = mon.attach(tk)
	case KeywordDetach:
		var u uint64
		u, err = tk.number("unit", 8)
		if err == nil {
			err = mon.sys.AttachImage(int(u), "")
		}
	case KeywordPeek:
		err = mon.peek(tk)
	case KeywordPoke:
		err = mon.poke(tk)
	case KeywordHost:
		err = mon.host(tk)
	case KeywordBus:
		mon.printLine(terminal.StyleFeedback, "%s", mon.sys.IEC)
	case KeywordTrace:
		for _, tr := range mon.sys.IEC.Traces() {
			mon.printLine(terminal.StyleTrace, "%s", tr)
		}
	case KeywordRun:
		var n uint64
		n, err = tk.number("cycles", 64)
		if err == nil {
			err = mon.sys.RunFor(n, mon.limit)
		}
	case KeywordStep:
		mon.printLine(terminal.StyleFeedback, "%d", mon.sys.Step())
	case KeywordClock:
		mon.printLine(terminal.StyleFeedback, "%s", mon.sys.Clock)
		for _, p := range mon.sys.Clock.Pending() {
			mon.printLine(terminal.StyleFeedback, "  %s", p)
		}
	case KeywordLEDs:
		err = mon.leds(tk)
	case KeywordSnapshot:
		err = mon.snapshot(tk)
	case KeywordRewind:
		err = mon.rewindCmd(tk)
	case KeywordLog:
		err = mon.log(tk)
	case KeywordScript:
		err = mon.script(tk)
	case KeywordSound:
		err = mon.sound(tk)
	default:
		return curated.Errorf(UnknownCommand, cmd)
	}

	if err != nil {
		return err
	}

	if !tk.isEnd() {
		s, _ := tk.peek()
		return curated.Errorf(TooManyArgs, s)
	}

	return nil
}

func (mon *Monitor) limit(_ uint64) (govern.State, error) {
	if mon.lim != nil {
		mon.lim.Wait()
	}
	return govern.Running, nil
}

func (mon *Monitor) help(tk *tokens) error {
	if c, ok := tk.get(); ok {
		h, ok := helpText(c)
		if !ok {
			return curated.Errorf(UnknownCommand, c)
		}
		mon.printLine(terminal.StyleHelp, "%s", h)
		return nil
	}
	mon.printLine(terminal.StyleHelp, "%s", strings.Join(Keywords(), " "))
	return nil
}

func (mon *Monitor) unit(tk *tokens) (drive.Unit, error) {
	u, err := tk.number("unit", 8)
	if err != nil {
		return nil, err
	}
	return mon.sys.Unit(int(u))
}

func (mon *Monitor) reset(tk *tokens) error {
	if tk.isEnd() {
		mon.sys.Reset()
		return nil
	}
	u, err := mon.unit(tk)
	if err != nil {
		return err
	}
	u.Reset()
	return nil
}

func (mon *Monitor) add(tk *tokens) error {
	s, ok := tk.get()
	if !ok {
		return curated.Errorf(MissingArgument, "kind")
	}
	k, err := drive.ParseKind(s)
	if err != nil {
		return err
	}
	u, err := tk.number("unit", 8)
	if err != nil {
		return err
	}
	if _, err := mon.sys.AddUnit(k, int(u)); err != nil {
		return err
	}

	// the kinds of drive have changed so earlier snapshots can not be used
	mon.rewind.Reset()

	return nil
}

func (mon *Monitor) units() {
	for _, u := range mon.sys.Units() {
		act, e := u.LEDs()
		mon.printLine(terminal.StyleFeedback, "%d: %s %s", u.Number(), u.Kind(), ledString(act, e))
	}
}

func (mon *Monitor) attach(tk *tokens) error {
	u, err := tk.number("unit", 8)
	if err != nil {
		return err
	}
	fn, ok := tk.get()
	if !ok {
		return curated.Errorf(MissingArgument, "file")
	}
	return mon.sys.AttachImage(int(u), fn)
}

func (mon *Monitor) peek(tk *tokens) error {
	u, err := mon.unit(tk)
	if err != nil {
		return err
	}
	addr, err := tk.number("address", 16)
	if err != nil {
		return err
	}
	count := uint64(1)
	if !tk.isEnd() {
		count, err = tk.number("count", 16)
		if err != nil {
			return err
		}
	}

	s := strings.Builder{}
	for i := uint64(0); i < count; i++ {
		a := uint16(addr + i)
		if i%16 == 0 {
			if i > 0 {
				mon.printLine(terminal.StyleFeedback, "%s", s.String())
				s.Reset()
			}
			s.WriteString(fmt.Sprintf("%04x:", a))
		}
		s.WriteString(fmt.Sprintf(" %02x", u.Peek(a)))
	}
	mon.printLine(terminal.StyleFeedback, "%s", s.String())

	return nil
}

func (mon *Monitor) poke(tk *tokens) error {
	u, err := mon.unit(tk)
	if err != nil {
		return err
	}
	addr, err := tk.number("address", 16)
	if err != nil {
		return err
	}
	if tk.isEnd() {
		return curated.Errorf(MissingArgument, "value")
	}
	for !tk.isEnd() {
		v, err := tk.number("value", 8)
		if err != nil {
			return err
		}
		u.Write(uint16(addr), uint8(v))
		addr++
	}
	return nil
}

func (mon *Monitor) host(tk *tokens) error {
	if tk.isEnd() {
		mon.printLine(terminal.StyleFeedback, "%02x", mon.sys.ReadHost())
		return nil
	}
	v, err := tk.number("value", 8)
	if err != nil {
		return err
	}
	mon.sys.WriteHost(uint8(v))
	return nil
}

func (mon *Monitor) leds(tk *tokens) error {
	u, err := mon.unit(tk)
	if err != nil {
		return err
	}
	mon.printLine(terminal.StyleFeedback, "%s", ledString(u.LEDs()))
	return nil
}

func ledString(act bool, err bool) string {
	s := [2]string{"-", "-"}
	if act {
		s[0] = "A"
	}
	if err {
		s[1] = "E"
	}
	return "[" + s[0] + s[1] + "]"
}

func (mon *Monitor) sound(tk *tokens) error {
	if mon.sys.Sound == nil {
		return curated.Errorf(NoSound)
	}

	op, _ := tk.get()
	switch strings.ToUpper(op) {
	case "SAVE":
		fn, ok := tk.get()
		if !ok {
			fn = paths.UniqueFilename("sound", mon.firstImage()) + ".wav"
		}
		f, err := os.Create(fn)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := mon.sys.Sound.Write(f); err != nil {
			return err
		}
		mon.printLine(terminal.StyleFeedback, "saved to %s", fn)
	case "CLEAR":
		mon.sys.Sound.Reset()
	default:
		return curated.Errorf(MissingArgument, "SAVE or CLEAR")
	}
	return nil
}

// the image in the lowest numbered unit. used to name saved files
func (mon *Monitor) firstImage() string {
	for _, u := range mon.sys.Units() {
		if img := mon.sys.ImageName(u.Number()); img != "" {
			return img
		}
	}
	return ""
}

// snapshots saved without a filename are named after the image in the
// lowest numbered unit
func (mon *Monitor) snapshotName() string {
	return paths.UniqueFilename("snapshot", mon.firstImage()) + snapshot.Extension
}

func (mon *Monitor) snapshot(tk *tokens) error {
	op, _ := tk.get()
	fn, ok := tk.get()

	switch strings.ToUpper(op) {
	case "SAVE":
		if !ok {
			fn = mon.snapshotName()
		}
		if err := mon.sys.Snapshot().SaveFile(fn); err != nil {
			return err
		}
		mon.printLine(terminal.StyleFeedback, "saved to %s", fn)
		return nil
	case "LOAD":
		if !ok {
			return curated.Errorf(MissingArgument, "file")
		}
		s, err := snapshot.LoadFile(fn)
		if err != nil {
			return err
		}
		if err := mon.sys.Plumb(s); err != nil {
			return err
		}
		mon.rewind.Reset()
		return nil
	}

	return curated.Errorf(BadArgument, "snapshot operation", op)
}

func (mon *Monitor) rewindCmd(tk *tokens) error {
	op, ok := tk.get()
	if !ok {
		total, pos := mon.rewind.State()
		mon.printLine(terminal.StyleFeedback, "position %d of %d", pos, total)
		return nil
	}

	switch strings.ToUpper(op) {
	case "BACK":
		n, err := tk.number("count", 16)
		if err != nil {
			return err
		}
		_, pos := mon.rewind.State()
		return mon.rewind.SetPosition(pos - int(n))
	case "CYCLE":
		c, err := tk.number("cycle", 64)
		if err != nil {
			return err
		}
		found, err := mon.rewind.GotoCycle(c)
		if err != nil {
			return err
		}
		if !found {
			mon.printLine(terminal.StyleFeedback, "nearest earlier state at %d", mon.sys.Clock.Now())
		}
		return nil
	case "CURRENT":
		return mon.rewind.GotoCurrent()
	}

	return curated.Errorf(BadArgument, "rewind operation", op)
}

func (mon *Monitor) log(tk *tokens) error {
	n := uint64(10)
	if !tk.isEnd() {
		var err error
		n, err = tk.number("count", 16)
		if err != nil {
			return err
		}
	}
	w := &strings.Builder{}
	logger.Tail(w, int(n))
	mon.printLine(terminal.StyleFeedback, "%s", w.String())
	return nil
}

func (mon *Monitor) script(tk *tokens) error {
	fn, ok := tk.get()
	if !ok {
		return curated.Errorf(MissingArgument, "file")
	}

	w := &strings.Builder{}
	scr := script.NewScript(mon.sys, w)
	defer scr.Close()

	err := scr.RunFile(context.Background(), fn)
	mon.printLine(terminal.StyleFeedback, "%s", w.String())

	return err
}
