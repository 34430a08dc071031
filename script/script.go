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

package script

import (
	"context"
	"io"
	"strings"

	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/hardware"
	"github.com/jetsetilly/gopherdrive/hardware/drive"
	"github.com/jetsetilly/gopherdrive/logger"
	"github.com/jetsetilly/gopherdrive/snapshot"
	lua "github.com/yuin/gopher-lua"
)

// Sentinal error patterns.
const (
	ScriptError = "script: %v"
)

// Script is a Lua interpreter bound to a drive emulation.
type Script struct {
	sys    *hardware.System
	L      *lua.LState
	output io.Writer
}

// NewScript is the preferred method of initialisation for the Script type.
// Output from the print() function of the script is written to output.
func NewScript(sys *hardware.System, output io.Writer) *Script {
	scr := &Script{
		sys:    sys,
		L:      lua.NewState(),
		output: output,
	}

	scr.L.SetGlobal("print", scr.L.NewFunction(scr.print))

	tbl := scr.L.NewTable()
	scr.L.SetFuncs(tbl, map[string]lua.LGFunction{
		"add":      scr.add,
		"remove":   scr.remove,
		"attach":   scr.attach,
		"detach":   scr.detach,
		"reset":    scr.reset,
		"peek":     scr.peek,
		"read":     scr.read,
		"poke":     scr.poke,
		"leds":     scr.leds,
		"irq":      scr.irq,
		"host":     scr.host,
		"readhost": scr.readhost,
		"bus":      scr.bus,
		"run":      scr.run,
		"step":     scr.step,
		"now":      scr.now,
		"snapshot": scr.snapshot,
		"restore":  scr.restore,
	})
	scr.L.SetGlobal("drive", tbl)

	return scr
}

// Close the Lua interpreter.
func (scr *Script) Close() {
	scr.L.Close()
}

// RunFile runs the Lua script in the file. The script is stopped when the
// context is cancelled.
func (scr *Script) RunFile(ctx context.Context, filename string) error {
	scr.L.SetContext(ctx)
	if err := scr.L.DoFile(filename); err != nil {
		return curated.Errorf(ScriptError, err)
	}
	logger.Logf(scr.sys.Env, "script", "finished %s", filename)
	return nil
}

// RunString runs the Lua source.
func (scr *Script) RunString(ctx context.Context, src string) error {
	scr.L.SetContext(ctx)
	if err := scr.L.DoString(src); err != nil {
		return curated.Errorf(ScriptError, err)
	}
	return nil
}

func (scr *Script) print(L *lua.LState) int {
	s := make([]string, L.GetTop())
	for i := range s {
		s[i] = L.ToStringMeta(L.Get(i + 1)).String()
	}
	io.WriteString(scr.output, strings.Join(s, "\t"))
	io.WriteString(scr.output, "\n")
	return 0
}

// unit returns the drive unit given by the argument.
func (scr *Script) unit(L *lua.LState, arg int) drive.Unit {
	u, err := scr.sys.Unit(L.CheckInt(arg))
	if err != nil {
		L.RaiseError("%v", err)
	}
	return u
}

func (scr *Script) add(L *lua.LState) int {
	k, err := drive.ParseKind(L.CheckString(1))
	if err != nil {
		L.RaiseError("%v", err)
	}
	if _, err := scr.sys.AddUnit(k, L.CheckInt(2)); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (scr *Script) remove(L *lua.LState) int {
	scr.sys.RemoveUnit(L.CheckInt(1))
	return 0
}

func (scr *Script) attach(L *lua.LState) int {
	if err := scr.sys.AttachImage(L.CheckInt(1), L.CheckString(2)); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (scr *Script) detach(L *lua.LState) int {
	if err := scr.sys.AttachImage(L.CheckInt(1), ""); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (scr *Script) reset(L *lua.LState) int {
	if L.GetTop() == 0 {
		scr.sys.Reset()
		return 0
	}
	scr.unit(L, 1).Reset()
	return 0
}

func (scr *Script) peek(L *lua.LState) int {
	u := scr.unit(L, 1)
	L.Push(lua.LNumber(u.Peek(uint16(L.CheckInt(2)))))
	return 1
}

// read differs from peek in that the read has the side effects of a read by
// the drive CPU.
func (scr *Script) read(L *lua.LState) int {
	u := scr.unit(L, 1)
	L.Push(lua.LNumber(u.Read(uint16(L.CheckInt(2)))))
	return 1
}

func (scr *Script) poke(L *lua.LState) int {
	u := scr.unit(L, 1)
	addr := uint16(L.CheckInt(2))
	for i := 3; i <= L.GetTop(); i++ {
		u.Write(addr, uint8(L.CheckInt(i)))
		addr++
	}
	return 0
}

func (scr *Script) leds(L *lua.LState) int {
	act, err := scr.unit(L, 1).LEDs()
	L.Push(lua.LBool(act))
	L.Push(lua.LBool(err))
	return 2
}

func (scr *Script) irq(L *lua.LState) int {
	if L.GetTop() == 0 {
		L.Push(lua.LBool(scr.sys.IRQ()))
		return 1
	}
	L.Push(lua.LBool(scr.unit(L, 1).IRQ()))
	return 1
}

func (scr *Script) host(L *lua.LState) int {
	scr.sys.WriteHost(uint8(L.CheckInt(1)))
	return 0
}

func (scr *Script) readhost(L *lua.LState) int {
	L.Push(lua.LNumber(scr.sys.ReadHost()))
	return 1
}

func (scr *Script) bus(L *lua.LState) int {
	L.Push(lua.LString(scr.sys.IEC.String()))
	return 1
}

func (scr *Script) run(L *lua.LState) int {
	if err := scr.sys.RunFor(uint64(L.CheckInt64(1)), nil); err != nil {
		L.RaiseError("%v", err)
	}
	L.Push(lua.LNumber(scr.sys.Clock.Now()))
	return 1
}

func (scr *Script) step(L *lua.LState) int {
	L.Push(lua.LNumber(scr.sys.Step()))
	return 1
}

func (scr *Script) now(L *lua.LState) int {
	L.Push(lua.LNumber(scr.sys.Clock.Now()))
	return 1
}

func (scr *Script) snapshot(L *lua.LState) int {
	if err := scr.sys.Snapshot().SaveFile(L.CheckString(1)); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (scr *Script) restore(L *lua.LState) int {
	s, err := snapshot.LoadFile(L.CheckString(1))
	if err == nil {
		err = scr.sys.Plumb(s)
	}
	if err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}
