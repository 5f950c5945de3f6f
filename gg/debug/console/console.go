package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/valerio/gogg/gg/debug"
	"github.com/valerio/gogg/gg/disasm"
	"github.com/valerio/gogg/gg/memory"
	"golang.org/x/term"
)

const prompt = "gogg> "

// errQuit ends the command loop.
var errQuit = errors.New("quit")

// LineReader reads one command line at a time.
type LineReader interface {
	ReadLine() (string, error)
}

type scannerReader struct {
	scanner *bufio.Scanner
}

func (s scannerReader) ReadLine() (string, error) {
	if s.scanner.Scan() {
		return s.scanner.Text(), nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// Console is a line oriented debugger front end driving a debug.Adapter.
type Console struct {
	adapter *debug.Adapter
	lines   LineReader
	out     io.Writer

	// watches maps watched addresses to the last value reported.
	// watchMu is never held while calling into the adapter.
	watchMu sync.Mutex
	watches map[uint16]byte
}

// New creates a console reading commands from lines and printing to out.
// It reports breakpoint hits on out as they happen.
func New(a *debug.Adapter, lines LineReader, out io.Writer) *Console {
	c := &Console{adapter: a, lines: lines, out: out, watches: map[uint16]byte{}}
	a.OnBreak(func(pc uint16) {
		fmt.Fprintf(c.out, "breakpoint hit at 0x%04X\n", pc)
	})
	return c
}

// NewPlain creates a console over a plain reader, one command per line.
func NewPlain(a *debug.Adapter, in io.Reader, out io.Writer) *Console {
	return New(a, scannerReader{bufio.NewScanner(in)}, out)
}

// Open creates a console on the process standard streams. When stdin is a
// terminal it is switched to raw mode for line editing and history; the
// returned function restores it.
func Open(a *debug.Adapter) (*Console, func(), error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return NewPlain(a, os.Stdin, os.Stdout), func() {}, nil
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, nil, fmt.Errorf("setting terminal raw mode: %w", err)
	}

	rw := struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}
	t := term.NewTerminal(rw, prompt)
	if width, height, err := term.GetSize(fd); err == nil {
		_ = t.SetSize(width, height)
	}

	restore := func() { _ = term.Restore(fd, state) }
	return New(a, t, t), restore, nil
}

// Output returns the writer the console prints to. On a raw mode terminal
// it redraws the prompt around anything written to it.
func (c *Console) Output() io.Writer {
	return c.out
}

// Run reads and executes commands until quit, end of input or ctx is done.
// Errors from single commands are printed and do not stop the loop.
func (c *Console) Run(ctx context.Context) error {
	c.printf("debugger ready, type h for help\n")

	for ctx.Err() == nil {
		line, err := c.lines.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading command: %w", err)
		}

		if err := c.Exec(line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			c.printf("error: %v\n", err)
		}
	}
	return nil
}

// Exec runs a single command line.
func (c *Console) Exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "h", "help":
		c.printf("%s", help)
	case "q", "quit":
		return errQuit
	case "c", "continue":
		c.adapter.SetState(debug.Continue)
	case "p", "pause":
		c.pause()
		c.printCurrent()
	case "s", "step":
		return c.step(args)
	case "b", "break":
		return c.setBreakpoint(args)
	case "d", "delete":
		return c.deleteBreakpoint(args)
	case "D":
		c.adapter.UnsetAllBreakpoints()
		c.printf("all breakpoints deleted\n")
	case "r", "regs":
		c.printRegisters()
	case "set":
		return c.setRegister(args)
	case "x":
		return c.dump(args)
	case "poke":
		return c.poke(args)
	case "l", "list":
		return c.list(args)
	case "w", "watch":
		return c.watch(args)
	case "uw", "unwatch":
		return c.unwatch(args)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

const help = `commands:
  c               continue
  p               pause
  s [n]           step n instructions (default 1)
  b [addr]        set a breakpoint, or list them
  d <addr>        delete a breakpoint
  D               delete all breakpoints
  r               show registers
  set <reg> <v>   set a register
  x <addr> [n]    dump n bytes (default 16)
  poke <addr> <v> write a byte
  l [addr] [n]    disassemble n instructions (default 10 at IP)
  w [addr]        watch a byte, reported once per frame when it changes, or list
  uw <addr>       stop watching a byte
  q               quit
numbers are decimal, or hex with a 0x prefix
`

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) pause() {
	c.adapter.SetState(debug.Paused)
	c.adapter.WaitPaused()
}

func (c *Console) step(args []string) error {
	n := 1
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			return fmt.Errorf("invalid step count %q", args[0])
		}
		n = v
	}

	if c.adapter.State() != debug.Paused {
		c.pause()
	}
	for i := 0; i < n; i++ {
		if !c.adapter.Step() {
			return errors.New("core resumed while stepping")
		}
		c.adapter.WaitPaused()
	}
	c.printCurrent()
	return nil
}

func (c *Console) printCurrent() {
	ip, _ := c.adapter.Register("IP")
	text, _ := c.adapter.Disassemble(ip)
	c.printf("0x%04X: %s\n", ip, text)
}

func (c *Console) setBreakpoint(args []string) error {
	if len(args) == 0 {
		bps := c.adapter.Breakpoints()
		if len(bps) == 0 {
			c.printf("no breakpoints\n")
		}
		for _, bp := range bps {
			c.printf("0x%04X (line %d)\n", bp, c.adapter.AddressToLine(bp))
		}
		return nil
	}

	address, err := parseWord(args[0])
	if err != nil {
		return err
	}
	if !c.adapter.SetBreakpoint(address) {
		return fmt.Errorf("breakpoint at 0x%04X already set", address)
	}
	c.printf("breakpoint set at 0x%04X\n", address)
	return nil
}

func (c *Console) deleteBreakpoint(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: d <addr>")
	}
	address, err := parseWord(args[0])
	if err != nil {
		return err
	}
	if !c.adapter.UnsetBreakpoint(address) {
		return fmt.Errorf("no breakpoint at 0x%04X", address)
	}
	c.printf("breakpoint deleted at 0x%04X\n", address)
	return nil
}

func (c *Console) printRegisters() {
	snap := c.adapter.Snapshot()
	regs := snap.Registers
	c.printf("AF=0x%04X BC=0x%04X DE=0x%04X HL=0x%04X\n", regs.AF.Get(), regs.BC.Get(), regs.DE.Get(), regs.HL.Get())
	c.printf("SP=0x%04X IP=0x%04X flags=%s IME=%t cycles=%d last=0x%02X state=%s\n",
		regs.SP, regs.IP, snap.Flags, snap.InterruptsEnabled, snap.Cycles, snap.Opcode, c.adapter.State())
}

func (c *Console) setRegister(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: set <reg> <value>")
	}
	value, err := parseWord(args[1])
	if err != nil {
		return err
	}
	return c.adapter.SetRegister(args[0], value)
}

func (c *Console) dump(args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return errors.New("usage: x <addr> [n]")
	}
	start, err := parseWord(args[0])
	if err != nil {
		return err
	}
	n := 16
	if len(args) == 2 {
		v, err := parseWord(args[1])
		if err != nil {
			return err
		}
		n = int(v)
	}

	var sb strings.Builder
	for i := 0; i < n && int(start)+i <= 0xFFFF; i++ {
		address := start + uint16(i)
		if i%16 == 0 {
			if i > 0 {
				sb.WriteByte('\n')
			}
			fmt.Fprintf(&sb, "0x%04X:", address)
		}
		fmt.Fprintf(&sb, " %02X", c.adapter.Address8(address))
	}
	c.printf("%s\n", sb.String())
	return nil
}

func (c *Console) poke(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: poke <addr> <value>")
	}
	address, err := parseWord(args[0])
	if err != nil {
		return err
	}
	value, err := strconv.ParseUint(args[1], 0, 8)
	if err != nil {
		return fmt.Errorf("invalid byte %q", args[1])
	}
	c.adapter.SetAddress8(address, byte(value))
	return nil
}

func (c *Console) list(args []string) error {
	if len(args) > 2 {
		return errors.New("usage: l [addr] [n]")
	}

	snap := c.adapter.Snapshot()
	start := snap.Registers.IP
	count := 10

	if len(args) > 0 {
		v, err := parseWord(args[0])
		if err != nil {
			return err
		}
		start = v
	}
	if len(args) > 1 {
		v, err := strconv.Atoi(args[1])
		if err != nil || v <= 0 {
			return fmt.Errorf("invalid count %q", args[1])
		}
		count = v
	}

	format := disasm.Format{Addresses: true, Raw: true}
	for _, line := range disasm.Range(disasm.Bytes(snap.Memory), start, count) {
		marker := "  "
		if line.Address == snap.Registers.IP {
			marker = "> "
		}
		c.printf("%s%s\n", marker, format.Format(line))
	}
	return nil
}

func parseWord(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return uint16(v), nil
}

func (c *Console) watch(args []string) error {
	if len(args) == 0 {
		c.watchMu.Lock()
		addresses := make([]uint16, 0, len(c.watches))
		for address := range c.watches {
			addresses = append(addresses, address)
		}
		c.watchMu.Unlock()

		if len(addresses) == 0 {
			c.printf("no watches\n")
		}
		slices.Sort(addresses)
		for _, address := range addresses {
			c.printf("0x%04X = 0x%02X\n", address, c.adapter.Address8(address))
		}
		return nil
	}

	address, err := parseWord(args[0])
	if err != nil {
		return err
	}
	value := c.adapter.Address8(address)

	c.watchMu.Lock()
	c.watches[address] = value
	c.watchMu.Unlock()

	c.printf("watching 0x%04X = 0x%02X\n", address, value)
	return nil
}

func (c *Console) unwatch(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: uw <addr>")
	}
	address, err := parseWord(args[0])
	if err != nil {
		return err
	}

	c.watchMu.Lock()
	_, ok := c.watches[address]
	delete(c.watches, address)
	c.watchMu.Unlock()

	if !ok {
		return fmt.Errorf("no watch at 0x%04X", address)
	}
	return nil
}

// Drain reports watched bytes that changed since the last report. It is a
// debug.FrameDrain and runs on the emulation goroutine once per frame.
func (c *Console) Drain(mem *memory.MMU) {
	c.watchMu.Lock()
	defer c.watchMu.Unlock()

	for address, last := range c.watches {
		value := mem.Read(address)
		if value == last {
			continue
		}
		c.watches[address] = value
		c.printf("watch 0x%04X: 0x%02X -> 0x%02X\n", address, last, value)
	}
}
