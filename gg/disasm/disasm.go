package disasm

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/valerio/gogg/gg/cpu"
)

// Line is a single disassembled instruction.
type Line struct {
	Address     uint16
	Instruction string
	Length      int
	Bytes       []byte
}

// At disassembles the instruction at address.
func At(mem cpu.Reader, address uint16) Line {
	text, length := cpu.Disassemble(mem, address)

	raw := make([]byte, length)
	for i := range raw {
		raw[i] = mem.Read(address + uint16(i))
	}

	return Line{
		Address:     address,
		Instruction: text,
		Length:      length,
		Bytes:       raw,
	}
}

// Range disassembles up to count instructions starting at start.
// It stops early instead of wrapping past the end of the address space.
func Range(mem cpu.Reader, start uint16, count int) []Line {
	lines := make([]Line, 0, count)
	address := int(start)

	for i := 0; i < count && address <= 0xFFFF; i++ {
		line := At(mem, uint16(address))
		lines = append(lines, line)
		address += line.Length
	}

	return lines
}

// Around disassembles the instruction at pc with up to before instructions
// preceding it and after instructions following it.
//
// Instructions have variable length, so the preceding ones are found by
// decoding forward from earlier addresses until one lands exactly on pc.
func Around(mem cpu.Reader, pc uint16, before, after int) []Line {
	var prefix []Line

	for offset := before * 3; offset > 0; offset-- {
		if int(pc)-offset < 0 {
			continue
		}

		var candidate []Line
		address := int(pc) - offset
		for address < int(pc) {
			line := At(mem, uint16(address))
			candidate = append(candidate, line)
			address += line.Length
		}

		if address == int(pc) && len(candidate) >= before {
			prefix = candidate[len(candidate)-before:]
			break
		}
		if address == int(pc) && len(candidate) > len(prefix) {
			prefix = candidate
		}
	}

	return append(prefix, Range(mem, pc, after+1)...)
}

// Format controls the columns of a listing.
type Format struct {
	Addresses bool
	Raw       bool
}

// rawColumn is where the raw bytes start when they are printed.
const rawColumn = 31

// Format renders a line as "0xADDR INSTRUCTION   0xB0 0xB1".
func (f Format) Format(line Line) string {
	var sb strings.Builder

	if f.Addresses {
		fmt.Fprintf(&sb, "0x%04X ", line.Address)
	}
	sb.WriteString(line.Instruction)

	if f.Raw {
		for sb.Len() < rawColumn {
			sb.WriteByte(' ')
		}
		for _, b := range line.Bytes {
			fmt.Fprintf(&sb, " 0x%02X", b)
		}
	}

	return sb.String()
}

// Write lists every instruction in [0, size) to w.
func Write(w io.Writer, mem cpu.Reader, size int, f Format) error {
	bw := bufio.NewWriter(w)

	for address := 0; address < size && address <= 0xFFFF; {
		line := At(mem, uint16(address))
		if _, err := fmt.Fprintln(bw, f.Format(line)); err != nil {
			return err
		}
		address += line.Length
	}

	return bw.Flush()
}
