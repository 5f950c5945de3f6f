package disasm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/gogg/gg/memory"
)

// program: NOP; LD A, 0x42; LD BC, 0x1234; JR -7; CB SWAP A
var program = []byte{0x00, 0x3E, 0x42, 0x01, 0x34, 0x12, 0x18, 0xF9, 0xCB, 0x37}

func newMem() *memory.MMU {
	return memory.NewWithROM(program)
}

func TestAt(t *testing.T) {
	line := At(newMem(), 0x0003)

	assert.Equal(t, Line{
		Address:     0x0003,
		Instruction: "LD BC, 0x1234",
		Length:      3,
		Bytes:       []byte{0x01, 0x34, 0x12},
	}, line)
}

func TestRange(t *testing.T) {
	lines := Range(newMem(), 0, 5)
	require.Len(t, lines, 5)

	var got []string
	for _, l := range lines {
		got = append(got, l.Instruction)
	}
	assert.Equal(t, []string{"NOP", "LD A, 0x42", "LD BC, 0x1234", "JR 0x0001", "SWAP A"}, got)
	assert.Equal(t, uint16(0x0008), lines[4].Address)
}

func TestRange_stopsAtEndOfAddressSpace(t *testing.T) {
	lines := Range(memory.New(), 0xFFFE, 10)

	assert.Len(t, lines, 2)
}

func TestAround(t *testing.T) {
	lines := Around(newMem(), 0x0006, 2, 1)
	require.Len(t, lines, 4)

	assert.Equal(t, uint16(0x0001), lines[0].Address)
	assert.Equal(t, uint16(0x0003), lines[1].Address)
	assert.Equal(t, uint16(0x0006), lines[2].Address)
	assert.Equal(t, uint16(0x0008), lines[3].Address)
}

func TestAround_nearStart(t *testing.T) {
	lines := Around(newMem(), 0x0001, 3, 0)
	require.Len(t, lines, 2)

	assert.Equal(t, uint16(0x0000), lines[0].Address)
	assert.Equal(t, uint16(0x0001), lines[1].Address)
}

func TestFormat(t *testing.T) {
	line := At(newMem(), 0x0001)

	testCases := []struct {
		desc   string
		format Format
		want   string
	}{
		{desc: "bare", format: Format{}, want: "LD A, 0x42"},
		{desc: "addresses", format: Format{Addresses: true}, want: "0x0001 LD A, 0x42"},
		{desc: "raw", format: Format{Raw: true}, want: "LD A, 0x42" + strings.Repeat(" ", 21) + " 0x3E 0x42"},
		{desc: "both", format: Format{Addresses: true, Raw: true}, want: "0x0001 LD A, 0x42" + strings.Repeat(" ", 14) + " 0x3E 0x42"},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			assert.Equal(t, tC.want, tC.format.Format(line))
		})
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, Write(&buf, newMem(), len(program), Format{Addresses: true}))

	assert.Equal(t, strings.Join([]string{
		"0x0000 NOP",
		"0x0001 LD A, 0x42",
		"0x0003 LD BC, 0x1234",
		"0x0006 JR 0x0001",
		"0x0008 SWAP A",
	}, "\n")+"\n", buf.String())
}

func TestBytes(t *testing.T) {
	b := Bytes(program)

	assert.Equal(t, byte(0x3E), b.Read(0x0001))
	assert.Equal(t, uint16(0x1234), b.Read16(0x0004))
	assert.Equal(t, byte(0), b.Read(0x4000))

	lines := Range(b, 0, 3)
	require.Len(t, lines, 3)
	assert.Equal(t, "LD BC, 0x1234", lines[2].Instruction)
}
