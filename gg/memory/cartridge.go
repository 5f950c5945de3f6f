package memory

import (
	"strings"

	"github.com/valerio/gogg/gg/addr"
)

// jpOpcode is the instruction expected at the entry point of a bootable image.
const jpOpcode = 0xC3

// Header holds the parts of the cartridge header the machine cares about.
type Header struct {
	Title string
	// Bootable is true when the entry point holds a JP nn instruction.
	Bootable bool
	// Entry is the JP target when Bootable is set.
	Entry uint16
}

// ParseHeader extracts header metadata from a cartridge image.
// Images too short to contain a header produce a zero Header.
func ParseHeader(rom []byte) Header {
	var h Header

	if len(rom) > int(addr.EntryTarget)+1 {
		h.Bootable = rom[addr.EntryPoint] == jpOpcode && rom[addr.EntryPoint+1] == 0x00
		if h.Bootable {
			h.Entry = uint16(rom[addr.EntryTarget]) | uint16(rom[addr.EntryTarget+1])<<8
		}
	}

	if len(rom) >= int(addr.TitleEnd) {
		title := rom[addr.Title:addr.TitleEnd]
		h.Title = strings.TrimRight(string(title), "\x00 ")
	}

	return h
}
