package disasm

// Bytes is a copied address space image, readable by the disassembler.
// Addresses past the end read as zero.
type Bytes []byte

func (b Bytes) Read(address uint16) byte {
	if int(address) < len(b) {
		return b[address]
	}
	return 0
}

func (b Bytes) Read16(address uint16) uint16 {
	return uint16(b.Read(address)) | uint16(b.Read(address+1))<<8
}
