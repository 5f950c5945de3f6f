package cpu

import "fmt"

// Reader is the read side of the address space, all the disassembler needs.
type Reader interface {
	Read(address uint16) byte
	Read16(address uint16) uint16
}

// Disassemble decodes the instruction at address.
// Returns its assembly and its size in bytes. Illegal opcodes take one byte.
func Disassemble(mem Reader, address uint16) (string, int) {
	op := mem.Read(address)
	instr := instructions[op]

	if !instr.Legal() {
		return fmt.Sprintf("ILLEGAL 0x%02X", op), 1
	}

	switch instr.Operand {
	case OperandImm8, OperandHigh8:
		return fmt.Sprintf(instr.Mnemonic, mem.Read(address+1)), instr.Length
	case OperandImm16:
		return fmt.Sprintf(instr.Mnemonic, mem.Read16(address+1)), instr.Length
	case OperandRelative:
		next := address + uint16(instr.Length)
		target := uint16(int32(next) + int32(int8(mem.Read(address+1))))
		return fmt.Sprintf(instr.Mnemonic, target), instr.Length
	case OperandSigned8:
		return fmt.Sprintf(instr.Mnemonic, int8(mem.Read(address+1))), instr.Length
	case OperandExtended:
		return CBMnemonic(mem.Read(address + 1)), instr.Length + instructions[PrefixCB].Length
	}

	return instr.Mnemonic, instr.Length
}
