//go:build !daa

package cpu

// daa is left unimplemented: A and F are not touched.
// Build with -tags daa for the decimal adjustment.
func (c *CPU) daa() {}
