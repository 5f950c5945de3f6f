package sdl2

import (
	"fmt"

	"github.com/valerio/gogg/gg/backend"
)

// windowTitle returns the title bar text. With the debug view on, the title
// doubles as a one line status display.
func windowTitle(base string, showDebug bool, provider backend.DebugProvider) string {
	if !showDebug || provider == nil {
		return base
	}

	snap := provider.Snapshot()
	return fmt.Sprintf("%s [%s] IP=0x%04X SP=0x%04X AF=0x%04X %s cycles=%d",
		base, provider.State(), snap.Registers.IP, snap.Registers.SP,
		snap.Registers.AF.Get(), snap.Flags, snap.Cycles)
}
