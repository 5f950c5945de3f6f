package action

import "fmt"

// Action is a request from a backend to the emulator loop.
type Action int

const (
	EmulatorQuit Action = iota
	EmulatorPauseToggle
	EmulatorStepInstruction
	EmulatorStepFrame
	EmulatorSnapshot
	EmulatorDebugToggle
)

var names = map[Action]string{
	EmulatorQuit:            "Quit",
	EmulatorPauseToggle:     "Pause/Resume",
	EmulatorStepInstruction: "Step instruction",
	EmulatorStepFrame:       "Step frame",
	EmulatorSnapshot:        "Snapshot",
	EmulatorDebugToggle:     "Toggle debug view",
}

func (a Action) String() string {
	if name, ok := names[a]; ok {
		return name
	}
	return fmt.Sprintf("Action(%d)", int(a))
}
