package ams

// Ordered sub-step names per operation kind, for progress display only.
// Completion detection never looks at these.
var (
	loadSteps   = []string{"push", "heat", "purge"}
	unloadSteps = []string{"heat", "retract"}
)

// Raw StatusSub codes mapped onto step indexes. Reconstructed from watching
// real hardware; the table is incomplete and some codes overlap. Extend it
// as new codes are observed rather than trying to be exhaustive.
var (
	loadSubCodes = map[int]int{
		2: 0, 3: 0, // pushing filament toward the extruder
		4: 1, 5: 1, // nozzle heating
		6: 2, 7: 2, // purging old filament
	}
	unloadSubCodes = map[int]int{
		4: 0, 5: 0, // nozzle heating
		6: 1, 7: 1, // retracting filament
	}
)

// Steps returns the ordered sub-step names for kind, or nil for kinds
// without a step projection (refresh).
func Steps(kind OpKind) []string {
	switch kind {
	case OpLoad:
		return loadSteps
	case OpUnload:
		return unloadSteps
	default:
		return nil
	}
}

// StepProgress projects a raw StatusSub code onto kind's ordered step list.
// Unrecognized codes fall back to the first step rather than erroring.
func StepProgress(kind OpKind, statusSub int) (index int, name string) {
	steps := Steps(kind)
	if len(steps) == 0 {
		return 0, ""
	}
	var codes map[int]int
	if kind == OpLoad {
		codes = loadSubCodes
	} else {
		codes = unloadSubCodes
	}
	if i, ok := codes[statusSub]; ok && i < len(steps) {
		return i, steps[i]
	}
	return 0, steps[0]
}
