package console

// State is the console mode.
type State int

const (
	// StateMenu prints the menu and dispatches one command per line.
	StateMenu State = iota
	// StateLiveDisplay renders every price snapshot; any input line leaves it.
	StateLiveDisplay
)

func (s State) String() string {
	switch s {
	case StateLiveDisplay:
		return "live"
	default:
		return "menu"
	}
}
