package protocol

// ActionEvent is a button edge transition reported by a controller: one of
// six logical buttons, each either pressed or released.
//
// The numeric values of the pressed/released constants match the wire codes
// exactly and must not be reordered.
type ActionEvent uint8

const (
	ActionUpPressed ActionEvent = iota
	ActionUpReleased
	ActionRightPressed
	ActionRightReleased
	ActionDownPressed
	ActionDownReleased
	ActionLeftPressed
	ActionLeftReleased
	ActionAPressed
	ActionAReleased
	ActionBPressed
	ActionBReleased

	// ActionNone is yielded when a player has no pending input for a tick.
	// It has no wire encoding.
	ActionNone
)

// actionCodeMax is the highest valid wire code for an action event.
const actionCodeMax = uint8(ActionBReleased)

func (ActionEvent) isEvent() {}

// Pressed returns true for the *Pressed transitions.
func (a ActionEvent) Pressed() bool {
	return a < ActionNone && a%2 == 0
}

// String returns the name of the action event.
func (a ActionEvent) String() string {
	switch a {
	case ActionUpPressed:
		return "UpPressed"
	case ActionUpReleased:
		return "UpReleased"
	case ActionRightPressed:
		return "RightPressed"
	case ActionRightReleased:
		return "RightReleased"
	case ActionDownPressed:
		return "DownPressed"
	case ActionDownReleased:
		return "DownReleased"
	case ActionLeftPressed:
		return "LeftPressed"
	case ActionLeftReleased:
		return "LeftReleased"
	case ActionAPressed:
		return "APressed"
	case ActionAReleased:
		return "AReleased"
	case ActionBPressed:
		return "BPressed"
	case ActionBReleased:
		return "BReleased"
	case ActionNone:
		return "None"
	default:
		return "Unknown"
	}
}
