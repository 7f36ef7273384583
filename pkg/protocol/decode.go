package protocol

import "unicode/utf8"

// Message tags.
const (
	TagAction  = 0x00 // Action event, payload is one code byte
	TagConnect = 0x01 // Connect event, payload is the UTF-8 player name
)

// Decode maps a raw client message to its Event. It is pure and total:
// malformed input decodes to Invalid carrying the original bytes, and no
// input panics.
//
// A Connected event produced here carries no outbound sink; the connection
// handler attaches one before forwarding the event inward.
func Decode(data []byte) Event {
	if len(data) == 0 {
		return Invalid{Data: []byte{}}
	}

	switch data[0] {
	case TagAction:
		return decodeAction(data)
	case TagConnect:
		return decodeConnect(data)
	default:
		return Invalid{Data: data}
	}
}

func decodeAction(data []byte) Event {
	if len(data) != 2 {
		return Invalid{Data: data}
	}
	if data[1] > actionCodeMax {
		return Invalid{Data: data}
	}
	return ActionEvent(data[1])
}

func decodeConnect(data []byte) Event {
	name := data[1:]
	if !utf8.Valid(name) {
		return Invalid{Data: data}
	}
	return &Connected{Name: string(name)}
}
