// Package protocol implements the binary wire protocol spoken by couchplay
// controller clients.
//
// The protocol is deliberately tiny: controllers are phone browsers acting as
// gamepads, and every message fits in a handful of bytes. Messages are sent
// as individual WebSocket binary messages; the WebSocket layer provides the
// framing, so there is no length prefix.
//
// # Wire Format
//
// The first byte of every message is a tag:
//
//	┌───────┬────────────────┬──────────────────────────────────┐
//	│ Tag   │ Meaning        │ Remaining bytes                  │
//	├───────┼────────────────┼──────────────────────────────────┤
//	│ 0x00  │ Action event   │ exactly 1 byte: code 0–11        │
//	│ 0x01  │ Connect event  │ UTF-8 player display name        │
//	│ other │ (unknown)      │ decoded as Invalid               │
//	└───────┴────────────────┴──────────────────────────────────┘
//
// # Action Codes
//
// The second byte of an action message maps to a button edge transition:
//
//	0  UpPressed       1  UpReleased
//	2  RightPressed    3  RightReleased
//	4  DownPressed     5  DownReleased
//	6  LeftPressed     7  LeftReleased
//	8  APressed        9  AReleased
//	10 BPressed        11 BReleased
//
// A and B are arbitrary "action" buttons; what they do is up to the game
// currently running.
//
// Decoding is total: malformed input of any kind (wrong length, unknown tag
// or code, invalid UTF-8 in a connect name) decodes to an Invalid event
// carrying the original bytes. Decode never panics and never errors; a
// client sending garbage costs the server nothing but a diagnostic event.
package protocol
