// Package hal defines the capability contracts the Entry Point requires
// from the RF hardware abstraction layer, and the UI request vocabulary the
// Entry Point and kernels use to drive terminal feedback (LEDs, beeps,
// screen prompts). Concrete HALs (polling, card detection, APDU
// transceiver) are external collaborators, out of scope for this module.
package hal

import (
	"context"
	"errors"
)

// Sentinel errors a HAL implementation may return from WaitForCard. Any
// other error is treated as a generic, non-recoverable communication
// failure.
var (
	// ErrCollision indicates more than one card is present in the RF
	// field.
	ErrCollision = errors.New("hal: collision")

	// ErrContinue indicates a previously reported collision has
	// cleared and polling should continue.
	ErrContinue = errors.New("hal: continue")

	// ErrRFCommunication indicates a layer-1 transceive failure.
	ErrRFCommunication = errors.New("hal: rf communication error")

	// ErrCardProtocol indicates a malformed or protocol-violating
	// response from the card.
	ErrCardProtocol = errors.New("hal: card protocol error")
)

// HAL is the set of capabilities the Entry Point requires from the radio
// frontend. All methods are synchronous with respect to the caller; there
// is no internal concurrency in an implementation's use from the Entry
// Point's point of view (see §5 of the specification).
type HAL interface {
	// StartPolling begins RF polling for a card.
	StartPolling(ctx context.Context) error

	// WaitForCard blocks until a card is detected, a collision is
	// reported/cleared (ErrCollision/ErrContinue), or an error occurs.
	WaitForCard(ctx context.Context) error

	// Transceive sends a C-APDU and returns the raw R-APDU bytes
	// (response body followed by the two SW bytes).
	Transceive(ctx context.Context, capdu []byte) ([]byte, error)

	// UIRequest asks the terminal to render req. It is fire-and-forget;
	// implementations must not block the caller on terminal I/O.
	UIRequest(req UIRequest)
}

// MessageID enumerates the UI prompts the Entry Point and kernels can
// request.
type MessageID int

const (
	MsgNA MessageID = iota
	MsgPresentCard
	MsgPresentOneCardOnly
	MsgInsertOrSwipeCard
	MsgTryAnotherCard
)

// Status is the terminal LED/display status accompanying a UIRequest.
type Status int

const (
	StatusNotReady Status = iota
	StatusIdle
	StatusReadyToRead
	StatusProcessing
	StatusCardReadOK
	StatusProcessingError
)

// ValueQualifier distinguishes the two 6-byte BCD value kinds a UIRequest
// can carry.
type ValueQualifier int

const (
	ValueQualifierNA ValueQualifier = iota
	ValueQualifierAmount
	ValueQualifierBalance
)

// UIRequest is a single terminal feedback instruction.
type UIRequest struct {
	MessageID MessageID
	Status    Status
	HoldTime  int // milliseconds

	Language []byte // ISO 639 language preference, up to 8 bytes

	ValueQualifier ValueQualifier
	Value          [6]byte // BCD
	Currency       [2]byte // ISO 4217
}
