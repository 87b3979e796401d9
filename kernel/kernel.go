// Package kernel defines the capability contract a brand-specific EMV
// Level-2 kernel must satisfy to be invoked by the Entry Point, and a
// registry mapping Kernel ID bytes to registered kernel handles. Concrete
// kernels (the EMV Book C-N state machines) are external collaborators,
// out of scope for this module.
package kernel

import (
	"context"

	"github.com/l2ep/ctlsep/hal"
)

// Outcome kinds a kernel's Activate call can return.
type OutcomeKind int

const (
	OutcomeNA OutcomeKind = iota
	OutcomeSelectNext
	OutcomeTryAgain
	OutcomeApproved
	OutcomeDeclined
	OutcomeOnlineRequest
	OutcomeTryAnotherInterface
	OutcomeEndApplication
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeNA:
		return "NA"
	case OutcomeSelectNext:
		return "SelectNext"
	case OutcomeTryAgain:
		return "TryAgain"
	case OutcomeApproved:
		return "Approved"
	case OutcomeDeclined:
		return "Declined"
	case OutcomeOnlineRequest:
		return "OnlineRequest"
	case OutcomeTryAnotherInterface:
		return "TryAnotherInterface"
	case OutcomeEndApplication:
		return "EndApplication"
	default:
		return "Unknown"
	}
}

// StartPoint is one of the four Entry Point re-entry points.
type StartPoint int

const (
	StartNA StartPoint = iota
	StartA
	StartB
	StartC
	StartD
)

// OnlineResponseType distinguishes what kind of data the terminal must
// send back to the kernel after going online.
type OnlineResponseType int

const (
	OnlineResponseNA OnlineResponseType = iota
	OnlineResponseEMVData
	OnlineResponseAny
)

// CVM is the cardholder verification method the kernel selected.
type CVM int

const (
	CVMNA CVM = iota
	CVMOnlinePIN
	CVMConfCodeVerified
	CVMObtainSignature
	CVMNoCVM
)

// AlternateInterfacePreference is the kernel's guidance on what interface
// to retry with when OutcomeKind is TryAnotherInterface.
type AlternateInterfacePreference int

const (
	AltInterfaceNA AlternateInterfacePreference = iota
	AltInterfaceContactChip
	AltInterfaceMagstripe
)

// Outcome is the result handed back to the terminal after a kernel (or the
// Entry Point itself, for its own fallback outcomes) finishes processing.
type Outcome struct {
	Kind OutcomeKind

	Start StartPoint // re-entry point, if any

	OnlineResponse OnlineResponseType
	CVM            CVM

	UIRequestOnOutcome  *hal.UIRequest
	UIRequestOnRestart  *hal.UIRequest

	DataRecord        []byte // <= 512 bytes
	DiscretionaryData []byte // <= 1024 bytes

	Receipt bool

	AlternateInterfacePreference AlternateInterfacePreference

	FieldOffHoldTime *int // milliseconds, optional
	RemovalTimeout   int  // milliseconds
}

// Parameters is everything the Entry Point hands to a kernel's Activate
// call: the preprocessing indicators computed for the selected combination,
// the FCI and status word from the last SELECT, and the transaction
// parameters for this activation.
type Parameters struct {
	FCI    []byte
	SW1SW2 uint16

	StartPoint StartPoint

	TransactionType   byte
	AmountAuthorized  uint64
	AmountOther       uint64
	Currency          [2]byte
	UnpredictableNum  uint32
	Restart           bool

	// TTQ is the (possibly indicator-mutated) Terminal Transaction
	// Qualifiers copied per this transaction.
	TTQ [4]byte

	StatusCheckRequested        bool
	CTLSAppNotAllowed           bool
	ZeroAmount                  bool
	CVMRequiredLimitExceeded    bool
	FloorLimitExceeded          bool
	TxnLimitExceeded            bool
}

// Kernel is the capability contract a brand-specific EMV kernel must
// implement to be registered and invoked by the Entry Point.
type Kernel interface {
	// Configure loads kernel-specific configuration from a TLV blob.
	Configure(blob []byte) error

	// Activate runs the kernel's own state machine against the card
	// over h, returning the final Outcome. It is invoked exactly once
	// by the Entry Point per transaction.
	Activate(ctx context.Context, h hal.HAL, parms Parameters) (Outcome, error)
}

// entry is one registered (ID, Kernel) pair.
type entry struct {
	id     []byte
	kernel Kernel
}

// Registry maps Kernel ID bytes to registered Kernel handles. Kernels are
// borrowed references that must outlive the Registry and any Entry Point
// using it.
type Registry struct {
	entries []entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends (id, k) to the registry. Duplicate IDs are accepted,
// but Lookup only ever returns the first match.
func (r *Registry) Register(id []byte, k Kernel) {
	r.entries = append(r.entries, entry{
		id:     append([]byte(nil), id...),
		kernel: k,
	})
}

// Lookup returns the first kernel registered under an ID that is
// byte-wise equal (same length and value) to id, or nil if there is no
// match.
func (r *Registry) Lookup(id []byte) Kernel {
	for _, e := range r.entries {
		if idEqual(e.id, id) {
			return e.kernel
		}
	}
	return nil
}

func idEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
