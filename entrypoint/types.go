package entrypoint

import (
	"github.com/l2ep/ctlsep/config"
	"github.com/l2ep/ctlsep/kernel"
)

// State is one of the six Entry Point states, plus the terminal Done
// state.
type State int

const (
	StatePreprocessing State = iota
	StateProtocolActivation
	StateCombinationSelection
	StateFinalCombinationSelection
	StateKernelActivation
	StateOutcomeProcessing
	StateDone
)

func (s State) String() string {
	switch s {
	case StatePreprocessing:
		return "Preprocessing"
	case StateProtocolActivation:
		return "ProtocolActivation"
	case StateCombinationSelection:
		return "CombinationSelection"
	case StateFinalCombinationSelection:
		return "FinalCombinationSelection"
	case StateKernelActivation:
		return "KernelActivation"
	case StateOutcomeProcessing:
		return "OutcomeProcessing"
	case StateDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// TerminalData is the process-wide terminal configuration referenced
// during preprocessing and kernel activation (spec.md §3).
type TerminalData struct {
	AcquirerID      []byte
	MerchantID      []byte
	CountryCode     [2]byte
	TerminalType    byte
	POSEntryMode    byte
	Capabilities    []byte
}

// Autorun optionally drives an unattended, amount-preset activation.
type Autorun struct {
	Enabled          bool
	TxnType          byte
	AmountAuthorized uint64
}

// TransactionParameters are the per-activation inputs and accumulated
// state described in spec.md §3. FCI and SW1SW2 reflect the last SELECT
// performed during this activation.
type TransactionParameters struct {
	StartPoint kernel.StartPoint

	TxnType          byte
	AmountAuthorized uint64
	AmountOther      uint64
	Currency         [2]byte

	UnpredictableNumber uint32
	Restart             bool

	SelectedKernelID []byte
	FCI              []byte
	SW1SW2           uint16
}

// indicators are the per-combination Preprocessing Indicators (spec.md
// §3), reset to all-false at the start of every activation that re-enters
// Preprocessing.
type indicators struct {
	statusCheckRequested     bool
	ctlsAppNotAllowed        bool
	zeroAmount               bool
	cvmRequiredLimitExceeded bool
	floorLimitExceeded       bool
	txnLimitExceeded         bool

	ttq [4]byte
}

// combinationState pairs one configured Combination with its transient
// Preprocessing Indicators for the current activation.
type combinationState struct {
	combo config.Combination
	ind   indicators
}

// Candidate is a matched (PPSE directory entry x allowed combination)
// pairing (spec.md §3).
type Candidate struct {
	ADFName              []byte
	AppPriorityIndicator byte
	ExtendedSelection    []byte
	PPSEOrder            int

	combo *combinationState
}
