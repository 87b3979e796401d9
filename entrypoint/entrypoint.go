// Package entrypoint implements the EMV Contactless Level-2 Entry Point
// state machine: pre-processing, protocol activation, combination
// selection, final selection, kernel activation and outcome processing,
// per EMV Contactless Book A & Book B.
package entrypoint

import (
	"context"
	"fmt"

	"github.com/btcsuite/btclog"
	"github.com/l2ep/ctlsep/apdu"
	"github.com/l2ep/ctlsep/config"
	"github.com/l2ep/ctlsep/hal"
	"github.com/l2ep/ctlsep/kernel"
	"github.com/l2ep/ctlsep/tlv"
)

// ppseName is the well-known PPSE directory file name, "2PAY.SYS.DDF01".
var ppseName = []byte{
	0x32, 0x50, 0x41, 0x59, 0x2E, 0x53, 0x59, 0x53, 0x2E, 0x44, 0x44, 0x46,
	0x30, 0x31,
}

// EntryPoint is a single-threaded, non-reentrant driver for one
// transaction at a time (spec.md §5): it owns its combination set and
// candidate list across the states of one activation, and across the
// repeated Activate calls a caller makes to follow a restart Start point.
// HAL, the kernel Registry and the Format Registry are borrowed references
// that must outlive it.
type EntryPoint struct {
	Config   *config.Configuration
	Terminal TerminalData
	Registry *kernel.Registry
	Formats  *tlv.FormatRegistry
	Autorun  *Autorun

	HAL hal.HAL
	Log btclog.Logger

	// Per-transaction state, kept on the instance so a restart
	// Activate call finds the previous pass's combinations, candidates
	// and selection. Activate replaces parms and clears outcome on every
	// call; Preprocessing (and a fresh Start B entry) rebuilds combos;
	// CombinationSelection rebuilds candidates.
	parms      TransactionParameters
	combos     []*combinationState
	candidates []Candidate
	selected   *Candidate
	outcome    kernel.Outcome

	uiRequestOnRestart *hal.UIRequest
}

// New constructs an EntryPoint. log may be nil, in which case logging is
// disabled.
func New(cfg *config.Configuration, terminal TerminalData,
	registry *kernel.Registry, formats *tlv.FormatRegistry, h hal.HAL,
	log btclog.Logger) *EntryPoint {

	if log == nil {
		log = btclog.Disabled
	}

	return &EntryPoint{
		Config:   cfg,
		Terminal: terminal,
		Registry: registry,
		Formats:  formats,
		HAL:      h,
		Log:      log,
	}
}

// Activate drives the state machine from txnParms.StartPoint through to
// Done (or an aborting error), returning the final Outcome. The caller is
// responsible for re-invoking Activate with the Outcome's Start point, if
// any, to continue a multi-pass transaction (spec.md §9 "Outcome
// routing" -- the Entry Point itself never re-enters).
func (ep *EntryPoint) Activate(ctx context.Context, txnParms TransactionParameters) (kernel.Outcome, error) {
	ep.parms = txnParms
	ep.outcome = kernel.Outcome{}

	state, err := ep.initialState()
	if err != nil {
		return kernel.Outcome{}, err
	}

	for state != StateDone {
		ep.Log.Debugf("entrypoint: entering state %s", state)

		next, err := ep.step(ctx, state)
		if err != nil {
			return kernel.Outcome{}, err
		}
		state = next
	}

	return ep.outcome, nil
}

func (ep *EntryPoint) initialState() (State, error) {
	switch ep.parms.StartPoint {
	case kernel.StartA:
		return StatePreprocessing, nil
	case kernel.StartB:
		return StateProtocolActivation, nil
	case kernel.StartD:
		return StateKernelActivation, nil
	case kernel.StartC:
		return StateDone, newError(KindInvalidArg,
			fmt.Errorf("start point C is not a legal initial start"))
	default:
		return StateDone, newError(KindInvalidArg,
			fmt.Errorf("unknown start point %v", ep.parms.StartPoint))
	}
}

func (ep *EntryPoint) step(ctx context.Context, state State) (State, error) {
	switch state {
	case StatePreprocessing:
		return ep.preprocessing()
	case StateProtocolActivation:
		return ep.protocolActivation(ctx)
	case StateCombinationSelection:
		return ep.combinationSelection(ctx)
	case StateFinalCombinationSelection:
		return ep.finalCombinationSelection(ctx)
	case StateKernelActivation:
		return ep.kernelActivation(ctx)
	case StateOutcomeProcessing:
		return ep.outcomeProcessing()
	default:
		return StateDone, newError(KindInvalidArg,
			fmt.Errorf("unreachable state %v", state))
	}
}

// selectPPSE issues SELECT 2PAY.SYS.DDF01 and returns the parsed FCI tree,
// or a nil tree (with no error) if the card reported a non-9000 SW.
func (ep *EntryPoint) selectPPSE(ctx context.Context) (*tlv.Node, error) {
	resp, err := apdu.Transceive(ctx, ep.HAL, apdu.SelectByName(ppseName, apdu.MaxLe))
	if err != nil {
		return nil, newError(KindRFCommunicationError, err)
	}

	ep.parms.SW1SW2 = resp.SW1SW2
	ep.parms.FCI = resp.Data

	if resp.SW1SW2 != apdu.SW9000 {
		return nil, nil
	}

	fci, err := tlv.Parse(resp.Data)
	if err != nil {
		return nil, newError(KindCardProtocolError, err)
	}

	return fci, nil
}
