package entrypoint

import (
	"fmt"

	"github.com/l2ep/ctlsep/config"
	"github.com/l2ep/ctlsep/hal"
	"github.com/l2ep/ctlsep/kernel"
)

// TTQ byte 1 bit mask.
const ttqOfflineOnlyReader = 0x10

// TTQ byte 2 bit masks.
const (
	ttqOnlineCryptogramRequired = 0x80
	ttqCVMRequired              = 0x40
)

// preprocessing implements spec.md §4.4 "Preprocessing (entered at Start
// A)": it resets the per-combination Preprocessing Indicators, copies and
// masks TTQ, runs the seven arithmetic checks against the configured
// limits, and decides whether every combination ends up ineligible.
func (ep *EntryPoint) preprocessing() (State, error) {
	if !config.ValidTxnType(ep.parms.TxnType) {
		return StateDone, newError(KindUnsupportedTransactionType,
			fmt.Errorf("transaction type 0x%02X", ep.parms.TxnType))
	}

	combos := ep.Config.ByTxnType[ep.parms.TxnType]
	ep.combos = make([]*combinationState, len(combos))
	for i, combo := range combos {
		cs := &combinationState{combo: combo}
		cs.ind.ttq = combo.TTQ
		cs.ind.ttq[1] &^= ttqOnlineCryptogramRequired | ttqCVMRequired

		preprocessOne(ep.parms.AmountAuthorized, oneUnit(ep.parms.Currency),
			&cs.ind, combo)

		ep.combos[i] = cs
	}

	if ep.allCombosNotAllowed() {
		ep.outcome = kernel.Outcome{
			Kind: kernel.OutcomeTryAnotherInterface,
			UIRequestOnOutcome: &hal.UIRequest{
				MessageID: hal.MsgInsertOrSwipeCard,
				Status:    hal.StatusProcessingError,
			},
		}
		return StateOutcomeProcessing, nil
	}

	if !supportedCurrency(ep.parms.Currency) {
		return StateDone, newError(KindUnsupportedCurrencyCode,
			fmt.Errorf("currency code %d", currencyCode(ep.parms.Currency)))
	}

	return StateProtocolActivation, nil
}

func (ep *EntryPoint) allCombosNotAllowed() bool {
	for _, cs := range ep.combos {
		if !cs.ind.ctlsAppNotAllowed {
			return false
		}
	}
	return true
}

// preprocessOne runs the seven steps of spec.md §4.4 against one
// combination's configured limits, given ind already holds the
// byte-2-masked TTQ copy.
func preprocessOne(amount, oneUnitAmount uint64, ind *indicators, combo config.Combination) {
	// 1.
	if combo.StatusCheck.Present && combo.StatusCheck.Enabled &&
		amount == oneUnitAmount {

		ind.statusCheckRequested = true
	}

	// 2.
	if amount == 0 {
		if combo.ZeroAmountAllowed.Present && !combo.ZeroAmountAllowed.Enabled {
			ind.ctlsAppNotAllowed = true
		} else {
			ind.zeroAmount = true
		}
	}

	// 3.
	if combo.ReaderCTLSTxnLimit.Present && amount >= combo.ReaderCTLSTxnLimit.Value {
		ind.ctlsAppNotAllowed = true
	}

	// 4, 5.
	switch {
	case combo.ReaderCTLSFloorLimit.Present:
		if amount > combo.ReaderCTLSFloorLimit.Value {
			ind.floorLimitExceeded = true
		}
	case combo.TerminalFloorLimit.Present:
		if amount > combo.TerminalFloorLimit.Value {
			ind.floorLimitExceeded = true
		}
	}

	// 6.
	if combo.ReaderCVMRequiredLimit.Present && amount >= combo.ReaderCVMRequiredLimit.Value {
		ind.cvmRequiredLimitExceeded = true
	}

	// 7.
	if combo.TTQ != ([4]byte{}) {
		if ind.floorLimitExceeded || ind.statusCheckRequested {
			ind.ttq[1] |= ttqOnlineCryptogramRequired
		}
		if ind.zeroAmount {
			if ind.ttq[0]&ttqOfflineOnlyReader != 0 {
				ind.ctlsAppNotAllowed = true
			} else {
				ind.ttq[1] |= ttqOnlineCryptogramRequired
			}
		}
		if ind.cvmRequiredLimitExceeded {
			ind.ttq[1] |= ttqCVMRequired
		}
	}
}
