package entrypoint

import (
	"context"
	"fmt"

	"github.com/l2ep/ctlsep/kernel"
)

// kernelActivation implements spec.md §4.4 "KernelActivation": look up
// the selected combination's Kernel ID in the Registry and hand control
// to it for the rest of the transaction. A registry lookup miss aborts
// Activate with KindNoKernel (spec.md §7's error taxonomy), matching
// original_source/src/libemv/emv_ep.c's EMV_RC_NO_KERNEL return.
func (ep *EntryPoint) kernelActivation(ctx context.Context) (State, error) {
	k := ep.Registry.Lookup(ep.parms.SelectedKernelID)
	if k == nil {
		return StateDone, newError(KindNoKernel,
			fmt.Errorf("no kernel registered for kernel ID %x",
				ep.parms.SelectedKernelID))
	}

	ind := ep.selected.combo.ind

	outcome, err := k.Activate(ctx, ep.HAL, kernel.Parameters{
		FCI:              ep.parms.FCI,
		SW1SW2:           ep.parms.SW1SW2,
		StartPoint:       ep.parms.StartPoint,
		TransactionType:  ep.parms.TxnType,
		AmountAuthorized: ep.parms.AmountAuthorized,
		AmountOther:      ep.parms.AmountOther,
		Currency:         ep.parms.Currency,
		UnpredictableNum: ep.parms.UnpredictableNumber,
		Restart:          ep.parms.Restart,

		TTQ: ind.ttq,

		StatusCheckRequested:     ind.statusCheckRequested,
		CTLSAppNotAllowed:        ind.ctlsAppNotAllowed,
		ZeroAmount:               ind.zeroAmount,
		CVMRequiredLimitExceeded: ind.cvmRequiredLimitExceeded,
		FloorLimitExceeded:       ind.floorLimitExceeded,
		TxnLimitExceeded:         ind.txnLimitExceeded,
	})
	if err != nil {
		return StateDone, newError(KindRFCommunicationError, err)
	}

	ep.outcome = outcome
	ep.uiRequestOnRestart = outcome.UIRequestOnRestart

	return StateOutcomeProcessing, nil
}
