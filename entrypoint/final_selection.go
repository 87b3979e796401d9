package entrypoint

import (
	"context"

	"github.com/l2ep/ctlsep/apdu"
	"github.com/l2ep/ctlsep/hal"
	"github.com/l2ep/ctlsep/kernel"
)

// finalCombinationSelection implements spec.md §4.4
// "FinalCombinationSelection": take the highest-priority candidate left
// after CombinationSelection's ranking, SELECT its AID, and either move
// on to KernelActivation or drop the candidate and retry.
func (ep *EntryPoint) finalCombinationSelection(ctx context.Context) (State, error) {
	if len(ep.candidates) == 0 {
		ep.outcome = kernel.Outcome{
			Kind: kernel.OutcomeEndApplication,
			UIRequestOnOutcome: &hal.UIRequest{
				MessageID: hal.MsgTryAnotherCard,
				Status:    hal.StatusReadyToRead,
			},
		}
		return StateOutcomeProcessing, nil
	}

	best := ep.candidates[len(ep.candidates)-1]

	// TODO(kernel-3-fallback): spec.md §9 leaves open whether a Visa
	// (Kernel 3) candidate that fails here should fall back to Kernel 1
	// before being dropped. Not implemented.

	data := append([]byte(nil), best.ADFName...)
	extSel := best.combo.combo.ExtSelection
	if extSel.Present && extSel.Enabled && len(best.ExtendedSelection) > 0 {
		data = append(data, best.ExtendedSelection...)
	}

	resp, err := apdu.Transceive(ctx, ep.HAL, apdu.SelectByName(data, apdu.MaxLe))
	if err != nil {
		return StateProtocolActivation, nil
	}

	ep.parms.FCI = resp.Data
	ep.parms.SW1SW2 = resp.SW1SW2

	if resp.SW1SW2 != apdu.SW9000 {
		ep.candidates = ep.candidates[:len(ep.candidates)-1]
		return StateFinalCombinationSelection, nil
	}

	ep.selected = &best
	ep.parms.SelectedKernelID = best.combo.combo.KernelID

	return StateKernelActivation, nil
}
