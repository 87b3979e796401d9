package entrypoint

import (
	"context"
	"errors"

	"github.com/l2ep/ctlsep/hal"
	"github.com/l2ep/ctlsep/kernel"
)

// protocolActivation implements spec.md §4.4 "ProtocolActivation": TTQ
// reset on a fresh Start B entry, the restart/present-card UI request,
// and the collision-aware HAL polling loop.
func (ep *EntryPoint) protocolActivation(ctx context.Context) (State, error) {
	if !ep.parms.Restart && ep.parms.StartPoint == kernel.StartB {
		combos := ep.Config.ByTxnType[ep.parms.TxnType]
		ep.combos = make([]*combinationState, len(combos))
		for i, combo := range combos {
			cs := &combinationState{combo: combo}
			cs.ind.ttq = combo.TTQ
			cs.ind.ttq[1] &^= ttqOnlineCryptogramRequired | ttqCVMRequired
			ep.combos[i] = cs
		}
		ep.candidates = nil
	}

	if ep.parms.Restart && ep.uiRequestOnRestart != nil {
		ep.HAL.UIRequest(*ep.uiRequestOnRestart)
	} else {
		ep.HAL.UIRequest(hal.UIRequest{
			MessageID: hal.MsgPresentCard,
			Status:    hal.StatusReadyToRead,
		})
	}

	if err := ep.HAL.StartPolling(ctx); err != nil {
		return StateDone, newError(KindRFCommunicationError, err)
	}

	for {
		err := ep.HAL.WaitForCard(ctx)
		switch {
		case err == nil:
			return StateCombinationSelection, nil

		case errors.Is(err, hal.ErrCollision):
			ep.HAL.UIRequest(hal.UIRequest{
				MessageID: hal.MsgPresentOneCardOnly,
				Status:    hal.StatusProcessingError,
			})

		case errors.Is(err, hal.ErrContinue):
			ep.HAL.UIRequest(hal.UIRequest{
				MessageID: hal.MsgPresentOneCardOnly,
				Status:    hal.StatusReadyToRead,
			})

		default:
			return StateDone, newError(KindRFCommunicationError, err)
		}
	}
}
