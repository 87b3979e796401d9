package entrypoint

import "github.com/l2ep/ctlsep/hal"

// outcomeProcessing implements spec.md §4.4 "OutcomeProcessing": surface
// whatever Outcome the prior state left behind and finish. The Entry
// Point never re-enters on its own; a caller wanting to continue a
// multi-pass transaction re-invokes Activate using Outcome.Start.
func (ep *EntryPoint) outcomeProcessing() (State, error) {
	if ep.outcome.UIRequestOnOutcome != nil {
		ep.HAL.UIRequest(*ep.outcome.UIRequestOnOutcome)
	} else {
		ep.HAL.UIRequest(hal.UIRequest{
			MessageID: hal.MsgNA,
			Status:    hal.StatusIdle,
		})
	}

	return StateDone, nil
}
