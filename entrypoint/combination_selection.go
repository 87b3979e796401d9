package entrypoint

import (
	"bytes"
	"context"
	"errors"
	"math"
	"sort"
)

// combinationSelection implements spec.md §4.4 "CombinationSelection":
// select 2PAY.SYS.DDF01, parse its directory, match every allowed
// combination against every directory entry and rank the matches.
func (ep *EntryPoint) combinationSelection(ctx context.Context) (State, error) {
	fci, err := ep.selectPPSE(ctx)
	if err != nil {
		var epErr *Error
		if errors.As(err, &epErr) && epErr.Kind == KindRFCommunicationError {
			return StateProtocolActivation, nil
		}
		return StateDone, err
	}

	ep.candidates = nil
	if fci != nil {
		for _, de := range parsePPSE(fci) {
			ep.matchDirectoryEntry(de)
		}
	}

	sortCandidates(ep.candidates)

	return StateFinalCombinationSelection, nil
}

// matchDirectoryEntry appends a Candidate for every allowed combination
// that de satisfies (spec.md §4.4): ADF Name long enough, the
// combination's AID a prefix of it, and the entry's Kernel Identifier
// field (if any) compatible with the combination's configured Kernel ID.
func (ep *EntryPoint) matchDirectoryEntry(de directoryEntry) {
	if len(de.adfName) < 5 {
		return
	}

	for _, cs := range ep.combos {
		if cs.ind.ctlsAppNotAllowed {
			continue
		}
		if !bytes.HasPrefix(de.adfName, cs.combo.AID) {
			continue
		}

		req, skip := requestedKernelID(de.kernelIdentifierField, de.adfName)
		if skip {
			continue
		}
		if !kernelIDEqual(req, cs.combo.KernelID) {
			continue
		}

		ep.candidates = append(ep.candidates, Candidate{
			ADFName:              de.adfName,
			AppPriorityIndicator: de.priority,
			ExtendedSelection:    de.extendedSelection,
			PPSEOrder:            de.order,
			combo:                cs,
		})
	}
}

// priorityRank maps an App Priority Indicator to a comparable rank where
// higher is more preferred: indicator 0 ("no preference") ranks below
// every non-zero indicator, and among non-zero indicators a smaller
// number (higher EMV priority) ranks above a larger one.
func priorityRank(indicator byte) int {
	if indicator == 0 {
		return math.MinInt
	}
	return -int(indicator)
}

// sortCandidates orders candidates ascending by priority so the last
// element is the one Entry Point should select: the highest priority sorts
// last, and among equal priorities the lower PPSE directory order sorts
// last (spec.md §4.4).
func sortCandidates(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		ri := priorityRank(candidates[i].AppPriorityIndicator)
		rj := priorityRank(candidates[j].AppPriorityIndicator)
		if ri != rj {
			return ri < rj
		}
		return candidates[i].PPSEOrder > candidates[j].PPSEOrder
	})
}
