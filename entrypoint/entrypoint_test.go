package entrypoint

import (
	"context"
	"testing"

	"github.com/l2ep/ctlsep/config"
	"github.com/l2ep/ctlsep/hal"
	"github.com/l2ep/ctlsep/kernel"
	"github.com/stretchr/testify/require"
)

// buildTag returns a short-form BER-TLV field: tag, length, value.
func buildTag(tag []byte, value []byte) []byte {
	out := append([]byte(nil), tag...)
	out = append(out, byte(len(value)))
	return append(out, value...)
}

func buildConstructed(tag []byte, children ...[]byte) []byte {
	var value []byte
	for _, c := range children {
		value = append(value, c...)
	}
	return buildTag(tag, value)
}

func ppseFCI(entries ...[]byte) []byte {
	idd := buildConstructed([]byte{0xBF, 0x0C}, entries...)
	prop := buildConstructed([]byte{0xA5}, idd)
	return buildConstructed([]byte{0x6F}, prop)
}

func directoryEntryBytes(adfName []byte, priority byte, kernelID []byte) []byte {
	children := [][]byte{
		buildTag([]byte{0x4F}, adfName),
		buildTag([]byte{0x87}, []byte{priority}),
	}
	if kernelID != nil {
		children = append(children, buildTag([]byte{0x9F, 0x2A}, kernelID))
	}
	return buildConstructed([]byte{0x61}, children...)
}

// scriptedHAL replays a fixed sequence of Transceive responses and records
// every UIRequest it is asked to render.
type scriptedHAL struct {
	responses  [][]byte
	next       int
	uiRequests []hal.UIRequest
}

func (s *scriptedHAL) StartPolling(context.Context) error { return nil }
func (s *scriptedHAL) WaitForCard(context.Context) error  { return nil }

func (s *scriptedHAL) Transceive(context.Context, []byte) ([]byte, error) {
	r := s.responses[s.next]
	s.next++
	return r, nil
}

func (s *scriptedHAL) UIRequest(req hal.UIRequest) {
	s.uiRequests = append(s.uiRequests, req)
}

func sw(body []byte, sw1sw2 uint16) []byte {
	return append(append([]byte(nil), body...), byte(sw1sw2>>8), byte(sw1sw2))
}

func newTestEntryPoint(h hal.HAL, cfg *config.Configuration, registry *kernel.Registry) *EntryPoint {
	if registry == nil {
		registry = kernel.NewRegistry()
	}
	return New(cfg, TerminalData{}, registry, nil, h, nil)
}

func TestPreprocessingRejectsOverLimit(t *testing.T) {
	cfg := &config.Configuration{ByTxnType: map[byte][]config.Combination{
		config.TxnPurchase: {{
			AID:                []byte{0xA0, 0x00, 0x00, 0x00, 0x04, 0x10, 0x10},
			KernelID:           []byte{0x02},
			ReaderCTLSTxnLimit: config.Limit{Present: true, Value: 5000},
			TTQ:                [4]byte{0x20, 0x00, 0x00, 0x00},
		}},
	}}

	h := &scriptedHAL{}
	ep := newTestEntryPoint(h, cfg, nil)

	outcome, err := ep.Activate(context.Background(), TransactionParameters{
		StartPoint:       kernel.StartA,
		TxnType:          config.TxnPurchase,
		AmountAuthorized: 6000,
		Currency:         [2]byte{0x08, 0x40},
	})
	require.NoError(t, err)
	require.Equal(t, kernel.OutcomeTryAnotherInterface, outcome.Kind)
	require.Len(t, h.uiRequests, 1)
	require.Equal(t, hal.MsgInsertOrSwipeCard, h.uiRequests[0].MessageID)
}

func TestPreprocessingAboveFloorSetsOnlineRequired(t *testing.T) {
	combo := config.Combination{
		AID:                []byte{0xA0, 0x00, 0x00, 0x00, 0x04},
		KernelID:           []byte{0x02},
		TerminalFloorLimit: config.Limit{Present: true, Value: 1000},
		TTQ:                [4]byte{0x20, 0x00, 0x00, 0x00},
	}
	cfg := &config.Configuration{ByTxnType: map[byte][]config.Combination{
		config.TxnPurchase: {combo},
	}}

	ep := newTestEntryPoint(&scriptedHAL{}, cfg, nil)
	ep.parms = TransactionParameters{
		TxnType:          config.TxnPurchase,
		AmountAuthorized: 2000,
		Currency:         [2]byte{0x08, 0x40},
	}

	state, err := ep.preprocessing()
	require.NoError(t, err)
	require.Equal(t, StateProtocolActivation, state)
	require.True(t, ep.combos[0].ind.floorLimitExceeded)
	require.NotZero(t, ep.combos[0].ind.ttq[1]&ttqOnlineCryptogramRequired)
}

func TestCombinationSelectionPriorityTiePrefersLowerPPSEOrder(t *testing.T) {
	aidA := []byte{0xA0, 0x00, 0x00, 0x00, 0x04, 0x10, 0x10}
	aidB := []byte{0xA0, 0x00, 0x00, 0x00, 0x04, 0x10, 0x20}

	fci := ppseFCI(
		directoryEntryBytes(aidA, 1, nil),
		directoryEntryBytes(aidB, 1, nil),
	)

	h := &scriptedHAL{responses: [][]byte{sw(fci, 0x9000)}}
	cfg := &config.Configuration{ByTxnType: map[byte][]config.Combination{
		config.TxnPurchase: {
			{AID: aidA, KernelID: []byte{0x02}},
			{AID: aidB, KernelID: []byte{0x02}},
		},
	}}

	ep := newTestEntryPoint(h, cfg, nil)
	ep.parms = TransactionParameters{TxnType: config.TxnPurchase}
	ep.combos = []*combinationState{
		{combo: cfg.ByTxnType[config.TxnPurchase][0]},
		{combo: cfg.ByTxnType[config.TxnPurchase][1]},
	}

	state, err := ep.combinationSelection(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateFinalCombinationSelection, state)
	require.Len(t, ep.candidates, 2)
	require.Equal(t, aidA, ep.candidates[len(ep.candidates)-1].ADFName)
}

func TestCombinationSelectionSkipsShortExplicitKernelIdentifier(t *testing.T) {
	aid := []byte{0xA0, 0x00, 0x00, 0x00, 0x04, 0x10, 0x10}

	// byte1 bits 8-7 = 10 (explicit-id form), length 1 < 3 => skip entry.
	fci := ppseFCI(directoryEntryBytes(aid, 1, []byte{0x80}))

	h := &scriptedHAL{responses: [][]byte{sw(fci, 0x9000)}}
	cfg := &config.Configuration{ByTxnType: map[byte][]config.Combination{
		config.TxnPurchase: {{AID: aid, KernelID: []byte{0x02}}},
	}}

	ep := newTestEntryPoint(h, cfg, nil)
	ep.parms = TransactionParameters{TxnType: config.TxnPurchase}
	ep.combos = []*combinationState{{combo: cfg.ByTxnType[config.TxnPurchase][0]}}

	state, err := ep.combinationSelection(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateFinalCombinationSelection, state)
	require.Empty(t, ep.candidates)
}

func TestFinalCombinationSelectionNoCandidatesEndsApplication(t *testing.T) {
	ep := newTestEntryPoint(&scriptedHAL{}, &config.Configuration{}, nil)

	state, err := ep.finalCombinationSelection(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateOutcomeProcessing, state)
	require.Equal(t, kernel.OutcomeEndApplication, ep.outcome.Kind)
}

type approvingKernel struct{ seen *kernel.Parameters }

func (k *approvingKernel) Configure([]byte) error { return nil }

func (k *approvingKernel) Activate(_ context.Context, _ hal.HAL, parms kernel.Parameters) (kernel.Outcome, error) {
	if k.seen != nil {
		*k.seen = parms
	}
	return kernel.Outcome{Kind: kernel.OutcomeApproved}, nil
}

func TestKernelActivationNoKernelRegistered(t *testing.T) {
	ep := newTestEntryPoint(&scriptedHAL{}, &config.Configuration{}, kernel.NewRegistry())
	ep.parms.SelectedKernelID = []byte{0x02}
	ep.selected = &Candidate{combo: &combinationState{}}

	state, err := ep.kernelActivation(context.Background())
	require.Equal(t, StateDone, state)

	var epErr *Error
	require.ErrorAs(t, err, &epErr)
	require.Equal(t, KindNoKernel, epErr.Kind)
}

func TestKernelActivationDispatchesToRegisteredKernel(t *testing.T) {
	registry := kernel.NewRegistry()
	var seen kernel.Parameters
	registry.Register([]byte{0x02}, &approvingKernel{seen: &seen})

	ep := newTestEntryPoint(&scriptedHAL{}, &config.Configuration{}, registry)
	ep.parms.SelectedKernelID = []byte{0x02}
	ep.parms.TxnType = config.TxnPurchase
	ep.selected = &Candidate{combo: &combinationState{}}

	state, err := ep.kernelActivation(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateOutcomeProcessing, state)
	require.Equal(t, kernel.OutcomeApproved, ep.outcome.Kind)
	require.Equal(t, byte(config.TxnPurchase), seen.TransactionType)
}
