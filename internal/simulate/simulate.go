// Package simulate provides a scripted HAL and kernel pair for driving
// the Entry Point state machine end to end without real RF hardware or
// brand-specific kernels, loaded from a small YAML scenario file.
package simulate

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/btcsuite/btclog"
	"github.com/l2ep/ctlsep/hal"
	"github.com/l2ep/ctlsep/kernel"
	"gopkg.in/yaml.v3"
)

// Script is a scripted scenario: the sequence of C-APDU responses the HAL
// returns and, optionally, a sequence of WaitForCard outcomes to replay
// before settling on "card present".
type Script struct {
	Responses      []string `yaml:"responses"`
	WaitForCard    []string `yaml:"wait_for_card"`
	OutcomeApprove bool     `yaml:"outcome_approve"`
}

// LoadScript reads and parses a YAML scenario file.
func LoadScript(path string) (*Script, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("simulate: reading script: %w", err)
	}

	var s Script
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("simulate: parsing script: %w", err)
	}

	return &s, nil
}

// HAL replays a Script's Transceive responses and WaitForCard outcomes,
// and logs every UIRequest it's asked to render.
type HAL struct {
	script *Script
	log    btclog.Logger

	responseIdx int
	waitIdx     int
}

// NewHAL returns a HAL driven by script, logging UI requests to log.
func NewHAL(script *Script, log btclog.Logger) *HAL {
	if log == nil {
		log = btclog.Disabled
	}
	return &HAL{script: script, log: log}
}

func (h *HAL) StartPolling(context.Context) error {
	h.log.Debugf("simulate: polling started")
	return nil
}

func (h *HAL) WaitForCard(context.Context) error {
	if h.waitIdx >= len(h.script.WaitForCard) {
		return nil
	}
	outcome := h.script.WaitForCard[h.waitIdx]
	h.waitIdx++

	switch outcome {
	case "collision":
		return hal.ErrCollision
	case "continue":
		return hal.ErrContinue
	case "":
		return nil
	default:
		return fmt.Errorf("simulate: unknown wait_for_card outcome %q", outcome)
	}
}

func (h *HAL) Transceive(_ context.Context, capdu []byte) ([]byte, error) {
	if h.responseIdx >= len(h.script.Responses) {
		return nil, fmt.Errorf("simulate: script exhausted after %d "+
			"transceives", h.responseIdx)
	}

	raw, err := hex.DecodeString(h.script.Responses[h.responseIdx])
	if err != nil {
		return nil, fmt.Errorf("simulate: decoding response %d: %w",
			h.responseIdx, err)
	}
	h.responseIdx++

	h.log.Debugf("simulate: C-APDU %x", capdu)
	h.log.Debugf("simulate: R-APDU %x", raw)

	return raw, nil
}

func (h *HAL) UIRequest(req hal.UIRequest) {
	h.log.Infof("simulate: UI request message=%v status=%v", req.MessageID,
		req.Status)
}

// ApprovingKernel is a stand-in brand kernel that immediately approves,
// for demonstrating KernelActivation without a real Book C-N state
// machine.
type ApprovingKernel struct {
	log btclog.Logger
}

// NewApprovingKernel returns a kernel that logs the authorized amount and
// currency it receives and always approves.
func NewApprovingKernel(log btclog.Logger) *ApprovingKernel {
	if log == nil {
		log = btclog.Disabled
	}
	return &ApprovingKernel{log: log}
}

func (k *ApprovingKernel) Configure([]byte) error { return nil }

func (k *ApprovingKernel) Activate(_ context.Context, _ hal.HAL,
	parms kernel.Parameters) (kernel.Outcome, error) {

	k.log.Infof("simulate: kernel activated, amount=%d currency=%v",
		parms.AmountAuthorized, parms.Currency)

	return kernel.Outcome{Kind: kernel.OutcomeApproved}, nil
}
