package main

import (
	"bytes"
	"fmt"
	"os"
	"testing"

	"github.com/btcsuite/btclog"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t         *testing.T
	logBuffer *bytes.Buffer
	logger    btclog.Logger
}

func newHarness(t *testing.T) *harness {
	buf := &bytes.Buffer{}
	logBackend := btclog.NewBackend(buf)

	h := &harness{
		t:         t,
		logBuffer: buf,
		logger:    logBackend.Logger("CTLS"),
	}

	h.logger.SetLevel(btclog.LevelTrace)
	log = h.logger

	os.Clearenv()

	return h
}

func (h *harness) assertLogContains(format string, args ...interface{}) {
	h.t.Helper()

	require.Contains(h.t, h.logBuffer.String(), fmt.Sprintf(format, args...))
}
