package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildTagBytes(tag []byte, value []byte) []byte {
	out := append([]byte(nil), tag...)
	out = append(out, byte(len(value)))
	return append(out, value...)
}

func buildConstructedBytes(tag []byte, children ...[]byte) []byte {
	var value []byte
	for _, c := range children {
		value = append(value, c...)
	}
	return buildTagBytes(tag, value)
}

func bcd6Bytes(n int) []byte {
	out := []byte{0, 0, 0, 0, 0, 0}
	for i := 5; i >= 0 && n > 0; i-- {
		lo := byte(n % 10)
		n /= 10
		hi := byte(n % 10)
		n /= 10
		out[i] = hi<<4 | lo
	}
	return out
}

// overLimitConfigBlob builds a one-combination Purchase configuration
// whose reader contactless transaction limit is lower than the amount
// TestActivateOverLimitTriesAnotherInterface authorizes, so every
// combination is rejected during Preprocessing and the Entry Point never
// polls for a card or transceives; the HAL only receives the outcome's UI
// request.
func overLimitConfigBlob() []byte {
	combination := buildConstructedBytes([]byte{0xFF, 0x84, 0xE3, 0x71},
		buildTagBytes([]byte{0xDF, 0x85, 0xE3, 0x71},
			[]byte{0xA0, 0x00, 0x00, 0x00, 0x04, 0x10, 0x10}),
		buildTagBytes([]byte{0xDF, 0x86, 0xE3, 0x71}, []byte{0x02}),
	)
	set := buildConstructedBytes([]byte{0xFF, 0x82, 0xE3, 0x71},
		buildTagBytes([]byte{0xDF, 0x83, 0xE3, 0x71}, []byte{0x00}),
		buildTagBytes([]byte{0xDF, 0x8A, 0xE3, 0x71}, bcd6Bytes(5000)),
		combination,
	)
	return buildConstructedBytes([]byte{0xFF, 0x81, 0xE3, 0x71}, set)
}

func writeTempFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func TestActivateOverLimitTriesAnotherInterface(t *testing.T) {
	h := newHarness(t)

	configPath := writeTempFile(t, "config.bin", overLimitConfigBlob())
	scriptPath := writeTempFile(t, "scenario.yaml", []byte("responses: []\n"))

	cc := &activateCommand{
		ConfigFile: configPath,
		ScriptFile: scriptPath,
		Amount:     6000,
		Currency:   840,
	}

	err := cc.Execute(nil, nil)
	require.NoError(t, err)
	h.assertLogContains("TryAnotherInterface")
}

func TestActivateRequiresConfigAndScript(t *testing.T) {
	cc := &activateCommand{}
	err := cc.Execute(nil, nil)
	require.Error(t, err)
}
