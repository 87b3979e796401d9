package kernel

import (
	"context"
	"testing"

	"github.com/l2ep/ctlsep/hal"
	"github.com/stretchr/testify/require"
)

type stubKernel struct{ name string }

func (s *stubKernel) Configure([]byte) error { return nil }

func (s *stubKernel) Activate(context.Context, hal.HAL, Parameters) (Outcome, error) {
	return Outcome{Kind: OutcomeApproved}, nil
}

func TestRegistryLookupExactMatch(t *testing.T) {
	r := NewRegistry()
	k1 := &stubKernel{name: "mc"}
	k2 := &stubKernel{name: "visa"}

	r.Register([]byte{0x02}, k1)
	r.Register([]byte{0x02, 0x00, 0x01}, k2)

	require.Same(t, k1, r.Lookup([]byte{0x02}))
	require.Nil(t, r.Lookup([]byte{0x02, 0x00}))
	require.Same(t, k2, r.Lookup([]byte{0x02, 0x00, 0x01}))
}

func TestRegistryDuplicateIDOnlyFirstReachable(t *testing.T) {
	r := NewRegistry()
	k1 := &stubKernel{name: "first"}
	k2 := &stubKernel{name: "second"}

	r.Register([]byte{0x03}, k1)
	r.Register([]byte{0x03}, k2)

	require.Same(t, k1, r.Lookup([]byte{0x03}))
}

func TestRegistryLookupMiss(t *testing.T) {
	r := NewRegistry()
	require.Nil(t, r.Lookup([]byte{0x99}))
}
