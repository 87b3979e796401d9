package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// buildTag returns a BER-TLV field: tag, length (short form), value.
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

func mastercardBlob(ctlsTxnLimit, floorLimit []byte) []byte {
	combination := buildConstructed(tagCombination,
		buildTag(tagAID, []byte{0xA0, 0x00, 0x00, 0x00, 0x04, 0x10, 0x10}),
		buildTag(tagKernelID, []byte{0x02}),
	)

	var fields [][]byte
	fields = append(fields, buildTag(tagTransactionTypes, []byte{TxnPurchase}))
	if ctlsTxnLimit != nil {
		fields = append(fields, buildTag(tagReaderCTLSTxn, ctlsTxnLimit))
	}
	if floorLimit != nil {
		fields = append(fields, buildTag(tagReaderCTLSFloor, floorLimit))
	}
	fields = append(fields, combination)

	set := buildConstructed(tagCombinationSet, fields...)
	return buildConstructed(tagConfiguration, set)
}

func bcd6(t *testing.T, n int) []byte {
	t.Helper()
	// 12-digit BCD, e.g. 50000 -> 000000050000.
	s := []byte{0, 0, 0, 0, 0, 0}
	for i := 5; i >= 0 && n > 0; i-- {
		lo := byte(n % 10)
		n /= 10
		hi := byte(n % 10)
		n /= 10
		s[i] = hi<<4 | lo
	}
	return s
}

func TestLoadSimpleCombination(t *testing.T) {
	blob := mastercardBlob(bcd6(t, 50000), nil)

	cfg, err := Load(blob)
	require.NoError(t, err)
	require.Len(t, cfg.ByTxnType[TxnPurchase], 1)

	combo := cfg.ByTxnType[TxnPurchase][0]
	require.Equal(t, []byte{0xA0, 0x00, 0x00, 0x00, 0x04, 0x10, 0x10}, combo.AID)
	require.Equal(t, []byte{0x02}, combo.KernelID)
	require.True(t, combo.ReaderCTLSTxnLimit.Present)
	require.Equal(t, uint64(50000), combo.ReaderCTLSTxnLimit.Value)
	require.False(t, combo.ReaderCTLSFloorLimit.Present)
}

func TestLoadMultipleTransactionTypes(t *testing.T) {
	combination := buildConstructed(tagCombination,
		buildTag(tagAID, []byte{0xA0, 0x00, 0x00, 0x00, 0x03, 0x10, 0x10}),
		buildTag(tagKernelID, []byte{0x03}),
	)
	set := buildConstructed(tagCombinationSet,
		buildTag(tagTransactionTypes, []byte{TxnPurchase, TxnCashAdvance}),
		combination,
	)
	blob := buildConstructed(tagConfiguration, set)

	cfg, err := Load(blob)
	require.NoError(t, err)
	require.Len(t, cfg.ByTxnType[TxnPurchase], 1)
	require.Len(t, cfg.ByTxnType[TxnCashAdvance], 1)
}

func TestLoadRejectsBadLimitLength(t *testing.T) {
	set := buildConstructed(tagCombinationSet,
		buildTag(tagTransactionTypes, []byte{TxnPurchase}),
		buildTag(tagReaderCTLSTxn, []byte{0x00, 0x01}),
		buildConstructed(tagCombination,
			buildTag(tagAID, []byte{0xA0, 0x00, 0x00, 0x00, 0x04}),
			buildTag(tagKernelID, []byte{0x02}),
		),
	)
	blob := buildConstructed(tagConfiguration, set)

	_, err := Load(blob)
	require.ErrorIs(t, err, ErrSyntax)
}

func TestLoadRejectsUnknownTag(t *testing.T) {
	set := buildConstructed(tagCombinationSet,
		buildTag(tagTransactionTypes, []byte{TxnPurchase}),
		buildTag([]byte{0xDF, 0x99, 0xE3, 0x71}, []byte{0x01}),
		buildConstructed(tagCombination,
			buildTag(tagAID, []byte{0xA0, 0x00, 0x00, 0x00, 0x04}),
			buildTag(tagKernelID, []byte{0x02}),
		),
	)
	blob := buildConstructed(tagConfiguration, set)

	_, err := Load(blob)
	require.ErrorIs(t, err, ErrSyntax)
}

func TestLoadRejectsBadTTQLength(t *testing.T) {
	set := buildConstructed(tagCombinationSet,
		buildTag(tagTransactionTypes, []byte{TxnPurchase}),
		buildTag(tagTTQ, []byte{0x01, 0x02, 0x03}),
		buildConstructed(tagCombination,
			buildTag(tagAID, []byte{0xA0, 0x00, 0x00, 0x00, 0x04}),
			buildTag(tagKernelID, []byte{0x02}),
		),
	)
	blob := buildConstructed(tagConfiguration, set)

	_, err := Load(blob)
	require.ErrorIs(t, err, ErrSyntax)
}

func TestLoadBooleanFlagsAnyNonZeroIsEnabled(t *testing.T) {
	set := buildConstructed(tagCombinationSet,
		buildTag(tagTransactionTypes, []byte{TxnPurchase}),
		buildTag(tagZeroAmountAllowed, []byte{0xFF}),
		buildConstructed(tagCombination,
			buildTag(tagAID, []byte{0xA0, 0x00, 0x00, 0x00, 0x04}),
			buildTag(tagKernelID, []byte{0x02}),
		),
	)
	blob := buildConstructed(tagConfiguration, set)

	cfg, err := Load(blob)
	require.NoError(t, err)
	require.True(t, cfg.ByTxnType[TxnPurchase][0].ZeroAmountAllowed.Present)
	require.True(t, cfg.ByTxnType[TxnPurchase][0].ZeroAmountAllowed.Enabled)
}
