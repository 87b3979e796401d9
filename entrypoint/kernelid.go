package entrypoint

// kernelDefault associates a card RID (the first five bytes of an AID)
// with the Kernel ID a compliant reader assumes when the PPSE doesn't
// carry an explicit Kernel Identifier for that application (spec.md
// §4.4, "Requested Kernel ID" table). This is a fixed package-level
// table; every lookup iterates over the table's own entries (stopping at
// the first match), never over the caller's input, and callers cannot
// mutate or replace it.
var kernelDefaultsByRID = []struct {
	rid      [5]byte
	kernelID byte
}{
	{[5]byte{0xA0, 0x00, 0x00, 0x00, 0x04}, 0x02}, // Mastercard
	{[5]byte{0xA0, 0x00, 0x00, 0x00, 0x03}, 0x03}, // Visa
	{[5]byte{0xA0, 0x00, 0x00, 0x00, 0x25}, 0x04}, // American Express
	{[5]byte{0xA0, 0x00, 0x00, 0x00, 0x65}, 0x05}, // JCB
	{[5]byte{0xA0, 0x00, 0x00, 0x00, 0x15}, 0x06}, // Discover
	{[5]byte{0xA0, 0x00, 0x00, 0x03, 0x33}, 0x07}, // UnionPay
}

// defaultKernelIDForAID returns the one-byte default Kernel ID for aid's
// RID, or nil if the RID isn't one of the fixed defaults.
func defaultKernelIDForAID(aid []byte) []byte {
	if len(aid) < 5 {
		return nil
	}
	for _, e := range kernelDefaultsByRID {
		if e.rid[0] == aid[0] && e.rid[1] == aid[1] && e.rid[2] == aid[2] &&
			e.rid[3] == aid[3] && e.rid[4] == aid[4] {

			return []byte{e.kernelID}
		}
	}
	return nil
}

// requestedKernelID derives the Requested Kernel ID for one PPSE
// directory entry from its (possibly absent) Kernel Identifier field,
// per the byte1-bits-8-7 rules of spec.md §4.4. A nil, non-skip result
// means "no specific requirement" and matches any combination's Kernel
// ID for the same AID.
func requestedKernelID(field, adfName []byte) (req []byte, skip bool) {
	if len(field) == 0 {
		return defaultKernelIDForAID(adfName), false
	}

	b1 := field[0]
	switch b1 & 0xC0 {
	case 0x00, 0x40:
		return []byte{b1}, false
	}

	if len(field) < 3 {
		return nil, true
	}
	if b1&0x3F != 0 {
		return field[:3], false
	}
	return field, false
}

func kernelIDEqual(requested, combo []byte) bool {
	if requested == nil {
		return true
	}
	if len(requested) != len(combo) {
		return false
	}
	for i := range requested {
		if requested[i] != combo[i] {
			return false
		}
	}
	return true
}
