package tlv

import "fmt"

// dolEntry is one (tag, length) pair of a parsed Data Object List.
type dolEntry struct {
	tag    []byte
	length int
}

// parseDOL decodes a DOL buffer into its (tag, length) entries.
func parseDOL(dol []byte) ([]dolEntry, error) {
	var entries []dolEntry

	for len(dol) > 0 {
		tag, n, err := decodeIdentifier(dol)
		if err != nil {
			return nil, fmt.Errorf("tlv: parse dol: %w", err)
		}
		dol = dol[n:]

		length, n, err := decodeLength(dol)
		if err != nil {
			return nil, fmt.Errorf("tlv: parse dol: %w", err)
		}
		dol = dol[n:]

		entries = append(entries, dolEntry{tag: tag, length: length})
	}

	return entries, nil
}

// padField resizes src to exactly the requested length following the
// format-aware DOL padding/truncation rules:
//
//	actual > required, numeric:            truncate leftmost
//	actual > required, compressed-numeric: truncate rightmost
//	actual > required, other:              truncate rightmost
//	actual < required, numeric:            left-pad with 0x00
//	actual < required, compressed-numeric: right-pad with 0xFF
//	actual < required, other:              right-pad with 0x00
func padField(format Format, src []byte, required int) []byte {
	actual := len(src)
	if actual == required {
		out := make([]byte, required)
		copy(out, src)
		return out
	}

	out := make([]byte, required)
	if actual > required {
		switch format {
		case FormatNumeric:
			copy(out, src[actual-required:])
		default:
			copy(out, src[:required])
		}
		return out
	}

	switch format {
	case FormatCompressedNumeric:
		copy(out, src)
		for i := actual; i < required; i++ {
			out[i] = 0xFF
		}
	case FormatNumeric:
		copy(out[required-actual:], src)
	default:
		copy(out, src)
	}

	return out
}

// fieldSource resolves the bytes a DOL entry's tag should pull from
// within tlvs: a primitive node's verbatim value, or a constructed node's
// serialized children treated as primitive.
func fieldSource(tlvs *Node, tag []byte) []byte {
	node := Find(tlvs, tag)
	if node == nil {
		return nil
	}
	if node.IsConstructed() {
		return Encode(node.child)
	}
	return node.value
}

// TLVAndDOLToDEL builds a Data Element List by walking dol's entries,
// looking each tag up in tlvs, and format-padding/truncating its value (or
// zero-filling, if the tag is missing) to the requested length.
func TLVAndDOLToDEL(tlvs *Node, dol []byte, formats *FormatRegistry) ([]byte, error) {
	entries, err := parseDOL(dol)
	if err != nil {
		return nil, err
	}

	var out []byte
	for _, e := range entries {
		src := fieldSource(tlvs, e.tag)
		if src == nil {
			out = append(out, make([]byte, e.length)...)
			continue
		}
		out = append(out, padField(formats.Lookup(e.tag), src, e.length)...)
	}

	return out, nil
}

// DOLAndDELToTLV splits a concatenated Data Element List per dol's declared
// lengths, producing a fresh flat TLV sibling list (one primitive node per
// DOL entry, in order). len(del) must equal the sum of the DOL's lengths.
func DOLAndDELToTLV(dol []byte, del []byte) (*Node, error) {
	entries, err := parseDOL(dol)
	if err != nil {
		return nil, err
	}

	var first, last *Node
	offset := 0
	for _, e := range entries {
		if offset+e.length > len(del) {
			return nil, fmt.Errorf("tlv: dol_and_del_to_tlv: %w",
				ErrOverflow)
		}
		node := New(e.tag, del[offset:offset+e.length])
		offset += e.length

		if first == nil {
			first = node
		} else {
			last.next = node
			node.prev = last
		}
		last = node
	}

	if offset != len(del) {
		return nil, fmt.Errorf("tlv: dol_and_del_to_tlv: del length "+
			"mismatch: %w", ErrInvalidArg)
	}

	return first, nil
}
