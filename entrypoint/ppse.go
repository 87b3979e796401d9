package entrypoint

import "github.com/l2ep/ctlsep/tlv"

// PPSE wire-format tags (spec.md §6.4).
var (
	tagFCITemplate            = []byte{0x6F}
	tagFCIProprietaryTemplate = []byte{0xA5}
	tagFCIIssuerDiscData      = []byte{0xBF, 0x0C}
	tagDirectoryEntry         = []byte{0x61}
	tagADFName                = []byte{0x4F}
	tagAppPriorityIndicator   = []byte{0x87}
	tagKernelIdentifier       = []byte{0x9F, 0x2A}
	tagExtendedSelection      = []byte{0x9F, 0x29}
)

// directoryEntry is one parsed PPSE directory entry, in PPSE document
// order.
type directoryEntry struct {
	order                int
	adfName              []byte
	priority             byte
	kernelIdentifierField []byte
	extendedSelection    []byte
}

// parsePPSE walks FCITemplate -> FCIProprietaryTemplate ->
// FCIIssuerDiscretionaryData -> DirectoryEntry* (spec.md §6.4), returning
// the directory entries it finds in document order. Any missing
// intermediate container is treated as "no directory entries", not an
// error -- only a TLV-level decode failure upstream is a protocol error.
func parsePPSE(fci *tlv.Node) []directoryEntry {
	root := tlv.Find(fci, tagFCITemplate)
	if root == nil {
		return nil
	}
	prop := tlv.Find(root.Child(), tagFCIProprietaryTemplate)
	if prop == nil {
		return nil
	}
	idd := tlv.Find(prop.Child(), tagFCIIssuerDiscData)
	if idd == nil {
		return nil
	}

	var entries []directoryEntry
	order := 0
	for e := tlv.Find(idd.Child(), tagDirectoryEntry); e != nil; e = tlv.Find(e.Next(), tagDirectoryEntry) {
		de := directoryEntry{order: order}

		if adf := tlv.Find(e.Child(), tagADFName); adf != nil {
			de.adfName = adf.Value()
		}
		if pri := tlv.Find(e.Child(), tagAppPriorityIndicator); pri != nil &&
			len(pri.Value()) == 1 {

			de.priority = pri.Value()[0]
		}
		if kid := tlv.Find(e.Child(), tagKernelIdentifier); kid != nil {
			de.kernelIdentifierField = kid.Value()
		}
		if ext := tlv.Find(e.Child(), tagExtendedSelection); ext != nil {
			de.extendedSelection = ext.Value()
		}

		entries = append(entries, de)
		order++
	}

	return entries
}
