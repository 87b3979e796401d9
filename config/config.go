// Package config decodes the proprietary BER-TLV terminal configuration
// blob into typed Combination sets, keyed by transaction type.
package config

import (
	"errors"
	"fmt"

	"github.com/l2ep/ctlsep/tlv"
)

// ErrSyntax is returned (wrapped) when the configuration blob violates the
// schema described in spec.md §4.2/§6.3: an unknown/unexpected tag at
// either nesting level, a limit field that isn't exactly 6 bytes, or a TTQ
// that isn't exactly 4 bytes.
var ErrSyntax = errors.New("config: syntax error")

// Transaction type byte values (spec.md §3).
const (
	TxnPurchase             = 0x00
	TxnCashAdvance          = 0x01
	TxnPurchaseWithCashback = 0x09
	TxnRefund               = 0x20
)

// Proprietary configuration tags (spec.md §6.3).
var (
	tagConfiguration      = []byte{0xFF, 0x81, 0xE3, 0x71}
	tagCombinationSet     = []byte{0xFF, 0x82, 0xE3, 0x71}
	tagTransactionTypes   = []byte{0xDF, 0x83, 0xE3, 0x71}
	tagCombination        = []byte{0xFF, 0x84, 0xE3, 0x71}
	tagAID                = []byte{0xDF, 0x85, 0xE3, 0x71}
	tagKernelID           = []byte{0xDF, 0x86, 0xE3, 0x71}
	tagStatusCheck        = []byte{0xDF, 0x87, 0xE3, 0x71}
	tagZeroAmountAllowed  = []byte{0xDF, 0x88, 0xE3, 0x71}
	tagExtSelection       = []byte{0xDF, 0x89, 0xE3, 0x71}
	tagReaderCTLSTxn      = []byte{0xDF, 0x8A, 0xE3, 0x71}
	tagReaderCTLSFloor    = []byte{0xDF, 0x8B, 0xE3, 0x71}
	tagTerminalFloor      = []byte{0xDF, 0x8C, 0xE3, 0x71}
	tagReaderCVMRequired  = []byte{0xDF, 0x8D, 0xE3, 0x71}
	tagTTQ                = []byte{0xDF, 0x8E, 0xE3, 0x71}
)

// Flag is a tri-state (not configured / disabled / enabled) boolean
// configuration field, matching the "presence + enabled" shape described
// for Combination config flags in spec.md §3.
type Flag struct {
	Present bool
	Enabled bool
}

// Limit is an optional 6-byte-BCD amount limit.
type Limit struct {
	Present bool
	Value   uint64
}

// Combination is one configured {AID, Kernel ID, config} triple eligible
// for selection.
type Combination struct {
	AID      []byte // <= 16 bytes
	KernelID []byte // 1 or 3 bytes

	StatusCheck       Flag
	ZeroAmountAllowed Flag
	ExtSelection      Flag

	ReaderCTLSTxnLimit     Limit
	ReaderCTLSFloorLimit   Limit
	TerminalFloorLimit     Limit
	ReaderCVMRequiredLimit Limit

	TTQ [4]byte
}

// Configuration is the fully decoded terminal configuration: the set of
// eligible Combinations per transaction type.
type Configuration struct {
	ByTxnType map[byte][]Combination
}

// Load decodes blob, a BER-TLV buffer rooted at the proprietary
// Configuration tag (0xFF81E371), into a Configuration.
func Load(blob []byte) (*Configuration, error) {
	root, err := tlv.Parse(blob)
	if err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if root == nil || !tagIs(root.Tag(), tagConfiguration) {
		return nil, fmt.Errorf("config: missing Configuration tag: %w",
			ErrSyntax)
	}

	cfg := &Configuration{ByTxnType: make(map[byte][]Combination)}

	for set := root.Child(); set != nil; set = set.Next() {
		if !tagIs(set.Tag(), tagCombinationSet) {
			return nil, fmt.Errorf("config: unexpected tag under "+
				"Configuration: %w", ErrSyntax)
		}
		if err := loadCombinationSet(cfg, set); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func loadCombinationSet(cfg *Configuration, set *tlv.Node) error {
	var txnTypes []byte
	var shared Combination
	var combos []Combination

	for child := set.Child(); child != nil; child = child.Next() {
		switch {
		case tagIs(child.Tag(), tagTransactionTypes):
			if len(child.Value()) < 1 || len(child.Value()) > 4 {
				return fmt.Errorf("config: transaction types "+
					"field must be 1-4 bytes: %w", ErrSyntax)
			}
			txnTypes = child.Value()

		case tagIs(child.Tag(), tagStatusCheck):
			f, err := boolFlag(child)
			if err != nil {
				return err
			}
			shared.StatusCheck = f

		case tagIs(child.Tag(), tagZeroAmountAllowed):
			f, err := boolFlag(child)
			if err != nil {
				return err
			}
			shared.ZeroAmountAllowed = f

		case tagIs(child.Tag(), tagExtSelection):
			f, err := boolFlag(child)
			if err != nil {
				return err
			}
			shared.ExtSelection = f

		case tagIs(child.Tag(), tagReaderCTLSTxn):
			l, err := bcdLimit(child)
			if err != nil {
				return err
			}
			shared.ReaderCTLSTxnLimit = l

		case tagIs(child.Tag(), tagReaderCTLSFloor):
			l, err := bcdLimit(child)
			if err != nil {
				return err
			}
			shared.ReaderCTLSFloorLimit = l

		case tagIs(child.Tag(), tagTerminalFloor):
			l, err := bcdLimit(child)
			if err != nil {
				return err
			}
			shared.TerminalFloorLimit = l

		case tagIs(child.Tag(), tagReaderCVMRequired):
			l, err := bcdLimit(child)
			if err != nil {
				return err
			}
			shared.ReaderCVMRequiredLimit = l

		case tagIs(child.Tag(), tagTTQ):
			if len(child.Value()) != 4 {
				return fmt.Errorf("config: TTQ must be 4 "+
					"bytes: %w", ErrSyntax)
			}
			copy(shared.TTQ[:], child.Value())

		case tagIs(child.Tag(), tagCombination):
			c, err := loadCombination(child)
			if err != nil {
				return err
			}
			combos = append(combos, c)

		default:
			return fmt.Errorf("config: unexpected tag under "+
				"Combination Set: %w", ErrSyntax)
		}
	}

	if len(txnTypes) == 0 {
		return fmt.Errorf("config: Combination Set missing "+
			"Transaction Types: %w", ErrSyntax)
	}

	for _, combo := range combos {
		merged := shared
		merged.AID = combo.AID
		merged.KernelID = combo.KernelID

		for _, txnType := range txnTypes {
			if !validTxnType(txnType) {
				return fmt.Errorf("config: unknown "+
					"transaction type 0x%02X: %w",
					txnType, ErrSyntax)
			}
			cfg.ByTxnType[txnType] = append(cfg.ByTxnType[txnType], merged)
		}
	}

	return nil
}

func loadCombination(node *tlv.Node) (Combination, error) {
	var c Combination

	for child := node.Child(); child != nil; child = child.Next() {
		switch {
		case tagIs(child.Tag(), tagAID):
			if len(child.Value()) > 16 {
				return c, fmt.Errorf("config: AID longer "+
					"than 16 bytes: %w", ErrSyntax)
			}
			c.AID = append([]byte(nil), child.Value()...)

		case tagIs(child.Tag(), tagKernelID):
			if len(child.Value()) != 1 && len(child.Value()) != 3 {
				return c, fmt.Errorf("config: Kernel ID must "+
					"be 1 or 3 bytes: %w", ErrSyntax)
			}
			c.KernelID = append([]byte(nil), child.Value()...)

		default:
			return c, fmt.Errorf("config: unexpected tag under "+
				"Combination: %w", ErrSyntax)
		}
	}

	return c, nil
}

func boolFlag(node *tlv.Node) (Flag, error) {
	if len(node.Value()) != 1 {
		return Flag{}, fmt.Errorf("config: boolean flag must be "+
			"1 byte: %w", ErrSyntax)
	}
	return Flag{Present: true, Enabled: node.Value()[0] != 0}, nil
}

func bcdLimit(node *tlv.Node) (Limit, error) {
	if len(node.Value()) != 6 {
		return Limit{}, fmt.Errorf("config: limit field must be "+
			"6 BCD bytes: %w", ErrSyntax)
	}
	value, err := tlv.BCDToU64(node.Value())
	if err != nil {
		return Limit{}, fmt.Errorf("config: invalid BCD limit: %w", err)
	}
	return Limit{Present: true, Value: value}, nil
}

// ValidTxnType reports whether b is one of the four recognized
// transaction type byte values.
func ValidTxnType(b byte) bool {
	return validTxnType(b)
}

func validTxnType(b byte) bool {
	switch b {
	case TxnPurchase, TxnCashAdvance, TxnPurchaseWithCashback, TxnRefund:
		return true
	default:
		return false
	}
}

func tagIs(tag, want []byte) bool {
	if len(tag) != len(want) {
		return false
	}
	for i := range tag {
		if tag[i] != want[i] {
			return false
		}
	}
	return true
}
