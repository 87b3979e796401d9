package tlv

import (
	"errors"
	"fmt"
	"math"
)

// ErrValueOutOfRange is returned (wrapped) by BCDToU64/U64ToBCD when the
// value cannot be represented in the requested width.
var ErrValueOutOfRange = errors.New("tlv: value out of range")

// BCDToU64 decodes a big-endian, high-nibble-first binary-coded-decimal
// buffer into a uint64, rejecting any nibble greater than 9 and rejecting
// overflow past math.MaxUint64.
func BCDToU64(buf []byte) (uint64, error) {
	var value uint64
	for _, b := range buf {
		for shift := uint(4); ; shift -= 4 {
			digit := uint64((b >> shift) & 0xF)
			if digit > 9 {
				return 0, fmt.Errorf("tlv: bcd digit %d out "+
					"of range: %w", digit, ErrInvalidArg)
			}
			if value > (math.MaxUint64-digit)/10 {
				return 0, fmt.Errorf("tlv: bcd value "+
					"overflow: %w", ErrValueOutOfRange)
			}
			value = value*10 + digit

			if shift == 0 {
				break
			}
		}
	}
	return value, nil
}

// U64ToBCD encodes value as a right-justified, high-nibble-first BCD buffer
// of exactly length bytes, failing if value does not fit.
func U64ToBCD(value uint64, length int) ([]byte, error) {
	out := make([]byte, length)
	for i := length - 1; i >= 0; i-- {
		lo := byte(value % 10)
		value /= 10
		hi := byte(value % 10)
		value /= 10
		out[i] = hi<<4 | lo
	}
	if value != 0 {
		return nil, fmt.Errorf("tlv: value does not fit in %d BCD "+
			"bytes: %w", length, ErrValueOutOfRange)
	}
	return out, nil
}
