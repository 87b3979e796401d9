// Package apdu builds short-form command APDUs and splits the responses
// the HAL returns into body bytes plus the SW1SW2 status word.
package apdu

import (
	"context"
	"fmt"

	"github.com/l2ep/ctlsep/hal"
)

// Well-known status words. SW6D00 is the documented "instruction code not
// supported" value; the original C source's header defines this constant
// as 0x6E00, which is almost certainly a typo -- we emit the documented
// value here.
const (
	SW9000 = 0x9000
	SW6D00 = 0x6D00
)

// MaxDataLength and MaxLe bound the short-form (non-extended-length) C-APDU
// body and expected-response-length fields.
const (
	MaxDataLength = 256
	MaxLe         = 256
)

// Command is a short-form command APDU: CLA INS P1 P2 [Lc data] [Le].
type Command struct {
	CLA, INS, P1, P2 byte
	Data             []byte
	Le               int // -1 means "no Le byte"
}

// Build serializes c into its wire form. It asserts len(Data) <=
// MaxDataLength and Le <= MaxLe.
func (c Command) Build() ([]byte, error) {
	if len(c.Data) > MaxDataLength {
		return nil, fmt.Errorf("apdu: command data length %d "+
			"exceeds %d", len(c.Data), MaxDataLength)
	}
	if c.Le > MaxLe {
		return nil, fmt.Errorf("apdu: Le %d exceeds %d", c.Le, MaxLe)
	}

	out := []byte{c.CLA, c.INS, c.P1, c.P2}
	if len(c.Data) > 0 {
		out = append(out, byte(len(c.Data)))
		out = append(out, c.Data...)
	}
	if c.Le >= 0 {
		out = append(out, byte(c.Le))
	}

	return out, nil
}

// SelectByName builds the "SELECT by DF/AID name" APDU (00 A4 04 00 Lc
// <name> [Le]) used both for the PPSE directory and for the chosen ADF.
func SelectByName(name []byte, le int) Command {
	return Command{
		CLA: 0x00, INS: 0xA4, P1: 0x04, P2: 0x00,
		Data: name,
		Le:   le,
	}
}

// Response is a parsed R-APDU: the response body and the two-byte status
// word.
type Response struct {
	Data   []byte
	SW1SW2 uint16
}

// Transceive builds cmd, sends it through h, and splits the result into a
// Response. The R-APDU's last two bytes are the status word; everything
// preceding them (which may be empty) is the response body.
func Transceive(ctx context.Context, h hal.HAL, cmd Command) (Response, error) {
	wire, err := cmd.Build()
	if err != nil {
		return Response{}, err
	}

	raw, err := h.Transceive(ctx, wire)
	if err != nil {
		return Response{}, err
	}
	if len(raw) < 2 {
		return Response{}, fmt.Errorf("apdu: response too short "+
			"(%d bytes): %w", len(raw), hal.ErrCardProtocol)
	}

	body := raw[:len(raw)-2]
	sw := uint16(raw[len(raw)-2])<<8 | uint16(raw[len(raw)-1])

	return Response{Data: body, SW1SW2: sw}, nil
}
