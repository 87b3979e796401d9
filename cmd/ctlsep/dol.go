package main

import (
	"encoding/hex"
	"fmt"

	"github.com/l2ep/ctlsep/tlv"
	"github.com/spf13/cobra"
)

type dolCommand struct {
	TLV string
	DOL string
	DEL string

	cmd *cobra.Command
}

func newDOLCommand() *cobra.Command {
	cc := &dolCommand{}
	cc.cmd = &cobra.Command{
		Use:   "dol",
		Short: "Convert between a Data Object List and a Data Element List",
		Long: `This command demonstrates the two DOL/DEL conversions the
Entry Point and kernels rely on to build GET PROCESSING OPTIONS-style
command data and to split tag-along response data back into named
fields.

Given --tlv and --dol, it builds the DEL a kernel would send for that
DOL against the supplied TLV tag values. Given --dol and --del, it
does the reverse: splitting del's bytes back into one TLV field per
DOL entry.`,
		Example: `ctlsep dol --tlv 9f6604c0a0a0a0 --dol 9f6601

ctlsep dol --dol 9f6601 --del c0`,
		RunE: cc.Execute,
	}
	cc.cmd.Flags().StringVar(&cc.TLV, "tlv", "", "hex encoded TLV buffer "+
		"to pull DOL field values from")
	cc.cmd.Flags().StringVar(&cc.DOL, "dol", "", "hex encoded Data "+
		"Object List")
	cc.cmd.Flags().StringVar(&cc.DEL, "del", "", "hex encoded Data "+
		"Element List, for the reverse (DEL -> TLV) conversion")

	return cc.cmd
}

func (c *dolCommand) Execute(_ *cobra.Command, _ []string) error {
	if c.DOL == "" {
		return fmt.Errorf("--dol must be specified")
	}
	dol, err := hex.DecodeString(c.DOL)
	if err != nil {
		return fmt.Errorf("error decoding --dol: %w", err)
	}

	switch {
	case c.DEL != "":
		del, err := hex.DecodeString(c.DEL)
		if err != nil {
			return fmt.Errorf("error decoding --del: %w", err)
		}

		fields, err := tlv.DOLAndDELToTLV(dol, del)
		if err != nil {
			return fmt.Errorf("error splitting DEL: %w", err)
		}

		result := dumpTree(fields)
		fmt.Print(result)
		log.Tracef(result)

		return nil

	case c.TLV != "":
		blob, err := hex.DecodeString(c.TLV)
		if err != nil {
			return fmt.Errorf("error decoding --tlv: %w", err)
		}

		root, err := tlv.Parse(blob)
		if err != nil {
			return fmt.Errorf("error parsing --tlv: %w", err)
		}

		del, err := tlv.TLVAndDOLToDEL(root, dol, tlv.NewFormatRegistry())
		if err != nil {
			return fmt.Errorf("error building DEL: %w", err)
		}

		result := hex.EncodeToString(del)
		fmt.Println(result)
		log.Tracef(result)

		return nil

	default:
		return fmt.Errorf("one of --tlv or --del must be specified " +
			"alongside --dol")
	}
}
