package main

import (
	"encoding/hex"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/l2ep/ctlsep/tlv"
	"github.com/spf13/cobra"
)

type parseTLVCommand struct {
	File string
	Hex  string

	cmd *cobra.Command
}

func newParseTLVCommand() *cobra.Command {
	cc := &parseTLVCommand{}
	cc.cmd = &cobra.Command{
		Use:   "parsetlv",
		Short: "Parse a BER-TLV blob and dump its tree",
		Long: `This command parses a BER-TLV encoded buffer -- a card
response, a PPSE directory, a configuration blob -- and prints the
resulting tree of tags, lengths and values.`,
		Example: `ctlsep parsetlv --file response.bin

ctlsep parsetlv --hex 6f10840e325041592e5359532e4444463031`,
		RunE: cc.Execute,
	}
	cc.cmd.Flags().StringVar(&cc.File, "file", "", "file containing the "+
		"raw TLV bytes to parse; specify '-' to read from stdin")
	cc.cmd.Flags().StringVar(&cc.Hex, "hex", "", "hex encoded TLV bytes "+
		"to parse, as an alternative to --file")

	return cc.cmd
}

func (c *parseTLVCommand) Execute(_ *cobra.Command, _ []string) error {
	blob, err := c.readBlob()
	if err != nil {
		return err
	}

	root, err := tlv.Parse(blob)
	if err != nil {
		return fmt.Errorf("error parsing TLV: %w", err)
	}

	tree := dumpTree(root)
	fmt.Print(tree)
	log.Tracef(tree)

	log.Tracef(spew.Sdump(root))

	return nil
}

func (c *parseTLVCommand) readBlob() ([]byte, error) {
	switch {
	case c.Hex != "":
		return hex.DecodeString(c.Hex)

	case c.File != "":
		return readInput(c.File)

	default:
		return nil, fmt.Errorf("one of --file or --hex must be specified")
	}
}

// dumpTree renders a BER-TLV tree as indented "tag: value" lines, one per
// node, in document order.
func dumpTree(root *tlv.Node) string {
	var out string
	var walk func(n *tlv.Node, depth int)
	walk = func(n *tlv.Node, depth int) {
		for cur := n; cur != nil; cur = cur.Next() {
			indent := ""
			for i := 0; i < depth; i++ {
				indent += "  "
			}
			if cur.IsConstructed() {
				out += fmt.Sprintf("%s%x:\n", indent, cur.Tag())
				walk(cur.Child(), depth+1)
			} else {
				out += fmt.Sprintf("%s%x: %x\n", indent, cur.Tag(),
					cur.Value())
			}
		}
	}
	walk(root, 0)
	return out
}
