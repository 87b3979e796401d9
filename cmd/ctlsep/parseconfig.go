package main

import (
	"fmt"

	"github.com/l2ep/ctlsep/config"
	"github.com/spf13/cobra"
)

type parseConfigCommand struct {
	File string

	cmd *cobra.Command
}

func newParseConfigCommand() *cobra.Command {
	cc := &parseConfigCommand{}
	cc.cmd = &cobra.Command{
		Use:   "parseconfig",
		Short: "Load a proprietary terminal configuration blob and dump it",
		Long: `This command decodes a BER-TLV terminal configuration
blob (the Combination Sets the Entry Point consults during
Preprocessing and Combination Selection) and prints the resulting
Combinations, grouped by transaction type.`,
		Example: `ctlsep parseconfig --file config.bin`,
		RunE:    cc.Execute,
	}
	cc.cmd.Flags().StringVar(&cc.File, "file", "", "file containing the "+
		"raw configuration blob; specify '-' to read from stdin")

	return cc.cmd
}

func (c *parseConfigCommand) Execute(_ *cobra.Command, _ []string) error {
	if c.File == "" {
		return fmt.Errorf("--file must be specified")
	}

	blob, err := readInput(c.File)
	if err != nil {
		return fmt.Errorf("error reading config: %w", err)
	}

	cfg, err := config.Load(blob)
	if err != nil {
		return fmt.Errorf("error parsing config: %w", err)
	}

	for txnType, combos := range cfg.ByTxnType {
		result := fmt.Sprintf("transaction type 0x%02X: %d combination(s)",
			txnType, len(combos))
		fmt.Println(result)
		log.Tracef(result)

		for _, combo := range combos {
			line := fmt.Sprintf("  AID=%x kernelID=%x", combo.AID,
				combo.KernelID)
			fmt.Println(line)
			log.Tracef(line)
		}
	}

	return nil
}
