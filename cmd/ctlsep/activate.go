package main

import (
	"context"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/l2ep/ctlsep/config"
	"github.com/l2ep/ctlsep/entrypoint"
	"github.com/l2ep/ctlsep/internal/simulate"
	"github.com/l2ep/ctlsep/kernel"
	"github.com/l2ep/ctlsep/tlv"
	"github.com/spf13/cobra"
)

type activateCommand struct {
	ConfigFile string
	ScriptFile string

	TxnType  uint8
	Amount   uint64
	Currency uint16

	cmd *cobra.Command
}

func newActivateCommand() *cobra.Command {
	cc := &activateCommand{}
	cc.cmd = &cobra.Command{
		Use:   "activate",
		Short: "Drive a simulated transaction through the Entry Point",
		Long: `This command loads a terminal configuration and a
scripted HAL scenario, registers a stand-in approving kernel for every
configured Kernel ID, and runs the Entry Point state machine from
Start A through to Done, printing the resulting Outcome.`,
		Example: `ctlsep activate --config config.bin --script scenario.yaml ` +
			`--amount 2500`,
		RunE: cc.Execute,
	}
	cc.cmd.Flags().StringVar(&cc.ConfigFile, "config", "", "file "+
		"containing the raw terminal configuration blob")
	cc.cmd.Flags().StringVar(&cc.ScriptFile, "script", "", "YAML "+
		"scenario file scripting the HAL's responses")
	cc.cmd.Flags().Uint8Var(&cc.TxnType, "txntype", config.TxnPurchase,
		"transaction type byte")
	cc.cmd.Flags().Uint64Var(&cc.Amount, "amount", 0, "authorized amount, "+
		"in the currency's minor units")
	cc.cmd.Flags().Uint16Var(&cc.Currency, "currency", 840, "ISO 4217 "+
		"numeric currency code")

	return cc.cmd
}

func (c *activateCommand) Execute(_ *cobra.Command, _ []string) error {
	if c.ConfigFile == "" || c.ScriptFile == "" {
		return fmt.Errorf("--config and --script must both be specified")
	}

	blob, err := readInput(c.ConfigFile)
	if err != nil {
		return fmt.Errorf("error reading config: %w", err)
	}
	cfg, err := config.Load(blob)
	if err != nil {
		return fmt.Errorf("error parsing config: %w", err)
	}

	script, err := simulate.LoadScript(c.ScriptFile)
	if err != nil {
		return err
	}

	registry := kernel.NewRegistry()
	for _, combos := range cfg.ByTxnType {
		for _, combo := range combos {
			registry.Register(combo.KernelID, simulate.NewApprovingKernel(log))
		}
	}

	h := simulate.NewHAL(script, log)
	ep := entrypoint.New(cfg, entrypoint.TerminalData{}, registry,
		tlv.NewFormatRegistry(), h, log)

	outcome, err := ep.Activate(context.Background(), entrypoint.TransactionParameters{
		StartPoint:       kernel.StartA,
		TxnType:          c.TxnType,
		AmountAuthorized: c.Amount,
		Currency:         [2]byte{byte(c.Currency >> 8), byte(c.Currency)},
	})
	if err != nil {
		return fmt.Errorf("error activating: %w", err)
	}

	dump := spew.Sdump(outcome)
	fmt.Print(dump)
	log.Tracef(dump)

	return nil
}
