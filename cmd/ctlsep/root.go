package main

import (
	"fmt"
	"os"

	"github.com/btcsuite/btclog"
	"github.com/lightningnetwork/lnd/build"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	logWriter = build.NewRotatingLogWriter()
	log       = build.NewSubLogger("CTLS", genSubLogger(logWriter))

	debugLevel string
)

var rootCmd = &cobra.Command{
	Use:   "ctlsep",
	Short: "ctlsep drives and inspects an EMV Contactless Level-2 Entry Point",
	Long: `This tool exercises the EMV Contactless Level-2 Entry Point
control plane outside of a real terminal: it can parse BER-TLV blobs,
load proprietary terminal configuration, and drive the six-state Entry
Point state machine against a scripted HAL and kernel.`,
	Version: "v" + version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
	DisableAutoGenTag: true,
}

func main() {
	rootCmd.PersistentFlags().StringVar(
		&debugLevel, "debuglevel", "info", "logging level for all "+
			"subsystems (trace, debug, info, warn, error, critical)",
	)

	rootCmd.AddCommand(
		newDocCommand(),
		newParseTLVCommand(),
		newParseConfigCommand(),
		newDOLCommand(),
		newActivateCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging() {
	setSubLogger("CTLS", log)
	err := logWriter.InitLogRotator("./results/ctlsep.log", 10, 3)
	if err != nil {
		panic(err)
	}
	err = build.ParseAndSetDebugLevels(debugLevel, logWriter)
	if err != nil {
		panic(err)
	}
}

// genSubLogger creates a sub logger with an empty shutdown function.
func genSubLogger(logWriter *build.RotatingLogWriter) func(string) btclog.Logger {
	return func(s string) btclog.Logger {
		return logWriter.GenSubLogger(s, func() {})
	}
}

// setSubLogger is a helper method to conveniently register the logger of a
// sub system.
func setSubLogger(subsystem string, logger btclog.Logger,
	useLoggers ...func(btclog.Logger)) {

	logWriter.RegisterSubLogger(subsystem, logger)
	for _, useLogger := range useLoggers {
		useLogger(logger)
	}
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return os.ReadFile("/dev/stdin")
	}
	return os.ReadFile(path)
}
