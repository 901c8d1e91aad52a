package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
	"github.com/spf13/cobra"

	"github.com/luca-patrignani/microledger/block"
)

type rootOptions struct {
	Verbose bool
	Digest  string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "microledger",
		Short: "Self-certifying microledger walkthrough",
		Long: `Build and audit microledgers: append-only chains of signed blocks
where every block names the identifiers allowed to sign the next one.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := parseDigest(opts.Digest)
			return err
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Digest, "digest", "blake3", "digest algorithm linking blocks (blake3|sha2-256)")

	cmd.AddCommand(newDemoCommand(opts))
	cmd.AddCommand(newVerifyCommand(opts))

	return cmd
}

// newLogger creates a slog logger backed by the PTerm logger.
func newLogger(verbose bool) *slog.Logger {
	level := pterm.LogLevelWarn
	if verbose {
		level = pterm.LogLevelDebug
	}
	handler := pterm.NewSlogHandler(pterm.DefaultLogger.WithLevel(level))
	return slog.New(handler)
}

func parseDigest(name string) (block.Algorithm, error) {
	switch name {
	case "blake3":
		return block.Blake3_256, nil
	case "sha2-256":
		return block.SHA2_256, nil
	default:
		return "", fmt.Errorf("unknown digest %q: must be blake3 or sha2-256", name)
	}
}

func banner() {
	_ = pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("Micro", pterm.FgRed.ToStyle()),
		putils.LettersFromStringWithStyle("ledger", pterm.FgDarkGray.ToStyle()),
	).Render()
}
