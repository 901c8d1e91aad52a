package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/luca-patrignani/microledger/identifier"
	"github.com/luca-patrignani/microledger/microledger"
)

type verifyOptions struct {
	*rootOptions
	Seed string
}

func newVerifyCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &verifyOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify <stream-file>",
		Short: "Replay and audit a signed CESR stream",
		Long: `Replay every block of a signed CESR stream into a fresh microledger and
audit linkage, authority transfer and signatures.

Example:
  microledger verify ledger.cesr --seed BDg3H7Sr-eES0XWXiO8nvMxW6mD_1LxLeE1nuiZxhGp4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Seed, "seed", "", "identifier required to sign the genesis block")

	return cmd
}

func runVerify(opts *verifyOptions, path string) error {
	stream, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	m, err := loadStream(stream, opts)
	if err != nil {
		return err
	}
	if err := m.Verify(); err != nil {
		return err
	}

	pterm.Println(chainTable(m.SignedBlocks()))
	pterm.Success.Printfln("%s: %d blocks verified", path, m.Len())
	return nil
}

func loadStream(stream []byte, opts *verifyOptions) (*microledger.Microledger, error) {
	logger := newLogger(opts.Verbose)
	if opts.Seed == "" {
		return microledger.Load(stream, microledger.WithLogger(logger))
	}
	if _, err := identifier.Parse(identifier.Identifier(opts.Seed)); err != nil {
		return nil, fmt.Errorf("--seed: %w", err)
	}
	return microledger.Load(stream,
		microledger.WithLogger(logger),
		microledger.WithSeedIdentifiers(identifier.Identifier(opts.Seed)),
	)
}
