package main

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/text/unicode/norm"

	"github.com/luca-patrignani/microledger/block"
	"github.com/luca-patrignani/microledger/identifier"
	"github.com/luca-patrignani/microledger/microledger"
)

type demoOptions struct {
	*rootOptions
	Blocks int
	Events []string
	Out    string
	Quiet  bool
}

type controller struct {
	id   identifier.Identifier
	priv ed25519.PrivateKey
}

func newController() (controller, error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return controller{}, err
	}
	id, err := identifier.Derive(pub)
	if err != nil {
		return controller{}, err
	}
	return controller{id: id, priv: priv}, nil
}

func (c controller) sign(unsigned []byte) []block.Signature {
	return []block.Signature{{Signer: c.id, Bytes: ed25519.Sign(c.priv, unsigned)}}
}

func newDemoCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &demoOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Anchor a chain of blocks, rotating the controlling key at every step",
		Long: `Generate fresh Ed25519 key pairs, anchor a chain where each block hands
control to the next key, show that an unrelated key is rejected, and audit
the result.

Event text given with --event is normalized to Unicode NFC, so the same
words typed on different terminals record the same payload. Block i records
the i-th event, cycling through the list.

Example:
  microledger demo --blocks 3 --event "key created" --out ledger.cesr`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(opts)
		},
	}

	cmd.Flags().IntVar(&opts.Blocks, "blocks", 2, "number of blocks to anchor")
	cmd.Flags().StringArrayVar(&opts.Events, "event", nil, "event recorded in the blocks (repeatable)")
	cmd.Flags().StringVar(&opts.Out, "out", "", "write the signed CESR stream to this file")
	cmd.Flags().BoolVar(&opts.Quiet, "quiet", false, "do not print the banner")

	return cmd
}

func runDemo(opts *demoOptions) error {
	if opts.Blocks < 1 {
		return fmt.Errorf("--blocks must be at least 1, got %d", opts.Blocks)
	}
	alg, err := parseDigest(opts.Digest)
	if err != nil {
		return err
	}
	if !opts.Quiet {
		banner()
	}

	controllers := make([]controller, opts.Blocks+1)
	for i := range controllers {
		if controllers[i], err = newController(); err != nil {
			return err
		}
	}
	pterm.Info.Printfln("Seed identifier: %s", controllers[0].id)

	m, err := microledger.New(
		microledger.WithSeedIdentifiers(controllers[0].id),
		microledger.WithDigestAlgorithm(alg),
		microledger.WithLogger(newLogger(opts.Verbose)),
	)
	if err != nil {
		return err
	}

	for i := 0; i < opts.Blocks; i++ {
		current, next := controllers[i], controllers[i+1]
		unsigned, err := m.PreAnchorBlock([]string{demoEvent(opts.Events, i)}, block.Single(next.id))
		if err != nil {
			return err
		}
		encoded, err := m.AnchorBlock(unsigned, current.sign(unsigned))
		if err != nil {
			return fmt.Errorf("anchoring block %d: %w", i, err)
		}
		signed, err := block.ParseSigned(encoded)
		if err != nil {
			return err
		}
		pterm.Println(blockPanel(signed))
	}

	intruder, err := newController()
	if err != nil {
		return err
	}
	unsigned, err := m.PreAnchorBlock([]string{"is it correct?"}, block.Single(intruder.id))
	if err != nil {
		return err
	}
	_, err = m.AnchorBlock(unsigned, intruder.sign(unsigned))
	if !errors.Is(err, microledger.ErrUnauthorizedSigner) {
		return fmt.Errorf("expected the intruder to be rejected, got %v", err)
	}
	pterm.Warning.Printfln("Block signed by %s rejected: %v", intruder.id, err)

	if err := m.Verify(); err != nil {
		return err
	}
	pterm.Success.Printfln("Chain of %d blocks verified", m.Len())

	if opts.Out != "" {
		if err := os.WriteFile(opts.Out, m.Stream(), 0o644); err != nil {
			return err
		}
		pterm.Info.Printfln("Stream written to %s", opts.Out)
	}
	return nil
}

func demoEvent(events []string, i int) string {
	if len(events) == 0 {
		return fmt.Sprintf("event %d", i)
	}
	return norm.NFC.String(events[i%len(events)])
}
