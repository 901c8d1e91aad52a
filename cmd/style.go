package main

import (
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/luca-patrignani/microledger/block"
)

func blockPanel(s block.Signed) string {
	pbox := pterm.DefaultBox.WithLeftPadding(4).WithRightPadding(4).WithTopPadding(1).WithBottomPadding(1)
	b := s.Block
	previous := pterm.LightRed("genesis")
	if !b.IsGenesis() {
		previous = b.Previous.String()
	}
	info := pterm.Sprintfln("Events: %s", strings.Join(b.Events, ", "))
	info += pterm.Sprintfln("Previous: %s", previous)
	info += pterm.Sprintfln("Next authority: %s", describeAuthority(b.Authority))
	for _, sig := range s.Signatures {
		info += pterm.Sprintfln("Signed by %s", pterm.LightCyan(sig.Signer))
	}
	title := pterm.LightYellow("|BLOCK " + strconv.FormatUint(b.Sequence, 10) + "|")
	return pbox.WithTitle(title).WithTitleTopCenter().Sprint(info)
}

func describeAuthority(a block.Authority) string {
	ids := make([]string, len(a.Identifiers))
	for i, id := range a.Identifiers {
		ids[i] = string(id)
	}
	switch a.Policy {
	case block.PolicyThreshold:
		return pterm.Sprintf("%d of [%s]", a.Threshold, strings.Join(ids, ", "))
	case block.PolicyAll:
		return pterm.Sprintf("all of [%s]", strings.Join(ids, ", "))
	default:
		return strings.Join(ids, ", ")
	}
}

func chainTable(blocks []block.Signed) string {
	data := pterm.TableData{{"Seq", "Events", "Signers", "Next authority"}}
	for _, s := range blocks {
		signers := make([]string, len(s.Signatures))
		for i, sig := range s.Signatures {
			signers[i] = string(sig.Signer)
		}
		data = append(data, []string{
			strconv.FormatUint(s.Block.Sequence, 10),
			strconv.Itoa(len(s.Block.Events)),
			strings.Join(signers, "\n"),
			describeAuthority(s.Block.Authority),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err.Error()
	}
	return table
}
