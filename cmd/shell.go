package main

import (
	"errors"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
	"github.com/urfave/cli/v2"

	"github.com/luca-patrignani/helix/ledger"
)

func shellCmd(h *helix) *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "interactive upload and mine loop",
		Action: withHelix(h, func(h *helix, cctx *cli.Context) error {
			return h.shell()
		}),
	}
}

func banner() {
	pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("H", pterm.FgGreen.ToStyle()),
		putils.LettersFromStringWithStyle("elix", pterm.FgDarkGray.ToStyle()),
	).Render()
}

func ask(question string) bool {
	ok, _ := pterm.DefaultInteractiveConfirm.WithDefaultText(question).WithDefaultValue(false).Show()
	return ok
}

// shell keeps asking whether to upload, mine or exit until the user exits.
// Failures are shown and the loop goes on.
func (h *helix) shell() error {
	banner()
	fmt.Fprintln(h.out, statusPanel(h.ledger))

	for {
		for ask("Would you like to upload DNA?") {
			dna, _ := pterm.DefaultInteractiveTextInput.WithDefaultText("Please enter the DNA seq").Show()
			uid, _ := pterm.DefaultInteractiveTextInput.WithDefaultText("Please enter your UID").WithMask("*").Show()
			pterm.Println()
			h.upload(dna, uid)
		}

		for ask("Would you like to mine a block?") {
			h.mine()
		}

		if ask("Would you like to exit?") {
			break
		}
		fmt.Fprintln(h.out, statusPanel(h.ledger))
	}
	if n := h.ledger.DropPending(); n > 0 {
		fmt.Fprint(h.out, pterm.Warning.Sprintfln("%d pending submissions discarded", n))
	}
	return nil
}

// upload queues a submission and reports the outcome.
func (h *helix) upload(dna, uid string) bool {
	sub, err := h.ledger.Submit(dna, uid)
	if err != nil {
		fmt.Fprint(h.out, pterm.Error.Sprintfln("You entered an invalid DNA: %v", err))
		return false
	}
	fmt.Fprint(h.out, pterm.Info.Sprintfln("Submission %s queued, %d pending", sub.ContentDigest.Short(), h.ledger.Pending()))
	return true
}

// mine commits the oldest pending submission and persists it.
func (h *helix) mine() bool {
	rec, err := h.ledger.Commit()
	switch {
	case errors.Is(err, ledger.ErrNoPendingSubmissions):
		fmt.Fprint(h.out, pterm.Info.Sprintfln("Currently there are no pending transactions available to mine."))
		return false
	case errors.Is(err, ledger.ErrDuplicateContent):
		fmt.Fprint(h.out, pterm.Warning.Sprintfln("You are trying to upload DNA which already exists on the blockchain"))
		return false
	case err != nil:
		fmt.Fprint(h.out, pterm.Error.Sprintfln("Mining failed: %v", err))
		return false
	}
	if err := h.persist(); err != nil {
		fmt.Fprint(h.out, pterm.Error.Sprintfln("%v", err))
		return false
	}
	fmt.Fprint(h.out, pterm.Success.Sprintfln("Block has been mined successfully"))
	fmt.Fprintln(h.out, recordPanel(rec))
	return true
}
