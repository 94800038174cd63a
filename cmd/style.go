package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pterm/pterm"

	"github.com/luca-patrignani/helix/index"
	"github.com/luca-patrignani/helix/ledger"
)

func recordRow(r ledger.Record) []string {
	return []string{
		strconv.Itoa(r.Index),
		r.PrevDigest.Short(),
		r.IdentityDigest.Short(),
		r.ContentDigest.Short(),
		r.Fingerprint.String(),
	}
}

func renderRecords(w io.Writer, records []ledger.Record) error {
	data := pterm.TableData{{"Index", "Prev", "Identity", "Content", "Fingerprint"}}
	for _, r := range records {
		data = append(data, recordRow(r))
	}
	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, s)
	return err
}

func renderMatches(w io.Writer, l *ledger.Ledger, matches []index.Match) error {
	if len(matches) == 0 {
		return nil
	}
	data := pterm.TableData{{"Index", "Distance", "Content", "Fingerprint"}}
	for _, m := range matches {
		r, err := l.GetByIndex(m.Index)
		if err != nil {
			return err
		}
		data = append(data, []string{
			strconv.Itoa(m.Index),
			strconv.Itoa(m.Distance),
			r.ContentDigest.Short(),
			r.Fingerprint.String(),
		})
	}
	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, s)
	return err
}

// recordPanel renders a single committed record as the box shown after a
// commit in the shell.
func recordPanel(r ledger.Record) string {
	pbox := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)
	body := pterm.Sprintfln("Prev:        %s", r.PrevDigest) +
		pterm.Sprintfln("Identity:    %s", r.IdentityDigest) +
		pterm.Sprintfln("Content:     %s", pterm.LightCyan(r.ContentDigest.String())) +
		pterm.Sprintf("Fingerprint: %s", r.Fingerprint)
	title := pterm.LightGreen(fmt.Sprintf("|RECORD %d|", r.Index))
	return pbox.WithTitle(title).WithTitleTopCenter().Sprint(body)
}

func statusPanel(l *ledger.Ledger) string {
	pbox := pterm.DefaultBox.WithHorizontalPadding(4)
	head := "genesis"
	if r, ok := l.Head(); ok {
		head = r.ContentDigest.Short()
	}
	return pbox.WithTitle(pterm.LightYellow("|LEDGER|")).WithTitleTopLeft().Sprintf("Records: %d\nPending: %d\nHead:    %s", l.Len(), l.Pending(), head)
}
