package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/luca-patrignani/helix/domain/digest"
	"github.com/luca-patrignani/helix/domain/fingerprint"
	"github.com/luca-patrignani/helix/domain/sequence"
	"github.com/luca-patrignani/helix/index"
	"github.com/luca-patrignani/helix/ledger"
)

var errNotFound = errors.New("no matching record")

func addCmd(h *helix) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "submit and commit DNA sequences",
		ArgsUsage: "SEQUENCE...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "token",
				Aliases:  []string{"t"},
				Usage:    "submitter identity token; only its digest is stored",
				Required: true,
			},
			&cli.PathFlag{
				Name:  "fasta",
				Usage: "read sequences from a FASTA file instead of the arguments",
			},
		},
		Action: withHelix(h, func(h *helix, cctx *cli.Context) error {
			seqs := cctx.Args().Slice()
			if cctx.IsSet("fasta") {
				entries, err := readFASTA(cctx.Path("fasta"))
				if err != nil {
					return err
				}
				seqs = seqs[:0]
				for _, e := range entries {
					seqs = append(seqs, string(e.Sequence))
				}
			}
			if len(seqs) == 0 {
				return errors.New("no sequences given")
			}

			token := cctx.String("token")
			rejected := 0
			for i, raw := range seqs {
				rec, err := h.submit(raw, token)
				if err != nil {
					rejected++
					fmt.Fprint(h.out, pterm.Warning.Sprintfln("sequence %d: %v", i+1, err))
					continue
				}
				fmt.Fprint(h.out, pterm.Success.Sprintfln("sequence %d committed at index %d (%s)", i+1, rec.Index, rec.ContentDigest.Short()))
			}
			if rejected > 0 {
				return fmt.Errorf("%d of %d sequences rejected", rejected, len(seqs))
			}
			return nil
		}),
	}
}

func readFASTA(path string) ([]sequence.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return sequence.ReadFASTA(f)
}

func verifyCmd(h *helix) *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "validate every link of the stored chain",
		Action: withHelix(h, func(h *helix, cctx *cli.Context) error {
			if err := h.ledger.ValidateChain(); err != nil {
				return err
			}
			head, ok := h.ledger.Head()
			if !ok {
				fmt.Fprint(h.out, pterm.Info.Sprintfln("chain is empty"))
				return nil
			}
			fmt.Fprint(h.out, pterm.Success.Sprintfln("chain of %d records is valid, head %s", h.ledger.Len(), head.ContentDigest.Short()))
			return nil
		}),
	}
}

func findCmd(h *helix) *cli.Command {
	return &cli.Command{
		Name:  "find",
		Usage: "look up records by sequence, content digest or identity",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "sequence", Aliases: []string{"s"}, Usage: "raw DNA sequence"},
			&cli.StringFlag{Name: "digest", Aliases: []string{"d"}, Usage: "content digest in hex"},
			&cli.StringFlag{Name: "identity", Aliases: []string{"i"}, Usage: "submitter identity token"},
		},
		Action: withHelix(h, func(h *helix, cctx *cli.Context) error {
			var (
				records []ledger.Record
				err     error
			)
			switch {
			case cctx.IsSet("sequence"):
				records, err = h.findBySequence(cctx.String("sequence"))
			case cctx.IsSet("digest"):
				records, err = h.findByDigest(cctx.String("digest"))
			case cctx.IsSet("identity"):
				records = h.ledger.FindByIdentity(cctx.String("identity"))
			default:
				return errors.New("one of --sequence, --digest or --identity is required")
			}
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return errNotFound
			}
			return renderRecords(h.out, records)
		}),
	}
}

func (h *helix) findBySequence(raw string) ([]ledger.Record, error) {
	rec, ok, err := h.ledger.FindBySequence(raw)
	if err != nil || !ok {
		return nil, err
	}
	return []ledger.Record{rec}, nil
}

func (h *helix) findByDigest(hex string) ([]ledger.Record, error) {
	d, err := digest.Parse(hex)
	if err != nil {
		return nil, err
	}
	rec, ok := h.ledger.FindByContentDigest(d)
	if !ok {
		return nil, nil
	}
	return []ledger.Record{rec}, nil
}

func similarCmd(h *helix) *cli.Command {
	return &cli.Command{
		Name:  "similar",
		Usage: "list records whose fingerprint is close to a sequence",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "sequence", Aliases: []string{"s"}, Usage: "raw DNA sequence", Required: true},
			&cli.IntFlag{Name: "threshold", Usage: "maximum distance in bits, overrides similarity_threshold"},
			&cli.IntFlag{Name: "nearest", Usage: "list the N closest records regardless of threshold"},
		},
		Action: withHelix(h, func(h *helix, cctx *cli.Context) error {
			seq, err := sequence.Validate(cctx.String("sequence"))
			if err != nil {
				return err
			}
			fp, err := fingerprint.Of(seq)
			if err != nil {
				return err
			}

			var matches []index.Match
			if cctx.IsSet("nearest") {
				matches = h.ledger.Nearest(fp, cctx.Int("nearest"))
			} else {
				threshold := h.config.SimilarityThreshold
				if cctx.IsSet("threshold") {
					threshold = cctx.Int("threshold")
				}
				if matches, err = h.ledger.Similar(fp, threshold); err != nil {
					return err
				}
			}
			fmt.Fprint(h.out, pterm.Info.Sprintfln("fingerprint %s, %d matches", fp, len(matches)))
			return renderMatches(h.out, h.ledger, matches)
		}),
	}
}

func chainCmd(h *helix) *cli.Command {
	return &cli.Command{
		Name:  "chain",
		Usage: "display or export the committed chain",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print the chain as a JSON array"},
		},
		Action: withHelix(h, func(h *helix, cctx *cli.Context) error {
			chain := h.ledger.Chain()
			if cctx.Bool("json") {
				enc := json.NewEncoder(h.out)
				enc.SetIndent("", "  ")
				return enc.Encode(chain)
			}
			if len(chain) == 0 {
				fmt.Fprint(h.out, pterm.Info.Sprintfln("chain is empty"))
				return nil
			}
			return renderRecords(h.out, chain)
		}),
	}
}
