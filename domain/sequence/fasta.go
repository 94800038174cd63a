package sequence

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Entry is one FASTA record: the definition line without '>' and its
// validated sequence.
type Entry struct {
	Definition string
	Sequence   Sequence
}

// ReadFASTA parses every record in r. Sequence lines are concatenated until
// the next '>' header; blank lines and ';' comments are skipped. Sequence
// lines before any header form a single record with an empty definition.
func ReadFASTA(r io.Reader) ([]Entry, error) {
	br := bufio.NewReader(r)
	var (
		entries []Entry
		def     string
		buf     []byte
		open    bool
	)

	flush := func() error {
		if !open {
			return nil
		}
		seq, err := Validate(string(buf))
		if err != nil {
			return fmt.Errorf("fasta record %d (%q): %w", len(entries)+1, def, err)
		}
		entries = append(entries, Entry{Definition: def, Sequence: seq})
		buf = buf[:0]
		open = false
		return nil
	}

	for {
		line, err := br.ReadBytes('\n')
		eof := err == io.EOF
		if err != nil && !eof {
			return nil, fmt.Errorf("reading fasta: %w", err)
		}
		line = bytes.TrimSpace(line)
		switch {
		case len(line) == 0, line[0] == ';':
		case line[0] == '>':
			if err := flush(); err != nil {
				return nil, err
			}
			def = strings.TrimSpace(string(line[1:]))
			open = true
		default:
			buf = append(buf, line...)
			open = true
		}
		if eof {
			break
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return entries, nil
}
