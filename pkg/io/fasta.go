package io

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	herrors "github.com/matzehuels/historydag/pkg/errors"
)

// Record is one FASTA entry.
type Record struct {
	Name     string
	Sequence string
}

// ReadFASTA parses FASTA records. The name is the header up to the first
// whitespace; sequence lines are concatenated and upper-cased. Every
// sequence must use IUPAC nucleotide codes and names must be unique.
func ReadFASTA(r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 64*1024*1024)

	var out []Record
	var seq strings.Builder
	seen := make(map[string]bool)
	flush := func() error {
		if len(out) == 0 {
			return nil
		}
		last := &out[len(out)-1]
		last.Sequence = strings.ToUpper(seq.String())
		seq.Reset()
		if err := herrors.ValidateSequence(last.Sequence); err != nil {
			return fmt.Errorf("fasta record %q: %w", last.Name, err)
		}
		return nil
	}

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		switch {
		case text == "" || strings.HasPrefix(text, ";"):
			continue
		case strings.HasPrefix(text, ">"):
			if err := flush(); err != nil {
				return nil, err
			}
			fields := strings.Fields(text[1:])
			if len(fields) == 0 {
				return nil, herrors.New(herrors.ErrCodeInvalidFormat, "fasta line %d: empty header", line)
			}
			if seen[fields[0]] {
				return nil, herrors.New(herrors.ErrCodeInvalidFormat, "fasta line %d: duplicate record %q", line, fields[0])
			}
			seen[fields[0]] = true
			out = append(out, Record{Name: fields[0]})
		default:
			if len(out) == 0 {
				return nil, herrors.New(herrors.ErrCodeInvalidFormat, "fasta line %d: sequence before first header", line)
			}
			seq.WriteString(text)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}

// ImportFASTA reads a FASTA file and returns its sequences keyed by name.
func ImportFASTA(path string) (map[string]string, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	recs, err := ReadFASTA(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return Sequences(recs), nil
}

// Sequences indexes records by name.
func Sequences(recs []Record) map[string]string {
	out := make(map[string]string, len(recs))
	for _, r := range recs {
		out[r.Name] = r.Sequence
	}
	return out
}

// WriteFASTA writes records with sequences wrapped at 60 columns.
func WriteFASTA(recs []Record, w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, r := range recs {
		fmt.Fprintf(bw, ">%s\n", r.Name)
		for s := r.Sequence; len(s) > 0; {
			n := min(60, len(s))
			bw.WriteString(s[:n])
			bw.WriteByte('\n')
			s = s[n:]
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}
