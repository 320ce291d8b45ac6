package io

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"

	herrors "github.com/matzehuels/historydag/pkg/errors"
	"github.com/matzehuels/historydag/pkg/hdag"
)

// WriteJSON encodes the canonical form of d in the exchange format and
// writes it to w. The output is marked sorted and can be re-imported with
// [ReadJSON].
func WriteJSON(d *hdag.DAG, w io.Writer) error {
	return EncodeForm(d.Canonicalize(), w)
}

// ReadJSON decodes an exchange-format document from r into a validated DAG.
//
// ReadJSON returns a MALFORMED_EXCHANGE_FORM error if the JSON is invalid,
// an index is out of range, a compact genome disagrees with the reference,
// labels of a form marked sorted are out of order, or the decoded DAG
// violates a structural invariant. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*hdag.DAG, error) {
	f, err := DecodeForm(r)
	if err != nil {
		return nil, err
	}
	return hdag.FromForm(f)
}

// ExportJSON writes d to a file at path.
func ExportJSON(d *hdag.DAG, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return herrors.Wrap(herrors.ErrCodeInternal, err, "create %s", path)
	}
	return writeAndClose(f, path, func(w io.Writer) error { return WriteJSON(d, w) })
}

// writeAndClose runs write against f and closes it. A close failure is
// reported when the write itself succeeded, so a lost flush is not silent.
func writeAndClose(f io.WriteCloser, path string, write func(io.Writer) error) error {
	err := write(f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = herrors.Wrap(herrors.ErrCodeInternal, cerr, "close %s", path)
	}
	return err
}

// ImportJSON reads an exchange-format file at path.
func ImportJSON(path string) (*hdag.DAG, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	d, err := ReadJSON(f)
	if err != nil {
		return nil, herrors.Wrap(herrors.GetCode(err), err, "%s", path)
	}
	return d, nil
}

// MarshalDAG returns the exchange-format encoding of d.
func MarshalDAG(d *hdag.DAG) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(d, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalDAG decodes an exchange-format document held in memory.
func UnmarshalDAG(b []byte) (*hdag.DAG, error) {
	return ReadJSON(bytes.NewReader(b))
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, herrors.Wrap(herrors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, herrors.Wrap(herrors.ErrCodeInternal, err, "open %s", path)
	}
	return f, nil
}
