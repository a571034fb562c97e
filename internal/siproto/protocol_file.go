package siproto

import (
	"io"

	"github.com/sandia-minimega/smartinspect-go/v2/pkg/siformat"
	"github.com/sandia-minimega/smartinspect-go/v2/pkg/sioptions"
)

// binaryFileVariant is the plain File protocol: SILF signature header,
// no footer, binary wire format (spec.md §4.7, §6 "file layouts").
type binaryFileVariant struct {
	formatter_ *siformat.BinaryFormatter
}

var fileSignature = []byte{'S', 'I', 'L', 'F', 1, 0, 0, 0}

func (binaryFileVariant) name() string              { return "file" }
func (binaryFileVariant) extraOptionKeys() []string { return nil }
func (binaryFileVariant) defaultFileName() string   { return "log.sil" }

func (binaryFileVariant) writeHeader(w io.Writer, currentSize int64) error {
	if currentSize != 0 {
		return nil
	}
	_, err := w.Write(fileSignature)
	return err
}

func (binaryFileVariant) writeFooter(w io.Writer) error { return nil }

func (v *binaryFileVariant) formatter() Formatter {
	if v.formatter_ == nil {
		v.formatter_ = siformat.NewBinaryFormatter()
	}
	return v.formatter_
}

func (binaryFileVariant) allowEncryption() bool { return true }

// NewFileProtocol builds the File sink and wraps it in a Base ready for
// Start(). Returned Base.Submit/Start/Stop drive the lifecycle; the
// returned *FileProtocol is exposed for tests that need to peek at file
// state directly.
func NewFileProtocol(lk *sioptions.Lookup) (*Base, *FileProtocol, error) {
	fp, err := newFileProtocol(lk, &binaryFileVariant{})
	if err != nil {
		return nil, nil, err
	}
	base, err := NewBase(fp, lk)
	if err != nil {
		return nil, nil, err
	}
	return base, fp, nil
}
