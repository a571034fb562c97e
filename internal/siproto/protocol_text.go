package siproto

import (
	"io"

	"github.com/sandia-minimega/smartinspect-go/v2/pkg/siformat"
	"github.com/sandia-minimega/smartinspect-go/v2/pkg/sioptions"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// textFileVariant specialises FileProtocol with the text formatter and a
// UTF-8 BOM header (spec.md §4.7 "Text protocol").
type textFileVariant struct {
	pattern    string
	indent     bool
	formatter_ *siformat.TextFormatter
}

func (textFileVariant) name() string              { return "text" }
func (textFileVariant) extraOptionKeys() []string { return textOptionKeys }
func (textFileVariant) defaultFileName() string   { return "log.txt" }

func (textFileVariant) writeHeader(w io.Writer, currentSize int64) error {
	if currentSize != 0 {
		return nil
	}
	_, err := w.Write(utf8BOM)
	return err
}

func (textFileVariant) writeFooter(w io.Writer) error { return nil }

func (v *textFileVariant) formatter() Formatter {
	if v.formatter_ == nil {
		v.formatter_ = siformat.NewTextFormatter(v.pattern)
		v.formatter_.Indent = v.indent
	}
	return textFormatterAdapter{v.formatter_}
}

func (textFileVariant) allowEncryption() bool { return false }

var textOptionKeys = []string{"pattern", "indent"}

// NewTextProtocol builds the Text sink: a FileProtocol that forbids
// encrypt/key and renders through the pattern/indent options instead of
// the binary formatter.
func NewTextProtocol(lk *sioptions.Lookup) (*Base, *FileProtocol, error) {
	variant := &textFileVariant{
		pattern: lk.String("pattern", ""),
		indent:  lk.Bool("indent", false),
	}
	fp, err := newFileProtocol(lk, variant)
	if err != nil {
		return nil, nil, err
	}
	base, err := NewBase(fp, lk)
	if err != nil {
		return nil, nil, err
	}
	return base, fp, nil
}
