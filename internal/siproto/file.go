package siproto

import (
	"bufio"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sandia-minimega/smartinspect-go/v2/pkg/siformat"
	"github.com/sandia-minimega/smartinspect-go/v2/pkg/sioptions"
	"github.com/sandia-minimega/smartinspect-go/v2/pkg/sipacket"
)

// fileVariant is the File/Text protocol extension point (spec.md §4.7):
// default filename, the header/footer hook, and which Formatter to use.
// Grounded on src/minilog/minilog.go's per-sink setup generalized to a
// strategy field instead of a type switch.
type fileVariant interface {
	name() string
	defaultFileName() string
	writeHeader(w io.Writer, currentSize int64) error
	writeFooter(w io.Writer) error
	formatter() Formatter
	allowEncryption() bool
	extraOptionKeys() []string
}

// Formatter encodes a packet for a sink. *siformat.BinaryFormatter
// already satisfies this; textFormatterAdapter wraps *siformat.TextFormatter.
type Formatter interface {
	Format(p sipacket.Packet) ([]byte, error)
}

type textFormatterAdapter struct{ tf *siformat.TextFormatter }

func (a textFormatterAdapter) Format(p sipacket.Packet) ([]byte, error) {
	return a.tf.Format(p), nil
}

var baseFileOptionKeys = []string{
	"filename", "append", "buffer", "rotate", "maxsize", "maxparts", "key", "encrypt",
}

type fileOptions struct {
	Filename string
	Append   bool
	Buffer   int64
	Rotate   RotateMode
	MaxSize  int64
	MaxParts int
	Key      []byte
	Encrypt  bool
}

func parseFileOptions(lk *sioptions.Lookup, defaultName string) fileOptions {
	return fileOptions{
		Filename: lk.String("filename", defaultName),
		Append:   lk.Bool("append", false),
		Buffer:   lk.Size("buffer", 0),
		Rotate:   ParseRotateMode(lk.String("rotate", "None")),
		MaxSize:  lk.Size("maxsize", 0),
		MaxParts: lk.Int("maxparts", 2),
		Key:      lk.Bytes("key", 16, nil),
		Encrypt:  lk.Bool("encrypt", false),
	}
}

// FileProtocol is the rotating/size-capped/optionally-encrypted file
// sink. TextProtocol reuses it verbatim with a different fileVariant.
type FileProtocol struct {
	opts    fileOptions
	variant fileVariant

	stem, ext string

	file        *os.File
	writer      io.Writer // buffered and/or encrypting wrapper around file
	bw          *bufio.Writer
	block       cipher.BlockMode
	currentSize int64

	rotater FileRotater
}

func newFileProtocol(lk *sioptions.Lookup, variant fileVariant) (*FileProtocol, error) {
	opts := parseFileOptions(lk, variant.defaultFileName())
	if (opts.Encrypt || opts.Key != nil) && !variant.allowEncryption() {
		return nil, fmt.Errorf("siproto: this protocol forbids encrypt/key")
	}
	if opts.Encrypt && len(opts.Key) != 16 {
		return nil, fmt.Errorf("siproto: encrypt requires a 16-byte key")
	}

	ext := filepath.Ext(opts.Filename)
	stem := strings.TrimSuffix(opts.Filename, ext)

	fp := &FileProtocol{
		opts:    opts,
		variant: variant,
		stem:    stem,
		ext:     ext,
		rotater: FileRotater{Mode: opts.Rotate},
	}
	return fp, nil
}

func (fp *FileProtocol) Name() string { return fp.variant.name() }

func (fp *FileProtocol) ValidOptions() []string {
	return append(append([]string(nil), baseFileOptionKeys...), fp.variant.extraOptionKeys()...)
}

func (fp *FileProtocol) DefaultCaption() string { return fp.Name() }
func (fp *FileProtocol) Format(p sipacket.Packet) ([]byte, error) {
	return fp.variant.formatter().Format(p)
}

func (fp *FileProtocol) Dispatch(state interface{}) error { return nil }

// targetPath computes the path to open, timestamping it when rotation or
// size-capping is active (spec.md §4.7).
func (fp *FileProtocol) targetPath(now time.Time) string {
	if fp.opts.Rotate == RotateNone && fp.opts.MaxSize == 0 {
		return fp.opts.Filename
	}
	return fmt.Sprintf("%s-%s%s", fp.stem, now.UTC().Format("2006-01-02-15-04-05"), fp.ext)
}

func (fp *FileProtocol) Connect() error {
	return fp.openAt(time.Now())
}

func (fp *FileProtocol) openAt(now time.Time) error {
	path := fp.targetPath(now)

	flag := os.O_CREATE | os.O_WRONLY
	if fp.opts.Append {
		flag |= os.O_APPEND
	} else {
		flag |= os.O_TRUNC
	}

	f, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return err
	}
	fp.file = f

	info, _ := f.Stat()
	fp.currentSize = 0
	if info != nil && fp.opts.Append {
		fp.currentSize = info.Size()
	}

	var w io.Writer = f
	if fp.opts.Buffer > 0 {
		fp.bw = bufio.NewWriterSize(f, int(fp.opts.Buffer))
		w = fp.bw
	}

	if err := fp.variant.writeHeader(w, fp.currentSize); err != nil {
		return err
	}

	if fp.opts.Encrypt {
		iv := make([]byte, aes.BlockSize)
		if _, err := rand.Read(iv); err != nil {
			return err
		}
		if _, err := w.Write(iv); err != nil {
			return err
		}
		fp.currentSize += int64(len(iv))
		block, err := aes.NewCipher(fp.opts.Key)
		if err != nil {
			return err
		}
		fp.block = cipher.NewCBCEncrypter(block, iv)
	}
	fp.writer = w

	fp.rotater.Update(now)

	if fp.opts.MaxParts > 0 {
		fp.sweepRetention()
	}
	return nil
}

func (fp *FileProtocol) Disconnect() error {
	if fp.file == nil {
		return nil
	}
	if err := fp.variant.writeFooter(fp.writer); err != nil {
		return err
	}
	if fp.bw != nil {
		fp.bw.Flush()
	}
	err := fp.file.Close()
	fp.file = nil
	fp.bw = nil
	fp.block = nil
	return err
}

// WriteFormatted applies rotation/size-cap pre-write checks (spec.md
// §4.7), then writes frame, encrypting it first if configured.
func (fp *FileProtocol) WriteFormatted(frame []byte) error {
	return fp.writeAt(time.Now(), frame)
}

// writeAt is WriteFormatted parameterized on the current time, so tests
// can drive rotation/size-cap boundaries deterministically instead of
// racing the wall clock's one-second filename resolution.
func (fp *FileProtocol) writeAt(now time.Time, frame []byte) error {
	if fp.opts.Rotate != RotateNone && fp.rotater.Update(now) {
		if err := fp.reopen(now); err != nil {
			return err
		}
	}
	if fp.opts.MaxSize > 0 && fp.currentSize+int64(len(frame)) > fp.opts.MaxSize {
		if err := fp.reopen(now); err != nil {
			return err
		}
	}

	out := frame
	if fp.block != nil {
		out = pkcs7Pad(frame, aes.BlockSize)
		fp.block.CryptBlocks(out, out)
	}

	if _, err := fp.writer.Write(out); err != nil {
		return err
	}
	fp.currentSize += int64(len(out))
	return nil
}

func (fp *FileProtocol) reopen(now time.Time) error {
	if err := fp.Disconnect(); err != nil {
		return err
	}
	return fp.openAt(now)
}

// sweepRetention deletes the oldest files matching the stem pattern
// until at most MaxParts remain (spec.md §4.7, invariant 11). Filenames
// sort chronologically by construction.
func (fp *FileProtocol) sweepRetention() {
	matches, err := filepath.Glob(fp.stem + "-*" + fp.ext)
	if err != nil {
		return
	}
	sort.Strings(matches)
	excess := len(matches) - fp.opts.MaxParts
	for i := 0; i < excess; i++ {
		os.Remove(matches[i])
	}
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	out := make([]byte, len(b)+n)
	copy(out, b)
	for i := len(b); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}
