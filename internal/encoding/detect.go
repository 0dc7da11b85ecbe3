// Package encoding normalizes the text encodings found in catalog exports.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Charset names the encoding a reader was decoded from.
type Charset string

const (
	UTF8        Charset = "UTF-8"
	UTF16LE     Charset = "UTF-16LE"
	UTF16BE     Charset = "UTF-16BE"
	Windows1252 Charset = "windows-1252"
	ISO88599    Charset = "ISO-8859-9"
)

const sniffLen = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// NewUTF8Reader returns a reader that yields r decoded to UTF-8.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	out, _, err := Detect(r)
	return out, err
}

// Detect sniffs the start of r and returns a UTF-8 reader over all of it with
// the charset it chose. A BOM wins, then valid UTF-8, then chardet's best guess.
// Anything chardet cannot place is read as Windows-1252, which is what old
// Brazilian POS systems write.
func Detect(r io.Reader) (io.Reader, Charset, error) {
	br := bufio.NewReaderSize(r, sniffLen)

	buf, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", fmt.Errorf("peek: %w", err)
	}

	switch {
	case bytes.HasPrefix(buf, bomUTF8):
		_, _ = br.Discard(len(bomUTF8))
		return br, UTF8, nil
	case bytes.HasPrefix(buf, bomUTF16LE):
		return decode(br, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()), UTF16LE, nil
	case bytes.HasPrefix(buf, bomUTF16BE):
		return decode(br, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()), UTF16BE, nil
	case validPrefix(buf, len(buf) == sniffLen):
		return br, UTF8, nil
	}

	if res, err := chardet.NewTextDetector().DetectBest(buf); err == nil {
		switch res.Charset {
		case "UTF-8":
			return br, UTF8, nil
		case "ISO-8859-9":
			return decode(br, charmap.ISO8859_9.NewDecoder()), ISO88599, nil
		}
	}

	return decode(br, charmap.Windows1252.NewDecoder()), Windows1252, nil
}

func decode(r io.Reader, t transform.Transformer) io.Reader {
	return transform.NewReader(r, t)
}

// validPrefix is utf8.Valid that tolerates a rune cut off at the end of a
// truncated window.
func validPrefix(buf []byte, truncated bool) bool {
	if utf8.Valid(buf) {
		return true
	}

	if !truncated {
		return false
	}

	for i := 1; i < utf8.UTFMax && i < len(buf); i++ {
		if utf8.Valid(buf[:len(buf)-i]) && !utf8.FullRune(buf[len(buf)-i:]) {
			return true
		}
	}

	return false
}
