// Package hwlog turns growth of a HWiNFO-style CSV sensor log into ordered
// readings: it resolves the file's text encoding once, parses the header
// into immutable sensor definitions, and incrementally tails complete rows
// without ever re-reading consumed bytes.
package hwlog

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/JuanjoFuchs/hwinfo-tui/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decoder converts raw line bytes into a string under one locked encoding.
// The BOM is a stream-start marker, so the utf-8-sig decoder demands it on
// the header line only; data rows always decode through row.
type decoder struct {
	name   string
	decode func([]byte) (string, error) // header line
	row    func([]byte) (string, error) // subsequent lines
}

func newDecoder(name string, fn func([]byte) (string, error)) decoder {
	return decoder{name: name, decode: fn, row: fn}
}

// decoderFor returns the decoder for a recognized encoding name.
func decoderFor(name string) (decoder, error) {
	switch strings.ToLower(name) {
	case "utf-8-sig":
		return decoder{name: "utf-8-sig", decode: decodeUTF8Sig, row: decodeUTF8}, nil
	case "utf-8":
		return newDecoder("utf-8", decodeUTF8), nil
	case "windows-1252", "cp1252":
		cm := charmap.Windows1252.NewDecoder()
		return newDecoder("windows-1252", func(b []byte) (string, error) {
			out, err := cm.Bytes(b)
			if err != nil {
				return "", err
			}
			return string(out), nil
		}), nil
	case "latin-1", "iso-8859-1", "latin1":
		cm := charmap.ISO8859_1.NewDecoder()
		return newDecoder("latin-1", func(b []byte) (string, error) {
			out, err := cm.Bytes(b)
			if err != nil {
				return "", err
			}
			return string(out), nil
		}), nil
	default:
		return decoder{}, fmt.Errorf("unknown encoding %q", name)
	}
}

func decodeUTF8Sig(b []byte) (string, error) {
	if !bytes.HasPrefix(b, utf8BOM) {
		return "", fmt.Errorf("missing UTF-8 byte-order marker")
	}
	return decodeUTF8(bytes.TrimPrefix(b, utf8BOM))
}

func decodeUTF8(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", fmt.Errorf("invalid UTF-8 sequence")
	}
	return string(b), nil
}

// resolveEncoding tries each candidate in order against the raw header line
// and locks in the first one that decodes without error and yields a
// parseable header. Failure of every candidate is a fatal EncodingError.
func resolveEncoding(headerLine []byte, candidates []string) (decoder, []column, error) {
	for _, name := range candidates {
		dec, err := decoderFor(name)
		if err != nil {
			continue
		}
		text, err := dec.decode(headerLine)
		if err != nil {
			continue
		}
		cols, err := parseHeader(text)
		if err != nil {
			continue
		}
		return dec, cols, nil
	}

	return decoder{}, nil, errors.WrapFatal(errors.ErrEncoding,
		"Reader", "resolveEncoding", "header decoding")
}
