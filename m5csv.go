// Package m5csv converts SpectraMax M5/M5e tab-delimited plate-reader
// exports into flat per-well CSV.
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	m5csv/          Root package with the Convert facade and input decoding
//	├── m5/         Decoding engine for the instrument's block/read format
//	├── csvout/     CSV serialization with formatted-string memoization
//	├── errors/     Structured parse errors with block/read/row location
//	└── cmd/m5csv/  Command-line converter and interactive browser
//
// # Quick start
//
//	in, err := os.Open("export.txt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer in.Close()
//
//	if err := m5csv.Convert(in, os.Stdout); err != nil {
//	    log.Fatal(err)
//	}
package m5csv

import (
	"io"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/platekit/m5csv/csvout"
	"github.com/platekit/m5csv/m5"
)

// NewInstrumentReader decodes the instrument's raw export bytes into
// UTF-8 text. Exports use the legacy Macintosh single-byte encoding;
// in practice the only non-ASCII byte is the degree symbol in the
// temperature-unit header, but the whole stream must be decoded for
// the parser to see it.
func NewInstrumentReader(r io.Reader) io.Reader {
	return transform.NewReader(r, charmap.Macintosh.NewDecoder())
}

// Convert decodes one raw M5/M5e export from r and writes it as CSV
// to w. Nothing is written to w until the whole input has decoded
// successfully, so a parse failure never leaves partial output.
func Convert(r io.Reader, w io.Writer) error {
	return ConvertWith(r, w, m5.Options{})
}

// ConvertWith is Convert with explicit decode options.
func ConvertWith(r io.Reader, w io.Writer, opts m5.Options) error {
	doc, err := m5.DecodeWith(NewInstrumentReader(r), opts)
	if err != nil {
		return err
	}
	return csvout.NewWriter(w).WriteDocument(doc)
}
