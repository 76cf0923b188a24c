package m5

import (
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/platekit/m5csv/errors"
	"github.com/platekit/m5csv/m5/internal/textline"
)

// Options configures decoding behavior.
type Options struct {
	// Strict enables validation the instrument format leaves
	// unchecked by default: spacer columns and trailing spacer rows
	// must be blank, and wavelength lists must match their declared
	// count exactly. The permissive default reproduces the
	// instrument's own tolerance.
	Strict bool
}

// Decode reads a complete M5/M5e export from r and returns the
// decoded document. Input must already be character-decoded; exports
// come off the instrument in the legacy Macintosh encoding.
//
// Decoding is strictly sequential with no partial-success mode: a
// failure anywhere aborts the whole parse, and the returned error
// carries the block/read/row location of the failing token.
func Decode(r io.Reader) (*Document, error) {
	return DecodeWith(r, Options{})
}

// DecodeWith is Decode with explicit options.
func DecodeWith(r io.Reader, opts Options) (*Document, error) {
	lr := textline.New(r)

	line, err := lr.Next()
	if err != nil {
		return nil, lineErr(err, errors.StageHeader, "block count header")
	}
	count, err := parseBlockCount(line)
	if err != nil {
		return nil, err
	}

	log := Logger()
	doc := &Document{Blocks: make([]PlateBlock, 0, count)}
	for i := 0; i < int(count); i++ {
		block, err := parseBlock(lr, opts)
		if err != nil {
			return nil, errors.Locate(err, errors.BlockTag(i))
		}
		log.Debug("decoded block",
			zap.Int("block", i),
			zap.String("plate", block.Settings.Name),
			zap.Stringer("mode", block.Settings.ReadMode),
			zap.Int("reads", len(block.Reads)))
		doc.Blocks = append(doc.Blocks, block)
	}

	log.Debug("decoded document", zap.Int("blocks", len(doc.Blocks)))
	return doc, nil
}

// parseBlock assembles one block: settings row, temperature-unit
// header, ReadCount grids, ~End sentinel.
func parseBlock(lr *textline.Reader, opts Options) (PlateBlock, error) {
	line, err := lr.Next()
	if err != nil {
		return PlateBlock{}, lineErr(err, errors.StageSettings, "settings row")
	}
	settings, err := parseSettings(line, opts.Strict)
	if err != nil {
		return PlateBlock{}, err
	}

	line, err = lr.Next()
	if err != nil {
		return PlateBlock{}, lineErr(err, errors.StageBlock, "temperature unit header")
	}
	cols := strings.Split(line, "\t")
	if len(cols) < 2 || !strings.Contains(cols[1], tempUnitHeader) {
		got := ""
		if len(cols) > 1 {
			got = strings.TrimSpace(cols[1])
		}
		return PlateBlock{}, errors.UnsupportedUnit(got)
	}

	reads := make([]PlateRead, 0, settings.Layout.ReadCount)
	for i := 0; i < settings.Layout.ReadCount; i++ {
		read, err := parseRead(lr, settings, opts.Strict)
		if err != nil {
			return PlateBlock{}, errors.Locate(err, errors.ReadTag(i))
		}
		reads = append(reads, read)
	}

	line, err = lr.Next()
	if err != nil {
		return PlateBlock{}, lineErr(err, errors.StageBlock, "block sentinel")
	}
	if got := strings.TrimSpace(line); got != endSentinel {
		return PlateBlock{}, errors.MissingSentinel(got)
	}

	return PlateBlock{Settings: settings, Reads: reads}, nil
}

// lineErr classifies a line-read failure: end of input is a truncated
// file, anything else keeps the underlying cause so an I/O fault is
// not misreported as truncation.
func lineErr(err error, stage errors.Stage, expected string) error {
	if err == io.EOF {
		return errors.PrematureEOF(stage, expected)
	}
	return errors.ReadFailure(stage, expected, err)
}
