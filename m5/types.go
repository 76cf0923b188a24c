package m5

import (
	"fmt"

	"github.com/platekit/m5csv/errors"
)

// ReadType is the instrument read program declared by a block.
type ReadType uint8

const (
	ReadTypeEndpoint ReadType = iota
	ReadTypeWellScan
)

// String returns the instrument's spelling of the read type.
func (t ReadType) String() string {
	switch t {
	case ReadTypeEndpoint:
		return "Endpoint"
	case ReadTypeWellScan:
		return "Well Scan"
	default:
		return fmt.Sprintf("ReadType(%d)", uint8(t))
	}
}

// ParseReadType parses the instrument's spelling of a read type.
func ParseReadType(s string) (ReadType, error) {
	switch s {
	case "Endpoint":
		return ReadTypeEndpoint, nil
	case "Well Scan":
		return ReadTypeWellScan, nil
	default:
		return 0, errors.UnknownEnum("read type", s)
	}
}

// ReadMode is the measurement mode declared by a block.
type ReadMode uint8

const (
	ModeFluorescence ReadMode = iota
	ModeAbsorbance
)

// String returns the instrument's spelling of the read mode.
func (m ReadMode) String() string {
	switch m {
	case ModeFluorescence:
		return "Fluorescence"
	case ModeAbsorbance:
		return "Absorbance"
	default:
		return fmt.Sprintf("ReadMode(%d)", uint8(m))
	}
}

// ParseReadMode parses the instrument's spelling of a read mode.
func ParseReadMode(s string) (ReadMode, error) {
	switch s {
	case "Fluorescence":
		return ModeFluorescence, nil
	case "Absorbance":
		return ModeAbsorbance, nil
	default:
		return 0, errors.UnknownEnum("read mode", s)
	}
}

// Wavelength is one measurement channel: absorbance at a single
// wavelength, or a fluorescence excitation/emission pair. The zero
// Excitation/Emission fields are unused for absorbance and Nm is
// unused for fluorescence. Wavelength is comparable and safe to use
// as a map key.
type Wavelength struct {
	Mode       ReadMode
	Nm         uint16 // absorbance wavelength
	Excitation uint16 // fluorescence excitation
	Emission   uint16 // fluorescence emission
}

// Absorbance returns the channel for absorbance at nm nanometers.
func Absorbance(nm uint16) Wavelength {
	return Wavelength{Mode: ModeAbsorbance, Nm: nm}
}

// Fluorescence returns the channel for a fluorescence ex/em pair.
func Fluorescence(ex, em uint16) Wavelength {
	return Wavelength{Mode: ModeFluorescence, Excitation: ex, Emission: em}
}

// Label returns the short channel label: the plain nanometer value
// for absorbance, "ex {ex}/em {em}" for fluorescence.
func (w Wavelength) Label() string {
	if w.Mode == ModeAbsorbance {
		return fmt.Sprintf("%d", w.Nm)
	}
	return fmt.Sprintf("ex %d/em %d", w.Excitation, w.Emission)
}

// Description returns the long channel description used in output:
// "{nm}nm" for absorbance, "ex {ex}nm / em {em}nm" for fluorescence.
func (w Wavelength) Description() string {
	if w.Mode == ModeAbsorbance {
		return fmt.Sprintf("%dnm", w.Nm)
	}
	return fmt.Sprintf("ex %dnm / em %dnm", w.Excitation, w.Emission)
}

// Well addresses one physical plate position, zero-indexed.
type Well struct {
	Row uint8
	Col uint8
}

// Name returns the conventional well name: row letter followed by a
// zero-padded two-digit one-based column ("A01").
func (w Well) Name() string {
	return fmt.Sprintf("%c%02d", 'A'+w.Row, w.Col+1)
}

// WellValue is one measured quantity at one well on one channel.
type WellValue struct {
	Wavelength Wavelength
	Well       Well
	Value      float64
}

// ReadInfo carries the metadata shared by every well of one read
// (timepoint). Elapsed is in hours and present only for Well Scan
// reads.
type ReadInfo struct {
	Temperature float64
	Elapsed     float64
	HasElapsed  bool
}

// PlateRead is one timepoint's full set of well values.
type PlateRead struct {
	Info  ReadInfo
	Wells []WellValue
}

// PlateLayout is the geometry and read plan derived from a settings
// row. RowStart/ColStart locate the read sub-area on the physical
// plate as declared by the instrument; well addressing in decoded
// values stays grid-relative.
type PlateLayout struct {
	PlateSize   int
	RowStart    int
	RowSpan     int
	ColStart    int
	ColSpan     int
	ReadCount   int
	Wavelengths []Wavelength
}

// WellsPerRead returns the number of non-spacer values expected per
// read when no cells are blank.
func (l PlateLayout) WellsPerRead() int {
	return l.RowSpan * l.ColSpan * len(l.Wavelengths)
}

// Dims returns the fixed row/column counts of the physical plate.
func (l PlateLayout) Dims() (rows, cols int) {
	r, c, _ := plateDims(l.PlateSize)
	return r, c
}

// PlateSettings is the declared shape and semantics of one block.
type PlateSettings struct {
	Name     string
	ReadType ReadType
	ReadMode ReadMode
	Layout   PlateLayout
}

// PlateBlock is one independent plate run.
type PlateBlock struct {
	Settings PlateSettings
	Reads    []PlateRead
}

// Document is one fully decoded input file.
type Document struct {
	Blocks []PlateBlock
}
