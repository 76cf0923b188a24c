package m5

import (
	"strconv"
	"strings"

	"github.com/platekit/m5csv/errors"
)

// A settings row is a flat list of tab-separated tokens whose field
// positions shift with the declared (read type, read mode) pair. The
// layout table below is the single source of truth for those
// positions; supporting a new instrument variant means adding a table
// entry, not parsing logic.
//
// All indices are relative to token 6 of the settings row (the first
// token after the fixed prefix of name/type/mode fields).

type layoutKey struct {
	readType ReadType
	readMode ReadMode
}

type fieldLayout struct {
	readCount  int
	rowStart   int
	rowSpan    int
	colStart   int
	colSpan    int
	plateSize  int
	waveCount  int
	emission   int // wavelength list; the only list for absorbance
	excitation int // second list for fluorescence, -1 otherwise
}

// fluorescenceLayout is shared by Endpoint and Well Scan fluorescence
// blocks; their settings rows are identical in shape.
var fluorescenceLayout = fieldLayout{
	readCount:  3,
	waveCount:  9,
	emission:   10,
	colStart:   11,
	colSpan:    12,
	plateSize:  13,
	excitation: 14,
	rowStart:   23,
	rowSpan:    24,
}

var fieldLayouts = map[layoutKey]fieldLayout{
	{ReadTypeEndpoint, ModeAbsorbance}: {
		readCount:  2,
		waveCount:  8,
		emission:   9,
		colStart:   10,
		colSpan:    11,
		plateSize:  12,
		rowStart:   13,
		rowSpan:    14,
		excitation: -1,
	},
	{ReadTypeEndpoint, ModeFluorescence}: fluorescenceLayout,
	{ReadTypeWellScan, ModeFluorescence}: fluorescenceLayout,
}

// minSettingsTokens is the fixed prefix: everything before the
// layout-dependent region.
const minSettingsTokens = 6

// ParseSettings parses one tab-delimited settings row into a
// PlateSettings value, dispatching field positions through the layout
// table keyed by the row's (read type, read mode).
func ParseSettings(line string) (PlateSettings, error) {
	return parseSettings(line, false)
}

func parseSettings(line string, strict bool) (PlateSettings, error) {
	tokens := strings.Split(line, "\t")
	for i := range tokens {
		tokens[i] = strings.TrimSpace(tokens[i])
	}
	if len(tokens) < minSettingsTokens {
		return PlateSettings{}, errors.TruncatedSettings(len(tokens), minSettingsTokens)
	}

	name := tokens[1]

	readType, err := ParseReadType(tokens[4])
	if err != nil {
		return PlateSettings{}, err
	}
	readMode, err := ParseReadMode(tokens[5])
	if err != nil {
		return PlateSettings{}, err
	}

	fl, ok := fieldLayouts[layoutKey{readType, readMode}]
	if !ok {
		return PlateSettings{}, errors.UnsupportedVariant(readType.String(), readMode.String())
	}

	rest := tokens[minSettingsTokens:]

	readCount, err := countField(rest, fl.readCount, "read count")
	if err != nil {
		return PlateSettings{}, err
	}
	plateSize, err := countField(rest, fl.plateSize, "plate size")
	if err != nil {
		return PlateSettings{}, err
	}
	plateRows, plateCols, ok := plateDims(plateSize)
	if !ok {
		return PlateSettings{}, errors.UnsupportedPlateSize(plateSize)
	}
	rowStart, err := countField(rest, fl.rowStart, "row start")
	if err != nil {
		return PlateSettings{}, err
	}
	rowSpan, err := countField(rest, fl.rowSpan, "row span")
	if err != nil {
		return PlateSettings{}, err
	}
	colStart, err := countField(rest, fl.colStart, "col start")
	if err != nil {
		return PlateSettings{}, err
	}
	colSpan, err := countField(rest, fl.colSpan, "col span")
	if err != nil {
		return PlateSettings{}, err
	}

	// Starts and spans cannot exceed the plate geometry; they size
	// allocations and well coordinates downstream.
	for _, g := range []struct {
		field    string
		n, limit int
	}{
		{"row start", rowStart, plateRows},
		{"row span", rowSpan, plateRows},
		{"col start", colStart, plateCols},
		{"col span", colSpan, plateCols},
	} {
		if g.n > g.limit {
			return PlateSettings{}, errors.New(errors.StageSettings, errors.KindFieldParse).
				Field(g.field).
				Value(g.n).
				Detail("exceeds the %d-well plate limit of %d", plateSize, g.limit).
				Build()
		}
	}

	waveCount, err := countField(rest, fl.waveCount, "wavelength count")
	if err != nil {
		return PlateSettings{}, err
	}

	wavelengths, err := parseWavelengths(rest, fl, readMode, waveCount, strict)
	if err != nil {
		return PlateSettings{}, err
	}

	return PlateSettings{
		Name:     name,
		ReadType: readType,
		ReadMode: readMode,
		Layout: PlateLayout{
			PlateSize:   plateSize,
			RowStart:    rowStart,
			RowSpan:     rowSpan,
			ColStart:    colStart,
			ColSpan:     colSpan,
			ReadCount:   readCount,
			Wavelengths: wavelengths,
		},
	}, nil
}

// parseWavelengths builds the channel list from the whitespace-split
// wavelength token(s). Lists longer than the declared count are
// truncated silently to match the instrument's own behavior; strict
// mode rejects the extra entries. Lists shorter than the declared
// count always fail, since the read plan cannot be satisfied.
func parseWavelengths(rest []string, fl fieldLayout, mode ReadMode, waveCount int, strict bool) ([]Wavelength, error) {
	emTok, err := token(rest, fl.emission, "wavelength list")
	if err != nil {
		return nil, err
	}
	ems := strings.Fields(emTok)

	var exs []string
	if mode == ModeFluorescence {
		exTok, err := token(rest, fl.excitation, "excitation wavelength list")
		if err != nil {
			return nil, err
		}
		exs = strings.Fields(exTok)
	}

	if len(ems) < waveCount {
		return nil, errors.New(errors.StageSettings, errors.KindFieldParse).
			Field("wavelength list").
			Value(emTok).
			Detail("%d values declared, %d present", waveCount, len(ems)).
			Build()
	}
	if mode == ModeFluorescence && len(exs) < waveCount {
		return nil, errors.New(errors.StageSettings, errors.KindFieldParse).
			Field("excitation wavelength list").
			Value(strings.Join(exs, " ")).
			Detail("%d values declared, %d present", waveCount, len(exs)).
			Build()
	}
	if strict {
		if len(ems) != waveCount {
			return nil, errors.StrictViolation(errors.StageSettings,
				"wavelength list longer than declared count", emTok)
		}
		if mode == ModeFluorescence && len(exs) != waveCount {
			return nil, errors.StrictViolation(errors.StageSettings,
				"excitation wavelength list longer than declared count", strings.Join(exs, " "))
		}
	}

	out := make([]Wavelength, 0, waveCount)
	for i := 0; i < waveCount; i++ {
		em, err := nmField(ems[i], "wavelength")
		if err != nil {
			return nil, err
		}
		if mode == ModeAbsorbance {
			out = append(out, Absorbance(em))
			continue
		}
		ex, err := nmField(exs[i], "excitation wavelength")
		if err != nil {
			return nil, err
		}
		out = append(out, Fluorescence(ex, em))
	}
	return out, nil
}

// token returns the layout-relative settings token at idx.
func token(rest []string, idx int, field string) (string, error) {
	if idx >= len(rest) {
		return "", errors.New(errors.StageSettings, errors.KindTruncatedSettings).
			Field(field).
			Detail("settings row ends before token %d", idx+minSettingsTokens).
			Build()
	}
	return rest[idx], nil
}

// countField parses a settings integer that must be at least 1.
// Counts, starts, and spans size allocations and drive slice
// arithmetic, so zero and negative values are rejected before any of
// that happens.
func countField(rest []string, idx int, field string) (int, error) {
	tok, err := token(rest, idx, field)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, errors.FieldParse(errors.StageSettings, field, tok, err)
	}
	if n < 1 {
		return 0, errors.New(errors.StageSettings, errors.KindFieldParse).
			Field(field).
			Value(tok).
			Detail("must be at least 1").
			Build()
	}
	return n, nil
}

func nmField(tok, field string) (uint16, error) {
	n, err := strconv.ParseUint(tok, 10, 16)
	if err != nil {
		return 0, errors.FieldParse(errors.StageSettings, field, tok, err)
	}
	return uint16(n), nil
}
