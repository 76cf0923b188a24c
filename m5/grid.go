package m5

import (
	"strconv"
	"strings"

	"github.com/platekit/m5csv/errors"
	"github.com/platekit/m5csv/m5/internal/textline"
)

// parseRead consumes one read (timepoint): exactly RowSpan grid rows
// followed by one trailing spacer row. Each grid row carries two
// leading metadata columns (elapsed time, temperature) and then one
// window of ColSpan+1 columns per wavelength, the last column of each
// window being a spacer between channels.
//
// Time and temperature apply to every well of the read; they are
// captured from the first row that carries a non-empty cell. The
// elapsed-time column is meaningful only for Well Scan reads.
func parseRead(r *textline.Reader, settings PlateSettings, strict bool) (PlateRead, error) {
	layout := settings.Layout
	wells := make([]WellValue, 0, layout.WellsPerRead())

	var info ReadInfo
	haveTemp := false

	for row := 0; row < layout.RowSpan; row++ {
		line, err := r.Next()
		if err != nil {
			return PlateRead{}, errors.Locate(
				lineErr(err, errors.StageGrid, "grid row"), errors.RowTag(row))
		}

		cols := strings.Split(line, "\t")
		if len(cols) < 2 {
			return PlateRead{}, errors.Locate(
				errors.New(errors.StageGrid, errors.KindFieldParse).
					Field("read metadata").
					Detail("row has %d columns, need time and temperature columns", len(cols)).
					Build(),
				errors.RowTag(row))
		}

		timeCell := strings.TrimSpace(cols[0])
		tempCell := strings.TrimSpace(cols[1])

		if settings.ReadType == ReadTypeWellScan && !info.HasElapsed && timeCell != "" {
			h, err := parseElapsed(timeCell)
			if err != nil {
				return PlateRead{}, errors.Locate(err, errors.RowTag(row))
			}
			info.Elapsed = h
			info.HasElapsed = true
		}
		if !haveTemp && tempCell != "" {
			t, err := strconv.ParseFloat(tempCell, 64)
			if err != nil {
				return PlateRead{}, errors.Locate(
					errors.FieldParse(errors.StageGrid, "temperature", tempCell, err),
					errors.RowTag(row))
			}
			info.Temperature = t
			haveTemp = true
		}

		vals, err := parseGridRow(cols[2:], layout, row, strict)
		if err != nil {
			return PlateRead{}, errors.Locate(err, errors.RowTag(row))
		}
		wells = append(wells, vals...)
	}

	if !haveTemp {
		return PlateRead{}, errors.New(errors.StageGrid, errors.KindFieldParse).
			Field("temperature").
			Detail("no temperature value in any row of the read").
			Build()
	}

	// Every read is followed by one spacer row the instrument leaves
	// blank. The permissive default discards it unexamined.
	line, err := r.Next()
	if err != nil {
		return PlateRead{}, lineErr(err, errors.StageGrid, "trailing spacer row")
	}
	if strict && strings.TrimSpace(line) != "" {
		return PlateRead{}, errors.StrictViolation(errors.StageGrid,
			"non-blank trailing spacer row", line)
	}

	return PlateRead{Info: info, Wells: wells}, nil
}

// parseGridRow walks one row's data cells: windows of ColSpan+1
// columns zipped positionally against the wavelength list, spacer
// column discarded, blank cells skipped. The instrument reports fewer
// cells than the window width when the physical read sub-area is
// smaller than the logical grid, so short and missing windows are
// tolerated.
func parseGridRow(cells []string, layout PlateLayout, row int, strict bool) ([]WellValue, error) {
	window := layout.ColSpan + 1
	var out []WellValue

	for i, wl := range layout.Wavelengths {
		start := i * window
		if start >= len(cells) {
			break
		}
		win := cells[start:min(start+window, len(cells))]
		dataEnd := min(layout.ColSpan, len(win))

		for c, cell := range win[:dataEnd] {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				well := Well{Row: uint8(row), Col: uint8(c)}
				return nil, errors.New(errors.StageGrid, errors.KindFieldParse).
					Field("well value").
					Value(cell).
					Detail("well %s, channel %s", well.Name(), wl.Label()).
					Cause(err).
					Build()
			}
			out = append(out, WellValue{
				Wavelength: wl,
				Well:       Well{Row: uint8(row), Col: uint8(c)},
				Value:      v,
			})
		}

		if strict && dataEnd < len(win) {
			if spacer := strings.TrimSpace(win[dataEnd]); spacer != "" {
				return nil, errors.StrictViolation(errors.StageGrid,
					"non-blank spacer column after channel "+wl.Label(), spacer)
			}
		}
	}
	return out, nil
}

// parseElapsed decomposes an H:MM or H:MM:SS elapsed time into hours.
func parseElapsed(s string) (float64, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, errors.FieldParse(errors.StageGrid, "elapsed time", s, nil)
	}
	var units [3]float64 // hours, minutes, seconds
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, errors.FieldParse(errors.StageGrid, "elapsed time", s, err)
		}
		units[i] = v
	}
	return units[0] + units[1]/60 + units[2]/3600, nil
}
