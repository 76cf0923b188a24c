// Package csvout serializes decoded plate documents as flat per-well
// CSV rows.
//
// Formatted strings that repeat across rows (well names, timepoints,
// temperatures, wavelength labels) are memoized per distinct value for
// the lifetime of one Writer, so large plates do not re-format the
// same values thousands of times.
package csvout

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/platekit/m5csv/m5"
)

var header = []string{
	"Plate",
	"Well",
	"Row",
	"Col",
	"Time [hr]",
	"Temperature [C]",
	"Read Mode",
	"Excitation [nm]",
	"Emission [nm]",
	"Wavelength Description",
	"Value",
}

// waveStrings holds every formatted column a channel contributes.
type waveStrings struct {
	mode string
	ex   string
	em   string
	desc string
}

// Writer emits one CSV row per well value. The header row is written
// once, before the first record, whether blocks arrive through
// WriteDocument or one at a time through WriteBlock.
type Writer struct {
	w           *csv.Writer
	wroteHeader bool

	wellNames map[m5.Well]string
	times     map[float64]string
	temps     map[float64]string
	waves     map[m5.Wavelength]waveStrings
}

// NewWriter creates a Writer emitting CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w:         csv.NewWriter(w),
		wellNames: make(map[m5.Well]string, 384),
		times:     make(map[float64]string, 4),
		temps:     make(map[float64]string, 4),
		waves:     make(map[m5.Wavelength]waveStrings, 4),
	}
}

// WriteDocument writes every block of a fully decoded document.
func (w *Writer) WriteDocument(doc *m5.Document) error {
	for i := range doc.Blocks {
		if err := w.WriteBlock(&doc.Blocks[i]); err != nil {
			return err
		}
	}
	return w.Flush()
}

// WriteBlock writes one block's well values. Callers must only pass
// completely decoded blocks; the writer has no way to retract rows.
func (w *Writer) WriteBlock(b *m5.PlateBlock) error {
	if !w.wroteHeader {
		if err := w.w.Write(header); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
		w.wroteHeader = true
	}

	for _, read := range b.Reads {
		timeStr := ""
		if read.Info.HasElapsed {
			timeStr = w.timeString(read.Info.Elapsed)
		}
		tempStr := w.tempString(read.Info.Temperature)

		for _, wv := range read.Wells {
			name := w.wellName(wv.Well)
			ws := w.waveStrings(wv.Wavelength)

			record := []string{
				b.Settings.Name,
				name,
				name[:1],
				strconv.Itoa(int(wv.Well.Col) + 1),
				timeStr,
				tempStr,
				ws.mode,
				ws.ex,
				ws.em,
				ws.desc,
				strconv.FormatFloat(wv.Value, 'g', -1, 64),
			}
			if err := w.w.Write(record); err != nil {
				return fmt.Errorf("write well %s: %w", name, err)
			}
		}
	}
	return nil
}

// Flush writes buffered rows to the underlying writer.
func (w *Writer) Flush() error {
	w.w.Flush()
	return w.w.Error()
}

func (w *Writer) wellName(well m5.Well) string {
	if s, ok := w.wellNames[well]; ok {
		return s
	}
	s := well.Name()
	w.wellNames[well] = s
	return s
}

func (w *Writer) timeString(t float64) string {
	if s, ok := w.times[t]; ok {
		return s
	}
	s := strconv.FormatFloat(t, 'g', -1, 64)
	w.times[t] = s
	return s
}

func (w *Writer) tempString(t float64) string {
	if s, ok := w.temps[t]; ok {
		return s
	}
	s := strconv.FormatFloat(t, 'g', -1, 64)
	w.temps[t] = s
	return s
}

func (w *Writer) waveStrings(wl m5.Wavelength) waveStrings {
	if ws, ok := w.waves[wl]; ok {
		return ws
	}
	var ws waveStrings
	switch wl.Mode {
	case m5.ModeAbsorbance:
		ws = waveStrings{
			mode: "Absorbance",
			desc: wl.Description(),
		}
	case m5.ModeFluorescence:
		ws = waveStrings{
			mode: "Fluorescence",
			ex:   strconv.Itoa(int(wl.Excitation)),
			em:   strconv.Itoa(int(wl.Emission)),
			desc: wl.Description(),
		}
	}
	w.waves[wl] = ws
	return ws
}
