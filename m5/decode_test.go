package m5_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	m5errors "github.com/platekit/m5csv/errors"
	"github.com/platekit/m5csv/m5"
)

// absorbanceBlock assembles the lines of a one-read
// Endpoint/Absorbance block: 2×2 sub-area, single 450nm channel.
// Grid rows carry the empty time cell, the temperature, two data
// cells and the channel spacer.
func absorbanceBlock(name string, gridRows []string) []string {
	lines := []string{
		absorbanceLine(name),
		"\tTemperature(°C)\t1\t2",
	}
	lines = append(lines, gridRows...)
	lines = append(lines, "", "~End")
	return lines
}

func input(lines ...string) *strings.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

func TestDecodeEndpointAbsorbance(t *testing.T) {
	lines := append([]string{"##BLOCKS= 1"},
		absorbanceBlock("Plate1", []string{
			"\t23.5\t0.50\t1.20\t",
			"\t23.5\t0.33\t0.90\t",
		})...)

	doc, err := m5.Decode(input(lines...))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(doc.Blocks) != 1 {
		t.Fatalf("blocks: got %d, want 1", len(doc.Blocks))
	}

	block := doc.Blocks[0]
	if block.Settings.Name != "Plate1" {
		t.Errorf("plate name: got %q", block.Settings.Name)
	}
	if len(block.Reads) != 1 {
		t.Fatalf("reads: got %d, want 1", len(block.Reads))
	}

	read := block.Reads[0]
	if read.Info.Temperature != 23.5 {
		t.Errorf("temperature: got %v, want 23.5", read.Info.Temperature)
	}
	if read.Info.HasElapsed {
		t.Error("endpoint read should have no elapsed time")
	}

	want := []m5.WellValue{
		{Wavelength: m5.Absorbance(450), Well: m5.Well{Row: 0, Col: 0}, Value: 0.50},
		{Wavelength: m5.Absorbance(450), Well: m5.Well{Row: 0, Col: 1}, Value: 1.20},
		{Wavelength: m5.Absorbance(450), Well: m5.Well{Row: 1, Col: 0}, Value: 0.33},
		{Wavelength: m5.Absorbance(450), Well: m5.Well{Row: 1, Col: 1}, Value: 0.90},
	}
	if len(read.Wells) != len(want) {
		t.Fatalf("wells: got %d, want %d", len(read.Wells), len(want))
	}
	for i, w := range want {
		if read.Wells[i] != w {
			t.Errorf("well %d: got %+v, want %+v", i, read.Wells[i], w)
		}
	}
}

func TestDecodeWellScanFluorescence(t *testing.T) {
	// 384-well Well Scan with two channels; 16 rows of 24 data cells
	// plus spacer per channel, two reads with distinct timepoints.
	settings := fluorescenceLine("Well Scan", "ScanPlate")

	gridRow := func(time, temp string) string {
		cells := []string{time, temp}
		for ch := 0; ch < 2; ch++ {
			for c := 0; c < 24; c++ {
				cells = append(cells, "1.5")
			}
			cells = append(cells, "") // channel spacer
		}
		return strings.Join(cells, "\t")
	}

	lines := []string{"##BLOCKS= 1", settings, "\tTemperature(°C)"}
	// First read: time on the first row only.
	lines = append(lines, gridRow("0:30", "37.0"))
	for i := 1; i < 16; i++ {
		lines = append(lines, gridRow("", ""))
	}
	lines = append(lines, "")
	// Second read: H:MM:SS form.
	lines = append(lines, gridRow("1:15:30", "37.2"))
	for i := 1; i < 16; i++ {
		lines = append(lines, gridRow("", ""))
	}
	lines = append(lines, "", "~End")

	doc, err := m5.Decode(input(lines...))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	block := doc.Blocks[0]
	if len(block.Reads) != 2 {
		t.Fatalf("reads: got %d, want 2", len(block.Reads))
	}

	r0 := block.Reads[0]
	if !r0.Info.HasElapsed || r0.Info.Elapsed != 0.5 {
		t.Errorf("read 0 elapsed: got %v (has=%v), want 0.5", r0.Info.Elapsed, r0.Info.HasElapsed)
	}
	if r0.Info.Temperature != 37.0 {
		t.Errorf("read 0 temperature: got %v", r0.Info.Temperature)
	}

	r1 := block.Reads[1]
	wantElapsed := 1 + 15.0/60 + 30.0/3600
	if !r1.Info.HasElapsed || math.Abs(r1.Info.Elapsed-wantElapsed) > 1e-9 {
		t.Errorf("read 1 elapsed: got %v, want %v", r1.Info.Elapsed, wantElapsed)
	}

	wantWells := 16 * 24 * 2
	for i, read := range block.Reads {
		if len(read.Wells) != wantWells {
			t.Errorf("read %d wells: got %d, want %d", i, len(read.Wells), wantWells)
		}
	}

	// Channels assigned positionally: first window ex485/em538.
	if r0.Wells[0].Wavelength != m5.Fluorescence(485, 538) {
		t.Errorf("first channel: got %v", r0.Wells[0].Wavelength)
	}
	last := r0.Wells[len(r0.Wells)-1]
	if last.Wavelength != m5.Fluorescence(544, 620) {
		t.Errorf("last channel: got %v", last.Wavelength)
	}
	if last.Well != (m5.Well{Row: 15, Col: 23}) {
		t.Errorf("last well: got %+v", last.Well)
	}
}

func TestDecodeBlankCellsDropped(t *testing.T) {
	lines := append([]string{"##BLOCKS= 1"},
		absorbanceBlock("P", []string{
			"\t24.0\t0.50\t\t",
			"\t24.0\t\t0.90\t",
		})...)

	doc, err := m5.Decode(input(lines...))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	read := doc.Blocks[0].Reads[0]
	layout := doc.Blocks[0].Settings.Layout
	if len(read.Wells) >= layout.WellsPerRead() {
		t.Errorf("wells: got %d, want fewer than %d", len(read.Wells), layout.WellsPerRead())
	}
	want := []m5.WellValue{
		{Wavelength: m5.Absorbance(450), Well: m5.Well{Row: 0, Col: 0}, Value: 0.50},
		{Wavelength: m5.Absorbance(450), Well: m5.Well{Row: 1, Col: 1}, Value: 0.90},
	}
	if len(read.Wells) != 2 {
		t.Fatalf("wells: got %+v", read.Wells)
	}
	for i, w := range want {
		if read.Wells[i] != w {
			t.Errorf("well %d: got %+v, want %+v", i, read.Wells[i], w)
		}
	}
}

func TestDecodeSpacerImmunity(t *testing.T) {
	// Whitespace-only spacer tokens after each data window must not
	// alter values or coordinates, whether present or absent.
	withSpacer := append([]string{"##BLOCKS= 1"},
		absorbanceBlock("P", []string{
			"\t24.0\t0.50\t1.20\t ",
			"\t24.0\t0.33\t0.90\t ",
		})...)
	withoutSpacer := append([]string{"##BLOCKS= 1"},
		absorbanceBlock("P", []string{
			"\t24.0\t0.50\t1.20",
			"\t24.0\t0.33\t0.90",
		})...)

	a, err := m5.Decode(input(withSpacer...))
	if err != nil {
		t.Fatalf("Decode with spacer: %v", err)
	}
	b, err := m5.Decode(input(withoutSpacer...))
	if err != nil {
		t.Fatalf("Decode without spacer: %v", err)
	}

	wa, wb := a.Blocks[0].Reads[0].Wells, b.Blocks[0].Reads[0].Wells
	if len(wa) != len(wb) {
		t.Fatalf("well counts differ: %d vs %d", len(wa), len(wb))
	}
	for i := range wa {
		if wa[i] != wb[i] {
			t.Errorf("well %d differs: %+v vs %+v", i, wa[i], wb[i])
		}
	}
}

func TestDecodeMultipleBlocks(t *testing.T) {
	lines := []string{"##BLOCKS= 2"}
	lines = append(lines, absorbanceBlock("First", []string{
		"\t22.0\t0.10\t0.20\t",
		"\t22.0\t0.30\t0.40\t",
	})...)
	lines = append(lines, absorbanceBlock("Second", []string{
		"\t25.0\t1.10\t1.20\t",
		"\t25.0\t1.30\t1.40\t",
	})...)

	doc, err := m5.Decode(input(lines...))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(doc.Blocks) != 2 {
		t.Fatalf("blocks: got %d, want 2", len(doc.Blocks))
	}
	if doc.Blocks[0].Settings.Name != "First" || doc.Blocks[1].Settings.Name != "Second" {
		t.Errorf("block names: got %q, %q",
			doc.Blocks[0].Settings.Name, doc.Blocks[1].Settings.Name)
	}
	if doc.Blocks[1].Reads[0].Info.Temperature != 25.0 {
		t.Errorf("second block temperature: got %v", doc.Blocks[1].Reads[0].Info.Temperature)
	}
}

func TestDecodeHeaderErrors(t *testing.T) {
	tests := []struct {
		name  string
		first string
		kind  m5errors.Kind
	}{
		{"missing magic", "#BLOCKS= 1", m5errors.KindMissingMagic},
		{"empty line", "", m5errors.KindMissingMagic},
		{"no count", "##BLOCKS=", m5errors.KindMalformedCount},
		{"bad count", "##BLOCKS= many", m5errors.KindMalformedCount},
		{"count too large", "##BLOCKS= 65536", m5errors.KindMalformedCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m5.Decode(input(tt.first))
			if err == nil {
				t.Fatal("expected error")
			}
			if !m5errors.IsKind(err, tt.kind) {
				t.Errorf("kind: got %v, want %s", err, tt.kind)
			}
		})
	}
}

func TestDecodeMissingSentinel(t *testing.T) {
	lines := []string{
		"##BLOCKS= 1",
		absorbanceLine("P"),
		"\tTemperature(°C)",
		"\t24.0\t0.50\t1.20\t",
		"\t24.0\t0.33\t0.90\t",
		"",
		"~Fin",
	}

	_, err := m5.Decode(input(lines...))
	if err == nil {
		t.Fatal("expected error")
	}
	if !m5errors.IsKind(err, m5errors.KindMissingSentinel) {
		t.Errorf("kind: got %v", err)
	}
}

func TestDecodeUnsupportedUnit(t *testing.T) {
	lines := []string{
		"##BLOCKS= 1",
		absorbanceLine("P"),
		"\tTemperature(F)",
	}

	_, err := m5.Decode(input(lines...))
	if err == nil {
		t.Fatal("expected error")
	}
	if !m5errors.IsKind(err, m5errors.KindUnsupportedUnit) {
		t.Errorf("kind: got %v", err)
	}
}

func TestDecodeBlockCountMismatch(t *testing.T) {
	// Header declares two blocks, input holds one: hard failure.
	lines := append([]string{"##BLOCKS= 2"},
		absorbanceBlock("Only", []string{
			"\t22.0\t0.10\t0.20\t",
			"\t22.0\t0.30\t0.40\t",
		})...)

	_, err := m5.Decode(input(lines...))
	if err == nil {
		t.Fatal("expected error")
	}
	if !m5errors.IsKind(err, m5errors.KindPrematureEOF) {
		t.Errorf("kind: got %v", err)
	}
	if !strings.Contains(err.Error(), "block[1]") {
		t.Errorf("error %q missing block location", err)
	}
}

func TestDecodeErrorLocation(t *testing.T) {
	lines := []string{
		"##BLOCKS= 1",
		absorbanceLine("P"),
		"\tTemperature(°C)",
		"\t24.0\t0.50\t1.20\t",
		"\t24.0\tnotanumber\t0.90\t",
	}

	_, err := m5.Decode(input(lines...))
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, tag := range []string{"block[0]", "read[0]", "row[1]"} {
		if !strings.Contains(msg, tag) {
			t.Errorf("error %q missing %q", msg, tag)
		}
	}
	if !m5errors.IsKind(err, m5errors.KindFieldParse) {
		t.Errorf("kind: got %v", err)
	}
}

func TestDecodeStrictSpacerColumn(t *testing.T) {
	lines := append([]string{"##BLOCKS= 1"},
		absorbanceBlock("P", []string{
			"\t24.0\t0.50\t1.20\t0.77",
			"\t24.0\t0.33\t0.90\t",
		})...)

	// Permissive mode ignores the spacer content entirely.
	if _, err := m5.Decode(input(lines...)); err != nil {
		t.Fatalf("permissive Decode: %v", err)
	}

	_, err := m5.DecodeWith(input(lines...), m5.Options{Strict: true})
	if err == nil {
		t.Fatal("expected strict-mode error")
	}
	if !m5errors.IsKind(err, m5errors.KindStrictViolation) {
		t.Errorf("kind: got %v", err)
	}
}

func TestDecodeStrictTrailingRow(t *testing.T) {
	lines := []string{
		"##BLOCKS= 1",
		absorbanceLine("P"),
		"\tTemperature(°C)",
		"\t24.0\t0.50\t1.20\t",
		"\t24.0\t0.33\t0.90\t",
		"leftover",
		"~End",
	}

	if _, err := m5.Decode(input(lines...)); err != nil {
		t.Fatalf("permissive Decode: %v", err)
	}

	_, err := m5.DecodeWith(input(lines...), m5.Options{Strict: true})
	if err == nil {
		t.Fatal("expected strict-mode error")
	}
	if !m5errors.IsKind(err, m5errors.KindStrictViolation) {
		t.Errorf("kind: got %v", err)
	}
}

func TestDecodeStrictWavelengthCount(t *testing.T) {
	line := settingsLine(21, map[int]string{
		1: "P", 4: "Endpoint", 5: "Absorbance",
		8: "1", 14: "1", 15: "450 620", 16: "1", 17: "2", 18: "96", 19: "1", 20: "2",
	})
	lines := []string{
		"##BLOCKS= 1",
		line,
		"\tTemperature(°C)",
		"\t24.0\t0.50\t1.20\t",
		"\t24.0\t0.33\t0.90\t",
		"",
		"~End",
	}

	if _, err := m5.Decode(input(lines...)); err != nil {
		t.Fatalf("permissive Decode: %v", err)
	}

	_, err := m5.DecodeWith(input(lines...), m5.Options{Strict: true})
	if err == nil {
		t.Fatal("expected strict-mode error")
	}
	if !m5errors.IsKind(err, m5errors.KindStrictViolation) {
		t.Errorf("kind: got %v", err)
	}
}

func TestDecodeRejectsNonPositiveGeometry(t *testing.T) {
	// Counts and spans below 1 must fail settings parsing before any
	// grid allocation or slice arithmetic happens.
	block := func(settings string) []string {
		return []string{
			"##BLOCKS= 1",
			settings,
			"\tTemperature(°C)",
			"\t24.0\t0.50\t1.20\t",
			"\t24.0\t0.33\t0.90\t",
			"",
			"~End",
		}
	}

	badSpan := settingsLine(21, map[int]string{
		1: "P", 4: "Endpoint", 5: "Absorbance",
		8: "1", 14: "1", 15: "450", 16: "1", 17: "-5", 18: "96", 19: "1", 20: "2",
	})
	_, err := m5.Decode(input(block(badSpan)...))
	if err == nil {
		t.Fatal("expected error for negative col span")
	}
	if !m5errors.IsKind(err, m5errors.KindFieldParse) {
		t.Errorf("col span kind: got %v", err)
	}

	badWaves := settingsLine(21, map[int]string{
		1: "P", 4: "Endpoint", 5: "Absorbance",
		8: "1", 14: "-1", 15: "450", 16: "1", 17: "2", 18: "96", 19: "1", 20: "2",
	})
	_, err = m5.Decode(input(block(badWaves)...))
	if err == nil {
		t.Fatal("expected error for negative wavelength count")
	}
	if !m5errors.IsKind(err, m5errors.KindFieldParse) {
		t.Errorf("wavelength count kind: got %v", err)
	}
}

// brokenReader yields its data, then a non-EOF error.
type brokenReader struct {
	data []byte
	err  error
}

func (r *brokenReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestDecodeReadFailureNotTruncation(t *testing.T) {
	// An I/O fault mid-file surfaces with its cause, not as a
	// truncated file.
	ioErr := errors.New("read: device fault")
	r := &brokenReader{data: []byte("##BLOCKS= 1\n"), err: ioErr}

	_, err := m5.Decode(r)
	if err == nil {
		t.Fatal("expected error")
	}
	if m5errors.IsKind(err, m5errors.KindPrematureEOF) {
		t.Errorf("I/O failure reported as truncation: %v", err)
	}
	if !m5errors.IsKind(err, m5errors.KindReadFailure) {
		t.Errorf("kind: got %v", err)
	}
	if !errors.Is(err, ioErr) {
		t.Errorf("cause lost: %v", err)
	}
}

func TestDecodeZeroBlocks(t *testing.T) {
	doc, err := m5.Decode(input("##BLOCKS= 0"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(doc.Blocks) != 0 {
		t.Errorf("blocks: got %d, want 0", len(doc.Blocks))
	}
}
