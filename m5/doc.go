// Package m5 decodes the tab-delimited export format produced by
// SpectraMax M5/M5e microplate readers into a well-indexed record
// stream.
//
// An export nests multiple blocks (independent plate runs). Each
// block opens with a fixed-layout settings row whose field positions
// depend on the declared (read type, read mode) pair, followed by one
// or more reads (timepoints) of raw well-value grids, and closes with
// a ~End sentinel. The format carries no schema: field positions,
// counts, and semantics shift with earlier field values, and grids
// contain spacer columns that must be distinguished from data.
//
// # Supported variants
//
//	Endpoint  × Absorbance
//	Endpoint  × Fluorescence
//	Well Scan × Fluorescence
//
// on 96- and 384-well plates. The variant set is deliberately closed:
// a new instrument variant is added by extending the settings layout
// table, not by changing parsing logic.
//
// # Decoding
//
//	doc, err := m5.Decode(reader)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, block := range doc.Blocks {
//	    for _, read := range block.Reads {
//	        // read.Info, read.Wells
//	    }
//	}
//
// Decoding is single-threaded and strictly sequential; later lines
// cannot be interpreted without having consumed all prior lines.
// Any failure aborts the whole parse, and errors carry their
// structural location (block, read, row) for diagnosis.
package m5
