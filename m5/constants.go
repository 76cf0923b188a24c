package m5

// File-level and block-level framing literals emitted by the instrument.
const (
	// headerMagic opens every export and precedes the block count.
	headerMagic = "##BLOCKS="

	// endSentinel terminates every block.
	endSentinel = "~End"

	// tempUnitHeader must appear in the second column of each block's
	// column-header line. Exports use the legacy Macintosh encoding
	// for the degree symbol; input must be decoded before parsing.
	tempUnitHeader = "Temperature(°C)"
)

// plateDims returns the fixed row/column counts for a supported
// physical plate size.
func plateDims(wells int) (rows, cols int, ok bool) {
	switch wells {
	case 96:
		return 8, 12, true
	case 384:
		return 16, 24, true
	default:
		return 0, 0, false
	}
}
