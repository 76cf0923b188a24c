package m5

import (
	"strconv"
	"strings"

	"github.com/platekit/m5csv/errors"
)

// parseBlockCount validates the file-level magic token and extracts
// the declared number of blocks. Pure function of the header line.
func parseBlockCount(line string) (uint16, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != headerMagic {
		got := ""
		if len(fields) > 0 {
			got = fields[0]
		}
		return 0, errors.MissingMagic(got)
	}
	if len(fields) < 2 {
		return 0, errors.MalformedCount("", nil)
	}
	n, err := strconv.ParseUint(fields[1], 10, 16)
	if err != nil {
		return 0, errors.MalformedCount(fields[1], err)
	}
	return uint16(n), nil
}
