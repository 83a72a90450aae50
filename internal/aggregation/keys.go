package aggregation

import (
	"strings"

	"waferplot/domain/measurement"
)

// DecodeKey splits an identifier such as "LVTN_1" into device code "LVT" and
// channel N. The prefix before the first underscore must end in N or P.
// Anything else (numbers, blanks, annotation rows) yields ok == false.
func DecodeKey(identifier measurement.Cell) (measurement.DecodedKey, bool) {
	if identifier.Kind != measurement.CellText {
		return measurement.DecodedKey{}, false
	}

	prefix, _, _ := strings.Cut(identifier.Text, "_")
	if prefix == "" {
		return measurement.DecodedKey{}, false
	}

	channel := measurement.Channel(prefix[len(prefix)-1])
	if !channel.Valid() {
		return measurement.DecodedKey{}, false
	}

	return measurement.DecodedKey{
		DeviceCode: prefix[:len(prefix)-1],
		Channel:    channel,
	}, true
}
