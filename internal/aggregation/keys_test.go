package aggregation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"waferplot/domain/measurement"
)

func TestDecodeKey(t *testing.T) {
	tests := []struct {
		name    string
		cell    measurement.Cell
		code    string
		channel measurement.Channel
		ok      bool
	}{
		{"n channel", measurement.TextCell("LVTN_1"), "LVT", measurement.ChannelN, true},
		{"p channel", measurement.TextCell("SLVTP_Vtsat_2"), "SLVT", measurement.ChannelP, true},
		{"no underscore", measurement.TextCell("RVTN"), "RVT", measurement.ChannelN, true},
		{"bare channel", measurement.TextCell("P_x"), "", measurement.ChannelP, true},
		{"bad suffix", measurement.TextCell("LVTX_1"), "", 0, false},
		{"lowercase suffix", measurement.TextCell("LVTn_1"), "", 0, false},
		{"empty prefix", measurement.TextCell("_N"), "", 0, false},
		{"number", measurement.NumberCell(42), "", 0, false},
		{"empty", measurement.EmptyCell(), "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := DecodeKey(tt.cell)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.code, key.DeviceCode)
				assert.Equal(t, tt.channel, key.Channel)
			}
		})
	}
}

func TestDecodeKeyRecoversPrefix(t *testing.T) {
	for _, id := range []string{"LVTN_1", "LVTP_1", "AN", "ABCP_", "X_Y_ZN_1", "NN_N"} {
		key, ok := DecodeKey(measurement.TextCell(id))
		if !ok {
			continue
		}
		prefix := id
		for i, r := range id {
			if r == '_' {
				prefix = id[:i]
				break
			}
		}
		assert.Equal(t, prefix, key.DeviceCode+key.Channel.String(), "identifier %q", id)
	}
}
