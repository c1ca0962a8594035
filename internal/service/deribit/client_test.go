package deribit

import (
	"testing"
	"time"

	"VolPull/internal/domain/models"

	"github.com/stretchr/testify/require"
)

func TestParseOptionInstrument(t *testing.T) {
	expiry, strike, typ, ok := parseOptionInstrument("BTC-27JUN25-100000-C")
	require.True(t, ok)
	require.Equal(t, time.Date(2025, 6, 27, 8, 0, 0, 0, time.UTC), expiry)
	require.Equal(t, 100000.0, strike)
	require.Equal(t, models.Call, typ)

	_, strike, typ, ok = parseOptionInstrument("ETH-5SEP25-3200-P")
	require.True(t, ok)
	require.Equal(t, 3200.0, strike)
	require.Equal(t, models.Put, typ)
}

func TestParseOptionInstrumentRejects(t *testing.T) {
	cases := []string{
		"BTC-PERPETUAL",
		"BTC-27JUN25",
		"BTC-27JUN25-100000-X",
		"BTC-NOTADATE-100000-C",
		"BTC-27JUN25--C",
		"",
	}
	for _, name := range cases {
		if _, _, _, ok := parseOptionInstrument(name); ok {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
}

func TestParseFutureInstrument(t *testing.T) {
	expiry, ok := parseFutureInstrument("BTC-26DEC25")
	require.True(t, ok)
	require.Equal(t, time.Date(2025, 12, 26, 8, 0, 0, 0, time.UTC), expiry)

	_, ok = parseFutureInstrument("BTC-PERPETUAL")
	require.False(t, ok)
}
