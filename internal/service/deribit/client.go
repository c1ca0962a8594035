package deribit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"VolPull/internal/domain/models"
	drepo "VolPull/internal/domain/repository"
	"VolPull/internal/service/ratelimit"
	pkghttp "VolPull/pkg/http"
	"VolPull/pkg/util"
)

// Deribit daily expiry cutoff, 08:00 UTC.
const expiryHourUTC = 8

// Client implements MarketSource against the Deribit public REST API.
type Client struct {
	baseURL string
	http    *pkghttp.Client
	limiter *ratelimit.Limiter
	rps     float64
}

// New creates a Deribit market source. rps bounds public API calls per second.
func New(baseURL string, timeout time.Duration, rps float64) drepo.MarketSource {
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    pkghttp.NewClient(pkghttp.WithTimeout(timeout)),
		limiter: ratelimit.New(),
		rps:     rps,
	}
}

type bookSummary struct {
	InstrumentName  string  `json:"instrument_name"`
	MarkIV          float64 `json:"mark_iv"`
	MarkPrice       float64 `json:"mark_price"`
	UnderlyingPrice float64 `json:"underlying_price"`
	MidPrice        float64 `json:"mid_price"`
}

type bookSummaryResponse struct {
	Result []bookSummary `json:"result"`
}

type volIndexResponse struct {
	Result struct {
		// Each row is [ts_ms, open, high, low, close].
		Data [][]float64 `json:"data"`
	} `json:"result"`
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, dest interface{}) error {
	deadline := time.Now().Add(10 * time.Second)
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	if !c.limiter.Wait("deribit", c.rps, c.rps, deadline) {
		return fmt.Errorf("deribit: rate limit wait expired for %s", path)
	}
	return c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method:      pkghttp.MethodGet,
		URL:         c.baseURL + path,
		QueryParams: params,
	}, dest)
}

// OptionChain fetches the full option book summary for an asset. Deribit
// quotes mark_iv as a percentage; values are normalized to decimals here.
func (c *Client) OptionChain(ctx context.Context, asset string, _ time.Time) ([]models.OptionQuote, error) {
	var resp bookSummaryResponse
	err := c.get(ctx, "/public/get_book_summary_by_currency", map[string]string{
		"currency": asset,
		"kind":     "option",
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("deribit option chain: %w", err)
	}

	quotes := make([]models.OptionQuote, 0, len(resp.Result))
	for _, row := range resp.Result {
		expiry, strike, typ, ok := parseOptionInstrument(row.InstrumentName)
		if !ok {
			continue
		}
		quotes = append(quotes, models.OptionQuote{
			Strike:          strike,
			Expiry:          expiry,
			Type:            typ,
			MarkIV:          models.NormalizeIV(row.MarkIV),
			MarkPrice:       row.MarkPrice,
			UnderlyingPrice: row.UnderlyingPrice,
		})
	}
	return quotes, nil
}

// Spot returns the current index level for the asset.
func (c *Client) Spot(ctx context.Context, asset string) (float64, error) {
	var resp struct {
		Result struct {
			IndexPrice float64 `json:"index_price"`
		} `json:"result"`
	}
	err := c.get(ctx, "/public/get_index_price", map[string]string{
		"index_name": strings.ToLower(asset) + "_usd",
	}, &resp)
	if err != nil {
		return 0, fmt.Errorf("deribit spot: %w", err)
	}
	if resp.Result.IndexPrice <= 0 {
		return 0, fmt.Errorf("deribit spot: non-positive index for %s", asset)
	}
	return resp.Result.IndexPrice, nil
}

// Forwards returns the futures curve keyed by expiry. Perpetuals are
// skipped; dated futures carry the forward for their expiry.
func (c *Client) Forwards(ctx context.Context, asset string) (map[time.Time]float64, error) {
	var resp bookSummaryResponse
	err := c.get(ctx, "/public/get_book_summary_by_currency", map[string]string{
		"currency": asset,
		"kind":     "future",
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("deribit forwards: %w", err)
	}

	forwards := make(map[time.Time]float64)
	for _, row := range resp.Result {
		expiry, ok := parseFutureInstrument(row.InstrumentName)
		if !ok {
			continue
		}
		if row.MarkPrice > 0 {
			forwards[expiry] = row.MarkPrice
		}
	}
	return forwards, nil
}

// OfficialIndex fetches Deribit's published daily volatility index closes.
// The API returns percentage points; values are converted to decimals so
// they compare directly with computed levels.
func (c *Client) OfficialIndex(ctx context.Context, asset string, from, to time.Time) ([]models.IndexPoint, error) {
	var resp volIndexResponse
	err := c.get(ctx, "/public/get_volatility_index_data", map[string]string{
		"currency":        asset,
		"start_timestamp": strconv.FormatInt(from.UnixMilli(), 10),
		"end_timestamp":   strconv.FormatInt(to.UnixMilli(), 10),
		"resolution":      "86400",
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("deribit volatility index: %w", err)
	}

	points := make([]models.IndexPoint, 0, len(resp.Result.Data))
	for _, row := range resp.Result.Data {
		if len(row) < 5 {
			continue
		}
		ts := util.MsToTime(int64(row[0]))
		points = append(points, models.IndexPoint{
			Date:  util.DayKey(ts),
			Close: row[4] / 100.0,
		})
	}
	return points, nil
}

// parseOptionInstrument decodes names like BTC-27JUN25-100000-C.
func parseOptionInstrument(name string) (time.Time, float64, models.OptionType, bool) {
	parts := strings.Split(name, "-")
	if len(parts) != 4 {
		return time.Time{}, 0, "", false
	}
	expiry, ok := parseExpiry(parts[1])
	if !ok {
		return time.Time{}, 0, "", false
	}
	strike, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || strike <= 0 {
		return time.Time{}, 0, "", false
	}
	typ := models.OptionType(parts[3])
	if !typ.Valid() {
		return time.Time{}, 0, "", false
	}
	return expiry, strike, typ, true
}

// parseFutureInstrument decodes names like BTC-27JUN25. Perpetuals
// (BTC-PERPETUAL) have no expiry and are rejected.
func parseFutureInstrument(name string) (time.Time, bool) {
	parts := strings.Split(name, "-")
	if len(parts) != 2 {
		return time.Time{}, false
	}
	return parseExpiry(parts[1])
}

func parseExpiry(s string) (time.Time, bool) {
	// Instrument names spell the month in caps (27JUN25); the time layout
	// wants mixed case (27Jun25).
	b := []byte(strings.ToUpper(s))
	prevLetter := false
	for i, c := range b {
		isLetter := c >= 'A' && c <= 'Z'
		if isLetter && prevLetter {
			b[i] = c + ('a' - 'A')
		}
		prevLetter = isLetter
	}
	t, err := time.ParseInLocation("2Jan06", string(b), time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), expiryHourUTC, 0, 0, 0, time.UTC), true
}
