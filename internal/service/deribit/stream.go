package deribit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"VolPull/internal/domain/models"
	drepo "VolPull/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Stream implements IndexStream over the Deribit WebSocket API,
// subscribed to deribit_price_index channels.
type Stream struct {
	websocketURL   string
	assets         []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
}

// NewStream creates a live index price stream for the given assets.
func NewStream(websocketURL string, assets []string, reconnectDelay, pingInterval time.Duration) drepo.IndexStream {
	return &Stream{
		websocketURL:   websocketURL,
		assets:         assets,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (s *Stream) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("deribit connect: %w", err)
	}
	s.conn = conn
	s.connected = true
	log.Printf("deribit: connected")
	return nil
}

// Subscribe subscribes to the price index channel of each asset.
func (s *Stream) Subscribe(ctx context.Context) error {
	if s.conn == nil || !s.connected {
		return fmt.Errorf("deribit not connected")
	}
	channels := make([]string, len(s.assets))
	for i, a := range s.assets {
		channels[i] = "deribit_price_index." + strings.ToLower(a) + "_usd"
	}
	msg := map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  "public/subscribe",
		"params":  map[string]interface{}{"channels": channels},
	}
	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	log.Printf("deribit: subscribed %v", channels)
	return nil
}

type indexNotification struct {
	Method string `json:"method"`
	Params struct {
		Channel string `json:"channel"`
		Data    struct {
			IndexName string  `json:"index_name"`
			Price     float64 `json:"price"`
			Timestamp int64   `json:"timestamp"` // ms
		} `json:"data"`
	} `json:"params"`
}

// Read streams index ticks and errors.
func (s *Stream) Read(ctx context.Context) (<-chan *models.IndexTick, <-chan error) {
	ticks := make(chan *models.IndexTick, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if s.conn != nil {
					_ = s.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(ticks)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if s.conn == nil {
					errs <- fmt.Errorf("deribit conn nil")
					return
				}
				_, b, err := s.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("deribit read: %w", err)
					return
				}
				var m indexNotification
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-notification frames
					continue
				}
				if m.Method != "subscription" {
					continue
				}
				asset := strings.ToUpper(strings.TrimSuffix(m.Params.Data.IndexName, "_usd"))
				if asset == "" || m.Params.Data.Price <= 0 {
					continue
				}
				tick := &models.IndexTick{
					Asset:     asset,
					Timestamp: time.UnixMilli(m.Params.Data.Timestamp).UTC(),
					Price:     m.Params.Data.Price,
				}
				select {
				case ticks <- tick:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return ticks, errs
}

// Reconnect closes and reconnects.
func (s *Stream) Reconnect(ctx context.Context) error {
	_ = s.Close()
	time.Sleep(s.reconnectDelay)
	if err := s.Connect(ctx); err != nil {
		return err
	}
	return s.Subscribe(ctx)
}

// Close closes the WS connection.
func (s *Stream) Close() error {
	s.connected = false
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (s *Stream) IsConnected() bool { return s.connected }
