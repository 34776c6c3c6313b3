// Package livefeed is an optional inbound adapter: a websocket stream of
// game-status envelopes that lets the supervisor react to a final score
// between schedule refreshes instead of waiting for a worker's next poll.
package livefeed

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/gorilla/websocket"

	"github.com/raghav-misra/buddard/internal/core/game"
	"github.com/raghav-misra/buddard/internal/telemetry"
)

const (
	minBackoff  = 1 * time.Second
	maxBackoff  = 30 * time.Second
	readTimeout = 90 * time.Second
)

// StatusUpdate is one push message from the feed.
type StatusUpdate struct {
	GameID    string `json:"game_id"`
	Status    string `json:"status"` // "scheduled" | "live" | "final"
	Period    int    `json:"period"`
	Clock     string `json:"clock"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
}

// GameStatus maps the feed's status string onto the game lifecycle.
func (u StatusUpdate) GameStatus() game.Status {
	switch u.Status {
	case "live":
		return game.StatusLive
	case "final":
		return game.StatusFinal
	default:
		return game.StatusScheduled
	}
}

// Handler receives each parsed update on the client's read goroutine.
type Handler func(StatusUpdate)

type Client struct {
	url     string
	handler Handler
}

func NewClient(url string, handler Handler) *Client {
	return &Client{url: url, handler: handler}
}

// ConnectWithRetry connects to the feed and reconnects on failure with
// exponential backoff. Blocks until ctx is cancelled.
func (c *Client) ConnectWithRetry(ctx context.Context) {
	attempt := 0
	for {
		if ctx.Err() != nil {
			return
		}

		connStart := time.Now()
		err := c.connect(ctx)
		if ctx.Err() != nil {
			return
		}

		if time.Since(connStart) > time.Minute {
			attempt = 0
		}

		attempt++
		telemetry.Metrics.FeedReconnects.Inc()
		backoff := time.Duration(float64(minBackoff) * math.Pow(2, float64(min(attempt-1, 5))))
		if backoff > maxBackoff {
			backoff = maxBackoff
		}

		if err != nil {
			telemetry.Warnf("livefeed: connection lost (attempt %d): %v — retrying in %s",
				attempt, err, backoff)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}

func (c *Client) connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	telemetry.Infof("livefeed: connected to %s", c.url)

	// Unblock ReadMessage promptly when the context dies.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var update StatusUpdate
		if err := json.Unmarshal(data, &update); err != nil {
			telemetry.Debugf("livefeed: unparseable message: %v", err)
			continue
		}
		if update.GameID == "" {
			continue
		}
		c.handler(update)
	}
}
