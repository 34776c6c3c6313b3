package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/raghav-misra/buddard/internal/core/trigger"
	"github.com/raghav-misra/buddard/internal/telemetry"
)

type Notifier struct {
	webhookURL string
	httpClient *http.Client
}

func NewNotifier(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *Notifier) Enabled() bool { return n.webhookURL != "" }

type Embed struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Color       int     `json:"color,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
	Timestamp   string  `json:"timestamp,omitempty"`
}

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type webhookPayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

func (n *Notifier) SendText(ctx context.Context, msg string) error {
	return n.send(ctx, webhookPayload{Content: msg})
}

func (n *Notifier) SendEmbed(ctx context.Context, embed Embed) error {
	if embed.Timestamp == "" {
		embed.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	return n.send(ctx, webhookPayload{Embeds: []Embed{embed}})
}

func (n *Notifier) send(ctx context.Context, payload webhookPayload) error {
	if !n.Enabled() {
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == 429 {
		telemetry.Warnf("discord: rate limited")
		return fmt.Errorf("discord rate limited")
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("discord webhook: status=%d", resp.StatusCode)
	}

	return nil
}

const (
	ColorGreen  = 0x2ECC71
	ColorRed    = 0xE74C3C
	ColorYellow = 0xF1C40F
)

// Deliver implements alerts.Sink, formatting a fired trigger as a rich
// embed: green for HIGH projections, red for LOW.
func (n *Notifier) Deliver(ctx context.Context, a trigger.Alert) error {
	color := ColorGreen
	if a.Direction == trigger.DirectionLow {
		color = ColorRed
	}

	return n.SendEmbed(ctx, Embed{
		Title: fmt.Sprintf("PREDICT %s — %s %s", a.Direction, a.PlayerName, a.Stat),
		Color: color,
		Fields: []Field{
			{Name: "Current", Value: fmt.Sprintf("%.0f %s in %.1f min", a.Current, a.Stat, a.Minutes), Inline: true},
			{Name: "Range", Value: fmt.Sprintf("%.1f – %.1f", a.Low, a.High), Inline: true},
			{Name: "Median", Value: fmt.Sprintf("%.1f", a.P50()), Inline: true},
			{Name: "Threshold", Value: fmt.Sprintf("%.1f", a.Threshold), Inline: true},
			{Name: "Period", Value: fmt.Sprintf("Q%d", a.Period), Inline: true},
			{Name: "Reasoning", Value: a.Reasoning, Inline: false},
		},
	})
}

// GameOver posts a short end-of-game summary when a monitor shuts down.
func (n *Notifier) GameOver(ctx context.Context, gameID string, homeScore, awayScore, alertsFired int) error {
	return n.SendEmbed(ctx, Embed{
		Title:       "Game Final",
		Description: fmt.Sprintf("%s — %d : %d (%d alerts this game)", gameID, homeScore, awayScore, alertsFired),
		Color:       ColorYellow,
	})
}
