package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"ff-tournament-system/services"
)

// KillSyncer applies a batch of kill rows. *services.PlayerService satisfies it.
type KillSyncer interface {
	SyncPlayerKills(ctx context.Context, rows []services.KillSync) (*services.SyncResult, error)
}

// KillFeedClient reads per-map kill counts from an external feed.
type KillFeedClient struct {
	URL        string
	Token      string
	HTTPClient *http.Client
}

func NewKillFeedClient(feedURL, token string) *KillFeedClient {
	return &KillFeedClient{
		URL:   feedURL,
		Token: token,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetChangedKills returns rows that changed after since.
func (c *KillFeedClient) GetChangedKills(ctx context.Context, since time.Time) ([]services.KillSync, error) {
	u, err := url.Parse(c.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse kill feed URL: %w", err)
	}
	q := u.Query()
	q.Set("since", since.UTC().Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call kill feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("kill feed returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Players []services.KillSync `json:"players"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode kill feed response: %w", err)
	}
	return response.Players, nil
}

// PollKillFeed applies feed changes every pollInterval until ctx is done. The
// cursor only advances after a batch is applied, so a failed tick is retried.
func PollKillFeed(ctx context.Context, client *KillFeedClient, syncer KillSyncer, pollInterval time.Duration) {
	log.Printf("[KILL_FEED] polling %s every %s", client.URL, pollInterval)
	lastSyncTime := time.Now().UTC().Add(-24 * time.Hour)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[KILL_FEED] polling stopped.")
			return
		case <-ticker.C:
			next, err := pollOnce(ctx, client, syncer, lastSyncTime)
			if err != nil {
				log.Printf("❌ [KILL_FEED] %v", err)
				continue
			}
			lastSyncTime = next
		}
	}
}

// pollOnce fetches and applies one batch and returns the new cursor.
func pollOnce(ctx context.Context, client *KillFeedClient, syncer KillSyncer, since time.Time) (time.Time, error) {
	tickTime := time.Now().UTC()
	rows, err := client.GetChangedKills(ctx, since)
	if err != nil {
		return since, err
	}
	if len(rows) == 0 {
		return tickTime, nil
	}

	result, err := syncer.SyncPlayerKills(ctx, rows)
	if err != nil {
		return since, fmt.Errorf("failed to apply %d row(s): %w", len(rows), err)
	}
	log.Printf("✅ [KILL_FEED] applied %d row(s), %d unknown ffId(s)", len(result.Updated), len(result.Unknown))
	return tickTime, nil
}
