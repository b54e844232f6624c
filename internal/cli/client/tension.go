package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Sort directions understood by the tension endpoint
const (
	Ascending  = "asc"
	Descending = "dsc"
)

// TensionEntry is one faction's tension. On the wire it is the pair [id, tension].
type TensionEntry struct {
	ID      int32
	Tension int32
}

func (e TensionEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int32{e.ID, e.Tension})
}

func (e *TensionEntry) UnmarshalJSON(data []byte) error {
	var pair []int32
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("tension entry: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("tension entry: expected 2 values, got %d", len(pair))
	}
	e.ID, e.Tension = pair[0], pair[1]
	return nil
}

// ListTension returns the leaderboard sorted in dir (Ascending or
// Descending; empty lets the server choose)
func (c *Client) ListTension(ctx context.Context, dir string) ([]TensionEntry, error) {
	path := "/tension"
	if dir != "" {
		path += "?" + url.Values{"dir": {dir}}.Encode()
	}

	resp, err := c.send(ctx, "list tension", http.MethodGet, path, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var entries []TensionEntry
	if err := decode(resp, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}

// Tension is ListTension with failures logged and reported as no entries
func (c *Client) Tension(ctx context.Context, dir string) []TensionEntry {
	entries, err := c.ListTension(ctx, dir)
	if err != nil {
		c.logger.Warn().Err(err).Msg("fetching tension failed")
		return []TensionEntry{}
	}
	if entries == nil {
		return []TensionEntry{}
	}
	return entries
}

type setTensionRequest struct {
	ID      int32 `json:"id"`
	Tension int32 `json:"tension"`
}

// SetTension writes a faction's tension. Needs server tier.
func (c *Client) SetTension(ctx context.Context, id, tension int32) error {
	resp, err := c.send(ctx, "set tension", http.MethodPost, "/tension", setTensionRequest{ID: id, Tension: tension}, http.StatusOK)
	if err != nil {
		return err
	}
	discard(resp)
	return nil
}

type deleteTensionRequest struct {
	ID int32 `json:"id"`
}

// DeleteTension removes a faction's tension. Needs server tier.
func (c *Client) DeleteTension(ctx context.Context, id int32) error {
	resp, err := c.send(ctx, "delete tension", http.MethodDelete, "/tension", deleteTensionRequest{ID: id}, http.StatusOK)
	if err != nil {
		return err
	}
	discard(resp)
	return nil
}
