// Package exercisedb looks up exercise media (demo GIFs and muscle data) from
// ExerciseDB on RapidAPI, with wger.de as an image-only fallback, and keeps
// the results in the exercises table and an in-process cache.
package exercisedb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	exerciseDBTimeout = 6 * time.Second
	wgerTimeout       = 5 * time.Second
)

// Remote is what ExerciseDB knows about an exercise. Zero values are unknown.
type Remote struct {
	GifURL           string
	PrimaryMuscle    string
	SecondaryMuscles []string
}

// Client calls ExerciseDB and wger.
type Client struct {
	rapidAPIKey string
	baseURL     string
	wgerBaseURL string
	httpClient  *http.Client
}

// NewClient creates a client. An empty rapidAPIKey disables ExerciseDB
// lookups; wger needs no key.
func NewClient(rapidAPIKey, baseURL, wgerBaseURL string) *Client {
	return &Client{
		rapidAPIKey: rapidAPIKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		wgerBaseURL: strings.TrimRight(wgerBaseURL, "/"),
		httpClient:  &http.Client{},
	}
}

type exerciseDBEntry struct {
	GifURL           string   `json:"gifUrl"`
	Target           string   `json:"target"`
	SecondaryMuscles []string `json:"secondaryMuscles"`
}

// FetchExerciseDB returns the first ExerciseDB match for name. No match, or
// no API key, yields an empty Remote and no error.
func (c *Client) FetchExerciseDB(ctx context.Context, name string) (Remote, error) {
	if c.rapidAPIKey == "" {
		return Remote{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, exerciseDBTimeout)
	defer cancel()

	u := fmt.Sprintf("%s/exercises/name/%s?limit=1", c.baseURL, url.PathEscape(strings.ToLower(name)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Remote{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.rapidAPIKey)
	req.Header.Set("X-RapidAPI-Host", hostOf(c.baseURL))

	var entries []exerciseDBEntry
	if err := c.getJSON(req, &entries); err != nil {
		return Remote{}, fmt.Errorf("exercisedb %q: %w", name, err)
	}
	if len(entries) == 0 {
		return Remote{}, nil
	}
	return Remote{
		GifURL:           entries[0].GifURL,
		PrimaryMuscle:    entries[0].Target,
		SecondaryMuscles: entries[0].SecondaryMuscles,
	}, nil
}

type wgerSuggestion struct {
	ID   int `json:"id"`
	Data struct {
		ID int `json:"id"`
	} `json:"data"`
}

// FetchWgerImage returns the first wger image for name, or "" when wger has
// none.
func (c *Client) FetchWgerImage(ctx context.Context, name string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, wgerTimeout)
	defer cancel()

	q := url.Values{}
	q.Set("term", name)
	q.Set("language", "english")
	q.Set("format", "json")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.wgerBaseURL+"/exercise/search/?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	var search struct {
		Suggestions []wgerSuggestion `json:"suggestions"`
	}
	if err := c.getJSON(req, &search); err != nil {
		return "", fmt.Errorf("wger search %q: %w", name, err)
	}
	if len(search.Suggestions) == 0 {
		return "", nil
	}
	id := search.Suggestions[0].Data.ID
	if id == 0 {
		id = search.Suggestions[0].ID
	}
	if id == 0 {
		return "", nil
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/exerciseinfo/%d/?format=json", c.wgerBaseURL, id), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	var info struct {
		Images []struct {
			Image string `json:"image"`
		} `json:"images"`
	}
	if err := c.getJSON(req, &info); err != nil {
		return "", fmt.Errorf("wger info %d: %w", id, err)
	}
	if len(info.Images) == 0 {
		return "", nil
	}
	return info.Images[0].Image, nil
}

func (c *Client) getJSON(req *http.Request, v any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Host
}
