// Package exist is a client for the Exist.io attributes API: it ensures
// the managed custom attributes exist and are owned by this service, and
// upserts daily values for them.
package exist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Attribute value types the API understands (subset we use).
const (
	ValueTypeInteger   = 0
	ValueTypePeriodMin = 3
)

type Client struct {
	base  string
	token string
	http  *http.Client
}

func New(apiBase, accessToken string, timeout time.Duration) *Client {
	return &Client{
		base:  apiBase,
		token: accessToken,
		http:  &http.Client{Timeout: timeout},
	}
}

// AttributeSpec describes one managed custom attribute.
type AttributeSpec struct {
	Name      string `json:"name"`
	Label     string `json:"label"`
	Group     string `json:"group"`
	ValueType int    `json:"value_type"`
	Manual    bool   `json:"manual"`
}

type Profile struct {
	Username string `json:"username"`
	Timezone string `json:"timezone"`
}

// batchResult is the API's shape for create/acquire/update calls.
type batchResult struct {
	Success []json.RawMessage `json:"success"`
	Failed  []failedItem      `json:"failed"`
}

type failedItem struct {
	Name      string `json:"name"`
	ErrorCode string `json:"error_code"`
	Error     string `json:"error"`
}

func (r batchResult) err(op string) error {
	if len(r.Failed) == 0 {
		return nil
	}
	f := r.Failed[0]
	return fmt.Errorf("exist %s: %d item(s) failed, first: %s (%s)", op, len(r.Failed), f.Name, f.Error)
}

// Profile fetches the authenticated user's profile; useful as an auth check.
func (c *Client) Profile(ctx context.Context) (Profile, error) {
	var p Profile
	err := c.do(ctx, http.MethodGet, "/accounts/profile/", nil, &p)
	return p, err
}

// OwnedAttributes returns the names of attributes this token already owns.
func (c *Client) OwnedAttributes(ctx context.Context) ([]string, error) {
	// The endpoint may answer a bare list or a paginated {results: [...]}.
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/attributes/owned/", nil, &raw); err != nil {
		return nil, err
	}

	var attrs []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &attrs); err != nil {
		var paged struct {
			Results []struct {
				Name string `json:"name"`
			} `json:"results"`
		}
		if err := json.Unmarshal(raw, &paged); err != nil {
			return nil, fmt.Errorf("exist owned attributes: unexpected response shape: %w", err)
		}
		attrs = paged.Results
	}

	names := make([]string, 0, len(attrs))
	for _, a := range attrs {
		names = append(names, a.Name)
	}
	return names, nil
}

// Acquire takes ownership of an existing attribute so values can be
// written to it.
func (c *Client) Acquire(ctx context.Context, name string) error {
	var res batchResult
	body := []map[string]string{{"name": name}}
	if err := c.do(ctx, http.MethodPost, "/attributes/acquire/", body, &res); err != nil {
		return err
	}
	if len(res.Success) == 0 {
		if err := res.err("acquire"); err != nil {
			return err
		}
		return fmt.Errorf("exist acquire %s: not acquired", name)
	}
	return nil
}

// Create registers a new custom attribute.
func (c *Client) Create(ctx context.Context, spec AttributeSpec) error {
	var res batchResult
	if err := c.do(ctx, http.MethodPost, "/attributes/create/", []AttributeSpec{spec}, &res); err != nil {
		return err
	}
	return res.err("create")
}

// EnsureAttributes makes sure every spec exists and is owned: already-owned
// attributes are left alone, existing ones are acquired, missing ones are
// created and then acquired.
func (c *Client) EnsureAttributes(ctx context.Context, specs []AttributeSpec) error {
	owned, err := c.OwnedAttributes(ctx)
	if err != nil {
		return err
	}
	ownedSet := make(map[string]bool, len(owned))
	for _, name := range owned {
		ownedSet[name] = true
	}

	for _, spec := range specs {
		if ownedSet[spec.Name] {
			continue
		}
		if err := c.Acquire(ctx, spec.Name); err == nil {
			continue
		}
		if err := c.Create(ctx, spec); err != nil {
			return fmt.Errorf("ensure attribute %s: %w", spec.Name, err)
		}
		if err := c.Acquire(ctx, spec.Name); err != nil {
			return fmt.Errorf("ensure attribute %s: %w", spec.Name, err)
		}
	}
	return nil
}

// UpdateValues upserts a batch of attribute values for one date. The API
// overwrites the stored value per (attribute, date), which makes re-syncing
// a day idempotent rather than additive.
func (c *Client) UpdateValues(ctx context.Context, date time.Time, values map[string]int) error {
	if len(values) == 0 {
		return nil
	}
	type update struct {
		Name  string `json:"name"`
		Date  string `json:"date"`
		Value int    `json:"value"`
	}
	dateStr := date.Format("2006-01-02")
	updates := make([]update, 0, len(values))
	for name, v := range values {
		updates = append(updates, update{Name: name, Date: dateStr, Value: v})
	}

	var res batchResult
	if err := c.do(ctx, http.MethodPost, "/attributes/update/", updates, &res); err != nil {
		return err
	}
	return res.err("update")
}

func (c *Client) do(ctx context.Context, method, path string, body, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("exist request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("exist %s: status %d: %s", path, resp.StatusCode, text)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("exist %s: decode response: %w", path, err)
	}
	return nil
}
