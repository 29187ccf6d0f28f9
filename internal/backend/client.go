/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hintlayer/internal/domain"
)

// Client is a minimal HTTP client for the thin sync backend API.
// The desktop overlay uses it to publish placement runs and to list scenes
// known to the server.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// NewClient creates a new backend client. baseURL may include a trailing slash; it will be normalized.
func NewClient(baseURL string, token string) *Client {
	b := strings.TrimRight(baseURL, "/")
	return &Client{
		BaseURL: b,
		Token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, dest any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	var rdr *bytes.Reader
	if body != nil {
		b, merr := json.Marshal(body)
		if merr != nil {
			return merr
		}
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server %s %s: %s", method, u.Path, resp.Status)
	}
	if dest == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(dest)
}

// SceneInfo is a minimal projection for listing.
type SceneInfo struct {
	ID        int64     `json:"id"`
	StableID  string    `json:"stable_id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
	Runs      int64     `json:"runs"`
}

// ListScenes returns scenes known to the server.
func (c *Client) ListScenes(ctx context.Context) ([]SceneInfo, error) {
	var list []SceneInfo
	if err := c.doJSON(ctx, http.MethodGet, "/api/scenes", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// RunEnvelope matches the server response for the latest placement run of a
// scene.
type RunEnvelope struct {
	SceneID     int64               `json:"scene_id"`
	RunID       int64               `json:"run_id"`
	CreatedAt   string              `json:"created_at"`
	Suggestions []domain.Suggestion `json:"suggestions"`
}

// GetLatestRun fetches the latest placement run for a scene.
func (c *Client) GetLatestRun(ctx context.Context, sceneID int64) (*RunEnvelope, error) {
	var env RunEnvelope
	path := fmt.Sprintf("/api/scenes/%d/runs/latest", sceneID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// PushRunResult is the server acknowledgement for a published run.
type PushRunResult struct {
	SceneID int64 `json:"scene_id"`
	RunID   int64 `json:"run_id"`
}

// PushRun publishes a placement run for the named scene. The scene row is
// created on first push. Transient transport failures are retried with
// backoff; permanent server errors are returned as-is.
func (c *Client) PushRun(ctx context.Context, sceneName string, suggestions []domain.Suggestion) (*PushRunResult, error) {
	body := map[string]any{
		"scene":       sceneName,
		"suggestions": suggestions,
	}
	var res PushRunResult
	err := Retry(ctx, 3, 200*time.Millisecond, func() error {
		return c.doJSON(ctx, http.MethodPost, "/api/runs", body, &res)
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}
