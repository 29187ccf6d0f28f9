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
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hintlayer/internal/domain"
)

func TestTokenSignVerifyRoundTrip(t *testing.T) {
	tok, err := signToken("secret", "alice", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("signToken: %v", err)
	}
	sub, err := verifyToken("secret", tok)
	if err != nil {
		t.Fatalf("verifyToken: %v", err)
	}
	if sub != "alice" {
		t.Fatalf("subject = %q", sub)
	}
	if _, err := verifyToken("other-secret", tok); err == nil {
		t.Fatalf("expected bad signature with wrong secret")
	}
	expired, err := signToken("secret", "alice", time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("signToken: %v", err)
	}
	if _, err := verifyToken("secret", expired); err == nil {
		t.Fatalf("expected expiry error")
	}
}

func TestClientPushRunSendsBearerTokenAndBody(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		writeJSON(w, http.StatusOK, PushRunResult{SceneID: 7, RunID: 42})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "tok123")
	res, err := c.PushRun(context.Background(), "demo", []domain.Suggestion{
		{ID: "ambient:b1:crop", BranchID: "b1", AssetKey: "crop"},
	})
	if err != nil {
		t.Fatalf("PushRun: %v", err)
	}
	if res.SceneID != 7 || res.RunID != 42 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if gotAuth != "Bearer tok123" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if gotBody["scene"] != "demo" {
		t.Fatalf("scene = %v", gotBody["scene"])
	}
}

func TestClientListScenes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/scenes" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, []SceneInfo{{ID: 1, StableID: "demo", Name: "demo", Runs: 3}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	list, err := c.ListScenes(context.Background())
	if err != nil {
		t.Fatalf("ListScenes: %v", err)
	}
	if len(list) != 1 || list[0].StableID != "demo" || list[0].Runs != 3 {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestClientSurfacesServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad")
	if _, err := c.ListScenes(context.Background()); err == nil {
		t.Fatalf("expected error for 401 response")
	}
}
