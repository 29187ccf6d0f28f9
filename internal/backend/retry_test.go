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
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Decision
	}{
		{"nil", nil, DecisionIgnore},
		{"canceled", context.Canceled, DecisionIgnore},
		{"deadline", context.DeadlineExceeded, DecisionRetry},
		{"refused", errors.New("dial tcp 127.0.0.1:8080: connect: connection refused"), DecisionRetry},
		{"reset", errors.New("read tcp: connection reset by peer"), DecisionRetry},
		{"gateway", errors.New("server POST /api/runs: 502 Bad Gateway"), DecisionRetry},
		{"throttle", errors.New("server POST /api/runs: 429 Too Many Requests"), DecisionRetry},
		{"closed conn", errors.New("use of closed network connection"), DecisionIgnore},
		{"bad request", errors.New("server POST /api/runs: 400 Bad Request"), DecisionFail},
		{"auth", errors.New("server GET /api/scenes: 401 Unauthorized"), DecisionFail},
		{"wrapped retryable", &RetryableError{Err: errors.New("flaky thing")}, DecisionRetry},
		{"deep wrapped", fmt.Errorf("push: %w", &RetryableError{Err: errors.New("flaky")}), DecisionRetry},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Fatalf("Classify(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 5, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRetryAbortsOnPermanentError(t *testing.T) {
	calls := 0
	perm := errors.New("server POST /api/runs: 400 Bad Request")
	err := Retry(context.Background(), 5, time.Millisecond, func() error {
		calls++
		return perm
	})
	if !errors.Is(err, perm) {
		t.Fatalf("expected permanent error back, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("permanent error retried %d times", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return errors.New("i/o timeout")
	})
	if err == nil {
		t.Fatalf("expected error after exhausting attempts")
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}
