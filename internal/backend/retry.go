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
	"strings"
	"time"
)

// Decision tells callers how to react to a sync error.
type Decision int

const (
	// DecisionFail means the error is permanent; give up and surface it.
	DecisionFail Decision = iota
	// DecisionRetry means the error is transient; retry with backoff.
	DecisionRetry
	// DecisionIgnore means the error is benign noise (e.g. cancellation
	// during shutdown) and can be dropped.
	DecisionIgnore
)

func (d Decision) String() string {
	switch d {
	case DecisionRetry:
		return "retry"
	case DecisionIgnore:
		return "ignore"
	default:
		return "fail"
	}
}

// transientMarkers are lowercase substrings that identify errors worth
// retrying. Transport errors rarely expose typed causes across library
// boundaries, so text matching is the pragmatic fallback.
var transientMarkers = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"i/o timeout",
	"timeout awaiting",
	"temporary failure",
	"no such host",
	"tls handshake timeout",
	"server 503",
	"server 502",
	"server 429",
	"eof",
}

// ignoreMarkers identify benign errors raised during orderly shutdown.
var ignoreMarkers = []string{
	"use of closed network connection",
	"request canceled",
}

// Classify maps an error to a sync decision.
func Classify(err error) Decision {
	if err == nil {
		return DecisionIgnore
	}
	if errors.Is(err, context.Canceled) {
		return DecisionIgnore
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return DecisionRetry
	}
	var re *RetryableError
	if errors.As(err, &re) {
		return DecisionRetry
	}
	msg := strings.ToLower(err.Error())
	for _, m := range ignoreMarkers {
		if strings.Contains(msg, m) {
			return DecisionIgnore
		}
	}
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return DecisionRetry
		}
	}
	return DecisionFail
}

// RetryableError wraps an error to force a retry decision regardless of its
// text.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry runs fn up to attempts times, doubling the wait after each transient
// failure. Permanent errors abort immediately; ignorable errors return nil.
func Retry(ctx context.Context, attempts int, base time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	wait := base
	var last error
	for i := 0; i < attempts; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		switch Classify(err) {
		case DecisionIgnore:
			return nil
		case DecisionFail:
			return err
		}
		last = err
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return last
		case <-time.After(wait):
		}
		wait *= 2
	}
	return last
}
