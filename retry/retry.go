/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package retry

import (
	"time"

	"github.com/nabbar/snekrpc/logger"
	"github.com/nabbar/snekrpc/message"
)

// DefaultCount and DefaultInterval mirror RETRY_COUNT/RETRY_INTERVAL.
const (
	DefaultCount    = 0
	DefaultInterval = time.Second
)

// ShouldRetry decides whether an error is worth retrying. Callers that only
// want to retry transport failures pass a predicate checking for those;
// nil retries every error, mirroring RETRY_ERRORS = (Exception,).
type ShouldRetry func(err error) bool

// Policy is a bounded retry policy: Count == 0 disables retrying, Count < 0
// retries forever, Count > 0 bounds the attempts, matching the original's
// `retries >= self.count >= 0` stop condition.
type Policy struct {
	Count     int
	Interval  time.Duration
	Retryable ShouldRetry
	Log       logger.Logger
}

// New builds a Policy with the original's defaults substituted for zero
// values that were left unset by the caller, mirroring
// `RETRY_COUNT if count is None else count`. Pass count explicitly as 0 to
// disable retries; there is no sentinel "unset" value in Go, so New always
// takes the literal count/interval to use.
func New(count int, interval time.Duration, retryable ShouldRetry, log logger.Logger) Policy {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return Policy{Count: count, Interval: interval, Retryable: retryable, Log: log}
}

func (p Policy) shouldRetry(err error) bool {
	if p.Retryable == nil {
		return true
	}
	return p.Retryable(err)
}

// Call retries fn until it succeeds, a non-retryable error is returned, or
// the policy's attempt budget is exhausted, matching Retry.call.
func (p Policy) Call(fn func() (interface{}, error)) (interface{}, error) {
	retries := 0
	for {
		res, err := fn()
		if err == nil {
			return res, nil
		}
		if !p.shouldRetry(err) {
			return nil, err
		}
		if retries >= p.Count && p.Count >= 0 {
			exhausted := ErrorExhausted.Errorf(retries)
			exhausted.Add(err)
			return nil, exhausted
		}

		time.Sleep(p.Interval)
		retries++
		if p.Log != nil {
			p.Log.Warning("%s (retrying: %d)", nil, err.Error(), retries)
		}
	}
}

// CallStream retries fn, a call that itself pushes values into a channel it
// returns, matching Retry.call_gen: on a retryable failure partway through a
// stream, the whole stream is re-issued from scratch since there is no
// resumable cursor in the wire protocol.
func (p Policy) CallStream(fn func() (<-chan message.StreamItem, error)) (<-chan message.StreamItem, error) {
	retries := 0
	for {
		ch, err := fn()
		if err == nil {
			return ch, nil
		}
		if !p.shouldRetry(err) {
			return nil, err
		}
		if retries >= p.Count && p.Count >= 0 {
			exhausted := ErrorExhausted.Errorf(retries)
			exhausted.Add(err)
			return nil, exhausted
		}

		time.Sleep(p.Interval)
		retries++
		if p.Log != nil {
			p.Log.Warning("%s (retrying: %d)", nil, err.Error(), retries)
		}
	}
}
