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

package codec

import (
	"time"

	"github.com/nabbar/snekrpc/message"
)

// markerDatetime / markerGenerator are the keys both codecs look for when
// decoding a map, matching the original's `__datetime__` / `__generator__`
// sentinel keys.
const (
	markerDatetime = "__datetime__"
	markerGenerator = "__generator__"
)

// StreamMarker is an alias of message.StreamSentinel kept local to this
// package so codec callers don't need to import message directly just to
// build one, matching the original's `encode_generator`/`decode_generator`
// pair marking (without transporting) generator arguments inline.
type StreamMarker = message.StreamSentinel

// preprocess walks a value before encoding, turning the two special cases
// (time.Time, StreamMarker) into the keyed-map wire representation both
// codecs use. Every other value passes through unchanged; nested slices and
// maps are walked recursively so a stream/time value nested inside command
// kwargs is still caught.
func preprocess(v interface{}) interface{} {
	switch t := v.(type) {
	case time.Time:
		b, err := t.MarshalBinary()
		if err != nil {
			return v
		}
		return map[string]interface{}{markerDatetime: b}
	case StreamMarker:
		return map[string]interface{}{markerGenerator: nil}
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = preprocess(e)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			out[k] = preprocess(e)
		}
		return out
	default:
		return v
	}
}

// postprocess is preprocess's inverse, applied to every decoded value.
func postprocess(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		if raw, ok := t[markerDatetime]; ok {
			if b, ok := raw.([]byte); ok {
				var tm time.Time
				if err := tm.UnmarshalBinary(b); err == nil {
					return tm
				}
			}
			return t
		}
		if _, ok := t[markerGenerator]; ok {
			return StreamMarker{}
		}
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			out[k] = postprocess(e)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = postprocess(e)
		}
		return out
	default:
		return v
	}
}
