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
	gojson "github.com/goccy/go-json"

	liberr "github.com/nabbar/snekrpc/errors"

	"github.com/nabbar/snekrpc/message"
)

const NameJSON = "json"

func init() {
	Register(NameJSON, newJSONCodec)
}

// jsonCodec mirrors JsonCodec.__init__(self, encoding=None): the encoding
// knob exists for parity with the original but Go string/[]byte conversions
// are always UTF-8, so it is accepted and ignored beyond validation.
type jsonCodec struct {
	encoding string
}

func newJSONCodec(args map[string]interface{}) Codec {
	enc := "utf8"
	if args != nil {
		if v, ok := args["encoding"].(string); ok && v != "" {
			enc = v
		}
	}
	return &jsonCodec{encoding: enc}
}

func (c *jsonCodec) Name() string { return NameJSON }

func (c *jsonCodec) EncodeEnvelope(e message.Envelope) ([]byte, liberr.Error) {
	payload := []interface{}{uint8(e.Op), preprocess(e.Data)}

	b, err := gojson.Marshal(payload)
	if err != nil {
		return nil, ErrorEncode.Error(err)
	}
	return b, nil
}

func (c *jsonCodec) DecodeEnvelope(data []byte) (message.Envelope, liberr.Error) {
	var payload []interface{}
	if err := gojson.Unmarshal(data, &payload); err != nil {
		return message.Envelope{}, ErrorDecode.Error(err)
	}
	if len(payload) != 2 {
		return message.Envelope{}, ErrorDecode.Error(nil)
	}

	n, ok := payload[0].(float64)
	if !ok {
		return message.Envelope{}, ErrorDecode.Error(nil)
	}

	return message.Envelope{Op: message.Op(n), Data: postprocess(payload[1])}, nil
}
