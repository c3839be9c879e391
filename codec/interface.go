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
	liberr "github.com/nabbar/snekrpc/errors"

	"github.com/nabbar/snekrpc/message"
)

// Codec turns an Envelope into wire bytes and back. Implementations must be
// safe for concurrent use: a connection may encode on one goroutine while
// decoding on another.
type Codec interface {
	// Name is the identifier exchanged during the handshake.
	Name() string

	// EncodeEnvelope serializes (op, data) as a 2-element array.
	EncodeEnvelope(e message.Envelope) ([]byte, liberr.Error)

	// DecodeEnvelope parses a 2-element array back into (op, data).
	DecodeEnvelope(data []byte) (message.Envelope, liberr.Error)
}

// Factory builds a new Codec instance, mirroring the original's per-codec
// constructor kwargs (e.g. JsonCodec's `encoding` parameter).
type Factory func(args map[string]interface{}) Codec

var registry = make(map[string]Factory)

// Register adds a codec under the given name. Called from each codec's
// init(), mirroring the original's metaclass-based registry.
func Register(name string, fct Factory) {
	registry[name] = fct
}

// Names returns every registered codec name.
func Names() []string {
	n := make([]string, 0, len(registry))
	for k := range registry {
		n = append(n, k)
	}
	return n
}

// Get builds a Codec for the given registered name.
func Get(name string, args map[string]interface{}) (Codec, liberr.Error) {
	fct, ok := registry[name]
	if !ok {
		return nil, ErrorUnknownCodec.Errorf(name)
	}
	return fct(args), nil
}
