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

// Package frame implements the 4-byte big-endian length-prefix framing
// shared by the tcp and unix transports: every message, including the
// handshake's own raw bytes, is a single size-prefixed chunk.
package frame

import (
	"encoding/binary"
	"io"

	liberr "github.com/nabbar/snekrpc/errors"
)

// DefaultChunkSize mirrors io.DEFAULT_BUFFER_SIZE, the original's default
// read chunk size.
const DefaultChunkSize = 4096

const headerSize = 4

// Write sends one length-prefixed frame: a 4-byte big-endian size header
// followed by data.
func Write(w io.Writer, data []byte) liberr.Error {
	var hdr [headerSize]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(data)))

	if _, err := w.Write(hdr[:]); err != nil {
		return ErrorSendInterrupted.Error(err)
	}
	if len(data) == 0 {
		return nil
	}
	if _, err := w.Write(data); err != nil {
		return ErrorSendInterrupted.Error(err)
	}
	return nil
}

// Read receives one length-prefixed frame. It returns a nil slice and a nil
// error when the peer closed the connection cleanly before sending a header
// (matching the original's `recv()` swallowing ReceiveInterrupted into b'').
func Read(r io.Reader, chunkSize int) ([]byte, liberr.Error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, ErrorReceiveInterrupted.Error(err)
	}

	size := binary.BigEndian.Uint32(hdr[:])
	if size == 0 {
		return []byte{}, nil
	}

	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, ErrorReceiveInterrupted.Error(err)
	}

	return buf, nil
}
