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
	"reflect"

	ugcodec "github.com/ugorji/go/codec"

	liberr "github.com/nabbar/snekrpc/errors"

	"github.com/nabbar/snekrpc/message"
)

const NameMsgpack = "msgpack"

func init() {
	Register(NameMsgpack, newMsgpackCodec)
}

type msgpackCodec struct {
	h *ugcodec.MsgpackHandle
}

func newMsgpackCodec(_ map[string]interface{}) Codec {
	h := &ugcodec.MsgpackHandle{}
	h.WriteExt = true
	h.RawToString = true
	h.MapType = reflect.TypeOf(map[string]interface{}(nil))
	return &msgpackCodec{h: h}
}

func (c *msgpackCodec) Name() string { return NameMsgpack }

func (c *msgpackCodec) EncodeEnvelope(e message.Envelope) ([]byte, liberr.Error) {
	payload := []interface{}{uint8(e.Op), preprocess(e.Data)}

	var buf []byte
	enc := ugcodec.NewEncoderBytes(&buf, c.h)
	if err := enc.Encode(payload); err != nil {
		return nil, ErrorEncode.Error(err)
	}
	return buf, nil
}

func (c *msgpackCodec) DecodeEnvelope(data []byte) (message.Envelope, liberr.Error) {
	var payload []interface{}
	dec := ugcodec.NewDecoderBytes(data, c.h)
	if err := dec.Decode(&payload); err != nil {
		return message.Envelope{}, ErrorDecode.Error(err)
	}
	if len(payload) != 2 {
		return message.Envelope{}, ErrorDecode.Error(nil)
	}

	op, err := toOp(payload[0])
	if err != nil {
		return message.Envelope{}, err
	}

	return message.Envelope{Op: op, Data: postprocess(payload[1])}, nil
}

func toOp(v interface{}) (message.Op, liberr.Error) {
	switch n := v.(type) {
	case uint8:
		return message.Op(n), nil
	case uint64:
		return message.Op(n), nil
	case int64:
		return message.Op(n), nil
	case int:
		return message.Op(n), nil
	default:
		return 0, ErrorDecode.Error(nil)
	}
}
