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

package transport

import (
	"github.com/nabbar/snekrpc/certificates"
	liberr "github.com/nabbar/snekrpc/errors"
	"github.com/nabbar/snekrpc/transport/http"
	"github.com/nabbar/snekrpc/transport/tcp"
	"github.com/nabbar/snekrpc/transport/unix"
	"github.com/nabbar/snekrpc/url"
)

// New picks the concrete Transport matching u's scheme, the way the original
// create_transport dispatches on the url scheme registered by each transport
// module. tls may be nil; headers is only meaningful for the http transport.
func New(u url.Url, chunkSize int, tls *certificates.Config, headers map[string]string) (Transport, liberr.Error) {
	var tlsCfg certificates.TLSConfig
	if tls != nil {
		tlsCfg = tls.New()
	}

	switch {
	case u.IsUnix():
		return unix.New(u.Path(), chunkSize), nil
	case u.IsHTTP():
		return http.New(u.Address(), chunkSize, tlsCfg, headers), nil
	case u.Scheme() == "tcp" || u.Scheme() == "":
		return tcp.New(u.Address(), chunkSize, tlsCfg), nil
	default:
		return nil, ErrorUnknownScheme.Error(nil)
	}
}
