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

package url

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	liberr "github.com/nabbar/snekrpc/errors"
)

const (
	DefaultScheme = "tcp"
	DefaultHost   = "127.0.0.1"
	DefaultPort   = 12321
)

// Url is a normalized RPC endpoint: tcp/http(s) addresses carry a host and
// a port, unix addresses carry a filesystem path.
type Url struct {
	scheme string
	host   string
	port   int
	path   string
}

// Parse builds a Url from a raw string. A string without a "scheme://"
// prefix is assumed to use DefaultScheme, matching the original's
// `url if ':/' in url else f'{DEFAULT_SCHEME}://{url}'` fallback.
func Parse(raw string) (Url, liberr.Error) {
	if raw == "" {
		return Url{}, ErrorParamsEmpty.Error(nil)
	}

	if !strings.Contains(raw, ":/") {
		raw = DefaultScheme + "://" + raw
	}

	i := strings.Index(raw, "://")
	if i < 0 {
		return Url{}, ErrorInvalidURL.Error(nil)
	}

	scheme := strings.ToLower(raw[:i])
	rest := raw[i+3:]

	switch scheme {
	case "unix":
		p := rest
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = "/"
		}
		return Url{scheme: scheme, path: p}, nil
	case "tcp", "http", "https":
		host, port, path, err := splitHostPortPath(rest, scheme)
		if err != nil {
			return Url{}, err
		}
		return Url{scheme: scheme, host: host, port: port, path: path}, nil
	default:
		return Url{}, ErrorInvalidScheme.Error(nil)
	}
}

func splitHostPortPath(rest string, scheme string) (string, int, string, liberr.Error) {
	hostport := rest
	path := ""

	if j := strings.IndexByte(rest, '/'); j >= 0 {
		hostport = rest[:j]
		path = rest[j:]
	}

	if scheme == "tcp" && strings.Trim(path, "/") != "" {
		return "", 0, "", ErrorInvalidPath.Error(nil)
	}

	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		host = hostport
		portStr = ""
	}

	if host == "" {
		host = DefaultHost
	}
	host = strings.ReplaceAll(host, "*", "0.0.0.0")

	port := defaultPortFor(scheme)
	if portStr != "" {
		p, e := strconv.Atoi(portStr)
		if e != nil {
			return "", 0, "", ErrorInvalidURL.Error(e)
		}
		port = p
	}

	return host, port, path, nil
}

func defaultPortFor(scheme string) int {
	switch scheme {
	case "http":
		return 80
	case "https":
		return 443
	default:
		return DefaultPort
	}
}

// Scheme returns the endpoint scheme (tcp, unix, http, https).
func (u Url) Scheme() string { return u.scheme }

// Host returns the host part; empty for unix endpoints.
func (u Url) Host() string { return u.host }

// Port returns the port part; zero for unix endpoints.
func (u Url) Port() int { return u.port }

// Path returns the filesystem path for unix endpoints; empty otherwise.
func (u Url) Path() string { return u.path }

// Path for http(s) request targets, if any was given after the host:port.
func (u Url) RequestPath() string {
	if u.scheme == "unix" {
		return ""
	}
	return u.path
}

// IsUnix reports whether this endpoint dials/listens on a unix socket.
func (u Url) IsUnix() bool { return u.scheme == "unix" }

// IsHTTP reports whether this endpoint uses the chunked HTTP transport.
func (u Url) IsHTTP() bool { return u.scheme == "http" || u.scheme == "https" }

// Address returns the dialable/bindable address: "host:port" for tcp/http,
// the filesystem path for unix.
func (u Url) Address() string {
	if u.scheme == "unix" {
		return u.path
	}
	return net.JoinHostPort(u.host, strconv.Itoa(u.port))
}

// Netloc mirrors the original's "host:port" / path formatting used in String.
func (u Url) Netloc() string {
	return u.Address()
}

func (u Url) String() string {
	return fmt.Sprintf("%s://%s", u.scheme, u.Netloc())
}

// Equal compares two Url values by their canonical string form, matching
// the original dataclass's __eq__.
func (u Url) Equal(other Url) bool {
	return u.String() == other.String()
}
