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

package meta

import (
	hashver "github.com/hashicorp/go-version"

	liberr "github.com/nabbar/snekrpc/errors"
)

// CompatibleVersion reports whether serverVersion (the string returned by
// the status command's "version" field) satisfies constraint, a
// comma-separated hashicorp/go-version constraint string such as
// ">= 1.0.0, < 2.0.0". A malformed serverVersion or constraint is reported
// as an error rather than silently treated as incompatible.
func CompatibleVersion(serverVersion, constraint string) (bool, liberr.Error) {
	v, err := hashver.NewVersion(serverVersion)
	if err != nil {
		return false, ErrorVersionParse.Error(err)
	}

	c, err := hashver.NewConstraint(constraint)
	if err != nil {
		return false, ErrorVersionConstraint.Error(err)
	}

	return c.Check(v), nil
}
