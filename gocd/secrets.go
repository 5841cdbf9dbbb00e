/*
Copyright © 2025 Jayson Grace <jayson.e.grace@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

package gocd

import (
	"context"
	"sort"
	"strings"

	"github.com/cowdogmoo/cdpipelines/errors"
	"github.com/cowdogmoo/cdpipelines/logging"
)

// encryptedPrefix marks values already encrypted by a GoCD server.
const encryptedPrefix = "AES:"

// Encrypter turns a plain secret into a value GoCD can decrypt.
type Encrypter interface {
	Encrypt(ctx context.Context, plain string) (string, error)
}

// RedactingEncrypter replaces secrets with a placeholder. It lets dry runs
// render documents without a server; the output cannot be published.
type RedactingEncrypter struct{}

// Encrypt implements Encrypter.
func (RedactingEncrypter) Encrypt(context.Context, string) (string, error) {
	return logging.Redacted, nil
}

// IsEncrypted reports whether value was produced by a GoCD server.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, encryptedPrefix)
}

// EncryptSecureVariables replaces every plain secure variable in c with
// its encrypted form. Values that are already encrypted are left alone.
func (c *Config) EncryptSecureVariables(ctx context.Context, enc Encrypter) error {
	for _, p := range c.Pipelines() {
		keys := make([]string, 0, len(p.SecureVariables))
		for k := range p.SecureVariables {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			v := p.SecureVariables[k]
			if IsEncrypted(v) {
				continue
			}
			encrypted, err := enc.Encrypt(ctx, v)
			if err != nil {
				return errors.Wrap("encrypt secure variable", p.Name+"/"+k, err)
			}
			p.SecureVariables[k] = encrypted
		}
	}
	return nil
}
