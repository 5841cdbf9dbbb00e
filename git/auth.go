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

package git

import (
	"github.com/cowdogmoo/cdpipelines/errors"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// Auth holds the credentials used to reach a git remote. The zero value
// means anonymous access.
type Auth struct {
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	Token      string `mapstructure:"token"`
	SSHKey     string `mapstructure:"ssh_key"`
	SSHKeyFile string `mapstructure:"ssh_key_file"`
}

// Empty reports whether no credentials are set.
func (a Auth) Empty() bool {
	return a == Auth{}
}

// Method converts a into a go-git transport.AuthMethod. SSH keys take
// precedence over tokens, and tokens over username/password pairs.
func (a Auth) Method() (transport.AuthMethod, error) {
	switch {
	case a.SSHKeyFile != "":
		keys, err := ssh.NewPublicKeysFromFile("git", expandPath(a.SSHKeyFile), "")
		if err != nil {
			return nil, errors.Wrap("load SSH key", a.SSHKeyFile, err)
		}
		return keys, nil
	case a.SSHKey != "":
		keys, err := ssh.NewPublicKeys("git", []byte(a.SSHKey), "")
		if err != nil {
			return nil, errors.Wrap("parse SSH key", "", err)
		}
		return keys, nil
	case a.Token != "":
		username := a.Username
		if username == "" {
			username = "x-access-token"
		}
		return &http.BasicAuth{Username: username, Password: a.Token}, nil
	case a.Username != "" && a.Password != "":
		return &http.BasicAuth{Username: a.Username, Password: a.Password}, nil
	}
	return nil, nil
}
