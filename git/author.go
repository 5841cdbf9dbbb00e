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
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cowdogmoo/cdpipelines/logging"
	"github.com/go-git/go-git/v5/plumbing/object"
	"gopkg.in/ini.v1"
)

// Fallback identity for commits when git config has none.
const (
	DefaultAuthorName  = "cdpipelines"
	DefaultAuthorEmail = "cdpipelines@localhost"
)

// Author identifies who commits published configuration.
type Author struct {
	Name  string
	Email string
}

// String formats a as "Name <email>", "Name", "email" or "".
func (a Author) String() string {
	switch {
	case a.Name != "" && a.Email != "":
		return fmt.Sprintf("%s <%s>", a.Name, a.Email)
	case a.Name != "":
		return a.Name
	default:
		return a.Email
	}
}

// Signature returns a commit signature stamped with when. Missing fields
// get the package defaults.
func (a Author) Signature(when time.Time) *object.Signature {
	sig := &object.Signature{Name: a.Name, Email: a.Email, When: when}
	if sig.Name == "" {
		sig.Name = DefaultAuthorName
	}
	if sig.Email == "" {
		sig.Email = DefaultAuthorEmail
	}
	return sig
}

// ConfigReader reads the user identity from .gitconfig files.
type ConfigReader struct {
	// Home overrides the user's home directory.
	Home string
}

// NewConfigReader creates a reader for the current user's git config.
func NewConfigReader() *ConfigReader {
	return &ConfigReader{}
}

// Author returns the [user] identity from ~/.gitconfig, filling missing
// fields from a file named by [include] path. Unreadable files give an
// empty Author.
func (r *ConfigReader) Author(ctx context.Context) Author {
	home := r.Home
	if home == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil {
			logging.DebugContext(ctx, "Failed to get home directory: %v", err)
			return Author{}
		}
	}

	cfg, err := ini.Load(filepath.Join(home, ".gitconfig"))
	if err != nil {
		logging.DebugContext(ctx, "Failed to load .gitconfig: %v", err)
		return Author{}
	}

	author := userSection(cfg)
	if author.Name != "" && author.Email != "" {
		return author
	}

	includePath := cfg.Section("include").Key("path").String()
	if includePath == "" {
		return author
	}
	included, err := ini.Load(expandPathFrom(includePath, home))
	if err != nil {
		logging.DebugContext(ctx, "Failed to load included config from %s: %v", includePath, err)
		return author
	}

	// Only fill what the main file left empty.
	extra := userSection(included)
	if author.Name == "" {
		author.Name = extra.Name
	}
	if author.Email == "" {
		author.Email = extra.Email
	}
	return author
}

func userSection(cfg *ini.File) Author {
	user := cfg.Section("user")
	return Author{
		Name:  user.Key("name").String(),
		Email: user.Key("email").String(),
	}
}

func expandPath(path string) string {
	home, _ := os.UserHomeDir()
	return expandPathFrom(path, home)
}

func expandPathFrom(path, home string) string {
	if home != "" && (path == "~" || strings.HasPrefix(path, "~/")) {
		path = filepath.Join(home, path[1:])
	}
	return os.ExpandEnv(path)
}
