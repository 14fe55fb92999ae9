// Copyright 2026 The issue2mbox Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package mailbox writes synthesized messages into per-issue
// containers, either a single mbox file or a maildir.
package mailbox

import (
	"github.com/phikal/issue2mbox/internal/msg"

	"github.com/pkg/errors"
)

const messageFileMode = 0600

// Format selects the on-disk container layout.
type Format string

const (
	Mbox    Format = "mbox"
	Maildir Format = "maildir"
)

// ParseFormat validates a format name from the command line.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case Mbox, Maildir:
		return Format(s), nil
	}
	return "", errors.Errorf("unknown mailbox type %q: want mbox or maildir", s)
}

// Handle is one issue's open container.  Append preserves insertion
// order; Close must be called on every exit path once a Handle has
// been opened.
type Handle interface {
	Append(m *msg.Message) error
	Close() error
}

// Open opens the container for one issue inside dir, creating it if
// needed.  With overwrite set, any pre-existing container for the
// issue is removed wholesale before reopening; this is a destructive
// recreate, not a merge.
func Open(dir string, number int, format Format, overwrite bool) (Handle, error) {
	switch format {
	case Mbox:
		return openMbox(dir, number, overwrite)
	case Maildir:
		return openMaildir(dir, number, overwrite)
	}
	return nil, errors.Errorf("unknown mailbox format %q", format)
}
