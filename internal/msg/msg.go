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

// Package msg defines the synthesized message type and its RFC 5322
// rendering.
package msg

import (
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/pkg/errors"
)

// Message is an email-shaped record manufactured from issue, comment
// or event data.
type Message struct {
	Subject string
	From    mail.Address
	To      mail.Address
	Date    time.Time

	// ID is the addr-spec of the Message-Id header,
	// e.g. "42@acme.widgets".  The left-hand side is the source
	// issue, comment or event identifier, so IDs are unique
	// within a destination.
	ID string

	// Labels holds the issue's label names in retrieval order.
	// The X-Labels header is emitted iff this is non-empty.
	Labels []string

	Body string

	// Draft is always false on export.  The field exists so that
	// the flag is explicit rather than left to whatever a mailbox
	// format defaults to.
	Draft bool
}

// WriteTo renders the message as a single inline text part.  The
// rendering is deterministic: no multipart boundaries or generated
// identifiers are involved, so rendering the same Message twice
// yields identical bytes.
func (m *Message) WriteTo(w io.Writer) error {
	var h mail.Header
	h.SetDate(m.Date)
	h.SetSubject(m.Subject)
	h.SetAddressList("From", []*mail.Address{&m.From})
	h.SetAddressList("To", []*mail.Address{&m.To})
	h.Set("Message-Id", "<"+m.ID+">")
	if len(m.Labels) > 0 {
		h.Set("X-Labels", strings.Join(m.Labels, ","))
	}

	mw, err := mail.CreateSingleInlineWriter(w, h)
	if err != nil {
		return errors.Wrapf(err, "building message %s", m.ID)
	}
	if _, err := io.WriteString(mw, m.Body); err != nil {
		mw.Close()
		return errors.Wrapf(err, "writing body of message %s", m.ID)
	}
	return errors.Wrapf(mw.Close(), "finishing message %s", m.ID)
}
