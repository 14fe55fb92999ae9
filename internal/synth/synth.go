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

// Package synth turns one issue thread into its mail representation.
package synth

import (
	"fmt"
	"strconv"

	"github.com/phikal/issue2mbox/internal/issue"
	"github.com/phikal/issue2mbox/internal/msg"

	"github.com/emersion/go-message/mail"
)

// Messages builds the ordered message sequence for one issue: the
// issue body first, then comments in retrieval order, then one close
// notice per "closed" event in retrieval order.  Events of any other
// kind contribute nothing.
//
// The recipient of every message is the issue's assignee if it has
// one, otherwise the viewer (the authenticated user running the
// export).  idHost is the right-hand side of generated Message-Id
// values, derived from the repository path.
func Messages(iss issue.Issue, comments []issue.Comment, events []issue.Event, viewer issue.User, idHost string) []msg.Message {
	recipient := viewer
	if iss.Assignee != nil {
		recipient = *iss.Assignee
	}
	to := address(recipient)

	out := make([]msg.Message, 0, 1+len(comments))
	out = append(out, msg.Message{
		Subject: iss.Title,
		From:    address(iss.Author),
		To:      to,
		Date:    iss.Created,
		ID:      strconv.Itoa(iss.Number) + "@" + idHost,
		Labels:  iss.Labels,
		Body:    iss.Body,
		Draft:   false,
	})

	for _, c := range comments {
		out = append(out, msg.Message{
			Subject: "Re: " + iss.Title,
			From:    address(c.Author),
			To:      to,
			Date:    c.Created,
			ID:      strconv.FormatInt(c.ID, 10) + "@" + idHost,
			Body:    c.Body,
			Draft:   false,
		})
	}

	for _, e := range events {
		if e.Kind != issue.KindClosed {
			continue
		}
		out = append(out, msg.Message{
			Subject: "Re: " + iss.Title,
			From:    address(e.Actor),
			To:      to,
			Date:    e.Created,
			ID:      strconv.FormatInt(e.ID, 10) + "@" + idHost,
			Body:    fmt.Sprintf("%s closed this issue.", e.Actor.Login),
			Draft:   false,
		})
	}
	return out
}

// address renders a tracker user as a mail address, preferring the
// display name over the login.
func address(u issue.User) mail.Address {
	name := u.Name
	if name == "" {
		name = u.Login
	}
	return mail.Address{Name: name, Address: u.Email}
}
