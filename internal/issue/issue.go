package issue

// This file provides the common data objects used by the rest of the
// program.  All of them are immutable snapshots of remote tracker
// state, fetched once per export run and discarded afterwards.

import "time"

// KindClosed is the only event kind the exporter consumes.  Every
// other kind (labeled, assigned, referenced, ...) is ignored.
const KindClosed = "closed"

// User identifies an account on the tracker.  Email may have been
// withheld by the tracker; the forge adapter substitutes a noreply
// address in that case so that a User can always be rendered as a
// well-formed mail address.
type User struct {
	Login string
	Name  string
	Email string
}

// Issue is one tracked unit of work, with enough metadata to
// synthesize its mailbox.  Comments holds the tracker's comment
// count, not the comments themselves; the comment and event sequences
// are fetched lazily, per issue, by the coordinator.
type Issue struct {
	// Number is unique within the repository and names the
	// issue's mailbox container.
	Number int

	Title    string
	Body     string
	Author   User
	Assignee *User
	Created  time.Time

	// Labels holds label names in retrieval order.
	Labels []string

	// Comments is the tracker-reported comment count.
	Comments int
}

// Comment is a single comment on an issue.  Unlike an issue body, a
// comment body is always present.
type Comment struct {
	ID      int64
	Author  User
	Body    string
	Created time.Time
}

// Event is a lifecycle event on an issue.  Kind is the tracker's
// event name; see KindClosed.
type Event struct {
	ID      int64
	Kind    string
	Actor   User
	Created time.Time
}
