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

// Package export drives one export run: authenticate, resolve the
// repository, check the issue count, claim the destination directory,
// then write one mailbox container per issue, strictly sequentially.
package export

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/phikal/issue2mbox/internal/homedir"
	"github.com/phikal/issue2mbox/internal/issue"
	"github.com/phikal/issue2mbox/internal/mailbox"
	"github.com/phikal/issue2mbox/internal/msg"
	"github.com/phikal/issue2mbox/internal/persist"
	"github.com/phikal/issue2mbox/internal/synth"

	"github.com/pkg/errors"
)

const (
	dirFileMode    = 0700
	markerFileMode = 0600

	// ledgerName is the export ledger database inside the
	// destination directory.
	ledgerName = ".issue2mbox.db"
)

var (
	// ErrNoIssues means the repository resolved but holds zero
	// issues; the export has nothing to do and the run fails.
	ErrNoIssues = errors.New("repository has no issues")

	// ErrUnsafeOverwrite means --overwrite was requested against a
	// non-empty directory this tool did not populate.
	ErrUnsafeOverwrite = errors.New("destination was not created by issue2mbox; refusing to overwrite")

	// ErrRepoMismatch means the destination's marker names a
	// different repository than --repo.
	ErrRepoMismatch = errors.New("destination belongs to a different repository")
)

// Options configures one export run.
type Options struct {
	// RepoArg is the raw --repo argument as typed, stored in the
	// marker and compared byte-for-byte against existing markers.
	RepoArg string

	// RepoName is the repository's name without the owner, used
	// for the default destination ~/<name>.
	RepoName string

	// IDHost is the right-hand side of generated Message-Id
	// values, e.g. "acme.widgets".
	IDHost string

	// Dest is the destination directory; empty means ~/<RepoName>.
	Dest string

	Overwrite bool
	Format    mailbox.Format
}

// Run performs the export.  Setup failures (authentication,
// resolution, issue count, destination, marker) abort the run;
// failures while exporting a single issue or message are logged and
// skipped so one broken thread cannot abort an archive of thousands.
func Run(ctx context.Context, t Tracker, opts Options) error {
	log.Print("Authenticating")
	viewer, err := t.Viewer(ctx)
	if err != nil {
		return errors.Wrap(err, "authentication failed")
	}
	log.Printf("Authenticated as %s", viewer.Login)

	if err := t.Resolve(ctx); err != nil {
		return errors.Wrapf(err, "unable to resolve %s", opts.RepoArg)
	}

	ok, err := t.HasIssues(ctx)
	if err != nil {
		return errors.Wrap(err, "unable to check issue count")
	}
	if !ok {
		return errors.Wrapf(ErrNoIssues, "%s", opts.RepoArg)
	}

	dest, err := prepareDestination(opts)
	if err != nil {
		return err
	}

	ledger, err := persist.Open(ctx, filepath.Join(dest, ledgerName))
	if err != nil {
		return errors.Wrap(err, "unable to open export ledger")
	}
	defer ledger.Close()

	total := 0
	err = t.ForEachIssue(ctx, func(iss issue.Issue) error {
		if err := exportIssue(ctx, t, ledger, dest, viewer, iss, opts); err != nil {
			log.Printf("skipping issue #%d: %v", iss.Number, err)
			return nil
		}
		total++
		return nil
	})
	if err != nil {
		return err
	}
	log.Printf("Exported %d issues to %s", total, dest)
	return nil
}

// prepareDestination resolves, creates and claims the destination
// directory:
//
//   - an empty (or fresh) directory is claimed by writing the marker;
//   - a non-empty directory without a marker supports appending but
//     refuses --overwrite, since the content is not ours to destroy;
//   - an existing marker must match --repo byte-for-byte, on every
//     run, so one destination never mixes repositories.
func prepareDestination(opts Options) (string, error) {
	dest := opts.Dest
	if dest == "" {
		dest = filepath.Join(homedir.Get(), opts.RepoName)
	}

	if err := os.MkdirAll(dest, dirFileMode); err != nil {
		return "", errors.Wrapf(err, "creating destination %s", dest)
	}
	entries, err := os.ReadDir(dest)
	if err != nil {
		return "", errors.Wrapf(err, "listing destination %s", dest)
	}

	if len(entries) == 0 {
		if err := writeMarker(dest, opts.RepoArg); err != nil {
			return "", err
		}
		return dest, nil
	}

	stored, found, err := readMarker(dest)
	if err != nil {
		return "", err
	}
	if !found {
		if opts.Overwrite {
			return "", errors.Wrapf(ErrUnsafeOverwrite, "%s", dest)
		}
		return dest, nil
	}
	if stored != opts.RepoArg {
		return "", errors.Wrapf(ErrRepoMismatch, "%s was populated from %q, not %q", dest, stored, opts.RepoArg)
	}
	if opts.Overwrite {
		log.Printf("Warning: destructively recreating mailboxes for %s in %s", opts.RepoArg, dest)
	}
	return dest, nil
}

// exportIssue writes one issue's container.  The comment sequence is
// fetched only when the tracker reports a positive comment count.
func exportIssue(ctx context.Context, t ThreadFetcher, ledger *persist.DB, dest string, viewer issue.User, iss issue.Issue, opts Options) error {
	var comments []issue.Comment
	if iss.Comments > 0 {
		err := t.Comments(ctx, iss.Number, func(c issue.Comment) error {
			comments = append(comments, c)
			return nil
		})
		if err != nil {
			return errors.Wrap(err, "fetching comments")
		}
	}

	var events []issue.Event
	err := t.Events(ctx, iss.Number, func(e issue.Event) error {
		events = append(events, e)
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "fetching events")
	}

	msgs := synth.Messages(iss, comments, events, viewer, opts.IDHost)

	if opts.Overwrite {
		if err := ledger.Forget(ctx, iss.Number); err != nil {
			return err
		}
	}

	h, err := mailbox.Open(dest, iss.Number, opts.Format, opts.Overwrite)
	if err != nil {
		return errors.Wrap(err, "opening mailbox")
	}
	defer func() {
		if cerr := h.Close(); cerr != nil {
			log.Printf("issue #%d: %v", iss.Number, cerr)
		}
	}()

	for i := range msgs {
		if err := appendMessage(ctx, ledger, h, iss.Number, &msgs[i]); err != nil {
			return err
		}
	}
	return nil
}

// appendMessage writes one message unless the ledger shows an earlier
// run already delivered it.  A build failure is fatal for that one
// message only.
func appendMessage(ctx context.Context, ledger *persist.DB, h mailbox.Handle, number int, m *msg.Message) error {
	have, err := ledger.Has(ctx, number, m.ID)
	if err != nil {
		return err
	}
	if have {
		return nil
	}
	if err := h.Append(m); err != nil {
		log.Printf("issue #%d: dropping message %s: %v", number, m.ID, err)
		return nil
	}
	return ledger.Record(ctx, number, m.ID)
}
