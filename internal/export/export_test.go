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

package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/phikal/issue2mbox/internal/issue"
	"github.com/phikal/issue2mbox/internal/mailbox"

	"github.com/pkg/errors"
)

// fakeTracker serves a canned repository.
type fakeTracker struct {
	viewer   issue.User
	issues   []issue.Issue
	comments map[int][]issue.Comment
	events   map[int][]issue.Event

	// listErr, when set, fails ForEachIssue after the canned
	// issues have been delivered.
	listErr error
}

func (f *fakeTracker) Resolve(ctx context.Context) error { return nil }

func (f *fakeTracker) Viewer(ctx context.Context) (issue.User, error) {
	return f.viewer, nil
}

func (f *fakeTracker) HasIssues(ctx context.Context) (bool, error) {
	return len(f.issues) > 0, nil
}

func (f *fakeTracker) ForEachIssue(ctx context.Context, handler func(issue.Issue) error) error {
	for _, iss := range f.issues {
		if err := handler(iss); err != nil {
			return err
		}
	}
	return f.listErr
}

func (f *fakeTracker) Comments(ctx context.Context, number int, handler func(issue.Comment) error) error {
	for _, c := range f.comments[number] {
		if err := handler(c); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeTracker) Events(ctx context.Context, number int, handler func(issue.Event) error) error {
	for _, e := range f.events[number] {
		if err := handler(e); err != nil {
			return err
		}
	}
	return nil
}

func scenario() *fakeTracker {
	t0 := time.Date(2021, 1, 2, 3, 4, 5, 0, time.UTC)
	alice := issue.User{Login: "alice", Email: "alice@x.com"}
	bob := issue.User{Login: "bob", Email: "bob@x.com"}
	carol := issue.User{Login: "carol", Email: "carol@x.com"}
	return &fakeTracker{
		viewer: carol,
		issues: []issue.Issue{{
			Number:   42,
			Title:    "Crash on startup",
			Body:     "It crashes.",
			Author:   alice,
			Created:  t0,
			Comments: 1,
		}},
		comments: map[int][]issue.Comment{
			42: {{ID: 1001, Author: bob, Body: "Can repro", Created: t0.Add(time.Hour)}},
		},
		events: map[int][]issue.Event{
			42: {{ID: 2001, Kind: issue.KindClosed, Actor: carol, Created: t0.Add(2 * time.Hour)}},
		},
	}
}

func options(dest string) Options {
	return Options{
		RepoArg:  "acme/widgets",
		RepoName: "widgets",
		IDHost:   "acme.widgets",
		Dest:     dest,
		Format:   mailbox.Mbox,
	}
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	dest := filepath.Join(t.TempDir(), "widgets")

	if err := Run(ctx, scenario(), options(dest)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	marker, err := os.ReadFile(filepath.Join(dest, MarkerName))
	if err != nil {
		t.Fatal(err)
	}
	if string(marker) != "acme/widgets" {
		t.Errorf("marker = %q, want %q", marker, "acme/widgets")
	}

	b, err := os.ReadFile(filepath.Join(dest, "42.mbox"))
	if err != nil {
		t.Fatal(err)
	}
	got := string(b)
	for _, want := range []string{
		"Subject: Crash on startup",
		"Subject: Re: Crash on startup",
		"Can repro",
		"carol closed this issue.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("mailbox lacks %q", want)
		}
	}
	if n := strings.Count(got, "Message-Id:"); n != 3 {
		t.Errorf("mailbox holds %d messages, want 3", n)
	}
}

// A second run without --overwrite must not append duplicates; a
// second run with --overwrite must produce identical bytes.
func TestRunIdempotent(t *testing.T) {
	ctx := context.Background()
	dest := filepath.Join(t.TempDir(), "widgets")
	tracker := scenario()

	if err := Run(ctx, tracker, options(dest)); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(filepath.Join(dest, "42.mbox"))
	if err != nil {
		t.Fatal(err)
	}

	if err := Run(ctx, tracker, options(dest)); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(filepath.Join(dest, "42.mbox"))
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Error("re-run without overwrite changed the mailbox")
	}

	opts := options(dest)
	opts.Overwrite = true
	if err := Run(ctx, tracker, opts); err != nil {
		t.Fatal(err)
	}
	third, err := os.ReadFile(filepath.Join(dest, "42.mbox"))
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(third) {
		t.Error("overwrite re-run is not byte-identical")
	}
}

// The same pipeline delivers to a maildir: one file per message,
// landing in new/.
func TestRunMaildir(t *testing.T) {
	ctx := context.Background()
	dest := filepath.Join(t.TempDir(), "widgets")

	opts := options(dest)
	opts.Format = mailbox.Maildir
	if err := Run(ctx, scenario(), opts); err != nil {
		t.Fatalf("Run: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(dest, "42", "new"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("maildir new/ holds %d deliveries, want 3", len(entries))
	}
}

// A listing failure surfaces with the adapter's context and nothing
// stacked on top of it.
func TestRunListError(t *testing.T) {
	ctx := context.Background()
	dest := filepath.Join(t.TempDir(), "widgets")
	tracker := scenario()
	tracker.listErr = errors.New("unable to list issues: boom")

	err := Run(ctx, tracker, options(dest))
	if err == nil {
		t.Fatal("Run succeeded despite listing failure")
	}
	if n := strings.Count(err.Error(), "unable to list issues"); n != 1 {
		t.Errorf("error %q mentions the listing failure %d times, want 1", err, n)
	}
}

func TestRunNoIssues(t *testing.T) {
	ctx := context.Background()
	dest := filepath.Join(t.TempDir(), "widgets")
	tracker := &fakeTracker{viewer: issue.User{Login: "carol"}}

	err := Run(ctx, tracker, options(dest))
	if errors.Cause(err) != ErrNoIssues {
		t.Fatalf("Run = %v, want ErrNoIssues", err)
	}
	if _, serr := os.Stat(dest); !os.IsNotExist(serr) {
		t.Error("destination was created for an issue-less repository")
	}
}

func TestPrepareDestinationClaimsEmpty(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "fresh")
	got, err := prepareDestination(options(dest))
	if err != nil {
		t.Fatal(err)
	}
	if got != dest {
		t.Errorf("prepareDestination = %q, want %q", got, dest)
	}
	b, err := os.ReadFile(filepath.Join(dest, MarkerName))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "acme/widgets" {
		t.Errorf("marker = %q", b)
	}
}

func TestPrepareDestinationUnsafeOverwrite(t *testing.T) {
	dest := t.TempDir()
	if err := os.WriteFile(filepath.Join(dest, "stranger.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	opts := options(dest)
	opts.Overwrite = true
	_, err := prepareDestination(opts)
	if errors.Cause(err) != ErrUnsafeOverwrite {
		t.Fatalf("prepareDestination = %v, want ErrUnsafeOverwrite", err)
	}

	// The refusal must leave the directory untouched.
	entries, err := os.ReadDir(dest)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "stranger.txt" {
		t.Errorf("destination was modified: %v", entries)
	}
}

func TestPrepareDestinationRepoMismatch(t *testing.T) {
	dest := t.TempDir()
	if err := writeMarker(dest, "acme/gadgets"); err != nil {
		t.Fatal(err)
	}

	for _, overwrite := range []bool{true, false} {
		opts := options(dest)
		opts.Overwrite = overwrite
		_, err := prepareDestination(opts)
		if errors.Cause(err) != ErrRepoMismatch {
			t.Errorf("overwrite=%v: prepareDestination = %v, want ErrRepoMismatch", overwrite, err)
		}
	}

	b, err := os.ReadFile(filepath.Join(dest, MarkerName))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "acme/gadgets" {
		t.Errorf("marker was rewritten to %q", b)
	}
}

// The marker holds the raw --repo argument; the URL and bare forms of
// the same repository are distinct marker values by design.
func TestPrepareDestinationMarkerMatch(t *testing.T) {
	dest := t.TempDir()
	if err := writeMarker(dest, "acme/widgets"); err != nil {
		t.Fatal(err)
	}

	opts := options(dest)
	opts.Overwrite = true
	if _, err := prepareDestination(opts); err != nil {
		t.Errorf("matching marker refused: %v", err)
	}
}

func TestPrepareDestinationAppendWithoutMarker(t *testing.T) {
	dest := t.TempDir()
	if err := os.WriteFile(filepath.Join(dest, "stranger.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	// Appending (no overwrite) into an unmarked directory is
	// allowed and does not claim it.
	if _, err := prepareDestination(options(dest)); err != nil {
		t.Fatalf("prepareDestination: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, MarkerName)); !os.IsNotExist(err) {
		t.Error("append run claimed a directory it did not populate")
	}
}
