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

// This file defines the tracker interfaces the coordinator consumes.
// The forge adapter satisfies all of them.

import (
	"context"

	"github.com/phikal/issue2mbox/internal/issue"
)

// RepoResolver verifies that the repository exists and is visible to
// the authenticated user.
type RepoResolver interface {
	Resolve(ctx context.Context) error
}

// IssueLister streams the repository's issues in retrieval order.
type IssueLister interface {
	HasIssues(ctx context.Context) (bool, error)
	ForEachIssue(ctx context.Context, handler func(issue.Issue) error) error
}

// ThreadFetcher retrieves the discussion attached to a single issue.
type ThreadFetcher interface {
	Comments(ctx context.Context, number int, handler func(issue.Comment) error) error
	Events(ctx context.Context, number int, handler func(issue.Event) error) error
}

// ViewerProfiler reports the authenticated user's identity, used as
// the recipient fallback for unassigned issues.
type ViewerProfiler interface {
	Viewer(ctx context.Context) (issue.User, error)
}

// Tracker provides all possible actions the export needs from the
// remote issue tracker.
type Tracker interface {
	RepoResolver
	IssueLister
	ThreadFetcher
	ViewerProfiler
}
