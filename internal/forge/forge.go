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

// Package forge adapts the GitHub REST API to the exporter's issue
// model.  It is the only package that knows about go-github types.
package forge

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/phikal/issue2mbox/internal/issue"

	"github.com/google/go-github/v66/github"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	// See https://docs.github.com/en/rest/using-the-rest-api/rate-limits-for-the-rest-api
	requestsPerHour = 5000

	rateLimitPerSecond = float64(requestsPerHour) / 3600 * 0.8
	rateLimitBurst     = 10

	pageSize = 100
)

var (
	ErrAuth         = errors.New("authentication rejected by tracker")
	ErrRepoNotFound = errors.New("repository not found")
)

// Service provides read-only access to one repository's issues on
// GitHub.
type Service struct {
	client  *github.Client
	limiter *rate.Limiter
	owner   string
	name    string
}

// ParseRepo normalizes a repository identifier to its owner and name.
// Both the bare "owner/name" form and a github.com URL are accepted;
// a trailing slash or ".git" is tolerated.
func ParseRepo(arg string) (owner, name string, err error) {
	s := strings.TrimSpace(arg)
	for _, prefix := range []string{"https://github.com/", "http://github.com/", "github.com/"} {
		if strings.HasPrefix(s, prefix) {
			s = s[len(prefix):]
			break
		}
	}
	s = strings.TrimSuffix(s, "/")
	s = strings.TrimSuffix(s, ".git")
	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.Errorf("invalid repository %q: want owner/name or a github.com URL", arg)
	}
	return parts[0], parts[1], nil
}

// New returns a Service for the given repository identifier,
// authenticating every request with the given token.
func New(ctx context.Context, token, repoArg string) (*Service, error) {
	owner, name, err := ParseRepo(repoArg)
	if err != nil {
		return nil, err
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	l := rate.NewLimiter(rate.Limit(rateLimitPerSecond), rateLimitBurst)
	return &Service{
		client:  github.NewClient(oauth2.NewClient(ctx, src)),
		limiter: l,
		owner:   owner,
		name:    name,
	}, nil
}

func (s *Service) Owner() string { return s.owner }
func (s *Service) Name() string  { return s.name }

// classify maps a tracker response error onto the exporter's fatal
// sentinels where one applies.
func classify(err error, notFound error) error {
	switch cause := errors.Cause(err).(type) {
	case *github.ErrorResponse:
		if cause.Response == nil {
			break
		}
		switch cause.Response.StatusCode {
		case http.StatusUnauthorized:
			return errors.Wrap(ErrAuth, cause.Message)
		case http.StatusNotFound:
			if notFound != nil {
				return notFound
			}
		}
	}
	return err
}

// Viewer returns the authenticated user's identity.  It is the first
// call an export run makes, so an invalid token surfaces here as
// ErrAuth.
func (s *Service) Viewer(ctx context.Context) (issue.User, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return issue.User{}, err
	}
	u, _, err := s.client.Users.Get(ctx, "")
	if err != nil {
		return issue.User{}, classify(err, nil)
	}
	return convertUser(u), nil
}

// Resolve verifies that the repository exists and is visible to the
// authenticated user.
func (s *Service) Resolve(ctx context.Context) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	_, _, err := s.client.Repositories.Get(ctx, s.owner, s.name)
	if err != nil {
		return classify(err, errors.Wrapf(ErrRepoNotFound, "%s/%s", s.owner, s.name))
	}
	return nil
}

// HasIssues reports whether the repository has at least one issue in
// any state.
func (s *Service) HasIssues(ctx context.Context) (bool, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return false, err
	}
	opt := &github.IssueListByRepoOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: 1},
	}
	issues, _, err := s.client.Issues.ListByRepo(ctx, s.owner, s.name, opt)
	if err != nil {
		return false, classify(err, errors.Wrapf(ErrRepoNotFound, "%s/%s", s.owner, s.name))
	}
	return len(issues) > 0, nil
}

// ForEachIssue streams the repository's issues, open and closed, in
// the tracker's retrieval order.
func (s *Service) ForEachIssue(ctx context.Context, handler func(issue.Issue) error) error {
	opt := &github.IssueListByRepoOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: pageSize},
	}
	total := 0
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		page, resp, err := s.client.Issues.ListByRepo(ctx, s.owner, s.name, opt)
		if err != nil {
			return errors.Wrap(classify(err, nil), "unable to list issues")
		}
		total += len(page)
		log.Printf("listed page of issues; count %d; total so far %d", len(page), total)
		for _, gh := range page {
			if err := handler(convertIssue(gh)); err != nil {
				return err
			}
		}
		if resp.NextPage == 0 {
			return nil
		}
		opt.Page = resp.NextPage
	}
}

// Comments streams one issue's comments in retrieval order.
func (s *Service) Comments(ctx context.Context, number int, handler func(issue.Comment) error) error {
	opt := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: pageSize},
	}
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		page, resp, err := s.client.Issues.ListComments(ctx, s.owner, s.name, number, opt)
		if err != nil {
			return errors.Wrapf(classify(err, nil), "unable to list comments of issue #%d", number)
		}
		for _, gh := range page {
			if err := handler(convertComment(gh)); err != nil {
				return err
			}
		}
		if resp.NextPage == 0 {
			return nil
		}
		opt.Page = resp.NextPage
	}
}

// Events streams one issue's lifecycle events in retrieval order.
func (s *Service) Events(ctx context.Context, number int, handler func(issue.Event) error) error {
	opt := &github.ListOptions{PerPage: pageSize}
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		page, resp, err := s.client.Issues.ListIssueEvents(ctx, s.owner, s.name, number, opt)
		if err != nil {
			return errors.Wrapf(classify(err, nil), "unable to list events of issue #%d", number)
		}
		for _, gh := range page {
			if err := handler(convertEvent(gh)); err != nil {
				return err
			}
		}
		if resp.NextPage == 0 {
			return nil
		}
		opt.Page = resp.NextPage
	}
}

func convertUser(u *github.User) issue.User {
	out := issue.User{
		Login: u.GetLogin(),
		Name:  u.GetName(),
		Email: u.GetEmail(),
	}
	if out.Email == "" {
		// The tracker withholds most users' addresses; fall
		// back to GitHub's noreply convention so the user can
		// still be rendered as a well-formed mail address.
		out.Email = out.Login + "@users.noreply.github.com"
	}
	return out
}

func convertIssue(gh *github.Issue) issue.Issue {
	out := issue.Issue{
		Number:   gh.GetNumber(),
		Title:    gh.GetTitle(),
		Body:     gh.GetBody(),
		Author:   convertUser(gh.GetUser()),
		Created:  gh.GetCreatedAt().Time,
		Comments: gh.GetComments(),
	}
	if gh.Assignee != nil {
		u := convertUser(gh.Assignee)
		out.Assignee = &u
	}
	for _, l := range gh.Labels {
		out.Labels = append(out.Labels, l.GetName())
	}
	return out
}

func convertComment(gh *github.IssueComment) issue.Comment {
	return issue.Comment{
		ID:      gh.GetID(),
		Author:  convertUser(gh.GetUser()),
		Body:    gh.GetBody(),
		Created: gh.GetCreatedAt().Time,
	}
}

func convertEvent(gh *github.IssueEvent) issue.Event {
	return issue.Event{
		ID:      gh.GetID(),
		Kind:    gh.GetEvent(),
		Actor:   convertUser(gh.GetActor()),
		Created: gh.GetCreatedAt().Time,
	}
}
