// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package github fetches bounded pull-request snapshots for agent
// consumption. Failures are rendered as descriptive strings rather than
// errors so the decision step can reason about them in natural language.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	// DefaultAPIBaseURL is the GitHub REST API endpoint.
	DefaultAPIBaseURL = "https://api.github.com"
	// DefaultTimeout bounds each API call.
	DefaultTimeout = 30 * time.Second

	maxDescriptionLen = 500
	maxListedFiles    = 10
	maxComments       = 5
	maxCommentLen     = 100
)

var prURLPattern = regexp.MustCompile(`^https://github\.com/([^/\s]+)/([^/\s]+)/pull/(\d+)$`)

// prURLSearch finds a PR URL embedded in free-form text.
var prURLSearch = regexp.MustCompile(`https://github\.com/[^/\s]+/[^/\s]+/pull/\d+`)

// Client talks to the GitHub REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Config holds configuration for the GitHub client.
type Config struct {
	BaseURL string // Default: https://api.github.com
	Token   string // Optional; unauthenticated requests are rate-limited hard
	Timeout time.Duration
}

// NewClient creates a GitHub API client.
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultAPIBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		token:   config.Token,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// ExtractPRURL finds the first GitHub PR URL in free-form input and
// returns it with the remaining request text. When no extra text is
// supplied the defaultRequest is returned instead.
func ExtractPRURL(input, defaultRequest string) (prURL, request string, err error) {
	match := prURLSearch.FindString(input)
	if match == "" {
		return "", "", fmt.Errorf("no GitHub pull request URL found in input")
	}
	rest := strings.TrimSpace(strings.Replace(input, match, "", 1))
	if rest == "" {
		rest = defaultRequest
	}
	return match, rest, nil
}

// pullResponse is the subset of the pulls API payload we render.
type pullResponse struct {
	Title        string `json:"title"`
	Body         string `json:"body"`
	State        string `json:"state"`
	Draft        bool   `json:"draft"`
	Merged       bool   `json:"merged"`
	ChangedFiles int    `json:"changed_files"`
	Additions    int    `json:"additions"`
	Deletions    int    `json:"deletions"`
	User         struct {
		Login string `json:"login"`
	} `json:"user"`
}

type fileResponse struct {
	Filename string `json:"filename"`
}

type commentResponse struct {
	Body string `json:"body"`
	User struct {
		Login string `json:"login"`
	} `json:"user"`
}

// FetchPRInfo returns a bounded textual snapshot of a pull request:
// title, author, state, description, file list, change counts and
// recent comments. The URL shape is validated before any network call;
// malformed input and API failures both come back as diagnostic
// strings, never as raised errors.
func (c *Client) FetchPRInfo(ctx context.Context, prURL string) string {
	match := prURLPattern.FindStringSubmatch(strings.TrimSpace(prURL))
	if match == nil {
		return fmt.Sprintf("Invalid PR URL format: %s", prURL)
	}
	owner, repo, num := match[1], match[2], match[3]

	var pr pullResponse
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/pulls/%s", owner, repo, num), &pr); err != nil {
		return fmt.Sprintf("Error fetching PR: %v", err)
	}

	var files []fileResponse
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/pulls/%s/files?per_page=%d", owner, repo, num, maxListedFiles), &files); err != nil {
		return fmt.Sprintf("Error fetching PR files: %v", err)
	}

	// Comment fetch failures are tolerable; the snapshot is still useful.
	var comments []commentResponse
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/issues/%s/comments?per_page=%d", owner, repo, num, maxComments), &comments); err != nil {
		comments = nil
	}

	return renderSnapshot(owner, repo, num, pr, files, comments)
}

func renderSnapshot(owner, repo, num string, pr pullResponse, files []fileResponse, comments []commentResponse) string {
	description := pr.Body
	if description == "" {
		description = "No description"
	} else {
		description = truncate(description, maxDescriptionLen)
	}

	draft := ""
	if pr.Draft {
		draft = " (Draft)"
	}

	names := make([]string, 0, len(files))
	for i, f := range files {
		if i >= maxListedFiles {
			break
		}
		names = append(names, f.Filename)
	}

	rendered := make([]string, 0, len(comments))
	for i, cm := range comments {
		if i >= maxComments {
			break
		}
		body := truncate(cm.Body, maxCommentLen)
		rendered = append(rendered, fmt.Sprintf("%s: %s", cm.User.Login, body))
	}
	commentLine := "No comments"
	if len(rendered) > 0 {
		commentLine = strings.Join(rendered, "; ")
	}

	mergeStatus := "Not merged"
	if pr.Merged {
		mergeStatus = "Merged"
	}

	return fmt.Sprintf(
		"PR #%s in %s/%s\n"+
			"Title: %s\n"+
			"Author: %s\n"+
			"State: %s%s\n"+
			"Description: %s\n"+
			"Files changed: %d files (%d additions, %d deletions)\n"+
			"Files: %s\n"+
			"Merge status: %s\n"+
			"Comments: %s",
		num, owner, repo,
		pr.Title,
		pr.User.Login,
		pr.State, draft,
		description,
		pr.ChangedFiles, pr.Additions, pr.Deletions,
		strings.Join(names, ", "),
		mergeStatus,
		commentLine)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GitHub API returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// truncate caps s at n characters without splitting a multi-byte rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
