// Package vcs defines the platform-neutral types the reminder workflow operates on
package vcs

import (
	"strings"
	"time"
)

// EventLabeled is the issue event type recorded when a label is applied.
const EventLabeled = "labeled"

// automationSuffix marks logins owned by GitHub Apps.
const automationSuffix = "[bot]"

// Candidate is an open issue or pull request returned by the label query
type Candidate struct {
	Number        int
	Author        string
	Title         string
	IsPullRequest bool
}

// LabelEvent is one entry of an issue's event timeline that carries a label
type LabelEvent struct {
	Type      string
	Label     string
	CreatedAt time.Time
}

// AuthorKind tells human comment authors apart from automation
type AuthorKind int

const (
	// AuthorHuman is any account that is not an automation identity
	AuthorHuman AuthorKind = iota
	// AuthorAutomated is a bot account or a GitHub App login
	AuthorAutomated
)

func (k AuthorKind) String() string {
	if k == AuthorAutomated {
		return "automated"
	}
	return "human"
}

// ResolveAuthorKind classifies an account from its user type and login.
func ResolveAuthorKind(userType, login string) AuthorKind {
	if strings.EqualFold(userType, "Bot") || strings.HasSuffix(strings.ToLower(login), automationSuffix) {
		return AuthorAutomated
	}
	return AuthorHuman
}

// Comment represents a comment on an issue
type Comment struct {
	ID         int64
	Author     string
	AuthorKind AuthorKind
	Body       string
	CreatedAt  time.Time
}
