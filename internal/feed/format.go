package feed

import (
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Role selects which side of an event a link points at.
type Role string

const (
	RoleActor Role = "actor"
	RoleRepo  Role = "repo"
)

const githubWeb = "https://github.com/"

// EventURL returns the public web page for the event's actor or repo.
func EventURL(role Role, ev *Event) string {
	switch role {
	case RoleActor:
		return githubWeb + ev.Actor.Login
	case RoleRepo:
		return githubWeb + ev.Repo.Name
	default:
		return ""
	}
}

// DescribeEvent returns the verb phrase that sits between the actor and
// the repo name, e.g. "pushed to master in".
func DescribeEvent(ev *Event) string {
	p := ev.details()

	switch ev.Type {
	case "CommitCommentEvent":
		return "commented on a commit in"
	case "CreateEvent":
		if p.RefType == "repository" {
			return "created the repository"
		}
		return "created " + p.RefType + " " + p.Ref + " in"
	case "DeleteEvent":
		return "deleted " + p.RefType + " " + p.Ref + " in"
	case "ForkEvent":
		return "forked"
	case "GollumEvent":
		return "updated the wiki in"
	case "IssueCommentEvent":
		return "commented on issue " + issueNumber(p) + " in"
	case "IssuesEvent":
		return p.Action + " issue " + issueNumber(p) + " in"
	case "MemberEvent":
		return p.Action + " a collaborator to"
	case "PublicEvent":
		return "open-sourced"
	case "PullRequestEvent":
		action := p.Action
		if action == "closed" && p.PullRequest != nil && p.PullRequest.Merged {
			action = "merged"
		}
		return action + " pull request " + pullNumber(p) + " in"
	case "PullRequestReviewEvent":
		return "reviewed pull request " + pullNumber(p) + " in"
	case "PullRequestReviewCommentEvent":
		return "commented on pull request " + pullNumber(p) + " in"
	case "PushEvent":
		return "pushed to " + strings.TrimPrefix(p.Ref, "refs/heads/") + " in"
	case "ReleaseEvent":
		tag := ""
		if p.Release != nil {
			tag = " " + p.Release.TagName
		}
		return p.Action + " release" + tag + " in"
	case "WatchEvent":
		return "starred"
	default:
		return "was active in"
	}
}

func issueNumber(p payload) string {
	if p.Issue == nil {
		return ""
	}
	return "#" + strconv.Itoa(p.Issue.Number)
}

func pullNumber(p payload) string {
	if p.PullRequest == nil {
		return ""
	}
	return "#" + strconv.Itoa(p.PullRequest.Number)
}

// displayZone is the fixed offset the "last updated" stamp is shown in.
var displayZone = time.FixedZone("EST", -4*60*60)

// lastUpdated formats now as ("2026·10·17", "3:04:05 pm").
func lastUpdated(now time.Time) (date, clock string) {
	t := now.In(displayZone)
	return t.Format("2006·01·02"), t.Format("3:04:05 pm")
}

// relativeDate renders t relative to now, e.g. "3 hours ago".
func relativeDate(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}
