package feed

import (
	"bytes"
	"html/template"
	"time"
)

var feedTmpl = template.Must(template.New("feed").Parse(`<h3>GitHub</h3>
<h5 class="last-updated">Last updated: {{.Date}} at {{.Clock}} EST</h5>
{{range .Items}}
<div class='github-feed__event'>
  <a href="{{.ActorURL}}" target="_blank" rel="noopener noreferrer">
    <img src="{{.AvatarURL}}" class="github-feed__event__avatar" alt=""/>
  </a>
  <p>
    <a href="{{.ActorURL}}" target="_blank" rel="noopener noreferrer"><strong>{{.Actor}}</strong></a>
    {{.Description}}
    <a href="{{.RepoURL}}" title="View this repo on GitHub" target="_blank" rel="noopener noreferrer"><strong>{{.Repo}}</strong></a>
    <em class="github-feed__event__time">{{.When}}</em>
  </p>
</div>
{{- end}}
`))

type feedView struct {
	Date  string
	Clock string
	Items []itemView
}

type itemView struct {
	ActorURL    string
	AvatarURL   string
	Actor       string
	Description string
	RepoURL     string
	Repo        string
	When        string
}

func renderFeed(events []*Event, now time.Time) (string, error) {
	view := feedView{Items: make([]itemView, 0, len(events))}
	view.Date, view.Clock = lastUpdated(now)

	for _, ev := range events {
		view.Items = append(view.Items, itemView{
			ActorURL:    EventURL(RoleActor, ev),
			AvatarURL:   ev.Actor.AvatarURL,
			Actor:       ev.Actor.Name(),
			Description: DescribeEvent(ev),
			RepoURL:     EventURL(RoleRepo, ev),
			Repo:        ev.Repo.Name,
			When:        relativeDate(ev.CreatedAt, now),
		})
	}

	var buf bytes.Buffer
	if err := feedTmpl.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}
