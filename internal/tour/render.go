package tour

import (
	"bytes"
	"encoding/json"
	"html/template"

	"lbry-tech/internal/message"
)

var successTmpl = template.Must(template.New("success").Parse(
	`<p style="text-align: center;">Success! Here is the response for <strong>{{.Target}}</strong>:</p>` +
		`<pre><code class="json">{{.JSON}}</code></pre>` +
		`<button class="__button-black" data-action="tour, step 2" type="button">Go to next step</button>` +
		`<script>$('#temp-loader').remove();</script>`,
))

type successView struct {
	Target string
	JSON   string
}

// renderSuccess builds the result panel around the pretty-printed daemon
// response.
func renderSuccess(req message.TourRequest, res []byte) (string, error) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, res, "", "  "); err != nil {
		return "", err
	}

	target := req.Method
	if req.Claim != "" {
		target = "lbry://" + req.Claim
	}

	var buf bytes.Buffer
	err := successTmpl.Execute(&buf, successView{
		Target: target,
		JSON:   pretty.String(),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
