package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"net/mail"
	texttemplate "text/template"
	"time"
)

type template struct {
	subject string
	text    string
}

var templates = map[Kind]template{
	KindSubmissionReceived: {
		subject: "New submission waiting for a coach",
		text:    "The submission \"{{.Title}}\" has been uploaded and is waiting to be claimed.",
	},
	KindReviewPublished: {
		subject: "Your review is ready",
		text:    "Your coach has published feedback on \"{{.Title}}\".",
	},
	KindFollowupRequested: {
		subject: "Follow-up requested",
		text: "The athlete asked a follow-up question on \"{{.Title}}\"." +
			"{{with .Deadline}} Please respond by {{fmtTime .}}.{{end}}",
	},
	KindSubmReassigned: {
		subject: "A submission was assigned to you",
		text:    "The submission \"{{.Title}}\" has been reassigned to you.",
	},
}

var funcs = map[string]any{
	"fmtTime": func(t *time.Time) string {
		return t.UTC().Format("2006-01-02 15:04 MST")
	},
}

var (
	textTemplates = map[Kind]*texttemplate.Template{}
	htmlTemplates = map[Kind]*htmltemplate.Template{}
)

func init() {
	for kind, tmpl := range templates {
		textTemplates[kind] = texttemplate.Must(texttemplate.New(string(kind)).Funcs(funcs).Parse(tmpl.text))
		htmlTemplates[kind] = htmltemplate.Must(htmltemplate.New(string(kind)).Funcs(funcs).Parse("<p>" + tmpl.text + "</p>"))
	}
}

// Render builds the message for kind addressed to to.
func Render(kind Kind, to mail.Address, p Payload) (Message, error) {
	tmpl, ok := templates[kind]
	if !ok {
		return Message{}, fmt.Errorf("unknown notification kind %q", kind)
	}

	var text, html bytes.Buffer
	if err := textTemplates[kind].Execute(&text, p); err != nil {
		return Message{}, fmt.Errorf("failed to render text: %w", err)
	}
	if err := htmlTemplates[kind].Execute(&html, p); err != nil {
		return Message{}, fmt.Errorf("failed to render html: %w", err)
	}

	return Message{
		Kind:    kind,
		To:      to,
		Subject: tmpl.subject,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
