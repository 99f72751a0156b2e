package web

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/aretw0/jotter/pkg/core"
)

// pageView is everything the single page needs to render.
type pageView struct {
	LoggedIn bool
	Input    string
	Message  string
	Sort     core.Directive
	Items    []string
}

var sortOptions = []core.Directive{core.NewestToOldest, core.OldestToNewest}

func sortLabel(d core.Directive) string {
	switch d {
	case core.NewestToOldest:
		return "Newest to oldest"
	case core.OldestToNewest:
		return "Oldest to newest"
	default:
		return string(d)
	}
}

// draftScript posts every keystroke; the server coalesces them.
const draftScript = `document.getElementById("note-input-field").addEventListener("input", function (e) {
  fetch("/draft", {method: "POST", body: new URLSearchParams({content: e.target.value})});
});`

// page renders the login screen or the notes screen.
func page(v pageView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>Notes</title></head><body>`); err != nil {
			return err
		}

		var body templ.Component
		if v.LoggedIn {
			body = notesScreen(v)
		} else {
			body = loginScreen()
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}

		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

func loginScreen() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<form method="post" action="/login"><button id="login-button" type="submit">Login</button></form>`)
		return err
	})
}

func notesScreen(v pageView) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var err error
		write := func(format string, args ...any) {
			if err == nil {
				_, err = fmt.Fprintf(w, format, args...)
			}
		}

		write(`<form method="post" action="/logout"><button id="logout-button" type="submit">Logout</button></form>`)
		write(`<div id="notes-container">`)
		if v.Message != "" {
			write(`<p id="message" role="alert">%s</p>`, templ.EscapeString(v.Message))
		}
		write(`<form method="post" action="/notes"><textarea id="note-input-field" name="content" data-draft-url="/draft">%s</textarea><button type="submit">Save</button></form>`,
			templ.EscapeString(v.Input))

		write(`<form method="post" action="/sort"><select id="sort-preference" name="sort">`)
		for _, d := range sortOptions {
			selected := ""
			if d == v.Sort {
				selected = " selected"
			}
			write(`<option value="%s"%s>%s</option>`, templ.EscapeString(string(d)), selected, templ.EscapeString(sortLabel(d)))
		}
		write(`</select><button type="submit">Sort</button></form>`)

		write(`<div id="notes-list-container"><ul id="notes-list">`)
		for _, item := range v.Items {
			write(`<li>%s</li>`, templ.EscapeString(item))
		}
		write(`</ul></div></div>`)
		write(`<script>%s</script>`, draftScript)
		return err
	})
}
