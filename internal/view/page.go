// Package view renders the New Contact page as templ components.
package view

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/conneroisu/contactform/internal/contact"
	"github.com/conneroisu/contactform/internal/validation"
)

const bootstrapCSS = "https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css"

// Paths used by the rendered markup.
const (
	SubmitPath = "/contacts/new"
	CancelPath = "/contacts/new/cancel"
	LivePath   = "/contacts/new/live"
)

// FormView is everything the page needs to render one form state.
type FormView struct {
	ID        string
	Draft     contact.Draft
	Validated bool
	Validity  validation.Result
	// Live adds the script that upgrades the page to a live session.
	Live bool
}

// ViewOf captures the current state of form.
func ViewOf(form *contact.Form) FormView {
	return FormView{
		ID:        form.ID(),
		Draft:     form.Draft(),
		Validated: form.Validated(),
		Validity:  form.Validity(),
	}
}

type control struct {
	field       contact.Field
	label       string
	placeholder string
	rows        int
}

// controls lists the inputs in display order.
var controls = []control{
	{field: contact.FieldFirstName, label: "First Name", placeholder: "First Name"},
	{field: contact.FieldLastName, label: "Last Name", placeholder: "Last Name"},
	{field: contact.FieldCompany, label: "Company", placeholder: "Company"},
	{field: contact.FieldEmail, label: "Email", placeholder: "example@example.com"},
	{field: contact.FieldPhoneNumber, label: "Phone", placeholder: "999-999-9999"},
	{field: contact.FieldNote, label: "Note", rows: 3},
}

// Groups are the options of the display-only Group select.
var Groups = []string{"Friends", "Other"}

// NewContactPage renders the full HTML document.
func NewContactPage(v FormView) templ.Component {
	return document("New Contact", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := ContactForm(v).Render(ctx, w); err != nil {
			return err
		}
		if v.Live {
			return liveScript().Render(ctx, w)
		}
		return nil
	}))
}

// ContactsPage is the landing page cancel navigates to. It only links back
// to the form; listing contacts is left to the contacts service.
func ContactsPage() templ.Component {
	return document("Contacts", templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div class="card text-center" id="contacts-card">`+
			`<div class="card-header">Contacts</div><div class="card-body">`+
			`<a class="btn btn-primary" href="`+templ.EscapeString(SubmitPath)+`">New Contact</a>`+
			`</div></div>`)
		return err
	}))
}

func document(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1">`+
			`<title>`+templ.EscapeString(title)+`</title>`+
			`<link rel="stylesheet" href="`+templ.EscapeString(bootstrapCSS)+`">`+
			`</head><body><main class="container" style="padding: 3.5rem; max-width: 800px">`); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

// ContactForm renders the card holding the form. It is also the fragment
// sent to live sessions.
func ContactForm(v FormView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		class := "needs-validation"
		if v.Validated {
			class += " was-validated"
		}

		b.WriteString(`<div class="card text-center" id="contact-card"><div class="card-header">New Contact</div>`)
		fmt.Fprintf(&b, `<form id="contact-form" class="%s" style="padding-top: 3.25rem" method="post" action="%s" novalidate>`,
			class, templ.EscapeString(SubmitPath))
		fmt.Fprintf(&b, `<input type="hidden" name="form_id" value="%s">`, templ.EscapeString(v.ID))

		b.WriteString(`<div class="card-body">`)
		for _, c := range controls {
			writeControl(&b, v, c)
		}
		writeGroupRow(&b)
		b.WriteString(`</div>`)

		b.WriteString(`<div class="card-footer"><div class="row justify-content-md-center">`)
		b.WriteString(`<div class="col-sm-6"><button type="submit" class="btn btn-primary">Save</button></div>`)
		fmt.Fprintf(&b, `<div class="col-sm-4"><button type="submit" class="btn btn-outline-secondary" formaction="%s" formnovalidate>Cancel</button></div>`,
			templ.EscapeString(CancelPath))
		b.WriteString(`</div></div></form></div>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeControl(b *strings.Builder, v FormView, c control) {
	name := c.field.Name()
	id := "contact-" + name
	value := v.Draft.Value(c.field)

	inputClass := "form-control"
	state, invalid := v.Validity.Fields[name]
	if v.Validated && invalid {
		inputClass += " is-invalid"
	}

	required := ""
	if c.field.Required() {
		required = " required"
	}

	b.WriteString(`<div class="row mb-3">`)
	fmt.Fprintf(b, `<label class="col-sm-3 col-form-label" for="%s">%s</label><div class="col-sm-7">`, id, templ.EscapeString(c.label))

	if c.field.InputType() == validation.InputTextarea {
		fmt.Fprintf(b, `<textarea class="%s" id="%s" name="%s" rows="%d" placeholder="%s"%s>%s</textarea>`,
			inputClass, id, name, c.rows, templ.EscapeString(c.placeholder), required, templ.EscapeString(value))
	} else {
		fmt.Fprintf(b, `<input class="%s" id="%s" name="%s" type="%s" placeholder="%s" value="%s"%s>`,
			inputClass, id, name, c.field.InputType(), templ.EscapeString(c.placeholder), templ.EscapeString(value), required)
	}

	if v.Validated && invalid {
		fmt.Fprintf(b, `<div class="invalid-feedback">%s</div>`,
			templ.EscapeString(state.Message(c.field.InputType())))
	}
	b.WriteString(`</div></div>`)
}

// writeGroupRow renders the Group select and its Add Group button. The
// select is display only; the button submits the form like Save.
func writeGroupRow(b *strings.Builder) {
	b.WriteString(`<div class="row mb-3"><label class="col-sm-3 col-form-label" for="contact-group">Group</label>`)
	b.WriteString(`<div class="col-sm-4"><select class="form-select" id="contact-group" name="group">`)
	b.WriteString(`<option value="">Select group</option>`)
	for _, g := range Groups {
		fmt.Fprintf(b, `<option value="%s">%s</option>`, templ.EscapeString(g), templ.EscapeString(g))
	}
	b.WriteString(`</select></div>`)
	b.WriteString(`<div class="col-sm-3"><button type="submit" class="btn btn-light">Add Group</button></div></div>`)
}

// liveScript upgrades the page: input events become change messages, the
// buttons become submit and cancel messages, and state replies re-render
// the card.
func liveScript() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<script>
(() => {
  const form = document.getElementById("contact-form");
  const proto = location.protocol === "https:" ? "wss:" : "ws:";
  const ws = new WebSocket(proto + "//" + location.host + "`+LivePath+`?form_id=" + encodeURIComponent(form.form_id.value));
  const send = (msg) => ws.readyState === WebSocket.OPEN && ws.send(JSON.stringify(msg));
  document.addEventListener("input", (e) => {
    if (e.target.form && e.target.name && e.target.name !== "group") {
      send({type: "change", field: e.target.name, value: e.target.value});
    }
  });
  document.addEventListener("submit", (e) => {
    if (ws.readyState !== WebSocket.OPEN) return;
    e.preventDefault();
    send({type: e.submitter && e.submitter.hasAttribute("formaction") ? "cancel" : "submit"});
  });
  ws.onmessage = (e) => {
    const msg = JSON.parse(e.data);
    if (msg.type === "navigate") { location.assign(msg.location); return; }
    if (msg.type !== "state") return;
    const f = document.getElementById("contact-form");
    f.classList.toggle("was-validated", msg.validated);
    for (const el of f.querySelectorAll("[name]")) {
      if (el.type === "hidden" || el.name === "group") continue;
      el.classList.toggle("is-invalid", msg.validated && !!(msg.invalid || {})[el.name]);
    }
  };
})();
</script>`)
		return err
	})
}
