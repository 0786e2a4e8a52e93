package html

import (
	"bytes"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/goliatone/go-formscreen/pkg/model"
	"github.com/goliatone/go-formscreen/pkg/render"
)

// NewDefaultRegistry returns a registry with a control for every built-in
// field type.
func NewDefaultRegistry() *Registry {
	registry := NewRegistry()

	input := Descriptor{Renderer: templateControl("forms.input", "input")}
	registry.MustRegister(model.FieldTypeText, input)
	registry.MustRegister(model.FieldTypeEmail, input)
	registry.MustRegister(model.FieldTypePassword, input)
	registry.MustRegister(model.FieldTypeNumber, input)

	registry.MustRegister(model.FieldTypeTextarea, Descriptor{
		Renderer: templateControl("forms.textarea", "textarea"),
	})
	selectControl := Descriptor{Renderer: templateControl("forms.select", "select")}
	registry.MustRegister(model.FieldTypeSelect, selectControl)
	registry.MustRegister(model.FieldTypeMultiSelect, selectControl)
	registry.MustRegister(model.FieldTypeRadio, Descriptor{
		Renderer:  templateControl("forms.radio", "radio"),
		OwnsLabel: true,
	})
	registry.MustRegister(model.FieldTypeCheckbox, Descriptor{
		Renderer:  templateControl("forms.checkbox", "checkbox"),
		OwnsLabel: true,
	})
	registry.MustRegister(model.FieldTypeMultiFile, Descriptor{
		Renderer: templateControl("forms.file", "file"),
	})
	registry.MustRegister(model.FieldTypeGroup, Descriptor{
		Renderer:  groupControl,
		OwnsLabel: true,
	})
	registry.MustRegister(model.FieldTypeArray, Descriptor{
		Renderer:  arrayControl,
		OwnsLabel: true,
	})

	return registry
}

// templateControl renders templateName, or the theme partial registered
// under partialKey when one is configured.
func templateControl(partialKey, templateName string) ControlRenderer {
	return func(buf *bytes.Buffer, field Field, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("html: template renderer not configured for %q", templateName)
		}

		resolved := templateName
		if candidate := strings.TrimSpace(data.ThemePartials[partialKey]); candidate != "" {
			resolved = candidate
		}

		rendered, err := data.Template.RenderTemplate(resolved, map[string]any{
			"field": controlView(field),
		})
		if err != nil {
			return fmt.Errorf("html: render template %q: %w", resolved, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}

// groupControl renders children inline. Group children share the parent
// namespace, so their input names carry no group segment.
func groupControl(buf *bytes.Buffer, field Field, data ComponentData) error {
	children, err := data.RenderFields(field.Fields, field.Prefix)
	if err != nil {
		return err
	}

	buf.WriteString(`<fieldset class="fs-group" id="`)
	buf.WriteString(html.EscapeString(field.ID))
	buf.WriteString("\">\n")
	if label := strings.TrimSpace(field.Label); label != "" {
		buf.WriteString("<legend>")
		buf.WriteString(html.EscapeString(label))
		buf.WriteString("</legend>\n")
	}
	buf.WriteString(children)
	buf.WriteString("</fieldset>")
	return nil
}

// arrayControl renders one block per repetition with a remove button and an
// add button after the last one. Buttons submit the form with an _action
// value the server applies before re-rendering.
func arrayControl(buf *bytes.Buffer, field Field, data ComponentData) error {
	itemLabel := strings.TrimSpace(field.ItemLabel)
	if itemLabel == "" {
		itemLabel = field.Label
	}

	buf.WriteString(`<fieldset class="fs-array" id="`)
	buf.WriteString(html.EscapeString(field.ID))
	buf.WriteString("\">\n")
	if label := strings.TrimSpace(field.Label); label != "" {
		buf.WriteString("<legend>")
		buf.WriteString(html.EscapeString(label))
		if field.Required {
			buf.WriteString(` <span class="fs-required" aria-hidden="true">*</span>`)
		}
		buf.WriteString("</legend>\n")
	}
	writeHidden(buf, render.ItemCountField(field.Path), strconv.Itoa(field.Items))

	removeText := data.T("form.remove", "Remove", nil)
	for i := 0; i < field.Items; i++ {
		prefix := field.Path + "." + strconv.Itoa(i) + "."
		children, err := data.RenderFields(field.Fields, prefix)
		if err != nil {
			return err
		}
		buf.WriteString(`<div class="fs-array-item" data-index="`)
		buf.WriteString(strconv.Itoa(i))
		buf.WriteString("\">\n")
		buf.WriteString(`<div class="fs-array-item-header"><span>`)
		buf.WriteString(html.EscapeString(fmt.Sprintf("%s %d", itemLabel, i+1)))
		buf.WriteString(`</span> `)
		writeActionButton(buf, render.RemoveItemAction(field.Path, i), removeText)
		buf.WriteString("</div>\n")
		buf.WriteString(children)
		buf.WriteString("</div>\n")
	}

	addText := data.T("form.add", "Add "+itemLabel, map[string]any{"Label": itemLabel})
	writeActionButton(buf, render.AddItemAction(field.Path), addText)
	buf.WriteString("\n</fieldset>")
	return nil
}

func writeActionButton(buf *bytes.Buffer, action, text string) {
	buf.WriteString(`<button type="submit" name="`)
	buf.WriteString(render.ActionField)
	buf.WriteString(`" value="`)
	buf.WriteString(html.EscapeString(action))
	buf.WriteString(`" formnovalidate>`)
	buf.WriteString(html.EscapeString(text))
	buf.WriteString(`</button>`)
}

func writeHidden(buf *bytes.Buffer, name, value string) {
	buf.WriteString(`<input type="hidden" name="`)
	buf.WriteString(html.EscapeString(name))
	buf.WriteString(`" value="`)
	buf.WriteString(html.EscapeString(value))
	buf.WriteString("\">\n")
}
