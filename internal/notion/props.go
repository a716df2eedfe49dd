// Package notion wraps the Notion API for the candidate and onboarding
// databases. The databases own every record; this system only queries and
// patches them.
package notion

import (
	"strings"

	"github.com/jomei/notionapi"
)

// PropValue flattens a page property to its display string. Unknown or
// absent property types return "".
func PropValue(page *notionapi.Page, name string) string {
	if page == nil || page.Properties == nil {
		return ""
	}
	prop, ok := page.Properties[name]
	if !ok {
		return ""
	}
	switch p := prop.(type) {
	case *notionapi.SelectProperty:
		return p.Select.Name
	case *notionapi.StatusProperty:
		return p.Status.Name
	case *notionapi.TitleProperty:
		return richTextPlain(p.Title)
	case *notionapi.EmailProperty:
		return p.Email
	case *notionapi.RichTextProperty:
		return richTextPlain(p.RichText)
	case *notionapi.DateProperty:
		if p.Date != nil && p.Date.Start != nil {
			return p.Date.Start.String()
		}
		return ""
	case *notionapi.CheckboxProperty:
		if p.Checkbox {
			return "Yes"
		}
		return ""
	}
	return ""
}

// MultiSelectValues returns the option names of a multi_select property.
func MultiSelectValues(page *notionapi.Page, name string) []string {
	if page == nil || page.Properties == nil {
		return nil
	}
	prop, ok := page.Properties[name].(*notionapi.MultiSelectProperty)
	if !ok {
		return nil
	}
	values := make([]string, 0, len(prop.MultiSelect))
	for _, opt := range prop.MultiSelect {
		if opt.Name != "" {
			values = append(values, opt.Name)
		}
	}
	return values
}

func richTextPlain(parts []notionapi.RichText) string {
	var b strings.Builder
	for _, part := range parts {
		b.WriteString(part.PlainText)
	}
	return strings.TrimSpace(b.String())
}
