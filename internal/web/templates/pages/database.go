package pages

import (
	"context"

	"github.com/a-h/templ"

	"github.com/mcoot/fxdesk/internal/model"
	"github.com/mcoot/fxdesk/internal/services/browser"
	"github.com/mcoot/fxdesk/internal/services/coercion"
	"github.com/mcoot/fxdesk/internal/web/templates/layout"
)

// InsertField is one column of the insert form
type InsertField struct {
	Name string
	Type coercion.FieldType
	// Fixed fields come from the existing documents and cannot be renamed.
	// Their type is only the default of the select.
	Fixed bool
}

// DatabaseData holds data for the database management pages
type DatabaseData struct {
	layout.PageData
	Action      model.Action
	Databases   []string
	Collections []string
	Target      model.Target
	HasTarget   bool
	Notices     []Notice

	// Fetch, update and delete
	Table *browser.Table

	// Insert
	Fields []InsertField
	Rows   int
}

// Database renders the database management page for one action
func Database(data DatabaseData) templ.Component {
	return layout.Base(data.PageData, render(func(ctx context.Context, hw *layout.Writer) {
		actionMenu(hw, data.Action)
		notices(hw, data.Notices)

		if data.Action == model.ActionCreate {
			createForm(hw, data)
			return
		}

		targetForm(hw, data.Action, data.Databases, data.Collections, data.Target)
		if !data.HasTarget {
			return
		}
		hw.Printf("<h2 class=\"target\">%s</h2>\n", data.Target.String())

		switch data.Action {
		case model.ActionInsert:
			insertForm(hw, data)
		case model.ActionFetch:
			if data.Table != nil {
				dataTable(hw, data.Table, data.Table.Columns)
			}
		case model.ActionUpdate:
			if data.Table != nil {
				updateForm(hw, data.Table)
			}
		case model.ActionDelete:
			if data.Table != nil {
				deleteForm(hw, data.Table)
			}
		}
	}))
}

func actionMenu(hw *layout.Writer, active model.Action) {
	hw.Raw("<nav class=\"actions\">\n")
	for _, a := range model.Actions {
		class := "action"
		if a == active {
			class += " active"
		}
		hw.Printf("<a class=\"%s\" href=\"/db/%s\">%s</a>\n", class, string(a), a.Label())
	}
	hw.Raw("</nav>\n")
}

func createForm(hw *layout.Writer, data DatabaseData) {
	hw.Raw("<form class=\"create-form\" method=\"post\" action=\"/db/create\">\n")
	hw.Raw("<label>Database <input name=\"database\" list=\"databases\" required></label>\n")
	hw.Raw("<datalist id=\"databases\">")
	options(hw, data.Databases, "")
	hw.Raw("</datalist>\n")
	hw.Raw("<label>Collection <input name=\"collection\" required></label>\n")
	hw.Raw("<button type=\"submit\">Create</button>\n</form>\n")
}

func typeNames() []string {
	names := make([]string, len(coercion.FieldTypes))
	for i, t := range coercion.FieldTypes {
		names[i] = string(t)
	}
	return names
}

func insertForm(hw *layout.Writer, data DatabaseData) {
	// Resizing the form reloads it with new counts
	hw.Raw("<form class=\"insert-size\" method=\"get\" action=\"/db/insert\">\n")
	hw.Printf("<label>Rows <input type=\"number\" name=\"rows\" min=\"1\" value=\"%s\"></label>\n", itoa(data.Rows))
	if !fixedSchema(data.Fields) {
		hw.Printf("<label>Fields <input type=\"number\" name=\"fields\" min=\"1\" value=\"%s\"></label>\n", itoa(len(data.Fields)))
	}
	hw.Raw("<button type=\"submit\">Resize</button>\n</form>\n")

	hw.Raw("<form class=\"insert-form\" method=\"post\" action=\"/db/insert\">\n")
	hw.Printf("<input type=\"hidden\" name=\"field_count\" value=\"%s\">\n", itoa(len(data.Fields)))
	hw.Printf("<input type=\"hidden\" name=\"row_count\" value=\"%s\">\n", itoa(data.Rows))
	hw.Raw("<table class=\"insert-table\">\n<thead><tr>")
	for i, f := range data.Fields {
		n := itoa(i)
		if f.Fixed {
			hw.Printf("<th>%s<input type=\"hidden\" name=\"field_name_%s\" value=\"%s\">", f.Name, n, f.Name)
		} else {
			hw.Printf("<th><input name=\"field_name_%s\" value=\"%s\" placeholder=\"Field name\">", n, f.Name)
		}
		hw.Printf("<select name=\"field_type_%s\">", n)
		options(hw, typeNames(), string(f.Type))
		hw.Raw("</select></th>")
	}
	hw.Raw("</tr></thead>\n<tbody>\n")
	for row := range data.Rows {
		hw.Raw("<tr>")
		for i := range data.Fields {
			hw.Printf("<td><input name=\"value_%s_%s\"></td>", itoa(row), itoa(i))
		}
		hw.Raw("</tr>\n")
	}
	hw.Raw("</tbody>\n</table>\n")
	hw.Raw("<button type=\"submit\">Insert</button>\n</form>\n")
}

func fixedSchema(fields []InsertField) bool {
	for _, f := range fields {
		if !f.Fixed {
			return false
		}
	}
	return len(fields) > 0
}

func updateForm(hw *layout.Writer, t *browser.Table) {
	columns := t.VisibleColumns()
	suggested := coercion.SuggestSchema(t.Rows)
	hw.Raw("<form class=\"update-form\" method=\"post\" action=\"/db/update\">\n")
	hw.Printf("<input type=\"hidden\" name=\"row_count\" value=\"%s\">\n", itoa(len(t.Rows)))
	hw.Printf("<input type=\"hidden\" name=\"col_count\" value=\"%s\">\n", itoa(len(columns)))
	hw.Raw("<table class=\"data-table editable\">\n<thead><tr><th></th>")
	for j, c := range columns {
		hw.Printf("<th>%s<input type=\"hidden\" name=\"col_%s\" value=\"%s\">", c, itoa(j), c)
		hw.Printf("<select name=\"col_type_%s\">", itoa(j))
		options(hw, typeNames(), string(suggested[c]))
		hw.Raw("</select></th>")
	}
	hw.Raw("</tr></thead>\n<tbody>\n")
	for i := range t.Rows {
		id := t.RowID(i)
		hw.Printf("<tr data-id=\"%s\"><td class=\"row-id\"><input type=\"hidden\" name=\"row_id_%s\" value=\"%s\"></td>", id, itoa(i), id)
		for j, c := range columns {
			hw.Printf("<td><input name=\"cell_%s_%s\" value=\"%s\"></td>", itoa(i), itoa(j), t.Cell(i, c))
		}
		hw.Raw("</tr>\n")
	}
	hw.Raw("</tbody>\n</table>\n")
	hw.Raw("<button type=\"submit\">Save changes</button>\n</form>\n")
}

func deleteForm(hw *layout.Writer, t *browser.Table) {
	columns := t.VisibleColumns()
	hw.Raw("<form class=\"delete-form\" method=\"post\" action=\"/db/delete\">\n")
	hw.Raw("<table class=\"data-table\">\n<thead><tr><th>Delete</th>")
	for _, c := range columns {
		hw.Printf("<th>%s</th>", c)
	}
	hw.Raw("</tr></thead>\n<tbody>\n")
	for i := range t.Rows {
		id := t.RowID(i)
		hw.Printf("<tr data-id=\"%s\"><td><input type=\"checkbox\" name=\"id\" value=\"%s\"></td>", id, id)
		for _, c := range columns {
			hw.Printf("<td>%s</td>", t.Cell(i, c))
		}
		hw.Raw("</tr>\n")
	}
	hw.Raw("</tbody>\n</table>\n")
	hw.Raw("<fieldset class=\"confirm\"><legend>Confirm deletion</legend>\n")
	hw.Raw("<label><input type=\"checkbox\" name=\"confirm\" value=\"yes\"> I understand the selected rows will be permanently deleted</label>\n")
	hw.Raw("<label>Secondary password <input type=\"password\" name=\"secondary_password\" required></label>\n")
	hw.Raw("</fieldset>\n")
	hw.Raw("<button type=\"submit\" class=\"danger\">Delete selected</button>\n</form>\n")
}
