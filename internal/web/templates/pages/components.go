// Package pages holds the full-page components served by the web handlers
package pages

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/mcoot/fxdesk/internal/model"
	"github.com/mcoot/fxdesk/internal/services/browser"
	"github.com/mcoot/fxdesk/internal/web/templates/layout"
)

// Notice is an inline result message shown above a form
type Notice = layout.FlashMessage

func render(fn func(ctx context.Context, hw *layout.Writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := layout.NewWriter(w)
		fn(ctx, hw)
		return hw.Err()
	})
}

func notices(hw *layout.Writer, list []Notice) {
	for _, n := range list {
		hw.Printf("<div class=\"alert alert-%s\">%s</div>\n", n.Type, n.Message)
	}
}

// dataTable renders a read-only table of the given columns
func dataTable(hw *layout.Writer, t *browser.Table, columns []string) {
	hw.Raw("<table class=\"data-table\">\n<thead><tr>")
	for _, c := range columns {
		hw.Printf("<th>%s</th>", c)
	}
	hw.Raw("</tr></thead>\n<tbody>\n")
	for i := range t.Rows {
		hw.Printf("<tr data-id=\"%s\">", t.RowID(i))
		for _, c := range columns {
			hw.Printf("<td>%s</td>", t.Cell(i, c))
		}
		hw.Raw("</tr>\n")
	}
	hw.Raw("</tbody>\n</table>\n")
}

// options renders select options, marking selected
func options(hw *layout.Writer, values []string, selected string) {
	for _, v := range values {
		hw.Printf("<option value=\"%s\"%s>%s</option>", v, layout.Attr("selected", v == selected), v)
	}
}

func itoa(i int) string {
	return strconv.Itoa(i)
}

// targetForm lets the user pick the collection an action works on. Names
// are free text with the known ones offered as suggestions.
func targetForm(hw *layout.Writer, action model.Action, databases, collections []string, target model.Target) {
	hw.Printf("<form class=\"target-form\" method=\"post\" action=\"/db/%s/target\">\n", string(action))
	hw.Printf("<label>Database <input name=\"database\" list=\"databases\" value=\"%s\" required></label>\n", target.Database)
	hw.Raw("<datalist id=\"databases\">")
	options(hw, databases, "")
	hw.Raw("</datalist>\n")
	hw.Printf("<label>Collection <input name=\"collection\" list=\"collections\" value=\"%s\" required></label>\n", target.Collection)
	hw.Raw("<datalist id=\"collections\">")
	options(hw, collections, "")
	hw.Raw("</datalist>\n")
	hw.Raw("<button type=\"submit\">Select</button>\n</form>\n")
}
