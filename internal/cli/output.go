package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mcoot/fxdesk/internal/api/response"
	"github.com/mcoot/fxdesk/internal/model"
	"github.com/mcoot/fxdesk/internal/services/browser"
)

// Response types shared with the API
type (
	HealthResult = response.Health
	AuthResult   = response.AuthResponse
	Comparison   = response.Comparison
	Databases    = response.Databases
	Collections  = response.Collections
	Documents    = response.Documents
	BatchResult  = response.BatchResult
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	if w == nil {
		w = os.Stdout
	}
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\nStore: %s\n", v.Status, v.Store)
	case AuthResult:
		o.printAuthResult(v)
	case Comparison:
		o.printComparison(v)
	case Databases:
		o.printList(v.Databases)
	case Collections:
		o.printList(v.Collections)
	case Documents:
		o.printDocuments(v)
	case BatchResult:
		o.printBatchResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printAuthResult(a AuthResult) {
	role := "user"
	if a.Admin {
		role = "admin"
	}
	fmt.Fprintf(o.w, "Logged in as %s (%s)\n", a.Username, role)
	fmt.Fprintf(o.w, "Token expires: %s\n", a.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
}

func (o *Output) printComparison(c Comparison) {
	fmt.Fprintf(o.w, "%s %s to %s over %d day(s)\n\n", c.Amount, c.From, c.To, c.Days)

	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "\tPrice\tRate %%\tConverted (%s)\tInterest\tTotal\t\n", c.To)
	for i, offer := range c.Offers {
		marker := ""
		if i+1 == c.Best {
			marker = " *"
		}
		fmt.Fprintf(tw, "Approach %d%s\t%s\t%s\t%s\t%s\t%s\t\n",
			i+1, marker, offer.Price, offer.RatePercent, offer.Converted, offer.Interest, offer.Total)
	}
	_ = tw.Flush()

	fmt.Fprintf(o.w, "\nApproach %d gives more %s.\n", c.Best, c.To)
}

func (o *Output) printList(names []string) {
	if len(names) == 0 {
		fmt.Fprintln(o.w, "(none)")
		return
	}
	for _, n := range names {
		fmt.Fprintln(o.w, n)
	}
}

func (o *Output) printDocuments(d Documents) {
	if len(d.Documents) == 0 {
		fmt.Fprintln(o.w, "No data found in the specified collection.")
		return
	}

	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(d.Columns, "\t"))
	for _, doc := range d.Documents {
		cells := make([]string, len(d.Columns))
		for i, c := range d.Columns {
			cells[i] = browser.FormatValue(doc[c])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	_ = tw.Flush()
	fmt.Fprintf(o.w, "\n%d document(s)\n", len(d.Documents))
}

func (o *Output) printBatchResult(b BatchResult) {
	fmt.Fprintf(o.w, "Succeeded: %d\n", b.Success)
	if b.Errors > 0 {
		fmt.Fprintf(o.w, "Failed: %d\n", b.Errors)
	}
	for _, w := range b.Warnings {
		fmt.Fprintf(o.w, "Warning: %s\n", w)
	}
}

// visibleColumns drops reserved bookkeeping columns unless all is set
func visibleColumns(columns []string, all bool) []string {
	if all {
		return columns
	}
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if !model.IsReserved(c) {
			out = append(out, c)
		}
	}
	return out
}
