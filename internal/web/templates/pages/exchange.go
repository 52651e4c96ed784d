package pages

import (
	"context"

	"github.com/a-h/templ"

	"github.com/mcoot/fxdesk/internal/services/exchange"
	"github.com/mcoot/fxdesk/internal/web/templates/layout"
)

// ExchangeForm is one direction's calculator as submitted
type ExchangeForm struct {
	Direction exchange.Direction
	// Prefix namespaces the form fields, e.g. "hkd_amount"
	Prefix string
	Amount string
	Days   string
	Prices [2]string
	Rates  [2]string
	Result *exchange.Comparison
	Error  string
}

// ExchangeData holds data for the exchange comparison page
type ExchangeData struct {
	layout.PageData
	Forms []ExchangeForm
}

// Exchange renders both exchange calculators
func Exchange(data ExchangeData) templ.Component {
	return layout.Base(data.PageData, render(func(ctx context.Context, hw *layout.Writer) {
		for _, f := range data.Forms {
			exchangeForm(hw, f)
		}
	}))
}

func priceLabel(d exchange.Direction) string {
	if d == exchange.AUDToHKD {
		return "Buying price"
	}
	return "Selling price"
}

func exchangeForm(hw *layout.Writer, f ExchangeForm) {
	hw.Printf("<section class=\"exchange\" id=\"%s\">\n", string(f.Direction))
	hw.Printf("<h2>%s to %s</h2>\n", f.Direction.From(), f.Direction.To())
	hw.Raw("<form method=\"get\" action=\"/\">\n")
	hw.Printf("<label>%s amount <input name=\"%s\" value=\"%s\" inputmode=\"decimal\"></label>\n",
		f.Direction.From(), f.Prefix+"amount", f.Amount)
	hw.Printf("<label>Deposit days <input name=\"%s\" value=\"%s\" inputmode=\"numeric\"></label>\n",
		f.Prefix+"days", f.Days)
	for i := range 2 {
		n := itoa(i + 1)
		hw.Printf("<fieldset><legend>Approach %s</legend>\n", n)
		hw.Printf("<label>%s <input name=\"%s\" value=\"%s\" inputmode=\"decimal\"></label>\n",
			priceLabel(f.Direction), f.Prefix+"price"+n, f.Prices[i])
		hw.Printf("<label>Interest rate (%%) <input name=\"%s\" value=\"%s\" inputmode=\"decimal\"></label>\n",
			f.Prefix+"rate"+n, f.Rates[i])
		hw.Raw("</fieldset>\n")
	}
	hw.Raw("<button type=\"submit\">Compare</button>\n</form>\n")

	if f.Error != "" {
		hw.Printf("<div class=\"alert alert-error\">%s</div>\n", f.Error)
	}
	if f.Result != nil {
		exchangeResult(hw, f.Result)
	}
	hw.Raw("</section>\n")
}

func exchangeResult(hw *layout.Writer, c *exchange.Comparison) {
	hw.Raw("<table class=\"comparison\">\n<thead><tr><th></th>")
	hw.Printf("<th>Converted (%s)</th><th>Interest</th><th>Total</th></tr></thead>\n<tbody>\n", c.Direction.To())
	for i, o := range c.Offers {
		class := "offer"
		if i == c.Best {
			class += " best"
		}
		hw.Printf("<tr class=\"%s\"><th>Approach %s</th><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			class, itoa(i+1),
			o.Converted.StringFixed(exchange.Places),
			o.Interest.StringFixed(exchange.Places),
			o.Total.StringFixed(exchange.Places))
	}
	hw.Raw("</tbody>\n</table>\n")
	hw.Printf("<p class=\"verdict\">Approach %s gives more %s.</p>\n", itoa(c.Best+1), c.Direction.To())
}
