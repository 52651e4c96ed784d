package pages

import (
	"context"

	"github.com/a-h/templ"

	"github.com/mcoot/fxdesk/internal/web/templates/layout"
)

// LoginData holds data for the login page
type LoginData struct {
	layout.PageData
	Username string
	Error    string
	Next     string
}

// Login renders the login form
func Login(data LoginData) templ.Component {
	return layout.Base(data.PageData, render(func(ctx context.Context, hw *layout.Writer) {
		if data.Error != "" {
			hw.Printf("<div class=\"alert alert-error\">%s</div>\n", data.Error)
		}
		hw.Raw("<form class=\"login-form\" method=\"post\" action=\"/login\">\n")
		hw.Printf("<input type=\"hidden\" name=\"next\" value=\"%s\">\n", data.Next)
		hw.Printf("<label>Username <input name=\"username\" value=\"%s\" autocomplete=\"username\" required></label>\n", data.Username)
		hw.Raw("<label>Password <input type=\"password\" name=\"password\" autocomplete=\"current-password\" required></label>\n")
		hw.Raw("<button type=\"submit\">Login</button>\n</form>\n")
	}))
}
