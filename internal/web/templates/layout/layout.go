package layout

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/mcoot/fxdesk/internal/model"
)

// AppName is shown in the header and page titles
const AppName = "Currency Exchange"

// FlashMessage is a one-shot message carried over a redirect
type FlashMessage struct {
	Type    string // success, error, warning, info
	Message string
}

// NavTab is one entry of the navigation bar
type NavTab struct {
	Label  string
	Href   string
	Active bool
}

// Navigation tab labels
const (
	TabExchange     = "Exchange Approach Comparison"
	TabTransactions = "Transaction History"
	TabDatabase     = "Database Management"
	TabUsers        = "User Management"
	TabLogin        = "Login"
	TabLogout       = "Logout"
)

// PageData holds the data every page shares
type PageData struct {
	Title     string
	Session   *model.Session
	Flash     *FlashMessage
	ActiveTab string
}

// LoggedIn reports whether the page is shown to a logged-in user
func (p PageData) LoggedIn() bool {
	return p.Session != nil && p.Session.IsLoggedIn
}

// Tabs returns the navigation bar for the session. The login or logout tab
// always comes last.
func Tabs(sess *model.Session, active string) []NavTab {
	loggedIn := sess != nil && sess.IsLoggedIn
	admin := loggedIn && sess.IsAdmin

	tabs := []NavTab{{Label: TabExchange, Href: "/"}}
	if loggedIn {
		tabs = append(tabs, NavTab{Label: TabTransactions, Href: "/transactions"})
	}
	if admin {
		tabs = append(tabs,
			NavTab{Label: TabDatabase, Href: "/db"},
			NavTab{Label: TabUsers, Href: "/users"},
		)
	}
	if loggedIn {
		tabs = append(tabs, NavTab{Label: TabLogout, Href: "/logout"})
	} else {
		tabs = append(tabs, NavTab{Label: TabLogin, Href: "/login"})
	}

	for i := range tabs {
		tabs[i].Active = tabs[i].Label == active
	}
	return tabs
}

// Base wraps page content with the document shell, navigation and flash
func Base(data PageData, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := NewWriter(w)
		title := AppName
		if data.Title != "" {
			title = data.Title + " | " + AppName
		}

		hw.Raw("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
		hw.Raw("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
		hw.Printf("<title>%s</title>\n", title)
		hw.Raw("<link rel=\"stylesheet\" href=\"/static/app.css\">\n</head>\n<body>\n")

		hw.Raw("<nav class=\"tabs\">\n")
		for _, tab := range Tabs(data.Session, data.ActiveTab) {
			class := "tab"
			if tab.Active {
				class += " active"
			}
			hw.Printf("<a class=\"%s\" href=\"%s\">%s</a>\n", class, tab.Href, tab.Label)
		}
		if data.LoggedIn() {
			name := data.Session.DisplayName
			if name == "" {
				name = data.Session.Username
			}
			hw.Printf("<span class=\"welcome\">Welcome %s!</span>\n", name)
		}
		hw.Raw("</nav>\n<main>\n")

		if data.Flash != nil {
			hw.Printf("<div class=\"flash flash-%s\" role=\"alert\">%s</div>\n", data.Flash.Type, data.Flash.Message)
		}
		if data.Title != "" {
			hw.Printf("<h1>%s</h1>\n", data.Title)
		}

		hw.Component(ctx, content)

		hw.Raw("</main>\n</body>\n</html>\n")
		return hw.Err()
	})
}

// Alert renders an inline message box
func Alert(kind, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := NewWriter(w)
		hw.Printf("<div class=\"alert alert-%s\">%s</div>\n", kind, message)
		return hw.Err()
	})
}
