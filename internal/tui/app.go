package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aturmation/aturmation-cli/internal/browser"
	"github.com/aturmation/aturmation-cli/internal/logging"
	"github.com/aturmation/aturmation-cli/pkg/client"
	"github.com/aturmation/aturmation-cli/pkg/domain"
	"github.com/aturmation/aturmation-cli/pkg/session"
)

type view int

const (
	viewDashboard view = iota
	viewProducts
	viewCategories
	viewTransactions
	viewUsers
)

// guard is the session gate in front of the tabbed screens.
type guard int

const (
	guardLoading guard = iota
	guardUnauthenticated
	guardAuthenticated
)

// sessionCheckedMsg carries the result of the startup session probe.
type sessionCheckedMsg struct {
	sess *session.Session
	err  error
}

// sessionExpiredMsg fires when the API rejects the stored token mid-use.
type sessionExpiredMsg struct{}

// App is the root Bubbletea model.
type App struct {
	client       *client.Client
	store        *session.Store
	unauthorized <-chan struct{}
	pageSize     int

	guard guard
	view  view
	me    domain.User

	login        loginModel
	dashboard    dashboardModel
	products     productsModel
	categories   categoriesModel
	transactions transactionsModel
	users        usersModel

	helpOpen   bool
	helpCursor int
	notice     string
	width      int
	height     int
}

// NewApp creates the TUI application. unauthorized receives a signal
// whenever the API answers 401, which drops the session back to the
// login screen.
func NewApp(c *client.Client, store *session.Store, unauthorized <-chan struct{}, pageSize int) App {
	return App{
		client:       c,
		store:        store,
		unauthorized: unauthorized,
		pageSize:     pageSize,
		login:        newLoginModel(c, store),
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.checkSession(), a.watchUnauthorized())
}

func (a App) checkSession() tea.Cmd {
	store := a.store
	c := a.client
	return func() tea.Msg {
		sess, err := store.Current(context.Background(), c)
		return sessionCheckedMsg{sess: sess, err: err}
	}
}

// watchUnauthorized blocks on the 401 channel; it is re-armed after
// every delivery.
func (a App) watchUnauthorized() tea.Cmd {
	ch := a.unauthorized
	return func() tea.Msg {
		if ch == nil {
			return nil
		}
		<-ch
		return sessionExpiredMsg{}
	}
}

// startSession flips the guard and builds the tabbed screens for the
// signed-in user.
func (a *App) startSession(sess *session.Session) tea.Cmd {
	a.client.SetToken(sess.Token)
	a.me = sess.User
	a.guard = guardAuthenticated
	a.view = viewDashboard
	a.notice = ""

	a.dashboard = newDashboardModel(a.client, a.me)
	a.products = newProductsModel(a.client, a.pageSize)
	a.categories = newCategoriesModel(a.client, a.pageSize)
	a.transactions = newTransactionsModel(a.client, a.pageSize)
	a.users = newUsersModel(a.client, a.me, a.pageSize)

	if a.width > 0 {
		a.fanOutSize()
	}

	logging.Get().Info().Str("username", a.me.Username).Str("role", a.me.Role).Msg("session started")
	return a.dashboard.Init()
}

func (a *App) fanOutSize() {
	// Chrome: header(2) + tabs(1) + blank(1) + help(1) = 5 lines
	bodyMsg := tea.WindowSizeMsg{Width: a.width, Height: a.height - 5}
	a.login, _ = a.login.Update(bodyMsg)
	a.dashboard, _ = a.dashboard.Update(bodyMsg)
	a.products, _ = a.products.Update(bodyMsg)
	a.categories, _ = a.categories.Update(bodyMsg)
	a.transactions, _ = a.transactions.Update(bodyMsg)
	a.users, _ = a.users.Update(bodyMsg)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.fanOutSize()
		return a, nil

	case sessionCheckedMsg:
		if msg.sess != nil {
			cmd := a.startSession(msg.sess)
			return a, cmd
		}
		a.guard = guardUnauthenticated
		return a, nil

	case sessionStartedMsg:
		cmd := a.startSession(msg.sess)
		return a, cmd

	case sessionExpiredMsg:
		a.guard = guardUnauthenticated
		a.login = newLoginModel(a.client, a.store)
		a.login.banner = "session expired, sign in again"
		if a.width > 0 {
			a.fanOutSize()
		}
		logging.Get().Warn().Msg("session expired")
		return a, a.watchUnauthorized()

	case tea.KeyMsg:
		a.notice = ""

		switch a.guard {
		case guardLoading:
			if msg.String() == "q" || msg.String() == "ctrl+c" {
				return a, tea.Quit
			}
			return a, nil

		case guardUnauthenticated:
			if msg.String() == "ctrl+c" {
				return a, tea.Quit
			}
			var cmd tea.Cmd
			a.login, cmd = a.login.Update(msg)
			return a, cmd
		}

		// Help overlay captures all keys when open
		if a.helpOpen {
			switch msg.String() {
			case "?", "esc":
				a.helpOpen = false
			case "q", "ctrl+c":
				return a, tea.Quit
			case "j", "down":
				if a.helpCursor < len(helpItems)-1 {
					a.helpCursor++
				}
			case "k", "up":
				if a.helpCursor > 0 {
					a.helpCursor--
				}
			case "enter":
				item := helpItems[a.helpCursor]
				if item.url != "" {
					browser.Open(item.url) //nolint:errcheck // best-effort browser open
				}
			}
			return a, nil
		}

		// Global keys (only when not editing)
		if !a.isEditing() {
			switch msg.String() {
			case "?":
				a.helpOpen = true
				a.helpCursor = 0
				return a, nil
			case "q", "ctrl+c":
				return a, tea.Quit
			case "1":
				return a.switchTo(viewDashboard)
			case "2":
				return a.switchTo(viewProducts)
			case "3":
				return a.switchTo(viewCategories)
			case "4":
				return a.switchTo(viewTransactions)
			case "5":
				if !a.me.IsAdmin() {
					a.notice = "the users screen is admin-only"
					return a, nil
				}
				return a.switchTo(viewUsers)
			}
		}
	}

	if a.guard != guardAuthenticated {
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	switch a.view {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.Update(msg)
	case viewProducts:
		a.products, cmd = a.products.Update(msg)
	case viewCategories:
		a.categories, cmd = a.categories.Update(msg)
	case viewTransactions:
		a.transactions, cmd = a.transactions.Update(msg)
	case viewUsers:
		a.users, cmd = a.users.Update(msg)
	}
	return a, cmd
}

func (a App) switchTo(v view) (tea.Model, tea.Cmd) {
	if a.view == v {
		return a, nil
	}
	a.view = v
	switch v {
	case viewDashboard:
		return a, a.dashboard.Init()
	case viewProducts:
		return a, a.products.Init()
	case viewCategories:
		return a, a.categories.Init()
	case viewTransactions:
		return a, a.transactions.Init()
	case viewUsers:
		return a, a.users.Init()
	}
	return a, nil
}

func (a App) isEditing() bool {
	switch a.view {
	case viewProducts:
		return a.products.state != prodBrowsing
	case viewCategories:
		return a.categories.state != catBrowsing
	case viewTransactions:
		return a.transactions.state != txBrowsing
	case viewUsers:
		return a.users.state != userBrowsing
	}
	return false
}

func (a App) View() string {
	logo := renderLogo(a.width)

	switch a.guard {
	case guardLoading:
		return logo + "\n\n " + dimStyle.Render("checking session...") + "\n"
	case guardUnauthenticated:
		// The login screen draws its own logo.
		return a.login.View()
	}

	// User line below logo
	userLine := metaStyle.Render(fmt.Sprintf("%s @%s", a.me.Name, a.me.Username)) +
		" " + RoleStyle(a.me.Role).Render(" "+a.me.Role+" ")
	userPad := (a.width - lipgloss.Width(userLine)) / 2
	if userPad < 0 {
		userPad = 0
	}
	header := logo + "\n" + strings.Repeat(" ", userPad) + userLine

	// Tab bar: equal-width columns spread across the terminal
	type tabEntry struct {
		key  string
		name string
		v    view
	}
	tabs := []tabEntry{
		{"1", "Dashboard", viewDashboard},
		{"2", "Products", viewProducts},
		{"3", "Categories", viewCategories},
		{"4", "Transactions", viewTransactions},
	}
	if a.me.IsAdmin() {
		tabs = append(tabs, tabEntry{"5", "Users", viewUsers})
	}

	colWidth := a.width / len(tabs)
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		if t.v == a.view {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		labelWidth := lipgloss.Width(label)
		leftPad := (colWidth - labelWidth) / 2
		if leftPad < 0 {
			leftPad = 0
		}
		rightPad := colWidth - labelWidth - leftPad
		if rightPad < 0 {
			rightPad = 0
		}
		tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}

	var body string
	var help string
	switch a.view {
	case viewDashboard:
		body = a.dashboard.View()
		help = " " + helpEntry("1-5", "tabs") + "  " + helpEntry("r", "refresh") + "  " + helpEntry("?", "help") + "  " + helpEntry("q", "quit")
	case viewProducts:
		body = a.products.View()
		if a.isEditing() {
			help = " " + helpEntry("tab", "next") + "  " + helpEntry("ctrl+s", "save") + "  " + helpEntry("esc", "cancel")
		} else {
			help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("/", "search") + "  " + helpEntry("s/o", "sort") + "  " + helpEntry("f", "filter") + "  " + helpEntry("n/e/d", "edit") + "  " + helpEntry("+/-", "stock") + "  " + helpEntry("c", "copy sku")
		}
	case viewCategories:
		body = a.categories.View()
		if a.isEditing() {
			help = " " + helpEntry("tab", "next") + "  " + helpEntry("ctrl+s", "save") + "  " + helpEntry("esc", "cancel")
		} else {
			help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("/", "search") + "  " + helpEntry("s/o", "sort") + "  " + helpEntry("n/e/d", "edit") + "  " + helpEntry("?", "help") + "  " + helpEntry("q", "quit")
		}
	case viewTransactions:
		body = a.transactions.View()
		if a.isEditing() {
			help = " " + helpEntry("tab", "next") + "  " + helpEntry("h/l", "pick") + "  " + helpEntry("ctrl+s", "save") + "  " + helpEntry("esc", "cancel")
		} else {
			help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("/", "search") + "  " + helpEntry("f", "type") + "  " + helpEntry("[/]", "pages") + "  " + helpEntry("n", "record") + "  " + helpEntry("q", "quit")
		}
	case viewUsers:
		body = a.users.View()
		if a.isEditing() {
			help = " " + helpEntry("tab", "next") + "  " + helpEntry("h/l", "role") + "  " + helpEntry("ctrl+s", "save") + "  " + helpEntry("esc", "cancel")
		} else {
			help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("/", "search") + "  " + helpEntry("[/]", "pages") + "  " + helpEntry("n/e/d", "edit") + "  " + helpEntry("?", "help") + "  " + helpEntry("q", "quit")
		}
	}

	if a.helpOpen {
		body = helpView(a.helpCursor)
		help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "open") + "  " + helpEntry("esc", "close")
	}

	noticeBar := ""
	if a.notice != "" {
		noticeBar = " " + warnStyle.Render(a.notice)
	}

	// Chrome budget: header(2) + tabs(1) + notice(1) + help(1) = 5 lines + body
	chrome := 5
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, tabBar.String(), body, noticeBar, help)
}
