package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aturmation/aturmation-cli/pkg/client"
	"github.com/aturmation/aturmation-cli/pkg/forms"
	"github.com/aturmation/aturmation-cli/pkg/session"
)

type loginMode int

const (
	modeLogin loginMode = iota
	modeRegister
)

const (
	loginFieldUsername = iota
	loginFieldPassword
	numLoginFields
)

const (
	regFieldName = iota
	regFieldUsername
	regFieldEmail
	regFieldPassword
	regFieldConfirm
	numRegFields
)

// authResultMsg carries the outcome of a login or register call.
type authResultMsg struct {
	resp *client.AuthResponse
	err  error
}

// sessionStartedMsg tells the app a session is live; the guard flips to
// authenticated and the tabbed screens initialise.
type sessionStartedMsg struct {
	sess *session.Session
}

type loginModel struct {
	client     *client.Client
	store      *session.Store
	mode       loginMode
	login      [numLoginFields]string
	reg        [numRegFields]string
	focus      int
	fieldErrs  forms.Errors
	banner     string // server-provided error, shown verbatim
	submitting bool
	width      int
	height     int
}

func newLoginModel(c *client.Client, store *session.Store) loginModel {
	return loginModel{client: c, store: store}
}

func (m loginModel) Init() tea.Cmd {
	return nil
}

func (m loginModel) numFields() int {
	if m.mode == modeRegister {
		return numRegFields
	}
	return numLoginFields
}

func (m loginModel) field(i int) string {
	if m.mode == modeRegister {
		return m.reg[i]
	}
	return m.login[i]
}

func (m *loginModel) setField(i int, v string) {
	if m.mode == modeRegister {
		m.reg[i] = v
	} else {
		m.login[i] = v
	}
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case authResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.banner = serverMessage(msg.err)
			return m, nil
		}
		if err := m.store.Save(msg.resp.Token); err != nil {
			m.banner = err.Error()
			return m, nil
		}
		sess := &session.Session{Token: msg.resp.Token, User: msg.resp.User}
		m.login = [numLoginFields]string{}
		m.reg = [numRegFields]string{}
		return m, func() tea.Msg { return sessionStartedMsg{sess: sess} }

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m loginModel) updateKeys(msg tea.KeyMsg) (loginModel, tea.Cmd) {
	m.banner = ""

	switch msg.String() {
	case "tab", "down":
		m.focus = (m.focus + 1) % m.numFields()
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + m.numFields()) % m.numFields()
	case "ctrl+r":
		if m.mode == modeLogin {
			m.mode = modeRegister
		} else {
			m.mode = modeLogin
		}
		m.focus = 0
		m.fieldErrs = nil
	case "enter":
		if m.focus == m.numFields()-1 {
			return m.submit()
		}
		m.focus++
	case "ctrl+s":
		return m.submit()
	case "backspace":
		m.setField(m.focus, editRune(m.field(m.focus), "backspace"))
	default:
		key := msg.String()
		if len(key) == 1 {
			m.setField(m.focus, m.field(m.focus)+key)
		}
	}
	return m, nil
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	if m.mode == modeRegister {
		form := forms.RegisterForm{
			Name:     m.reg[regFieldName],
			Username: m.reg[regFieldUsername],
			Email:    m.reg[regFieldEmail],
			Password: m.reg[regFieldPassword],
			Confirm:  m.reg[regFieldConfirm],
		}
		req, errs := form.Validate()
		m.fieldErrs = errs
		if !errs.Valid() {
			return m, nil
		}
		m.submitting = true
		c := m.client
		return m, func() tea.Msg {
			resp, err := c.Register(context.Background(), req)
			return authResultMsg{resp: resp, err: err}
		}
	}

	form := forms.LoginForm{
		Username: m.login[loginFieldUsername],
		Password: m.login[loginFieldPassword],
	}
	errs := form.Validate()
	m.fieldErrs = errs
	if !errs.Valid() {
		return m, nil
	}
	m.submitting = true
	c := m.client
	username, password := strings.TrimSpace(form.Username), form.Password
	return m, func() tea.Msg {
		resp, err := c.Login(context.Background(), username, password)
		return authResultMsg{resp: resp, err: err}
	}
}

func (m loginModel) View() string {
	var b strings.Builder

	b.WriteString("\n" + renderLogo(m.width) + "\n")
	sub := dimStyle.Render("inventory, from the terminal")
	pad := (m.width - len("inventory, from the terminal")) / 2
	if pad < 0 {
		pad = 0
	}
	b.WriteString(strings.Repeat(" ", pad) + sub + "\n\n")

	var labels []string
	var errKeys []string
	var secret []bool
	if m.mode == modeRegister {
		b.WriteString(" " + selectedStyle.Render("CREATE ACCOUNT") + "  " + dimStyle.Render("ctrl+r to log in instead") + "\n\n")
		labels = []string{"name", "username", "email", "password", "confirm"}
		errKeys = []string{"name", "username", "email", "password", "confirm"}
		secret = []bool{false, false, false, true, true}
	} else {
		b.WriteString(" " + selectedStyle.Render("LOG IN") + "  " + dimStyle.Render("ctrl+r to register") + "\n\n")
		labels = []string{"username", "password"}
		errKeys = []string{"username", "password"}
		secret = []bool{false, true}
	}

	for i, label := range labels {
		value := m.field(i)
		if secret[i] {
			value = strings.Repeat("*", len(value))
		}
		cursor := " "
		style := metaStyle
		if i == m.focus {
			cursor = ">"
			style = selectedStyle
			value += "█"
		}
		fmt.Fprintf(&b, " %s %s: %s\n", cursor, style.Render(fmt.Sprintf("%-8s", label)), value)
		if msg, ok := m.fieldErrs[errKeys[i]]; ok {
			b.WriteString("              " + errStyle.Render(msg) + "\n")
		}
	}

	b.WriteString("\n")
	switch {
	case m.submitting:
		b.WriteString(" " + dimStyle.Render("signing in..."))
	case m.banner != "":
		b.WriteString(" " + errStyle.Render(m.banner))
	default:
		b.WriteString(" " + dimStyle.Render("enter to submit"))
	}

	return truncateToHeight(b.String(), m.height)
}

// serverMessage extracts the message to show for a failed API call.
// HTTPError messages pass through verbatim; anything else degrades to a
// generic connection error with the cause attached.
func serverMessage(err error) string {
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message
	}
	return "connection failed: " + err.Error()
}
