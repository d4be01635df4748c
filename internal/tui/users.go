package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aturmation/aturmation-cli/pkg/client"
	"github.com/aturmation/aturmation-cli/pkg/domain"
	"github.com/aturmation/aturmation-cli/pkg/forms"
	"github.com/aturmation/aturmation-cli/pkg/query"
)

type usersState int

const (
	userBrowsing usersState = iota
	userSearching
	userForm
	userConfirmDelete
)

const (
	userFieldName = iota
	userFieldUsername
	userFieldEmail
	userFieldRole // h/l toggle
	userFieldPassword
	userFieldConfirm
	numUserFields
)

// -- messages --

type usersLoadedMsg struct {
	users []domain.User
	err   error
}

type userSavedMsg struct {
	user *domain.User
	err  error
}

type userDeletedMsg struct{ err error }

// -- model --

// usersModel manages team accounts. The whole screen is admin-only; the
// route guard in app.go bounces staff before it ever renders.
type usersModel struct {
	client *client.Client
	me     domain.User
	q      query.Query
	all      []domain.User
	view     []domain.User
	filtered int
	cursor   int
	state    usersState

	searchInput string

	fields    [numUserFields]string
	formRole  string
	formFocus int
	formErrs  forms.Errors
	editingID int

	loading   bool
	err       error
	banner    string
	statusMsg string
	width     int
	height    int
}

func newUsersModel(c *client.Client, me domain.User, pageSize int) usersModel {
	return usersModel{
		client:   c,
		me:       me,
		q:        query.New(pageSize, "name"),
		formRole: domain.RoleStaff,
		loading:  true,
	}
}

func (m usersModel) Init() tea.Cmd {
	return m.load()
}

func (m usersModel) load() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		users, err := c.ListUsers(context.Background())
		return usersLoadedMsg{users: users, err: err}
	}
}

func (m *usersModel) refresh() {
	m.view, m.filtered = query.Apply(&m.q, m.all,
		func(u domain.User, term string) bool {
			term = strings.ToLower(term)
			return strings.Contains(strings.ToLower(u.Name), term) ||
				strings.Contains(strings.ToLower(u.Username), term) ||
				strings.Contains(strings.ToLower(u.Email), term)
		},
		func(a, b domain.User, column string) bool {
			switch column {
			case "role":
				return a.Role < b.Role
			default:
				return strings.ToLower(a.Name) < strings.ToLower(b.Name)
			}
		})
	if m.cursor >= len(m.view) {
		m.cursor = 0
	}
}

func (m usersModel) Update(msg tea.Msg) (usersModel, tea.Cmd) {
	switch msg := msg.(type) {
	case usersLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.all = msg.users
			m.refresh()
		}
		return m, nil

	case userSavedMsg:
		if msg.err != nil {
			m.banner = serverMessage(msg.err)
			return m, nil
		}
		m.state = userBrowsing
		m.statusMsg = fmt.Sprintf("saved %s", msg.user.Username)
		m.fields = [numUserFields]string{}
		m.loading = true
		return m, m.load()

	case userDeletedMsg:
		m.state = userBrowsing
		if msg.err != nil {
			m.banner = serverMessage(msg.err)
			return m, nil
		}
		m.statusMsg = "user deleted"
		m.loading = true
		return m, m.load()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		switch m.state {
		case userSearching:
			return m.updateSearch(msg)
		case userForm:
			return m.updateForm(msg)
		case userConfirmDelete:
			return m.updateConfirm(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m usersModel) updateSearch(msg tea.KeyMsg) (usersModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.state = userBrowsing
		m.q.SetSearch(strings.TrimSpace(m.searchInput))
		m.refresh()
	case "esc":
		m.state = userBrowsing
		m.searchInput = ""
		m.q.SetSearch("")
		m.refresh()
	default:
		m.searchInput = editRune(m.searchInput, msg.String())
	}
	return m, nil
}

func (m usersModel) updateList(msg tea.KeyMsg) (usersModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.view)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "/":
		m.state = userSearching
		m.searchInput = m.q.Search()
	case "s":
		if m.q.SortBy() == "name" {
			m.q.ToggleSort("role")
		} else {
			m.q.ToggleSort("name")
		}
		m.refresh()
	case "]":
		if m.q.Page() < m.q.TotalPages(m.filtered) {
			m.q.SetPage(m.q.Page() + 1)
			m.cursor = 0
			m.refresh()
		}
	case "[":
		if m.q.Page() > 1 {
			m.q.SetPage(m.q.Page() - 1)
			m.cursor = 0
			m.refresh()
		}
	case "n":
		m.state = userForm
		m.editingID = 0
		m.fields = [numUserFields]string{}
		m.formRole = domain.RoleStaff
		m.formFocus = 0
		m.formErrs = nil
	case "e":
		if m.cursor < len(m.view) {
			u := m.view[m.cursor]
			m.state = userForm
			m.editingID = u.ID
			m.fields = [numUserFields]string{}
			m.fields[userFieldName] = u.Name
			m.fields[userFieldUsername] = u.Username
			m.fields[userFieldEmail] = u.Email
			m.formRole = u.Role
			m.formFocus = 0
			m.formErrs = nil
		}
	case "d":
		if m.cursor < len(m.view) {
			if m.view[m.cursor].ID == m.me.ID {
				m.banner = "you cannot delete your own account"
				return m, nil
			}
			m.state = userConfirmDelete
		}
	case "r":
		m.loading = true
		return m, m.load()
	}
	return m, nil
}

func (m usersModel) updateForm(msg tea.KeyMsg) (usersModel, tea.Cmd) {
	m.banner = ""
	switch msg.String() {
	case "esc":
		m.state = userBrowsing
		m.formErrs = nil
		return m, nil
	case "ctrl+s":
		return m.submitForm()
	case "tab", "down":
		m.formFocus = m.nextField(m.formFocus, 1)
		return m, nil
	case "shift+tab", "up":
		m.formFocus = m.nextField(m.formFocus, -1)
		return m, nil
	case "enter":
		if m.formFocus == m.lastField() {
			return m.submitForm()
		}
		m.formFocus = m.nextField(m.formFocus, 1)
		return m, nil
	}

	if m.formFocus == userFieldRole {
		switch msg.String() {
		case "h", "l", "left", "right", " ":
			if m.formRole == domain.RoleStaff {
				m.formRole = domain.RoleAdmin
			} else {
				m.formRole = domain.RoleStaff
			}
		}
		return m, nil
	}

	key := msg.String()
	if key == "backspace" || len(key) == 1 {
		m.fields[m.formFocus] = editRune(m.fields[m.formFocus], key)
	}
	return m, nil
}

// Password fields are only part of the cycle when creating an account;
// edits never change a password from here.
func (m usersModel) lastField() int {
	if m.editingID == 0 {
		return userFieldConfirm
	}
	return userFieldRole
}

func (m usersModel) nextField(from, dir int) int {
	n := m.lastField() + 1
	return (from + dir + n) % n
}

func (m usersModel) submitForm() (usersModel, tea.Cmd) {
	form := forms.UserForm{
		Name:     m.fields[userFieldName],
		Username: m.fields[userFieldUsername],
		Email:    m.fields[userFieldEmail],
		Role:     m.formRole,
		Password: m.fields[userFieldPassword],
		Confirm:  m.fields[userFieldConfirm],
		New:      m.editingID == 0,
	}
	req, errs := form.Validate()
	m.formErrs = errs
	if !errs.Valid() {
		return m, nil
	}

	c := m.client
	id := m.editingID
	return m, func() tea.Msg {
		var u *domain.User
		var err error
		if id == 0 {
			u, err = c.CreateUser(context.Background(), req)
		} else {
			u, err = c.UpdateUser(context.Background(), id, req)
		}
		return userSavedMsg{user: u, err: err}
	}
}

func (m usersModel) updateConfirm(msg tea.KeyMsg) (usersModel, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		if m.cursor < len(m.view) {
			id := m.view[m.cursor].ID
			c := m.client
			return m, func() tea.Msg {
				return userDeletedMsg{err: c.DeleteUser(context.Background(), id)}
			}
		}
		m.state = userBrowsing
	case "n", "esc":
		m.state = userBrowsing
	}
	return m, nil
}

// -- view --

func (m usersModel) View() string {
	if m.state == userForm {
		return m.viewForm()
	}

	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("USERS") + "  " + metaStyle.Render(fmt.Sprintf("%d total", len(m.all))) + "\n")

	switch {
	case m.state == userSearching:
		b.WriteString(" " + searchStyle.Render("/ "+m.searchInput+"█"))
	case m.q.Search() != "":
		b.WriteString(" " + searchStyle.Render("/ "+m.q.Search()))
	default:
		b.WriteString(" " + dimStyle.Render("/ search..."))
	}
	b.WriteString("   " + searchStyle.Render(m.q.SortBy()) + " " + helpKeyStyle.Render("s") + "\n")

	sepW := m.width - 2
	if sepW < 4 {
		sepW = 4
	}
	b.WriteString(" " + metaStyle.Render(strings.Repeat("─", sepW)) + "\n")

	if m.banner != "" {
		b.WriteString(" " + errStyle.Render(m.banner) + "\n")
	}
	if m.statusMsg != "" {
		b.WriteString(" " + okStyle.Render(m.statusMsg) + "\n")
	}

	if m.loading && len(m.all) == 0 {
		b.WriteString(" " + dimStyle.Render("loading users..."))
		return b.String()
	}
	if m.err != nil {
		b.WriteString(" " + dimStyle.Render(fmt.Sprintf("error: %v", m.err)))
		return b.String()
	}
	if len(m.view) == 0 {
		b.WriteString(" " + dimStyle.Render("no users found"))
		return b.String()
	}

	for i, u := range m.view {
		cursor := "  "
		rowStyle := dimStyle
		if i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
			rowStyle = normalStyle.Bold(true)
		}

		nameW := m.width - 44
		if nameW < 14 {
			nameW = 14
		}
		name := fmt.Sprintf("%-*s", nameW, truncStr(u.Name, nameW))
		username := metaStyle.Render(fmt.Sprintf("@%-14s", truncStr(u.Username, 14)))
		role := RoleStyle(u.Role).Render(fmt.Sprintf(" %-5s ", u.Role))

		you := ""
		if u.ID == m.me.ID {
			you = " " + okStyle.Render("(you)")
		}

		line := cursor + rowStyle.Render(name) + " " + username + " " + role + you
		if i == m.cursor {
			padded := line + strings.Repeat(" ", max(m.width-lipgloss.Width(line), 0))
			b.WriteString(selectedRowBg.Render(padded) + "\n")
		} else {
			b.WriteString(line + "\n")
		}
	}

	b.WriteString(" " + metaStyle.Render(fmt.Sprintf("page %d/%d", m.q.Page(), m.q.TotalPages(m.filtered))) + "\n")

	if m.cursor < len(m.view) {
		u := m.view[m.cursor]
		b.WriteString("\n " + dimStyle.Render(fmt.Sprintf("%s · joined %s", u.Email, formatTime(u.CreatedAt))) + "\n")
	}

	if m.state == userConfirmDelete && m.cursor < len(m.view) {
		b.WriteString("\n " + errStyle.Render(fmt.Sprintf("delete @%s? (y/n)", m.view[m.cursor].Username)) + "\n")
	}

	return truncateToHeight(b.String(), m.height)
}

func (m usersModel) viewForm() string {
	var b strings.Builder
	title := "NEW USER"
	if m.editingID != 0 {
		title = "EDIT USER"
	}
	b.WriteString(" " + titleStyle.Render(title) + "\n\n")

	labels := [numUserFields]string{"name", "username", "email", "role", "password", "confirm"}
	for i := 0; i <= m.lastField(); i++ {
		cursor := " "
		style := metaStyle
		if i == m.formFocus {
			cursor = ">"
			style = selectedStyle
		}

		var value string
		switch i {
		case userFieldRole:
			value = "◂ " + RoleStyle(m.formRole).Render(m.formRole) + " ▸"
		case userFieldPassword, userFieldConfirm:
			value = strings.Repeat("*", len(m.fields[i]))
			if i == m.formFocus {
				value += "█"
			}
		default:
			value = m.fields[i]
			if i == m.formFocus {
				value += "█"
			}
		}
		fmt.Fprintf(&b, " %s %s: %s\n", cursor, style.Render(fmt.Sprintf("%-9s", labels[i])), value)
		if msg, ok := m.formErrs[labels[i]]; ok {
			b.WriteString("              " + errStyle.Render(msg) + "\n")
		}
	}

	b.WriteString("\n")
	if m.banner != "" {
		b.WriteString(" " + errStyle.Render(m.banner) + "\n")
	} else {
		b.WriteString(" " + dimStyle.Render("ctrl+s to save, esc to cancel") + "\n")
	}
	return truncateToHeight(b.String(), m.height)
}
