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

type categoriesState int

const (
	catBrowsing categoriesState = iota
	catSearching
	catForm
	catConfirmDelete
)

const (
	catFieldName = iota
	catFieldDescription
	numCatFields
)

// -- messages --

type categoriesLoadedMsg struct {
	categories []domain.Category
	err        error
}

type categorySavedMsg struct {
	category *domain.Category
	err      error
}

type categoryDeletedMsg struct{ err error }

// -- model --

// categoriesModel fetches the whole (small) collection once and runs
// search/sort/paging client-side.
type categoriesModel struct {
	client *client.Client
	q      query.Query
	all      []domain.Category
	view     []domain.Category
	filtered int
	cursor   int
	state    categoriesState

	searchInput string

	fields    [numCatFields]string
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

func newCategoriesModel(c *client.Client, pageSize int) categoriesModel {
	return categoriesModel{
		client:  c,
		q:       query.New(pageSize, "name"),
		loading: true,
	}
}

func (m categoriesModel) Init() tea.Cmd {
	return m.load()
}

func (m categoriesModel) load() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		cats, err := c.ListCategories(context.Background())
		return categoriesLoadedMsg{categories: cats, err: err}
	}
}

// refresh recomputes the visible page from the full collection. The pager
// works off the filtered count, not len(m.all): with a search active the
// match set is what gets paged.
func (m *categoriesModel) refresh() {
	m.view, m.filtered = query.Apply(&m.q, m.all,
		func(c domain.Category, term string) bool {
			term = strings.ToLower(term)
			return strings.Contains(strings.ToLower(c.Name), term) ||
				strings.Contains(strings.ToLower(c.Description), term)
		},
		func(a, b domain.Category, column string) bool {
			switch column {
			case "products":
				return a.ProductCount < b.ProductCount
			default:
				return strings.ToLower(a.Name) < strings.ToLower(b.Name)
			}
		})
	if m.cursor >= len(m.view) {
		m.cursor = 0
	}
}

func (m categoriesModel) Update(msg tea.Msg) (categoriesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case categoriesLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.all = msg.categories
			m.refresh()
		}
		return m, nil

	case categorySavedMsg:
		if msg.err != nil {
			m.banner = serverMessage(msg.err)
			return m, nil
		}
		m.state = catBrowsing
		m.statusMsg = fmt.Sprintf("saved %q", msg.category.Name)
		m.fields = [numCatFields]string{}
		m.loading = true
		return m, m.load()

	case categoryDeletedMsg:
		m.state = catBrowsing
		if msg.err != nil {
			m.banner = serverMessage(msg.err)
			return m, nil
		}
		m.statusMsg = "category deleted"
		m.loading = true
		return m, m.load()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		switch m.state {
		case catSearching:
			return m.updateSearch(msg)
		case catForm:
			return m.updateForm(msg)
		case catConfirmDelete:
			return m.updateConfirm(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m categoriesModel) updateSearch(msg tea.KeyMsg) (categoriesModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.state = catBrowsing
		m.q.SetSearch(strings.TrimSpace(m.searchInput))
		m.refresh()
	case "esc":
		m.state = catBrowsing
		m.searchInput = ""
		m.q.SetSearch("")
		m.refresh()
	default:
		m.searchInput = editRune(m.searchInput, msg.String())
	}
	return m, nil
}

func (m categoriesModel) updateList(msg tea.KeyMsg) (categoriesModel, tea.Cmd) {
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
		m.state = catSearching
		m.searchInput = m.q.Search()
	case "s":
		if m.q.SortBy() == "name" {
			m.q.ToggleSort("products")
		} else {
			m.q.ToggleSort("name")
		}
		m.refresh()
	case "o":
		m.q.ToggleSort(m.q.SortBy())
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
		m.state = catForm
		m.editingID = 0
		m.fields = [numCatFields]string{}
		m.formFocus = 0
		m.formErrs = nil
	case "e":
		if m.cursor < len(m.view) {
			cat := m.view[m.cursor]
			m.state = catForm
			m.editingID = cat.ID
			m.fields[catFieldName] = cat.Name
			m.fields[catFieldDescription] = cat.Description
			m.formFocus = 0
			m.formErrs = nil
		}
	case "d":
		if m.cursor < len(m.view) {
			m.state = catConfirmDelete
		}
	case "r":
		m.loading = true
		return m, m.load()
	}
	return m, nil
}

func (m categoriesModel) updateForm(msg tea.KeyMsg) (categoriesModel, tea.Cmd) {
	m.banner = ""
	switch msg.String() {
	case "esc":
		m.state = catBrowsing
		m.formErrs = nil
	case "ctrl+s":
		return m.submitForm()
	case "tab", "down":
		m.formFocus = (m.formFocus + 1) % numCatFields
	case "shift+tab", "up":
		m.formFocus = (m.formFocus - 1 + numCatFields) % numCatFields
	case "enter":
		if m.formFocus == numCatFields-1 {
			return m.submitForm()
		}
		m.formFocus++
	case "backspace":
		m.fields[m.formFocus] = editRune(m.fields[m.formFocus], "backspace")
	default:
		key := msg.String()
		if len(key) == 1 {
			m.fields[m.formFocus] = editRune(m.fields[m.formFocus], key)
		}
	}
	return m, nil
}

func (m categoriesModel) submitForm() (categoriesModel, tea.Cmd) {
	form := forms.CategoryForm{
		Name:        m.fields[catFieldName],
		Description: m.fields[catFieldDescription],
	}
	req, errs := form.Validate()
	m.formErrs = errs
	if !errs.Valid() {
		return m, nil
	}

	c := m.client
	id := m.editingID
	return m, func() tea.Msg {
		var cat *domain.Category
		var err error
		if id == 0 {
			cat, err = c.CreateCategory(context.Background(), req)
		} else {
			cat, err = c.UpdateCategory(context.Background(), id, req)
		}
		return categorySavedMsg{category: cat, err: err}
	}
}

func (m categoriesModel) updateConfirm(msg tea.KeyMsg) (categoriesModel, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		if m.cursor < len(m.view) {
			id := m.view[m.cursor].ID
			c := m.client
			return m, func() tea.Msg {
				return categoryDeletedMsg{err: c.DeleteCategory(context.Background(), id)}
			}
		}
		m.state = catBrowsing
	case "n", "esc":
		m.state = catBrowsing
	}
	return m, nil
}

// -- view --

func (m categoriesModel) View() string {
	if m.state == catForm {
		return m.viewForm()
	}

	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("CATEGORIES") + "  " + metaStyle.Render(fmt.Sprintf("%d total", len(m.all))) + "\n")

	switch {
	case m.state == catSearching:
		b.WriteString(" " + searchStyle.Render("/ "+m.searchInput+"█"))
	case m.q.Search() != "":
		b.WriteString(" " + searchStyle.Render("/ "+m.q.Search()))
	default:
		b.WriteString(" " + dimStyle.Render("/ search..."))
	}
	arrow := "↑"
	if m.q.SortDir() == query.Desc {
		arrow = "↓"
	}
	b.WriteString("   " + searchStyle.Render(m.q.SortBy()+arrow) + " " + helpKeyStyle.Render("s/o") + "\n")

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
		b.WriteString(" " + dimStyle.Render("loading categories..."))
		return b.String()
	}
	if m.err != nil {
		b.WriteString(" " + dimStyle.Render(fmt.Sprintf("error: %v", m.err)))
		return b.String()
	}
	if len(m.view) == 0 {
		b.WriteString(" " + dimStyle.Render("no categories found"))
		return b.String()
	}

	for i, cat := range m.view {
		cursor := "  "
		rowStyle := dimStyle
		if i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
			rowStyle = normalStyle.Bold(true)
		}

		nameW := m.width - 30
		if nameW < 16 {
			nameW = 16
		}
		name := fmt.Sprintf("%-*s", nameW, truncStr(cat.Name, nameW))
		count := metaStyle.Render(fmt.Sprintf("%4d products", cat.ProductCount))

		line := cursor + rowStyle.Render(name) + " " + count
		if i == m.cursor {
			padded := line + strings.Repeat(" ", max(m.width-lipgloss.Width(line), 0))
			b.WriteString(selectedRowBg.Render(padded) + "\n")
		} else {
			b.WriteString(line + "\n")
		}
	}

	b.WriteString(" " + metaStyle.Render(fmt.Sprintf("page %d/%d", m.q.Page(), m.q.TotalPages(m.filtered))) + "\n")

	if m.cursor < len(m.view) && m.view[m.cursor].Description != "" {
		b.WriteString("\n " + dimStyle.Render(truncStr(m.view[m.cursor].Description, m.width-4)) + "\n")
	}

	if m.state == catConfirmDelete && m.cursor < len(m.view) {
		b.WriteString("\n " + errStyle.Render(fmt.Sprintf("delete %q? (y/n)", m.view[m.cursor].Name)) + "\n")
	}

	return truncateToHeight(b.String(), m.height)
}

func (m categoriesModel) viewForm() string {
	var b strings.Builder
	title := "NEW CATEGORY"
	if m.editingID != 0 {
		title = "EDIT CATEGORY"
	}
	b.WriteString(" " + titleStyle.Render(title) + "\n\n")

	labels := [numCatFields]string{"name", "description"}
	for i := 0; i < numCatFields; i++ {
		cursor := " "
		style := metaStyle
		if i == m.formFocus {
			cursor = ">"
			style = selectedStyle
		}
		value := m.fields[i]
		if i == m.formFocus {
			value += "█"
		}
		fmt.Fprintf(&b, " %s %s: %s\n", cursor, style.Render(fmt.Sprintf("%-11s", labels[i])), value)
		if msg, ok := m.formErrs[labels[i]]; ok {
			b.WriteString("                " + errStyle.Render(msg) + "\n")
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
