package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aturmation/aturmation-cli/pkg/client"
	"github.com/aturmation/aturmation-cli/pkg/domain"
	"github.com/aturmation/aturmation-cli/pkg/forms"
	"github.com/aturmation/aturmation-cli/pkg/query"
)

// productsState is the state machine for the products screen.
type productsState int

const (
	prodBrowsing productsState = iota
	prodSearching
	prodForm
	prodConfirmDelete
	prodAdjust
)

// Product form fields, in focus order. Category is a picker, not a text input.
const (
	prodFieldName = iota
	prodFieldSKU
	prodFieldPrice
	prodFieldStock
	prodFieldMinStock
	prodFieldCategory
	prodFieldDescription
	numProdFields
)

// -- messages --

type productsLoadedMsg struct {
	seq  uint64
	page *client.ProductPage
	err  error
}

type productCategoriesMsg struct {
	categories []domain.Category
	err        error
}

type productSavedMsg struct {
	product *domain.Product
	err     error
}

type productDeletedMsg struct{ err error }

type stockAdjustedMsg struct {
	tx  *domain.Transaction
	err error
}

type copySKUMsg struct{ err error }

// -- model --

type productsModel struct {
	client     *client.Client
	q          query.Query
	products   []domain.Product
	total      int
	pages      int
	categories []domain.Category
	cursor     int
	state      productsState

	searchInput string

	// form
	fields    [numProdFields]string
	formFocus int
	formErrs  forms.Errors
	editingID int // 0 = creating
	catIdx    int // index into categories for the form picker

	// stock adjust
	adjustType string
	adjustQty  string

	loading   bool
	err       error
	banner    string // server error, verbatim
	statusMsg string
	width     int
	height    int
}

func newProductsModel(c *client.Client, pageSize int) productsModel {
	return productsModel{
		client:  c,
		q:       query.New(pageSize, "name"),
		loading: true,
	}
}

func (m productsModel) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.loadCategories())
}

// fetch issues a page fetch stamped with the query's current sequence
// number. Responses that arrive after the query moved on are dropped.
func (m productsModel) fetch() tea.Cmd {
	seq := m.q.Seq()
	params := m.q.Values()
	c := m.client
	return func() tea.Msg {
		page, err := c.ListProducts(context.Background(), params)
		return productsLoadedMsg{seq: seq, page: page, err: err}
	}
}

func (m productsModel) loadCategories() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		cats, err := c.ListCategories(context.Background())
		return productCategoriesMsg{categories: cats, err: err}
	}
}

func (m productsModel) Update(msg tea.Msg) (productsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case productsLoadedMsg:
		if !m.q.Latest(msg.seq) {
			return m, nil // stale response from a superseded query
		}
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.products = msg.page.Products
			m.total = msg.page.Total
			m.pages = msg.page.Pages
			if m.cursor >= len(m.products) {
				m.cursor = 0
			}
		}
		return m, nil

	case productCategoriesMsg:
		if msg.err == nil {
			m.categories = msg.categories
		}
		return m, nil

	case productSavedMsg:
		if msg.err != nil {
			m.banner = serverMessage(msg.err)
			return m, nil
		}
		m.state = prodBrowsing
		m.statusMsg = fmt.Sprintf("saved %q", msg.product.Name)
		m.fields = [numProdFields]string{}
		m.loading = true
		return m, m.fetch()

	case productDeletedMsg:
		if msg.err != nil {
			m.banner = serverMessage(msg.err)
			m.state = prodBrowsing
			return m, nil
		}
		m.state = prodBrowsing
		m.statusMsg = "product deleted"
		m.loading = true
		return m, m.fetch()

	case stockAdjustedMsg:
		if msg.err != nil {
			m.banner = serverMessage(msg.err)
			return m, nil
		}
		m.state = prodBrowsing
		m.statusMsg = fmt.Sprintf("stock is now %d", msg.tx.CurrentStock)
		// Patch the row in place; the refetch confirms it.
		for i := range m.products {
			if m.products[i].ID == msg.tx.ProductID {
				m.products[i].Stock = msg.tx.CurrentStock
				m.products[i].LowStock = m.products[i].IsLowStock()
			}
		}
		return m, m.fetch()

	case copySKUMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("copy failed: %v", msg.err)
		} else {
			m.statusMsg = "SKU copied!"
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		switch m.state {
		case prodSearching:
			return m.updateSearch(msg)
		case prodForm:
			return m.updateForm(msg)
		case prodConfirmDelete:
			return m.updateConfirm(msg)
		case prodAdjust:
			return m.updateAdjust(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m productsModel) updateSearch(msg tea.KeyMsg) (productsModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.state = prodBrowsing
		m.q.SetSearch(strings.TrimSpace(m.searchInput))
		m.cursor = 0
		m.loading = true
		return m, m.fetch()
	case "esc":
		m.state = prodBrowsing
		m.searchInput = ""
		if m.q.Search() != "" {
			m.q.SetSearch("")
			m.loading = true
			return m, m.fetch()
		}
	default:
		m.searchInput = editRune(m.searchInput, msg.String())
	}
	return m, nil
}

func (m productsModel) updateList(msg tea.KeyMsg) (productsModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.products)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "/":
		m.state = prodSearching
		m.searchInput = m.q.Search()
	case "s":
		// Advance to the next sort column, ascending.
		cols := domain.ProductSortColumns
		next := cols[0]
		for i, col := range cols {
			if col == m.q.SortBy() {
				next = cols[(i+1)%len(cols)]
				break
			}
		}
		m.q.ToggleSort(next)
		m.cursor = 0
		m.loading = true
		return m, m.fetch()
	case "o":
		// Flip direction on the current column.
		m.q.ToggleSort(m.q.SortBy())
		m.cursor = 0
		m.loading = true
		return m, m.fetch()
	case "f":
		m.cycleCategoryFilter()
		m.cursor = 0
		m.loading = true
		return m, m.fetch()
	case "]":
		if m.q.Page() < m.pages {
			m.q.SetPage(m.q.Page() + 1)
			m.cursor = 0
			m.loading = true
			return m, m.fetch()
		}
	case "[":
		if m.q.Page() > 1 {
			m.q.SetPage(m.q.Page() - 1)
			m.cursor = 0
			m.loading = true
			return m, m.fetch()
		}
	case "n":
		m.openForm(nil)
	case "e":
		if m.cursor < len(m.products) {
			p := m.products[m.cursor]
			m.openForm(&p)
		}
	case "d":
		if m.cursor < len(m.products) {
			m.state = prodConfirmDelete
		}
	case "+":
		if m.cursor < len(m.products) {
			m.state = prodAdjust
			m.adjustType = domain.StockIn
			m.adjustQty = ""
		}
	case "-":
		if m.cursor < len(m.products) {
			m.state = prodAdjust
			m.adjustType = domain.StockOut
			m.adjustQty = ""
		}
	case "c":
		if m.cursor < len(m.products) {
			sku := m.products[m.cursor].SKU
			return m, func() tea.Msg {
				return copySKUMsg{err: clipboard.WriteAll(sku)}
			}
		}
	case "r":
		m.loading = true
		return m, tea.Batch(m.fetch(), m.loadCategories())
	}
	return m, nil
}

// cycleCategoryFilter steps the category filter through every known
// category and back to "all".
func (m *productsModel) cycleCategoryFilter() {
	if len(m.categories) == 0 {
		return
	}
	current := m.q.Filter("category_id")
	if current == "" {
		m.q.SetFilter("category_id", strconv.Itoa(m.categories[0].ID))
		return
	}
	for i, cat := range m.categories {
		if strconv.Itoa(cat.ID) == current {
			if i+1 < len(m.categories) {
				m.q.SetFilter("category_id", strconv.Itoa(m.categories[i+1].ID))
			} else {
				m.q.SetFilter("category_id", "")
			}
			return
		}
	}
	m.q.SetFilter("category_id", "")
}

func (m *productsModel) openForm(p *domain.Product) {
	m.state = prodForm
	m.formFocus = 0
	m.formErrs = nil
	m.banner = ""
	if p == nil {
		m.editingID = 0
		m.fields = [numProdFields]string{}
		m.fields[prodFieldStock] = "0"
		m.fields[prodFieldMinStock] = "5"
		m.catIdx = 0
		return
	}
	m.editingID = p.ID
	m.fields[prodFieldName] = p.Name
	m.fields[prodFieldSKU] = p.SKU
	m.fields[prodFieldPrice] = strconv.FormatFloat(p.Price, 'f', -1, 64)
	m.fields[prodFieldStock] = strconv.Itoa(p.Stock)
	m.fields[prodFieldMinStock] = strconv.Itoa(p.MinStock)
	m.fields[prodFieldDescription] = p.Description
	m.catIdx = 0
	for i, cat := range m.categories {
		if cat.ID == p.CategoryID {
			m.catIdx = i
			break
		}
	}
}

func (m productsModel) updateForm(msg tea.KeyMsg) (productsModel, tea.Cmd) {
	m.banner = ""
	switch msg.String() {
	case "esc":
		m.state = prodBrowsing
		m.formErrs = nil
	case "ctrl+s":
		return m.submitForm()
	case "tab", "down":
		m.formFocus = (m.formFocus + 1) % numProdFields
	case "shift+tab", "up":
		m.formFocus = (m.formFocus - 1 + numProdFields) % numProdFields
	case "enter":
		if m.formFocus == numProdFields-1 {
			return m.submitForm()
		}
		m.formFocus++
	case "backspace":
		if m.formFocus != prodFieldCategory {
			m.fields[m.formFocus] = editRune(m.fields[m.formFocus], "backspace")
		}
	default:
		key := msg.String()
		if m.formFocus == prodFieldCategory {
			// Cycle categories with h/l, like a picker.
			if (key == "h" || key == "l") && len(m.categories) > 0 {
				if key == "l" {
					m.catIdx = (m.catIdx + 1) % len(m.categories)
				} else {
					m.catIdx = (m.catIdx - 1 + len(m.categories)) % len(m.categories)
				}
			}
			return m, nil
		}
		if len(key) == 1 {
			m.fields[m.formFocus] = editRune(m.fields[m.formFocus], key)
		}
	}
	return m, nil
}

func (m productsModel) submitForm() (productsModel, tea.Cmd) {
	categoryID := 0
	if m.catIdx < len(m.categories) {
		categoryID = m.categories[m.catIdx].ID
	}
	form := forms.ProductForm{
		Name:        m.fields[prodFieldName],
		SKU:         m.fields[prodFieldSKU],
		Price:       m.fields[prodFieldPrice],
		Stock:       m.fields[prodFieldStock],
		MinStock:    m.fields[prodFieldMinStock],
		CategoryID:  categoryID,
		Description: m.fields[prodFieldDescription],
	}
	req, errs := form.Validate()
	m.formErrs = errs
	if !errs.Valid() {
		return m, nil
	}
	if req.SKU == "" {
		req.SKU = generateSKU(req.Name)
	}

	c := m.client
	id := m.editingID
	return m, func() tea.Msg {
		var p *domain.Product
		var err error
		if id == 0 {
			p, err = c.CreateProduct(context.Background(), req)
		} else {
			p, err = c.UpdateProduct(context.Background(), id, req)
		}
		return productSavedMsg{product: p, err: err}
	}
}

func (m productsModel) updateConfirm(msg tea.KeyMsg) (productsModel, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		if m.cursor < len(m.products) {
			id := m.products[m.cursor].ID
			c := m.client
			return m, func() tea.Msg {
				return productDeletedMsg{err: c.DeleteProduct(context.Background(), id)}
			}
		}
		m.state = prodBrowsing
	case "n", "esc":
		m.state = prodBrowsing
	}
	return m, nil
}

func (m productsModel) updateAdjust(msg tea.KeyMsg) (productsModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = prodBrowsing
	case "tab":
		if m.adjustType == domain.StockIn {
			m.adjustType = domain.StockOut
		} else {
			m.adjustType = domain.StockIn
		}
	case "enter":
		if m.cursor >= len(m.products) {
			m.state = prodBrowsing
			return m, nil
		}
		form := forms.TransactionForm{
			ProductID: m.products[m.cursor].ID,
			Type:      m.adjustType,
			Quantity:  m.adjustQty,
		}
		req, errs := form.Validate()
		if !errs.Valid() {
			m.formErrs = errs
			return m, nil
		}
		m.formErrs = nil
		c := m.client
		return m, func() tea.Msg {
			tx, err := c.CreateTransaction(context.Background(), req)
			return stockAdjustedMsg{tx: tx, err: err}
		}
	case "backspace":
		m.adjustQty = editRune(m.adjustQty, "backspace")
	default:
		key := msg.String()
		if len(key) == 1 && key >= "0" && key <= "9" {
			m.adjustQty += key
		}
	}
	return m, nil
}

// -- view --

func (m productsModel) View() string {
	if m.state == prodForm {
		return m.viewForm()
	}

	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("PRODUCTS") + "  " + metaStyle.Render(fmt.Sprintf("%d items", m.total)) + "\n")

	// Search line
	switch {
	case m.state == prodSearching:
		b.WriteString(" " + searchStyle.Render("/ "+m.searchInput+"█"))
	case m.q.Search() != "":
		b.WriteString(" " + searchStyle.Render("/ "+m.q.Search()))
	default:
		b.WriteString(" " + dimStyle.Render("/ search..."))
	}

	// Sort + filter indicators
	arrow := "↑"
	if m.q.SortDir() == query.Desc {
		arrow = "↓"
	}
	b.WriteString("   " + searchStyle.Render(m.q.SortBy()+arrow) + " " + helpKeyStyle.Render("s/o"))
	if filter := m.q.Filter("category_id"); filter != "" {
		name := filter
		for _, cat := range m.categories {
			if strconv.Itoa(cat.ID) == filter {
				name = cat.Name
				break
			}
		}
		b.WriteString("   " + accentStyle.Render("["+name+"]") + " " + helpKeyStyle.Render("f"))
	} else {
		b.WriteString("   " + dimStyle.Render("[all categories]") + " " + helpKeyStyle.Render("f"))
	}
	b.WriteString("\n")

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

	if m.loading && len(m.products) == 0 {
		b.WriteString(" " + dimStyle.Render("loading products..."))
		return b.String()
	}
	if m.err != nil {
		b.WriteString(" " + dimStyle.Render(fmt.Sprintf("error: %v", m.err)))
		return b.String()
	}
	if len(m.products) == 0 {
		b.WriteString(" " + dimStyle.Render("no products found"))
		return b.String()
	}

	for i, p := range m.products {
		cursor := "  "
		rowStyle := dimStyle
		if i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
			rowStyle = normalStyle.Bold(true)
		}

		nameW := m.width - 46
		if nameW < 16 {
			nameW = 16
		}
		name := fmt.Sprintf("%-*s", nameW, truncStr(p.Name, nameW))
		sku := metaStyle.Render(fmt.Sprintf("%-14s", truncStr(p.SKU, 14)))
		price := normalStyle.Render(fmt.Sprintf("%14s", formatPrice(p.Price)))
		stock := stockStyle(p.Stock, p.MinStock).Render(fmt.Sprintf("%5d", p.Stock))
		badge := "     "
		if p.LowStock || p.IsLowStock() {
			badge = lowStockStyle.Render(" LOW ")
		}

		line := cursor + rowStyle.Render(name) + " " + sku + " " + price + " " + stock + badge
		if i == m.cursor {
			padded := line + strings.Repeat(" ", max(m.width-lipgloss.Width(line), 0))
			b.WriteString(selectedRowBg.Render(padded) + "\n")
		} else {
			b.WriteString(line + "\n")
		}
	}

	b.WriteString(" " + metaStyle.Render(fmt.Sprintf("page %d/%d", m.q.Page(), max(m.pages, 1))) + "\n")

	// Detail preview for the selected product
	if m.cursor < len(m.products) {
		p := m.products[m.cursor]
		b.WriteString("\n")
		header := " " + selectedStyle.Render(p.Name) + "  " + metaStyle.Render(p.SKU)
		if p.CategoryName != "" {
			header += "  " + accentStyle.Render(p.CategoryName)
		}
		b.WriteString(header + "\n")
		detail := fmt.Sprintf("%s  stock %d (min %d)", formatPrice(p.Price), p.Stock, p.MinStock)
		b.WriteString(" " + normalStyle.Render(detail) + "\n")
		if p.Description != "" {
			b.WriteString(" " + dimStyle.Render(truncStr(p.Description, m.width-4)) + "\n")
		}
	}

	// Overlays
	switch m.state {
	case prodConfirmDelete:
		if m.cursor < len(m.products) {
			b.WriteString("\n " + errStyle.Render(fmt.Sprintf("delete %q? (y/n)", m.products[m.cursor].Name)) + "\n")
		}
	case prodAdjust:
		label := stockInStyle.Render("stock in")
		if m.adjustType == domain.StockOut {
			label = stockOutStyle.Render("stock out")
		}
		b.WriteString(fmt.Sprintf("\n %s %s: %s█  %s\n",
			selectedStyle.Render("adjust"), label, m.adjustQty, dimStyle.Render("tab to switch, enter to apply")))
		if msg, ok := m.formErrs["quantity"]; ok {
			b.WriteString(" " + errStyle.Render(msg) + "\n")
		}
	}

	return truncateToHeight(b.String(), m.height)
}

func (m productsModel) viewForm() string {
	var b strings.Builder
	title := "NEW PRODUCT"
	if m.editingID != 0 {
		title = "EDIT PRODUCT"
	}
	b.WriteString(" " + titleStyle.Render(title) + "\n\n")

	labels := [numProdFields]string{"name", "sku", "price", "stock", "min stock", "category", "description"}
	for i := 0; i < numProdFields; i++ {
		cursor := " "
		style := metaStyle
		if i == m.formFocus {
			cursor = ">"
			style = selectedStyle
		}

		if i == prodFieldCategory {
			catName := dimStyle.Render("(none)")
			if m.catIdx < len(m.categories) {
				catName = accentStyle.Render(m.categories[m.catIdx].Name)
			}
			fmt.Fprintf(&b, " %s %s: %s  %s\n", cursor, style.Render(fmt.Sprintf("%-11s", labels[i])),
				catName, dimStyle.Render("(h/l to cycle)"))
		} else {
			value := m.fields[i]
			if i == m.formFocus {
				value += "█"
			}
			if i == prodFieldSKU && m.fields[i] == "" && m.formFocus != i {
				value = inputPlaceholderStyle.Render("(generated when blank)")
			}
			fmt.Fprintf(&b, " %s %s: %s\n", cursor, style.Render(fmt.Sprintf("%-11s", labels[i])), value)
		}
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
