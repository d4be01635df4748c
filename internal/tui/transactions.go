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

type transactionsState int

const (
	txBrowsing transactionsState = iota
	txSearching
	txForm
)

const (
	txFieldProduct = iota // h/l picker
	txFieldType           // h/l toggle
	txFieldQuantity
	txFieldNote
	numTxFields
)

// typeFilters is the cycle order for the f key: all, in only, out only.
var typeFilters = []string{"", domain.StockIn, domain.StockOut}

// -- messages --

type transactionsLoadedMsg struct {
	seq  uint64
	page *client.TransactionPage
	err  error
}

type txProductsMsg struct {
	products []domain.Product
	err      error
}

type transactionSavedMsg struct {
	tx  *domain.Transaction
	err error
}

// -- model --

type transactionsModel struct {
	client *client.Client
	q      query.Query

	transactions []domain.Transaction
	total        int
	pages        int
	cursor       int
	state        transactionsState

	searchInput string
	filterIdx   int

	// products for the form picker, loaded lazily on first n.
	products   []domain.Product
	productIdx int

	fields    [numTxFields]string
	formType  string
	formFocus int
	formErrs  forms.Errors

	loading   bool
	err       error
	banner    string
	statusMsg string
	width     int
	height    int
}

func newTransactionsModel(c *client.Client, pageSize int) transactionsModel {
	m := transactionsModel{
		client:   c,
		q:        query.New(pageSize, "created_at"),
		formType: domain.StockIn,
		loading:  true,
	}
	// Newest movements first.
	m.q.ToggleSort("created_at")
	return m
}

func (m transactionsModel) Init() tea.Cmd {
	return m.fetch()
}

func (m transactionsModel) fetch() tea.Cmd {
	c := m.client
	seq := m.q.Seq()
	params := m.q.Values()
	return func() tea.Msg {
		page, err := c.ListTransactions(context.Background(), params)
		return transactionsLoadedMsg{seq: seq, page: page, err: err}
	}
}

func (m transactionsModel) loadProducts() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		q := query.New(100, "name")
		page, err := c.ListProducts(context.Background(), q.Values())
		if err != nil {
			return txProductsMsg{err: err}
		}
		return txProductsMsg{products: page.Products}
	}
}

func (m transactionsModel) Update(msg tea.Msg) (transactionsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case transactionsLoadedMsg:
		// A newer query superseded this fetch; drop it.
		if !m.q.Latest(msg.seq) {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.transactions = msg.page.Transactions
			m.total = msg.page.Total
			m.pages = msg.page.Pages
			if m.cursor >= len(m.transactions) {
				m.cursor = 0
			}
		}
		return m, nil

	case txProductsMsg:
		if msg.err == nil {
			m.products = msg.products
		}
		return m, nil

	case transactionSavedMsg:
		if msg.err != nil {
			m.banner = serverMessage(msg.err)
			return m, nil
		}
		m.state = txBrowsing
		m.statusMsg = fmt.Sprintf("%s · stock now %d",
			strings.ReplaceAll(msg.tx.Type, "_", " "), msg.tx.CurrentStock)
		m.fields = [numTxFields]string{}
		m.loading = true
		return m, m.fetch()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		switch m.state {
		case txSearching:
			return m.updateSearch(msg)
		case txForm:
			return m.updateForm(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m transactionsModel) updateSearch(msg tea.KeyMsg) (transactionsModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.state = txBrowsing
		m.q.SetSearch(strings.TrimSpace(m.searchInput))
		m.loading = true
		return m, m.fetch()
	case "esc":
		m.state = txBrowsing
		m.searchInput = ""
		m.q.SetSearch("")
		m.loading = true
		return m, m.fetch()
	default:
		m.searchInput = editRune(m.searchInput, msg.String())
	}
	return m, nil
}

func (m transactionsModel) updateList(msg tea.KeyMsg) (transactionsModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.transactions)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "/":
		m.state = txSearching
		m.searchInput = m.q.Search()
	case "f":
		m.filterIdx = (m.filterIdx + 1) % len(typeFilters)
		m.q.SetFilter("type", typeFilters[m.filterIdx])
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
		m.state = txForm
		m.fields = [numTxFields]string{}
		m.formType = domain.StockIn
		m.productIdx = 0
		m.formFocus = txFieldProduct
		m.formErrs = nil
		if len(m.products) == 0 {
			return m, m.loadProducts()
		}
	case "r":
		m.loading = true
		return m, m.fetch()
	}
	return m, nil
}

func (m transactionsModel) updateForm(msg tea.KeyMsg) (transactionsModel, tea.Cmd) {
	m.banner = ""
	switch msg.String() {
	case "esc":
		m.state = txBrowsing
		m.formErrs = nil
		return m, nil
	case "ctrl+s":
		return m.submitForm()
	case "tab", "down":
		m.formFocus = (m.formFocus + 1) % numTxFields
		return m, nil
	case "shift+tab", "up":
		m.formFocus = (m.formFocus - 1 + numTxFields) % numTxFields
		return m, nil
	case "enter":
		if m.formFocus == numTxFields-1 {
			return m.submitForm()
		}
		m.formFocus++
		return m, nil
	}

	switch m.formFocus {
	case txFieldProduct:
		switch msg.String() {
		case "l", "right":
			if m.productIdx < len(m.products)-1 {
				m.productIdx++
			}
		case "h", "left":
			if m.productIdx > 0 {
				m.productIdx--
			}
		}
	case txFieldType:
		switch msg.String() {
		case "h", "l", "left", "right", " ":
			if m.formType == domain.StockIn {
				m.formType = domain.StockOut
			} else {
				m.formType = domain.StockIn
			}
		}
	default:
		key := msg.String()
		if key == "backspace" || len(key) == 1 {
			m.fields[m.formFocus] = editRune(m.fields[m.formFocus], key)
		}
	}
	return m, nil
}

func (m transactionsModel) submitForm() (transactionsModel, tea.Cmd) {
	var productID int
	if m.productIdx < len(m.products) {
		productID = m.products[m.productIdx].ID
	}
	form := forms.TransactionForm{
		ProductID: productID,
		Type:      m.formType,
		Quantity:  m.fields[txFieldQuantity],
		Note:      strings.TrimSpace(m.fields[txFieldNote]),
	}
	req, errs := form.Validate()
	m.formErrs = errs
	if !errs.Valid() {
		return m, nil
	}

	c := m.client
	return m, func() tea.Msg {
		tx, err := c.CreateTransaction(context.Background(), req)
		return transactionSavedMsg{tx: tx, err: err}
	}
}

// -- view --

func (m transactionsModel) View() string {
	if m.state == txForm {
		return m.viewForm()
	}

	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("TRANSACTIONS") + "  " + metaStyle.Render(fmt.Sprintf("%d total", m.total)) + "\n")

	switch {
	case m.state == txSearching:
		b.WriteString(" " + searchStyle.Render("/ "+m.searchInput+"█"))
	case m.q.Search() != "":
		b.WriteString(" " + searchStyle.Render("/ "+m.q.Search()))
	default:
		b.WriteString(" " + dimStyle.Render("/ search..."))
	}
	filter := typeFilters[m.filterIdx]
	if filter == "" {
		filter = "all"
	}
	b.WriteString("   " + searchStyle.Render("type:"+strings.ReplaceAll(filter, "_", " ")) + " " + helpKeyStyle.Render("f") + "\n")

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

	if m.loading && len(m.transactions) == 0 {
		b.WriteString(" " + dimStyle.Render("loading transactions..."))
		return b.String()
	}
	if m.err != nil {
		b.WriteString(" " + dimStyle.Render(fmt.Sprintf("error: %v", m.err)))
		return b.String()
	}
	if len(m.transactions) == 0 {
		b.WriteString(" " + dimStyle.Render("no transactions found"))
		return b.String()
	}

	for i, tx := range m.transactions {
		cursor := "  "
		rowStyle := dimStyle
		if i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
			rowStyle = normalStyle.Bold(true)
		}

		badge := stockInStyle.Render(" IN ")
		qty := okStyle.Render(fmt.Sprintf("+%d", tx.Quantity))
		if tx.Type == domain.StockOut {
			badge = stockOutStyle.Render(" OUT")
			qty = errStyle.Render(fmt.Sprintf("-%d", tx.Quantity))
		}

		nameW := m.width - 42
		if nameW < 14 {
			nameW = 14
		}
		name := fmt.Sprintf("%-*s", nameW, truncStr(tx.ProductName, nameW))

		line := cursor + badge + " " + rowStyle.Render(name) + " " + qty + "  " + metaStyle.Render(formatTime(tx.CreatedAt))
		if i == m.cursor {
			padded := line + strings.Repeat(" ", max(m.width-lipgloss.Width(line), 0))
			b.WriteString(selectedRowBg.Render(padded) + "\n")
		} else {
			b.WriteString(line + "\n")
		}
	}

	b.WriteString(" " + metaStyle.Render(fmt.Sprintf("page %d/%d", m.q.Page(), max(m.pages, 1))) + "\n")

	if m.cursor < len(m.transactions) {
		tx := m.transactions[m.cursor]
		detail := fmt.Sprintf("by user #%d", tx.CreatedBy)
		if tx.Note != "" {
			detail += " · " + tx.Note
		}
		b.WriteString("\n " + dimStyle.Render(truncStr(detail, m.width-4)) + "\n")
	}

	return truncateToHeight(b.String(), m.height)
}

func (m transactionsModel) viewForm() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("RECORD MOVEMENT") + "\n\n")

	labels := [numTxFields]string{"product", "type", "quantity", "note"}
	for i := 0; i < numTxFields; i++ {
		cursor := " "
		style := metaStyle
		if i == m.formFocus {
			cursor = ">"
			style = selectedStyle
		}

		var value string
		switch i {
		case txFieldProduct:
			if len(m.products) == 0 {
				value = dimStyle.Render("loading products...")
			} else {
				p := m.products[m.productIdx]
				value = fmt.Sprintf("◂ %s ▸ %s", truncStr(p.Name, 28), metaStyle.Render(fmt.Sprintf("stock %d", p.Stock)))
			}
		case txFieldType:
			value = "◂ " + typeStyle(m.formType).Render(strings.ReplaceAll(m.formType, "_", " ")) + " ▸"
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
		b.WriteString(" " + dimStyle.Render("h/l to pick, ctrl+s to save, esc to cancel") + "\n")
	}
	return truncateToHeight(b.String(), m.height)
}
