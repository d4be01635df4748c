package tui

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aturmation/aturmation-cli/pkg/client"
	"github.com/aturmation/aturmation-cli/pkg/domain"
)

// dashboardRefreshInterval is how often the overview re-polls the server
// while visible.
const dashboardRefreshInterval = 30 * time.Second

// -- messages --

type dashboardLoadedMsg struct {
	products     int
	categories   int
	transactions int
	lowStock     []domain.Product
	recent       []domain.Transaction
	err          error
}

type dashboardTickMsg time.Time

// -- model --

type dashboardModel struct {
	client *client.Client
	me     domain.User

	products     int
	categories   int
	transactions int
	lowStock     []domain.Product
	recent       []domain.Transaction

	loaded bool
	err    error
	width  int
	height int
}

func newDashboardModel(c *client.Client, me domain.User) dashboardModel {
	return dashboardModel{client: c, me: me}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.load(), dashboardTick())
}

func dashboardTick() tea.Cmd {
	return tea.Tick(dashboardRefreshInterval, func(t time.Time) tea.Msg {
		return dashboardTickMsg(t)
	})
}

// load gathers the whole overview in one command: totals come from
// page-sized-1 list calls, so the payloads stay tiny.
func (m dashboardModel) load() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx := context.Background()
		tiny := url.Values{"page": {"1"}, "per_page": {"1"}}

		prodPage, err := c.ListProducts(ctx, tiny)
		if err != nil {
			return dashboardLoadedMsg{err: err}
		}
		cats, err := c.ListCategories(ctx)
		if err != nil {
			return dashboardLoadedMsg{err: err}
		}
		txPage, err := c.ListTransactions(ctx, url.Values{"page": {"1"}, "per_page": {"5"}})
		if err != nil {
			return dashboardLoadedMsg{err: err}
		}
		low, err := c.LowStockProducts(ctx)
		if err != nil {
			return dashboardLoadedMsg{err: err}
		}

		return dashboardLoadedMsg{
			products:     prodPage.Total,
			categories:   len(cats),
			transactions: txPage.Total,
			lowStock:     low,
			recent:       txPage.Transactions,
		}
	}
}

func (m dashboardModel) Update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardLoadedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.loaded = true
			m.products = msg.products
			m.categories = msg.categories
			m.transactions = msg.transactions
			m.lowStock = msg.lowStock
			m.recent = msg.recent
		}
		return m, nil

	case dashboardTickMsg:
		return m, tea.Batch(m.load(), dashboardTick())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "r" {
			return m, m.load()
		}
	}
	return m, nil
}

// -- view --

func (m dashboardModel) View() string {
	var b strings.Builder

	greeting := "welcome back"
	if m.me.Name != "" {
		greeting = "welcome back, " + m.me.Name
	}
	b.WriteString(" " + titleStyle.Render("DASHBOARD") + "  " + metaStyle.Render(greeting) + "\n\n")

	if m.err != nil {
		b.WriteString(" " + errStyle.Render(serverMessage(m.err)) + "\n")
		if !m.loaded {
			return b.String()
		}
	}
	if !m.loaded {
		b.WriteString(" " + dimStyle.Render("loading overview..."))
		return b.String()
	}

	b.WriteString(" " + statCard("products", m.products) +
		"  " + statCard("categories", m.categories) +
		"  " + statCard("movements", m.transactions) + "\n\n")

	b.WriteString(" " + warnStyle.Render(fmt.Sprintf("LOW STOCK (%d)", len(m.lowStock))) + "\n")
	if len(m.lowStock) == 0 {
		b.WriteString(" " + dimStyle.Render("  everything is above minimum") + "\n")
	}
	for i, p := range m.lowStock {
		if i == 5 {
			b.WriteString(" " + dimStyle.Render(fmt.Sprintf("  ...and %d more", len(m.lowStock)-5)) + "\n")
			break
		}
		line := fmt.Sprintf("  %-28s %s",
			truncStr(p.Name, 28),
			lowStockStyle.Render(fmt.Sprintf("%d left (min %d)", p.Stock, p.MinStock)))
		b.WriteString(" " + line + "\n")
	}
	b.WriteString("\n")

	b.WriteString(" " + accentStyle.Render("RECENT MOVEMENTS") + "\n")
	if len(m.recent) == 0 {
		b.WriteString(" " + dimStyle.Render("  no activity yet") + "\n")
	}
	for _, tx := range m.recent {
		badge := stockInStyle.Render(" IN ")
		qty := okStyle.Render(fmt.Sprintf("+%d", tx.Quantity))
		if tx.Type == domain.StockOut {
			badge = stockOutStyle.Render(" OUT")
			qty = errStyle.Render(fmt.Sprintf("-%d", tx.Quantity))
		}
		line := fmt.Sprintf("  %s %-26s %s  %s",
			badge, truncStr(tx.ProductName, 26), qty, metaStyle.Render(formatTime(tx.CreatedAt)))
		b.WriteString(" " + line + "\n")
	}

	return truncateToHeight(b.String(), m.height)
}

func statCard(label string, n int) string {
	return accentStyle.Render(fmt.Sprintf("%d", n)) + " " + metaStyle.Render(label)
}
