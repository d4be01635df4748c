package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aturmation/aturmation-cli/pkg/domain"
)

func loadedDashboardModel() dashboardModel {
	m := newDashboardModel(nil, domain.User{Name: "Budi", Role: domain.RoleAdmin})
	m.width = 80
	m.height = 30
	m, _ = m.Update(dashboardLoadedMsg{
		products:     42,
		categories:   6,
		transactions: 130,
		lowStock: []domain.Product{
			{ID: 2, Name: "Teh Hijau", Stock: 2, MinStock: 5},
		},
		recent: []domain.Transaction{
			{ID: 1, ProductName: "Kopi Arabica", Type: domain.StockIn, Quantity: 10, CreatedAt: time.Now()},
		},
	})
	return m
}

func TestDashboardRendersCounts(t *testing.T) {
	view := loadedDashboardModel().View()
	for _, want := range []string{"42", "products", "6", "categories", "130", "movements"} {
		if !strings.Contains(view, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

func TestDashboardRendersLowStock(t *testing.T) {
	view := loadedDashboardModel().View()
	if !strings.Contains(view, "LOW STOCK (1)") {
		t.Error("dashboard should count low-stock products")
	}
	if !strings.Contains(view, "Teh Hijau") {
		t.Error("dashboard should list the low-stock product")
	}
	if !strings.Contains(view, "2 left (min 5)") {
		t.Error("dashboard should show how far below minimum the stock is")
	}
}

func TestDashboardRendersRecentMovements(t *testing.T) {
	view := loadedDashboardModel().View()
	if !strings.Contains(view, "Kopi Arabica") || !strings.Contains(view, "+10") {
		t.Error("dashboard should list recent movements with direction")
	}
}

func TestDashboardTickSchedulesReload(t *testing.T) {
	m := loadedDashboardModel()
	_, cmd := m.Update(dashboardTickMsg(time.Now()))
	if cmd == nil {
		t.Fatal("a tick should schedule a reload and the next tick")
	}
}

func TestDashboardKeepsDataOnTransientError(t *testing.T) {
	m := loadedDashboardModel()
	m, _ = m.Update(dashboardLoadedMsg{err: errors.New("dial tcp: refused")})
	view := m.View()
	if !strings.Contains(view, "42") {
		t.Error("a failed refresh should keep the previous overview on screen")
	}
	if !strings.Contains(view, "connection failed") {
		t.Error("the refresh failure should be surfaced")
	}
}
