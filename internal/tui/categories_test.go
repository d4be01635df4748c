package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aturmation/aturmation-cli/pkg/domain"
)

func testCategories() []domain.Category {
	return []domain.Category{
		{ID: 1, Name: "Minuman", Description: "drinks", ProductCount: 12},
		{ID: 2, Name: "Makanan", Description: "food", ProductCount: 30},
		{ID: 3, Name: "Alat Tulis", ProductCount: 4},
	}
}

func loadedCategoriesModel() categoriesModel {
	m := newCategoriesModel(nil, 20)
	m.width = 80
	m.height = 30
	m, _ = m.Update(categoriesLoadedMsg{categories: testCategories()})
	return m
}

func TestCategoriesSortedByNameByDefault(t *testing.T) {
	m := loadedCategoriesModel()
	if len(m.view) != 3 {
		t.Fatalf("got %d rows, want 3", len(m.view))
	}
	if m.view[0].Name != "Alat Tulis" {
		t.Errorf("first row = %q, want alphabetical order", m.view[0].Name)
	}
}

func TestCategoriesSearchFiltersLocally(t *testing.T) {
	m := loadedCategoriesModel()
	m, _ = m.Update(keyMsg("/"))
	for _, r := range "minu" {
		m, _ = m.Update(keyMsg(string(r)))
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if len(m.view) != 1 || m.view[0].Name != "Minuman" {
		t.Errorf("view = %v, want just Minuman", m.view)
	}

	// Esc clears the search and restores the full list.
	m, _ = m.Update(keyMsg("/"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if len(m.view) != 3 {
		t.Errorf("got %d rows after clearing search, want 3", len(m.view))
	}
}

func TestCategoriesSortByProductCount(t *testing.T) {
	m := loadedCategoriesModel()
	m, _ = m.Update(keyMsg("s")) // name -> products
	if m.view[0].Name != "Alat Tulis" {
		t.Errorf("first row = %q, want fewest products first", m.view[0].Name)
	}
	m, _ = m.Update(keyMsg("o"))
	if m.view[0].Name != "Makanan" {
		t.Errorf("first row = %q, want most products first after flip", m.view[0].Name)
	}
}

func TestCategoriesEditPrefillsForm(t *testing.T) {
	m := loadedCategoriesModel()
	m, _ = m.Update(keyMsg("j")) // Makanan
	m, _ = m.Update(keyMsg("e"))
	if m.state != catForm {
		t.Fatal("'e' should open the form")
	}
	if m.fields[catFieldName] != "Makanan" {
		t.Errorf("name field = %q, want the selected category", m.fields[catFieldName])
	}
	if m.editingID != 2 {
		t.Errorf("editingID = %d, want 2", m.editingID)
	}
}

func TestCategoriesFormRejectsEmptyName(t *testing.T) {
	m := loadedCategoriesModel()
	m, _ = m.Update(keyMsg("n"))
	m, cmd := m.updateForm(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd != nil {
		t.Error("an invalid draft must not produce a network command")
	}
	if m.formErrs["name"] == "" {
		t.Error("empty name should be reported inline")
	}
}

func TestCategoriesPagerBoundTracksSearch(t *testing.T) {
	m := newCategoriesModel(nil, 2)
	m.width = 80
	m.height = 30
	m, _ = m.Update(categoriesLoadedMsg{categories: []domain.Category{
		{ID: 1, Name: "Kopi Bubuk"},
		{ID: 2, Name: "Kopi Instan"},
		{ID: 3, Name: "Kopi Tubruk"},
		{ID: 4, Name: "Teh Celup"},
		{ID: 5, Name: "Gula Pasir"},
	}})

	m, _ = m.Update(keyMsg("/"))
	for _, r := range "kopi" {
		m, _ = m.Update(keyMsg(string(r)))
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	// 3 matches under a page size of 2: two pages, not the three the
	// unfiltered collection would give.
	if !strings.Contains(m.View(), "page 1/2") {
		t.Errorf("indicator should count matching pages, view:\n%s", m.View())
	}

	m, _ = m.Update(keyMsg("]"))
	if m.q.Page() != 2 || len(m.view) != 1 {
		t.Fatalf("page = %d with %d rows, want the final match on page 2", m.q.Page(), len(m.view))
	}

	m, _ = m.Update(keyMsg("]"))
	if m.q.Page() != 2 {
		t.Errorf("page = %d, want ']' to stop at the last matching page", m.q.Page())
	}
}

func TestCategoriesViewShowsCounts(t *testing.T) {
	m := loadedCategoriesModel()
	view := m.View()
	if !strings.Contains(view, "12 products") {
		t.Error("rows should show per-category product counts")
	}
}
