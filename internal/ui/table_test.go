package ui

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// KeyValueBlock
// ---------------------------------------------------------------------------

func TestKeyValueBlockContainsTitleAndPairs(t *testing.T) {
	result := KeyValueBlock("Mobit Token", [][2]string{
		{"Symbol", "MTK"},
		{"Cap", "500000000"},
	})
	for _, s := range []string{"Mobit Token", "Symbol", "MTK", "Cap", "500000000"} {
		assert.Contains(t, result, s)
	}
}

func TestKeyValueBlockPreservesOrder(t *testing.T) {
	result := KeyValueBlock("", [][2]string{{"First", "A"}, {"Second", "B"}, {"Third", "C"}})
	i1, i2, i3 := strings.Index(result, "First"), strings.Index(result, "Second"), strings.Index(result, "Third")
	require.Greater(t, i1, -1)
	assert.Less(t, i1, i2)
	assert.Less(t, i2, i3)
}

// ---------------------------------------------------------------------------
// Table
// ---------------------------------------------------------------------------

func TestTableRender(t *testing.T) {
	tbl := NewTable(Column{Title: "ROLE"}, Column{Title: "MEMBERS"})
	tbl.AddRow("MINTER_ROLE", "1")
	tbl.AddRow("BURNER_ROLE", "0")

	out := tbl.Render()
	assert.Contains(t, out, "ROLE")
	assert.Contains(t, out, "MEMBERS")
	assert.Contains(t, out, "─")
	assert.Less(t, strings.Index(out, "MINTER_ROLE"), strings.Index(out, "BURNER_ROLE"))
}

func TestTableAutoWidth(t *testing.T) {
	tbl := NewTable(Column{Title: "A"}, Column{Title: "B"})
	tbl.AddRow("longer-cell", "x")
	assert.Equal(t, []int{len("longer-cell"), 1}, tbl.widths())

	fixed := NewTable(Column{Title: "A", Width: 20})
	assert.Equal(t, []int{20}, fixed.widths())
}

func TestTableShortRow(t *testing.T) {
	tbl := NewTable(Column{Title: "A"}, Column{Title: "B"}, Column{Title: "C"})
	tbl.AddRow("only")
	assert.NotPanics(t, func() { _ = tbl.Render() })
}

func TestTableEmpty(t *testing.T) {
	out := NewTable(Column{Title: "NAME"}).Render()
	assert.Equal(t, 2, strings.Count(out, "\n"), "header and divider only")
}

// ---------------------------------------------------------------------------
// Confirm
// ---------------------------------------------------------------------------

func TestConfirm(t *testing.T) {
	cases := map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "\n": false, "": false, "maybe\n": false}
	for in, want := range cases {
		var out bytes.Buffer
		assert.Equal(t, want, Confirm(strings.NewReader(in), &out, "Proceed?"), "%q", in)
		assert.Contains(t, out.String(), "Proceed?")
	}
}

func TestConfirmDanger(t *testing.T) {
	var out bytes.Buffer
	assert.True(t, ConfirmDanger(strings.NewReader("y\n"), &out, "Renounce admin?"))
	assert.Contains(t, out.String(), "Renounce admin?")
}

// ---------------------------------------------------------------------------
// Spinner
// ---------------------------------------------------------------------------

type syncBuffer struct {
	mu  chan struct{}
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu <- struct{}{}
	defer func() { <-b.mu }()
	return b.buf.Write(p)
}

func TestSpinnerStartStop(t *testing.T) {
	out := &syncBuffer{mu: make(chan struct{}, 1)}
	s := NewSpinner(out, "reading hasRole")
	s.Start()
	s.Stop()
	assert.Contains(t, out.buf.String(), "reading hasRole")
}

// ---------------------------------------------------------------------------
// picker model
// ---------------------------------------------------------------------------

func pickerItems() []PickerItem {
	return []PickerItem{
		{Label: "council", SubLabel: "0x717c…B369", Badge: "DEFAULT_ADMIN_ROLE", Value: "council"},
		{Label: "minter", SubLabel: "0x3000…0001", Badge: "MINTER_ROLE", Value: "minter"},
		{Label: "holder", SubLabel: "0x3000…0002", Value: "holder"},
	}
}

func press(m pickerModel, msgs ...tea.KeyMsg) pickerModel {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(pickerModel)
	}
	return m
}

func TestPickerNavigateAndSelect(t *testing.T) {
	m := press(pickerModel{title: "Act as", items: pickerItems()},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyUp},
		tea.KeyMsg{Type: tea.KeyEnter},
	)
	require.NotNil(t, m.selected)
	assert.Equal(t, "minter", m.selected.Value)
}

func TestPickerFilter(t *testing.T) {
	m := press(pickerModel{title: "Act as", items: pickerItems()},
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("admin")},
	)
	require.Len(t, m.visible(), 1)
	assert.Contains(t, m.View(), "council")

	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, m.selected)
	assert.Equal(t, "council", m.selected.Value)
}

func TestPickerFilterBackspace(t *testing.T) {
	m := press(pickerModel{items: pickerItems()},
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("zz")},
	)
	assert.Empty(t, m.visible())
	assert.Contains(t, m.View(), "no match")

	m = press(m, tea.KeyMsg{Type: tea.KeyBackspace}, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Len(t, m.visible(), 3)

	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "council", m.selected.Value)
}

func TestPickerCancel(t *testing.T) {
	m := press(pickerModel{items: pickerItems()}, tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, m.quitting)
	assert.Nil(t, m.selected)
	assert.Empty(t, m.View())
}

func TestPickItemEmpty(t *testing.T) {
	_, err := PickItem("Act as", nil)
	assert.Error(t, err)
}
