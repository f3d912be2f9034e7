package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mealmax/mealprobe/internal/tui/theme"
)

// Column defines a table column.
type Column struct {
	Header   string
	Width    int // Fixed width (0 = auto)
	MaxWidth int
	Align    lipgloss.Position
}

// Table renders rows of strings in a styled table. Used for run history
// and leaderboard output.
type Table struct {
	Columns    []Column
	Rows       [][]string
	ShowHeader bool
	Striped    bool
	Styled     bool
}

// NewTable creates a table component.
func NewTable(columns []Column) *Table {
	return &Table{
		Columns:    columns,
		ShowHeader: true,
		Striped:    true,
		Styled:     true,
	}
}

// AddRow appends a row.
func (t *Table) AddRow(cells ...string) *Table {
	t.Rows = append(t.Rows, cells)
	return t
}

// WithRows sets all rows.
func (t *Table) WithRows(rows [][]string) *Table {
	t.Rows = rows
	return t
}

// Plain disables colors and striping for non-TTY output.
func (t *Table) Plain() *Table {
	t.Styled = false
	t.Striped = false
	return t
}

// Render renders the table.
func (t *Table) Render() string {
	th := theme.Current

	if len(t.Columns) == 0 {
		return ""
	}

	widths := t.calculateWidths()
	var lines []string

	if t.ShowHeader {
		headerStyle := lipgloss.NewStyle()
		if t.Styled {
			headerStyle = headerStyle.Bold(true).Foreground(th.Blue)
		}
		var headerCells []string
		for i, col := range t.Columns {
			cell := padCell(col.Header, widths[i], col.Align)
			headerCells = append(headerCells, headerStyle.Render(cell))
		}
		lines = append(lines, strings.Join(headerCells, " "))

		sep := strings.Repeat("-", totalWidth(widths))
		if t.Styled {
			sep = lipgloss.NewStyle().Foreground(th.Overlay0).Render(sep)
		}
		lines = append(lines, sep)
	}

	for rowIdx, row := range t.Rows {
		baseStyle := lipgloss.NewStyle()
		if t.Styled {
			baseStyle = baseStyle.Foreground(th.Text)
			if t.Striped && rowIdx%2 == 1 {
				baseStyle = baseStyle.Background(th.Surface0)
			}
		}

		var cells []string
		for i, col := range t.Columns {
			content := ""
			if i < len(row) {
				content = row[i]
			}
			cells = append(cells, baseStyle.Render(padCell(content, widths[i], col.Align)))
		}
		lines = append(lines, strings.Join(cells, " "))
	}

	return strings.Join(lines, "\n")
}

func (t *Table) calculateWidths() []int {
	widths := make([]int, len(t.Columns))

	for i, col := range t.Columns {
		if col.Width > 0 {
			widths[i] = col.Width
		} else {
			widths[i] = len(col.Header)
		}
	}

	for _, row := range t.Rows {
		for i, cell := range row {
			if i >= len(widths) || t.Columns[i].Width > 0 {
				continue
			}
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	for i, col := range t.Columns {
		if col.MaxWidth > 0 && widths[i] > col.MaxWidth {
			widths[i] = col.MaxWidth
		}
	}

	return widths
}

func totalWidth(widths []int) int {
	total := 0
	for _, w := range widths {
		total += w
	}
	if len(widths) > 1 {
		total += len(widths) - 1
	}
	return total
}

func padCell(content string, width int, align lipgloss.Position) string {
	if len(content) > width {
		if width > 3 {
			return content[:width-3] + "..."
		}
		return content[:width]
	}

	padding := width - len(content)
	switch align {
	case lipgloss.Right:
		return strings.Repeat(" ", padding) + content
	case lipgloss.Center:
		left := padding / 2
		return strings.Repeat(" ", left) + content + strings.Repeat(" ", padding-left)
	default:
		return content + strings.Repeat(" ", padding)
	}
}

// RenderTable is a convenience for one-shot rendering.
func RenderTable(columns []Column, rows [][]string) string {
	return NewTable(columns).WithRows(rows).Render()
}
