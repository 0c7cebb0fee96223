package tui

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DataSeries is one line of a chart.
type DataSeries struct {
	Name   string
	Points []float64
	Color  lipgloss.Color
}

// ASCIIChart plots one or more series on a character grid. Used for the tax
// and net curves over the salary grid.
type ASCIIChart struct {
	Title  string
	Series []DataSeries
	Width  int
	Height int
	XLabel string
}

// NewASCIIChart creates a chart with terminal-friendly default dimensions.
func NewASCIIChart(title string) *ASCIIChart {
	return &ASCIIChart{Title: title, Width: 64, Height: 12}
}

// AddSeries appends a line to the chart.
func (c *ASCIIChart) AddSeries(name string, points []float64, color lipgloss.Color) *ASCIIChart {
	c.Series = append(c.Series, DataSeries{Name: name, Points: points, Color: color})
	return c
}

// Render returns the styled chart.
func (c *ASCIIChart) Render() string {
	if len(c.Series) == 0 || len(c.Series[0].Points) == 0 {
		return HelpStyle.Render("no data to plot")
	}

	min, max := c.bounds()
	if max == min {
		max = min + 1
	}

	grid := make([][]rune, c.Height)
	colors := make([][]lipgloss.Color, c.Height)
	for y := range grid {
		grid[y] = make([]rune, c.Width)
		colors[y] = make([]lipgloss.Color, c.Width)
		for x := range grid[y] {
			grid[y][x] = ' '
		}
	}

	denom := c.Width - 1
	if denom < 1 {
		denom = 1
	}
	for _, s := range c.Series {
		for x := 0; x < c.Width; x++ {
			idx := x * (len(s.Points) - 1) / denom
			if idx >= len(s.Points) {
				idx = len(s.Points) - 1
			}
			v := s.Points[idx]
			y := int(math.Round(float64(c.Height-1) * (max - v) / (max - min)))
			if y < 0 {
				y = 0
			}
			if y >= c.Height {
				y = c.Height - 1
			}
			grid[y][x] = '*'
			colors[y][x] = s.Color
		}
	}

	var sb strings.Builder
	if c.Title != "" {
		sb.WriteString(TitleStyle.Render(c.Title))
		sb.WriteString("\n")
	}
	sb.WriteString(LabelStyle.Render(formatAxis(max)) + "\n")
	for y := 0; y < c.Height; y++ {
		sb.WriteString("|")
		for x := 0; x < c.Width; x++ {
			ch := grid[y][x]
			if ch == ' ' {
				sb.WriteRune(' ')
				continue
			}
			sb.WriteString(lipgloss.NewStyle().Foreground(colors[y][x]).Render(string(ch)))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(LabelStyle.Render(formatAxis(min)) + "\n")
	sb.WriteString("+" + strings.Repeat("-", c.Width) + "\n")
	if c.XLabel != "" {
		sb.WriteString(LabelStyle.Render(c.XLabel) + "\n")
	}

	var legend []string
	for _, s := range c.Series {
		legend = append(legend, lipgloss.NewStyle().Foreground(s.Color).Render("* "+s.Name))
	}
	sb.WriteString(strings.Join(legend, "   "))
	return sb.String()
}

func (c *ASCIIChart) bounds() (float64, float64) {
	min := math.Inf(1)
	max := math.Inf(-1)
	for _, s := range c.Series {
		for _, p := range s.Points {
			if p < min {
				min = p
			}
			if p > max {
				max = p
			}
		}
	}
	return min, max
}

// formatAxis renders a y-axis tick compactly: 1.5M, 120K, 950.
func formatAxis(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e6:
		return strconv.FormatFloat(v/1e6, 'f', 1, 64) + "M"
	case abs >= 1e3:
		return strconv.FormatFloat(v/1e3, 'f', 0, 64) + "K"
	default:
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
}
