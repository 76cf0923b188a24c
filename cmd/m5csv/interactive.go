package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/platekit/m5csv"
	"github.com/platekit/m5csv/m5"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	plateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type browserState int

const (
	stateSelectBlock browserState = iota
	stateViewRead
)

type browserModel struct {
	err      error
	doc      *m5.Document
	filename string
	opts     m5.Options

	selected  int // block index
	readIdx   int
	waveIdx   int
	filter    textinput.Model
	filtering bool
	state     browserState
}

type docLoadedMsg struct {
	err error
	doc *m5.Document
}

func newBrowserModel(filename string, opts m5.Options) *browserModel {
	filter := textinput.New()
	filter.Placeholder = "well name"
	filter.Prompt = "find: "
	filter.Width = 12

	return &browserModel{
		filename: filename,
		opts:     opts,
		filter:   filter,
		state:    stateSelectBlock,
	}
}

func (m *browserModel) Init() tea.Cmd {
	return m.loadDocument
}

func (m *browserModel) loadDocument() tea.Msg {
	f, err := os.Open(m.filename)
	if err != nil {
		return docLoadedMsg{err: err}
	}
	defer f.Close()

	doc, err := m5.DecodeWith(m5csv.NewInstrumentReader(f), m.opts)
	if err != nil {
		return docLoadedMsg{err: err}
	}
	return docLoadedMsg{doc: doc}
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.filtering {
			switch msg.String() {
			case "enter", "esc":
				m.filtering = false
				m.filter.Blur()
				if msg.String() == "esc" {
					m.filter.SetValue("")
				}
				return m, nil
			default:
				var cmd tea.Cmd
				m.filter, cmd = m.filter.Update(msg)
				return m, cmd
			}
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectBlock && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectBlock && m.doc != nil && m.selected < len(m.doc.Blocks)-1 {
				m.selected++
			}

		case "enter":
			if m.state == stateSelectBlock && m.doc != nil && len(m.doc.Blocks) > 0 {
				m.state = stateViewRead
				m.readIdx = 0
				m.waveIdx = 0
			}

		case "left", "h":
			if m.state == stateViewRead && m.readIdx > 0 {
				m.readIdx--
			}

		case "right", "l":
			if m.state == stateViewRead && m.readIdx < len(m.block().Reads)-1 {
				m.readIdx++
			}

		case "tab":
			if m.state == stateViewRead {
				n := len(m.block().Settings.Layout.Wavelengths)
				if n > 0 {
					m.waveIdx = (m.waveIdx + 1) % n
				}
			}

		case "/":
			if m.state == stateViewRead {
				m.filtering = true
				m.filter.Focus()
			}

		case "esc":
			if m.state == stateViewRead {
				if m.filter.Value() != "" {
					m.filter.SetValue("")
				} else {
					m.state = stateSelectBlock
				}
			}
		}

	case docLoadedMsg:
		m.err = msg.err
		m.doc = msg.doc
	}

	return m, nil
}

func (m *browserModel) block() *m5.PlateBlock {
	return &m.doc.Blocks[m.selected]
}

func (m *browserModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.doc == nil {
		return "Decoding document..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("M5 Browser"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectBlock:
		if len(m.doc.Blocks) == 0 {
			b.WriteString("Document contains no blocks.\n\n")
			b.WriteString(helpStyle.Render("q quit"))
			break
		}
		b.WriteString("Select a plate block:\n\n")
		for i := range m.doc.Blocks {
			line := m.formatBlock(i)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter open • q quit"))

	case stateViewRead:
		block := m.block()
		read := block.Reads[m.readIdx]
		wl := block.Settings.Layout.Wavelengths[m.waveIdx]

		b.WriteString(plateStyle.Render(block.Settings.Name))
		b.WriteString(metaStyle.Render(fmt.Sprintf("  read %d/%d  channel %s",
			m.readIdx+1, len(block.Reads), wl.Label())))
		b.WriteString("\n")
		b.WriteString(metaStyle.Render(fmt.Sprintf("temp %g C", read.Info.Temperature)))
		if read.Info.HasElapsed {
			b.WriteString(metaStyle.Render(fmt.Sprintf("  time %.3g hr", read.Info.Elapsed)))
		}
		b.WriteString("\n\n")

		b.WriteString(m.renderGrid(block, read, wl))

		b.WriteString("\n")
		if m.filtering {
			b.WriteString(m.filter.View())
			b.WriteString("\n")
		}
		b.WriteString(helpStyle.Render("←/→ read • tab channel • / find well • esc back • q quit"))
	}

	return b.String()
}

func (m *browserModel) formatBlock(i int) string {
	block := &m.doc.Blocks[i]
	s := block.Settings
	return plateStyle.Render(s.Name) + metaStyle.Render(fmt.Sprintf(
		"  %s/%s, %d wells, %d reads, %d channels",
		s.ReadType, s.ReadMode, s.Layout.PlateSize, len(block.Reads), len(s.Layout.Wavelengths)))
}

// renderGrid draws one channel's values as a row-letter × column
// table. Wells matching the filter prefix are highlighted; blank
// cells (dropped by the decoder) render as dashes.
func (m *browserModel) renderGrid(block *m5.PlateBlock, read m5.PlateRead, wl m5.Wavelength) string {
	layout := block.Settings.Layout
	values := make(map[m5.Well]float64, layout.RowSpan*layout.ColSpan)
	for _, wv := range read.Wells {
		if wv.Wavelength == wl {
			values[wv.Well] = wv.Value
		}
	}

	needle := strings.ToUpper(strings.TrimSpace(m.filter.Value()))

	var b strings.Builder
	b.WriteString("    ")
	for c := 0; c < layout.ColSpan; c++ {
		b.WriteString(fmt.Sprintf("%9d", c+1))
	}
	b.WriteString("\n")

	for r := 0; r < layout.RowSpan; r++ {
		b.WriteString(fmt.Sprintf("  %c ", 'A'+r))
		for c := 0; c < layout.ColSpan; c++ {
			well := m5.Well{Row: uint8(r), Col: uint8(c)}
			cell := "        -"
			if v, ok := values[well]; ok {
				cell = fmt.Sprintf("%9.4g", v)
			}
			if needle != "" && strings.HasPrefix(well.Name(), needle) {
				cell = matchStyle.Render(cell)
			}
			b.WriteString(cell)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func runInteractive(filename string, opts m5.Options) error {
	p := tea.NewProgram(newBrowserModel(filename, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
