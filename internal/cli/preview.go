package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dentflow/dentflow/pkg/flow/canvas"
	"github.com/dentflow/dentflow/pkg/question"
)

// newPreviewCmd creates the preview command for walking a flow in the
// terminal.
func newPreviewCmd() *cobra.Command {
	var rootID string

	cmd := &cobra.Command{
		Use:   "preview [file]",
		Short: "Preview a questionnaire flow in the terminal",
		Long: `Walk a questionnaire flow interactively.

The input is a JSON array of question records, as served by the
/api/questions endpoint. Moving the cursor and pressing enter selects
a card the way a click does in the console; escape clears the
selection.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecords(args[0])
			if err != nil {
				return err
			}

			c := canvas.New(loggerFromContext(cmd.Context()))
			c.SetQuestions(question.DecodeAll(records), rootID)

			model := newPreviewModel(c)
			_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
			return err
		},
	}

	cmd.Flags().StringVar(&rootID, "root", "", "root question id (default: first question without incoming routes)")

	return cmd
}

// previewModel is the bubbletea model for the flow walkthrough. It
// owns a cursor over the scene's cards and forwards select/clear
// events to the canvas, re-reading the scene after every event.
type previewModel struct {
	canvas *canvas.Canvas
	scene  canvas.Scene
	cursor int
	height int
}

func newPreviewModel(c *canvas.Canvas) previewModel {
	return previewModel{
		canvas: c,
		scene:  c.Scene(),
		height: 15,
	}
}

func (m previewModel) Init() tea.Cmd {
	return nil
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.scene.Nodes)-1 {
				m.cursor++
			}
		case "enter":
			if m.cursor < len(m.scene.Nodes) {
				m.canvas.SelectNode(m.scene.Nodes[m.cursor].ID)
				m.scene = m.canvas.Scene()
			}
		case "esc":
			m.canvas.ClearSelection()
			m.scene = m.canvas.Scene()
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 8
		if m.height < 5 {
			m.height = 5
		}
		m.canvas.Resize(float64(msg.Width), float64(msg.Height))
	}
	return m, nil
}

func (m previewModel) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("Questionnaire Flow"))
	b.WriteString("\n")
	b.WriteString(styleHelp.Render("↑/↓ navigate  ⏎ select  esc clear  q quit"))
	b.WriteString("\n\n")

	for i, node := range m.scene.Nodes {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		line := fmt.Sprintf("%s%s  %s", cursor, node.Title, styleLabel.Render(node.TypeLabel))
		switch node.Tier {
		case canvas.TierSelected:
			line = styleSelected.Render(line)
		case canvas.TierActive:
			line = styleActive.Render(line)
		default:
			line = styleNormal.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.detailView())

	return b.String()
}

// detailView shows the selected card and its outgoing connections.
func (m previewModel) detailView() string {
	id, ok := m.canvas.Selected()
	if !ok {
		return styleHelp.Render("No card selected")
	}

	var b strings.Builder
	for _, node := range m.scene.Nodes {
		if node.ID != id {
			continue
		}
		b.WriteString(styleLabel.Render(node.TypeLabel))
		b.WriteString("  ")
		b.WriteString(styleNormal.Render(node.FullText))
		b.WriteString("\n")
		b.WriteString(styleHelp.Render(fmt.Sprintf("%d connection(s)", node.Connections)))
	}

	for _, edge := range m.scene.Edges {
		if edge.Edge.From != id {
			continue
		}
		b.WriteString("\n")
		b.WriteString(styleHelp.Render("→ " + m.titleOf(edge.Edge.To)))
	}
	return b.String()
}

func (m previewModel) titleOf(id string) string {
	for _, node := range m.scene.Nodes {
		if node.ID == id {
			return node.Title
		}
	}
	return id
}
