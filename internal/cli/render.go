package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dentflow/dentflow/pkg/errors"
	"github.com/dentflow/dentflow/pkg/flow"
	"github.com/dentflow/dentflow/pkg/flow/canvas"
	"github.com/dentflow/dentflow/pkg/flow/render"
	"github.com/dentflow/dentflow/pkg/question"
)

const (
	formatSVG      = "svg"      // collision-routed scene SVG
	formatDOT      = "dot"      // Graphviz DOT text
	formatJSON     = "json"     // scene view model as JSON
	formatNodelink = "nodelink" // Graphviz-rendered node-link SVG
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string   // output file path (single format) or base path (multiple)
	formats []string // output formats: svg, dot, json, nodelink
	width   float64  // viewport width in pixels, 0 disables centering
	height  float64  // viewport height in pixels
	rootID  string   // pinned root question id
	markers bool     // draw add-child markers on connections
}

// newRenderCmd creates the render command for generating flow diagrams
// from a question records file.
func newRenderCmd() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a questionnaire flow from question records",
		Long: `Render a questionnaire flow diagram.

The input is a JSON array of question records, as served by the
/api/questions endpoint. Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			return runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, json, nodelink (comma-separated)")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "viewport width for centering")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "viewport height")
	cmd.Flags().StringVar(&opts.rootID, "root", "", "root question id (default: first question without incoming routes)")
	cmd.Flags().BoolVar(&opts.markers, "markers", false, "draw add-child markers on connections")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatSVG}
	}
	return strings.Split(s, ",")
}

func validateFormats(formats []string) error {
	for _, f := range formats {
		switch f {
		case formatSVG, formatDOT, formatJSON, formatNodelink:
		default:
			return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (valid: svg, dot, json, nodelink)", f)
		}
	}
	return nil
}

func runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	records, err := readRecords(input)
	if err != nil {
		return err
	}
	logger.Debug("loaded question records", "count", len(records))

	questions := question.DecodeAll(records)

	p := newProgress(logger)
	c := canvas.New(logger)
	c.SetQuestions(questions, opts.rootID)
	if opts.width > 0 || opts.height > 0 {
		c.Resize(opts.width, opts.height)
	}
	scene := c.Scene()
	p.done(fmt.Sprintf("Computed scene with %d cards and %d connections", len(scene.Nodes), len(scene.Edges)))

	for _, format := range opts.formats {
		data, err := renderFormat(ctx, format, scene, questions, opts)
		if err != nil {
			return err
		}
		path := outputPath(input, opts.output, format, len(opts.formats) > 1)
		if err := writeOutput(path, data); err != nil {
			return err
		}
		if path != "" {
			logger.Info("wrote output", "format", format, "path", path)
		}
	}
	return nil
}

func renderFormat(ctx context.Context, format string, scene canvas.Scene, questions []question.Question, opts *renderOpts) ([]byte, error) {
	switch format {
	case formatSVG:
		var svgOpts []render.SVGOption
		if opts.markers {
			svgOpts = append(svgOpts, render.WithMarkers())
		}
		return render.RenderSVG(scene, svgOpts...), nil
	case formatDOT:
		return []byte(render.ToDOT(flow.Build(questions, opts.rootID))), nil
	case formatNodelink:
		return render.RenderDOTSVG(ctx, render.ToDOT(flow.Build(questions, opts.rootID)))
	case formatJSON:
		return json.MarshalIndent(scene, "", "  ")
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown format %q", format)
}

// readRecords reads a JSON array of question records from path, or
// from stdin when path is "-".
func readRecords(path string) ([]question.Record, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "reading %s", path)
	}

	var records []question.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parsing question records from %s", path)
	}
	return records, nil
}

// outputPath resolves where one format's output goes. An empty return
// means stdout. With multiple formats each output gets the format's
// extension; a single format honors --output verbatim.
func outputPath(input, output, format string, multiple bool) string {
	ext := "." + format
	if format == formatNodelink {
		ext = ".nodelink.svg"
	}

	if output == "" {
		if input == "-" {
			return ""
		}
		base := strings.TrimSuffix(input, filepath.Ext(input))
		return base + ext
	}
	if multiple {
		return strings.TrimSuffix(output, filepath.Ext(output)) + ext
	}
	return output
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "writing %s", path)
	}
	return nil
}
