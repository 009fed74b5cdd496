// Command toolpathc is a CLI wrapper around the toolpath pipeline: it
// reads one Gerber layer (or a JSON list of drill points), an optional
// JSON config/tool-settings override, and writes the optimized plans
// plus their metadata as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/isoroute/toolpath/config"
	"github.com/isoroute/toolpath/pipeline"
	"github.com/isoroute/toolpath/primitive"
)

const (
	exitOK            = 0
	exitParseError    = 1
	exitPipelineError = 2
	exitCancelled     = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	gerberPath := flag.String("gerber", "", "path to a Gerber RS-274X file (mutually exclusive with -drill)")
	drillPath := flag.String("drill", "", "path to a JSON array of {x,y} drill points")
	configPath := flag.String("config", "", "path to a JSON Config override (default: built-in defaults)")
	settingsPath := flag.String("settings", "", "path to a JSON ToolSettings override (default: built-in defaults)")
	cutSide := flag.String("cutside", "", "override ToolSettings.CutSide: outside, inside, on")
	toolDiameter := flag.Float64("tool-diameter", 0, "override ToolSettings.ToolDiameter (mm)")
	outPath := flag.String("out", "", "output JSON path (default: stdout)")
	flag.Parse()

	if *gerberPath == "" && *drillPath == "" {
		fmt.Fprintln(os.Stderr, "error: one of -gerber or -drill is required")
		return exitPipelineError
	}
	if *gerberPath != "" && *drillPath != "" {
		fmt.Fprintln(os.Stderr, "error: -gerber and -drill are mutually exclusive")
		return exitPipelineError
	}

	cfg := config.Default()
	if *configPath != "" {
		if err := loadJSON(*configPath, &cfg); err != nil {
			fmt.Fprintf(os.Stderr, "error reading config: %v\n", err)
			return exitParseError
		}
	}

	settings := config.DefaultToolSettings()
	if *settingsPath != "" {
		if err := loadJSON(*settingsPath, &settings); err != nil {
			fmt.Fprintf(os.Stderr, "error reading tool settings: %v\n", err)
			return exitParseError
		}
	}
	if *toolDiameter > 0 {
		settings.ToolDiameter = *toolDiameter
	}
	switch *cutSide {
	case "outside":
		settings.CutSide = config.CutOutside
	case "inside":
		settings.CutSide = config.CutInside
	case "on":
		settings.CutSide = config.CutOn
	case "":
	default:
		fmt.Fprintf(os.Stderr, "error: invalid -cutside %q (must be outside, inside, on)\n", *cutSide)
		return exitPipelineError
	}

	op := pipeline.Operation{Config: cfg, Settings: settings}

	if *gerberPath != "" {
		op.Name = *gerberPath
		op.Kind = pipeline.KindRoute
		src, err := os.ReadFile(*gerberPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading gerber file: %v\n", err)
			return exitParseError
		}
		op.GerberSource = string(src)
	} else {
		op.Name = *drillPath
		op.Kind = pipeline.KindDrill
		points, err := loadDrillPoints(*drillPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading drill points: %v\n", err)
			return exitParseError
		}
		op.DrillPoints = points
	}

	result, err := pipeline.Run(context.Background(), op)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pipeline error: %v\n", err)
		return exitPipelineError
	}
	if result.Cancelled {
		fmt.Fprintln(os.Stderr, "pipeline cancelled")
		return exitCancelled
	}
	if result.Status == pipeline.StatusError {
		fmt.Fprintf(os.Stderr, "pipeline error: %v\n", result.Warnings)
		return exitPipelineError
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	var out io.Writer = os.Stdout
	if *outPath != "" && *outPath != "-" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error creating output file: %v\n", err)
			return exitPipelineError
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(os.Stderr, "error writing output: %v\n", err)
		return exitPipelineError
	}

	return exitOK
}

func loadJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

func loadDrillPoints(path string) ([]primitive.Point, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw []struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	points := make([]primitive.Point, len(raw))
	for i, r := range raw {
		points[i] = primitive.Point{X: r.X, Y: r.Y}
	}
	return points, nil
}
