package cmd

import (
	"encoding/json"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ironsheep/legend-linker/internal/detection"
	"github.com/ironsheep/legend-linker/internal/geometry"
	"github.com/ironsheep/legend-linker/internal/ocr"
)

type detectOutput struct {
	Image   string                      `json:"image"`
	Legend  [4]int                      `json:"legend"`
	Symbols []detection.SymbolCandidate `json:"symbols"`
	Text    []ocr.TextFragment          `json:"text,omitempty"`
	Session string                      `json:"session,omitempty"`
}

func newDetectCommand(a *app) *cobra.Command {
	var (
		legend   string
		withText bool
		save     bool
	)

	cmd := &cobra.Command{
		Use:   "detect <image>",
		Short: "Detect legend symbols in a blueprint image",
		Long: `Open a blueprint, select the legend area and print the symbols found in
it as JSON. Without --legend the legend box saved by a previous run in the
work directory is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, closeOCR, err := a.controller(withText)
			if err != nil {
				return err
			}
			defer closeOCR()

			if _, err := ctrl.OpenImage(args[0]); err != nil {
				return err
			}

			var rect image.Rectangle
			if legend != "" {
				box, err := parseRect(legend)
				if err != nil {
					return err
				}
				rect, err = ctrl.ConfirmLegend(box, geometry.Identity)
				if err != nil {
					return err
				}
			} else {
				rect, err = ctrl.LoadLegend()
				if err != nil {
					return fmt.Errorf("no --legend given and no saved legend box: %w", err)
				}
			}

			symbols, err := ctrl.DetectSymbols()
			if err != nil {
				return err
			}
			out := detectOutput{
				Image:   args[0],
				Legend:  [4]int{rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y},
				Symbols: symbols,
			}
			if withText {
				if out.Text, err = ctrl.ReadLegendText(); err != nil {
					return err
				}
			}
			if save {
				if err := ctrl.Save(); err != nil {
					return err
				}
				out.Session = ctrl.SessionPath()
			}
			return writeJSON(cmd, out)
		},
	}

	cmd.Flags().StringVar(&legend, "legend", "", "legend rectangle in image pixels as x1,y1,x2,y2")
	cmd.Flags().BoolVar(&withText, "text", false, "also read the legend text with Tesseract")
	cmd.Flags().BoolVar(&save, "save", false, "write the session file after detection")
	return cmd
}

// parseRect reads "x1,y1,x2,y2" as a native-space box. Corners may be
// given in either order.
func parseRect(s string) (geometry.BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geometry.BoundingBox{}, fmt.Errorf("rectangle %q: want x1,y1,x2,y2", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geometry.BoundingBox{}, fmt.Errorf("rectangle %q: %w", s, err)
		}
		v[i] = f
	}
	box := geometry.FromCorners(v[0], v[1], v[2], v[3], geometry.SpaceNative)
	if err := box.Validate(); err != nil {
		return geometry.BoundingBox{}, fmt.Errorf("rectangle %q: %w", s, err)
	}
	return box, nil
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
