package workflow

import (
	"fmt"
	"image"

	"github.com/ironsheep/legend-linker/internal/export"
	"github.com/ironsheep/legend-linker/internal/imaging"
)

// ExportIcons writes one PNG per link into IconsDir.
func (c *Controller) ExportIcons() ([]string, error) {
	if err := c.requireLegend(); err != nil {
		return nil, err
	}
	dir := c.IconsDir()
	paths, err := export.Icons(c.legend, c.model.Snapshot(), dir, c.logger)
	if err != nil {
		c.logger.Error("exporting icons failed", "dir", dir, "written", len(paths), "error", err)
		return paths, fmt.Errorf("export icons: %w", err)
	}
	return paths, nil
}

// GenerateTasks builds one work item per link and stores them in the
// session.
func (c *Controller) GenerateTasks() []string {
	tasks := export.Tasks(c.model.Snapshot())
	c.state.GeneratedTasks = tasks
	c.logger.Info("tasks generated", "count", len(tasks))
	return append([]string(nil), tasks...)
}

// PreviewImage draws detected symbols and links over the legend. Detected
// symbols carry their detector id, linked symbols their link id, and label
// boxes the label text.
func (c *Controller) PreviewImage() (*image.RGBA, error) {
	if err := c.requireLegend(); err != nil {
		return nil, err
	}
	return imaging.Overlay(c.legend, c.previewBoxes(), c.opts.Overlay), nil
}

// Preview renders PreviewImage as base64 PNG.
func (c *Controller) Preview() (string, error) {
	if err := c.requireLegend(); err != nil {
		return "", err
	}
	return imaging.OverlayPNGBase64(c.legend, c.previewBoxes(), c.opts.Overlay)
}

func (c *Controller) previewBoxes() []imaging.OverlayBox {
	var boxes []imaging.OverlayBox
	for _, s := range c.symbols {
		boxes = append(boxes, imaging.OverlayBox{Rect: s.Box.Rect(), Kind: imaging.OverlaySymbol, ID: s.ID})
	}
	for _, l := range c.model.Snapshot() {
		boxes = append(boxes,
			imaging.OverlayBox{Rect: l.Symbol.Box.Rect(), Kind: imaging.OverlaySymbol, ID: l.Symbol.ID},
			imaging.OverlayBox{Rect: l.LabelBox.Rect(), Kind: imaging.OverlayLabel, Text: l.Label},
		)
	}
	if p, ok := c.model.Pending(); ok {
		boxes = append(boxes, imaging.OverlayBox{Rect: p.Box.Rect(), Kind: imaging.OverlaySymbol, ID: p.ID})
	}
	return boxes
}
