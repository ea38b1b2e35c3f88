// Package export turns a finished set of links into icon files and work
// items.
package export

import (
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ironsheep/legend-linker/internal/imaging"
	"github.com/ironsheep/legend-linker/internal/linking"
)

var labelReplacer = strings.NewReplacer(" ", "_", "/", "-")

// SanitizeLabel makes a label usable as a file name by replacing spaces with
// underscores and slashes with hyphens.
func SanitizeLabel(label string) string {
	return labelReplacer.Replace(label)
}

// IconPath returns where the icon for label is written under dir.
func IconPath(dir, label string) string {
	return filepath.Join(dir, SanitizeLabel(label)+".png")
}

// Icons crops each link's symbol out of legend and writes it to dir as
// <label>.png. Links whose labels sanitize to the same name overwrite one
// another; the last one wins. It returns the paths written, in link order.
func Icons(legend image.Image, links []linking.Link, dir string, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	origin := legend.Bounds().Min
	paths := make([]string, 0, len(links))
	for _, l := range links {
		r := l.Symbol.Box.Rect().Add(origin)
		icon, err := imaging.CropRegion(legend, r)
		if err != nil {
			return paths, fmt.Errorf("symbol %d (%q): %w", l.Symbol.ID, l.Label, err)
		}
		path := IconPath(dir, l.Label)
		if err := imaging.SavePNG(icon, path); err != nil {
			return paths, fmt.Errorf("symbol %d (%q): %w", l.Symbol.ID, l.Label, err)
		}
		logger.Debug("icon exported", "id", l.Symbol.ID, "label", l.Label, "path", path)
		paths = append(paths, path)
	}
	logger.Info("icons exported", "count", len(paths), "dir", dir)
	return paths, nil
}

// TaskText is the work item written for one link.
func TaskText(l linking.Link) string {
	return fmt.Sprintf("Mark every \"%s\" symbol (legend symbol #%d)", l.Label, l.Symbol.ID)
}

// Tasks returns one work item per link, in link order.
func Tasks(links []linking.Link) []string {
	tasks := make([]string, 0, len(links))
	for _, l := range links {
		tasks = append(tasks, TaskText(l))
	}
	return tasks
}
