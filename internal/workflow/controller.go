// Package workflow drives one annotation session from opening a blueprint to
// exporting icons and work items.
//
// A Controller owns the session state, the image cache and the association
// model, and calls the detector and recognizer it was built with. Stages
// are plain method calls; a front end (the MCP server, the CLI) decides
// their order. Legend coordinates are always zero-origin legend pixels.
//
// A Controller is not safe for concurrent use.
package workflow

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"

	"github.com/ironsheep/legend-linker/internal/detection"
	"github.com/ironsheep/legend-linker/internal/geometry"
	"github.com/ironsheep/legend-linker/internal/imaging"
	"github.com/ironsheep/legend-linker/internal/linking"
	"github.com/ironsheep/legend-linker/internal/ocr"
	"github.com/ironsheep/legend-linker/internal/session"
)

var (
	// ErrNoImage is returned by stages that need an open blueprint.
	ErrNoImage = errors.New("no image open")
	// ErrNoLegend is returned by stages that need a confirmed legend.
	ErrNoLegend = errors.New("no legend selected")
)

// Options locates the files a controller reads and writes.
type Options struct {
	// WorkDir holds legend_symbols/ and symbol_links/.
	WorkDir string
	// SessionFile is relative to WorkDir unless absolute.
	SessionFile string
	// IconsDir is relative to WorkDir unless absolute.
	IconsDir string
	Overlay  imaging.OverlayOptions
}

// DefaultOptions works in the current directory.
func DefaultOptions() Options {
	return Options{
		WorkDir:     ".",
		SessionFile: "session.json",
		IconsDir:    "icons",
		Overlay:     imaging.DefaultOverlayOptions(),
	}
}

// Controller runs the workflow stages against one session.
type Controller struct {
	opts       Options
	cache      *imaging.ImageCache
	detector   *detection.Detector
	recognizer *ocr.Recognizer
	model      *linking.Model
	logger     *slog.Logger

	state   *session.State
	image   image.Image
	legend  image.Image
	symbols []detection.SymbolCandidate
}

// New creates a controller with an empty session. A nil cache gets a fresh
// one; a nil logger uses slog.Default().
func New(opts Options, detector *detection.Detector, recognizer *ocr.Recognizer, cache *imaging.ImageCache, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if cache == nil {
		cache = imaging.NewImageCache()
	}
	if opts.WorkDir == "" {
		opts.WorkDir = "."
	}
	if opts.SessionFile == "" {
		opts.SessionFile = DefaultOptions().SessionFile
	}
	if opts.IconsDir == "" {
		opts.IconsDir = DefaultOptions().IconsDir
	}
	return &Controller{
		opts:       opts,
		cache:      cache,
		detector:   detector,
		recognizer: recognizer,
		model:      linking.NewModel(recognizer, logger),
		logger:     logger,
		state:      session.New(),
	}
}

func (c *Controller) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.opts.WorkDir, p)
}

// SessionPath is where Save writes the session file.
func (c *Controller) SessionPath() string {
	return c.path(c.opts.SessionFile)
}

// IconsDir is where ExportIcons writes.
func (c *Controller) IconsDir() string {
	return c.path(c.opts.IconsDir)
}

// State returns a copy of the session state.
func (c *Controller) State() *session.State {
	c.syncLinks()
	return c.state.Clone()
}

// Summary counts what the session holds.
func (c *Controller) Summary() session.Summary {
	c.syncLinks()
	return c.state.Summary()
}

// Legend returns the current legend crop, or nil.
func (c *Controller) Legend() image.Image {
	return c.legend
}

// Symbols returns the most recent detection result.
func (c *Controller) Symbols() []detection.SymbolCandidate {
	return append([]detection.SymbolCandidate(nil), c.symbols...)
}

// Links returns the links in insertion order, in legend pixels.
func (c *Controller) Links() []linking.Link {
	return c.model.Snapshot()
}

// Pending returns the symbol awaiting a label, if any.
func (c *Controller) Pending() (detection.SymbolCandidate, bool) {
	return c.model.Pending()
}

func (c *Controller) legendOrigin() image.Point {
	if r, ok := c.state.LegendRect(); ok {
		return r.Min
	}
	return image.Point{}
}

func (c *Controller) syncLinks() {
	c.state.LinkedItems = session.ItemsFromLinks(c.model.Snapshot(), c.legendOrigin())
}

func (c *Controller) requireLegend() error {
	if c.image == nil {
		return ErrNoImage
	}
	if c.legend == nil {
		return ErrNoLegend
	}
	return nil
}

// OpenImage loads a blueprint and starts a new session on it. Config is
// carried over; everything else is cleared.
func (c *Controller) OpenImage(path string) (*imaging.ImageInfo, error) {
	// Reopening a path picks up changes on disk.
	c.cache.Evict(path)
	info, err := imaging.LoadImageInfo(c.cache, path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	img, err := c.cache.Load(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}

	if prev := c.state.ImagePath; prev != "" && prev != path {
		c.cache.Evict(prev)
	}
	cfg := c.state.Config
	c.state.Reset()
	c.state.Config = cfg
	c.state.ImagePath = path
	c.image = img
	c.legend = nil
	c.symbols = nil
	c.model.ClearAll()

	c.logger.Info("image opened", "path", path, "width", info.Width, "height", info.Height)
	return info, nil
}

// ConfirmLegend maps a rectangle drawn in display space back to the
// blueprint, clamps it to the image, and makes that region the legend. The
// crop and its box are written under WorkDir before any state changes.
func (c *Controller) ConfirmLegend(display geometry.BoundingBox, t geometry.Transform) (image.Rectangle, error) {
	if c.image == nil {
		return image.Rectangle{}, ErrNoImage
	}
	if err := t.Validate(); err != nil {
		return image.Rectangle{}, err
	}
	native := t.ToNative(display)
	return c.setLegend(native.Rect())
}

// FitTransform returns the transform that fits the open blueprint into a
// viewW x viewH viewport.
func (c *Controller) FitTransform(viewW, viewH int) (geometry.Transform, error) {
	if c.image == nil {
		return geometry.Transform{}, ErrNoImage
	}
	size := c.image.Bounds().Size()
	return geometry.FitTransform(size.X, size.Y, viewW, viewH)
}

// LoadLegend restores the legend from the box file written by an earlier
// ConfirmLegend.
func (c *Controller) LoadLegend() (image.Rectangle, error) {
	if c.image == nil {
		return image.Rectangle{}, ErrNoImage
	}
	box, err := session.LoadLegendBox(session.LegendBoxPath(c.opts.WorkDir))
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("load legend: %w", err)
	}
	return c.setLegend(box.Rect())
}

func (c *Controller) setLegend(r image.Rectangle) (image.Rectangle, error) {
	r = imaging.ClampRect(r, c.image.Bounds())
	if r.Empty() {
		return image.Rectangle{}, fmt.Errorf("legend region: %w", imaging.ErrEmptyImage)
	}
	crop, err := imaging.CropRegion(c.image, r)
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("legend region: %w", err)
	}

	areaPath := session.LegendAreaPath(c.opts.WorkDir)
	if err := imaging.SavePNG(crop, areaPath); err != nil {
		c.logger.Error("saving legend crop failed", "path", areaPath, "error", err)
		return image.Rectangle{}, &session.PersistenceError{Op: "save", Path: areaPath, Err: err}
	}
	boxPath := session.LegendBoxPath(c.opts.WorkDir)
	if err := session.SaveLegendBox(boxPath, session.LegendBoxFromRect(r)); err != nil {
		c.logger.Error("saving legend box failed", "path", boxPath, "error", err)
		return image.Rectangle{}, err
	}

	if prev, ok := c.state.LegendRect(); !ok || prev != r {
		c.symbols = nil
		c.model.ClearAll()
		c.state.DetectedSymbols = []session.SymbolRecord{}
		c.state.OCRTexts = []session.TextRecord{}
		c.state.GeneratedTasks = []string{}
	}
	c.legend = crop
	c.state.LegendPath = areaPath
	c.state.SetLegendRect(r)
	c.syncLinks()

	c.logger.Info("legend confirmed", "rect", r.String(), "path", areaPath)
	return r, nil
}

// DetectSymbols runs symbol detection over the whole legend.
func (c *Controller) DetectSymbols() ([]detection.SymbolCandidate, error) {
	if err := c.requireLegend(); err != nil {
		return nil, err
	}
	symbols, err := c.detector.Detect(c.legend)
	if err != nil {
		return nil, fmt.Errorf("detect symbols: %w", err)
	}
	c.symbols = symbols
	c.state.DetectedSymbols = session.SymbolRecords(symbols)
	c.logger.Info("symbols detected", "count", len(symbols))
	return c.Symbols(), nil
}

// ReadLegendText recognizes all text in the legend.
func (c *Controller) ReadLegendText() ([]ocr.TextFragment, error) {
	if err := c.requireLegend(); err != nil {
		return nil, err
	}
	frags, err := c.recognizer.Recognize(c.legend)
	if err != nil {
		return nil, fmt.Errorf("read legend text: %w", err)
	}
	c.state.OCRTexts = session.TextRecords(frags)
	return frags, nil
}

// SelectSymbol makes the symbol under a click in legend pixels the pending
// symbol. A click inside a detected symbol selects it with its detector id;
// otherwise the area around the click is searched. It returns nil when
// nothing was found there.
func (c *Controller) SelectSymbol(x, y int) (*detection.SymbolCandidate, error) {
	if err := c.requireLegend(); err != nil {
		return nil, err
	}
	pt := image.Pt(x, y)
	for _, s := range c.symbols {
		if pt.In(s.Box.Rect()) {
			c.model.BeginCandidate(s)
			sel := s
			return &sel, nil
		}
	}
	found, err := c.detector.DetectNear(c.legend, x, y)
	if err != nil {
		return nil, fmt.Errorf("select symbol: %w", err)
	}
	if found == nil {
		return nil, nil
	}
	sel := c.model.BeginSymbol(found.Box)
	return &sel, nil
}

// SelectSymbolRect makes a hand-drawn legend rectangle the pending symbol.
func (c *Controller) SelectSymbolRect(r image.Rectangle) (*detection.SymbolCandidate, error) {
	if err := c.requireLegend(); err != nil {
		return nil, err
	}
	r = imaging.ClampRect(r, c.legend.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("select symbol: %w", imaging.ErrEmptyImage)
	}
	sel := c.model.BeginSymbol(geometry.FromRect(r, geometry.SpaceNative))
	return &sel, nil
}

// SelectLabel reads the label inside a legend rectangle and links it to the
// pending symbol. It returns nil without a pending symbol or when no text
// was recognized.
func (c *Controller) SelectLabel(r image.Rectangle) (*linking.Link, error) {
	if err := c.requireLegend(); err != nil {
		return nil, err
	}
	r = imaging.ClampRect(r, c.legend.Bounds())
	region, err := imaging.SubImage(c.legend, r)
	if err != nil {
		return nil, fmt.Errorf("select label: %w", err)
	}
	link, err := c.model.CompleteLink(region)
	if err != nil {
		return nil, err
	}
	c.syncLinks()
	return link, nil
}

// Undo cancels the pending symbol or removes the latest link.
func (c *Controller) Undo() bool {
	changed := c.model.UndoLast()
	c.syncLinks()
	return changed
}

// ClearAll removes every link.
func (c *Controller) ClearAll() {
	c.model.ClearAll()
	c.syncLinks()
}

// Save writes the links file and the session file.
func (c *Controller) Save() error {
	c.syncLinks()

	linksPath := session.LinksPath(c.opts.WorkDir)
	if err := session.SaveLinks(linksPath, c.state.LinkedItems); err != nil {
		c.logger.Error("saving links failed", "path", linksPath, "error", err)
		return err
	}
	path := c.SessionPath()
	if err := session.Save(path, c.state); err != nil {
		c.logger.Error("saving session failed", "path", path, "error", err)
		return err
	}
	c.logger.Info("session saved", "path", path, "links", len(c.state.LinkedItems))
	return nil
}

// LoadSession replaces the whole session with the one stored at path (the
// configured session file when empty). On failure the session is reset to
// empty and the error wraps session.ErrLoadFailed.
//
// The blueprint and legend are reloaded when the stored paths still
// resolve; if not, links and symbols are kept but stages that need pixels
// report ErrNoImage until OpenImage is called.
func (c *Controller) LoadSession(path string) error {
	if path == "" {
		path = c.SessionPath()
	}
	st, err := session.Load(path)

	c.state = st
	c.image = nil
	c.legend = nil
	c.symbols = session.Candidates(st.DetectedSymbols)
	c.model.Restore(session.LinksFromItems(st.LinkedItems))

	if err != nil {
		c.logger.Error("loading session failed", "path", path, "error", err)
		return err
	}

	if st.ImagePath != "" {
		if img, err := c.cache.Load(st.ImagePath); err != nil {
			c.logger.Warn("session image unavailable", "path", st.ImagePath, "error", err)
		} else {
			c.image = img
		}
	}
	if r, ok := st.LegendRect(); ok && c.image != nil {
		r = imaging.ClampRect(r, c.image.Bounds())
		if crop, err := imaging.CropRegion(c.image, r); err != nil {
			c.logger.Warn("session legend unavailable", "rect", r.String(), "error", err)
		} else {
			c.legend = crop
		}
	}

	c.logger.Info("session loaded", "path", path, "links", c.model.Len())
	return nil
}

// Cache returns the image cache shared by the controller's stages.
func (c *Controller) Cache() *imaging.ImageCache {
	return c.cache
}
