package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/samber/do/v2"

	"picbook/internal/catalog"
	"picbook/internal/gesture"
	"picbook/internal/library"
	"picbook/internal/logger"
	"picbook/internal/reader"
	"picbook/internal/spread"
	"picbook/internal/viewport"
)

const (
	windowTitle = "picbook"
	// flushTimeout bounds writing the last reading position on exit
	flushTimeout = 3 * time.Second
)

// gameWindow switches the Ebitengine window between fullscreen and windowed,
// restoring the windowed size on exit.
type gameWindow struct {
	tracker        *viewport.Tracker
	savedW, savedH int
}

func (w *gameWindow) IsFullscreen() bool {
	return ebiten.IsFullscreen()
}

func (w *gameWindow) SetFullscreen(on bool) {
	if on == ebiten.IsFullscreen() {
		return
	}
	if on {
		w.savedW, w.savedH = ebiten.WindowSize()
	}
	ebiten.SetFullscreen(on)
	if !on && w.savedW > 0 && w.savedH > 0 {
		ebiten.SetWindowSize(w.savedW, w.savedH)
	}
	w.tracker.SetFullscreen(on)
}

// syncFullscreen catches fullscreen changes made outside the game, such as
// a window manager shortcut
func (w *gameWindow) syncFullscreen(actual bool) {
	if w.tracker.Fullscreen() != actual {
		w.tracker.SetFullscreen(actual)
	}
}

// windowSize is the size to persist: the windowed size even while fullscreen
func (w *gameWindow) windowSize() (int, int) {
	if ebiten.IsFullscreen() && w.savedW > 0 {
		return w.savedW, w.savedH
	}
	return ebiten.WindowSize()
}

type Game struct {
	config       Config
	fileConfig   Config // config as loaded, without flag overrides
	configPath   string
	configStatus ConfigLoadResult

	ctx     context.Context
	log     *logger.Logger
	books   *CatalogHandle
	store   *StoreHandle // nil when progress cannot be stored
	pages   *PageLoader
	watcher *WatcherHandle

	reader   *reader.Controller
	tracker  *viewport.Tracker
	window   *gameWindow
	pointer  *PointerInput
	autoHide *reader.AutoHide

	keybindingManager   *KeybindingManager
	mousebindingManager *MousebindingManager
	inputHandler        *InputHandler
	renderer            *Renderer
	shelf               *LibraryView

	screen             Screen
	showHelp           bool
	showInfo           bool
	overlayMessage     string
	overlayMessageTime time.Time

	preloadedBook  string
	preloadedIndex int
	lastCursor     gesture.Point
	now            time.Time
	quit           bool
}

// NewGame wires the game to the services in injector
func NewGame(injector do.Injector, cfg Config, fileConfig Config, configPath string, status ConfigLoadResult) (*Game, error) {
	log := do.MustInvoke[*logger.Logger](injector)

	books, err := do.Invoke[*CatalogHandle](injector)
	if err != nil {
		return nil, fmt.Errorf("load library: %w", err)
	}
	pages, err := do.Invoke[*PageLoader](injector)
	if err != nil {
		return nil, fmt.Errorf("start page loader: %w", err)
	}
	watcher := do.MustInvoke[*WatcherHandle](injector)

	g := &Game{
		config:       cfg,
		fileConfig:   fileConfig,
		configPath:   configPath,
		configStatus: status,
		ctx:          context.Background(),
		log:          log,
		books:        books,
		pages:        pages,
		watcher:      watcher,
		now:          time.Now(),
	}

	// Navigation keeps working without a progress store.
	store, err := do.Invoke[*StoreHandle](injector)
	if err != nil {
		log.Error("progress store unavailable, reading position will not be saved", "error", err)
		g.ShowOverlayMessage("Reading progress will not be saved")
	} else {
		g.store = store
	}

	g.tracker = viewport.NewTracker(cfg.ViewportConfig(), nil)
	g.window = &gameWindow{tracker: g.tracker}
	g.reader = reader.New(reader.Options{
		Store:       g.progressStore(),
		Fullscreen:  g.window,
		Logger:      log.Logger,
		RightToLeft: cfg.RightToLeft,
		Now:         func() time.Time { return g.now },
	})
	g.tracker.Subscribe(g.reader.SetViewport)
	g.reader.Subscribe(g.onDisplay)

	g.pointer = NewPointerInput(cfg.GestureConfig(), cfg.Mouse.EnableMouse && cfg.Mouse.EnableGestures)
	g.autoHide = reader.NewAutoHide(cfg.AutoHideDelay())

	g.keybindingManager = NewKeybindingManager(cfg.Keybindings)
	g.mousebindingManager = NewMousebindingManager(cfg.Mousebindings, cfg.Mouse)
	g.inputHandler = NewInputHandler(g, g, g.keybindingManager, g.mousebindingManager)
	g.renderer = NewRenderer(g)
	g.shelf = NewLibraryView()

	return g, nil
}

// progressStore returns the store for the reader, or a nil interface
func (g *Game) progressStore() reader.ProgressStore {
	if g.store == nil {
		return nil
	}
	return g.store.Store
}

func (g *Game) progressLister() library.ProgressLister {
	if g.store == nil {
		return nil
	}
	return g.store.Store
}

// start opens bookID, falling back to the configured default book and then
// to the first book of the library. With no book at all the library is shown.
func (g *Game) start(bookID string) {
	cat := g.books.Get()
	if book, ok := cat.Book(bookID); ok {
		g.openBook(book)
		return
	}
	if bookID != "" {
		g.log.Warn("book not found", "book_id", bookID)
		g.ShowOverlayMessage("Book not found: " + bookID)
	}
	if book, ok := cat.Book(g.config.DefaultBook); ok {
		g.openBook(book)
		return
	}
	if book, ok := cat.First(); ok {
		g.openBook(book)
		return
	}
	g.screen = ScreenLibrary
	if bookID == "" {
		g.ShowOverlayMessage("Library is empty")
	}
}

func (g *Game) openBook(book catalog.Book) {
	g.reader.Open(g.ctx, book)
	g.pointer.Cancel(g.now)
	g.autoHide.Poke(g.now)
	g.screen = ScreenReader
	ebiten.SetWindowTitle(book.Title + " - " + windowTitle)
}

// onDisplay preloads around the shown spread when the spread or the book changed
func (g *Game) onDisplay(d spread.Display) {
	book, ok := g.reader.Book()
	if !ok {
		g.preloadedBook = ""
		return
	}
	if book.ID == g.preloadedBook && d.Index == g.preloadedIndex {
		return
	}

	direction := NavigationJump
	if book.ID == g.preloadedBook {
		switch d.Index - g.preloadedIndex {
		case 1:
			direction = NavigationForward
		case -1:
			direction = NavigationBackward
		}
	}
	g.preloadedBook, g.preloadedIndex = book.ID, d.Index
	g.pages.Preload(book, d, direction)
}

func (g *Game) Update() error {
	g.now = time.Now()
	g.window.syncFullscreen(ebiten.IsFullscreen())
	g.tracker.Tick(g.now)
	g.pollLibrary()

	if g.screen == ScreenReader {
		g.updateReader()
	} else {
		g.updateLibrary()
	}

	if g.quit {
		g.saveWindowState()
		return ebiten.Termination
	}
	return nil
}

// pollLibrary installs a catalog reloaded by the watcher
func (g *Game) pollLibrary() {
	select {
	case cat, ok := <-g.watcher.Updates():
		if !ok || cat == nil {
			return
		}
		if old := g.books.Swap(cat); old != nil {
			if err := old.Close(); err != nil {
				g.log.Warn("failed to close previous catalog", "error", err)
			}
		}
		g.pages.Reset()
		g.preloadedBook = ""
		g.shelf.Invalidate()
		g.ShowOverlayMessage(fmt.Sprintf("Library updated: %d books", cat.Len()))
	default:
	}
}

func (g *Game) updateReader() {
	if g.inputHandler.HandleInput() {
		g.autoHide.Poke(g.now)
	}
	if g.screen != ScreenReader {
		return
	}

	frame := g.pointer.ReadFrame()
	if frame.Cursor != g.lastCursor || len(frame.Active) > 0 {
		g.lastCursor = frame.Cursor
		g.autoHide.Poke(g.now)
	}
	a := g.reader.Area()
	bounds := gesture.Rect{X: float64(a.X), Y: float64(a.Y), Width: float64(a.Width), Height: float64(a.Height)}
	for _, ev := range g.pointer.Process(frame, g.now, bounds) {
		g.log.Debug("gesture", "type", ev.Type, "direction", ev.Direction, "side", ev.Side)
		g.reader.HandleGesture(ev)
	}

	g.autoHide.Tick(g.now)
	g.feedAspect()
}

// feedAspect reports the size of the first decoded page of the shown spread
func (g *Game) feedAspect() {
	book, ok := g.reader.Book()
	if !ok {
		return
	}
	for _, index := range spreadPages(g.reader.Display().Index) {
		if page, ok := g.pageImage(book, index); ok && !page.Failed {
			g.reader.ImageDecoded(page.Width, page.Height)
			return
		}
	}
}

func (g *Game) pageImage(book catalog.Book, index int) (*PageImage, bool) {
	ref, ok := book.PageRef(index)
	if !ok {
		return nil, false
	}
	return g.pages.Get(PageRequest{BookID: book.ID, Source: book.Source, Ref: ref})
}

func (g *Game) updateLibrary() {
	g.shelf.Refresh(g.ctx, g.books.Get(), g.progressLister())

	if g.shelf.Searching() {
		g.shelf.AppendQuery(ebiten.AppendInputChars(nil))
		switch {
		case inpututil.IsKeyJustPressed(ebiten.KeyBackspace):
			g.shelf.Backspace()
		case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
			g.shelf.EndSearch(true)
		case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
			g.shelf.EndSearch(false)
		}
		return
	}

	g.inputHandler.HandleInput()
	if g.screen != ScreenLibrary || g.quit {
		return
	}

	_, h := ebiten.WindowSize()
	page := visibleRows(h)
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySlash) && currentModifiers() == (Modifiers{}):
		g.shelf.BeginSearch()
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		if currentModifiers().Shift {
			g.shelf.CycleCategory(-1)
		} else {
			g.shelf.CycleCategory(1)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyT) && currentModifiers() == (Modifiers{}):
		g.shelf.CycleTag(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		g.shelf.MoveCursor(-1)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		g.shelf.MoveCursor(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyPageUp):
		g.shelf.MoveCursor(-page)
	case inpututil.IsKeyJustPressed(ebiten.KeyPageDown):
		g.shelf.MoveCursor(page)
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		g.openSelected()
		return
	}

	if _, dy := ebiten.Wheel(); dy > 0 {
		g.shelf.MoveCursor(-1)
	} else if dy < 0 {
		g.shelf.MoveCursor(1)
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		_, y := ebiten.CursorPosition()
		g.selectRowAt(y)
	}
	for _, id := range inpututil.AppendJustPressedTouchIDs(nil) {
		_, y := ebiten.TouchPosition(id)
		g.selectRowAt(y)
	}
}

// selectRowAt opens the book of the row at height y
func (g *Game) selectRowAt(y int) {
	if i, ok := g.shelf.RowAt(y); ok && g.shelf.Select(i) {
		g.openSelected()
	}
}

func (g *Game) openSelected() {
	entry, ok := g.shelf.Selected()
	if !ok {
		return
	}
	g.openBook(entry.Book)
}

func (g *Game) saveWindowState() {
	if g.configStatus.HasError {
		g.log.Warn("not saving config, the config file has errors", "path", g.configPath)
		return
	}
	cfg := g.fileConfig
	cfg.WindowWidth, cfg.WindowHeight = g.window.windowSize()
	cfg.RightToLeft = g.reader.RightToLeft()
	if err := saveConfig(cfg, g.configPath); err != nil {
		g.log.Warn("failed to save config", "error", err)
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.tracker.Observe(outsideWidth, outsideHeight, time.Now())
	return outsideWidth, outsideHeight
}

// InputActions

func (g *Game) Exit() {
	g.quit = true
}

func (g *Game) ShowLibrary() {
	if g.screen == ScreenLibrary {
		return
	}
	g.reader.Close()
	g.pointer.Cancel(g.now)
	g.autoHide.Hide()
	g.shelf.Invalidate()
	g.screen = ScreenLibrary
	ebiten.SetWindowTitle(windowTitle)
}

// Escape leaves the innermost mode: help, fullscreen, then the book
func (g *Game) Escape() {
	switch {
	case g.showHelp:
		g.showHelp = false
	case g.window.IsFullscreen():
		g.reader.Execute(reader.CommandExitFullscreen)
	case g.screen == ScreenReader:
		g.ShowLibrary()
	default:
		g.shelf.EndSearch(false)
	}
}

func (g *Game) ToggleHelp() {
	g.showHelp = !g.showHelp
}

func (g *Game) ToggleInfo() {
	g.showInfo = !g.showInfo
}

func (g *Game) ToggleReadingDirection() {
	rtl := !g.reader.RightToLeft()
	g.reader.SetRightToLeft(rtl)
	if rtl {
		g.ShowOverlayMessage("Reading direction: right to left")
	} else {
		g.ShowOverlayMessage("Reading direction: left to right")
	}
}

func (g *Game) ExecuteCommand(cmd reader.Command) bool {
	changed := g.reader.Execute(cmd)
	if changed {
		g.log.Debug("command", "command", cmd.String(), "spread", g.reader.Current())
	}
	return changed
}

func (g *Game) ZoomBy(delta float64) {
	if g.screen != ScreenReader {
		return
	}
	g.reader.SetZoom(g.reader.Zoom() + delta)
}

func (g *Game) ZoomReset() {
	if g.screen != ScreenReader {
		return
	}
	g.reader.SetZoom(reader.MinZoom)
}

func (g *Game) ShowOverlayMessage(message string) {
	g.overlayMessage = message
	g.overlayMessageTime = g.now
}

func (g *Game) GetTotalSpreads() int {
	return g.reader.TotalSpreads()
}

// InputState

func (g *Game) IsReading() bool {
	return g.screen == ScreenReader
}

// RenderState

func (g *Game) CurrentScreen() Screen { return g.screen }
func (g *Game) IsFullscreen() bool    { return g.window.IsFullscreen() }
func (g *Game) Now() time.Time        { return g.now }

func (g *Game) GetSpreadImages() (left, right *ebiten.Image) {
	book, ok := g.reader.Book()
	if !ok {
		return nil, nil
	}
	d := g.reader.Display()
	pages := spreadPages(d.Index)
	if page, ok := g.pageImage(book, pages[0]); ok {
		left = page.Image
	}
	if d.HasRight() {
		if page, ok := g.pageImage(book, pages[1]); ok {
			right = page.Image
		}
	}
	return left, right
}

func (g *Game) GetDisplay() spread.Display { return g.reader.Display() }
func (g *Game) GetSlots() spread.Slots     { return g.reader.Slots() }
func (g *Game) GetZoom() float64           { return g.reader.Zoom() }

func (g *Game) GetBookTitle() string {
	book, _ := g.reader.Book()
	return book.Title
}

func (g *Game) GetTotalPages() int {
	book, _ := g.reader.Book()
	return len(book.Pages)
}

func (g *Game) ControlsVisible() bool { return g.autoHide.Visible() }
func (g *Game) IsRightToLeft() bool   { return g.reader.RightToLeft() }

func (g *Game) IsShowingHelp() bool              { return g.showHelp }
func (g *Game) IsShowingInfo() bool              { return g.showInfo }
func (g *Game) GetOverlayMessage() string        { return g.overlayMessage }
func (g *Game) GetOverlayMessageTime() time.Time { return g.overlayMessageTime }

func (g *Game) GetFontSize() float64                  { return g.config.HelpFontSize }
func (g *Game) GetConfigStatus() ConfigLoadResult     { return g.configStatus }
func (g *Game) GetKeybindings() map[string][]string   { return g.keybindingManager.GetKeybindings() }
func (g *Game) GetMousebindings() map[string][]string { return g.mousebindingManager.GetMousebindings() }

func (g *Game) GetCacheStats() (int, PreloadStats) {
	return g.pages.CacheLen(), g.pages.Stats()
}

func (g *Game) GetLibraryView() *LibraryView { return g.shelf }

func (g *Game) GetThumbnail(book catalog.Book) *ebiten.Image {
	ref := book.ThumbnailRef()
	if ref == "" {
		return nil
	}
	page, ok := g.pages.Get(PageRequest{BookID: book.ID, Source: book.Source, Ref: ref})
	if !ok {
		return nil
	}
	return page.Image
}

func main() {
	var (
		libraryDir = flag.String("library", "", "library directory (overrides config)")
		dataDir    = flag.String("data", "", "directory for reading progress (overrides config)")
		bookID     = flag.String("book", "", "id of the book to open at startup")
		configFile = flag.String("config", "", "config file (default ~/"+configFileName+")")
		logLevel   = flag.String("log-level", "", "log level: debug, info, warn, error")
	)
	flag.Parse()

	configPath := *configFile
	if configPath == "" {
		configPath = getConfigPath()
	}
	result := loadConfig(configPath)

	cfg := result.Config
	if *libraryDir != "" {
		cfg.LibraryDir = *libraryDir
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	log := logger.New(logger.Config{
		Format: cfg.LogFormat,
		Level:  logger.ParseLevel(cfg.LogLevel),
	})
	for _, warning := range result.Warnings {
		log.Warn("config", "path", configPath, "warning", warning)
	}

	if err := InitGraphics(); err != nil {
		log.Error("failed to load font", "error", err)
		os.Exit(1)
	}

	injector := NewContainer(&cfg, log)
	shutdown := func() {
		if err := injector.Shutdown(); err != nil {
			log.Error("Shutdown error", "error", err)
		}
	}

	g, err := NewGame(injector, cfg, result.Config, configPath, result)
	if err != nil {
		log.Error("failed to start", "error", err)
		shutdown()
		os.Exit(1)
	}

	ebiten.SetWindowTitle(windowTitle)
	ebiten.SetWindowSize(cfg.WindowWidth, cfg.WindowHeight)
	ebiten.SetWindowSizeLimits(minWidth, minHeight, -1, -1)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if cfg.Fullscreen {
		g.window.SetFullscreen(true)
	}

	g.start(*bookID)

	log.Info("Starting reader",
		"library", cfg.LibraryDir,
		"books", g.books.Get().Len(),
		"sort", getSortMethodName(cfg.SortMethod),
	)

	runErr := ebiten.RunGame(g)
	flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	if err := g.reader.Shutdown(flushCtx); err != nil {
		log.Warn("reading position not saved", "error", err)
	}
	cancel()
	shutdown()
	if runErr != nil {
		log.Error("reader exited", "error", runErr)
		os.Exit(1)
	}
}
