package main

import (
	"fmt"
	"image"
	"image/color"
	"sort"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"picbook/internal/library"
	"picbook/internal/spread"
)

// Common colors used in rendering
var (
	colorWhite     = color.RGBA{255, 255, 255, 255}
	colorGray      = color.RGBA{180, 180, 180, 255}
	colorLightGray = color.RGBA{192, 192, 192, 255}
	colorYellow    = color.RGBA{255, 255, 100, 255}
	colorCyan      = color.RGBA{100, 255, 255, 255}
	colorLightBlue = color.RGBA{200, 200, 255, 255}
	colorGreen     = color.RGBA{100, 255, 100, 255}
	colorOrange    = color.RGBA{255, 200, 100, 255}
	colorLightRed  = color.RGBA{255, 150, 150, 255}

	// Page and shelf backgrounds
	colorBackground = color.RGBA{24, 24, 28, 255}
	colorPaper      = color.RGBA{60, 60, 66, 255}
	colorRowActive  = color.RGBA{60, 70, 110, 255}

	// Background colors for semi-transparent overlays
	bgColorLight  = color.RGBA{0, 0, 0, 128} // Light semi-transparent
	bgColorMedium = color.RGBA{0, 0, 0, 160} // Medium semi-transparent
	bgColorDark   = color.RGBA{0, 0, 0, 200} // Dark semi-transparent
)

const (
	helpPadding     = 40.0
	helpMinFontSize = 12.0
	maxHelpWarnings = 2
	controlsHeight  = 48.0
)

// Renderer handles all drawing operations
type Renderer struct {
	renderState RenderState
}

// NewRenderer creates a new Renderer
func NewRenderer(renderState RenderState) *Renderer {
	return &Renderer{renderState: renderState}
}

// measureText measures s, or returns zero when no font is loaded
func measureText(s string, face *text.GoTextFace) (float64, float64) {
	if face == nil {
		return 0, 0
	}
	return text.Measure(s, face, 0)
}

// Draw renders the entire screen
func (r *Renderer) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)

	switch r.renderState.CurrentScreen() {
	case ScreenReader:
		r.drawSpread(screen)
		if r.renderState.ControlsVisible() {
			r.drawControls(screen)
		}
	default:
		r.drawLibrary(screen)
	}

	if r.renderState.IsShowingInfo() {
		r.drawInfoDisplay(screen)
	}

	if r.renderState.IsShowingHelp() {
		r.drawHelpOverlay(screen)
	}

	msg := r.renderState.GetOverlayMessage()
	if msg != "" && r.renderState.Now().Sub(r.renderState.GetOverlayMessageTime()) < overlayMessageDuration {
		r.drawOverlayMessage(screen, msg)
	}
}

// pageStatus formats the 1-based pages of the shown spread, e.g. "3-4 / 10"
func pageStatus(d spread.Display, totalPages int) string {
	if totalPages <= 0 {
		return "0 / 0"
	}
	first := d.Index*2 + 1
	if d.HasRight() {
		return fmt.Sprintf("%d-%d / %d", first, first+1, totalPages)
	}
	return fmt.Sprintf("%d / %d", first, totalPages)
}

// fitRect returns the largest rectangle with the aspect of a w×h image
// centered inside box
func fitRect(w, h int, box image.Rectangle) image.Rectangle {
	if w <= 0 || h <= 0 || box.Empty() {
		return image.Rectangle{}
	}
	bw, bh := box.Dx(), box.Dy()
	fw, fh := bw, bw*h/w
	if fh > bh {
		fw, fh = bh*w/h, bh
	}
	x := box.Min.X + (bw-fw)/2
	y := box.Min.Y + (bh-fh)/2
	return image.Rect(x, y, x+fw, y+fh)
}

func (r *Renderer) drawSpread(screen *ebiten.Image) {
	d := r.renderState.GetDisplay()
	face := newFace(r.renderState.GetFontSize())

	// Nothing is painted until the first page fixes the aspect ratio and
	// the viewport is measured.
	if d.Box.IsZero() {
		msg := "Loading..."
		tw, th := measureText(msg, face)
		w, h := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
		DrawText(screen, msg, face, (w-tw)/2, (h-th)/2, colorGray)
		return
	}

	slots := r.renderState.GetSlots()
	left, right := r.renderState.GetSpreadImages()
	zoom := r.renderState.GetZoom()

	u := slots.Left
	if d.HasRight() {
		u = u.Union(slots.Right)
	}
	cx, cy := float64(u.Min.X+u.Max.X)/2, float64(u.Min.Y+u.Max.Y)/2

	r.drawPage(screen, left, slots.Left, zoom, cx, cy)
	if d.HasRight() {
		r.drawPage(screen, right, slots.Right, zoom, cx, cy)
	}
}

// drawPage draws one page into its slot, or a blank sheet while it loads
func (r *Renderer) drawPage(screen, img *ebiten.Image, slot image.Rectangle, zoom, cx, cy float64) {
	if img == nil {
		DrawFilledRect(screen, float64(slot.Min.X), float64(slot.Min.Y), float64(slot.Dx()), float64(slot.Dy()), colorPaper)
		return
	}
	DrawImageFit(screen, img, slot, zoom, cx, cy)
}

func (r *Renderer) drawControls(screen *ebiten.Image) {
	w, h := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	face := newFace(r.renderState.GetFontSize() * 0.8)

	// Top bar: title and fullscreen state
	DrawFilledRect(screen, 0, 0, w, controlsHeight, bgColorMedium)
	DrawText(screen, truncate(r.renderState.GetBookTitle(), 60), face, 16, 12, colorWhite)
	mode := "F: fullscreen"
	if r.renderState.IsFullscreen() {
		mode = "Esc: exit fullscreen"
	}
	mw, _ := measureText(mode, face)
	DrawText(screen, mode, face, w-mw-16, 12, colorGray)

	// Bottom bar: page turn hints and page status
	y := h - controlsHeight
	DrawFilledRect(screen, 0, y, w, controlsHeight, bgColorMedium)

	d := r.renderState.GetDisplay()
	back, forward := "< Previous", "Next >"
	if r.renderState.IsRightToLeft() {
		back, forward = "< Next", "Previous >"
	}
	leftColor, rightColor := colorWhite, colorWhite
	if (!r.renderState.IsRightToLeft() && d.First) || (r.renderState.IsRightToLeft() && d.Last) {
		leftColor = colorGray
	}
	if (!r.renderState.IsRightToLeft() && d.Last) || (r.renderState.IsRightToLeft() && d.First) {
		rightColor = colorGray
	}
	DrawText(screen, back, face, 16, y+12, leftColor)
	fw, _ := measureText(forward, face)
	DrawText(screen, forward, face, w-fw-16, y+12, rightColor)

	status := pageStatus(d, r.renderState.GetTotalPages())
	sw, _ := measureText(status, face)
	DrawText(screen, status, face, (w-sw)/2, y+12, colorWhite)
}

func (r *Renderer) drawLibrary(screen *ebiten.Image) {
	view := r.renderState.GetLibraryView()
	if view == nil {
		return
	}
	w, h := float64(screen.Bounds().Dx()), screen.Bounds().Dy()
	size := r.renderState.GetFontSize()
	titleFace := newFace(size)
	face := newFace(size * 0.7)
	x := float64(libraryMargin)

	snap := view.Snapshot()
	DrawText(screen, "Picture Books", titleFace, x, 16, colorWhite)

	s := snap.Stats
	stats := fmt.Sprintf("%d books | %d completed | %d pages | %.1f%% read",
		s.TotalBooks, s.CompletedBooks, s.TotalPages, s.ReadingRate)
	DrawText(screen, stats, face, x, 56, colorGray)

	search := "Search (/): " + view.Query()
	searchColor := colorLightGray
	if view.Searching() {
		search += "_"
		searchColor = colorYellow
	}
	DrawText(screen, search, face, x, 84, searchColor)

	category := view.Category()
	if category == "" {
		category = "All"
	}
	tag := view.Tag()
	if tag == "" {
		tag = "Any"
	}
	catText := "Category (Tab): " + category + " | Tag (T): " + tag
	cw, _ := measureText(catText, face)
	DrawText(screen, catText, face, w-cw-x, 84, colorCyan)

	if len(snap.Recent) > 0 {
		titles := make([]string, 0, len(snap.Recent))
		for _, e := range snap.Recent {
			titles = append(titles, fmt.Sprintf("%s (%s)", e.Book.Title, e.Status()))
		}
		DrawText(screen, truncate("Recent: "+strings.Join(titles, ", "), 120), face, x, 112, colorLightBlue)
	}

	if err := view.Err(); err != nil {
		DrawText(screen, truncate("Error: "+err.Error(), 120), face, x, 140, colorLightRed)
	}

	if len(snap.Entries) == 0 {
		DrawText(screen, "No books found", titleFace, x, libraryHeaderHeight+20, colorGray)
		return
	}

	start, end := view.Window(visibleRows(h))
	for i := start; i < end; i++ {
		y := float64(libraryHeaderHeight + (i-start)*libraryRowHeight)
		r.drawLibraryRow(screen, snap.Entries[i], i == view.Cursor(), y, w, face)
	}
}

func (r *Renderer) drawLibraryRow(screen *ebiten.Image, e library.Entry, active bool, y, w float64, face *text.GoTextFace) {
	x := float64(libraryMargin)
	rowW := w - x*2
	if active {
		DrawFilledRect(screen, x, y, rowW, libraryRowHeight-8, colorRowActive)
	}

	thumbBox := image.Rect(int(x)+8, int(y)+4, int(x)+8+libraryThumbSize, int(y)+4+libraryThumbSize)
	if thumb := r.renderState.GetThumbnail(e.Book); thumb != nil {
		dst := fitRect(thumb.Bounds().Dx(), thumb.Bounds().Dy(), thumbBox)
		DrawImageFit(screen, thumb, dst, 1, 0, 0)
	} else {
		DrawFilledRect(screen, float64(thumbBox.Min.X), float64(thumbBox.Min.Y), libraryThumbSize, libraryThumbSize, colorPaper)
	}

	tx := x + libraryThumbSize + 24
	DrawText(screen, truncate(e.Book.Title, 70), face, tx, y+8, colorWhite)

	var details []string
	if e.Book.Author != "" {
		details = append(details, e.Book.Author)
	}
	if e.Book.Category != "" {
		details = append(details, e.Book.Category)
	}
	details = append(details, fmt.Sprintf("%d pages", len(e.Book.Pages)))
	if e.Book.AgeRange != "" {
		details = append(details, "ages "+e.Book.AgeRange)
	}
	DrawText(screen, truncate(strings.Join(details, " | "), 90), face, tx, y+36, colorGray)

	status := e.Status()
	statusColor := colorLightGray
	switch {
	case e.Completed():
		statusColor = colorGreen
	case e.Progress != nil:
		statusColor = colorYellow
	}
	sw, _ := measureText(status, face)
	DrawText(screen, status, face, x+rowW-sw-12, y+8, statusColor)

	// progress bar
	barW := 160.0
	barX := x + rowW - barW - 12
	DrawFilledRect(screen, barX, y+44, barW, 6, colorPaper)
	DrawFilledRect(screen, barX, y+44, barW*float64(e.Percent())/100, 6, statusColor)
}

// helpRow is one action line of the help overlay
type helpRow struct {
	action      string
	keys        string
	mouse       string
	description string
}

// input is the combined keyboard and mouse column text
func (h helpRow) input() string {
	var parts []string
	if h.keys != "" {
		parts = append(parts, h.keys)
	}
	if h.mouse != "" {
		parts = append(parts, h.mouse)
	}
	return strings.Join(parts, " | ")
}

// helpRows returns the bound actions in name order
func (r *Renderer) helpRows() []helpRow {
	keybindings := r.renderState.GetKeybindings()
	mousebindings := r.renderState.GetMousebindings()
	descriptions := GetActionDescriptions()

	actionSet := make(map[string]bool)
	for action := range keybindings {
		actionSet[action] = true
	}
	for action := range mousebindings {
		actionSet[action] = true
	}
	actions := make([]string, 0, len(actionSet))
	for action := range actionSet {
		actions = append(actions, action)
	}
	sort.Strings(actions)

	rows := make([]helpRow, 0, len(actions))
	for _, action := range actions {
		keys, mouse := keybindings[action], mousebindings[action]
		if len(keys) == 0 && len(mouse) == 0 {
			continue
		}
		desc := descriptions[action]
		if desc == "" {
			desc = "No description available"
		}
		rows = append(rows, helpRow{
			action:      action,
			keys:        strings.Join(keys, ", "),
			mouse:       strings.Join(mouse, ", "),
			description: desc,
		})
	}
	return rows
}

// helpWarnings returns the shortened config warnings shown in the overlay
func helpWarnings(status ConfigLoadResult) []string {
	var out []string
	for i, warning := range status.Warnings {
		if i >= maxHelpWarnings {
			break
		}
		out = append(out, "• "+truncate(warning, 50))
	}
	return out
}

// helpColumns measures the action and input columns
func helpColumns(rows []helpRow, face *text.GoTextFace) (actionW, inputW, descW float64) {
	for _, row := range rows {
		if w, _ := measureText(row.action, face); w > actionW {
			actionW = w
		}
		if w, _ := measureText(row.input(), face); w > inputW {
			inputW = w
		}
		if w, _ := measureText(row.description, face); w > descW {
			descW = w
		}
	}
	return actionW, inputW, descW
}

func (r *Renderer) drawHelpOverlay(screen *ebiten.Image) {
	w, h := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())

	fontSize, canFit := r.calculateOptimalFontSize(w-helpPadding*2, h-helpPadding*2)
	if !canFit {
		r.drawMarginTooSmallMessage(screen)
		return
	}

	rows := r.helpRows()
	configStatus := r.renderState.GetConfigStatus()

	DrawFilledRect(screen, 0, 0, w, h, bgColorLight)
	DrawFilledRect(screen, helpPadding, helpPadding, w-helpPadding*2, h-helpPadding*2, bgColorMedium)

	helpFont := newFace(fontSize)
	lineHeight := fontSize * 1.5

	titleY := helpPadding + 30
	DrawText(screen, "HELP:", helpFont, helpPadding+20, titleY, colorWhite)
	currentY := titleY + fontSize*2

	DrawText(screen, "Controls (Keyboard | Mouse):", helpFont, helpPadding+20, currentY, colorWhite)
	currentY += lineHeight * 1.5

	actionW, inputW, _ := helpColumns(rows, helpFont)
	actionX := helpPadding + 40
	arrowX := actionX + actionW + 20
	inputX := arrowX + 30
	descX := inputX + inputW + 20

	for _, row := range rows {
		DrawText(screen, row.action, helpFont, actionX, currentY, colorLightBlue)
		DrawText(screen, "→", helpFont, arrowX, currentY, colorWhite)

		x := inputX
		if row.keys != "" {
			DrawText(screen, row.keys, helpFont, x, currentY, colorYellow)
			kw, _ := measureText(row.keys, helpFont)
			x += kw
		}
		if row.keys != "" && row.mouse != "" {
			DrawText(screen, " | ", helpFont, x, currentY, colorWhite)
			sw, _ := measureText(" | ", helpFont)
			x += sw
		}
		if row.mouse != "" {
			DrawText(screen, row.mouse, helpFont, x, currentY, colorCyan)
		}

		DrawText(screen, row.description, helpFont, descX, currentY, colorGray)
		currentY += lineHeight
	}

	currentY += lineHeight
	DrawText(screen, "System:", helpFont, helpPadding+20, currentY, colorWhite)
	currentY += lineHeight

	statusColor := colorGreen
	if configStatus.Status == "Warning" || configStatus.Status == "Error" {
		statusColor = colorOrange
	}
	DrawText(screen, "Config Status: "+configStatus.Status, helpFont, helpPadding+40, currentY, statusColor)
	currentY += lineHeight

	for _, warning := range helpWarnings(configStatus) {
		DrawText(screen, warning, helpFont, helpPadding+40, currentY, colorLightRed)
		currentY += lineHeight
	}
}

// calculateRequiredDimensions calculates the size the help content needs at fontSize
func (r *Renderer) calculateRequiredDimensions(fontSize float64) (float64, float64) {
	rows := r.helpRows()
	configStatus := r.renderState.GetConfigStatus()
	face := newFace(fontSize)
	warnings := helpWarnings(configStatus)

	lineHeight := fontSize * 1.5

	height := helpPadding * 2
	height += fontSize * 2     // title
	height += lineHeight * 1.5 // controls title
	height += float64(len(rows)) * lineHeight
	height += lineHeight * 3 // spacing, "System:", config status
	height += float64(len(warnings)) * lineHeight

	maxWidth := 0.0
	fit := func(s string, indent float64) {
		if tw, _ := measureText(s, face); tw+helpPadding*2+indent > maxWidth {
			maxWidth = tw + helpPadding*2 + indent
		}
	}
	fit("HELP:", 40)
	fit("Controls (Keyboard | Mouse):", 40)
	fit("System:", 40)
	fit("Config Status: "+configStatus.Status, 80)
	for _, warning := range warnings {
		fit(warning, 80)
	}

	actionW, inputW, descW := helpColumns(rows, face)
	if lineW := 40 + actionW + 20 + 30 + 20 + inputW + 20 + descW + helpPadding; lineW > maxWidth {
		maxWidth = lineW
	}

	return maxWidth, height
}

// calculateOptimalFontSize finds the largest font size that fits within the given dimensions
func (r *Renderer) calculateOptimalFontSize(availableWidth, availableHeight float64) (float64, bool) {
	maxFontSize := r.renderState.GetFontSize()

	minWidth, minHeight := r.calculateRequiredDimensions(helpMinFontSize)
	if minWidth > availableWidth || minHeight > availableHeight {
		return helpMinFontSize, false
	}

	maxWidth, maxHeight := r.calculateRequiredDimensions(maxFontSize)
	if maxWidth <= availableWidth && maxHeight <= availableHeight {
		return maxFontSize, true
	}

	// Binary search for optimal font size
	low, high := helpMinFontSize, maxFontSize
	bestSize := helpMinFontSize
	for high-low > 0.5 {
		mid := (low + high) / 2.0
		reqWidth, reqHeight := r.calculateRequiredDimensions(mid)
		if reqWidth <= availableWidth && reqHeight <= availableHeight {
			bestSize = mid
			low = mid
		} else {
			high = mid
		}
	}

	return bestSize, true
}

// drawMarginTooSmallMessage displays Fermat's margin joke when help cannot fit
func (r *Renderer) drawMarginTooSmallMessage(screen *ebiten.Image) {
	w, h := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	DrawFilledRect(screen, 0, 0, w, h, bgColorLight)

	jokeFont := newFace(16)
	message := "Hanc marginis exiguitas non caperet."
	subtitle := "(This margin is too small to contain it.)"

	messageWidth, messageHeight := measureText(message, jokeFont)
	subtitleWidth, _ := measureText(subtitle, jokeFont)

	messageY := h/2 - messageHeight/2
	DrawText(screen, message, jokeFont, w/2-messageWidth/2, messageY, colorWhite)
	DrawText(screen, subtitle, jokeFont, w/2-subtitleWidth/2, messageY+messageHeight+10, colorGray)
}

// infoText is the status line of the info display
func (r *Renderer) infoText() string {
	cached, stats := r.renderState.GetCacheStats()
	cache := fmt.Sprintf("cache %d | queue %d | loaded %d | failed %d",
		cached, stats.QueueSize, stats.LoadedCount, stats.FailedCount)
	if r.renderState.CurrentScreen() != ScreenReader {
		return cache
	}

	direction := "LTR"
	if r.renderState.IsRightToLeft() {
		direction = "RTL"
	}
	return fmt.Sprintf("%s | %s | zoom %.2fx | %s",
		pageStatus(r.renderState.GetDisplay(), r.renderState.GetTotalPages()),
		direction, r.renderState.GetZoom(), cache)
}

func (r *Renderer) drawInfoDisplay(screen *ebiten.Image) {
	infoFont := newFace(r.renderState.GetFontSize() * 0.7)
	infoText := r.infoText()
	textWidth, textHeight := measureText(infoText, infoFont)

	// Bottom right corner, above the controls bar
	padding := 10.0
	textX := float64(screen.Bounds().Dx()) - textWidth - padding
	textY := float64(screen.Bounds().Dy()) - textHeight - padding
	if r.renderState.CurrentScreen() == ScreenReader && r.renderState.ControlsVisible() {
		textY -= controlsHeight
	}

	bgPadding := 5.0
	DrawFilledRect(screen, textX-bgPadding, textY-bgPadding, textWidth+bgPadding*2, textHeight+bgPadding*2, bgColorLight)
	DrawText(screen, infoText, infoFont, textX, textY, colorWhite)
}

func (r *Renderer) drawOverlayMessage(screen *ebiten.Image, message string) {
	messageFont := newFace(r.renderState.GetFontSize())
	textWidth, textHeight := measureText(message, messageFont)

	padding := 20.0
	boxWidth := textWidth + padding*2
	boxHeight := textHeight + padding*2
	boxX := (float64(screen.Bounds().Dx()) - boxWidth) / 2
	boxY := (float64(screen.Bounds().Dy()) - boxHeight) / 2

	DrawFilledRect(screen, boxX, boxY, boxWidth, boxHeight, bgColorDark)
	DrawText(screen, message, messageFont, boxX+padding, boxY+padding, colorWhite)
}
