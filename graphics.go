package main

import (
	"bytes"
	"image"
	"image/color"
	"path"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	fontOnce   sync.Once
	fontSource *text.GoTextFaceSource
	fontErr    error
)

// InitGraphics loads the UI font. It is safe to call more than once.
func InitGraphics() error {
	fontOnce.Do(func() {
		fontSource, fontErr = text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	})
	return fontErr
}

// newFace returns a face of the UI font, or nil when the font is not loaded
func newFace(size float64) *text.GoTextFace {
	if fontSource == nil {
		return nil
	}
	return &text.GoTextFace{Source: fontSource, Size: size}
}

// DrawText draws text with specified position and color
func DrawText(screen *ebiten.Image, textString string, font *text.GoTextFace, x, y float64, textColor color.RGBA) {
	if font == nil {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(textColor)
	text.Draw(screen, textString, font, op)
}

// DrawFilledRect draws filled rectangles with float64 coordinates
func DrawFilledRect(screen *ebiten.Image, x, y, w, h float64, bgColor color.RGBA) {
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), bgColor, false)
}

// DrawBorder draws a rectangle outline of the given thickness
func DrawBorder(screen *ebiten.Image, x, y, w, h, thickness float64, c color.RGBA) {
	DrawFilledRect(screen, x, y, w, thickness, c)
	DrawFilledRect(screen, x, y+h-thickness, w, thickness, c)
	DrawFilledRect(screen, x, y, thickness, h, c)
	DrawFilledRect(screen, x+w-thickness, y, thickness, h, c)
}

// DrawImageFit draws img scaled to fill rect, then scaled by zoom around
// the point (cx, cy)
func DrawImageFit(screen, img *ebiten.Image, rect image.Rectangle, zoom, cx, cy float64) {
	iw, ih := img.Bounds().Dx(), img.Bounds().Dy()
	if iw == 0 || ih == 0 || rect.Empty() {
		return
	}

	op := &ebiten.DrawImageOptions{}
	op.Filter = ebiten.FilterLinear
	op.GeoM.Scale(float64(rect.Dx())/float64(iw), float64(rect.Dy())/float64(ih))
	op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
	if zoom != 1 {
		op.GeoM.Translate(-cx, -cy)
		op.GeoM.Scale(zoom, zoom)
		op.GeoM.Translate(cx, cy)
	}
	screen.DrawImage(img, op)
}

// truncate shortens s to max characters with an ellipsis
func truncate(s string, max int) string {
	r := []rune(s)
	if max < 4 || len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// CreateErrorImage creates an error placeholder image with filename and error message
func CreateErrorImage(width, height int, filename, errorMsg string) *ebiten.Image {
	if width <= 0 || height <= 0 {
		width, height = 400, 300
	}

	errorImg := ebiten.NewImage(width, height)
	errorImg.Fill(color.RGBA{120, 30, 30, 255})
	DrawBorder(errorImg, 0, 0, float64(width), float64(height), 3, colorWhite)

	errorFont := newFace(20)
	if errorFont == nil {
		return errorImg
	}

	// Rough estimate: 10px per character
	maxChars := (width - 20) / 10
	DrawText(errorImg, "ERROR", errorFont, 10, 30, colorWhite)
	DrawText(errorImg, truncate("File: "+path.Base(filename), maxChars), errorFont, 10, 60, colorWhite)
	DrawText(errorImg, truncate("Reason: "+errorMsg, maxChars), errorFont, 10, 90, colorWhite)

	return errorImg
}
