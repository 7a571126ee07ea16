package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

const (
	progressBarWidth     = 20
	progressLabel        = "Scanning..."
	progressClearedWidth = 80
	percentScale         = 100
)

// progressLine redraws a single scanning status line in place.
type progressLine struct {
	mutex   sync.Mutex
	writer  io.Writer
	palette palette
	visible bool
}

func newProgressLine(writer io.Writer, useAnsi bool) *progressLine {
	return &progressLine{writer: writer, palette: newPalette(writer, useAnsi)}
}

// Update matches types.ProgressFunc.
func (line *progressLine) Update(processed int, estimatedTotal int) {
	line.mutex.Lock()
	defer line.mutex.Unlock()
	line.visible = true
	_, _ = io.WriteString(line.writer, "\r"+renderProgress(processed, estimatedTotal, line.palette))
}

// Clear erases the line if anything was drawn.
func (line *progressLine) Clear() {
	line.mutex.Lock()
	defer line.mutex.Unlock()
	if !line.visible {
		return
	}
	_, _ = io.WriteString(line.writer, "\r"+strings.Repeat(" ", progressClearedWidth)+"\r")
	line.visible = false
}

func renderProgress(processed int, estimatedTotal int, colors palette) string {
	percent := 0
	if estimatedTotal > 0 {
		percent = min(processed*percentScale/estimatedTotal, percentScale)
	}
	filled := percent * progressBarWidth / percentScale
	bar := colors.info(strings.Repeat(barFullSymbol, filled)) + colors.dim(strings.Repeat(barEmptySymbol, progressBarWidth-filled))
	counter := colors.dim(fmt.Sprintf("%d/%d", processed, estimatedTotal))
	return fmt.Sprintf("%s %s %s %d%% (%s files)", pancakeSymbol, progressLabel, bar, percent, counter)
}
