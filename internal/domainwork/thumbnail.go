package domainwork

import (
	"context"
	"image"
	"image/color"
	"time"

	"preparser/internal/engine"
)

// ThumbnailWorker produces a deterministic placeholder frame for an item at
// a requested seek position. A real implementation would decode the
// container at req.Seek and grab a frame; this one paints a flat-color
// bitmap whose color is derived from the seek position, so callers can
// still observe that different seeks produce different pictures.
type ThumbnailWorker struct {
	Width, Height int

	// PreciseExtra is the additional simulated decode latency applied when
	// req.Seek.Precision == engine.PrecisionPrecise, standing in for the
	// extra seeking work a precise frame grab costs in a real decoder.
	PreciseExtra time.Duration
}

func (w *ThumbnailWorker) Run(ctx context.Context, req *engine.WorkRequest, rep engine.Reporter) (engine.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return engine.Outcome{Status: engine.StatusInterrupted}, nil
	}

	if req.Seek.Precision == engine.PrecisionPrecise && w.PreciseExtra > 0 {
		t := time.NewTimer(w.PreciseExtra)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return engine.Outcome{Status: engine.StatusInterrupted}, nil
		case <-t.C:
		}
	}

	width, height := w.Width, w.Height
	if width <= 0 {
		width = 320
	}
	if height <= 0 {
		height = 180
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	c := colorForSeek(req.Seek)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	rep.AttachmentsAdded()
	return engine.Outcome{Status: engine.StatusOk, Picture: engine.NewPicture(img)}, nil
}

// colorForSeek derives a stable color from a seek descriptor so distinct
// seek positions are visibly distinguishable in the placeholder frame.
func colorForSeek(seek engine.SeekDescriptor) color.RGBA {
	switch seek.Kind {
	case engine.SeekByTime:
		v := uint8(seek.Ticks % 256)
		return color.RGBA{R: v, G: 128, B: 255 - v, A: 255}
	case engine.SeekByPosition:
		v := uint8(seek.Fraction * 255)
		return color.RGBA{R: 255 - v, G: v, B: 128, A: 255}
	default:
		return color.RGBA{R: 96, G: 96, B: 96, A: 255}
	}
}
