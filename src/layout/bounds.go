package layout

import "n8n-optimizer/src/core/domain"

const (
	MinCanvasWidth  = 800
	MinCanvasHeight = 400
	PaddingX        = 200
	PaddingY        = 100
)

type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bounds returns the canvas size needed to draw the arranged nodes
func Bounds(arranged []domain.ArrangedNode) Canvas {
	canvas := Canvas{Width: MinCanvasWidth, Height: MinCanvasHeight}
	for _, node := range arranged {
		canvas.Width = max(canvas.Width, node.X+PaddingX)
		canvas.Height = max(canvas.Height, node.Y+PaddingY)
	}
	return canvas
}
