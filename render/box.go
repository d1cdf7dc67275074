package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/swdee/go-darknet/postprocess"
	"gocv.io/x/gocv"
)

// boxLabel is a label drawn after all boxes so no box line covers text
type boxLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// DetectionBoxes renders the bounding boxes and labels of the detected
// objects.  Boxes are colored by class
func DetectionBoxes(img *gocv.Mat, detectResults []postprocess.DetectResult,
	font Font, lineThickness int) {

	boxLabels := make([]boxLabel, 0, len(detectResults))

	for _, det := range detectResults {

		useClr := ClassColor(det.Class)

		rect := image.Rect(det.Box.Left, det.Box.Top, det.Box.Right, det.Box.Bottom)
		gocv.Rectangle(img, rect, useClr, lineThickness)

		text := LabelText(det)
		textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

		// Calculate the alignment of text label
		var centerX int

		switch font.Alignment {
		case Center:
			centerX = (det.Box.Left + det.Box.Right) / 2

		case Right:
			centerX = det.Box.Right - (textSize.X / 2) - font.RightPad + (lineThickness / 2)

		case Left:
			fallthrough
		default:
			centerX = det.Box.Left + (textSize.X / 2) + font.LeftPad - (lineThickness / 2)
		}

		top := det.Box.Top

		// boxes touching the top edge get their label inside the box
		if top-textSize.Y-font.TopPad-font.BottomPad < 0 {
			top += textSize.Y + font.TopPad + font.BottomPad
		}

		boxLabels = append(boxLabels, boxLabel{
			rect: image.Rect(centerX-textSize.X/2-font.LeftPad,
				top-textSize.Y-font.TopPad-font.BottomPad,
				centerX+textSize.X/2+font.RightPad, top),
			clr:     useClr,
			text:    text,
			textPos: image.Pt(centerX-textSize.X/2, top-font.BottomPad),
		})
	}

	for _, box := range boxLabels {
		// filled background the text gets written on
		gocv.Rectangle(img, box.rect, box.clr, -1)

		gocv.PutTextWithParams(img, box.text, box.textPos,
			font.Face, font.Scale, font.Color, font.Thickness,
			font.LineType, false)
	}
}

// LabelText returns the text drawn above a box, the class label or its
// index when the network has no labels, and the probability
func LabelText(det postprocess.DetectResult) string {

	name := det.Label

	if name == "" {
		name = fmt.Sprintf("class %d", det.Class)
	}

	return fmt.Sprintf("%s %.2f", name, det.Probability)
}
