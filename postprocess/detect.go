package postprocess

// BoxRect are the pixel dimensions of the bounding box of a detected object.
// Right and Bottom are exclusive
type BoxRect struct {
	Left   int
	Right  int
	Top    int
	Bottom int
}

// Width returns the width of the rectangle
func (r BoxRect) Width() int {
	return r.Right - r.Left
}

// Height returns the height of the rectangle
func (r BoxRect) Height() int {
	return r.Bottom - r.Top
}

// DetectResult defines the attributes of a single object detected
type DetectResult struct {
	// Class is the line number in the labels file the Model was trained on
	// defining the Class of the detected object
	Class int
	// Label is the class name, empty when the network has no labels
	Label string
	// Box are the bounding box dimensions of the object location
	Box BoxRect
	// Probability is the confidence score of the object detected
	Probability float32
	// ID is a unique ID assigned to the detection result
	ID int64
}
