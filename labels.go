package darknet

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Labels is the immutable list of class names a Model was trained on, the
// line number of each name is its class index.  A Labels value is shared by
// a Network and every Detections it produces
type Labels struct {
	names []string
}

// NewLabels returns a label table holding a copy of names
func NewLabels(names []string) *Labels {

	l := &Labels{
		names: make([]string, len(names)),
	}

	copy(l.names, names)

	return l
}

// LoadLabels reads the labels used to train the Model from the given text file.
// It should contain one label per line.
func LoadLabels(file string) (*Labels, error) {

	// open the file
	f, err := os.Open(file)

	if err != nil {
		return nil, errors.Wrapf(ErrIO, "error opening labels file: %v", err)
	}

	defer f.Close()

	// create a scanner to read the file.
	scanner := bufio.NewScanner(f)

	var labels []string

	// read and trim each line
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		labels = append(labels, line)
	}

	// check for errors during scanning
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(ErrIO, "error reading labels file: %v", err)
	}

	return &Labels{names: labels}, nil
}

// Len returns the number of labels, a nil table has none
func (l *Labels) Len() int {

	if l == nil {
		return 0
	}

	return len(l.names)
}

// Name returns the label of class.  An out of range class is a programming
// error and panics
func (l *Labels) Name(class int) string {
	return l.names[class]
}

// Names returns a copy of all labels
func (l *Labels) Names() []string {

	if l == nil {
		return nil
	}

	out := make([]string, len(l.names))
	copy(out, l.names)

	return out
}
