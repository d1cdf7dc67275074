package darknet

import (
	"fmt"
	"io"
)

// Query the loaded network to get its input shape, layers and labels in
// text/human readable format
func (n *Network) Query(w io.Writer) error {

	c, h, wd := n.InputShape()

	if _, err := fmt.Fprintf(w, "Network cfg: %s\n", n.cfg); err != nil {
		return fmt.Errorf("Error writing network info: %w", err)
	}

	fmt.Fprintf(w, "Input shape: channels=%d, height=%d, width=%d\n", c, h, wd)
	fmt.Fprintf(w, "Layers: %d\n", n.NumLayers())

	for _, l := range n.Layers() {
		fmt.Fprintf(w, "  %s\n", l.String())
	}

	if out, ok := n.OutputLayer(); ok {
		fmt.Fprintf(w, "Output layer: %d, classes: %d\n", out.Index(), out.Classes())
	}

	if n.labels == nil {
		fmt.Fprintf(w, "Labels: none\n")
		return nil
	}

	fmt.Fprintf(w, "Labels: %d\n", n.labels.Len())

	for i, name := range n.labels.Names() {
		fmt.Fprintf(w, "  %d: %s\n", i, name)
	}

	return nil
}
