/*
go-darknet provides Go language bindings for the darknet object detection
engine (AlexeyAB fork).  It wraps the resources darknet allocates, networks,
image tensors and detection arrays, in Go types with a single owner each so
they are released exactly once, and performs detection filtering and
Non-Maximum Suppression in Go.

The darknet C library is reached through the engine.Engine interface.  Use
engine/native to run models on libdarknet, or engine/memory to exercise
pipelines without it.

See example code and usage in the example subdirectory.
*/
package darknet
