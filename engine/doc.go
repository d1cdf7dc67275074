/*
Package engine is the boundary between go-darknet and the darknet C library.

Two implementations are provided:

  - engine/native binds libdarknet through cgo and is what production code
    should use.
  - engine/memory is an in-process engine that tracks every allocation it
    hands out.  It runs the full go-darknet pipeline without libdarknet and
    is used to verify that handles release each allocation exactly once.
*/
package engine
