// Package audit implements the asynchronous audit pipeline: the canonical
// event model, the sink contracts, and the buffered dispatcher the engine
// emits through. Root-level aliases re-export the public pieces.
package audit
