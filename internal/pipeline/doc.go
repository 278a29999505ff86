// Package pipeline runs a Producer, an ordered list of Transforms, and a Sink as one
// goroutine per stage connected by bounded queues.
//
// Each queue is sized by the stage that reads from it (see Buffered), so a full queue
// blocks the writer and the records held in memory never exceed the sum of the input
// capacities. End of input travels downstream by closing queues; there is no sentinel
// record. A stage that stops reading, including one that panics, abandons its input queue
// and upstream sends to it are dropped without error.
package pipeline
