// Package stream implements the resumable weight-upload protocol.
//
// A layer instance's weights are split into slots of analytically known
// capacity (a Dense layer has a kernel slot and a bias slot). The target
// fills them through a Cursor, one bounded chunk per call. A chunk may end
// in the middle of a slot or span a slot boundary; the cursor carries the
// remainder into the next slot. The final slot contents do not depend on
// how the scalar sequence was partitioned into chunks.
//
// On the producing side, a Streamer holds the queued scalars of every layer
// instance and drains them in kind-then-instance order as chunks of at most
// maxLen scalars.
package stream
