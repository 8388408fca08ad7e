// Package step interprets ordered lists of animation steps against a scene.
//
// A [Step] is an action tag, a status message and an action-specific payload.
// The [Interpreter] consumes a list strictly in order. For every step it
// clears transient markers, publishes the message, applies the action through
// the scene's identity maps and waits on its [Pacer]. References to ids that
// are not in the scene are ignored.
//
// # Suspension points
//
// The interpreter only blocks inside Pacer.Wait, at three named points:
//
//	PointStep  - after every step that does not end the pass
//	PointSwap  - between marking and exchanging the two cells of a swap
//	PointFound - after marking a found element, before the pass ends
//
// A cancelled context ends the pass at the next suspension point.
package step
