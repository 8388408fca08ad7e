// Package scene implements the layout engine for step-driven algorithm
// animations.
//
// A [Scene] owns the identity maps that tie logical ids to visual handles:
//
//   - nodes: array index, graph node id or tree value to its [Element]
//   - links: "a-b" edge keys, aliased in both directions for undirected scenes
//   - distances: graph node id to its shortest-path distance label
//   - tree: tree value to its computed [TreeNode] position
//
// Table cells and the side buffer (queue/stack) are tracked alongside them.
// All drawing goes through a [Target], so a scene can be built and inspected
// without a live rendering surface.
//
// # Example
//
//	sc := scene.New(canvas, scene.DefaultLayout())
//	sc.RenderInitial(scene.KindArray, scene.Data{Array: []scene.ID{"5", "3", "8"}})
//	el, ok := sc.Node(scene.IndexID(0))
//
// # Thread Safety
//
// A Scene is NOT thread-safe. It is mutated by a single animation pass at a
// time.
package scene
