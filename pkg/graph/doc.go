// Package graph renders requirement ASTs and closure results as node-link
// graphs.
//
// # Core Types
//
//   - [Graph]: nodes and edges, the wire format consumed by renderers
//   - [Node]: a course, an AND/OR operator, or a free-text requirement
//   - [Edge]: directed from requirement to the thing that requires it,
//     tagged with a depth used for visual tiering only
//
// # Building Graphs
//
// [FromAST] walks a shallow or expanded AST. Course and text leaves are
// deduplicated by id; every AND/OR occurrence gets a fresh node id from an
// [IDAllocator] scoped to that call, so independent builds never interfere
// and output is deterministic. Edge depth counts AND/OR nesting levels.
//
// [FromClosure] converts a closure result. Edge depth there is the
// shortest course-reachability distance of the edge target.
//
// # Serialization
//
//	{
//	  "nodes": [{"id": "CMPUT 201", "label": "CMPUT 201", "nodeType": "course", "isTarget": true}],
//	  "edges": [{"source": "or-1", "target": "CMPUT 201", "depth": 1}]
//	}
//
// [ToDOT] and [RenderSVG] produce Graphviz output for the node-link view.
package graph
