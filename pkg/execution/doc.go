// Package execution implements the query execution engine: a set of
// operators following the iterator (volcano) model. Every operator
// implements DbIterator (Open / HasNext / Next / Rewind / Close) and is
// composed into a tree by hand; there is no planner or optimizer here,
// only the primitives a caller wires together directly.
//
// # Sub-packages
//
//   - [storemy/pkg/execution/join]        – nested-loop join with a
//     configurable join predicate.
//   - [storemy/pkg/execution/aggregation] – GROUP BY-style aggregation
//     (COUNT, SUM, AVG, MIN, MAX) over the iterator model.
//
// # Execution flow
//
// SeqScan reads rows from a table through the buffer pool, page by page.
// Filter and Project sit on top of any DbIterator and transform rows one
// at a time. Insert and Delete are themselves one-shot iterators that
// perform their whole mutation on the first HasNext/Next and yield a
// single tuple carrying the affected row count. Nothing in this package materializes
// an intermediate result set; pulling from the root operator pulls
// exactly as many rows as needed from every operator beneath it.
package execution
