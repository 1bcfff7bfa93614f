// Package provisioning executes a graph of provisioning steps.
//
// A Graph holds Nodes, each of which names the nodes it consumes. Execute
// runs the graph in topological order, starting every node whose producers
// have completed, up to a parallelism limit. Producers hand their results to
// consumers as Handles, plain value records that carry an opaque external ID
// and the node's outputs.
//
// Execution is fail-fast: the first failing node cancels the run, nodes that
// are still running finish, and nodes that never started are reported as
// skipped.
package provisioning
