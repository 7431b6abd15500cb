package dag

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Task is the unit of work a node executes.
type Task func(ctx context.Context) error

// State describes a node's position in its lifecycle.
type State int32

const (
	Pending State = iota
	Running
	Done
	Failed
)

// Graph is a collection of nodes and their dependencies, representing a DAG.
// All operations on the graph are concurrency-safe.
type Graph struct {
	mutex sync.RWMutex
	nodes map[string]*node
}

// node represents a single vertex in the graph. It is un-exported to
// enforce interaction with the graph via the public API (using string IDs),
// not by direct struct manipulation.
type node struct {
	id         string
	task       Task
	deps       map[string]*node
	dependents map[string]*node

	state    atomic.Int32
	err      error
	depCount atomic.Int32
	skipOnce sync.Once
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*node)}
}

// AddNode adds a new node with the given ID and task to the graph. If a
// node with the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string, task Task) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}

	g.nodes[id] = &node{
		id:         id,
		task:       task,
		deps:       make(map[string]*node),
		dependents: make(map[string]*node),
	}
}

// AddEdge creates a directed edge from the `fromID` node to the `toID` node,
// meaning `toID` depends on `fromID`. An error is returned if either node
// does not exist or if the edge would be a self-reference.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}
	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	if _, dup := toNode.deps[fromID]; !dup {
		toNode.depCount.Add(1)
	}
	toNode.deps[fromID] = fromNode
	fromNode.dependents[toID] = toNode

	return nil
}

// Len reports the number of nodes in the graph.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.nodes)
}

// NodeState returns the lifecycle state and error of a node.
func (g *Graph) NodeState(id string) (State, error, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	n, ok := g.nodes[id]
	if !ok {
		return Pending, nil, false
	}
	return State(n.state.Load()), n.err, true
}

// DetectCycles checks the graph for any cycles. It returns a non-nil error
// if a cycle is found, naming the first node involved in the detected cycle.
func (g *Graph) DetectCycles() error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	// Classic depth-first search with permanent and temporary marks.
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(n *node) error
	visit = func(n *node) error {
		if permanent[n.id] {
			return nil
		}
		if temporary[n.id] {
			return fmt.Errorf("cycle detected involving node '%s'", n.id)
		}

		temporary[n.id] = true
		for _, dependent := range n.dependents {
			if err := visit(dependent); err != nil {
				return err
			}
		}
		delete(temporary, n.id)
		permanent[n.id] = true
		return nil
	}

	for _, n := range g.nodes {
		if !permanent[n.id] {
			if err := visit(n); err != nil {
				return err
			}
		}
	}
	return nil
}
