//
// Copyright 2020 Sherpa.ai
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package private

import (
	"fmt"
	"sync"
)

// IdentifierRegistry tracks the dataset identifiers in use by FederatedData
// instances. Identifiers are unique for the lifetime of the registry. Passing
// the registry explicitly, rather than keeping it process-global, keeps tests
// independent of each other.
type IdentifierRegistry struct {
	mu   sync.Mutex
	used map[string]bool
}

// NewIdentifierRegistry returns an empty registry.
func NewIdentifierRegistry() *IdentifierRegistry {
	return &IdentifierRegistry{used: make(map[string]bool)}
}

func (r *IdentifierRegistry) claim(identifier string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.used[identifier] {
		return fmt.Errorf("identifier %q is already in use", identifier)
	}
	r.used[identifier] = true
	return nil
}

// FederatedData is an ordered collection of DataNodes sharing one logical
// dataset identifier. Broadcast operations visit the nodes in insertion order.
type FederatedData struct {
	identifier string
	nodes      []*DataNode
}

// NewFederatedData returns a FederatedData registered under identifier. It
// fails if the identifier is already claimed in the registry.
func NewFederatedData(registry *IdentifierRegistry, identifier string) (*FederatedData, error) {
	if registry == nil {
		return nil, fmt.Errorf("NewFederatedData: registry must not be nil")
	}
	if err := registry.claim(identifier); err != nil {
		return nil, fmt.Errorf("NewFederatedData: %v", err)
	}
	return &FederatedData{identifier: identifier}, nil
}

// Identifier returns the dataset identifier shared by all owned nodes.
func (f *FederatedData) Identifier() string {
	return f.identifier
}

// AddDataNode binds data as the node's private payload under the federated
// identifier and appends the node to the collection.
func (f *FederatedData) AddDataNode(node *DataNode, data any) {
	node.SetPrivateData(f.identifier, data)
	f.nodes = append(f.nodes, node)
}

// NumNodes returns the number of owned nodes.
func (f *FederatedData) NumNodes() int {
	return len(f.nodes)
}

// Node returns the i-th owned node.
func (f *FederatedData) Node(i int) *DataNode {
	return f.nodes[i]
}

// ConfigureDataAccess configures the same AccessDefinition for the federated
// property on every owned node.
func (f *FederatedData) ConfigureDataAccess(definition AccessDefinition) {
	for _, node := range f.nodes {
		node.ConfigureDataAccess(f.identifier, definition)
	}
}

// Query queries the federated property on every owned node in insertion order
// and returns the per-node results. The first failing node aborts the
// broadcast and its error is propagated.
func (f *FederatedData) Query(mechanism ...DPAccessDefinition) ([]any, error) {
	results := make([]any, 0, len(f.nodes))
	for i, node := range f.nodes {
		result, err := node.Query(f.identifier, mechanism...)
		if err != nil {
			return nil, fmt.Errorf("Query: node %d: %v", i, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// ApplyFederatedTransformation applies transform to the federated property of
// every owned node in insertion order.
func (f *FederatedData) ApplyFederatedTransformation(transform func(any) any) error {
	for i, node := range f.nodes {
		if err := node.ApplyDataTransformation(f.identifier, transform); err != nil {
			return fmt.Errorf("ApplyFederatedTransformation: node %d: %v", i, err)
		}
	}
	return nil
}

// FederateSlice splits array evenly across numNodes fresh DataNodes and
// returns them as a FederatedData registered under identifier.
func FederateSlice(registry *IdentifierRegistry, identifier string, array []float64, numNodes int) (*FederatedData, error) {
	if numNodes <= 0 {
		return nil, fmt.Errorf("FederateSlice: numNodes is %d, must be strictly positive", numNodes)
	}
	federated, err := NewFederatedData(registry, identifier)
	if err != nil {
		return nil, err
	}
	splitSize := float64(len(array)) / float64(numNodes)
	last := 0.0
	for last < float64(len(array)) {
		end := last + splitSize
		if int(end) > len(array) {
			end = float64(len(array))
		}
		federated.AddDataNode(NewDataNode(), array[int(last):int(end)])
		last = end
	}
	return federated, nil
}
