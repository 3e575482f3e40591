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

	log "github.com/golang/glog"
)

// MechanismOverrider is implemented by access definitions that accept a
// per-query differentially private mechanism in place of their configured
// default, e.g. the adaptive privacy filter.
type MechanismOverrider interface {
	ApplyMechanism(data any, mechanism DPAccessDefinition) (any, error)
}

// DataNode owns the private payloads of a single protocol participant. Every
// read of a payload is routed through the AccessDefinition configured for the
// property; there is no other read path.
//
// Not thread-safe.
type DataNode struct {
	privateData       map[string]any
	accessDefinitions map[string]AccessDefinition
}

// NewDataNode returns a DataNode holding no private data.
func NewDataNode() *DataNode {
	return &DataNode{
		privateData:       make(map[string]any),
		accessDefinitions: make(map[string]AccessDefinition),
	}
}

// SetPrivateData binds name to a raw private value. Rebinding an already
// bound name replaces the previous value.
func (n *DataNode) SetPrivateData(name string, data any) {
	if _, ok := n.privateData[name]; ok {
		log.Warningf("SetPrivateData: private property %q is already bound, overwriting", name)
	}
	n.privateData[name] = data
}

// ConfigureDataAccess replaces the AccessDefinition for name wholesale.
func (n *DataNode) ConfigureDataAccess(name string, definition AccessDefinition) {
	n.accessDefinitions[name] = definition
}

// ApplyDataTransformation mutates the private value bound to name in place.
// It is the only sanctioned write path besides SetPrivateData.
func (n *DataNode) ApplyDataTransformation(name string, transform func(any) any) error {
	data, ok := n.privateData[name]
	if !ok {
		return fmt.Errorf("ApplyDataTransformation: no private property named %q", name)
	}
	n.privateData[name] = transform(data)
	return nil
}

// Query releases the private value bound to name through its configured
// AccessDefinition. An optional mechanism may be supplied to access
// definitions that accept a per-query override; there must be at most one.
func (n *DataNode) Query(name string, mechanism ...DPAccessDefinition) (any, error) {
	data, ok := n.privateData[name]
	if !ok {
		return nil, fmt.Errorf("Query: no private property named %q", name)
	}
	definition, ok := n.accessDefinitions[name]
	if !ok {
		return nil, fmt.Errorf("Query: no access definition configured for private property %q", name)
	}
	switch len(mechanism) {
	case 0:
		return definition.Apply(data)
	case 1:
		overrider, ok := definition.(MechanismOverrider)
		if !ok {
			return nil, fmt.Errorf("Query: access definition for %q does not accept a per-query mechanism", name)
		}
		return overrider.ApplyMechanism(data, mechanism[0])
	default:
		return nil, fmt.Errorf("This should never happen. There should be 0 or 1 'mechanism' parameter, got %d", len(mechanism))
	}
}
