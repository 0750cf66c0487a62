// Package registry implements the host registration API spec.md §4.10
// describes: how an embedding application registers protocol/file
// analyzers and enum types produced by compiled Spicy units, so its event
// dispatch loop can look them up by name or well-known port/MIME type.
package registry

import (
	"fmt"
	"sync"
)

// ProtocolAnalyzer describes one registered protocol parser.
type ProtocolAnalyzer struct {
	Name        string
	Ports       []uint16
	UnitFactory func() any // returns a fresh parser-unit instance; any to avoid an ast/fiber import here
}

// FileAnalyzer describes one registered file-format parser.
type FileAnalyzer struct {
	Name        string
	MIMETypes   []string
	UnitFactory func() any
}

// EnumType records a Spicy-defined enum's label table, for a host
// application that wants to render enum values symbolically.
type EnumType struct {
	Name   string
	Labels map[int64]string
}

// Registry holds every analyzer/enum a compiled module has registered.
// Registration is idempotent by Name, matching spec.md §4.4's idempotent
// plugin-registration convention applied here to the host API surface.
type Registry struct {
	mu         sync.RWMutex
	protocols  map[string]*ProtocolAnalyzer
	files      map[string]*FileAnalyzer
	enums      map[string]*EnumType
	byPort     map[uint16][]*ProtocolAnalyzer
	byMIME     map[string][]*FileAnalyzer
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		protocols: map[string]*ProtocolAnalyzer{},
		files:     map[string]*FileAnalyzer{},
		enums:     map[string]*EnumType{},
		byPort:    map[uint16][]*ProtocolAnalyzer{},
		byMIME:    map[string][]*FileAnalyzer{},
	}
}

// RegisterProtocolAnalyzer adds a, indexing it by every port it claims.
// Re-registering the same Name is a no-op.
func (r *Registry) RegisterProtocolAnalyzer(a *ProtocolAnalyzer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.protocols[a.Name]; exists {
		return
	}
	r.protocols[a.Name] = a
	for _, port := range a.Ports {
		r.byPort[port] = append(r.byPort[port], a)
	}
}

// RegisterFileAnalyzer adds a, indexing it by every MIME type it claims.
func (r *Registry) RegisterFileAnalyzer(a *FileAnalyzer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.files[a.Name]; exists {
		return
	}
	r.files[a.Name] = a
	for _, mt := range a.MIMETypes {
		r.byMIME[mt] = append(r.byMIME[mt], a)
	}
}

// RegisterEnumType adds e, by Name.
func (r *Registry) RegisterEnumType(e *EnumType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.enums[e.Name]; exists {
		return
	}
	r.enums[e.Name] = e
}

// ProtocolAnalyzerByName looks up a registered protocol analyzer.
func (r *Registry) ProtocolAnalyzerByName(name string) (*ProtocolAnalyzer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.protocols[name]
	return a, ok
}

// ProtocolAnalyzersForPort returns every analyzer registered for port.
func (r *Registry) ProtocolAnalyzersForPort(port uint16) []*ProtocolAnalyzer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*ProtocolAnalyzer, len(r.byPort[port]))
	copy(out, r.byPort[port])
	return out
}

// FileAnalyzersForMIME returns every analyzer registered for mimeType.
func (r *Registry) FileAnalyzersForMIME(mimeType string) []*FileAnalyzer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*FileAnalyzer, len(r.byMIME[mimeType]))
	copy(out, r.byMIME[mimeType])
	return out
}

// EnumLabel renders value's symbolic label for the named enum type, or a
// numeric fallback if the type or value is unknown.
func (r *Registry) EnumLabel(typeName string, value int64) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.enums[typeName]
	if !ok {
		return fmt.Sprintf("%d", value)
	}
	if label, ok := e.Labels[value]; ok {
		return label
	}
	return fmt.Sprintf("%s(%d)", typeName, value)
}
