package engines

import (
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
)

// Registry manages scanner output adapters and decides which one handles
// an artifact. It implements ports.AdapterRegistry.
type Registry struct {
	mu       sync.RWMutex
	adapters map[ports.AdapterID]ports.Adapter
	fallback ports.AdapterID
}

// NewRegistry creates a new adapter registry. Artifacts nothing else claims
// go to the generic adapter.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[ports.AdapterID]ports.Adapter),
		fallback: ports.AdapterGeneric,
	}
}

// Register adds an adapter to the registry, replacing any with the same ID.
func (r *Registry) Register(adapter ports.Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[adapter.ID()] = adapter
}

// Get returns an adapter by ID.
func (r *Registry) Get(id ports.AdapterID) (ports.Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[id]
	return adapter, ok
}

// All returns all registered adapters sorted by ID.
func (r *Registry) All() []ports.Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedLocked()
}

func (r *Registry) sortedLocked() []ports.Adapter {
	result := make([]ports.Adapter, 0, len(r.adapters))
	for _, adapter := range r.adapters {
		result = append(result, adapter)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID() < result[j].ID() })
	return result
}

// Resolve picks the adapter for an artifact.
//
// A file extension claimed by an adapter decides first. Otherwise the
// artifact's base name is matched against every adapter keyword as a whole
// token, bounded by the ends of the name or a non-alphanumeric byte, so
// "gate" selects pipeline-gate.json but not aggregate-results.json. The
// longest matching keyword wins, ties going to the lower adapter ID. When
// no keyword matches, adapters that can sniff content are asked in ID
// order. The generic adapter catches everything else.
func (r *Registry) Resolve(artifact ports.Artifact) ports.Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapters := r.sortedLocked()
	name := strings.ToLower(path.Base(strings.ReplaceAll(artifact.Name, "\\", "/")))

	for _, adapter := range adapters {
		claimer, ok := adapter.(ports.ExtensionClaimer)
		if !ok {
			continue
		}
		for _, ext := range claimer.Extensions() {
			if ext != "" && strings.HasSuffix(name, strings.ToLower(ext)) {
				return adapter
			}
		}
	}

	var best ports.Adapter
	bestLen := 0
	for _, adapter := range adapters {
		for _, kw := range adapter.Keywords() {
			kw = strings.ToLower(kw)
			if kw != "" && len(kw) > bestLen && containsToken(name, kw) {
				best = adapter
				bestLen = len(kw)
			}
		}
	}
	if best != nil {
		return best
	}

	if len(artifact.Data) > 0 {
		for _, adapter := range adapters {
			if detector, ok := adapter.(ports.ContentDetector); ok && detector.Detect(artifact.Data) {
				return adapter
			}
		}
	}

	return r.adapters[r.fallback]
}

// IDs returns all registered adapter IDs, sorted.
func (r *Registry) IDs() []ports.AdapterID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]ports.AdapterID, 0, len(r.adapters))
	for id := range r.adapters {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// containsToken reports whether kw occurs in name delimited on both sides.
func containsToken(name, kw string) bool {
	for from := 0; from+len(kw) <= len(name); {
		i := strings.Index(name[from:], kw)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(kw)
		if (start == 0 || !isAlnum(name[start-1])) && (end == len(name) || !isAlnum(name[end])) {
			return true
		}
		from = start + 1
	}
	return false
}

func isAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// Catalog returns the metadata of every adapter, sorted by ID.
func (r *Registry) Catalog() []ports.AdapterInfo {
	all := r.All()
	infos := make([]ports.AdapterInfo, 0, len(all))
	for _, adapter := range all {
		infos = append(infos, adapter.Info())
	}
	return infos
}

// Ensure Registry implements ports.AdapterRegistry
var _ ports.AdapterRegistry = (*Registry)(nil)
