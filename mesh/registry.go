package mesh

import "sync"

// Stable identifier for a registered mesh. The zero value means "no
// mesh".
type ID uint32

const None ID = 0

// Process-scoped mesh registry. Populated during scene loading and
// read-only once a scene is live.
var registry = struct {
	sync.Mutex
	meshes map[ID]*Mesh
	names  map[string]ID
	next   ID
}{
	meshes: make(map[ID]*Mesh),
	names:  make(map[string]ID),
	next:   1,
}

// Register a mesh under a name and return its id. Registering a name
// twice replaces the previous binding.
func Register(name string, m *Mesh) ID {
	registry.Lock()
	defer registry.Unlock()

	id := registry.next
	registry.next++
	registry.meshes[id] = m
	registry.names[name] = id
	return id
}

// Look up a mesh by id. Returns nil for unknown ids.
func ByID(id ID) *Mesh {
	registry.Lock()
	defer registry.Unlock()
	return registry.meshes[id]
}

// Look up a mesh id by name. Returns None for unknown names.
func IDByName(name string) ID {
	registry.Lock()
	defer registry.Unlock()
	return registry.names[name]
}

// Look up a mesh by name. Returns nil for unknown names.
func ByName(name string) *Mesh {
	registry.Lock()
	defer registry.Unlock()
	return registry.meshes[registry.names[name]]
}

// Drop every registered mesh. Intended for tests and scene reloads.
func ClearRegistry() {
	registry.Lock()
	defer registry.Unlock()
	registry.meshes = make(map[ID]*Mesh)
	registry.names = make(map[string]ID)
	registry.next = 1
}
