package cipher

import (
	"fmt"
	"sort"
	"sync"
)

// Global codec and operation registries
var (
	codecRegistry      = make(map[Kind]Codec)
	operationsRegistry = make(map[string]Operation)
	registryMu         sync.RWMutex
)

func init() {
	for _, c := range []Codec{Caesar{}, Scytale{}, Vigenere{}} {
		if err := RegisterCodec(c); err != nil {
			panic(err)
		}
	}
}

// RegisterCodec adds a codec to the global registry and registers its named
// encode, decode and analyse operations.
func RegisterCodec(c Codec) error {
	if c == nil {
		return fmt.Errorf("cannot register nil codec")
	}
	kind := c.Kind()
	if kind == "" {
		return fmt.Errorf("codec kind cannot be empty")
	}

	registryMu.Lock()
	if _, exists := codecRegistry[kind]; exists {
		registryMu.Unlock()
		return fmt.Errorf("codec %s is already registered", kind)
	}
	codecRegistry[kind] = c
	registryMu.Unlock()

	for _, op := range codecOperations(c) {
		if err := RegisterOperation(op); err != nil {
			return err
		}
	}
	return nil
}

// Lookup retrieves a codec by kind.
func Lookup(kind Kind) (Codec, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	c, exists := codecRegistry[kind]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return c, nil
}

// Kinds returns the registered cipher kinds in name order.
func Kinds() []Kind {
	registryMu.RLock()
	defer registryMu.RUnlock()

	kinds := make([]Kind, 0, len(codecRegistry))
	for k := range codecRegistry {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// RegisterOperation adds an operation to the global registry
func RegisterOperation(op Operation) error {
	if op == nil {
		return fmt.Errorf("cannot register nil operation")
	}

	name := op.Name()
	if name == "" {
		return fmt.Errorf("operation name cannot be empty")
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := operationsRegistry[name]; exists {
		return fmt.Errorf("operation %s is already registered", name)
	}

	operationsRegistry[name] = op
	return nil
}

// GetOperation retrieves an operation from the registry by name
func GetOperation(name string) (Operation, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	op, exists := operationsRegistry[name]
	return op, exists
}

// ListOperations returns all registered operations
func ListOperations() []Operation {
	registryMu.RLock()
	defer registryMu.RUnlock()

	ops := make([]Operation, 0, len(operationsRegistry))
	for _, op := range operationsRegistry {
		ops = append(ops, op)
	}

	// Sort by name for consistent ordering
	sort.Slice(ops, func(i, j int) bool {
		return ops[i].Name() < ops[j].Name()
	})

	return ops
}

// ListOperationsByType returns operations filtered by type
func ListOperationsByType(opType OperationType) []Operation {
	registryMu.RLock()
	defer registryMu.RUnlock()

	ops := make([]Operation, 0)
	for _, op := range operationsRegistry {
		if op.Type() == opType {
			ops = append(ops, op)
		}
	}

	sort.Slice(ops, func(i, j int) bool {
		return ops[i].Name() < ops[j].Name()
	})

	return ops
}

// UnregisterOperation removes an operation from the registry (mainly for testing)
func UnregisterOperation(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()

	delete(operationsRegistry, name)
}
