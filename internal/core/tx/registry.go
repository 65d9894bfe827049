package tx

import (
	"encoding/json"
	"errors"
	"sort"
	"sync"
)

// ErrUnknownTransactionType is returned when an instruction type is unknown
var ErrUnknownTransactionType = errors.New("unknown transaction type")

// Factory builds an empty instruction of one type.
type Factory func() Transaction

var (
	registryMu sync.RWMutex
	registry   = make(map[Type]Factory)
)

// Register makes an instruction type constructible by NewFromType and
// FromJSON. Instruction packages call it from init.
func Register(txType Type, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, dup := registry[txType]; dup {
		panic("tx: Register called twice for " + txType.String())
	}
	registry[txType] = factory
}

// NewFromType creates a new instruction of the given type
func NewFromType(txType Type) (Transaction, error) {
	registryMu.RLock()
	factory, ok := registry[txType]
	registryMu.RUnlock()

	if !ok {
		return nil, ErrUnknownTransactionType
	}
	return factory(), nil
}

// FromJSON creates a Transaction from a JSON object
func FromJSON(data []byte) (Transaction, error) {
	// First, unmarshal to get the TransactionType
	var raw struct {
		TransactionType string `json:"TransactionType"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	txType, ok := TypeFromName(raw.TransactionType)
	if !ok {
		return nil, ErrUnknownTransactionType
	}

	tx, err := NewFromType(txType)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

// ToJSON converts a Transaction to JSON
func ToJSON(tx Transaction) ([]byte, error) {
	flat, err := tx.Flatten()
	if err != nil {
		return nil, err
	}
	return json.Marshal(flat)
}

// SupportedTypes returns all registered instruction types in code order
func SupportedTypes() []Type {
	registryMu.RLock()
	defer registryMu.RUnlock()

	types := make([]Type, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
