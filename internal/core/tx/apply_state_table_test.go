package tx

import (
	"bytes"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goProgramsd/internal/core/ledger/keylet"
	"github.com/LeJamon/goProgramsd/internal/core/tx/sle"
)

// mapView is a LedgerView kept in a plain map
type mapView struct {
	entries map[[32]byte][]byte
}

func newMapView() *mapView {
	return &mapView{entries: make(map[[32]byte][]byte)}
}

func (v *mapView) Read(k keylet.Keylet) ([]byte, error) {
	return v.entries[k.Key], nil
}

func (v *mapView) Exists(k keylet.Keylet) (bool, error) {
	_, ok := v.entries[k.Key]
	return ok, nil
}

func (v *mapView) Insert(k keylet.Keylet, data []byte) error {
	if _, ok := v.entries[k.Key]; ok {
		return errors.New("exists")
	}
	v.entries[k.Key] = data
	return nil
}

func (v *mapView) Update(k keylet.Keylet, data []byte) error {
	if _, ok := v.entries[k.Key]; !ok {
		return errors.New("missing")
	}
	v.entries[k.Key] = data
	return nil
}

func (v *mapView) Erase(k keylet.Keylet) error {
	if _, ok := v.entries[k.Key]; !ok {
		return errors.New("missing")
	}
	delete(v.entries, k.Key)
	return nil
}

func (v *mapView) ForEach(fn func(key [32]byte, data []byte) bool) error {
	keys := make([][32]byte, 0, len(v.entries))
	for k := range v.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i][:], keys[j][:]) < 0 })
	for _, k := range keys {
		if !fn(k, v.entries[k]) {
			break
		}
	}
	return nil
}

// committingView counts Commit calls
type committingView struct {
	*mapView
	commits int
}

func (v *committingView) Commit(changes []Change) error {
	v.commits++
	for _, c := range changes {
		if c.Action == ActionErase {
			delete(v.entries, c.Key)
		} else {
			v.entries[c.Key] = c.Data
		}
	}
	return nil
}

func slot(b byte) keylet.Keylet {
	var key [32]byte
	key[0] = b
	return keylet.Unchecked(key)
}

// account serializes a native account entry, so metadata can be built
func account(t *testing.T, b byte, lamports uint64) []byte {
	t.Helper()
	data, err := sle.Serialize(&sle.SystemAccount{Account: slot(b).Key, Lamports: lamports})
	require.NoError(t, err)
	return data
}

func TestApplyStateTableStagesUntilApply(t *testing.T) {
	one, uno := account(t, 1, 1), account(t, 1, 100)
	two, three := account(t, 2, 2), account(t, 3, 3)

	base := newMapView()
	base.entries[slot(1).Key] = one
	base.entries[slot(2).Key] = two

	table := NewApplyStateTable(base, nil)
	require.NoError(t, table.Insert(slot(3), three))
	require.NoError(t, table.Update(slot(1), uno))
	require.NoError(t, table.Erase(slot(2)))

	// staged reads see the new state, the base does not
	data, err := table.Read(slot(1))
	require.NoError(t, err)
	assert.Equal(t, uno, data)
	data, err = table.Read(slot(2))
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.True(t, table.IsErased(slot(2)))
	assert.Equal(t, one, base.entries[slot(1).Key])

	metadata, err := table.Apply()
	require.NoError(t, err)
	require.Len(t, metadata.AffectedNodes, 3)

	kinds := map[string]int{}
	for _, node := range metadata.AffectedNodes {
		kinds[node.NodeType]++
	}
	assert.Equal(t, map[string]int{"CreatedNode": 1, "ModifiedNode": 1, "DeletedNode": 1}, kinds)

	assert.Equal(t, uno, base.entries[slot(1).Key])
	assert.NotContains(t, base.entries, slot(2).Key)
	assert.Equal(t, three, base.entries[slot(3).Key])
}

func TestApplyStateTableChanges(t *testing.T) {
	base := newMapView()
	base.entries[slot(1).Key] = []byte("one")

	table := NewApplyStateTable(base, nil)
	_, err := table.Read(slot(1))
	require.NoError(t, err)

	// rewriting identical bytes is not a change
	require.NoError(t, table.Update(slot(1), []byte("one")))

	// insert then erase cancels out
	require.NoError(t, table.Insert(slot(5), []byte("five")))
	require.NoError(t, table.Erase(slot(5)))

	assert.Empty(t, table.Changes())

	require.NoError(t, table.Insert(slot(4), []byte("four")))
	require.NoError(t, table.Insert(slot(3), []byte("three")))
	changes := table.Changes()
	require.Len(t, changes, 2)
	assert.Equal(t, slot(3).Key, changes[0].Key)
	assert.Equal(t, slot(4).Key, changes[1].Key)
}

func TestApplyStateTableErrors(t *testing.T) {
	base := newMapView()
	base.entries[slot(1).Key] = []byte("one")

	table := NewApplyStateTable(base, nil)
	assert.Error(t, table.Insert(slot(1), []byte("x")))
	assert.Error(t, table.Update(slot(2), []byte("x")))
	assert.Error(t, table.Erase(slot(2)))

	require.NoError(t, table.Erase(slot(1)))
	assert.Error(t, table.Erase(slot(1)))
	assert.Error(t, table.Update(slot(1), []byte("x")))

	// re-inserting an erased entry is a modification
	require.NoError(t, table.Insert(slot(1), []byte("again")))
	changes := table.Changes()
	require.Len(t, changes, 1)
	assert.Equal(t, ActionModify, changes[0].Action)
}

func TestApplyStateTableAccessRestriction(t *testing.T) {
	base := newMapView()
	base.entries[slot(1).Key] = []byte("one")

	table := NewApplyStateTable(base, map[[32]byte]bool{
		slot(1).Key: false,
		slot(2).Key: true,
	})

	_, err := table.Read(slot(1))
	require.NoError(t, err)
	require.NoError(t, table.Insert(slot(2), []byte("two")))
	assert.Equal(t, TesSUCCESS, table.Violation())

	err = table.Update(slot(1), []byte("x"))
	assert.ErrorIs(t, err, ErrReadOnlyAccount)
	assert.Equal(t, TefREADONLY_ACCOUNT, table.Violation())

	_, err = table.Read(slot(9))
	assert.ErrorIs(t, err, ErrUndeclaredAccount)

	// the first violation sticks
	assert.Equal(t, TefREADONLY_ACCOUNT, table.Violation())
}

func TestApplyStateTableUsesCommitter(t *testing.T) {
	uno, two := account(t, 1, 100), account(t, 2, 2)

	base := &committingView{mapView: newMapView()}
	base.entries[slot(1).Key] = account(t, 1, 1)

	table := NewApplyStateTable(base, nil)
	require.NoError(t, table.Update(slot(1), uno))
	require.NoError(t, table.Insert(slot(2), two))

	_, err := table.Apply()
	require.NoError(t, err)
	assert.Equal(t, 1, base.commits)
	assert.Equal(t, uno, base.entries[slot(1).Key])
	assert.Equal(t, two, base.entries[slot(2).Key])
}
