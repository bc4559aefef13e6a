package state

import (
	"fmt"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
)

const codeCacheSize = 16 * 1024 * 1024

// layer is one checkpoint's worth of state changes. Reads walk from the top
// layer down; a nil account or storage map entry never appears, deletions are
// represented by an explicit cleared flag on the storage overlay.
type layer struct {
	parent   *layer
	accounts map[common.Address]*Account
	storage  map[common.Address]map[common.Hash]common.Hash
	code     map[common.Hash][]byte
	// cleared marks addresses whose storage was wiped in this layer; lookups
	// for those addresses must not fall through to the parent.
	cleared map[common.Address]bool
}

func newLayer(parent *layer) *layer {
	return &layer{
		parent:   parent,
		accounts: make(map[common.Address]*Account),
		storage:  make(map[common.Address]map[common.Hash]common.Hash),
		code:     make(map[common.Hash][]byte),
		cleared:  make(map[common.Address]bool),
	}
}

// MemDB is an in-memory checkpointable state view. Each Checkpoint pushes an
// overlay diff layer; Commit folds the top layer into its parent and Revert
// drops it. Code is stored by keccak hash with a fastcache front so repeated
// loads of hot contracts avoid the map walk.
type MemDB struct {
	bottom    *layer
	top       *layer
	depth     int
	codeCache *fastcache.Cache
}

// NewMemDB returns an empty state view with no open checkpoints.
func NewMemDB() *MemDB {
	base := newLayer(nil)
	return &MemDB{
		bottom:    base,
		top:       base,
		codeCache: fastcache.New(codeCacheSize),
	}
}

// CheckpointDepth returns the number of open checkpoints.
func (m *MemDB) CheckpointDepth() int { return m.depth }

// GetAccount returns the account at addr, or a fresh empty account if the
// address has never been written.
func (m *MemDB) GetAccount(addr common.Address) (*Account, error) {
	for l := m.top; l != nil; l = l.parent {
		if acc, ok := l.accounts[addr]; ok {
			return acc.Copy(), nil
		}
	}
	return NewAccount(), nil
}

// PutAccount writes the account into the current layer.
func (m *MemDB) PutAccount(addr common.Address, acc *Account) error {
	m.top.accounts[addr] = acc.Copy()
	return nil
}

// AccountExists reports whether the address has ever been written.
func (m *MemDB) AccountExists(addr common.Address) (bool, error) {
	for l := m.top; l != nil; l = l.parent {
		if _, ok := l.accounts[addr]; ok {
			return true, nil
		}
	}
	return false, nil
}

// GetContractCode returns the deployed code of addr, nil if none.
func (m *MemDB) GetContractCode(addr common.Address) ([]byte, error) {
	acc, err := m.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	if !acc.IsContract() {
		return nil, nil
	}
	return m.codeByHash(acc.CodeHash), nil
}

func (m *MemDB) codeByHash(hash common.Hash) []byte {
	if code := m.codeCache.Get(nil, hash[:]); len(code) > 0 {
		return code
	}
	for l := m.top; l != nil; l = l.parent {
		if code, ok := l.code[hash]; ok {
			m.codeCache.Set(hash[:], code)
			return append([]byte(nil), code...)
		}
	}
	return nil
}

// PutContractCode stores code under its keccak hash and points the account's
// code hash at it.
func (m *MemDB) PutContractCode(addr common.Address, code []byte) error {
	acc, err := m.GetAccount(addr)
	if err != nil {
		return err
	}
	hash := crypto.Keccak256Hash(code)
	m.top.code[hash] = append([]byte(nil), code...)
	acc.CodeHash = hash
	return m.PutAccount(addr, acc)
}

// GetContractStorage returns the 32-byte value at key, the zero hash if unset.
func (m *MemDB) GetContractStorage(addr common.Address, key common.Hash) (common.Hash, error) {
	for l := m.top; l != nil; l = l.parent {
		if slots, ok := l.storage[addr]; ok {
			if val, ok := slots[key]; ok {
				return val, nil
			}
		}
		if l.cleared[addr] {
			return common.Hash{}, nil
		}
	}
	return common.Hash{}, nil
}

// PutContractStorage writes the 32-byte value at key into the current layer.
func (m *MemDB) PutContractStorage(addr common.Address, key common.Hash, value common.Hash) error {
	slots, ok := m.top.storage[addr]
	if !ok {
		slots = make(map[common.Hash]common.Hash)
		m.top.storage[addr] = slots
	}
	slots[key] = value
	return nil
}

// ClearContractStorage wipes every storage slot of addr.
func (m *MemDB) ClearContractStorage(addr common.Address) error {
	m.top.storage[addr] = make(map[common.Hash]common.Hash)
	m.top.cleared[addr] = true
	return nil
}

// Checkpoint opens a new overlay layer. Every Checkpoint must be matched by a
// Commit or a Revert.
func (m *MemDB) Checkpoint() {
	m.top = newLayer(m.top)
	m.depth++
}

// Commit folds the top layer into its parent.
func (m *MemDB) Commit() error {
	if m.depth == 0 {
		return fmt.Errorf("state: commit with no open checkpoint")
	}
	child, parent := m.top, m.top.parent
	for addr, acc := range child.accounts {
		parent.accounts[addr] = acc
	}
	for addr, slots := range child.storage {
		if child.cleared[addr] {
			parent.storage[addr] = make(map[common.Hash]common.Hash)
			parent.cleared[addr] = true
		}
		dst, ok := parent.storage[addr]
		if !ok {
			dst = make(map[common.Hash]common.Hash)
			parent.storage[addr] = dst
		}
		for key, val := range slots {
			dst[key] = val
		}
	}
	for hash, code := range child.code {
		parent.code[hash] = code
	}
	m.top = parent
	m.depth--
	return nil
}

// Revert drops the top layer.
func (m *MemDB) Revert() error {
	if m.depth == 0 {
		return fmt.Errorf("state: revert with no open checkpoint")
	}
	log.Trace("State checkpoint reverted", "depth", m.depth)
	m.top = m.top.parent
	m.depth--
	return nil
}
