// Package cache models the cache behavior of a recorded Y86-64 run
// using Akita cache components. The simulator itself is purely
// functional; this package replays the memory accesses a run recorded
// through a modeled cache and reports hit/miss behavior after the
// fact.
package cache

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// AccessResult contains the result of a cache access.
type AccessResult struct {
	// Hit indicates whether the access was a cache hit.
	Hit bool
	// Data is the data read (for load operations).
	Data uint64
	// Evicted is true if a valid block was evicted.
	Evicted bool
	// EvictedAddr is the address of the evicted block (if Evicted is
	// true).
	EvictedAddr uint64
	// Writeback is true if the evicted block was dirty and written
	// back.
	Writeback bool
}

// Statistics holds cache behavior counters.
type Statistics struct {
	Reads      uint64
	Writes     uint64
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Writebacks uint64
}

// HitRate returns the fraction of accesses that hit, or 0 for an
// untouched cache.
func (s Statistics) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// BackingStore is the next level in the memory hierarchy.
type BackingStore interface {
	// Read fetches data from the backing store.
	Read(addr uint64, size int) []byte
	// Write stores data to the backing store.
	Write(addr uint64, data []byte)
}

// Cache is a set-associative cache with LRU replacement,
// write-allocate and write-back policies. Tag and replacement state
// live in an Akita cache directory; block data lives alongside it.
type Cache struct {
	config Config

	// Akita cache directory for tag/state management
	directory *akitacache.DirectoryImpl

	// Data storage, indexed by setID*associativity + wayID.
	dataStore [][]byte

	stats Statistics

	backing BackingStore
}

// New creates a cache with the given configuration.
func New(config Config, backing BackingStore) *Cache {
	numSets := config.NumSets()
	totalBlocks := numSets * config.Associativity

	dataStore := make([][]byte, totalBlocks)
	for i := range dataStore {
		dataStore[i] = make([]byte, config.BlockSize)
	}

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
		dataStore: dataStore,
		backing:   backing,
	}
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns the behavior counters.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// ResetStats clears the behavior counters.
func (c *Cache) ResetStats() {
	c.stats = Statistics{}
}

// blockIndex computes the index into dataStore for a block.
func (c *Cache) blockIndex(block *akitacache.Block) int {
	return block.SetID*c.config.Associativity + block.WayID
}

// blockAlign rounds addr down to its block base.
func (c *Cache) blockAlign(addr uint64) uint64 {
	return (addr / uint64(c.config.BlockSize)) * uint64(c.config.BlockSize)
}

// Read performs a cache read of size bytes at addr.
func (c *Cache) Read(addr uint64, size int) AccessResult {
	c.stats.Reads++

	blockAddr := c.blockAlign(addr)
	block := c.directory.Lookup(0, blockAddr)

	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)

		offset := addr % uint64(c.config.BlockSize)
		data := extractData(c.dataStore[c.blockIndex(block)], offset, size)
		return AccessResult{Hit: true, Data: data}
	}

	c.stats.Misses++
	return c.handleMiss(addr, size, false, 0)
}

// Write performs a cache write of size bytes at addr. On a miss the
// block is fetched first (write-allocate), then written.
func (c *Cache) Write(addr uint64, size int, data uint64) AccessResult {
	c.stats.Writes++

	blockAddr := c.blockAlign(addr)
	block := c.directory.Lookup(0, blockAddr)

	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)

		offset := addr % uint64(c.config.BlockSize)
		storeData(c.dataStore[c.blockIndex(block)], offset, size, data)
		block.IsDirty = true
		return AccessResult{Hit: true}
	}

	c.stats.Misses++
	return c.handleMiss(addr, size, true, data)
}

// handleMiss fetches the missing block from the backing store,
// evicting and writing back a victim as needed.
func (c *Cache) handleMiss(addr uint64, size int, isWrite bool, writeData uint64) AccessResult {
	result := AccessResult{}
	blockAddr := c.blockAlign(addr)

	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		return result
	}
	victimData := c.dataStore[c.blockIndex(victim)]

	if victim.IsValid {
		c.stats.Evictions++
		result.Evicted = true
		result.EvictedAddr = victim.Tag // Tag holds the block base address.

		if victim.IsDirty && c.backing != nil {
			c.stats.Writebacks++
			result.Writeback = true
			c.backing.Write(victim.Tag, victimData)
		}
	}

	if c.backing != nil {
		copy(victimData, c.backing.Read(blockAddr, c.config.BlockSize))
	} else {
		for i := range victimData {
			victimData[i] = 0
		}
	}

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = false

	offset := addr % uint64(c.config.BlockSize)
	if isWrite {
		storeData(victimData, offset, size, writeData)
		victim.IsDirty = true
	} else {
		result.Data = extractData(victimData, offset, size)
	}

	c.directory.Visit(victim)
	return result
}

// Invalidate marks the block containing addr invalid without
// writeback.
func (c *Cache) Invalidate(addr uint64) {
	block := c.directory.Lookup(0, c.blockAlign(addr))
	if block != nil && block.IsValid {
		block.IsValid = false
		block.IsDirty = false
	}
}

// Flush writes back all dirty blocks and invalidates every block.
func (c *Cache) Flush() {
	for _, set := range c.directory.GetSets() {
		for _, block := range set.Blocks {
			if block.IsValid && block.IsDirty && c.backing != nil {
				c.backing.Write(block.Tag, c.dataStore[c.blockIndex(block)])
				c.stats.Writebacks++
			}
			block.IsValid = false
			block.IsDirty = false
		}
	}
}

// Reset invalidates all blocks without writeback and clears the
// counters.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}

// extractData extracts a little-endian value of the given size from a
// block.
func extractData(data []byte, offset uint64, size int) uint64 {
	if data == nil || int(offset)+size > len(data) {
		return 0
	}

	var result uint64
	for i := 0; i < size; i++ {
		result |= uint64(data[int(offset)+i]) << (i * 8)
	}
	return result
}

// storeData stores a little-endian value of the given size into a
// block.
func storeData(data []byte, offset uint64, size int, value uint64) {
	if data == nil || int(offset)+size > len(data) {
		return
	}

	for i := 0; i < size; i++ {
		data[int(offset)+i] = byte(value >> (i * 8))
	}
}
