// Copyright 2016 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package params

import "fmt"

// Hardfork names in activation order. The OVM trace executor is pinned to a
// single fork per ChainConfig instance rather than a block-number schedule:
// the trace is replayed under the rules it was produced with.
const (
	Frontier         = "frontier"
	Homestead        = "homestead"
	TangerineWhistle = "tangerineWhistle"
	SpuriousDragon   = "spuriousDragon"
	Byzantium        = "byzantium"
	Constantinople   = "constantinople"
	Petersburg       = "petersburg"
	Istanbul         = "istanbul"
)

// hardforkOrder maps a fork name to its position in the activation ladder.
var hardforkOrder = map[string]int{
	Frontier:         0,
	Homestead:        1,
	TangerineWhistle: 2,
	SpuriousDragon:   3,
	Byzantium:        4,
	Constantinople:   5,
	Petersburg:       6,
	Istanbul:         7,
}

// ChainConfig carries the fork choice and the VM limits for one executor
// instance.
type ChainConfig struct {
	// Hardfork selects the rule set. Empty means Istanbul.
	Hardfork string

	// ChainID is reported by the CHAINID opcode.
	ChainID uint64

	// AllowUnlimitedContractSize disables the EIP-170 deployed-code limit.
	AllowUnlimitedContractSize bool
}

// MainnetChainConfig is the default configuration: Istanbul rules.
var MainnetChainConfig = &ChainConfig{Hardfork: Istanbul, ChainID: 1}

// TestChainConfig runs Istanbul rules like MainnetChainConfig, with chain id
// 1337 and the code-size limit lifted, matching what the test harnesses expect.
var TestChainConfig = &ChainConfig{Hardfork: Istanbul, ChainID: 1337, AllowUnlimitedContractSize: true}

func (c *ChainConfig) fork() string {
	if c == nil || c.Hardfork == "" {
		return Istanbul
	}
	return c.Hardfork
}

// GteHardfork reports whether the configured fork is at or past the named one.
// Unknown names panic: a typo here is a wiring bug, not a runtime condition.
func (c *ChainConfig) GteHardfork(name string) bool {
	want, ok := hardforkOrder[name]
	if !ok {
		panic(fmt.Sprintf("params: unknown hardfork %q", name))
	}
	have, ok := hardforkOrder[c.fork()]
	if !ok {
		panic(fmt.Sprintf("params: unknown configured hardfork %q", c.fork()))
	}
	return have >= want
}

// Rules is a one-time snapshot of the fork ladder, cheap to pass around.
type Rules struct {
	ChainID                    uint64
	IsHomestead                bool
	IsEIP150                   bool // Tangerine Whistle
	IsEIP158                   bool // Spurious Dragon
	IsByzantium                bool
	IsConstantinople           bool
	IsPetersburg               bool
	IsIstanbul                 bool
	AllowUnlimitedContractSize bool
}

// Rules returns the rule snapshot for the configured fork.
func (c *ChainConfig) Rules() Rules {
	return Rules{
		ChainID:                    c.chainID(),
		IsHomestead:                c.GteHardfork(Homestead),
		IsEIP150:                   c.GteHardfork(TangerineWhistle),
		IsEIP158:                   c.GteHardfork(SpuriousDragon),
		IsByzantium:                c.GteHardfork(Byzantium),
		IsConstantinople:           c.GteHardfork(Constantinople),
		IsPetersburg:               c.GteHardfork(Petersburg),
		IsIstanbul:                 c.GteHardfork(Istanbul),
		AllowUnlimitedContractSize: c != nil && c.AllowUnlimitedContractSize,
	}
}

func (c *ChainConfig) chainID() uint64 {
	if c == nil {
		return 0
	}
	return c.ChainID
}

// GasTable holds the fork-dependent prices consulted by the dynamic gas rules.
type GasTable struct {
	ExtcodeSize uint64
	ExtcodeCopy uint64
	ExtcodeHash uint64
	Balance     uint64
	SLoad       uint64
	Calls       uint64
	Suicide     uint64
	ExpByte     uint64
}

// GasTableFor returns the gas table matching the rule snapshot.
func GasTableFor(r Rules) GasTable {
	switch {
	case r.IsIstanbul:
		return GasTable{
			ExtcodeSize: 700,
			ExtcodeCopy: 700,
			ExtcodeHash: 700,
			Balance:     700,
			SLoad:       800,
			Calls:       700,
			Suicide:     5000,
			ExpByte:     50,
		}
	case r.IsConstantinople:
		return GasTable{
			ExtcodeSize: 700,
			ExtcodeCopy: 700,
			ExtcodeHash: 400,
			Balance:     400,
			SLoad:       200,
			Calls:       700,
			Suicide:     5000,
			ExpByte:     50,
		}
	case r.IsEIP158:
		return GasTable{
			ExtcodeSize: 700,
			ExtcodeCopy: 700,
			Balance:     400,
			SLoad:       200,
			Calls:       700,
			Suicide:     5000,
			ExpByte:     50,
		}
	case r.IsEIP150:
		return GasTable{
			ExtcodeSize: 700,
			ExtcodeCopy: 700,
			Balance:     400,
			SLoad:       200,
			Calls:       700,
			Suicide:     5000,
			ExpByte:     10,
		}
	default:
		return GasTable{
			ExtcodeSize: 20,
			ExtcodeCopy: 20,
			Balance:     20,
			SLoad:       50,
			Calls:       40,
			Suicide:     0,
			ExpByte:     10,
		}
	}
}
