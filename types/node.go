// Copyright (c) 2025-2026, The RangeNet Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

package types

import (
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// NodeId identifies one physical ranging unit within a deployment. It is a
// single letter from a small closed alphabet, unique per deployment, and is
// used both as the radio address and as the telemetry tag of the unit.
type NodeId rune

const InvalidNodeId NodeId = 0

// Valid reports whether id is a member of the allowed identity alphabet.
func (id NodeId) Valid() bool {
	return id >= 'A' && id <= 'Z'
}

func (id NodeId) String() string {
	if !id.Valid() {
		return "?"
	}
	return string(rune(id))
}

// ParseNodeId parses a single-letter node identity.
func ParseNodeId(s string) (NodeId, error) {
	s = strings.TrimSpace(s)
	if len(s) != 1 || !NodeId(s[0]).Valid() {
		return InvalidNodeId, errors.Errorf("invalid node identity %q (must be a single letter A-Z)", s)
	}
	return NodeId(s[0]), nil
}

func (id NodeId) MarshalYAML() (interface{}, error) {
	return id.String(), nil
}

func (id *NodeId) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseNodeId(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Roster is the globally agreed, ordered list of all node identities of one
// deployment. The position of a node in the roster is its fixed rank, which
// in turn selects its TDMA slot. The roster is assigned out-of-band and is
// identical on every node.
type Roster []NodeId

// ParseRoster parses a roster spec such as "A,B,C" or "ABC".
func ParseRoster(s string) (Roster, error) {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	r := make(Roster, 0, len(s))
	for _, c := range s {
		r = append(r, NodeId(c))
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks the roster deployment invariants: non-empty, all identities
// valid, no duplicates.
func (r Roster) Validate() error {
	if len(r) == 0 {
		return errors.New("roster is empty")
	}
	seen := make(map[NodeId]struct{}, len(r))
	for _, id := range r {
		if !id.Valid() {
			return errors.Errorf("roster contains invalid node identity %q", id.String())
		}
		if _, ok := seen[id]; ok {
			return errors.Errorf("roster contains duplicate node identity %s", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// RankOf returns the fixed rank of id within the roster, or -1 when id is not
// a roster member.
func (r Roster) RankOf(id NodeId) int {
	for i, n := range r {
		if n == id {
			return i
		}
	}
	return -1
}

func (r Roster) Contains(id NodeId) bool {
	return r.RankOf(id) >= 0
}

// Peers returns the roster members other than self, in roster order.
func (r Roster) Peers(self NodeId) []NodeId {
	peers := make([]NodeId, 0, len(r)-1)
	for _, n := range r {
		if n != self {
			peers = append(peers, n)
		}
	}
	return peers
}

func (r Roster) String() string {
	var sb strings.Builder
	for i, n := range r {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(n.String())
	}
	return sb.String()
}
