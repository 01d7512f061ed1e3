// Copyright (c) 2026, The RangeNet Authors.
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

package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/uwbprox/rangenet/types"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "node.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
node: B
roster: [A, B, C]
slot-duration: 250ms
quality-threshold: 0.7
hub-addr: "10.0.0.5:9000"
synthetic:
  enabled: true
  base-m: 3.5
`))
	assert.NoError(t, err)
	assert.Equal(t, types.NodeId('B'), cfg.Node)
	assert.Equal(t, types.Roster{'A', 'B', 'C'}, cfg.Roster)
	assert.Equal(t, 250*time.Millisecond, cfg.SlotDuration.D())
	assert.Equal(t, 0.7, cfg.QualityThreshold)
	assert.Equal(t, "10.0.0.5:9000", cfg.HubAddr)
	assert.True(t, cfg.Synthetic.Enabled)
	assert.Equal(t, 3.5, cfg.Synthetic.BaseM)
	// Unset values fall back to the defaults.
	assert.Equal(t, 100*time.Millisecond, cfg.RangingTimeout.D())
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 10*time.Second, cfg.Synthetic.Period.D())
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
node: A
roster: [A, B]
slot-duration: quick
`))
	assert.Error(t, err)
}

func TestValidateRejectsNodeOutsideRoster(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Node = 'Z'
	cfg.Roster = types.Roster{'A', 'B'}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsSingleNodeRoster(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Node = 'A'
	cfg.Roster = types.Roster{'A'}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsTimeoutLargerThanSlot(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Node = 'A'
	cfg.Roster = types.Roster{'A', 'B'}
	cfg.SlotDuration = Duration(50 * time.Millisecond)
	cfg.RangingTimeout = Duration(80 * time.Millisecond)
	assert.Error(t, cfg.Validate())
}

func TestValidateFillsDefaults(t *testing.T) {
	cfg := Config{Node: 'A', Roster: types.Roster{'A', 'B'}}
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 200*time.Millisecond, cfg.SlotDuration.D())
	assert.Equal(t, 2*time.Second, cfg.HeartbeatInterval.D())
}
