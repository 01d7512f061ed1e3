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

// Package session runs the ranging loop of one node: initiate in the node's
// own TDMA slot, respond in everyone else's, publish results to the hub.
package session

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/uwbprox/rangenet/twr"
	"github.com/uwbprox/rangenet/types"
)

// Duration unmarshals from YAML strings like "200ms" or from raw
// nanosecond integers.
type Duration time.Duration

func (d Duration) D() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return errors.Wrapf(err, "invalid duration %q", s)
		}
		*d = Duration(v)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return errors.Errorf("invalid duration %q", value.Value)
	}
	*d = Duration(n)
	return nil
}

// Config collects everything a node needs to join a ranging roster. Zero
// values are filled in from DefaultConfig by Validate, so a YAML file only
// needs to name what differs.
type Config struct {
	Node   types.NodeId `yaml:"node"`
	Roster types.Roster `yaml:"roster"`

	SlotDuration   Duration `yaml:"slot-duration"`
	RangingTimeout Duration `yaml:"ranging-timeout"`
	ListenTimeout  Duration `yaml:"listen-timeout"`
	Turnaround     Duration `yaml:"turnaround"`

	MaxRetries       int     `yaml:"max-retries"`
	QualityThreshold float64 `yaml:"quality-threshold"`

	CalibrationOffsetM float64 `yaml:"calibration-offset-m"`

	HubAddr           string   `yaml:"hub-addr"`
	HeartbeatInterval Duration `yaml:"heartbeat-interval"`
	StatsInterval     Duration `yaml:"stats-interval"`

	Synthetic SyntheticConfig `yaml:"synthetic"`
}

// SyntheticConfig parameterizes the fallback distance generator used when no
// hardware measurement is available.
type SyntheticConfig struct {
	Enabled    bool     `yaml:"enabled"`
	BaseM      float64  `yaml:"base-m"`
	AmplitudeM float64  `yaml:"amplitude-m"`
	Period     Duration `yaml:"period"`
	Quality    float64  `yaml:"quality"`
}

func DefaultConfig() Config {
	return Config{
		SlotDuration:      Duration(200 * time.Millisecond),
		RangingTimeout:    Duration(100 * time.Millisecond),
		ListenTimeout:     Duration(50 * time.Millisecond),
		Turnaround:        Duration(500 * time.Microsecond),
		MaxRetries:        3,
		QualityThreshold:  0.5,
		HeartbeatInterval: Duration(2 * time.Second),
		StatsInterval:     Duration(10 * time.Second),
		Synthetic: SyntheticConfig{
			BaseM:      2.0,
			AmplitudeM: 1.0,
			Period:     Duration(10 * time.Second),
			Quality:    0.95,
		},
	}
}

// LoadConfig reads a YAML config file on top of the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, cfg.Validate()
}

// Validate fills unset durations from the defaults and rejects a config that
// cannot drive a session.
func (c *Config) Validate() error {
	def := DefaultConfig()
	if c.SlotDuration <= 0 {
		c.SlotDuration = def.SlotDuration
	}
	if c.RangingTimeout <= 0 {
		c.RangingTimeout = def.RangingTimeout
	}
	if c.ListenTimeout <= 0 {
		c.ListenTimeout = def.ListenTimeout
	}
	if c.Turnaround <= 0 {
		c.Turnaround = def.Turnaround
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = def.MaxRetries
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = def.HeartbeatInterval
	}
	if c.StatsInterval <= 0 {
		c.StatsInterval = def.StatsInterval
	}
	if c.Synthetic.Period <= 0 {
		c.Synthetic.Period = def.Synthetic.Period
	}
	if c.Synthetic.Quality <= 0 {
		c.Synthetic.Quality = def.Synthetic.Quality
	}

	if err := c.Roster.Validate(); err != nil {
		return errors.Wrap(err, "roster")
	}
	if !c.Roster.Contains(c.Node) {
		return errors.Errorf("node %s is not in roster %s", c.Node, c.Roster)
	}
	if len(c.Roster) < 2 {
		return errors.Errorf("roster %s has no peers to range with", c.Roster)
	}
	if c.RangingTimeout >= c.SlotDuration {
		return errors.Errorf("ranging timeout %v does not fit in slot %v",
			c.RangingTimeout, c.SlotDuration)
	}
	return nil
}

// TwrConfig derives the protocol endpoint configuration.
func (c *Config) TwrConfig() twr.Config {
	tc := twr.DefaultConfig()
	tc.RangingTimeout = c.RangingTimeout.D()
	tc.Turnaround = c.Turnaround.D()
	tc.Estimator.CalibrationOffsetM = c.CalibrationOffsetM
	return tc
}
