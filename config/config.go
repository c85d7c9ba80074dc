// Package config loads simulation scenarios from YAML and lets environment
// variables override them.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	yaml "go.yaml.in/yaml/v3"

	"github.com/sarchlab/advertise/broadcast"
)

// Defaults applied to fields a scenario leaves out.
const (
	DefaultTickFrequency = 1.0
	DefaultDuration      = 3600.0
	DefaultNPCPeriod     = 60.0
)

// ErrInvalidScenario wraps every validation problem.
var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario describes one simulation run.
type Scenario struct {
	Seed           int64          `yaml:"seed"`
	TickFrequency  float64        `yaml:"tickFrequency"`
	Duration       float64        `yaml:"duration"`
	MaxCheckPeriod float64        `yaml:"maxCheckPeriod"`
	Catalog        string         `yaml:"catalog"`
	WatchCatalog   bool           `yaml:"watchCatalog"`
	Recording      string         `yaml:"recording"`
	LogLevel       string         `yaml:"logLevel"`
	Monitor        MonitorConfig  `yaml:"monitor"`
	Emitters       []EmitterGroup `yaml:"emitters"`
	NPCs           []NPCGroup     `yaml:"npcs"`
	Outages        []Outage       `yaml:"outages"`
}

// MonitorConfig controls the web monitor.
type MonitorConfig struct {
	Enabled     bool `yaml:"enabled"`
	Port        int  `yaml:"port"`
	OpenBrowser bool `yaml:"openBrowser"`
}

// EmitterGroup creates Count emitters that share a configuration.
type EmitterGroup struct {
	Name        string `yaml:"name"`
	Count       int    `yaml:"count"`
	Voicelines  string `yaml:"voicelines"`
	MinimumWait *int   `yaml:"minimumWait"`
	MaximumWait *int   `yaml:"maximumWait"`
	Prewarm     *bool  `yaml:"prewarm"`
	SuppressLog bool   `yaml:"suppressLog"`
}

// NPCGroup creates Count characters that say a voiceline every Period
// seconds.
type NPCGroup struct {
	Name       string  `yaml:"name"`
	Count      int     `yaml:"count"`
	Voicelines string  `yaml:"voicelines"`
	Hidden     bool    `yaml:"hidden"`
	Period     float64 `yaml:"period"`
}

// Outage switches the power of every emitter of a group off between Start
// and End.
type Outage struct {
	Group string  `yaml:"group"`
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
}

// Owners names the members of the group. A group of one is named after the
// group itself.
func (g EmitterGroup) Owners() []string {
	return ownerNames(g.Name, g.Count)
}

// Owners names the members of the group.
func (g NPCGroup) Owners() []string {
	return ownerNames(g.Name, g.Count)
}

func ownerNames(name string, count int) []string {
	if count == 1 {
		return []string{name}
	}

	owners := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		owners = append(owners, fmt.Sprintf("%s%d", name, i))
	}

	return owners
}

// RecordBuilder returns a record builder configured for the group.
func (g EmitterGroup) RecordBuilder() broadcast.RecordBuilder {
	b := broadcast.MakeRecordBuilder().WithVoicelines(g.Voicelines)

	minimumWait := broadcast.DefaultMinimumWait
	if g.MinimumWait != nil {
		minimumWait = *g.MinimumWait
	}

	maximumWait := broadcast.DefaultMaximumWait
	if g.MaximumWait != nil {
		maximumWait = *g.MaximumWait
	}

	b = b.WithWaitRange(minimumWait, maximumWait)

	if g.Prewarm != nil && !*g.Prewarm {
		b = b.WithoutPrewarm()
	}

	if g.SuppressLog {
		b = b.WithSuppressLog()
	}

	return b
}

// Load reads a scenario, fills in defaults and validates it. Relative catalog
// and recording paths stay as written.
func Load(r io.Reader) (*Scenario, error) {
	s := &Scenario{}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}

	s.applyDefaults()

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// LoadFile reads a scenario file. A relative catalog path is resolved
// against the directory of the scenario file.
func LoadFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if s.Catalog != "" && !filepath.IsAbs(s.Catalog) {
		s.Catalog = filepath.Join(filepath.Dir(path), s.Catalog)
	}

	return s, nil
}

func (s *Scenario) applyDefaults() {
	if s.TickFrequency == 0 {
		s.TickFrequency = DefaultTickFrequency
	}

	if s.Duration == 0 {
		s.Duration = DefaultDuration
	}

	if s.MaxCheckPeriod == 0 {
		s.MaxCheckPeriod = float64(broadcast.DefaultMaxCheckPeriod)
	}

	for i := range s.Emitters {
		if s.Emitters[i].Count == 0 {
			s.Emitters[i].Count = 1
		}
	}

	for i := range s.NPCs {
		if s.NPCs[i].Count == 0 {
			s.NPCs[i].Count = 1
		}

		if s.NPCs[i].Period == 0 {
			s.NPCs[i].Period = DefaultNPCPeriod
		}
	}
}

// Validate reports every problem of the scenario at once.
func (s *Scenario) Validate() error {
	var errs []error

	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format,
			append([]any{ErrInvalidScenario}, args...)...))
	}

	if s.TickFrequency <= 0 {
		invalid("tickFrequency must be positive")
	}

	if s.Duration <= 0 {
		invalid("duration must be positive")
	}

	if s.MaxCheckPeriod <= 0 {
		invalid("maxCheckPeriod must be positive")
	}

	if s.Catalog == "" {
		invalid("catalog is required")
	}

	groups := make(map[string]bool)

	checkGroup := func(kind, name, voicelines string, count int) {
		switch {
		case name == "":
			invalid("%s group without a name", kind)
		case groups[name]:
			invalid("group %q defined twice", name)
		}

		groups[name] = true

		if voicelines == "" {
			invalid("group %q has no voicelines", name)
		}

		if count < 0 {
			invalid("group %q has a negative count", name)
		}
	}

	for _, g := range s.Emitters {
		checkGroup("emitter", g.Name, g.Voicelines, g.Count)
	}

	for _, g := range s.NPCs {
		checkGroup("npc", g.Name, g.Voicelines, g.Count)

		if g.Period <= 0 {
			invalid("npc group %q needs a positive period", g.Name)
		}
	}

	for _, o := range s.Outages {
		if !s.hasEmitterGroup(o.Group) {
			invalid("outage for unknown emitter group %q", o.Group)
		}

		if o.Start < 0 {
			invalid("outage of %q starts before time zero", o.Group)
		}

		if o.End <= o.Start {
			invalid("outage of %q ends before it starts", o.Group)
		}
	}

	return errors.Join(errs...)
}

func (s *Scenario) hasEmitterGroup(name string) bool {
	for _, g := range s.Emitters {
		if g.Name == name {
			return true
		}
	}

	return false
}
