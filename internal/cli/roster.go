package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/leaddist/internal/core"
)

// rosterFile is the YAML layout of a roster:
//
//	agents:
//	  - id: a1
//	    name: Asha
//	  - id: a2
//	    name: Ravi
//	    active: false
type rosterFile struct {
	Agents []rosterEntry `yaml:"agents"`
}

type rosterEntry struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Active *bool  `yaml:"active"`
}

// FileRoster selects targets from a roster file. Like the database roster
// it takes active agents in file order, at most core.RequiredTargets of them.
type FileRoster struct {
	targets []core.DistributionTarget
}

// LoadRoster reads and validates a YAML roster. Unknown keys are rejected.
func LoadRoster(path string) (*FileRoster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	r, err := ParseRoster(data)
	if err != nil {
		return nil, fmt.Errorf("roster %s: %w", path, err)
	}
	return r, nil
}

// ParseRoster decodes roster YAML.
func ParseRoster(data []byte) (*FileRoster, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f rosterFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	var (
		errs    []error
		seen    = make(map[string]bool, len(f.Agents))
		targets []core.DistributionTarget
	)
	for i, a := range f.Agents {
		id, name := strings.TrimSpace(a.ID), strings.TrimSpace(a.Name)
		switch {
		case id == "":
			errs = append(errs, fmt.Errorf("agent %d: id is required", i+1))
			continue
		case name == "":
			errs = append(errs, fmt.Errorf("agent %d (%s): name is required", i+1, id))
			continue
		case seen[id]:
			errs = append(errs, fmt.Errorf("agent %d: duplicate id %q", i+1, id))
			continue
		}
		seen[id] = true

		if a.Active != nil && !*a.Active {
			continue
		}
		targets = append(targets, core.DistributionTarget{ID: id, Name: name})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if len(targets) > core.RequiredTargets {
		targets = targets[:core.RequiredTargets]
	}
	return &FileRoster{targets: targets}, nil
}

// EligibleTargets implements core.RosterSelector.
func (r *FileRoster) EligibleTargets(context.Context) ([]core.DistributionTarget, error) {
	out := make([]core.DistributionTarget, len(r.targets))
	copy(out, r.targets)
	return out, nil
}
