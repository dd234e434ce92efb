package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario describes one pagetree-bench run: the tree's page size, where to
// put the backing file, and the sequence of operations to drive through it.
type Scenario struct {
	PageSize int        `yaml:"page_size"`
	DataFile string     `yaml:"data_file"`
	Verify   bool       `yaml:"verify"`
	Ops      []Operation `yaml:"ops"`
}

// Operation is a single put/get step. Get entries ignore Value.
type Operation struct {
	Kind  string `yaml:"kind"`
	Key   int32  `yaml:"key"`
	Value int32  `yaml:"value,omitempty"`
}

func loadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.PageSize == 0 {
		s.PageSize = 4096
	}
	if s.DataFile == "" {
		s.DataFile = "pagetree-bench.db"
	}
	for i, op := range s.Ops {
		switch op.Kind {
		case "put", "get":
		default:
			return nil, fmt.Errorf("scenario op %d: unknown kind %q (want put or get)", i, op.Kind)
		}
	}
	return &s, nil
}
