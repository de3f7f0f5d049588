// Filmrec - Telegram Movie Recommendation Bot
// Copyright 2026 Adi Prasetya (aprasetya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aprasetya/filmrec

// Package classifier evaluates the pre-trained decision tree that narrows
// recommendation candidates.
//
// The model is trained offline and exported to JSON. This package only
// consumes it: given a feature matrix it returns one predicted title label
// per input row. Training and export are out of scope.
package classifier

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/aprasetya/filmrec/internal/metrics"
)

// leafFeature marks a node as a leaf in the exported model.
const leafFeature = -1

// node is one exported decision-tree node. Inner nodes branch left when
// x[Feature] <= Threshold; leaves carry the predicted label.
type node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Label     string  `json:"label"`
}

// model is the on-disk shape of the exported tree.
type model struct {
	Features []string `json:"features"`
	Nodes    []node   `json:"nodes"`
}

// Tree is a loaded decision-tree classifier. Read-only after Load; safe for
// concurrent use.
type Tree struct {
	features []string
	nodes    []node
}

// Load reads an exported decision-tree model from path.
func Load(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}

	var m model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode model %s: %w", path, err)
	}

	if len(m.Features) == 0 {
		return nil, fmt.Errorf("model %s declares no feature columns", path)
	}
	if len(m.Nodes) == 0 {
		return nil, fmt.Errorf("model %s has no nodes", path)
	}

	for i, n := range m.Nodes {
		if n.Feature == leafFeature {
			if n.Label == "" {
				return nil, fmt.Errorf("model %s: leaf node %d has no label", path, i)
			}
			continue
		}
		if n.Feature < 0 || n.Feature >= len(m.Features) {
			return nil, fmt.Errorf("model %s: node %d references feature %d of %d",
				path, i, n.Feature, len(m.Features))
		}
		if n.Left < 0 || n.Left >= len(m.Nodes) || n.Right < 0 || n.Right >= len(m.Nodes) {
			return nil, fmt.Errorf("model %s: node %d has out-of-range children", path, i)
		}
		// Children must point forward so traversal terminates.
		if n.Left <= i || n.Right <= i {
			return nil, fmt.Errorf("model %s: node %d has non-forward children", path, i)
		}
	}

	return &Tree{features: m.Features, nodes: m.Nodes}, nil
}

// FeatureColumns returns the feature schema the tree was trained on, in
// evaluation order.
func (t *Tree) FeatureColumns() []string {
	out := make([]string, len(t.features))
	copy(out, t.features)
	return out
}

// Predict evaluates the tree for every row of the feature matrix and returns
// one predicted label per row, in input order.
func (t *Tree) Predict(matrix [][]float64) ([]string, error) {
	start := time.Now()
	defer func() {
		metrics.ClassifierDuration.Observe(time.Since(start).Seconds())
	}()

	out := make([]string, len(matrix))
	for i, row := range matrix {
		if len(row) != len(t.features) {
			return nil, fmt.Errorf("row %d has %d features, model expects %d",
				i, len(row), len(t.features))
		}

		label, err := t.evaluate(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = label
	}

	return out, nil
}

// evaluate walks the tree for one feature vector.
func (t *Tree) evaluate(row []float64) (string, error) {
	idx := 0
	for range t.nodes { // bounded: children always point forward
		n := t.nodes[idx]
		if n.Feature == leafFeature {
			return n.Label, nil
		}
		if row[n.Feature] <= n.Threshold {
			idx = n.Left
		} else {
			idx = n.Right
		}
	}
	return "", fmt.Errorf("traversal did not reach a leaf")
}
