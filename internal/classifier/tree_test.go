// Filmrec - Telegram Movie Recommendation Bot
// Copyright 2026 Adi Prasetya (aprasetya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aprasetya/filmrec

package classifier

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// writeModel writes a model JSON file and returns its path.
func writeModel(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write model: %v", err)
	}
	return path
}

// twoFeatureModel splits on year (feature 0) at 2019.5, then on viewers
// (feature 1) at 1000000 in the right branch.
const twoFeatureModel = `{
	"features": ["Tahun Rilis", "Penonton"],
	"nodes": [
		{"feature": 0, "threshold": 2019.5, "left": 1, "right": 2},
		{"feature": -1, "label": "Mata Hari"},
		{"feature": 1, "threshold": 1000000, "left": 3, "right": 4},
		{"feature": -1, "label": "Laskar Senja"},
		{"feature": -1, "label": "Badai Timur"}
	]
}`

func TestLoadAndPredict(t *testing.T) {
	tree, err := Load(writeModel(t, twoFeatureModel))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if got := tree.FeatureColumns(); !reflect.DeepEqual(got, []string{"Tahun Rilis", "Penonton"}) {
		t.Errorf("FeatureColumns() = %v", got)
	}

	matrix := [][]float64{
		{2019, 900000},  // left branch
		{2020, 500000},  // right, viewers <= 1000000
		{2020, 2100000}, // right, viewers > 1000000
	}

	got, err := tree.Predict(matrix)
	if err != nil {
		t.Fatalf("Predict() error: %v", err)
	}

	want := []string{"Mata Hari", "Laskar Senja", "Badai Timur"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Predict() = %v, want %v", got, want)
	}
}

func TestPredictEmptyMatrix(t *testing.T) {
	tree, err := Load(writeModel(t, twoFeatureModel))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	got, err := tree.Predict(nil)
	if err != nil {
		t.Fatalf("Predict(nil) error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Predict(nil) = %v, want empty", got)
	}
}

func TestPredictRejectsWrongWidth(t *testing.T) {
	tree, err := Load(writeModel(t, twoFeatureModel))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if _, err := tree.Predict([][]float64{{2020}}); err == nil {
		t.Error("Predict() accepted a row with the wrong feature count")
	}
}

func TestLoadRejectsInvalidModels(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "{"},
		{"no features", `{"features": [], "nodes": [{"feature": -1, "label": "x"}]}`},
		{"no nodes", `{"features": ["a"], "nodes": []}`},
		{"leaf without label", `{"features": ["a"], "nodes": [{"feature": -1}]}`},
		{"feature out of range", `{"features": ["a"], "nodes": [{"feature": 3, "threshold": 1, "left": 1, "right": 2}, {"feature": -1, "label": "x"}, {"feature": -1, "label": "y"}]}`},
		{"child out of range", `{"features": ["a"], "nodes": [{"feature": 0, "threshold": 1, "left": 1, "right": 9}, {"feature": -1, "label": "x"}]}`},
		{"self-referencing child", `{"features": ["a"], "nodes": [{"feature": 0, "threshold": 1, "left": 0, "right": 1}, {"feature": -1, "label": "x"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeModel(t, tt.content)); err == nil {
				t.Error("Load() accepted invalid model")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("Load() succeeded for a missing file")
	}
}

func TestSingleLeafModel(t *testing.T) {
	tree, err := Load(writeModel(t, `{"features": ["a"], "nodes": [{"feature": -1, "label": "only"}]}`))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	got, err := tree.Predict([][]float64{{1}, {99}})
	if err != nil {
		t.Fatalf("Predict() error: %v", err)
	}
	for _, label := range got {
		if label != "only" {
			t.Errorf("Predict() = %v, want all %q", got, "only")
		}
	}
}
