// Filmrec - Telegram Movie Recommendation Bot
// Copyright 2026 Adi Prasetya (aprasetya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aprasetya/filmrec

// Package catalog holds the pre-processed movie table in memory.
//
// The table is produced by an external preprocessing pipeline and consumed
// here read-only: one row per movie, one-hot genre indicator columns
// (Genre_<Name>), the numeric feature columns the classifier was trained on,
// and the display columns used in recommendation cards. After Load returns,
// the store is immutable and safe for concurrent use without locking.
package catalog

import (
	"fmt"
	"sort"
)

// Column names of the pre-processed table. The names are fixed by the
// upstream pipeline and are Indonesian, like the rest of the product surface.
const (
	ColTitle     = "Judul"
	ColYear      = "Tahun Rilis"
	ColViewers   = "Penonton"
	ColAgeRating = "Klasifikasi usia"
	ColCast      = "Pemeran"
	ColDirector  = "Sutradara"
	ColStudio    = "Produksi"

	// GenreColumnPrefix marks one-hot genre indicator columns.
	GenreColumnPrefix = "Genre_"
)

// Movie is one catalog row.
type Movie struct {
	Title     string
	Year      int
	Viewers   int
	AgeRating string
	Cast      string
	Director  string
	Studio    string

	// Genres maps genre name to the row's one-hot indicator.
	Genres map[string]bool

	// Features is the numeric feature vector, ordered to match the
	// feature columns the store was loaded with.
	Features []float64
}

// Store is the read-only in-memory movie table.
type Store struct {
	movies      []Movie
	genres      []string
	featureCols []string

	// yearsByGenre caches the distinct release years per genre, newest
	// first, computed once at construction.
	yearsByGenre map[string][]int
}

// NewStore builds a store from already-materialized rows. genres is the
// known genre set in presentation order; featureCols names the feature
// vector schema. Every row must carry an indicator for every known genre.
func NewStore(movies []Movie, genres, featureCols []string) (*Store, error) {
	for i := range movies {
		for _, g := range genres {
			if _, ok := movies[i].Genres[g]; !ok {
				return nil, fmt.Errorf("row %q missing indicator for genre %q", movies[i].Title, g)
			}
		}
		if len(movies[i].Features) != len(featureCols) {
			return nil, fmt.Errorf("row %q has %d features, want %d",
				movies[i].Title, len(movies[i].Features), len(featureCols))
		}
	}

	s := &Store{
		movies:       movies,
		genres:       genres,
		featureCols:  featureCols,
		yearsByGenre: make(map[string][]int, len(genres)),
	}

	for _, g := range genres {
		s.yearsByGenre[g] = distinctYears(movies, g)
	}

	return s, nil
}

// Len returns the number of catalog rows.
func (s *Store) Len() int {
	return len(s.movies)
}

// Genres returns the known genre set in presentation order.
func (s *Store) Genres() []string {
	out := make([]string, len(s.genres))
	copy(out, s.genres)
	return out
}

// HasGenre reports whether name is in the known genre set.
func (s *Store) HasGenre(name string) bool {
	for _, g := range s.genres {
		if g == name {
			return true
		}
	}
	return false
}

// FeatureColumns returns the feature vector schema.
func (s *Store) FeatureColumns() []string {
	out := make([]string, len(s.featureCols))
	copy(out, s.featureCols)
	return out
}

// YearsForGenre returns the distinct release years among rows flagged with
// the genre, newest first. Returns nil for an unknown genre.
func (s *Store) YearsForGenre(genre string) []int {
	years, ok := s.yearsByGenre[genre]
	if !ok {
		return nil
	}
	out := make([]int, len(years))
	copy(out, years)
	return out
}

// FilterGenreYear returns the rows whose indicator for genre is set and
// whose release year equals year, in table order.
func (s *Store) FilterGenreYear(genre string, year int) []Movie {
	var out []Movie
	for i := range s.movies {
		if s.movies[i].Genres[genre] && s.movies[i].Year == year {
			out = append(out, s.movies[i])
		}
	}
	return out
}

// distinctYears collects the distinct release years of rows flagged with
// the genre, sorted newest first.
func distinctYears(movies []Movie, genre string) []int {
	seen := make(map[int]struct{})
	var years []int
	for i := range movies {
		if !movies[i].Genres[genre] {
			continue
		}
		if _, ok := seen[movies[i].Year]; ok {
			continue
		}
		seen[movies[i].Year] = struct{}{}
		years = append(years, movies[i].Year)
	}

	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}
