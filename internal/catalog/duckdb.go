// Filmrec - Telegram Movie Recommendation Bot
// Copyright 2026 Adi Prasetya (aprasetya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aprasetya/filmrec

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/aprasetya/filmrec/internal/logging"
)

// nativeTableName is the table read from a native .duckdb catalog file.
// CSV and Parquet catalogs are read through DuckDB's file readers instead.
const nativeTableName = "movies"

// Load reads the catalog from path into memory. The file format is picked
// by extension: .csv, .parquet, or a native DuckDB database containing a
// "movies" table. featureCols names the feature columns the classifier
// expects; loading fails if any is absent.
func Load(ctx context.Context, path string, featureCols []string) (*Store, error) {
	dsn := ""
	if strings.EqualFold(filepath.Ext(path), ".duckdb") {
		dsn = path
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logging.Warn().Err(cerr).Msg("error closing catalog database")
		}
	}()

	query, err := selectQuery(path)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read catalog columns: %w", err)
	}

	index := make(map[string]int, len(cols))
	for i, c := range cols {
		index[c] = i
	}

	if err := checkColumns(index, featureCols); err != nil {
		return nil, err
	}

	// Known genre set = the Genre_ indicator columns, in table order.
	var genres []string
	for _, c := range cols {
		if strings.HasPrefix(c, GenreColumnPrefix) {
			genres = append(genres, strings.TrimPrefix(c, GenreColumnPrefix))
		}
	}
	if len(genres) == 0 {
		return nil, fmt.Errorf("catalog %s has no %s* indicator columns", path, GenreColumnPrefix)
	}

	movies, err := scanMovies(rows, cols, index, genres, featureCols)
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, fmt.Errorf("catalog %s is empty", path)
	}

	store, err := NewStore(movies, genres, featureCols)
	if err != nil {
		return nil, err
	}

	logging.Info().
		Int("movies", store.Len()).
		Int("genres", len(genres)).
		Int("features", len(featureCols)).
		Str("path", path).
		Msg("catalog loaded")

	return store, nil
}

// selectQuery builds the read query for the catalog file.
func selectQuery(path string) (string, error) {
	escaped := strings.ReplaceAll(path, "'", "''")

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return fmt.Sprintf("SELECT * FROM read_csv_auto('%s')", escaped), nil
	case ".parquet":
		return fmt.Sprintf("SELECT * FROM read_parquet('%s')", escaped), nil
	case ".duckdb":
		return "SELECT * FROM " + nativeTableName, nil
	default:
		return "", fmt.Errorf("unsupported catalog format %q", filepath.Ext(path))
	}
}

// checkColumns verifies that every required and feature column is present.
func checkColumns(index map[string]int, featureCols []string) error {
	required := []string{ColTitle, ColYear, ColViewers, ColAgeRating, ColCast, ColDirector, ColStudio}
	for _, c := range required {
		if _, ok := index[c]; !ok {
			return fmt.Errorf("catalog missing required column %q", c)
		}
	}
	for _, c := range featureCols {
		if _, ok := index[c]; !ok {
			return fmt.Errorf("catalog missing feature column %q", c)
		}
	}
	return nil
}

// scanMovies materializes every row.
func scanMovies(rows *sql.Rows, cols []string, index map[string]int, genres, featureCols []string) ([]Movie, error) {
	var movies []Movie

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}

		m, err := movieFromRow(values, index, genres, featureCols)
		if err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog rows: %w", err)
	}

	return movies, nil
}

// movieFromRow coerces one scanned row into a Movie.
func movieFromRow(values []any, index map[string]int, genres, featureCols []string) (Movie, error) {
	title := asString(values[index[ColTitle]])
	if title == "" {
		return Movie{}, fmt.Errorf("catalog row with empty %s", ColTitle)
	}

	year, err := asInt(values[index[ColYear]])
	if err != nil {
		return Movie{}, fmt.Errorf("row %q: column %s: %w", title, ColYear, err)
	}
	viewers, err := asInt(values[index[ColViewers]])
	if err != nil {
		return Movie{}, fmt.Errorf("row %q: column %s: %w", title, ColViewers, err)
	}

	m := Movie{
		Title:     title,
		Year:      year,
		Viewers:   viewers,
		AgeRating: asString(values[index[ColAgeRating]]),
		Cast:      asString(values[index[ColCast]]),
		Director:  asString(values[index[ColDirector]]),
		Studio:    asString(values[index[ColStudio]]),
		Genres:    make(map[string]bool, len(genres)),
		Features:  make([]float64, len(featureCols)),
	}

	for _, g := range genres {
		flag, err := asBool(values[index[GenreColumnPrefix+g]])
		if err != nil {
			return Movie{}, fmt.Errorf("row %q: genre %s: %w", title, g, err)
		}
		m.Genres[g] = flag
	}

	for i, c := range featureCols {
		f, err := asFloat(values[index[c]])
		if err != nil {
			return Movie{}, fmt.Errorf("row %q: feature %s: %w", title, c, err)
		}
		m.Features[i] = f
	}

	return m, nil
}

// The coercion helpers accept the value types the DuckDB driver produces
// for CSV auto-detection as well as typed parquet and native columns.

func asString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

func asInt(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int8:
		return int(x), nil
	case int16:
		return int(x), nil
	case int32:
		return int(x), nil
	case int64:
		return int(x), nil
	case uint32:
		return int(x), nil
	case uint64:
		return int(x), nil
	case float64:
		return int(x), nil
	default:
		return 0, fmt.Errorf("cannot use %T as integer", v)
	}
}

func asFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float32:
		return float64(x), nil
	case float64:
		return x, nil
	case int8:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("cannot use %T as float", v)
	}
}

func asBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case int8:
		return x != 0, nil
	case int16:
		return x != 0, nil
	case int32:
		return x != 0, nil
	case int64:
		return x != 0, nil
	case float64:
		return x != 0, nil
	default:
		return false, fmt.Errorf("cannot use %T as indicator", v)
	}
}
