// Filmrec - Telegram Movie Recommendation Bot
// Copyright 2026 Adi Prasetya (aprasetya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aprasetya/filmrec

package recommend

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aprasetya/filmrec/internal/catalog"
)

// formatCard renders the Markdown recommendation card. The template and its
// Indonesian field labels are part of the product surface and must not drift.
func formatCard(m catalog.Movie, genre string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🎬 *Judul:* %s\n", m.Title)
	fmt.Fprintf(&b, "🎭 *Genre:* %s\n", genre)
	fmt.Fprintf(&b, "📅 *Tahun Rilis:* %d\n", m.Year)
	fmt.Fprintf(&b, "🔞 *Klasifikasi Usia:* %s\n", m.AgeRating)
	fmt.Fprintf(&b, "🎭 *Pemeran:* %s\n", m.Cast)
	fmt.Fprintf(&b, "🎬 *Sutradara:* %s\n", m.Director)
	fmt.Fprintf(&b, "🏢 *Produksi:* %s\n", m.Studio)
	fmt.Fprintf(&b, "👥 *Jumlah Penonton:* %s", groupThousands(m.Viewers))

	return b.String()
}

// groupThousands formats n with "." as the thousands separator, the
// Indonesian digit grouping convention: 1234567 -> "1.234.567".
func groupThousands(n int) string {
	s := strconv.Itoa(n)

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}
