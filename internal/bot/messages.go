// Filmrec - Telegram Movie Recommendation Bot
// Copyright 2026 Adi Prasetya (aprasetya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aprasetya/filmrec

package bot

import "fmt"

// User-facing strings. These are product copy carried over verbatim from
// the original deployment; do not reword them casually.
const (
	msgChooseGenre = "Pilih genre favorit Anda:"
	msgInvalidYear = "Tahun rilis tidak valid. Silakan masukkan angka, misalnya 2020."
	msgNoMatch     = "Maaf, tidak ada film yang sesuai dengan preferensi Anda."
	msgAskContinue = "Apakah Anda ingin rekomendasi lainnya?"
	msgFarewell    = "Terima kasih telah menggunakan bot ini. Sampai jumpa!"

	// OptContinue and OptFinish are the two literals offered after a
	// recommendation cycle.
	OptContinue = "Ya, rekomendasi lain"
	OptFinish   = "Tidak, selesai"
)

// msgChooseYear prompts for a release year for the chosen genre.
func msgChooseYear(genre string) string {
	return fmt.Sprintf("Pilih tahun rilis untuk genre %s:", genre)
}
