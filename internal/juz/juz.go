// Package juz holds the static structure of the 30 juz (reading portions)
// and the ayah counts of every surah.
package juz

import (
	"math"

	"github.com/mrlokans/quransync/internal/entities"
)

const Count = 30

var ayahCounts = [entities.TotalSurahs]int{
	7, 286, 200, 176, 120, 165, 206, 75, 129, 109, 123, 111, 43, 52, 99, 128, 111, 110, 98, 135,
	112, 78, 118, 64, 77, 227, 93, 88, 69, 60, 34, 30, 73, 54, 45, 83, 182, 88, 75, 85,
	54, 53, 89, 59, 37, 35, 38, 29, 18, 45, 60, 49, 62, 55, 78, 96, 29, 22, 24, 13,
	14, 11, 11, 18, 12, 12, 30, 52, 52, 44, 28, 28, 20, 56, 40, 31, 50, 40, 46, 42,
	29, 19, 36, 25, 22, 17, 19, 26, 30, 20, 15, 21, 11, 8, 8, 19, 5, 8, 8, 11,
	11, 8, 3, 9, 5, 4, 7, 3, 6, 3, 5, 4, 5, 6,
}

// Location is a surah:ayah reference.
type Location struct {
	Surah int
	Ayah  int
}

var starts = [Count]Location{
	{1, 1}, {2, 142}, {2, 253}, {3, 93}, {4, 24}, {4, 148}, {5, 82}, {6, 111}, {7, 88}, {8, 41},
	{9, 93}, {11, 6}, {12, 53}, {15, 1}, {17, 1}, {18, 75}, {21, 1}, {23, 1}, {25, 21}, {27, 56},
	{29, 46}, {33, 31}, {36, 28}, {39, 32}, {41, 47}, {46, 1}, {51, 31}, {58, 1}, {67, 1}, {78, 1},
}

// offsets[i] is the number of ayahs before surah i+1.
var offsets [entities.TotalSurahs + 1]int

func init() {
	for i, n := range ayahCounts {
		offsets[i+1] = offsets[i] + n
	}
}

// AyahCount returns the number of ayahs in surah, or 0 for an invalid number.
func AyahCount(surah int) int {
	if surah < 1 || surah > entities.TotalSurahs {
		return 0
	}
	return ayahCounts[surah-1]
}

// GlobalNumber converts surah:ayah to the corpus-wide ayah number (1..6236).
// It returns 0 for references outside the corpus.
func GlobalNumber(surah, ayah int) int {
	if ayah < 1 || ayah > AyahCount(surah) {
		return 0
	}
	return offsets[surah-1] + ayah
}

// Start returns where juz begins.
func Start(juz int) (Location, bool) {
	if juz < 1 || juz > Count {
		return Location{}, false
	}
	return starts[juz-1], true
}

func startGlobal(juz int) int {
	if juz > Count {
		return entities.TotalAyahs + 1
	}
	loc := starts[juz-1]
	return GlobalNumber(loc.Surah, loc.Ayah)
}

// Size returns the number of ayahs in juz.
func Size(juz int) int {
	if juz < 1 || juz > Count {
		return 0
	}
	return startGlobal(juz+1) - startGlobal(juz)
}

// ForAyah returns the juz containing surah:ayah, or 0 for an invalid reference.
func ForAyah(surah, ayah int) int {
	g := GlobalNumber(surah, ayah)
	if g == 0 {
		return 0
	}
	for juz := Count; juz >= 1; juz-- {
		if g >= startGlobal(juz) {
			return juz
		}
	}
	return 0
}

// SurahRange returns the first and last surah with ayahs in juz.
func SurahRange(juz int) (first, last int, ok bool) {
	if juz < 1 || juz > Count {
		return 0, 0, false
	}
	first = starts[juz-1].Surah
	if juz == Count {
		return first, entities.TotalSurahs, true
	}
	next := starts[juz]
	last = next.Surah
	if next.Ayah == 1 {
		last--
	}
	return first, last, true
}

// ContainsSurah reports whether any ayah of surah falls in juz.
func ContainsSurah(juz, surah int) bool {
	first, last, ok := SurahRange(juz)
	return ok && surah >= first && surah <= last
}

// Percentage returns how far surah:ayah is into juz, in percent rounded to
// one decimal. Positions before the juz give 0 and after it give 100.
func Percentage(juz, surah, ayah int) float64 {
	size := Size(juz)
	g := GlobalNumber(surah, ayah)
	if size == 0 || g == 0 {
		return 0
	}
	read := g - startGlobal(juz) + 1
	switch {
	case read <= 0:
		return 0
	case read >= size:
		return 100
	}
	return math.Round(float64(read)/float64(size)*1000) / 10
}
