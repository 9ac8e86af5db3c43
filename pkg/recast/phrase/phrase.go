// Package phrase matches and replaces whole words and multi-word phrases
// inside free text, case-insensitively.
//
// A match must sit on word boundaries: "beef" matches in "the beef." but not in
// "beefy". Needles that start or end with a non-word character (for example
// "meat " with a trailing space) do not require a boundary on that side.
package phrase

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Find returns the byte ranges of every whole-word occurrence of needle in s.
func Find(s, needle string) [][2]int {
	if needle == "" || s == "" {
		return nil
	}
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(needle))
	if err != nil {
		return nil
	}

	first, _ := utf8.DecodeRuneInString(needle)
	last, _ := utf8.DecodeLastRuneInString(needle)
	checkLeft := isWordRune(first)
	checkRight := isWordRune(last)

	var out [][2]int
	for _, loc := range re.FindAllStringIndex(s, -1) {
		start, end := loc[0], loc[1]
		if checkLeft && start > 0 {
			r, _ := utf8.DecodeLastRuneInString(s[:start])
			if isWordRune(r) {
				continue
			}
		}
		if checkRight && end < len(s) {
			r, _ := utf8.DecodeRuneInString(s[end:])
			if isWordRune(r) {
				continue
			}
		}
		out = append(out, [2]int{start, end})
	}
	return out
}

// Contains reports whether needle occurs in s as a whole word or phrase.
func Contains(s, needle string) bool {
	return len(Find(s, needle)) > 0
}

// ReplaceFirst replaces the first whole-word occurrence of old with repl.
func ReplaceFirst(s, old, repl string) (string, bool) {
	locs := Find(s, old)
	if len(locs) == 0 {
		return s, false
	}
	loc := locs[0]
	return s[:loc[0]] + repl + s[loc[1]:], true
}

// ReplaceAll replaces every whole-word occurrence of old with repl in a single
// left-to-right pass. Text inserted by a replacement is never rescanned, so a
// replacement that contains old does not cascade.
func ReplaceAll(s, old, repl string) (string, int) {
	locs := Find(s, old)
	if len(locs) == 0 {
		return s, 0
	}
	var b strings.Builder
	b.Grow(len(s) + len(locs)*(len(repl)-len(old)))
	prev := 0
	for _, loc := range locs {
		b.WriteString(s[prev:loc[0]])
		b.WriteString(repl)
		prev = loc[1]
	}
	b.WriteString(s[prev:])
	return b.String(), len(locs)
}

// Match is one occurrence found by FindAll. Index is the position of the
// matching needle.
type Match struct {
	Start, End int
	Index      int
}

// FindAll finds whole-word occurrences of every needle and keeps a
// non-overlapping set, scanning left to right. Where matches start at the
// same position the longest wins, then the earliest needle.
func FindAll(s string, needles []string) []Match {
	var all []Match
	for i, n := range needles {
		for _, loc := range Find(s, n) {
			all = append(all, Match{Start: loc[0], End: loc[1], Index: i})
		}
	}
	sort.SliceStable(all, func(a, b int) bool {
		if all[a].Start != all[b].Start {
			return all[a].Start < all[b].Start
		}
		if la, lb := all[a].End-all[a].Start, all[b].End-all[b].Start; la != lb {
			return la > lb
		}
		return all[a].Index < all[b].Index
	})

	out := all[:0]
	end := 0
	for _, m := range all {
		if m.Start < end {
			continue
		}
		out = append(out, m)
		end = m.End
	}
	return out
}

// Pair is one replacement for ReplacePairs.
type Pair struct {
	Old, New string
}

// ReplacePairs applies every pair in a single pass over s using the matches
// chosen by FindAll. Inserted text is never rescanned.
func ReplacePairs(s string, pairs []Pair) (string, []Match) {
	olds := make([]string, len(pairs))
	for i, p := range pairs {
		olds[i] = p.Old
	}
	matches := FindAll(s, olds)
	if len(matches) == 0 {
		return s, nil
	}
	var b strings.Builder
	prev := 0
	for _, m := range matches {
		b.WriteString(s[prev:m.Start])
		b.WriteString(pairs[m.Index].New)
		prev = m.End
	}
	b.WriteString(s[prev:])
	return b.String(), matches
}

// Words splits text into lowercase words, dropping surrounding punctuation.
func Words(s string) []string {
	fields := strings.Fields(s)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.TrimFunc(f, func(r rune) bool { return !isWordRune(r) })
		if w != "" {
			out = append(out, strings.ToLower(w))
		}
	}
	return out
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// IsNumeral reports whether s is a quantity numeral: digits, decimals,
// fractions such as "1/2", ranges such as "2-3", or vulgar fractions.
func IsNumeral(s string) bool {
	if s == "" {
		return false
	}
	digits := 0
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case unicode.Is(unicode.No, r):
			// vulgar fractions like ½ are category No
			digits++
		case r == '/' || r == '.' || r == '-' || r == ',':
		default:
			return false
		}
	}
	return digits > 0
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}
