// Package filter screens message text against a static sensitive-word list.
package filter

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultWords is the built-in sensitive-word list. Order matters: words are
// replaced one after another in this order.
var DefaultWords = []string{
	"sensitive1", "sensitive2", "political sensitivity", "violence", "pornography",
	"gambling", "drugs", "suicide", "terrorism", "hate speech", "fraud", "illegal",
	"unlawful",
	"敏感词1", "敏感词2", "政治敏感", "暴力", "色情", "赌博", "毒品",
	"自杀", "恐怖主义", "仇恨言论", "诈骗", "非法", "违法",
}

const replacementChar = "*"

// Result is the outcome of Validate.
type Result struct {
	IsValid         bool     `json:"isValid"`
	FilteredContent string   `json:"filteredContent"`
	SensitiveWords  []string `json:"sensitiveWords"`
}

type entry struct {
	word    string
	pattern *regexp.Regexp
	mask    string
}

// Filter is immutable after construction and safe for concurrent use.
type Filter struct {
	entries []entry
}

// New compiles a filter for words. Empty entries are ignored.
func New(words []string) *Filter {
	f := &Filter{entries: make([]entry, 0, len(words))}
	for _, w := range words {
		if w == "" {
			continue
		}
		f.entries = append(f.entries, entry{
			word:    w,
			pattern: regexp.MustCompile("(?i)" + regexp.QuoteMeta(w)),
			mask:    strings.Repeat(replacementChar, utf8.RuneCountInString(w)),
		})
	}
	return f
}

var defaultFilter = New(DefaultWords)

// Default returns the filter built from DefaultWords.
func Default() *Filter { return defaultFilter }

// ContainsSensitiveWords reports whether text contains any listed word,
// ignoring case. Detection uses the same patterns as Apply, so text is
// reported clean exactly when Apply leaves it unchanged.
func (f *Filter) ContainsSensitiveWords(text string) bool {
	for _, e := range f.entries {
		if e.pattern.MatchString(text) {
			return true
		}
	}
	return false
}

// SensitiveWordsIn returns the listed words found in text, in list order.
func (f *Filter) SensitiveWordsIn(text string) []string {
	found := []string{}
	for _, e := range f.entries {
		if e.pattern.MatchString(text) {
			found = append(found, e.word)
		}
	}
	return found
}

// Apply replaces every occurrence of every listed word with asterisks of the
// same length. One pass over the list, one global replace per word.
func (f *Filter) Apply(text string) string {
	out := text
	for _, e := range f.entries {
		out = e.pattern.ReplaceAllLiteralString(out, e.mask)
	}
	return out
}

// Validate never fails; IsValid is true when no listed word was found.
func (f *Filter) Validate(content string) Result {
	words := f.SensitiveWordsIn(content)
	return Result{
		IsValid:         len(words) == 0,
		FilteredContent: f.Apply(content),
		SensitiveWords:  words,
	}
}

func ContainsSensitiveWords(text string) bool { return defaultFilter.ContainsSensitiveWords(text) }

func SensitiveWordsIn(text string) []string { return defaultFilter.SensitiveWordsIn(text) }

func Apply(text string) string { return defaultFilter.Apply(text) }

func Validate(content string) Result { return defaultFilter.Validate(content) }
