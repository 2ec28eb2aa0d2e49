package keyword

import (
	"strings"
	"unicode/utf8"
)

// DefaultMinTokenLength is the shortest token kept unconditionally.
const DefaultMinTokenLength = 3

// Class is the role of a keyword in scoring.
type Class int

const (
	// Other is a significant token outside both vocabularies.
	Other Class = iota
	// Primary is an action/intent token.
	Primary
	// Context is a temporal/contextual token.
	Context
)

func (c Class) String() string {
	switch c {
	case Primary:
		return "primary"
	case Context:
		return "context"
	default:
		return "other"
	}
}

// KeywordSet is the decomposition of an intent text.
type KeywordSet struct {
	Primary []string `json:"primary"`
	Context []string `json:"context"`
	All     []string `json:"all"`
}

// IsEmpty reports whether no significant token was retained.
func (ks KeywordSet) IsEmpty() bool { return len(ks.All) == 0 }

// ClassOf returns the class of a keyword from All.
func (ks KeywordSet) ClassOf(kw string) Class {
	for _, c := range ks.Context {
		if c == kw {
			return Context
		}
	}
	for _, p := range ks.Primary {
		if p == kw {
			return Primary
		}
	}
	return Other
}

// HasContentKeyword reports whether at least one keyword is not contextual.
func (ks KeywordSet) HasContentKeyword() bool {
	return len(ks.All) > len(ks.Context)
}

// Options tunes token filtering.
type Options struct {
	// MinTokenLength is the shortest token kept unconditionally.
	MinTokenLength int
	// KeepTwoLetterWords keeps pure two-letter lowercase tokens ("vr", "ce")
	// that fall under MinTokenLength.
	KeepTwoLetterWords bool
}

// DefaultOptions keeps tokens of 3+ characters plus two-letter words.
func DefaultOptions() Options {
	return Options{MinTokenLength: DefaultMinTokenLength, KeepTwoLetterWords: true}
}

// Extractor decomposes free text into keywords. It is stateless and safe for
// concurrent use.
type Extractor struct {
	opts Options
}

// NewExtractor creates an extractor. A non-positive MinTokenLength falls back
// to DefaultMinTokenLength.
func NewExtractor(opts Options) *Extractor {
	if opts.MinTokenLength <= 0 {
		opts.MinTokenLength = DefaultMinTokenLength
	}
	return &Extractor{opts: opts}
}

// Extract normalizes text and classifies its tokens. Context words win over
// action words, stop-words are dropped, everything else lands in All only.
// Lists keep first-occurrence order without duplicates.
func (e *Extractor) Extract(text string) KeywordSet {
	var ks KeywordSet
	seen := make(map[string]struct{})

	for _, tok := range strings.Fields(Normalize(text)) {
		if !e.keep(tok) {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}

		switch {
		case contextWords.has(tok):
			ks.Context = append(ks.Context, tok)
		case primaryWords.has(tok):
			ks.Primary = append(ks.Primary, tok)
		case stopWords.has(tok):
			continue
		}
		seen[tok] = struct{}{}
		ks.All = append(ks.All, tok)
	}
	return ks
}

func (e *Extractor) keep(tok string) bool {
	n := utf8.RuneCountInString(tok)
	if n >= e.opts.MinTokenLength {
		return true
	}
	return e.opts.KeepTwoLetterWords && n == 2 && isTwoLetterWord(tok)
}

func isTwoLetterWord(tok string) bool {
	return len(tok) == 2 &&
		tok[0] >= 'a' && tok[0] <= 'z' &&
		tok[1] >= 'a' && tok[1] <= 'z'
}
