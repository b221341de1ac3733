package sememe

import "slices"

// GlossEntry is one sense of a word: its part of speech and the sememes
// that define it, in file order.
type GlossEntry struct {
	Word         string
	PartOfSpeech string
	Sememes      []string
}

// Glossary maps words to their senses. Entries keep file order, so walking
// them reproduces the resource line by line even when a word's senses are
// not adjacent.
type Glossary struct {
	entries []GlossEntry
	byWord  map[string][]int
	words   []string
}

// NewGlossary creates an empty glossary.
func NewGlossary() *Glossary {
	return &Glossary{byWord: make(map[string][]int)}
}

// Add appends a sense for entry.Word.
func (g *Glossary) Add(entry GlossEntry) {
	idx, seen := g.byWord[entry.Word]
	if !seen {
		g.words = append(g.words, entry.Word)
	}
	g.byWord[entry.Word] = append(idx, len(g.entries))
	g.entries = append(g.entries, entry)
}

// Senses returns copies of the senses of word in file order.
func (g *Glossary) Senses(word string) ([]GlossEntry, bool) {
	idx, ok := g.byWord[word]
	if !ok {
		return nil, false
	}
	out := make([]GlossEntry, len(idx))
	for i, j := range idx {
		e := g.entries[j]
		e.Sememes = slices.Clone(e.Sememes)
		out[i] = e
	}
	return out, true
}

// Contains reports whether word has at least one sense.
func (g *Glossary) Contains(word string) bool {
	_, ok := g.byWord[word]
	return ok
}

// Len returns the number of distinct words.
func (g *Glossary) Len() int {
	return len(g.words)
}

// EntryCount returns the number of senses across all words.
func (g *Glossary) EntryCount() int {
	return len(g.entries)
}

// Words returns the distinct words in order of first appearance.
func (g *Glossary) Words() []string {
	return slices.Clone(g.words)
}

// eachEntry calls fn for every sense in file order. fn must not retain or
// modify entry.Sememes.
func (g *Glossary) eachEntry(fn func(entry GlossEntry)) {
	for _, e := range g.entries {
		fn(e)
	}
}

// Equal reports whether both glossaries hold the same senses in the same
// order.
func (g *Glossary) Equal(other *Glossary) bool {
	return slices.EqualFunc(g.entries, other.entries, func(a, b GlossEntry) bool {
		return a.Word == b.Word && a.PartOfSpeech == b.PartOfSpeech && slices.Equal(a.Sememes, b.Sememes)
	})
}
