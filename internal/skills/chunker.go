package skills

import (
	"strings"
	"unicode"
)

// Chunker splits text into candidate noun phrases.
type Chunker interface {
	Chunk(text string) []string
}

// chunkStopWords break a phrase. Verbs and function words common in resumes are included so
// that "experienced with machine learning" yields "machine learning".
var chunkStopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "of": true, "in": true,
	"on": true, "for": true, "with": true, "to": true, "at": true, "by": true, "from": true,
	"as": true, "is": true, "are": true, "was": true, "were": true, "be": true, "been": true,
	"i": true, "we": true, "my": true, "our": true, "this": true, "that": true, "using": true,
	"used": true, "use": true, "experienced": true, "experience": true, "proficient": true,
	"knowledge": true, "familiar": true, "skilled": true, "strong": true, "including": true,
	"also": true, "such": true, "like": true, "into": true, "via": true, "have": true, "has": true,
}

// PhraseChunker is a heuristic noun-phrase chunker: phrases are maximal runs of tokens between
// punctuation and stop words. Every contiguous sub-run of a phrase is emitted too, so both
// "machine learning" and "learning" come out of "machine learning". It has no state.
type PhraseChunker struct {
	// MaxWords bounds the sub-run length. Zero means 4.
	MaxWords int
}

func (c PhraseChunker) Chunk(text string) []string {
	maxWords := c.MaxWords
	if maxWords <= 0 {
		maxWords = 4
	}

	var phrases []string
	var run []string
	flush := func() {
		for i := range run {
			for j := i + 1; j <= len(run) && j-i <= maxWords; j++ {
				phrases = append(phrases, strings.Join(run[i:j], " "))
			}
		}
		run = run[:0]
	}

	for _, field := range strings.Fields(strings.ToLower(text)) {
		// Sentence punctuation closes a phrase, but keep tech suffixes such as c++, c#, node.js.
		closes := strings.IndexFunc(field, func(r rune) bool { return r == ',' || r == ';' || r == ':' || r == '|' || r == '(' || r == ')' }) != -1
		token := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
		})
		if strings.HasSuffix(field, ".") && !strings.Contains(strings.TrimSuffix(field, "."), ".") {
			closes = true
		}

		if token == "" || chunkStopWords[token] {
			flush()
			continue
		}
		run = append(run, token)
		if closes {
			flush()
		}
	}
	flush()

	return phrases
}
