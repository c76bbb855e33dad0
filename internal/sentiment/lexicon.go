package sentiment

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"strconv"
	"strings"
)

//go:embed lexicon.txt
var defaultLexiconAsset []byte

// Lexicon maps lowercase words to valence values on a -4..4 scale.
// The version string identifies the asset so classifications can be
// reproduced byte-for-byte against a known lexicon revision.
type Lexicon struct {
	Version  string
	valences map[string]float64
}

// Len returns the number of scored words in the lexicon.
func (l *Lexicon) Len() int {
	if l == nil {
		return 0
	}
	return len(l.valences)
}

// ParseLexicon reads a lexicon asset: an optional leading comment block
// (the first comment line doubles as the version string), then one
// word<TAB>valence entry per line.
func ParseLexicon(data []byte) (*Lexicon, error) {
	lex := &Lexicon{valences: make(map[string]float64)}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if lex.Version == "" {
				lex.Version = strings.TrimSpace(strings.TrimPrefix(line, "#"))
			}
			continue
		}

		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("lexicon line %d: expected word<TAB>valence, got %q", lineNo, line)
		}
		valence, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("lexicon line %d: invalid valence: %w", lineNo, err)
		}
		lex.valences[strings.ToLower(strings.TrimSpace(parts[0]))] = valence
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lexicon: %w", err)
	}

	return lex, nil
}

// DefaultLexicon parses the lexicon asset compiled into the binary.
func DefaultLexicon() (*Lexicon, error) {
	return ParseLexicon(defaultLexiconAsset)
}
