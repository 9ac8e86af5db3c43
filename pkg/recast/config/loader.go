package config

import (
	"fmt"

	"github.com/cognicore/recast/pkg/recast/catalogue"
	"github.com/cognicore/recast/pkg/recast/depparse"
	"github.com/cognicore/recast/pkg/recast/oracle/lexical"
)

// Loader loads all configuration files and constructs components.
// An empty path selects the built-in default for that component.
type Loader struct {
	CataloguePath  string
	LexiconPath    string
	VocabularyPath string
}

// Components holds all loaded configuration components
type Components struct {
	Catalogue *catalogue.Catalogue
	Lexicon   *lexical.Lexicon
	Parser    *depparse.Shallow
}

// Load reads all configuration files and returns initialized components
func (l *Loader) Load() (*Components, error) {
	comp := &Components{}

	// Load catalogue
	if l.CataloguePath != "" {
		cat, err := catalogue.Load(l.CataloguePath)
		if err != nil {
			return nil, fmt.Errorf("load catalogue: %w", err)
		}
		comp.Catalogue = cat
	} else {
		comp.Catalogue = catalogue.Default()
	}

	// Load lexicon
	if l.LexiconPath != "" {
		lex, err := lexical.LoadFromYAML(l.LexiconPath)
		if err != nil {
			return nil, fmt.Errorf("load lexicon: %w", err)
		}
		comp.Lexicon = lex
	} else {
		comp.Lexicon = lexical.Default()
	}

	// Load parser vocabulary
	if l.VocabularyPath != "" {
		vocab, err := LoadVocabulary(l.VocabularyPath)
		if err != nil {
			return nil, fmt.Errorf("load vocabulary: %w", err)
		}
		comp.Parser = depparse.NewShallow(vocab.Verbs, vocab.Units)
	} else {
		comp.Parser = depparse.NewShallow(nil, nil)
	}

	return comp, nil
}
