package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// Vocabulary lists the verbs that open an instruction clause and the unit
// words a numeral attaches to.
type Vocabulary struct {
	Verbs []string `yaml:"verbs"`
	Units []string `yaml:"units"`
}

// LoadVocabulary loads a parser vocabulary from a YAML file
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}

	return &v, nil
}

// Settings holds runtime settings for the recast tools.
type Settings struct {
	CataloguePath  string        `yaml:"catalogue"      env:"RECAST_CATALOGUE"`
	LexiconPath    string        `yaml:"lexicon"        env:"RECAST_LEXICON"`
	VocabularyPath string        `yaml:"vocabulary"     env:"RECAST_VOCABULARY"`
	ConceptNetURL  string        `yaml:"conceptnet_url" env:"RECAST_CONCEPTNET_URL"`
	OracleTimeout  time.Duration `yaml:"oracle_timeout" env:"RECAST_ORACLE_TIMEOUT" env-default:"3s"`
	CacheSize      int           `yaml:"cache_size"     env:"RECAST_CACHE_SIZE"     env-default:"4096"`
	DBPath         string        `yaml:"db"             env:"RECAST_DB"`
	Seed           int64         `yaml:"seed"           env:"RECAST_SEED"`
	Concurrent     bool          `yaml:"concurrent"     env:"RECAST_CONCURRENT"     env-default:"true"`
}

// LoadSettings reads settings from a YAML file, or from the environment when
// path is empty. Environment variables override file values.
func LoadSettings(path string) (*Settings, error) {
	var s Settings
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("settings: file %s not found", path)
		}
		if err := cleanenv.ReadConfig(path, &s); err != nil {
			return nil, fmt.Errorf("settings: %w", err)
		}
		return &s, nil
	}
	if err := cleanenv.ReadEnv(&s); err != nil {
		return nil, fmt.Errorf("settings: read env: %w", err)
	}
	return &s, nil
}

// Loader returns a Loader for the configured component files.
func (s *Settings) Loader() Loader {
	return Loader{
		CataloguePath:  s.CataloguePath,
		LexiconPath:    s.LexiconPath,
		VocabularyPath: s.VocabularyPath,
	}
}
