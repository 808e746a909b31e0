package intent

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wismo-agent/server/internal/agent/model"
)

//go:embed vocab.yaml
var defaultVocabYAML []byte

// KeywordRule maps substring matches to an intent. All terms in All must
// appear; when Any is non-empty at least one of its terms must appear too.
type KeywordRule struct {
	Intent string   `yaml:"intent"`
	All    []string `yaml:"all,omitempty"`
	Any    []string `yaml:"any,omitempty"`
}

func (r KeywordRule) matches(lowered string) bool {
	if len(r.All) == 0 && len(r.Any) == 0 {
		return false
	}
	for _, term := range r.All {
		if !strings.Contains(lowered, term) {
			return false
		}
	}
	if len(r.Any) == 0 {
		return true
	}
	for _, term := range r.Any {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

// Vocabulary is an ordered rule list with a default intent. Order matters:
// the first matching rule decides.
type Vocabulary struct {
	Rules   []KeywordRule `yaml:"rules"`
	Default string        `yaml:"default"`
}

// Match classifies the message, falling back to the default intent.
func (v *Vocabulary) Match(message string) model.Intent {
	lowered := strings.ToLower(message)
	for _, rule := range v.Rules {
		if rule.matches(lowered) {
			intent, _ := model.ParseIntent(rule.Intent)
			return intent
		}
	}
	intent, _ := model.ParseIntent(v.Default)
	return intent
}

func (v *Vocabulary) validate() error {
	if _, ok := model.ParseIntent(v.Default); !ok {
		return fmt.Errorf("vocabulary default %q is not a known intent", v.Default)
	}
	for i, rule := range v.Rules {
		if _, ok := model.ParseIntent(rule.Intent); !ok {
			return fmt.Errorf("vocabulary rule %d intent %q is not a known intent", i, rule.Intent)
		}
		if len(rule.All) == 0 && len(rule.Any) == 0 {
			return fmt.Errorf("vocabulary rule %d (%s) has no terms", i, rule.Intent)
		}
	}
	return nil
}

// ParseVocabulary decodes and validates a YAML vocabulary.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode vocabulary: %w", err)
	}
	if err := v.validate(); err != nil {
		return nil, err
	}
	return &v, nil
}

// LoadVocabulary reads a vocabulary override from disk.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary %s: %w", path, err)
	}
	return ParseVocabulary(data)
}

// DefaultVocabulary returns the embedded vocabulary. The embed is validated
// at startup, so a broken default is a programming error.
func DefaultVocabulary() *Vocabulary {
	v, err := ParseVocabulary(defaultVocabYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded vocabulary is invalid: %v", err))
	}
	return v
}
