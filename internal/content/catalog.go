package content

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// Catalog is the curriculum: per-subject diagnostic topics and question banks.
type Catalog struct {
	Subjects map[string]SubjectCatalog `yaml:"subjects"`
}

type SubjectCatalog struct {
	DiagnosticTopics []string              `yaml:"diagnostic_topics"`
	Topics           map[string][]Question `yaml:"topics"`
}

// DefaultCatalog parses the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(embeddedCatalog)
}

// LoadCatalog reads a YAML catalog from path, or the embedded one when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("content: read catalog: %w", err)
	}
	return ParseCatalog(buf)
}

func ParseCatalog(buf []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(buf, &c); err != nil {
		return nil, fmt.Errorf("content: parse catalog: %w", err)
	}
	if c.Subjects == nil {
		c.Subjects = map[string]SubjectCatalog{}
	}
	return &c, nil
}

// DiagnosticTopics lists the topics seeded after a diagnostic. Unknown
// subjects get a single "introduction" topic.
func (c *Catalog) DiagnosticTopics(subject string) []string {
	sc, ok := c.Subjects[subject]
	if !ok || len(sc.DiagnosticTopics) == 0 {
		return []string{"introduction"}
	}
	return append([]string(nil), sc.DiagnosticTopics...)
}

// Questions returns the bank for subject/topic in catalog order.
func (c *Catalog) Questions(subject, topic string) []Question {
	sc, ok := c.Subjects[subject]
	if !ok {
		return nil
	}
	return append([]Question(nil), sc.Topics[topic]...)
}
