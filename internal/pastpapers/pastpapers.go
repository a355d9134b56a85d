// Package pastpapers loads historical examination papers from YAML files
// and XLSX workbooks for pattern analysis and novelty seeding.
package pastpapers

// Question is one question record from a past paper.
type Question struct {
	Text  string `yaml:"question" json:"question"`
	Marks int    `yaml:"marks" json:"marks"`
	Level string `yaml:"bloom_level" json:"bloom_level"`
	Topic string `yaml:"topic" json:"topic"`
}

// Paper is a historical examination paper.
type Paper struct {
	Name      string     `yaml:"name" json:"name"`
	Year      int        `yaml:"year" json:"year"`
	Questions []Question `yaml:"questions" json:"questions"`
}

// QuestionTexts returns every non-empty question text across the papers.
func QuestionTexts(papers []Paper) []string {
	var texts []string
	for _, p := range papers {
		for _, q := range p.Questions {
			if q.Text != "" {
				texts = append(texts, q.Text)
			}
		}
	}
	return texts
}
