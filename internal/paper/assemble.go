package paper

// Section labels in fixed order: short, medium, long.
const (
	ShortAnswerLabel  = "Section A: Short Answer Questions"
	MediumAnswerLabel = "Section B: Medium Answer Questions"
	LongAnswerLabel   = "Section C: Long Answer Questions"
)

// Marks bands for sectioning.
const (
	shortAnswerMax  = 3
	mediumAnswerMax = 7
)

// Assemble groups questions into sections by marks band. Questions worth at
// most 3 marks go to the short-answer section, 4-7 to medium, 8 and above
// to long. Empty sections are omitted; section order is fixed regardless of
// input order; question numbering is never altered.
func Assemble(questions []Question, setName string) Paper {
	var short, medium, long []Question
	totalMarks := 0
	for _, q := range questions {
		totalMarks += q.Marks
		switch {
		case q.Marks <= shortAnswerMax:
			short = append(short, q)
		case q.Marks <= mediumAnswerMax:
			medium = append(medium, q)
		default:
			long = append(long, q)
		}
	}

	p := Paper{
		SetName:        setName,
		TotalMarks:     totalMarks,
		TotalQuestions: len(questions),
	}
	if len(short) > 0 {
		p.Sections = append(p.Sections, Section{Label: ShortAnswerLabel, Questions: short})
	}
	if len(medium) > 0 {
		p.Sections = append(p.Sections, Section{Label: MediumAnswerLabel, Questions: medium})
	}
	if len(long) > 0 {
		p.Sections = append(p.Sections, Section{Label: LongAnswerLabel, Questions: long})
	}
	return p
}
