// Package prompt renders the summary, answer and quiz prompts from text templates.
// Each template can be replaced by a file so prompt wording can be tuned per model
// without a rebuild.
package prompt

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"github.com/hyperjump/docquiz/internal/config"
)

// Labels of the two-line quiz format. The quiz parser splits model output on them.
const (
	QuestionLabel = "Question:"
	AnswerLabel   = "Answer:"
)

// DefaultAnswerInstructions is the grounding instruction appended to answer prompts.
const DefaultAnswerInstructions = "Answer using only the context and cite the part used."

const (
	defaultSummary = "Summarize this:\n{{.Chunk}}"
	defaultAnswer  = "Context:\n{{.Context}}\n\nQuestion: {{.Question}}\n{{.Instructions}}"
	defaultQuiz    = "From the following text, create ONE logic-based question and its answer:\n\n" +
		"{{.Context}}\n\nFormat:\n{{.QuestionLabel}} ...\n{{.AnswerLabel}} ..."
)

// SummaryData fills the summary template.
type SummaryData struct {
	Chunk string
}

// AnswerData fills the answer template.
type AnswerData struct {
	Context      string
	Question     string
	Instructions string
}

// QuizData fills the quiz template.
type QuizData struct {
	Context       string
	QuestionLabel string
	AnswerLabel   string
}

// Templates holds the three parsed prompt templates.
type Templates struct {
	summary *template.Template
	answer  *template.Template
	quiz    *template.Template
}

// Defaults returns the built-in templates.
func Defaults() *Templates {
	return &Templates{
		summary: template.Must(template.New("summary").Parse(defaultSummary)),
		answer:  template.Must(template.New("answer").Parse(defaultAnswer)),
		quiz:    template.Must(template.New("quiz").Parse(defaultQuiz)),
	}
}

// Load returns the built-in templates with any file overrides from cfg applied.
// An override that cannot be read, parsed, or rendered with sample data is an error.
func Load(cfg config.PromptsConfig) (*Templates, error) {
	t := Defaults()
	overrides := []struct {
		name   string
		path   string
		target **template.Template
		sample any
	}{
		{"summary", cfg.Summary, &t.summary, SummaryData{Chunk: "sample"}},
		{"answer", cfg.Answer, &t.answer, AnswerData{Context: "sample", Question: "sample?", Instructions: DefaultAnswerInstructions}},
		{"quiz", cfg.Quiz, &t.quiz, QuizData{Context: "sample", QuestionLabel: QuestionLabel, AnswerLabel: AnswerLabel}},
	}
	for _, o := range overrides {
		if o.path == "" {
			continue
		}
		data, err := os.ReadFile(o.path)
		if err != nil {
			return nil, fmt.Errorf("read %s prompt: %w", o.name, err)
		}
		tmpl, err := template.New(o.name).Option("missingkey=error").Parse(string(data))
		if err != nil {
			return nil, fmt.Errorf("parse %s prompt %s: %w", o.name, o.path, err)
		}
		if err := tmpl.Execute(&bytes.Buffer{}, o.sample); err != nil {
			return nil, fmt.Errorf("check %s prompt %s: %w", o.name, o.path, err)
		}
		*o.target = tmpl
	}
	return t, nil
}

// Summary renders the per-chunk summary prompt.
func (t *Templates) Summary(chunk string) (string, error) {
	return render(t.summary, SummaryData{Chunk: chunk})
}

// Answer renders the grounded answer prompt.
func (t *Templates) Answer(context, question string) (string, error) {
	return render(t.answer, AnswerData{
		Context:      context,
		Question:     question,
		Instructions: DefaultAnswerInstructions,
	})
}

// Quiz renders the question-generation prompt.
func (t *Templates) Quiz(context string) (string, error) {
	return render(t.quiz, QuizData{
		Context:       context,
		QuestionLabel: QuestionLabel,
		AnswerLabel:   AnswerLabel,
	})
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
