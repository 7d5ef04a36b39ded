package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhishektayde15/argo-chatbot-rag/internal/domain"
	"github.com/abhishektayde15/argo-chatbot-rag/internal/logger"
)

// DiagnosticMarker prefixes every answer that reports a failure instead of
// generated text.
const DiagnosticMarker = "[argo-rag error]"

const promptTemplate = `You are an expert oceanographer. Use only the following context to answer the user's question.
If the context does not contain the answer, say that you cannot provide information on that topic.

Context:
%s

Question:
%s

Answer:
`

// Searcher is the retrieval side the Composer depends on.
type Searcher interface {
	Retrieve(ctx context.Context, query string, k int) ([]domain.SearchResult, error)
}

// QueryContext is everything produced while answering one question.
type QueryContext struct {
	Question string
	Results  []domain.SearchResult
	Prompt   string
	Answer   string
	// Err is set when Answer is a diagnostic.
	Err error
}

// Composer answers questions from retrieved context.
type Composer struct {
	searcher  Searcher
	generator domain.Generator
	k         int
}

func NewComposer(searcher Searcher, generator domain.Generator, k int) *Composer {
	return &Composer{searcher: searcher, generator: generator, k: k}
}

// BuildPrompt joins the context texts nearest first and fills the template.
func BuildPrompt(question string, contexts []string) string {
	return fmt.Sprintf(promptTemplate, strings.Join(contexts, "\n"), question)
}

// Ask runs retrieval and generation. It never fails: on error the returned
// Answer is a diagnostic starting with DiagnosticMarker and Err is set.
func (c *Composer) Ask(ctx context.Context, question string) QueryContext {
	qc := QueryContext{Question: question}

	logger.Debug("retrieving context for %q", question)
	results, err := c.searcher.Retrieve(ctx, question, c.k)
	if err != nil {
		qc.Err = err
		qc.Answer = fmt.Sprintf("%s retrieving context failed: %v", DiagnosticMarker, err)
		return qc
	}
	qc.Results = results
	qc.Prompt = BuildPrompt(question, Texts(results))

	logger.Debug("generating answer with %s from %d documents", c.generator.Name(), len(results))
	answer, err := c.generator.Generate(ctx, qc.Prompt)
	if err != nil {
		qc.Err = domain.Wrap("generate answer", domain.ErrGenerationBackend, err)
		qc.Answer = fmt.Sprintf("%s could not get an answer from %s: %v. Make sure the backend is running and the model is available.",
			DiagnosticMarker, c.generator.Name(), err)
		return qc
	}
	qc.Answer = answer
	return qc
}

// Answer returns only the answer text of Ask.
func (c *Composer) Answer(ctx context.Context, question string) string {
	return c.Ask(ctx, question).Answer
}
