package handlers

import (
	"net/http"

	"github.com/Thamizhanban2006/code-clash/internal/store"
	"github.com/Thamizhanban2006/code-clash/pkg/common/response"
)

type questionSummary struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	SampleInput  string `json:"sampleInput"`
	SampleOutput string `json:"sampleOutput"`
	Difficulty   string `json:"difficulty"`
	TestCount    int    `json:"testCount"`
}

// ListQuestionsHandler lists the question pool without the hidden expected
// outputs.
func (hr *HandlerRepo) ListQuestionsHandler(w http.ResponseWriter, r *http.Request) {
	questions, err := hr.questions.All(r.Context())
	if err != nil {
		response.JSON(w, http.StatusInternalServerError, nil, true, err.Error())
		return
	}

	summaries := make([]questionSummary, 0, len(questions))
	for _, q := range questions {
		summaries = append(summaries, summarize(q))
	}

	response.JSON(w, http.StatusOK, summaries, false, "")
}

func summarize(q store.Question) questionSummary {
	return questionSummary{
		ID:           q.ID,
		Title:        q.Title,
		Description:  q.Description,
		SampleInput:  q.SampleInput,
		SampleOutput: q.SampleOutput,
		Difficulty:   q.Difficulty,
		TestCount:    len(q.TestCases),
	}
}
