package store

import (
	"context"
	"errors"
	"math/rand"
	"sync"
)

// ErrNoQuestions is returned when a random pick is requested from an empty
// pool.
var ErrNoQuestions = errors.New("no questions available")

// QuestionPool is the read-only collaborator supplying questions for new
// rooms.
type QuestionPool interface {
	Count(ctx context.Context) (int, error)
	Random(ctx context.Context) (*Question, error)
}

// MemoryQuestionPool serves questions from a fixed slice.
type MemoryQuestionPool struct {
	mu        sync.RWMutex
	questions []Question
}

func NewMemoryQuestionPool(questions []Question) *MemoryQuestionPool {
	return &MemoryQuestionPool{questions: questions}
}

// NewSeededQuestionPool returns a pool preloaded with the development
// question set.
func NewSeededQuestionPool() *MemoryQuestionPool {
	return NewMemoryQuestionPool(seedQuestions())
}

func (p *MemoryQuestionPool) Count(_ context.Context) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.questions), nil
}

func (p *MemoryQuestionPool) Random(_ context.Context) (*Question, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.questions) == 0 {
		return nil, ErrNoQuestions
	}
	q := p.questions[rand.Intn(len(p.questions))]
	q.TestCases = append([]TestCase(nil), q.TestCases...)
	return &q, nil
}

// All returns a copy of the pool for the REST listing endpoint.
func (p *MemoryQuestionPool) All(_ context.Context) ([]Question, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Question(nil), p.questions...), nil
}

func seedQuestions() []Question {
	return []Question{
		{
			ID:           1,
			Title:        "Two Sum",
			Description:  "Given an array of integers and a target, print the indices of the two numbers that add up to the target.",
			SampleInput:  "4\n2 7 11 15\n9",
			SampleOutput: "0 1",
			TestCases: []TestCase{
				{Input: "4\n2 7 11 15\n9", ExpectedOutput: "0 1"},
				{Input: "3\n3 2 4\n6", ExpectedOutput: "1 2"},
				{Input: "2\n3 3\n6", ExpectedOutput: "0 1"},
			},
			Difficulty: "Easy",
		},
		{
			ID:           2,
			Title:        "Valid Anagram",
			Description:  "Given two strings, print true if the second is an anagram of the first, otherwise false.",
			SampleInput:  "anagram\nnagaram",
			SampleOutput: "true",
			TestCases: []TestCase{
				{Input: "anagram\nnagaram", ExpectedOutput: "true"},
				{Input: "rat\ncar", ExpectedOutput: "false"},
			},
			Difficulty: "Easy",
		},
		{
			ID:           3,
			Title:        "Reverse Binary Tree",
			Description:  "Given the level-order traversal of a binary tree, print the level-order traversal of its mirror image.",
			SampleInput:  "4 2 7 1 3 6 9",
			SampleOutput: "4 7 2 9 6 3 1",
			TestCases: []TestCase{
				{Input: "4 2 7 1 3 6 9", ExpectedOutput: "4 7 2 9 6 3 1"},
				{Input: "2 1 3", ExpectedOutput: "2 3 1"},
			},
			Difficulty: "Medium",
		},
		{
			ID:           4,
			Title:        "Best Time to Buy and Sell Stock",
			Description:  "Given daily prices, print the maximum profit from one buy and one sell.",
			SampleInput:  "6\n7 1 5 3 6 4",
			SampleOutput: "5",
			TestCases: []TestCase{
				{Input: "6\n7 1 5 3 6 4", ExpectedOutput: "5"},
				{Input: "5\n7 6 4 3 1", ExpectedOutput: "0"},
			},
			Difficulty: "Easy",
		},
		{
			ID:           5,
			Title:        "Second Largest Element",
			Description:  "Given an array, print its second largest element, or -1 if none exists.",
			SampleInput:  "5\n12 35 1 10 34",
			SampleOutput: "34",
			TestCases: []TestCase{
				{Input: "5\n12 35 1 10 34", ExpectedOutput: "34"},
				{Input: "3\n10 10 10", ExpectedOutput: "-1"},
			},
			Difficulty: "Easy",
		},
	}
}
