package prompt

import (
	"context"
	"fmt"
	"sync"
)

// Static answers prompts from a fixed list, in order.
type Static struct {
	mu      sync.Mutex
	answers []string
	asked   []string
}

func NewStatic(answers ...string) *Static {
	return &Static{answers: answers}
}

func (s *Static) Prompt(ctx context.Context, message string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.asked = append(s.asked, message)
	if len(s.answers) == 0 {
		return "", fmt.Errorf("no answer left for prompt %q", message)
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

// Asked returns the messages prompted so far
func (s *Static) Asked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.asked...)
}
