package scaffold

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/starford/quire/internal/apperr"
)

// Session asks the operator for entry details, one line per prompt.
type Session struct {
	in  *bufio.Reader
	out io.Writer
}

// NewSession creates a session reading answers from r and writing prompts to w.
func NewSession(r io.Reader, w io.Writer) *Session {
	return &Session{in: bufio.NewReader(r), out: w}
}

// ask prints label and reads one line. End of input ends the answer; a
// closed stream yields an empty answer rather than an error.
func (s *Session) ask(label string) (string, error) {
	fmt.Fprint(s.out, label)
	line, err := s.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading %q: %w", strings.TrimSpace(label), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// PromptTitle reads the title. Blank answers are rejected with ErrEmptyInput.
func (s *Session) PromptTitle() (string, error) {
	title, err := s.ask("Title: ")
	if err != nil {
		return "", err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: a title is required to derive the file name", apperr.ErrEmptyInput)
	}
	return title, nil
}

// PromptDescription reads the description. An empty description is allowed.
func (s *Session) PromptDescription() (string, error) {
	desc, err := s.ask("Description: ")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(desc), nil
}

// PromptTags reads a comma-separated tag list.
func (s *Session) PromptTags() ([]string, error) {
	line, err := s.ask("Tags (comma-separated): ")
	if err != nil {
		return nil, err
	}
	return ParseTags(line), nil
}
