// Package console implements a line-oriented terminal respondent.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/charmbracelet/lipgloss"

	"github.com/ahrav/go-lifewheel/internal/domain"
	"github.com/ahrav/go-lifewheel/internal/ports"
)

var _ ports.Respondent = (*Respondent)(nil)

// styles holds the terminal styles. Colors are dropped automatically when
// the output is not a terminal.
type styles struct {
	header lipgloss.Style
	choice lipgloss.Style
	hint   lipgloss.Style
	errMsg lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		header: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		choice: r.NewStyle().Foreground(lipgloss.Color("#04B575")),
		hint:   r.NewStyle().Faint(true),
		errMsg: r.NewStyle().Foreground(lipgloss.Color("#FF5F87")),
	}
}

// Respondent reads answers from a line-based input, typically the
// terminal. Every read honours context cancellation.
type Respondent struct {
	in     io.Reader
	out    io.Writer
	styles styles

	once  sync.Once
	lines chan string
	// readErr is set before lines is closed.
	readErr error
}

// NewRespondent creates a Respondent reading from in and printing prompts
// to out.
func NewRespondent(in io.Reader, out io.Writer) *Respondent {
	return &Respondent{
		in:     in,
		out:    out,
		styles: newStyles(lipgloss.NewRenderer(out)),
	}
}

// readLine returns the next trimmed input line. The reader goroutine is
// started on first use and exits when the input ends.
func (r *Respondent) readLine(ctx context.Context) (string, error) {
	r.once.Do(func() {
		r.lines = make(chan string)
		go func() {
			defer close(r.lines)
			scanner := bufio.NewScanner(r.in)
			for scanner.Scan() {
				r.lines <- scanner.Text()
			}
			r.readErr = scanner.Err()
		}()
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-r.lines:
		if !ok {
			if r.readErr != nil {
				return "", fmt.Errorf("%w: %w", ports.ErrInputClosed, r.readErr)
			}
			return "", ports.ErrInputClosed
		}
		return strings.TrimSpace(line), nil
	}
}

func (r *Respondent) ask(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)
	return r.readLine(ctx)
}

// Introduce asks for the participant profile. Only the name is required;
// an age that is not a number is asked again.
func (r *Respondent) Introduce(ctx context.Context) (domain.Participant, error) {
	fmt.Fprintln(r.out, r.styles.header.Render("基本資料"))

	var p domain.Participant
	for p.Name == "" {
		name, err := r.ask(ctx, "姓名: ")
		if err != nil {
			return domain.Participant{}, err
		}
		p.Name = name
	}

	var err error
	if p.Job, err = r.ask(ctx, "職業: "); err != nil {
		return domain.Participant{}, err
	}
	if p.Gender, err = r.ask(ctx, "性別: "); err != nil {
		return domain.Participant{}, err
	}
	if p.Birthday, err = r.ask(ctx, "生日 (YYYY/MM/DD): "); err != nil {
		return domain.Participant{}, err
	}

	for {
		age, err := r.ask(ctx, "年齡: ")
		if err != nil {
			return domain.Participant{}, err
		}
		if age == "" {
			break
		}
		n, convErr := strconv.Atoi(age)
		if convErr == nil && n >= 0 {
			p.Age = n
			break
		}
		fmt.Fprintln(r.out, r.styles.errMsg.Render("請輸入數字"))
	}
	return p, nil
}

// Choose prints both items and accepts "1", "2" or the item itself. Any
// other input is reported as ports.ErrInvalidAnswer.
func (r *Respondent) Choose(ctx context.Context, q ports.Question) (string, error) {
	fmt.Fprintln(r.out)
	header := fmt.Sprintf("第 %d 題", q.Number)
	if q.Category != "" {
		header += "  [" + q.Category + "]"
	}
	fmt.Fprintln(r.out, r.styles.header.Render(header))
	fmt.Fprintln(r.out, q.Prompt)
	fmt.Fprintf(r.out, "  1) %s\n", r.styles.choice.Render(q.Left))
	fmt.Fprintf(r.out, "  2) %s\n", r.styles.choice.Render(q.Right))

	answer, err := r.ask(ctx, "> ")
	if err != nil {
		return "", err
	}
	switch answer {
	case "1", q.Left:
		return q.Left, nil
	case "2", q.Right:
		return q.Right, nil
	}
	fmt.Fprintln(r.out, r.styles.errMsg.Render("請輸入 1 或 2"))
	return "", fmt.Errorf("%w: %q", ports.ErrInvalidAnswer, answer)
}

// Associate asks for req.Count keywords on one line, separated by commas,
// enumeration commas or spaces.
func (r *Respondent) Associate(ctx context.Context, req ports.AssociationRequest) ([]string, error) {
	if req.Rejection != nil {
		fmt.Fprintln(r.out, r.styles.errMsg.Render("✗ "+req.Rejection.Error()))
	} else {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, r.styles.header.Render(req.Category))
	}
	fmt.Fprintln(r.out, r.styles.hint.Render(
		fmt.Sprintf("請輸入與「%s」相關的 %d 個關鍵字，以逗號或空白分隔", req.Category, req.Count)))

	line, err := r.ask(ctx, "> ")
	if err != nil {
		return nil, err
	}
	return splitKeywords(line), nil
}

// splitKeywords splits a line on ASCII and full-width separators.
func splitKeywords(line string) []string {
	return strings.FieldsFunc(line, func(c rune) bool {
		switch c {
		case ',', '，', '、', ';', '；':
			return true
		}
		return unicode.IsSpace(c)
	})
}
