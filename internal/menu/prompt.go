package menu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

const rule = "============================="

// errInputClosed marks a prompt that got no answer because the input ended
var errInputClosed = errors.New("input closed")

// prompter reads one answer per line. Every question is written before the
// read, so a transcript of out reads like a terminal session.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewScanner(in), out: out}
}

// ask prints label and returns the trimmed answer. io.EOF means the input
// is exhausted.
func (p *prompter) ask(label string) (string, error) {
	fmt.Fprint(p.out, label)
	if !p.in.Scan() {
		fmt.Fprintln(p.out)
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}

func (p *prompter) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

func (p *prompter) println(args ...any) {
	fmt.Fprintln(p.out, args...)
}

func (p *prompter) header(title string) {
	p.println(rule)
	p.println(title)
	p.println(rule)
}

// confirm asks a Yes/No question until one of the two is chosen
func (p *prompter) confirm(title, question string) (bool, error) {
	for {
		p.header(title)
		p.println(question)
		p.println("  [1] Yes")
		p.println("  [2] No")
		answer, err := p.ask("Select an option: ")
		if err != nil {
			return false, err
		}
		switch answer {
		case "1":
			return true, nil
		case "2":
			return false, nil
		default:
			p.println("Invalid option. Please try again.")
		}
	}
}

func inputErr(err error) error {
	return fmt.Errorf("%w: %w", errInputClosed, err)
}

func isInputErr(err error) bool {
	return errors.Is(err, errInputClosed) || errors.Is(err, io.EOF)
}
