package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// linePrompter implements form.Prompter on a line-oriented terminal. Imports
// run in parallel, so questions are serialized and each carries the name of
// the file it is about.
type linePrompter struct {
	mu      *sync.Mutex
	in      *bufio.Reader
	out     io.Writer
	label   string
	autoYes bool
}

func newPromptGroup(in io.Reader, out io.Writer, autoYes bool) func(label string) *linePrompter {
	mu := &sync.Mutex{}
	reader := bufio.NewReader(in)
	return func(label string) *linePrompter {
		return &linePrompter{mu: mu, in: reader, out: out, label: label, autoYes: autoYes}
	}
}

// Confirm implements form.Prompter. Anything but y or yes declines.
func (p *linePrompter) Confirm(msg string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.autoYes {
		fmt.Fprintf(p.out, "[%s] %s yes\n", p.label, msg)
		return true
	}

	fmt.Fprintf(p.out, "[%s] %s [y/N] ", p.label, msg)
	answer, err := p.in.ReadString('\n')
	if err != nil && answer == "" {
		fmt.Fprintln(p.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "s", "si", "sí":
		return true
	}
	return false
}

// Alert implements form.Prompter.
func (p *linePrompter) Alert(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, line := range strings.Split(msg, "\n") {
		fmt.Fprintf(p.out, "[%s] %s\n", p.label, line)
	}
}
