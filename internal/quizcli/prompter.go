package quizcli

import (
	"context"

	"github.com/dustin/go-humanize"

	"github.com/okian/pcbvalues/internal/submit"
)

// terminalPrompter answers submit.Prompter questions on the terminal.
type terminalPrompter struct {
	a     *app
	takes int
}

func (p *terminalPrompter) AskName(context.Context) (string, bool) {
	p.a.printf("Name to submit under (empty line cancels): ")
	line, err := p.a.readLine()
	if err != nil || line == "" {
		return "", false
	}
	return line, true
}

func (p *terminalPrompter) ConfirmName(_ context.Context, name string) bool {
	return p.a.confirm("Submit your result as " + titleStyle.Render(name) + "?")
}

func (p *terminalPrompter) ConfirmResubmit(context.Context) bool {
	return p.a.confirm("This would be your " + humanize.Ordinal(p.takes+1) + " submission. Submit again?")
}

func (p *terminalPrompter) ConfirmOverride(_ context.Context, conflict *submit.ConflictError) bool {
	msg := conflict.Message
	if msg == "" {
		msg = conflict.Error()
	}
	p.a.printf("%s\n", warningStyle.Render(msg))
	if conflict.Existing != nil {
		p.a.printf("%s\n", mutedStyle.Render("Stored: "+formatStats(conflict.Existing.Stats)))
	}
	return p.a.confirm("Override the stored score?")
}
