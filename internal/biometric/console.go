package biometric

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
)

// ConsoleProvider stands in for platform biometry on terminals: the prompt
// is a yes/no confirmation. Useful for the CLI and for local development.
type ConsoleProvider struct {
	reader *bufio.Reader
	writer io.Writer
}

func NewConsoleProvider(r io.Reader, w io.Writer) *ConsoleProvider {
	return &ConsoleProvider{reader: bufio.NewReader(r), writer: w}
}

func (p *ConsoleProvider) Capabilities(ctx context.Context) (Capabilities, error) {
	return Capabilities{HasHardware: true, IsEnrolled: true, SupportedTypes: []string{"console"}}, nil
}

func (p *ConsoleProvider) Prompt(ctx context.Context, message string) error {
	if _, err := fmt.Fprintf(p.writer, "%s [y/N]: ", message); err != nil {
		return err
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && !(err == io.EOF && len(line) > 0) {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return nil
	default:
		return common.ErrPromptDismissed
	}
}
