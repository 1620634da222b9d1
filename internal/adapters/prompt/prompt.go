package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bnema/xiq-poe-check/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// ErrQuit is returned when the operator answers q or quit.
var ErrQuit = errors.New("operator quit")

var warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

type Prompter struct {
	in           *bufio.Reader
	out          io.Writer
	readPassword func() (string, error)
}

func New(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{in: bufio.NewReader(in), out: out}
	if file, ok := in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		fd := int(file.Fd())
		p.readPassword = func() (string, error) {
			secret, err := term.ReadPassword(fd)
			_, _ = fmt.Fprintln(out)
			return string(secret), err
		}
	}

	return p
}

func (p *Prompter) Line(label string) (string, error) {
	if _, err := fmt.Fprint(p.out, label); err != nil {
		return "", err
	}

	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSpace(strings.TrimSuffix(label, ":")), err)
	}

	return strings.TrimSpace(line), nil
}

// Password does not echo when input is a terminal.
func (p *Prompter) Password(label string) (string, error) {
	if p.readPassword == nil {
		return p.Line(label)
	}
	if _, err := fmt.Fprint(p.out, label); err != nil {
		return "", err
	}

	return p.readPassword()
}

func (p *Prompter) Credentials() (domain.Credentials, error) {
	if _, err := fmt.Fprintln(p.out, "Enter your XIQ login credentials"); err != nil {
		return domain.Credentials{}, err
	}
	username, err := p.Line("Email: ")
	if err != nil {
		return domain.Credentials{}, err
	}
	password, err := p.Password("Password: ")
	if err != nil {
		return domain.Credentials{}, err
	}

	return domain.Credentials{Username: username, Password: password}, nil
}

func (p *Prompter) YesNo(question string) (bool, error) {
	for {
		answer, err := p.Line(question + " (y/n) ")
		if err != nil {
			return false, err
		}

		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		case "q", "quit":
			return false, ErrQuit
		}
	}
}

// SelectAccount lists accounts then current as the last choice.
func (p *Prompter) SelectAccount(accounts []domain.Account, current domain.Account) (domain.Account, error) {
	last := len(accounts)
	for {
		lines := []string{"", "Which VIQ would you like to run the check against?"}
		for i, account := range accounts {
			lines = append(lines, fmt.Sprintf("   %d. %s", i, account.Name))
		}
		lines = append(lines, fmt.Sprintf("   %d. %s (This is your main account)", last, current.Name), "")
		if _, err := fmt.Fprintln(p.out, strings.Join(lines, "\n")); err != nil {
			return domain.Account{}, err
		}

		answer, err := p.Line(fmt.Sprintf("Please enter 0 - %d: ", last))
		if err != nil {
			return domain.Account{}, err
		}

		selection, err := strconv.Atoi(answer)
		if err != nil || selection < 0 || selection > last {
			if _, err := fmt.Fprintln(p.out, warnStyle.Render("Please enter a valid response!!")); err != nil {
				return domain.Account{}, err
			}
			continue
		}
		if selection == last {
			return current, nil
		}

		return accounts[selection], nil
	}
}
