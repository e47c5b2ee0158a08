package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"opsreports/internal/dataprocessing"
	apperrors "opsreports/internal/errors"
)

// ErrNoInput is returned when the input stream ends before an answer.
var ErrNoInput = errors.New("no input")

// DateModeMenu lists the date selection modes in prompt order.
var DateModeMenu = []string{
	"Año",
	"Mes",
	"Día",
	"Desde (dia/mes/año) hasta (dia/mes/año)",
	"Desde (dia/mes/año) hasta hoy",
}

// Prompter reads answers line by line and writes prompts to out.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPrompter creates a prompter over an input and an output stream.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

// Ask writes prompt and returns the next trimmed line.
func (p *Prompter) Ask(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", fmt.Errorf("failed to read answer: %w", err)
		}
		return "", ErrNoInput
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// Option prints a numbered menu and returns the 1-based choice. Range
// checking is left to the caller.
func (p *Prompter) Option(title string, menu []string) (int, error) {
	fmt.Fprintf(p.out, "\n%s\n", title)
	for i, item := range menu {
		fmt.Fprintf(p.out, "  %d. %s\n", i+1, item)
	}

	answer, err := p.Ask("opción: ")
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(answer)
	if err != nil {
		return 0, apperrors.NewAppValidationError(fmt.Sprintf("option %q is not a number", answer), dataprocessing.ErrInvalidOption)
	}
	return n, nil
}

// DateMode asks which of the five date selection modes to use.
func (p *Prompter) DateMode() (dataprocessing.DateMode, error) {
	n, err := p.Option("Seleccione el rango de fechas:", DateModeMenu)
	if err != nil {
		return 0, err
	}
	mode := dataprocessing.DateMode(n)
	if !mode.Valid() {
		return 0, apperrors.NewAppValidationError(fmt.Sprintf("invalid option %d: choose 1-5", n), dataprocessing.ErrInvalidOption)
	}
	return mode, nil
}

// DateInput asks for the text the given mode expects.
func (p *Prompter) DateInput(mode dataprocessing.DateMode) (string, error) {
	prompt, ok := datePrompts[mode]
	if !ok {
		return "", apperrors.NewAppValidationError(fmt.Sprintf("invalid option %d: choose 1-5", int(mode)), dataprocessing.ErrInvalidOption)
	}
	return p.Ask(prompt)
}

var datePrompts = map[dataprocessing.DateMode]string{
	dataprocessing.ModeYear:  "año: ",
	dataprocessing.ModeMonth: "mes/año: ",
	dataprocessing.ModeDay:   "dia/mes/año: ",
	dataprocessing.ModeRange: "dia/mes/año dia/mes/año: ",
	dataprocessing.ModeFrom:  "dia/mes/año: ",
}

// Boundary runs the date prompts and parses the answer with layout.
func (p *Prompter) Boundary(layout string) (dataprocessing.DateBoundary, error) {
	mode, err := p.DateMode()
	if err != nil {
		return dataprocessing.DateBoundary{}, err
	}
	input, err := p.DateInput(mode)
	if err != nil {
		return dataprocessing.DateBoundary{}, err
	}
	return dataprocessing.ParseBoundary(mode, input, layout)
}

// Location asks for a location option from the menu built over locations.
func (p *Prompter) Location(locations []string) (int, error) {
	return p.Option("Seleccione la locación:", dataprocessing.LocationMenu(locations))
}
