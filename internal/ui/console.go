// Package ui provides the shared console output helpers. Styled text
// goes through lipgloss; raw scanner output is forwarded untouched so
// tool output stays copy-pasteable.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// Header prints a section title with an underline.
func Header(title string) {
	fmt.Println(headerStyle.Render(title))
	fmt.Println(dimStyle.Render(strings.Repeat("=", len(title))))
}

func Info(msg string) {
	fmt.Println(infoStyle.Render("ℹ " + msg))
}

func Warn(msg string) {
	fmt.Println(warnStyle.Render("! " + msg))
}

// SuccessItem prints a single succeeded step.
func SuccessItem(msg string) {
	fmt.Println(successStyle.Render("✔ " + msg))
}

// ErrorItem prints a failed step with a one-line detail.
func ErrorItem(msg, detail string) {
	fmt.Println(errorStyle.Render("✘ " + msg))
	if detail != "" {
		fmt.Println(dimStyle.Render("  " + detail))
	}
}

// ListItem prints an indented bullet line.
func ListItem(bullet, msg string) {
	fmt.Printf("  %s %s\n", bullet, msg)
}

func Separator() {
	fmt.Println(dimStyle.Render(strings.Repeat("-", 40)))
}

// Summary prints the aggregate success/failure tally of a phase.
func Summary(title string, succeeded, failed int) {
	fmt.Println()
	line := fmt.Sprintf("%s: %d succeeded, %d failed", title, succeeded, failed)
	if failed > 0 {
		fmt.Println(errorStyle.Render(line))
	} else {
		fmt.Println(successStyle.Render(line))
	}
}

// Raw writes text without styling, guaranteeing a trailing newline.
func Raw(text string) {
	if text == "" {
		return
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	fmt.Print(text)
}
