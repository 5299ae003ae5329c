package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleBold    = lipgloss.NewStyle().Bold(true)
)

func printSuccess(format string, args ...any) {
	fmt.Println(styleSuccess.Render(fmt.Sprintf(format, args...)))
}

func printMuted(format string, args ...any) {
	fmt.Println(styleMuted.Render(fmt.Sprintf(format, args...)))
}

func printErr(err error) {
	fmt.Fprintln(os.Stderr, styleError.Render("error: ")+err.Error())
}
