package main

import "github.com/charmbracelet/lipgloss"

const (
	cyan     = lipgloss.Color("#79c3ee")
	green    = lipgloss.Color("#78dba9")
	hotPink  = lipgloss.Color("#FF06B7")
	darkGray = lipgloss.Color("#767676")
	red      = lipgloss.Color("#e05f65")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(hotPink)
	labelStyle = lipgloss.NewStyle().Foreground(darkGray).Width(14)
	valueStyle = lipgloss.NewStyle().Foreground(cyan)
	okStyle    = lipgloss.NewStyle().Foreground(green).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(red).Bold(true)

	blockStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(hotPink).
			Padding(0, 1)
)
