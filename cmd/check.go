package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/lrcshow-cli/lrcshow/icon"
	"github.com/lrcshow-cli/lrcshow/style"
)

const envSessionBus = "DBUS_SESSION_BUS_ADDRESS"

// CheckSessionBus verifies that a D-Bus session bus is reachable, which every
// MPRIS player and the exported service depend on.
func CheckSessionBus() {
	if os.Getenv(envSessionBus) != "" {
		return
	}

	if _, err := os.Stat(fmt.Sprintf("/run/user/%d/bus", os.Getuid())); err == nil {
		return
	}

	printMissingSessionBusError()
	os.Exit(1)
}

func printMissingSessionBusError() {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.HiRed).Render(fmt.Sprintf("%s Error: No Session Bus", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("%s is not set and no session bus socket was found.", envSessionBus))
	suggestion := fmt.Sprintf(
		"\n\nRun inside a desktop session, or start one with:\n  %s",
		style.New().Foreground(style.AccentColor).Bold(true).Render("dbus-run-session -- "+os.Args[0]),
	)

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}
