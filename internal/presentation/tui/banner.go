package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs an ASCII art banner for Catalyst.
func PrintBanner() {
	p := termenv.ColorProfile()
	// Teal-to-blue gradient
	s1 := termenv.String("   ____      _        _           _   ").Foreground(p.Color("#2dd4bf"))
	s2 := termenv.String("  / ___|__ _| |_ __ _| |_   _ ___| |_ ").Foreground(p.Color("#22d3ee"))
	s3 := termenv.String(" | |   / _` | __/ _` | | | | / __| __|").Foreground(p.Color("#38bdf8"))
	s4 := termenv.String(" | |__| (_| | || (_| | | |_| \\__ \\ |_ ").Foreground(p.Color("#60a5fa"))
	s5 := termenv.String("  \\____\\__,_|\\__\\__,_|_|\\__, |___/\\__|").Foreground(p.Color("#818cf8"))
	s6 := termenv.String("                        |___/         ").Foreground(p.Color("#a78bfa"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println(s6)
	fmt.Println()
}
