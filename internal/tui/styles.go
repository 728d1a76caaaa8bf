package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/CaptShanks/travelprism/internal/parser"
)

// Theme colors - Soft, low-contrast palette inspired by Tokyo Night / Catppuccin
var (
	// Field colors (muted, pastel tones)
	nameColor       = lipgloss.Color("#7aa2f7") // Soft periwinkle
	locationColor   = lipgloss.Color("#7dcfff") // Soft sky blue
	amenityColor    = lipgloss.Color("#9ece6a") // Soft sage green
	restaurantColor = lipgloss.Color("#e0af68") // Warm amber
	spaColor        = lipgloss.Color("#bb9af7") // Soft lavender
	missingColor    = lipgloss.Color("#f7768e") // Soft coral red

	// UI colors
	selectedBg    = lipgloss.Color("#292e42") // Deep navy selection
	headerColor   = lipgloss.Color("#7aa2f7")
	borderColor   = lipgloss.Color("#3b4261") // Muted slate
	mutedColorVal = lipgloss.Color("#565f89") // Soft gray-blue
	textColor     = lipgloss.Color("#a9b1d6") // Soft lavender gray
	statusBarBg   = lipgloss.Color("#1a1b26")
)

// Styles, rebuilt by buildStyles whenever the palette changes
var (
	appStyle           lipgloss.Style
	headerStyle        lipgloss.Style
	summaryStyle       lipgloss.Style
	nameStyle          lipgloss.Style
	selectedStyle      lipgloss.Style
	fieldLabelStyle    lipgloss.Style
	mutedColor         lipgloss.Style
	helpStyle          lipgloss.Style
	searchStyle        lipgloss.Style
	matchStyle         lipgloss.Style
	tableHeaderStyle   lipgloss.Style
	tableBorderStyle   lipgloss.Style
	statusBarStyle     lipgloss.Style
	expandedIndicator  string
	collapsedIndicator string
)

func init() {
	buildStyles()
}

// SetLightPalette switches to colors readable on light terminal backgrounds
func SetLightPalette() {
	nameColor = lipgloss.Color("#2e7de9")
	locationColor = lipgloss.Color("#007197")
	amenityColor = lipgloss.Color("#587539")
	restaurantColor = lipgloss.Color("#8c6c3e")
	spaColor = lipgloss.Color("#7847bd")
	missingColor = lipgloss.Color("#f52a65")
	selectedBg = lipgloss.Color("#c4c8da")
	headerColor = lipgloss.Color("#2e7de9")
	borderColor = lipgloss.Color("#a8aecb")
	mutedColorVal = lipgloss.Color("#848cb5")
	textColor = lipgloss.Color("#3760bf")
	statusBarBg = lipgloss.Color("#e1e2e7")
	buildStyles()
}

// SetDarkPalette restores the default dark palette
func SetDarkPalette() {
	nameColor = lipgloss.Color("#7aa2f7")
	locationColor = lipgloss.Color("#7dcfff")
	amenityColor = lipgloss.Color("#9ece6a")
	restaurantColor = lipgloss.Color("#e0af68")
	spaColor = lipgloss.Color("#bb9af7")
	missingColor = lipgloss.Color("#f7768e")
	selectedBg = lipgloss.Color("#292e42")
	headerColor = lipgloss.Color("#7aa2f7")
	borderColor = lipgloss.Color("#3b4261")
	mutedColorVal = lipgloss.Color("#565f89")
	textColor = lipgloss.Color("#a9b1d6")
	statusBarBg = lipgloss.Color("#1a1b26")
	buildStyles()
}

func buildStyles() {
	appStyle = lipgloss.NewStyle().
		Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(headerColor).
		MarginBottom(1)

	summaryStyle = lipgloss.NewStyle().
		Foreground(textColor).
		MarginBottom(1)

	nameStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(nameColor)

	selectedStyle = lipgloss.NewStyle().
		Background(selectedBg)

	fieldLabelStyle = lipgloss.NewStyle().
		Foreground(mutedColorVal).
		Bold(true)

	mutedColor = lipgloss.NewStyle().
		Foreground(mutedColorVal)

	helpStyle = lipgloss.NewStyle().
		Foreground(mutedColorVal).
		MarginTop(1)

	searchStyle = lipgloss.NewStyle().
		Foreground(headerColor).
		Bold(true)

	matchStyle = lipgloss.NewStyle().
		Background(borderColor).
		Foreground(amenityColor).
		Bold(true)

	tableHeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(headerColor).
		Padding(0, 1)

	tableBorderStyle = lipgloss.NewStyle().
		Foreground(borderColor)

	statusBarStyle = lipgloss.NewStyle().
		Foreground(mutedColorVal).
		Background(statusBarBg).
		Padding(0, 1)

	expandedIndicator = lipgloss.NewStyle().Foreground(mutedColorVal).Render("▼")
	collapsedIndicator = lipgloss.NewStyle().Foreground(mutedColorVal).Render("▶")
}

// GetFieldColor returns the color used for a record field
func GetFieldColor(field parser.Field) lipgloss.Color {
	switch field {
	case parser.FieldName:
		return nameColor
	case parser.FieldLocation:
		return locationColor
	case parser.FieldAmenity:
		return amenityColor
	case parser.FieldRestaurant:
		return restaurantColor
	case parser.FieldSpa:
		return spaColor
	default:
		return textColor
	}
}

// GetFieldStyle returns the foreground style for a record field
func GetFieldStyle(field parser.Field) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(GetFieldColor(field))
}
