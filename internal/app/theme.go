package app

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle          = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	helpStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	noticeStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("179"))
	selectedStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("236"))
	dividerStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	sessionStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	sessionUnreadStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("120")).Bold(true)
	resolvedStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("108"))
	priorityLowStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	priorityHighStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	priorityUrgentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	visitorLineStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	agentLineStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	systemLineStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	timestampStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	selectedMessageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("117")).Bold(true)
	confirmBorderStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("208"))
	confirmHeaderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("251")).Background(lipgloss.Color("235")).Bold(true)
	confirmBodyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("235"))
)

func priorityStyleFor(priority string) lipgloss.Style {
	switch priority {
	case "urgent":
		return priorityUrgentStyle
	case "high":
		return priorityHighStyle
	case "low":
		return priorityLowStyle
	}
	return sessionStyle
}
