package banner

import (
	"ratecheck/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

func GetString() string {
	renderer := lipgloss.DefaultRenderer()

	style := renderer.NewStyle().
		Foreground(styles.ColorBanner).
		Bold(true)

	ascii := `
               __            __              __  
   _________ _/ /____  _____/ /_  ___  _____/ /__
  / ___/ __ '/ __/ _ \/ ___/ __ \/ _ \/ ___/ //_/
 / /  / /_/ / /_/  __/ /__/ / / /  __/ /__/ ,<   
/_/   \__,_/\__/\___/\___/_/ /_/\___/\___/_/|_|  `

	return "\n" + style.Render(ascii) + "\n"
}
