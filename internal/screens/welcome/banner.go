package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/Agampodige/MathDrill/internal/ui/theme"
)

const bannerArt = `
 ███╗   ███╗ █████╗ ████████╗██╗  ██╗██████╗ ██████╗ ██╗██╗     ██╗
 ████╗ ████║██╔══██╗╚══██╔══╝██║  ██║██╔══██╗██╔══██╗██║██║     ██║
 ██╔████╔██║███████║   ██║   ███████║██║  ██║██████╔╝██║██║     ██║
 ██║╚██╔╝██║██╔══██║   ██║   ██╔══██║██║  ██║██╔══██╗██║██║     ██║
 ██║ ╚═╝ ██║██║  ██║   ██║   ██║  ██║██████╔╝██║  ██║██║███████╗███████╗
 ╚═╝     ╚═╝╚═╝  ╚═╝   ╚═╝   ╚═╝  ╚═╝╚═════╝ ╚═╝  ╚═╝╚═╝╚══════╝╚══════╝`

const bannerCompact = "M A T H   D R I L L"

// bannerMinWidth is the narrowest terminal that fits bannerArt.
const bannerMinWidth = 76

// RenderBanner returns the MATHDRILL banner styled in the primary color,
// or a one-line fallback on narrow terminals.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < bannerMinWidth {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
