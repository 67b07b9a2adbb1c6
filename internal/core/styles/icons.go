package styles

import "github.com/hay-kot/kpi/internal/core/notify"

// Tip: To find icons use https://github.com/loichyan/nerdfix

var (
	IconSuccess = "\uf058"
	IconError   = "\uf057"
	IconWarning = "\uf071"
	IconInfo    = "\uf05a"
	IconBell    = "\uf0f3"
	IconUser    = "\uf007"
	IconPalette = "\ue22b"
)

// KindIcon returns the icon shown on a banner of the given kind.
func KindIcon(kind notify.Kind) string {
	switch kind {
	case notify.KindSuccess:
		return IconSuccess
	case notify.KindError:
		return IconError
	case notify.KindWarning:
		return IconWarning
	default:
		return IconInfo
	}
}
