//go:build gui

package gui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// harkTheme is the default dark theme with a warmer palette and larger
// transcript text.
type harkTheme struct{}

var palette = map[fyne.ThemeColorName]color.Color{
	theme.ColorNameBackground: color.NRGBA{R: 0x16, G: 0x17, B: 0x1b, A: 0xff},
	theme.ColorNameForeground: color.NRGBA{R: 0xe4, G: 0xe1, B: 0xd8, A: 0xff},
	theme.ColorNamePrimary:    color.NRGBA{R: 0xe0, G: 0x8a, B: 0x3c, A: 0xff},
	theme.ColorNameError:      color.NRGBA{R: 0xd9, G: 0x4f, B: 0x4f, A: 0xff},
}

func (harkTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	if c, ok := palette[name]; ok {
		return c
	}
	return theme.DefaultTheme().Color(name, theme.VariantDark)
}

func (harkTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (harkTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (harkTheme) Size(name fyne.ThemeSizeName) float32 {
	if name == theme.SizeNameText {
		return 15
	}
	return theme.DefaultTheme().Size(name)
}
