package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

const (
	colorNameCounter  fyne.ThemeColorName = "counter"
	colorNameComplete fyne.ThemeColorName = "complete"
	colorNameNext     fyne.ThemeColorName = "next"
)

// themeColors holds custom colors for the light and dark variant.
var themeColors = map[fyne.ThemeColorName][2]color.Color{
	colorNameCounter: { // deep green
		color.RGBA{0, 121, 107, 255},
		color.RGBA{77, 182, 172, 255},
	},
	colorNameComplete: { // green
		color.RGBA{56, 142, 60, 255},
		color.RGBA{129, 199, 132, 255},
	},
	colorNameNext: { // amber
		color.RGBA{255, 160, 0, 255},
		color.RGBA{255, 213, 79, 255},
	},
}

type myTheme struct {
	isDark bool
}

func (t myTheme) Color(c fyne.ThemeColorName, v fyne.ThemeVariant) color.Color {
	if t.isDark {
		v = theme.VariantDark
	} else {
		v = theme.VariantLight
	}
	if x, ok := themeColors[c]; ok {
		if v == theme.VariantDark {
			return x[1]
		}
		return x[0]
	}
	return theme.DefaultTheme().Color(c, v)
}

func (myTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (myTheme) Icon(n fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(n)
}

func (myTheme) Size(s fyne.ThemeSizeName) float32 {
	return theme.DefaultTheme().Size(s)
}
