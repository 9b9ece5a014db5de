package ui

import (
	"net/url"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	kxdialog "github.com/ErikKalkoken/fyne-kx/dialog"
)

const (
	aladhanWebsiteURL = "https://aladhan.com"
	osmCopyrightURL   = "https://www.openstreetmap.org/copyright"
)

func makeAboutPage(u *BaseUI) fyne.CanvasObject {
	title := widget.NewLabel(u.appName())
	title.SizeName = theme.SizeNameSubHeadingText
	title.TextStyle.Bold = true
	v := u.fyneApp.Metadata().Version
	if v == "" {
		v = "?"
	}
	aladhan, _ := url.Parse(aladhanWebsiteURL)
	osm, _ := url.Parse(osmCopyrightURL)
	credits := widget.NewLabel("Prayer times are provided by the AlAdhan API. Place names are provided by OpenStreetMap Nominatim.")
	credits.Wrapping = fyne.TextWrapWord
	return container.New(
		layout.NewCustomPaddedVBoxLayout(0),
		title,
		widget.NewLabel("Version "+v),
		credits,
		container.NewHBox(
			widget.NewHyperlink("AlAdhan", aladhan),
			widget.NewHyperlink("© OpenStreetMap contributors", osm),
		),
	)
}

func (u *BaseUI) showAboutDialog() {
	d := dialog.NewCustom("About", "Close", makeAboutPage(u), u.window)
	kxdialog.AddDialogKeyHandler(d, u.window)
	_, s := u.window.Canvas().InteractiveArea()
	d.Resize(fyne.NewSize(s.Width*dialogWidthScale, dialogHeightMin))
	d.Show()
}
