package ui

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	kxdialog "github.com/ErikKalkoken/fyne-kx/dialog"
	kxwidget "github.com/ErikKalkoken/fyne-kx/widget"
)

// relative size of dialog window to current window
const (
	dialogWidthScale = 0.8 // except on mobile it is always 100%
	dialogHeightMin  = 100
)

type settingVariant uint

const (
	settingUndefined settingVariant = iota
	settingCustom
	settingHeading
	settingSwitch
)

type settingAction struct {
	Label  string
	Action func()
}

func makeIconButtonFromActions(actions []settingAction) *kxwidget.IconButton {
	items := make([]*fyne.MenuItem, 0, len(actions))
	for _, a := range actions {
		items = append(items, fyne.NewMenuItem(a.Label, a.Action))
	}
	return kxwidget.NewIconButtonWithMenu(theme.MoreHorizontalIcon(), fyne.NewMenu("", items...))
}

// SettingItem represents an item in a setting list.
type SettingItem struct {
	Default   any
	Hint      string             // optional hint text
	Label     string             // label
	Getter    func() any         // returns the current value for this setting
	Setter    func(v any)        // sets the value for this setting
	Formatter func(v any) string // func to format the value

	onSelected func(it SettingItem, refresh func()) // action called when selected
	variant    settingVariant
}

// Reset sets the setting back to its default.
func (si SettingItem) Reset() {
	if si.Setter == nil || si.Default == nil {
		return
	}
	if si.Getter() == si.Default {
		return
	}
	si.Setter(si.Default)
}

func (si SettingItem) format() string {
	v := si.Getter()
	if si.Formatter != nil {
		return si.Formatter(v)
	}
	return fmt.Sprint(v)
}

// NewSettingItemHeading creates a heading in a setting list.
func NewSettingItemHeading(label string) SettingItem {
	return SettingItem{Label: label, variant: settingHeading}
}

type SettingItemSwitch struct {
	defaultValue bool
	getter       func() bool
	hint         string
	label        string
	onChanged    func(bool)
}

// NewSettingItemSwitch creates a switch setting in a setting list.
func NewSettingItemSwitch(arg SettingItemSwitch) SettingItem {
	return SettingItem{
		Default: arg.defaultValue,
		Label:   arg.label,
		Hint:    arg.hint,
		Getter: func() any {
			return arg.getter()
		},
		Setter: func(v any) {
			arg.onChanged(v.(bool))
		},
		onSelected: func(it SettingItem, refresh func()) {
			it.Setter(!it.Getter().(bool))
			refresh()
		},
		variant: settingSwitch,
	}
}

type SettingItemCustom struct {
	formatter  func(v any) string
	getter     func() any
	hint       string
	label      string
	onSelected func(it SettingItem, refresh func())
}

// NewSettingItemCustom creates a setting which opens a custom dialog when selected.
func NewSettingItemCustom(arg SettingItemCustom) SettingItem {
	return SettingItem{
		Label:      arg.label,
		Hint:       arg.hint,
		Getter:     arg.getter,
		Formatter:  arg.formatter,
		onSelected: arg.onSelected,
		variant:    settingCustom,
	}
}

type SettingItemOptions struct {
	defaultValue string
	getter       func() string
	hint         string
	isMobile     bool
	label        string
	options      []string
	setter       func(v string)
	window       fyne.Window
}

// NewSettingItemOptions creates a setting with a fixed set of options to choose from.
func NewSettingItemOptions(arg SettingItemOptions) SettingItem {
	return SettingItem{
		Default: arg.defaultValue,
		Label:   arg.label,
		Hint:    arg.hint,
		Getter: func() any {
			return arg.getter()
		},
		Setter: func(v any) {
			arg.setter(v.(string))
		},
		onSelected: func(it SettingItem, refresh func()) {
			sel := widget.NewRadioGroup(arg.options, arg.setter)
			sel.Required = true
			sel.Selected = it.Getter().(string)
			d := makeSettingDialog(makeSettingDialogParams{
				setting:  sel,
				label:    it.Label,
				hint:     it.Hint,
				isMobile: arg.isMobile,
				reset: func() {
					sel.SetSelected(arg.defaultValue)
				},
				refresh: refresh,
				window:  arg.window,
			})
			d.Show()
		},
		variant: settingCustom,
	}
}

type makeSettingDialogParams struct {
	hint     string
	isMobile bool
	label    string
	refresh  func()
	reset    func()
	setting  fyne.CanvasObject
	window   fyne.Window
}

func makeSettingDialog(arg makeSettingDialogParams) dialog.Dialog {
	var d dialog.Dialog
	buttons := container.NewHBox(
		widget.NewButton("OK", func() {
			d.Hide()
		}),
		layout.NewSpacer(),
	)
	if arg.reset != nil {
		buttons.Add(widget.NewButton("Reset", arg.reset))
	}
	hint := widget.NewLabel(arg.hint)
	hint.SizeName = theme.SizeNameCaptionText
	hint.Wrapping = fyne.TextWrapWord
	c := container.NewBorder(nil, container.NewVBox(hint, buttons), nil, nil, arg.setting)
	d = dialog.NewCustomWithoutButtons(arg.label, c, arg.window)
	kxdialog.AddDialogKeyHandler(d, arg.window)
	_, s := arg.window.Canvas().InteractiveArea()
	width := s.Width
	if !arg.isMobile {
		width *= dialogWidthScale
	}
	d.Resize(fyne.NewSize(width, dialogHeightMin))
	if arg.refresh != nil {
		d.SetOnClosed(arg.refresh)
	}
	return d
}

// settingRow is the canvas object for one row in a setting list.
type settingRow struct {
	widget.BaseWidget

	hint  *widget.Label
	label *widget.Label
	sw    *kxwidget.Switch
	value *widget.Label
}

func newSettingRow() *settingRow {
	label := widget.NewLabel("Template")
	label.Truncation = fyne.TextTruncateClip
	hint := widget.NewLabel("")
	hint.Truncation = fyne.TextTruncateClip
	hint.SizeName = theme.SizeNameCaptionText
	w := &settingRow{
		hint:  hint,
		label: label,
		sw:    kxwidget.NewSwitch(nil),
		value: widget.NewLabel(""),
	}
	w.ExtendBaseWidget(w)
	return w
}

func (w *settingRow) set(it SettingItem) {
	w.label.Text = it.Label
	w.label.TextStyle.Bold = it.variant == settingHeading
	w.label.Refresh()
	if it.Hint != "" {
		w.hint.SetText(it.Hint)
		w.hint.Show()
	} else {
		w.hint.Hide()
	}
	switch it.variant {
	case settingSwitch:
		w.value.Hide()
		w.sw.OnChanged = func(v bool) {
			it.Setter(v)
		}
		w.sw.On = it.Getter().(bool)
		w.sw.Show()
		w.sw.Refresh()
	case settingCustom:
		w.sw.Hide()
		w.value.SetText(it.format())
		w.value.Show()
	default:
		w.sw.Hide()
		w.value.Hide()
	}
}

func (w *settingRow) CreateRenderer() fyne.WidgetRenderer {
	c := container.NewPadded(container.NewBorder(
		nil,
		nil,
		nil,
		container.NewVBox(layout.NewSpacer(), container.NewStack(w.sw, w.value), layout.NewSpacer()),
		container.New(layout.NewCustomPaddedVBoxLayout(0), layout.NewSpacer(), w.label, w.hint, layout.NewSpacer()),
	))
	return widget.NewSimpleRenderer(c)
}

// SettingList is a custom list widget for settings.
type SettingList struct {
	widget.List

	SelectDelay time.Duration
}

// NewSettingList returns a new SettingList widget.
func NewSettingList(items []SettingItem) *SettingList {
	w := &SettingList{SelectDelay: 200 * time.Millisecond}
	w.Length = func() int {
		return len(items)
	}
	w.CreateItem = func() fyne.CanvasObject {
		return newSettingRow()
	}
	w.UpdateItem = func(id widget.ListItemID, co fyne.CanvasObject) {
		if id >= len(items) {
			return
		}
		row := co.(*settingRow)
		row.set(items[id])
		w.SetItemHeight(id, row.MinSize().Height)
	}
	w.OnSelected = func(id widget.ListItemID) {
		if id >= len(items) || items[id].onSelected == nil {
			w.UnselectAll()
			return
		}
		it := items[id]
		it.onSelected(it, func() {
			w.RefreshItem(id)
		})
		go func() {
			time.Sleep(w.SelectDelay)
			fyne.Do(func() {
				w.UnselectAll()
			})
		}()
	}
	w.ExtendBaseWidget(w)
	return w
}
