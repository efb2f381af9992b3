package main

import "github.com/charmbracelet/lipgloss"

type colors struct {
	text, textMuted, border  lipgloss.AdaptiveColor
	accent, selection        lipgloss.AdaptiveColor
	success, danger, warning lipgloss.AdaptiveColor
}

var palette = colors{
	text:      lipgloss.AdaptiveColor{Light: "#1F2328", Dark: "#E6EDF3"},
	textMuted: lipgloss.AdaptiveColor{Light: "#656D76", Dark: "#8B949E"},
	border:    lipgloss.AdaptiveColor{Light: "#D0D7DE", Dark: "#30363D"},
	accent:    lipgloss.AdaptiveColor{Light: "#0969DA", Dark: "#58A6FF"},
	selection: lipgloss.AdaptiveColor{Light: "#DDF4FF", Dark: "#1F3A5F"},
	success:   lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#3FB950"},
	danger:    lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#F85149"},
	warning:   lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#D29922"},
}

type styles struct {
	app, topBar, title                 lipgloss.Style
	searchBox, searchActive            lipgloss.Style
	primaryAction, secondaryAction     lipgloss.Style
	panel, panelFocused                lipgloss.Style
	header, headerSel, cell, selected  lipgloss.Style
	skeleton, empty                    lipgloss.Style
	badgeActive, badgeInactive         lipgloss.Style
	footer, footerDisabled             lipgloss.Style
	filterEditor                       lipgloss.Style
	statusBar, statusSeg, statusHint   lipgloss.Style
	overlay, overlayDanger, overlayHdr lipgloss.Style
	fieldLabel, fieldValue, fieldFocus lipgloss.Style
	fieldError, fieldReadOnly          lipgloss.Style
	button, buttonDanger, buttonOff    lipgloss.Style
	noticeOK, noticeErr                lipgloss.Style
	hint                               lipgloss.Style
}

func newStyles() styles {
	base := lipgloss.NewStyle()
	panelBorder := lipgloss.NormalBorder()
	focusedBorder := lipgloss.DoubleBorder()

	return styles{
		app:             base,
		topBar:          base.Padding(0, 1),
		title:           base.Copy().Bold(true).Foreground(palette.text),
		searchBox:       base.Copy().Border(lipgloss.RoundedBorder()).BorderForeground(palette.border).Padding(0, 1),
		searchActive:    base.Copy().Border(lipgloss.RoundedBorder()).BorderForeground(palette.accent).Padding(0, 1),
		primaryAction:   base.Copy().Bold(true).Foreground(palette.accent).Padding(0, 1),
		secondaryAction: base.Copy().Foreground(palette.textMuted).Padding(0, 1),
		panel:           base.BorderStyle(panelBorder).BorderForeground(palette.border),
		panelFocused:    base.BorderStyle(focusedBorder).BorderForeground(palette.accent),
		header: base.Copy().
			Bold(true).
			Foreground(palette.textMuted).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(palette.border).
			Padding(0, 1),
		headerSel:      base.Copy().Bold(true).Underline(true).Foreground(palette.accent),
		cell:           base.Copy().Padding(0, 1),
		selected:       base.Copy().Foreground(palette.text).Background(palette.selection).Padding(0, 1),
		skeleton:       base.Copy().Foreground(palette.border),
		empty:          base.Copy().Foreground(palette.textMuted).Italic(true).Align(lipgloss.Center),
		badgeActive:    base.Copy().Foreground(palette.success).Bold(true),
		badgeInactive:  base.Copy().Foreground(palette.danger),
		footer:         base.Copy().Foreground(palette.text).Padding(0, 1),
		footerDisabled: base.Copy().Foreground(palette.border).Padding(0, 1),
		filterEditor:   base.Copy().Border(lipgloss.RoundedBorder()).BorderForeground(palette.accent).Padding(0, 1),
		statusBar:      base.Padding(0, 1),
		statusSeg:      base.Padding(0, 1).MarginRight(1),
		statusHint:     base.Copy().Foreground(palette.textMuted),
		overlay:        base.Copy().Border(lipgloss.RoundedBorder()).BorderForeground(palette.accent).Padding(1, 2),
		overlayDanger:  base.Copy().Border(lipgloss.RoundedBorder()).BorderForeground(palette.danger).Padding(1, 2),
		overlayHdr:     base.Copy().Bold(true).MarginBottom(1),
		fieldLabel:     base.Copy().Foreground(palette.textMuted).Width(16),
		fieldValue:     base.Copy().Foreground(palette.text),
		fieldFocus:     base.Copy().Foreground(palette.accent).Bold(true),
		fieldError:     base.Copy().Foreground(palette.danger),
		fieldReadOnly:  base.Copy().Foreground(palette.textMuted),
		button:         base.Copy().Bold(true).Foreground(palette.accent).Padding(0, 1),
		buttonDanger:   base.Copy().Bold(true).Foreground(palette.danger).Padding(0, 1),
		buttonOff:      base.Copy().Foreground(palette.border).Padding(0, 1),
		noticeOK:       base.Copy().Foreground(palette.success),
		noticeErr:      base.Copy().Foreground(palette.danger),
		hint:           base.Copy().Faint(true),
	}
}
