package report

import (
	"marketpulse/internal/services/analysis"
	"marketpulse/pkg/telegram"
)

// Callback actions carried by report buttons as "action:arg"
const (
	ActionChart    = "chart"
	ActionNews     = "news"
	ActionAdd      = "add"
	ActionRemove   = "remove"
	ActionAnalyse  = "analyse"
	ActionWhy      = "why"
	ActionSnapshot = "snapshot"
	ActionSector   = "sector"
)

const buttonsPerRow = 3

func keyboardFor(kind Kind, cc *analysis.CommandContext) *telegram.InlineKeyboardMarkup {
	p := cc.Primary()
	var rows [][]telegram.InlineKeyboardButton

	switch kind {
	case KindSnapshot:
		sym := p.Symbol()
		rows = append(rows,
			telegram.NewInlineKeyboardRow(
				telegram.NewActionButton("📈 Chart", ActionChart, sym),
				telegram.NewActionButton("📰 News", ActionNews, sym),
			),
			telegram.NewInlineKeyboardRow(
				telegram.NewActionButton("🧠 Analyse", ActionAnalyse, sym),
				watchButton(cc.User.OnWatchlist, sym),
			),
		)
	case KindAnalysis:
		sym := p.Symbol()
		rows = append(rows,
			telegram.NewInlineKeyboardRow(
				telegram.NewActionButton("📈 Chart", ActionChart, sym),
				telegram.NewActionButton("📰 News", ActionNews, sym),
			),
			telegram.NewInlineKeyboardRow(
				telegram.NewActionButton("❓ Why", ActionWhy, sym),
				watchButton(cc.User.OnWatchlist, sym),
			),
		)
	case KindWhy, KindAsk:
		sym := p.Symbol()
		rows = append(rows, telegram.NewInlineKeyboardRow(
			telegram.NewActionButton("📊 Snapshot", ActionSnapshot, sym),
			telegram.NewActionButton("📈 Chart", ActionChart, sym),
		))
	case KindNews:
		sym := p.Symbol()
		rows = append(rows, telegram.NewInlineKeyboardRow(
			telegram.NewActionButton("📊 Snapshot", ActionSnapshot, sym),
			watchButton(cc.User.OnWatchlist, sym),
		))
	case KindCompare:
		rows = append(rows, telegram.NewInlineKeyboardRow(
			telegram.NewActionButton("📊 "+cc.Subjects[0].Symbol(), ActionSnapshot, cc.Subjects[0].Symbol()),
			telegram.NewActionButton("📊 "+cc.Subjects[1].Symbol(), ActionSnapshot, cc.Subjects[1].Symbol()),
		))
	case KindPriceAlert, KindVolumeAlert:
		sym := p.Symbol()
		rows = append(rows, telegram.NewInlineKeyboardRow(
			telegram.NewActionButton("📈 Chart", ActionChart, sym),
			telegram.NewActionButton("❓ Why", ActionWhy, sym),
			telegram.NewActionButton("➖ Stop", ActionRemove, sym),
		))
	case KindNewsAlert:
		sym := p.Symbol()
		row := telegram.NewInlineKeyboardRow(
			telegram.NewActionButton("📊 Snapshot", ActionSnapshot, sym),
			telegram.NewActionButton("➖ Stop", ActionRemove, sym),
		)
		if url := cc.Alert.News.URL; url != "" {
			row = append([]telegram.InlineKeyboardButton{telegram.NewInlineKeyboardButtonURL("🔗 Read", url)}, row...)
		}
		rows = append(rows, row)
	case KindSectors:
		var buttons []telegram.InlineKeyboardButton
		for _, s := range cc.Sectors {
			buttons = append(buttons, telegram.NewActionButton(s.Def.ETF, ActionSector, s.Def.ETF))
		}
		rows = grid(buttons)
	case KindSector:
		var buttons []telegram.InlineKeyboardButton
		for _, s := range cc.Sectors {
			for _, l := range s.Leaders {
				buttons = append(buttons, telegram.NewActionButton(l.Symbol(), ActionSnapshot, l.Symbol()))
			}
		}
		rows = grid(buttons)
	case KindUndervalued:
		var buttons []telegram.InlineKeyboardButton
		for _, s := range cc.Subjects {
			buttons = append(buttons, telegram.NewActionButton(s.Symbol(), ActionSnapshot, s.Symbol()))
		}
		rows = grid(buttons)
	case KindWatchlist:
		var buttons []telegram.InlineKeyboardButton
		for _, t := range cc.User.Watchlist {
			buttons = append(buttons, telegram.NewActionButton(t, ActionSnapshot, t))
		}
		rows = grid(buttons)
	}

	if len(rows) == 0 {
		return nil
	}
	kb := telegram.NewInlineKeyboardMarkup(rows...)
	return &kb
}

func watchButton(watching bool, sym string) telegram.InlineKeyboardButton {
	if watching {
		return telegram.NewActionButton("➖ Unwatch", ActionRemove, sym)
	}
	return telegram.NewActionButton("➕ Watch", ActionAdd, sym)
}

func grid(buttons []telegram.InlineKeyboardButton) [][]telegram.InlineKeyboardButton {
	var rows [][]telegram.InlineKeyboardButton
	for i := 0; i < len(buttons); i += buttonsPerRow {
		end := min(i+buttonsPerRow, len(buttons))
		rows = append(rows, buttons[i:end])
	}
	return rows
}
