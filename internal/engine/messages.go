package engine

import (
	"fmt"
	"math"

	"krx-sentinel/internal/models"
	"krx-sentinel/internal/notify"
	"krx-sentinel/pkg/utils"
)

// targetCategory maps a target-price alert type to its toast category.
func targetCategory(t models.AlertType) notify.Category {
	if t == models.AlertSell {
		return notify.CategorySuccess
	}
	return notify.CategoryInfo
}

// changeCategory maps a percentage move to its toast category: spikes
// warn, drops error.
func changeCategory(changePct float64) notify.Category {
	if changePct >= 0 {
		return notify.CategoryWarning
	}
	return notify.CategoryError
}

// flowCategory maps aligned flows to a category: simultaneous buying is
// a positive signal, simultaneous selling a negative one.
func flowCategory(buying bool) notify.Category {
	if buying {
		return notify.CategorySuccess
	}
	return notify.CategoryError
}

// targetMessage builds the notification text for a target-price hit.
func targetMessage(name string, r models.AlertRule, price float64) string {
	label := "매수"
	if r.Type == models.AlertSell {
		label = "매도"
	}

	msg := fmt.Sprintf("%s %s 목표가 도달! 목표: %s원, 현재: %s원",
		name, label, utils.FormatWon(r.TargetPrice), utils.FormatWon(price))
	if r.Memo != "" {
		msg += " (" + r.Memo + ")"
	}
	return msg
}

// changeMessage builds the notification text for a percentage-change hit.
func changeMessage(name string, changePct, threshold float64) string {
	label := "급등"
	if changePct < 0 {
		label = "급락"
	}

	return fmt.Sprintf("%s %s 알림! %s 변동 (기준 %.1f%%)",
		name, label, utils.FormatSignedPercent(changePct), threshold)
}

// flowMessage builds the notification text for a trading-signal hit.
// Net amounts are shown as magnitudes; the label carries the direction.
func flowMessage(name string, buying bool, s models.FlowSnapshot) string {
	label := "매수"
	if !buying {
		label = "매도"
	}

	return fmt.Sprintf("%s 외국인·기관 동반 %s 포착! 외국인 %s, 기관 %s",
		name, label,
		utils.FormatNetAmount(math.Abs(s.ForeignNet)),
		utils.FormatNetAmount(math.Abs(s.InstitutionalNet)))
}
