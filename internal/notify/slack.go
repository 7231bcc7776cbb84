// Package notify sends operator alerts on Mode transitions to HALTED
// and guard trips, generalized from the teacher's scattered
// bbgo.Notify(...) calls (circuit-breaker halts, hedge submissions,
// profit stats) into a direct Slack webhook call, since bbgo's own
// multi-channel notifier isn't importable standalone.
package notify

import (
	"fmt"

	"github.com/leekchan/accounting"
	"github.com/slack-go/slack"
)

var usd = accounting.Accounting{Symbol: "$", Precision: 2}

// Notifier posts alerts to a Slack channel via an incoming webhook.
type Notifier struct {
	webhookURL string
	channel    string
}

// NewNotifier builds a Notifier. An empty webhookURL makes every call
// a no-op, so dry-run/local deployments need no Slack credentials.
func NewNotifier(webhookURL, channel string) *Notifier {
	return &Notifier{webhookURL: webhookURL, channel: channel}
}

// Halted alerts that Mode transitioned to HALTED, naming the guard
// that caused it.
func (n *Notifier) Halted(symbol, guard, reason string) error {
	return n.post(fmt.Sprintf(":octagonal_sign: *%s* halted — guard=`%s` reason=%s", symbol, guard, reason))
}

// GuardTripped alerts a non-halting guard trip (cooldown, soft no-quote).
func (n *Notifier) GuardTripped(symbol, guard string) error {
	return n.post(fmt.Sprintf(":warning: *%s* guard tripped: `%s`", symbol, guard))
}

// ProfitReport alerts the periodic realized-PnL summary.
func (n *Notifier) ProfitReport(symbol string, realizedPnL, fees float64) error {
	return n.post(fmt.Sprintf(":bar_chart: *%s* realized PnL %s (fees %s)", symbol, usd.FormatMoney(realizedPnL), usd.FormatMoney(fees)))
}

func (n *Notifier) post(text string) error {
	if n.webhookURL == "" {
		return nil
	}
	msg := &slack.WebhookMessage{Channel: n.channel, Text: text}
	return slack.PostWebhook(n.webhookURL, msg)
}
