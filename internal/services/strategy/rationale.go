package strategy

import "SignalPulse/internal/domain/models"

// Rationale lists, in slot order, the reasons for the confirmations that
// fired in the winning direction. Minority-side evidence never appears: a
// BUY rationale carries no bearish entries. HOLD has no rationale.
func Rationale(confs []models.Confirmation, verdict models.Verdict) []string {
	var want models.ConfirmationDirection
	switch verdict {
	case models.VerdictBuy:
		want = models.DirectionBullish
	case models.VerdictSell:
		want = models.DirectionBearish
	default:
		return nil
	}
	out := make([]string, 0, len(confs))
	for _, c := range confs {
		if c.Direction == want {
			out = append(out, c.Reason)
		}
	}
	return out
}
