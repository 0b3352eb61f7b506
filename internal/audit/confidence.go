package audit

import "github.com/garyjia/ledger-auditor/internal/domain/entity"

// severityPenalty is the confidence deducted for each problem of a severity
var severityPenalty = map[entity.Severity]float64{
	entity.SeverityCritical: 0.4,
	entity.SeverityHigh:     0.2,
	entity.SeverityMedium:   0.1,
	entity.SeverityLow:      0.05,
}

// Score converts a problem list into a confidence in [0,1].
// Penalties add up before clamping: two critical problems leave 0.2, three leave 0.
func Score(problems []entity.Problem) float64 {
	score := 1.0
	for _, p := range problems {
		score -= severityPenalty[p.Severity]
	}

	switch {
	case score < 0:
		return 0
	case score > 1:
		return 1
	}
	// Additive penalties accumulate float error; round to 9 places.
	return roundScore(score)
}

// DeriveStatus maps the severities present in problems to a verification status
func DeriveStatus(problems []entity.Problem) entity.VerificationStatus {
	worst := 0
	for _, p := range problems {
		if r := p.Severity.Rank(); r > worst {
			worst = r
		}
	}

	switch {
	case worst >= entity.SeverityCritical.Rank():
		return entity.StatusRejected
	case worst >= entity.SeverityMedium.Rank():
		return entity.StatusFlagged
	default:
		return entity.StatusApproved
	}
}

func roundScore(v float64) float64 {
	const scale = 1e9
	if v < 0 {
		return 0
	}
	return float64(int64(v*scale+0.5)) / scale
}
