package provisioning

// StageSummary counts site outcomes for one stage.
type StageSummary struct {
	Stage      string `json:"stage"`
	Total      int    `json:"total"`
	Successful int    `json:"successful"`
	Failed     int    `json:"failed"`
	Skipped    int    `json:"skipped"`
	Warnings   int    `json:"warnings"`
}

// AllFailed reports whether every attempted site failed the stage.
func (s StageSummary) AllFailed() bool {
	attempted := s.Total - s.Skipped
	return attempted > 0 && s.Failed == attempted
}

// BatchSummary counts final site outcomes.
type BatchSummary struct {
	Total               int `json:"total"`
	Successful          int `json:"successful"`
	SuccessWithWarnings int `json:"successWithWarnings"`
	Failed              int `json:"failed"`
	Skipped             int `json:"skipped"`
}

// Summarize counts final results. Successful includes sites that finished
// with warnings; SuccessWithWarnings counts those separately.
func Summarize(results []ProvisioningResult) BatchSummary {
	var s BatchSummary
	s.Total = len(results)
	for _, r := range results {
		switch r.Status {
		case StatusSuccess:
			s.Successful++
		case StatusSuccessWithWarnings:
			s.Successful++
			s.SuccessWithWarnings++
		case StatusFailed:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		}
	}
	return s
}

// SummarizeStage counts how the sites in results fared in stage.
// A site failed the stage if its failure was recorded there, was skipped
// if it had already failed earlier, and warned if it has a warning from stage.
func SummarizeStage(stage string, results []ProvisioningResult) StageSummary {
	s := StageSummary{Stage: stage, Total: len(results)}
	for _, r := range results {
		switch {
		case r.Status == StatusFailed && r.FailedStage == stage:
			s.Failed++
		case r.Status == StatusFailed || r.Status == StatusSkipped:
			s.Skipped++
		default:
			s.Successful++
			for _, w := range r.Warnings {
				if w.Stage == stage {
					s.Warnings++
					break
				}
			}
		}
	}
	return s
}
