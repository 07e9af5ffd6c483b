package usecase

import "time"

// SetClock replaces the clock of the analysis usecase for testing
func (uc *AnalysisUseCase) SetClock(now func() time.Time) {
	uc.now = now
}
