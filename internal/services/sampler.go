package services

import (
	"math/rand"

	"hhc-instance-service/internal/domain"
)

// Categorical splits for patient attributes. The modality split follows the
// 70/30 standard/intensive caseload profile mandated for EMAD teams; the
// window split reflects the observed preference for morning visits.
const (
	probStandard  = 0.70
	probMorning   = 0.40
	probAfternoon = 0.35
)

// Daily team capacity bounds in minutes of direct care (6h-8h of an 8h
// shift, the rest going to travel, documentation and handover).
const (
	minDailyCapacityMinutes = 360
	maxDailyCapacityMinutes = 480
)

// PatientAttributes is one sampled attribute tuple, positionally matched to
// a patient by generation order.
type PatientAttributes struct {
	Modality       domain.Modality
	Window         domain.TimeWindow
	Frequency      int
	ServiceMinutes int
}

// AttributeSampler draws per-patient attributes from fixed categorical and
// uniform distributions. It owns no randomness of its own: the stream is
// injected so a single seed governs the whole instance, and for a fixed seed
// and draw order repeated runs are bit-identical.
type AttributeSampler struct {
	rng *rand.Rand
}

func NewAttributeSampler(rng *rand.Rand) *AttributeSampler {
	return &AttributeSampler{rng: rng}
}

// DrawModality draws standard with probability 0.70, intensive with 0.30.
func (s *AttributeSampler) DrawModality() domain.Modality {
	if s.rng.Float64() < probStandard {
		return domain.ModalityStandard
	}
	return domain.ModalityIntensive
}

// DrawTimeWindow draws morning 0.40, afternoon 0.35, full day 0.25.
func (s *AttributeSampler) DrawTimeWindow() domain.TimeWindow {
	r := s.rng.Float64()
	switch {
	case r < probMorning:
		return domain.WindowMorning
	case r < probMorning+probAfternoon:
		return domain.WindowAfternoon
	default:
		return domain.WindowFullDay
	}
}

// DrawFrequency draws weekly visits uniformly from the modality's range.
func (s *AttributeSampler) DrawFrequency(m domain.Modality) int {
	lo, hi := m.FrequencyRange()
	return lo + s.rng.Intn(hi-lo+1)
}

// DrawServiceMinutes draws the per-visit duration uniformly from the
// modality's range.
func (s *AttributeSampler) DrawServiceMinutes(m domain.Modality) int {
	lo, hi := m.ServiceMinutesRange()
	return lo + s.rng.Intn(hi-lo+1)
}

// DrawDailyCapacity draws a team's daily capacity in minutes.
func (s *AttributeSampler) DrawDailyCapacity() int {
	return minDailyCapacityMinutes + s.rng.Intn(maxDailyCapacityMinutes-minDailyCapacityMinutes+1)
}

// Sample produces n attribute tuples in the canonical per-patient draw
// order: modality, window, frequency, service minutes.
func (s *AttributeSampler) Sample(n int) []PatientAttributes {
	out := make([]PatientAttributes, 0, n)
	for i := 0; i < n; i++ {
		m := s.DrawModality()
		out = append(out, PatientAttributes{
			Modality:       m,
			Window:         s.DrawTimeWindow(),
			Frequency:      s.DrawFrequency(m),
			ServiceMinutes: s.DrawServiceMinutes(m),
		})
	}
	return out
}
