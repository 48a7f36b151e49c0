package services

import (
	"math"
	"math/rand"
	"testing"

	"hhc-instance-service/internal/domain"
)

func TestSamplerReproducibility(t *testing.T) {
	a := NewAttributeSampler(rand.New(rand.NewSource(42)))
	b := NewAttributeSampler(rand.New(rand.NewSource(42)))

	attrsA := a.Sample(500)
	attrsB := b.Sample(500)

	for i := range attrsA {
		if attrsA[i] != attrsB[i] {
			t.Fatalf("tuple %d differs: %+v vs %+v", i, attrsA[i], attrsB[i])
		}
	}
}

func TestSamplerModalityDistribution(t *testing.T) {
	const n = 100000
	sampler := NewAttributeSampler(rand.New(rand.NewSource(7)))

	intensive := 0
	for i := 0; i < n; i++ {
		if sampler.DrawModality() == domain.ModalityIntensive {
			intensive++
		}
	}

	fraction := float64(intensive) / n
	if math.Abs(fraction-0.30) > 0.01 {
		t.Fatalf("intensive fraction = %v, want 0.30 +/- 0.01", fraction)
	}
}

func TestSamplerWindowDistribution(t *testing.T) {
	const n = 100000
	sampler := NewAttributeSampler(rand.New(rand.NewSource(11)))

	counts := map[domain.TimeWindow]int{}
	for i := 0; i < n; i++ {
		counts[sampler.DrawTimeWindow()]++
	}

	cases := []struct {
		w    domain.TimeWindow
		want float64
	}{
		{domain.WindowMorning, 0.40},
		{domain.WindowAfternoon, 0.35},
		{domain.WindowFullDay, 0.25},
	}
	for _, tc := range cases {
		fraction := float64(counts[tc.w]) / n
		if math.Abs(fraction-tc.want) > 0.01 {
			t.Errorf("%v fraction = %v, want %v +/- 0.01", tc.w, fraction, tc.want)
		}
	}
}

func TestSamplerFrequencyModalityCoupling(t *testing.T) {
	sampler := NewAttributeSampler(rand.New(rand.NewSource(3)))

	for _, attrs := range sampler.Sample(5000) {
		lo, hi := attrs.Modality.FrequencyRange()
		if attrs.Frequency < lo || attrs.Frequency > hi {
			t.Fatalf("%v frequency %d outside [%d,%d]", attrs.Modality, attrs.Frequency, lo, hi)
		}

		lo, hi = attrs.Modality.ServiceMinutesRange()
		if attrs.ServiceMinutes < lo || attrs.ServiceMinutes > hi {
			t.Fatalf("%v service minutes %d outside [%d,%d]", attrs.Modality, attrs.ServiceMinutes, lo, hi)
		}
	}
}

func TestSamplerDailyCapacityRange(t *testing.T) {
	sampler := NewAttributeSampler(rand.New(rand.NewSource(9)))

	seen360, seen480 := false, false
	for i := 0; i < 20000; i++ {
		c := sampler.DrawDailyCapacity()
		if c < 360 || c > 480 {
			t.Fatalf("capacity %d outside [360,480]", c)
		}
		if c == 360 {
			seen360 = true
		}
		if c == 480 {
			seen480 = true
		}
	}

	// Bounds are inclusive; both endpoints should appear over 20k draws.
	if !seen360 || !seen480 {
		t.Errorf("endpoints not drawn: 360=%v 480=%v", seen360, seen480)
	}
}
