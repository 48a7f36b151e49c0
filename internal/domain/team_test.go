package domain

import "testing"

func TestParseTeamKindCode(t *testing.T) {
	cases := []struct {
		code int
		want TeamKind
	}{
		{22, TeamKindEMADI},
		{46, TeamKindEMADII},
		{23, TeamKindEMAP},
		{77, TeamKindEMAPRural},
		{0, TeamKindUnrecognized},
		{1, TeamKindUnrecognized},
		{99, TeamKindUnrecognized},
		{-22, TeamKindUnrecognized},
	}

	for _, tc := range cases {
		if got := ParseTeamKindCode(tc.code); got != tc.want {
			t.Errorf("ParseTeamKindCode(%d) = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestTeamKindStringRoundTrip(t *testing.T) {
	kinds := []TeamKind{
		TeamKindEMADI,
		TeamKindEMADII,
		TeamKindEMAP,
		TeamKindEMAPRural,
		TeamKindUnrecognized,
	}

	for _, k := range kinds {
		if got := ParseTeamKind(k.String()); got != k {
			t.Errorf("ParseTeamKind(%q) = %v, want %v", k.String(), got, k)
		}
	}

	if got := ParseTeamKind("EMAD III"); got != TeamKindUnrecognized {
		t.Errorf("ParseTeamKind(unknown) = %v, want TeamKindUnrecognized", got)
	}
}

func TestTeamKindCode(t *testing.T) {
	for _, code := range []int{22, 46, 23, 77} {
		if got := ParseTeamKindCode(code).Code(); got != code {
			t.Errorf("Code() round trip for %d = %d", code, got)
		}
	}
	if got := TeamKindUnrecognized.Code(); got != 0 {
		t.Errorf("TeamKindUnrecognized.Code() = %d, want 0", got)
	}
}
