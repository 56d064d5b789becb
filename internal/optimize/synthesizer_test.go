package optimize

import (
	"context"
	"reflect"
	"testing"
)

func TestShapeRegexes(t *testing.T) {
	cases := []struct {
		members []string
		want    []string
	}{
		{[]string{"US", "DE", "FR"}, []string{"^[A-Z]{2}$"}},
		{[]string{"USD", "EUR", "GBP"}, []string{"^[A-Z]{3}$"}},
		{[]string{"A1", "B22", "C333X"}, []string{"^[A-Z0-9]{2,6}$"}},
		{[]string{"OPEN", "SHIPPED"}, nil},
		{[]string{"US", "TOOLONGCODE"}, nil},
	}
	for _, tc := range cases {
		if got := shapeRegexes(tc.members); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("shapeRegexes(%v) = %v, want %v", tc.members, got, tc.want)
		}
	}
}

func TestSynthesizeBuildsCandidate(t *testing.T) {
	candidate, err := NewExampleSynthesizer().Synthesize(context.Background(), Request{
		Description:     "country codes",
		PositiveValues:  []string{"us", "DE", "de", "FR"},
		NegativeValues:  []string{"FR"},
		PositiveHeaders: []string{"country_code", "ship_country"},
		NegativeHeaders: []string{"order id"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(candidate.Members, []string{"DE", "US"}) {
		t.Errorf("members: %v", candidate.Members)
	}
	if len(candidate.Regexes) != 1 || candidate.Regexes[0] != "^[A-Z]{2}$" {
		t.Errorf("regexes: %v", candidate.Regexes)
	}
	if len(candidate.HeaderPatterns) == 0 {
		t.Error("expected learned header patterns")
	}
}

func TestSynthesizeNeedsExamples(t *testing.T) {
	if _, err := NewExampleSynthesizer().Synthesize(context.Background(), Request{Description: "x"}); err == nil {
		t.Fatal("expected error without positive examples")
	}
}
