package timestamp

import (
	"testing"
	"time"
)

func TestFromFragmentsFullStamp(t *testing.T) {
	ts, ok := FromFragments("ADNI_123_S_4567_20180315120000_I999999")
	if !ok {
		t.Fatal("expected a timestamp")
	}
	want := time.Date(2018, 3, 15, 12, 0, 0, 0, time.UTC)
	if !ts.Equal(want) {
		t.Fatalf("expected %v, got %v", want, ts)
	}
}

func TestFromFragmentsPrefers14Over8(t *testing.T) {
	// The second fragment holds an 8-digit date, the first a full stamp; the
	// 14-digit rule must win regardless of fragment order.
	ts, ok := FromFragments("scan_20190401", "sub_20180315120000_x")
	if !ok {
		t.Fatal("expected a timestamp")
	}
	if ts.Year() != 2018 || ts.Hour() != 12 {
		t.Fatalf("expected 14-digit match to win, got %v", ts)
	}
}

func TestFromFragmentsDateOnlyDefaultsMidnight(t *testing.T) {
	ts, ok := FromFragments("/data/sub-01/ses-20170102/anat.nii.gz")
	if !ok {
		t.Fatal("expected a timestamp")
	}
	want := time.Date(2017, 1, 2, 0, 0, 0, 0, time.UTC)
	if !ts.Equal(want) {
		t.Fatalf("expected %v, got %v", want, ts)
	}
}

func TestFromFragmentsBareYear(t *testing.T) {
	ts, ok := FromFragments("baseline_1999_followup")
	if !ok {
		t.Fatal("expected a timestamp")
	}
	want := time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
	if !ts.Equal(want) {
		t.Fatalf("expected %v, got %v", want, ts)
	}
}

func TestFromFragmentsRejectsEmbeddedRuns(t *testing.T) {
	// 16 digits: neither the 14-digit nor the 8-digit rule may fire on a
	// substring of a longer number.
	if _, ok := FromFragments("id_2018031512000099"); ok {
		t.Fatal("expected no timestamp from an embedded digit run")
	}
}

func TestFromFragmentsRejectsInvalidCalendarDate(t *testing.T) {
	// Looks like a date-shaped run but the month is impossible.
	if _, ok := FromFragments("x_20181340_y"); ok {
		t.Fatal("expected invalid month to be rejected")
	}
}

func TestFromFragmentsRejectsOutOfRangeYears(t *testing.T) {
	// Date-shaped digit runs whose year falls outside 1000-2999 are numeric
	// identifiers, not acquisition dates.
	for _, fragment := range []string{"I0999_baseline", "x_30180315_y", "ses_99991231000000"} {
		if _, ok := FromFragments(fragment); ok {
			t.Fatalf("expected no timestamp from %q", fragment)
		}
	}
}

func TestFromFragmentsNoMatch(t *testing.T) {
	if _, ok := FromFragments("no digits here", "I99", ""); ok {
		t.Fatal("expected no timestamp")
	}
}

func TestParseDateValueSheetLayouts(t *testing.T) {
	cases := map[string]time.Time{
		"2016-07-09": time.Date(2016, 7, 9, 0, 0, 0, 0, time.UTC),
		"7/9/2016":   time.Date(2016, 7, 9, 0, 0, 0, 0, time.UTC),
		"2016/7/9":   time.Date(2016, 7, 9, 0, 0, 0, 0, time.UTC),
		"9-Jul-2016": time.Date(2016, 7, 9, 0, 0, 0, 0, time.UTC),
		"20160709":   time.Date(2016, 7, 9, 0, 0, 0, 0, time.UTC),
	}
	for input, want := range cases {
		ts, ok := ParseDateValue(input)
		if !ok {
			t.Fatalf("ParseDateValue(%q) found nothing", input)
		}
		if !ts.Equal(want) {
			t.Fatalf("ParseDateValue(%q) = %v, want %v", input, ts, want)
		}
	}
}

func TestParseDateValueUnparseable(t *testing.T) {
	if _, ok := ParseDateValue("n/a", "unknown", ""); ok {
		t.Fatal("expected no date")
	}
}
