package report

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestTier_String(t *testing.T) {
	cases := map[Tier]string{
		TierRecovered:  "recovered",
		TierGuestFault: "guest-fault",
		TierFatal:      "fatal",
	}
	for tier, want := range cases {
		if got := tier.String(); got != want {
			t.Errorf("Tier(%d).String() = %q, want %q", tier, got, want)
		}
	}
}

func TestRecordingSink_CollectsReports(t *testing.T) {
	var sink RecordingSink
	sink.Fatal("frontend", "ICE: scope mismatch")
	sink.Fatal("codegen", "post-collection usage above ceiling")

	if len(sink.Reports) != 2 {
		t.Fatalf("reports = %d, want 2", len(sink.Reports))
	}
	if sink.Reports[0] != "frontend: ICE: scope mismatch" {
		t.Errorf("first report = %q", sink.Reports[0])
	}
}

func TestNewLogger_SilentByDefault(t *testing.T) {
	log := NewLogger(false)
	if log.GetLevel() != zerolog.Disabled {
		t.Errorf("non-verbose logger level = %v, want disabled", log.GetLevel())
	}
	if NewLogger(true).GetLevel() != zerolog.DebugLevel {
		t.Errorf("verbose logger not at debug level")
	}
}
