package session

import "time"

// EndPolicy decides what happens when the timeline index would wrap past the
// last item. The looping behavior is the one observed in production demos;
// halt surfaces an explicit course-complete event instead.
type EndPolicy string

const (
	EndPolicyLoop EndPolicy = "loop"
	EndPolicyHalt EndPolicy = "halt"
)

// Policy carries every fixed delay and count the state machines use. Tests
// shrink these to milliseconds; the host loads them from configuration.
type Policy struct {
	WelcomeDelay        time.Duration // student welcome screen before index 0
	FallbackAdvance     time.Duration // demo delay for items without a duration
	BreakSeconds        int           // break overlay countdown
	BreakoutSeconds     int           // broadcast breakout round duration
	CameraGrace         time.Duration // warning-to-locked window
	BeepInterval        time.Duration // repeating camera alert burst cadence
	SelfieVerifyDelay   time.Duration // simulated identity check
	VoiceAnalysisDelay  time.Duration // simulated voice print analysis
	ClassStartHour      int           // next-class countdown boundary (local)
	EndPolicy           EndPolicy
	AEPMBreakoutRounds  int // rounds before the AEPM simulation halts
	MakeupFeeCents      int // default fee when the course configures none
	TickInterval        time.Duration // 1 Hz countdown resolution
}

func DefaultPolicy() Policy {
	return Policy{
		WelcomeDelay:       5 * time.Second,
		FallbackAdvance:    7 * time.Second,
		BreakSeconds:       5,
		BreakoutSeconds:    5,
		CameraGrace:        3 * time.Second,
		BeepInterval:       time.Second,
		SelfieVerifyDelay:  1500 * time.Millisecond,
		VoiceAnalysisDelay: 2 * time.Second,
		ClassStartHour:     9,
		EndPolicy:          EndPolicyLoop,
		AEPMBreakoutRounds: 2,
		MakeupFeeCents:     7500,
		TickInterval:       time.Second,
	}
}

// advanceDelay returns how long the engine waits on a timed item before
// advancing. Suspending item types (quiz, break, breakout) never reach this.
func (p Policy) advanceDelay(durationMinutes float64) time.Duration {
	if durationMinutes > 0 {
		return time.Duration(durationMinutes * float64(time.Minute))
	}
	return p.FallbackAdvance
}
