package robot

import "testing"

func TestServoCalibration_Clamp(t *testing.T) {
	cal := ServoCalibration{
		RangeMin: 1000,
		RangeMax: 3000,
	}

	tests := []struct {
		pos      int
		expected int
	}{
		{999, 1000},
		{1000, 1000},
		{2000, 2000},
		{3000, 3000},
		{4095, 3000},
	}

	for _, tt := range tests {
		if got := cal.Clamp(tt.pos); got != tt.expected {
			t.Errorf("Clamp(%d) = %d, want %d", tt.pos, got, tt.expected)
		}
	}
}

func TestServoCalibration_Advance(t *testing.T) {
	cal := ServoCalibration{RangeMin: 1000, RangeMax: 3000}
	inverted := ServoCalibration{RangeMin: 1000, RangeMax: 3000, Inverted: true}

	tests := []struct {
		name     string
		cal      ServoCalibration
		pos      int
		speed    int
		expected int
	}{
		{"full forward", cal, 2000, 127, 2040},
		{"full reverse", cal, 2000, -127, 1960},
		{"half", cal, 2000, 64, 2020}, // 64*40/127 = 20.1
		{"stopped", cal, 2000, 0, 2000},
		{"out of range speed", cal, 2000, 500, 2040},
		{"at max", cal, 2990, 127, 3000},
		{"at min", cal, 1000, -127, 1000},
		{"inverted", inverted, 2000, 127, 1960},
	}

	for _, tt := range tests {
		if got := tt.cal.Advance(tt.pos, tt.speed, 40); got != tt.expected {
			t.Errorf("%s: Advance(%d, %d) = %d, want %d", tt.name, tt.pos, tt.speed, got, tt.expected)
		}
	}
}

func TestServoCalibration_Center(t *testing.T) {
	cal := ServoCalibration{RangeMin: 823, RangeMax: 3541}
	if got := cal.Center(); got != 2182 {
		t.Errorf("Center() = %d, want 2182", got)
	}
}

func TestCalibration_ServoIDs(t *testing.T) {
	cal := Calibration{
		Claw:       ServoCalibration{ID: 7},
		FrontLeft:  ServoCalibration{ID: 1},
		BackRight:  ServoCalibration{ID: 4},
		FrontRight: ServoCalibration{ID: 2},
	}

	ids := cal.ServoIDs()
	expected := []int{1, 2, 4, 7}

	if len(ids) != len(expected) {
		t.Fatalf("ServoIDs returned %d IDs, want %d", len(ids), len(expected))
	}

	for i, id := range ids {
		if id != expected[i] {
			t.Errorf("ServoIDs()[%d] = %d, want %d", i, id, expected[i])
		}
	}
}

func TestCalibration_ByID(t *testing.T) {
	cal := Calibration{
		FrontLeft: ServoCalibration{ID: 1, RangeMin: 100, RangeMax: 200},
		Claw:      ServoCalibration{ID: 7, RangeMin: 300, RangeMax: 400},
	}

	ch, sc, ok := cal.ByID(7)
	if !ok {
		t.Fatal("ByID(7) returned false")
	}
	if ch != Claw {
		t.Errorf("ByID(7) returned channel %s, want claw", ch)
	}
	if sc.RangeMin != 300 {
		t.Errorf("ByID(7) returned wrong calibration: %+v", sc)
	}

	_, _, ok = cal.ByID(99)
	if ok {
		t.Error("ByID(99) should return false")
	}
}

func TestAdvanceTargets(t *testing.T) {
	cal := Calibration{
		FrontLeft: ServoCalibration{ID: 1, RangeMin: 1000, RangeMax: 3000},
		Claw:      ServoCalibration{ID: 7, RangeMin: 0, RangeMax: 100},
		LeftArm:   ServoCalibration{ID: 5, RangeMin: 0, RangeMax: 4095},
	}
	targets := map[Channel]int{FrontLeft: 2000, LeftArm: 1234}
	speeds := map[Channel]int{FrontLeft: 127, Claw: -127, FrontRight: 127}

	raw := advanceTargets(targets, speeds, cal, 40)

	// Claw had no target and starts from the middle of its range.
	expected := map[int]int{1: 2040, 7: 10, 5: 1234}
	if len(raw) != len(expected) {
		t.Fatalf("wrote %d servos, want %d: %v", len(raw), len(expected), raw)
	}
	for id, want := range expected {
		if raw[id] != want {
			t.Errorf("servo %d = %d, want %d", id, raw[id], want)
		}
	}
	if targets[Claw] != 10 {
		t.Errorf("claw target = %d, want 10", targets[Claw])
	}

	raw = advanceTargets(targets, speeds, cal, 40)
	if raw[7] != 0 {
		t.Errorf("claw second cycle = %d, want clamped to 0", raw[7])
	}
	if raw[1] != 2080 {
		t.Errorf("front left second cycle = %d, want 2080", raw[1])
	}
}
