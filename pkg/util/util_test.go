package util

import (
	"bufio"
	"context"
	"errors"
	"io"
	"math"
	"strings"
	"testing"
)

const eps = 1e-9

// equal operator
func eq(a, b float64) bool {
	return math.Abs(a-b) <= eps
}

func TestWrapErrorf(t *testing.T) {
	orig := errors.New("edge not found")
	err := WrapErrorf(orig, ErrNotFound, "lookup %s failed", "a->b")

	var wrapped *Error
	if !errors.As(err, &wrapped) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if !errors.Is(wrapped.Code(), ErrNotFound) {
		t.Errorf("code: got %v, want ErrNotFound", wrapped.Code())
	}
	if !errors.Is(err, orig) {
		t.Error("wrapped error should keep the original in its chain")
	}
	if wrapped.Error() != "lookup a->b failed" {
		t.Errorf("message: got %q", wrapped.Error())
	}
}

func TestRoundFloat(t *testing.T) {
	testCases := []struct {
		name      string
		val       float64
		precision uint
		want      float64
	}{
		{
			name:      "two decimal places",
			val:       1.23456,
			precision: 2,
			want:      1.23,
		},
		{
			name:      "rounds half up",
			val:       2.675,
			precision: 2,
			want:      2.68,
		},
		{
			name:      "zero precision",
			val:       7.5,
			precision: 0,
			want:      8,
		},
		{
			name:      "negative value",
			val:       -1.005,
			precision: 1,
			want:      -1.0,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundFloat(tt.val, tt.precision)
			if !eq(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReverseG(t *testing.T) {
	arr := []string{"a", "b", "c", "d"}
	got := ReverseG(arr)

	want := []string{"d", "c", "b", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if arr[0] != "a" {
		t.Error("input slice must not be mutated")
	}

	if out := ReverseG([]int{}); len(out) != 0 {
		t.Errorf("empty input: got %v", out)
	}
}

func TestMinIntAndAbs(t *testing.T) {
	if got := MinInt(3, 7); got != 3 {
		t.Errorf("MinInt: got %d, want 3", got)
	}
	if got := MinInt(7, 3); got != 3 {
		t.Errorf("MinInt: got %d, want 3", got)
	}
	if got := Abs(-5); got != 5 {
		t.Errorf("Abs: got %d, want 5", got)
	}
	if got := Abs(5); got != 5 {
		t.Errorf("Abs: got %d, want 5", got)
	}
}

func TestDegreeRadiansRoundTrip(t *testing.T) {
	if !eq(DegreeToRadians(180), math.Pi) {
		t.Errorf("DegreeToRadians(180): got %v", DegreeToRadians(180))
	}
	if !eq(RadiansToDegree(math.Pi/2), 90) {
		t.Errorf("RadiansToDegree(pi/2): got %v", RadiansToDegree(math.Pi/2))
	}
	if !eq(RadiansToDegree(DegreeToRadians(37.5)), 37.5) {
		t.Error("round trip should recover the input")
	}
}

func TestReadLine(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("first\r\nsecond\nlast"))

	line, err := ReadLine(r)
	if err != nil || line != "first" {
		t.Fatalf("got %q err %v, want first", line, err)
	}
	line, err = ReadLine(r)
	if err != nil || line != "second" {
		t.Fatalf("got %q err %v, want second", line, err)
	}
	// final line has no trailing newline
	line, err = ReadLine(r)
	if err != nil || line != "last" {
		t.Fatalf("got %q err %v, want last", line, err)
	}
	if _, err = ReadLine(r); !errors.Is(err, io.EOF) {
		t.Errorf("exhausted reader: got %v, want io.EOF", err)
	}
}

func TestStopConcurrentOperation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	if StopConcurrentOperation(ctx) {
		t.Error("live context should not stop the operation")
	}
	cancel()
	if !StopConcurrentOperation(ctx) {
		t.Error("cancelled context should stop the operation")
	}
}
