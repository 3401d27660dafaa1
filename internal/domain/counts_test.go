package domain

import "testing"

func TestAllocate(t *testing.T) {
	tests := []struct {
		name   string
		total  int
		ratios SplitRatios
		want   Counts
	}{
		{
			name:   "empty pool",
			total:  0,
			ratios: DefaultSplitRatios(),
			want:   Counts{},
		},
		{
			name:   "single image stays in training",
			total:  1,
			ratios: DefaultSplitRatios(),
			want:   Counts{TrainPositive: 1, TrainNegative: 10},
		},
		{
			name:  "110 images at 10:1",
			total: 110,
			ratios: SplitRatios{
				TrainToTest:             IntRatio(10),
				NegativeToPositiveTrain: IntRatio(10),
				NegativeToPositiveTest:  IntRatio(100),
			},
			want: Counts{TrainPositive: 100, TestPositive: 10, TrainNegative: 1000, TestNegative: 1000},
		},
		{
			name:  "even split at 1:1 rounds test down",
			total: 7,
			ratios: SplitRatios{
				TrainToTest:             IntRatio(1),
				NegativeToPositiveTrain: IntRatio(1),
				NegativeToPositiveTest:  IntRatio(1),
			},
			want: Counts{TrainPositive: 4, TestPositive: 3, TrainNegative: 4, TestNegative: 3},
		},
		{
			name:  "fractional ratios truncate",
			total: 10,
			ratios: SplitRatios{
				TrainToTest:             Ratio{Num: 3, Den: 2},
				NegativeToPositiveTrain: Ratio{Num: 1, Den: 3},
				NegativeToPositiveTest:  Ratio{Num: 5, Den: 2},
			},
			// test = floor(10 / 2.5) = 4, train = 6, train- = floor(2) = 2, test- = floor(10) = 10
			want: Counts{TrainPositive: 6, TestPositive: 4, TrainNegative: 2, TestNegative: 10},
		},
		{
			name:   "defaults on 21 images",
			total:  21,
			ratios: DefaultSplitRatios(),
			want:   Counts{TrainPositive: 20, TestPositive: 1, TrainNegative: 200, TestNegative: 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Allocate(tt.total, tt.ratios)
			if err != nil {
				t.Fatalf("Allocate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Allocate(%d) = %+v, want %+v", tt.total, got, tt.want)
			}
		})
	}
}

func TestAllocate_NoImageLostOrDuplicated(t *testing.T) {
	ratios := []Ratio{IntRatio(1), IntRatio(2), IntRatio(20), {Num: 3, Den: 2}, {Num: 1, Den: 7}}
	for _, r := range ratios {
		for total := 0; total <= 250; total++ {
			c, err := Allocate(total, SplitRatios{
				TrainToTest:             r,
				NegativeToPositiveTrain: IntRatio(1),
				NegativeToPositiveTest:  IntRatio(1),
			})
			if err != nil {
				t.Fatalf("Allocate(%d, %s) error = %v", total, r, err)
			}
			if c.TrainPositive+c.TestPositive != total {
				t.Fatalf("Allocate(%d, %s): %d + %d != total", total, r, c.TrainPositive, c.TestPositive)
			}
			want := total * int(r.Den) / int(r.Den+r.Num)
			if c.TestPositive != want {
				t.Fatalf("Allocate(%d, %s): test = %d, want %d", total, r, c.TestPositive, want)
			}
		}
	}
}

func TestAllocate_NegativesMonotonicInRatio(t *testing.T) {
	prevTrain, prevTest := -1, -1
	for num := int64(1); num <= 40; num++ {
		c, err := Allocate(57, SplitRatios{
			TrainToTest:             IntRatio(4),
			NegativeToPositiveTrain: Ratio{Num: num, Den: 3},
			NegativeToPositiveTest:  Ratio{Num: num, Den: 7},
		})
		if err != nil {
			t.Fatalf("Allocate() error = %v", err)
		}
		if c.TrainNegative < prevTrain || c.TestNegative < prevTest {
			t.Fatalf("negatives decreased at num=%d: %+v", num, c)
		}
		prevTrain, prevTest = c.TrainNegative, c.TestNegative
	}
}

func TestAllocate_Errors(t *testing.T) {
	if _, err := Allocate(-1, DefaultSplitRatios()); err == nil {
		t.Error("expected error for negative total")
	}

	huge := SplitRatios{
		TrainToTest:             IntRatio(1),
		NegativeToPositiveTrain: IntRatio(1 << 62),
		NegativeToPositiveTest:  IntRatio(1),
	}
	if _, err := Allocate(1<<20, huge); err == nil {
		t.Error("expected overflow error")
	}
}

func TestCounts_Quota(t *testing.T) {
	c := Counts{TrainPositive: 1, TrainNegative: 2, TestPositive: 3, TestNegative: 4}
	want := map[Bucket]int{TrainPositive: 1, TrainNegative: 2, TestPositive: 3, TestNegative: 4}
	for b, n := range want {
		if got := c.Quota(b); got != n {
			t.Errorf("Quota(%s) = %d, want %d", b, got, n)
		}
	}
}
