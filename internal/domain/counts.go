package domain

import "fmt"

// SplitRatios holds the three ratios fixed for a run
type SplitRatios struct {
	TrainToTest             Ratio // positives kept for training per positive held out for testing
	NegativeToPositiveTrain Ratio
	NegativeToPositiveTest  Ratio
}

// DefaultSplitRatios returns 20 train:test, 10 neg:pos for train and 100 neg:pos for test
func DefaultSplitRatios() SplitRatios {
	return SplitRatios{
		TrainToTest:             IntRatio(20),
		NegativeToPositiveTrain: IntRatio(10),
		NegativeToPositiveTest:  IntRatio(100),
	}
}

// Counts are the four bucket quotas derived from a pool size and SplitRatios
type Counts struct {
	TrainPositive int
	TestPositive  int
	TrainNegative int
	TestNegative  int
}

// TotalPositive returns the number of positive images covered by the counts
func (c Counts) TotalPositive() int {
	return c.TrainPositive + c.TestPositive
}

// Quota returns the count for a bucket
func (c Counts) Quota(b Bucket) int {
	switch {
	case b.Stage == StageTrain && b.Label == LabelPositive:
		return c.TrainPositive
	case b.Stage == StageTrain && b.Label == LabelNegative:
		return c.TrainNegative
	case b.Stage == StageTest && b.Label == LabelPositive:
		return c.TestPositive
	default:
		return c.TestNegative
	}
}

// String renders the counts on one line for logs and messages
func (c Counts) String() string {
	return fmt.Sprintf("train %d+/%d-, test %d+/%d-",
		c.TrainPositive, c.TrainNegative, c.TestPositive, c.TestNegative)
}

// Allocate converts a positive pool size into bucket quotas.
//
//	test+  = floor(total / (1 + trainToTest))
//	train+ = total - test+
//	train- = floor(negTrain * train+)
//	test-  = floor(negTest * test+)
//
// An empty pool yields all zeros; rejecting it is up to the caller.
func Allocate(totalPositive int, ratios SplitRatios) (Counts, error) {
	if totalPositive < 0 {
		return Counts{}, fmt.Errorf("total positive count must not be negative, got %d", totalPositive)
	}

	testPositive, err := ratios.TrainToTest.FloorDivOnePlus(totalPositive)
	if err != nil {
		return Counts{}, err
	}
	trainPositive := totalPositive - testPositive

	trainNegative, err := ratios.NegativeToPositiveTrain.FloorMul(trainPositive)
	if err != nil {
		return Counts{}, fmt.Errorf("train negatives: %w", err)
	}
	testNegative, err := ratios.NegativeToPositiveTest.FloorMul(testPositive)
	if err != nil {
		return Counts{}, fmt.Errorf("test negatives: %w", err)
	}

	return Counts{
		TrainPositive: trainPositive,
		TestPositive:  testPositive,
		TrainNegative: trainNegative,
		TestNegative:  testNegative,
	}, nil
}
