package dataset

import (
	"fmt"
	"math/rand"
	"sort"
)

// SplitIndices shuffles 0..n-1 with the given seed and cuts the
// permutation at ratio. The same (n, ratio, seed) triple always yields the
// same partition.
func SplitIndices(n int, ratio float64, seed int64) (train, test []int, err error) {
	if n < 2 {
		return nil, nil, fmt.Errorf("split: need at least 2 rows, have %d", n)
	}
	if ratio <= 0 || ratio >= 1 {
		return nil, nil, fmt.Errorf("split: ratio must be in (0, 1), have %g", ratio)
	}
	nTrain := int(float64(n) * ratio)
	if nTrain < 1 {
		nTrain = 1
	}
	if nTrain > n-1 {
		nTrain = n - 1
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	train = append([]int(nil), perm[:nTrain]...)
	test = append([]int(nil), perm[nTrain:]...)
	sort.Ints(train)
	sort.Ints(test)
	return train, test, nil
}

// Split partitions a table into train and test views using SplitIndices.
func Split(t *Table, ratio float64, seed int64) (train, test *Table, err error) {
	trainIdx, testIdx, err := SplitIndices(t.Nrow(), ratio, seed)
	if err != nil {
		return nil, nil, err
	}
	if train, err = t.Subset(trainIdx); err != nil {
		return nil, nil, fmt.Errorf("train subset: %w", err)
	}
	if test, err = t.Subset(testIdx); err != nil {
		return nil, nil, fmt.Errorf("test subset: %w", err)
	}
	return train, test, nil
}

// Folds assigns each of n rows to one of k cross-validation folds. The
// permutation is seeded, so fold membership is reproducible; fold sizes
// differ by at most one row.
func Folds(n, k int, seed int64) ([][]int, error) {
	if k < 2 {
		return nil, fmt.Errorf("folds: need at least 2 folds, have %d", k)
	}
	if n < k {
		return nil, fmt.Errorf("folds: %d rows cannot fill %d folds", n, k)
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	folds := make([][]int, k)
	for i, idx := range perm {
		f := i % k
		folds[f] = append(folds[f], idx)
	}
	for _, f := range folds {
		sort.Ints(f)
	}
	return folds, nil
}
