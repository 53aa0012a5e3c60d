package join

import (
	"fmt"
	"storemy/pkg/execution"
	"storemy/pkg/tuple"
	"sync"
)

// Join implements a simple nested loop join: for every left tuple it walks
// the entire right child looking for matches, rewinding the right child
// before moving to the next left tuple. No hash table, no blocking of
// multiple left tuples per pass — one left tuple, one full right scan.
type Join struct {
	base       *execution.BaseIterator // Handles iterator caching logic
	predicate  *JoinPredicate          // Join condition
	leftChild  execution.DbIterator    // Left input operator (outer)
	rightChild execution.DbIterator    // Right input operator (inner)
	tupleDesc  *tuple.TupleDescription // Combined schema of output tuples

	currentLeft    *tuple.Tuple // Left tuple currently being matched against the right child
	hasCurrentLeft bool

	mutex sync.RWMutex // Protects concurrent access
}

// NewJoin creates a new Join operator with the specified predicate and child operators.
func NewJoin(predicate *JoinPredicate, leftChild, rightChild execution.DbIterator) (*Join, error) {
	if predicate == nil {
		return nil, fmt.Errorf("join predicate cannot be nil")
	}
	if leftChild == nil {
		return nil, fmt.Errorf("left child operator cannot be nil")
	}
	if rightChild == nil {
		return nil, fmt.Errorf("right child operator cannot be nil")
	}

	leftTupleDesc := leftChild.GetTupleDesc()
	rightTupleDesc := rightChild.GetTupleDesc()
	if leftTupleDesc == nil || rightTupleDesc == nil {
		return nil, fmt.Errorf("child operators must have valid tuple descriptors")
	}

	combinedTupleDesc := tuple.CombineDesc(leftTupleDesc, rightTupleDesc)
	if combinedTupleDesc == nil {
		return nil, fmt.Errorf("failed to combine tuple descriptors")
	}

	j := &Join{
		predicate:  predicate,
		leftChild:  leftChild,
		rightChild: rightChild,
		tupleDesc:  combinedTupleDesc,
	}

	j.base = execution.NewBaseIterator(j.readNext)
	return j, nil
}

// Open opens both children and positions the left child at its first tuple.
func (j *Join) Open() error {
	if err := j.leftChild.Open(); err != nil {
		return fmt.Errorf("failed to open left child: %v", err)
	}
	if err := j.rightChild.Open(); err != nil {
		return fmt.Errorf("failed to open right child: %v", err)
	}

	j.mutex.Lock()
	defer j.mutex.Unlock()

	if err := j.initializeNestedLoop(); err != nil {
		return fmt.Errorf("failed to initialize nested loop: %v", err)
	}

	j.base.MarkOpened()
	return nil
}

// Rewind resets the join operator to its initial state.
func (j *Join) Rewind() error {
	j.mutex.Lock()
	defer j.mutex.Unlock()

	if err := j.leftChild.Rewind(); err != nil {
		return err
	}
	if err := j.rightChild.Rewind(); err != nil {
		return err
	}

	j.currentLeft = nil
	j.hasCurrentLeft = false

	if err := j.initializeNestedLoop(); err != nil {
		return err
	}

	j.base.ClearCache()
	return nil
}

// Close releases resources held by the join operator and its children.
func (j *Join) Close() error {
	j.mutex.Lock()
	defer j.mutex.Unlock()

	j.currentLeft = nil

	if j.leftChild != nil {
		j.leftChild.Close()
	}
	if j.rightChild != nil {
		j.rightChild.Close()
	}

	return j.base.Close()
}

// GetTupleDesc returns the tuple description for the joined tuples.
func (j *Join) GetTupleDesc() *tuple.TupleDescription {
	return j.tupleDesc
}

// HasNext checks if there are more joined tuples available.
func (j *Join) HasNext() (bool, error) { return j.base.HasNext() }

// Next returns the next joined tuple.
func (j *Join) Next() (*tuple.Tuple, error) { return j.base.Next() }

// initializeNestedLoop sets up the join by pulling the first left tuple.
func (j *Join) initializeNestedLoop() error {
	hasNext, err := j.leftChild.HasNext()
	if err != nil {
		return err
	}

	if hasNext {
		j.currentLeft, err = j.leftChild.Next()
		if err != nil {
			return err
		}
		j.hasCurrentLeft = j.currentLeft != nil
	} else {
		j.hasCurrentLeft = false
	}

	return nil
}

// readNext walks the right child for the current left tuple, advancing to
// the next left tuple (and rewinding the right child) whenever the right
// side is exhausted.
func (j *Join) readNext() (*tuple.Tuple, error) {
	j.mutex.Lock()
	defer j.mutex.Unlock()

	for j.hasCurrentLeft {
		for {
			hasNextRight, err := j.rightChild.HasNext()
			if err != nil {
				return nil, err
			}
			if !hasNextRight {
				break
			}

			rightTuple, err := j.rightChild.Next()
			if err != nil {
				return nil, err
			}
			if rightTuple == nil {
				continue
			}

			matches, err := j.predicate.Filter(j.currentLeft, rightTuple)
			if err != nil {
				return nil, fmt.Errorf("evaluating join predicate: %w", err)
			}

			if matches {
				return tuple.Combine(j.currentLeft, rightTuple)
			}
		}

		hasNextLeft, err := j.leftChild.HasNext()
		if err != nil {
			return nil, err
		}

		if !hasNextLeft {
			j.hasCurrentLeft = false
			return nil, nil
		}

		j.currentLeft, err = j.leftChild.Next()
		if err != nil {
			return nil, err
		}

		j.hasCurrentLeft = j.currentLeft != nil
		if err := j.rightChild.Rewind(); err != nil {
			return nil, err
		}
	}

	return nil, nil
}
