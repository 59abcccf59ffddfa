package utils

import (
	"fmt"
	"log"
)

// ItemError records which item of a batch failed and why
type ItemError struct {
	Index int
	Err   error
}

// ForEachIsolated runs process over every item, capturing each item's failure
// so it cannot abort the rest of the batch. A panic inside process is captured
// as that item's error. Returns the number of items processed successfully and
// the failures.
func ForEachIsolated[T any](label string, items []T, process func(item T) error) (int, []ItemError) {
	processed := 0
	var failures []ItemError

	for i, item := range items {
		if err := runIsolated(item, process); err != nil {
			log.Printf("[%s] item %d/%d failed: %v", label, i+1, len(items), err)
			failures = append(failures, ItemError{Index: i, Err: err})
			continue
		}
		processed++
	}
	return processed, failures
}

func runIsolated[T any](item T, process func(item T) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return process(item)
}
