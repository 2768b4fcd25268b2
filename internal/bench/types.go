// Package bench runs the ranking benchmark over a grid of (seed, year) jobs
// and persists one result record per job.
package bench

import "fmt"

// Job identifies one benchmark iteration. The seed alone drives every random
// choice inside the job.
type Job struct {
	Seed int
	Year int
}

func (j Job) String() string {
	return fmt.Sprintf("seed=%d year=%d", j.Seed, j.Year)
}

// Result is the record written for one job. Train and Test map a method key
// to its upset rate; methods that cannot score unseen items report 0 test
// upsets.
type Result struct {
	RunID   string             `json:"run_id"`
	Year    int                `json:"year"`
	Seed    int                `json:"seed"`
	Train   map[string]float64 `json:"train"`
	Test    map[string]float64 `json:"test"`
	Elapsed map[string]float64 `json:"elapsed_seconds"`
}

// MethodSummary aggregates one method's upset rates across jobs.
type MethodSummary struct {
	Method    string
	Inductive bool
	Runs      int
	TrainMean float64
	TrainStd  float64
	TestMean  float64
	TestStd   float64
}
