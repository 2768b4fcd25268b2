package bench

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/tensorplex-labs/rankbench/internal/config"
	"github.com/tensorplex-labs/rankbench/internal/dataset"
	"github.com/tensorplex-labs/rankbench/internal/ranking"
	"github.com/tensorplex-labs/rankbench/internal/scoring"
)

var ErrMissingYear = errors.New("year not in dataset")

// ResultWriter persists finished results. Write may be called from several
// goroutines, once per job.
type ResultWriter interface {
	Write(res *Result) error
}

type Runner struct {
	dataset dataset.Dataset
	writer  ResultWriter

	seeds          []int
	years          []int
	trainRatio     float64
	sparsity       float64
	methods        []string
	methodsConfig  config.MethodsConfig
	workers        int
	featureScaling bool
	runID          string
}

// NewRunner builds a runner with the defaults of config.Default, adjusted
// by opts.
func NewRunner(ds dataset.Dataset, writer ResultWriter, opts ...RunnerOption) (*Runner, error) {
	def := config.Default()
	r := &Runner{
		dataset:        ds,
		writer:         writer,
		seeds:          def.Experiment.Seeds,
		years:          def.Experiment.Years,
		trainRatio:     def.Experiment.TrainRatio,
		sparsity:       def.Experiment.Sparsity,
		methodsConfig:  def.Methods,
		workers:        def.Experiment.Workers,
		featureScaling: def.Experiment.FeatureScaling,
	}

	for _, opt := range opts {
		opt(r)
	}

	methods, err := ranking.Resolve(r.methods)
	if err != nil {
		return nil, err
	}
	r.methods = methods
	if r.workers < 1 {
		r.workers = 1
	}
	if r.runID == "" {
		r.runID = uuid.NewString()
	}
	return r, nil
}

// Methods returns the method keys the runner fits, in benchmark order.
func (r *Runner) Methods() []string { return r.methods }

func (r *Runner) RunID() string { return r.runID }

func dedupe(xs []int) []int {
	seen := make(map[int]bool, len(xs))
	out := make([]int, 0, len(xs))
	for _, x := range xs {
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}
	return out
}

// Jobs expands the seed and year lists in seed-major order. Repeated seeds or
// years yield one job each.
func (r *Runner) Jobs() ([]Job, error) {
	seeds, years := dedupe(r.seeds), dedupe(r.years)
	for _, y := range years {
		if _, ok := r.dataset[y]; !ok {
			return nil, fmt.Errorf("%w: %d", ErrMissingYear, y)
		}
	}
	jobs := make([]Job, 0, len(seeds)*len(years))
	for _, s := range seeds {
		for _, y := range years {
			jobs = append(jobs, Job{Seed: s, Year: y})
		}
	}
	return jobs, nil
}

// Run executes every job, writing each result as soon as it is ready. The
// first failure cancels the remaining jobs and is returned. Results are in
// job order.
func (r *Runner) Run(ctx context.Context) ([]*Result, error) {
	jobs, err := r.Jobs()
	if err != nil {
		return nil, err
	}
	log.Info().Str("run_id", r.runID).Int("jobs", len(jobs)).Int("workers", r.workers).
		Strs("methods", r.methods).Msg("starting benchmark")

	results := make([]*Result, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, job := range jobs {
		g.Go(func() error {
			res, err := r.RunJob(gctx, job)
			if err != nil {
				return err
			}
			if err := r.writer.Write(res); err != nil {
				return fmt.Errorf("write result %s: %w", job, err)
			}
			log.Info().Int("seed", res.Seed).Int("year", res.Year).
				Interface("train", res.Train).Interface("test", res.Test).
				Msg("job finished")
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RunJob performs one benchmark iteration: split the season's comparisons,
// hold out unseen items, build the kernel problem and score every method.
func (r *Runner) RunJob(ctx context.Context, job Job) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	season, ok := r.dataset[job.Year]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrMissingYear, job.Year)
	}

	rng := rand.New(rand.NewPCG(uint64(job.Seed), uint64(job.Seed)))
	cTrain, cTest, err := dataset.SplitComparisons(season.Comparisons, r.trainRatio, rng)
	if err != nil {
		return nil, fmt.Errorf("%s: split: %w", job, err)
	}
	trial, err := dataset.UnseenSetup(cTrain, cTest, season.Features, r.sparsity, rng)
	if err != nil {
		return nil, fmt.Errorf("%s: unseen setup: %w", job, err)
	}

	x, xTest := trial.X, trial.XTest
	if r.featureScaling {
		scaler := scoring.FitMinMaxScaler(x)
		x, xTest = scaler.Transform(x), scaler.Transform(xTest)
	}

	problem, err := ranking.NewProblem(trial.CTrain, x)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", job, err)
	}
	unseen := problem.NewUnseen(xTest)
	log.Debug().Stringer("job", job).Int("seen", len(trial.Seen)).Int("unseen", len(trial.Unseen)).
		Int("train_choices", len(problem.Choices)).Float64("lengthscale", problem.Kernel.Lengthscale).
		Msg("prepared trial")

	rankers, err := ranking.Build(r.methods, r.methodsConfig)
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID:   r.runID,
		Year:    job.Year,
		Seed:    job.Seed,
		Train:   make(map[string]float64, len(rankers)),
		Test:    make(map[string]float64, len(rankers)),
		Elapsed: make(map[string]float64, len(rankers)),
	}
	for _, rk := range rankers {
		start := time.Now()
		train, test, err := evaluate(ctx, rk, problem, unseen, trial.CTest)
		if err != nil {
			return nil, fmt.Errorf("%s: method %s: %w", job, rk.Name(), err)
		}
		res.Train[rk.Name()] = train
		res.Test[rk.Name()] = test
		res.Elapsed[rk.Name()] = time.Since(start).Seconds()
		log.Trace().Stringer("job", job).Str("method", rk.Name()).Float64("train", train).
			Float64("test", test).Dur("elapsed", time.Since(start)).Msg("method scored")
	}
	return res, nil
}

func evaluate(ctx context.Context, rk ranking.Ranker, p *ranking.Problem, u *ranking.Unseen, cTest mat.Matrix) (train, test float64, err error) {
	if err := rk.Fit(ctx, p); err != nil {
		return 0, 0, err
	}
	train, err = scoring.ExtractUpsets(rk.Scores(), p.C)
	if err != nil {
		return 0, 0, err
	}

	pr, ok := rk.(ranking.Predictor)
	if !ok {
		return train, 0, nil
	}
	pred, err := pr.Predict(u)
	if err != nil {
		return 0, 0, err
	}
	test, err = scoring.ExtractUpsets(pred, cTest)
	if err != nil {
		return 0, 0, err
	}
	return train, test, nil
}
