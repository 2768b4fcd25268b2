package main

import (
	"flag"
	"math/rand/v2"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/rankbench/internal/dataset"
	"github.com/tensorplex-labs/rankbench/internal/utils/logger"
)

var (
	out       = flag.String("out", "data/synthetic.json", "output dataset file, .zst suffix compresses")
	teams     = flag.Int("teams", 32, "teams per season")
	features  = flag.Int("features", 8, "features per team")
	games     = flag.Int("games", 16, "games played per team")
	noise     = flag.Float64("noise", 0.3, "stddev of feature noise")
	years     = flag.Int("years", 19, "number of seasons")
	startYear = flag.Int("start-year", 2000, "first season")
	seed      = flag.Uint64("seed", 0, "random seed")
)

func main() {
	logger.Init()

	opts := dataset.SynthOptions{
		Teams:        *teams,
		Features:     *features,
		GamesPerTeam: *games,
		FeatureNoise: *noise,
	}
	rng := rand.New(rand.NewPCG(*seed, *seed))

	ds, err := dataset.SynthesizeDataset(*startYear, *years, opts, rng)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to synthesize dataset")
	}
	if err := dataset.Save(*out, ds); err != nil {
		log.Fatal().Err(err).Str("path", *out).Msg("failed to save dataset")
	}

	log.Info().Str("path", *out).Int("seasons", len(ds)).Int("teams", opts.Teams).Msg("synthetic dataset written")
}
