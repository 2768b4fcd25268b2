package dataset

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

// Load reads a dataset file. Files ending in .zst are zstd compressed JSON.
func Load(path string) (Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	if strings.HasSuffix(path, ".zst") {
		r, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("zstd: failed to create reader: %w", err)
		}
		defer r.Close()

		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("zstd: failed to decompress dataset: %w", err)
		}
		data = out
	}

	var raw datasetFile
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal dataset: %w", err)
	}

	ds := make(Dataset, len(raw.Seasons))
	for key, sf := range raw.Seasons {
		year, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("season key %q is not a year: %w", key, err)
		}
		s, err := sf.toSeason(year)
		if err != nil {
			return nil, err
		}
		ds[year] = s
	}

	log.Debug().Str("path", path).Int("seasons", len(ds)).Msg("loaded dataset")
	return ds, nil
}

// Save writes ds to path, compressing when path ends in .zst.
func Save(path string, ds Dataset) error {
	raw := datasetFile{Seasons: make(map[string]seasonFile, len(ds))}
	for year, s := range ds {
		if err := s.Validate(); err != nil {
			return err
		}
		raw.Seasons[strconv.Itoa(year)] = seasonFile{
			Teams:       s.Teams,
			Comparisons: rows(s.Comparisons),
			Features:    rows(s.Features),
		}
	}

	data, err := sonic.Marshal(raw)
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}

	if strings.HasSuffix(path, ".zst") {
		var buf bytes.Buffer
		w, err := zstd.NewWriter(&buf)
		if err != nil {
			return fmt.Errorf("zstd: failed to create writer: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			w.Close()
			return fmt.Errorf("zstd: failed to compress dataset: %w", err)
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("zstd: failed to flush dataset: %w", err)
		}
		data = buf.Bytes()
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dataset dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// Years returns the dataset's years in ascending order.
func (ds Dataset) Years() []int {
	years := make([]int, 0, len(ds))
	for y := range ds {
		years = append(years, y)
	}
	slices.Sort(years)
	return years
}

func (sf seasonFile) toSeason(year int) (*Season, error) {
	c, err := dense(sf.Comparisons)
	if err != nil {
		return nil, fmt.Errorf("season %d comparisons: %w", year, err)
	}
	x, err := dense(sf.Features)
	if err != nil {
		return nil, fmt.Errorf("season %d features: %w", year, err)
	}
	s := &Season{Year: year, Teams: sf.Teams, Comparisons: c, Features: x}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the season's matrix dimensions and skew symmetry.
func (s *Season) Validate() error {
	if s.Comparisons == nil || s.Features == nil {
		return fmt.Errorf("season %d: %w", s.Year, ErrEmpty)
	}
	r, c := s.Comparisons.Dims()
	if r != c {
		return fmt.Errorf("season %d: %w: comparisons are %dx%d", s.Year, ErrShape, r, c)
	}
	if xr, _ := s.Features.Dims(); xr != r {
		return fmt.Errorf("season %d: %w: %d feature rows for %d teams", s.Year, ErrShape, xr, r)
	}
	if s.Teams != nil && len(s.Teams) != r {
		return fmt.Errorf("season %d: %w: %d team names for %d teams", s.Year, ErrShape, len(s.Teams), r)
	}
	if i, j, ok := firstNonFinite(s.Comparisons); ok {
		return fmt.Errorf("season %d: %w: comparisons at (%d, %d)", s.Year, ErrNonFinite, i, j)
	}
	if i, j, ok := firstNonFinite(s.Features); ok {
		return fmt.Errorf("season %d: %w: features at (%d, %d)", s.Year, ErrNonFinite, i, j)
	}
	for i := range r {
		for j := i; j < r; j++ {
			if math.Abs(s.Comparisons.At(i, j)+s.Comparisons.At(j, i)) > skewTolerance {
				return fmt.Errorf("season %d: %w at (%d, %d)", s.Year, ErrAsymmetry, i, j)
			}
		}
	}
	return nil
}

func firstNonFinite(m mat.Matrix) (int, int, bool) {
	r, c := m.Dims()
	for i := range r {
		for j := range c {
			if v := m.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

func dense(data [][]float64) (*mat.Dense, error) {
	if len(data) == 0 || len(data[0]) == 0 {
		return nil, ErrEmpty
	}
	cols := len(data[0])
	m := mat.NewDense(len(data), cols, nil)
	for i, row := range data {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrShape, i, len(row), cols)
		}
		m.SetRow(i, row)
	}
	return m, nil
}

func rows(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range r {
		out[i] = mat.Row(nil, i, m)
	}
	return out
}
