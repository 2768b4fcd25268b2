package bench

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zstd"
)

// FileWriter writes each result to Dir/<seed>_<year>.json, or .json.zst when
// Compress is set.
type FileWriter struct {
	Dir      string
	Compress bool
}

func NewFileWriter(dir string, compress bool) (*FileWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &FileWriter{Dir: dir, Compress: compress}, nil
}

// Path returns the file a result for job would be written to.
func (w *FileWriter) Path(job Job) string {
	name := fmt.Sprintf("%d_%d.json", job.Seed, job.Year)
	if w.Compress {
		name += ".zst"
	}
	return filepath.Join(w.Dir, name)
}

func (w *FileWriter) Write(res *Result) error {
	data, err := sonic.ConfigStd.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	if w.Compress {
		var buf bytes.Buffer
		zw, err := zstd.NewWriter(&buf)
		if err != nil {
			return fmt.Errorf("zstd: failed to create writer: %w", err)
		}
		if _, err := zw.Write(data); err != nil {
			zw.Close()
			return fmt.Errorf("zstd: failed to compress result: %w", err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("zstd: failed to flush result: %w", err)
		}
		data = buf.Bytes()
	}

	path := w.Path(Job{Seed: res.Seed, Year: res.Year})
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

// ReadResult loads a result written by FileWriter.
func ReadResult(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) == ".zst" {
		zr, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("zstd: failed to create reader: %w", err)
		}
		defer zr.Close()
		if data, err = zr.DecodeAll(data, nil); err != nil {
			return nil, fmt.Errorf("zstd: failed to decompress result: %w", err)
		}
	}

	var res Result
	if err := sonic.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	return &res, nil
}
