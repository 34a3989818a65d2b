package converter

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/YuminosukeSato/skpmml/core/parallel"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pkg/log"
	"github.com/YuminosukeSato/skpmml/pmml"
)

// Job converts the dump at Input into the PMML file at Output.
type Job struct {
	Input  string
	Output string
}

// Result is the outcome of one Job.
type Result struct {
	Job
	Err      error
	Duration time.Duration
}

// OutputPath names the PMML file for input inside dir: the input's base
// name without its compression and format extensions, plus ".pmml".
func OutputPath(dir, input string) string {
	base := filepath.Base(input)
	for _, ext := range []string{".zst", ".gz", ".json", ".yaml", ".yml"} {
		base = strings.TrimSuffix(base, ext)
	}
	return filepath.Join(dir, base+".pmml")
}

// ConvertFile reads, converts and writes one dump.
func (c *Converter) ConvertFile(input, output string) error {
	obj, err := store.Open(input)
	if err != nil {
		return err
	}
	doc, err := c.Convert(obj)
	if err != nil {
		return errors.Wrapf(err, "convert %s", input)
	}
	return WriteFile(output, doc)
}

// ConvertAll runs the jobs in parallel. Results keep the order of jobs; a
// failing job does not stop the others.
func (c *Converter) ConvertAll(jobs []Job) []Result {
	results := make([]Result, len(jobs))
	parallel.Parallelize(len(jobs), c.workers, func(start, end int) {
		for i := start; i < end; i++ {
			began := time.Now()
			err := errors.SafeExecute("ConvertFile", func() error {
				return c.ConvertFile(jobs[i].Input, jobs[i].Output)
			})
			results[i] = Result{Job: jobs[i], Err: err, Duration: time.Since(began)}
		}
	})

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			c.logger.Error("Conversion failed", r.Err, log.FileKey, r.Input)
		}
	}
	c.logger.Info("Converted batch",
		log.BatchSizeKey, len(jobs),
		"failed", failed,
	)
	return results
}

// WriteFile marshals doc to path, replacing the file only once the whole
// document has been written.
func WriteFile(path string, doc *pmml.PMML) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	if err = pmml.Marshal(w, doc); err != nil {
		return errors.Wrapf(err, "marshal %s", path)
	}
	if err = w.Flush(); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", path)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "rename %s", path)
	}
	return nil
}
