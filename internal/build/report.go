package build

import "github.com/roach88/luasharp/internal/store"

// FileResult is the outcome for one source file.
type FileResult struct {
	Path   string // source path relative to the source directory, slash separated
	Output string // output path relative to the output directory, slash separated
	Status store.FileStatus
	Err    *FileError // set when Status is store.StatusFailed

	sourceHash string
	outputHash string
}

// Report summarises one build.
type Report struct {
	BuildID string
	Mode    string
	Files   []FileResult
	Removed []string

	Built   int
	Skipped int
	Failed  int
}

func (r *Report) add(res FileResult) {
	r.Files = append(r.Files, res)
	switch res.Status {
	case store.StatusBuilt:
		r.Built++
	case store.StatusSkipped:
		r.Skipped++
	case store.StatusFailed:
		r.Failed++
	}
}

// Errors returns the per-file failures in processing order.
func (r *Report) Errors() []*FileError {
	var out []*FileError
	for _, f := range r.Files {
		if f.Err != nil {
			out = append(out, f.Err)
		}
	}
	return out
}

// OK reports whether no file failed.
func (r *Report) OK() bool { return r.Failed == 0 }
