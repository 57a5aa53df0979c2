// Package export runs point cloud exports for a batch of scene objects and
// reports the outcome of each.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/meshpcd/internal/pointcloud"
	"github.com/Faultbox/meshpcd/internal/sampler"
	"github.com/Faultbox/meshpcd/internal/scene"
	"github.com/Faultbox/meshpcd/pkg/encoding"
)

// FileSuffix is appended to the cleaned object name.
const FileSuffix = "_pcd.ply"

// FileName returns the output file name for an object.
func FileName(object string) string {
	return encoding.CleanName(object, '_') + FileSuffix
}

// Options control one batch.
type Options struct {
	OutputDir       string
	DensityMin      float32
	DensityMax      float32
	ContinueOnError bool
}

// Result is the outcome for one object.
type Result struct {
	Object   string
	Path     string
	Points   int
	Channels []string
	Err      error
	Kind     Kind
}

// OK reports whether the export succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Report collects the results of one batch.
type Report struct {
	RunID   uuid.UUID
	Results []Result
}

// Exported returns the number of files written.
func (r *Report) Exported() int {
	n := 0
	for _, res := range r.Results {
		if res.OK() {
			n++
		}
	}
	return n
}

// Failed returns the failed results.
func (r *Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if !res.OK() {
			failed = append(failed, res)
		}
	}
	return failed
}

// Recorder stores export results.
type Recorder interface {
	Record(ctx context.Context, runID uuid.UUID, res Result) error
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithRecorder records every result.
func WithRecorder(r Recorder) Option {
	return func(e *Exporter) { e.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Exporter) { e.log = log }
}

// Exporter samples objects and writes one PLY file per mesh.
type Exporter struct {
	sampler  sampler.SurfaceSampler
	recorder Recorder
	log      *zap.Logger
}

// NewExporter creates an exporter.
func NewExporter(s sampler.SurfaceSampler, opts ...Option) *Exporter {
	e := &Exporter{sampler: s, log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExportAll exports every mesh in objects, in order. Other object kinds are
// skipped. Without any mesh it fails with ErrEmptySelection before touching
// the file system. The returned error is the first failure when
// ContinueOnError is unset; otherwise callers inspect Report.Failed.
func (e *Exporter) ExportAll(ctx context.Context, objects []*scene.Object, opts Options) (*Report, error) {
	report := &Report{RunID: uuid.New()}

	var meshes []*scene.Object
	for _, obj := range objects {
		if obj.Kind != scene.KindMesh {
			e.log.Debug("skipping non-mesh object", zap.String("object", obj.Name), zap.String("kind", string(obj.Kind)))
			continue
		}
		meshes = append(meshes, obj)
	}
	if len(meshes) == 0 {
		return report, ErrEmptySelection
	}

	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return report, fmt.Errorf("%w: creating output directory: %v", ErrIOFailure, err)
	}

	log := e.log.With(zap.String("run", report.RunID.String()))
	log.Info("exporting point clouds",
		zap.Int("meshes", len(meshes)),
		zap.String("dir", dir),
		zap.Float32("density_min", opts.DensityMin),
		zap.Float32("density_max", opts.DensityMax))

	written := make(map[string]string)
	for _, obj := range meshes {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		res := e.exportOne(ctx, obj, dir, opts)
		report.Results = append(report.Results, res)

		if e.recorder != nil {
			if err := e.recorder.Record(ctx, report.RunID, res); err != nil {
				log.Warn("recording export failed", zap.String("object", obj.Name), zap.Error(err))
			}
		}

		if !res.OK() {
			log.Error("export failed",
				zap.String("object", obj.Name),
				zap.Stringer("kind", res.Kind),
				zap.Error(res.Err))
			if !opts.ContinueOnError {
				return report, res.Err
			}
			continue
		}

		if prev, ok := written[res.Path]; ok {
			log.Warn("output overwritten", zap.String("path", res.Path), zap.String("previous", prev), zap.String("object", obj.Name))
		}
		written[res.Path] = obj.Name
		log.Info("exported point cloud",
			zap.String("object", obj.Name),
			zap.String("path", res.Path),
			zap.Int("points", res.Points))
	}

	return report, nil
}

func (e *Exporter) exportOne(ctx context.Context, obj *scene.Object, dir string, opts Options) Result {
	res := Result{Object: obj.Name}
	fail := func(err error) Result {
		res.Err = err
		res.Kind = Classify(err)
		return res
	}

	path, err := filepath.Abs(filepath.Join(dir, FileName(obj.Name)))
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrIOFailure, err))
	}
	res.Path = path

	pc, err := e.sampler.Sample(ctx, obj, opts.DensityMin, opts.DensityMax)
	if err != nil {
		return fail(err)
	}

	if err := pointcloud.WriteFile(path, pc); err != nil {
		if !errors.Is(err, pointcloud.ErrMalformed) {
			err = fmt.Errorf("%w: %w", ErrIOFailure, err)
		}
		return fail(err)
	}

	res.Points = pc.Len()
	res.Channels = pc.ChannelNames()
	return res
}
