package bench

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/qrv0/spmvbench/internal/binsparse"
	"github.com/qrv0/spmvbench/internal/hostinfo"
	"github.com/qrv0/spmvbench/internal/sparse"
)

// Output file names inside the output directory.
const (
	MeasurementsFile = "measurements.json"
	RunFile          = "run.json"
)

// Experiment runs the sweep for one instantiation of value and index type.
type Experiment interface {
	IndexType() string
	ValueType() string
	Run(ctx context.Context, ds *binsparse.Dataset, p Params, logger *log.Logger) (*Outcome, error)
}

type experiment[T sparse.Float, I sparse.Index] struct{}

func (experiment[T, I]) IndexType() string { return binsparse.TypeName[I]() }
func (experiment[T, I]) ValueType() string { return binsparse.TypeName[T]() }

func (e experiment[T, I]) Run(ctx context.Context, ds *binsparse.Dataset, p Params, logger *log.Logger) (*Outcome, error) {
	prob, err := binsparse.LoadProblem[T, I](ctx, ds)
	if err != nil {
		return nil, err
	}
	d, err := NewDriver(p, prob, logger)
	if err != nil {
		return nil, err
	}
	started := time.Now().UTC()
	res, err := d.Run(ctx)
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Table: res.Table,
		Info: RunInfo{
			Input:       p.Input,
			Fingerprint: fmt.Sprintf("%016x", prob.Fingerprint),
			Shape:       []int{prob.A.Rows, prob.A.Cols},
			NNZ:         prob.A.NNZ(),
			IndexType:   e.IndexType(),
			ValueType:   e.ValueType(),
			MaxThreads:  p.MaxThreads,
			Methods:     p.Methods,
			MinTime:     p.MinTime.String(),
			MaxReps:     p.MaxReps,
			Started:     started,
			Host:        hostinfo.Detect(),
			Samples:     res.Table,
		},
		writeY: func(dir string) error { return binsparse.WriteDense(dir, binsparse.GroupY, res.Y) },
	}, nil
}

type key struct{ index, value string }

var registry = map[key]Experiment{}

func register(e Experiment) { registry[key{e.IndexType(), e.ValueType()}] = e }

func init() {
	register(experiment[float32, int32]{})
	register(experiment[float64, int32]{})
	register(experiment[float32, int64]{})
	register(experiment[float64, int64]{})
}

// Dispatch picks the experiment matching the pointer and value types declared
// by a CSR descriptor.
func Dispatch(d binsparse.Descriptor) (Experiment, error) {
	k := key{d.DataTypes[binsparse.KeyPointers], d.DataTypes[binsparse.KeyValues]}
	e, ok := registry[k]
	if !ok {
		return nil, fmt.Errorf("%w: index type %q with value type %q", binsparse.ErrUnsupportedType, k.index, k.value)
	}
	return e, nil
}

// RunInfo is written to run.json.
type RunInfo struct {
	Input       string        `json:"input"`
	Fingerprint string        `json:"fingerprint"`
	Shape       []int         `json:"shape"`
	NNZ         int           `json:"nnz"`
	IndexType   string        `json:"index_type"`
	ValueType   string        `json:"value_type"`
	MaxThreads  int           `json:"max_threads"`
	Methods     []string      `json:"methods"`
	MinTime     string        `json:"min_time"`
	MaxReps     int           `json:"max_reps"`
	Started     time.Time     `json:"started"`
	Host        hostinfo.Host `json:"host"`
	Samples     Table         `json:"samples"`
}

// Outcome is a finished sweep that has not been written yet.
type Outcome struct {
	Table  Table
	Info   RunInfo
	writeY func(dir string) error
}

// Write stores y.bspnpy, measurements.json and run.json under dir.
func (o *Outcome) Write(dir string) error {
	if err := o.writeY(dir); err != nil {
		return err
	}
	if err := binsparse.WriteJSON(filepath.Join(dir, MeasurementsFile), o.Table.Measurements()); err != nil {
		return fmt.Errorf("bench: %w", err)
	}
	if err := binsparse.WriteJSON(filepath.Join(dir, RunFile), o.Info); err != nil {
		return fmt.Errorf("bench: %w", err)
	}
	return nil
}

// Run validates p, loads the dataset, runs the sweep and writes the results
// to p.Output. Nothing is written if loading or the sweep fails.
func Run(ctx context.Context, p Params, logger *log.Logger) (*Outcome, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	ds, err := binsparse.Open(p.Input)
	if err != nil {
		return nil, err
	}
	defer ds.Close()
	desc, err := ds.Descriptor(binsparse.GroupA)
	if err != nil {
		return nil, err
	}
	if err := desc.RequireFormat(binsparse.GroupA, binsparse.FormatCSR); err != nil {
		return nil, err
	}
	e, err := Dispatch(desc)
	if err != nil {
		return nil, err
	}
	out, err := e.Run(ctx, ds, p, logger)
	if err != nil {
		return nil, err
	}
	if err := out.Write(p.Output); err != nil {
		return nil, err
	}
	return out, nil
}
