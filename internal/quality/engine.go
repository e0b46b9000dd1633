package quality

import (
	"errors"
	"fmt"
	"log"

	"storedw/pkg/records"
)

// ErrMissingColumn is the engine's only fatal condition: a mandatory column
// entirely absent from the parsed header set. Bad values are a row problem;
// a missing column means the wrong file.
var ErrMissingColumn = errors.New("mandatory column missing from input")

// Stage is one pass of the cleaning pipeline. Stages receive the full row set
// and the shared report, and return the surviving rows.
type Stage interface {
	Name() string
	Apply(rows []records.Record, rep *Report) []records.Record
}

// Engine runs a dataset's full cleaning pipeline in fixed stage order.
type Engine struct {
	contract Contract
	stages   []Stage
}

// NewEngine builds the pipeline for a contract. iqrK is the IQR fence
// multiplier for statistical outlier bounds.
func NewEngine(c Contract, iqrK float64) *Engine {
	return &Engine{
		contract: c,
		stages: []Stage{
			profileStage{contract: c},
			dedupStage{contract: c},
			missingStage{contract: c},
			outlierStage{contract: c, k: iqrK},
			validateStage{contract: c},
			newStandardizeStage(c),
		},
	}
}

// Run cleans rows parsed from a file whose canonical header set is columns.
// It returns the clean rows and the per-stage report; the error is non-nil
// only for the fatal missing-column condition.
func (e *Engine) Run(rows []records.Record, columns []string) ([]records.Record, *Report, error) {
	if err := e.checkColumns(columns); err != nil {
		return nil, nil, err
	}

	rep := NewReport(e.contract.Dataset)
	rep.Input = len(rows)
	for _, st := range e.stages {
		before := len(rows)
		rows = st.Apply(rows, rep)
		log.Printf("quality: dataset=%s stage=%s in=%d out=%d",
			e.contract.Dataset, st.Name(), before, len(rows))
	}
	rep.Output = len(rows)
	rep.Log()
	return rows, rep, nil
}

func (e *Engine) checkColumns(columns []string) error {
	have := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		have[c] = struct{}{}
	}
	for _, name := range e.contract.CriticalFields() {
		if _, ok := have[name]; !ok {
			return fmt.Errorf("%w: dataset=%s column=%s", ErrMissingColumn, e.contract.Dataset, name)
		}
	}
	return nil
}
