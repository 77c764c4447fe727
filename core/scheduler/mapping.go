package scheduler

import (
	"errors"
	"fmt"

	"github.com/kilianp07/qsched/core/factory"
	"github.com/kilianp07/qsched/core/model"
	"github.com/kilianp07/qsched/core/resource"
)

// WorstFitAlgorithm is the name of the built-in worst-fit mapper.
const WorstFitAlgorithm = "worst-fit"

// Mapper assigns periodic jobs to resources before scheduling.
type Mapper interface {
	Map(resources []*resource.Resource, periodic []model.PeriodicJob) error
}

var mappers = factory.NewRegistry[Mapper]()

func init() {
	_ = RegisterMapper(WorstFitAlgorithm, func(map[string]any) (Mapper, error) { return WorstFit{}, nil })
}

// RegisterMapper makes a mapping algorithm available to NewMapper.
func RegisterMapper(name string, f factory.Factory[Mapper]) error {
	return mappers.Register(name, f)
}

// MapperNames lists the registered mapping algorithms.
func MapperNames() []string { return mappers.Types() }

// NewMapper returns the mapper registered under name.
func NewMapper(name string) (Mapper, error) {
	m, err := mappers.Create(factory.ModuleConfig{Type: name})
	if errors.Is(err, factory.ErrUnknownType) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
	}
	return m, err
}

// WorstFit assigns each job, in input order, to the resource with the
// greatest residual capacity among those that can still hold it.
type WorstFit struct{}

func (WorstFit) Map(resources []*resource.Resource, periodic []model.PeriodicJob) error {
	for _, p := range periodic {
		need := p.RequiredRate()
		var candidate *resource.Resource
		for _, r := range resources {
			if r.Available() >= need && (candidate == nil || r.Available() > candidate.Available()) {
				candidate = r
			}
		}
		if candidate == nil {
			return fmt.Errorf("%w: periodic job %d needs %.2f instructions per tick", ErrMappingFailed, p.ID, need)
		}
		candidate.Assign(p)
	}
	return nil
}
