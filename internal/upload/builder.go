package upload

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/Skotchmaster/diamond_shop/internal/logging"
	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/remote"
)

var (
	ErrMissingRequired = errors.New("required fields are not mapped")
	ErrNoSource        = errors.New("no source previewed")
	ErrUnknownField    = errors.New("unknown schema field")
	ErrUnknownHeader   = errors.New("header not in preview")
)

// Builder holds one operator's in-progress import: the previewed source, its
// headers and the field mapping being edited.
type Builder struct {
	api    API
	schema []Field

	mu          sync.Mutex
	source      Source
	headers     []string
	mapping     Mapping
	ambiguities []Ambiguity
	preview     remote.State
	submit      remote.State
	summary     *models.ImportSummary
	gen         uint64
}

func NewBuilder(api API, schema []Field) *Builder {
	if schema == nil {
		schema = DiamondSchema
	}
	return &Builder{
		api:     api,
		schema:  schema,
		mapping: Mapping{},
		preview: remote.State{Status: remote.StatusIdle},
		submit:  remote.State{Status: remote.StatusIdle},
	}
}

type View struct {
	Source      string                `json:"source,omitempty"`
	Kind        Kind                  `json:"kind,omitempty"`
	Schema      []Field               `json:"schema"`
	Headers     []string              `json:"headers"`
	Mapping     Mapping               `json:"mapping"`
	Missing     []string              `json:"missing"`
	Ambiguities []Ambiguity           `json:"ambiguities,omitempty"`
	Preview     remote.State          `json:"preview"`
	Submit      remote.State          `json:"submit"`
	Summary     *models.ImportSummary `json:"summary,omitempty"`
}

// PreviewHeaders lists the field names of src without importing anything. A
// new preview drops the previous source and mapping; on failure the header
// list stays empty.
func (b *Builder) PreviewHeaders(ctx context.Context, src Source) ([]string, error) {
	b.mu.Lock()
	b.gen++
	gen := b.gen
	b.source = src
	b.headers = nil
	b.mapping = Mapping{}
	b.ambiguities = nil
	b.summary = nil
	b.preview = remote.State{Status: remote.StatusLoading}
	b.mu.Unlock()

	headers, err := src.headers(ctx, b.api)

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen {
		return nil, remote.ErrSuperseded
	}
	if err != nil {
		b.preview = remote.State{Status: remote.StatusFailed, Error: remote.ErrorMessage(err)}
		logging.FromContext(ctx).Warn("preview_failed", "kind", src.Kind(), "source", src.Describe(), "error", err)
		return nil, err
	}
	b.headers = headers
	b.preview = remote.State{Status: remote.StatusSucceeded}
	return slices.Clone(headers), nil
}

// AutoMap replaces the mapping with the heuristic proposal for the current headers.
func (b *Builder) AutoMap() (Mapping, []Ambiguity) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, amb := AutoMap(b.schema, b.headers)
	b.mapping = m
	b.ambiguities = amb
	return m.Clone(), slices.Clone(amb)
}

func (b *Builder) Set(field, header string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := lookup(b.schema, field); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if !slices.Contains(b.headers, header) {
		return fmt.Errorf("%w: %s", ErrUnknownHeader, header)
	}
	b.mapping[field] = header
	return nil
}

func (b *Builder) Unset(field string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.mapping, field)
}

// Apply sets every pair of m. Pairs naming unknown fields or headers are
// skipped and returned in the error.
func (b *Builder) Apply(m Mapping) error {
	fields := make([]string, 0, len(m))
	for f := range m {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var errs []error
	for _, f := range fields {
		if m[f] == "" {
			b.Unset(f)
			continue
		}
		if err := b.Set(f, m[f]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *Builder) Source() Source {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.source
}

func (b *Builder) Mapping() Mapping {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mapping.Clone()
}

func (b *Builder) Missing() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.missingLocked()
}

func (b *Builder) missingLocked() []string {
	var missing []string
	for _, f := range RequiredFields(b.schema) {
		h, ok := b.mapping[f]
		if !ok || h == "" || !slices.Contains(b.headers, h) {
			missing = append(missing, f)
		}
	}
	return missing
}

// Submit runs the import with the current mapping. Unmapped required fields
// fail without any network call. A successful import discards the source and
// the mapping.
func (b *Builder) Submit(ctx context.Context) (models.ImportSummary, error) {
	b.mu.Lock()
	src := b.source
	if src == nil || len(b.headers) == 0 {
		b.submit = remote.State{Status: remote.StatusFailed, Error: ErrNoSource.Error()}
		b.mu.Unlock()
		return models.ImportSummary{}, ErrNoSource
	}
	if missing := b.missingLocked(); len(missing) > 0 {
		err := fmt.Errorf("%w: %s", ErrMissingRequired, strings.Join(missing, ", "))
		b.submit = remote.State{Status: remote.StatusFailed, Error: err.Error()}
		b.mu.Unlock()
		return models.ImportSummary{}, err
	}
	mapping := Mapping{}
	for f, h := range b.mapping {
		if h != "" {
			mapping[f] = h
		}
	}
	gen := b.gen
	b.submit = remote.State{Status: remote.StatusLoading}
	b.mu.Unlock()

	summary, err := src.submit(ctx, b.api, mapping)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.submit = remote.State{Status: remote.StatusFailed, Error: remote.ErrorMessage(err)}
		logging.FromContext(ctx).Warn("import_failed", "kind", src.Kind(), "source", src.Describe(), "error", err)
		return summary, err
	}
	summary = normalizeSummary(summary)
	b.summary = &summary
	b.submit = remote.State{Status: remote.StatusSucceeded}
	if gen == b.gen {
		b.source = nil
		b.headers = nil
		b.mapping = Mapping{}
		b.ambiguities = nil
		b.preview = remote.State{Status: remote.StatusIdle}
	}
	logging.FromContext(ctx).Info("import_finished", "kind", src.Kind(), "total", summary.Total,
		"succeeded", summary.Succeeded, "failed", summary.Failed)
	return summary, nil
}

type Stage string

const (
	StagePreview Stage = "preview"
	StageSubmit  Stage = "submit"
)

// Fail records a failure detected before stage reached the network, such as a
// rejected permission check, and returns err.
func (b *Builder) Fail(ctx context.Context, stage Stage, err error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	st := remote.State{Status: remote.StatusFailed, Error: remote.ErrorMessage(err)}
	switch stage {
	case StagePreview:
		b.preview = st
	case StageSubmit:
		b.submit = st
	}
	logging.FromContext(ctx).Warn("upload_rejected", "stage", stage, "error", err)
	return err
}

// Reset clears both statuses and the last summary, keeping the mapping.
func (b *Builder) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.preview = remote.State{Status: remote.StatusIdle}
	b.submit = remote.State{Status: remote.StatusIdle}
	b.summary = nil
}

// Discard drops everything, used on logout.
func (b *Builder) Discard() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gen++
	b.source = nil
	b.headers = nil
	b.mapping = Mapping{}
	b.ambiguities = nil
	b.summary = nil
	b.preview = remote.State{Status: remote.StatusIdle}
	b.submit = remote.State{Status: remote.StatusIdle}
}

func (b *Builder) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	v := View{
		Schema:      slices.Clone(b.schema),
		Headers:     slices.Clone(b.headers),
		Mapping:     b.mapping.Clone(),
		Missing:     b.missingLocked(),
		Ambiguities: slices.Clone(b.ambiguities),
		Preview:     b.preview,
		Submit:      b.submit,
	}
	if v.Headers == nil {
		v.Headers = []string{}
	}
	if b.source != nil {
		v.Source = b.source.Describe()
		v.Kind = b.source.Kind()
	}
	if b.summary != nil {
		s := *b.summary
		v.Summary = &s
	}
	return v
}

func normalizeSummary(s models.ImportSummary) models.ImportSummary {
	if s.Failed == 0 && len(s.Errors) > 0 {
		s.Failed = len(s.Errors)
	}
	if s.Total == 0 {
		s.Total = s.Succeeded + s.Failed
	}
	return s
}
